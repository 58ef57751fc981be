package cfg

import (
	"cmp"
	"fmt"
	"os"
	"time"

	"github.com/jessevdk/go-flags"
)

// Version is set at build time via -ldflags
var Version = "dev"

const MinSendInterval = time.Second

const (
	StoreJSON   = "json"
	StoreSQLite = "sqlite"
	StoreRedis  = "redis"
)

func GetVersion() string {
	return cmp.Or(Version, "unknown")
}

type rawCfg struct {
	// Relay configuration
	ConfigFile   string `long:"config" env:"CONFIG_FILE" default:"./relay.yml" description:"YAML file with feeds and destinations"`
	Store        string `long:"store" env:"STORE" default:"json" choice:"json" choice:"sqlite" choice:"redis" description:"Seen-link store backend"`
	StateFile    string `long:"state-file" env:"STATE_FILE" default:"./seen_news.json" description:"JSON file holding already delivered links (json store)"`
	DBPath       string `long:"db-path" env:"DB_PATH" default:"./relay.db" description:"SQLite database path (sqlite store)"`
	RedisAddr    string `long:"redis-addr" env:"REDIS_ADDR" default:"localhost:6379" description:"Redis address (redis store)"`
	RedisKey     string `long:"redis-key" env:"REDIS_KEY" default:"rss-relay:seen_links" description:"Redis key holding the state (redis store)"`
	PollInterval int    `long:"poll-interval" env:"POLL_INTERVAL" default:"900" description:"Feed polling interval in seconds"`
	SendInterval int    `long:"send-interval" env:"SEND_INTERVAL" default:"1" description:"Minimum pause between two sends in seconds"`
	MaxRetries   int    `long:"max-retries" env:"MAX_RETRIES" default:"0" description:"Delivery retries per message (0 disables retries)"`
	SeenLimit    int    `long:"seen-limit" env:"SEEN_LIMIT" default:"0" description:"Maximum remembered links per feed (0 keeps everything)"`
	FetchTimeout int    `long:"fetch-timeout" env:"FETCH_TIMEOUT" default:"30" description:"Default feed fetch timeout in seconds"`
	DrainTimeout int    `long:"drain-timeout" env:"DRAIN_TIMEOUT" default:"30" description:"Time allowed to flush pending messages on shutdown in seconds"`

	// Telegram destination
	TelegramToken     string `long:"telegram-token" env:"TELEGRAM_TOKEN" description:"Telegram bot token (required for telegram destinations)"`
	TelegramAPIURL    string `long:"telegram-api-url" env:"TELEGRAM_API_URL" default:"https://api.telegram.org" description:"Telegram bot API base URL"`
	TelegramParseMode string `long:"telegram-parse-mode" env:"TELEGRAM_PARSE_MODE" default:"Markdown" description:"Telegram parse_mode sent with markdown messages"`

	// Kafka destination
	KafkaBrokers []string `long:"kafka-broker" env:"KAFKA_BROKERS" env-delim:"," description:"Kafka broker address (repeatable)"`
	KafkaTopic   string   `long:"kafka-topic" env:"KAFKA_TOPIC" default:"news" description:"Default Kafka topic for kafka destinations"`

	// WhatsApp destination
	WhatsAppURL        string `long:"whatsapp-url" env:"WHATSAPP_URL" default:"https://web.whatsapp.com" description:"Messenger web client base URL"`
	WhatsAppWait       int    `long:"whatsapp-wait" env:"WHATSAPP_WAIT" default:"15" description:"Seconds to wait for the messenger client to load"`
	WhatsAppCloseAfter int    `long:"whatsapp-close-after" env:"WHATSAPP_CLOSE_AFTER" default:"3" description:"Seconds to keep the client open after sending"`
	ChromeUserDataDir  string `long:"chrome-user-data-dir" env:"CHROME_USER_DATA_DIR" description:"Browser profile holding the messenger session"`
	ChromeHeadless     bool   `long:"chrome-headless" env:"CHROME_HEADLESS" description:"Run the browser headless"`

	// Application metadata
	Port      string `long:"port" env:"PORT" description:"Status HTTP server port (empty disables it)"`
	UserAgent string `long:"user-agent" env:"USER_AGENT" default:"RSS Relay/1.0" description:"User agent string for HTTP requests"`
	Timezone  string `long:"timezone" env:"TZ" default:"UTC" description:"Timezone for timestamps (e.g., UTC, Europe/Paris)"`
	Debug     bool   `long:"debug" env:"DEBUG" description:"Enable debug logging"`
}

func Load() (*Cfg, error) {
	return LoadArgs(os.Args[1:])
}

// LoadArgs parses args and the environment. It returns nil, nil when help was requested.
func LoadArgs(args []string) (*Cfg, error) {
	var raw rawCfg

	parser := flags.NewParser(&raw, flags.Default)

	if _, err := parser.ParseArgs(args); err != nil {
		if flagsErr, ok := err.(*flags.Error); ok {
			if flagsErr.Type == flags.ErrHelp {
				return nil, nil
			}
		}
		return nil, fmt.Errorf("failed to parse configuration: %w", err)
	}

	cfg := &Cfg{
		ConfigFile:         raw.ConfigFile,
		Store:              raw.Store,
		StateFile:          raw.StateFile,
		DBPath:             raw.DBPath,
		RedisAddr:          raw.RedisAddr,
		RedisKey:           raw.RedisKey,
		PollInterval:       seconds(raw.PollInterval),
		SendInterval:       seconds(raw.SendInterval),
		MaxRetries:         raw.MaxRetries,
		SeenLimit:          raw.SeenLimit,
		FetchTimeout:       seconds(raw.FetchTimeout),
		DrainTimeout:       seconds(raw.DrainTimeout),
		TelegramToken:      raw.TelegramToken,
		TelegramAPIURL:     raw.TelegramAPIURL,
		TelegramParseMode:  raw.TelegramParseMode,
		KafkaBrokers:       raw.KafkaBrokers,
		KafkaTopic:         raw.KafkaTopic,
		WhatsAppURL:        raw.WhatsAppURL,
		WhatsAppWait:       seconds(raw.WhatsAppWait),
		WhatsAppCloseAfter: seconds(raw.WhatsAppCloseAfter),
		ChromeUserDataDir:  raw.ChromeUserDataDir,
		ChromeHeadless:     raw.ChromeHeadless,
		Port:               raw.Port,
		UserAgent:          raw.UserAgent,
		Timezone:           raw.Timezone,
		Debug:              raw.Debug,
		Version:            GetVersion(),
	}

	if err := validate(cfg); err != nil {
		return nil, err
	}

	if err := applyTimezone(cfg.Timezone); err != nil {
		fmt.Printf("Warning: Invalid timezone '%s', using system default: %v\n", cfg.Timezone, err)
	}

	return cfg, nil
}

func validate(cfg *Cfg) error {
	if cfg.PollInterval <= 0 {
		return fmt.Errorf("poll interval must be positive")
	}
	if cfg.SendInterval < MinSendInterval {
		return fmt.Errorf("send interval must be at least %s, got %s", MinSendInterval, cfg.SendInterval)
	}

	nonNegativeFields := map[string]int{
		"max retries": cfg.MaxRetries,
		"seen limit":  cfg.SeenLimit,
	}

	for fieldName, fieldValue := range nonNegativeFields {
		if fieldValue < 0 {
			return fmt.Errorf("%s must be non-negative", fieldName)
		}
	}

	nonNegativeDurations := map[string]time.Duration{
		"drain timeout":        cfg.DrainTimeout,
		"whatsapp close after": cfg.WhatsAppCloseAfter,
	}

	for fieldName, fieldValue := range nonNegativeDurations {
		if fieldValue < 0 {
			return fmt.Errorf("%s must be non-negative", fieldName)
		}
	}

	if cfg.FetchTimeout <= 0 {
		return fmt.Errorf("fetch timeout must be positive")
	}
	if cfg.WhatsAppWait <= 0 {
		return fmt.Errorf("whatsapp wait must be positive")
	}

	return nil
}

func seconds(n int) time.Duration {
	return time.Duration(n) * time.Second
}

func applyTimezone(timezone string) error {
	if timezone != "" {
		if loc, err := time.LoadLocation(timezone); err != nil {
			return err
		} else {
			time.Local = loc
		}
	}
	return nil
}
