package cfg

import "time"

type Cfg struct {
	// Relay configuration
	ConfigFile   string
	Store        string
	StateFile    string
	DBPath       string
	RedisAddr    string
	RedisKey     string
	PollInterval time.Duration
	SendInterval time.Duration
	MaxRetries   int
	SeenLimit    int
	FetchTimeout time.Duration
	DrainTimeout time.Duration

	// Telegram destination
	TelegramToken     string
	TelegramAPIURL    string
	TelegramParseMode string

	// Kafka destination
	KafkaBrokers []string
	KafkaTopic   string

	// WhatsApp destination
	WhatsAppURL        string
	WhatsAppWait       time.Duration
	WhatsAppCloseAfter time.Duration
	ChromeUserDataDir  string
	ChromeHeadless     bool

	// Application metadata
	Port      string
	UserAgent string
	Timezone  string
	Debug     bool
	Version   string
}

// StatusServerEnabled reports whether the read-only status endpoint should be served.
func (c *Cfg) StatusServerEnabled() bool {
	return c.Port != ""
}
