package config

import (
	"fmt"
	"log/slog"
	"net/url"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// Loader handles loading and validation of the relay configuration
type Loader struct {
	path string
}

// NewLoader creates a new configuration loader
func NewLoader(path string) *Loader {
	return &Loader{path: path}
}

// Load reads, defaults and validates the relay configuration file
func (l *Loader) Load() (*RelayConfig, error) {
	data, err := os.ReadFile(l.path)
	if err != nil {
		return nil, fmt.Errorf("failed to read file: %w", err)
	}

	config, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("invalid config %s: %w", l.path, err)
	}

	slog.Debug("Relay configuration loaded", "path", l.path, "feeds", len(config.Feeds), "destinations", len(config.Destinations))

	return config, nil
}

// Parse decodes a relay configuration document, applies defaults and validates it
func Parse(data []byte) (*RelayConfig, error) {
	var config RelayConfig
	if err := yaml.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	setDefaults(&config)

	if err := validate(&config); err != nil {
		return nil, err
	}

	return &config, nil
}

// setDefaults applies default values to configuration
func setDefaults(config *RelayConfig) {
	for i := range config.Feeds {
		config.Feeds[i].URL = strings.TrimSpace(config.Feeds[i].URL)
	}

	for i := range config.Destinations {
		d := &config.Destinations[i]
		d.ID = strings.TrimSpace(d.ID)
		if d.Transport == "" {
			d.Transport = TransportTelegram
		}
		if d.Format == "" {
			if d.Transport == TransportTelegram {
				d.Format = FormatMarkdown
			} else {
				d.Format = FormatPlain
			}
		}
	}
}

// validate validates the configuration
func validate(config *RelayConfig) error {
	if len(config.Feeds) == 0 {
		return fmt.Errorf("at least one feed is required")
	}
	if len(config.Destinations) == 0 {
		return fmt.Errorf("at least one destination is required")
	}

	seenFeeds := make(map[string]bool, len(config.Feeds))
	for i, feed := range config.Feeds {
		if feed.URL == "" {
			return fmt.Errorf("feed URL is required at index %d", i)
		}
		u, err := url.Parse(feed.URL)
		if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
			return fmt.Errorf("invalid feed URL at index %d: %s", i, feed.URL)
		}
		if seenFeeds[feed.URL] {
			return fmt.Errorf("duplicate feed URL at index %d: %s", i, feed.URL)
		}
		seenFeeds[feed.URL] = true
		if feed.Timeout < 0 {
			return fmt.Errorf("feed timeout must be non-negative at index %d", i)
		}
	}

	validTransports := map[string]bool{
		TransportTelegram: true,
		TransportWhatsApp: true,
		TransportKafka:    true,
	}

	validFormats := map[string]bool{
		FormatMarkdown: true,
		FormatPlain:    true,
	}

	seenDestinations := make(map[string]bool, len(config.Destinations))
	for i, d := range config.Destinations {
		if d.ID == "" {
			return fmt.Errorf("destination ID is required at index %d", i)
		}
		if seenDestinations[d.ID] {
			return fmt.Errorf("duplicate destination ID at index %d: %s", i, d.ID)
		}
		seenDestinations[d.ID] = true

		if !validTransports[d.Transport] {
			return fmt.Errorf("invalid transport at index %d: %s", i, d.Transport)
		}
		if !validFormats[d.Format] {
			return fmt.Errorf("invalid format at index %d: %s", i, d.Format)
		}

		hasKeyword := false
		for _, k := range d.Keywords {
			if strings.TrimSpace(k) != "" {
				hasKeyword = true
				break
			}
		}
		if !hasKeyword {
			return fmt.Errorf("destination %s must have at least one keyword", d.ID)
		}
	}

	return nil
}
