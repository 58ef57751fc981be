package config

import (
	"fmt"

	"gopkg.in/yaml.v3"
)

const (
	TransportTelegram = "telegram"
	TransportWhatsApp = "whatsapp"
	TransportKafka    = "kafka"

	FormatMarkdown = "markdown"
	FormatPlain    = "plain"
)

// RelayConfig is the static relay configuration loaded once at start-up
type RelayConfig struct {
	Feeds        []FeedConfig        `yaml:"feeds"`
	Destinations []DestinationConfig `yaml:"destinations"`
}

// FeedConfig describes one polled feed
type FeedConfig struct {
	URL            string `yaml:"url"`
	ExtractContent bool   `yaml:"extract_content"` // fetch the article when the entry has no summary
	Timeout        int    `yaml:"timeout"`         // seconds
}

// DestinationConfig describes one recipient and its interest profile
type DestinationConfig struct {
	ID        string   `yaml:"id"`
	Transport string   `yaml:"transport"`
	Keywords  []string `yaml:"keywords"`
	Format    string   `yaml:"format"`
	Topic     string   `yaml:"topic"` // kafka only
}

// UnmarshalYAML accepts either a bare URL or a mapping.
func (f *FeedConfig) UnmarshalYAML(value *yaml.Node) error {
	if value.Kind == yaml.ScalarNode {
		var url string
		if err := value.Decode(&url); err != nil {
			return fmt.Errorf("failed to decode feed URL: %w", err)
		}
		*f = FeedConfig{URL: url}
		return nil
	}

	type plain FeedConfig
	var decoded plain
	if err := value.Decode(&decoded); err != nil {
		return err
	}
	*f = FeedConfig(decoded)
	return nil
}
