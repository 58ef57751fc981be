package config

import (
	"time"
)

// GetTimeout returns the timeout as time.Duration, or fallback when unset
func (f *FeedConfig) GetTimeout(fallback time.Duration) time.Duration {
	if f.Timeout <= 0 {
		return fallback
	}
	return time.Duration(f.Timeout) * time.Second
}

// FeedURLs returns the configured feed URLs in configuration order
func (c *RelayConfig) FeedURLs() []string {
	urls := make([]string, 0, len(c.Feeds))
	for _, f := range c.Feeds {
		urls = append(urls, f.URL)
	}
	return urls
}

// HasTransport reports whether any destination uses the given transport
func (c *RelayConfig) HasTransport(transport string) bool {
	for _, d := range c.Destinations {
		if d.Transport == transport {
			return true
		}
	}
	return false
}
