package api

import (
	"github.com/lysyi3m/rss-relay/app/delivery"
	"github.com/lysyi3m/rss-relay/app/poller"
)

type PollerStatsProvider interface {
	Stats() poller.Stats
}

type WorkerStatsProvider interface {
	Stats() delivery.WorkerStats
}

var _ PollerStatsProvider = (*poller.Poller)(nil)
var _ WorkerStatsProvider = (*delivery.Worker)(nil)

// DestinationInfo describes a configured destination without its credentials.
type DestinationInfo struct {
	ID        string   `json:"id"`
	Transport string   `json:"transport"`
	Format    string   `json:"format"`
	Keywords  []string `json:"keywords"`
}

type Handler struct {
	poller       PollerStatsProvider
	worker       WorkerStatsProvider
	feeds        []string
	destinations []DestinationInfo
	version      string
}
