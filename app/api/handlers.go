package api

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

func NewHandler(poller PollerStatsProvider, worker WorkerStatsProvider, feeds []string,
	destinations []DestinationInfo, version string) *Handler {
	return &Handler{
		poller:       poller,
		worker:       worker,
		feeds:        feeds,
		destinations: destinations,
		version:      version,
	}
}

func (h *Handler) GetHealth(c *gin.Context) {
	stats := h.poller.Stats()

	health := map[string]interface{}{
		"status":    "ok",
		"timestamp": time.Now().In(time.Local).Format(time.RFC3339),
		"cycles":    stats.Cycles,
	}
	if !stats.LastCycleAt.IsZero() {
		health["last_cycle_at"] = stats.LastCycleAt.In(time.Local).Format(time.RFC3339)
	}

	c.JSON(http.StatusOK, health)
}

func (h *Handler) GetStats(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"poller":   h.poller.Stats(),
		"delivery": h.worker.Stats(),
	})
}

func (h *Handler) GetFeeds(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"feeds": h.feeds,
		"total": len(h.feeds),
	})
}

func (h *Handler) GetDestinations(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"destinations": h.destinations,
		"total":        len(h.destinations),
	})
}

func (h *Handler) GetIndex(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"service":     "RSS Relay",
		"version":     h.version,
		"description": "Feed poller delivering keyword-matched entries to chat destinations",
		"endpoints": map[string]string{
			"health":       "/health",
			"stats":        "/stats",
			"feeds":        "/feeds",
			"destinations": "/destinations",
		},
	})
}
