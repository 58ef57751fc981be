package poller

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/lysyi3m/rss-relay/app/delivery"
	"github.com/lysyi3m/rss-relay/app/feed"
	"github.com/lysyi3m/rss-relay/app/store"
)

const DefaultInterval = 15 * time.Minute

// saveTimeout bounds the final write of a cycle, which runs even after shutdown started.
const saveTimeout = 10 * time.Second

type EntryFetcher interface {
	Fetch(ctx context.Context, source feed.Source) ([]feed.Entry, error)
}

type MessageQueue interface {
	Enqueue(msg delivery.Message) error
}

type Options struct {
	Interval  time.Duration
	SeenLimit int
	Clock     Clock
}

// CycleResult summarises one polling pass.
type CycleResult struct {
	Feeds       int `json:"feeds"`
	FailedFeeds int `json:"failed_feeds"`
	Entries     int `json:"entries"`
	Candidates  int `json:"candidates"`
	Enqueued    int `json:"enqueued"`
	Pruned      int `json:"pruned"`
	Dropped     int `json:"dropped"`
}

type Stats struct {
	Cycles      int64       `json:"cycles"`
	LastCycleAt time.Time   `json:"last_cycle_at"`
	LastResult  CycleResult `json:"last_result"`
	SeenLinks   int         `json:"seen_links"`
}

// Poller fetches every source, records new links and enqueues one message per
// matching destination. The seen-link state is owned by the polling goroutine.
type Poller struct {
	fetcher   EntryFetcher
	store     store.Store
	queue     MessageQueue
	sources   []feed.Source
	profiles  []feed.Profile
	interval  time.Duration
	seenLimit int
	clock     Clock

	state *store.SeenState

	mu    sync.Mutex
	stats Stats
}

func New(fetcher EntryFetcher, st store.Store, queue MessageQueue, sources []feed.Source, profiles []feed.Profile, opts Options) *Poller {
	if opts.Interval <= 0 {
		opts.Interval = DefaultInterval
	}
	if opts.Clock == nil {
		opts.Clock = RealClock()
	}

	return &Poller{
		fetcher:   fetcher,
		store:     st,
		queue:     queue,
		sources:   sources,
		profiles:  profiles,
		interval:  opts.Interval,
		seenLimit: opts.SeenLimit,
		clock:     opts.Clock,
	}
}

// Run alternates between polling and sleeping until ctx is cancelled.
func (p *Poller) Run(ctx context.Context) error {
	slog.Info("Poller started", "feeds", len(p.sources), "destinations", len(p.profiles), "interval", p.interval.String())

	for {
		p.PollOnce(ctx)

		select {
		case <-ctx.Done():
			slog.Info("Poller stopped")
			return nil
		case <-p.clock.After(p.interval):
		}
	}
}

// PollOnce runs a single cycle over all sources in configuration order and persists the state.
func (p *Poller) PollOnce(ctx context.Context) CycleResult {
	if p.state == nil {
		p.state = p.store.Load(ctx)
	}

	var result CycleResult
	for _, source := range p.sources {
		if ctx.Err() != nil {
			slog.Info("Poll cycle interrupted", "remaining_feeds", len(p.sources)-result.Feeds)
			break
		}
		result.Feeds++
		p.state.Track(source.URL)

		entries, err := p.fetcher.Fetch(ctx, source)
		if err != nil {
			result.FailedFeeds++
			slog.Warn("Failed to fetch feed, skipping", "feed", source.URL, "error", err)
			continue
		}
		if ctx.Err() != nil {
			slog.Info("Poll cycle interrupted, feed left unprocessed", "feed", source.URL, "entries", len(entries))
			break
		}
		result.Entries += len(entries)

		candidates := p.collectCandidates(source.URL, entries)
		result.Candidates += len(candidates)
		enqueued, dropped := p.enqueueMatches(source.URL, candidates)
		result.Enqueued += enqueued
		result.Dropped += dropped

		if p.seenLimit > 0 {
			result.Pruned += p.state.Prune(source.URL, p.seenLimit, currentLinks(entries))
		}

		slog.Debug("Feed processed", "feed", source.URL, "entries", len(entries), "new", len(candidates))
	}

	// Links recorded this cycle produced queued messages, so they are saved even during shutdown.
	saveCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), saveTimeout)
	if err := p.store.Save(saveCtx, p.state); err != nil {
		slog.Error("Failed to save seen-link state", "error", err)
	}
	cancel()

	if result.Dropped > 0 {
		slog.Warn("Messages dropped because the delivery queue rejected them", "count", result.Dropped)
	}

	p.mu.Lock()
	p.stats.Cycles++
	p.stats.LastCycleAt = time.Now()
	p.stats.LastResult = result
	p.stats.SeenLinks = p.state.Count()
	p.mu.Unlock()

	slog.Info("Poll cycle completed",
		"feeds", result.Feeds, "failed", result.FailedFeeds, "entries", result.Entries,
		"new", result.Candidates, "enqueued", result.Enqueued, "dropped", result.Dropped)

	return result
}

// collectCandidates returns unseen entries in feed order and records their links.
func (p *Poller) collectCandidates(feedURL string, entries []feed.Entry) []feed.Entry {
	var candidates []feed.Entry
	for _, entry := range entries {
		if !p.state.IsNew(feedURL, entry.Link) {
			continue
		}
		candidates = append(candidates, entry)
		p.state.Record(feedURL, entry.Link)
	}
	return candidates
}

// enqueueMatches fans candidates out to matching destinations and returns the
// number of enqueued and rejected messages.
func (p *Poller) enqueueMatches(feedURL string, candidates []feed.Entry) (int, int) {
	enqueued, dropped := 0, 0
	for _, entry := range candidates {
		for _, profile := range feed.MatchingProfiles(entry, p.profiles) {
			msg := delivery.NewMessage(profile.DestinationID, feed.FormatMessage(entry, profile.Format), feedURL, entry.Link)
			if err := p.queue.Enqueue(msg); err != nil {
				slog.Error("Failed to enqueue message", "feed", feedURL, "destination", profile.DestinationID, "link", entry.Link, "error", err)
				dropped++
				continue
			}
			enqueued++
			slog.Debug("Message enqueued", "id", msg.ID, "feed", feedURL, "destination", profile.DestinationID, "title", entry.Title)
		}
	}
	return enqueued, dropped
}

func (p *Poller) Stats() Stats {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.stats
}

func currentLinks(entries []feed.Entry) map[string]struct{} {
	links := make(map[string]struct{}, len(entries))
	for _, entry := range entries {
		if entry.Link != "" {
			links[entry.Link] = struct{}{}
		}
	}
	return links
}
