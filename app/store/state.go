package store

import (
	"encoding/json"
	"sort"
)

// SeenState maps a feed URL to the ordered links already delivered for it.
// It is owned by a single goroutine and is not safe for concurrent use.
type SeenState struct {
	links map[string][]string
	index map[string]map[string]struct{}
}

func NewSeenState() *SeenState {
	return &SeenState{
		links: make(map[string][]string),
		index: make(map[string]map[string]struct{}),
	}
}

// SeenStateFrom builds a state from persisted data. Duplicate links are kept
// in order but indexed once.
func SeenStateFrom(data map[string][]string) *SeenState {
	s := NewSeenState()
	for feedURL, links := range data {
		s.links[feedURL] = append([]string(nil), links...)
		idx := make(map[string]struct{}, len(links))
		for _, link := range links {
			idx[link] = struct{}{}
		}
		s.index[feedURL] = idx
	}
	return s
}

// IsNew reports whether link has not been delivered for feedURL.
// Entries without a link are always new.
func (s *SeenState) IsNew(feedURL, link string) bool {
	if link == "" {
		return true
	}
	_, seen := s.index[feedURL][link]
	return !seen
}

// Record marks link as delivered for feedURL. Empty links and repeats are ignored.
func (s *SeenState) Record(feedURL, link string) {
	if link == "" || !s.IsNew(feedURL, link) {
		return
	}
	idx, ok := s.index[feedURL]
	if !ok {
		idx = make(map[string]struct{})
		s.index[feedURL] = idx
	}
	idx[link] = struct{}{}
	s.links[feedURL] = append(s.links[feedURL], link)
}

// Track makes feedURL appear in the persisted document even before any link is recorded.
func (s *SeenState) Track(feedURL string) {
	if _, ok := s.links[feedURL]; !ok {
		s.links[feedURL] = []string{}
		s.index[feedURL] = make(map[string]struct{})
	}
}

// Prune drops the oldest links of feedURL beyond limit, never dropping a link in keep.
// It returns the number of links removed. A limit <= 0 disables pruning.
func (s *SeenState) Prune(feedURL string, limit int, keep map[string]struct{}) int {
	links := s.links[feedURL]
	if limit <= 0 || len(links) <= limit {
		return 0
	}

	excess := len(links) - limit
	kept := make([]string, 0, limit)
	removed := 0
	for _, link := range links {
		if removed < excess {
			if _, protected := keep[link]; !protected {
				removed++
				continue
			}
		}
		kept = append(kept, link)
	}

	s.links[feedURL] = kept
	idx := make(map[string]struct{}, len(kept))
	for _, link := range kept {
		idx[link] = struct{}{}
	}
	s.index[feedURL] = idx

	return removed
}

// Links returns a copy of the links recorded for feedURL.
func (s *SeenState) Links(feedURL string) []string {
	return append([]string(nil), s.links[feedURL]...)
}

// Feeds returns the tracked feed URLs in sorted order.
func (s *SeenState) Feeds() []string {
	feeds := make([]string, 0, len(s.links))
	for feedURL := range s.links {
		feeds = append(feeds, feedURL)
	}
	sort.Strings(feeds)
	return feeds
}

// Count returns the number of stored links across all feeds.
func (s *SeenState) Count() int {
	n := 0
	for _, links := range s.links {
		n += len(links)
	}
	return n
}

// Snapshot returns a deep copy suitable for persisting.
func (s *SeenState) Snapshot() map[string][]string {
	out := make(map[string][]string, len(s.links))
	for feedURL, links := range s.links {
		out[feedURL] = append([]string{}, links...)
	}
	return out
}

func (s *SeenState) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.Snapshot())
}

func (s *SeenState) UnmarshalJSON(data []byte) error {
	var raw map[string][]string
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	*s = *SeenStateFrom(raw)
	return nil
}
