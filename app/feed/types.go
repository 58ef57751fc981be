package feed

import (
	"strings"
	"time"

	"golang.org/x/text/cases"
)

// Entry is one feed item reduced to what matching and formatting need.
// An empty Link means the entry cannot be deduplicated.
type Entry struct {
	Title     string
	Summary   string // plain text
	Published string // as given by the feed
	Link      string
}

// Source is a polled feed
type Source struct {
	URL            string
	ExtractContent bool
	Timeout        time.Duration
}

// Profile is the keyword interest of one destination
type Profile struct {
	DestinationID string
	Keywords      []string
	Format        string

	folded []string
}

// NewProfile builds a profile with its keywords case-folded once.
// Blank keywords are dropped.
func NewProfile(destinationID string, keywords []string, format string) Profile {
	caser := cases.Fold()
	p := Profile{
		DestinationID: destinationID,
		Format:        format,
	}
	for _, k := range keywords {
		k = strings.TrimSpace(k)
		if k == "" {
			continue
		}
		p.Keywords = append(p.Keywords, k)
		p.folded = append(p.folded, caser.String(k))
	}
	return p
}
