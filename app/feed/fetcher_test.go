package feed

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

const fetcherFeed = `<?xml version="1.0"?>
<rss version="2.0">
  <channel>
    <title>Fetcher Feed</title>
    <item>
      <title>With summary</title>
      <link>%s/with-summary</link>
      <description>Already summarised</description>
    </item>
    <item>
      <title>Without summary</title>
      <link>%s/article</link>
    </item>
  </channel>
</rss>`

func newFeedServer(t *testing.T) *httptest.Server {
	t.Helper()

	var ts *httptest.Server
	ts = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/feed.xml":
			if r.Header.Get("User-Agent") != "Test Agent" {
				w.WriteHeader(http.StatusForbidden)
				return
			}
			w.Header().Set("Content-Type", "application/rss+xml")
			w.Write([]byte(strings.ReplaceAll(fetcherFeed, "%s", ts.URL)))
		case "/article":
			w.Header().Set("Content-Type", "text/html; charset=utf-8")
			w.Write([]byte(articleHTML))
		default:
			http.NotFound(w, r)
		}
	}))
	t.Cleanup(ts.Close)
	return ts
}

func newTestFetcher() *Fetcher {
	return NewFetcher(&http.Client{Timeout: 5 * time.Second}, NewParser(), NewContentExtractor(), "Test Agent")
}

func TestFetcher_Fetch(t *testing.T) {
	ts := newFeedServer(t)

	entries, err := newTestFetcher().Fetch(context.Background(), Source{URL: ts.URL + "/feed.xml"})
	if err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}

	if len(entries) != 2 {
		t.Fatalf("Expected 2 entries, got %d", len(entries))
	}
	if entries[0].Summary != "Already summarised" {
		t.Errorf("Expected summary 'Already summarised', got '%s'", entries[0].Summary)
	}
	if entries[1].Summary != "" {
		t.Errorf("Expected empty summary without extraction, got '%s'", entries[1].Summary)
	}
}

func TestFetcher_FetchExtractsMissingSummary(t *testing.T) {
	ts := newFeedServer(t)

	entries, err := newTestFetcher().Fetch(context.Background(), Source{URL: ts.URL + "/feed.xml", ExtractContent: true})
	if err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}

	if !strings.Contains(entries[1].Summary, "main content of the article") {
		t.Errorf("Expected extracted summary, got '%s'", entries[1].Summary)
	}
	if entries[0].Summary != "Already summarised" {
		t.Errorf("Expected existing summary to be kept, got '%s'", entries[0].Summary)
	}
}

func TestFetcher_FetchHTTPError(t *testing.T) {
	ts := newFeedServer(t)

	_, err := newTestFetcher().Fetch(context.Background(), Source{URL: ts.URL + "/missing.xml"})
	if err == nil {
		t.Error("Expected error for 404 feed")
	}
}

func TestFetcher_FetchTimeout(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(2 * time.Second):
		}
	}))
	defer ts.Close()

	start := time.Now()
	_, err := newTestFetcher().Fetch(context.Background(), Source{URL: ts.URL, Timeout: 50 * time.Millisecond})
	if err == nil {
		t.Error("Expected timeout error")
	}
	if time.Since(start) > time.Second {
		t.Errorf("Expected fetch to honour the feed timeout, took %v", time.Since(start))
	}
}
