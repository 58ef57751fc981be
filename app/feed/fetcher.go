package feed

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"
)

const defaultTimeout = 30 * time.Second

// Fetcher downloads and parses feeds
type Fetcher struct {
	httpClient *http.Client
	parser     *Parser
	extractor  *ContentExtractor
	userAgent  string
}

func NewFetcher(httpClient *http.Client, parser *Parser, extractor *ContentExtractor, userAgent string) *Fetcher {
	return &Fetcher{
		httpClient: httpClient,
		parser:     parser,
		extractor:  extractor,
		userAgent:  userAgent,
	}
}

// Fetch returns the entries currently served by the feed.
func (f *Fetcher) Fetch(ctx context.Context, source Source) ([]Entry, error) {
	timeout := source.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}

	data, err := f.get(ctx, source.URL, timeout, "")
	if err != nil {
		return nil, fmt.Errorf("failed to fetch feed: %w", err)
	}

	entries, err := f.parser.Run(data)
	if err != nil {
		return nil, err
	}

	if source.ExtractContent {
		for i := range entries {
			if entries[i].Summary != "" || entries[i].Link == "" {
				continue
			}
			summary, err := f.extractSummary(ctx, entries[i].Link, timeout)
			if err != nil {
				slog.Warn("Failed to extract content for entry", "feed", source.URL, "url", entries[i].Link, "error", err)
				continue
			}
			entries[i].Summary = summary
		}
	}

	return entries, nil
}

func (f *Fetcher) extractSummary(ctx context.Context, link string, timeout time.Duration) (string, error) {
	data, err := f.get(ctx, link, timeout, "text/html")
	if err != nil {
		return "", fmt.Errorf("failed to fetch article content: %w", err)
	}
	return f.extractor.Run(data, link)
}

func (f *Fetcher) get(ctx context.Context, url string, timeout time.Duration, wantContentType string) ([]byte, error) {
	timeoutCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(timeoutCtx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("User-Agent", f.userAgent)

	resp, err := f.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch URL: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("HTTP error: %d %s", resp.StatusCode, resp.Status)
	}

	if wantContentType != "" {
		contentType := resp.Header.Get("Content-Type")
		if !strings.Contains(strings.ToLower(contentType), wantContentType) {
			return nil, fmt.Errorf("unexpected content type: %s", contentType)
		}
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}

	return data, nil
}
