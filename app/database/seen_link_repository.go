package database

import (
	"context"
	"fmt"
)

// SeenLinkRepository persists delivered links per feed, keeping their recording order.
type SeenLinkRepository struct {
	db *DB
}

func NewSeenLinkRepository(db *DB) *SeenLinkRepository {
	return &SeenLinkRepository{db: db}
}

// LoadAll returns every tracked feed with its links ordered by position.
func (r *SeenLinkRepository) LoadAll(ctx context.Context) (map[string][]string, error) {
	result := make(map[string][]string)

	feeds, err := r.db.QueryContext(ctx, `SELECT feed_url FROM tracked_feeds`)
	if err != nil {
		return nil, fmt.Errorf("failed to query tracked feeds: %w", err)
	}
	defer feeds.Close()

	for feeds.Next() {
		var feedURL string
		if err := feeds.Scan(&feedURL); err != nil {
			return nil, fmt.Errorf("failed to scan tracked feed: %w", err)
		}
		result[feedURL] = []string{}
	}
	if err := feeds.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate tracked feeds: %w", err)
	}

	rows, err := r.db.QueryContext(ctx, `
		SELECT feed_url, link
		FROM seen_links
		ORDER BY feed_url, position
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to query seen links: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var feedURL, link string
		if err := rows.Scan(&feedURL, &link); err != nil {
			return nil, fmt.Errorf("failed to scan seen link: %w", err)
		}
		result[feedURL] = append(result[feedURL], link)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate seen links: %w", err)
	}

	return result, nil
}

// ReplaceAll overwrites the stored links with links in a single transaction.
func (r *SeenLinkRepository) ReplaceAll(ctx context.Context, links map[string][]string) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM seen_links`); err != nil {
		return fmt.Errorf("failed to clear seen links: %w", err)
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM tracked_feeds`); err != nil {
		return fmt.Errorf("failed to clear tracked feeds: %w", err)
	}

	feedStmt, err := tx.PrepareContext(ctx, `INSERT INTO tracked_feeds (feed_url) VALUES (?)`)
	if err != nil {
		return fmt.Errorf("failed to prepare feed insert: %w", err)
	}
	defer feedStmt.Close()

	linkStmt, err := tx.PrepareContext(ctx, `
		INSERT INTO seen_links (feed_url, link, position)
		VALUES (?, ?, ?)
		ON CONFLICT (feed_url, link) DO NOTHING
	`)
	if err != nil {
		return fmt.Errorf("failed to prepare link insert: %w", err)
	}
	defer linkStmt.Close()

	for feedURL, feedLinks := range links {
		if _, err := feedStmt.ExecContext(ctx, feedURL); err != nil {
			return fmt.Errorf("failed to store feed %s: %w", feedURL, err)
		}
		for i, link := range feedLinks {
			if _, err := linkStmt.ExecContext(ctx, feedURL, link, i); err != nil {
				return fmt.Errorf("failed to store link for %s: %w", feedURL, err)
			}
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit seen links: %w", err)
	}

	return nil
}

// Count returns the number of stored links.
func (r *SeenLinkRepository) Count(ctx context.Context) (int, error) {
	var count int
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM seen_links`).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count seen links: %w", err)
	}
	return count, nil
}
