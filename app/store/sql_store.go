package store

import (
	"context"
	"fmt"
	"log/slog"
)

// LinkRepository is the persistence port used by SQLStore.
type LinkRepository interface {
	LoadAll(ctx context.Context) (map[string][]string, error)
	ReplaceAll(ctx context.Context, links map[string][]string) error
}

// SQLStore keeps the state in a database through a LinkRepository.
type SQLStore struct {
	repo LinkRepository
}

func NewSQLStore(repo LinkRepository) *SQLStore {
	return &SQLStore{repo: repo}
}

func (s *SQLStore) Load(ctx context.Context) *SeenState {
	raw, err := s.repo.LoadAll(ctx)
	if err != nil {
		slog.Warn("Failed to load seen-link state from database, starting empty", "error", err)
		return NewSeenState()
	}

	state := SeenStateFrom(raw)
	slog.Info("Seen-link state loaded from database", "feeds", len(raw), "links", state.Count())
	return state
}

func (s *SQLStore) Save(ctx context.Context, state *SeenState) error {
	if err := s.repo.ReplaceAll(ctx, state.Snapshot()); err != nil {
		return fmt.Errorf("failed to save seen-link state: %w", err)
	}
	return nil
}
