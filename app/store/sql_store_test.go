package store

import (
	"context"
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
)

type fakeLinkRepository struct {
	data    map[string][]string
	loadErr error
	saveErr error
}

func (f *fakeLinkRepository) LoadAll(ctx context.Context) (map[string][]string, error) {
	if f.loadErr != nil {
		return nil, f.loadErr
	}
	return f.data, nil
}

func (f *fakeLinkRepository) ReplaceAll(ctx context.Context, links map[string][]string) error {
	if f.saveErr != nil {
		return f.saveErr
	}
	f.data = links
	return nil
}

func TestSQLStore_LoadError(t *testing.T) {
	s := NewSQLStore(&fakeLinkRepository{loadErr: errors.New("database is locked")})

	state := s.Load(context.Background())

	if state.Count() != 0 {
		t.Errorf("Expected empty state on load error, got %d links", state.Count())
	}
}

func TestSQLStore_SaveAndLoad(t *testing.T) {
	repo := &fakeLinkRepository{}
	s := NewSQLStore(repo)

	state := NewSeenState()
	state.Record(feedA, "l1")
	if err := s.Save(context.Background(), state); err != nil {
		t.Fatal(err)
	}

	loaded := s.Load(context.Background())
	if diff := cmp.Diff(state.Snapshot(), loaded.Snapshot()); diff != "" {
		t.Errorf("State mismatch (-want +got):\n%s", diff)
	}
}

func TestSQLStore_SaveError(t *testing.T) {
	s := NewSQLStore(&fakeLinkRepository{saveErr: errors.New("disk full")})

	if err := s.Save(context.Background(), NewSeenState()); err == nil {
		t.Error("Expected save error to be returned")
	}
}
