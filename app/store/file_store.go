package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
)

// FileStore keeps the state as a JSON object of arrays: {"<feed url>": ["<link>", ...]}.
type FileStore struct {
	path string
}

func NewFileStore(path string) *FileStore {
	return &FileStore{path: path}
}

func (f *FileStore) Path() string {
	return f.path
}

func (f *FileStore) Load(ctx context.Context) *SeenState {
	data, err := os.ReadFile(f.path)
	if errors.Is(err, os.ErrNotExist) {
		slog.Info("No seen-link state found, starting empty", "path", f.path)
		return NewSeenState()
	}
	if err != nil {
		slog.Warn("Failed to read seen-link state, starting empty", "path", f.path, "error", err)
		return NewSeenState()
	}

	var raw map[string][]string
	if err := json.Unmarshal(data, &raw); err != nil {
		slog.Warn("Seen-link state is corrupt, starting empty", "path", f.path, "error", err)
		f.setAside()
		return NewSeenState()
	}

	state := SeenStateFrom(raw)
	slog.Info("Seen-link state loaded", "path", f.path, "feeds", len(raw), "links", state.Count())
	return state
}

// setAside keeps a corrupt file next to the state path so the next save does not destroy it.
func (f *FileStore) setAside() {
	backup := f.path + ".corrupt"
	if err := os.Rename(f.path, backup); err != nil {
		slog.Warn("Failed to set corrupt state aside", "path", f.path, "error", err)
		return
	}
	slog.Warn("Corrupt state moved aside", "backup", backup)
}

// Save writes the full state to a temporary file in the same directory and renames it over the old one.
func (f *FileStore) Save(ctx context.Context, state *SeenState) error {
	data, err := json.Marshal(state)
	if err != nil {
		return fmt.Errorf("failed to encode seen-link state: %w", err)
	}

	dir := filepath.Dir(f.path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create state directory: %w", err)
	}

	tmp, err := os.CreateTemp(dir, filepath.Base(f.path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("failed to create temporary state file: %w", err)
	}
	tmpName := tmp.Name()

	committed := false
	defer func() {
		if !committed {
			os.Remove(tmpName)
		}
	}()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to write temporary state file: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to sync temporary state file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to close temporary state file: %w", err)
	}
	if err := os.Rename(tmpName, f.path); err != nil {
		return fmt.Errorf("failed to replace state file: %w", err)
	}
	committed = true

	return nil
}
