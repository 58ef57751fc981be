// Package store persists the links already delivered per feed so a restart
// does not notify destinations twice.
package store

import (
	"context"
)

// Store loads and saves the seen-link state.
type Store interface {
	// Load never fails: unreadable state is logged and replaced by an empty one.
	Load(ctx context.Context) *SeenState
	Save(ctx context.Context, state *SeenState) error
}
