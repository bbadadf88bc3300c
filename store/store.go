package store

import (
	"context"

	"github.com/packwise/packwise-backend/types"
)

// ListStore persists packing lists. Lists are never deleted explicitly; a
// store may expire them after a configured TTL.
type ListStore interface {
	// Save stores a new list. It returns ErrConflict if the ID is taken.
	Save(ctx context.Context, list *types.PackingList) error
	// Get returns a copy of the list with its current view count.
	Get(ctx context.Context, id string) (*types.PackingList, error)
	// IncrementViews adds one view and returns the new count.
	IncrementViews(ctx context.Context, id string) (int64, error)
	// Ping reports whether the backend is reachable.
	Ping(ctx context.Context) error
}
