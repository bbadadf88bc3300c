// Package memory provides a process-local ListStore. Lists are lost when the
// process restarts and are not shared between instances.
package memory

import (
	"context"
	"fmt"
	"time"

	"github.com/packwise/packwise-backend/store"
	"github.com/packwise/packwise-backend/types"
	"github.com/patrickmn/go-cache"
)

const (
	listPrefix  = "list:"
	viewsPrefix = "views:"
)

type ListStore struct {
	cache *cache.Cache
	ttl   time.Duration
}

// NewListStore creates an in-memory store. A ttl of zero keeps lists until
// the process exits.
func NewListStore(ttl time.Duration) *ListStore {
	if ttl <= 0 {
		return &ListStore{cache: cache.New(cache.NoExpiration, 0), ttl: cache.NoExpiration}
	}
	return &ListStore{cache: cache.New(ttl, 10*time.Minute), ttl: ttl}
}

func (s *ListStore) Save(_ context.Context, list *types.PackingList) error {
	stored := copyList(list)
	stored.Views = 0
	if err := s.cache.Add(listPrefix+list.ID, stored, s.ttl); err != nil {
		return fmt.Errorf("save list %s: %w", list.ID, store.ErrConflict)
	}
	s.cache.Set(viewsPrefix+list.ID, int64(0), s.ttl)
	return nil
}

func (s *ListStore) Get(_ context.Context, id string) (*types.PackingList, error) {
	raw, ok := s.cache.Get(listPrefix + id)
	if !ok {
		return nil, store.ErrNotFound
	}
	list := copyList(raw.(*types.PackingList))
	if views, ok := s.cache.Get(viewsPrefix + id); ok {
		list.Views = views.(int64)
	}
	return list, nil
}

func (s *ListStore) IncrementViews(_ context.Context, id string) (int64, error) {
	if _, ok := s.cache.Get(listPrefix + id); !ok {
		return 0, store.ErrNotFound
	}
	views, err := s.cache.IncrementInt64(viewsPrefix+id, 1)
	if err != nil {
		// The views entry can expire just before the list does.
		return 0, store.ErrNotFound
	}
	return views, nil
}

func (s *ListStore) Ping(context.Context) error {
	return nil
}

// Len returns the number of lists held, including ones pending expiry.
func (s *ListStore) Len() int {
	return s.cache.ItemCount() / 2
}

func copyList(list *types.PackingList) *types.PackingList {
	cp := *list
	cp.Items = append([]types.PackingItem(nil), list.Items...)
	cp.Trip.Activities = append([]string(nil), list.Trip.Activities...)
	return &cp
}
