// Package redisstore provides a ListStore backed by Redis so saved lists are
// shared by every instance of the service.
package redisstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/packwise/packwise-backend/store"
	"github.com/packwise/packwise-backend/types"
	"github.com/redis/go-redis/v9"
)

const keyPrefix = "list:"

type ListStore struct {
	redis *redis.Client
	ttl   time.Duration
}

// NewListStore creates a Redis-backed store. A ttl of zero never expires lists.
func NewListStore(client *redis.Client, ttl time.Duration) *ListStore {
	if ttl < 0 {
		ttl = 0
	}
	return &ListStore{redis: client, ttl: ttl}
}

func listKey(id string) string {
	return keyPrefix + id
}

func viewsKey(id string) string {
	return keyPrefix + id + ":views"
}

func (s *ListStore) Save(ctx context.Context, list *types.PackingList) error {
	stored := *list
	stored.Views = 0
	data, err := json.Marshal(&stored)
	if err != nil {
		return fmt.Errorf("marshal list %s: %w", list.ID, err)
	}

	ok, err := s.redis.SetNX(ctx, listKey(list.ID), string(data), s.ttl).Result()
	if err != nil {
		return fmt.Errorf("save list %s: %w", list.ID, err)
	}
	if !ok {
		return fmt.Errorf("save list %s: %w", list.ID, store.ErrConflict)
	}

	if err := s.redis.Set(ctx, viewsKey(list.ID), 0, s.ttl).Err(); err != nil {
		return fmt.Errorf("init views for list %s: %w", list.ID, err)
	}
	return nil
}

func (s *ListStore) Get(ctx context.Context, id string) (*types.PackingList, error) {
	data, err := s.redis.Get(ctx, listKey(id)).Result()
	if errors.Is(err, redis.Nil) {
		return nil, store.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get list %s: %w", id, err)
	}

	var list types.PackingList
	if err := json.Unmarshal([]byte(data), &list); err != nil {
		return nil, fmt.Errorf("decode list %s: %w", id, err)
	}

	views, err := s.redis.Get(ctx, viewsKey(id)).Int64()
	if err != nil && !errors.Is(err, redis.Nil) {
		return nil, fmt.Errorf("get views for list %s: %w", id, err)
	}
	list.Views = views
	return &list, nil
}

// incrementViews bumps the view counter only while the list exists and keeps
// the counter's expiry in step with the list's remaining TTL.
// Returns -1 when the list is gone.
var incrementViews = redis.NewScript(`
	if redis.call("exists", KEYS[1]) == 0 then
		return -1
	end
	local views = redis.call("incr", KEYS[2])
	local ttl = redis.call("pttl", KEYS[1])
	if ttl > 0 then
		redis.call("pexpire", KEYS[2], ttl)
	end
	return views
`)

func (s *ListStore) IncrementViews(ctx context.Context, id string) (int64, error) {
	views, err := incrementViews.Run(ctx, s.redis, []string{listKey(id), viewsKey(id)}).Int64()
	if err != nil {
		return 0, fmt.Errorf("increment views for list %s: %w", id, err)
	}
	if views < 0 {
		return 0, store.ErrNotFound
	}
	return views, nil
}

func (s *ListStore) Ping(ctx context.Context) error {
	return s.redis.Ping(ctx).Err()
}
