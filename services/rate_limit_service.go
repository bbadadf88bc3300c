package services

import (
	"context"
	"fmt"
	"strconv"
	"sync/atomic"
	"time"

	"github.com/redis/go-redis/v9"
)

// RateLimitResult is the outcome of a single limiter check.
type RateLimitResult struct {
	Allowed    bool
	Limit      int
	Remaining  int
	RetryAfter time.Duration
}

// RateLimiterInterface defines the contract for rate limiting operations.
type RateLimiterInterface interface {
	CheckLimit(ctx context.Context, key string, limit int, window time.Duration) (RateLimitResult, error)
}

// RateLimitService implements a sliding-window log limiter on Redis sorted
// sets. Each accepted request is one member scored by its timestamp in ms.
type RateLimitService struct {
	redis     *redis.Client
	keyPrefix string
	now       func() time.Time
	seq       atomic.Uint64
}

func NewRateLimitService(redis *redis.Client) *RateLimitService {
	return &RateLimitService{
		redis:     redis,
		keyPrefix: "rate_limit:",
		now:       time.Now,
	}
}

func (s *RateLimitService) CheckLimit(ctx context.Context, key string, limit int, window time.Duration) (RateLimitResult, error) {
	rKey := s.keyPrefix + key
	now := s.now()
	nowMs := now.UnixMilli()
	windowStart := nowMs - window.Milliseconds()
	member := fmt.Sprintf("%d-%d", now.UnixNano(), s.seq.Add(1))

	pipe := s.redis.TxPipeline()
	pipe.ZRemRangeByScore(ctx, rKey, "-inf", strconv.FormatInt(windowStart, 10))
	card := pipe.ZCard(ctx, rKey)
	pipe.ZAdd(ctx, rKey, redis.Z{Score: float64(nowMs), Member: member})
	pipe.PExpire(ctx, rKey, window)

	if _, err := pipe.Exec(ctx); err != nil {
		return RateLimitResult{}, err
	}

	count := card.Val()
	if count < int64(limit) {
		return RateLimitResult{
			Allowed:   true,
			Limit:     limit,
			Remaining: limit - int(count) - 1,
		}, nil
	}

	// Rejected requests do not occupy a slot in the window.
	if err := s.redis.ZRem(ctx, rKey, member).Err(); err != nil {
		return RateLimitResult{}, err
	}

	retryAfter := window
	oldest, err := s.redis.ZRangeWithScores(ctx, rKey, 0, 0).Result()
	if err != nil {
		return RateLimitResult{}, err
	}
	if len(oldest) > 0 {
		freedAt := int64(oldest[0].Score) + window.Milliseconds()
		retryAfter = time.Duration(freedAt-nowMs) * time.Millisecond
	}
	if retryAfter < time.Second {
		retryAfter = time.Second
	}

	return RateLimitResult{
		Allowed:    false,
		Limit:      limit,
		Remaining:  0,
		RetryAfter: retryAfter,
	}, nil
}
