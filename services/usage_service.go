package services

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/packwise/packwise-backend/logger"
	"github.com/packwise/packwise-backend/types"
	"github.com/redis/go-redis/v9"
)

const (
	usageTotalKey   = "usage:total"
	usageDailyKey   = "usage:daily:"
	usageDailyTTL   = 7 * 24 * time.Hour
	checkoutDoneKey = "checkout:completed:"
)

// UsageRecorder records anonymous product usage.
type UsageRecorder interface {
	RecordVisit(ctx context.Context)
}

// UsageService keeps the daily and total usage counters in Redis. Writes are
// best effort: failures are logged and never surface to the caller.
type UsageService struct {
	redis *redis.Client
	now   func() time.Time
}

func NewUsageService(redis *redis.Client) *UsageService {
	return &UsageService{redis: redis, now: time.Now}
}

func (s *UsageService) dailyKey() (string, string) {
	date := s.now().UTC().Format("2006-01-02")
	return usageDailyKey + date, date
}

func (s *UsageService) RecordVisit(ctx context.Context) {
	dailyKey, _ := s.dailyKey()

	pipe := s.redis.TxPipeline()
	pipe.Incr(ctx, usageTotalKey)
	pipe.Incr(ctx, dailyKey)
	pipe.Expire(ctx, dailyKey, usageDailyTTL)
	if _, err := pipe.Exec(ctx); err != nil {
		logger.GetLogger().Warnw("Failed to record usage", "error", err)
	}
}

func (s *UsageService) GetStats(ctx context.Context) (types.UsageStats, error) {
	dailyKey, date := s.dailyKey()
	stats := types.UsageStats{Date: date}

	values, err := s.redis.MGet(ctx, usageTotalKey, dailyKey).Result()
	if err != nil {
		return stats, fmt.Errorf("read usage counters: %w", err)
	}

	if stats.TotalUsers, err = counterValue(values[0]); err != nil {
		return stats, err
	}
	if stats.DailyUsers, err = counterValue(values[1]); err != nil {
		return stats, err
	}
	return stats, nil
}

// RecordCheckout counts a completed checkout for a tier.
func (s *UsageService) RecordCheckout(ctx context.Context, tier string) {
	if tier == "" {
		tier = "unknown"
	}
	if err := s.redis.Incr(ctx, checkoutDoneKey+tier).Err(); err != nil {
		logger.GetLogger().Warnw("Failed to record checkout", "tier", tier, "error", err)
	}
}

func counterValue(v interface{}) (int64, error) {
	switch val := v.(type) {
	case nil:
		return 0, nil
	case string:
		n, err := strconv.ParseInt(val, 10, 64)
		if err != nil {
			return 0, fmt.Errorf("invalid usage counter %q: %w", val, err)
		}
		return n, nil
	default:
		return 0, fmt.Errorf("unexpected usage counter type %T", v)
	}
}
