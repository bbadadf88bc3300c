package services

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/packwise/packwise-backend/logger"
	"github.com/packwise/packwise-backend/store"
	"github.com/packwise/packwise-backend/types"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

const (
	healthCheckTimeout   = 2 * time.Second
	slowComponentLatency = 500 * time.Millisecond
)

type healthCheckFunc func(ctx context.Context) error

type HealthService struct {
	checks    map[string]healthCheckFunc
	version   string
	startTime time.Time
	log       *zap.SugaredLogger
}

func NewHealthService(redisClient *redis.Client, lists store.ListStore, version string) *HealthService {
	checks := make(map[string]healthCheckFunc)
	if redisClient != nil {
		checks["redis"] = func(ctx context.Context) error {
			return redisClient.Ping(ctx).Err()
		}
	}
	if lists != nil {
		checks["list_store"] = lists.Ping
	}

	return &HealthService{
		checks:    checks,
		version:   version,
		startTime: time.Now(),
		log:       logger.GetLogger(),
	}
}

// CheckHealth pings every component concurrently. A failed component makes
// the service DOWN, a slow one DEGRADED.
func (h *HealthService) CheckHealth(ctx context.Context) types.HealthCheck {
	var mu sync.Mutex
	components := make(map[string]types.HealthComponent, len(h.checks))

	g, gctx := errgroup.WithContext(ctx)
	for name, check := range h.checks {
		g.Go(func() error {
			component := h.checkComponent(gctx, name, check)
			mu.Lock()
			components[name] = component
			mu.Unlock()
			return nil
		})
	}
	_ = g.Wait()

	overallStatus := types.HealthStatusUp
	for _, c := range components {
		switch c.Status {
		case types.HealthStatusDown:
			overallStatus = types.HealthStatusDown
		case types.HealthStatusDegraded:
			if overallStatus != types.HealthStatusDown {
				overallStatus = types.HealthStatusDegraded
			}
		}
	}

	return types.HealthCheck{
		Status:     overallStatus,
		Components: components,
		Version:    h.version,
		Timestamp:  time.Now().UTC().Format(time.RFC3339),
		Uptime:     h.Uptime().String(),
	}
}

func (h *HealthService) checkComponent(ctx context.Context, name string, check healthCheckFunc) types.HealthComponent {
	ctx, cancel := context.WithTimeout(ctx, healthCheckTimeout)
	defer cancel()

	start := time.Now()
	if err := check(ctx); err != nil {
		h.log.Errorw("Health check failed", "component", name, "error", err)
		return types.HealthComponent{
			Status:  types.HealthStatusDown,
			Details: fmt.Sprintf("%s check failed", name),
		}
	}

	if latency := time.Since(start); latency > slowComponentLatency {
		return types.HealthComponent{
			Status:  types.HealthStatusDegraded,
			Details: fmt.Sprintf("slow response: %s", latency.Round(time.Millisecond)),
		}
	}
	return types.HealthComponent{Status: types.HealthStatusUp}
}

func (h *HealthService) Uptime() time.Duration {
	return time.Since(h.startTime).Round(time.Second)
}

func (h *HealthService) Version() string {
	return h.version
}
