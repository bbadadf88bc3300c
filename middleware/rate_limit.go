package middleware

import (
	"fmt"
	"math"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	apperrors "github.com/packwise/packwise-backend/errors"
	"github.com/packwise/packwise-backend/logger"
	"github.com/packwise/packwise-backend/services"
)

// RateLimitConfig holds the settings of one limiter.
type RateLimitConfig struct {
	// Requests allowed per client within Window
	Requests int
	Window   time.Duration
}

// DefaultRateLimitConfig returns the global API limit.
func DefaultRateLimitConfig() RateLimitConfig {
	return RateLimitConfig{
		Requests: 60,
		Window:   time.Minute,
	}
}

// APIRateLimiter applies one sliding-window limit per client IP to every
// request it wraps.
func APIRateLimiter(rateLimiter services.RateLimiterInterface, config RateLimitConfig) gin.HandlerFunc {
	return rateLimitHandler(rateLimiter, config, func(c *gin.Context) string {
		return "api:" + c.ClientIP()
	}, "Too many requests. Please try again later.")
}

// EndpointRateLimiter applies a separate limit per route and client IP, for
// endpoints that are more expensive than the rest of the API.
func EndpointRateLimiter(rateLimiter services.RateLimiterInterface, requests int, window time.Duration) gin.HandlerFunc {
	config := RateLimitConfig{Requests: requests, Window: window}
	return rateLimitHandler(rateLimiter, config, func(c *gin.Context) string {
		return fmt.Sprintf("endpoint:%s:%s:%s", c.Request.Method, c.FullPath(), c.ClientIP())
	}, "Too many requests to this endpoint. Please try again later.")
}

func rateLimitHandler(rateLimiter services.RateLimiterInterface, config RateLimitConfig, keyFn func(*gin.Context) string, message string) gin.HandlerFunc {
	return func(c *gin.Context) {
		key := keyFn(c)
		result, err := rateLimiter.CheckLimit(c.Request.Context(), key, config.Requests, config.Window)
		if err != nil {
			// Fail open: a limiter outage must not take the API down.
			logger.GetLogger().Warnw("Rate limit check failed", "key", key, "error", err)
			c.Next()
			return
		}

		setRateLimitHeaders(c, result, config.Window)

		if !result.Allowed {
			retryAfter := int(math.Ceil(result.RetryAfter.Seconds()))
			_ = c.Error(apperrors.RateLimitExceeded(message, retryAfter))
			c.Abort()
			return
		}

		c.Next()
	}
}

// setRateLimitHeaders sets the standard rate limit headers
func setRateLimitHeaders(c *gin.Context, result services.RateLimitResult, window time.Duration) {
	reset := window
	if !result.Allowed {
		reset = result.RetryAfter
	}
	c.Header("X-RateLimit-Limit", strconv.Itoa(result.Limit))
	c.Header("X-RateLimit-Remaining", strconv.Itoa(result.Remaining))
	c.Header("X-RateLimit-Reset", strconv.FormatInt(time.Now().Add(reset).Unix(), 10))
}
