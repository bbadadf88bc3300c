package router

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redismock/v9"
	"github.com/packwise/packwise-backend/config"
	"github.com/packwise/packwise-backend/handlers"
	"github.com/packwise/packwise-backend/logger"
	"github.com/packwise/packwise-backend/services"
	"github.com/packwise/packwise-backend/store/memory"
	"github.com/packwise/packwise-backend/types"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	logger.IsTest = true
	gin.SetMode(gin.TestMode)
}

type fakeLimiter struct {
	deny map[string]bool
}

func (f *fakeLimiter) CheckLimit(_ context.Context, key string, limit int, window time.Duration) (services.RateLimitResult, error) {
	if f.deny[key] {
		return services.RateLimitResult{Allowed: false, Limit: limit, RetryAfter: window}, nil
	}
	return services.RateLimitResult{Allowed: true, Limit: limit, Remaining: limit - 1}, nil
}

func testConfig() *config.Config {
	return &config.Config{
		Server: config.ServerConfig{
			Environment:    config.EnvDevelopment,
			AllowedOrigins: []string{"*"},
			FrontendURL:    "https://packwise.app",
			Version:        "test",
		},
		RateLimit: config.RateLimitConfig{RequestsPerWindow: 60, ChatRequests: 10, WindowSeconds: 60},
	}
}

func setupRouter(t *testing.T, features config.FeatureFlags, limiter *fakeLimiter) *gin.Engine {
	t.Helper()
	cfg := testConfig()
	redisClient, _ := redismock.NewClientMock()
	listStore := memory.NewListStore(0)
	lists := services.NewListService(listStore, cfg.Server.FrontendURL)
	usage := services.NewUsageService(redisClient)
	exports := services.NewExportService(lists, nil)
	email := services.NewEmailServiceWithRegistry(&config.EmailConfig{FromAddress: "lists@packwise.app"}, lists, exports, prometheus.NewRegistry())
	affiliates, err := services.NewAffiliateService("")
	require.NoError(t, err)
	checkout, err := services.NewCheckoutService(config.StripeConfig{Tiers: []string{"premium:price_premium"}}, cfg.Server.FrontendURL, usage)
	require.NoError(t, err)

	return SetupRouter(Dependencies{
		Config:           cfg,
		Features:         features,
		Registry:         prometheus.NewRegistry(),
		RateLimiter:      limiter,
		HealthHandler:    handlers.NewHealthHandler(services.NewHealthService(redisClient, listStore, "test")),
		ChatHandler:      handlers.NewChatHandler(services.NewPackingService(nil, usage, 0)),
		ListHandler:      handlers.NewListHandler(lists),
		ExportHandler:    handlers.NewExportHandler(exports),
		EmailHandler:     handlers.NewEmailHandler(email),
		SubscribeHandler: handlers.NewSubscribeHandler(services.NewSubscriptionService(redisClient, email)),
		StatsHandler:     handlers.NewStatsHandler(usage),
		CheckoutHandler:  handlers.NewCheckoutHandler(checkout),
		AffiliateHandler: handlers.NewAffiliateHandler(affiliates),
	})
}

func do(r *gin.Engine, method, path string, body interface{}) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		_ = json.NewEncoder(&buf).Encode(body)
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestRouter_ListRoundTrip(t *testing.T) {
	r := setupRouter(t, config.FeatureFlags{}, &fakeLimiter{})

	w := do(r, http.MethodPost, "/api/lists", types.SaveListRequest{
		Items: []types.PackingItem{{Name: "Passport", Category: "Documents", Quantity: 1}},
		Trip:  types.TripContext{Destination: "Lisbon"},
	})
	require.Equal(t, http.StatusCreated, w.Code)
	assert.NotEmpty(t, w.Header().Get("X-Request-ID"))
	assert.Equal(t, "60", w.Header().Get("X-RateLimit-Limit"))

	var saved types.SaveListResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &saved))
	assert.Equal(t, "https://packwise.app/list/"+saved.ID, saved.ShareURL)

	w = do(r, http.MethodGet, "/api/lists/"+saved.ID, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var list types.PackingList
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &list))
	assert.Equal(t, int64(1), list.Views)

	w = do(r, http.MethodPost, "/api/generate-pdf", types.ExportRequest{ListID: saved.ID})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "packing-list-lisbon.pdf")
}

func TestRouter_UnknownRoute(t *testing.T) {
	r := setupRouter(t, config.FeatureFlags{}, &fakeLimiter{})

	w := do(r, http.MethodGet, "/api/nope", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.JSONEq(t, `{"type":"NOT_FOUND","message":"Route not found","code":"404"}`, w.Body.String())
}

func TestRouter_FeatureFlags(t *testing.T) {
	r := setupRouter(t, config.FeatureFlags{}, &fakeLimiter{})
	assert.Equal(t, http.StatusNotFound, do(r, http.MethodGet, "/api/affiliate/products", nil).Code)
	assert.Equal(t, http.StatusNotFound, do(r, http.MethodPost, "/api/checkout", map[string]string{"tier": "premium"}).Code)
	assert.Equal(t, http.StatusNotFound, do(r, http.MethodPost, "/api/stripe/webhook", nil).Code)

	r = setupRouter(t, config.FeatureFlags{EnableAffiliateUpsells: true, EnableCheckout: true}, &fakeLimiter{})
	assert.Equal(t, http.StatusOK, do(r, http.MethodGet, "/api/affiliate/products", nil).Code)
	// Stripe has no secret key in tests, so checkout reports itself unavailable.
	assert.Equal(t, http.StatusServiceUnavailable, do(r, http.MethodPost, "/api/checkout", map[string]string{"tier": "premium"}).Code)

	w := do(r, http.MethodGet, "/api/checkout/tiers", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"tiers":[]}`, w.Body.String())
}

func TestRouter_WebhookSkipsAPIRateLimit(t *testing.T) {
	limiter := &fakeLimiter{deny: map[string]bool{"api:192.0.2.1": true}}
	r := setupRouter(t, config.FeatureFlags{EnableCheckout: true}, limiter)

	assert.Equal(t, http.StatusTooManyRequests, do(r, http.MethodPost, "/api/lists", nil).Code)

	w := do(r, http.MethodPost, "/api/stripe/webhook", map[string]string{"type": "checkout.session.completed"})
	// Reaches the handler, which rejects it because no webhook secret is set.
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	assert.Empty(t, w.Header().Get("X-RateLimit-Limit"))
}

func TestRouter_ChatRateLimit(t *testing.T) {
	limiter := &fakeLimiter{deny: map[string]bool{"endpoint:POST:/api/chat:192.0.2.1": true}}
	r := setupRouter(t, config.FeatureFlags{}, limiter)

	w := do(r, http.MethodPost, "/api/chat", types.ChatRequest{
		Messages: []types.ChatMessage{{Role: "user", Content: "Weekend in Oslo"}},
	})
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.Equal(t, "60", w.Header().Get("Retry-After"))
}

func TestRouter_ChatWithoutModel(t *testing.T) {
	r := setupRouter(t, config.FeatureFlags{}, &fakeLimiter{})

	w := do(r, http.MethodPost, "/api/chat", types.ChatRequest{
		Messages: []types.ChatMessage{{Role: "user", Content: "Weekend in Oslo"}},
	})
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
}

func TestRouter_HealthAndMetrics(t *testing.T) {
	r := setupRouter(t, config.FeatureFlags{}, &fakeLimiter{})

	w := do(r, http.MethodGet, "/health/liveness", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"status":"UP"`)

	w = do(r, http.MethodGet, "/metrics", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "packwise_http_requests_total")
}
