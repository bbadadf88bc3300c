// @title           Packwise API
// @version         1.0
// @description     Packing list generation, sharing and export.
// @BasePath        /api
package main

import (
	"context"
	"crypto/tls"
	"errors"
	"net/http"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/packwise/packwise-backend/config"
	"github.com/packwise/packwise-backend/handlers"
	"github.com/packwise/packwise-backend/logger"
	"github.com/packwise/packwise-backend/pkg/objectstore"
	"github.com/packwise/packwise-backend/router"
	"github.com/packwise/packwise-backend/services"
	"github.com/packwise/packwise-backend/store"
	"github.com/packwise/packwise-backend/store/memory"
	"github.com/packwise/packwise-backend/store/redisstore"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/redis/go-redis/v9"
)

func main() {
	// A missing .env is fine; deployments set the environment directly.
	_ = godotenv.Load()

	logger.InitLogger()
	log := logger.GetLogger()
	defer logger.Close()

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	features := config.GetFeatureFlags()

	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	redisClient := newRedisClient(cfg)
	defer redisClient.Close()

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	if err := redisClient.Ping(pingCtx).Err(); err != nil {
		log.Warnw("Redis is not reachable at startup", "address", cfg.Redis.Address, "error", err)
	}
	cancel()

	var listStore store.ListStore
	listTTL := time.Duration(cfg.Lists.TTLHours) * time.Hour
	switch cfg.Lists.Backend {
	case config.ListsBackendRedis:
		listStore = redisstore.NewListStore(redisClient, listTTL)
	default:
		listStore = memory.NewListStore(listTTL)
	}
	log.Infow("List store selected", "backend", cfg.Lists.Backend, "ttl", listTTL)

	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	var generator services.TextGenerator
	if gemini, err := services.NewGeminiClient(ctx, cfg.LLM); err != nil {
		log.Warnw("Packing list generation disabled", "error", err)
	} else {
		generator = gemini
	}

	var uploader objectstore.Uploader
	if features.EnableExportUpload && cfg.Export.R2Enabled() {
		uploader = objectstore.NewR2Bucket(
			cfg.Export.R2AccountID,
			cfg.Export.R2Bucket,
			cfg.Export.R2AccessKeyID,
			cfg.Export.R2SecretAccessKey,
			time.Duration(cfg.Export.PresignMinutes)*time.Minute,
		)
	}

	usageService := services.NewUsageService(redisClient)
	rateLimitService := services.NewRateLimitService(redisClient)
	listService := services.NewListService(listStore, cfg.Server.FrontendURL)
	packingService := services.NewPackingService(generator, usageService, time.Duration(cfg.LLM.TimeoutSeconds)*time.Second)
	exportService := services.NewExportService(listService, uploader)
	emailService := services.NewEmailServiceWithRegistry(&cfg.Email, listService, exportService, registry)
	subscriptionService := services.NewSubscriptionService(redisClient, emailService)
	healthService := services.NewHealthService(redisClient, listStore, cfg.Server.Version)

	deps := router.Dependencies{
		Config:           cfg,
		Features:         features,
		Registry:         registry,
		RateLimiter:      rateLimitService,
		HealthHandler:    handlers.NewHealthHandler(healthService),
		ChatHandler:      handlers.NewChatHandler(packingService),
		ListHandler:      handlers.NewListHandler(listService),
		ExportHandler:    handlers.NewExportHandler(exportService),
		EmailHandler:     handlers.NewEmailHandler(emailService),
		SubscribeHandler: handlers.NewSubscribeHandler(subscriptionService),
		StatsHandler:     handlers.NewStatsHandler(usageService),
	}

	if features.EnableCheckout {
		checkoutService, err := services.NewCheckoutService(cfg.Stripe, cfg.Server.FrontendURL, usageService)
		if err != nil {
			log.Fatalf("Failed to initialize checkout: %v", err)
		}
		deps.CheckoutHandler = handlers.NewCheckoutHandler(checkoutService)
	}

	if features.EnableAffiliateUpsells {
		affiliateService, err := services.NewAffiliateService(cfg.Affiliate.Tag)
		if err != nil {
			log.Fatalf("Failed to load affiliate catalog: %v", err)
		}
		deps.AffiliateHandler = handlers.NewAffiliateHandler(affiliateService)
	}

	r := router.SetupRouter(deps)
	if err := r.SetTrustedProxies(cfg.Server.TrustedProxies); err != nil {
		log.Fatalf("Invalid trusted proxies: %v", err)
	}

	srv := &http.Server{
		Addr:              ":" + cfg.Server.Port,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		// Model calls can take up to the LLM timeout.
		WriteTimeout: time.Duration(cfg.LLM.TimeoutSeconds+15) * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	go func() {
		log.Infow("Starting server",
			"port", cfg.Server.Port,
			"environment", cfg.Server.Environment,
			"version", cfg.Server.Version,
			"features", features)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("Server failed: %v", err)
		}
	}()

	<-ctx.Done()
	stop()
	log.Info("Shutting down server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), time.Duration(cfg.Server.ShutdownSeconds)*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Errorw("Server forced to shutdown", "error", err)
	}
	log.Info("Server exited")
}

func newRedisClient(cfg *config.Config) *redis.Client {
	opts := &redis.Options{
		Addr:         cfg.Redis.Address,
		Password:     cfg.Redis.Password,
		DB:           cfg.Redis.DB,
		PoolSize:     cfg.Redis.PoolSize,
		MinIdleConns: cfg.Redis.MinIdleConns,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
	}

	if cfg.Redis.UseTLS {
		host := cfg.Redis.Address
		if h, _, ok := strings.Cut(host, ":"); ok {
			host = h
		}
		opts.TLSConfig = &tls.Config{
			ServerName: host,
			MinVersion: tls.VersionTLS12,
		}
	}

	return redis.NewClient(opts)
}
