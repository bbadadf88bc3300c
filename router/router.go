package router

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/packwise/packwise-backend/config"
	"github.com/packwise/packwise-backend/handlers"
	"github.com/packwise/packwise-backend/middleware"
	"github.com/packwise/packwise-backend/services"
	"github.com/packwise/packwise-backend/types"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

// Dependencies struct holds all dependencies required for setting up routes.
// Checkout and affiliate handlers are optional; their routes are only
// registered when the handler is set and the matching feature flag is on.
type Dependencies struct {
	Config           *config.Config
	Features         config.FeatureFlags
	Registry         *prometheus.Registry
	RateLimiter      services.RateLimiterInterface
	HealthHandler    *handlers.HealthHandler
	ChatHandler      *handlers.ChatHandler
	ListHandler      *handlers.ListHandler
	ExportHandler    *handlers.ExportHandler
	EmailHandler     *handlers.EmailHandler
	SubscribeHandler *handlers.SubscribeHandler
	StatsHandler     *handlers.StatsHandler
	CheckoutHandler  *handlers.CheckoutHandler
	AffiliateHandler *handlers.AffiliateHandler
}

// SetupRouter configures and returns the main Gin engine with all routes defined.
func SetupRouter(deps Dependencies) *gin.Engine {
	r := gin.New()

	// Global Middleware
	r.Use(gin.Recovery())
	r.Use(middleware.RequestIDMiddleware())
	r.Use(middleware.ErrorHandler())
	r.Use(middleware.CORSMiddleware(&deps.Config.Server))
	r.Use(middleware.SecurityHeadersMiddleware(deps.Config))
	if deps.Registry != nil {
		r.Use(middleware.NewHTTPMetrics(deps.Registry).Middleware())
		r.GET("/metrics", gin.WrapH(promhttp.HandlerFor(deps.Registry, promhttp.HandlerOpts{})))
	}

	r.GET("/health", deps.HealthHandler.DetailedHealth)
	r.GET("/health/liveness", deps.HealthHandler.LivenessCheck)
	r.GET("/health/readiness", deps.HealthHandler.ReadinessCheck)

	if !deps.Config.IsProduction() {
		r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	window := time.Duration(deps.Config.RateLimit.WindowSeconds) * time.Second
	api := r.Group("/api")
	api.Use(middleware.APIRateLimiter(deps.RateLimiter, middleware.RateLimitConfig{
		Requests: deps.Config.RateLimit.RequestsPerWindow,
		Window:   window,
	}))
	{
		api.POST("/chat",
			middleware.EndpointRateLimiter(deps.RateLimiter, deps.Config.RateLimit.ChatRequests, window),
			deps.ChatHandler.Chat,
		)
		api.POST("/contact", deps.EmailHandler.Contact)

		api.POST("/lists", deps.ListHandler.SaveList)
		api.GET("/lists/:id", deps.ListHandler.GetList)
		api.GET("/lists/:id/share", deps.ListHandler.ShareList)

		api.POST("/generate-pdf", deps.ExportHandler.GeneratePDF)
		api.POST("/send-email", deps.EmailHandler.SendEmail)
		api.POST("/subscribe", deps.SubscribeHandler.Subscribe)

		api.GET("/stats", deps.StatsHandler.GetStats)
		api.POST("/stats", deps.StatsHandler.RecordVisit)

		if checkoutEnabled(deps) {
			api.POST("/checkout", deps.CheckoutHandler.CreateCheckout)
			api.GET("/checkout/tiers", deps.CheckoutHandler.Tiers)
		}

		if deps.Features.EnableAffiliateUpsells && deps.AffiliateHandler != nil {
			affiliate := api.Group("/affiliate")
			affiliate.POST("/recommendations", deps.AffiliateHandler.Recommendations)
			affiliate.GET("/products", deps.AffiliateHandler.Products)
		}
	}

	// Stripe delivers webhooks from a small set of shared IPs, so the
	// per-IP API limit does not apply here. Requests are signature checked.
	if checkoutEnabled(deps) {
		r.POST("/api/stripe/webhook", deps.CheckoutHandler.StripeWebhook)
	}

	r.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, types.ErrorResponse{
			Type:    "NOT_FOUND",
			Message: "Route not found",
			Code:    "404",
		})
	})

	return r
}

func checkoutEnabled(deps Dependencies) bool {
	return deps.Features.EnableCheckout && deps.CheckoutHandler != nil
}
