package handlers

import (
	"context"
	"time"

	"github.com/packwise/packwise-backend/types"
)

// PackingGenerator defines the chat service methods needed by handlers
type PackingGenerator interface {
	Generate(ctx context.Context, req types.ChatRequest) (*types.ChatResponse, error)
}

type ListServiceInterface interface {
	Save(ctx context.Context, req types.SaveListRequest) (*types.SaveListResponse, error)
	Get(ctx context.Context, id string) (*types.PackingList, error)
	ShareLinks(ctx context.Context, id string) (*types.ShareLinks, error)
}

type Exporter interface {
	Export(ctx context.Context, req types.ExportRequest) (*types.ExportResponse, error)
}

type EmailServiceInterface interface {
	SendListEmail(ctx context.Context, req types.SendListEmailRequest) (string, error)
	SendContactMessage(ctx context.Context, msg types.ContactMessage) error
}

type Subscriber interface {
	Subscribe(ctx context.Context, email string) (*types.SubscribeResponse, error)
}

type StatsProvider interface {
	RecordVisit(ctx context.Context)
	GetStats(ctx context.Context) (types.UsageStats, error)
}

type CheckoutServiceInterface interface {
	CreateSession(ctx context.Context, req types.CheckoutRequest) (*types.CheckoutResponse, error)
	HandleWebhook(ctx context.Context, payload []byte, signature string) error
	Tiers() []string
}

type AffiliateServiceInterface interface {
	Recommend(req types.RecommendationRequest) ([]types.Recommendation, error)
	Products(category string) []types.AffiliateProduct
}

type HealthChecker interface {
	CheckHealth(ctx context.Context) types.HealthCheck
	Uptime() time.Duration
	Version() string
}
