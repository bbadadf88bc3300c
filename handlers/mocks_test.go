package handlers

import (
	"context"
	"time"

	"github.com/packwise/packwise-backend/types"
	"github.com/stretchr/testify/mock"
)

type MockPackingGenerator struct {
	mock.Mock
}

func (m *MockPackingGenerator) Generate(ctx context.Context, req types.ChatRequest) (*types.ChatResponse, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*types.ChatResponse), args.Error(1)
}

type MockListService struct {
	mock.Mock
}

func (m *MockListService) Save(ctx context.Context, req types.SaveListRequest) (*types.SaveListResponse, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*types.SaveListResponse), args.Error(1)
}

func (m *MockListService) Get(ctx context.Context, id string) (*types.PackingList, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*types.PackingList), args.Error(1)
}

func (m *MockListService) ShareLinks(ctx context.Context, id string) (*types.ShareLinks, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*types.ShareLinks), args.Error(1)
}

type MockExporter struct {
	mock.Mock
}

func (m *MockExporter) Export(ctx context.Context, req types.ExportRequest) (*types.ExportResponse, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*types.ExportResponse), args.Error(1)
}

type MockEmailService struct {
	mock.Mock
}

func (m *MockEmailService) SendListEmail(ctx context.Context, req types.SendListEmailRequest) (string, error) {
	args := m.Called(ctx, req)
	return args.String(0), args.Error(1)
}

func (m *MockEmailService) SendContactMessage(ctx context.Context, msg types.ContactMessage) error {
	return m.Called(ctx, msg).Error(0)
}

type MockSubscriber struct {
	mock.Mock
}

func (m *MockSubscriber) Subscribe(ctx context.Context, email string) (*types.SubscribeResponse, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*types.SubscribeResponse), args.Error(1)
}

type MockStatsProvider struct {
	mock.Mock
}

func (m *MockStatsProvider) RecordVisit(ctx context.Context) {
	m.Called(ctx)
}

func (m *MockStatsProvider) GetStats(ctx context.Context) (types.UsageStats, error) {
	args := m.Called(ctx)
	return args.Get(0).(types.UsageStats), args.Error(1)
}

type MockCheckoutService struct {
	mock.Mock
}

func (m *MockCheckoutService) CreateSession(ctx context.Context, req types.CheckoutRequest) (*types.CheckoutResponse, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*types.CheckoutResponse), args.Error(1)
}

func (m *MockCheckoutService) HandleWebhook(ctx context.Context, payload []byte, signature string) error {
	return m.Called(ctx, payload, signature).Error(0)
}

func (m *MockCheckoutService) Tiers() []string {
	return m.Called().Get(0).([]string)
}

type MockAffiliateService struct {
	mock.Mock
}

func (m *MockAffiliateService) Recommend(req types.RecommendationRequest) ([]types.Recommendation, error) {
	args := m.Called(req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]types.Recommendation), args.Error(1)
}

func (m *MockAffiliateService) Products(category string) []types.AffiliateProduct {
	return m.Called(category).Get(0).([]types.AffiliateProduct)
}

type MockHealthChecker struct {
	mock.Mock
}

func (m *MockHealthChecker) CheckHealth(ctx context.Context) types.HealthCheck {
	return m.Called(ctx).Get(0).(types.HealthCheck)
}

func (m *MockHealthChecker) Uptime() time.Duration {
	return 90 * time.Second
}

func (m *MockHealthChecker) Version() string {
	return "test"
}
