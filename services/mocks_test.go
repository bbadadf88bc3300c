package services

import (
	"context"

	"github.com/packwise/packwise-backend/types"
	"github.com/resend/resend-go/v2"
	"github.com/stretchr/testify/mock"
)

type mockTextGenerator struct {
	mock.Mock
}

func (m *mockTextGenerator) Generate(ctx context.Context, systemPrompt, prompt string) (string, error) {
	args := m.Called(ctx, systemPrompt, prompt)
	return args.String(0), args.Error(1)
}

func (m *mockTextGenerator) ModelName() string {
	return "test-model"
}

type mockUsageRecorder struct {
	mock.Mock
}

func (m *mockUsageRecorder) RecordVisit(ctx context.Context) {
	m.Called(ctx)
}

type mockEmailSender struct {
	mock.Mock
}

func (m *mockEmailSender) SendWithContext(ctx context.Context, params *resend.SendEmailRequest) (*resend.SendEmailResponse, error) {
	args := m.Called(ctx, params)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*resend.SendEmailResponse), args.Error(1)
}

type mockUploader struct {
	mock.Mock
}

func (m *mockUploader) Put(ctx context.Context, key string, data []byte) (string, error) {
	args := m.Called(ctx, key, data)
	return args.String(0), args.Error(1)
}

func (m *mockUploader) PresignGet(ctx context.Context, key, filename string) (string, error) {
	args := m.Called(ctx, key, filename)
	return args.String(0), args.Error(1)
}

type mockWelcomeSender struct {
	mock.Mock
}

func (m *mockWelcomeSender) SendWelcome(ctx context.Context, to string) error {
	args := m.Called(ctx, to)
	return args.Error(0)
}

type mockCheckoutRecorder struct {
	mock.Mock
}

func (m *mockCheckoutRecorder) RecordCheckout(ctx context.Context, tier string) {
	m.Called(ctx, tier)
}

type mockListStore struct {
	mock.Mock
}

func (m *mockListStore) Save(ctx context.Context, list *types.PackingList) error {
	return m.Called(ctx, list).Error(0)
}

func (m *mockListStore) Get(ctx context.Context, id string) (*types.PackingList, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*types.PackingList), args.Error(1)
}

func (m *mockListStore) IncrementViews(ctx context.Context, id string) (int64, error) {
	args := m.Called(ctx, id)
	return args.Get(0).(int64), args.Error(1)
}

func (m *mockListStore) Ping(ctx context.Context) error {
	return m.Called(ctx).Error(0)
}
