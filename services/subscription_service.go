package services

import (
	"context"
	"strings"

	apperrors "github.com/packwise/packwise-backend/errors"
	"github.com/packwise/packwise-backend/logger"
	"github.com/packwise/packwise-backend/types"
	"github.com/redis/go-redis/v9"
)

const subscribersKey = "subscribers"

// WelcomeSender sends the subscription confirmation email.
type WelcomeSender interface {
	SendWelcome(ctx context.Context, to string) error
}

// SubscriptionService keeps newsletter subscribers in a Redis set.
type SubscriptionService struct {
	redis   *redis.Client
	welcome WelcomeSender
}

func NewSubscriptionService(redis *redis.Client, welcome WelcomeSender) *SubscriptionService {
	return &SubscriptionService{redis: redis, welcome: welcome}
}

func (s *SubscriptionService) Subscribe(ctx context.Context, email string) (*types.SubscribeResponse, error) {
	addr, err := ValidateEmailAddress(email)
	if err != nil {
		return nil, err
	}
	addr = strings.ToLower(addr)

	added, err := s.redis.SAdd(ctx, subscribersKey, addr).Result()
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.ServerError, "Failed to store subscription")
	}

	log := logger.GetLogger()
	if added == 0 {
		log.Infow("Address already subscribed", "email", logger.MaskEmail(addr))
		return &types.SubscribeResponse{Subscribed: true, AlreadySubscribed: true}, nil
	}

	log.Infow("New subscriber", "email", logger.MaskEmail(addr))
	if s.welcome != nil {
		if err := s.welcome.SendWelcome(ctx, addr); err != nil {
			log.Warnw("Failed to send welcome email", "email", logger.MaskEmail(addr), "error", err)
		}
	}

	return &types.SubscribeResponse{Subscribed: true}, nil
}
