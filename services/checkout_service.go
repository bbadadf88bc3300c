package services

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"github.com/google/uuid"
	"github.com/packwise/packwise-backend/config"
	apperrors "github.com/packwise/packwise-backend/errors"
	"github.com/packwise/packwise-backend/logger"
	"github.com/packwise/packwise-backend/types"
	"github.com/stripe/stripe-go/v83"
	"github.com/stripe/stripe-go/v83/checkout/session"
	"github.com/stripe/stripe-go/v83/webhook"
)

const paymentProvider = "payment provider"

// CheckoutRecorder counts completed checkouts.
type CheckoutRecorder interface {
	RecordCheckout(ctx context.Context, tier string)
}

// CheckoutService creates Stripe Checkout sessions for paid tiers and
// processes the resulting webhooks.
type CheckoutService struct {
	prices        map[string]string
	webhookSecret string
	frontendURL   string
	enabled       bool
	recorder      CheckoutRecorder
	createSession func(params *stripe.CheckoutSessionParams) (*stripe.CheckoutSession, error)
}

func NewCheckoutService(cfg config.StripeConfig, frontendURL string, recorder CheckoutRecorder) (*CheckoutService, error) {
	prices, err := cfg.PriceTable()
	if err != nil {
		return nil, err
	}
	if cfg.Enabled() {
		stripe.Key = cfg.SecretKey
	}
	return &CheckoutService{
		prices:        prices,
		webhookSecret: cfg.WebhookSecret,
		frontendURL:   strings.TrimRight(frontendURL, "/"),
		enabled:       cfg.Enabled(),
		recorder:      recorder,
		createSession: session.New,
	}, nil
}

// Tiers returns the purchasable tier names in sorted order. It is empty while
// checkout is not configured.
func (s *CheckoutService) Tiers() []string {
	tiers := make([]string, 0, len(s.prices))
	if !s.enabled {
		return tiers
	}
	for tier := range s.prices {
		tiers = append(tiers, tier)
	}
	sort.Strings(tiers)
	return tiers
}

func (s *CheckoutService) CreateSession(ctx context.Context, req types.CheckoutRequest) (*types.CheckoutResponse, error) {
	if !s.enabled {
		return nil, apperrors.ServiceUnavailable("Checkout is not configured")
	}

	tier := strings.ToLower(strings.TrimSpace(req.Tier))
	priceID, ok := s.prices[tier]
	if !ok {
		return nil, apperrors.ValidationFailed("Unknown tier", fmt.Sprintf("tier %q is not available", req.Tier))
	}

	params := &stripe.CheckoutSessionParams{
		Mode: stripe.String(string(stripe.CheckoutSessionModePayment)),
		LineItems: []*stripe.CheckoutSessionLineItemParams{
			{
				Price:    stripe.String(priceID),
				Quantity: stripe.Int64(1),
			},
		},
		SuccessURL: stripe.String(s.frontendURL + "/checkout/success?session_id={CHECKOUT_SESSION_ID}"),
		CancelURL:  stripe.String(s.frontendURL + "/pricing?canceled=true"),
	}
	params.AddMetadata("tier", tier)

	if req.Email != "" {
		email, err := ValidateEmailAddress(req.Email)
		if err != nil {
			return nil, err
		}
		params.CustomerEmail = stripe.String(email)
	}
	if req.ListID != "" {
		if _, err := uuid.Parse(req.ListID); err != nil {
			return nil, apperrors.ValidationFailed("Invalid list ID", "listId must be a saved list ID")
		}
		params.AddMetadata("listId", req.ListID)
		params.ClientReferenceID = stripe.String(req.ListID)
	}

	params.Context = ctx
	sess, err := s.createSession(params)
	if err != nil {
		logger.GetLogger().Errorw("Failed to create checkout session", "tier", tier, "error", err)
		return nil, apperrors.Upstream(paymentProvider, err)
	}

	logger.GetLogger().Infow("Created checkout session", "tier", tier, "sessionID", sess.ID)
	return &types.CheckoutResponse{SessionID: sess.ID, URL: sess.URL}, nil
}

// HandleWebhook verifies a Stripe event and records completed checkouts.
// Unhandled event types are acknowledged and ignored.
func (s *CheckoutService) HandleWebhook(ctx context.Context, payload []byte, signature string) error {
	if s.webhookSecret == "" {
		return apperrors.ServiceUnavailable("Checkout webhooks are not configured")
	}

	log := logger.GetLogger()
	event, err := webhook.ConstructEventWithOptions(payload, signature, s.webhookSecret,
		webhook.ConstructEventOptions{IgnoreAPIVersionMismatch: true})
	if err != nil {
		log.Warnw("Rejected webhook", "error", err)
		return apperrors.ValidationFailed("Invalid webhook signature", err.Error())
	}

	switch event.Type {
	case stripe.EventTypeCheckoutSessionCompleted:
		var sess stripe.CheckoutSession
		if err := json.Unmarshal(event.Data.Raw, &sess); err != nil {
			return apperrors.ValidationFailed("Invalid webhook payload", err.Error())
		}
		tier := sess.Metadata["tier"]
		if s.recorder != nil {
			s.recorder.RecordCheckout(ctx, tier)
		}
		log.Infow("Checkout completed",
			"sessionID", sess.ID,
			"tier", tier,
			"listID", sess.Metadata["listId"])
	default:
		log.Debugw("Ignoring webhook event", "type", event.Type, "id", event.ID)
	}
	return nil
}
