package handlers

import (
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	apperrors "github.com/packwise/packwise-backend/errors"
	"github.com/packwise/packwise-backend/types"
)

// Stripe recommends accepting event payloads up to 64KB.
const maxWebhookBodyBytes = 65536

type CheckoutHandler struct {
	checkout CheckoutServiceInterface
}

func NewCheckoutHandler(checkout CheckoutServiceInterface) *CheckoutHandler {
	return &CheckoutHandler{checkout: checkout}
}

// CreateCheckout godoc
// @Summary      Start a checkout
// @Description  Creates a hosted checkout session for a paid tier
// @Tags         checkout
// @Accept       json
// @Produce      json
// @Param        body  body      types.CheckoutRequest  true  "Tier and optional customer details"
// @Success      200   {object}  types.CheckoutResponse
// @Failure      400   {object}  types.ErrorResponse
// @Failure      502   {object}  types.ErrorResponse
// @Failure      503   {object}  types.ErrorResponse
// @Router       /checkout [post]
func (h *CheckoutHandler) CreateCheckout(c *gin.Context) {
	var req types.CheckoutRequest
	if !bindJSONOrError(c, &req) {
		return
	}

	resp, err := h.checkout.CreateSession(c.Request.Context(), req)
	if err != nil {
		_ = c.Error(err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

// Tiers godoc
// @Summary      List paid tiers
// @Description  Names of the tiers that can be passed to the checkout endpoint
// @Tags         checkout
// @Produce      json
// @Success      200  {object}  types.TiersResponse
// @Router       /checkout/tiers [get]
func (h *CheckoutHandler) Tiers(c *gin.Context) {
	c.JSON(http.StatusOK, types.TiersResponse{Tiers: h.checkout.Tiers()})
}

// StripeWebhook godoc
// @Summary      Payment webhook
// @Description  Receives signed payment events
// @Tags         checkout
// @Accept       json
// @Produce      json
// @Param        Stripe-Signature  header    string  true  "Event signature"
// @Success      200               {object}  types.WebhookResponse
// @Failure      400               {object}  types.ErrorResponse
// @Router       /stripe/webhook [post]
func (h *CheckoutHandler) StripeWebhook(c *gin.Context) {
	payload, err := io.ReadAll(http.MaxBytesReader(c.Writer, c.Request.Body, maxWebhookBodyBytes))
	if err != nil {
		_ = c.Error(apperrors.ValidationFailed("Invalid webhook payload", err.Error()))
		return
	}

	if err := h.checkout.HandleWebhook(c.Request.Context(), payload, c.GetHeader("Stripe-Signature")); err != nil {
		_ = c.Error(err)
		return
	}

	c.JSON(http.StatusOK, types.WebhookResponse{Received: true})
}
