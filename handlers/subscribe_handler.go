package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/packwise/packwise-backend/types"
)

type SubscribeHandler struct {
	subscriptions Subscriber
}

func NewSubscribeHandler(subscriptions Subscriber) *SubscribeHandler {
	return &SubscribeHandler{subscriptions: subscriptions}
}

// Subscribe godoc
// @Summary      Subscribe to the newsletter
// @Tags         subscribe
// @Accept       json
// @Produce      json
// @Param        body  body      types.SubscribeRequest  true  "Email address"
// @Success      200   {object}  types.SubscribeResponse
// @Failure      400   {object}  types.ErrorResponse
// @Router       /subscribe [post]
func (h *SubscribeHandler) Subscribe(c *gin.Context) {
	var req types.SubscribeRequest
	if !bindJSONOrError(c, &req) {
		return
	}

	resp, err := h.subscriptions.Subscribe(c.Request.Context(), req.Email)
	if err != nil {
		_ = c.Error(err)
		return
	}

	c.JSON(http.StatusOK, resp)
}
