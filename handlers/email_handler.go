package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/packwise/packwise-backend/types"
)

// EmailHandler handles list delivery and the contact form.
type EmailHandler struct {
	email EmailServiceInterface
}

func NewEmailHandler(email EmailServiceInterface) *EmailHandler {
	return &EmailHandler{email: email}
}

// SendEmail godoc
// @Summary      Email a packing list
// @Tags         email
// @Accept       json
// @Produce      json
// @Param        body  body      types.SendListEmailRequest  true  "Recipient and list"
// @Success      200   {object}  types.SentResponse
// @Failure      400   {object}  types.ErrorResponse
// @Failure      404   {object}  types.ErrorResponse
// @Failure      502   {object}  types.ErrorResponse
// @Router       /send-email [post]
func (h *EmailHandler) SendEmail(c *gin.Context) {
	var req types.SendListEmailRequest
	if !bindJSONOrError(c, &req) {
		return
	}

	id, err := h.email.SendListEmail(c.Request.Context(), req)
	if err != nil {
		_ = c.Error(err)
		return
	}

	c.JSON(http.StatusOK, types.SentResponse{Sent: true, ID: id})
}

// Contact godoc
// @Summary      Submit the contact form
// @Tags         email
// @Accept       json
// @Produce      json
// @Param        body  body      types.ContactMessage  true  "Contact message"
// @Success      200   {object}  types.SentResponse
// @Failure      400   {object}  types.ErrorResponse
// @Failure      502   {object}  types.ErrorResponse
// @Router       /contact [post]
func (h *EmailHandler) Contact(c *gin.Context) {
	var req types.ContactMessage
	if !bindJSONOrError(c, &req) {
		return
	}

	if err := h.email.SendContactMessage(c.Request.Context(), req); err != nil {
		_ = c.Error(err)
		return
	}

	c.JSON(http.StatusOK, types.SentResponse{Sent: true})
}
