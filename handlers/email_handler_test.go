package handlers

import (
	"net/http"
	"testing"

	apperrors "github.com/packwise/packwise-backend/errors"
	"github.com/packwise/packwise-backend/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestEmailHandler_SendEmail(t *testing.T) {
	email := new(MockEmailService)
	r := setupTestRouter()
	h := NewEmailHandler(email)
	r.POST("/api/send-email", h.SendEmail)

	email.On("SendListEmail", mock.Anything, types.SendListEmailRequest{Email: "jo@example.com", ListID: testListID}).
		Return("email-1", nil)

	w := performJSON(r, http.MethodPost, "/api/send-email", types.SendListEmailRequest{Email: "jo@example.com", ListID: testListID})
	require.Equal(t, http.StatusOK, w.Code)
	var resp types.SentResponse
	decodeBody(t, w, &resp)
	assert.True(t, resp.Sent)
	assert.Equal(t, "email-1", resp.ID)

	w = performJSON(r, http.MethodPost, "/api/send-email", `{"listId": "x"}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	email.AssertNumberOfCalls(t, "SendListEmail", 1)
}

func TestEmailHandler_Contact(t *testing.T) {
	tests := []struct {
		name           string
		serviceErr     error
		expectedStatus int
	}{
		{"sent", nil, http.StatusOK},
		{"invalid", apperrors.ValidationFailed("Invalid message", "too short"), http.StatusBadRequest},
		{"provider down", apperrors.Upstream("email provider", assert.AnError), http.StatusBadGateway},
		{"not configured", apperrors.ServiceUnavailable("Email delivery is not configured"), http.StatusServiceUnavailable},
	}

	msg := types.ContactMessage{Name: "Jo", Email: "jo@example.com", Message: "Hello there, great app"}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			email := new(MockEmailService)
			email.On("SendContactMessage", mock.Anything, msg).Return(tt.serviceErr)

			r := setupTestRouter()
			r.POST("/api/contact", NewEmailHandler(email).Contact)

			w := performJSON(r, http.MethodPost, "/api/contact", msg)
			assert.Equal(t, tt.expectedStatus, w.Code)
			email.AssertExpectations(t)
		})
	}
}
