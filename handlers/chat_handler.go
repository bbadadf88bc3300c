package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/packwise/packwise-backend/types"
)

type ChatHandler struct {
	packing PackingGenerator
}

func NewChatHandler(packing PackingGenerator) *ChatHandler {
	return &ChatHandler{packing: packing}
}

// Chat godoc
// @Summary      Generate a packing list
// @Description  Sends the trip details and conversation to the language model and returns a packing list
// @Tags         chat
// @Accept       json
// @Produce      json
// @Param        body  body      types.ChatRequest  true  "Conversation and trip details"
// @Success      200   {object}  types.ChatResponse
// @Failure      400   {object}  types.ErrorResponse
// @Failure      429   {object}  types.ErrorResponse
// @Failure      502   {object}  types.ErrorResponse
// @Failure      503   {object}  types.ErrorResponse
// @Router       /chat [post]
func (h *ChatHandler) Chat(c *gin.Context) {
	var req types.ChatRequest
	if !bindJSONOrError(c, &req) {
		return
	}

	resp, err := h.packing.Generate(c.Request.Context(), req)
	if err != nil {
		_ = c.Error(err)
		return
	}

	c.JSON(http.StatusOK, resp)
}
