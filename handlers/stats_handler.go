package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	apperrors "github.com/packwise/packwise-backend/errors"
)

type StatsHandler struct {
	stats StatsProvider
}

func NewStatsHandler(stats StatsProvider) *StatsHandler {
	return &StatsHandler{stats: stats}
}

// GetStats godoc
// @Summary      Usage statistics
// @Tags         stats
// @Produce      json
// @Success      200  {object}  types.UsageStats
// @Failure      500  {object}  types.ErrorResponse
// @Router       /stats [get]
func (h *StatsHandler) GetStats(c *gin.Context) {
	stats, err := h.stats.GetStats(c.Request.Context())
	if err != nil {
		_ = c.Error(apperrors.Wrap(err, apperrors.ServerError, "Failed to load usage statistics"))
		return
	}
	c.JSON(http.StatusOK, stats)
}

// RecordVisit godoc
// @Summary      Record a visit
// @Description  Counts one visit (best effort) and returns the updated statistics
// @Tags         stats
// @Produce      json
// @Success      200  {object}  types.UsageStats
// @Router       /stats [post]
func (h *StatsHandler) RecordVisit(c *gin.Context) {
	h.stats.RecordVisit(c.Request.Context())
	h.GetStats(c)
}
