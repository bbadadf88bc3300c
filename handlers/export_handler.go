package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/packwise/packwise-backend/types"
)

type ExportHandler struct {
	exporter Exporter
}

func NewExportHandler(exporter Exporter) *ExportHandler {
	return &ExportHandler{exporter: exporter}
}

// GeneratePDF godoc
// @Summary      Render a printable packing list
// @Description  Returns print-ready HTML for a saved list or inline items, plus a download link when export storage is configured
// @Tags         export
// @Accept       json
// @Produce      json
// @Param        body  body      types.ExportRequest  true  "List ID or items"
// @Success      200   {object}  types.ExportResponse
// @Failure      400   {object}  types.ErrorResponse
// @Failure      404   {object}  types.ErrorResponse
// @Router       /generate-pdf [post]
func (h *ExportHandler) GeneratePDF(c *gin.Context) {
	var req types.ExportRequest
	if !bindJSONOrError(c, &req) {
		return
	}

	resp, err := h.exporter.Export(c.Request.Context(), req)
	if err != nil {
		_ = c.Error(err)
		return
	}

	c.JSON(http.StatusOK, resp)
}
