package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/packwise/packwise-backend/types"
)

type AffiliateHandler struct {
	affiliates AffiliateServiceInterface
}

func NewAffiliateHandler(affiliates AffiliateServiceInterface) *AffiliateHandler {
	return &AffiliateHandler{affiliates: affiliates}
}

// Recommendations godoc
// @Summary      Product recommendations for a list
// @Tags         affiliate
// @Accept       json
// @Produce      json
// @Param        body  body      types.RecommendationRequest  true  "List items"
// @Success      200   {object}  types.RecommendationsResponse
// @Failure      400   {object}  types.ErrorResponse
// @Router       /affiliate/recommendations [post]
func (h *AffiliateHandler) Recommendations(c *gin.Context) {
	var req types.RecommendationRequest
	if !bindJSONOrError(c, &req) {
		return
	}

	recs, err := h.affiliates.Recommend(req)
	if err != nil {
		_ = c.Error(err)
		return
	}

	c.JSON(http.StatusOK, types.RecommendationsResponse{Recommendations: recs})
}

// Products godoc
// @Summary      List affiliate products
// @Tags         affiliate
// @Produce      json
// @Param        category  query     string  false  "Only products of this category"
// @Success      200       {object}  types.ProductsResponse
// @Router       /affiliate/products [get]
func (h *AffiliateHandler) Products(c *gin.Context) {
	c.JSON(http.StatusOK, types.ProductsResponse{Products: h.affiliates.Products(c.Query("category"))})
}
