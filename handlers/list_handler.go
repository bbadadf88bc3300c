package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/packwise/packwise-backend/types"
)

// ListHandler serves saved packing lists.
type ListHandler struct {
	lists ListServiceInterface
}

func NewListHandler(lists ListServiceInterface) *ListHandler {
	return &ListHandler{lists: lists}
}

// SaveList godoc
// @Summary      Save a packing list
// @Description  Stores a packing list and returns its ID and share URL
// @Tags         lists
// @Accept       json
// @Produce      json
// @Param        body  body      types.SaveListRequest  true  "Items and trip details"
// @Success      201   {object}  types.SaveListResponse
// @Failure      400   {object}  types.ErrorResponse
// @Failure      500   {object}  types.ErrorResponse
// @Router       /lists [post]
func (h *ListHandler) SaveList(c *gin.Context) {
	var req types.SaveListRequest
	if !bindJSONOrError(c, &req) {
		return
	}

	resp, err := h.lists.Save(c.Request.Context(), req)
	if err != nil {
		_ = c.Error(err)
		return
	}

	c.JSON(http.StatusCreated, resp)
}

// GetList godoc
// @Summary      Get a packing list
// @Description  Returns a saved list and counts the view
// @Tags         lists
// @Produce      json
// @Param        id   path      string  true  "List ID"
// @Success      200  {object}  types.PackingList
// @Failure      404  {object}  types.ErrorResponse
// @Router       /lists/{id} [get]
func (h *ListHandler) GetList(c *gin.Context) {
	list, err := h.lists.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		_ = c.Error(err)
		return
	}

	c.JSON(http.StatusOK, list)
}

// ShareList godoc
// @Summary      Get share links
// @Description  Returns the public URL of a list and ready-made social share links
// @Tags         lists
// @Produce      json
// @Param        id   path      string  true  "List ID"
// @Success      200  {object}  types.ShareLinks
// @Failure      404  {object}  types.ErrorResponse
// @Router       /lists/{id}/share [get]
func (h *ListHandler) ShareList(c *gin.Context) {
	links, err := h.lists.ShareLinks(c.Request.Context(), c.Param("id"))
	if err != nil {
		_ = c.Error(err)
		return
	}

	c.JSON(http.StatusOK, links)
}
