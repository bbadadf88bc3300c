package handlers

import (
	"github.com/gin-gonic/gin"
	apperrors "github.com/packwise/packwise-backend/errors"
)

func bindJSONOrError(c *gin.Context, obj interface{}) bool {
	if err := c.ShouldBindJSON(obj); err != nil {
		_ = c.Error(apperrors.ValidationFailed("Invalid request payload", err.Error()))
		return false
	}
	return true
}
