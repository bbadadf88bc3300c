package middleware

import (
	"github.com/packwise/packwise-backend/logger"
)

func init() {
	logger.IsTest = true
}
