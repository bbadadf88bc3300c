package config

import (
	"os"
	"strconv"
	"strings"
)

// FeatureFlags holds all feature flags for the application
type FeatureFlags struct {
	EnableAffiliateUpsells bool // Serves affiliate product recommendations
	EnableCheckout         bool // Exposes the Stripe checkout and webhook routes
	EnableExportUpload     bool // Publishes exported lists to R2 when configured
}

// GetFeatureFlags loads feature flags from environment variables
func GetFeatureFlags() FeatureFlags {
	return FeatureFlags{
		EnableAffiliateUpsells: getBoolEnv("FEATURE_AFFILIATE_UPSELLS", true),
		EnableCheckout:         getBoolEnv("FEATURE_CHECKOUT", true),
		EnableExportUpload:     getBoolEnv("FEATURE_EXPORT_UPLOAD", true),
	}
}

// getBoolEnv retrieves a boolean environment variable with a default value
func getBoolEnv(key string, defaultVal bool) bool {
	val, exists := os.LookupEnv(key)
	if !exists {
		return defaultVal
	}

	val = strings.ToLower(strings.TrimSpace(val))

	if val == "true" || val == "yes" || val == "1" || val == "on" {
		return true
	}

	if intVal, err := strconv.Atoi(val); err == nil {
		return intVal != 0
	}

	return false
}
