// Package config handles loading and validation of application configuration
// from environment variables.
package config

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/packwise/packwise-backend/logger"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

// Environment represents the application's running environment (development or production).
type Environment string

const (
	EnvDevelopment Environment = "development"
	EnvProduction  Environment = "production"

	ListsBackendMemory = "memory"
	ListsBackendRedis  = "redis"
)

// ServerConfig holds server-specific configuration.
type ServerConfig struct {
	Environment     Environment `mapstructure:"ENVIRONMENT" yaml:"environment"`
	Port            string      `mapstructure:"PORT" yaml:"port"`
	AllowedOrigins  []string    `mapstructure:"ALLOWED_ORIGINS" yaml:"allowed_origins"`
	Version         string      `mapstructure:"VERSION" yaml:"version"`
	FrontendURL     string      `mapstructure:"FRONTEND_URL" yaml:"frontend_url"`
	TrustedProxies  []string    `mapstructure:"TRUSTED_PROXIES" yaml:"trusted_proxies"`
	ShutdownSeconds int         `mapstructure:"SHUTDOWN_SECONDS" yaml:"shutdown_seconds"`
}

// RedisConfig holds Redis connection details.
type RedisConfig struct {
	Address      string `mapstructure:"ADDRESS" yaml:"address"`
	Password     string `mapstructure:"PASSWORD" yaml:"password"`
	DB           int    `mapstructure:"DB" yaml:"db"`
	UseTLS       bool   `mapstructure:"USE_TLS" yaml:"use_tls"`
	PoolSize     int    `mapstructure:"POOL_SIZE" yaml:"pool_size"`
	MinIdleConns int    `mapstructure:"MIN_IDLE_CONNS" yaml:"min_idle_conns"`
}

// EmailConfig holds configuration for sending emails.
type EmailConfig struct {
	FromAddress    string `mapstructure:"FROM_ADDRESS" yaml:"from_address"`
	FromName       string `mapstructure:"FROM_NAME" yaml:"from_name"`
	ResendAPIKey   string `mapstructure:"RESEND_API_KEY" yaml:"resend_api_key"`
	ContactAddress string `mapstructure:"CONTACT_ADDRESS" yaml:"contact_address"`
}

// LLMConfig holds configuration for the packing list language model.
type LLMConfig struct {
	APIKey         string  `mapstructure:"API_KEY" yaml:"api_key"`
	Model          string  `mapstructure:"MODEL" yaml:"model"`
	TimeoutSeconds int     `mapstructure:"TIMEOUT_SECONDS" yaml:"timeout_seconds"`
	Temperature    float32 `mapstructure:"TEMPERATURE" yaml:"temperature"`
}

// ListsConfig selects where saved packing lists live.
type ListsConfig struct {
	Backend  string `mapstructure:"BACKEND" yaml:"backend"`
	TTLHours int    `mapstructure:"TTL_HOURS" yaml:"ttl_hours"`
}

// RateLimitConfig holds configuration for rate limiting.
type RateLimitConfig struct {
	// Requests allowed per client IP per window across all API routes
	RequestsPerWindow int `mapstructure:"REQUESTS_PER_WINDOW" yaml:"requests_per_window"`
	// Requests allowed per client IP per window on the chat endpoint
	ChatRequests int `mapstructure:"CHAT_REQUESTS" yaml:"chat_requests"`
	// Window duration in seconds for rate limiting
	WindowSeconds int `mapstructure:"WINDOW_SECONDS" yaml:"window_seconds"`
}

// StripeConfig holds payment configuration. Tiers are "tier:price_id" pairs.
type StripeConfig struct {
	SecretKey     string   `mapstructure:"SECRET_KEY" yaml:"secret_key"`
	WebhookSecret string   `mapstructure:"WEBHOOK_SECRET" yaml:"webhook_secret"`
	Tiers         []string `mapstructure:"TIERS" yaml:"tiers"`
}

// ExportConfig holds the optional R2 bucket used to publish exported lists.
type ExportConfig struct {
	R2AccountID       string `mapstructure:"R2_ACCOUNT_ID" yaml:"r2_account_id"`
	R2Bucket          string `mapstructure:"R2_BUCKET" yaml:"r2_bucket"`
	R2AccessKeyID     string `mapstructure:"R2_ACCESS_KEY_ID" yaml:"r2_access_key_id"`
	R2SecretAccessKey string `mapstructure:"R2_SECRET_ACCESS_KEY" yaml:"r2_secret_access_key"`
	PresignMinutes    int    `mapstructure:"PRESIGN_MINUTES" yaml:"presign_minutes"`
}

// AffiliateConfig holds affiliate program settings.
type AffiliateConfig struct {
	Tag string `mapstructure:"TAG" yaml:"tag"`
}

// Config aggregates all application configuration sections.
type Config struct {
	Server    ServerConfig    `mapstructure:"SERVER" yaml:"server"`
	Redis     RedisConfig     `mapstructure:"REDIS" yaml:"redis"`
	Email     EmailConfig     `mapstructure:"EMAIL" yaml:"email"`
	LLM       LLMConfig       `mapstructure:"LLM" yaml:"llm"`
	Lists     ListsConfig     `mapstructure:"LISTS" yaml:"lists"`
	RateLimit RateLimitConfig `mapstructure:"RATE_LIMIT" yaml:"rate_limit"`
	Stripe    StripeConfig    `mapstructure:"STRIPE" yaml:"stripe"`
	Export    ExportConfig    `mapstructure:"EXPORT" yaml:"export"`
	Affiliate AffiliateConfig `mapstructure:"AFFILIATE" yaml:"affiliate"`
}

// IsDevelopment returns true if the application is running in development environment.
func (c *Config) IsDevelopment() bool {
	return c.Server.Environment == EnvDevelopment
}

// IsProduction returns true if the application is running in production environment.
func (c *Config) IsProduction() bool {
	return c.Server.Environment == EnvProduction
}

// R2Enabled reports whether exported lists should be uploaded to R2.
func (c *ExportConfig) R2Enabled() bool {
	return c.R2AccountID != "" && c.R2Bucket != "" && c.R2AccessKeyID != "" && c.R2SecretAccessKey != ""
}

// Enabled reports whether checkout is configured.
func (c *StripeConfig) Enabled() bool {
	return c.SecretKey != ""
}

// PriceTable parses Tiers into a tier -> price ID map.
func (c *StripeConfig) PriceTable() (map[string]string, error) {
	table := make(map[string]string, len(c.Tiers))
	for _, entry := range c.Tiers {
		entry = strings.TrimSpace(entry)
		if entry == "" {
			continue
		}
		tier, priceID, ok := strings.Cut(entry, ":")
		tier = strings.TrimSpace(tier)
		priceID = strings.TrimSpace(priceID)
		if !ok || tier == "" || priceID == "" {
			return nil, fmt.Errorf("invalid stripe tier %q, expected tier:price_id", entry)
		}
		table[strings.ToLower(tier)] = priceID
	}
	return table, nil
}

// bindEnvVars binds multiple environment variables to config keys.
// Format: []{configKey, envVar}
func bindEnvVars(v *viper.Viper, bindings [][2]string) error {
	for _, b := range bindings {
		if err := v.BindEnv(b[0], b[1]); err != nil {
			return fmt.Errorf("failed to bind %s: %w", b[0], err)
		}
	}
	return nil
}

// LoadConfig loads configuration from environment variables using Viper,
// sets default values, unmarshals the configuration and validates it.
func LoadConfig() (*Config, error) {
	v := viper.New()
	log := logger.GetLogger()

	v.SetDefault("SERVER.ENVIRONMENT", EnvDevelopment)
	v.SetDefault("SERVER.PORT", "8080")
	v.SetDefault("SERVER.ALLOWED_ORIGINS", []string{"*"})
	v.SetDefault("SERVER.TRUSTED_PROXIES", []string{})
	v.SetDefault("SERVER.VERSION", "dev")
	v.SetDefault("SERVER.FRONTEND_URL", "http://localhost:3000")
	v.SetDefault("SERVER.SHUTDOWN_SECONDS", 15)
	v.SetDefault("REDIS.ADDRESS", "localhost:6379")
	v.SetDefault("REDIS.PASSWORD", "")
	v.SetDefault("REDIS.DB", 0)
	v.SetDefault("REDIS.USE_TLS", false)
	v.SetDefault("REDIS.POOL_SIZE", 10)
	v.SetDefault("REDIS.MIN_IDLE_CONNS", 1)
	v.SetDefault("EMAIL.FROM_ADDRESS", "lists@packwise.app")
	v.SetDefault("EMAIL.FROM_NAME", "Packwise")
	v.SetDefault("EMAIL.CONTACT_ADDRESS", "hello@packwise.app")
	v.SetDefault("LLM.MODEL", "gemini-2.0-flash")
	v.SetDefault("LLM.TIMEOUT_SECONDS", 30)
	v.SetDefault("LLM.TEMPERATURE", 0.7)
	v.SetDefault("LISTS.BACKEND", ListsBackendMemory)
	v.SetDefault("LISTS.TTL_HOURS", 0)
	v.SetDefault("RATE_LIMIT.REQUESTS_PER_WINDOW", 60)
	v.SetDefault("RATE_LIMIT.CHAT_REQUESTS", 10)
	v.SetDefault("RATE_LIMIT.WINDOW_SECONDS", 60)
	v.SetDefault("STRIPE.TIERS", []string{})
	v.SetDefault("EXPORT.PRESIGN_MINUTES", 15)

	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	envBindings := [][2]string{
		{"SERVER.ENVIRONMENT", "SERVER_ENVIRONMENT"},
		{"SERVER.PORT", "PORT"},
		{"SERVER.ALLOWED_ORIGINS", "ALLOWED_ORIGINS"},
		{"SERVER.FRONTEND_URL", "FRONTEND_URL"},
		{"SERVER.TRUSTED_PROXIES", "TRUSTED_PROXIES"},
		{"SERVER.VERSION", "VERSION"},
		{"REDIS.ADDRESS", "REDIS_ADDRESS"},
		{"REDIS.PASSWORD", "REDIS_PASSWORD"},
		{"REDIS.DB", "REDIS_DB"},
		{"REDIS.USE_TLS", "REDIS_USE_TLS"},
		{"EMAIL.FROM_ADDRESS", "EMAIL_FROM_ADDRESS"},
		{"EMAIL.FROM_NAME", "EMAIL_FROM_NAME"},
		{"EMAIL.RESEND_API_KEY", "RESEND_API_KEY"},
		{"EMAIL.CONTACT_ADDRESS", "EMAIL_CONTACT_ADDRESS"},
		{"LLM.API_KEY", "GEMINI_API_KEY"},
		{"LLM.MODEL", "LLM_MODEL"},
		{"LLM.TIMEOUT_SECONDS", "LLM_TIMEOUT_SECONDS"},
		{"LLM.TEMPERATURE", "LLM_TEMPERATURE"},
		{"LISTS.BACKEND", "LISTS_BACKEND"},
		{"LISTS.TTL_HOURS", "LISTS_TTL_HOURS"},
		{"RATE_LIMIT.REQUESTS_PER_WINDOW", "RATE_LIMIT_REQUESTS_PER_WINDOW"},
		{"RATE_LIMIT.CHAT_REQUESTS", "RATE_LIMIT_CHAT_REQUESTS"},
		{"RATE_LIMIT.WINDOW_SECONDS", "RATE_LIMIT_WINDOW_SECONDS"},
		{"STRIPE.SECRET_KEY", "STRIPE_SECRET_KEY"},
		{"STRIPE.WEBHOOK_SECRET", "STRIPE_WEBHOOK_SECRET"},
		{"STRIPE.TIERS", "STRIPE_TIERS"},
		{"EXPORT.R2_ACCOUNT_ID", "EXPORT_R2_ACCOUNT_ID"},
		{"EXPORT.R2_BUCKET", "EXPORT_R2_BUCKET"},
		{"EXPORT.R2_ACCESS_KEY_ID", "EXPORT_R2_ACCESS_KEY_ID"},
		{"EXPORT.R2_SECRET_ACCESS_KEY", "EXPORT_R2_SECRET_ACCESS_KEY"},
		{"EXPORT.PRESIGN_MINUTES", "EXPORT_PRESIGN_MINUTES"},
		{"AFFILIATE.TAG", "AFFILIATE_TAG"},
	}

	if err := bindEnvVars(v, envBindings); err != nil {
		return nil, err
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("config unmarshal failed: %w", err)
	}

	if err := validateConfig(&cfg, log); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	log.Infow("Configuration loaded",
		"environment", cfg.Server.Environment,
		"server_port", cfg.Server.Port,
		"allowed_origins", cfg.Server.AllowedOrigins,
		"redis_address", cfg.Redis.Address,
		"lists_backend", cfg.Lists.Backend,
		"llm_model", cfg.LLM.Model,
		"llm_api_key", logger.MaskSensitiveString(cfg.LLM.APIKey, 4, 2),
		"stripe_enabled", cfg.Stripe.Enabled(),
		"export_r2_enabled", cfg.Export.R2Enabled(),
	)
	return &cfg, nil
}

// validateConfig checks if the loaded configuration values are valid.
func validateConfig(cfg *Config, log *zap.SugaredLogger) error {
	if cfg.Server.Port == "" {
		return fmt.Errorf("server port is required")
	}
	if cfg.Server.Environment != EnvDevelopment && cfg.Server.Environment != EnvProduction {
		return fmt.Errorf("unknown environment %q", cfg.Server.Environment)
	}
	if !containsWildcard(cfg.Server.AllowedOrigins) {
		for _, origin := range cfg.Server.AllowedOrigins {
			if _, err := url.ParseRequestURI(origin); err != nil {
				return fmt.Errorf("invalid allowed origin '%s': %w", origin, err)
			}
		}
	}
	if _, err := url.ParseRequestURI(cfg.Server.FrontendURL); err != nil {
		return fmt.Errorf("invalid frontend URL: %w", err)
	}
	if cfg.Server.ShutdownSeconds <= 0 {
		return fmt.Errorf("shutdown timeout must be positive")
	}

	if cfg.Redis.Address == "" {
		return fmt.Errorf("redis address is required")
	}
	if cfg.Redis.Password == "" && cfg.Redis.UseTLS {
		log.Warn("Redis password is not set, but TLS is enabled. Ensure this is correct for your Redis provider.")
	}

	if cfg.Email.FromAddress == "" {
		return fmt.Errorf("email from address is required")
	}
	if cfg.Email.ContactAddress == "" {
		return fmt.Errorf("email contact address is required")
	}

	if cfg.LLM.Model == "" {
		return fmt.Errorf("llm model is required")
	}
	if cfg.LLM.TimeoutSeconds <= 0 {
		return fmt.Errorf("llm timeout must be positive")
	}
	if cfg.LLM.Temperature < 0 || cfg.LLM.Temperature > 2 {
		return fmt.Errorf("llm temperature must be between 0 and 2")
	}

	switch cfg.Lists.Backend {
	case ListsBackendMemory, ListsBackendRedis:
	default:
		return fmt.Errorf("unknown lists backend %q", cfg.Lists.Backend)
	}
	if cfg.Lists.TTLHours < 0 {
		return fmt.Errorf("lists TTL must not be negative")
	}

	if cfg.RateLimit.RequestsPerWindow <= 0 {
		return fmt.Errorf("rate limit requests per window must be positive")
	}
	if cfg.RateLimit.ChatRequests <= 0 {
		return fmt.Errorf("rate limit chat requests must be positive")
	}
	if cfg.RateLimit.WindowSeconds <= 0 {
		return fmt.Errorf("rate limit window seconds must be positive")
	}

	if _, err := cfg.Stripe.PriceTable(); err != nil {
		return err
	}
	if cfg.Stripe.Enabled() && cfg.Stripe.WebhookSecret == "" {
		log.Warn("Stripe webhook secret is not set; webhook events will be rejected")
	}

	if cfg.Export.PresignMinutes <= 0 {
		return fmt.Errorf("export presign minutes must be positive")
	}

	return validateProviderKeys(cfg, log)
}

// validateProviderKeys requires provider credentials in production and only
// warns about them in development so the service can run locally without them.
func validateProviderKeys(cfg *Config, log *zap.SugaredLogger) error {
	missing := []string{}
	if cfg.Email.ResendAPIKey == "" {
		missing = append(missing, "RESEND_API_KEY")
	}
	if cfg.LLM.APIKey == "" {
		missing = append(missing, "GEMINI_API_KEY")
	}
	if len(missing) == 0 {
		return nil
	}
	if cfg.IsProduction() {
		return fmt.Errorf("missing required provider keys: %s", strings.Join(missing, ", "))
	}
	log.Warnw("Provider keys not set; dependent endpoints will fail", "missing", missing)
	return nil
}

// containsWildcard checks if the list of allowed origins contains the wildcard "*".
func containsWildcard(origins []string) bool {
	for _, origin := range origins {
		if origin == "*" {
			return true
		}
	}
	return false
}
