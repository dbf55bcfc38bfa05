// Package config provides application configuration loading.
// This is part of the platform layer and contains no business logic.
package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// =============================================================================
// Module-Specific Config Interfaces (Principle of Least Privilege)
// =============================================================================

// DatabaseConfig provides database connection settings.
type DatabaseConfig interface {
	GetDatabaseURL() string
}

// RedisConfig provides settings for the Redis-backed session store.
type RedisConfig interface {
	GetRedisURL() string
	GetSessionTTL() time.Duration
}

// TelegramConfig provides settings for the Telegram Bot API client and
// the inbound webhook.
type TelegramConfig interface {
	GetTelegramToken() string
	GetTelegramAPIBaseURL() string
	GetWebhookSecret() string
}

// RecognizerConfig provides settings for the text-recognizer service used
// to read barcodes off photos.
type RecognizerConfig interface {
	GetRecognizerURL() string
	GetRecognizerAPIKey() string
	IsRecognizerEnabled() bool
}

// LookupConfig provides settings for the external product lookup API.
type LookupConfig interface {
	GetLookupBaseURL() string
}

// HTTPConfig provides settings for the HTTP server.
type HTTPConfig interface {
	GetHTTPAddr() string
}

// =============================================================================
// Main Config Struct
// =============================================================================

// Config holds all application configuration values.
type Config struct {
	Env                string
	HTTPAddr           string
	DatabaseURL        string
	RedisURL           string
	SessionTTL         time.Duration
	TelegramToken      string
	TelegramAPIBaseURL string
	WebhookSecret      string
	RecognizerURL      string
	RecognizerAPIKey   string
	LookupBaseURL      string
}

// =============================================================================
// Interface Implementations
// =============================================================================

// DatabaseConfig implementation
func (c *Config) GetDatabaseURL() string { return c.DatabaseURL }

// RedisConfig implementation
func (c *Config) GetRedisURL() string          { return c.RedisURL }
func (c *Config) GetSessionTTL() time.Duration { return c.SessionTTL }

// TelegramConfig implementation
func (c *Config) GetTelegramToken() string      { return c.TelegramToken }
func (c *Config) GetTelegramAPIBaseURL() string { return c.TelegramAPIBaseURL }
func (c *Config) GetWebhookSecret() string      { return c.WebhookSecret }

// RecognizerConfig implementation
func (c *Config) GetRecognizerURL() string    { return c.RecognizerURL }
func (c *Config) GetRecognizerAPIKey() string { return c.RecognizerAPIKey }
func (c *Config) IsRecognizerEnabled() bool   { return c.RecognizerURL != "" }

// LookupConfig implementation
func (c *Config) GetLookupBaseURL() string { return c.LookupBaseURL }

// HTTPConfig implementation
func (c *Config) GetHTTPAddr() string { return c.HTTPAddr }

// Load reads configuration from environment variables.
func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{
		Env:                getEnv("APP_ENV", "development"),
		HTTPAddr:           getEnv("HTTP_ADDR", ":8080"),
		DatabaseURL:        getEnv("DATABASE_URL", ""),
		RedisURL:           getEnv("REDIS_URL", ""),
		SessionTTL:         mustDuration(getEnv("SESSION_TTL", "24h")),
		TelegramToken:      getEnv("TELEGRAM_BOT_TOKEN", ""),
		TelegramAPIBaseURL: getEnv("TELEGRAM_API_BASE_URL", "https://api.telegram.org"),
		WebhookSecret:      getEnv("TELEGRAM_WEBHOOK_SECRET", ""),
		RecognizerURL:      getEnv("RECOGNIZER_URL", ""),
		RecognizerAPIKey:   getEnv("RECOGNIZER_API_KEY", ""),
		LookupBaseURL:      getEnv("LOOKUP_BASE_URL", "https://world.openfoodfacts.org"),
	}

	if cfg.DatabaseURL == "" {
		return nil, fmt.Errorf("DATABASE_URL is required")
	}
	if cfg.RedisURL == "" {
		return nil, fmt.Errorf("REDIS_URL is required")
	}
	if cfg.TelegramToken == "" {
		return nil, fmt.Errorf("TELEGRAM_BOT_TOKEN is required")
	}
	if cfg.WebhookSecret == "" {
		return nil, fmt.Errorf("TELEGRAM_WEBHOOK_SECRET is required")
	}
	if cfg.SessionTTL <= 0 {
		return nil, fmt.Errorf("SESSION_TTL must be a positive duration")
	}
	if !strings.HasPrefix(cfg.TelegramAPIBaseURL, "http") {
		return nil, fmt.Errorf("TELEGRAM_API_BASE_URL must be an absolute URL")
	}

	return cfg, nil
}

func getEnv(key, fallback string) string {
	if val, ok := os.LookupEnv(key); ok {
		return val
	}
	return fallback
}

func mustDuration(value string) time.Duration {
	d, err := time.ParseDuration(value)
	if err != nil {
		return 0
	}
	return d
}
