package config

import (
	"time"

	"github.com/Proton-105/gatekeeper-bot/internal/access"
	"github.com/Proton-105/gatekeeper-bot/pkg/logger"
	"github.com/Proton-105/gatekeeper-bot/pkg/redis"
)

// Transport modes.
const (
	ModePolling = "polling"
	ModeWebhook = "webhook"
)

// Config holds runtime configuration for the bot.
type Config struct {
	AppEnv      string            `mapstructure:"env"`
	Bot         BotConfig         `mapstructure:"bot"`
	Log         logger.Config     `mapstructure:"log"`
	Metrics     MetricsConfig     `mapstructure:"metrics"`
	Sentry      SentryConfig      `mapstructure:"sentry"`
	Redis       redis.Config      `mapstructure:"redis"`
	Idempotency IdempotencyConfig `mapstructure:"idempotency"`
	RateLimit   RateLimitConfig   `mapstructure:"rate_limit"`

	// AllowList is parsed from Bot.AllowedUserIDs once during Load.
	AllowList access.AllowList `mapstructure:"-"`
}

// BotConfig configures the Telegram transport.
type BotConfig struct {
	Token          string        `mapstructure:"token" validate:"required"`
	AllowedUserIDs string        `mapstructure:"allowed_user_ids"`
	Mode           string        `mapstructure:"mode" validate:"oneof=polling webhook"`
	PollTimeout    time.Duration `mapstructure:"poll_timeout" validate:"gte=0"`
	WebhookListen  string        `mapstructure:"webhook_listen" validate:"required_if=Mode webhook"`
	WebhookURL     string        `mapstructure:"webhook_url" validate:"required_if=Mode webhook"`
	Language       string        `mapstructure:"language" validate:"required"`
}

type MetricsConfig struct {
	Enabled bool `mapstructure:"enabled"`
	// Addr is the listen address of the /metrics and health endpoints.
	Addr            string        `mapstructure:"addr" validate:"required_if=Enabled true"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout" validate:"gt=0"`
}

type SentryConfig struct {
	DSN string `mapstructure:"dsn" validate:"omitempty,url"`
}

// Enabled reports whether Sentry reporting is configured.
func (c SentryConfig) Enabled() bool {
	return c.DSN != ""
}

type IdempotencyConfig struct {
	TTL time.Duration `mapstructure:"ttl" validate:"gt=0"`
}

// RateLimitConfig configures the per-user limit. A zero Limit disables limiting.
type RateLimitConfig struct {
	Limit  int           `mapstructure:"limit" validate:"gte=0"`
	Window time.Duration `mapstructure:"window" validate:"gt=0"`
}

// Enabled reports whether per-user limiting is active.
func (c RateLimitConfig) Enabled() bool {
	return c.Limit > 0
}
