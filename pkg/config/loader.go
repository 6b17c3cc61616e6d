// Package config provides configuration loading and validation utilities.
package config

import (
	"errors"
	"fmt"
	"strings"

	validator "github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"github.com/Proton-105/gatekeeper-bot/internal/access"
	"github.com/Proton-105/gatekeeper-bot/internal/status"
)

// ErrMissingToken is returned when BOT_TOKEN is not set.
var ErrMissingToken = errors.New("BOT_TOKEN is not set")

// Options controls where Load looks for configuration.
type Options struct {
	// ConfigDir holds optional <env>.yaml files.
	ConfigDir string
	// EnvFiles are loaded into the process environment when present. Existing variables win.
	EnvFiles []string
}

// DefaultOptions returns the locations used by the bot binary.
func DefaultOptions() Options {
	return Options{
		ConfigDir: "./configs",
		EnvFiles:  []string{".env.local", ".env"},
	}
}

var defaults = map[string]any{
	"env":                      status.DefaultEnvironment,
	"bot.token":                "",
	"bot.allowed_user_ids":     "",
	"bot.mode":                 ModePolling,
	"bot.poll_timeout":         "10s",
	"bot.webhook_listen":       ":8443",
	"bot.webhook_url":          "",
	"bot.language":             "pt",
	"log.level":                "info",
	"log.format":               "json",
	"log.file":                 "",
	"log.max_size_mb":          100,
	"log.max_backups":          3,
	"log.max_age_days":         28,
	"metrics.enabled":          true,
	"metrics.addr":             ":9090",
	"metrics.shutdown_timeout": "5s",
	"sentry.dsn":               "",
	"redis.addr":               "",
	"redis.password":           "",
	"redis.db":                 0,
	"redis.pool_size":          10,
	"redis.dial_timeout":       "5s",
	"idempotency.ttl":          "24h",
	"rate_limit.limit":         0,
	"rate_limit.window":        "1m",
}

// env names that do not follow the KEY_PATH convention.
var aliases = map[string][]string{
	"env":                  {"APP_ENV", "NODE_ENV"},
	"bot.allowed_user_ids": {"ALLOWED_USER_IDS"},
}

// Load reads configuration from env files, the environment and an optional YAML file,
// validates it, and parses the allow-list.
func Load(opts Options) (*Config, error) {
	for _, file := range opts.EnvFiles {
		// missing env files are fine
		_ = godotenv.Load(file)
	}

	v := viper.New()
	for key, value := range defaults {
		v.SetDefault(key, value)
	}

	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	for key, names := range aliases {
		if err := v.BindEnv(append([]string{key}, names...)...); err != nil {
			return nil, fmt.Errorf("bind env %s: %w", key, err)
		}
	}

	env := v.GetString("env")
	if env == "" {
		env = status.DefaultEnvironment
	}

	if opts.ConfigDir != "" {
		v.SetConfigName(env)
		v.SetConfigType("yaml")
		v.AddConfigPath(opts.ConfigDir)

		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) {
				return nil, fmt.Errorf("read config: %w", err)
			}
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	cfg.AppEnv = env
	cfg.Bot.Token = strings.TrimSpace(cfg.Bot.Token)
	cfg.Bot.Mode = strings.ToLower(strings.TrimSpace(cfg.Bot.Mode))

	if cfg.Bot.Token == "" {
		return nil, ErrMissingToken
	}

	validate := validator.New(validator.WithRequiredStructEnabled())
	if err := validate.Struct(cfg); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}

	cfg.AllowList = access.ParseAllowList(cfg.Bot.AllowedUserIDs)

	return &cfg, nil
}
