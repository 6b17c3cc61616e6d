package ratelimit

import (
	"time"

	"github.com/Proton-105/gatekeeper-bot/pkg/config"
)

// Rules is the per-user budget: at most Limit updates in any Window.
type Rules struct {
	Limit  int
	Window time.Duration
}

// NewRules reads the budget from configuration.
func NewRules(cfg config.RateLimitConfig) Rules {
	return Rules{Limit: cfg.Limit, Window: cfg.Window}
}

// Enabled reports whether the budget limits anything.
func (r Rules) Enabled() bool {
	return r.Limit > 0 && r.Window > 0
}

// Halved returns the stricter budget used while the shared backend is down.
// It never drops below one update per window.
func (r Rules) Halved() Rules {
	limit := r.Limit / 2
	if limit < 1 {
		limit = 1
	}
	return Rules{Limit: limit, Window: r.Window}
}
