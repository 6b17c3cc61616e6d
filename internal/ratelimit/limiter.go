// Package ratelimit caps how many updates one Telegram user may send within a sliding window.
package ratelimit

import (
	"context"
	"time"
)

// Decision is the verdict for a single update.
type Decision struct {
	Allowed   bool
	Remaining int
	// RetryAfter is how long until the oldest counted update leaves the window.
	// Zero when Allowed.
	RetryAfter time.Duration
}

// Limiter counts one update from userID and decides whether it fits the window.
// Rejected updates are not counted.
type Limiter interface {
	Allow(ctx context.Context, userID int64) (Decision, error)
}
