package ratelimit

import (
	"context"
	"log/slog"
	"time"
)

// Cleaner periodically sweeps idle users out of a MemoryLimiter.
// Redis keys expire on their own.
type Cleaner struct {
	limiter  *MemoryLimiter
	log      *slog.Logger
	interval time.Duration
}

// NewCleaner constructs a Cleaner for limiter.
func NewCleaner(limiter *MemoryLimiter, log *slog.Logger, interval time.Duration) *Cleaner {
	if log == nil {
		log = slog.Default()
	}

	return &Cleaner{
		limiter:  limiter,
		log:      log,
		interval: interval,
	}
}

// Run sweeps every interval until ctx is cancelled.
func (c *Cleaner) Run(ctx context.Context) {
	if c == nil || c.limiter == nil || c.interval <= 0 {
		return
	}

	ticker := time.NewTicker(c.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			c.log.Debug("rate limit cleaner stopped", slog.String("reason", ctx.Err().Error()))
			return
		case <-ticker.C:
			if removed := c.limiter.Sweep(); removed > 0 {
				c.log.Debug("rate limit users swept", slog.Int("users_removed", removed))
			}
		}
	}
}
