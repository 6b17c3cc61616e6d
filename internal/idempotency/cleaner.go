package idempotency

import (
	"context"
	"log/slog"
	"time"
)

// Cleaner periodically sweeps a Store.
type Cleaner struct {
	store    Store
	log      *slog.Logger
	interval time.Duration
	maxTTL   time.Duration
}

func NewCleaner(store Store, log *slog.Logger, interval, maxTTL time.Duration) *Cleaner {
	if log == nil {
		log = slog.Default()
	}

	return &Cleaner{
		store:    store,
		log:      log,
		interval: interval,
		maxTTL:   maxTTL,
	}
}

// Run sweeps every interval until ctx is cancelled.
func (c *Cleaner) Run(ctx context.Context) {
	if c == nil || c.store == nil || c.interval <= 0 {
		return
	}

	ticker := time.NewTicker(c.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			c.log.Debug("idempotency cleaner stopped")
			return
		case <-ticker.C:
			c.cleanup(ctx)
		}
	}
}

func (c *Cleaner) cleanup(ctx context.Context) {
	removed, err := c.store.Sweep(ctx, c.maxTTL)
	if err != nil {
		c.log.Error("idempotency cleaner sweep failed", slog.Any("error", err))
		return
	}

	if removed > 0 {
		c.log.Info("idempotency keys cleaned", slog.Int("keys_removed", removed))
	}
}
