package ratelimit

import (
	"context"
	"log/slog"

	"github.com/Proton-105/gatekeeper-bot/pkg/metrics"
)

// Backend labels for metrics.
const (
	BackendRedis    = "redis"
	BackendFallback = "fallback"
)

// FallbackLimiter asks the shared backend first and switches to a local
// limiter for any update the shared backend cannot answer.
type FallbackLimiter struct {
	primary  Limiter
	fallback Limiter
	log      *slog.Logger
}

var _ Limiter = (*FallbackLimiter)(nil)

// NewFallbackLimiter combines a shared primary with a local fallback.
// The fallback is usually a MemoryLimiter built with Rules.Halved.
func NewFallbackLimiter(primary, fallback Limiter, log *slog.Logger) *FallbackLimiter {
	if log == nil {
		log = slog.Default()
	}

	return &FallbackLimiter{
		primary:  primary,
		fallback: fallback,
		log:      log,
	}
}

func (f *FallbackLimiter) Allow(ctx context.Context, userID int64) (Decision, error) {
	d, err := f.primary.Allow(ctx, userID)
	if err == nil {
		metrics.RecordRateLimit(BackendRedis, d.Allowed)
		return d, nil
	}

	metrics.RecordRateLimitBackendError(BackendRedis)
	f.log.WarnContext(ctx, "shared rate limiter unavailable, using local budget",
		slog.Int64("user_id", userID),
		slog.Any("error", err),
	)

	d, err = f.fallback.Allow(ctx, userID)
	if err != nil {
		return Decision{}, err
	}
	metrics.RecordRateLimit(BackendFallback, d.Allowed)
	return d, nil
}
