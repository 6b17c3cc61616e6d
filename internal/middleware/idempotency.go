package middleware

import (
	"context"
	"errors"
	"log/slog"
	"time"

	telebot "gopkg.in/telebot.v3"

	"github.com/Proton-105/gatekeeper-bot/internal/bot/handlers"
	"github.com/Proton-105/gatekeeper-bot/internal/idempotency"
	"github.com/Proton-105/gatekeeper-bot/pkg/metrics"
)

// Idempotency ensures handlers execute at most once per Telegram update ID.
// Store failures let the update through.
func Idempotency(manager idempotency.Manager, ttl time.Duration, log *slog.Logger) handlers.Middleware {
	if manager == nil {
		return func(next handlers.Handler) handlers.Handler {
			return next
		}
	}
	if log == nil {
		log = slog.Default()
	}

	return func(next handlers.Handler) handlers.Handler {
		if next == nil {
			return nil
		}

		return func(c telebot.Context) error {
			key := idempotency.UpdateKey(c.Update().ID)
			if key == "" {
				return next(c)
			}

			ran := false
			result, err := manager.Execute(context.Background(), key, ttl, func(context.Context) error {
				ran = true
				return next(c)
			})

			switch {
			case ran:
				return err
			case errors.Is(err, idempotency.ErrRequestInProgress), err == nil && result != nil && result.Duplicate:
				metrics.RecordUpdate(metrics.OutcomeDuplicate)
				log.Debug("duplicate update skipped", slog.String("key", key))
				return nil
			default:
				log.Warn("idempotency check failed, handling update anyway", slog.String("key", key), slog.Any("error", err))
				return next(c)
			}
		}
	}
}
