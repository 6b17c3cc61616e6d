package middleware

import (
	"context"
	"log/slog"
	"math"
	"strconv"

	"gopkg.in/telebot.v3"

	"github.com/Proton-105/gatekeeper-bot/internal/bot/handlers"
	apperrors "github.com/Proton-105/gatekeeper-bot/internal/errors"
	"github.com/Proton-105/gatekeeper-bot/internal/i18n"
	"github.com/Proton-105/gatekeeper-bot/internal/pipeline"
	"github.com/Proton-105/gatekeeper-bot/internal/ratelimit"
	"github.com/Proton-105/gatekeeper-bot/pkg/metrics"
)

// RateLimit returns a pipeline stage that enforces the per-user budget.
// A nil limiter disables the stage. Limiter errors let the update through.
func RateLimit(limiter ratelimit.Limiter, tr i18n.Translator, log *slog.Logger) pipeline.Stage {
	if log == nil {
		log = slog.Default()
	}

	return func(c telebot.Context) pipeline.Decision {
		if limiter == nil {
			return pipeline.Continue()
		}

		sender := c.Sender()
		if sender == nil {
			return pipeline.Continue()
		}

		ctx := context.Background()
		d, err := limiter.Allow(ctx, sender.ID)
		if err != nil {
			log.Warn("rate limiter error", slog.Int64("user_id", sender.ID), slog.Any("error", err))
			return pipeline.Continue()
		}
		if d.Allowed {
			return pipeline.Continue()
		}

		seconds := int(math.Ceil(d.RetryAfter.Seconds()))
		if seconds < 1 {
			seconds = 1
		}

		appErr := apperrors.NewRateLimitError(sender.ID)
		attrs := append(handlers.UpdateAttrs(c),
			slog.String("code", appErr.Code),
			slog.Duration("retry_after", d.RetryAfter),
		)
		log.Warn("rate limit exceeded", attrs...)

		text := tr.Format(i18n.KeyRateLimited, map[string]string{"seconds": strconv.Itoa(seconds)})
		return pipeline.Reply(text).WithOutcome(metrics.OutcomeRateLimited)
	}
}
