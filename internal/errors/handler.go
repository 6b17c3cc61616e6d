package errors

import (
	"context"
	"errors"
	"log/slog"

	"github.com/getsentry/sentry-go"

	"github.com/Proton-105/gatekeeper-bot/pkg/logger"
	"github.com/Proton-105/gatekeeper-bot/pkg/metrics"
)

// Handler logs errors that reach the top of the update pipeline.
type Handler struct {
	log           *slog.Logger
	sentryEnabled bool
}

func NewHandler(log *slog.Logger, sentryEnabled bool) *Handler {
	return &Handler{
		log:           log,
		sentryEnabled: sentryEnabled,
	}
}

// Handle records err with any attributes describing the update it belongs to.
// It never panics and never returns an error, so the caller keeps serving.
func (h *Handler) Handle(ctx context.Context, err error, attrs ...slog.Attr) {
	if h == nil || err == nil {
		return
	}

	if ctx == nil {
		ctx = context.Background()
	}

	log := h.log
	if log == nil {
		log = slog.Default()
	}

	code := "unknown"
	severity := SeverityHigh

	var appErr *AppError
	if errors.As(err, &appErr) && appErr != nil {
		code = appErr.Code
		severity = appErr.Severity
	}

	attrs = append(attrs,
		slog.String("code", code),
		slog.String("severity", string(severity)),
		slog.Any("error", err),
	)

	if correlationID := logger.CorrelationIDFromContext(ctx); correlationID != "" {
		attrs = append(attrs, slog.String("correlation_id", correlationID))
	}

	log.LogAttrs(ctx, slog.LevelError, "update handling failed", attrs...)
	metrics.RecordError(code, string(severity))

	if h.sentryEnabled && (severity == SeverityCritical || severity == SeverityHigh) {
		h.sendToSentry(err, code, severity)
	}
}

func (h *Handler) sendToSentry(err error, code string, severity Severity) {
	sentry.WithScope(func(scope *sentry.Scope) {
		scope.SetTag("code", code)
		scope.SetTag("severity", string(severity))
		sentry.CaptureException(err)
	})
}
