package middleware

import (
	telebot "gopkg.in/telebot.v3"

	"github.com/Proton-105/gatekeeper-bot/internal/bot/handlers"
	"github.com/Proton-105/gatekeeper-bot/pkg/logger"
)

// Correlation attaches a fresh correlation ID to every update.
func Correlation(next handlers.Handler) handlers.Handler {
	if next == nil {
		return nil
	}

	return func(c telebot.Context) error {
		if handlers.CorrelationID(c) == "" {
			c.Set(handlers.ContextKeyCorrelationID, logger.NewCorrelationID())
		}
		return next(c)
	}
}
