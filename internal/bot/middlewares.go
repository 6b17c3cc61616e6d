package bot

import (
	"fmt"
	"log/slog"
	"runtime/debug"

	telebot "gopkg.in/telebot.v3"

	"github.com/Proton-105/gatekeeper-bot/internal/bot/handlers"
	errors "github.com/Proton-105/gatekeeper-bot/internal/errors"
	"github.com/Proton-105/gatekeeper-bot/internal/pipeline"
)

// RecoveryMiddleware turns a panic into a handler error so it reaches the bot's error channel.
func RecoveryMiddleware(log *slog.Logger) handlers.Middleware {
	if log == nil {
		log = slog.Default()
	}

	return func(next handlers.Handler) handlers.Handler {
		if next == nil {
			return nil
		}

		return func(c telebot.Context) (err error) {
			defer func() {
				if r := recover(); r != nil {
					log.Debug("panic recovered in handler", slog.Any("panic", r), slog.String("stack", string(debug.Stack())))
					err = errors.NewHandlerError(fmt.Errorf("panic recovered: %v", r))
				}
			}()

			return next(c)
		}
	}
}

// ActivityLogger logs one line per update and always continues.
func ActivityLogger(log *slog.Logger) pipeline.Stage {
	if log == nil {
		log = slog.Default()
	}

	return func(c telebot.Context) (d pipeline.Decision) {
		defer func() {
			if recover() != nil {
				d = pipeline.Continue()
			}
		}()

		var name string
		if sender := c.Sender(); sender != nil {
			name = sender.Username
			if name == "" {
				name = sender.FirstName
			}
		}

		attrs := append([]any{slog.String("from", name)}, handlers.UpdateAttrs(c)...)
		log.Info("message received", attrs...)

		return pipeline.Continue()
	}
}
