package handlers

import (
	"log/slog"

	telebot "gopkg.in/telebot.v3"

	"github.com/Proton-105/gatekeeper-bot/internal/i18n"
	"github.com/Proton-105/gatekeeper-bot/internal/status"
)

// NewStatusHandler replies with a fresh status snapshot.
func NewStatusHandler(reporter *status.Reporter, tr i18n.Translator, log *slog.Logger) Handler {
	if log == nil {
		log = slog.Default()
	}

	return func(c telebot.Context) error {
		text := status.Format(reporter.Snapshot(), tr)
		if send(c, log, "status", text, telebot.ModeMarkdown) {
			log.Info("status sent", slog.String("user", displayName(c.Sender())))
		}
		return nil
	}
}
