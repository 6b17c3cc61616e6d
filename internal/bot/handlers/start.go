package handlers

import (
	"log/slog"

	telebot "gopkg.in/telebot.v3"

	"github.com/Proton-105/gatekeeper-bot/internal/i18n"
	"github.com/Proton-105/gatekeeper-bot/internal/markdown"
)

// NewStartHandler greets the sender by first name and lists the available commands.
func NewStartHandler(tr i18n.Translator, log *slog.Logger) Handler {
	if log == nil {
		log = slog.Default()
	}

	return func(c telebot.Context) error {
		var name string
		if sender := c.Sender(); sender != nil {
			name = sender.FirstName
		}

		text := tr.Format(i18n.KeyWelcome, map[string]string{"name": markdown.Escape(name)})
		if send(c, log, "welcome", text, telebot.ModeMarkdown) {
			log.Info("welcome sent", slog.String("user", displayName(c.Sender())))
		}
		return nil
	}
}
