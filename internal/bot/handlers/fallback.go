package handlers

import (
	"log/slog"

	telebot "gopkg.in/telebot.v3"
)

// NewTextHandler answers every update with a fixed text. name labels delivery failures.
func NewTextHandler(name, text string, log *slog.Logger) Handler {
	if log == nil {
		log = slog.Default()
	}

	return func(c telebot.Context) error {
		send(c, log, name, text)
		return nil
	}
}
