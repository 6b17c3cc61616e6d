package handlers

import (
	"log/slog"

	telebot "gopkg.in/telebot.v3"
)

// Keys stored on telebot.Context while an update is processed.
const (
	ContextKeyCommand       = "command"
	ContextKeyCorrelationID = "correlation_id"
)

// Handler processes bot updates.
type Handler func(c telebot.Context) error

// Middleware wraps handlers with additional behavior.
type Middleware func(Handler) Handler

// CorrelationID returns the correlation ID attached to c, if any.
func CorrelationID(c telebot.Context) string {
	if c == nil {
		return ""
	}
	id, _ := c.Get(ContextKeyCorrelationID).(string)
	return id
}

// UpdateAttrs describes the update in c for log records.
func UpdateAttrs(c telebot.Context) []any {
	if c == nil {
		return nil
	}

	attrs := []any{slog.Int("update_id", c.Update().ID)}
	if sender := c.Sender(); sender != nil {
		attrs = append(attrs, slog.Int64("user_id", sender.ID))
	}
	if chat := c.Chat(); chat != nil {
		attrs = append(attrs, slog.Int64("chat_id", chat.ID))
	}
	if id := CorrelationID(c); id != "" {
		attrs = append(attrs, slog.String("correlation_id", id))
	}
	return attrs
}
