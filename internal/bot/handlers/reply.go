package handlers

import (
	"log/slog"

	telebot "gopkg.in/telebot.v3"

	apperrors "github.com/Proton-105/gatekeeper-bot/internal/errors"
	"github.com/Proton-105/gatekeeper-bot/pkg/metrics"
)

// send delivers a reply. A failed delivery is logged and counted, never returned.
func send(c telebot.Context, log *slog.Logger, reply, text string, opts ...interface{}) bool {
	if err := c.Send(text, opts...); err != nil {
		appErr := apperrors.NewDeliveryError(reply, err)
		metrics.RecordDeliveryFailure(reply)

		attrs := append(UpdateAttrs(c), slog.String("code", appErr.Code), slog.Any("error", appErr))
		log.Error("failed to deliver reply", attrs...)
		return false
	}
	return true
}

// displayName prefers the username and falls back to the first name.
func displayName(u *telebot.User) string {
	if u == nil {
		return ""
	}
	if u.Username != "" {
		return "@" + u.Username
	}
	return u.FirstName
}
