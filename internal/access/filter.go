package access

import (
	"log/slog"

	telebot "gopkg.in/telebot.v3"

	"github.com/Proton-105/gatekeeper-bot/internal/pipeline"
	"github.com/Proton-105/gatekeeper-bot/pkg/metrics"
)

// Filter checks update senders against an AllowList.
type Filter struct {
	allow AllowList
	log   *slog.Logger
}

// NewFilter creates a Filter bound to the provided list.
func NewFilter(allow AllowList, log *slog.Logger) *Filter {
	if log == nil {
		log = slog.Default()
	}

	return &Filter{allow: allow, log: log}
}

// IsAuthorized returns false when the sender is absent or not allow-listed.
func (f *Filter) IsAuthorized(sender *telebot.User) bool {
	if sender == nil || sender.ID == 0 {
		return false
	}

	return f.allow.Contains(sender.ID)
}

// Check is the context form of IsAuthorized. Denials are logged at info level.
func (f *Filter) Check(c telebot.Context) bool {
	if c == nil {
		return false
	}

	sender := c.Sender()
	if f.IsAuthorized(sender) {
		return true
	}

	attrs := []any{}
	if sender != nil {
		attrs = append(attrs, slog.Int64("user_id", sender.ID))
	}
	if chat := c.Chat(); chat != nil {
		attrs = append(attrs, slog.Int64("chat_id", chat.ID))
	}
	f.log.Info("access denied", attrs...)

	return false
}

// Stage rejects unauthorized senders with deniedText. Nothing downstream runs for them.
func (f *Filter) Stage(deniedText string) pipeline.Stage {
	return func(c telebot.Context) pipeline.Decision {
		if f.Check(c) {
			return pipeline.Continue()
		}
		return pipeline.Reply(deniedText).WithOutcome(metrics.OutcomeDenied)
	}
}
