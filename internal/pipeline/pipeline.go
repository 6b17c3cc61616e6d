// Package pipeline runs inbound updates through an ordered list of stages
// before handing them to the final handler.
package pipeline

import (
	"log/slog"

	telebot "gopkg.in/telebot.v3"

	"github.com/Proton-105/gatekeeper-bot/internal/bot/handlers"
	apperrors "github.com/Proton-105/gatekeeper-bot/internal/errors"
	"github.com/Proton-105/gatekeeper-bot/pkg/metrics"
)

// Decision is the result of a single stage.
type Decision struct {
	halt    bool
	reply   string
	outcome string
}

// Continue passes the update to the next stage.
func Continue() Decision {
	return Decision{}
}

// Reply stops the pipeline and answers the chat with text. An empty text stops silently.
func Reply(text string) Decision {
	return Decision{halt: true, reply: text, outcome: metrics.OutcomeHandled}
}

// WithOutcome sets the metrics outcome recorded for a halted update.
func (d Decision) WithOutcome(outcome string) Decision {
	d.outcome = outcome
	return d
}

func (d Decision) Halted() bool    { return d.halt }
func (d Decision) Text() string    { return d.reply }
func (d Decision) Outcome() string { return d.outcome }

// Stage inspects an update and decides whether processing continues.
type Stage func(c telebot.Context) Decision

// Pipeline drives stages in registration order.
type Pipeline struct {
	stages []Stage
	log    *slog.Logger
}

func New(log *slog.Logger, stages ...Stage) *Pipeline {
	if log == nil {
		log = slog.Default()
	}

	p := &Pipeline{log: log}
	for _, s := range stages {
		if s != nil {
			p.stages = append(p.stages, s)
		}
	}
	return p
}

// Then returns a handler that runs every stage and, if none halts, final.
func (p *Pipeline) Then(final handlers.Handler) handlers.Handler {
	return func(c telebot.Context) error {
		for _, stage := range p.stages {
			d := stage(c)
			if !d.Halted() {
				continue
			}

			metrics.RecordUpdate(d.Outcome())
			if d.Text() != "" {
				p.send(c, d)
			}
			return nil
		}

		if final == nil {
			metrics.RecordUpdate(metrics.OutcomeHandled)
			return nil
		}

		if err := final(c); err != nil {
			metrics.RecordUpdate(metrics.OutcomeFailed)
			return err
		}

		metrics.RecordUpdate(metrics.OutcomeHandled)
		return nil
	}
}

func (p *Pipeline) send(c telebot.Context, d Decision) {
	if err := c.Send(d.Text()); err != nil {
		appErr := apperrors.NewDeliveryError(d.Outcome()+" reply", err)
		metrics.RecordDeliveryFailure(d.Outcome())

		attrs := []any{slog.String("code", appErr.Code), slog.Any("error", appErr)}
		if chat := c.Chat(); chat != nil {
			attrs = append(attrs, slog.Int64("chat_id", chat.ID))
		}
		p.log.Error("failed to deliver reply", attrs...)
	}
}
