package lifecycle

import (
	"context"
	"os"
	"os/signal"
)

// NotifyContext is like signal.NotifyContext but records the received signal
// as the context cause, so Run can report which one stopped the bot.
func NotifyContext(parent context.Context, signals ...os.Signal) (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancelCause(parent)

	ch := make(chan os.Signal, 1)
	signal.Notify(ch, signals...)

	go func() {
		select {
		case sig := <-ch:
			cancel(SignalCause{Signal: sig})
		case <-ctx.Done():
		}
		signal.Stop(ch)
	}()

	return ctx, func() { cancel(context.Canceled) }
}
