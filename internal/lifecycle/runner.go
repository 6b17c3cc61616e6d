package lifecycle

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"time"
)

// Transport is the update loop driven by Runner. Start blocks until Stop returns.
type Transport interface {
	Start()
	Stop()
}

// SignalCause is the cancellation cause recorded for a termination signal.
type SignalCause struct {
	Signal os.Signal
}

func (s SignalCause) Error() string {
	return "received signal " + s.Signal.String()
}

// Runner starts a Transport and stops it when the context is cancelled.
type Runner struct {
	log *slog.Logger
}

// NewRunner returns a Runner that logs through log, or slog.Default when nil.
func NewRunner(log *slog.Logger) *Runner {
	if log == nil {
		log = slog.Default()
	}
	return &Runner{log: log}
}

// Run blocks until ctx is done, then stops the transport and waits for its loop to exit.
// If the transport loop exits on its own, Run returns ErrTransportExited.
func (r *Runner) Run(ctx context.Context, t Transport) error {
	r.log.Info("starting update loop")

	done := make(chan struct{})
	go func() {
		defer close(done)
		t.Start()
	}()

	select {
	case <-done:
		return ErrTransportExited
	case <-ctx.Done():
	}

	r.log.Info("shutting down", slog.String("reason", reason(ctx)))

	start := time.Now()
	t.Stop()
	<-done

	r.log.Info("bot stopped", slog.Duration("elapsed", time.Since(start)))
	return nil
}

// ErrTransportExited is returned when the transport stops without being asked to.
var ErrTransportExited = errors.New("transport exited unexpectedly")

func reason(ctx context.Context) string {
	var sig SignalCause
	if cause := context.Cause(ctx); errors.As(cause, &sig) && sig.Signal != nil {
		return sig.Signal.String()
	}
	if err := ctx.Err(); err != nil {
		return err.Error()
	}
	return "unknown"
}
