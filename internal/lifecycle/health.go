package lifecycle

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/Proton-105/gatekeeper-bot/internal/health"
)

// HealthChecker exposes liveness and readiness probes.
type HealthChecker interface {
	Liveness(ctx context.Context) error
	Readiness(ctx context.Context) error
}

// ErrNotReady is returned by Readiness when a dependency check fails.
var ErrNotReady = errors.New("not ready")

// Probes implements HealthChecker on top of a health.Checker.
type Probes struct {
	checker *health.Checker
	log     *slog.Logger
}

// NewProbes creates a new Probes instance.
func NewProbes(checker *health.Checker, log *slog.Logger) *Probes {
	if log == nil {
		log = slog.Default()
	}
	return &Probes{checker: checker, log: log}
}

// Liveness reports success while the process is able to serve requests.
func (p *Probes) Liveness(ctx context.Context) error {
	p.log.Debug("liveness probe called")
	return nil
}

// Readiness fails when any registered dependency check fails.
func (p *Probes) Readiness(ctx context.Context) error {
	p.log.Debug("readiness probe called")

	if p.checker == nil {
		return nil
	}

	if _, ok := p.checker.Check(ctx); !ok {
		return ErrNotReady
	}
	return nil
}

// Register mounts /healthz and /readyz on mux.
func (p *Probes) Register(mux *http.ServeMux) {
	mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, r *http.Request) {
		writeProbe(w, p.Liveness(r.Context()), nil)
	})

	mux.HandleFunc("GET /readyz", func(w http.ResponseWriter, r *http.Request) {
		var results map[string]string
		if p.checker != nil {
			results, _ = p.checker.Check(r.Context())
		}
		writeProbe(w, p.Readiness(r.Context()), results)
	})
}

func writeProbe(w http.ResponseWriter, err error, checks map[string]string) {
	body := struct {
		Status string            `json:"status"`
		Checks map[string]string `json:"checks,omitempty"`
	}{Status: health.StatusOK, Checks: checks}

	code := http.StatusOK
	if err != nil {
		code = http.StatusServiceUnavailable
		body.Status = err.Error()
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(body)
}
