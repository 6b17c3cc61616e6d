// Package metrics exposes Prometheus instruments for update handling.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Update outcomes.
const (
	OutcomeHandled     = "handled"
	OutcomeDenied      = "denied"
	OutcomeRateLimited = "rate_limited"
	OutcomeDuplicate   = "duplicate"
	OutcomeFailed      = "failed"
)

var (
	updatesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "bot_updates_total",
			Help: "Total number of inbound updates labeled by outcome",
		},
		[]string{"outcome"},
	)
	botCommandsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "bot_commands_total",
			Help: "Total number of routed messages labeled by command and status",
		},
		[]string{"command", "status"},
	)
	commandDurationSeconds = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "command_duration_seconds",
			Help:    "Duration of routed handlers in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"command"},
	)
	deliveryFailuresTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "bot_delivery_failures_total",
			Help: "Total number of replies that could not be delivered",
		},
		[]string{"reply"},
	)
	errorsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "errors_total",
			Help: "Total number of errors split by code and severity",
		},
		[]string{"code", "severity"},
	)
	botInfo = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "bot_info",
			Help: "Static information about the running bot",
		},
		[]string{"username", "environment"},
	)
	rateLimitDecisionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "bot_ratelimit_decisions_total",
			Help: "Rate limit decisions labeled by backend and result",
		},
		[]string{"backend", "result"},
	)
	rateLimitBackendErrorsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "bot_ratelimit_backend_errors_total",
			Help: "Rate limit checks the backend could not answer",
		},
		[]string{"backend"},
	)
	allowListSize = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "bot_allowlist_size",
			Help: "Number of user IDs allowed to use the bot",
		},
	)
)

// RecordUpdate counts an inbound update by outcome.
func RecordUpdate(outcome string) {
	if outcome == "" {
		outcome = "unknown"
	}

	updatesTotal.WithLabelValues(outcome).Inc()
}

// RecordCommand increments command counters and records duration.
func RecordCommand(command, status string, duration time.Duration) {
	if command == "" {
		command = "unknown"
	}
	if status == "" {
		status = "unknown"
	}

	botCommandsTotal.WithLabelValues(command, status).Inc()
	commandDurationSeconds.WithLabelValues(command).Observe(duration.Seconds())
}

// RecordDeliveryFailure counts a reply that failed to send.
func RecordDeliveryFailure(reply string) {
	if reply == "" {
		reply = "unknown"
	}

	deliveryFailuresTotal.WithLabelValues(reply).Inc()
}

// RecordError increments error counters with metadata.
func RecordError(code, severity string) {
	if code == "" {
		code = "unknown"
	}
	if severity == "" {
		severity = "unknown"
	}

	errorsTotal.WithLabelValues(code, severity).Inc()
}

// RecordRateLimit counts a limiter decision.
func RecordRateLimit(backend string, allowed bool) {
	result := "rejected"
	if allowed {
		result = "allowed"
	}

	rateLimitDecisionsTotal.WithLabelValues(backend, result).Inc()
}

// RecordRateLimitBackendError counts a failed limiter backend call.
func RecordRateLimitBackendError(backend string) {
	rateLimitBackendErrorsTotal.WithLabelValues(backend).Inc()
}

// SetBotInfo publishes the bot identity once it is known.
func SetBotInfo(username, environment string) {
	botInfo.Reset()
	botInfo.WithLabelValues(username, environment).Set(1)
}

// SetAllowListSize publishes the number of allowed users.
func SetAllowListSize(n int) {
	allowListSize.Set(float64(n))
}
