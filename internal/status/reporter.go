// Package status computes the runtime snapshot reported by /status.
package status

import (
	"runtime"
	"strconv"
	"time"

	"github.com/Proton-105/gatekeeper-bot/internal/i18n"
	"github.com/Proton-105/gatekeeper-bot/internal/markdown"
)

// DefaultEnvironment is reported when no environment label is configured.
const DefaultEnvironment = "development"

const bytesPerMB = 1024 * 1024

// Snapshot is a point-in-time view of the process.
type Snapshot struct {
	Uptime         time.Duration
	HeapMB         uint64
	RuntimeVersion string
	Environment    string
	Timestamp      time.Time
}

// UptimeParts splits the uptime into whole hours, minutes and seconds.
func (s Snapshot) UptimeParts() (hours, minutes, seconds int64) {
	total := int64(s.Uptime / time.Second)
	if total < 0 {
		total = 0
	}

	return total / 3600, (total % 3600) / 60, total % 60
}

// Reporter builds snapshots relative to the process start time.
type Reporter struct {
	startedAt   time.Time
	environment string
	now         func() time.Time
	heapBytes   func() uint64
}

// Option customizes a Reporter.
type Option func(*Reporter)

// WithClock replaces the wall clock.
func WithClock(now func() time.Time) Option {
	return func(r *Reporter) {
		if now != nil {
			r.now = now
		}
	}
}

// WithHeapReader replaces the heap usage reader.
func WithHeapReader(read func() uint64) Option {
	return func(r *Reporter) {
		if read != nil {
			r.heapBytes = read
		}
	}
}

// NewReporter creates a Reporter. An empty environment falls back to DefaultEnvironment.
func NewReporter(startedAt time.Time, environment string, opts ...Option) *Reporter {
	if environment == "" {
		environment = DefaultEnvironment
	}

	r := &Reporter{
		startedAt:   startedAt,
		environment: environment,
		now:         time.Now,
		heapBytes:   readHeapAlloc,
	}

	for _, opt := range opts {
		opt(r)
	}

	return r
}

// Snapshot computes a fresh snapshot.
func (r *Reporter) Snapshot() Snapshot {
	now := r.now()

	uptime := now.Sub(r.startedAt)
	if uptime < 0 {
		uptime = 0
	}

	return Snapshot{
		Uptime:         uptime,
		HeapMB:         (r.heapBytes() + bytesPerMB/2) / bytesPerMB,
		RuntimeVersion: runtime.Version(),
		Environment:    r.environment,
		Timestamp:      now,
	}
}

// Format renders the snapshot with the translator's status template.
// Free-form values are escaped for Markdown.
func Format(s Snapshot, tr i18n.Translator) string {
	hours, minutes, seconds := s.UptimeParts()

	layout := tr.T(i18n.KeyStatusTimeLayout)
	if layout == i18n.KeyStatusTimeLayout {
		layout = time.DateTime
	}

	return tr.Format(i18n.KeyStatus, map[string]string{
		"hours":       strconv.FormatInt(hours, 10),
		"minutes":     strconv.FormatInt(minutes, 10),
		"seconds":     strconv.FormatInt(seconds, 10),
		"memory":      strconv.FormatUint(s.HeapMB, 10),
		"runtime":     markdown.Escape(s.RuntimeVersion),
		"environment": markdown.Escape(s.Environment),
		"timestamp":   s.Timestamp.Local().Format(layout),
	})
}

func readHeapAlloc() uint64 {
	var stats runtime.MemStats
	runtime.ReadMemStats(&stats)
	return stats.HeapAlloc
}
