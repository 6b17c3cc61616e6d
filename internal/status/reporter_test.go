package status

import (
	"regexp"
	"runtime"
	"strconv"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Proton-105/gatekeeper-bot/internal/i18n"
)

func TestReporter_Snapshot(t *testing.T) {
	started := time.Date(2025, 1, 1, 10, 0, 0, 0, time.UTC)
	now := started.Add(3*time.Hour + 25*time.Minute + 7*time.Second + 900*time.Millisecond)

	r := NewReporter(started, "",
		WithClock(func() time.Time { return now }),
		WithHeapReader(func() uint64 { return 5*bytesPerMB + bytesPerMB/2 }),
	)

	snap := r.Snapshot()

	hours, minutes, seconds := snap.UptimeParts()
	assert.Equal(t, int64(3), hours)
	assert.Equal(t, int64(25), minutes)
	assert.Equal(t, int64(7), seconds)
	assert.Equal(t, uint64(6), snap.HeapMB)
	assert.Equal(t, DefaultEnvironment, snap.Environment)
	assert.Equal(t, runtime.Version(), snap.RuntimeVersion)
	assert.Equal(t, now, snap.Timestamp)
}

func TestReporter_ClockSkewNeverNegative(t *testing.T) {
	started := time.Now()
	r := NewReporter(started, "production",
		WithClock(func() time.Time { return started.Add(-time.Minute) }),
	)

	snap := r.Snapshot()
	assert.Equal(t, time.Duration(0), snap.Uptime)
	assert.Equal(t, "production", snap.Environment)
}

func TestReporter_RealReaders(t *testing.T) {
	r := NewReporter(time.Now(), "test")

	snap := r.Snapshot()
	assert.GreaterOrEqual(t, snap.Uptime, time.Duration(0))
	assert.NotEmpty(t, snap.RuntimeVersion)
}

func TestFormat(t *testing.T) {
	m, err := i18n.Load("pt")
	require.NoError(t, err)

	snap := Snapshot{
		Uptime:         90*time.Minute + 5*time.Second,
		HeapMB:         12,
		RuntimeVersion: "go1.24.0",
		Environment:    "staging",
		Timestamp:      time.Date(2025, 3, 4, 5, 6, 7, 0, time.Local),
	}

	text := Format(snap, m.Translator("pt"))

	assert.Contains(t, text, "1h 30m 5s")
	assert.Contains(t, text, "12MB")
	assert.Contains(t, text, "go1.24.0")
	assert.Contains(t, text, "staging")
	assert.Contains(t, text, "04/03/2025, 05:06:07")
	assert.NotContains(t, text, "{")

	matches := regexp.MustCompile(`(\d+)h (\d+)m (\d+)s`).FindStringSubmatch(text)
	require.Len(t, matches, 4)
	for _, part := range matches[1:] {
		n, err := strconv.Atoi(part)
		require.NoError(t, err)
		assert.GreaterOrEqual(t, n, 0)
	}
}

func TestFormat_EscapesMarkdownValues(t *testing.T) {
	m, err := i18n.Load("pt")
	require.NoError(t, err)

	snap := Snapshot{
		RuntimeVersion: "go1.24.0_custom",
		Environment:    "prod_eu",
		Timestamp:      time.Now(),
	}

	text := Format(snap, m.Default())

	assert.Contains(t, text, `prod\_eu`)
	assert.Contains(t, text, `go1.24.0\_custom`)
	assert.NotContains(t, text, " prod_eu")
}
