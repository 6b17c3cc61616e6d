package ratelimit

import (
	"context"
	"sync"
	"time"
)

// MemoryLimiter keeps each user's recent update times in process memory.
type MemoryLimiter struct {
	rules Rules
	now   func() time.Time

	mu    sync.Mutex
	users map[int64][]time.Time
}

var _ Limiter = (*MemoryLimiter)(nil)

// NewMemoryLimiter returns a limiter enforcing rules for a single process.
func NewMemoryLimiter(rules Rules) *MemoryLimiter {
	return &MemoryLimiter{
		rules: rules,
		now:   time.Now,
		users: make(map[int64][]time.Time),
	}
}

func (m *MemoryLimiter) Allow(_ context.Context, userID int64) (Decision, error) {
	now := m.now()

	m.mu.Lock()
	defer m.mu.Unlock()

	hits := inWindow(m.users[userID], now.Add(-m.rules.Window))
	if len(hits) >= m.rules.Limit {
		m.users[userID] = hits
		return Decision{RetryAfter: retryAfter(hits, now, m.rules.Window)}, nil
	}

	hits = append(hits, now)
	m.users[userID] = hits
	return Decision{Allowed: true, Remaining: m.rules.Limit - len(hits)}, nil
}

// Sweep forgets users with nothing left in the window and returns how many were dropped.
func (m *MemoryLimiter) Sweep() int {
	cutoff := m.now().Add(-m.rules.Window)

	m.mu.Lock()
	defer m.mu.Unlock()

	removed := 0
	for id, hits := range m.users {
		if len(hits) == 0 || !hits[len(hits)-1].After(cutoff) {
			delete(m.users, id)
			removed++
		}
	}
	return removed
}

// Tracked returns the number of users currently held in memory.
func (m *MemoryLimiter) Tracked() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.users)
}

// inWindow drops the hits at or before cutoff. hits is ordered oldest first.
func inWindow(hits []time.Time, cutoff time.Time) []time.Time {
	i := 0
	for i < len(hits) && !hits[i].After(cutoff) {
		i++
	}
	return hits[i:]
}

func retryAfter(hits []time.Time, now time.Time, window time.Duration) time.Duration {
	if len(hits) == 0 {
		return window
	}
	if d := hits[0].Add(window).Sub(now); d > 0 {
		return d
	}
	return 0
}
