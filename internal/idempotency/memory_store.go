package idempotency

import (
	"context"
	"sync"
	"time"
)

type memoryEntry struct {
	record    *Record
	locked    bool
	lockUntil time.Time
	expiresAt time.Time
}

// MemoryStore keeps idempotency state in process. It is used when Redis is not configured.
type MemoryStore struct {
	mu      sync.Mutex
	entries map[string]*memoryEntry
	now     func() time.Time
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		entries: make(map[string]*memoryEntry),
		now:     time.Now,
	}
}

func (s *MemoryStore) Lock(_ context.Context, key string, lockTTL time.Duration) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	entry := s.entryLocked(key, now)
	if entry.locked && now.Before(entry.lockUntil) {
		return false, nil
	}

	entry.locked = true
	entry.lockUntil = now.Add(lockTTL)
	return true, nil
}

func (s *MemoryStore) Get(_ context.Context, key string) (*Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	entry, ok := s.entries[key]
	if !ok || entry.record == nil {
		return nil, nil
	}

	if !entry.expiresAt.IsZero() && !s.now().Before(entry.expiresAt) {
		entry.record = nil
		return nil, nil
	}

	record := *entry.record
	return &record, nil
}

func (s *MemoryStore) Set(_ context.Context, key string, record *Record, ttl time.Duration) error {
	if record == nil {
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	entry := s.entryLocked(key, now)
	copied := *record
	entry.record = &copied
	entry.expiresAt = now.Add(ttl)
	return nil
}

func (s *MemoryStore) ReleaseLock(_ context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if entry, ok := s.entries[key]; ok {
		entry.locked = false
		entry.lockUntil = time.Time{}
		if entry.record == nil {
			delete(s.entries, key)
		}
	}
	return nil
}

// Sweep removes expired records and stale locks.
func (s *MemoryStore) Sweep(_ context.Context, _ time.Duration) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	removed := 0
	for key, entry := range s.entries {
		recordGone := entry.record == nil || !now.Before(entry.expiresAt)
		lockGone := !entry.locked || !now.Before(entry.lockUntil)
		if recordGone && lockGone {
			delete(s.entries, key)
			removed++
		}
	}
	return removed, nil
}

// Len returns the number of tracked keys.
func (s *MemoryStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.entries)
}

func (s *MemoryStore) entryLocked(key string, now time.Time) *memoryEntry {
	entry, ok := s.entries[key]
	if !ok {
		entry = &memoryEntry{}
		s.entries[key] = entry
	}
	if entry.record != nil && !entry.expiresAt.IsZero() && !now.Before(entry.expiresAt) {
		entry.record = nil
	}
	return entry
}
