package idempotency

import (
	"context"
	"errors"
	"log/slog"
	"time"
)

// DefaultLockTTL bounds how long an update may stay in processing.
const DefaultLockTTL = 5 * time.Minute

var ErrRequestInProgress = errors.New("request with this key is already in progress")

type Operation func(ctx context.Context) error

// Result describes how Execute treated the key.
type Result struct {
	// Duplicate is true when the key had already completed and fn was not called.
	Duplicate bool
}

type Manager interface {
	Execute(ctx context.Context, key string, ttl time.Duration, fn Operation) (*Result, error)
}

type manager struct {
	store   Store
	log     *slog.Logger
	lockTTL time.Duration
	now     func() time.Time
}

func NewManager(store Store, log *slog.Logger) Manager {
	if log == nil {
		log = slog.Default()
	}

	return &manager{
		store:   store,
		log:     log,
		lockTTL: DefaultLockTTL,
		now:     time.Now,
	}
}

// Execute runs fn at most once per key within ttl. The key is marked completed
// even when fn fails, so a failed update is never replayed.
func (m *manager) Execute(ctx context.Context, key string, ttl time.Duration, fn Operation) (*Result, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	if fn == nil {
		return nil, errors.New("operation fn cannot be nil")
	}

	record, err := m.store.Get(ctx, key)
	if err != nil {
		return nil, err
	}
	if record != nil && record.Status == StatusCompleted {
		return &Result{Duplicate: true}, nil
	}

	locked, err := m.store.Lock(ctx, key, m.lockTTL)
	if err != nil {
		return nil, err
	}
	if !locked {
		return nil, ErrRequestInProgress
	}
	defer func() {
		if err := m.store.ReleaseLock(context.WithoutCancel(ctx), key); err != nil {
			m.log.Warn("failed to release idempotency lock", slog.String("key", key), slog.Any("error", err))
		}
	}()

	fnErr := fn(ctx)

	if err := m.store.Set(ctx, key, &Record{
		Status:      StatusCompleted,
		CompletedAt: m.now(),
	}, ttl); err != nil {
		m.log.Warn("failed to mark idempotency key completed", slog.String("key", key), slog.Any("error", err))
	}

	return &Result{}, fnErr
}
