package idempotency

import (
	"context"
	"strconv"
	"time"
)

const (
	StatusProcessing = "processing"
	StatusCompleted  = "completed"
)

// Record is the stored state of one idempotency key.
type Record struct {
	Status      string
	CompletedAt time.Time
}

// Store persists idempotency locks and records.
type Store interface {
	Lock(ctx context.Context, key string, lockTTL time.Duration) (bool, error)
	Get(ctx context.Context, key string) (*Record, error)
	Set(ctx context.Context, key string, record *Record, ttl time.Duration) error
	ReleaseLock(ctx context.Context, key string) error
	// Sweep drops entries that will never expire on their own and returns how many were removed.
	Sweep(ctx context.Context, maxTTL time.Duration) (int, error)
}

// UpdateKey returns the idempotency key of a Telegram update.
func UpdateKey(updateID int) string {
	if updateID == 0 {
		return ""
	}
	return "update:" + strconv.Itoa(updateID)
}
