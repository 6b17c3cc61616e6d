package ratelimit

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

const redisKeyPrefix = "ratelimit:user:"

// allowScript prunes the window, then records the hit only if there is room.
// Returns {allowed, remaining, retry_after_ms}.
var allowScript = redis.NewScript(`
local key = KEYS[1]
local now = tonumber(ARGV[1])
local window = tonumber(ARGV[2])
local limit = tonumber(ARGV[3])

redis.call('ZREMRANGEBYSCORE', key, '-inf', now - window)
local count = redis.call('ZCARD', key)
if count < limit then
	redis.call('ZADD', key, now, ARGV[4])
	redis.call('PEXPIRE', key, window)
	return {1, limit - count - 1, 0}
end

local oldest = redis.call('ZRANGE', key, 0, 0, 'WITHSCORES')
local retry = window
if oldest[2] then
	retry = tonumber(oldest[2]) + window - now
end
return {0, 0, retry}
`)

// RedisLimiter shares the window between every replica through one sorted set per user.
type RedisLimiter struct {
	client redis.UniversalClient
	rules  Rules
	now    func() time.Time
}

var _ Limiter = (*RedisLimiter)(nil)

// NewRedisLimiter returns a limiter backed by client.
func NewRedisLimiter(client redis.UniversalClient, rules Rules) *RedisLimiter {
	return &RedisLimiter{
		client: client,
		rules:  rules,
		now:    time.Now,
	}
}

func (l *RedisLimiter) Allow(ctx context.Context, userID int64) (Decision, error) {
	if l.client == nil {
		return Decision{}, fmt.Errorf("rate limit user %d: redis client is not configured", userID)
	}

	res, err := allowScript.Run(ctx, l.client,
		[]string{redisKey(userID)},
		l.now().UnixMilli(),
		l.rules.Window.Milliseconds(),
		l.rules.Limit,
		uuid.NewString(),
	).Int64Slice()
	if err != nil {
		return Decision{}, fmt.Errorf("rate limit user %d: %w", userID, err)
	}
	if len(res) != 3 {
		return Decision{}, fmt.Errorf("rate limit user %d: unexpected reply %v", userID, res)
	}

	return Decision{
		Allowed:    res[0] == 1,
		Remaining:  int(res[1]),
		RetryAfter: time.Duration(res[2]) * time.Millisecond,
	}, nil
}

func redisKey(userID int64) string {
	return fmt.Sprintf("%s%d", redisKeyPrefix, userID)
}
