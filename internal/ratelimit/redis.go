package ratelimit

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

var fixedWindowScript = redis.NewScript(`
-- KEYS[1] = attempt counter key
-- ARGV[1] = max attempts (int)
-- ARGV[2] = window_ms (int)
--
-- Returns the attempt count after increment; the caller compares it to the
-- limit. The first attempt in a window sets the TTL.
local current = redis.call('INCR', KEYS[1])
if current == 1 then
  redis.call('PEXPIRE', KEYS[1], ARGV[2])
else
  -- Ensure TTL exists even if key already existed without TTL
  if redis.call('PTTL', KEYS[1]) < 0 then
    redis.call('PEXPIRE', KEYS[1], ARGV[2])
  end
end
return current
`)

// RedisLimiter is a fixed-window limiter shared across replicas. Window
// expiry is handled by key TTLs, so Cleanup is a no-op.
type RedisLimiter struct {
	rdb         *redis.Client
	keyPrefix   string
	maxAttempts int
	window      time.Duration
}

func NewRedisLimiter(rdb *redis.Client, maxAttempts int, window time.Duration) (*RedisLimiter, error) {
	if rdb == nil {
		return nil, fmt.Errorf("redis client is nil")
	}
	if maxAttempts <= 0 {
		maxAttempts = DefaultMaxAttempts
	}
	if window <= 0 {
		window = DefaultWindow
	}
	return &RedisLimiter{
		rdb:         rdb,
		keyPrefix:   "authlimit:",
		maxAttempts: maxAttempts,
		window:      window,
	}, nil
}

func (l *RedisLimiter) Check(ctx context.Context, clientID string) (bool, error) {
	if clientID == "" {
		return false, fmt.Errorf("clientID is required")
	}
	key := l.keyPrefix + clientID
	count, err := fixedWindowScript.Run(ctx, l.rdb, []string{key}, l.maxAttempts, l.window.Milliseconds()).Int()
	if err != nil {
		return false, err
	}
	return count > l.maxAttempts, nil
}

func (l *RedisLimiter) Cleanup(context.Context) {}
