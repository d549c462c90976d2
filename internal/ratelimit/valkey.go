package ratelimit

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// ValkeyLimiter keeps fixed-window counters in a shared Valkey instance so
// the cap holds across API replicas.
type ValkeyLimiter struct {
	client *redis.Client
}

// NewValkeyLimiter creates a limiter backed by the given Valkey address.
func NewValkeyLimiter(addr string) *ValkeyLimiter {
	return &ValkeyLimiter{
		client: redis.NewClient(&redis.Options{Addr: addr}),
	}
}

// Allow increments the key's window counter, setting the window expiry on
// first touch.
func (l *ValkeyLimiter) Allow(ctx context.Context, key string) (bool, time.Duration, error) {
	counterKey := fmt.Sprintf("ratelimit:%s", key)

	count, err := l.client.Incr(ctx, counterKey).Result()
	if err != nil {
		return false, 0, fmt.Errorf("failed to increment rate limit counter: %w", err)
	}

	if count == 1 {
		if err := l.client.Expire(ctx, counterKey, Window).Err(); err != nil {
			return false, 0, fmt.Errorf("failed to set rate limit window: %w", err)
		}
	}

	if count > Limit {
		ttl, err := l.client.TTL(ctx, counterKey).Result()
		if err != nil || ttl < 0 {
			ttl = Window
		}
		return false, ttl, nil
	}

	return true, 0, nil
}

// Ping checks the Valkey connection.
func (l *ValkeyLimiter) Ping(ctx context.Context) error {
	return l.client.Ping(ctx).Err()
}
