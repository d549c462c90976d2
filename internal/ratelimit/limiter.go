package ratelimit

import (
	"context"
	"time"
)

// Ingestion endpoint budget: fixed window per source IP. Compiled in on
// purpose; the threshold is part of the public contract, not deployment
// tuning.
const (
	Window = time.Minute
	Limit  = 60
)

// Limiter enforces a fixed-window request cap per key. Allow reports whether
// the request fits the current window and, when it does not, how long the
// caller should wait before retrying.
type Limiter interface {
	Allow(ctx context.Context, key string) (ok bool, retryAfter time.Duration, err error)
}
