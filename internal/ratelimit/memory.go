package ratelimit

import (
	"context"
	"sync"
	"time"
)

type window struct {
	start time.Time
	count int
}

// MemoryLimiter is a process-scoped fixed-window limiter. Counters live in
// memory and reset on restart; multi-instance deployments should use the
// Valkey limiter instead.
type MemoryLimiter struct {
	mu      sync.Mutex
	windows map[string]*window
	now     func() time.Time
}

// NewMemoryLimiter creates an in-process limiter.
func NewMemoryLimiter() *MemoryLimiter {
	return &MemoryLimiter{
		windows: make(map[string]*window),
		now:     time.Now,
	}
}

// Allow counts the request against the key's current window.
func (l *MemoryLimiter) Allow(_ context.Context, key string) (bool, time.Duration, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()

	w, ok := l.windows[key]
	if !ok || now.Sub(w.start) >= Window {
		l.windows[key] = &window{start: now, count: 1}
		return true, 0, nil
	}

	if w.count >= Limit {
		return false, Window - now.Sub(w.start), nil
	}

	w.count++
	return true, 0, nil
}
