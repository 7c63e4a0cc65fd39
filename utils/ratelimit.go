package utils

import (
	"sync"
	"time"
)

type bucket struct {
	count   int
	resetAt time.Time
}

// FixedWindowLimiter caps requests per key to max within each window.
// Callers that want a single process-wide budget pass a constant key.
type FixedWindowLimiter struct {
	mu      sync.Mutex
	win     time.Duration
	max     int
	buckets map[string]*bucket
}

// NewFixedWindowLimiter builds a limiter allowing max requests per window
func NewFixedWindowLimiter(max int, window time.Duration) *FixedWindowLimiter {
	return &FixedWindowLimiter{
		win:     window,
		max:     max,
		buckets: make(map[string]*bucket),
	}
}

// Allow records a request against key and reports whether it fits inside
// the current window. When denied it returns the time until the window resets.
func (l *FixedWindowLimiter) Allow(key string) (bool, time.Duration) {
	now := time.Now()
	l.mu.Lock()
	defer l.mu.Unlock()

	b := l.buckets[key]
	if b == nil || now.After(b.resetAt) {
		b = &bucket{count: 0, resetAt: now.Add(l.win)}
		l.buckets[key] = b
	}
	b.count++
	if b.count <= l.max {
		return true, 0
	}
	return false, time.Until(b.resetAt)
}
