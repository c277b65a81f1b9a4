// Package ratelimit provides the per-client sliding-window limiter used
// for admission control ahead of generation.
package ratelimit

import (
	"sync"
	"time"
)

// Limiter tracks request timestamps per client key inside a sliding
// window. The zero value is not usable; construct with New.
type Limiter struct {
	mu   sync.Mutex
	hits map[string][]time.Time

	// now is swappable in tests.
	now func() time.Time
}

func New() *Limiter {
	return &Limiter{
		hits: make(map[string][]time.Time),
		now:  time.Now,
	}
}

// Check reports whether a request under key is admitted given at most max
// requests per window. On denial it also returns how long the caller
// should wait before retrying; a denied request consumes no slot. A max
// or window of zero or less disables limiting for the call.
func (l *Limiter) Check(key string, max int, window time.Duration) (bool, time.Duration) {
	if max <= 0 || window <= 0 {
		return true, 0
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	cutoff := now.Add(-window)

	kept := l.hits[key][:0]
	for _, ts := range l.hits[key] {
		if ts.After(cutoff) {
			kept = append(kept, ts)
		}
	}

	if len(kept) >= max {
		l.hits[key] = kept
		retry := window - now.Sub(kept[0])
		if retry < 0 {
			retry = 0
		}
		return false, retry
	}

	l.hits[key] = append(kept, now)
	return true, 0
}

// Reset drops all recorded requests for every key.
func (l *Limiter) Reset() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.hits = make(map[string][]time.Time)
}
