package httpapi

import (
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// loginLimiter throttles login attempts per account reference, so guessing
// one account's password cannot be sped up by IP hopping and one noisy
// account cannot starve the others. Entries are created on first use and
// swept after an idle period.
type loginLimiter struct {
	limit rate.Limit
	burst int

	mu       sync.Mutex
	limiters map[string]*limiterEntry
}

type limiterEntry struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

const limiterIdleTTL = 10 * time.Minute

func newLoginLimiter(perMinute, burst int) *loginLimiter {
	return &loginLimiter{
		limit:    rate.Limit(float64(perMinute) / 60.0),
		burst:    burst,
		limiters: make(map[string]*limiterEntry),
	}
}

// Allow reports whether another attempt for key may proceed now.
func (l *loginLimiter) Allow(key string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.sweepLocked()

	e, ok := l.limiters[key]
	if !ok {
		e = &limiterEntry{limiter: rate.NewLimiter(l.limit, l.burst)}
		l.limiters[key] = e
	}
	e.lastSeen = time.Now()
	return e.limiter.Allow()
}

// sweepLocked drops idle entries; the caller holds the lock.
func (l *loginLimiter) sweepLocked() {
	cutoff := time.Now().Add(-limiterIdleTTL)
	for key, e := range l.limiters {
		if e.lastSeen.Before(cutoff) {
			delete(l.limiters, key)
		}
	}
}
