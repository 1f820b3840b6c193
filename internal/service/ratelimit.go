package service

import (
	"sync"
	"time"
)

const (
	limiterSweepInterval = 5 * time.Minute
	limiterStaleAfter    = 10 * time.Minute
)

// RateLimiter is an in-memory per-key token bucket, used to slow down
// credential guessing on the login and register endpoints. Keys are client
// addresses. It holds no user or session data, so losing it on restart is
// harmless. Safe for concurrent use.
type RateLimiter struct {
	mu      sync.Mutex
	entries map[string]*limiterEntry

	refillPerSec float64
	burst        float64
}

type limiterEntry struct {
	tokens   float64
	lastSeen time.Time
}

// NewRateLimiter allows bursts of up to burst requests per key, refilling at
// refillPerSec tokens per second. A background goroutine sweeps entries idle
// longer than limiterStaleAfter.
func NewRateLimiter(refillPerSec, burst float64) *RateLimiter {
	l := &RateLimiter{
		entries:      make(map[string]*limiterEntry),
		refillPerSec: refillPerSec,
		burst:        burst,
	}
	go l.sweep()
	return l
}

// Allow reports whether key may proceed, consuming one token if so.
func (l *RateLimiter) Allow(key string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := time.Now()
	e, ok := l.entries[key]
	if !ok {
		e = &limiterEntry{tokens: l.burst, lastSeen: now}
		l.entries[key] = e
	} else {
		elapsed := now.Sub(e.lastSeen).Seconds()
		e.tokens = min(e.tokens+elapsed*l.refillPerSec, l.burst)
		e.lastSeen = now
	}

	if e.tokens < 1 {
		return false
	}
	e.tokens--
	return true
}

func (l *RateLimiter) sweep() {
	ticker := time.NewTicker(limiterSweepInterval)
	for range ticker.C {
		cutoff := time.Now().Add(-limiterStaleAfter)
		l.mu.Lock()
		for key, e := range l.entries {
			if e.lastSeen.Before(cutoff) {
				delete(l.entries, key)
			}
		}
		l.mu.Unlock()
	}
}
