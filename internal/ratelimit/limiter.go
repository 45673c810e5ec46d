// Package ratelimit is the process-wide inbound request limiter of §5: a DoS
// cushion unrelated to booking quotas, keyed by client identity (IP by
// default).
package ratelimit

import (
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// Limiter tracks one token bucket per client identity, replenished to allow
// perWindow requests every window.
type Limiter struct {
	mu       sync.Mutex
	visitors map[string]*visitor
	rate     rate.Limit
	burst    int
	window   time.Duration
}

type visitor struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// New builds a limiter allowing perWindow requests per client per window,
// e.g. New(100, 15*time.Minute) for the §5 default.
func New(perWindow int, window time.Duration) *Limiter {
	l := &Limiter{
		visitors: make(map[string]*visitor),
		rate:     rate.Every(window / time.Duration(perWindow)),
		burst:    perWindow,
		window:   window,
	}
	go l.reap()
	return l
}

// Allow reports whether the client identified by key may proceed now.
func (l *Limiter) Allow(key string) bool {
	return l.get(key).Allow()
}

func (l *Limiter) get(key string) *rate.Limiter {
	l.mu.Lock()
	defer l.mu.Unlock()

	v, ok := l.visitors[key]
	if !ok {
		v = &visitor{limiter: rate.NewLimiter(l.rate, l.burst)}
		l.visitors[key] = v
	}
	v.lastSeen = time.Now()
	return v.limiter
}

// reap evicts visitors idle for longer than two windows so the map does not
// grow unbounded under a churn of distinct client identities.
func (l *Limiter) reap() {
	ticker := time.NewTicker(l.window)
	defer ticker.Stop()
	for range ticker.C {
		cutoff := time.Now().Add(-2 * l.window)
		l.mu.Lock()
		for k, v := range l.visitors {
			if v.lastSeen.Before(cutoff) {
				delete(l.visitors, k)
			}
		}
		l.mu.Unlock()
	}
}
