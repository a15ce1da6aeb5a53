package ratelimit

import (
	"sync"
	"time"
)

// Limit configures a token bucket: sustained rate plus burst headroom.
type Limit struct {
	RequestsPerMinute int
	BurstSize         int
}

// Stats reports counters since the limiter was created.
type Stats struct {
	TotalRequests   int64 `json:"totalRequests"`
	BlockedRequests int64 `json:"blockedRequests"`
	ActiveKeys      int   `json:"activeKeys"`
}

type bucket struct {
	tokens     float64
	lastRefill time.Time
}

// Limiter is a per-key token bucket rate limiter held in process memory.
// Keys are whatever the caller wants to throttle on, typically client IPs.
// Limits apply per process; behind a load balancer each instance enforces
// its own budget.
type Limiter struct {
	limit Limit

	mu      sync.Mutex
	buckets map[string]*bucket
	stats   Stats

	stop     chan struct{}
	stopOnce sync.Once
}

// NewLimiter creates a limiter and starts its bucket cleanup loop.
func NewLimiter(limit Limit) *Limiter {
	if limit.BurstSize <= 0 {
		limit.BurstSize = limit.RequestsPerMinute
	}

	l := &Limiter{
		limit:   limit,
		buckets: make(map[string]*bucket),
		stop:    make(chan struct{}),
	}
	go l.cleanup()
	return l
}

// Allow reports whether a request under the given key may proceed, and if
// not, how long until a token is available.
func (l *Limiter) Allow(key string) (bool, time.Duration) {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.stats.TotalRequests++

	now := time.Now()
	b, ok := l.buckets[key]
	if !ok {
		b = &bucket{
			tokens:     float64(l.limit.BurstSize),
			lastRefill: now,
		}
		l.buckets[key] = b
	}

	refill := now.Sub(b.lastRefill).Minutes() * float64(l.limit.RequestsPerMinute)
	b.tokens += refill
	if b.tokens > float64(l.limit.BurstSize) {
		b.tokens = float64(l.limit.BurstSize)
	}
	b.lastRefill = now

	if b.tokens >= 1 {
		b.tokens--
		return true, 0
	}

	l.stats.BlockedRequests++
	deficit := 1 - b.tokens
	wait := time.Duration(deficit / float64(l.limit.RequestsPerMinute) * float64(time.Minute))
	return false, wait
}

// Limit returns the configured limit.
func (l *Limiter) Limit() Limit {
	return l.limit
}

// GetStats returns a snapshot of the limiter counters.
func (l *Limiter) GetStats() Stats {
	l.mu.Lock()
	defer l.mu.Unlock()

	stats := l.stats
	stats.ActiveKeys = len(l.buckets)
	return stats
}

// Stop ends the cleanup loop. Idempotent.
func (l *Limiter) Stop() {
	l.stopOnce.Do(func() { close(l.stop) })
}

// cleanup drops buckets idle long enough to be full again, so the map does
// not grow with every client ever seen.
func (l *Limiter) cleanup() {
	ticker := time.NewTicker(10 * time.Minute)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			l.mu.Lock()
			now := time.Now()
			for key, b := range l.buckets {
				if now.Sub(b.lastRefill) > time.Hour {
					delete(l.buckets, key)
				}
			}
			l.mu.Unlock()
		case <-l.stop:
			return
		}
	}
}
