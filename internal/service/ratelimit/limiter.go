package ratelimit

import (
	"sync"
	"time"

	gocache "github.com/patrickmn/go-cache"
)

type bucket struct {
	tokens float64
	last   time.Time
}

// Limiter is a keyed token bucket. Idle buckets expire so the key space stays
// bounded by recent callers.
type Limiter struct {
	mu         sync.Mutex
	buckets    *gocache.Cache
	capacity   float64
	refillRate float64 // tokens per second
	now        func() time.Time
}

// Option configures a Limiter.
type Option func(*Limiter)

// WithClock overrides the time source.
func WithClock(now func() time.Time) Option {
	return func(l *Limiter) { l.now = now }
}

// New returns a limiter that allows bursts of capacity and refills at
// refillPerSec. A non-positive capacity disables limiting.
func New(capacity, refillPerSec float64, opts ...Option) *Limiter {
	l := &Limiter{capacity: capacity, refillRate: refillPerSec, now: time.Now}
	for _, opt := range opts {
		opt(l)
	}
	idle := 10 * time.Minute
	if refillPerSec > 0 {
		// After this long an idle bucket is full again and can be dropped.
		if full := time.Duration(capacity / refillPerSec * float64(time.Second)); full > idle {
			idle = full
		}
	}
	l.buckets = gocache.New(idle, idle)
	return l
}

// Allow returns true if one token can be consumed for key.
func (l *Limiter) Allow(key string) bool {
	if l.capacity <= 0 {
		return true
	}
	now := l.now()
	l.mu.Lock()
	defer l.mu.Unlock()

	var b *bucket
	if v, ok := l.buckets.Get(key); ok {
		b = v.(*bucket)
	} else {
		b = &bucket{tokens: l.capacity, last: now}
	}
	if elapsed := now.Sub(b.last).Seconds(); elapsed > 0 {
		b.tokens += elapsed * l.refillRate
		if b.tokens > l.capacity {
			b.tokens = l.capacity
		}
		b.last = now
	}
	allowed := b.tokens >= 1
	if allowed {
		b.tokens--
	}
	l.buckets.SetDefault(key, b)
	return allowed
}
