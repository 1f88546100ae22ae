// Package notify runs best-effort work that must never block or fail the
// request that triggered it: chat notifications and event fan-out.
package notify

import (
	"context"
	"fmt"
	"sync"
	"time"

	"FxPulse/pkg/logger"

	"github.com/patrickmn/go-cache"
)

// Task is a unit of best-effort work. Its error is logged, never returned.
type Task func(ctx context.Context) error

// Option configures SideChannel.
type Option func(*SideChannel)

// WithTimeout bounds each task.
func WithTimeout(d time.Duration) Option {
	return func(c *SideChannel) { c.timeout = d }
}

// WithMaxInFlight caps concurrently running tasks. Tasks submitted above the
// cap are dropped and logged.
func WithMaxInFlight(n int) Option {
	return func(c *SideChannel) { c.sem = make(chan struct{}, n) }
}

// WithDedupTTL sets how long a task key suppresses resubmission.
func WithDedupTTL(ttl time.Duration) Option {
	return func(c *SideChannel) { c.dedupTTL = ttl }
}

// WithObserver receives each task's name and outcome ("ok", "error", "dropped", "duplicate").
func WithObserver(fn func(name, result string)) Option {
	return func(c *SideChannel) { c.observe = fn }
}

// SideChannel runs detached tasks. Submit never blocks and never reports the
// task's failure to the caller.
type SideChannel struct {
	log      *logger.Logger
	timeout  time.Duration
	dedupTTL time.Duration
	sem      chan struct{}
	seen     *cache.Cache
	observe  func(name, result string)

	mu     sync.RWMutex
	closed bool
	wg     sync.WaitGroup
}

// New creates a side channel.
func New(log *logger.Logger, opts ...Option) *SideChannel {
	c := &SideChannel{
		log:      log,
		timeout:  15 * time.Second,
		dedupTTL: 10 * time.Minute,
		sem:      make(chan struct{}, 32),
	}
	for _, opt := range opts {
		opt(c)
	}
	c.seen = cache.New(c.dedupTTL, 2*c.dedupTTL)
	return c
}

// Submit schedules task under name. A non-empty key is remembered for the
// dedup TTL and a second submission with the same key is skipped. Reports
// whether the task was scheduled.
func (c *SideChannel) Submit(name, key string, task Task) bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.closed {
		c.result(name, "dropped")
		c.log.Warn("side channel closed, task dropped", logger.String("task", name))
		return false
	}

	if key != "" {
		// Add fails when the key is still present, which makes the check atomic.
		if err := c.seen.Add(key, time.Now(), cache.DefaultExpiration); err != nil {
			c.result(name, "duplicate")
			c.log.Debug("side channel task already sent", logger.String("task", name), logger.String("key", key))
			return false
		}
	}

	select {
	case c.sem <- struct{}{}:
	default:
		if key != "" {
			c.seen.Delete(key)
		}
		c.result(name, "dropped")
		c.log.Warn("side channel saturated, task dropped", logger.String("task", name))
		return false
	}

	c.wg.Add(1)
	go c.run(name, task)
	return true
}

func (c *SideChannel) run(name string, task Task) {
	defer c.wg.Done()
	defer func() { <-c.sem }()
	defer func() {
		if r := recover(); r != nil {
			c.result(name, "error")
			c.log.Error("side channel task panicked", logger.String("task", name), logger.Any("panic", fmt.Sprint(r)))
		}
	}()

	ctx, cancel := context.WithTimeout(context.Background(), c.timeout)
	defer cancel()

	start := time.Now()
	if err := task(ctx); err != nil {
		c.result(name, "error")
		c.log.Warn("side channel task failed",
			logger.String("task", name),
			logger.Duration("took_ms", time.Since(start)),
			logger.Error(err),
		)
		return
	}
	c.result(name, "ok")
}

func (c *SideChannel) result(name, result string) {
	if c.observe != nil {
		c.observe(name, result)
	}
}

// Shutdown stops accepting tasks and waits for in-flight ones until ctx ends.
func (c *SideChannel) Shutdown(ctx context.Context) error {
	c.mu.Lock()
	c.closed = true
	c.mu.Unlock()

	done := make(chan struct{})
	go func() {
		c.wg.Wait()
		close(done)
	}()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return fmt.Errorf("side channel drain: %w", ctx.Err())
	}
}
