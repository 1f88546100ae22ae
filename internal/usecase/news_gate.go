package usecase

import (
	"context"
	"strings"
	"sync/atomic"
	"time"

	"FxPulse/internal/domain/models"
	"FxPulse/internal/domain/repository"
	"FxPulse/pkg/cache"
	applogger "FxPulse/pkg/logger"
)

const (
	newsLookback  = time.Hour
	newsLookahead = 2 * time.Hour
	newsCacheTTL  = 30 * time.Second
)

// NewsGate answers which scheduled events sit near a point in time. It never
// fails its caller: a store error is logged and reads as no news.
type NewsGate struct {
	store repository.NewsStore
	cache cache.Service
	log   *applogger.Logger
	gen   atomic.Int64
}

// NewNewsGate creates a gate. c may be nil to disable caching.
func NewNewsGate(store repository.NewsStore, c cache.Service, log *applogger.Logger) *NewsGate {
	return &NewsGate{store: store, cache: c, log: log}
}

// Window returns events for currency (all currencies when empty) with
// timestamps in [now-1h, now+2h], oldest first.
func (g *NewsGate) Window(ctx context.Context, currency string, now time.Time) []models.NewsEvent {
	currency = strings.ToUpper(strings.TrimSpace(currency))
	from, to := now.Add(-newsLookback), now.Add(newsLookahead)

	if g.cache == nil {
		events, err := g.store.Between(ctx, currency, from, to)
		if err != nil {
			g.logFailure(currency, err)
			return []models.NewsEvent{}
		}
		return events
	}

	// One cached load per minute covers every now inside that minute.
	minute := now.UTC().Truncate(time.Minute)
	key := cache.GenerateKeyWithParams("news", g.gen.Load(), currency, minute.Unix())
	cached, err := cache.GetOrLoad(ctx, g.cache, key, newsCacheTTL, func(ctx context.Context) ([]models.NewsEvent, error) {
		return g.store.Between(ctx, currency, minute.Add(-newsLookback), minute.Add(time.Minute+newsLookahead))
	})
	if err != nil {
		g.logFailure(currency, err)
		return []models.NewsEvent{}
	}

	events := make([]models.NewsEvent, 0, len(cached))
	for _, e := range cached {
		if e.Timestamp.Before(from) || e.Timestamp.After(to) {
			continue
		}
		events = append(events, e)
	}
	return events
}

func (g *NewsGate) logFailure(currency string, err error) {
	g.log.Error("news lookup failed",
		applogger.String("currency", currency),
		applogger.Error(err),
	)
}

// Blocking returns the first High impact event for currency near now.
func (g *NewsGate) Blocking(ctx context.Context, currency string, now time.Time) (*models.NewsEvent, bool) {
	return models.FirstHighImpact(g.Window(ctx, currency, now))
}

// Invalidate drops cached windows after the calendar changes.
func (g *NewsGate) Invalidate() {
	g.gen.Add(1)
}
