package usecase

import (
	"context"
	"errors"
	"fmt"
	"time"

	"FxPulse/internal/domain/models"
	"FxPulse/internal/domain/repository"
	"FxPulse/internal/services/session"
	"FxPulse/pkg/cache"
	applogger "FxPulse/pkg/logger"
)

// batchLockTTL bounds how long a crashed batch can hold its window.
const batchLockTTL = 5 * time.Minute

// BatchGenerator runs the generator over every active pair.
type BatchGenerator struct {
	gen      *SignalGenerator
	settings repository.SettingsStore
	locks    cache.Service
	metrics  repository.Metrics
	log      *applogger.Logger
}

// NewBatchGenerator creates a batch generator. locks may be nil, in which
// case concurrent batches are not prevented.
func NewBatchGenerator(
	gen *SignalGenerator,
	settings repository.SettingsStore,
	locks cache.Service,
	metrics repository.Metrics,
	log *applogger.Logger,
) *BatchGenerator {
	return &BatchGenerator{gen: gen, settings: settings, locks: locks, metrics: metrics, log: log}
}

// ActivePairs returns the custom pairs when any are set, else the defaults of
// the session at now.
func ActivePairs(settings *models.Settings, now time.Time) []string {
	if len(settings.CustomPairs) > 0 {
		return append([]string(nil), settings.CustomPairs...)
	}
	return session.DefaultPairs(session.Current(now))
}

// GenerateAll produces signals for the active pairs, skipping pairs that fail
// or are rejected. Successes are returned in iteration order.
func (b *BatchGenerator) GenerateAll(ctx context.Context) ([]models.Signal, error) {
	now := b.gen.Now()
	settings, err := b.settings.Get(ctx)
	if err != nil {
		return nil, fmt.Errorf("load settings: %w", err)
	}

	pairs := ActivePairs(settings, now)
	if len(pairs) == 0 {
		b.metrics.RecordRejection(models.RejectNoActivePairs)
		return nil, models.ErrNoActivePairs
	}

	if b.locks != nil {
		start, _ := b.gen.Window(now)
		key := cache.GenerateKeyWithParams("batch", start.Unix())
		ok, err := b.locks.TryLock(ctx, key, batchLockTTL)
		if err != nil {
			// Without the lock store we still generate; upserts keep rows unique.
			b.log.Warn("batch lock unavailable", applogger.Error(err))
		} else if !ok {
			b.metrics.RecordRejection(models.RejectBusy)
			return nil, models.ErrBatchBusy
		} else {
			defer func() {
				if err := b.locks.Unlock(context.WithoutCancel(ctx), key); err != nil {
					b.log.Warn("batch unlock failed", applogger.Error(err))
				}
			}()
		}
	}

	b.metrics.RecordBatch(len(pairs))
	out := make([]models.Signal, 0, len(pairs))
	for _, pair := range pairs {
		if err := ctx.Err(); err != nil {
			return out, err
		}
		sig, err := b.gen.GenerateAt(ctx, pair, settings, now)
		if err != nil {
			var rej *models.RejectionError
			if !errors.As(err, &rej) {
				b.log.Error("batch pair failed", applogger.String("pair", pair), applogger.Error(err))
			}
			continue
		}
		out = append(out, *sig)
	}

	b.log.Info("batch finished",
		applogger.Int("pairs", len(pairs)),
		applogger.Int("signals", len(out)),
	)
	return out, nil
}
