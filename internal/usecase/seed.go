package usecase

import (
	"context"
	"fmt"
	"time"

	"FxPulse/internal/domain/models"
	"FxPulse/internal/domain/repository"
	applogger "FxPulse/pkg/logger"
	xutil "FxPulse/pkg/util"
)

// SeedDemo inserts two sample signals into an empty signal table: a completed
// AUD/JPY BUY from an hour ago and an active EUR/USD SELL for the current
// window. It does nothing when any signal exists.
func SeedDemo(ctx context.Context, signals repository.SignalStore, log *applogger.Logger, now time.Time) error {
	n, err := signals.Count(ctx)
	if err != nil {
		return fmt.Errorf("count signals: %w", err)
	}
	if n > 0 {
		return nil
	}

	current := xutil.AlignWindow(now, models.WindowLength, xutil.RoundFloor)
	past := current.Add(-time.Hour)
	demo := []models.Signal{
		{
			Pair:       "AUD/JPY",
			Action:     models.ActionBuy,
			Confidence: 95,
			StartTime:  past,
			EndTime:    past.Add(models.WindowLength),
			Status:     models.StatusCompleted,
			Analysis:   "Strong bullish momentum after the Tokyo open | Pattern: Ascending triangle",
		},
		{
			Pair:       "EUR/USD",
			Action:     models.ActionSell,
			Confidence: 88,
			StartTime:  current,
			EndTime:    current.Add(models.WindowLength),
			Status:     models.StatusActive,
			Analysis:   "Rejection at resistance with bearish divergence on RSI | Pattern: Double top",
		},
	}
	for i := range demo {
		if err := signals.Create(ctx, &demo[i]); err != nil {
			return fmt.Errorf("seed %s: %w", demo[i].Pair, err)
		}
	}
	log.Info("demo signals seeded", applogger.Int("count", len(demo)))
	return nil
}
