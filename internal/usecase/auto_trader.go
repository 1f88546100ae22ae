package usecase

import (
	"context"
	"errors"
	"fmt"

	"FxPulse/internal/domain/models"
	"FxPulse/internal/domain/repository"
	applogger "FxPulse/pkg/logger"
)

// AutoTrader runs a batch on each tick while settings.autoTrading is on.
type AutoTrader struct {
	batch    *BatchGenerator
	settings repository.SettingsStore
	log      *applogger.Logger
}

func NewAutoTrader(batch *BatchGenerator, settings repository.SettingsStore, log *applogger.Logger) *AutoTrader {
	return &AutoTrader{batch: batch, settings: settings, log: log}
}

// Run is the scheduled job. Break sessions and a batch already running for
// the window are not errors.
func (a *AutoTrader) Run(ctx context.Context) error {
	s, err := a.settings.Get(ctx)
	if err != nil {
		return fmt.Errorf("load settings: %w", err)
	}
	if !s.AutoTrading {
		return nil
	}
	signals, err := a.batch.GenerateAll(ctx)
	switch {
	case errors.Is(err, models.ErrNoActivePairs), errors.Is(err, models.ErrBatchBusy):
		a.log.Debug("auto trading skipped", applogger.String("reason", err.Error()))
		return nil
	case err != nil:
		return err
	}
	a.log.Info("auto trading run", applogger.Int("signals", len(signals)))
	return nil
}
