package repository

import (
	"context"
	"time"

	"FxPulse/internal/domain/models"
)

// SignalStore persists signals and the trades generated with them.
type SignalStore interface {
	Create(ctx context.Context, s *models.Signal) error
	// UpsertWithTrade inserts s, or updates action/confidence/analysis of the
	// row with the same (pair, startTime), and writes its trade in the same
	// transaction. s is refreshed with the stored row.
	UpsertWithTrade(ctx context.Context, s *models.Signal, t *models.Trade) error
	Get(ctx context.Context, id uint) (*models.Signal, error)
	List(ctx context.Context, limit int) ([]models.Signal, error)
	// Current returns the signal live at now, or else the nearest upcoming one.
	Current(ctx context.Context, now time.Time) (*models.Signal, error)
	Count(ctx context.Context) (int64, error)
}

// TradeStore reads the trade log.
type TradeStore interface {
	List(ctx context.Context, limit int) ([]models.Trade, error)
	GetBySignal(ctx context.Context, signalID uint) (*models.Trade, error)
}

// SettingsStore owns the singleton settings row.
type SettingsStore interface {
	// Get returns the settings, creating the default row on first access.
	Get(ctx context.Context) (*models.Settings, error)
	Update(ctx context.Context, patch *models.SettingsPatch) (*models.Settings, error)
}

// NewsStore persists scheduled economic events.
type NewsStore interface {
	Create(ctx context.Context, e *models.NewsEvent) error
	// Upsert inserts events keyed on (currency, title, timestamp), refreshing impact.
	Upsert(ctx context.Context, events []models.NewsEvent) (int64, error)
	Between(ctx context.Context, currency string, from, to time.Time) ([]models.NewsEvent, error)
}

// EventPublisher fans signal events out to subscribers.
type EventPublisher interface {
	PublishSignal(ctx context.Context, ev models.SignalEvent) error
	Close() error
}

// Metrics records domain counters.
type Metrics interface {
	RecordSignal(pair string, action models.Action)
	RecordRejection(kind models.RejectionKind)
	RecordError(kind string)
	RecordLatency(op string, seconds float64)
	RecordNotification(result string)
	RecordBatch(size int)
}
