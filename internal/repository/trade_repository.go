package repository

import (
	"context"
	"fmt"

	"FxPulse/internal/domain/models"
	"FxPulse/internal/domain/repository"

	"gorm.io/gorm"
)

// TradeRepository implements TradeStore on gorm.
type TradeRepository struct {
	db *gorm.DB
}

// NewTradeRepository creates the trade store.
func NewTradeRepository(db *gorm.DB) repository.TradeStore {
	return &TradeRepository{db: db}
}

func (r *TradeRepository) List(ctx context.Context, limit int) ([]models.Trade, error) {
	items := make([]models.Trade, 0)
	q := r.db.WithContext(ctx).Order("timestamp DESC").Order("id DESC")
	if err := applyLimit(q, limit).Find(&items).Error; err != nil {
		return nil, fmt.Errorf("list trades: %w", err)
	}
	return items, nil
}

func (r *TradeRepository) GetBySignal(ctx context.Context, signalID uint) (*models.Trade, error) {
	var t models.Trade
	if err := r.db.WithContext(ctx).Where("signal_id = ?", signalID).Take(&t).Error; err != nil {
		return nil, fmt.Errorf("trade for signal %d: %w", signalID, translate(err))
	}
	return &t, nil
}
