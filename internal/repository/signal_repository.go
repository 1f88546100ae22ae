package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"FxPulse/internal/domain/models"
	"FxPulse/internal/domain/repository"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// SignalRepository implements SignalStore on gorm.
type SignalRepository struct {
	db *gorm.DB
}

// NewSignalRepository creates the signal store.
func NewSignalRepository(db *gorm.DB) repository.SignalStore {
	return &SignalRepository{db: db}
}

func (r *SignalRepository) Create(ctx context.Context, s *models.Signal) error {
	normalizeSignal(s)
	if err := r.db.WithContext(ctx).Create(s).Error; err != nil {
		return fmt.Errorf("create signal %s@%s: %w", s.Pair, s.StartTime.Format(time.RFC3339), translate(err))
	}
	return nil
}

func (r *SignalRepository) UpsertWithTrade(ctx context.Context, s *models.Signal, t *models.Trade) error {
	normalizeSignal(s)
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		row := *s
		row.ID = 0
		err := tx.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "pair"}, {Name: "start_time"}},
			DoUpdates: clause.AssignmentColumns([]string{"action", "confidence", "analysis"}),
		}).Create(&row).Error
		if err != nil {
			return fmt.Errorf("upsert signal: %w", translate(err))
		}

		// Re-read by natural key: on the update path the returned id is not
		// reliable across dialects.
		var stored models.Signal
		if err := tx.Where("pair = ? AND start_time = ?", s.Pair, s.StartTime).Take(&stored).Error; err != nil {
			return fmt.Errorf("reload signal: %w", translate(err))
		}
		*s = stored

		if t == nil {
			return nil
		}
		id := stored.ID
		t.ID = 0
		t.SignalID = &id
		t.Pair = stored.Pair
		t.Action = stored.Action
		t.Confidence = stored.Confidence
		t.Timestamp = t.Timestamp.UTC()
		err = tx.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "signal_id"}},
			DoUpdates: clause.AssignmentColumns([]string{"action", "confidence", "entry_price", "session", "timestamp"}),
		}).Create(t).Error
		if err != nil {
			return fmt.Errorf("upsert trade: %w", translate(err))
		}
		if err := tx.Where("signal_id = ?", id).Take(t).Error; err != nil {
			return fmt.Errorf("reload trade: %w", translate(err))
		}
		return nil
	})
}

func (r *SignalRepository) Get(ctx context.Context, id uint) (*models.Signal, error) {
	var s models.Signal
	if err := r.db.WithContext(ctx).Take(&s, id).Error; err != nil {
		return nil, fmt.Errorf("signal %d: %w", id, translate(err))
	}
	return &s, nil
}

func (r *SignalRepository) List(ctx context.Context, limit int) ([]models.Signal, error) {
	items := make([]models.Signal, 0)
	q := r.db.WithContext(ctx).Order("created_at DESC").Order("id DESC")
	if err := applyLimit(q, limit).Find(&items).Error; err != nil {
		return nil, fmt.Errorf("list signals: %w", err)
	}
	return items, nil
}

func (r *SignalRepository) Current(ctx context.Context, now time.Time) (*models.Signal, error) {
	now = now.UTC()
	var s models.Signal
	err := r.db.WithContext(ctx).
		Where("start_time <= ? AND end_time >= ?", now, now).
		Order("start_time DESC").
		Take(&s).Error
	if err == nil {
		return &s, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("live signal: %w", err)
	}

	err = r.db.WithContext(ctx).
		Where("start_time > ?", now).
		Order("start_time ASC").
		Take(&s).Error
	if err != nil {
		return nil, fmt.Errorf("upcoming signal: %w", translate(err))
	}
	return &s, nil
}

func (r *SignalRepository) Count(ctx context.Context) (int64, error) {
	var n int64
	if err := r.db.WithContext(ctx).Model(&models.Signal{}).Count(&n).Error; err != nil {
		return 0, fmt.Errorf("count signals: %w", err)
	}
	return n, nil
}

func normalizeSignal(s *models.Signal) {
	s.StartTime = s.StartTime.UTC()
	s.EndTime = s.EndTime.UTC()
	if s.Status == "" {
		s.Status = models.StatusActive
	}
}
