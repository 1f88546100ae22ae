package repository

import (
	"context"
	"errors"
	"fmt"

	"FxPulse/internal/domain/models"
	"FxPulse/internal/domain/repository"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// SettingsRepository implements SettingsStore on gorm.
type SettingsRepository struct {
	db *gorm.DB
}

// NewSettingsRepository creates the settings store.
func NewSettingsRepository(db *gorm.DB) repository.SettingsStore {
	return &SettingsRepository{db: db}
}

func (r *SettingsRepository) Get(ctx context.Context) (*models.Settings, error) {
	return getOrCreateSettings(r.db.WithContext(ctx))
}

func (r *SettingsRepository) Update(ctx context.Context, patch *models.SettingsPatch) (*models.Settings, error) {
	var out *models.Settings
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		s, err := getOrCreateSettings(tx)
		if err != nil {
			return err
		}
		if patch != nil {
			patch.Apply(s)
		}
		if err := tx.Save(s).Error; err != nil {
			return fmt.Errorf("save settings: %w", err)
		}
		out = s
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// getOrCreateSettings inserts the default row when missing. Concurrent first
// reads race on the primary key; ON CONFLICT DO NOTHING lets the loser fall
// through to the read.
func getOrCreateSettings(db *gorm.DB) (*models.Settings, error) {
	var s models.Settings
	err := db.Take(&s, models.SettingsID).Error
	if err == nil {
		return &s, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("read settings: %w", err)
	}

	def := models.DefaultSettings()
	if err := db.Clauses(clause.OnConflict{DoNothing: true}).Create(&def).Error; err != nil {
		return nil, fmt.Errorf("create settings: %w", err)
	}
	if err := db.Take(&s, models.SettingsID).Error; err != nil {
		return nil, fmt.Errorf("read settings: %w", err)
	}
	return &s, nil
}
