package repository

import (
	"errors"

	"FxPulse/internal/domain/models"

	"gorm.io/gorm"
)

// Models lists every table owned by this service, in migration order.
func Models() []interface{} {
	return []interface{}{
		&models.Signal{},
		&models.Trade{},
		&models.Settings{},
		&models.NewsEvent{},
	}
}

// translate maps gorm sentinels onto domain errors.
func translate(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, gorm.ErrRecordNotFound):
		return models.ErrNotFound
	case errors.Is(err, gorm.ErrDuplicatedKey):
		return models.ErrDuplicate
	default:
		return err
	}
}

func applyLimit(q *gorm.DB, limit int) *gorm.DB {
	if limit > 0 {
		return q.Limit(limit)
	}
	return q
}
