package repository

import (
	"context"
	"fmt"
	"strings"
	"time"

	"FxPulse/internal/domain/models"
	"FxPulse/internal/domain/repository"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

const newsBatchSize = 200

// NewsRepository implements NewsStore on gorm.
type NewsRepository struct {
	db *gorm.DB
}

// NewNewsRepository creates the news store.
func NewNewsRepository(db *gorm.DB) repository.NewsStore {
	return &NewsRepository{db: db}
}

func (r *NewsRepository) Create(ctx context.Context, e *models.NewsEvent) error {
	normalizeNews(e)
	if err := r.db.WithContext(ctx).Create(e).Error; err != nil {
		return fmt.Errorf("create news event: %w", translate(err))
	}
	return nil
}

func (r *NewsRepository) Upsert(ctx context.Context, events []models.NewsEvent) (int64, error) {
	if len(events) == 0 {
		return 0, nil
	}
	events = dedupeNews(events)
	res := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "currency"}, {Name: "title"}, {Name: "timestamp"}},
		DoUpdates: clause.AssignmentColumns([]string{"impact"}),
	}).CreateInBatches(events, newsBatchSize)
	if res.Error != nil {
		return 0, fmt.Errorf("upsert news: %w", res.Error)
	}
	return res.RowsAffected, nil
}

func (r *NewsRepository) Between(ctx context.Context, currency string, from, to time.Time) ([]models.NewsEvent, error) {
	items := make([]models.NewsEvent, 0)
	q := r.db.WithContext(ctx).
		Where("timestamp >= ? AND timestamp <= ?", from.UTC(), to.UTC())
	if c := strings.ToUpper(strings.TrimSpace(currency)); c != "" {
		q = q.Where("currency = ?", c)
	}
	if err := q.Order("timestamp ASC").Order("id ASC").Find(&items).Error; err != nil {
		return nil, fmt.Errorf("news between: %w", err)
	}
	return items, nil
}

// dedupeNews normalizes events and keeps one row per (currency, title,
// timestamp). A later duplicate's impact wins. Postgres rejects an upsert that
// touches the same row twice in one statement.
func dedupeNews(events []models.NewsEvent) []models.NewsEvent {
	type key struct {
		currency, title string
		ts              int64
	}
	out := make([]models.NewsEvent, 0, len(events))
	seen := make(map[key]int, len(events))
	for _, e := range events {
		e.ID = 0
		normalizeNews(&e)
		k := key{e.Currency, e.Title, e.Timestamp.UnixNano()}
		if i, ok := seen[k]; ok {
			out[i].Impact = e.Impact
			continue
		}
		seen[k] = len(out)
		out = append(out, e)
	}
	return out
}

func normalizeNews(e *models.NewsEvent) {
	e.Currency = strings.ToUpper(strings.TrimSpace(e.Currency))
	e.Title = strings.TrimSpace(e.Title)
	e.Timestamp = e.Timestamp.UTC()
}
