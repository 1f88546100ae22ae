package models

import "time"

// Impact grades how much a scheduled release is expected to move prices.
type Impact string

const (
	ImpactHigh   Impact = "High"
	ImpactMedium Impact = "Medium"
	ImpactLow    Impact = "Low"
)

// NewsEvent is a scheduled economic announcement.
type NewsEvent struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Title     string    `gorm:"type:varchar(255);not null;uniqueIndex:idx_news_events_key,priority:2" json:"title"`
	Impact    Impact    `gorm:"type:varchar(8);not null" json:"impact"`
	Currency  string    `gorm:"type:varchar(8);not null;index;uniqueIndex:idx_news_events_key,priority:1" json:"currency"`
	Timestamp time.Time `gorm:"not null;index;uniqueIndex:idx_news_events_key,priority:3" json:"timestamp"`
}

func (NewsEvent) TableName() string { return "news_events" }

// FirstHighImpact returns the first High impact event in events.
func FirstHighImpact(events []NewsEvent) (*NewsEvent, bool) {
	for i := range events {
		if events[i].Impact == ImpactHigh {
			return &events[i], true
		}
	}
	return nil, false
}
