package models

import "time"

// TradeResult is the outcome of a trade. Nothing in this service resolves it.
type TradeResult string

const (
	ResultWin  TradeResult = "win"
	ResultLoss TradeResult = "loss"
)

// Trade is the execution log entry recorded alongside a generated signal.
type Trade struct {
	ID         uint         `gorm:"primaryKey" json:"id"`
	SignalID   *uint        `gorm:"uniqueIndex" json:"signalId"`
	Pair       string       `gorm:"type:varchar(32);not null;index" json:"pair"`
	Action     Action       `gorm:"type:varchar(16);not null" json:"action"`
	Confidence int          `gorm:"not null" json:"confidence"`
	EntryPrice string       `gorm:"type:varchar(64)" json:"entryPrice"`
	ExitPrice  *string      `gorm:"type:varchar(64)" json:"exitPrice"`
	Result     *TradeResult `gorm:"type:varchar(8)" json:"result"`
	Session    string       `gorm:"type:varchar(16)" json:"session"`
	Timestamp  time.Time    `gorm:"not null;index" json:"timestamp"`
}

func (Trade) TableName() string { return "trades" }

// TradeFor builds the trade row that accompanies s.
func TradeFor(s *Signal, entryPrice, session string, at time.Time) *Trade {
	id := s.ID
	return &Trade{
		SignalID:   &id,
		Pair:       s.Pair,
		Action:     s.Action,
		Confidence: s.Confidence,
		EntryPrice: entryPrice,
		Session:    session,
		Timestamp:  at.UTC(),
	}
}
