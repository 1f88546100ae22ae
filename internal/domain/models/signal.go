package models

import (
	"strings"
	"time"
)

// WindowLength is the span every generated signal governs.
const WindowLength = 5 * time.Minute

// Action is the recommended trade direction.
type Action string

const (
	ActionBuy     Action = "BUY"
	ActionSell    Action = "SELL"
	ActionNoTrade Action = "NO_TRADE"
)

// NormalizeAction maps provider vocabulary onto Action. CALL and PUT are the
// binary-options spelling of BUY and SELL. ok is false for anything else.
func NormalizeAction(raw string) (Action, bool) {
	switch strings.ToUpper(strings.TrimSpace(raw)) {
	case "BUY", "CALL":
		return ActionBuy, true
	case "SELL", "PUT":
		return ActionSell, true
	case "NO_TRADE", "NO TRADE", "NOTRADE":
		return ActionNoTrade, true
	default:
		return Action(raw), false
	}
}

// SignalStatus is set at creation and never advanced by elapsed time.
type SignalStatus string

const (
	StatusActive    SignalStatus = "active"
	StatusCompleted SignalStatus = "completed"
)

// WindowState is the display state of a signal relative to the current time.
type WindowState string

const (
	WindowUpcoming WindowState = "upcoming"
	WindowLive     WindowState = "live"
	WindowExpired  WindowState = "expired"
)

// Signal is a trade recommendation for one pair over one window.
// (pair, startTime) is the natural key used by upserts.
type Signal struct {
	ID         uint         `gorm:"primaryKey" json:"id"`
	Pair       string       `gorm:"type:varchar(32);not null;uniqueIndex:idx_signals_pair_window,priority:1" json:"pair"`
	Action     Action       `gorm:"type:varchar(16);not null" json:"action"`
	Confidence int          `gorm:"not null" json:"confidence"`
	StartTime  time.Time    `gorm:"not null;uniqueIndex:idx_signals_pair_window,priority:2" json:"startTime"`
	EndTime    time.Time    `gorm:"not null" json:"endTime"`
	Status     SignalStatus `gorm:"type:varchar(16);not null;default:active" json:"status"`
	Analysis   string       `gorm:"type:text" json:"analysis"`
	CreatedAt  time.Time    `gorm:"autoCreateTime;index" json:"createdAt"`
}

func (Signal) TableName() string { return "signals" }

// StateAt derives the display state from now versus the window; the stored
// status is not consulted.
func (s *Signal) StateAt(now time.Time) WindowState {
	switch {
	case now.Before(s.StartTime):
		return WindowUpcoming
	case now.After(s.EndTime):
		return WindowExpired
	default:
		return WindowLive
	}
}

// ActiveAt reports whether now falls inside [StartTime, EndTime].
func (s *Signal) ActiveAt(now time.Time) bool {
	return s.StateAt(now) == WindowLive
}

// BaseCurrency returns the currency a pair is gated on: the text before "/",
// or the first three characters when the pair has no separator.
func BaseCurrency(pair string) string {
	pair = strings.ToUpper(strings.TrimSpace(pair))
	if i := strings.Index(pair, "/"); i >= 0 {
		return pair[:i]
	}
	if len(pair) > 3 {
		return pair[:3]
	}
	return pair
}
