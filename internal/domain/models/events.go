package models

import "time"

// EventType names a change published to stream subscribers and Kafka.
type EventType string

const EventSignalUpserted EventType = "signal.upserted"

// SignalEvent is the payload published after a signal is written.
type SignalEvent struct {
	Type      EventType `json:"type"`
	Signal    Signal    `json:"signal"`
	Session   string    `json:"session"`
	EmittedAt time.Time `json:"emittedAt"`
}

// NewSignalEvent wraps s for publishing.
func NewSignalEvent(s Signal, session string, at time.Time) SignalEvent {
	return SignalEvent{Type: EventSignalUpserted, Signal: s, Session: session, EmittedAt: at.UTC()}
}
