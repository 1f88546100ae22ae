package models

import "time"

// Requests for the HTTP API. Defined in domain for consistency and reuse.

type CreateSignalRequest struct {
	Pair       string    `json:"pair" validate:"required,min=3,max=32"`
	Action     string    `json:"action" validate:"required,oneof=BUY SELL NO_TRADE CALL PUT"`
	Confidence int       `json:"confidence" validate:"gte=0,lte=100"`
	StartTime  time.Time `json:"startTime" validate:"required"`
	EndTime    time.Time `json:"endTime" validate:"required,gtfield=StartTime"`
	Analysis   string    `json:"analysis" validate:"max=4000"`
	Status     string    `json:"status" default:"active" validate:"oneof=active completed"`
}

// ToSignal converts a validated request into a row.
func (r *CreateSignalRequest) ToSignal() *Signal {
	action, _ := NormalizeAction(r.Action)
	return &Signal{
		Pair:       r.Pair,
		Action:     action,
		Confidence: r.Confidence,
		StartTime:  r.StartTime.UTC(),
		EndTime:    r.EndTime.UTC(),
		Status:     SignalStatus(r.Status),
		Analysis:   r.Analysis,
	}
}

type GenerateSignalRequest struct {
	Pair string `json:"pair" validate:"required,min=3,max=32"`
}

type SignalIDRequest struct {
	ID uint `param:"id" validate:"required,gt=0"`
}

type NewsQuery struct {
	Currency string `query:"currency" validate:"omitempty,min=3,max=8"`
}

type CreateNewsRequest struct {
	Title     string    `json:"title" validate:"required,max=255"`
	Impact    string    `json:"impact" default:"Medium" validate:"oneof=High Medium Low"`
	Currency  string    `json:"currency" validate:"required,min=3,max=8"`
	Timestamp time.Time `json:"timestamp" validate:"required"`
}

type ChatRequest struct {
	Message  string `json:"message" validate:"required,max=4000"`
	SignalID *uint  `json:"signalId" validate:"omitempty,gt=0"`
}

type ChatResponse struct {
	Message string `json:"message"`
}

type SessionResponse struct {
	Session   string    `json:"session"`
	Pairs     []string  `json:"pairs"`
	LocalTime time.Time `json:"localTime"`
}
