package models

import (
	"errors"
	"fmt"
)

// ErrNotFound is returned by stores when a row does not exist.
var ErrNotFound = errors.New("not found")

// ErrDuplicate is returned when a natural key is already taken.
var ErrDuplicate = errors.New("duplicate")

// RejectionKind classifies why a generation request did not produce a signal.
type RejectionKind string

const (
	RejectNewsBlocked   RejectionKind = "NEWS_BLOCKED"
	RejectLowConfidence RejectionKind = "LOW_CONFIDENCE"
	RejectProvider      RejectionKind = "PROVIDER_ERROR"
	RejectNoActivePairs RejectionKind = "NO_ACTIVE_PAIRS"
	RejectBusy          RejectionKind = "BATCH_IN_PROGRESS"
)

// RejectionError is a generation outcome that persisted nothing.
// errors.Is matches on Kind, so the sentinels below can be used as targets.
type RejectionError struct {
	Kind    RejectionKind
	Message string
	Err     error
}

func (e *RejectionError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *RejectionError) Unwrap() error { return e.Err }

func (e *RejectionError) Is(target error) bool {
	t, ok := target.(*RejectionError)
	return ok && t.Kind == e.Kind
}

var (
	ErrNewsBlocked   = &RejectionError{Kind: RejectNewsBlocked, Message: "blocked by high impact news"}
	ErrLowConfidence = &RejectionError{Kind: RejectLowConfidence, Message: "confidence below threshold"}
	ErrProvider      = &RejectionError{Kind: RejectProvider, Message: "analysis provider failed"}
	ErrNoActivePairs = &RejectionError{Kind: RejectNoActivePairs, Message: "no active pairs"}
	ErrBatchBusy     = &RejectionError{Kind: RejectBusy, Message: "batch generation already running for this window"}
)

// NewsBlocked rejects generation because of an upcoming or recent release.
func NewsBlocked(event *NewsEvent) error {
	return &RejectionError{
		Kind:    RejectNewsBlocked,
		Message: fmt.Sprintf("high impact news for %s: %s", event.Currency, event.Title),
	}
}

// LowConfidence rejects a signal the provider was not sure enough about.
func LowConfidence(got, min int) error {
	return &RejectionError{
		Kind:    RejectLowConfidence,
		Message: fmt.Sprintf("confidence %d is below the minimum of %d", got, min),
	}
}

// ProviderFailure wraps a transport or parse failure of the analysis provider.
func ProviderFailure(err error) error {
	return &RejectionError{Kind: RejectProvider, Message: "analysis provider failed", Err: err}
}

// KindOf returns the rejection kind of err, or "" when err is not a rejection.
func KindOf(err error) RejectionKind {
	var r *RejectionError
	if errors.As(err, &r) {
		return r.Kind
	}
	return ""
}

// ErrNotificationsDisabled is returned when a Telegram token or group id is
// missing.
var ErrNotificationsDisabled = errors.New("telegram token and group id are not configured")
