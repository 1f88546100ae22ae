package util

import (
	"strconv"
	"time"
)

// Rounding selects how a timestamp snaps onto a window boundary.
type Rounding string

const (
	RoundFloor Rounding = "floor"
	RoundCeil  Rounding = "ceil"
)

// ParseTime tries RFC3339, RFC3339Nano, "2006-01-02 15:04:05" and unix seconds. Returns (t, true) if any worked.
func ParseTime(s string) (time.Time, bool) {
	if s == "" {
		return time.Time{}, false
	}
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t, true
	}
	if t, err := time.Parse(time.RFC3339Nano, s); err == nil {
		return t, true
	}
	if t, err := time.Parse(time.DateTime, s); err == nil {
		return t, true
	}
	if ts, err := strconv.ParseInt(s, 10, 64); err == nil && ts > 0 {
		return time.Unix(ts, 0), true
	}
	return time.Time{}, false
}

// ParseTimeDefault parses time or returns default if empty/invalid.
func ParseTimeDefault(s string, def time.Time) time.Time {
	if t, ok := ParseTime(s); ok {
		return t
	}
	return def
}

// AlignWindow snaps t onto a step boundary. Boundaries are computed on the UTC
// timeline so the result does not depend on t's location.
func AlignWindow(t time.Time, step time.Duration, mode Rounding) time.Time {
	if step <= 0 {
		return t.UTC()
	}
	t = t.UTC()
	floor := t.Truncate(step)
	if mode == RoundCeil && floor.Before(t) {
		return floor.Add(step)
	}
	return floor
}

// WindowAt returns the [start, start+step) window that a signal generated at now
// governs, after advancing now by lookahead.
func WindowAt(now time.Time, lookahead, step time.Duration, mode Rounding) (time.Time, time.Time) {
	start := AlignWindow(now.Add(lookahead), step, mode)
	return start, start.Add(step)
}
