// Package session maps wall-clock time onto the named forex trading sessions
// the dashboard schedules generation around.
package session

import "time"

// Name is a trading session identifier.
type Name string

const (
	Asian      Name = "Asian"
	London     Name = "London"
	LunchBreak Name = "LunchBreak"
	NewYork    Name = "NewYork"
	NightBreak Name = "NightBreak"
)

// Offset is the fixed UTC offset (UTC+3) the session table is expressed in.
const Offset = 3 * 60 * 60

// Location is the fixed zone used to read the local hour.
var Location = time.FixedZone("UTC+3", Offset)

type span struct {
	from, to int // half-open [from, to) local hours
	name     Name
}

// table must partition [0, 24). Hours not covered fall through to NightBreak.
var table = []span{
	{7, 12, Asian},
	{12, 17, London},
	{17, 18, LunchBreak},
	{18, 23, NewYork},
}

var defaultPairs = map[Name][]string{
	Asian:   {"USD/JPY", "AUD/JPY", "AUD/USD", "NZD/USD", "EUR/JPY"},
	London:  {"EUR/USD", "GBP/USD", "EUR/GBP", "GBP/JPY", "USD/CHF"},
	NewYork: {"EUR/USD", "GBP/USD", "USD/CAD", "USD/JPY", "AUD/USD"},
}

// Current returns the session active at now.
func Current(now time.Time) Name {
	h := now.In(Location).Hour()
	for _, s := range table {
		if h >= s.from && h < s.to {
			return s.name
		}
	}
	return NightBreak
}

// Local returns now expressed in the session zone.
func Local(now time.Time) time.Time {
	return now.In(Location)
}

// DefaultPairs returns the pairs traded by default during a session. Break
// sessions have none. The returned slice is a copy.
func DefaultPairs(name Name) []string {
	pairs := defaultPairs[name]
	out := make([]string, len(pairs))
	copy(out, pairs)
	return out
}

// All lists every session name in schedule order.
func All() []Name {
	return []Name{Asian, London, LunchBreak, NewYork, NightBreak}
}

// Valid reports whether n is a known session name.
func (n Name) Valid() bool {
	for _, s := range All() {
		if s == n {
			return true
		}
	}
	return false
}

func (n Name) String() string { return string(n) }
