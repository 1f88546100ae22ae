// Package prompt holds the fixed, versioned contract between the signal
// generator and the chat-completion provider: the instructions sent and the
// JSON shape expected back.
package prompt

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strings"
)

// Version identifies the prompt wording and response schema below. Bump it
// whenever either changes.
const Version = "v1"

// System is the system message for signal analysis.
const System = `You are an expert forex trading analyst producing signals for a 5-minute (M5) window.
Respond with a single JSON object and nothing else, using exactly these keys:
  "action": one of "BUY", "SELL", "NO_TRADE"
  "confidence": integer from 0 to 100
  "reasoning": short explanation
  "pattern_detected": name of the chart pattern, or "" if none
  "entry_price": suggested entry as text, or "" if unknown
Answer "NO_TRADE" when the setup is unclear or confidence would be below the stated minimum.`

// CoachSystem is the system message for the trading coach chat.
const CoachSystem = `You are a concise forex trading coach. Explain signals, risk management and session
behaviour in plain language. Never promise profits. Keep answers under 200 words.`

const userFormat = `Analyze %s for the next 5 minutes during the %s session.
Minimum confidence to act: %d.

Market context:
%s`

const contextFormat = `Current %s market analysis (%s session):
- Short term trend: to be assessed from recent structure
- RSI (14): assess momentum
- Moving averages: compare price with MA50 and MA200
- Recent volume: typical for the session
- Key support and resistance levels from the previous session`

// Input is the data the user message is built from.
type Input struct {
	Pair          string
	Session       string
	MinConfidence int
	MarketContext string
}

// MarketContext builds the context block. No market data source is
// integrated, so the block only frames the question.
func MarketContext(pair, session string) string {
	return fmt.Sprintf(contextFormat, pair, session)
}

// User builds the user message.
func User(in Input) string {
	return fmt.Sprintf(userFormat, in.Pair, in.Session, in.MinConfidence, in.MarketContext)
}

// Result is the provider answer in the v1 schema.
type Result struct {
	Action          string      `json:"action"`
	Confidence      json.Number `json:"confidence"`
	Reasoning       string      `json:"reasoning"`
	PatternDetected string      `json:"pattern_detected"`
	EntryPrice      interface{} `json:"entry_price"`
}

// ErrEmpty is returned for a blank completion.
var ErrEmpty = errors.New("empty completion")

// Parsed is a validated Result.
type Parsed struct {
	Action          string
	Confidence      int
	Reasoning       string
	PatternDetected string
	EntryPrice      string
}

// Parse decodes and validates a completion. Confidence is rounded and clamped
// to [0, 100]. A missing action or confidence is an error.
func Parse(content string) (*Parsed, error) {
	content = strings.TrimSpace(stripFence(content))
	if content == "" {
		return nil, ErrEmpty
	}

	dec := json.NewDecoder(strings.NewReader(content))
	dec.UseNumber()
	var r Result
	if err := dec.Decode(&r); err != nil {
		return nil, fmt.Errorf("decode completion: %w", err)
	}
	if strings.TrimSpace(r.Action) == "" {
		return nil, errors.New("completion has no action")
	}
	if r.Confidence == "" {
		return nil, errors.New("completion has no confidence")
	}
	f, err := r.Confidence.Float64()
	if err != nil {
		return nil, fmt.Errorf("confidence %q: %w", r.Confidence, err)
	}

	return &Parsed{
		Action:          strings.ToUpper(strings.TrimSpace(r.Action)),
		Confidence:      int(clamp(math.Round(f), 0, 100)),
		Reasoning:       strings.TrimSpace(r.Reasoning),
		PatternDetected: strings.TrimSpace(r.PatternDetected),
		EntryPrice:      entryText(r.EntryPrice),
	}, nil
}

// Analysis joins the provider fields into the stored rationale.
func Analysis(p *Parsed) string {
	var parts []string
	if p.Reasoning != "" {
		parts = append(parts, p.Reasoning)
	}
	if p.PatternDetected != "" {
		parts = append(parts, "Pattern: "+p.PatternDetected)
	}
	if p.EntryPrice != "" {
		parts = append(parts, "Entry: "+p.EntryPrice)
	}
	return strings.Join(parts, " | ")
}

func entryText(v interface{}) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return strings.TrimSpace(t)
	case json.Number:
		return t.String()
	default:
		return strings.TrimSpace(fmt.Sprint(t))
	}
}

// stripFence removes a ```json fence some models wrap JSON in.
func stripFence(s string) string {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimPrefix(s, "json")
	return strings.TrimSuffix(strings.TrimSpace(s), "```")
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
