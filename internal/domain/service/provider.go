package service

import "context"

// AnalysisRequest is what the generator hands to the analysis provider.
type AnalysisRequest struct {
	Pair          string
	Session       string
	MarketContext string
	MinConfidence int
}

// Analysis is the parsed provider answer. Action is the raw provider
// vocabulary; callers normalise it.
type Analysis struct {
	Action          string
	Confidence      int
	Reasoning       string
	PatternDetected string
	EntryPrice      string
	PromptVersion   string
	Model           string
}

// AnalysisProvider turns market context into a trading call.
type AnalysisProvider interface {
	Analyze(ctx context.Context, req AnalysisRequest) (*Analysis, error)
	// Chat answers a free-form question under the given system instructions.
	Chat(ctx context.Context, system, message string) (string, error)
}

// Notifier delivers a text message to a chat.
type Notifier interface {
	Send(ctx context.Context, token, chatID, text string) error
}
