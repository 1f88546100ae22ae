package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"FxPulse/internal/domain/models"
	"FxPulse/internal/domain/repository"
	"FxPulse/internal/domain/service"
	"FxPulse/internal/services/prompt"
	"FxPulse/internal/services/session"
)

// Coach answers trading questions, optionally about one signal.
type Coach struct {
	provider service.AnalysisProvider
	signals  repository.SignalStore
}

// NewCoach creates a coach.
func NewCoach(provider service.AnalysisProvider, signals repository.SignalStore) *Coach {
	return &Coach{provider: provider, signals: signals}
}

// Ask returns the coach's reply. An unknown signal id is models.ErrNotFound;
// provider failures are PROVIDER_ERROR rejections.
func (c *Coach) Ask(ctx context.Context, req *models.ChatRequest) (string, error) {
	message := strings.TrimSpace(req.Message)
	if req.SignalID != nil {
		sig, err := c.signals.Get(ctx, *req.SignalID)
		if err != nil {
			return "", err
		}
		message = signalContext(sig) + "\n\nQuestion: " + message
	}
	if c.provider == nil {
		return "", models.ProviderFailure(errors.New("no analysis provider configured"))
	}
	reply, err := c.provider.Chat(ctx, prompt.CoachSystem, message)
	if err != nil {
		return "", models.ProviderFailure(err)
	}
	return strings.TrimSpace(reply), nil
}

func signalContext(s *models.Signal) string {
	loc := session.Location
	return fmt.Sprintf("Signal #%d: %s %s with %d%% confidence for %s-%s (UTC+3).\nAnalysis: %s",
		s.ID, s.Pair, s.Action, s.Confidence,
		s.StartTime.In(loc).Format("15:04"), s.EndTime.In(loc).Format("15:04"),
		s.Analysis,
	)
}
