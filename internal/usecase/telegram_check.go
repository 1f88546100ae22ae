package usecase

import (
	"context"
	"fmt"

	"FxPulse/internal/domain/models"
	"FxPulse/internal/domain/repository"
	"FxPulse/internal/domain/service"
	"FxPulse/internal/service/telegram"
)

// TelegramCheck sends a test message with the stored credentials. Unlike
// signal notifications the send is synchronous and its error is the result.
type TelegramCheck struct {
	settings repository.SettingsStore
	notifier service.Notifier
	metrics  repository.Metrics
}

func NewTelegramCheck(settings repository.SettingsStore, notifier service.Notifier, metrics repository.Metrics) *TelegramCheck {
	return &TelegramCheck{settings: settings, notifier: notifier, metrics: metrics}
}

// Run returns models.ErrNotificationsDisabled when credentials are missing.
func (t *TelegramCheck) Run(ctx context.Context) error {
	s, err := t.settings.Get(ctx)
	if err != nil {
		return fmt.Errorf("load settings: %w", err)
	}
	if !s.NotificationsEnabled() || t.notifier == nil {
		return models.ErrNotificationsDisabled
	}
	if err := t.notifier.Send(ctx, s.TelegramToken, s.TelegramGroupID, telegram.TestMessage); err != nil {
		t.metrics.RecordNotification("error")
		return fmt.Errorf("send test message: %w", err)
	}
	t.metrics.RecordNotification("ok")
	return nil
}
