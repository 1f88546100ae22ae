package usecase

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"FxPulse/internal/domain/models"
	"FxPulse/internal/domain/service"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateStoresSignalAndTrade(t *testing.T) {
	e := newEnv(t, asianNow)
	ctx := context.Background()
	settings, err := e.settings.Get(ctx)
	require.NoError(t, err)

	sig, err := e.gen.Generate(ctx, "EUR/USD", settings)
	require.NoError(t, err)

	assert.NotZero(t, sig.ID)
	assert.Equal(t, models.ActionBuy, sig.Action, "CALL is normalised")
	assert.Equal(t, 93, sig.Confidence)
	assert.Equal(t, time.Date(2024, 10, 10, 7, 0, 0, 0, time.UTC), sig.StartTime.UTC())
	assert.Equal(t, sig.StartTime.Add(5*time.Minute), sig.EndTime)
	assert.Equal(t, "Momentum building | Pattern: Bull flag | Entry: 1.0842", sig.Analysis)

	trade, err := e.trades.GetBySignal(ctx, sig.ID)
	require.NoError(t, err)
	assert.Equal(t, "EUR/USD", trade.Pair)
	assert.Equal(t, "1.0842", trade.EntryPrice)
	assert.Equal(t, "Asian", trade.Session)

	require.Equal(t, 1, e.provider.Calls())
	req := e.provider.calls[0]
	assert.Equal(t, "Asian", req.Session)
	assert.Equal(t, 90, req.MinConfidence)
	assert.Contains(t, req.MarketContext, "EUR/USD")
}

func TestGenerateHighImpactNewsBlocks(t *testing.T) {
	e := newEnv(t, asianNow)
	ctx := context.Background()
	require.NoError(t, e.news.Create(ctx, &models.NewsEvent{
		Title: "Non-Farm Payrolls", Impact: models.ImpactHigh, Currency: "USD", Timestamp: asianNow.Add(30 * time.Minute),
	}))
	settings, _ := e.settings.Get(ctx)

	_, err := e.gen.Generate(ctx, "USD/JPY", settings)
	require.Error(t, err)
	assert.True(t, errors.Is(err, models.ErrNewsBlocked))
	assert.Contains(t, err.Error(), "Non-Farm Payrolls")
	assert.Equal(t, 0, e.provider.Calls())
	assert.Zero(t, e.count(t))

	// Gated on the base currency only.
	_, err = e.gen.Generate(ctx, "EUR/USD", settings)
	assert.NoError(t, err)

	settings.AvoidHighImpactNews = false
	_, err = e.gen.Generate(ctx, "USD/JPY", settings)
	assert.NoError(t, err)
}

func TestGenerateIgnoresMediumAndDistantNews(t *testing.T) {
	e := newEnv(t, asianNow)
	ctx := context.Background()
	require.NoError(t, e.news.Create(ctx, &models.NewsEvent{
		Title: "Retail Sales", Impact: models.ImpactMedium, Currency: "EUR", Timestamp: asianNow,
	}))
	require.NoError(t, e.news.Create(ctx, &models.NewsEvent{
		Title: "ECB Rate", Impact: models.ImpactHigh, Currency: "EUR", Timestamp: asianNow.Add(3 * time.Hour),
	}))
	settings, _ := e.settings.Get(ctx)

	_, err := e.gen.Generate(ctx, "EURUSD", settings)
	assert.NoError(t, err)
}

func TestGenerateLowConfidence(t *testing.T) {
	e := newEnv(t, asianNow)
	e.provider.def.Confidence = 80
	settings, _ := e.settings.Get(context.Background())

	_, err := e.gen.Generate(context.Background(), "EUR/USD", settings)
	require.Error(t, err)
	assert.ErrorIs(t, err, models.ErrLowConfidence)
	assert.Equal(t, models.RejectLowConfidence, models.KindOf(err))
	assert.Zero(t, e.count(t))
}

func TestGenerateProviderFailures(t *testing.T) {
	e := newEnv(t, asianNow)
	ctx := context.Background()
	settings, _ := e.settings.Get(ctx)

	e.provider.fail["EUR/USD"] = errors.New("timeout")
	_, err := e.gen.Generate(ctx, "EUR/USD", settings)
	assert.ErrorIs(t, err, models.ErrProvider)

	e.provider.results["GBP/USD"] = &service.Analysis{Action: "HOLD", Confidence: 99}
	_, err = e.gen.Generate(ctx, "GBP/USD", settings)
	assert.ErrorIs(t, err, models.ErrProvider, "unknown actions are unparsable")
	assert.Zero(t, e.count(t))
}

func TestGenerateNotifiesAndPublishes(t *testing.T) {
	e := newEnv(t, asianNow)
	ctx := context.Background()
	settings := e.setSettings(t, models.SettingsPatch{
		TelegramToken:   ptr("123:abc"),
		TelegramGroupID: ptr("-100200"),
	})

	sig, err := e.gen.Generate(ctx, "EUR/USD", settings)
	require.NoError(t, err)
	// Same window again: updated in place and not notified twice.
	again, err := e.gen.Generate(ctx, "EUR/USD", settings)
	require.NoError(t, err)
	assert.Equal(t, sig.ID, again.ID)

	e.drain(t)
	msgs := e.notifier.Sent()
	require.Len(t, msgs, 1)
	assert.Equal(t, "123:abc", msgs[0].token)
	assert.Equal(t, "-100200", msgs[0].chatID)
	assert.True(t, strings.Contains(msgs[0].text, "EUR/USD BUY"))

	events := e.publisher.Events()
	require.Len(t, events, 2)
	assert.Equal(t, models.EventSignalUpserted, events[0].Type)
	assert.Equal(t, sig.ID, events[0].Signal.ID)
}

func TestGenerateNoTradeIsStoredButNotNotified(t *testing.T) {
	e := newEnv(t, asianNow)
	e.provider.def.Action = "NO_TRADE"
	settings := e.setSettings(t, models.SettingsPatch{
		TelegramToken:   ptr("123:abc"),
		TelegramGroupID: ptr("-100200"),
	})

	sig, err := e.gen.Generate(context.Background(), "EUR/USD", settings)
	require.NoError(t, err)
	assert.Equal(t, models.ActionNoTrade, sig.Action)

	e.drain(t)
	assert.Empty(t, e.notifier.Sent())
}

func TestGenerateNotificationFailureDoesNotFail(t *testing.T) {
	e := newEnv(t, asianNow)
	e.notifier.err = errors.New("chat not found")
	settings := e.setSettings(t, models.SettingsPatch{
		TelegramToken:   ptr("123:abc"),
		TelegramGroupID: ptr("-100200"),
	})

	_, err := e.gen.Generate(context.Background(), "EUR/USD", settings)
	assert.NoError(t, err)
	e.drain(t)
	assert.Equal(t, int64(1), e.count(t))
}
