package usecase

import (
	"context"
	"errors"
	"testing"
	"time"

	"FxPulse/internal/domain/models"
	"FxPulse/internal/services/session"
	"FxPulse/pkg/cache"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBatchUsesSessionDefaults(t *testing.T) {
	e := newEnv(t, asianNow)

	out, err := e.batch.GenerateAll(context.Background())
	require.NoError(t, err)

	want := session.DefaultPairs(session.Asian)
	require.Len(t, out, len(want))
	for i, s := range out {
		assert.Equal(t, want[i], s.Pair)
	}
}

func TestBatchCustomPairsSkipFailuresAndRerunInPlace(t *testing.T) {
	e := newEnv(t, asianNow)
	ctx := context.Background()
	e.setSettings(t, models.SettingsPatch{CustomPairs: &[]string{"EUR/USD", "GBP/USD", "USD/JPY"}})
	e.provider.fail["GBP/USD"] = errors.New("boom")

	first, err := e.batch.GenerateAll(ctx)
	require.NoError(t, err)
	require.Len(t, first, 2)
	assert.Equal(t, "EUR/USD", first[0].Pair)
	assert.Equal(t, "USD/JPY", first[1].Pair)

	e.provider.def.Action = "PUT"
	second, err := e.batch.GenerateAll(ctx)
	require.NoError(t, err)
	require.Len(t, second, 2)
	assert.Equal(t, first[0].ID, second[0].ID)
	assert.Equal(t, first[1].ID, second[1].ID)
	assert.Equal(t, models.ActionSell, second[0].Action)
	assert.Equal(t, int64(2), e.count(t))
}

func TestBatchLunchBreakHasNoPairs(t *testing.T) {
	// 17:30 in UTC+3.
	e := newEnv(t, time.Date(2024, 10, 10, 14, 30, 0, 0, time.UTC))

	out, err := e.batch.GenerateAll(context.Background())
	assert.Empty(t, out)
	assert.ErrorIs(t, err, models.ErrNoActivePairs)
	assert.Equal(t, "no active pairs", err.Error())
	assert.Zero(t, e.count(t))
	assert.Equal(t, 0, e.provider.Calls())
}

func TestBatchCustomPairsDuringBreak(t *testing.T) {
	e := newEnv(t, time.Date(2024, 10, 10, 14, 30, 0, 0, time.UTC))
	e.setSettings(t, models.SettingsPatch{CustomPairs: &[]string{"XAU/USD"}})

	out, err := e.batch.GenerateAll(context.Background())
	require.NoError(t, err)
	require.Len(t, out, 1)
}

func TestBatchBusyWindow(t *testing.T) {
	e := newEnv(t, asianNow)
	ctx := context.Background()
	start, _ := e.gen.Window(asianNow)
	ok, err := e.locks.TryLock(ctx, cache.GenerateKeyWithParams("batch", start.Unix()), time.Minute)
	require.NoError(t, err)
	require.True(t, ok)

	_, err = e.batch.GenerateAll(ctx)
	assert.ErrorIs(t, err, models.ErrBatchBusy)
	assert.Equal(t, 0, e.provider.Calls())
}

func TestActivePairsPrefersCustom(t *testing.T) {
	s := models.DefaultSettings()
	assert.Equal(t, session.DefaultPairs(session.Asian), ActivePairs(&s, asianNow))
	s.CustomPairs = []string{"EUR/USD"}
	assert.Equal(t, []string{"EUR/USD"}, ActivePairs(&s, asianNow))
}
