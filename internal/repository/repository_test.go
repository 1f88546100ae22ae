package repository

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"FxPulse/internal/domain/models"
	"FxPulse/pkg/database"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:repo_%d?mode=memory&cache=shared", time.Now().UnixNano())
	c, err := database.NewClient(database.WithDriver(database.DriverSQLite), database.WithDSN(dsn))
	require.NoError(t, err)
	t.Cleanup(func() { _ = c.Close() })
	require.NoError(t, c.Migrate(context.Background(), Models()...))
	return c.DB()
}

var window = time.Date(2024, 10, 10, 10, 0, 0, 0, time.UTC)

func sampleSignal(pair string, action models.Action, conf int) *models.Signal {
	return &models.Signal{
		Pair:       pair,
		Action:     action,
		Confidence: conf,
		StartTime:  window,
		EndTime:    window.Add(models.WindowLength),
		Analysis:   "test",
	}
}

func TestSignalCreateAndGet(t *testing.T) {
	ctx := context.Background()
	store := NewSignalRepository(newTestDB(t))

	s := sampleSignal("EUR/USD", models.ActionBuy, 91)
	require.NoError(t, store.Create(ctx, s))
	require.NotZero(t, s.ID)
	assert.Equal(t, models.StatusActive, s.Status)

	got, err := store.Get(ctx, s.ID)
	require.NoError(t, err)
	assert.Equal(t, "EUR/USD", got.Pair)
	assert.True(t, got.StartTime.Equal(window))

	_, err = store.Get(ctx, 999)
	assert.True(t, errors.Is(err, models.ErrNotFound))
}

func TestSignalCreateDuplicateWindow(t *testing.T) {
	ctx := context.Background()
	store := NewSignalRepository(newTestDB(t))

	require.NoError(t, store.Create(ctx, sampleSignal("EUR/USD", models.ActionBuy, 91)))
	err := store.Create(ctx, sampleSignal("EUR/USD", models.ActionSell, 95))
	assert.True(t, errors.Is(err, models.ErrDuplicate), "got %v", err)
}

func TestUpsertWithTradeUpdatesInPlace(t *testing.T) {
	ctx := context.Background()
	db := newTestDB(t)
	store := NewSignalRepository(db)
	trades := NewTradeRepository(db)

	first := sampleSignal("GBP/USD", models.ActionBuy, 92)
	require.NoError(t, store.UpsertWithTrade(ctx, first, models.TradeFor(first, "1.2710", "London", window)))

	second := sampleSignal("GBP/USD", models.ActionSell, 97)
	second.Analysis = "reversal"
	require.NoError(t, store.UpsertWithTrade(ctx, second, models.TradeFor(second, "1.2705", "London", window)))

	assert.Equal(t, first.ID, second.ID)
	assert.Equal(t, models.ActionSell, second.Action)
	assert.Equal(t, 97, second.Confidence)
	assert.Equal(t, "reversal", second.Analysis)

	n, err := store.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	list, err := trades.List(ctx, 0)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, first.ID, *list[0].SignalID)
	assert.Equal(t, models.ActionSell, list[0].Action)
	assert.Equal(t, "1.2705", list[0].EntryPrice)

	tr, err := trades.GetBySignal(ctx, first.ID)
	require.NoError(t, err)
	assert.Equal(t, 97, tr.Confidence)
}

func TestUpsertConcurrentSameWindow(t *testing.T) {
	ctx := context.Background()
	store := NewSignalRepository(newTestDB(t))

	var wg sync.WaitGroup
	errs := make(chan error, 8)
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			s := sampleSignal("USD/JPY", models.ActionBuy, 90+i)
			errs <- store.UpsertWithTrade(ctx, s, models.TradeFor(s, "", "Asian", window))
		}(i)
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		require.NoError(t, err)
	}

	n, err := store.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)
}

func TestSignalListOrderAndCurrent(t *testing.T) {
	ctx := context.Background()
	store := NewSignalRepository(newTestDB(t))

	older := sampleSignal("AUD/JPY", models.ActionBuy, 95)
	require.NoError(t, store.Create(ctx, older))
	time.Sleep(5 * time.Millisecond)
	newer := sampleSignal("EUR/USD", models.ActionSell, 88)
	newer.StartTime = window.Add(10 * time.Minute)
	newer.EndTime = newer.StartTime.Add(models.WindowLength)
	require.NoError(t, store.Create(ctx, newer))

	list, err := store.List(ctx, 0)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, newer.ID, list[0].ID)

	limited, err := store.List(ctx, 1)
	require.NoError(t, err)
	assert.Len(t, limited, 1)

	live, err := store.Current(ctx, window.Add(2*time.Minute))
	require.NoError(t, err)
	assert.Equal(t, older.ID, live.ID)

	next, err := store.Current(ctx, window.Add(7*time.Minute))
	require.NoError(t, err)
	assert.Equal(t, newer.ID, next.ID)

	_, err = store.Current(ctx, window.Add(time.Hour))
	assert.True(t, errors.Is(err, models.ErrNotFound))
}

func TestSettingsLazyCreateAndPatch(t *testing.T) {
	ctx := context.Background()
	db := newTestDB(t)
	store := NewSettingsRepository(db)

	s, err := store.Get(ctx)
	require.NoError(t, err)
	assert.Equal(t, models.DefaultMinConfidence, s.MinConfidence)
	assert.True(t, s.AvoidHighImpactNews)
	assert.False(t, s.AutoTrading)

	conf := 80
	auto := true
	pairs := []string{"eur/usd", "usd/jpy"}
	updated, err := store.Update(ctx, &models.SettingsPatch{MinConfidence: &conf, AutoTrading: &auto, CustomPairs: &pairs})
	require.NoError(t, err)
	assert.Equal(t, 80, updated.MinConfidence)
	assert.True(t, updated.AutoTrading)

	again, err := store.Get(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"EUR/USD", "USD/JPY"}, []string(again.CustomPairs))
	assert.True(t, again.AvoidHighImpactNews)

	var rows int64
	require.NoError(t, db.Model(&models.Settings{}).Count(&rows).Error)
	assert.Equal(t, int64(1), rows)
}

func TestSettingsConcurrentFirstRead(t *testing.T) {
	ctx := context.Background()
	db := newTestDB(t)
	store := NewSettingsRepository(db)

	var wg sync.WaitGroup
	for i := 0; i < 5; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := store.Get(ctx)
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	var rows int64
	require.NoError(t, db.Model(&models.Settings{}).Count(&rows).Error)
	assert.Equal(t, int64(1), rows)
}

func TestNewsBetweenAndUpsert(t *testing.T) {
	ctx := context.Background()
	store := NewNewsRepository(newTestDB(t))
	now := window

	require.NoError(t, store.Create(ctx, &models.NewsEvent{Title: "CPI", Impact: models.ImpactHigh, Currency: "usd", Timestamp: now.Add(time.Hour)}))
	n, err := store.Upsert(ctx, []models.NewsEvent{
		{Title: "ECB Speech", Impact: models.ImpactMedium, Currency: "EUR", Timestamp: now.Add(-30 * time.Minute)},
		{Title: "Retail Sales", Impact: models.ImpactLow, Currency: "USD", Timestamp: now.Add(5 * time.Hour)},
		{Title: "CPI", Impact: models.ImpactMedium, Currency: "USD", Timestamp: now.Add(time.Hour)},
	})
	require.NoError(t, err)
	assert.Positive(t, n)

	all, err := store.Between(ctx, "", now.Add(-time.Hour), now.Add(2*time.Hour))
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, "ECB Speech", all[0].Title)
	assert.Equal(t, "CPI", all[1].Title)
	assert.Equal(t, models.ImpactMedium, all[1].Impact, "upsert refreshes impact")

	usd, err := store.Between(ctx, "usd", now.Add(-time.Hour), now.Add(2*time.Hour))
	require.NoError(t, err)
	require.Len(t, usd, 1)
	assert.Equal(t, "USD", usd[0].Currency)
}

func TestNewsUpsertCollapsesDuplicateKeys(t *testing.T) {
	ctx := context.Background()
	store := NewNewsRepository(newTestDB(t))
	at := window.Add(time.Hour)

	_, err := store.Upsert(ctx, []models.NewsEvent{
		{Title: "NFP", Impact: models.ImpactMedium, Currency: "usd", Timestamp: at},
		{Title: "GDP", Impact: models.ImpactLow, Currency: "EUR", Timestamp: at},
		{Title: " NFP ", Impact: models.ImpactHigh, Currency: "USD", Timestamp: at},
	})
	require.NoError(t, err)

	all, err := store.Between(ctx, "", window, window.Add(2*time.Hour))
	require.NoError(t, err)
	require.Len(t, all, 2)

	usd, err := store.Between(ctx, "USD", window, window.Add(2*time.Hour))
	require.NoError(t, err)
	require.Len(t, usd, 1)
	assert.Equal(t, models.ImpactHigh, usd[0].Impact)
}

func TestDedupeNews(t *testing.T) {
	at := window
	got := dedupeNews([]models.NewsEvent{
		{ID: 7, Title: "CPI", Impact: models.ImpactLow, Currency: "usd", Timestamp: at},
		{Title: "CPI", Impact: models.ImpactHigh, Currency: "USD", Timestamp: at.In(time.FixedZone("x", 3600))},
		{Title: "CPI", Impact: models.ImpactLow, Currency: "USD", Timestamp: at.Add(time.Minute)},
	})
	require.Len(t, got, 2)
	assert.Zero(t, got[0].ID)
	assert.Equal(t, "USD", got[0].Currency)
	assert.Equal(t, models.ImpactHigh, got[0].Impact)
	assert.Equal(t, at.Add(time.Minute), got[1].Timestamp)
}

type stubPublisher struct {
	events []models.SignalEvent
	err    error
	closed bool
}

func (s *stubPublisher) PublishSignal(_ context.Context, ev models.SignalEvent) error {
	s.events = append(s.events, ev)
	return s.err
}

func (s *stubPublisher) Close() error {
	s.closed = true
	return nil
}

func TestFanoutPublisherDeliversToAll(t *testing.T) {
	failing := &stubPublisher{err: errors.New("down")}
	ok := &stubPublisher{}
	pub := NewFanoutPublisher(failing, nil, ok)

	ev := models.NewSignalEvent(*sampleSignal("EUR/USD", models.ActionBuy, 90), "London", window)
	err := pub.PublishSignal(context.Background(), ev)
	require.Error(t, err)
	assert.Len(t, ok.events, 1)

	require.NoError(t, pub.Close())
	assert.True(t, failing.closed)
	assert.True(t, ok.closed)
}
