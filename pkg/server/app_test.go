package server

import (
	"context"
	"fmt"
	"testing"
	"time"

	"FxPulse/internal/handler/api"
	"FxPulse/internal/repository"
	"FxPulse/internal/service/notify"
	"FxPulse/internal/usecase"
	"FxPulse/pkg/cache"
	"FxPulse/pkg/config"
	"FxPulse/pkg/database"
	xhttp "FxPulse/pkg/http"
	applogger "FxPulse/pkg/logger"
	"FxPulse/pkg/metrics"
	"FxPulse/pkg/scheduler"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestApp(t *testing.T, mutate func(*config.Config)) *App {
	t.Helper()
	cfg := config.Default()
	cfg.Server.Host = "127.0.0.1"
	cfg.Server.Port = 0
	cfg.Seed.Demo = true
	if mutate != nil {
		mutate(cfg)
	}

	dsn := fmt.Sprintf("file:app_%d?mode=memory&cache=shared", time.Now().UnixNano())
	db, err := database.NewClient(database.WithDriver(database.DriverSQLite), database.WithDSN(dsn))
	require.NoError(t, err)
	require.NoError(t, db.Migrate(context.Background(), repository.Models()...))

	log := applogger.Nop()
	signals := repository.NewSignalRepository(db.DB())
	settings := repository.NewSettingsRepository(db.DB())
	news := repository.NewNewsRepository(db.DB())
	locks := cache.NewMemoryCache()
	gate := usecase.NewNewsGate(news, nil, log)
	gen := usecase.NewSignalGenerator(signals, gate, nil, nil, nil, nil, metrics.Nop{}, log, usecase.DefaultGeneratorConfig())
	batch := usecase.NewBatchGenerator(gen, settings, locks, metrics.Nop{}, log)

	return New(Deps{
		Config:     cfg,
		Logger:     log,
		DB:         db,
		HTTP:       xhttp.NewServer(log, api.NewRouter(), xhttp.WithHost(cfg.Server.Host), xhttp.WithPort(cfg.Server.Port)),
		Scheduler:  scheduler.New(log, context.Background()),
		Side:       notify.New(log),
		Publisher:  repository.NewFanoutPublisher(),
		Cache:      locks,
		Signals:    signals,
		AutoTrader: usecase.NewAutoTrader(batch, settings, log),
		Calendar:   usecase.NewCalendarSync(xhttp.NewClient(), cfg.Calendar.URL, news, gate, log),
	})
}

func TestApp_PrepareSeedsAndSchedules(t *testing.T) {
	a := newTestApp(t, nil)
	ctx := context.Background()

	require.NoError(t, a.prepare(ctx))
	assert.Equal(t, 1, a.Scheduler.Len(), "calendar job is skipped without a url")

	n, err := a.Signals.Count(ctx)
	require.NoError(t, err)
	assert.EqualValues(t, 2, n)

	// Seeding twice leaves the table alone.
	require.NoError(t, a.prepare(ctx))
	n, err = a.Signals.Count(ctx)
	require.NoError(t, err)
	assert.EqualValues(t, 2, n)

	require.NoError(t, a.shutdown())
}

func TestApp_PrepareRejectsBadSpec(t *testing.T) {
	a := newTestApp(t, func(c *config.Config) {
		c.Seed.Demo = false
		c.Scheduler.AutoTradingSpec = "not a spec"
	})
	assert.Error(t, a.prepare(context.Background()))
	require.NoError(t, a.shutdown())
}

func TestApp_RunContextStopsOnCancel(t *testing.T) {
	a := newTestApp(t, func(c *config.Config) { c.Seed.Demo = false })
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	done := make(chan error, 1)
	go func() { done <- a.RunContext(ctx) }()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("app did not stop")
	}
	assert.Error(t, a.DB.Health(context.Background()), "database is closed on shutdown")
}
