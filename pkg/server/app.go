package server

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"
	"time"

	"FxPulse/internal/domain/repository"
	"FxPulse/internal/service/notify"
	"FxPulse/internal/usecase"
	"FxPulse/pkg/cache"
	"FxPulse/pkg/config"
	"FxPulse/pkg/database"
	xhttp "FxPulse/pkg/http"
	applogger "FxPulse/pkg/logger"
	"FxPulse/pkg/scheduler"
)

// Deps holds everything the application lifecycle owns.
type Deps struct {
	Config     *config.Config
	Logger     *applogger.Logger
	DB         *database.Client
	HTTP       *xhttp.Server
	Scheduler  *scheduler.Runner
	Side       *notify.SideChannel
	Publisher  repository.EventPublisher
	Cache      cache.Service
	Signals    repository.SignalStore
	AutoTrader *usecase.AutoTrader
	Calendar   *usecase.CalendarSync
}

// App encapsulates the entire application lifecycle.
type App struct {
	Deps
	signals []os.Signal
}

// New creates a new App instance with all dependencies.
func New(d Deps) *App {
	if d.Logger == nil {
		d.Logger = applogger.Nop()
	}
	return &App{Deps: d, signals: []os.Signal{os.Interrupt, syscall.SIGTERM}}
}

// Run starts the application and blocks until interrupted or the HTTP
// server fails.
func (a *App) Run() error {
	ctx, stop := signal.NotifyContext(context.Background(), a.signals...)
	defer stop()
	return a.RunContext(ctx)
}

// RunContext is Run with the stop condition supplied by the caller.
func (a *App) RunContext(ctx context.Context) error {
	l := a.Logger

	if err := a.prepare(ctx); err != nil {
		return err
	}

	a.Scheduler.Start()
	l.Info("scheduler started", applogger.Int("jobs", a.Scheduler.Len()))

	errCh := a.HTTP.Start()
	l.Info("http server started", applogger.String("addr", a.HTTP.Addr()))

	var runErr error
	select {
	case <-ctx.Done():
		l.Info("shutdown signal received")
	case err := <-errCh:
		if err != nil {
			l.Error("http server error", applogger.Error(err))
			runErr = err
		}
	}

	if err := a.shutdown(); err != nil && runErr == nil {
		runErr = err
	}
	return runErr
}

// prepare seeds demo data and registers background jobs.
func (a *App) prepare(ctx context.Context) error {
	l := a.Logger
	cfg := a.Config

	if cfg.Seed.Demo && a.Signals != nil {
		if err := usecase.SeedDemo(ctx, a.Signals, l, time.Now().UTC()); err != nil {
			l.Warn("demo seed failed", applogger.Error(err))
		}
	}

	if a.AutoTrader != nil && cfg.Scheduler.AutoTradingSpec != "" {
		if _, err := a.Scheduler.Add("auto-trading", cfg.Scheduler.AutoTradingSpec, a.AutoTrader.Run); err != nil {
			return err
		}
	}

	if a.Calendar != nil && a.Calendar.Enabled() {
		if _, err := a.Scheduler.Add("calendar-sync", cfg.Calendar.Spec, a.Calendar.Run); err != nil {
			return err
		}
		go func() {
			if err := a.Calendar.Run(ctx); err != nil {
				l.Warn("initial calendar sync failed", applogger.Error(err))
			}
		}()
	}
	return nil
}

// shutdown stops intake first, then drains side effects, then closes
// infrastructure.
func (a *App) shutdown() error {
	l := a.Logger
	cfg := a.Config
	l.Info("shutting down...")

	var errs []error

	httpCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	if err := a.HTTP.Stop(httpCtx); err != nil {
		l.Error("http shutdown error", applogger.Error(err))
		errs = append(errs, err)
	}
	cancel()

	schedCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	if err := a.Scheduler.Stop(schedCtx); err != nil {
		l.Warn("scheduler stop error", applogger.Error(err))
	}
	cancel()

	if a.Side != nil {
		drainCtx, cancel := context.WithTimeout(context.Background(), cfg.Notify.Drain)
		if err := a.Side.Shutdown(drainCtx); err != nil {
			l.Warn("side effects not drained", applogger.Error(err))
		}
		cancel()
	}

	if a.Publisher != nil {
		if err := a.Publisher.Close(); err != nil {
			l.Warn("publisher close error", applogger.Error(err))
		}
	}
	if a.Cache != nil {
		if err := a.Cache.Close(); err != nil {
			l.Warn("cache close error", applogger.Error(err))
		}
	}
	if a.DB != nil {
		if err := a.DB.Close(); err != nil {
			l.Error("database close error", applogger.Error(err))
			errs = append(errs, err)
		}
	}

	l.Info("shutdown complete")
	return errors.Join(errs...)
}
