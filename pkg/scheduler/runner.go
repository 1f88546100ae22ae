// Package scheduler runs named jobs on cron specs. Specs take a leading
// seconds field.
package scheduler

import (
	"context"
	"fmt"
	"time"

	applogger "FxPulse/pkg/logger"

	"github.com/robfig/cron/v3"
)

// Job is one scheduled run. Returned errors are logged.
type Job func(ctx context.Context) error

// Runner wraps a cron instance. A run that is still going when its next tick
// fires is skipped, and panics are recovered and logged.
type Runner struct {
	cron   *cron.Cron
	log    *applogger.Logger
	ctx    context.Context
	cancel context.CancelFunc
}

// New creates a runner whose jobs receive a context derived from base that is
// cancelled by Stop.
func New(log *applogger.Logger, base context.Context) *Runner {
	if base == nil {
		base = context.Background()
	}
	if log == nil {
		log = applogger.Nop()
	}
	ctx, cancel := context.WithCancel(base)
	cl := cronLogger{log: log}
	return &Runner{
		cron: cron.New(
			cron.WithSeconds(),
			cron.WithLocation(time.UTC),
			cron.WithChain(cron.Recover(cl), cron.SkipIfStillRunning(cl)),
		),
		log:    log,
		ctx:    ctx,
		cancel: cancel,
	}
}

// Add registers job under name on spec.
func (r *Runner) Add(name, spec string, job Job) (cron.EntryID, error) {
	id, err := r.cron.AddFunc(spec, func() {
		start := time.Now()
		if err := job(r.ctx); err != nil {
			r.log.Warn("scheduled job failed",
				applogger.String("job", name),
				applogger.Duration("took", time.Since(start)),
				applogger.Error(err),
			)
			return
		}
		r.log.Debug("scheduled job done",
			applogger.String("job", name),
			applogger.Duration("took", time.Since(start)),
		)
	})
	if err != nil {
		return 0, fmt.Errorf("schedule %s (%q): %w", name, spec, err)
	}
	r.log.Info("job scheduled", applogger.String("job", name), applogger.String("spec", spec))
	return id, nil
}

// Len returns the number of registered jobs.
func (r *Runner) Len() int {
	return len(r.cron.Entries())
}

// Start begins firing jobs.
func (r *Runner) Start() {
	r.cron.Start()
	r.log.Info("scheduler started", applogger.Int("jobs", r.Len()))
}

// Stop cancels running jobs' context and waits for them to return or for ctx
// to expire.
func (r *Runner) Stop(ctx context.Context) error {
	r.cancel()
	done := r.cron.Stop()
	select {
	case <-done.Done():
		r.log.Info("scheduler stopped")
		return nil
	case <-ctx.Done():
		return fmt.Errorf("scheduler stop: %w", ctx.Err())
	}
}

// cronLogger adapts the application logger to cron.Logger.
type cronLogger struct {
	log *applogger.Logger
}

func (l cronLogger) Info(msg string, keysAndValues ...interface{}) {
	l.log.Debug("cron: "+msg, fields(keysAndValues)...)
}

func (l cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	l.log.Error("cron: "+msg, append(fields(keysAndValues), applogger.Error(err))...)
}

func fields(kv []interface{}) []applogger.Field {
	out := make([]applogger.Field, 0, len(kv)/2)
	for i := 0; i+1 < len(kv); i += 2 {
		out = append(out, applogger.Any(fmt.Sprint(kv[i]), kv[i+1]))
	}
	return out
}
