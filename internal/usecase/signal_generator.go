package usecase

import (
	"context"
	"errors"
	"fmt"
	"time"

	"FxPulse/internal/domain/models"
	"FxPulse/internal/domain/repository"
	"FxPulse/internal/domain/service"
	"FxPulse/internal/service/notify"
	"FxPulse/internal/service/telegram"
	"FxPulse/internal/services/prompt"
	"FxPulse/internal/services/session"
	applogger "FxPulse/pkg/logger"
	xutil "FxPulse/pkg/util"
)

// GeneratorConfig controls window placement and the provider deadline.
type GeneratorConfig struct {
	Lookahead       time.Duration
	Step            time.Duration
	Rounding        xutil.Rounding
	ProviderTimeout time.Duration
}

// DefaultGeneratorConfig returns a 2m lookahead floored onto 5m windows with
// a 30s provider deadline.
func DefaultGeneratorConfig() GeneratorConfig {
	return GeneratorConfig{
		Lookahead:       2 * time.Minute,
		Step:            models.WindowLength,
		Rounding:        xutil.RoundFloor,
		ProviderTimeout: 30 * time.Second,
	}
}

// SignalGenerator produces one signal for one pair.
type SignalGenerator struct {
	signals   repository.SignalStore
	news      *NewsGate
	provider  service.AnalysisProvider
	notifier  service.Notifier
	side      *notify.SideChannel
	publisher repository.EventPublisher
	metrics   repository.Metrics
	log       *applogger.Logger
	cfg       GeneratorConfig
	now       func() time.Time
}

// NewSignalGenerator creates a generator. notifier, side and publisher may be
// nil; the matching side effect is then skipped.
func NewSignalGenerator(
	signals repository.SignalStore,
	news *NewsGate,
	provider service.AnalysisProvider,
	notifier service.Notifier,
	side *notify.SideChannel,
	publisher repository.EventPublisher,
	metrics repository.Metrics,
	log *applogger.Logger,
	cfg GeneratorConfig,
) *SignalGenerator {
	def := DefaultGeneratorConfig()
	if cfg.Step <= 0 {
		cfg.Step = def.Step
	}
	if cfg.ProviderTimeout <= 0 {
		cfg.ProviderTimeout = def.ProviderTimeout
	}
	return &SignalGenerator{
		signals:   signals,
		news:      news,
		provider:  provider,
		notifier:  notifier,
		side:      side,
		publisher: publisher,
		metrics:   metrics,
		log:       log,
		cfg:       cfg,
		now:       time.Now,
	}
}

// SetClock overrides the time source.
func (g *SignalGenerator) SetClock(now func() time.Time) { g.now = now }

// Now returns the generator's current time.
func (g *SignalGenerator) Now() time.Time { return g.now() }

// Window returns the window a signal generated at now would govern.
func (g *SignalGenerator) Window(now time.Time) (time.Time, time.Time) {
	start, _ := xutil.WindowAt(now, g.cfg.Lookahead, g.cfg.Step, g.cfg.Rounding)
	return start, start.Add(models.WindowLength)
}

// Generate produces a signal for pair using settings fetched by the caller.
func (g *SignalGenerator) Generate(ctx context.Context, pair string, settings *models.Settings) (*models.Signal, error) {
	return g.GenerateAt(ctx, pair, settings, g.now())
}

// GenerateAt is Generate at an explicit time. A rejection is returned as a
// *models.RejectionError and nothing is stored.
func (g *SignalGenerator) GenerateAt(ctx context.Context, pair string, settings *models.Settings, now time.Time) (*models.Signal, error) {
	if settings == nil {
		def := models.DefaultSettings()
		settings = &def
	}
	start := time.Now()
	sess := session.Current(now)
	currency := models.BaseCurrency(pair)

	if settings.AvoidHighImpactNews && g.news != nil {
		if ev, blocked := g.news.Blocking(ctx, currency, now); blocked {
			return nil, g.reject(pair, models.NewsBlocked(ev))
		}
	}

	analysis, err := g.analyze(ctx, pair, sess, settings.MinConfidence)
	if err != nil {
		g.log.Error("analysis provider failed",
			applogger.String("pair", pair),
			applogger.Error(err),
		)
		return nil, g.reject(pair, models.ProviderFailure(err))
	}

	action, ok := models.NormalizeAction(analysis.Action)
	if !ok {
		err := fmt.Errorf("unknown action %q", analysis.Action)
		g.log.Error("analysis provider failed",
			applogger.String("pair", pair),
			applogger.Error(err),
		)
		return nil, g.reject(pair, models.ProviderFailure(err))
	}

	if analysis.Confidence < settings.MinConfidence {
		return nil, g.reject(pair, models.LowConfidence(analysis.Confidence, settings.MinConfidence))
	}

	windowStart, windowEnd := g.Window(now)
	sig := &models.Signal{
		Pair:       pair,
		Action:     action,
		Confidence: analysis.Confidence,
		StartTime:  windowStart,
		EndTime:    windowEnd,
		Status:     models.StatusActive,
		Analysis: prompt.Analysis(&prompt.Parsed{
			Reasoning:       analysis.Reasoning,
			PatternDetected: analysis.PatternDetected,
			EntryPrice:      analysis.EntryPrice,
		}),
	}
	trade := models.TradeFor(sig, analysis.EntryPrice, sess.String(), now)

	if err := g.signals.UpsertWithTrade(ctx, sig, trade); err != nil {
		g.metrics.RecordError("storage")
		return nil, fmt.Errorf("store signal: %w", err)
	}

	g.metrics.RecordSignal(sig.Pair, sig.Action)
	g.metrics.RecordLatency("generate", time.Since(start).Seconds())
	g.log.Info("signal generated",
		applogger.String("pair", sig.Pair),
		applogger.String("action", string(sig.Action)),
		applogger.Int("confidence", sig.Confidence),
		applogger.Uint("id", sig.ID),
		applogger.Time("start", sig.StartTime),
	)

	g.dispatch(*sig, sess, settings, now)
	return sig, nil
}

func (g *SignalGenerator) analyze(ctx context.Context, pair string, sess session.Name, minConfidence int) (*service.Analysis, error) {
	if g.provider == nil {
		return nil, errors.New("no analysis provider configured")
	}
	ctx, cancel := context.WithTimeout(ctx, g.cfg.ProviderTimeout)
	defer cancel()

	began := time.Now()
	a, err := g.provider.Analyze(ctx, service.AnalysisRequest{
		Pair:          pair,
		Session:       sess.String(),
		MarketContext: prompt.MarketContext(pair, sess.String()),
		MinConfidence: minConfidence,
	})
	g.metrics.RecordLatency("provider", time.Since(began).Seconds())
	if err != nil {
		return nil, err
	}
	if a == nil {
		return nil, prompt.ErrEmpty
	}
	return a, nil
}

// dispatch hands the notification and event publish to the side channel. It
// never blocks generation and its failures are only logged.
func (g *SignalGenerator) dispatch(sig models.Signal, sess session.Name, settings *models.Settings, now time.Time) {
	if g.side == nil {
		return
	}
	if g.notifier != nil && settings.NotificationsEnabled() && sig.Action != models.ActionNoTrade {
		token, chatID := settings.TelegramToken, settings.TelegramGroupID
		text := telegram.FormatSignal(&sig, sess.String(), session.Location)
		key := fmt.Sprintf("%s@%d@%s", sig.Pair, sig.StartTime.Unix(), sig.Action)
		g.side.Submit("telegram", key, func(ctx context.Context) error {
			return g.notifier.Send(ctx, token, chatID, text)
		})
	}
	if g.publisher != nil {
		ev := models.NewSignalEvent(sig, sess.String(), now)
		g.side.Submit("publish", "", func(ctx context.Context) error {
			return g.publisher.PublishSignal(ctx, ev)
		})
	}
}

func (g *SignalGenerator) reject(pair string, err error) error {
	kind := models.KindOf(err)
	g.metrics.RecordRejection(kind)
	if kind != models.RejectProvider {
		g.log.Info("signal rejected",
			applogger.String("pair", pair),
			applogger.String("kind", string(kind)),
			applogger.String("reason", err.Error()),
		)
	}
	return err
}
