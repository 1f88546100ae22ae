package usecase

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"FxPulse/internal/domain/models"
	drepo "FxPulse/internal/domain/repository"
	"FxPulse/internal/domain/service"
	"FxPulse/internal/repository"
	"FxPulse/internal/service/notify"
	"FxPulse/pkg/cache"
	"FxPulse/pkg/database"
	applogger "FxPulse/pkg/logger"
	"FxPulse/pkg/metrics"

	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

// 10:02 in UTC+3, Asian session. The next window is 07:00..07:05 UTC.
var asianNow = time.Date(2024, 10, 10, 7, 2, 0, 0, time.UTC)

type fakeProvider struct {
	mu      sync.Mutex
	calls   []service.AnalysisRequest
	results map[string]*service.Analysis
	fail    map[string]error
	def     *service.Analysis
	chatIn  []string
	reply   string
}

func newFakeProvider(action string, confidence int) *fakeProvider {
	return &fakeProvider{
		results: map[string]*service.Analysis{},
		fail:    map[string]error{},
		def: &service.Analysis{
			Action:          action,
			Confidence:      confidence,
			Reasoning:       "Momentum building",
			PatternDetected: "Bull flag",
			EntryPrice:      "1.0842",
		},
		reply: "Keep risk small.",
	}
}

func (p *fakeProvider) Analyze(_ context.Context, req service.AnalysisRequest) (*service.Analysis, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.calls = append(p.calls, req)
	if err := p.fail[req.Pair]; err != nil {
		return nil, err
	}
	if r, ok := p.results[req.Pair]; ok {
		cp := *r
		return &cp, nil
	}
	cp := *p.def
	return &cp, nil
}

func (p *fakeProvider) Chat(_ context.Context, _ string, message string) (string, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.chatIn = append(p.chatIn, message)
	if p.reply == "" {
		return "", errors.New("provider down")
	}
	return p.reply, nil
}

func (p *fakeProvider) Calls() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.calls)
}

type sent struct {
	token, chatID, text string
}

type fakeNotifier struct {
	mu   sync.Mutex
	msgs []sent
	err  error
}

func (n *fakeNotifier) Send(_ context.Context, token, chatID, text string) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.err != nil {
		return n.err
	}
	n.msgs = append(n.msgs, sent{token, chatID, text})
	return nil
}

func (n *fakeNotifier) Sent() []sent {
	n.mu.Lock()
	defer n.mu.Unlock()
	return append([]sent(nil), n.msgs...)
}

type fakePublisher struct {
	mu     sync.Mutex
	events []models.SignalEvent
}

func (p *fakePublisher) PublishSignal(_ context.Context, ev models.SignalEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, ev)
	return nil
}

func (p *fakePublisher) Close() error { return nil }

func (p *fakePublisher) Events() []models.SignalEvent {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]models.SignalEvent(nil), p.events...)
}

type env struct {
	db        *gorm.DB
	signals   drepo.SignalStore
	trades    drepo.TradeStore
	settings  drepo.SettingsStore
	news      drepo.NewsStore
	gate      *NewsGate
	provider  *fakeProvider
	notifier  *fakeNotifier
	publisher *fakePublisher
	side      *notify.SideChannel
	locks     *cache.MemoryCache
	gen       *SignalGenerator
	batch     *BatchGenerator
	log       *applogger.Logger
}

func newEnv(t *testing.T, now time.Time) *env {
	t.Helper()
	dsn := fmt.Sprintf("file:usecase_%d?mode=memory&cache=shared", time.Now().UnixNano())
	c, err := database.NewClient(database.WithDriver(database.DriverSQLite), database.WithDSN(dsn))
	require.NoError(t, err)
	t.Cleanup(func() { _ = c.Close() })
	require.NoError(t, c.Migrate(context.Background(), repository.Models()...))

	e := &env{
		db:        c.DB(),
		provider:  newFakeProvider("CALL", 93),
		notifier:  &fakeNotifier{},
		publisher: &fakePublisher{},
		locks:     cache.NewMemoryCache(),
		log:       applogger.Nop(),
	}
	e.signals = repository.NewSignalRepository(e.db)
	e.trades = repository.NewTradeRepository(e.db)
	e.settings = repository.NewSettingsRepository(e.db)
	e.news = repository.NewNewsRepository(e.db)
	e.gate = NewNewsGate(e.news, nil, e.log)
	e.side = notify.New(e.log, notify.WithTimeout(time.Second))
	e.gen = NewSignalGenerator(e.signals, e.gate, e.provider, e.notifier, e.side, e.publisher,
		metrics.Nop{}, e.log, DefaultGeneratorConfig())
	e.gen.SetClock(func() time.Time { return now })
	e.batch = NewBatchGenerator(e.gen, e.settings, e.locks, metrics.Nop{}, e.log)
	return e
}

// drain waits for side channel tasks to finish.
func (e *env) drain(t *testing.T) {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	require.NoError(t, e.side.Shutdown(ctx))
}

func (e *env) count(t *testing.T) int64 {
	t.Helper()
	n, err := e.signals.Count(context.Background())
	require.NoError(t, err)
	return n
}

func (e *env) setSettings(t *testing.T, patch models.SettingsPatch) *models.Settings {
	t.Helper()
	s, err := e.settings.Update(context.Background(), &patch)
	require.NoError(t, err)
	return s
}

func ptr[T any](v T) *T { return &v }
