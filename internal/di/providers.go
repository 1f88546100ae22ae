package di

import (
	"context"
	"fmt"

	"FxPulse/internal/domain/repository"
	"FxPulse/internal/domain/service"
	"FxPulse/internal/handler/api"
	internalrepo "FxPulse/internal/repository"
	"FxPulse/internal/service/llm"
	"FxPulse/internal/service/notify"
	"FxPulse/internal/service/ratelimit"
	"FxPulse/internal/service/stream"
	"FxPulse/internal/service/telegram"
	"FxPulse/internal/usecase"
	"FxPulse/pkg/cache"
	"FxPulse/pkg/config"
	"FxPulse/pkg/database"
	xhttp "FxPulse/pkg/http"
	pkgkafka "FxPulse/pkg/kafka"
	applogger "FxPulse/pkg/logger"
	"FxPulse/pkg/metrics"
	"FxPulse/pkg/scheduler"
	"FxPulse/pkg/server"
	xutil "FxPulse/pkg/util"
)

// ProvideLogger creates the application logger.
func ProvideLogger(cfg *config.Config) (*applogger.Logger, error) {
	return applogger.New(&applogger.Config{
		Service: "fxpulse",
		Level:   cfg.Log.Level,
		Format:  cfg.Log.Format,
		Output:  cfg.Log.Output,
	})
}

// ProvideDatabase opens the store and migrates the schema.
func ProvideDatabase(cfg *config.Config, log *applogger.Logger) (*database.Client, error) {
	// SQL statements are only echoed at debug.
	sqlLevel := "warn"
	if cfg.Log.Level == "debug" {
		sqlLevel = "info"
	}
	client, err := database.NewClient(
		database.WithDriver(cfg.Database.Driver),
		database.WithDSN(cfg.Database.DSN),
		database.WithMaxConnections(cfg.Database.MaxOpenConns, cfg.Database.MaxIdleConns),
		database.WithConnLifetime(cfg.Database.ConnMaxLifetime, 0),
		database.WithLogLevel(sqlLevel, cfg.Database.SlowQuery),
	)
	if err != nil {
		return nil, fmt.Errorf("database client: %w", err)
	}
	if err := client.Migrate(context.Background(), internalrepo.Models()...); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("database schema: %w", err)
	}
	log.Info("database ready", applogger.String("driver", client.Driver()))
	return client, nil
}

func ProvideSignalStore(db *database.Client) repository.SignalStore {
	return internalrepo.NewSignalRepository(db.DB())
}

func ProvideTradeStore(db *database.Client) repository.TradeStore {
	return internalrepo.NewTradeRepository(db.DB())
}

func ProvideSettingsStore(db *database.Client) repository.SettingsStore {
	return internalrepo.NewSettingsRepository(db.DB())
}

func ProvideNewsStore(db *database.Client) repository.NewsStore {
	return internalrepo.NewNewsRepository(db.DB())
}

// ProvideCache returns Redis when enabled and reachable, otherwise an
// in-process cache.
func ProvideCache(cfg *config.Config, log *applogger.Logger) cache.Service {
	if cfg.Redis.Enabled {
		rc, err := cache.NewRedisCache(
			cache.WithRedisAddr(cfg.Redis.Addr),
			cache.WithRedisPassword(cfg.Redis.Password),
			cache.WithRedisDB(cfg.Redis.DB),
			cache.WithRedisPrefix(cfg.Redis.Prefix),
			cache.WithRedisPool(cfg.Redis.PoolSize, cfg.Redis.MinIdle),
		)
		if err == nil {
			log.Info("redis cache connected", applogger.String("addr", cfg.Redis.Addr))
			return rc
		}
		log.Warn("redis unavailable, using memory cache", applogger.Error(err))
	}
	return cache.NewMemoryCache()
}

// ProvideMetrics creates a Prometheus metrics recorder.
func ProvideMetrics() repository.Metrics {
	return metrics.New()
}

// ProvideAnalysisProvider creates the chat-completion client. Without an API
// key generation reports a provider error instead of failing startup.
func ProvideAnalysisProvider(cfg *config.Config, log *applogger.Logger) service.AnalysisProvider {
	client, err := llm.NewClient(
		llm.WithAPIKey(cfg.Provider.APIKey),
		llm.WithBaseURL(cfg.Provider.BaseURL),
		llm.WithModel(cfg.Provider.Model),
		llm.WithTimeout(cfg.Provider.Timeout),
		llm.WithTemperature(cfg.Provider.Temperature),
	)
	if err != nil {
		log.Warn("analysis provider disabled", applogger.Error(err))
		return nil
	}
	return client
}

func ProvideNotifier(cfg *config.Config) service.Notifier {
	opts := []telegram.Option{telegram.WithTimeout(cfg.Notify.Timeout)}
	if cfg.Notify.TelegramURL != "" {
		opts = append(opts, telegram.WithEndpoint(cfg.Notify.TelegramURL))
	}
	return telegram.New(opts...)
}

// ProvideSideChannel creates the best-effort task runner. Telegram outcomes
// feed the notification counter.
func ProvideSideChannel(cfg *config.Config, log *applogger.Logger, m repository.Metrics) *notify.SideChannel {
	return notify.New(log,
		notify.WithTimeout(cfg.Notify.Timeout),
		notify.WithMaxInFlight(cfg.Notify.MaxInFlight),
		notify.WithDedupTTL(cfg.Notify.DedupTTL),
		notify.WithObserver(func(name, result string) {
			if name == "telegram" {
				m.RecordNotification(result)
			}
		}),
	)
}

func ProvideHub(log *applogger.Logger) *stream.Hub {
	return stream.NewHub(log)
}

// ProvideEventPublisher fans events out to websocket clients and, when
// enabled, Kafka.
func ProvideEventPublisher(cfg *config.Config, hub *stream.Hub, log *applogger.Logger) (repository.EventPublisher, error) {
	if !cfg.Kafka.Enabled {
		return internalrepo.NewFanoutPublisher(hub), nil
	}
	producer, err := pkgkafka.NewProducer(
		pkgkafka.WithBrokers(cfg.Kafka.Brokers),
		pkgkafka.WithTopic(cfg.Kafka.Topic),
		pkgkafka.WithClientID(cfg.Kafka.ClientID),
		pkgkafka.WithCompression(cfg.Kafka.Compression),
		pkgkafka.WithRequiredAcks(cfg.Kafka.RequiredAcks),
		pkgkafka.WithMaxAttempts(cfg.Kafka.MaxAttempts),
		pkgkafka.WithWriteTimeout(cfg.Kafka.WriteTimeout),
		pkgkafka.WithBatchTimeout(cfg.Kafka.BatchTimeout),
		pkgkafka.WithHashByKey(true),
	)
	if err != nil {
		return nil, fmt.Errorf("kafka producer: %w", err)
	}
	log.Info("kafka publisher ready", applogger.String("topic", producer.Topic()), applogger.Strings("brokers", cfg.Kafka.Brokers))
	return internalrepo.NewFanoutPublisher(hub, internalrepo.NewKafkaPublisher(producer)), nil
}

func ProvideNewsGate(news repository.NewsStore, c cache.Service, log *applogger.Logger) *usecase.NewsGate {
	return usecase.NewNewsGate(news, c, log)
}

func ProvideGeneratorConfig(cfg *config.Config) usecase.GeneratorConfig {
	gc := usecase.DefaultGeneratorConfig()
	gc.Lookahead = cfg.Signals.Lookahead
	gc.ProviderTimeout = cfg.Provider.Timeout
	if cfg.Signals.Rounding == "ceil" {
		gc.Rounding = xutil.RoundCeil
	}
	return gc
}

func ProvideSignalGenerator(
	signals repository.SignalStore,
	gate *usecase.NewsGate,
	provider service.AnalysisProvider,
	notifier service.Notifier,
	side *notify.SideChannel,
	publisher repository.EventPublisher,
	m repository.Metrics,
	log *applogger.Logger,
	gc usecase.GeneratorConfig,
) *usecase.SignalGenerator {
	return usecase.NewSignalGenerator(signals, gate, provider, notifier, side, publisher, m, log, gc)
}

func ProvideBatchGenerator(
	gen *usecase.SignalGenerator,
	settings repository.SettingsStore,
	c cache.Service,
	m repository.Metrics,
	log *applogger.Logger,
) *usecase.BatchGenerator {
	return usecase.NewBatchGenerator(gen, settings, c, m, log)
}

func ProvideCoach(provider service.AnalysisProvider, signals repository.SignalStore) *usecase.Coach {
	return usecase.NewCoach(provider, signals)
}

func ProvideTelegramCheck(settings repository.SettingsStore, notifier service.Notifier, m repository.Metrics) *usecase.TelegramCheck {
	return usecase.NewTelegramCheck(settings, notifier, m)
}

func ProvideAutoTrader(batch *usecase.BatchGenerator, settings repository.SettingsStore, log *applogger.Logger) *usecase.AutoTrader {
	return usecase.NewAutoTrader(batch, settings, log)
}

func ProvideCalendarSync(cfg *config.Config, news repository.NewsStore, gate *usecase.NewsGate, log *applogger.Logger) *usecase.CalendarSync {
	client := xhttp.NewClient(
		xhttp.WithTimeout(cfg.Calendar.Timeout),
		xhttp.WithUserAgent("fxpulse-calendar/1.0"),
	)
	return usecase.NewCalendarSync(client, cfg.Calendar.URL, news, gate, log)
}

func ProvideLimiter(cfg *config.Config) *ratelimit.Limiter {
	return ratelimit.New(cfg.RateLimit.Burst, cfg.RateLimit.PerSecond)
}

// ProvideHTTPHandler assembles every route group.
func ProvideHTTPHandler(
	log *applogger.Logger,
	db *database.Client,
	signals repository.SignalStore,
	trades repository.TradeStore,
	settings repository.SettingsStore,
	news repository.NewsStore,
	gate *usecase.NewsGate,
	gen *usecase.SignalGenerator,
	batch *usecase.BatchGenerator,
	coach *usecase.Coach,
	check *usecase.TelegramCheck,
	hub *stream.Hub,
	limiter *ratelimit.Limiter,
) xhttp.Handler {
	return api.NewRouter(
		api.NewSignalsEchoHandler(log, signals, settings, gen, batch, limiter),
		api.NewSettingsEchoHandler(log, settings, check),
		api.NewMarketEchoHandler(log, trades, news, gate),
		api.NewSystemEchoHandler(log, coach, hub, db, limiter),
	)
}

func ProvideHTTPServer(cfg *config.Config, log *applogger.Logger, handler xhttp.Handler) *xhttp.Server {
	return xhttp.NewServer(log, handler,
		xhttp.WithHost(cfg.Server.Host),
		xhttp.WithPort(cfg.Server.Port),
		xhttp.WithTimeouts(cfg.Server.ReadTimeout, cfg.Server.WriteTimeout, cfg.Server.ShutdownTimeout),
		xhttp.WithSlowRequest(cfg.Server.SlowRequest),
		xhttp.WithCORS(cfg.Server.CORSOrigins...),
	)
}

func ProvideScheduler(log *applogger.Logger) *scheduler.Runner {
	return scheduler.New(log, context.Background())
}

// ProvideApp creates the application server.
func ProvideApp(
	cfg *config.Config,
	log *applogger.Logger,
	db *database.Client,
	httpServer *xhttp.Server,
	runner *scheduler.Runner,
	side *notify.SideChannel,
	publisher repository.EventPublisher,
	c cache.Service,
	signals repository.SignalStore,
	autoTrader *usecase.AutoTrader,
	calendar *usecase.CalendarSync,
) *server.App {
	return server.New(server.Deps{
		Config:     cfg,
		Logger:     log,
		DB:         db,
		HTTP:       httpServer,
		Scheduler:  runner,
		Side:       side,
		Publisher:  publisher,
		Cache:      c,
		Signals:    signals,
		AutoTrader: autoTrader,
		Calendar:   calendar,
	})
}
