//go:build wireinject
// +build wireinject

package di

import (
	"FxPulse/pkg/config"
	"FxPulse/pkg/server"

	"github.com/google/wire"
)

// InitializeApp wires up all dependencies and returns the application.
// Wire will generate the implementation of this function.
func InitializeApp(cfg *config.Config) (*server.App, error) {
	wire.Build(
		// Ambient
		ProvideLogger,
		ProvideMetrics,

		// Infrastructure clients
		ProvideDatabase,
		ProvideCache,
		ProvideAnalysisProvider,
		ProvideNotifier,
		ProvideHub,
		ProvideEventPublisher,
		ProvideSideChannel,

		// Repositories
		ProvideSignalStore,
		ProvideTradeStore,
		ProvideSettingsStore,
		ProvideNewsStore,

		// Use cases
		ProvideNewsGate,
		ProvideGeneratorConfig,
		ProvideSignalGenerator,
		ProvideBatchGenerator,
		ProvideCoach,
		ProvideTelegramCheck,
		ProvideAutoTrader,
		ProvideCalendarSync,

		// Transport
		ProvideLimiter,
		ProvideHTTPHandler,
		ProvideHTTPServer,
		ProvideScheduler,

		// Application server
		ProvideApp,
	)
	return &server.App{}, nil
}
