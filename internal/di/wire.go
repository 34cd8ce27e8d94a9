//go:build wireinject
// +build wireinject

package di

import (
	"GlyphCore/pkg/config"
	"GlyphCore/pkg/server"

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
		ProvideCacheStore,
		ProvideKafkaProducer,
		ProvideKafkaConsumer,

		// Repositories
		ProvideSignalCache,
		ProvideSignalPublisher,

		// Use cases
		ProvideEngine,
		ProvideSignalService,
		ProvideSeriesRequestHandler,

		// Transport
		ProvideLimiter,
		ProvideSignalsHandler,

		// Application server
		ProvideApp,
	)
	return &server.App{}, nil
}
