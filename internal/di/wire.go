//go:build wireinject
// +build wireinject

package di

import (
	"OptionStrat/pkg/config"
	"OptionStrat/pkg/server"

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
		ProvideClickHouseClient,
		ProvideKafkaConsumer,

		// Repositories and services
		ProvidePolygonClient,
		ProvideQuoteSource,
		ProvideScanPublisher,
		ProvideScanStore,
		ProvideEngine,

		// Use cases
		ProvideScanService,
		ProvideScanEventsHandler,

		// Transport
		ProvideStrategyHandler,
		ProvideRateLimiter,

		// Application server
		ProvideApp,
	)
	return &server.App{}, nil
}
