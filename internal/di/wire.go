//go:build wireinject
// +build wireinject

package di

import (
	"LevelBias/pkg/config"
	"LevelBias/pkg/server"

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
		ProvideClickHouseClient,
		ProvideKafkaProducer,
		ProvideBytesCache,
		ProvideLevelCache,
		ProvideRedisQueue,

		// Repositories
		ProvideCandleStore,
		ProvideWeightStore,
		ProvidePredictionStore,
		ProvideAuditPublisher,

		// Use cases
		ProvidePredictUseCase,
		ProvideCandlesUseCase,
		ProvideWeightsUseCase,

		// Transport
		ProvideHub,
		ProvideHTTPHandler,

		// Application server
		ProvideApp,
	)
	return &server.App{}, nil
}
