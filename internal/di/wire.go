//go:build wireinject
// +build wireinject

package di

import (
	"GoldCast/internal/usecase"
	"GoldCast/pkg/config"
	"GoldCast/pkg/server"

	"github.com/google/wire"
)

// InitializeApp wires up all dependencies and returns the application.
// Wire generates the implementation of this function into wire_gen.go.
func InitializeApp(cfg *config.Config) (*server.App, error) {
	wire.Build(
		// Ambient
		ProvideLogger,
		ProvideMetrics,

		// Infrastructure clients
		ProvideKafkaProducer,
		ProvideLogCollector,
		ProvideClickHouseClient,
		ProvidePredictionCache,

		// Repositories and services
		ProvidePredictionStore,
		ProvidePredictionPublisher,
		ProvideModelRegistry,
		ProvideClassifier,

		// Use cases
		usecase.NewFeatureBuilder,
		usecase.NewPredictUseCase,
		usecase.NewFeaturesUseCase,

		// HTTP
		ProvideRateLimiter,
		ProvidePredictHandler,
		ProvideHandlers,
		ProvideHTTPServer,

		// Application server
		server.New,
	)
	return &server.App{}, nil
}
