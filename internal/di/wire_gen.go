//go:build !wireinject
// +build !wireinject

package di

import (
	"GoldCast/internal/usecase"
	"GoldCast/pkg/config"
	"GoldCast/pkg/server"
)

// InitializeApp is the hand-written counterpart of the injector in wire.go.
// It calls the providers in the order wire resolves them; running
// `go run github.com/google/wire/cmd/wire ./internal/di` replaces this file
// with generated output of the same shape.
func InitializeApp(cfg *config.Config) (*server.App, error) {
	logger, err := ProvideLogger(cfg)
	if err != nil {
		return nil, err
	}
	producer, err := ProvideKafkaProducer(cfg)
	if err != nil {
		return nil, err
	}
	collector := ProvideLogCollector(cfg, logger, producer)
	featureBuilder := usecase.NewFeatureBuilder(cfg)
	modelRegistry := ProvideModelRegistry(cfg)
	classifier := ProvideClassifier(cfg)
	client, err := ProvideClickHouseClient(cfg)
	if err != nil {
		return nil, err
	}
	predictionStore, err := ProvidePredictionStore(cfg, client, logger)
	if err != nil {
		return nil, err
	}
	predictionPublisher := ProvidePredictionPublisher(cfg, producer)
	bytesCache := ProvidePredictionCache(cfg)
	metrics := ProvideMetrics()
	predictUseCase := usecase.NewPredictUseCase(cfg, featureBuilder, modelRegistry, classifier, predictionStore, predictionPublisher, bytesCache, metrics, logger)
	featuresUseCase := usecase.NewFeaturesUseCase(featureBuilder, metrics)
	limiter := ProvideRateLimiter(cfg)
	predictEchoHandler := ProvidePredictHandler(cfg, logger, predictUseCase, featuresUseCase, limiter)
	v := ProvideHandlers(predictEchoHandler)
	xhttpServer := ProvideHTTPServer(cfg, logger, v, collector)
	app := server.New(cfg, logger, xhttpServer, limiter, predictionStore, predictionPublisher, bytesCache, client)
	return app, nil
}
