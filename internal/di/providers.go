package di

import (
	"context"
	"fmt"
	"time"

	"GoldCast/internal/domain/repository"
	domsvc "GoldCast/internal/domain/service"
	"GoldCast/internal/handler/api"
	internalrepo "GoldCast/internal/repository"
	"GoldCast/internal/service/cache"
	"GoldCast/internal/service/ratelimit"
	"GoldCast/internal/services/analytics"
	"GoldCast/internal/usecase"
	pkgch "GoldCast/pkg/clickhouse"
	"GoldCast/pkg/config"
	xhttp "GoldCast/pkg/http"
	pkgkafka "GoldCast/pkg/kafka"
	applogger "GoldCast/pkg/logger"
	"GoldCast/pkg/metrics"
)

const (
	memoryHistorySize   = 1000
	predictionCacheSize = 4096
	defaultLogTopic     = "goldcast.logs"
)

// ProvideLogger builds the application logger from the log section.
func ProvideLogger(cfg *config.Config) (*applogger.Logger, error) {
	l, err := applogger.New(&applogger.Config{
		Level:  cfg.Log.Level,
		Format: cfg.Log.Format,
		Output: cfg.Log.Output,
	})
	if err != nil {
		return nil, fmt.Errorf("logger: %w", err)
	}
	return l, nil
}

// ProvideKafkaProducer creates a Kafka producer, or nil when kafka is disabled.
func ProvideKafkaProducer(cfg *config.Config) (*pkgkafka.Producer, error) {
	if !cfg.Kafka.Enabled {
		return nil, nil
	}
	producer, err := pkgkafka.NewProducer(
		pkgkafka.WithBrokers(cfg.Kafka.Brokers),
		pkgkafka.WithCompression(cfg.Kafka.Compression),
		pkgkafka.WithRequiredAcks(cfg.Kafka.RequiredAcks),
		pkgkafka.WithBatching(cfg.Kafka.Producer.BatchSize, cfg.Kafka.Producer.BatchBytes, cfg.Kafka.Producer.Linger),
		pkgkafka.WithTimeouts(cfg.Kafka.Producer.WriteTimeout, cfg.Kafka.Producer.ReadTimeout),
		pkgkafka.WithMaxAttempts(cfg.Kafka.Producer.MaxAttempts),
		pkgkafka.WithAsync(cfg.Kafka.Producer.Async),
		pkgkafka.WithHashByKey(true),
	)
	if err != nil {
		return nil, fmt.Errorf("kafka producer: %w", err)
	}
	return producer, nil
}

// ProvideLogCollector attaches a kafka-backed warn/error collector to l when enabled.
func ProvideLogCollector(cfg *config.Config, l *applogger.Logger, producer *pkgkafka.Producer) *applogger.Collector {
	if !cfg.Log.Collector.Enabled || producer == nil {
		return nil
	}
	topic := cfg.Log.Collector.Topic
	if topic == "" {
		topic = defaultLogTopic
	}
	c := applogger.NewCollector(applogger.CollectorConfig{
		Interval:  cfg.Log.Collector.Interval,
		Threshold: cfg.Log.Collector.Threshold,
		Topic:     topic,
		Sink:      producer,
	})
	l.AttachCollector(c)
	return c
}

// ProvideClickHouseClient creates a ClickHouse client, or nil when clickhouse is disabled.
func ProvideClickHouseClient(cfg *config.Config) (*pkgch.Client, error) {
	if !cfg.ClickHouse.Enabled {
		return nil, nil
	}
	client, err := pkgch.NewClient(context.Background(),
		pkgch.WithHost(cfg.ClickHouse.Host),
		pkgch.WithPort(cfg.ClickHouse.Port),
		pkgch.WithDatabase(cfg.ClickHouse.Database),
		pkgch.WithCredentials(cfg.ClickHouse.User, cfg.ClickHouse.Password),
		pkgch.WithMaxConnections(10, 5),
		pkgch.WithHTTP(cfg.ClickHouse.UseHTTP),
		pkgch.WithAsyncInsert(cfg.ClickHouse.AsyncInsert, cfg.ClickHouse.WaitForAsync),
		pkgch.WithTimeouts(cfg.ClickHouse.DialTimeout, cfg.ClickHouse.ReadTimeout, cfg.ClickHouse.WriteTimeout),
		pkgch.WithMaxExecutionTime(cfg.ClickHouse.MaxExecutionTime),
	)
	if err != nil {
		return nil, fmt.Errorf("clickhouse client: %w", err)
	}
	return client, nil
}

// ProvidePredictionStore returns the ClickHouse store with its schema ready, or
// an in-memory history when clickhouse is disabled.
func ProvidePredictionStore(cfg *config.Config, client *pkgch.Client, l *applogger.Logger) (repository.PredictionStore, error) {
	if client == nil {
		return internalrepo.NewMemoryPredictionStore(memoryHistorySize), nil
	}
	store := internalrepo.NewCHPredictionStore(client, cfg.ClickHouse.Database, cfg.ClickHouse.Table)
	store.SetLogger(l)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := store.Init(ctx); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("clickhouse schema: %w", err)
	}
	return store, nil
}

// ProvidePredictionPublisher publishes through kafka when a producer exists.
func ProvidePredictionPublisher(cfg *config.Config, producer *pkgkafka.Producer) repository.PredictionPublisher {
	if producer == nil {
		return internalrepo.NoopPublisher{}
	}
	return internalrepo.NewKafkaPredictionPublisher(producer, cfg.Kafka.Topic)
}

// ProvidePredictionCache layers a local cache over Redis when configured,
// otherwise uses the local cache alone.
func ProvidePredictionCache(cfg *config.Config) cache.BytesCache {
	r := cfg.Analytics.Redis
	if r.Enabled {
		remote := cache.NewRedisCache(cache.RedisConfig{
			Addr:     r.Addr,
			Password: r.Password,
			DB:       r.DB,
			Prefix:   "goldcast:",
		})
		return cache.NewLayeredCache(remote, predictionCacheSize, time.Minute)
	}
	return cache.NewTTLCache(predictionCacheSize)
}

// ProvideMetrics creates a Prometheus metrics recorder on the default registry.
func ProvideMetrics() repository.Metrics {
	return metrics.New(nil)
}

func ProvideModelRegistry(cfg *config.Config) repository.ModelRegistry {
	return internalrepo.NewFileModelRegistry(cfg.Analytics.ModelDir)
}

func ProvideClassifier(cfg *config.Config) domsvc.Classifier {
	return analytics.NewHTTPClassifier(cfg)
}

func ProvideRateLimiter(cfg *config.Config) *ratelimit.Limiter {
	return ratelimit.New(cfg.Server.RateLimit.Capacity, cfg.Server.RateLimit.RefillPerSec)
}

// ProvideHandlers collects every route set served by the HTTP server.
func ProvideHandlers(h *api.PredictEchoHandler) []xhttp.Handler {
	return []xhttp.Handler{h}
}

func ProvidePredictHandler(
	cfg *config.Config,
	l *applogger.Logger,
	predict *usecase.PredictUseCase,
	features *usecase.FeaturesUseCase,
	rl *ratelimit.Limiter,
) *api.PredictEchoHandler {
	return api.NewPredictEchoHandler(l, predict, features, rl, cfg.Server.MaxUploadBytes)
}

// ProvideHTTPServer builds the echo server. The collector argument only orders
// construction so warn logs raised while serving reach kafka.
func ProvideHTTPServer(cfg *config.Config, l *applogger.Logger, handlers []xhttp.Handler, _ *applogger.Collector) *xhttp.Server {
	metricsPath := ""
	if cfg.Metrics.Enabled {
		metricsPath = cfg.Metrics.Path
	}
	return xhttp.NewServer(handlers,
		xhttp.WithHost(cfg.Server.Host),
		xhttp.WithPort(cfg.Server.Port),
		xhttp.WithTimeouts(cfg.Server.ReadTimeout, cfg.Server.WriteTimeout, cfg.Server.ShutdownTimeout),
		xhttp.WithMetricsPath(metricsPath),
		xhttp.WithLogger(l),
	)
}
