package server

import (
	"context"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	domrepo "GoldCast/internal/domain/repository"
	"GoldCast/internal/service/cache"
	"GoldCast/internal/service/ratelimit"
	pkgch "GoldCast/pkg/clickhouse"
	"GoldCast/pkg/config"
	xhttp "GoldCast/pkg/http"
	applogger "GoldCast/pkg/logger"
)

const limiterIdle = 10 * time.Minute

// App encapsulates the service lifecycle: it owns every long-lived client and
// closes them in dependency order on shutdown.
type App struct {
	cfg        *config.Config
	l          *applogger.Logger
	httpServer *xhttp.Server
	limiter    *ratelimit.Limiter
	store      domrepo.PredictionStore
	publisher  domrepo.PredictionPublisher
	cache      cache.BytesCache
	chClient   *pkgch.Client
}

// New creates a new App instance with all dependencies.
func New(
	cfg *config.Config,
	l *applogger.Logger,
	httpServer *xhttp.Server,
	limiter *ratelimit.Limiter,
	store domrepo.PredictionStore,
	publisher domrepo.PredictionPublisher,
	c cache.BytesCache,
	chClient *pkgch.Client,
) *App {
	return &App{
		cfg:        cfg,
		l:          l,
		httpServer: httpServer,
		limiter:    limiter,
		store:      store,
		publisher:  publisher,
		cache:      c,
		chClient:   chClient,
	}
}

// Run starts the application and blocks until interrupted.
func (a *App) Run() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := a.httpServer.Start(); err != nil {
		a.l.Error("http server start error", applogger.Error(err))
		return err
	}
	go a.pruneLimiter(ctx)

	a.l.Info("goldcast started",
		applogger.String("env", a.cfg.Environment),
		applogger.String("model_dir", a.cfg.Analytics.ModelDir),
		applogger.Bool("clickhouse", a.cfg.ClickHouse.Enabled),
		applogger.Bool("kafka", a.cfg.Kafka.Enabled),
		applogger.Bool("redis", a.cfg.Analytics.Redis.Enabled),
	)

	<-ctx.Done()
	a.l.Info("shutdown signal received")
	return a.shutdown()
}

func (a *App) pruneLimiter(ctx context.Context) {
	if a.limiter == nil {
		return
	}
	t := time.NewTicker(time.Minute)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			if n := a.limiter.Prune(limiterIdle); n > 0 {
				a.l.Debug("rate limiter pruned", applogger.Int("buckets", n))
			}
		}
	}
}

// shutdown stops the HTTP server first, then flushes logs before the kafka
// producer they may be shipped through is closed.
func (a *App) shutdown() error {
	ctx, cancel := context.WithTimeout(context.Background(), a.cfg.Server.ShutdownTimeout)
	defer cancel()

	var firstErr error
	if err := a.httpServer.Stop(ctx); err != nil {
		a.l.Error("http shutdown error", applogger.Error(err))
		firstErr = err
	}

	a.l.Info("shutting down")
	a.l.Close()

	if a.publisher != nil {
		if err := a.publisher.Close(); err != nil {
			a.l.Warn("publisher close error", applogger.Error(err))
		}
	}
	if a.store != nil {
		if err := a.store.Close(); err != nil {
			a.l.Warn("prediction store close error", applogger.Error(err))
		}
	}
	if a.chClient != nil {
		if err := a.chClient.Close(); err != nil {
			a.l.Warn("clickhouse close error", applogger.Error(err))
		}
	}
	if closer, ok := a.cache.(io.Closer); ok {
		if err := closer.Close(); err != nil {
			a.l.Warn("cache close error", applogger.Error(err))
		}
	}

	a.l.Info("shutdown complete")
	return firstErr
}
