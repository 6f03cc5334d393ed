package usecase

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"

	"GoldCast/internal/domain/models"
	domrepo "GoldCast/internal/domain/repository"
	domsvc "GoldCast/internal/domain/service"
	"GoldCast/internal/service/cache"
	"GoldCast/pkg/config"
	xhttp "GoldCast/pkg/http"
	applogger "GoldCast/pkg/logger"
)

// PredictUseCase turns an uploaded price history into a next-day direction.
type PredictUseCase struct {
	builder    FeatureBuilder
	registry   domrepo.ModelRegistry
	classifier domsvc.Classifier
	store      domrepo.PredictionStore
	publisher  domrepo.PredictionPublisher
	cache      cache.BytesCache
	cacheTTL   time.Duration
	metrics    domrepo.Metrics
	l          *applogger.Logger
	now        func() time.Time
}

func NewPredictUseCase(
	cfg *config.Config,
	builder FeatureBuilder,
	registry domrepo.ModelRegistry,
	classifier domsvc.Classifier,
	store domrepo.PredictionStore,
	publisher domrepo.PredictionPublisher,
	c cache.BytesCache,
	m domrepo.Metrics,
	l *applogger.Logger,
) *PredictUseCase {
	if m == nil {
		m = nopMetrics{}
	}
	if l == nil {
		l = applogger.Nop()
	}
	return &PredictUseCase{
		builder:    builder,
		registry:   registry,
		classifier: classifier,
		store:      store,
		publisher:  publisher,
		cache:      c,
		cacheTTL:   cfg.Analytics.CacheTTL,
		metrics:    m,
		l:          l,
		now:        time.Now,
	}
}

// CacheKey identifies an upload by content.
func CacheKey(data []byte) string {
	sum := sha256.Sum256(data)
	return "predict:" + hex.EncodeToString(sum[:])
}

// Predict classifies the most recent complete feature row of the upload with
// the model stored for its candlestick pattern.
func (uc *PredictUseCase) Predict(ctx context.Context, source string, data []byte) (*models.Prediction, error) {
	start := uc.now()
	defer func() { uc.metrics.RecordLatency("predict", time.Since(start).Seconds()) }()

	key := CacheKey(data)
	if p, ok := uc.cached(ctx, key); ok {
		p.Source = source
		return p, nil
	}

	t, err := uc.builder.Build(data)
	if err != nil {
		uc.metrics.RecordError(errKind(err))
		return nil, err
	}
	uc.metrics.RecordRows(t.RowsIn, t.Dropped)
	last, _ := t.Last()
	pattern := string(last.CandlePattern)

	ref, err := uc.registry.Resolve(ctx, pattern)
	if err != nil {
		if errors.Is(err, domrepo.ErrModelNotFound) {
			uc.metrics.RecordError(errKindNoModel)
			return nil, xhttp.NotFoundErrorf("no model stored for candle pattern %q", pattern).
				WithParam("candle_pattern", pattern).
				WithError(err)
		}
		uc.metrics.RecordError(errKindRegistry)
		return nil, xhttp.InternalError("model registry unavailable").WithError(err)
	}

	label, err := uc.classifier.Predict(ctx, ref, models.ClassifierInput{
		Columns:       t.Columns,
		Features:      last.Vector(),
		CandlePattern: pattern,
		Trigram:       string(last.Trigram),
	})
	if err != nil {
		uc.metrics.RecordError(errKindClassifier)
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, xhttp.BadGatewayError("classifier failed").WithParam("model", ref.Name).WithError(err)
	}

	p := &models.Prediction{
		ID:             uuid.New().String(),
		Source:         source,
		Timestamp:      uc.now().UTC(),
		CandlePattern:  pattern,
		Trigram:        string(last.Trigram),
		Label:          label,
		Interpretation: models.Interpret(label),
		Model:          ref.Name,
		Features:       last.Map(),
		RowsIn:         t.RowsIn,
		RowsOut:        len(t.Rows),
		Warnings:       t.Warnings,
	}
	uc.metrics.RecordPrediction(pattern, label)
	uc.record(ctx, key, p)
	return p, nil
}

// History returns the most recent stored predictions, newest first.
func (uc *PredictUseCase) History(ctx context.Context, limit int) ([]*models.Prediction, error) {
	out, err := uc.store.Recent(ctx, limit)
	if err != nil {
		uc.metrics.RecordError(errKindStore)
		return nil, xhttp.InternalError("prediction history unavailable").WithError(err)
	}
	return out, nil
}

// Health reports whether the prediction store is reachable.
func (uc *PredictUseCase) Health(ctx context.Context) error {
	if uc.store == nil {
		return nil
	}
	return uc.store.Health(ctx)
}

// Models lists the stored classifier artifacts.
func (uc *PredictUseCase) Models(ctx context.Context) ([]models.ModelRef, error) {
	refs, err := uc.registry.List(ctx)
	if err != nil {
		uc.metrics.RecordError(errKindRegistry)
		return nil, xhttp.InternalError("model registry unavailable").WithError(err)
	}
	return refs, nil
}

func (uc *PredictUseCase) cached(ctx context.Context, key string) (*models.Prediction, bool) {
	if uc.cache == nil {
		return nil, false
	}
	b, ok, err := uc.cache.GetBytes(ctx, key)
	if err != nil {
		uc.metrics.RecordError(errKindCache)
		uc.l.Warn("prediction cache read failed", applogger.String("key", key), applogger.Error(err))
		return nil, false
	}
	uc.metrics.RecordCache(ok)
	if !ok {
		return nil, false
	}
	var p models.Prediction
	if err := json.Unmarshal(b, &p); err != nil {
		uc.l.Warn("prediction cache entry corrupt", applogger.String("key", key), applogger.Error(err))
		return nil, false
	}
	return &p, true
}

// record persists, publishes and caches a fresh prediction. Failures are logged only.
func (uc *PredictUseCase) record(ctx context.Context, key string, p *models.Prediction) {
	if uc.store != nil {
		if err := uc.store.Save(ctx, p); err != nil {
			uc.metrics.RecordError(errKindStore)
			uc.l.Warn("store prediction failed", applogger.String("id", p.ID), applogger.Error(err))
		}
	}
	if uc.publisher != nil {
		if err := uc.publisher.Publish(ctx, p); err != nil {
			uc.metrics.RecordError(errKindPublish)
			uc.l.Warn("publish prediction failed", applogger.String("id", p.ID), applogger.Error(err))
		}
	}
	if uc.cache != nil && uc.cacheTTL > 0 {
		b, err := json.Marshal(p)
		if err == nil {
			err = uc.cache.SetBytes(ctx, key, b, uc.cacheTTL)
		}
		if err != nil {
			uc.metrics.RecordError(errKindCache)
			uc.l.Warn("cache prediction failed", applogger.String("key", key), applogger.Error(err))
		}
	}
}
