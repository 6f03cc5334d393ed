package repository

import (
	"context"
	"errors"

	"GoldCast/internal/domain/models"
)

// ErrModelNotFound is returned when no stored classifier matches a pattern.
var ErrModelNotFound = errors.New("model not found")

// ModelRegistry locates classifier artifacts by candlestick pattern name.
type ModelRegistry interface {
	Resolve(ctx context.Context, pattern string) (models.ModelRef, error)
	List(ctx context.Context) ([]models.ModelRef, error)
}

// PredictionStore persists served predictions.
type PredictionStore interface {
	Init(ctx context.Context) error
	Save(ctx context.Context, p *models.Prediction) error
	Recent(ctx context.Context, limit int) ([]*models.Prediction, error)
	Health(ctx context.Context) error
	Close() error
}

// PredictionPublisher emits prediction events to downstream consumers.
type PredictionPublisher interface {
	Publish(ctx context.Context, p *models.Prediction) error
	Close() error
}

type Metrics interface {
	RecordPrediction(pattern string, label int)
	RecordRows(in, dropped int)
	RecordCache(hit bool)
	RecordError(kind string)
	RecordLatency(op string, seconds float64)
}
