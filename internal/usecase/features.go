package usecase

import (
	"bytes"
	"context"
	"errors"
	"time"

	domrepo "GoldCast/internal/domain/repository"
	"GoldCast/internal/services/features"
	"GoldCast/internal/services/table"
	"GoldCast/pkg/config"
	xhttp "GoldCast/pkg/http"
)

// FeatureBuilder parses an uploaded table and runs the feature pipeline.
type FeatureBuilder struct {
	MinRows  int
	Parallel bool
}

func NewFeatureBuilder(cfg *config.Config) FeatureBuilder {
	minRows := cfg.Analytics.MinRows
	if minRows < config.MinHistoryRows {
		minRows = config.MinHistoryRows
	}
	return FeatureBuilder{MinRows: minRows, Parallel: cfg.Analytics.Parallel}
}

// Build returns the feature table for a CSV upload. Every failure is a 400 AppError.
func (b FeatureBuilder) Build(data []byte) (*features.FeatureTable, error) {
	bars, warnings, err := table.ReadBars(bytes.NewReader(data))
	if err != nil {
		return nil, xhttp.BadRequestError(err.Error()).WithField("file").WithError(err)
	}
	if len(bars) < b.MinRows {
		return nil, xhttp.BadRequestErrorf("at least %d OHLCV rows are required", b.MinRows).
			WithField("file").
			WithParam("rows", len(bars)).
			WithError(ErrInsufficientRows)
	}

	t := features.Process(bars, features.WithParallel(b.Parallel))
	t.Warnings = append(warnings, t.Warnings...)
	if t.Empty() {
		return nil, xhttp.BadRequestError("no complete feature rows could be computed from the upload").
			WithField("file").
			WithParam("rows", len(bars)).
			WithError(ErrEmptyFeatures)
	}
	return t, nil
}

func errKind(err error) string {
	switch {
	case errors.Is(err, ErrInsufficientRows):
		return errKindTooFewRows
	case errors.Is(err, ErrEmptyFeatures):
		return errKindNoFeatures
	default:
		return errKindBadInput
	}
}

// FeaturesUseCase exports the computed feature table of an upload.
type FeaturesUseCase struct {
	builder FeatureBuilder
	metrics domrepo.Metrics
}

func NewFeaturesUseCase(builder FeatureBuilder, m domrepo.Metrics) *FeaturesUseCase {
	if m == nil {
		m = nopMetrics{}
	}
	return &FeaturesUseCase{builder: builder, metrics: m}
}

// Features returns the last limit rows of the table; limit <= 0 keeps all rows.
func (uc *FeaturesUseCase) Features(ctx context.Context, data []byte, limit int) (*features.FeatureTable, error) {
	start := time.Now()
	defer func() { uc.metrics.RecordLatency("features", time.Since(start).Seconds()) }()

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	t, err := uc.builder.Build(data)
	if err != nil {
		uc.metrics.RecordError(errKind(err))
		return nil, err
	}
	uc.metrics.RecordRows(t.RowsIn, t.Dropped)
	if limit > 0 && len(t.Rows) > limit {
		t.Rows = t.Rows[len(t.Rows)-limit:]
	}
	return t, nil
}

type nopMetrics struct{}

func (nopMetrics) RecordPrediction(string, int)  {}
func (nopMetrics) RecordRows(int, int)           {}
func (nopMetrics) RecordCache(bool)              {}
func (nopMetrics) RecordError(string)            {}
func (nopMetrics) RecordLatency(string, float64) {}
