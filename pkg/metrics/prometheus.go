package metrics

import (
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Recorder implements domain repository.Metrics using Prometheus.
type Recorder struct {
	predictions *prometheus.CounterVec
	rowsIn      prometheus.Histogram
	rowsDropped prometheus.Histogram
	cache       *prometheus.CounterVec
	errorsTotal *prometheus.CounterVec
	latency     *prometheus.HistogramVec
}

// New creates a recorder registered on reg; nil means the default registry.
func New(reg prometheus.Registerer) *Recorder {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	f := promauto.With(reg)
	rowBuckets := prometheus.ExponentialBuckets(10, 2, 10)
	return &Recorder{
		predictions: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "goldcast_predictions_total",
				Help: "Predictions served by candlestick pattern and label",
			},
			[]string{"pattern", "label"},
		),
		rowsIn: f.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "goldcast_input_rows",
				Help:    "Rows per uploaded price history",
				Buckets: rowBuckets,
			},
		),
		rowsDropped: f.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "goldcast_dropped_rows",
				Help:    "Rows removed by the feature projector per request",
				Buckets: rowBuckets,
			},
		),
		cache: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "goldcast_prediction_cache_total",
				Help: "Prediction cache lookups by result",
			},
			[]string{"result"},
		),
		errorsTotal: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "goldcast_errors_total",
				Help: "Total number of errors encountered",
			},
			[]string{"type"},
		),
		latency: f.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "goldcast_operation_duration_seconds",
				Help:    "Duration of operations in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"operation"},
		),
	}
}

// RecordPrediction counts a served prediction.
func (r *Recorder) RecordPrediction(pattern string, label int) {
	r.predictions.WithLabelValues(pattern, strconv.Itoa(label)).Inc()
}

// RecordRows observes input size and projector drops for one request.
func (r *Recorder) RecordRows(in, dropped int) {
	r.rowsIn.Observe(float64(in))
	r.rowsDropped.Observe(float64(dropped))
}

// RecordCache counts a prediction cache lookup.
func (r *Recorder) RecordCache(hit bool) {
	result := "miss"
	if hit {
		result = "hit"
	}
	r.cache.WithLabelValues(result).Inc()
}

// RecordError records an error occurrence.
func (r *Recorder) RecordError(kind string) {
	r.errorsTotal.WithLabelValues(kind).Inc()
}

// RecordLatency records operation latency in seconds.
func (r *Recorder) RecordLatency(op string, seconds float64) {
	r.latency.WithLabelValues(op).Observe(seconds)
}
