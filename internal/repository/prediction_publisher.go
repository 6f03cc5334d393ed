package repository

import (
	"context"

	"GoldCast/internal/domain/models"
	domrepo "GoldCast/internal/domain/repository"
	pkgkafka "GoldCast/pkg/kafka"
)

// KafkaPredictionPublisher emits one event per served prediction, keyed by
// candle pattern so a pattern's events stay on one partition.
type KafkaPredictionPublisher struct {
	producer *pkgkafka.Producer
	topic    string
}

func NewKafkaPredictionPublisher(producer *pkgkafka.Producer, topic string) *KafkaPredictionPublisher {
	return &KafkaPredictionPublisher{producer: producer, topic: topic}
}

func (p *KafkaPredictionPublisher) Publish(ctx context.Context, pred *models.Prediction) error {
	if pred == nil {
		return nil
	}
	return p.producer.Publish(ctx, p.topic, []byte(pred.CandlePattern), PredictionEvent(pred))
}

func (p *KafkaPredictionPublisher) Close() error {
	if p.producer != nil {
		return p.producer.Close()
	}
	return nil
}

// PredictionEvent is the wire payload published for a prediction.
func PredictionEvent(pred *models.Prediction) map[string]interface{} {
	return map[string]interface{}{
		"id":             pred.ID,
		"ts":             pred.Timestamp.UnixMilli(),
		"source":         pred.Source,
		"candle_pattern": pred.CandlePattern,
		"trigram":        pred.Trigram,
		"prediction":     pred.Label,
		"model":          pred.Model,
		"rows_in":        pred.RowsIn,
		"rows_out":       pred.RowsOut,
	}
}

// NoopPublisher drops every event; used when kafka is disabled.
type NoopPublisher struct{}

func (NoopPublisher) Publish(context.Context, *models.Prediction) error { return nil }
func (NoopPublisher) Close() error                                      { return nil }

var (
	_ domrepo.PredictionPublisher = (*KafkaPredictionPublisher)(nil)
	_ domrepo.PredictionPublisher = NoopPublisher{}
)
