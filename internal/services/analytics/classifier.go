package analytics

import (
	"context"
	"errors"
	"fmt"

	"GoldCast/internal/domain/models"
	domsvc "GoldCast/internal/domain/service"
	"GoldCast/pkg/config"
)

// ErrInvalidLabel is returned when the model service answers with anything but 0 or 1.
var ErrInvalidLabel = errors.New("classifier returned invalid label")

const predictPath = "/models/predict"

// HTTPClassifier delegates inference to the model service, which loads the
// stored artifact named by the model reference.
type HTTPClassifier struct {
	base     *HTTPServiceBase
	attempts int
}

func NewHTTPClassifier(cfg *config.Config) *HTTPClassifier {
	attempts := cfg.Analytics.Retries + 1
	if attempts < 1 {
		attempts = 1
	}
	return &HTTPClassifier{base: NewHTTPServiceBase(cfg), attempts: attempts}
}

type predictRequest struct {
	Model         string    `json:"model"`
	Columns       []string  `json:"columns"`
	Features      []float64 `json:"features"`
	CandlePattern string    `json:"candle_pattern"`
	Trigram       string    `json:"trigram"`
}

type predictResponse struct {
	Prediction *int `json:"prediction"`
}

func (c *HTTPClassifier) Predict(ctx context.Context, ref models.ModelRef, in models.ClassifierInput) (int, error) {
	var pr predictResponse
	err := c.base.PostJSONWithRetry(ctx, predictPath, predictRequest{
		Model:         ref.Name,
		Columns:       in.Columns,
		Features:      in.Features,
		CandlePattern: in.CandlePattern,
		Trigram:       in.Trigram,
	}, &pr, c.attempts)
	if err != nil {
		return 0, fmt.Errorf("classify %s: %w", ref.Name, err)
	}
	if pr.Prediction == nil {
		return 0, fmt.Errorf("%w: missing prediction", ErrInvalidLabel)
	}
	switch label := *pr.Prediction; label {
	case models.DirectionDown, models.DirectionUp:
		return label, nil
	default:
		return 0, fmt.Errorf("%w: %d", ErrInvalidLabel, label)
	}
}

var _ domsvc.Classifier = (*HTTPClassifier)(nil)
