package service

import (
	"context"

	"GoldCast/internal/domain/models"
)

// Classifier maps one feature vector to a direction label (0 down, 1 up).
type Classifier interface {
	Predict(ctx context.Context, ref models.ModelRef, in models.ClassifierInput) (int, error)
}
