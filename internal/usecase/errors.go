package usecase

import "errors"

var (
	// ErrInsufficientRows is wrapped when an upload has fewer rows than the indicator warm-up needs.
	ErrInsufficientRows = errors.New("insufficient rows")
	// ErrEmptyFeatures is wrapped when no row survives feature projection.
	ErrEmptyFeatures = errors.New("no complete feature rows")
)

// error kinds reported to metrics
const (
	errKindBadInput   = "bad_input"
	errKindTooFewRows = "insufficient_rows"
	errKindNoFeatures = "empty_features"
	errKindNoModel    = "model_not_found"
	errKindRegistry   = "registry"
	errKindClassifier = "classifier"
	errKindStore      = "store"
	errKindPublish    = "publish"
	errKindCache      = "cache"
)
