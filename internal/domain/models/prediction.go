package models

import "time"

// Direction labels returned by a classifier.
const (
	DirectionDown = 0
	DirectionUp   = 1
)

// ModelRef identifies a stored classifier artifact.
type ModelRef struct {
	Name string `json:"name"` // artifact file name
	Path string `json:"-"`
}

// Prediction is the outcome of classifying the last feature row of a series.
type Prediction struct {
	ID             string             `json:"id"`
	Source         string             `json:"source,omitempty"`
	Timestamp      time.Time          `json:"timestamp"`
	CandlePattern  string             `json:"candle_pattern"`
	Trigram        string             `json:"trigram"`
	Label          int                `json:"prediction"`
	Interpretation string             `json:"interpretation"`
	Model          string             `json:"model"`
	Features       map[string]float64 `json:"features"`
	RowsIn         int                `json:"rows_in"`
	RowsOut        int                `json:"rows_out"`
	Warnings       []string           `json:"warnings,omitempty"`
}

// Interpret renders a direction label for presentation.
func Interpret(label int) string {
	if label == DirectionUp {
		return "price expected to rise tomorrow"
	}
	return "price expected to fall tomorrow"
}

// ClassifierInput is the last feature row handed to a classifier.
type ClassifierInput struct {
	Columns       []string  `json:"columns"`
	Features      []float64 `json:"features"`
	CandlePattern string    `json:"candle_pattern"`
	Trigram       string    `json:"trigram"`
}
