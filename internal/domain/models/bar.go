package models

import "time"

// Bar is one daily OHLCV record as read from the input table.
// Volume is NaN when the raw token could not be normalized.
type Bar struct {
	Date    time.Time // zero when RawDate failed to parse
	RawDate string
	Open    float64
	High    float64
	Low     float64
	Close   float64
	Volume  float64
	Change  string // "Change %" column, carried but never used
}

// HasDate reports whether the bar's date was parsed.
func (b Bar) HasDate() bool { return !b.Date.IsZero() }
