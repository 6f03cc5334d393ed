package features

import (
	"sort"

	"GoldCast/internal/domain/models"
)

type options struct {
	parallel bool
}

// Option configures Process.
type Option func(*options)

// WithParallel computes indicator columns concurrently.
func WithParallel(enabled bool) Option {
	return func(o *options) { o.parallel = enabled }
}

// WarnUnparsedDates is reported when bars are ordered by their raw date text.
const WarnUnparsedDates = "dates could not be parsed; rows ordered by raw date text"

// Process turns raw bars into the feature table. The input slice is not modified.
func Process(bars []models.Bar, opts ...Option) *FeatureTable {
	o := options{}
	for _, opt := range opts {
		opt(&o)
	}

	sorted, warnings := SortBars(bars)

	var ind Indicators
	if o.parallel {
		ind = ComputeIndicatorsParallel(sorted)
	} else {
		ind = ComputeIndicators(sorted)
	}

	candles := make([]CandlePattern, len(sorted))
	for i, b := range sorted {
		candles[i] = ClassifyCandle(b)
	}
	trigrams := ClassifyTrigrams(sorted)

	t := Project(sorted, ind, candles, trigrams)
	t.Warnings = warnings
	return t
}

// SortBars returns a copy of bars in ascending date order; ties keep input order.
// When any date is unparsed the copy is ordered by raw date text instead.
func SortBars(bars []models.Bar) ([]models.Bar, []string) {
	out := make([]models.Bar, len(bars))
	copy(out, bars)

	allDates := true
	for _, b := range out {
		if !b.HasDate() {
			allDates = false
			break
		}
	}
	if allDates {
		sort.SliceStable(out, func(i, j int) bool { return out[i].Date.Before(out[j].Date) })
		return out, nil
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].RawDate < out[j].RawDate })
	return out, []string{WarnUnparsedDates}
}
