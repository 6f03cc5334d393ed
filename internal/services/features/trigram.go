package features

import "GoldCast/internal/domain/models"

// Trigram labels how a bar's close, high and low moved against the previous bar.
type Trigram string

const (
	BullishHigh          Trigram = "BullishHigh"
	BearLow              Trigram = "BearLow"
	BullishHorn          Trigram = "BullishHorn"
	BearHorn             Trigram = "BearHorn"
	BullishHarami        Trigram = "BullishHarami"
	BearHarami           Trigram = "BearHarami"
	BearHigh             Trigram = "BearHigh"
	BullishLow           Trigram = "BullishLow"
	TrigramUncategorized Trigram = "Uncategorized"
)

// TrigramRule pairs a comparison predicate with its label.
type TrigramRule struct {
	Trigram Trigram
	Match   func(prev, cur models.Bar) bool
}

// TrigramRules is evaluated top to bottom; the first match wins. Equal values
// satisfy both >= and <=, so ties resolve by order.
var TrigramRules = []TrigramRule{
	{BullishHigh, func(p, c models.Bar) bool { return c.Close >= p.Close && c.High >= p.High && c.Low >= p.Low }},
	{BearLow, func(p, c models.Bar) bool { return c.Close <= p.Close && c.High <= p.High && c.Low <= p.Low }},
	{BullishHorn, func(p, c models.Bar) bool { return c.Close >= p.Close && c.High >= p.High && c.Low <= p.Low }},
	{BearHorn, func(p, c models.Bar) bool { return c.Close <= p.Close && c.High >= p.High && c.Low <= p.Low }},
	{BullishHarami, func(p, c models.Bar) bool { return c.Close >= p.Close && c.High <= p.High && c.Low >= p.Low }},
	{BearHarami, func(p, c models.Bar) bool { return c.Close <= p.Close && c.High <= p.High && c.Low >= p.Low }},
	{BearHigh, func(p, c models.Bar) bool { return c.Close <= p.Close && c.High >= p.High && c.Low >= p.Low }},
	{BullishLow, func(p, c models.Bar) bool { return c.Close >= p.Close && c.High <= p.High && c.Low <= p.Low }},
}

// ClassifyTrigram labels cur against its predecessor prev.
func ClassifyTrigram(prev, cur models.Bar) Trigram {
	for _, r := range TrigramRules {
		if r.Match(prev, cur) {
			return r.Trigram
		}
	}
	return TrigramUncategorized
}

// ClassifyTrigrams labels every bar; the first bar has no predecessor and is
// always TrigramUncategorized.
func ClassifyTrigrams(bars []models.Bar) []Trigram {
	out := make([]Trigram, len(bars))
	for i := range bars {
		if i == 0 {
			out[i] = TrigramUncategorized
			continue
		}
		out[i] = ClassifyTrigram(bars[i-1], bars[i])
	}
	return out
}
