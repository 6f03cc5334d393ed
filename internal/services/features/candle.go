package features

import (
	"math"

	"GoldCast/internal/domain/models"
)

// Level buckets a shape proportion.
type Level int

const (
	VeryLow Level = iota
	Low
	Medium
	High
)

func (l Level) String() string {
	switch l {
	case VeryLow:
		return "VeryLow"
	case Low:
		return "Low"
	case Medium:
		return "Medium"
	case High:
		return "High"
	default:
		return "Unknown"
	}
}

// small reports VeryLow or Low; large reports Medium or High.
func (l Level) small() bool { return l == VeryLow || l == Low }
func (l Level) large() bool { return l == Medium || l == High }

// Categorize buckets a proportion: <0.1 VeryLow, <0.3 Low, <0.6 Medium, else High.
func Categorize(p float64) Level {
	switch {
	case p < 0.1:
		return VeryLow
	case p < 0.3:
		return Low
	case p < 0.6:
		return Medium
	default:
		return High
	}
}

// CandlePattern is the single-bar shape label. Values double as model artifact keys.
type CandlePattern string

const (
	SpinningTopBearish  CandlePattern = "Spinning Top Bearish"
	SpinningTopBullish  CandlePattern = "Spinning Top Bullish"
	ShootingStar        CandlePattern = "Shooting Star"
	InvertedHammer      CandlePattern = "Inverted Hammer"
	HangingMan          CandlePattern = "Hanging Man"
	Hammer              CandlePattern = "Hammer"
	Doji                CandlePattern = "Doji"
	GravestoneDoji      CandlePattern = "Gravestone Doji"
	DragonflyDoji       CandlePattern = "Dragonfly Doji"
	MarubozuBearish     CandlePattern = "Marubozu Bearish"
	MarubozuBullish     CandlePattern = "Marubozu Bullish"
	BearishFullMarubozu CandlePattern = "Bearish Full Marubozu"
	BullishFullMarubozu CandlePattern = "Bullish Full Marubozu"
	CandleUncategorized CandlePattern = "Uncategorized"
)

// CandleShape is the geometry of one bar.
type CandleShape struct {
	Body, Range, Upper, Lower float64
	PBody, PUpper, PLower     float64
	KBody, KUpper, KLower     Level
	Open, Close               float64
}

func (s CandleShape) bearish() bool { return s.Close < s.Open }
func (s CandleShape) bullish() bool { return s.Close > s.Open }

// Shape derives body and shadow proportions of a bar. A zero range yields
// zero proportions.
func Shape(b models.Bar) CandleShape {
	s := CandleShape{
		Body:  math.Abs(b.Close - b.Open),
		Range: b.High - b.Low,
		Upper: b.High - math.Max(b.Close, b.Open),
		Lower: math.Min(b.Close, b.Open) - b.Low,
		Open:  b.Open,
		Close: b.Close,
	}
	s.PBody = ratio(s.Body, s.Range)
	s.PUpper = ratio(s.Upper, s.Range)
	s.PLower = ratio(s.Lower, s.Range)
	s.KBody = Categorize(s.PBody)
	s.KUpper = Categorize(s.PUpper)
	s.KLower = Categorize(s.PLower)
	return s
}

func ratio(x, rng float64) float64 {
	if rng == 0 {
		return 0
	}
	r := x / rng
	if math.IsNaN(r) {
		return 0
	}
	return r
}

// CandleRule pairs a predicate with the label it assigns.
type CandleRule struct {
	Pattern CandlePattern
	Match   func(s CandleShape) bool
}

// CandleRules is evaluated top to bottom; the first match wins. The predicates
// overlap, so the order decides the label.
var CandleRules = []CandleRule{
	{SpinningTopBearish, func(s CandleShape) bool {
		return s.KBody.large() && s.KUpper.large() && s.KLower.large() && s.bearish()
	}},
	{SpinningTopBullish, func(s CandleShape) bool {
		return s.KBody.large() && s.KUpper.large() && s.KLower.large() && s.bullish()
	}},
	{ShootingStar, func(s CandleShape) bool {
		return s.KBody.large() && s.KUpper.large() && s.KLower.small() && s.bearish()
	}},
	{InvertedHammer, func(s CandleShape) bool {
		return s.KBody.large() && s.KUpper.large() && s.KLower.small() && s.bullish()
	}},
	{HangingMan, func(s CandleShape) bool {
		return s.KBody.large() && s.KUpper.small() && s.KLower.large() && s.bearish()
	}},
	{Hammer, func(s CandleShape) bool {
		return s.KBody.large() && s.KUpper.small() && s.KLower.large() && s.bullish()
	}},
	{Doji, func(s CandleShape) bool {
		return s.KBody.small() && s.KUpper.large() && s.KLower.large()
	}},
	{GravestoneDoji, func(s CandleShape) bool {
		return s.KBody.small() && s.KUpper.large() && s.KLower.small()
	}},
	{DragonflyDoji, func(s CandleShape) bool {
		return s.KBody.small() && s.KUpper.small() && s.KLower.large()
	}},
	{MarubozuBearish, func(s CandleShape) bool {
		return s.KBody.large() && s.KUpper.small() && s.KLower.small() && s.bearish()
	}},
	{MarubozuBullish, func(s CandleShape) bool {
		return s.KBody.large() && s.KUpper.small() && s.KLower.small() && s.bullish()
	}},
	{BearishFullMarubozu, func(s CandleShape) bool {
		return s.KBody.small() && s.KUpper == VeryLow && s.KLower == VeryLow && s.Close <= s.Open
	}},
	{BullishFullMarubozu, func(s CandleShape) bool {
		return s.KBody.small() && s.KUpper == VeryLow && s.KLower == VeryLow && s.Close >= s.Open
	}},
}

// MatchCandle returns the first rule in rules matching s, or CandleUncategorized.
func MatchCandle(rules []CandleRule, s CandleShape) CandlePattern {
	for _, r := range rules {
		if r.Match(s) {
			return r.Pattern
		}
	}
	return CandleUncategorized
}

// ClassifyCandle labels a single bar from its own geometry.
func ClassifyCandle(b models.Bar) CandlePattern {
	return MatchCandle(CandleRules, Shape(b))
}
