package features

import (
	"math"

	talib "github.com/markcheno/go-talib"
)

// spanAlpha converts an EWM span into its smoothing factor via the centre of mass,
// matching how the reference tables were produced.
func spanAlpha(span int) float64 {
	com := (float64(span) - 1) / 2
	return 1 / (1 + com)
}

// ewm is an exponentially weighted mean seeded with the first observation
// (no bias adjustment). Outputs before minPeriods observations are Missing.
func ewm(x []float64, alpha float64, minPeriods int) []float64 {
	out := make([]float64, len(x))
	if len(x) == 0 {
		return out
	}
	oldWtFactor := 1 - alpha
	weighted := x[0]
	nobs := 0
	if !math.IsNaN(weighted) {
		nobs = 1
	}
	out[0] = weighted
	if nobs < minPeriods {
		out[0] = Missing
	}
	for i := 1; i < len(x); i++ {
		cur := x[i]
		isObs := !math.IsNaN(cur)
		if isObs {
			nobs++
		}
		if !math.IsNaN(weighted) {
			if isObs {
				oldWt := oldWtFactor
				if weighted != cur {
					weighted = oldWt*weighted + alpha*cur
					weighted /= oldWt + alpha
				}
			}
		} else if isObs {
			weighted = cur
		}
		if nobs >= minPeriods {
			out[i] = weighted
		} else {
			out[i] = Missing
		}
	}
	return out
}

// rolling applies fn to each full window of length p. A window containing a
// missing value produces Missing.
func rolling(x []float64, p int, fn func(w []float64) float64) []float64 {
	out := make([]float64, len(x))
	for i := range x {
		if i < p-1 {
			out[i] = Missing
			continue
		}
		w := x[i-p+1 : i+1]
		if hasMissing(w) {
			out[i] = Missing
			continue
		}
		out[i] = fn(w)
	}
	return out
}

func hasMissing(w []float64) bool {
	for _, v := range w {
		if math.IsNaN(v) {
			return true
		}
	}
	return false
}

func sum(w []float64) float64 {
	var s float64
	for _, v := range w {
		s += v
	}
	return s
}

func mean(w []float64) float64 { return sum(w) / float64(len(w)) }

// meanAbsDev is the mean absolute deviation around the window mean.
func meanAbsDev(w []float64) float64 {
	m := mean(w)
	var s float64
	for _, v := range w {
		s += math.Abs(v - m)
	}
	return s / float64(len(w))
}

// cumsumSkip accumulates x, leaving Missing where x is missing without
// resetting the running total.
func cumsumSkip(x []float64) []float64 {
	out := make([]float64, len(x))
	var run float64
	for i, v := range x {
		if math.IsNaN(v) {
			out[i] = Missing
			continue
		}
		run += v
		out[i] = run
	}
	return out
}

// sma is a simple moving average with a Missing warm-up of p-1 bars.
func sma(x []float64, p int) []float64 {
	if len(x) < p {
		return missingSeries(len(x))
	}
	out := talib.Sma(x, p)
	for i := 0; i < p-1; i++ {
		out[i] = Missing
	}
	return out
}

// momentum is x[i] - x[i-p] with a Missing warm-up of p bars.
func momentum(x []float64, p int) []float64 {
	out := talib.Mom(x, p)
	for i := 0; i < p && i < len(out); i++ {
		out[i] = Missing
	}
	return out
}

func missingSeries(n int) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = Missing
	}
	return out
}
