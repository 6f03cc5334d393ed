package features

import (
	"math"
	"sync"

	talib "github.com/markcheno/go-talib"

	"GoldCast/internal/domain/models"
)

// Window lengths are part of the feature contract: trained classifiers expect
// exactly these settings.
const (
	maWindow     = 5
	emaWindow    = 10
	demaSpan     = 5
	kamaWindow   = 5
	kamaFast     = 2
	kamaSlow     = 30
	smaWindow    = 10
	sarStep      = 0.02
	sarMaxStep   = 0.2
	adxWindow    = 10
	apoSpan      = 10
	cciWindow    = 10
	cciConstant  = 0.015
	macdFast     = 5
	macdSlow     = 10
	mfiWindow    = 10
	momWindow    = 10
	rsiWindow    = 10
	cmfWindow    = 10
	atrSpan      = 10
	bopZeroRange = 1e-10
)

// Columns lists the indicator columns of a feature row, in output order.
var Columns = []string{
	"MA", "EMA", "DEMA", "KAMA", "SMA", "SAR",
	"ADX", "APO", "BOP", "CCI", "MACD",
	"MFI", "MOM", "RSI",
	"AD", "ADOSC", "OBV",
	"TRANGE", "ATR", "NATR",
}

// Indicators maps an indicator column to its per-bar values. Missing marks
// bars inside the indicator's warm-up window or without volume.
type Indicators map[string][]float64

// series holds the bar fields as parallel columns.
type series struct {
	open, high, low, close, volume []float64
}

func newSeries(bars []models.Bar) series {
	n := len(bars)
	s := series{
		open:   make([]float64, n),
		high:   make([]float64, n),
		low:    make([]float64, n),
		close:  make([]float64, n),
		volume: make([]float64, n),
	}
	for i, b := range bars {
		s.open[i] = b.Open
		s.high[i] = b.High
		s.low[i] = b.Low
		s.close[i] = b.Close
		s.volume[i] = b.Volume
	}
	return s
}

type indicatorFunc func(s series) []float64

// indicatorTable is keyed by column; ATR and NATR depend on TRANGE and are
// computed from their own call to trueRange so every entry stays independent.
var indicatorTable = map[string]indicatorFunc{
	"MA":     func(s series) []float64 { return sma(s.close, maWindow) },
	"EMA":    func(s series) []float64 { return ewm(s.close, spanAlpha(emaWindow), emaWindow) },
	"DEMA":   func(s series) []float64 { return dema(s.close, demaSpan) },
	"KAMA":   func(s series) []float64 { return kama(s.close, kamaWindow, kamaFast, kamaSlow) },
	"SMA":    func(s series) []float64 { return sma(s.close, smaWindow) },
	"SAR":    func(s series) []float64 { return parabolicSAR(s.high, s.low, s.close, sarStep, sarMaxStep) },
	"ADX":    func(s series) []float64 { return adx(s.high, s.low, s.close, adxWindow) },
	"APO":    func(s series) []float64 { return apo(s.close, apoSpan) },
	"BOP":    balanceOfPower,
	"CCI":    func(s series) []float64 { return cci(s.high, s.low, s.close, cciWindow) },
	"MACD":   func(s series) []float64 { return macd(s.close, macdFast, macdSlow) },
	"MFI":    func(s series) []float64 { return mfi(s, mfiWindow) },
	"MOM":    func(s series) []float64 { return momentum(s.close, momWindow) },
	"RSI":    func(s series) []float64 { return rsi(s.close, rsiWindow) },
	"AD":     accDist,
	"ADOSC":  func(s series) []float64 { return chaikinMoneyFlow(s, cmfWindow) },
	"OBV":    onBalanceVolume,
	"TRANGE": trueRange,
	"ATR":    func(s series) []float64 { return ewm(trueRange(s), spanAlpha(atrSpan), 0) },
	"NATR":   func(s series) []float64 { return natr(s, atrSpan) },
}

// ComputeIndicators evaluates every indicator column over bars, which must
// already be in ascending date order.
func ComputeIndicators(bars []models.Bar) Indicators {
	s := newSeries(bars)
	out := make(Indicators, len(Columns))
	for _, name := range Columns {
		out[name] = indicatorTable[name](s)
	}
	return out
}

// ComputeIndicatorsParallel is ComputeIndicators with one goroutine per column.
// No indicator mutates shared state, so results are identical.
func ComputeIndicatorsParallel(bars []models.Bar) Indicators {
	s := newSeries(bars)
	results := make([][]float64, len(Columns))
	var wg sync.WaitGroup
	for i, name := range Columns {
		wg.Add(1)
		go func(i int, fn indicatorFunc) {
			defer wg.Done()
			results[i] = fn(s)
		}(i, indicatorTable[name])
	}
	wg.Wait()

	out := make(Indicators, len(Columns))
	for i, name := range Columns {
		out[name] = results[i]
	}
	return out
}

func dema(x []float64, span int) []float64 {
	alpha := spanAlpha(span)
	e := ewm(x, alpha, 0)
	ee := ewm(e, alpha, 0)
	out := make([]float64, len(x))
	for i := range x {
		out[i] = 2*e[i] - ee[i]
	}
	return out
}

func apo(x []float64, span int) []float64 {
	e := ewm(x, spanAlpha(span), 0)
	out := make([]float64, len(x))
	for i := range x {
		out[i] = x[i] - e[i]
	}
	return out
}

// kama is Kaufman's adaptive moving average, seeded with the close at the end
// of the first full window.
func kama(x []float64, window, fast, slow int) []float64 {
	out := missingSeries(len(x))
	if len(x) < window {
		return out
	}
	fastSC := 2 / (float64(fast) + 1)
	slowSC := 2 / (float64(slow) + 1)

	out[window-1] = x[window-1]
	for i := window; i < len(x); i++ {
		change := math.Abs(x[i] - x[i-window])
		var volatility float64
		for j := i - window + 1; j <= i; j++ {
			volatility += math.Abs(x[j] - x[j-1])
		}
		er := 0.0
		if volatility != 0 {
			er = change / volatility
		}
		sc := math.Pow(er*(fastSC-slowSC)+slowSC, 2)
		out[i] = out[i-1] + sc*(x[i]-out[i-1])
	}
	return out
}

// parabolicSAR starts in an up-trend; the first two bars carry the close.
func parabolicSAR(high, low, close []float64, step, maxStep float64) []float64 {
	n := len(close)
	psar := make([]float64, n)
	copy(psar, close)
	if n < 3 {
		return psar
	}

	upTrend := true
	af := step
	upTrendHigh := high[0]
	downTrendLow := low[0]

	for i := 2; i < n; i++ {
		reversal := false
		maxHigh := high[i]
		minLow := low[i]

		if upTrend {
			psar[i] = psar[i-1] + af*(upTrendHigh-psar[i-1])
			if minLow < psar[i] {
				reversal = true
				psar[i] = upTrendHigh
				downTrendLow = minLow
				af = step
			} else {
				if maxHigh > upTrendHigh {
					upTrendHigh = maxHigh
					af = math.Min(af+step, maxStep)
				}
				if low[i-2] < psar[i] {
					psar[i] = low[i-2]
				} else if low[i-1] < psar[i] {
					psar[i] = low[i-1]
				}
			}
		} else {
			psar[i] = psar[i-1] - af*(psar[i-1]-downTrendLow)
			if maxHigh > psar[i] {
				reversal = true
				psar[i] = downTrendLow
				upTrendHigh = maxHigh
				af = step
			} else {
				if minLow < downTrendLow {
					downTrendLow = minLow
					af = math.Min(af+step, maxStep)
				}
				if high[i-2] > psar[i] {
					psar[i] = high[i-2]
				} else if high[i-1] > psar[i] {
					psar[i] = high[i-1]
				}
			}
		}
		upTrend = upTrend != reversal
	}
	return psar
}

// adx follows the reference library: Wilder running sums of true range and
// directional movement, then a Wilder average of DX. Bars before the first
// average hold 0 rather than Missing, and fewer than 2*window bars yield zeros.
func adx(high, low, close []float64, window int) []float64 {
	n := len(close)
	out := make([]float64, n)
	if n < 2*window {
		return out
	}
	w := float64(window)

	dm := make([]float64, n)
	pos := make([]float64, n)
	neg := make([]float64, n)
	for i := 1; i < n; i++ {
		dm[i] = math.Max(high[i], close[i-1]) - math.Min(low[i], close[i-1])
		up := high[i] - high[i-1]
		down := low[i-1] - low[i]
		if up > down && up > 0 {
			pos[i] = up
		}
		if down > up && down > 0 {
			neg[i] = down
		}
	}

	m := n - (window - 1)
	smooth := func(x []float64) []float64 {
		s := make([]float64, m)
		s[0] = sum(x[1 : window+1])
		// the last slot is never filled, as in the reference implementation
		for i := 1; i < m-1; i++ {
			s[i] = s[i-1] - s[i-1]/w + x[window+i]
		}
		return s
	}
	trs := smooth(dm)
	dip := smooth(pos)
	din := smooth(neg)

	dx := make([]float64, m)
	for i := 0; i < m; i++ {
		var pdi, ndi float64
		if trs[i] != 0 {
			pdi = 100 * dip[i] / trs[i]
			ndi = 100 * din[i] / trs[i]
		}
		dx[i] = 100 * math.Abs((pdi-ndi)/(pdi+ndi))
	}

	avg := make([]float64, m)
	avg[window] = mean(dx[:window])
	for i := window + 1; i < m; i++ {
		avg[i] = (avg[i-1]*(w-1) + dx[i-1]) / w
	}
	copy(out[window-1:], avg)
	return out
}

func balanceOfPower(s series) []float64 {
	out := make([]float64, len(s.close))
	for i := range s.close {
		rng := s.high[i] - s.low[i]
		if rng == 0 {
			rng = bopZeroRange
		}
		out[i] = (s.close[i] - s.open[i]) / rng
	}
	return out
}

func typicalPrice(high, low, close []float64) []float64 {
	return talib.TypPrice(high, low, close)
}

func cci(high, low, close []float64, window int) []float64 {
	tp := typicalPrice(high, low, close)
	avg := rolling(tp, window, mean)
	mad := rolling(tp, window, meanAbsDev)
	out := make([]float64, len(tp))
	for i := range tp {
		out[i] = (tp[i] - avg[i]) / (cciConstant * mad[i])
	}
	return out
}

func macd(x []float64, fast, slow int) []float64 {
	f := ewm(x, spanAlpha(fast), fast)
	sl := ewm(x, spanAlpha(slow), slow)
	out := make([]float64, len(x))
	for i := range x {
		out[i] = f[i] - sl[i]
	}
	return out
}

func mfi(s series, window int) []float64 {
	tp := typicalPrice(s.high, s.low, s.close)
	flow := make([]float64, len(tp))
	for i := range tp {
		dir := 0.0
		if i > 0 {
			switch {
			case tp[i] > tp[i-1]:
				dir = 1
			case tp[i] < tp[i-1]:
				dir = -1
			}
		}
		flow[i] = tp[i] * s.volume[i] * dir
	}
	posFlow := rolling(flow, window, func(w []float64) float64 {
		var p float64
		for _, v := range w {
			if v >= 0 {
				p += v
			}
		}
		return p
	})
	negFlow := rolling(flow, window, func(w []float64) float64 {
		var q float64
		for _, v := range w {
			if v < 0 {
				q += v
			}
		}
		return math.Abs(q)
	})
	out := make([]float64, len(tp))
	for i := range tp {
		ratio := posFlow[i] / negFlow[i]
		out[i] = 100 - 100/(1+ratio)
	}
	return out
}

// rsi uses Wilder smoothing (alpha = 1/window) of gains and losses.
func rsi(x []float64, window int) []float64 {
	n := len(x)
	up := make([]float64, n)
	down := make([]float64, n)
	for i := 1; i < n; i++ {
		d := x[i] - x[i-1]
		if d > 0 {
			up[i] = d
		} else if d < 0 {
			down[i] = -d
		}
	}
	alpha := 1 / float64(window)
	avgUp := ewm(up, alpha, window)
	avgDown := ewm(down, alpha, window)
	out := make([]float64, n)
	for i := range x {
		switch {
		case math.IsNaN(avgDown[i]):
			out[i] = Missing
		case avgDown[i] == 0:
			out[i] = 100
		default:
			out[i] = 100 - 100/(1+avgUp[i]/avgDown[i])
		}
	}
	return out
}

// closeLocation is the close location value; a zero range with the close on
// the bar resolves to 0.
func closeLocation(s series, i int) float64 {
	clv := ((s.close[i] - s.low[i]) - (s.high[i] - s.close[i])) / (s.high[i] - s.low[i])
	if math.IsNaN(clv) {
		return 0
	}
	return clv
}

func moneyFlowVolume(s series) []float64 {
	out := make([]float64, len(s.close))
	for i := range s.close {
		out[i] = closeLocation(s, i) * s.volume[i]
	}
	return out
}

func accDist(s series) []float64 {
	return cumsumSkip(moneyFlowVolume(s))
}

func chaikinMoneyFlow(s series, window int) []float64 {
	mfv := rolling(moneyFlowVolume(s), window, sum)
	vol := rolling(s.volume, window, sum)
	out := make([]float64, len(s.close))
	for i := range out {
		out[i] = mfv[i] / vol[i]
	}
	return out
}

func onBalanceVolume(s series) []float64 {
	signed := make([]float64, len(s.close))
	for i := range s.close {
		signed[i] = s.volume[i]
		if i > 0 && s.close[i] < s.close[i-1] {
			signed[i] = -s.volume[i]
		}
	}
	return cumsumSkip(signed)
}

// trueRange uses the bar's own range for the first bar, which has no previous
// close; talib leaves that slot at 0.
func trueRange(s series) []float64 {
	if len(s.close) == 0 {
		return nil
	}
	out := talib.TRange(s.high, s.low, s.close)
	out[0] = s.high[0] - s.low[0]
	return out
}

func natr(s series, span int) []float64 {
	atr := ewm(trueRange(s), spanAlpha(span), 0)
	out := make([]float64, len(atr))
	for i := range atr {
		out[i] = atr[i] / s.close[i] * 100
	}
	return out
}
