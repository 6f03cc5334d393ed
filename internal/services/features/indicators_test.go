package features

import (
	"math"
	"testing"

	"GoldCast/internal/domain/models"
)

func near(a, b float64) bool { return math.Abs(a-b) < 1e-9 }

func barsFromCloses(closes []float64, vols []float64) []models.Bar {
	bars := make([]models.Bar, len(closes))
	for i, c := range closes {
		bars[i] = models.Bar{Open: c, High: c + 1, Low: c - 1, Close: c, Volume: vols[i]}
	}
	return bars
}

func TestIndicatorColumnsComplete(t *testing.T) {
	ind := ComputeIndicators(risingBars(30))
	if len(ind) != len(Columns) {
		t.Fatalf("columns = %d, want %d", len(ind), len(Columns))
	}
	for _, name := range Columns {
		if len(ind[name]) != 30 {
			t.Fatalf("%s has %d values", name, len(ind[name]))
		}
	}
}

func TestMovingAveragesWarmup(t *testing.T) {
	ind := ComputeIndicators(risingBars(25))
	for i := 0; i < 25; i++ {
		ma := ind["MA"][i]
		if i < 4 {
			if !IsMissing(ma) {
				t.Fatalf("MA[%d] = %v, want missing", i, ma)
			}
			continue
		}
		if want := 100.5 + float64(i) - 2; !near(ma, want) {
			t.Fatalf("MA[%d] = %v, want %v", i, ma, want)
		}
	}
	for i := 0; i < 9; i++ {
		if !IsMissing(ind["SMA"][i]) || !IsMissing(ind["EMA"][i]) || !IsMissing(ind["MACD"][i]) {
			t.Fatalf("bar %d should be inside the 10-bar warm-up", i)
		}
	}
	if IsMissing(ind["EMA"][9]) || IsMissing(ind["SMA"][9]) || IsMissing(ind["DEMA"][0]) {
		t.Fatal("values expected after warm-up")
	}
}

func TestMomentum(t *testing.T) {
	mom := ComputeIndicators(risingBars(15))["MOM"]
	for i, v := range mom {
		if i < 10 {
			if !IsMissing(v) {
				t.Fatalf("MOM[%d] = %v, want missing", i, v)
			}
			continue
		}
		if !near(v, 10) {
			t.Fatalf("MOM[%d] = %v, want 10", i, v)
		}
	}
}

func TestRSIAllGains(t *testing.T) {
	rsi := ComputeIndicators(risingBars(15))["RSI"]
	if !IsMissing(rsi[8]) {
		t.Fatalf("RSI[8] = %v, want missing", rsi[8])
	}
	for i := 9; i < 15; i++ {
		if rsi[i] != 100 {
			t.Fatalf("RSI[%d] = %v, want 100", i, rsi[i])
		}
	}
}

func TestConstantCloseAverages(t *testing.T) {
	closes := make([]float64, 12)
	vols := make([]float64, 12)
	for i := range closes {
		closes[i] = 50
		vols[i] = 10
	}
	ind := ComputeIndicators(barsFromCloses(closes, vols))
	for _, name := range []string{"KAMA", "DEMA", "EMA"} {
		if v := ind[name][11]; !near(v, 50) {
			t.Fatalf("%s = %v, want 50", name, v)
		}
	}
	if v := ind["APO"][11]; !near(v, 0) {
		t.Fatalf("APO = %v", v)
	}
	if !IsMissing(ind["KAMA"][3]) {
		t.Fatalf("KAMA[3] = %v, want missing", ind["KAMA"][3])
	}
}

func TestBalanceOfPowerZeroRange(t *testing.T) {
	bars := []models.Bar{{Open: 1, Close: 2, High: 5, Low: 5, Volume: 1}}
	bop := ComputeIndicators(bars)["BOP"]
	if !near(bop[0]/1e10, 1) {
		t.Fatalf("BOP = %v, want 1e10", bop[0])
	}
}

func TestTrueRangeFirstBar(t *testing.T) {
	bars := []models.Bar{
		{Open: 10, High: 12, Low: 9, Close: 11, Volume: 1},
		{Open: 11, High: 11.5, Low: 10.5, Close: 11, Volume: 1},
		{Open: 15, High: 16, Low: 14, Close: 15, Volume: 1},
	}
	tr := ComputeIndicators(bars)["TRANGE"]
	want := []float64{3, 1, 5}
	for i := range want {
		if !near(tr[i], want[i]) {
			t.Fatalf("TRANGE = %v, want %v", tr, want)
		}
	}
}

func TestOnBalanceVolumeSkipsMissing(t *testing.T) {
	closes := []float64{10, 11, 10, 12}
	vols := []float64{100, Missing, 50, 20}
	obv := ComputeIndicators(barsFromCloses(closes, vols))["OBV"]
	if obv[0] != 100 || !IsMissing(obv[1]) || obv[2] != 50 || obv[3] != 70 {
		t.Fatalf("OBV = %v", obv)
	}
}

func TestMFIMissingVolumeWindow(t *testing.T) {
	bars := wavyBars(25)
	bars[12].Volume = Missing
	mfi := ComputeIndicators(bars)["MFI"]
	for i := 12; i < 22; i++ {
		if !IsMissing(mfi[i]) {
			t.Fatalf("MFI[%d] = %v, want missing", i, mfi[i])
		}
	}
	if IsMissing(mfi[22]) {
		t.Fatal("MFI should recover once the window clears")
	}
}

func TestADXShortInputIsZero(t *testing.T) {
	adx := ComputeIndicators(wavyBars(19))["ADX"]
	for i, v := range adx {
		if v != 0 {
			t.Fatalf("ADX[%d] = %v, want 0", i, v)
		}
	}
}

func TestSARSeedsWithClose(t *testing.T) {
	bars := risingBars(5)
	sar := ComputeIndicators(bars)["SAR"]
	if sar[0] != bars[0].Close || sar[1] != bars[1].Close {
		t.Fatalf("SAR seed = %v %v", sar[0], sar[1])
	}
}

// referenceIndex lists the bars pinned by TestIndicatorReferenceValues. Bars 2
// and 22 are SAR reversals; bar 20 has no volume.
var referenceIndex = []int{2, 3, 4, 9, 19, 20, 21, 22, 23, 30, 39}

var nan = math.NaN()

// Reference values computed with pandas ewm(adjust=False) and the ta library
// formulas over wavyBars(40) with bar 20's volume missing.
var referenceValues = []struct {
	column string
	want   []float64
}{
	{"MA", []float64{nan, nan, 1804.6, 1813.4, 1828.8, 1829.4, 1831.4, 1831.6, 1832.0, 1845.6, 1857.2}},
	{"EMA", []float64{nan, nan, nan, 1810.3784801564534, 1824.1912277328956, 1825.4291863269145, 1827.1693342674753, 1827.684000764298, 1829.1960006253346, 1841.1461662606102, 1853.5085752286777}},
	{"DEMA", []float64{1802.3703703703704, 1806.5925925925926, 1807.1810699588477, 1815.780064014632, 1830.8920538732211, 1831.6089484949869, 1834.082129605218, 1832.5055290314076, 1834.8597588840018, 1850.3227055734449, 1861.5053316592919}},
	{"KAMA", []float64{nan, nan, 1807.0, 1810.510165496555, 1822.1457901118185, 1822.3464404919878, 1823.7939240591525, 1823.844974438811, 1824.0048740569384, 1838.0365264626676, 1848.1681225901743}},
	{"SMA", []float64{nan, nan, nan, 1809.0, 1823.4, 1825.3, 1827.0, 1827.9, 1829.8, 1840.3, 1853.4}},
	{"SAR", []float64{1804.5, 1797.0, 1797.0, 1802.1053538816, 1823.0, 1825.7, 1826.5, 1837.5, 1828.5, 1834.180949664, 1850.8600000000001}},
	{"ADX", []float64{0.0, 0.0, 0.0, 0.0, 58.47496373118165, 58.206859061316074, 58.873478088684024, 58.41702597321812, 58.40233801063697, 59.80250706221612, 58.114552994913105}},
	{"APO", []float64{1.4132231404962567, 6.065364387678983, 2.508025408101048, 6.621519843546594, 3.8087722671043593, 5.570813673085468, 7.8306657325247215, 2.3159992357020656, 6.803999374665409, 10.853833739389756, 10.491424771322272}},
	{"BOP", []float64{0.5882352941176471, 0.631578947368421, -0.5, 0.5333333333333333, -0.6, 0.46153846153846156, 0.5333333333333333, -0.625, 0.5714285714285714, 0.6666666666666666, 0.631578947368421}},
	{"CCI", []float64{nan, nan, nan, 116.60231660231692, 87.52556237218751, 69.3868142000901, 116.60231660231692, 65.87837837837408, 96.42147117296115, 138.99697362732581, 181.3256851497833}},
	{"MACD", []float64{nan, nan, nan, 2.7060598018865676, 3.7446656593269836, 3.5280759345673687, 3.802173906846292, 2.9636713519166733, 3.235780785475299, 4.754733611627671, 4.156885358356249}},
	{"MFI", []float64{nan, nan, nan, 55.58306626791013, 60.02193480233275, nan, nan, nan, nan, 70.13280497061646, 60.3009720865649}},
	{"MOM", []float64{nan, nan, nan, nan, 11.0, 19.0, 17.0, 9.0, 19.0, 21.0, 17.0}},
	{"RSI", []float64{nan, nan, nan, 68.95000776894825, 62.35451332654003, 65.23192266265573, 68.76846081536438, 60.25582226398576, 65.88626891409433, 72.72028628067358, 70.80014518036306}},
	{"AD", []float64{9632.45320855615, 19319.295313819304, 9019.295313819304, 33900.46424292941, 48543.549144354096, nan, 56260.21581102076, 41697.71581102076, 53981.049144354096, 89347.85360537295, 115752.91005434195}},
	{"ADOSC", []float64{nan, nan, nan, 0.1639683881157408, 0.06603420474148672, nan, nan, nan, nan, 0.17126675534530472, 0.16327728480226014}},
	{"OBV", []float64{20150.0, 40600.0, 20000.0, 83150.0, 127500.0, nan, 150650.0, 127350.0, 150800.0, 223250.0, 299900.0}},
	{"TRANGE", []float64{8.5, 9.5, 6.0, 7.5, 10.0, 6.5, 7.5, 8.0, 10.5, 7.5, 9.5}},
	{"ATR", []float64{6.417355371900827, 6.977836213373404, 6.800047810941876, 7.480363507139394, 8.216354018597778, 7.90428965158, 7.8307824422018175, 7.861549270892395, 8.341267585275595, 7.877563515046795, 8.260539467212457}},
	{"NATR", []float64{0.3557292334756556, 0.38551581289355824, 0.3763169790227933, 0.41168758982605363, 0.4494723204922198, 0.43169249872091753, 0.4267456371772107, 0.42959285633291777, 0.4543174066054246, 0.42535440146041004, 0.44316198858435923}},
}

func sameValue(got, want float64) bool {
	if math.IsNaN(want) || math.IsNaN(got) {
		return math.IsNaN(want) && math.IsNaN(got)
	}
	return math.Abs(got-want) <= 1e-9*math.Max(1, math.Abs(want))
}

func TestIndicatorReferenceValues(t *testing.T) {
	bars := wavyBars(40)
	bars[20].Volume = Missing
	for name, ind := range map[string]Indicators{
		"serial":   ComputeIndicators(bars),
		"parallel": ComputeIndicatorsParallel(bars),
	} {
		for _, tc := range referenceValues {
			got := ind[tc.column]
			for k, i := range referenceIndex {
				if !sameValue(got[i], tc.want[k]) {
					t.Errorf("%s %s[%d] = %v, want %v", name, tc.column, i, got[i], tc.want[k])
				}
			}
		}
	}
}

func TestCCIFlatWindow(t *testing.T) {
	flat := make([]float64, 12)
	for i := range flat {
		flat[i] = 8
	}
	out := cci(flat, flat, flat, cciWindow)
	for i, v := range out {
		// warm-up bars and every zero-deviation window are undefined (0/0)
		if !math.IsNaN(v) {
			t.Fatalf("CCI[%d] = %v, want NaN", i, v)
		}
	}

	// one step inside the window gives a defined value again
	flat[11] = 9
	out = cci(flat, flat, flat, cciWindow)
	if math.IsNaN(out[11]) || math.IsInf(out[11], 0) || out[11] <= 0 {
		t.Fatalf("CCI[11] = %v", out[11])
	}
}
