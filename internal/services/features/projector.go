package features

import (
	"math"
	"time"

	"GoldCast/internal/domain/models"
)

// FeatureRow is one projected bar: indicator values aligned with Columns plus
// the pattern labels.
type FeatureRow struct {
	Index         int           `json:"index"` // position in the date-sorted input
	Date          time.Time     `json:"date"`
	Values        []float64     `json:"values"`
	CandlePattern CandlePattern `json:"candle_pattern"`
	Trigram       Trigram       `json:"trigram"`
}

// Vector returns the numeric model input of the row.
func (r FeatureRow) Vector() []float64 {
	out := make([]float64, len(r.Values))
	copy(out, r.Values)
	return out
}

// Map returns the row's indicator values keyed by column.
func (r FeatureRow) Map() map[string]float64 {
	m := make(map[string]float64, len(Columns))
	for i, name := range Columns {
		if i < len(r.Values) {
			m[name] = r.Values[i]
		}
	}
	return m
}

// Get returns the value of an indicator column.
func (r FeatureRow) Get(column string) (float64, bool) {
	for i, name := range Columns {
		if name == column && i < len(r.Values) {
			return r.Values[i], true
		}
	}
	return 0, false
}

// FeatureTable is the pipeline output.
type FeatureTable struct {
	Columns  []string     `json:"columns"`
	Rows     []FeatureRow `json:"rows"`
	RowsIn   int          `json:"rows_in"`
	Dropped  int          `json:"dropped"`
	Warnings []string     `json:"warnings,omitempty"`
}

// Empty reports whether no row survived projection.
func (t *FeatureTable) Empty() bool { return t == nil || len(t.Rows) == 0 }

// Last returns the most recent row.
func (t *FeatureTable) Last() (FeatureRow, bool) {
	if t.Empty() {
		return FeatureRow{}, false
	}
	return t.Rows[len(t.Rows)-1], true
}

// Project keeps only indicator columns and pattern labels and drops every row
// holding a missing or infinite indicator value. Rows are never imputed.
func Project(bars []models.Bar, ind Indicators, candles []CandlePattern, trigrams []Trigram) *FeatureTable {
	t := &FeatureTable{
		Columns: append([]string(nil), Columns...),
		Rows:    make([]FeatureRow, 0, len(bars)),
		RowsIn:  len(bars),
	}
	for i, b := range bars {
		values := make([]float64, len(Columns))
		complete := true
		for j, name := range Columns {
			col := ind[name]
			if i >= len(col) || math.IsNaN(col[i]) || math.IsInf(col[i], 0) {
				complete = false
				break
			}
			values[j] = col[i]
		}
		if !complete {
			t.Dropped++
			continue
		}
		t.Rows = append(t.Rows, FeatureRow{
			Index:         i,
			Date:          b.Date,
			Values:        values,
			CandlePattern: candles[i],
			Trigram:       trigrams[i],
		})
	}
	return t
}
