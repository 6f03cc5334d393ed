// Package table reads OHLCV price histories from CSV and writes feature tables back out.
package table

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"GoldCast/internal/domain/models"
	"GoldCast/internal/services/features"
	"GoldCast/pkg/util"
)

// Input column names; header cells are trimmed before matching, matching is case-sensitive.
const (
	ColDate   = "Date"
	ColPrice  = "Price"
	ColOpen   = "Open"
	ColHigh   = "High"
	ColLow    = "Low"
	ColVolume = "Vol."
	ColChange = "Change %"
)

var requiredColumns = []string{ColDate, ColPrice, ColOpen, ColHigh, ColLow, ColVolume}

var (
	ErrMissingColumn = errors.New("missing required column")
	ErrMalformedRow  = errors.New("malformed row")
	ErrEmptyInput    = errors.New("csv has no header")
)

// ReadBars decodes a price history. Unparseable dates and volume tokens degrade
// to warnings; unparseable prices fail the whole read.
func ReadBars(r io.Reader) ([]models.Bar, []string, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true

	header, err := cr.Read()
	if errors.Is(err, io.EOF) {
		return nil, nil, ErrEmptyInput
	}
	if err != nil {
		return nil, nil, fmt.Errorf("read header: %w", err)
	}
	idx := make(map[string]int, len(header))
	for i, h := range header {
		h = strings.TrimSpace(strings.TrimPrefix(h, "\ufeff"))
		if _, dup := idx[h]; !dup {
			idx[h] = i
		}
	}
	for _, name := range requiredColumns {
		if _, ok := idx[name]; !ok {
			return nil, nil, fmt.Errorf("%w: %q", ErrMissingColumn, name)
		}
	}
	changeIdx, hasChange := idx[ColChange]

	var (
		bars          []models.Bar
		badDates      int
		missingVolume int
	)
	line := 1
	for {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		line++
		if err != nil {
			return nil, nil, fmt.Errorf("%w: line %d: %v", ErrMalformedRow, line, err)
		}
		if blank(rec) {
			continue
		}
		cell := func(name string) string {
			i := idx[name]
			if i >= len(rec) {
				return ""
			}
			return rec[i]
		}

		b := models.Bar{RawDate: strings.TrimSpace(cell(ColDate))}
		if d, ok := util.ParseDate(b.RawDate); ok {
			b.Date = d
		} else {
			badDates++
		}
		for _, f := range []struct {
			name string
			dst  *float64
		}{
			{ColPrice, &b.Close},
			{ColOpen, &b.Open},
			{ColHigh, &b.High},
			{ColLow, &b.Low},
		} {
			v, err := parsePrice(cell(f.name))
			if err != nil {
				return nil, nil, fmt.Errorf("%w: line %d column %q: %v", ErrMalformedRow, line, f.name, err)
			}
			*f.dst = v
		}
		b.Volume = features.ParseVolume(cell(ColVolume))
		if features.IsMissing(b.Volume) {
			missingVolume++
		}
		if hasChange && changeIdx < len(rec) {
			b.Change = strings.TrimSpace(rec[changeIdx])
		}
		bars = append(bars, b)
	}

	var warnings []string
	if badDates > 0 {
		warnings = append(warnings, fmt.Sprintf("%d rows have unparseable dates", badDates))
	}
	if missingVolume > 0 {
		warnings = append(warnings, fmt.Sprintf("%d rows have missing volume", missingVolume))
	}
	return bars, warnings, nil
}

func parsePrice(s string) (float64, error) {
	s = strings.ReplaceAll(strings.TrimSpace(s), ",", "")
	if s == "" {
		return 0, errors.New("empty value")
	}
	return strconv.ParseFloat(s, 64)
}

func blank(rec []string) bool {
	for _, c := range rec {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}

// FeatureHeader is the header row written by WriteFeatures.
func FeatureHeader() []string {
	h := make([]string, 0, len(features.Columns)+3)
	h = append(h, ColDate)
	h = append(h, features.Columns...)
	return append(h, "CandlePattern", "Trigram")
}

// WriteFeatures encodes a feature table as CSV.
func WriteFeatures(w io.Writer, t *features.FeatureTable) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(FeatureHeader()); err != nil {
		return err
	}
	for _, r := range t.Rows {
		rec := make([]string, 0, len(r.Values)+3)
		rec = append(rec, util.FormatDate(r.Date))
		for _, v := range r.Values {
			rec = append(rec, strconv.FormatFloat(v, 'f', -1, 64))
		}
		rec = append(rec, string(r.CandlePattern), string(r.Trigram))
		if err := cw.Write(rec); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}
