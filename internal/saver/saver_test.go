package saver

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/parquet-go/parquet-go"

	"GoldCast/internal/services/features"
)

func sampleTable() *features.FeatureTable {
	values := make([]float64, len(features.Columns))
	for i := range values {
		values[i] = float64(i) + 0.5
	}
	return &features.FeatureTable{
		Columns: features.Columns,
		Rows: []features.FeatureRow{{
			Index:         10,
			Date:          time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC),
			Values:        values,
			CandlePattern: features.Hammer,
			Trigram:       features.BullishHorn,
		}},
	}
}

func TestNewFeatureSaver(t *testing.T) {
	for _, f := range Formats {
		s := NewFeatureSaver(" " + f + " ")
		if s == nil || s.Extension() != f {
			t.Fatalf("format %q -> %v", f, s)
		}
	}
	if NewFeatureSaver("xml") != nil {
		t.Fatal("xml should be unsupported")
	}
}

func TestRecords(t *testing.T) {
	recs := Records(sampleTable())
	if len(recs) != 1 {
		t.Fatalf("records = %d", len(recs))
	}
	r := recs[0]
	if r.Date != "2024-02-01" || r.MA != 0.5 || r.NATR != 19.5 || r.CandlePattern != "Hammer" {
		t.Fatalf("record = %+v", r)
	}
}

func TestJSONSaver(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.json")
	if err := (JSONSaver{}).Save(sampleTable(), path); err != nil {
		t.Fatal(err)
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	var recs []Record
	if err := json.Unmarshal(raw, &recs); err != nil {
		t.Fatal(err)
	}
	if len(recs) != 1 || recs[0].Trigram != "BullishHorn" {
		t.Fatalf("records = %+v", recs)
	}
}

func TestParquetSaver(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.parquet")
	if err := (ParquetSaver{}).Save(sampleTable(), path); err != nil {
		t.Fatal(err)
	}
	recs, err := parquet.ReadFile[Record](path)
	if err != nil {
		t.Fatal(err)
	}
	if len(recs) != 1 || recs[0].RSI != 13.5 {
		t.Fatalf("records = %+v", recs)
	}
}

func TestCSVSaver(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.csv")
	if err := (CSVSaver{}).Save(sampleTable(), path); err != nil {
		t.Fatal(err)
	}
	if fi, err := os.Stat(path); err != nil || fi.Size() == 0 {
		t.Fatalf("stat: %v", err)
	}
}
