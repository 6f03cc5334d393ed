package saver

import (
	"os"

	"GoldCast/internal/services/features"
	"GoldCast/internal/services/table"
)

// CSVSaver writes the table with the same header the HTTP export uses.
type CSVSaver struct{}

func (CSVSaver) Extension() string { return "csv" }

func (CSVSaver) Save(t *features.FeatureTable, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	return table.WriteFeatures(f, t)
}
