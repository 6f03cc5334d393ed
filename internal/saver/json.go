package saver

import (
	"encoding/json"
	"os"

	"GoldCast/internal/services/features"
)

// JSONSaver writes an indented array of records.
type JSONSaver struct{}

func (JSONSaver) Extension() string { return "json" }

func (JSONSaver) Save(t *features.FeatureTable, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	enc := json.NewEncoder(f)
	enc.SetIndent("", "  ")
	return enc.Encode(Records(t))
}
