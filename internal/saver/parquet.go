package saver

import (
	"github.com/parquet-go/parquet-go"

	"GoldCast/internal/services/features"
)

type ParquetSaver struct{}

func (ParquetSaver) Extension() string { return "parquet" }

func (ParquetSaver) Save(t *features.FeatureTable, path string) error {
	return parquet.WriteFile(path, Records(t))
}
