package saver

import "strings"

// Formats lists the supported output formats.
var Formats = []string{"csv", "json", "parquet"}

// NewFeatureSaver returns the saver for format, or nil if it is not supported.
func NewFeatureSaver(format string) FeatureSaver {
	switch strings.ToLower(strings.TrimSpace(format)) {
	case "csv":
		return CSVSaver{}
	case "parquet":
		return ParquetSaver{}
	case "json":
		return JSONSaver{}
	default:
		return nil
	}
}
