// Package saver writes feature tables to disk in one of several formats.
package saver

import "GoldCast/internal/services/features"

// FeatureSaver persists one feature table to a file.
type FeatureSaver interface {
	Save(t *features.FeatureTable, path string) error
	Extension() string
}
