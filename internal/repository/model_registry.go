package repository

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"GoldCast/internal/domain/models"
	domrepo "GoldCast/internal/domain/repository"
)

// FileModelRegistry resolves classifier artifacts stored as files in one directory.
type FileModelRegistry struct {
	dir string
}

func NewFileModelRegistry(dir string) *FileModelRegistry {
	return &FileModelRegistry{dir: dir}
}

// List returns every regular file in the model directory, sorted by name.
func (r *FileModelRegistry) List(ctx context.Context) ([]models.ModelRef, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	entries, err := os.ReadDir(r.dir)
	if err != nil {
		return nil, fmt.Errorf("list models in %s: %w", r.dir, err)
	}
	out := make([]models.ModelRef, 0, len(entries))
	for _, e := range entries {
		if e.IsDir() || strings.HasPrefix(e.Name(), ".") {
			continue
		}
		out = append(out, models.ModelRef{Name: e.Name(), Path: filepath.Join(r.dir, e.Name())})
	}
	return out, nil
}

// Resolve returns the first artifact whose file name contains the pattern, either
// verbatim or with spaces replaced by underscores.
func (r *FileModelRegistry) Resolve(ctx context.Context, pattern string) (models.ModelRef, error) {
	refs, err := r.List(ctx)
	if err != nil {
		return models.ModelRef{}, err
	}
	if ref, ok := MatchModel(refs, pattern); ok {
		return ref, nil
	}
	return models.ModelRef{}, fmt.Errorf("%w: pattern %q", domrepo.ErrModelNotFound, pattern)
}

// MatchModel applies the registry's name matching to refs in order.
func MatchModel(refs []models.ModelRef, pattern string) (models.ModelRef, bool) {
	if strings.TrimSpace(pattern) == "" {
		return models.ModelRef{}, false
	}
	safe := strings.ReplaceAll(pattern, " ", "_")
	for _, ref := range refs {
		if strings.Contains(ref.Name, pattern) || strings.Contains(ref.Name, safe) {
			return ref, true
		}
	}
	return models.ModelRef{}, false
}
