// Package catalog holds the immutable recipe attribute repository.
package catalog

import (
	"fmt"
	"math"
	"strings"

	"github.com/hyperjump/ryori/internal/models"
	"go.uber.org/zap"
)

// Repository maps recipe names to their descriptive text and nutrition.
// Built once from a snapshot; read-only afterwards.
type Repository struct {
	keys  []string
	items map[string]models.Item
}

// Option configures Build.
type Option func(*buildOptions)

type buildOptions struct {
	logger *zap.Logger
}

// WithLogger sets a logger for duplicate-key warnings.
func WithLogger(l *zap.Logger) Option {
	return func(o *buildOptions) { o.logger = l }
}

// Build normalizes items and indexes them by name. Duplicate names resolve to the
// last item (logged as a warning); the key keeps its first position in Keys.
func Build(items []models.Item, opts ...Option) (*Repository, error) {
	o := buildOptions{logger: zap.NewNop()}
	for _, opt := range opts {
		opt(&o)
	}
	r := &Repository{
		keys:  make([]string, 0, len(items)),
		items: make(map[string]models.Item, len(items)),
	}
	for i, item := range items {
		if item.Name == "" {
			return nil, fmt.Errorf("%w: item at row %d has no name", models.ErrData, i)
		}
		if _, dup := r.items[item.Name]; dup {
			o.logger.Warn("duplicate recipe name, keeping last", zap.String("key", item.Name))
		} else {
			r.keys = append(r.keys, item.Name)
		}
		r.items[item.Name] = Normalize(item)
	}
	return r, nil
}

// Normalize applies the snapshot null policy: text fields lose NUL bytes and
// surrounding whitespace, numeric attributes that are NaN or infinite become zero.
func Normalize(item models.Item) models.Item {
	item.Description = normalizeText(item.Description)
	item.IngredientText = normalizeText(item.IngredientText)
	item.InstructionText = normalizeText(item.InstructionText)
	item.Nutrition = models.Nutrition{
		Calories: normalizeNumber(item.Nutrition.Calories),
		TotalFat: normalizeNumber(item.Nutrition.TotalFat),
		Protein:  normalizeNumber(item.Nutrition.Protein),
		Carbs:    normalizeNumber(item.Nutrition.Carbs),
	}
	return item
}

func normalizeText(s string) string {
	return strings.TrimSpace(strings.ReplaceAll(s, "\x00", ""))
}

func normalizeNumber(v float64) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0
	}
	return v
}

// Get returns the item for key.
func (r *Repository) Get(key string) (models.Item, error) {
	item, ok := r.items[key]
	if !ok {
		return models.Item{}, fmt.Errorf("%w: recipe %q", models.ErrNotFound, key)
	}
	return item, nil
}

// Len returns the number of distinct recipes.
func (r *Repository) Len() int {
	return len(r.keys)
}

// Keys returns recipe names in first-seen order.
func (r *Repository) Keys() []string {
	return append([]string(nil), r.keys...)
}
