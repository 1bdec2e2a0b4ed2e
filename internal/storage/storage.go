// Package storage reads recipe snapshots from a relational database or a snapshot file.
package storage

import (
	"context"
	"fmt"

	"github.com/hyperjump/ryori/internal/models"
	"github.com/hyperjump/ryori/internal/vector"
)

// Source loads a complete, ordered snapshot of recipes and their embeddings.
type Source interface {
	LoadSnapshot(ctx context.Context) (*models.Snapshot, error)
	Close() error
}

// ItemSource loads recipe attributes only.
type ItemSource interface {
	LoadItems(ctx context.Context) ([]models.Item, error)
}

// recipeColumns is the join of the four recipe tables. Callers append their own ORDER BY.
const recipeColumns = `
	SELECT r.name, r.description, n.calories, n.total_fat, n.protein, n.carbs,
	       i.ingredient_text, d.instruction_text
	FROM recipes r
	JOIN nutrition_facts n ON r.recipe_id = n.recipe_id
	JOIN ingredients i ON r.recipe_id = i.recipe_id
	JOIN directions d ON r.recipe_id = d.recipe_id`

// nullableItem holds one joined row before NULLs are resolved.
type nullableItem struct {
	name, description, ingredients, instructions *string
	calories, totalFat, protein, carbs           *float64
}

func (n nullableItem) item() models.Item {
	return models.Item{
		Name:            deref(n.name),
		Description:     deref(n.description),
		IngredientText:  deref(n.ingredients),
		InstructionText: deref(n.instructions),
		Nutrition: models.Nutrition{
			Calories: deref(n.calories),
			TotalFat: deref(n.totalFat),
			Protein:  deref(n.protein),
			Carbs:    deref(n.carbs),
		},
	}
}

func deref[T any](p *T) T {
	var zero T
	if p == nil {
		return zero
	}
	return *p
}

// decodeEmbedding turns a stored hex embedding into a record. Failures are ErrData.
func decodeEmbedding(name, hex string) (models.EmbeddingRecord, error) {
	vec, err := vector.DecodeHex(hex)
	if err != nil {
		return models.EmbeddingRecord{}, fmt.Errorf("embedding for %q: %w", name, err)
	}
	return models.EmbeddingRecord{Key: name, Embedding: vec}, nil
}
