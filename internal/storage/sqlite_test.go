package storage

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/hyperjump/ryori/internal/models"
)

func newTestStore(t *testing.T) *SQLiteStore {
	t.Helper()
	store, err := NewSQLiteStore(filepath.Join(t.TempDir(), "nested", "recipes.db"))
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func TestSQLiteStore_SaveAndLoadSnapshot(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	recipes := []models.Item{
		{Name: "Miso Soup", Description: "light and savory", IngredientText: "miso, tofu", InstructionText: "simmer",
			Nutrition: models.Nutrition{Calories: 80, TotalFat: 3, Protein: 6, Carbs: 7}},
		{Name: "Pad Thai", Description: "sweet and sour noodles",
			Nutrition: models.Nutrition{Calories: 450, TotalFat: 18, Protein: 20, Carbs: 55}},
	}
	embeddings := [][]float32{{1, 0, 0.5}, {0, 1, -0.25}}
	for i, r := range recipes {
		id, err := store.SaveRecipe(ctx, r, embeddings[i])
		if err != nil {
			t.Fatal(err)
		}
		if id == "" {
			t.Error("expected a recipe id")
		}
	}

	snap, err := store.LoadSnapshot(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if len(snap.Items) != 2 || len(snap.Embeddings) != 2 {
		t.Fatalf("got %d items, %d embeddings", len(snap.Items), len(snap.Embeddings))
	}
	for i := range recipes {
		if snap.Items[i] != recipes[i] {
			t.Errorf("item %d = %+v, want %+v", i, snap.Items[i], recipes[i])
		}
		rec := snap.Embeddings[i]
		if rec.Key != recipes[i].Name {
			t.Errorf("embedding %d key = %s", i, rec.Key)
		}
		for j, v := range embeddings[i] {
			if rec.Embedding[j] != v {
				t.Errorf("embedding %d[%d] = %v, want %v", i, j, rec.Embedding[j], v)
			}
		}
	}

	n, err := store.CountRecipes(ctx)
	if err != nil || n != 2 {
		t.Errorf("CountRecipes = %d, %v", n, err)
	}
	n, err = store.CountEmbeddings(ctx)
	if err != nil || n != 2 {
		t.Errorf("CountEmbeddings = %d, %v", n, err)
	}
}

func TestSQLiteStore_NullColumns(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	stmts := []string{
		`INSERT INTO recipes (recipe_id, name, description) VALUES ('r1', 'Toast', NULL)`,
		`INSERT INTO nutrition_facts (recipe_id, calories, total_fat, protein, carbs) VALUES ('r1', 120, NULL, NULL, 20)`,
		`INSERT INTO ingredients (recipe_id, ingredient_text) VALUES ('r1', NULL)`,
		`INSERT INTO directions (recipe_id, instruction_text) VALUES ('r1', 'toast it')`,
	}
	for _, s := range stmts {
		if _, err := store.db.ExecContext(ctx, s); err != nil {
			t.Fatal(err)
		}
	}
	items, err := store.LoadItems(ctx)
	if err != nil {
		t.Fatal(err)
	}
	want := models.Item{Name: "Toast", InstructionText: "toast it", Nutrition: models.Nutrition{Calories: 120, Carbs: 20}}
	if len(items) != 1 || items[0] != want {
		t.Errorf("got %+v, want %+v", items, want)
	}
}

func TestSQLiteStore_BadEmbedding(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	if _, err := store.db.ExecContext(ctx,
		`INSERT INTO recipe_embeddings (name, embedding) VALUES ('Broken', '\x0000803')`); err != nil {
		t.Fatal(err)
	}
	if _, err := store.LoadSnapshot(ctx); !errors.Is(err, models.ErrData) {
		t.Errorf("expected ErrData, got %v", err)
	}
}

func TestSQLiteStore_ReplaceAndDelete(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	item := models.Item{Name: "Curry", Description: "mild"}
	if _, err := store.SaveRecipe(ctx, item, []float32{1, 2}); err != nil {
		t.Fatal(err)
	}
	if _, err := store.SaveRecipe(ctx, item, []float32{3, 4}); err != nil {
		t.Fatal(err)
	}
	records, err := store.LoadEmbeddings(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if len(records) != 1 || records[0].Embedding[0] != 3 {
		t.Errorf("embedding should be replaced, got %+v", records)
	}

	if err := store.DeleteRecipe(ctx, "Curry"); err != nil {
		t.Fatal(err)
	}
	if n, _ := store.CountRecipes(ctx); n != 0 {
		t.Errorf("recipes left after delete: %d", n)
	}
	if n, _ := store.CountEmbeddings(ctx); n != 0 {
		t.Errorf("embeddings left after delete: %d", n)
	}
	if err := store.DeleteRecipe(ctx, "Curry"); !errors.Is(err, models.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
	if _, err := store.SaveRecipe(ctx, models.Item{}, []float32{1}); !errors.Is(err, models.ErrData) {
		t.Errorf("expected ErrData for empty name, got %v", err)
	}
}
