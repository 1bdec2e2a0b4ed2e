package importer

import (
	"bytes"
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/hyperjump/ryori/internal/embedding"
	"github.com/hyperjump/ryori/internal/models"
	"github.com/hyperjump/ryori/internal/storage"
	"github.com/xuri/excelize/v2"
)

func workbook(t *testing.T, rows [][]any) *bytes.Buffer {
	t.Helper()
	f := excelize.NewFile()
	defer f.Close()
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			t.Fatal(err)
		}
		if err := f.SetSheetRow("Sheet1", cell, &row); err != nil {
			t.Fatal(err)
		}
	}
	buf, err := f.WriteToBuffer()
	if err != nil {
		t.Fatal(err)
	}
	return buf
}

func TestReadRecipes(t *testing.T) {
	buf := workbook(t, [][]any{
		{"Name", "Description", "Calories", "Fat", "Protein", "Carbohydrates", "Ingredients", "Directions"},
		{"Pad Thai", "noodles", 450, "18", "20g", "1,055", "rice noodles", "stir fry"},
		{"", "no name, skipped"},
		{"Toast", "", "", "", "", ""},
	})
	items, err := ReadRecipes(buf, "")
	if err != nil {
		t.Fatal(err)
	}
	if len(items) != 2 {
		t.Fatalf("got %d items, want 2", len(items))
	}
	want := models.Item{
		Name: "Pad Thai", Description: "noodles", IngredientText: "rice noodles", InstructionText: "stir fry",
		Nutrition: models.Nutrition{Calories: 450, TotalFat: 18, Protein: 20, Carbs: 1055},
	}
	if items[0] != want {
		t.Errorf("got %+v, want %+v", items[0], want)
	}
	if items[1].Name != "Toast" || items[1].Nutrition != (models.Nutrition{}) {
		t.Errorf("got %+v", items[1])
	}
}

func TestReadRecipes_Errors(t *testing.T) {
	tests := []struct {
		name string
		rows [][]any
	}{
		{"no name column", [][]any{{"description"}, {"x"}}},
		{"bad number", [][]any{{"name", "calories"}, {"Soup", "lots"}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := ReadRecipes(workbook(t, tt.rows), ""); !errors.Is(err, models.ErrData) {
				t.Errorf("expected ErrData, got %v", err)
			}
		})
	}
	if _, err := ReadRecipes(bytes.NewReader([]byte("not a workbook")), ""); err == nil {
		t.Error("expected error for invalid workbook")
	}
	if _, err := ReadRecipes(workbook(t, [][]any{{"name"}}), "Missing"); err == nil {
		t.Error("expected error for missing sheet")
	}
}

func TestImporter_Import(t *testing.T) {
	ctx := context.Background()
	db, err := storage.NewSQLiteStore(filepath.Join(t.TempDir(), "recipes.db"))
	if err != nil {
		t.Fatal(err)
	}
	defer db.Close()
	emb := embedding.NewMockEmbedder(4)
	im := New(emb, db)

	items := make([]models.Item, 0, 40)
	for i := 0; i < 40; i++ {
		items = append(items, models.Item{Name: "Recipe " + string(rune('A'+i%26)) + string(rune('a'+i/26)), Description: "tasty"})
	}
	items = append(items, models.Item{Name: "  "})
	res, err := im.Import(ctx, items)
	if err != nil {
		t.Fatal(err)
	}
	if res.Imported != 40 || res.Replaced != 0 {
		t.Errorf("result = %+v", res)
	}

	res, err = im.Import(ctx, items[:2])
	if err != nil {
		t.Fatal(err)
	}
	if res.Imported != 2 || res.Replaced != 2 {
		t.Errorf("re-import result = %+v", res)
	}
	if n, _ := db.CountRecipes(ctx); n != 40 {
		t.Errorf("recipes = %d, want 40", n)
	}

	snap, err := db.LoadSnapshot(ctx)
	if err != nil {
		t.Fatal(err)
	}
	want, _ := emb.Embed(ctx, EmbeddingText(items[0]))
	var found bool
	for _, rec := range snap.Embeddings {
		if rec.Key == items[0].Name {
			found = true
			for i := range want {
				if rec.Embedding[i] != want[i] {
					t.Fatalf("stored embedding differs from the embedded text")
				}
			}
		}
	}
	if !found {
		t.Error("embedding not stored")
	}
}

func TestEmbeddingText(t *testing.T) {
	if got := EmbeddingText(models.Item{Name: "Soup"}); got != "Soup" {
		t.Errorf("got %q", got)
	}
	if got := EmbeddingText(models.Item{Name: "Soup", Description: "warm"}); got != "Soup. warm" {
		t.Errorf("got %q", got)
	}
}
