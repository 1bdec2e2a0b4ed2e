package catalog

import (
	"errors"
	"math"
	"testing"

	"github.com/hyperjump/ryori/internal/models"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func TestBuild_Get(t *testing.T) {
	repo, err := Build([]models.Item{
		{Name: "Pad Thai", Description: "noodles", Nutrition: models.Nutrition{Calories: 400, Protein: 20}},
		{Name: "Ramen", Description: "soup"},
	})
	if err != nil {
		t.Fatal(err)
	}
	if repo.Len() != 2 {
		t.Errorf("Len=%d", repo.Len())
	}
	item, err := repo.Get("Pad Thai")
	if err != nil {
		t.Fatal(err)
	}
	if item.Description != "noodles" || item.Nutrition.Calories != 400 {
		t.Errorf("got %+v", item)
	}
	if _, err := repo.Get("Sushi"); !errors.Is(err, models.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestBuild_Normalizes(t *testing.T) {
	repo, err := Build([]models.Item{{
		Name:           "Bad Row",
		Description:    "  tasty\x00 ",
		IngredientText: "",
		Nutrition:      models.Nutrition{Calories: math.NaN(), TotalFat: math.Inf(1), Protein: 5},
	}})
	if err != nil {
		t.Fatal(err)
	}
	item, _ := repo.Get("Bad Row")
	if item.Description != "tasty" {
		t.Errorf("description = %q", item.Description)
	}
	if item.Nutrition.Calories != 0 || item.Nutrition.TotalFat != 0 || item.Nutrition.Protein != 5 {
		t.Errorf("nutrition = %+v", item.Nutrition)
	}
}

func TestBuild_DuplicateLastWriteWins(t *testing.T) {
	core, logs := observer.New(zap.WarnLevel)
	repo, err := Build([]models.Item{
		{Name: "Curry", Description: "first"},
		{Name: "Salad", Description: "green"},
		{Name: "Curry", Description: "second"},
	}, WithLogger(zap.New(core)))
	if err != nil {
		t.Fatal(err)
	}
	item, _ := repo.Get("Curry")
	if item.Description != "second" {
		t.Errorf("description = %q, want second", item.Description)
	}
	keys := repo.Keys()
	if len(keys) != 2 || keys[0] != "Curry" || keys[1] != "Salad" {
		t.Errorf("keys = %v", keys)
	}
	if logs.Len() != 1 {
		t.Errorf("expected 1 duplicate warning, got %d", logs.Len())
	}
}

func TestBuild_EmptyName(t *testing.T) {
	if _, err := Build([]models.Item{{Name: ""}}); !errors.Is(err, models.ErrData) {
		t.Errorf("expected ErrData, got %v", err)
	}
}
