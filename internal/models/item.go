// Package models defines core data structures for recipes, embeddings, and recommendations.
package models

// Nutrition holds the numeric attributes charted for every recipe.
// Values are grams except Calories.
type Nutrition struct {
	Calories float64 `json:"calories" db:"calories"`
	TotalFat float64 `json:"total_fat" db:"total_fat"`
	Protein  float64 `json:"protein" db:"protein"`
	Carbs    float64 `json:"carbs" db:"carbs"`
}

// Values returns the attributes in chart order: calories, total_fat, protein, carbs.
func (n Nutrition) Values() []float64 {
	return []float64{n.Calories, n.TotalFat, n.Protein, n.Carbs}
}

// NutritionLabels are the chart labels matching Nutrition.Values.
var NutritionLabels = []string{"calories", "total_fat", "protein", "carbs"}

// Item is a recipe as read from the snapshot source. Name is the unique key.
type Item struct {
	Name            string    `json:"name" db:"name"`
	Description     string    `json:"description" db:"description"`
	IngredientText  string    `json:"ingredient_text" db:"ingredient_text"`
	InstructionText string    `json:"instruction_text" db:"instruction_text"`
	Nutrition       Nutrition `json:"nutrition"`
}

// EmbeddingRecord pairs an item key with its precomputed embedding.
type EmbeddingRecord struct {
	Key       string
	Embedding []float32
}

// Snapshot is a point-in-time read of the recipe database.
// Items and Embeddings keep the order in which the source returned them.
type Snapshot struct {
	Items      []Item
	Embeddings []EmbeddingRecord
}
