// Package importer loads recipes from spreadsheets, embeds them and writes them to storage.
package importer

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/hyperjump/ryori/internal/models"
	"github.com/xuri/excelize/v2"
)

// columnAliases maps normalized header names to item fields.
var columnAliases = map[string]string{
	"name":             "name",
	"recipe":           "name",
	"title":            "name",
	"description":      "description",
	"calories":         "calories",
	"total_fat":        "total_fat",
	"fat":              "total_fat",
	"protein":          "protein",
	"carbs":            "carbs",
	"carbohydrates":    "carbs",
	"ingredient_text":  "ingredients",
	"ingredients":      "ingredients",
	"instruction_text": "instructions",
	"instructions":     "instructions",
	"directions":       "instructions",
}

// ReadRecipes reads recipes from an .xlsx workbook. The first row of the sheet is a
// header naming the columns; sheet "" means the first sheet. Rows with an empty name
// are skipped. Unparseable numbers are ErrData.
func ReadRecipes(r io.Reader, sheet string) ([]models.Item, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("open workbook: %w", err)
	}
	defer f.Close()

	if sheet == "" {
		sheets := f.GetSheetList()
		if len(sheets) == 0 {
			return nil, fmt.Errorf("%w: workbook has no sheets", models.ErrData)
		}
		sheet = sheets[0]
	}
	rows, err := f.GetRows(sheet)
	if err != nil {
		return nil, fmt.Errorf("get rows for sheet %q: %w", sheet, err)
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("%w: sheet %q is empty", models.ErrData, sheet)
	}

	columns := make(map[string]int)
	for i, h := range rows[0] {
		key := strings.ReplaceAll(strings.ToLower(strings.TrimSpace(h)), " ", "_")
		if field, ok := columnAliases[key]; ok {
			if _, dup := columns[field]; !dup {
				columns[field] = i
			}
		}
	}
	if _, ok := columns["name"]; !ok {
		return nil, fmt.Errorf("%w: sheet %q has no name column", models.ErrData, sheet)
	}

	var items []models.Item
	for n, row := range rows[1:] {
		cell := func(field string) string {
			i, ok := columns[field]
			if !ok || i >= len(row) {
				return ""
			}
			return strings.TrimSpace(row[i])
		}
		item := models.Item{
			Name:            cell("name"),
			Description:     cell("description"),
			IngredientText:  cell("ingredients"),
			InstructionText: cell("instructions"),
		}
		if item.Name == "" {
			continue
		}
		line := n + 2
		for _, col := range []struct {
			field string
			dst   *float64
		}{
			{"calories", &item.Nutrition.Calories},
			{"total_fat", &item.Nutrition.TotalFat},
			{"protein", &item.Nutrition.Protein},
			{"carbs", &item.Nutrition.Carbs},
		} {
			v, err := parseNumber(cell(col.field))
			if err != nil {
				return nil, fmt.Errorf("%w: row %d column %s: %v", models.ErrData, line, col.field, err)
			}
			*col.dst = v
		}
		items = append(items, item)
	}
	return items, nil
}

// parseNumber accepts plain numbers with optional thousands separators and a trailing "g".
// An empty cell is 0.
func parseNumber(s string) (float64, error) {
	s = strings.TrimSuffix(strings.ReplaceAll(s, ",", ""), "g")
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, nil
	}
	return strconv.ParseFloat(s, 64)
}
