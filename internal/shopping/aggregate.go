// Package shopping builds the consolidated shopping list for a user's cart:
// it collects the ingredient line items of every carted recipe, merges rows
// that share an ingredient name and measurement unit, and renders the result
// as a downloadable plain-text report.
package shopping

import (
	"context"
	"fmt"
	"sort"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"
	"gorm.io/gorm"

	"foodgram/models"
)

// LineItem is one flat joined row: an ingredient amount inside a recipe that
// sits in the user's cart.
type LineItem struct {
	IngredientName  string
	MeasurementUnit string
	Amount          int
	RecipeName      string
}

// Row is one aggregated shopping-list entry.
type Row struct {
	Name            string
	MeasurementUnit string
	Amount          int
}

// CollectLineItems loads every ingredient line item belonging to recipes in
// the user's cart. An empty cart yields an empty slice, not an error.
func CollectLineItems(ctx context.Context, database *gorm.DB, userID uint) ([]LineItem, error) {
	if database == nil {
		return nil, gorm.ErrInvalidDB
	}

	var items []LineItem
	err := database.WithContext(ctx).
		Model(&models.RecipeIngredient{}).
		Select("ingredients.name AS ingredient_name, " +
			"ingredients.measurement_unit AS measurement_unit, " +
			"recipe_ingredients.amount AS amount, " +
			"recipes.name AS recipe_name").
		Joins("JOIN ingredients ON ingredients.id = recipe_ingredients.ingredient_id AND ingredients.deleted_at IS NULL").
		Joins("JOIN recipes ON recipes.id = recipe_ingredients.recipe_id AND recipes.deleted_at IS NULL").
		Joins("JOIN shopping_carts ON shopping_carts.recipe_id = recipe_ingredients.recipe_id AND shopping_carts.deleted_at IS NULL").
		Where("shopping_carts.user_id = ?", userID).
		Scan(&items).Error
	if err != nil {
		return nil, fmt.Errorf("collect cart line items: %w", err)
	}

	return items, nil
}

// Aggregate groups line items by the denormalized (name, unit) pair, sums the
// amounts with integer addition, and returns the rows plus the distinct
// contributing recipe names. Both lists are sorted with a case-insensitive
// Russian collator so reports are reproducible run to run.
func Aggregate(items []LineItem) ([]Row, []string) {
	type groupKey struct {
		name string
		unit string
	}

	totals := make(map[groupKey]int, len(items))
	recipes := make(map[string]struct{})
	for _, item := range items {
		totals[groupKey{name: item.IngredientName, unit: item.MeasurementUnit}] += item.Amount
		if item.RecipeName != "" {
			recipes[item.RecipeName] = struct{}{}
		}
	}

	rows := make([]Row, 0, len(totals))
	for key, amount := range totals {
		rows = append(rows, Row{Name: key.name, MeasurementUnit: key.unit, Amount: amount})
	}

	names := make([]string, 0, len(recipes))
	for name := range recipes {
		names = append(names, name)
	}

	collator := collate.New(language.Russian, collate.IgnoreCase)
	sort.Slice(rows, func(i, j int) bool {
		if cmp := collator.CompareString(rows[i].Name, rows[j].Name); cmp != 0 {
			return cmp < 0
		}
		return collator.CompareString(rows[i].MeasurementUnit, rows[j].MeasurementUnit) < 0
	})
	sort.Slice(names, func(i, j int) bool {
		return collator.CompareString(names[i], names[j]) < 0
	})

	return rows, names
}

// BuildShoppingList resolves the user's cart into aggregated rows and the
// deduplicated recipe names behind them.
func BuildShoppingList(ctx context.Context, database *gorm.DB, userID uint) ([]Row, []string, error) {
	items, err := CollectLineItems(ctx, database, userID)
	if err != nil {
		return nil, nil, err
	}

	rows, names := Aggregate(items)
	return rows, names, nil
}
