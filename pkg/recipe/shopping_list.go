package recipe

import (
	"context"
	"fmt"
	"strings"

	"foodgram-backend/domain"
	"foodgram-backend/entities"
)

const (
	ShoppingListHeader   = "Shopping list:"
	ShoppingListFilename = "shopping_list.txt"
)

// GetShoppingList sums the ingredient amounts of every recipe in the user's
// cart, one line per (name, unit), ordered by name then unit.
func (r *recipeRepository) GetShoppingList(ctx context.Context, userID uint) ([]domain.ShoppingListLine, error) {
	var lines []domain.ShoppingListLine

	if err := r.db.WithContext(ctx).
		Model(&entities.IngredientAmount{}).
		Select("ingredients.name AS name, ingredients.measurement_unit AS measurement_unit, SUM(ingredient_amounts.amount) AS amount").
		Joins("JOIN ingredients ON ingredients.id = ingredient_amounts.ingredient_id").
		Joins("JOIN shopping_carts ON shopping_carts.recipe_id = ingredient_amounts.recipe_id").
		Where("shopping_carts.user_id = ?", userID).
		Group("ingredients.name, ingredients.measurement_unit").
		Order("ingredients.name asc").
		Order("ingredients.measurement_unit asc").
		Scan(&lines).Error; err != nil {
		return nil, err
	}

	return lines, nil
}

// RenderShoppingList formats lines as the plain-text shopping list.
func RenderShoppingList(lines []domain.ShoppingListLine) string {
	var b strings.Builder
	b.WriteString(ShoppingListHeader)
	b.WriteString("\n")
	for _, line := range lines {
		fmt.Fprintf(&b, "%s - %d %s\n", line.Name, line.Amount, line.MeasurementUnit)
	}
	return b.String()
}
