package shoppinglist

import (
	"context"

	"foodgram/domain"

	"gorm.io/gorm"
)

type (
	ShoppingListRepository interface {
		GetCartIngredientLines(ctx context.Context, userID string) ([]domain.IngredientLine, error)
	}

	shoppingListRepository struct {
		db *gorm.DB
	}
)

func NewShoppingListRepository(db *gorm.DB) ShoppingListRepository {
	return &shoppingListRepository{db: db}
}

// GetCartIngredientLines explodes every recipe in the user's cart into its
// raw ingredient lines. Aggregation happens in the service so it stays a
// pure function of this result.
func (r *shoppingListRepository) GetCartIngredientLines(ctx context.Context, userID string) ([]domain.IngredientLine, error) {
	var lines []domain.IngredientLine
	if err := r.db.WithContext(ctx).
		Table("recipe_ingredients").
		Select("ingredients.name AS name, ingredients.measurement_unit AS measurement_unit, recipe_ingredients.amount AS amount").
		Joins("JOIN shopping_cart_entries ON shopping_cart_entries.recipe_id = recipe_ingredients.recipe_id").
		Joins("JOIN ingredients ON ingredients.id = recipe_ingredients.ingredient_id").
		Where("shopping_cart_entries.user_id = ?", userID).
		Scan(&lines).Error; err != nil {
		return nil, err
	}
	return lines, nil
}
