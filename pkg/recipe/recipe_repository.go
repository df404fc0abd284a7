package recipe

import (
	"context"
	"time"

	"foodgram/domain"
	"foodgram/entities"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type (
	RecipeRepository interface {
		CreateRecipe(ctx context.Context, recipe *entities.Recipe, lines []entities.RecipeIngredient) error
		UpdateRecipe(ctx context.Context, recipe *entities.Recipe, lines []entities.RecipeIngredient, tags []entities.Tag, replaceLines, replaceTags bool) error
		DeleteRecipe(ctx context.Context, id string) error
		GetRecipeByID(ctx context.Context, id string) (*entities.Recipe, error)
		GetRecipes(ctx context.Context, filter domain.RecipeFilter, requesterID string, page, limit int) ([]*entities.Recipe, int64, error)
		GetRecipesByAuthor(ctx context.Context, authorID string, limit int) ([]*entities.Recipe, error)
		CountRecipesByAuthor(ctx context.Context, authorID string) (int64, error)

		AddFavorite(ctx context.Context, userID, recipeID uuid.UUID) error
		RemoveFavorite(ctx context.Context, userID, recipeID string) (int64, error)
		AddCartEntry(ctx context.Context, userID, recipeID uuid.UUID) error
		RemoveCartEntry(ctx context.Context, userID, recipeID string) (int64, error)

		GetFavoriteSet(ctx context.Context, userID string, recipeIDs []uuid.UUID) (map[uuid.UUID]bool, error)
		GetCartSet(ctx context.Context, userID string, recipeIDs []uuid.UUID) (map[uuid.UUID]bool, error)
		GetSubscribedAuthorSet(ctx context.Context, userID string, authorIDs []uuid.UUID) (map[uuid.UUID]bool, error)
	}

	recipeRepository struct {
		db *gorm.DB
	}
)

func NewRecipeRepository(db *gorm.DB) RecipeRepository {
	return &recipeRepository{db: db}
}

// CreateRecipe persists the recipe, its ingredient lines and its tag links
// in one transaction; a failure on any row rolls back everything.
func (r *recipeRepository) CreateRecipe(ctx context.Context, recipe *entities.Recipe, lines []entities.RecipeIngredient) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(recipe).Error; err != nil {
			return err
		}
		for i := range lines {
			lines[i].RecipeID = recipe.ID
		}
		return tx.Create(&lines).Error
	})
}

// UpdateRecipe saves scalar fields and, when requested, replaces the full
// ingredient-line set (delete then recreate) and the full tag set.
func (r *recipeRepository) UpdateRecipe(ctx context.Context, recipe *entities.Recipe, lines []entities.RecipeIngredient, tags []entities.Tag, replaceLines, replaceTags bool) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit(clause.Associations).Save(recipe).Error; err != nil {
			return err
		}

		if replaceLines {
			if err := tx.Where("recipe_id = ?", recipe.ID).Delete(&entities.RecipeIngredient{}).Error; err != nil {
				return err
			}
			for i := range lines {
				lines[i].RecipeID = recipe.ID
			}
			if err := tx.Create(&lines).Error; err != nil {
				return err
			}
		}

		if replaceTags {
			if err := tx.Model(recipe).Association("Tags").Replace(&tags); err != nil {
				return err
			}
		}
		return nil
	})
}

// DeleteRecipe removes the recipe together with its join rows and every
// favorite and cart entry pointing at it, so no orphaned relation rows
// survive.
func (r *recipeRepository) DeleteRecipe(ctx context.Context, id string) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("recipe_id = ?", id).Delete(&entities.RecipeIngredient{}).Error; err != nil {
			return err
		}
		if err := tx.Where("recipe_id = ?", id).Delete(&entities.FavoriteRecipe{}).Error; err != nil {
			return err
		}
		if err := tx.Where("recipe_id = ?", id).Delete(&entities.ShoppingCartEntry{}).Error; err != nil {
			return err
		}
		if err := tx.Exec("DELETE FROM recipe_tags WHERE recipe_id = ?", id).Error; err != nil {
			return err
		}
		return tx.Where("id = ?", id).Delete(&entities.Recipe{}).Error
	})
}

func (r *recipeRepository) GetRecipeByID(ctx context.Context, id string) (*entities.Recipe, error) {
	var recipe entities.Recipe
	if err := r.db.WithContext(ctx).
		Preload("Author").
		Preload("Tags").
		Preload("IngredientLines.Ingredient").
		Where("id = ?", id).
		First(&recipe).Error; err != nil {
		return nil, err
	}
	return &recipe, nil
}

func (r *recipeRepository) applyFilter(query *gorm.DB, filter domain.RecipeFilter, requesterID string) *gorm.DB {
	if filter.AuthorID != "" {
		query = query.Where("recipes.author_id = ?", filter.AuthorID)
	}
	if len(filter.TagSlugs) > 0 {
		// OR-combined: any matching tag qualifies the recipe.
		query = query.
			Joins("JOIN recipe_tags ON recipe_tags.recipe_id = recipes.id").
			Joins("JOIN tags ON tags.id = recipe_tags.tag_id").
			Where("tags.slug IN ?", filter.TagSlugs)
	}
	if filter.IsFavorited && requesterID != "" {
		query = query.Joins(
			"JOIN favorite_recipes ON favorite_recipes.recipe_id = recipes.id AND favorite_recipes.user_id = ?",
			requesterID,
		)
	}
	if filter.IsInShoppingCart && requesterID != "" {
		query = query.Joins(
			"JOIN shopping_cart_entries ON shopping_cart_entries.recipe_id = recipes.id AND shopping_cart_entries.user_id = ?",
			requesterID,
		)
	}
	return query
}

func (r *recipeRepository) GetRecipes(ctx context.Context, filter domain.RecipeFilter, requesterID string, page, limit int) ([]*entities.Recipe, int64, error) {
	var recipes []*entities.Recipe
	var count int64
	offset := (page - 1) * limit

	countQuery := r.applyFilter(r.db.WithContext(ctx).Model(&entities.Recipe{}), filter, requesterID)
	if err := countQuery.Distinct("recipes.id").Count(&count).Error; err != nil {
		return nil, 0, err
	}

	listQuery := r.applyFilter(r.db.WithContext(ctx).Model(&entities.Recipe{}), filter, requesterID)
	if err := listQuery.
		Select("DISTINCT recipes.*").
		Preload("Author").
		Preload("Tags").
		Preload("IngredientLines.Ingredient").
		Offset(offset).
		Limit(limit).
		Order("recipes.created_at desc").
		Find(&recipes).Error; err != nil {
		return nil, 0, err
	}

	return recipes, count, nil
}

func (r *recipeRepository) GetRecipesByAuthor(ctx context.Context, authorID string, limit int) ([]*entities.Recipe, error) {
	var recipes []*entities.Recipe
	query := r.db.WithContext(ctx).
		Where("author_id = ?", authorID).
		Order("created_at desc")
	if limit > 0 {
		query = query.Limit(limit)
	}
	if err := query.Find(&recipes).Error; err != nil {
		return nil, err
	}
	return recipes, nil
}

func (r *recipeRepository) CountRecipesByAuthor(ctx context.Context, authorID string) (int64, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&entities.Recipe{}).
		Where("author_id = ?", authorID).
		Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// AddFavorite leaves duplicate detection to the unique pair index; the
// loser of a concurrent insert gets gorm.ErrDuplicatedKey.
func (r *recipeRepository) AddFavorite(ctx context.Context, userID, recipeID uuid.UUID) error {
	favorite := entities.FavoriteRecipe{
		ID:        uuid.New(),
		UserID:    userID,
		RecipeID:  recipeID,
		CreatedAt: time.Now(),
	}
	return r.db.WithContext(ctx).Create(&favorite).Error
}

func (r *recipeRepository) RemoveFavorite(ctx context.Context, userID, recipeID string) (int64, error) {
	res := r.db.WithContext(ctx).
		Where("user_id = ? AND recipe_id = ?", userID, recipeID).
		Delete(&entities.FavoriteRecipe{})
	return res.RowsAffected, res.Error
}

func (r *recipeRepository) AddCartEntry(ctx context.Context, userID, recipeID uuid.UUID) error {
	entry := entities.ShoppingCartEntry{
		ID:        uuid.New(),
		UserID:    userID,
		RecipeID:  recipeID,
		CreatedAt: time.Now(),
	}
	return r.db.WithContext(ctx).Create(&entry).Error
}

func (r *recipeRepository) RemoveCartEntry(ctx context.Context, userID, recipeID string) (int64, error) {
	res := r.db.WithContext(ctx).
		Where("user_id = ? AND recipe_id = ?", userID, recipeID).
		Delete(&entities.ShoppingCartEntry{})
	return res.RowsAffected, res.Error
}

func (r *recipeRepository) GetFavoriteSet(ctx context.Context, userID string, recipeIDs []uuid.UUID) (map[uuid.UUID]bool, error) {
	var ids []uuid.UUID
	if err := r.db.WithContext(ctx).
		Model(&entities.FavoriteRecipe{}).
		Where("user_id = ? AND recipe_id IN ?", userID, recipeIDs).
		Pluck("recipe_id", &ids).Error; err != nil {
		return nil, err
	}
	return toSet(ids), nil
}

func (r *recipeRepository) GetCartSet(ctx context.Context, userID string, recipeIDs []uuid.UUID) (map[uuid.UUID]bool, error) {
	var ids []uuid.UUID
	if err := r.db.WithContext(ctx).
		Model(&entities.ShoppingCartEntry{}).
		Where("user_id = ? AND recipe_id IN ?", userID, recipeIDs).
		Pluck("recipe_id", &ids).Error; err != nil {
		return nil, err
	}
	return toSet(ids), nil
}

func (r *recipeRepository) GetSubscribedAuthorSet(ctx context.Context, userID string, authorIDs []uuid.UUID) (map[uuid.UUID]bool, error) {
	var ids []uuid.UUID
	if err := r.db.WithContext(ctx).
		Model(&entities.Subscription{}).
		Where("user_id = ? AND author_id IN ?", userID, authorIDs).
		Pluck("author_id", &ids).Error; err != nil {
		return nil, err
	}
	return toSet(ids), nil
}

func toSet(ids []uuid.UUID) map[uuid.UUID]bool {
	set := make(map[uuid.UUID]bool, len(ids))
	for _, id := range ids {
		set[id] = true
	}
	return set
}
