package domain

import (
	"errors"
	"time"
)

// Bounds shared by cooking time and ingredient amounts.
const (
	MinAmount = 1
	MaxAmount = 32000
)

var (
	MessageSuccessGetRecipes      = "success get recipes"
	MessageSuccessGetRecipeDetail = "success get recipe detail"
	MessageSuccessCreateRecipe    = "recipe created successfully"
	MessageSuccessUpdateRecipe    = "recipe updated successfully"
	MessageSuccessFavorite        = "recipe added to favorites"
	MessageSuccessAddToCart       = "recipe added to shopping cart"

	MessageFailedGetRecipes      = "failed to get recipes"
	MessageFailedGetRecipeDetail = "failed to get recipe detail"
	MessageFailedCreateRecipe    = "failed to create recipe"
	MessageFailedUpdateRecipe    = "failed to update recipe"
	MessageFailedDeleteRecipe    = "failed to delete recipe"
	MessageFailedFavorite        = "failed to add recipe to favorites"
	MessageFailedUnfavorite      = "failed to remove recipe from favorites"
	MessageFailedAddToCart       = "failed to add recipe to shopping cart"
	MessageFailedRemoveFromCart  = "failed to remove recipe from shopping cart"

	ErrRecipeNotFound        = errors.New("recipe not found")
	ErrNotRecipeAuthor       = errors.New("only the author may modify this recipe")
	ErrNoIngredientLines     = errors.New("recipe must contain at least one ingredient")
	ErrDuplicateIngredient   = errors.New("recipe contains a duplicate ingredient")
	ErrAmountOutOfRange      = errors.New("ingredient amount must be between 1 and 32000")
	ErrCookingTimeOutOfRange = errors.New("cooking time must be between 1 and 32000")
	ErrNoTags                = errors.New("recipe must have at least one tag")
	ErrDuplicateTag          = errors.New("recipe contains a duplicate tag")
	ErrUnknownIngredient     = errors.New("ingredient does not exist")
	ErrUnknownTag            = errors.New("tag does not exist")
	ErrInvalidImagePayload   = errors.New("invalid base64 image payload")
	ErrAlreadyFavorited      = errors.New("recipe already in favorites")
	ErrNotFavorited          = errors.New("recipe is not in favorites")
	ErrAlreadyInShoppingCart = errors.New("recipe already in shopping cart")
	ErrNotInShoppingCart     = errors.New("recipe is not in shopping cart")
)

type (
	IngredientLineRequest struct {
		ID     string `json:"id" validate:"required,uuid"`
		Amount int    `json:"amount" validate:"required,min=1,max=32000"`
	}

	CreateRecipeRequest struct {
		Name        string                  `json:"name" validate:"required,max=199"`
		Text        string                  `json:"text" validate:"required,max=1000"`
		Image       string                  `json:"image,omitempty"`
		CookingTime int                     `json:"cooking_time" validate:"required,min=1,max=32000"`
		Ingredients []IngredientLineRequest `json:"ingredients" validate:"required,min=1,dive"`
		Tags        []string                `json:"tags" validate:"required,min=1,dive,uuid"`
	}

	// UpdateRecipeRequest is a partial patch. Nil means "leave unchanged";
	// supplied ingredient or tag sets replace the previous set in full.
	UpdateRecipeRequest struct {
		Name        *string                 `json:"name,omitempty" validate:"omitempty,max=199"`
		Text        *string                 `json:"text,omitempty" validate:"omitempty,max=1000"`
		Image       *string                 `json:"image,omitempty"`
		CookingTime *int                    `json:"cooking_time,omitempty" validate:"omitempty,min=1,max=32000"`
		Ingredients []IngredientLineRequest `json:"ingredients,omitempty" validate:"omitempty,min=1,dive"`
		Tags        []string                `json:"tags,omitempty" validate:"omitempty,min=1,dive,uuid"`
	}

	IngredientLineResponse struct {
		ID              string `json:"id"`
		Name            string `json:"name"`
		MeasurementUnit string `json:"measurement_unit"`
		Amount          int    `json:"amount"`
	}

	RecipeResponse struct {
		ID               string                   `json:"id"`
		Author           UserResponse             `json:"author"`
		Name             string                   `json:"name"`
		Text             string                   `json:"text"`
		ImageURL         string                   `json:"image_url,omitempty"`
		CookingTime      int                      `json:"cooking_time"`
		CreatedAt        time.Time                `json:"created_at"`
		Ingredients      []IngredientLineResponse `json:"ingredients"`
		Tags             []TagResponse            `json:"tags"`
		IsFavorited      bool                     `json:"is_favorited"`
		IsInShoppingCart bool                     `json:"is_in_shopping_cart"`
	}

	// RecipeShortResponse is the compact projection used by favorites, cart
	// replies and subscription previews.
	RecipeShortResponse struct {
		ID          string `json:"id"`
		Name        string `json:"name"`
		ImageURL    string `json:"image_url,omitempty"`
		CookingTime int    `json:"cooking_time"`
	}

	RecipeFilter struct {
		TagSlugs         []string
		AuthorID         string
		IsFavorited      bool
		IsInShoppingCart bool
	}

	RecipeListResponse struct {
		Recipes []RecipeResponse `json:"recipes"`
		Total   int64            `json:"total"`
		Page    int              `json:"page"`
		Limit   int              `json:"limit"`
	}
)
