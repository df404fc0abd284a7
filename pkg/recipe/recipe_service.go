package recipe

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"strings"

	"foodgram/domain"
	"foodgram/entities"
	"foodgram/internal/utils/storage"
	"foodgram/pkg/catalog"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type (
	RecipeService interface {
		GetRecipes(ctx context.Context, filter domain.RecipeFilter, requesterID string, page, limit int) (domain.RecipeListResponse, error)
		GetRecipeDetail(ctx context.Context, recipeID, requesterID string) (domain.RecipeResponse, error)
		CreateRecipe(ctx context.Context, req domain.CreateRecipeRequest, authorID string) (domain.RecipeResponse, error)
		UpdateRecipe(ctx context.Context, recipeID string, req domain.UpdateRecipeRequest, requesterID string) (domain.RecipeResponse, error)
		DeleteRecipe(ctx context.Context, recipeID, requesterID string) error

		Favorite(ctx context.Context, recipeID, userID string) (domain.RecipeShortResponse, error)
		Unfavorite(ctx context.Context, recipeID, userID string) error
		AddToShoppingCart(ctx context.Context, recipeID, userID string) (domain.RecipeShortResponse, error)
		RemoveFromShoppingCart(ctx context.Context, recipeID, userID string) error
	}

	recipeService struct {
		recipeRepository  RecipeRepository
		catalogRepository catalog.CatalogRepository
		s3                storage.AwsS3
	}
)

func NewRecipeService(recipeRepository RecipeRepository, catalogRepository catalog.CatalogRepository, s3 storage.AwsS3) RecipeService {
	return &recipeService{
		recipeRepository:  recipeRepository,
		catalogRepository: catalogRepository,
		s3:                s3,
	}
}

// validateIngredientLines checks bounds, rejects duplicate ingredient ids
// and resolves every id against the catalog before anything is written.
func (s *recipeService) validateIngredientLines(ctx context.Context, reqs []domain.IngredientLineRequest) ([]entities.RecipeIngredient, error) {
	if len(reqs) == 0 {
		return nil, domain.ErrNoIngredientLines
	}

	seen := make(map[string]bool, len(reqs))
	ids := make([]string, 0, len(reqs))
	lines := make([]entities.RecipeIngredient, 0, len(reqs))
	for _, line := range reqs {
		if line.Amount < domain.MinAmount || line.Amount > domain.MaxAmount {
			return nil, domain.ErrAmountOutOfRange
		}
		if seen[line.ID] {
			return nil, domain.ErrDuplicateIngredient
		}
		seen[line.ID] = true

		ingredientID, err := uuid.Parse(line.ID)
		if err != nil {
			return nil, domain.ErrParseUUID
		}
		ids = append(ids, line.ID)
		lines = append(lines, entities.RecipeIngredient{
			ID:           uuid.New(),
			IngredientID: ingredientID,
			Amount:       line.Amount,
		})
	}

	ingredients, err := s.catalogRepository.GetIngredientsByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}
	if len(ingredients) != len(ids) {
		return nil, domain.ErrUnknownIngredient
	}
	return lines, nil
}

// validateTags rejects duplicates and resolves ids against the catalog.
func (s *recipeService) validateTags(ctx context.Context, tagIDs []string) ([]entities.Tag, error) {
	if len(tagIDs) == 0 {
		return nil, domain.ErrNoTags
	}

	seen := make(map[string]bool, len(tagIDs))
	for _, id := range tagIDs {
		if seen[id] {
			return nil, domain.ErrDuplicateTag
		}
		seen[id] = true
	}

	tags, err := s.catalogRepository.GetTagsByIDs(ctx, tagIDs)
	if err != nil {
		return nil, err
	}
	if len(tags) != len(tagIDs) {
		return nil, domain.ErrUnknownTag
	}

	res := make([]entities.Tag, 0, len(tags))
	for _, tag := range tags {
		res = append(res, *tag)
	}
	return res, nil
}

var imageExtensions = map[string]string{
	"image/jpeg": ".jpg",
	"image/png":  ".png",
	"image/webp": ".webp",
}

// uploadImage decodes a base64 data URI ("data:image/png;base64,....") and
// stores the bytes in S3, returning the public link.
func (s *recipeService) uploadImage(payload string) (string, error) {
	contentType := "image/jpeg"
	encoded := payload
	if strings.HasPrefix(payload, "data:") {
		meta, rest, found := strings.Cut(strings.TrimPrefix(payload, "data:"), ",")
		if !found {
			return "", domain.ErrInvalidImagePayload
		}
		contentType = strings.TrimSuffix(meta, ";base64")
		encoded = rest
	}

	ext, ok := imageExtensions[contentType]
	if !ok {
		return "", domain.ErrInvalidImagePayload
	}

	data, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		return "", domain.ErrInvalidImagePayload
	}

	fileName := fmt.Sprintf("%s%s", uuid.New().String(), ext)
	objectKey, err := s.s3.UploadBytes(fileName, data, contentType, "recipes", storage.AllowImage...)
	if err != nil {
		return "", err
	}
	return s.s3.GetPublicLinkKey(objectKey), nil
}

func (s *recipeService) CreateRecipe(ctx context.Context, req domain.CreateRecipeRequest, authorID string) (domain.RecipeResponse, error) {
	authorUUID, err := uuid.Parse(authorID)
	if err != nil {
		return domain.RecipeResponse{}, domain.ErrParseUUID
	}

	if req.CookingTime < domain.MinAmount || req.CookingTime > domain.MaxAmount {
		return domain.RecipeResponse{}, domain.ErrCookingTimeOutOfRange
	}

	lines, err := s.validateIngredientLines(ctx, req.Ingredients)
	if err != nil {
		return domain.RecipeResponse{}, err
	}

	tags, err := s.validateTags(ctx, req.Tags)
	if err != nil {
		return domain.RecipeResponse{}, err
	}

	imageURL := ""
	if req.Image != "" {
		imageURL, err = s.uploadImage(req.Image)
		if err != nil {
			return domain.RecipeResponse{}, err
		}
	}

	recipe := &entities.Recipe{
		ID:          uuid.New(),
		AuthorID:    authorUUID,
		Name:        req.Name,
		Text:        req.Text,
		ImageURL:    imageURL,
		CookingTime: req.CookingTime,
		Tags:        tags,
	}
	if err := s.recipeRepository.CreateRecipe(ctx, recipe, lines); err != nil {
		return domain.RecipeResponse{}, err
	}

	return s.GetRecipeDetail(ctx, recipe.ID.String(), authorID)
}

func (s *recipeService) UpdateRecipe(ctx context.Context, recipeID string, req domain.UpdateRecipeRequest, requesterID string) (domain.RecipeResponse, error) {
	recipe, err := s.recipeRepository.GetRecipeByID(ctx, recipeID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domain.RecipeResponse{}, domain.ErrRecipeNotFound
		}
		return domain.RecipeResponse{}, err
	}

	if recipe.AuthorID.String() != requesterID {
		return domain.RecipeResponse{}, domain.ErrNotRecipeAuthor
	}

	var lines []entities.RecipeIngredient
	if req.Ingredients != nil {
		lines, err = s.validateIngredientLines(ctx, req.Ingredients)
		if err != nil {
			return domain.RecipeResponse{}, err
		}
	}

	var tags []entities.Tag
	if req.Tags != nil {
		tags, err = s.validateTags(ctx, req.Tags)
		if err != nil {
			return domain.RecipeResponse{}, err
		}
	}

	if req.Name != nil {
		recipe.Name = *req.Name
	}
	if req.Text != nil {
		recipe.Text = *req.Text
	}
	if req.CookingTime != nil {
		if *req.CookingTime < domain.MinAmount || *req.CookingTime > domain.MaxAmount {
			return domain.RecipeResponse{}, domain.ErrCookingTimeOutOfRange
		}
		recipe.CookingTime = *req.CookingTime
	}
	if req.Image != nil && *req.Image != "" {
		oldKey := s.s3.GetObjectKeyFromLink(recipe.ImageURL)
		imageURL, err := s.uploadImage(*req.Image)
		if err != nil {
			return domain.RecipeResponse{}, err
		}
		recipe.ImageURL = imageURL
		if oldKey != "" {
			_ = s.s3.DeleteFile(oldKey)
		}
	}

	if err := s.recipeRepository.UpdateRecipe(ctx, recipe, lines, tags, req.Ingredients != nil, req.Tags != nil); err != nil {
		return domain.RecipeResponse{}, err
	}

	return s.GetRecipeDetail(ctx, recipeID, requesterID)
}

func (s *recipeService) DeleteRecipe(ctx context.Context, recipeID, requesterID string) error {
	recipe, err := s.recipeRepository.GetRecipeByID(ctx, recipeID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domain.ErrRecipeNotFound
		}
		return err
	}

	if recipe.AuthorID.String() != requesterID {
		return domain.ErrNotRecipeAuthor
	}

	if err := s.recipeRepository.DeleteRecipe(ctx, recipeID); err != nil {
		return err
	}

	if recipe.ImageURL != "" {
		_ = s.s3.DeleteFile(s.s3.GetObjectKeyFromLink(recipe.ImageURL))
	}
	return nil
}

func (s *recipeService) GetRecipeDetail(ctx context.Context, recipeID, requesterID string) (domain.RecipeResponse, error) {
	recipe, err := s.recipeRepository.GetRecipeByID(ctx, recipeID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domain.RecipeResponse{}, domain.ErrRecipeNotFound
		}
		return domain.RecipeResponse{}, err
	}

	favSet, cartSet, subSet, err := s.relationSets(ctx, requesterID, []*entities.Recipe{recipe})
	if err != nil {
		return domain.RecipeResponse{}, err
	}
	return toRecipeResponse(recipe, favSet, cartSet, subSet), nil
}

func (s *recipeService) GetRecipes(ctx context.Context, filter domain.RecipeFilter, requesterID string, page, limit int) (domain.RecipeListResponse, error) {
	recipes, total, err := s.recipeRepository.GetRecipes(ctx, filter, requesterID, page, limit)
	if err != nil {
		return domain.RecipeListResponse{}, err
	}

	favSet, cartSet, subSet, err := s.relationSets(ctx, requesterID, recipes)
	if err != nil {
		return domain.RecipeListResponse{}, err
	}

	res := make([]domain.RecipeResponse, 0, len(recipes))
	for _, recipe := range recipes {
		res = append(res, toRecipeResponse(recipe, favSet, cartSet, subSet))
	}

	return domain.RecipeListResponse{
		Recipes: res,
		Total:   total,
		Page:    page,
		Limit:   limit,
	}, nil
}

// relationSets resolves the requester-relative flags in three set queries.
// Anonymous requesters get empty sets, so every flag reads false.
func (s *recipeService) relationSets(ctx context.Context, requesterID string, recipes []*entities.Recipe) (favSet, cartSet, subSet map[uuid.UUID]bool, err error) {
	if requesterID == "" || len(recipes) == 0 {
		return nil, nil, nil, nil
	}

	recipeIDs := make([]uuid.UUID, 0, len(recipes))
	authorIDs := make([]uuid.UUID, 0, len(recipes))
	for _, recipe := range recipes {
		recipeIDs = append(recipeIDs, recipe.ID)
		authorIDs = append(authorIDs, recipe.AuthorID)
	}

	if favSet, err = s.recipeRepository.GetFavoriteSet(ctx, requesterID, recipeIDs); err != nil {
		return nil, nil, nil, err
	}
	if cartSet, err = s.recipeRepository.GetCartSet(ctx, requesterID, recipeIDs); err != nil {
		return nil, nil, nil, err
	}
	if subSet, err = s.recipeRepository.GetSubscribedAuthorSet(ctx, requesterID, authorIDs); err != nil {
		return nil, nil, nil, err
	}
	return favSet, cartSet, subSet, nil
}

func (s *recipeService) Favorite(ctx context.Context, recipeID, userID string) (domain.RecipeShortResponse, error) {
	recipe, userUUID, err := s.lookupPair(ctx, recipeID, userID)
	if err != nil {
		return domain.RecipeShortResponse{}, err
	}

	if err := s.recipeRepository.AddFavorite(ctx, userUUID, recipe.ID); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return domain.RecipeShortResponse{}, domain.ErrAlreadyFavorited
		}
		return domain.RecipeShortResponse{}, err
	}
	return toRecipeShortResponse(recipe), nil
}

func (s *recipeService) Unfavorite(ctx context.Context, recipeID, userID string) error {
	if _, _, err := s.lookupPair(ctx, recipeID, userID); err != nil {
		return err
	}

	rows, err := s.recipeRepository.RemoveFavorite(ctx, userID, recipeID)
	if err != nil {
		return err
	}
	if rows == 0 {
		return domain.ErrNotFavorited
	}
	return nil
}

func (s *recipeService) AddToShoppingCart(ctx context.Context, recipeID, userID string) (domain.RecipeShortResponse, error) {
	recipe, userUUID, err := s.lookupPair(ctx, recipeID, userID)
	if err != nil {
		return domain.RecipeShortResponse{}, err
	}

	if err := s.recipeRepository.AddCartEntry(ctx, userUUID, recipe.ID); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return domain.RecipeShortResponse{}, domain.ErrAlreadyInShoppingCart
		}
		return domain.RecipeShortResponse{}, err
	}
	return toRecipeShortResponse(recipe), nil
}

func (s *recipeService) RemoveFromShoppingCart(ctx context.Context, recipeID, userID string) error {
	if _, _, err := s.lookupPair(ctx, recipeID, userID); err != nil {
		return err
	}

	rows, err := s.recipeRepository.RemoveCartEntry(ctx, userID, recipeID)
	if err != nil {
		return err
	}
	if rows == 0 {
		return domain.ErrNotInShoppingCart
	}
	return nil
}

func (s *recipeService) lookupPair(ctx context.Context, recipeID, userID string) (*entities.Recipe, uuid.UUID, error) {
	userUUID, err := uuid.Parse(userID)
	if err != nil {
		return nil, uuid.Nil, domain.ErrParseUUID
	}

	recipe, err := s.recipeRepository.GetRecipeByID(ctx, recipeID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, uuid.Nil, domain.ErrRecipeNotFound
		}
		return nil, uuid.Nil, err
	}
	return recipe, userUUID, nil
}

func toRecipeResponse(recipe *entities.Recipe, favSet, cartSet, subSet map[uuid.UUID]bool) domain.RecipeResponse {
	ingredients := make([]domain.IngredientLineResponse, 0, len(recipe.IngredientLines))
	for _, line := range recipe.IngredientLines {
		res := domain.IngredientLineResponse{
			ID:     line.IngredientID.String(),
			Amount: line.Amount,
		}
		if line.Ingredient != nil {
			res.Name = line.Ingredient.Name
			res.MeasurementUnit = line.Ingredient.MeasurementUnit
		}
		ingredients = append(ingredients, res)
	}

	tags := make([]domain.TagResponse, 0, len(recipe.Tags))
	for _, tag := range recipe.Tags {
		tags = append(tags, domain.TagResponse{
			ID:    tag.ID.String(),
			Name:  tag.Name,
			Color: tag.Color,
			Slug:  tag.Slug,
		})
	}

	author := domain.UserResponse{ID: recipe.AuthorID.String()}
	if recipe.Author != nil {
		author.Email = recipe.Author.Email
		author.Username = recipe.Author.Username
		author.FirstName = recipe.Author.FirstName
		author.LastName = recipe.Author.LastName
	}
	author.IsSubscribed = subSet[recipe.AuthorID]

	return domain.RecipeResponse{
		ID:               recipe.ID.String(),
		Author:           author,
		Name:             recipe.Name,
		Text:             recipe.Text,
		ImageURL:         recipe.ImageURL,
		CookingTime:      recipe.CookingTime,
		CreatedAt:        recipe.CreatedAt,
		Ingredients:      ingredients,
		Tags:             tags,
		IsFavorited:      favSet[recipe.ID],
		IsInShoppingCart: cartSet[recipe.ID],
	}
}

func toRecipeShortResponse(recipe *entities.Recipe) domain.RecipeShortResponse {
	return domain.RecipeShortResponse{
		ID:          recipe.ID.String(),
		Name:        recipe.Name,
		ImageURL:    recipe.ImageURL,
		CookingTime: recipe.CookingTime,
	}
}
