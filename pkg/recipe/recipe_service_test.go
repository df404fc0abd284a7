package recipe

import (
	"context"
	"strings"
	"testing"

	"foodgram/domain"
	"foodgram/entities"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

// --- fakes ---

type fakeRecipeRepo struct {
	recipes   map[uuid.UUID]*entities.Recipe
	lines     map[uuid.UUID][]entities.RecipeIngredient
	favorites map[string]bool
	cart      map[string]bool
}

func newFakeRecipeRepo() *fakeRecipeRepo {
	return &fakeRecipeRepo{
		recipes:   map[uuid.UUID]*entities.Recipe{},
		lines:     map[uuid.UUID][]entities.RecipeIngredient{},
		favorites: map[string]bool{},
		cart:      map[string]bool{},
	}
}

func pairKey(userID, recipeID string) string { return userID + "/" + recipeID }

func (f *fakeRecipeRepo) CreateRecipe(ctx context.Context, recipe *entities.Recipe, lines []entities.RecipeIngredient) error {
	for i := range lines {
		lines[i].RecipeID = recipe.ID
	}
	f.recipes[recipe.ID] = recipe
	f.lines[recipe.ID] = lines
	return nil
}

func (f *fakeRecipeRepo) UpdateRecipe(ctx context.Context, recipe *entities.Recipe, lines []entities.RecipeIngredient, tags []entities.Tag, replaceLines, replaceTags bool) error {
	f.recipes[recipe.ID] = recipe
	if replaceLines {
		for i := range lines {
			lines[i].RecipeID = recipe.ID
		}
		f.lines[recipe.ID] = lines
	}
	if replaceTags {
		recipe.Tags = tags
	}
	return nil
}

func (f *fakeRecipeRepo) DeleteRecipe(ctx context.Context, id string) error {
	recipeID := uuid.MustParse(id)
	delete(f.recipes, recipeID)
	delete(f.lines, recipeID)
	for key := range f.favorites {
		if strings.HasSuffix(key, "/"+id) {
			delete(f.favorites, key)
		}
	}
	for key := range f.cart {
		if strings.HasSuffix(key, "/"+id) {
			delete(f.cart, key)
		}
	}
	return nil
}

func (f *fakeRecipeRepo) GetRecipeByID(ctx context.Context, id string) (*entities.Recipe, error) {
	recipeID, err := uuid.Parse(id)
	if err != nil {
		return nil, gorm.ErrRecordNotFound
	}
	recipe, ok := f.recipes[recipeID]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	recipe.IngredientLines = f.lines[recipeID]
	return recipe, nil
}

func (f *fakeRecipeRepo) GetRecipes(ctx context.Context, filter domain.RecipeFilter, requesterID string, page, limit int) ([]*entities.Recipe, int64, error) {
	var recipes []*entities.Recipe
	for _, recipe := range f.recipes {
		recipes = append(recipes, recipe)
	}
	return recipes, int64(len(recipes)), nil
}

func (f *fakeRecipeRepo) GetRecipesByAuthor(ctx context.Context, authorID string, limit int) ([]*entities.Recipe, error) {
	return nil, nil
}

func (f *fakeRecipeRepo) CountRecipesByAuthor(ctx context.Context, authorID string) (int64, error) {
	return 0, nil
}

func (f *fakeRecipeRepo) AddFavorite(ctx context.Context, userID, recipeID uuid.UUID) error {
	key := pairKey(userID.String(), recipeID.String())
	if f.favorites[key] {
		return gorm.ErrDuplicatedKey
	}
	f.favorites[key] = true
	return nil
}

func (f *fakeRecipeRepo) RemoveFavorite(ctx context.Context, userID, recipeID string) (int64, error) {
	key := pairKey(userID, recipeID)
	if !f.favorites[key] {
		return 0, nil
	}
	delete(f.favorites, key)
	return 1, nil
}

func (f *fakeRecipeRepo) AddCartEntry(ctx context.Context, userID, recipeID uuid.UUID) error {
	key := pairKey(userID.String(), recipeID.String())
	if f.cart[key] {
		return gorm.ErrDuplicatedKey
	}
	f.cart[key] = true
	return nil
}

func (f *fakeRecipeRepo) RemoveCartEntry(ctx context.Context, userID, recipeID string) (int64, error) {
	key := pairKey(userID, recipeID)
	if !f.cart[key] {
		return 0, nil
	}
	delete(f.cart, key)
	return 1, nil
}

func (f *fakeRecipeRepo) GetFavoriteSet(ctx context.Context, userID string, recipeIDs []uuid.UUID) (map[uuid.UUID]bool, error) {
	set := map[uuid.UUID]bool{}
	for _, id := range recipeIDs {
		if f.favorites[pairKey(userID, id.String())] {
			set[id] = true
		}
	}
	return set, nil
}

func (f *fakeRecipeRepo) GetCartSet(ctx context.Context, userID string, recipeIDs []uuid.UUID) (map[uuid.UUID]bool, error) {
	set := map[uuid.UUID]bool{}
	for _, id := range recipeIDs {
		if f.cart[pairKey(userID, id.String())] {
			set[id] = true
		}
	}
	return set, nil
}

func (f *fakeRecipeRepo) GetSubscribedAuthorSet(ctx context.Context, userID string, authorIDs []uuid.UUID) (map[uuid.UUID]bool, error) {
	return map[uuid.UUID]bool{}, nil
}

type fakeCatalogRepo struct {
	ingredients map[string]*entities.Ingredient
	tags        map[string]*entities.Tag
}

func (f *fakeCatalogRepo) SearchIngredients(ctx context.Context, namePrefix string) ([]*entities.Ingredient, error) {
	return nil, nil
}

func (f *fakeCatalogRepo) GetIngredientsByIDs(ctx context.Context, ids []string) ([]*entities.Ingredient, error) {
	var res []*entities.Ingredient
	for _, id := range ids {
		if ingredient, ok := f.ingredients[id]; ok {
			res = append(res, ingredient)
		}
	}
	return res, nil
}

func (f *fakeCatalogRepo) CreateIngredient(ctx context.Context, ingredient *entities.Ingredient) error {
	f.ingredients[ingredient.ID.String()] = ingredient
	return nil
}

func (f *fakeCatalogRepo) GetTags(ctx context.Context) ([]*entities.Tag, error) { return nil, nil }

func (f *fakeCatalogRepo) GetTagsByIDs(ctx context.Context, ids []string) ([]*entities.Tag, error) {
	var res []*entities.Tag
	for _, id := range ids {
		if tag, ok := f.tags[id]; ok {
			res = append(res, tag)
		}
	}
	return res, nil
}

func (f *fakeCatalogRepo) GetTagsBySlugs(ctx context.Context, slugs []string) ([]*entities.Tag, error) {
	return nil, nil
}

func (f *fakeCatalogRepo) CreateTag(ctx context.Context, tag *entities.Tag) error {
	f.tags[tag.ID.String()] = tag
	return nil
}

type fakeS3 struct{}

func (fakeS3) UploadBytes(fileName string, data []byte, contentType string, folder string, allowed ...string) (string, error) {
	return folder + "/" + fileName, nil
}
func (fakeS3) DeleteFile(objectKey string) error        { return nil }
func (fakeS3) GetPublicLinkKey(objectKey string) string { return "https://cdn.test/" + objectKey }
func (fakeS3) GetObjectKeyFromLink(link string) string  { return "" }

// --- helpers ---

type fixture struct {
	svc        RecipeService
	recipeRepo *fakeRecipeRepo
	saltID     string
	sugarID    string
	tagID      string
	tagID2     string
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	salt := &entities.Ingredient{ID: uuid.New(), Name: "Salt", MeasurementUnit: "g"}
	sugar := &entities.Ingredient{ID: uuid.New(), Name: "Sugar", MeasurementUnit: "g"}
	breakfast := &entities.Tag{ID: uuid.New(), Name: "breakfast", Color: "#ff0000", Slug: "breakfast"}
	dinner := &entities.Tag{ID: uuid.New(), Name: "dinner", Color: "#00ff00", Slug: "dinner"}

	catalogRepo := &fakeCatalogRepo{
		ingredients: map[string]*entities.Ingredient{
			salt.ID.String():  salt,
			sugar.ID.String(): sugar,
		},
		tags: map[string]*entities.Tag{
			breakfast.ID.String(): breakfast,
			dinner.ID.String():    dinner,
		},
	}
	recipeRepo := newFakeRecipeRepo()

	return &fixture{
		svc:        NewRecipeService(recipeRepo, catalogRepo, fakeS3{}),
		recipeRepo: recipeRepo,
		saltID:     salt.ID.String(),
		sugarID:    sugar.ID.String(),
		tagID:      breakfast.ID.String(),
		tagID2:     dinner.ID.String(),
	}
}

func (f *fixture) validCreateRequest() domain.CreateRecipeRequest {
	return domain.CreateRecipeRequest{
		Name:        "Porridge",
		Text:        "Boil it.",
		CookingTime: 15,
		Ingredients: []domain.IngredientLineRequest{
			{ID: f.saltID, Amount: 5},
			{ID: f.sugarID, Amount: 10},
		},
		Tags: []string{f.tagID, f.tagID2},
	}
}

// --- tests ---

func TestCreateRecipe_PersistsAllLinesAndTags(t *testing.T) {
	f := newFixture(t)
	authorID := uuid.New().String()

	res, err := f.svc.CreateRecipe(context.Background(), f.validCreateRequest(), authorID)

	require.NoError(t, err)
	assert.Len(t, res.Ingredients, 2)
	assert.Len(t, res.Tags, 2)

	recipeID := uuid.MustParse(res.ID)
	assert.Len(t, f.recipeRepo.lines[recipeID], 2)
}

func TestCreateRecipe_ValidationErrors(t *testing.T) {
	f := newFixture(t)
	authorID := uuid.New().String()

	tests := []struct {
		name    string
		mutate  func(req *domain.CreateRecipeRequest)
		wantErr error
	}{
		{
			name:    "no ingredients",
			mutate:  func(req *domain.CreateRecipeRequest) { req.Ingredients = nil },
			wantErr: domain.ErrNoIngredientLines,
		},
		{
			name: "duplicate ingredient",
			mutate: func(req *domain.CreateRecipeRequest) {
				req.Ingredients = []domain.IngredientLineRequest{
					{ID: f.saltID, Amount: 5},
					{ID: f.saltID, Amount: 99},
				}
			},
			wantErr: domain.ErrDuplicateIngredient,
		},
		{
			name: "amount too small",
			mutate: func(req *domain.CreateRecipeRequest) {
				req.Ingredients[0].Amount = 0
			},
			wantErr: domain.ErrAmountOutOfRange,
		},
		{
			name: "amount too large",
			mutate: func(req *domain.CreateRecipeRequest) {
				req.Ingredients[0].Amount = 32001
			},
			wantErr: domain.ErrAmountOutOfRange,
		},
		{
			name: "unknown ingredient",
			mutate: func(req *domain.CreateRecipeRequest) {
				req.Ingredients[0].ID = uuid.New().String()
			},
			wantErr: domain.ErrUnknownIngredient,
		},
		{
			name:    "no tags",
			mutate:  func(req *domain.CreateRecipeRequest) { req.Tags = nil },
			wantErr: domain.ErrNoTags,
		},
		{
			name: "duplicate tag",
			mutate: func(req *domain.CreateRecipeRequest) {
				req.Tags = []string{f.tagID, f.tagID}
			},
			wantErr: domain.ErrDuplicateTag,
		},
		{
			name: "unknown tag",
			mutate: func(req *domain.CreateRecipeRequest) {
				req.Tags = []string{uuid.New().String()}
			},
			wantErr: domain.ErrUnknownTag,
		},
		{
			name:    "cooking time too small",
			mutate:  func(req *domain.CreateRecipeRequest) { req.CookingTime = 0 },
			wantErr: domain.ErrCookingTimeOutOfRange,
		},
		{
			name:    "cooking time too large",
			mutate:  func(req *domain.CreateRecipeRequest) { req.CookingTime = 32001 },
			wantErr: domain.ErrCookingTimeOutOfRange,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := f.validCreateRequest()
			tt.mutate(&req)

			_, err := f.svc.CreateRecipe(context.Background(), req, authorID)

			assert.ErrorIs(t, err, tt.wantErr)
			// Nothing may be persisted on a validation failure.
			assert.Empty(t, f.recipeRepo.recipes)
		})
	}
}

func TestUpdateRecipe_OnlyAuthor(t *testing.T) {
	f := newFixture(t)
	authorID := uuid.New().String()

	created, err := f.svc.CreateRecipe(context.Background(), f.validCreateRequest(), authorID)
	require.NoError(t, err)

	name := "Revised"
	_, err = f.svc.UpdateRecipe(context.Background(), created.ID, domain.UpdateRecipeRequest{Name: &name}, uuid.New().String())

	assert.ErrorIs(t, err, domain.ErrNotRecipeAuthor)
}

func TestUpdateRecipe_ReplacesIngredientSet(t *testing.T) {
	f := newFixture(t)
	authorID := uuid.New().String()

	created, err := f.svc.CreateRecipe(context.Background(), f.validCreateRequest(), authorID)
	require.NoError(t, err)

	res, err := f.svc.UpdateRecipe(context.Background(), created.ID, domain.UpdateRecipeRequest{
		Ingredients: []domain.IngredientLineRequest{{ID: f.saltID, Amount: 7}},
	}, authorID)

	require.NoError(t, err)
	require.Len(t, res.Ingredients, 1)
	assert.Equal(t, f.saltID, res.Ingredients[0].ID)
	assert.Equal(t, 7, res.Ingredients[0].Amount)
}

func TestDeleteRecipe_OnlyAuthor(t *testing.T) {
	f := newFixture(t)
	authorID := uuid.New().String()

	created, err := f.svc.CreateRecipe(context.Background(), f.validCreateRequest(), authorID)
	require.NoError(t, err)

	err = f.svc.DeleteRecipe(context.Background(), created.ID, uuid.New().String())
	assert.ErrorIs(t, err, domain.ErrNotRecipeAuthor)

	err = f.svc.DeleteRecipe(context.Background(), created.ID, authorID)
	require.NoError(t, err)

	_, err = f.svc.GetRecipeDetail(context.Background(), created.ID, authorID)
	assert.ErrorIs(t, err, domain.ErrRecipeNotFound)
}

func TestDeleteRecipe_RemovesRelationRows(t *testing.T) {
	f := newFixture(t)
	authorID := uuid.New().String()
	otherUser := uuid.New().String()

	created, err := f.svc.CreateRecipe(context.Background(), f.validCreateRequest(), authorID)
	require.NoError(t, err)

	_, err = f.svc.Favorite(context.Background(), created.ID, otherUser)
	require.NoError(t, err)
	_, err = f.svc.AddToShoppingCart(context.Background(), created.ID, otherUser)
	require.NoError(t, err)

	require.NoError(t, f.svc.DeleteRecipe(context.Background(), created.ID, authorID))

	assert.Empty(t, f.recipeRepo.favorites)
	assert.Empty(t, f.recipeRepo.cart)
}

func TestFavorite_DuplicateConflicts(t *testing.T) {
	f := newFixture(t)
	authorID := uuid.New().String()
	userID := uuid.New().String()

	created, err := f.svc.CreateRecipe(context.Background(), f.validCreateRequest(), authorID)
	require.NoError(t, err)

	_, err = f.svc.Favorite(context.Background(), created.ID, userID)
	require.NoError(t, err)

	_, err = f.svc.Favorite(context.Background(), created.ID, userID)
	assert.ErrorIs(t, err, domain.ErrAlreadyFavorited)
}

func TestFavoriteAndCartAreIndependent(t *testing.T) {
	f := newFixture(t)
	authorID := uuid.New().String()
	userID := uuid.New().String()

	created, err := f.svc.CreateRecipe(context.Background(), f.validCreateRequest(), authorID)
	require.NoError(t, err)

	_, err = f.svc.Favorite(context.Background(), created.ID, userID)
	require.NoError(t, err)

	// Favoriting must not imply cart membership.
	detail, err := f.svc.GetRecipeDetail(context.Background(), created.ID, userID)
	require.NoError(t, err)
	assert.True(t, detail.IsFavorited)
	assert.False(t, detail.IsInShoppingCart)

	// Removing a cart entry that never existed is a client error.
	err = f.svc.RemoveFromShoppingCart(context.Background(), created.ID, userID)
	assert.ErrorIs(t, err, domain.ErrNotInShoppingCart)
}

func TestUnfavorite_AbsentEntry(t *testing.T) {
	f := newFixture(t)
	authorID := uuid.New().String()

	created, err := f.svc.CreateRecipe(context.Background(), f.validCreateRequest(), authorID)
	require.NoError(t, err)

	err = f.svc.Unfavorite(context.Background(), created.ID, uuid.New().String())
	assert.ErrorIs(t, err, domain.ErrNotFavorited)
}

func TestRelationOps_UnknownRecipe(t *testing.T) {
	f := newFixture(t)
	userID := uuid.New().String()

	_, err := f.svc.Favorite(context.Background(), uuid.New().String(), userID)
	assert.ErrorIs(t, err, domain.ErrRecipeNotFound)

	_, err = f.svc.AddToShoppingCart(context.Background(), uuid.New().String(), userID)
	assert.ErrorIs(t, err, domain.ErrRecipeNotFound)
}

func TestGetRecipeDetail_AnonymousFlagsAreFalse(t *testing.T) {
	f := newFixture(t)
	authorID := uuid.New().String()

	created, err := f.svc.CreateRecipe(context.Background(), f.validCreateRequest(), authorID)
	require.NoError(t, err)

	detail, err := f.svc.GetRecipeDetail(context.Background(), created.ID, "")

	require.NoError(t, err)
	assert.False(t, detail.IsFavorited)
	assert.False(t, detail.IsInShoppingCart)
	assert.False(t, detail.Author.IsSubscribed)
}
