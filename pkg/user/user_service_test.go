package user

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"foodgram/domain"
	"foodgram/entities"
	"foodgram/pkg/recipe"

	jwtlib "github.com/golang-jwt/jwt/v4"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// --- fakes ---

type fakeUserRepo struct {
	users         map[uuid.UUID]*entities.User
	subscriptions map[string]time.Time
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{
		users:         map[uuid.UUID]*entities.User{},
		subscriptions: map[string]time.Time{},
	}
}

func subKey(userID, authorID string) string { return userID + "/" + authorID }

func (f *fakeUserRepo) CreateUser(ctx context.Context, user *entities.User) error {
	f.users[user.ID] = user
	return nil
}

func (f *fakeUserRepo) GetUserByID(ctx context.Context, id string) (*entities.User, error) {
	userID, err := uuid.Parse(id)
	if err != nil {
		return nil, gorm.ErrRecordNotFound
	}
	user, ok := f.users[userID]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return user, nil
}

func (f *fakeUserRepo) GetUserByEmail(ctx context.Context, email string) (*entities.User, error) {
	for _, user := range f.users {
		if user.Email == email {
			return user, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeUserRepo) GetUserByUsername(ctx context.Context, username string) (*entities.User, error) {
	for _, user := range f.users {
		if user.Username == username {
			return user, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeUserRepo) UpdateUser(ctx context.Context, user *entities.User) error {
	f.users[user.ID] = user
	return nil
}

func (f *fakeUserRepo) CreateSubscription(ctx context.Context, userID, authorID uuid.UUID) error {
	key := subKey(userID.String(), authorID.String())
	if _, ok := f.subscriptions[key]; ok {
		return gorm.ErrDuplicatedKey
	}
	f.subscriptions[key] = time.Now()
	return nil
}

func (f *fakeUserRepo) DeleteSubscription(ctx context.Context, userID, authorID string) (int64, error) {
	key := subKey(userID, authorID)
	if _, ok := f.subscriptions[key]; !ok {
		return 0, nil
	}
	delete(f.subscriptions, key)
	return 1, nil
}

func (f *fakeUserRepo) GetSubscribedAuthors(ctx context.Context, userID string) ([]*entities.User, error) {
	var authors []*entities.User
	for key := range f.subscriptions {
		if strings.HasPrefix(key, userID+"/") {
			authorID := uuid.MustParse(strings.TrimPrefix(key, userID+"/"))
			if author, ok := f.users[authorID]; ok {
				authors = append(authors, author)
			}
		}
	}
	return authors, nil
}

// fakeRecipeRepo serves the subscription previews; everything else is unused
// by the user service.
type fakeRecipeRepo struct {
	byAuthor map[string][]*entities.Recipe
}

func (f *fakeRecipeRepo) CreateRecipe(ctx context.Context, r *entities.Recipe, lines []entities.RecipeIngredient) error {
	return nil
}
func (f *fakeRecipeRepo) UpdateRecipe(ctx context.Context, r *entities.Recipe, lines []entities.RecipeIngredient, tags []entities.Tag, replaceLines, replaceTags bool) error {
	return nil
}
func (f *fakeRecipeRepo) DeleteRecipe(ctx context.Context, id string) error { return nil }
func (f *fakeRecipeRepo) GetRecipeByID(ctx context.Context, id string) (*entities.Recipe, error) {
	return nil, gorm.ErrRecordNotFound
}
func (f *fakeRecipeRepo) GetRecipes(ctx context.Context, filter domain.RecipeFilter, requesterID string, page, limit int) ([]*entities.Recipe, int64, error) {
	return nil, 0, nil
}
func (f *fakeRecipeRepo) GetRecipesByAuthor(ctx context.Context, authorID string, limit int) ([]*entities.Recipe, error) {
	recipes := f.byAuthor[authorID]
	if limit > 0 && len(recipes) > limit {
		recipes = recipes[:limit]
	}
	return recipes, nil
}
func (f *fakeRecipeRepo) CountRecipesByAuthor(ctx context.Context, authorID string) (int64, error) {
	return int64(len(f.byAuthor[authorID])), nil
}
func (f *fakeRecipeRepo) AddFavorite(ctx context.Context, userID, recipeID uuid.UUID) error {
	return nil
}
func (f *fakeRecipeRepo) RemoveFavorite(ctx context.Context, userID, recipeID string) (int64, error) {
	return 0, nil
}
func (f *fakeRecipeRepo) AddCartEntry(ctx context.Context, userID, recipeID uuid.UUID) error {
	return nil
}
func (f *fakeRecipeRepo) RemoveCartEntry(ctx context.Context, userID, recipeID string) (int64, error) {
	return 0, nil
}
func (f *fakeRecipeRepo) GetFavoriteSet(ctx context.Context, userID string, recipeIDs []uuid.UUID) (map[uuid.UUID]bool, error) {
	return nil, nil
}
func (f *fakeRecipeRepo) GetCartSet(ctx context.Context, userID string, recipeIDs []uuid.UUID) (map[uuid.UUID]bool, error) {
	return nil, nil
}
func (f *fakeRecipeRepo) GetSubscribedAuthorSet(ctx context.Context, userID string, authorIDs []uuid.UUID) (map[uuid.UUID]bool, error) {
	return nil, nil
}

var _ recipe.RecipeRepository = (*fakeRecipeRepo)(nil)

// fakeJWT fails mail token generation so no mail provider is dialed; user
// tokens are static.
type fakeJWT struct{}

func (fakeJWT) GenerateTokenUser(userID string, role string) string { return "token-" + userID }
func (fakeJWT) ValidateTokenUser(token string) (*jwtlib.Token, error) {
	return nil, domain.ErrTokenInvalid
}
func (fakeJWT) GetUserIDByToken(token string) (string, string, error) {
	return "", "", domain.ErrTokenInvalid
}
func (fakeJWT) GenerateMailToken(data map[string]any, duration time.Duration) (string, error) {
	return "", errors.New("mail tokens disabled")
}
func (fakeJWT) ValidateMailToken(token string) (jwtlib.MapClaims, error) {
	return jwtlib.MapClaims{}, domain.ErrTokenInvalid
}

// --- helpers ---

func newService(repo *fakeUserRepo, recipes *fakeRecipeRepo) UserService {
	if recipes == nil {
		recipes = &fakeRecipeRepo{byAuthor: map[string][]*entities.Recipe{}}
	}
	return NewUserService(repo, recipes, fakeJWT{})
}

func seedUser(t *testing.T, repo *fakeUserRepo, username, email, password string) *entities.User {
	t.Helper()
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	require.NoError(t, err)

	user := &entities.User{
		ID:       uuid.New(),
		Email:    email,
		Username: username,
		Password: string(hashed),
		Role:     domain.RoleUser,
	}
	repo.users[user.ID] = user
	return user
}

// --- tests ---

func TestRegister_Succeeds(t *testing.T) {
	repo := newFakeUserRepo()
	svc := newService(repo, nil)

	res, err := svc.Register(context.Background(), domain.RegisterUserRequest{
		Email:    "ada@example.com",
		Username: "ada",
		Password: "correct horse",
	})

	require.NoError(t, err)
	assert.Equal(t, "ada@example.com", res.Email)
	assert.Equal(t, "ada", res.Username)

	stored, err := repo.GetUserByEmail(context.Background(), "ada@example.com")
	require.NoError(t, err)
	assert.NotEqual(t, "correct horse", stored.Password)
	assert.False(t, stored.IsVerified)
}

func TestRegister_DuplicateEmail(t *testing.T) {
	repo := newFakeUserRepo()
	seedUser(t, repo, "ada", "ada@example.com", "pw123456")
	svc := newService(repo, nil)

	_, err := svc.Register(context.Background(), domain.RegisterUserRequest{
		Email:    "ada@example.com",
		Username: "other",
		Password: "pw123456",
	})

	assert.ErrorIs(t, err, domain.ErrEmailAlreadyUsed)
}

func TestRegister_DuplicateUsername(t *testing.T) {
	repo := newFakeUserRepo()
	seedUser(t, repo, "ada", "ada@example.com", "pw123456")
	svc := newService(repo, nil)

	_, err := svc.Register(context.Background(), domain.RegisterUserRequest{
		Email:    "other@example.com",
		Username: "ada",
		Password: "pw123456",
	})

	assert.ErrorIs(t, err, domain.ErrUsernameTaken)
}

func TestLogin(t *testing.T) {
	repo := newFakeUserRepo()
	user := seedUser(t, repo, "ada", "ada@example.com", "pw123456")
	svc := newService(repo, nil)

	res, err := svc.Login(context.Background(), domain.LoginRequest{
		Email:    "ada@example.com",
		Password: "pw123456",
	})
	require.NoError(t, err)
	assert.Equal(t, "token-"+user.ID.String(), res.Token)

	_, err = svc.Login(context.Background(), domain.LoginRequest{
		Email:    "ada@example.com",
		Password: "wrong",
	})
	assert.ErrorIs(t, err, domain.ErrCredentialsInvalid)

	_, err = svc.Login(context.Background(), domain.LoginRequest{
		Email:    "nobody@example.com",
		Password: "pw123456",
	})
	assert.ErrorIs(t, err, domain.ErrCredentialsInvalid)
}

func TestUpdateUser_UsernameTaken(t *testing.T) {
	repo := newFakeUserRepo()
	user := seedUser(t, repo, "ada", "ada@example.com", "pw123456")
	seedUser(t, repo, "grace", "grace@example.com", "pw123456")
	svc := newService(repo, nil)

	_, err := svc.UpdateUser(context.Background(), domain.UpdateUserRequest{Username: "grace"}, user.ID.String())
	assert.ErrorIs(t, err, domain.ErrUsernameTaken)

	res, err := svc.UpdateUser(context.Background(), domain.UpdateUserRequest{FirstName: "Ada"}, user.ID.String())
	require.NoError(t, err)
	assert.Equal(t, "Ada", res.FirstName)
}

func TestSubscribe_Self(t *testing.T) {
	repo := newFakeUserRepo()
	user := seedUser(t, repo, "ada", "ada@example.com", "pw123456")
	svc := newService(repo, nil)

	_, err := svc.Subscribe(context.Background(), user.ID.String(), user.ID.String(), 3)

	assert.ErrorIs(t, err, domain.ErrSelfSubscription)
}

func TestSubscribe_UnknownAuthor(t *testing.T) {
	repo := newFakeUserRepo()
	user := seedUser(t, repo, "ada", "ada@example.com", "pw123456")
	svc := newService(repo, nil)

	_, err := svc.Subscribe(context.Background(), user.ID.String(), uuid.New().String(), 3)

	assert.ErrorIs(t, err, domain.ErrUserNotFound)
}

func TestSubscribe_Duplicate(t *testing.T) {
	repo := newFakeUserRepo()
	user := seedUser(t, repo, "ada", "ada@example.com", "pw123456")
	author := seedUser(t, repo, "grace", "grace@example.com", "pw123456")
	svc := newService(repo, nil)

	_, err := svc.Subscribe(context.Background(), user.ID.String(), author.ID.String(), 3)
	require.NoError(t, err)

	_, err = svc.Subscribe(context.Background(), user.ID.String(), author.ID.String(), 3)
	assert.ErrorIs(t, err, domain.ErrAlreadySubscribed)
}

func TestSubscribe_ReturnsRecipePreview(t *testing.T) {
	repo := newFakeUserRepo()
	user := seedUser(t, repo, "ada", "ada@example.com", "pw123456")
	author := seedUser(t, repo, "grace", "grace@example.com", "pw123456")

	recipes := &fakeRecipeRepo{byAuthor: map[string][]*entities.Recipe{
		author.ID.String(): {
			{ID: uuid.New(), Name: "Soup", CookingTime: 30},
			{ID: uuid.New(), Name: "Stew", CookingTime: 90},
			{ID: uuid.New(), Name: "Pie", CookingTime: 45},
		},
	}}
	svc := newService(repo, recipes)

	sub, err := svc.Subscribe(context.Background(), user.ID.String(), author.ID.String(), 2)

	require.NoError(t, err)
	assert.Equal(t, "grace", sub.Username)
	assert.True(t, sub.IsSubscribed)
	assert.Equal(t, int64(3), sub.RecipesCount)
	require.Len(t, sub.Recipes, 2)
	assert.Equal(t, "Soup", sub.Recipes[0].Name)
}

func TestUnsubscribe(t *testing.T) {
	repo := newFakeUserRepo()
	user := seedUser(t, repo, "ada", "ada@example.com", "pw123456")
	author := seedUser(t, repo, "grace", "grace@example.com", "pw123456")
	svc := newService(repo, nil)

	err := svc.Unsubscribe(context.Background(), user.ID.String(), author.ID.String())
	assert.ErrorIs(t, err, domain.ErrNotSubscribed)

	_, err = svc.Subscribe(context.Background(), user.ID.String(), author.ID.String(), 3)
	require.NoError(t, err)

	require.NoError(t, svc.Unsubscribe(context.Background(), user.ID.String(), author.ID.String()))
	err = svc.Unsubscribe(context.Background(), user.ID.String(), author.ID.String())
	assert.ErrorIs(t, err, domain.ErrNotSubscribed)
}

func TestGetSubscriptions(t *testing.T) {
	repo := newFakeUserRepo()
	user := seedUser(t, repo, "ada", "ada@example.com", "pw123456")
	author := seedUser(t, repo, "grace", "grace@example.com", "pw123456")
	svc := newService(repo, nil)

	subs, err := svc.GetSubscriptions(context.Background(), user.ID.String(), 3)
	require.NoError(t, err)
	assert.Empty(t, subs)

	_, err = svc.Subscribe(context.Background(), user.ID.String(), author.ID.String(), 3)
	require.NoError(t, err)

	subs, err = svc.GetSubscriptions(context.Background(), user.ID.String(), 3)
	require.NoError(t, err)
	require.Len(t, subs, 1)
	assert.Equal(t, "grace", subs[0].Username)
}

func TestMe_UnknownUser(t *testing.T) {
	repo := newFakeUserRepo()
	svc := newService(repo, nil)

	_, err := svc.Me(context.Background(), uuid.New().String())

	assert.ErrorIs(t, err, domain.ErrUserNotFound)
}
