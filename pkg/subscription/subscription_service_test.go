package subscription

import (
	"context"
	"encoding/base64"
	"testing"

	"foodgram-backend/domain"
	"foodgram-backend/entities"
	"foodgram-backend/internal/utils/storage"
	"foodgram-backend/internal/utils/testdb"
	"foodgram-backend/pkg/ingredient"
	"foodgram-backend/pkg/recipe"
	"foodgram-backend/pkg/user"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type fixture struct {
	db      *gorm.DB
	svc     SubscriptionService
	repo    SubscriptionRepository
	recipes recipe.RecipeService
	flour   uint
}

func newFixture(t *testing.T) *fixture {
	db := testdb.New(t)
	subs := NewSubscriptionRepository(db)
	ingredients := ingredient.NewIngredientRepository(db)
	recipes := recipe.NewRecipeService(
		recipe.NewRecipeRepository(db),
		ingredients,
		subs,
		storage.NewLocalStorage(t.TempDir(), "/media"),
		"http://foodgram.test",
	)

	flour, _, err := ingredients.GetOrCreate(context.Background(), "flour", "g")
	require.NoError(t, err)

	return &fixture{
		db:      db,
		svc:     NewSubscriptionService(subs, user.NewUserRepository(db), recipes),
		repo:    subs,
		recipes: recipes,
		flour:   flour.ID,
	}
}

func (f *fixture) user(t *testing.T, username string) uint {
	u := entities.User{Email: username + "@example.org", Username: username, FirstName: username, LastName: "Test", Password: "x"}
	require.NoError(t, f.db.Create(&u).Error)
	return u.ID
}

func (f *fixture) recipe(t *testing.T, author uint, name string) domain.Recipe {
	png := "\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR\x00\x00\x00\x01\x00\x00\x00\x01\x08\x02\x00\x00\x00"
	r, err := f.recipes.CreateRecipe(context.Background(), author, domain.CreateRecipeRequest{
		Ingredients: []domain.IngredientAmountRequest{{ID: f.flour, Amount: 100}},
		Image:       "data:image/png;base64," + base64.StdEncoding.EncodeToString([]byte(png)),
		Name:        name,
		Text:        "text",
		CookingTime: 10,
	})
	require.NoError(t, err)
	return r
}

func TestSubscribe(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	reader := f.user(t, "reader")
	author := f.user(t, "author")
	f.recipe(t, author, "One")
	f.recipe(t, author, "Two")

	res, err := f.svc.Subscribe(ctx, reader, author, 0)
	require.NoError(t, err)
	assert.Equal(t, author, res.ID)
	assert.True(t, res.IsSubscribed)
	assert.EqualValues(t, 2, res.RecipesCount)
	require.Len(t, res.Recipes, 2)
	assert.Equal(t, "Two", res.Recipes[0].Name)
	assert.True(t, res.Recipes[0].Author.IsSubscribed)

	_, err = f.svc.Subscribe(ctx, reader, author, 0)
	assert.ErrorIs(t, err, domain.ErrAlreadySubscribed)

	_, err = f.svc.Subscribe(ctx, reader, reader, 0)
	assert.ErrorIs(t, err, domain.ErrSelfSubscription)

	_, err = f.svc.Subscribe(ctx, reader, 9999, 0)
	assert.ErrorIs(t, err, domain.ErrUserNotFound)
}

func TestSelfSubscriptionRejectedByDatabase(t *testing.T) {
	f := newFixture(t)
	reader := f.user(t, "reader")

	err := f.db.Create(&entities.Subscription{UserID: reader, AuthorID: reader}).Error
	assert.Error(t, err)
}

func TestUnsubscribe(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	reader := f.user(t, "reader")
	author := f.user(t, "author")

	assert.ErrorIs(t, f.svc.Unsubscribe(ctx, reader, author), domain.ErrNotSubscribed)

	_, err := f.svc.Subscribe(ctx, reader, author, 0)
	require.NoError(t, err)
	require.NoError(t, f.svc.Unsubscribe(ctx, reader, author))
	assert.ErrorIs(t, f.svc.Unsubscribe(ctx, reader, author), domain.ErrNotSubscribed)

	assert.ErrorIs(t, f.svc.Unsubscribe(ctx, reader, 9999), domain.ErrUserNotFound)
}

func TestGetSubscriptions(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	reader := f.user(t, "reader")
	first := f.user(t, "first")
	second := f.user(t, "second")
	f.user(t, "ignored")
	for i := 0; i < 3; i++ {
		f.recipe(t, first, "Dish")
	}

	_, err := f.svc.Subscribe(ctx, reader, first, 0)
	require.NoError(t, err)
	_, err = f.svc.Subscribe(ctx, reader, second, 0)
	require.NoError(t, err)

	authors, count, err := f.svc.GetSubscriptions(ctx, reader, domain.PaginationRequest{}, 2)
	require.NoError(t, err)
	assert.EqualValues(t, 2, count)
	require.Len(t, authors, 2)

	// most recent subscription first
	assert.Equal(t, second, authors[0].ID)
	assert.Empty(t, authors[0].Recipes)
	assert.Zero(t, authors[0].RecipesCount)

	assert.Equal(t, first, authors[1].ID)
	assert.Len(t, authors[1].Recipes, 2)
	assert.EqualValues(t, 3, authors[1].RecipesCount)

	page, count, err := f.svc.GetSubscriptions(ctx, reader, domain.PaginationRequest{Page: 2, Limit: 1}, 0)
	require.NoError(t, err)
	assert.EqualValues(t, 2, count)
	require.Len(t, page, 1)
	assert.Equal(t, first, page[0].ID)
	assert.Len(t, page[0].Recipes, 3)
}

func TestSubscribedAuthorIDs(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	reader := f.user(t, "reader")
	a := f.user(t, "a")
	b := f.user(t, "b")
	require.NoError(t, f.repo.Subscribe(ctx, reader, a))

	set, err := f.repo.SubscribedAuthorIDs(ctx, reader, []uint{a, b})
	require.NoError(t, err)
	assert.Equal(t, map[uint]bool{a: true}, set)

	set, err = f.repo.SubscribedAuthorIDs(ctx, 0, []uint{a, b})
	require.NoError(t, err)
	assert.Empty(t, set)
}

func TestConcurrentSubscribeReportsAlready(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	alice := f.user(t, "alice")
	bob := f.user(t, "bob")

	// both inserts passed the existence check; the unique index decides
	require.NoError(t, insertSubscription(ctx, f.db, &entities.Subscription{UserID: bob, AuthorID: alice}))
	err := insertSubscription(ctx, f.db, &entities.Subscription{UserID: bob, AuthorID: alice})
	assert.ErrorIs(t, err, domain.ErrAlreadySubscribed)

	var count int64
	require.NoError(t, f.db.Model(&entities.Subscription{}).Where("user_id = ?", bob).Count(&count).Error)
	assert.EqualValues(t, 1, count)
}
