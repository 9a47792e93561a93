package recipe

import (
	"context"
	"encoding/base64"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"foodgram-backend/domain"
	"foodgram-backend/entities"
	"foodgram-backend/internal/utils/storage"
	"foodgram-backend/internal/utils/testdb"
	"foodgram-backend/pkg/ingredient"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

var pngURI = "data:image/png;base64," + base64.StdEncoding.EncodeToString(
	[]byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR\x00\x00\x00\x01\x00\x00\x00\x01\x08\x02\x00\x00\x00"),
)

type noSubscriptions struct{}

func (noSubscriptions) SubscribedAuthorIDs(context.Context, uint, []uint) (map[uint]bool, error) {
	return map[uint]bool{}, nil
}

type fixture struct {
	db        *gorm.DB
	svc       RecipeService
	mediaRoot string
	alice     uint
	bob       uint
	flour     uint
	sugar     uint
	eggs      uint
}

func newFixture(t *testing.T) *fixture {
	db := testdb.New(t)
	f := &fixture{db: db, mediaRoot: t.TempDir()}

	ingredients := ingredient.NewIngredientRepository(db)
	f.svc = NewRecipeService(
		NewRecipeRepository(db),
		ingredients,
		noSubscriptions{},
		storage.NewLocalStorage(f.mediaRoot, "/media"),
		"http://foodgram.test",
	)

	f.alice = createUser(t, db, "alice")
	f.bob = createUser(t, db, "bob")
	f.flour = createIngredient(t, ingredients, "flour", "g")
	f.sugar = createIngredient(t, ingredients, "sugar", "g")
	f.eggs = createIngredient(t, ingredients, "eggs", "pcs")
	return f
}

func createUser(t *testing.T, db *gorm.DB, username string) uint {
	u := entities.User{
		Email:     username + "@example.org",
		Username:  username,
		FirstName: username,
		LastName:  "Test",
		Password:  "x",
	}
	require.NoError(t, db.Create(&u).Error)
	return u.ID
}

func createIngredient(t *testing.T, repo ingredient.IngredientRepository, name, unit string) uint {
	i, _, err := repo.GetOrCreate(context.Background(), name, unit)
	require.NoError(t, err)
	return i.ID
}

func (f *fixture) create(t *testing.T, author uint, name string, items ...domain.IngredientAmountRequest) domain.Recipe {
	t.Helper()
	r, err := f.svc.CreateRecipe(context.Background(), author, domain.CreateRecipeRequest{
		Ingredients: items,
		Image:       pngURI,
		Name:        name,
		Text:        "Mix and bake.",
		CookingTime: 30,
	})
	require.NoError(t, err)
	return r
}

func item(id uint, amount int) domain.IngredientAmountRequest {
	return domain.IngredientAmountRequest{ID: id, Amount: amount}
}

func TestCreateRecipe(t *testing.T) {
	f := newFixture(t)

	r := f.create(t, f.alice, "Pancakes", item(f.flour, 200), item(f.eggs, 2))
	assert.NotZero(t, r.ID)
	assert.Equal(t, "Pancakes", r.Name)
	assert.Equal(t, f.alice, r.Author.ID)
	assert.Equal(t, "alice", r.Author.Username)
	assert.True(t, strings.HasPrefix(r.Image, "/media/recipes/images/"))
	assert.Equal(t, []domain.RecipeIngredient{
		{ID: f.flour, Name: "flour", MeasurementUnit: "g", Amount: 200},
		{ID: f.eggs, Name: "eggs", MeasurementUnit: "pcs", Amount: 2},
	}, r.Ingredients)
	assert.False(t, r.IsFavorited)
	assert.False(t, r.IsInShoppingCart)
}

func TestCreateRecipeValidation(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	base := func(items ...domain.IngredientAmountRequest) domain.CreateRecipeRequest {
		return domain.CreateRecipeRequest{Ingredients: items, Image: pngURI, Name: "x", Text: "y", CookingTime: 5}
	}

	_, err := f.svc.CreateRecipe(ctx, f.alice, base())
	assert.ErrorIs(t, err, domain.ErrEmptyIngredients)

	_, err = f.svc.CreateRecipe(ctx, f.alice, base(item(f.flour, 1), item(f.flour, 2)))
	assert.ErrorIs(t, err, domain.ErrDuplicateIngredient)

	_, err = f.svc.CreateRecipe(ctx, f.alice, base(item(f.flour, 0)))
	assert.ErrorIs(t, err, domain.ErrInvalidAmount)

	_, err = f.svc.CreateRecipe(ctx, f.alice, base(item(9999, 1)))
	assert.ErrorIs(t, err, domain.ErrUnknownIngredient)

	req := base(item(f.flour, 1))
	req.CookingTime = 0
	_, err = f.svc.CreateRecipe(ctx, f.alice, req)
	assert.ErrorIs(t, err, domain.ErrInvalidCookingTime)

	req = base(item(f.flour, 1))
	req.Image = "data:image/png;base64," + base64.StdEncoding.EncodeToString([]byte("not an image"))
	_, err = f.svc.CreateRecipe(ctx, f.alice, req)
	assert.ErrorIs(t, err, domain.ErrInvalidImage)

	req = base(item(f.flour, 1))
	req.Name = "   "
	_, err = f.svc.CreateRecipe(ctx, f.alice, req)
	assert.ErrorIs(t, err, domain.ErrBlankRecipeName)

	req = base(item(f.flour, 1))
	req.Text = " \n\t"
	_, err = f.svc.CreateRecipe(ctx, f.alice, req)
	assert.ErrorIs(t, err, domain.ErrBlankRecipeText)

	// nothing above reached the database
	var count int64
	require.NoError(t, f.db.Model(&entities.Recipe{}).Count(&count).Error)
	assert.Zero(t, count)

	// amount 1 is the smallest accepted amount
	r, err := f.svc.CreateRecipe(ctx, f.alice, base(item(f.flour, 1)))
	require.NoError(t, err)
	assert.Equal(t, 1, r.Ingredients[0].Amount)
}

func TestUpdateRecipeReplacesIngredients(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	r := f.create(t, f.alice, "Pancakes", item(f.flour, 200), item(f.eggs, 2))

	items := []domain.IngredientAmountRequest{item(f.sugar, 50)}
	name := "Sweet pancakes"
	updated, err := f.svc.UpdateRecipe(ctx, r.ID, f.alice, domain.UpdateRecipeRequest{Ingredients: &items, Name: &name})
	require.NoError(t, err)
	assert.Equal(t, "Sweet pancakes", updated.Name)
	assert.Equal(t, []domain.RecipeIngredient{
		{ID: f.sugar, Name: "sugar", MeasurementUnit: "g", Amount: 50},
	}, updated.Ingredients)

	var rows int64
	require.NoError(t, f.db.Model(&entities.IngredientAmount{}).Where("recipe_id = ?", r.ID).Count(&rows).Error)
	assert.EqualValues(t, 1, rows)

	// without ingredients the current set is kept
	cookingTime := 10
	updated, err = f.svc.UpdateRecipe(ctx, r.ID, f.alice, domain.UpdateRecipeRequest{CookingTime: &cookingTime})
	require.NoError(t, err)
	assert.Equal(t, 10, updated.CookingTime)
	assert.Len(t, updated.Ingredients, 1)

	// an invalid set leaves the recipe untouched
	bad := []domain.IngredientAmountRequest{item(f.flour, 1), item(f.flour, 1)}
	_, err = f.svc.UpdateRecipe(ctx, r.ID, f.alice, domain.UpdateRecipeRequest{Ingredients: &bad})
	assert.ErrorIs(t, err, domain.ErrDuplicateIngredient)

	empty := []domain.IngredientAmountRequest{}
	_, err = f.svc.UpdateRecipe(ctx, r.ID, f.alice, domain.UpdateRecipeRequest{Ingredients: &empty})
	assert.ErrorIs(t, err, domain.ErrEmptyIngredients)

	current, err := f.svc.GetRecipeByID(ctx, r.ID, 0)
	require.NoError(t, err)
	assert.Equal(t, updated.Ingredients, current.Ingredients)
}

func TestUpdateRecipeRejectsBlankText(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	r := f.create(t, f.alice, "Pancakes", item(f.flour, 200))

	blank := "  "
	_, err := f.svc.UpdateRecipe(ctx, r.ID, f.alice, domain.UpdateRecipeRequest{Name: &blank})
	assert.ErrorIs(t, err, domain.ErrBlankRecipeName)
	_, err = f.svc.UpdateRecipe(ctx, r.ID, f.alice, domain.UpdateRecipeRequest{Text: &blank})
	assert.ErrorIs(t, err, domain.ErrBlankRecipeText)

	padded := "  Crepes "
	updated, err := f.svc.UpdateRecipe(ctx, r.ID, f.alice, domain.UpdateRecipeRequest{Name: &padded})
	require.NoError(t, err)
	assert.Equal(t, "Crepes", updated.Name)
	assert.Equal(t, "Mix and bake.", updated.Text)
}

func TestUpdateRecipeReplacesImage(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	r := f.create(t, f.alice, "Pancakes", item(f.flour, 200))

	updated, err := f.svc.UpdateRecipe(ctx, r.ID, f.alice, domain.UpdateRecipeRequest{Image: &pngURI})
	require.NoError(t, err)
	assert.NotEqual(t, r.Image, updated.Image)

	_, err = os.Stat(filepath.Join(f.mediaRoot, strings.TrimPrefix(r.Image, "/media/")))
	assert.True(t, os.IsNotExist(err))
	_, err = os.Stat(filepath.Join(f.mediaRoot, strings.TrimPrefix(updated.Image, "/media/")))
	assert.NoError(t, err)
}

func TestOnlyAuthorCanChangeRecipe(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	r := f.create(t, f.alice, "Pancakes", item(f.flour, 200))

	name := "Stolen"
	_, err := f.svc.UpdateRecipe(ctx, r.ID, f.bob, domain.UpdateRecipeRequest{Name: &name})
	assert.ErrorIs(t, err, domain.ErrNotRecipeAuthor)

	assert.ErrorIs(t, f.svc.DeleteRecipe(ctx, r.ID, f.bob), domain.ErrNotRecipeAuthor)

	_, err = f.svc.UpdateRecipe(ctx, 9999, f.alice, domain.UpdateRecipeRequest{Name: &name})
	assert.ErrorIs(t, err, domain.ErrRecipeNotFound)
}

func TestDeleteRecipe(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	r := f.create(t, f.alice, "Pancakes", item(f.flour, 200))
	_, err := f.svc.AddFavorite(ctx, f.bob, r.ID)
	require.NoError(t, err)
	_, err = f.svc.AddToShoppingCart(ctx, f.bob, r.ID)
	require.NoError(t, err)

	require.NoError(t, f.svc.DeleteRecipe(ctx, r.ID, f.alice))

	_, err = f.svc.GetRecipeByID(ctx, r.ID, 0)
	assert.ErrorIs(t, err, domain.ErrRecipeNotFound)

	for _, model := range []any{&entities.IngredientAmount{}, &entities.Favorite{}, &entities.ShoppingCart{}} {
		var count int64
		require.NoError(t, f.db.Model(model).Where("recipe_id = ?", r.ID).Count(&count).Error)
		assert.Zero(t, count, "%T", model)
	}

	_, err = os.Stat(filepath.Join(f.mediaRoot, strings.TrimPrefix(r.Image, "/media/")))
	assert.True(t, os.IsNotExist(err))
}

func TestFavorites(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	r := f.create(t, f.alice, "Pancakes", item(f.flour, 200))

	minified, err := f.svc.AddFavorite(ctx, f.bob, r.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.RecipeMinified{ID: r.ID, Name: r.Name, Image: r.Image, CookingTime: r.CookingTime}, minified)

	_, err = f.svc.AddFavorite(ctx, f.bob, r.ID)
	assert.ErrorIs(t, err, domain.ErrAlreadyFavorited)

	seen, err := f.svc.GetRecipeByID(ctx, r.ID, f.bob)
	require.NoError(t, err)
	assert.True(t, seen.IsFavorited)

	// alice has her own favorites
	seen, err = f.svc.GetRecipeByID(ctx, r.ID, f.alice)
	require.NoError(t, err)
	assert.False(t, seen.IsFavorited)

	require.NoError(t, f.svc.RemoveFavorite(ctx, f.bob, r.ID))
	assert.ErrorIs(t, f.svc.RemoveFavorite(ctx, f.bob, r.ID), domain.ErrNotFavorited)

	_, err = f.svc.AddFavorite(ctx, f.bob, 9999)
	assert.ErrorIs(t, err, domain.ErrRecipeNotFound)
}

func TestShoppingCart(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	r := f.create(t, f.alice, "Pancakes", item(f.flour, 200))

	_, err := f.svc.AddToShoppingCart(ctx, f.bob, r.ID)
	require.NoError(t, err)
	_, err = f.svc.AddToShoppingCart(ctx, f.bob, r.ID)
	assert.ErrorIs(t, err, domain.ErrAlreadyInShoppingCart)

	require.NoError(t, f.svc.RemoveFromShoppingCart(ctx, f.bob, r.ID))
	assert.ErrorIs(t, f.svc.RemoveFromShoppingCart(ctx, f.bob, r.ID), domain.ErrNotInShoppingCart)
	assert.ErrorIs(t, f.svc.RemoveFromShoppingCart(ctx, f.bob, 9999), domain.ErrRecipeNotFound)
}

func TestListFilters(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	first := f.create(t, f.alice, "First", item(f.flour, 1))
	second := f.create(t, f.alice, "Second", item(f.flour, 1))
	third := f.create(t, f.bob, "Third", item(f.flour, 1))

	_, err := f.svc.AddFavorite(ctx, f.bob, first.ID)
	require.NoError(t, err)
	_, err = f.svc.AddToShoppingCart(ctx, f.bob, second.ID)
	require.NoError(t, err)

	yes, no := true, false
	ids := func(filter domain.RecipeFilter, viewer uint) []uint {
		recipes, count, err := f.svc.GetRecipes(ctx, filter, viewer)
		require.NoError(t, err)
		require.EqualValues(t, len(recipes), count)
		out := make([]uint, 0, len(recipes))
		for _, r := range recipes {
			out = append(out, r.ID)
		}
		return out
	}

	// newest first
	assert.Equal(t, []uint{third.ID, second.ID, first.ID}, ids(domain.RecipeFilter{}, 0))
	assert.Equal(t, []uint{second.ID, first.ID}, ids(domain.RecipeFilter{AuthorID: &f.alice}, 0))

	assert.Equal(t, []uint{first.ID}, ids(domain.RecipeFilter{IsFavorited: &yes}, f.bob))
	assert.Equal(t, []uint{third.ID, second.ID}, ids(domain.RecipeFilter{IsFavorited: &no}, f.bob))
	assert.Equal(t, []uint{second.ID}, ids(domain.RecipeFilter{IsInShoppingCart: &yes}, f.bob))
	assert.Equal(t, []uint{third.ID, first.ID}, ids(domain.RecipeFilter{IsInShoppingCart: &no}, f.bob))
	assert.Empty(t, ids(domain.RecipeFilter{IsFavorited: &yes, IsInShoppingCart: &yes}, f.bob))

	// anonymous callers have membership filters ignored
	assert.Len(t, ids(domain.RecipeFilter{IsFavorited: &yes}, 0), 3)

	recipes, _, err := f.svc.GetRecipes(ctx, domain.RecipeFilter{IsFavorited: &yes}, f.bob)
	require.NoError(t, err)
	require.Len(t, recipes, 1)
	assert.True(t, recipes[0].IsFavorited)
	assert.False(t, recipes[0].IsInShoppingCart)
}

func TestListPagination(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	for i := 0; i < 8; i++ {
		f.create(t, f.alice, "Recipe", item(f.flour, 1))
	}

	recipes, count, err := f.svc.GetRecipes(ctx, domain.RecipeFilter{}, 0)
	require.NoError(t, err)
	assert.EqualValues(t, 8, count)
	assert.Len(t, recipes, domain.DefaultPageSize)

	recipes, _, err = f.svc.GetRecipes(ctx, domain.RecipeFilter{PaginationRequest: domain.PaginationRequest{Page: 2, Limit: 5}}, 0)
	require.NoError(t, err)
	assert.Len(t, recipes, 3)
}

func TestShoppingListAggregation(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	pancakes := f.create(t, f.alice, "Pancakes", item(f.flour, 200), item(f.eggs, 2))
	cake := f.create(t, f.alice, "Cake", item(f.flour, 300), item(f.sugar, 100))
	f.create(t, f.alice, "Not in cart", item(f.flour, 1000))

	list, err := f.svc.DownloadShoppingList(ctx, f.bob)
	require.NoError(t, err)
	assert.Equal(t, "Shopping list:\n", list)

	_, err = f.svc.AddToShoppingCart(ctx, f.bob, pancakes.ID)
	require.NoError(t, err)
	_, err = f.svc.AddToShoppingCart(ctx, f.bob, cake.ID)
	require.NoError(t, err)

	list, err = f.svc.DownloadShoppingList(ctx, f.bob)
	require.NoError(t, err)
	assert.Equal(t, "Shopping list:\neggs - 2 pcs\nflour - 500 g\nsugar - 100 g\n", list)
}

func TestShortLink(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	r := f.create(t, f.alice, "Pancakes", item(f.flour, 200))

	link, err := f.svc.GetShortLink(ctx, r.ID)
	require.NoError(t, err)
	assert.Equal(t, "http://foodgram.test/s/"+itoa(r.ID), link.ShortLink)

	page, err := f.svc.GetRecipePageURL(ctx, r.ID)
	require.NoError(t, err)
	assert.Equal(t, "http://foodgram.test/recipes/"+itoa(r.ID), page)

	_, err = f.svc.GetShortLink(ctx, 9999)
	assert.ErrorIs(t, err, domain.ErrRecipeNotFound)
}

func TestAuthorRecipes(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.create(t, f.alice, "One", item(f.flour, 1))
	two := f.create(t, f.alice, "Two", item(f.flour, 1))

	recipes, err := f.svc.GetAuthorRecipes(ctx, f.alice, 1, f.bob)
	require.NoError(t, err)
	require.Len(t, recipes, 1)
	assert.Equal(t, two.ID, recipes[0].ID)

	counts, err := f.svc.CountAuthorRecipes(ctx, []uint{f.alice, f.bob})
	require.NoError(t, err)
	assert.EqualValues(t, 2, counts[f.alice])
	assert.EqualValues(t, 0, counts[f.bob])
}

func TestConcurrentMembershipInsertReportsAlready(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	r := f.create(t, f.alice, "Pancakes", item(f.flour, 200))

	// both inserts passed the existence check; the unique index decides
	require.NoError(t, insertMember(ctx, f.db, &entities.Favorite{UserID: f.bob, RecipeID: r.ID}, domain.ErrAlreadyFavorited))
	err := insertMember(ctx, f.db, &entities.Favorite{UserID: f.bob, RecipeID: r.ID}, domain.ErrAlreadyFavorited)
	assert.ErrorIs(t, err, domain.ErrAlreadyFavorited)

	require.NoError(t, insertMember(ctx, f.db, &entities.ShoppingCart{UserID: f.bob, RecipeID: r.ID}, domain.ErrAlreadyInShoppingCart))
	err = insertMember(ctx, f.db, &entities.ShoppingCart{UserID: f.bob, RecipeID: r.ID}, domain.ErrAlreadyInShoppingCart)
	assert.ErrorIs(t, err, domain.ErrAlreadyInShoppingCart)

	var count int64
	require.NoError(t, f.db.Model(&entities.Favorite{}).Where("user_id = ?", f.bob).Count(&count).Error)
	assert.EqualValues(t, 1, count)
}
