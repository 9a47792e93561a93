package recipe

import (
	"context"
	"errors"

	"foodgram-backend/domain"
	"foodgram-backend/entities"

	"gorm.io/gorm"
)

type (
	RecipeRepository interface {
		CreateRecipe(ctx context.Context, recipe *entities.Recipe) error
		GetRecipeByID(ctx context.Context, id uint) (*entities.Recipe, error)
		GetRecipes(ctx context.Context, filter domain.RecipeFilter, viewerID uint) ([]*entities.Recipe, int64, error)
		GetRecipesByAuthor(ctx context.Context, authorID uint, limit int) ([]*entities.Recipe, error)
		CountRecipesByAuthors(ctx context.Context, authorIDs []uint) (map[uint]int64, error)
		UpdateRecipe(ctx context.Context, id uint, updates map[string]any, ingredients []*entities.IngredientAmount) error
		DeleteRecipe(ctx context.Context, id uint) error

		AddFavorite(ctx context.Context, userID, recipeID uint) error
		RemoveFavorite(ctx context.Context, userID, recipeID uint) error
		FavoritedRecipeIDs(ctx context.Context, userID uint, recipeIDs []uint) (map[uint]bool, error)
		AddToShoppingCart(ctx context.Context, userID, recipeID uint) error
		RemoveFromShoppingCart(ctx context.Context, userID, recipeID uint) error
		InShoppingCartRecipeIDs(ctx context.Context, userID uint, recipeIDs []uint) (map[uint]bool, error)

		GetShoppingList(ctx context.Context, userID uint) ([]domain.ShoppingListLine, error)
	}

	recipeRepository struct {
		db *gorm.DB
	}
)

func NewRecipeRepository(db *gorm.DB) RecipeRepository {
	return &recipeRepository{db: db}
}

func preloadRecipe(db *gorm.DB) *gorm.DB {
	return db.
		Preload("Author").
		Preload("IngredientAmounts", func(db *gorm.DB) *gorm.DB {
			return db.Order("ingredient_amounts.id asc")
		}).
		Preload("IngredientAmounts.Ingredient")
}

func newestFirst(db *gorm.DB) *gorm.DB {
	return db.Order("recipes.created_at desc").Order("recipes.id desc")
}

// CreateRecipe inserts the recipe and its IngredientAmounts in one transaction.
func (r *recipeRepository) CreateRecipe(ctx context.Context, recipe *entities.Recipe) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		amounts := recipe.IngredientAmounts
		recipe.IngredientAmounts = nil
		defer func() { recipe.IngredientAmounts = amounts }()

		if err := tx.Omit("Author").Create(recipe).Error; err != nil {
			return err
		}
		for _, a := range amounts {
			a.RecipeID = recipe.ID
		}
		if len(amounts) == 0 {
			return nil
		}
		return tx.Omit("Ingredient").Create(&amounts).Error
	})
}

func (r *recipeRepository) GetRecipeByID(ctx context.Context, id uint) (*entities.Recipe, error) {
	var recipe entities.Recipe
	if err := r.db.WithContext(ctx).
		Scopes(preloadRecipe).
		Where("recipes.id = ?", id).
		First(&recipe).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrRecipeNotFound
		}
		return nil, err
	}
	return &recipe, nil
}

func (r *recipeRepository) filterScope(filter domain.RecipeFilter, viewerID uint) func(*gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		if filter.AuthorID != nil {
			db = db.Where("recipes.author_id = ?", *filter.AuthorID)
		}
		// membership filters only make sense for a known caller
		if viewerID == 0 {
			return db
		}
		if filter.IsFavorited != nil {
			db = membershipFilter(db, r.db.Model(&entities.Favorite{}).
				Select("1").
				Where("favorites.recipe_id = recipes.id AND favorites.user_id = ?", viewerID),
				*filter.IsFavorited)
		}
		if filter.IsInShoppingCart != nil {
			db = membershipFilter(db, r.db.Model(&entities.ShoppingCart{}).
				Select("1").
				Where("shopping_carts.recipe_id = recipes.id AND shopping_carts.user_id = ?", viewerID),
				*filter.IsInShoppingCart)
		}
		return db
	}
}

func membershipFilter(db *gorm.DB, sub *gorm.DB, member bool) *gorm.DB {
	if member {
		return db.Where("EXISTS (?)", sub)
	}
	return db.Where("NOT EXISTS (?)", sub)
}

func (r *recipeRepository) GetRecipes(ctx context.Context, filter domain.RecipeFilter, viewerID uint) ([]*entities.Recipe, int64, error) {
	var recipes []*entities.Recipe
	var count int64
	scope := r.filterScope(filter, viewerID)

	if err := r.db.WithContext(ctx).
		Model(&entities.Recipe{}).
		Scopes(scope).
		Count(&count).Error; err != nil {
		return nil, 0, err
	}

	if err := r.db.WithContext(ctx).
		Scopes(scope, preloadRecipe, newestFirst).
		Offset(filter.Offset()).
		Limit(filter.Limit).
		Find(&recipes).Error; err != nil {
		return nil, 0, err
	}

	return recipes, count, nil
}

// GetRecipesByAuthor returns the author's newest recipes; limit <= 0 means all.
func (r *recipeRepository) GetRecipesByAuthor(ctx context.Context, authorID uint, limit int) ([]*entities.Recipe, error) {
	var recipes []*entities.Recipe

	query := r.db.WithContext(ctx).
		Scopes(preloadRecipe, newestFirst).
		Where("recipes.author_id = ?", authorID)
	if limit > 0 {
		query = query.Limit(limit)
	}
	if err := query.Find(&recipes).Error; err != nil {
		return nil, err
	}
	return recipes, nil
}

func (r *recipeRepository) CountRecipesByAuthors(ctx context.Context, authorIDs []uint) (map[uint]int64, error) {
	counts := make(map[uint]int64, len(authorIDs))
	if len(authorIDs) == 0 {
		return counts, nil
	}

	var rows []struct {
		AuthorID uint
		Total    int64
	}
	if err := r.db.WithContext(ctx).
		Model(&entities.Recipe{}).
		Select("author_id, COUNT(*) AS total").
		Where("author_id IN ?", authorIDs).
		Group("author_id").
		Scan(&rows).Error; err != nil {
		return nil, err
	}

	for _, row := range rows {
		counts[row.AuthorID] = row.Total
	}
	return counts, nil
}

// UpdateRecipe applies updates to the recipe row. A non-nil ingredients
// slice replaces the whole ingredient set in the same transaction.
func (r *recipeRepository) UpdateRecipe(ctx context.Context, id uint, updates map[string]any, ingredients []*entities.IngredientAmount) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if len(updates) > 0 {
			if err := tx.Model(&entities.Recipe{}).Where("id = ?", id).Updates(updates).Error; err != nil {
				return err
			}
		}

		if ingredients == nil {
			return nil
		}
		if err := tx.Where("recipe_id = ?", id).Delete(&entities.IngredientAmount{}).Error; err != nil {
			return err
		}
		for _, a := range ingredients {
			a.ID = 0
			a.RecipeID = id
		}
		if len(ingredients) == 0 {
			return nil
		}
		return tx.Omit("Ingredient").Create(&ingredients).Error
	})
}

func (r *recipeRepository) DeleteRecipe(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, model := range []any{&entities.IngredientAmount{}, &entities.Favorite{}, &entities.ShoppingCart{}} {
			if err := tx.Where("recipe_id = ?", id).Delete(model).Error; err != nil {
				return err
			}
		}

		res := tx.Delete(&entities.Recipe{}, id)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return domain.ErrRecipeNotFound
		}
		return nil
	})
}

func (r *recipeRepository) AddFavorite(ctx context.Context, userID, recipeID uint) error {
	return addMember(ctx, r.db, &entities.Favorite{UserID: userID, RecipeID: recipeID}, userID, recipeID, domain.ErrAlreadyFavorited)
}

func (r *recipeRepository) RemoveFavorite(ctx context.Context, userID, recipeID uint) error {
	return removeMember[entities.Favorite](ctx, r.db, userID, recipeID, domain.ErrNotFavorited)
}

func (r *recipeRepository) FavoritedRecipeIDs(ctx context.Context, userID uint, recipeIDs []uint) (map[uint]bool, error) {
	return memberSet[entities.Favorite](ctx, r.db, userID, recipeIDs)
}

func (r *recipeRepository) AddToShoppingCart(ctx context.Context, userID, recipeID uint) error {
	return addMember(ctx, r.db, &entities.ShoppingCart{UserID: userID, RecipeID: recipeID}, userID, recipeID, domain.ErrAlreadyInShoppingCart)
}

func (r *recipeRepository) RemoveFromShoppingCart(ctx context.Context, userID, recipeID uint) error {
	return removeMember[entities.ShoppingCart](ctx, r.db, userID, recipeID, domain.ErrNotInShoppingCart)
}

func (r *recipeRepository) InShoppingCartRecipeIDs(ctx context.Context, userID uint, recipeIDs []uint) (map[uint]bool, error) {
	return memberSet[entities.ShoppingCart](ctx, r.db, userID, recipeIDs)
}

// membership is a (user, recipe) pair row such as Favorite or ShoppingCart.
type membership interface {
	entities.Favorite | entities.ShoppingCart
}

func addMember[T membership](ctx context.Context, db *gorm.DB, row *T, userID, recipeID uint, already error) error {
	var count int64
	if err := db.WithContext(ctx).
		Model(new(T)).
		Where("user_id = ? AND recipe_id = ?", userID, recipeID).
		Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return already
	}

	return insertMember(ctx, db, row, already)
}

// insertMember relies on the (user, recipe) unique index, so an insert that
// loses a race with a concurrent one still reports already.
func insertMember[T membership](ctx context.Context, db *gorm.DB, row *T, already error) error {
	if err := db.WithContext(ctx).Omit("User", "Recipe").Create(row).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return already
		}
		return err
	}
	return nil
}

func removeMember[T membership](ctx context.Context, db *gorm.DB, userID, recipeID uint, missing error) error {
	res := db.WithContext(ctx).
		Where("user_id = ? AND recipe_id = ?", userID, recipeID).
		Delete(new(T))
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return missing
	}
	return nil
}

func memberSet[T membership](ctx context.Context, db *gorm.DB, userID uint, recipeIDs []uint) (map[uint]bool, error) {
	set := make(map[uint]bool, len(recipeIDs))
	if userID == 0 || len(recipeIDs) == 0 {
		return set, nil
	}

	var ids []uint
	if err := db.WithContext(ctx).
		Model(new(T)).
		Where("user_id = ? AND recipe_id IN ?", userID, recipeIDs).
		Pluck("recipe_id", &ids).Error; err != nil {
		return nil, err
	}

	for _, id := range ids {
		set[id] = true
	}
	return set, nil
}
