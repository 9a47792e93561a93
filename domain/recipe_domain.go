package domain

import "errors"

var (
	MessageSuccessGetRecipes       = "success get recipes"
	MessageSuccessGetRecipeDetail  = "success get recipe detail"
	MessageSuccessCreateRecipe     = "recipe created successfully"
	MessageSuccessUpdateRecipe     = "recipe updated successfully"
	MessageSuccessDeleteRecipe     = "recipe deleted successfully"
	MessageSuccessAddFavorite      = "recipe added to favorites"
	MessageSuccessRemoveFavorite   = "recipe removed from favorites"
	MessageSuccessAddShoppingCart  = "recipe added to shopping cart"
	MessageSuccessRemoveFromCart   = "recipe removed from shopping cart"
	MessageSuccessGetShortLink     = "success get short link"
	MessageSuccessDownloadShopping = "shopping list rendered"

	MessageFailedGetRecipes       = "failed to get recipes"
	MessageFailedGetRecipeDetail  = "failed to get recipe detail"
	MessageFailedCreateRecipe     = "failed to create recipe"
	MessageFailedUpdateRecipe     = "failed to update recipe"
	MessageFailedDeleteRecipe     = "failed to delete recipe"
	MessageFailedAddFavorite      = "failed to add recipe to favorites"
	MessageFailedRemoveFavorite   = "failed to remove recipe from favorites"
	MessageFailedAddShoppingCart  = "failed to add recipe to shopping cart"
	MessageFailedRemoveFromCart   = "failed to remove recipe from shopping cart"
	MessageFailedGetShortLink     = "failed to get short link"
	MessageFailedDownloadShopping = "failed to render shopping list"

	ErrRecipeNotFound        = errors.New("recipe not found")
	ErrNotRecipeAuthor       = errors.New("only the author can change this recipe")
	ErrEmptyIngredients      = errors.New("a recipe needs at least one ingredient")
	ErrDuplicateIngredient   = errors.New("ingredients must not repeat")
	ErrUnknownIngredient     = errors.New("ingredient does not exist")
	ErrInvalidAmount         = errors.New("ingredient amount must be at least 1")
	ErrInvalidCookingTime    = errors.New("cooking time must be at least 1 minute")
	ErrImageRequired         = errors.New("a recipe needs an image")
	ErrBlankRecipeName       = errors.New("recipe name may not be blank")
	ErrBlankRecipeText       = errors.New("recipe text may not be blank")
	ErrAlreadyFavorited      = errors.New("recipe is already in favorites")
	ErrNotFavorited          = errors.New("recipe is not in favorites")
	ErrAlreadyInShoppingCart = errors.New("recipe is already in the shopping cart")
	ErrNotInShoppingCart     = errors.New("recipe is not in the shopping cart")
)

type (
	IngredientAmountRequest struct {
		ID     uint `json:"id" validate:"required"`
		Amount int  `json:"amount" validate:"min=1"`
	}

	CreateRecipeRequest struct {
		Ingredients []IngredientAmountRequest `json:"ingredients" validate:"required,dive"`
		Image       string                    `json:"image" validate:"required,base64image"`
		Name        string                    `json:"name" validate:"required,notblank,max=256"`
		Text        string                    `json:"text" validate:"required,notblank"`
		CookingTime int                       `json:"cooking_time" validate:"min=1"`
	}

	// UpdateRecipeRequest is a partial update; nil fields are left untouched.
	UpdateRecipeRequest struct {
		Ingredients *[]IngredientAmountRequest `json:"ingredients" validate:"omitnil,dive"`
		Image       *string                    `json:"image" validate:"omitnil,base64image"`
		Name        *string                    `json:"name" validate:"omitnil,notblank,max=256"`
		Text        *string                    `json:"text" validate:"omitnil,notblank"`
		CookingTime *int                       `json:"cooking_time" validate:"omitnil,min=1"`
	}

	RecipeFilter struct {
		AuthorID         *uint
		IsFavorited      *bool
		IsInShoppingCart *bool
		PaginationRequest
	}

	RecipeIngredient struct {
		ID              uint   `json:"id"`
		Name            string `json:"name"`
		MeasurementUnit string `json:"measurement_unit"`
		Amount          int    `json:"amount"`
	}

	Recipe struct {
		ID               uint               `json:"id"`
		Author           User               `json:"author"`
		Ingredients      []RecipeIngredient `json:"ingredients"`
		IsFavorited      bool               `json:"is_favorited"`
		IsInShoppingCart bool               `json:"is_in_shopping_cart"`
		Name             string             `json:"name"`
		Image            string             `json:"image"`
		Text             string             `json:"text"`
		CookingTime      int                `json:"cooking_time"`
	}

	RecipeMinified struct {
		ID          uint   `json:"id"`
		Name        string `json:"name"`
		Image       string `json:"image"`
		CookingTime int    `json:"cooking_time"`
	}

	ShortLinkResponse struct {
		ShortLink string `json:"short-link"`
	}

	ShoppingListLine struct {
		Name            string `json:"name"`
		MeasurementUnit string `json:"measurement_unit"`
		Amount          int64  `json:"amount"`
	}
)
