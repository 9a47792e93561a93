package handlers

import (
	"strconv"

	"foodgram-backend/domain"
	"foodgram-backend/internal/api/presenters"
	"foodgram-backend/internal/middleware"
	"foodgram-backend/pkg/recipe"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
)

type (
	RecipeHandler interface {
		GetRecipes(c *fiber.Ctx) error
		GetRecipe(c *fiber.Ctx) error
		CreateRecipe(c *fiber.Ctx) error
		UpdateRecipe(c *fiber.Ctx) error
		DeleteRecipe(c *fiber.Ctx) error
		AddFavorite(c *fiber.Ctx) error
		RemoveFavorite(c *fiber.Ctx) error
		AddToShoppingCart(c *fiber.Ctx) error
		RemoveFromShoppingCart(c *fiber.Ctx) error
		DownloadShoppingCart(c *fiber.Ctx) error
		GetShortLink(c *fiber.Ctx) error
		RedirectShortLink(c *fiber.Ctx) error
	}

	recipeHandler struct {
		recipeService recipe.RecipeService
		validator     *validator.Validate
	}
)

func NewRecipeHandler(recipeService recipe.RecipeService, validator *validator.Validate) RecipeHandler {
	return &recipeHandler{
		recipeService: recipeService,
		validator:     validator,
	}
}

// queryFlag reads a 0/1 query filter. Any other value leaves it unset.
func queryFlag(c *fiber.Ctx, key string) *bool {
	switch c.Query(key) {
	case "1":
		v := true
		return &v
	case "0":
		v := false
		return &v
	default:
		return nil
	}
}

func parseRecipeFilter(c *fiber.Ctx) domain.RecipeFilter {
	filter := domain.RecipeFilter{
		IsFavorited:       queryFlag(c, "is_favorited"),
		IsInShoppingCart:  queryFlag(c, "is_in_shopping_cart"),
		PaginationRequest: presenters.ParsePagination(c),
	}
	if author, err := strconv.ParseUint(c.Query("author"), 10, 64); err == nil {
		id := uint(author)
		filter.AuthorID = &id
	}
	return filter
}

func (h *recipeHandler) GetRecipes(c *fiber.Ctx) error {
	filter := parseRecipeFilter(c)

	res, count, err := h.recipeService.GetRecipes(c.UserContext(), filter, middleware.GetUserID(c))
	if err != nil {
		return handleError(c, domain.MessageFailedGetRecipes, err)
	}

	return presenters.Paginated(c, res, count, filter.PaginationRequest, domain.MessageSuccessGetRecipes)
}

func (h *recipeHandler) GetRecipe(c *fiber.Ctx) error {
	id, err := paramID(c)
	if err != nil {
		return handleError(c, domain.MessageFailedGetRecipeDetail, domain.ErrRecipeNotFound)
	}

	res, err := h.recipeService.GetRecipeByID(c.UserContext(), id, middleware.GetUserID(c))
	if err != nil {
		return handleError(c, domain.MessageFailedGetRecipeDetail, err)
	}

	return presenters.SuccessResponse(c, res, fiber.StatusOK, domain.MessageSuccessGetRecipeDetail)
}

func (h *recipeHandler) CreateRecipe(c *fiber.Ctx) error {
	req := new(domain.CreateRecipeRequest)
	if err := c.BodyParser(req); err != nil {
		return presenters.ErrorResponse(c, fiber.StatusBadRequest, domain.MessageFailedBodyRequest, err)
	}

	if err := h.validator.Struct(req); err != nil {
		return presenters.ErrorResponse(c, fiber.StatusBadRequest, domain.MessageFailedCreateRecipe, err)
	}

	res, err := h.recipeService.CreateRecipe(c.UserContext(), middleware.GetUserID(c), *req)
	if err != nil {
		return handleError(c, domain.MessageFailedCreateRecipe, err)
	}

	return presenters.SuccessResponse(c, res, fiber.StatusCreated, domain.MessageSuccessCreateRecipe)
}

func (h *recipeHandler) UpdateRecipe(c *fiber.Ctx) error {
	id, err := paramID(c)
	if err != nil {
		return handleError(c, domain.MessageFailedUpdateRecipe, domain.ErrRecipeNotFound)
	}

	req := new(domain.UpdateRecipeRequest)
	if err := c.BodyParser(req); err != nil {
		return presenters.ErrorResponse(c, fiber.StatusBadRequest, domain.MessageFailedBodyRequest, err)
	}

	if err := h.validator.Struct(req); err != nil {
		return presenters.ErrorResponse(c, fiber.StatusBadRequest, domain.MessageFailedUpdateRecipe, err)
	}

	res, err := h.recipeService.UpdateRecipe(c.UserContext(), id, middleware.GetUserID(c), *req)
	if err != nil {
		return handleError(c, domain.MessageFailedUpdateRecipe, err)
	}

	return presenters.SuccessResponse(c, res, fiber.StatusOK, domain.MessageSuccessUpdateRecipe)
}

func (h *recipeHandler) DeleteRecipe(c *fiber.Ctx) error {
	id, err := paramID(c)
	if err != nil {
		return handleError(c, domain.MessageFailedDeleteRecipe, domain.ErrRecipeNotFound)
	}

	if err := h.recipeService.DeleteRecipe(c.UserContext(), id, middleware.GetUserID(c)); err != nil {
		return handleError(c, domain.MessageFailedDeleteRecipe, err)
	}

	return presenters.SuccessResponse(c, nil, fiber.StatusNoContent, domain.MessageSuccessDeleteRecipe)
}

func (h *recipeHandler) AddFavorite(c *fiber.Ctx) error {
	id, err := paramID(c)
	if err != nil {
		return handleError(c, domain.MessageFailedAddFavorite, domain.ErrRecipeNotFound)
	}

	res, err := h.recipeService.AddFavorite(c.UserContext(), middleware.GetUserID(c), id)
	if err != nil {
		return handleError(c, domain.MessageFailedAddFavorite, err)
	}

	return presenters.SuccessResponse(c, res, fiber.StatusCreated, domain.MessageSuccessAddFavorite)
}

func (h *recipeHandler) RemoveFavorite(c *fiber.Ctx) error {
	id, err := paramID(c)
	if err != nil {
		return handleError(c, domain.MessageFailedRemoveFavorite, domain.ErrRecipeNotFound)
	}

	if err := h.recipeService.RemoveFavorite(c.UserContext(), middleware.GetUserID(c), id); err != nil {
		return handleError(c, domain.MessageFailedRemoveFavorite, err)
	}

	return presenters.SuccessResponse(c, nil, fiber.StatusNoContent, domain.MessageSuccessRemoveFavorite)
}

func (h *recipeHandler) AddToShoppingCart(c *fiber.Ctx) error {
	id, err := paramID(c)
	if err != nil {
		return handleError(c, domain.MessageFailedAddShoppingCart, domain.ErrRecipeNotFound)
	}

	res, err := h.recipeService.AddToShoppingCart(c.UserContext(), middleware.GetUserID(c), id)
	if err != nil {
		return handleError(c, domain.MessageFailedAddShoppingCart, err)
	}

	return presenters.SuccessResponse(c, res, fiber.StatusCreated, domain.MessageSuccessAddShoppingCart)
}

func (h *recipeHandler) RemoveFromShoppingCart(c *fiber.Ctx) error {
	id, err := paramID(c)
	if err != nil {
		return handleError(c, domain.MessageFailedRemoveFromCart, domain.ErrRecipeNotFound)
	}

	if err := h.recipeService.RemoveFromShoppingCart(c.UserContext(), middleware.GetUserID(c), id); err != nil {
		return handleError(c, domain.MessageFailedRemoveFromCart, err)
	}

	return presenters.SuccessResponse(c, nil, fiber.StatusNoContent, domain.MessageSuccessRemoveFromCart)
}

func (h *recipeHandler) DownloadShoppingCart(c *fiber.Ctx) error {
	list, err := h.recipeService.DownloadShoppingList(c.UserContext(), middleware.GetUserID(c))
	if err != nil {
		return handleError(c, domain.MessageFailedDownloadShopping, err)
	}

	c.Attachment(recipe.ShoppingListFilename)
	c.Set(fiber.HeaderContentType, fiber.MIMETextPlainCharsetUTF8)
	return c.Status(fiber.StatusOK).SendString(list)
}

func (h *recipeHandler) GetShortLink(c *fiber.Ctx) error {
	id, err := paramID(c)
	if err != nil {
		return handleError(c, domain.MessageFailedGetShortLink, domain.ErrRecipeNotFound)
	}

	res, err := h.recipeService.GetShortLink(c.UserContext(), id)
	if err != nil {
		return handleError(c, domain.MessageFailedGetShortLink, err)
	}

	return presenters.SuccessResponse(c, res, fiber.StatusOK, domain.MessageSuccessGetShortLink)
}

func (h *recipeHandler) RedirectShortLink(c *fiber.Ctx) error {
	id, err := paramID(c)
	if err != nil {
		return handleError(c, domain.MessageFailedGetShortLink, domain.ErrRecipeNotFound)
	}

	target, err := h.recipeService.GetRecipePageURL(c.UserContext(), id)
	if err != nil {
		return handleError(c, domain.MessageFailedGetShortLink, err)
	}

	return c.Redirect(target, fiber.StatusFound)
}
