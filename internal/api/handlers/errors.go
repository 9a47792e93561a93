package handlers

import (
	"errors"
	"strconv"

	"foodgram-backend/domain"
	"foodgram-backend/internal/api/presenters"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
)

var (
	notFoundErrors = []error{
		domain.ErrParseID,
		domain.ErrUserNotFound,
		domain.ErrRecipeNotFound,
		domain.ErrIngredientNotFound,
	}

	forbiddenErrors = []error{
		domain.ErrNotRecipeAuthor,
		domain.ErrPermissionDenied,
	}

	unauthorizedErrors = []error{
		domain.ErrNotAuthenticated,
		domain.ErrTokenInvalid,
		domain.ErrTokenExpired,
		domain.ErrTokenNotFound,
	}

	badRequestErrors = []error{
		domain.ErrEmailAlreadyExists,
		domain.ErrUsernameAlreadyExists,
		domain.ErrInvalidCredentials,
		domain.ErrWrongPassword,
		domain.ErrResetTokenInvalid,
		domain.ErrSelfSubscription,
		domain.ErrAlreadySubscribed,
		domain.ErrNotSubscribed,
		domain.ErrEmptyIngredients,
		domain.ErrDuplicateIngredient,
		domain.ErrUnknownIngredient,
		domain.ErrInvalidAmount,
		domain.ErrInvalidCookingTime,
		domain.ErrImageRequired,
		domain.ErrBlankRecipeName,
		domain.ErrBlankRecipeText,
		domain.ErrInvalidImage,
		domain.ErrFileTypeNotAllowed,
		domain.ErrAlreadyFavorited,
		domain.ErrNotFavorited,
		domain.ErrAlreadyInShoppingCart,
		domain.ErrNotInShoppingCart,
	}
)

func isAny(err error, targets []error) bool {
	for _, target := range targets {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}

// errorStatus maps a service error to its HTTP status. Anything unknown is a
// server error.
func errorStatus(err error) int {
	var verrs validator.ValidationErrors
	switch {
	case isAny(err, notFoundErrors):
		return fiber.StatusNotFound
	case isAny(err, forbiddenErrors):
		return fiber.StatusForbidden
	case isAny(err, unauthorizedErrors):
		return fiber.StatusUnauthorized
	case isAny(err, badRequestErrors), errors.As(err, &verrs):
		return fiber.StatusBadRequest
	default:
		return fiber.StatusInternalServerError
	}
}

func handleError(c *fiber.Ctx, message string, err error) error {
	return presenters.ErrorResponse(c, errorStatus(err), message, err)
}

func paramID(c *fiber.Ctx) (uint, error) {
	id, err := strconv.ParseUint(c.Params("id"), 10, 64)
	if err != nil || id == 0 {
		return 0, domain.ErrParseID
	}
	return uint(id), nil
}
