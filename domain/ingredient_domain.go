package domain

import "errors"

var (
	MessageSuccessGetIngredients = "success get ingredients"
	MessageSuccessGetIngredient  = "success get ingredient"
	MessageFailedGetIngredients  = "failed to get ingredients"
	MessageFailedGetIngredient   = "failed to get ingredient"

	ErrIngredientNotFound = errors.New("ingredient not found")
)

type (
	Ingredient struct {
		ID              uint   `json:"id"`
		Name            string `json:"name"`
		MeasurementUnit string `json:"measurement_unit"`
	}

	// IngredientFixture is one row of the ingredient JSON fixture.
	IngredientFixture struct {
		Name            string `json:"name" validate:"required,max=128"`
		MeasurementUnit string `json:"measurement_unit" validate:"required,max=64"`
	}
)
