package ingredient

import (
	"context"
	"fmt"
	"os"
	"strings"

	"foodgram-backend/domain"
	"foodgram-backend/entities"
	"foodgram-backend/internal/utils/logging"

	"github.com/go-playground/validator/v10"
	"github.com/goccy/go-json"
)

type (
	IngredientService interface {
		GetIngredients(ctx context.Context, name string) ([]domain.Ingredient, error)
		GetIngredientByID(ctx context.Context, id uint) (domain.Ingredient, error)
		LoadFixture(ctx context.Context, path string) (LoadResult, error)
	}

	LoadResult struct {
		Total   int
		Created int
	}

	ingredientService struct {
		ingredientRepository IngredientRepository
		validator            *validator.Validate
	}
)

func NewIngredientService(ingredientRepository IngredientRepository, validator *validator.Validate) IngredientService {
	return &ingredientService{
		ingredientRepository: ingredientRepository,
		validator:            validator,
	}
}

func ToDomainIngredient(i *entities.Ingredient) domain.Ingredient {
	return domain.Ingredient{
		ID:              i.ID,
		Name:            i.Name,
		MeasurementUnit: i.MeasurementUnit,
	}
}

func (s *ingredientService) GetIngredients(ctx context.Context, name string) ([]domain.Ingredient, error) {
	ingredients, err := s.ingredientRepository.GetIngredients(ctx, strings.TrimSpace(name))
	if err != nil {
		return nil, err
	}

	res := make([]domain.Ingredient, 0, len(ingredients))
	for _, i := range ingredients {
		res = append(res, ToDomainIngredient(i))
	}
	return res, nil
}

func (s *ingredientService) GetIngredientByID(ctx context.Context, id uint) (domain.Ingredient, error) {
	ingredient, err := s.ingredientRepository.GetIngredientByID(ctx, id)
	if err != nil {
		return domain.Ingredient{}, err
	}
	return ToDomainIngredient(ingredient), nil
}

// LoadFixture reads a JSON array of {name, measurement_unit} and inserts the
// rows that are missing. Running it twice creates nothing the second time.
func (s *ingredientService) LoadFixture(ctx context.Context, path string) (LoadResult, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return LoadResult{}, fmt.Errorf("read fixture: %w", err)
	}

	var rows []domain.IngredientFixture
	if err := json.Unmarshal(raw, &rows); err != nil {
		return LoadResult{}, fmt.Errorf("parse fixture: %w", err)
	}

	result := LoadResult{Total: len(rows)}
	for i, row := range rows {
		row.Name = strings.TrimSpace(row.Name)
		row.MeasurementUnit = strings.TrimSpace(row.MeasurementUnit)
		if err := s.validator.Struct(row); err != nil {
			return result, fmt.Errorf("fixture row %d: %w", i, err)
		}

		_, created, err := s.ingredientRepository.GetOrCreate(ctx, row.Name, row.MeasurementUnit)
		if err != nil {
			return result, fmt.Errorf("fixture row %d: %w", i, err)
		}
		if created {
			result.Created++
		}
	}

	logging.Ctx(ctx).Info().
		Str("path", path).
		Int("total", result.Total).
		Int("created", result.Created).
		Msg("ingredients loaded")
	return result, nil
}
