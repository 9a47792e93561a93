package recipe

import (
	"context"
	"fmt"
	"strings"

	"foodgram-backend/domain"
	"foodgram-backend/entities"
	"foodgram-backend/internal/utils/logging"
	"foodgram-backend/internal/utils/metrics"
	"foodgram-backend/internal/utils/storage"
	"foodgram-backend/pkg/ingredient"
	"foodgram-backend/pkg/user"
)

type (
	RecipeService interface {
		GetRecipes(ctx context.Context, filter domain.RecipeFilter, viewerID uint) ([]domain.Recipe, int64, error)
		GetRecipeByID(ctx context.Context, id uint, viewerID uint) (domain.Recipe, error)
		CreateRecipe(ctx context.Context, authorID uint, req domain.CreateRecipeRequest) (domain.Recipe, error)
		UpdateRecipe(ctx context.Context, id uint, userID uint, req domain.UpdateRecipeRequest) (domain.Recipe, error)
		DeleteRecipe(ctx context.Context, id uint, userID uint) error

		AddFavorite(ctx context.Context, userID, recipeID uint) (domain.RecipeMinified, error)
		RemoveFavorite(ctx context.Context, userID, recipeID uint) error
		AddToShoppingCart(ctx context.Context, userID, recipeID uint) (domain.RecipeMinified, error)
		RemoveFromShoppingCart(ctx context.Context, userID, recipeID uint) error
		DownloadShoppingList(ctx context.Context, userID uint) (string, error)

		GetShortLink(ctx context.Context, id uint) (domain.ShortLinkResponse, error)
		GetRecipePageURL(ctx context.Context, id uint) (string, error)

		GetAuthorRecipes(ctx context.Context, authorID uint, limit int, viewerID uint) ([]domain.Recipe, error)
		CountAuthorRecipes(ctx context.Context, authorIDs []uint) (map[uint]int64, error)
	}

	recipeService struct {
		recipeRepository     RecipeRepository
		ingredientRepository ingredient.IngredientRepository
		subscriptions        user.SubscriptionChecker
		storage              storage.Storage
		appURL               string
	}
)

func NewRecipeService(
	recipeRepository RecipeRepository,
	ingredientRepository ingredient.IngredientRepository,
	subscriptions user.SubscriptionChecker,
	storage storage.Storage,
	appURL string,
) RecipeService {
	return &recipeService{
		recipeRepository:     recipeRepository,
		ingredientRepository: ingredientRepository,
		subscriptions:        subscriptions,
		storage:              storage,
		appURL:               strings.TrimRight(appURL, "/"),
	}
}

func ToDomainRecipeMinified(r *entities.Recipe) domain.RecipeMinified {
	return domain.RecipeMinified{
		ID:          r.ID,
		Name:        r.Name,
		Image:       r.Image,
		CookingTime: r.CookingTime,
	}
}

// toDomainRecipes renders recipes for viewerID, resolving is_subscribed,
// is_favorited and is_in_shopping_cart with one query each.
func (s *recipeService) toDomainRecipes(ctx context.Context, recipes []*entities.Recipe, viewerID uint) ([]domain.Recipe, error) {
	recipeIDs := make([]uint, 0, len(recipes))
	authorIDs := make([]uint, 0, len(recipes))
	for _, r := range recipes {
		recipeIDs = append(recipeIDs, r.ID)
		authorIDs = append(authorIDs, r.AuthorID)
	}

	subscribed, err := user.SubscribedSet(ctx, s.subscriptions, viewerID, authorIDs)
	if err != nil {
		return nil, err
	}
	favorited, err := s.recipeRepository.FavoritedRecipeIDs(ctx, viewerID, recipeIDs)
	if err != nil {
		return nil, err
	}
	inCart, err := s.recipeRepository.InShoppingCartRecipeIDs(ctx, viewerID, recipeIDs)
	if err != nil {
		return nil, err
	}

	res := make([]domain.Recipe, 0, len(recipes))
	for _, r := range recipes {
		item := domain.Recipe{
			ID:               r.ID,
			Ingredients:      make([]domain.RecipeIngredient, 0, len(r.IngredientAmounts)),
			IsFavorited:      favorited[r.ID],
			IsInShoppingCart: inCart[r.ID],
			Name:             r.Name,
			Image:            r.Image,
			Text:             r.Text,
			CookingTime:      r.CookingTime,
		}
		if r.Author != nil {
			item.Author = user.ToDomainUser(r.Author, subscribed[r.AuthorID])
		}
		for _, a := range r.IngredientAmounts {
			line := domain.RecipeIngredient{ID: a.IngredientID, Amount: a.Amount}
			if a.Ingredient != nil {
				line.Name = a.Ingredient.Name
				line.MeasurementUnit = a.Ingredient.MeasurementUnit
			}
			item.Ingredients = append(item.Ingredients, line)
		}
		res = append(res, item)
	}
	return res, nil
}

func (s *recipeService) render(ctx context.Context, recipe *entities.Recipe, viewerID uint) (domain.Recipe, error) {
	res, err := s.toDomainRecipes(ctx, []*entities.Recipe{recipe}, viewerID)
	if err != nil {
		return domain.Recipe{}, err
	}
	return res[0], nil
}

// buildIngredientAmounts checks the requested ingredient list: it must be
// non-empty, without repeated ids, with every id in the catalog and every
// amount >= 1.
func (s *recipeService) buildIngredientAmounts(ctx context.Context, items []domain.IngredientAmountRequest) ([]*entities.IngredientAmount, error) {
	if len(items) == 0 {
		return nil, domain.ErrEmptyIngredients
	}

	seen := make(map[uint]bool, len(items))
	ids := make([]uint, 0, len(items))
	for _, item := range items {
		if seen[item.ID] {
			return nil, domain.ErrDuplicateIngredient
		}
		seen[item.ID] = true
		ids = append(ids, item.ID)

		if item.Amount < 1 {
			return nil, domain.ErrInvalidAmount
		}
	}

	found, err := s.ingredientRepository.GetIngredientsByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}
	known := make(map[uint]bool, len(found))
	for _, i := range found {
		known[i.ID] = true
	}

	amounts := make([]*entities.IngredientAmount, 0, len(items))
	for _, item := range items {
		if !known[item.ID] {
			return nil, fmt.Errorf("%w: id %d", domain.ErrUnknownIngredient, item.ID)
		}
		amounts = append(amounts, &entities.IngredientAmount{
			IngredientID: item.ID,
			Amount:       item.Amount,
		})
	}
	return amounts, nil
}

func (s *recipeService) uploadImage(ctx context.Context, dataURI string) (string, error) {
	file, err := storage.DecodeDataURI(dataURI)
	if err != nil {
		return "", err
	}
	objectKey, err := s.storage.UploadFile(ctx, file, "recipes/images", storage.AllowImage...)
	if err != nil {
		return "", err
	}
	return s.storage.GetPublicLinkKey(objectKey), nil
}

func (s *recipeService) removeImage(ctx context.Context, link string) {
	objectKey := s.storage.GetObjectKeyFromLink(link)
	if objectKey == "" {
		return
	}
	if err := s.storage.DeleteFile(ctx, objectKey); err != nil {
		logging.Ctx(ctx).Warn().Err(err).Str("object_key", objectKey).Msg("failed to delete recipe image")
	}
}

func (s *recipeService) GetRecipes(ctx context.Context, filter domain.RecipeFilter, viewerID uint) ([]domain.Recipe, int64, error) {
	filter.PaginationRequest = filter.PaginationRequest.Normalize()

	recipes, count, err := s.recipeRepository.GetRecipes(ctx, filter, viewerID)
	if err != nil {
		return nil, 0, err
	}

	res, err := s.toDomainRecipes(ctx, recipes, viewerID)
	if err != nil {
		return nil, 0, err
	}
	return res, count, nil
}

func (s *recipeService) GetRecipeByID(ctx context.Context, id uint, viewerID uint) (domain.Recipe, error) {
	recipe, err := s.recipeRepository.GetRecipeByID(ctx, id)
	if err != nil {
		return domain.Recipe{}, err
	}
	return s.render(ctx, recipe, viewerID)
}

func (s *recipeService) CreateRecipe(ctx context.Context, authorID uint, req domain.CreateRecipeRequest) (domain.Recipe, error) {
	amounts, err := s.buildIngredientAmounts(ctx, req.Ingredients)
	if err != nil {
		return domain.Recipe{}, err
	}
	if req.CookingTime < 1 {
		return domain.Recipe{}, domain.ErrInvalidCookingTime
	}
	if req.Image == "" {
		return domain.Recipe{}, domain.ErrImageRequired
	}
	name, text := strings.TrimSpace(req.Name), strings.TrimSpace(req.Text)
	if name == "" {
		return domain.Recipe{}, domain.ErrBlankRecipeName
	}
	if text == "" {
		return domain.Recipe{}, domain.ErrBlankRecipeText
	}

	imageURL, err := s.uploadImage(ctx, req.Image)
	if err != nil {
		return domain.Recipe{}, err
	}

	recipe := &entities.Recipe{
		AuthorID:          authorID,
		Name:              name,
		Image:             imageURL,
		Text:              text,
		CookingTime:       req.CookingTime,
		IngredientAmounts: amounts,
	}
	if err := s.recipeRepository.CreateRecipe(ctx, recipe); err != nil {
		s.removeImage(ctx, imageURL)
		return domain.Recipe{}, err
	}

	metrics.RecipesCreated.Inc()
	logging.Ctx(ctx).Info().Uint("recipe_id", recipe.ID).Uint("author_id", authorID).Msg("recipe created")

	return s.GetRecipeByID(ctx, recipe.ID, authorID)
}

func (s *recipeService) UpdateRecipe(ctx context.Context, id uint, userID uint, req domain.UpdateRecipeRequest) (domain.Recipe, error) {
	recipe, err := s.recipeRepository.GetRecipeByID(ctx, id)
	if err != nil {
		return domain.Recipe{}, err
	}
	if recipe.AuthorID != userID {
		return domain.Recipe{}, domain.ErrNotRecipeAuthor
	}

	var amounts []*entities.IngredientAmount
	if req.Ingredients != nil {
		amounts, err = s.buildIngredientAmounts(ctx, *req.Ingredients)
		if err != nil {
			return domain.Recipe{}, err
		}
	}

	updates := map[string]any{}
	if req.Name != nil {
		name := strings.TrimSpace(*req.Name)
		if name == "" {
			return domain.Recipe{}, domain.ErrBlankRecipeName
		}
		updates["name"] = name
	}
	if req.Text != nil {
		text := strings.TrimSpace(*req.Text)
		if text == "" {
			return domain.Recipe{}, domain.ErrBlankRecipeText
		}
		updates["text"] = text
	}
	if req.CookingTime != nil {
		if *req.CookingTime < 1 {
			return domain.Recipe{}, domain.ErrInvalidCookingTime
		}
		updates["cooking_time"] = *req.CookingTime
	}

	var newImage string
	if req.Image != nil {
		newImage, err = s.uploadImage(ctx, *req.Image)
		if err != nil {
			return domain.Recipe{}, err
		}
		updates["image"] = newImage
	}

	if err := s.recipeRepository.UpdateRecipe(ctx, id, updates, amounts); err != nil {
		if newImage != "" {
			s.removeImage(ctx, newImage)
		}
		return domain.Recipe{}, err
	}
	if newImage != "" {
		s.removeImage(ctx, recipe.Image)
	}

	logging.Ctx(ctx).Info().
		Uint("recipe_id", id).
		Bool("ingredients_replaced", amounts != nil).
		Msg("recipe updated")

	return s.GetRecipeByID(ctx, id, userID)
}

func (s *recipeService) DeleteRecipe(ctx context.Context, id uint, userID uint) error {
	recipe, err := s.recipeRepository.GetRecipeByID(ctx, id)
	if err != nil {
		return err
	}
	if recipe.AuthorID != userID {
		return domain.ErrNotRecipeAuthor
	}

	if err := s.recipeRepository.DeleteRecipe(ctx, id); err != nil {
		return err
	}
	s.removeImage(ctx, recipe.Image)

	logging.Ctx(ctx).Info().Uint("recipe_id", id).Msg("recipe deleted")
	return nil
}

func (s *recipeService) AddFavorite(ctx context.Context, userID, recipeID uint) (domain.RecipeMinified, error) {
	recipe, err := s.recipeRepository.GetRecipeByID(ctx, recipeID)
	if err != nil {
		return domain.RecipeMinified{}, err
	}
	if err := s.recipeRepository.AddFavorite(ctx, userID, recipeID); err != nil {
		return domain.RecipeMinified{}, err
	}

	metrics.RecordMembership("favorite", "add")
	return ToDomainRecipeMinified(recipe), nil
}

func (s *recipeService) RemoveFavorite(ctx context.Context, userID, recipeID uint) error {
	if _, err := s.recipeRepository.GetRecipeByID(ctx, recipeID); err != nil {
		return err
	}
	if err := s.recipeRepository.RemoveFavorite(ctx, userID, recipeID); err != nil {
		return err
	}

	metrics.RecordMembership("favorite", "remove")
	return nil
}

func (s *recipeService) AddToShoppingCart(ctx context.Context, userID, recipeID uint) (domain.RecipeMinified, error) {
	recipe, err := s.recipeRepository.GetRecipeByID(ctx, recipeID)
	if err != nil {
		return domain.RecipeMinified{}, err
	}
	if err := s.recipeRepository.AddToShoppingCart(ctx, userID, recipeID); err != nil {
		return domain.RecipeMinified{}, err
	}

	metrics.RecordMembership("shopping_cart", "add")
	return ToDomainRecipeMinified(recipe), nil
}

func (s *recipeService) RemoveFromShoppingCart(ctx context.Context, userID, recipeID uint) error {
	if _, err := s.recipeRepository.GetRecipeByID(ctx, recipeID); err != nil {
		return err
	}
	if err := s.recipeRepository.RemoveFromShoppingCart(ctx, userID, recipeID); err != nil {
		return err
	}

	metrics.RecordMembership("shopping_cart", "remove")
	return nil
}

func (s *recipeService) DownloadShoppingList(ctx context.Context, userID uint) (string, error) {
	lines, err := s.recipeRepository.GetShoppingList(ctx, userID)
	if err != nil {
		return "", err
	}

	metrics.ShoppingListsDownloaded.Inc()
	logging.Ctx(ctx).Debug().Uint("user_id", userID).Int("lines", len(lines)).Msg("shopping list rendered")
	return RenderShoppingList(lines), nil
}

func (s *recipeService) GetShortLink(ctx context.Context, id uint) (domain.ShortLinkResponse, error) {
	if _, err := s.recipeRepository.GetRecipeByID(ctx, id); err != nil {
		return domain.ShortLinkResponse{}, err
	}
	return domain.ShortLinkResponse{ShortLink: fmt.Sprintf("%s/s/%d", s.appURL, id)}, nil
}

// GetRecipePageURL resolves a short link to the frontend recipe page.
func (s *recipeService) GetRecipePageURL(ctx context.Context, id uint) (string, error) {
	if _, err := s.recipeRepository.GetRecipeByID(ctx, id); err != nil {
		return "", err
	}
	return fmt.Sprintf("%s/recipes/%d", s.appURL, id), nil
}

func (s *recipeService) GetAuthorRecipes(ctx context.Context, authorID uint, limit int, viewerID uint) ([]domain.Recipe, error) {
	recipes, err := s.recipeRepository.GetRecipesByAuthor(ctx, authorID, limit)
	if err != nil {
		return nil, err
	}
	return s.toDomainRecipes(ctx, recipes, viewerID)
}

func (s *recipeService) CountAuthorRecipes(ctx context.Context, authorIDs []uint) (map[uint]int64, error) {
	return s.recipeRepository.CountRecipesByAuthors(ctx, authorIDs)
}
