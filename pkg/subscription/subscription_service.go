package subscription

import (
	"context"

	"foodgram-backend/domain"
	"foodgram-backend/entities"
	"foodgram-backend/internal/utils/logging"
	"foodgram-backend/internal/utils/metrics"
	"foodgram-backend/pkg/recipe"
	"foodgram-backend/pkg/user"
)

type (
	SubscriptionService interface {
		Subscribe(ctx context.Context, userID, authorID uint, recipesLimit int) (domain.UserWithRecipes, error)
		Unsubscribe(ctx context.Context, userID, authorID uint) error
		GetSubscriptions(ctx context.Context, userID uint, page domain.PaginationRequest, recipesLimit int) ([]domain.UserWithRecipes, int64, error)
	}

	subscriptionService struct {
		subscriptionRepository SubscriptionRepository
		userRepository         user.UserRepository
		recipeService          recipe.RecipeService
	}
)

func NewSubscriptionService(
	subscriptionRepository SubscriptionRepository,
	userRepository user.UserRepository,
	recipeService recipe.RecipeService,
) SubscriptionService {
	return &subscriptionService{
		subscriptionRepository: subscriptionRepository,
		userRepository:         userRepository,
		recipeService:          recipeService,
	}
}

func (s *subscriptionService) Subscribe(ctx context.Context, userID, authorID uint, recipesLimit int) (domain.UserWithRecipes, error) {
	author, err := s.userRepository.GetUserByID(ctx, authorID)
	if err != nil {
		return domain.UserWithRecipes{}, err
	}
	if author.ID == userID {
		return domain.UserWithRecipes{}, domain.ErrSelfSubscription
	}

	if err := s.subscriptionRepository.Subscribe(ctx, userID, authorID); err != nil {
		return domain.UserWithRecipes{}, err
	}

	metrics.RecordMembership("subscription", "add")
	logging.Ctx(ctx).Info().Uint("user_id", userID).Uint("author_id", authorID).Msg("subscribed")

	res, err := s.withRecipes(ctx, []*entities.User{author}, userID, recipesLimit)
	if err != nil {
		return domain.UserWithRecipes{}, err
	}
	return res[0], nil
}

func (s *subscriptionService) Unsubscribe(ctx context.Context, userID, authorID uint) error {
	if _, err := s.userRepository.GetUserByID(ctx, authorID); err != nil {
		return err
	}
	if err := s.subscriptionRepository.Unsubscribe(ctx, userID, authorID); err != nil {
		return err
	}

	metrics.RecordMembership("subscription", "remove")
	return nil
}

func (s *subscriptionService) GetSubscriptions(ctx context.Context, userID uint, page domain.PaginationRequest, recipesLimit int) ([]domain.UserWithRecipes, int64, error) {
	page = page.Normalize()

	authors, count, err := s.subscriptionRepository.GetSubscribedAuthors(ctx, userID, page)
	if err != nil {
		return nil, 0, err
	}

	res, err := s.withRecipes(ctx, authors, userID, recipesLimit)
	if err != nil {
		return nil, 0, err
	}
	return res, count, nil
}

// withRecipes attaches each author's newest recipes (capped at recipesLimit
// when positive) and total recipe count.
func (s *subscriptionService) withRecipes(ctx context.Context, authors []*entities.User, viewerID uint, recipesLimit int) ([]domain.UserWithRecipes, error) {
	ids := make([]uint, 0, len(authors))
	for _, a := range authors {
		ids = append(ids, a.ID)
	}

	counts, err := s.recipeService.CountAuthorRecipes(ctx, ids)
	if err != nil {
		return nil, err
	}
	subscribed, err := s.subscriptionRepository.SubscribedAuthorIDs(ctx, viewerID, ids)
	if err != nil {
		return nil, err
	}

	res := make([]domain.UserWithRecipes, 0, len(authors))
	for _, a := range authors {
		recipes, err := s.recipeService.GetAuthorRecipes(ctx, a.ID, recipesLimit, viewerID)
		if err != nil {
			return nil, err
		}
		res = append(res, domain.UserWithRecipes{
			User:         user.ToDomainUser(a, subscribed[a.ID]),
			Recipes:      recipes,
			RecipesCount: counts[a.ID],
		})
	}
	return res, nil
}
