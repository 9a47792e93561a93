package subscription

import (
	"context"
	"errors"

	"foodgram-backend/domain"
	"foodgram-backend/entities"

	"gorm.io/gorm"
)

type (
	SubscriptionRepository interface {
		Subscribe(ctx context.Context, userID, authorID uint) error
		Unsubscribe(ctx context.Context, userID, authorID uint) error
		GetSubscribedAuthors(ctx context.Context, userID uint, page domain.PaginationRequest) ([]*entities.User, int64, error)
		SubscribedAuthorIDs(ctx context.Context, userID uint, authorIDs []uint) (map[uint]bool, error)
	}

	subscriptionRepository struct {
		db *gorm.DB
	}
)

func NewSubscriptionRepository(db *gorm.DB) SubscriptionRepository {
	return &subscriptionRepository{db: db}
}

func (r *subscriptionRepository) Subscribe(ctx context.Context, userID, authorID uint) error {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&entities.Subscription{}).
		Where("user_id = ? AND author_id = ?", userID, authorID).
		Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return domain.ErrAlreadySubscribed
	}

	return insertSubscription(ctx, r.db, &entities.Subscription{UserID: userID, AuthorID: authorID})
}

// insertSubscription maps a unique-index violation from a concurrent
// subscribe to ErrAlreadySubscribed.
func insertSubscription(ctx context.Context, db *gorm.DB, sub *entities.Subscription) error {
	if err := db.WithContext(ctx).Omit("User", "Author").Create(sub).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return domain.ErrAlreadySubscribed
		}
		return err
	}
	return nil
}

func (r *subscriptionRepository) Unsubscribe(ctx context.Context, userID, authorID uint) error {
	res := r.db.WithContext(ctx).
		Where("user_id = ? AND author_id = ?", userID, authorID).
		Delete(&entities.Subscription{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return domain.ErrNotSubscribed
	}
	return nil
}

func (r *subscriptionRepository) GetSubscribedAuthors(ctx context.Context, userID uint, page domain.PaginationRequest) ([]*entities.User, int64, error) {
	var authors []*entities.User
	var count int64

	if err := r.db.WithContext(ctx).
		Model(&entities.Subscription{}).
		Where("user_id = ?", userID).
		Count(&count).Error; err != nil {
		return nil, 0, err
	}

	if err := r.db.WithContext(ctx).
		Joins("JOIN subscriptions ON subscriptions.author_id = users.id").
		Where("subscriptions.user_id = ?", userID).
		Order("subscriptions.id desc").
		Offset(page.Offset()).
		Limit(page.Limit).
		Find(&authors).Error; err != nil {
		return nil, 0, err
	}

	return authors, count, nil
}

func (r *subscriptionRepository) SubscribedAuthorIDs(ctx context.Context, userID uint, authorIDs []uint) (map[uint]bool, error) {
	set := make(map[uint]bool, len(authorIDs))
	if userID == 0 || len(authorIDs) == 0 {
		return set, nil
	}

	var ids []uint
	if err := r.db.WithContext(ctx).
		Model(&entities.Subscription{}).
		Where("user_id = ? AND author_id IN ?", userID, authorIDs).
		Pluck("author_id", &ids).Error; err != nil {
		return nil, err
	}

	for _, id := range ids {
		set[id] = true
	}
	return set, nil
}
