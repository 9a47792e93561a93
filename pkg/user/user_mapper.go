package user

import (
	"context"

	"foodgram-backend/domain"
	"foodgram-backend/entities"
)

// SubscriptionChecker reports which of authorIDs the user follows.
type SubscriptionChecker interface {
	SubscribedAuthorIDs(ctx context.Context, userID uint, authorIDs []uint) (map[uint]bool, error)
}

func ToDomainUser(u *entities.User, isSubscribed bool) domain.User {
	return domain.User{
		Email:        u.Email,
		ID:           u.ID,
		Username:     u.Username,
		FirstName:    u.FirstName,
		LastName:     u.LastName,
		IsSubscribed: isSubscribed,
		Avatar:       u.Avatar,
	}
}

// SubscribedSet resolves is_subscribed for a batch of authors in one query.
// Anonymous viewers (id 0) follow nobody.
func SubscribedSet(ctx context.Context, checker SubscriptionChecker, viewerID uint, authorIDs []uint) (map[uint]bool, error) {
	if viewerID == 0 || len(authorIDs) == 0 {
		return map[uint]bool{}, nil
	}
	return checker.SubscribedAuthorIDs(ctx, viewerID, authorIDs)
}
