package user

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"foodgram-backend/domain"
	"foodgram-backend/entities"
	"foodgram-backend/internal/utils/logging"
	"foodgram-backend/internal/utils/mailing"
	"foodgram-backend/internal/utils/storage"
	"foodgram-backend/pkg/jwt"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

const resetTokenTTL = 30 * time.Minute

type (
	UserService interface {
		Register(ctx context.Context, req domain.RegisterRequest) (domain.RegisterResponse, error)
		Login(ctx context.Context, req domain.LoginRequest) (domain.LoginResponse, error)
		Me(ctx context.Context, userID uint) (domain.User, error)
		GetUserByID(ctx context.Context, id uint, viewerID uint) (domain.User, error)
		GetUsers(ctx context.Context, page domain.PaginationRequest, viewerID uint) ([]domain.User, int64, error)
		SetPassword(ctx context.Context, userID uint, req domain.SetPasswordRequest) error
		UpdateAvatar(ctx context.Context, userID uint, req domain.AvatarRequest) (domain.AvatarResponse, error)
		DeleteAvatar(ctx context.Context, userID uint) error
		ForgotPassword(ctx context.Context, req domain.ResetPasswordRequest) error
		ResetPassword(ctx context.Context, req domain.ResetPasswordConfirmRequest) error
	}

	userService struct {
		userRepository UserRepository
		subscriptions  SubscriptionChecker
		jwtService     jwt.JWTService
		storage        storage.Storage
		mailer         mailing.Mailer
		appURL         string
	}
)

func NewUserService(
	userRepository UserRepository,
	subscriptions SubscriptionChecker,
	jwtService jwt.JWTService,
	storage storage.Storage,
	mailer mailing.Mailer,
	appURL string,
) UserService {
	return &userService{
		userRepository: userRepository,
		subscriptions:  subscriptions,
		jwtService:     jwtService,
		storage:        storage,
		mailer:         mailer,
		appURL:         strings.TrimRight(appURL, "/"),
	}
}

func (s *userService) Register(ctx context.Context, req domain.RegisterRequest) (domain.RegisterResponse, error) {
	req.Email = strings.TrimSpace(req.Email)
	req.Username = strings.TrimSpace(req.Username)

	if err := s.checkUnique(ctx, req.Email, req.Username); err != nil {
		return domain.RegisterResponse{}, err
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return domain.RegisterResponse{}, err
	}

	user, err := s.userRepository.RegisterUser(ctx, &entities.User{
		Email:     req.Email,
		Username:  req.Username,
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Password:  string(hashed),
	})
	if err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			// lost a race with a concurrent registration
			if uniqueErr := s.checkUnique(ctx, req.Email, req.Username); uniqueErr != nil {
				return domain.RegisterResponse{}, uniqueErr
			}
			return domain.RegisterResponse{}, domain.ErrEmailAlreadyExists
		}
		return domain.RegisterResponse{}, err
	}

	logging.Ctx(ctx).Info().Uint("user_id", user.ID).Str("username", user.Username).Msg("user registered")

	return domain.RegisterResponse{
		Email:     user.Email,
		ID:        user.ID,
		Username:  user.Username,
		FirstName: user.FirstName,
		LastName:  user.LastName,
	}, nil
}

func (s *userService) checkUnique(ctx context.Context, email, username string) error {
	exists, err := s.userRepository.CheckUserByEmail(ctx, email)
	if err != nil {
		return err
	}
	if exists {
		return domain.ErrEmailAlreadyExists
	}

	exists, err = s.userRepository.CheckUserByUsername(ctx, username)
	if err != nil {
		return err
	}
	if exists {
		return domain.ErrUsernameAlreadyExists
	}
	return nil
}

func (s *userService) Login(ctx context.Context, req domain.LoginRequest) (domain.LoginResponse, error) {
	user, err := s.userRepository.GetUserByEmail(ctx, strings.TrimSpace(req.Email))
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return domain.LoginResponse{}, domain.ErrInvalidCredentials
		}
		return domain.LoginResponse{}, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(req.Password)); err != nil {
		return domain.LoginResponse{}, domain.ErrInvalidCredentials
	}

	token, err := s.jwtService.GenerateTokenUser(user.ID)
	if err != nil {
		return domain.LoginResponse{}, err
	}

	return domain.LoginResponse{AuthToken: token}, nil
}

func (s *userService) Me(ctx context.Context, userID uint) (domain.User, error) {
	user, err := s.userRepository.GetUserByID(ctx, userID)
	if err != nil {
		return domain.User{}, err
	}
	return ToDomainUser(user, false), nil
}

func (s *userService) GetUserByID(ctx context.Context, id uint, viewerID uint) (domain.User, error) {
	user, err := s.userRepository.GetUserByID(ctx, id)
	if err != nil {
		return domain.User{}, err
	}

	subscribed, err := SubscribedSet(ctx, s.subscriptions, viewerID, []uint{user.ID})
	if err != nil {
		return domain.User{}, err
	}
	return ToDomainUser(user, subscribed[user.ID]), nil
}

func (s *userService) GetUsers(ctx context.Context, page domain.PaginationRequest, viewerID uint) ([]domain.User, int64, error) {
	users, count, err := s.userRepository.GetUsers(ctx, page)
	if err != nil {
		return nil, 0, err
	}

	ids := make([]uint, 0, len(users))
	for _, u := range users {
		ids = append(ids, u.ID)
	}
	subscribed, err := SubscribedSet(ctx, s.subscriptions, viewerID, ids)
	if err != nil {
		return nil, 0, err
	}

	res := make([]domain.User, 0, len(users))
	for _, u := range users {
		res = append(res, ToDomainUser(u, subscribed[u.ID]))
	}
	return res, count, nil
}

func (s *userService) SetPassword(ctx context.Context, userID uint, req domain.SetPasswordRequest) error {
	user, err := s.userRepository.GetUserByID(ctx, userID)
	if err != nil {
		return err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(req.CurrentPassword)); err != nil {
		return domain.ErrWrongPassword
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(req.NewPassword), bcrypt.DefaultCost)
	if err != nil {
		return err
	}

	if err := s.userRepository.UpdatePassword(ctx, userID, string(hashed)); err != nil {
		return err
	}

	logging.Ctx(ctx).Info().Uint("user_id", userID).Msg("password changed")
	return nil
}

func (s *userService) UpdateAvatar(ctx context.Context, userID uint, req domain.AvatarRequest) (domain.AvatarResponse, error) {
	user, err := s.userRepository.GetUserByID(ctx, userID)
	if err != nil {
		return domain.AvatarResponse{}, err
	}

	file, err := storage.DecodeDataURI(req.Avatar)
	if err != nil {
		return domain.AvatarResponse{}, err
	}

	objectKey, err := s.storage.UploadFile(ctx, file, "users/avatars", storage.AllowImage...)
	if err != nil {
		return domain.AvatarResponse{}, err
	}
	link := s.storage.GetPublicLinkKey(objectKey)

	if err := s.userRepository.UpdateAvatar(ctx, userID, &link); err != nil {
		_ = s.storage.DeleteFile(ctx, objectKey)
		return domain.AvatarResponse{}, err
	}

	s.removeAvatarObject(ctx, user.Avatar)
	return domain.AvatarResponse{Avatar: &link}, nil
}

func (s *userService) DeleteAvatar(ctx context.Context, userID uint) error {
	user, err := s.userRepository.GetUserByID(ctx, userID)
	if err != nil {
		return err
	}
	if user.Avatar == nil {
		return nil
	}

	if err := s.userRepository.UpdateAvatar(ctx, userID, nil); err != nil {
		return err
	}

	s.removeAvatarObject(ctx, user.Avatar)
	return nil
}

func (s *userService) removeAvatarObject(ctx context.Context, link *string) {
	if link == nil {
		return
	}
	objectKey := s.storage.GetObjectKeyFromLink(*link)
	if objectKey == "" {
		return
	}
	if err := s.storage.DeleteFile(ctx, objectKey); err != nil {
		logging.Ctx(ctx).Warn().Err(err).Str("object_key", objectKey).Msg("failed to delete old avatar")
	}
}

func (s *userService) ForgotPassword(ctx context.Context, req domain.ResetPasswordRequest) error {
	user, err := s.userRepository.GetUserByEmail(ctx, strings.TrimSpace(req.Email))
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			// the caller must not learn which emails are registered
			return nil
		}
		return err
	}

	token, err := s.jwtService.GenerateTokenForgetPassword(map[string]any{
		"user_id": user.ID,
		"pwd":     passwordFingerprint(user.Password),
	}, resetTokenTTL)
	if err != nil {
		return err
	}

	link := fmt.Sprintf("%s/reset-password?token=%s", s.appURL, url.QueryEscape(token))
	body := fmt.Sprintf(
		"<p>Hello, %s!</p><p>Follow <a href=\"%s\">this link</a> to set a new password. The link expires in %d minutes.</p>",
		user.Username, link, int(resetTokenTTL.Minutes()),
	)
	if err := s.mailer.SendMail(user.Email, "Foodgram password reset", body); err != nil {
		return fmt.Errorf("send reset mail: %w", err)
	}

	logging.Ctx(ctx).Info().Uint("user_id", user.ID).Msg("password reset mail sent")
	return nil
}

func (s *userService) ResetPassword(ctx context.Context, req domain.ResetPasswordConfirmRequest) error {
	claims, err := s.jwtService.ValidateTokenForgetPassword(req.Token)
	if err != nil {
		return domain.ErrResetTokenInvalid
	}

	rawID, ok := claims["user_id"].(float64)
	if !ok || rawID < 1 {
		return domain.ErrResetTokenInvalid
	}

	user, err := s.userRepository.GetUserByID(ctx, uint(rawID))
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return domain.ErrResetTokenInvalid
		}
		return err
	}

	// a token is single use: it stops matching once the password changes
	if claims["pwd"] != passwordFingerprint(user.Password) {
		return domain.ErrResetTokenInvalid
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(req.NewPassword), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	if err := s.userRepository.UpdatePassword(ctx, user.ID, string(hashed)); err != nil {
		return err
	}

	logging.Ctx(ctx).Info().Uint("user_id", user.ID).Msg("password reset")
	return nil
}

func passwordFingerprint(hash string) string {
	if len(hash) < 12 {
		return hash
	}
	return hash[len(hash)-12:]
}
