package domain

import "errors"

var (
	MessageSuccessRegister       = "user registered"
	MessageSuccessLogin          = "user logged in"
	MessageSuccessLogout         = "user logged out"
	MessageSuccessGetUser        = "success get user"
	MessageSuccessGetUsers       = "success get users"
	MessageSuccessSetPassword    = "password changed"
	MessageSuccessUpdateAvatar   = "avatar updated"
	MessageSuccessDeleteAvatar   = "avatar deleted"
	MessageSuccessResetPassword  = "password reset requested"
	MessageSuccessResetConfirmed = "password reset confirmed"
	MessageSuccessSubscribe      = "subscribed"
	MessageSuccessUnsubscribe    = "unsubscribed"
	MessageSuccessGetSubs        = "success get subscriptions"

	MessageFailedRegister      = "failed to register user"
	MessageFailedLogin         = "failed to log in"
	MessageFailedGetUser       = "failed to get user"
	MessageFailedGetUsers      = "failed to get users"
	MessageFailedSetPassword   = "failed to change password"
	MessageFailedUpdateAvatar  = "failed to update avatar"
	MessageFailedDeleteAvatar  = "failed to delete avatar"
	MessageFailedResetPassword = "failed to reset password"
	MessageFailedSubscribe     = "failed to subscribe"
	MessageFailedUnsubscribe   = "failed to unsubscribe"
	MessageFailedGetSubs       = "failed to get subscriptions"

	ErrUserNotFound          = errors.New("user not found")
	ErrEmailAlreadyExists    = errors.New("a user with that email already exists")
	ErrUsernameAlreadyExists = errors.New("a user with that username already exists")
	ErrInvalidCredentials    = errors.New("unable to log in with provided credentials")
	ErrWrongPassword         = errors.New("invalid current password")
	ErrResetTokenInvalid     = errors.New("invalid or expired password reset token")
	ErrSelfSubscription      = errors.New("you cannot subscribe to yourself")
	ErrAlreadySubscribed     = errors.New("you are already subscribed to this user")
	ErrNotSubscribed         = errors.New("you are not subscribed to this user")
)

type (
	RegisterRequest struct {
		Email     string `json:"email" validate:"required,email,max=254"`
		Username  string `json:"username" validate:"required,max=150,username"`
		FirstName string `json:"first_name" validate:"required,notblank,max=150"`
		LastName  string `json:"last_name" validate:"required,notblank,max=150"`
		Password  string `json:"password" validate:"required,min=8,max=128"`
	}

	RegisterResponse struct {
		Email     string `json:"email"`
		ID        uint   `json:"id"`
		Username  string `json:"username"`
		FirstName string `json:"first_name"`
		LastName  string `json:"last_name"`
	}

	LoginRequest struct {
		Email    string `json:"email" validate:"required,email"`
		Password string `json:"password" validate:"required"`
	}

	LoginResponse struct {
		AuthToken string `json:"auth_token"`
	}

	SetPasswordRequest struct {
		CurrentPassword string `json:"current_password" validate:"required"`
		NewPassword     string `json:"new_password" validate:"required,min=8,max=128"`
	}

	AvatarRequest struct {
		Avatar string `json:"avatar" validate:"required,base64image"`
	}

	AvatarResponse struct {
		Avatar *string `json:"avatar"`
	}

	ResetPasswordRequest struct {
		Email string `json:"email" validate:"required,email"`
	}

	ResetPasswordConfirmRequest struct {
		Token       string `json:"token" validate:"required"`
		NewPassword string `json:"new_password" validate:"required,min=8,max=128"`
	}

	User struct {
		Email        string  `json:"email"`
		ID           uint    `json:"id"`
		Username     string  `json:"username"`
		FirstName    string  `json:"first_name"`
		LastName     string  `json:"last_name"`
		IsSubscribed bool    `json:"is_subscribed"`
		Avatar       *string `json:"avatar"`
	}

	UserWithRecipes struct {
		User
		Recipes      []Recipe `json:"recipes"`
		RecipesCount int64    `json:"recipes_count"`
	}
)
