package domain

import "errors"

var (
	MessageFailedBodyRequest    = "failed to parse request body"
	MessageFailedProcessRequest = "failed to process request"
	MessageFailedValidation     = "validation failed"
	MessageUserNotAllowed       = "user not allowed"
	MessageFailedGetToken       = "failed to get token"
	MessageFailedTokenInvalid   = "failed to token invalid"
	MessageInternalServerError  = "internal server error"

	ErrParseID            = errors.New("invalid id")
	ErrNotAuthenticated   = errors.New("authentication credentials were not provided")
	ErrTokenNotFound      = errors.New("failed to token not found")
	ErrTokenInvalid       = errors.New("invalid token")
	ErrTokenExpired       = errors.New("token expired")
	ErrPermissionDenied   = errors.New("you do not have permission to perform this action")
	ErrInvalidImage       = errors.New("upload a valid image")
	ErrFileTypeNotAllowed = errors.New("file type not allowed")
)
