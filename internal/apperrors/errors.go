package apperrors

import (
	"errors"
)

var (
	ErrUserAlreadyExists  = errors.New("user already exists")
	ErrUserNotFound       = errors.New("user not found")
	ErrInvalidCredentials = errors.New("invalid credentials")

	ErrRefreshTokenNotFound = errors.New("refresh token not found or expired")

	ErrResetTokenInvalid = errors.New("reset token invalid or expired")

	ErrAccessTokenInvalid = errors.New("access token invalid or expired")

	ErrPaymentsNotConfigured = errors.New("payment provider not configured")
	ErrWebhookSignature      = errors.New("webhook signature verification failed")
)
