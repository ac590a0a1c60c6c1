package repository

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/gulfcoastprop/platform/internal/models"
)

// User repository interface
type UserRepo interface {
	// Create user with already hashed password
	// Uniqueness is enforced by the store itself, not by a prior read.
	// If a user with the email exists has to return apperrors.ErrUserAlreadyExists
	CreateUser(ctx context.Context, email string, hashedPassword string) (models.User, error)

	// Get user by email or id
	// If user not found must return apperrors.ErrUserNotFound
	GetUserByEmail(ctx context.Context, email string) (models.User, error)
	GetUserByID(ctx context.Context, userID uuid.UUID) (models.User, error)

	// Overwrite the stored password hash for the user with the email
	// If user not found must return apperrors.ErrUserNotFound
	UpdatePassword(ctx context.Context, email string, hashedPassword string) error
}

// RefreshToken repository interface
type RefreshTokenRepo interface {
	// Persist token
	Create(ctx context.Context, token models.RefreshToken) (models.RefreshToken, error)

	// Return the token only if it exists and expires after 'now'
	// Absent and expired tokens are indistinguishable to the caller:
	// both must return apperrors.ErrRefreshTokenNotFound
	GetValid(ctx context.Context, tokenString string, now time.Time) (models.RefreshToken, error)

	// Delete the token. Idempotent: deleting an unknown token is not an error
	Delete(ctx context.Context, tokenString string) error
}

// PasswordReset repository interface
type PasswordResetRepo interface {
	// Insert or, if a request for the email exists, overwrite its token
	// and expiry. The previous token becomes invalid immediately.
	Upsert(ctx context.Context, reset models.PasswordReset) (models.PasswordReset, error)

	// Find a request by its token
	// If not found must return apperrors.ErrResetTokenInvalid
	GetByToken(ctx context.Context, tokenString string) (models.PasswordReset, error)

	// Delete the request by token. Idempotent
	DeleteByToken(ctx context.Context, tokenString string) error
}

// Storage bundles the repositories over a single backing store
type Storage interface {
	User() UserRepo
	Refresh() RefreshTokenRepo
	Reset() PasswordResetRepo

	// Run fn within a store transaction when the backend supports one
	InTx(ctx context.Context, fn func(Storage) error) error
}
