package memory

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/gulfcoastprop/platform/internal/apperrors"
	"github.com/gulfcoastprop/platform/internal/models"
)

type UserRepo struct {
	s *Storage
}

func (r *UserRepo) CreateUser(ctx context.Context, email string, hashedPassword string) (models.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, exists := r.s.usersByEmail[email]; exists {
		return models.User{}, apperrors.ErrUserAlreadyExists
	}

	user := models.User{
		ID:             uuid.New(),
		CreatedAt:      time.Now(),
		Email:          email,
		HashedPassword: hashedPassword,
	}
	r.s.usersByEmail[email] = user

	return user, nil
}

func (r *UserRepo) GetUserByEmail(ctx context.Context, email string) (models.User, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	user, ok := r.s.usersByEmail[email]
	if !ok {
		return models.User{}, apperrors.ErrUserNotFound
	}
	return user, nil
}

func (r *UserRepo) GetUserByID(ctx context.Context, userID uuid.UUID) (models.User, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	for _, user := range r.s.usersByEmail {
		if user.ID == userID {
			return user, nil
		}
	}
	return models.User{}, apperrors.ErrUserNotFound
}

func (r *UserRepo) UpdatePassword(ctx context.Context, email string, hashedPassword string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	user, ok := r.s.usersByEmail[email]
	if !ok {
		return apperrors.ErrUserNotFound
	}

	user.HashedPassword = hashedPassword
	r.s.usersByEmail[email] = user

	return nil
}
