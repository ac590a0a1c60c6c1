package memory

import (
	"context"

	"github.com/gulfcoastprop/platform/internal/apperrors"
	"github.com/gulfcoastprop/platform/internal/models"
)

type PasswordResetRepo struct {
	s *Storage
}

func (r *PasswordResetRepo) Upsert(ctx context.Context, reset models.PasswordReset) (models.PasswordReset, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	r.s.resetsByEmail[reset.Email] = reset

	return reset, nil
}

func (r *PasswordResetRepo) GetByToken(ctx context.Context, tokenString string) (models.PasswordReset, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	for _, reset := range r.s.resetsByEmail {
		if reset.Token == tokenString {
			return reset, nil
		}
	}
	return models.PasswordReset{}, apperrors.ErrResetTokenInvalid
}

func (r *PasswordResetRepo) DeleteByToken(ctx context.Context, tokenString string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	for email, reset := range r.s.resetsByEmail {
		if reset.Token == tokenString {
			delete(r.s.resetsByEmail, email)
			return nil
		}
	}
	return nil
}
