package memory

import (
	"context"
	"time"

	"github.com/gulfcoastprop/platform/internal/apperrors"
	"github.com/gulfcoastprop/platform/internal/models"
)

type RefreshTokenRepo struct {
	s *Storage
}

func (r *RefreshTokenRepo) Create(ctx context.Context, token models.RefreshToken) (models.RefreshToken, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	r.s.refreshTokens[token.Token] = token

	return token, nil
}

func (r *RefreshTokenRepo) GetValid(ctx context.Context, tokenString string, now time.Time) (models.RefreshToken, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	token, ok := r.s.refreshTokens[tokenString]
	if !ok || !token.ExpiresAt.After(now) {
		return models.RefreshToken{}, apperrors.ErrRefreshTokenNotFound
	}
	return token, nil
}

func (r *RefreshTokenRepo) Delete(ctx context.Context, tokenString string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	delete(r.s.refreshTokens, tokenString)

	return nil
}
