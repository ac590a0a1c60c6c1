// Package memory holds a process-local implementation of the repositories.
//
// It backs local development when no database is configured. Data lives in
// one process and is lost on restart, so it must not be used when more than
// one instance serves traffic.
package memory

import (
	"context"
	"sync"

	"github.com/gulfcoastprop/platform/internal/models"
	"github.com/gulfcoastprop/platform/internal/repository"
)

type Storage struct {
	mu sync.RWMutex

	usersByEmail  map[string]models.User
	refreshTokens map[string]models.RefreshToken
	resetsByEmail map[string]models.PasswordReset
}

func NewStorage() *Storage {
	return &Storage{
		usersByEmail:  map[string]models.User{},
		refreshTokens: map[string]models.RefreshToken{},
		resetsByEmail: map[string]models.PasswordReset{},
	}
}

func (s *Storage) User() repository.UserRepo {
	return &UserRepo{s: s}
}

func (s *Storage) Refresh() repository.RefreshTokenRepo {
	return &RefreshTokenRepo{s: s}
}

func (s *Storage) Reset() repository.PasswordResetRepo {
	return &PasswordResetRepo{s: s}
}

// InTx runs fn over the same storage. The map store has no transactions:
// each repository call is atomic under the mutex, which is enough for the
// single-row operations the services perform.
func (s *Storage) InTx(ctx context.Context, fn func(repository.Storage) error) error {
	return fn(s)
}
