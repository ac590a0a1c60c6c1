package memory

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gulfcoastprop/platform/internal/apperrors"
	"github.com/gulfcoastprop/platform/internal/models"
	"github.com/gulfcoastprop/platform/internal/repository"
)

func Test_UserRepo(t *testing.T) {
	t.Parallel()

	t.Run("create and get user", func(t *testing.T) {
		s := NewStorage()

		created, err := s.User().CreateUser(t.Context(), "buyer@example.com", "hash")
		require.NoError(t, err)
		require.NotEqual(t, uuid.Nil, created.ID)

		byEmail, err := s.User().GetUserByEmail(t.Context(), "buyer@example.com")
		require.NoError(t, err)
		require.Equal(t, created, byEmail)

		byID, err := s.User().GetUserByID(t.Context(), created.ID)
		require.NoError(t, err)
		require.Equal(t, created, byID)
	})

	t.Run("create duplicate email fails", func(t *testing.T) {
		s := NewStorage()
		_, err := s.User().CreateUser(t.Context(), "buyer@example.com", "hash")
		require.NoError(t, err)

		_, err = s.User().CreateUser(t.Context(), "buyer@example.com", "other-hash")

		assert.ErrorIs(t, err, apperrors.ErrUserAlreadyExists)
	})

	t.Run("get unknown user fails", func(t *testing.T) {
		s := NewStorage()

		_, err := s.User().GetUserByEmail(t.Context(), "nobody@example.com")
		assert.ErrorIs(t, err, apperrors.ErrUserNotFound)

		_, err = s.User().GetUserByID(t.Context(), uuid.New())
		assert.ErrorIs(t, err, apperrors.ErrUserNotFound)
	})

	t.Run("update password", func(t *testing.T) {
		s := NewStorage()
		_, err := s.User().CreateUser(t.Context(), "buyer@example.com", "hash")
		require.NoError(t, err)

		err = s.User().UpdatePassword(t.Context(), "buyer@example.com", "new-hash")
		require.NoError(t, err)

		user, err := s.User().GetUserByEmail(t.Context(), "buyer@example.com")
		require.NoError(t, err)
		assert.Equal(t, "new-hash", user.HashedPassword)
	})

	t.Run("update password unknown email fails", func(t *testing.T) {
		s := NewStorage()

		err := s.User().UpdatePassword(t.Context(), "nobody@example.com", "new-hash")

		assert.ErrorIs(t, err, apperrors.ErrUserNotFound)
	})
}

func Test_RefreshTokenRepo(t *testing.T) {
	t.Parallel()

	now := time.Date(2024, 1, 1, 19, 0, 1, 0, time.UTC)

	newToken := func() models.RefreshToken {
		return models.RefreshToken{
			ID:        uuid.New(),
			UserID:    uuid.New(),
			Token:     "secret-token",
			CreatedAt: now,
			ExpiresAt: now.Add(30 * 24 * time.Hour),
		}
	}

	t.Run("create and get valid", func(t *testing.T) {
		s := NewStorage()
		token := newToken()
		_, err := s.Refresh().Create(t.Context(), token)
		require.NoError(t, err)

		got, err := s.Refresh().GetValid(t.Context(), token.Token, now)

		require.NoError(t, err)
		require.Equal(t, token, got)
	})

	t.Run("expired token looks like an unknown one", func(t *testing.T) {
		s := NewStorage()
		token := newToken()
		_, err := s.Refresh().Create(t.Context(), token)
		require.NoError(t, err)

		_, err = s.Refresh().GetValid(t.Context(), token.Token, token.ExpiresAt)
		assert.ErrorIs(t, err, apperrors.ErrRefreshTokenNotFound)

		_, err = s.Refresh().GetValid(t.Context(), "no-such-token", now)
		assert.ErrorIs(t, err, apperrors.ErrRefreshTokenNotFound)
	})

	t.Run("delete revokes and is idempotent", func(t *testing.T) {
		s := NewStorage()
		token := newToken()
		_, err := s.Refresh().Create(t.Context(), token)
		require.NoError(t, err)

		require.NoError(t, s.Refresh().Delete(t.Context(), token.Token))

		_, err = s.Refresh().GetValid(t.Context(), token.Token, now)
		assert.ErrorIs(t, err, apperrors.ErrRefreshTokenNotFound)

		require.NoError(t, s.Refresh().Delete(t.Context(), token.Token))
	})
}

func Test_PasswordResetRepo(t *testing.T) {
	t.Parallel()

	now := time.Date(2024, 1, 1, 19, 0, 1, 0, time.UTC)

	reset := models.PasswordReset{
		Email:     "buyer@example.com",
		Token:     "reset-token",
		CreatedAt: now,
		ExpiresAt: now.Add(time.Hour),
	}

	t.Run("upsert and get by token", func(t *testing.T) {
		s := NewStorage()

		_, err := s.Reset().Upsert(t.Context(), reset)
		require.NoError(t, err)

		got, err := s.Reset().GetByToken(t.Context(), reset.Token)
		require.NoError(t, err)
		require.Equal(t, reset, got)
	})

	t.Run("second upsert replaces the token for the email", func(t *testing.T) {
		s := NewStorage()
		_, err := s.Reset().Upsert(t.Context(), reset)
		require.NoError(t, err)

		second := reset
		second.Token = "newer-reset-token"
		_, err = s.Reset().Upsert(t.Context(), second)
		require.NoError(t, err)

		_, err = s.Reset().GetByToken(t.Context(), reset.Token)
		assert.ErrorIs(t, err, apperrors.ErrResetTokenInvalid)

		got, err := s.Reset().GetByToken(t.Context(), second.Token)
		require.NoError(t, err)
		require.Equal(t, second, got)
	})

	t.Run("delete by token is idempotent", func(t *testing.T) {
		s := NewStorage()
		_, err := s.Reset().Upsert(t.Context(), reset)
		require.NoError(t, err)

		require.NoError(t, s.Reset().DeleteByToken(t.Context(), reset.Token))

		_, err = s.Reset().GetByToken(t.Context(), reset.Token)
		assert.ErrorIs(t, err, apperrors.ErrResetTokenInvalid)

		require.NoError(t, s.Reset().DeleteByToken(t.Context(), reset.Token))
	})
}

func Test_Storage_InTx(t *testing.T) {
	t.Parallel()

	s := NewStorage()

	err := s.InTx(t.Context(), func(store repository.Storage) error {
		_, err := store.User().CreateUser(t.Context(), "buyer@example.com", "hash")
		return err
	})
	require.NoError(t, err)

	_, err = s.User().GetUserByEmail(t.Context(), "buyer@example.com")
	require.NoError(t, err)
}
