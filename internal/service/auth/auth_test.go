package auth

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gulfcoastprop/platform/internal/apperrors"
	"github.com/gulfcoastprop/platform/internal/repository/memory"
	"github.com/gulfcoastprop/platform/internal/service/auth/tokenmanager"
)

// recordingMailer remembers the last reset token per email
type recordingMailer struct {
	mu     sync.Mutex
	tokens map[string]string
}

func (m *recordingMailer) SendPasswordReset(ctx context.Context, email string, token string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.tokens == nil {
		m.tokens = map[string]string{}
	}
	m.tokens[email] = token
	return nil
}

func (m *recordingMailer) tokenFor(email string) string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.tokens[email]
}

type authFixture struct {
	service *AuthService
	storage *memory.Storage
	mailer  *recordingMailer
	clock   *time.Time
}

func newAuthFixture(t *testing.T) authFixture {
	t.Helper()

	now := time.Date(2024, 1, 1, 19, 0, 1, 0, time.UTC)
	clock := &now
	nowFn := func() time.Time { return *clock }

	storage := memory.NewStorage()
	manager, err := tokenmanager.New(
		tokenmanager.Config{SecretKey: "secret", Now: nowFn},
		storage.Refresh(),
	)
	require.NoError(t, err)

	mailer := &recordingMailer{}
	service, err := NewService(Config{Now: nowFn}, manager, storage, mailer, nil)
	require.NoError(t, err)

	return authFixture{service: service, storage: storage, mailer: mailer, clock: clock}
}

func Test_AuthService_Signup(t *testing.T) {
	t.Parallel()

	t.Run("signup stores hash and returns tokens", func(t *testing.T) {
		f := newAuthFixture(t)

		user, pair, err := f.service.Signup(t.Context(), "buyer@example.com", "password")

		require.NoError(t, err)
		assert.Equal(t, "buyer@example.com", user.Email)
		assert.NotEmpty(t, pair.Access.Value)
		assert.NotEmpty(t, pair.Refresh.Value)

		stored, err := f.storage.User().GetUserByEmail(t.Context(), "buyer@example.com")
		require.NoError(t, err)
		assert.NotEqual(t, "password", stored.HashedPassword)
		assert.NoError(t, DefaultHasher.Compare(stored.HashedPassword, "password"))
	})

	t.Run("email is normalized", func(t *testing.T) {
		f := newAuthFixture(t)

		user, _, err := f.service.Signup(t.Context(), "  Buyer@Example.COM ", "password")

		require.NoError(t, err)
		assert.Equal(t, "buyer@example.com", user.Email)
	})

	t.Run("duplicate email fails with conflict", func(t *testing.T) {
		f := newAuthFixture(t)
		_, _, err := f.service.Signup(t.Context(), "buyer@example.com", "password")
		require.NoError(t, err)

		_, _, err = f.service.Signup(t.Context(), "Buyer@example.com", "other-password")

		assert.ErrorIs(t, err, apperrors.ErrUserAlreadyExists)
	})
}

func Test_AuthService_Login(t *testing.T) {
	t.Parallel()

	t.Run("login with correct password", func(t *testing.T) {
		f := newAuthFixture(t)
		_, _, err := f.service.Signup(t.Context(), "buyer@example.com", "password")
		require.NoError(t, err)

		user, pair, err := f.service.Login(t.Context(), "buyer@example.com", "password")

		require.NoError(t, err)
		assert.Equal(t, "buyer@example.com", user.Email)
		assert.NotEmpty(t, pair.Refresh.Value)
	})

	t.Run("wrong password and unknown email fail the same way", func(t *testing.T) {
		f := newAuthFixture(t)
		_, _, err := f.service.Signup(t.Context(), "buyer@example.com", "password")
		require.NoError(t, err)

		_, _, wrongPassword := f.service.Login(t.Context(), "buyer@example.com", "wrong")
		_, _, unknownEmail := f.service.Login(t.Context(), "nobody@example.com", "password")

		assert.ErrorIs(t, wrongPassword, apperrors.ErrInvalidCredentials)
		assert.ErrorIs(t, unknownEmail, apperrors.ErrInvalidCredentials)
		assert.Equal(t, wrongPassword.Error(), unknownEmail.Error())
	})
}

func Test_AuthService_RefreshAndLogout(t *testing.T) {
	t.Parallel()

	t.Run("refresh reissues access, keeps the refresh token", func(t *testing.T) {
		f := newAuthFixture(t)
		_, pair, err := f.service.Signup(t.Context(), "buyer@example.com", "password")
		require.NoError(t, err)

		access, err := f.service.Refresh(t.Context(), pair.Refresh.Value)
		require.NoError(t, err)
		assert.NotEmpty(t, access.Value)

		// Not rotated: the same refresh token works again
		_, err = f.service.Refresh(t.Context(), pair.Refresh.Value)
		require.NoError(t, err)
	})

	t.Run("refresh with unknown token fails", func(t *testing.T) {
		f := newAuthFixture(t)

		_, err := f.service.Refresh(t.Context(), "no-such-token")

		assert.ErrorIs(t, err, apperrors.ErrRefreshTokenNotFound)
	})

	t.Run("refresh after expiry fails like an unknown token", func(t *testing.T) {
		f := newAuthFixture(t)
		_, pair, err := f.service.Signup(t.Context(), "buyer@example.com", "password")
		require.NoError(t, err)

		*f.clock = f.clock.Add(31 * 24 * time.Hour)

		_, err = f.service.Refresh(t.Context(), pair.Refresh.Value)
		assert.ErrorIs(t, err, apperrors.ErrRefreshTokenNotFound)
	})

	t.Run("logout revokes the refresh token", func(t *testing.T) {
		f := newAuthFixture(t)
		_, pair, err := f.service.Signup(t.Context(), "buyer@example.com", "password")
		require.NoError(t, err)

		require.NoError(t, f.service.Logout(t.Context(), pair.Refresh.Value))

		_, err = f.service.Refresh(t.Context(), pair.Refresh.Value)
		assert.ErrorIs(t, err, apperrors.ErrRefreshTokenNotFound)

		// Logging out twice is fine
		require.NoError(t, f.service.Logout(t.Context(), pair.Refresh.Value))
	})
}

func Test_AuthService_PasswordReset(t *testing.T) {
	t.Parallel()

	t.Run("request mails a token and confirm changes the password", func(t *testing.T) {
		f := newAuthFixture(t)
		_, _, err := f.service.Signup(t.Context(), "buyer@example.com", "password")
		require.NoError(t, err)

		require.NoError(t, f.service.RequestPasswordReset(t.Context(), "buyer@example.com"))
		token := f.mailer.tokenFor("buyer@example.com")
		require.NotEmpty(t, token)

		require.NoError(t, f.service.ConfirmPasswordReset(t.Context(), token, "new-password"))

		_, _, err = f.service.Login(t.Context(), "buyer@example.com", "password")
		assert.ErrorIs(t, err, apperrors.ErrInvalidCredentials)
		_, _, err = f.service.Login(t.Context(), "buyer@example.com", "new-password")
		assert.NoError(t, err)
	})

	t.Run("request for unknown email is silently accepted", func(t *testing.T) {
		f := newAuthFixture(t)

		require.NoError(t, f.service.RequestPasswordReset(t.Context(), "nobody@example.com"))

		assert.Empty(t, f.mailer.tokenFor("nobody@example.com"))
	})

	t.Run("newer request invalidates the previous token", func(t *testing.T) {
		f := newAuthFixture(t)
		_, _, err := f.service.Signup(t.Context(), "buyer@example.com", "password")
		require.NoError(t, err)

		require.NoError(t, f.service.RequestPasswordReset(t.Context(), "buyer@example.com"))
		first := f.mailer.tokenFor("buyer@example.com")
		require.NoError(t, f.service.RequestPasswordReset(t.Context(), "buyer@example.com"))
		second := f.mailer.tokenFor("buyer@example.com")
		require.NotEqual(t, first, second)

		err = f.service.ConfirmPasswordReset(t.Context(), first, "new-password")
		assert.ErrorIs(t, err, apperrors.ErrResetTokenInvalid)

		require.NoError(t, f.service.ConfirmPasswordReset(t.Context(), second, "new-password"))
	})

	t.Run("token is single use", func(t *testing.T) {
		f := newAuthFixture(t)
		_, _, err := f.service.Signup(t.Context(), "buyer@example.com", "password")
		require.NoError(t, err)
		require.NoError(t, f.service.RequestPasswordReset(t.Context(), "buyer@example.com"))
		token := f.mailer.tokenFor("buyer@example.com")

		require.NoError(t, f.service.ConfirmPasswordReset(t.Context(), token, "new-password"))

		err = f.service.ConfirmPasswordReset(t.Context(), token, "another-password")
		assert.ErrorIs(t, err, apperrors.ErrResetTokenInvalid)
	})

	t.Run("expired token is rejected", func(t *testing.T) {
		f := newAuthFixture(t)
		_, _, err := f.service.Signup(t.Context(), "buyer@example.com", "password")
		require.NoError(t, err)
		require.NoError(t, f.service.RequestPasswordReset(t.Context(), "buyer@example.com"))
		token := f.mailer.tokenFor("buyer@example.com")

		*f.clock = f.clock.Add(time.Hour)

		err = f.service.ConfirmPasswordReset(t.Context(), token, "new-password")
		assert.ErrorIs(t, err, apperrors.ErrResetTokenInvalid)
	})
}

func Test_AuthService_UserFromAccess(t *testing.T) {
	t.Parallel()

	t.Run("valid token loads its user", func(t *testing.T) {
		f := newAuthFixture(t)
		signed, pair, err := f.service.Signup(t.Context(), "buyer@example.com", "password")
		require.NoError(t, err)

		user, err := f.service.UserFromAccess(t.Context(), pair.Access.Value)

		require.NoError(t, err)
		assert.Equal(t, signed.ID, user.ID)
		assert.Equal(t, signed.Email, user.Email)
	})

	t.Run("garbage token fails", func(t *testing.T) {
		f := newAuthFixture(t)

		_, err := f.service.UserFromAccess(t.Context(), "not-a-jwt")

		assert.ErrorIs(t, err, apperrors.ErrAccessTokenInvalid)
	})

	t.Run("expired token fails", func(t *testing.T) {
		f := newAuthFixture(t)
		_, pair, err := f.service.Signup(t.Context(), "buyer@example.com", "password")
		require.NoError(t, err)

		*f.clock = f.clock.Add(25 * time.Hour)

		_, err = f.service.UserFromAccess(t.Context(), pair.Access.Value)
		assert.ErrorIs(t, err, apperrors.ErrAccessTokenInvalid)
	})
}

func Test_NormalizeEmail(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "buyer@example.com", NormalizeEmail("  Buyer@Example.COM "))
	assert.Equal(t, "buyer@example.com", NormalizeEmail("buyer@example.com"))
}
