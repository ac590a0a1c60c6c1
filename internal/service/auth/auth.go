package auth

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/gulfcoastprop/platform/internal/apperrors"
	"github.com/gulfcoastprop/platform/internal/logger"
	"github.com/gulfcoastprop/platform/internal/mail"
	"github.com/gulfcoastprop/platform/internal/models"
	"github.com/gulfcoastprop/platform/internal/repository"
	"github.com/gulfcoastprop/platform/internal/service/auth/tokenmanager"
)

const (
	defaultResetTokenTTL = time.Hour
	resetTokenBytes      = 32
)

// dummyHash is compared against when login hits an unknown email, so the
// unknown-email and wrong-password paths cost about the same.
var dummyHash = func() string {
	h, err := DefaultHasher.Hash("not-a-real-password")
	if err != nil {
		panic(err)
	}
	return h
}()

type Config struct {
	// Hasher to use during signup, login and password reset
	// Defaults to DefaultHasher
	Hasher PasswordHasher

	// Lifetime of a password reset token. Defaults to one hour
	ResetTTL time.Duration

	// Clock. Tests inject a frozen one, everyone else leaves it nil
	Now func() time.Time
}

type AuthService struct {
	token    *tokenmanager.TokenManager
	hasher   PasswordHasher
	storage  repository.Storage
	mailer   mail.Sender
	logger   logger.Logger
	resetTTL time.Duration
	now      func() time.Time
}

func NewService(cfg Config, token *tokenmanager.TokenManager, storage repository.Storage, mailer mail.Sender, l logger.Logger) (*AuthService, error) {
	if token == nil {
		return nil, errors.New("token manager must not be nil")
	}
	if storage == nil {
		return nil, errors.New("storage must not be nil")
	}

	if cfg.Hasher == nil {
		cfg.Hasher = DefaultHasher
	}
	if cfg.ResetTTL == 0 {
		cfg.ResetTTL = defaultResetTokenTTL
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	if mailer == nil {
		mailer = mail.NopSender{}
	}
	if l == nil {
		l = logger.NewNop()
	}

	return &AuthService{
		token:    token,
		hasher:   cfg.Hasher,
		storage:  storage,
		mailer:   mailer,
		logger:   l,
		resetTTL: cfg.ResetTTL,
		now:      cfg.Now,
	}, nil
}

// NormalizeEmail lowercases the address so uniqueness and lookups do not
// depend on the caller's casing
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func (s *AuthService) Signup(ctx context.Context, email string, password string) (models.User, models.TokenPair, error) {
	email = NormalizeEmail(email)

	hash, err := s.hasher.Hash(password)
	if err != nil {
		return models.User{}, models.TokenPair{}, fmt.Errorf("can't use this as password, error=%w", err)
	}

	user, err := s.storage.User().CreateUser(ctx, email, hash)
	if err != nil {
		return models.User{}, models.TokenPair{}, err
	}

	pair, err := s.token.IssuePair(ctx, user)
	if err != nil {
		return models.User{}, models.TokenPair{}, fmt.Errorf("token could not be generated. Err: %w", err)
	}

	return user, pair, nil
}

func (s *AuthService) Login(ctx context.Context, email string, password string) (models.User, models.TokenPair, error) {
	email = NormalizeEmail(email)

	user, err := s.storage.User().GetUserByEmail(ctx, email)
	if err != nil {
		// Burn a comparison anyway and return the same error as for a
		// wrong password: callers must not learn whether the email exists
		_ = s.hasher.Compare(dummyHash, password)
		return models.User{}, models.TokenPair{}, apperrors.ErrInvalidCredentials
	}

	if err := s.hasher.Compare(user.HashedPassword, password); err != nil {
		return models.User{}, models.TokenPair{}, apperrors.ErrInvalidCredentials
	}

	pair, err := s.token.IssuePair(ctx, user)
	if err != nil {
		return models.User{}, models.TokenPair{}, fmt.Errorf("token could not be generated. Err: %w", err)
	}

	return user, pair, nil
}

// Refresh re-issues an access token for the user bound to the refresh
// token. The refresh token itself is not rotated and stays valid until
// logout or expiry.
func (s *AuthService) Refresh(ctx context.Context, refresh string) (models.IssuedToken, error) {
	stored, err := s.token.VerifyRefresh(ctx, refresh)
	if err != nil {
		return models.IssuedToken{}, err
	}

	user, err := s.storage.User().GetUserByID(ctx, stored.UserID)
	if err != nil {
		return models.IssuedToken{}, err
	}

	return s.token.IssueAccess(user)
}

// Logout revokes the refresh token. Always succeeds: revoking an unknown
// or already revoked token is not an error.
func (s *AuthService) Logout(ctx context.Context, refresh string) error {
	return s.token.RevokeRefresh(ctx, refresh)
}

// RequestPasswordReset creates (or replaces) the single live reset request
// for the email and mails the token. The outcome never tells the caller
// whether the email is registered, and mail failures are logged, not
// surfaced.
func (s *AuthService) RequestPasswordReset(ctx context.Context, email string) error {
	email = NormalizeEmail(email)

	if _, err := s.storage.User().GetUserByEmail(ctx, email); err != nil {
		if errors.Is(err, apperrors.ErrUserNotFound) {
			return nil
		}
		return err
	}

	b := make([]byte, resetTokenBytes)
	if _, err := rand.Read(b); err != nil {
		return fmt.Errorf("error while generating reset token. Err: %w", err)
	}

	now := s.now()
	reset, err := s.storage.Reset().Upsert(ctx, models.PasswordReset{
		Email:     email,
		Token:     hex.EncodeToString(b),
		CreatedAt: now,
		ExpiresAt: now.Add(s.resetTTL),
	})
	if err != nil {
		return err
	}

	if err := s.mailer.SendPasswordReset(ctx, reset.Email, reset.Token); err != nil {
		s.logger.Warn("failed to send password reset mail", "email", reset.Email, "error", err.Error())
	}

	return nil
}

// ConfirmPasswordReset checks the token, overwrites the credential and
// burns the token so it can not be used twice
func (s *AuthService) ConfirmPasswordReset(ctx context.Context, token string, newPassword string) error {
	reset, err := s.storage.Reset().GetByToken(ctx, token)
	if err != nil {
		return err
	}

	if !reset.ExpiresAt.After(s.now()) {
		return apperrors.ErrResetTokenInvalid
	}

	hash, err := s.hasher.Hash(newPassword)
	if err != nil {
		return fmt.Errorf("can't use this as password, error=%w", err)
	}

	return s.storage.InTx(ctx, func(st repository.Storage) error {
		if err := st.User().UpdatePassword(ctx, reset.Email, hash); err != nil {
			return err
		}
		return st.Reset().DeleteByToken(ctx, token)
	})
}

// UserFromAccess validates the access token and loads its user
func (s *AuthService) UserFromAccess(ctx context.Context, access string) (models.User, error) {
	claims, err := s.token.ParseAccess(access)
	if err != nil {
		return models.User{}, err
	}

	return s.storage.User().GetUserByEmail(ctx, claims.Subject)
}
