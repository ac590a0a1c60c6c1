package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/google/uuid"

	"github.com/gulfcoastprop/platform/internal/apperrors"
	"github.com/gulfcoastprop/platform/internal/handlers/render"
	"github.com/gulfcoastprop/platform/internal/handlers/userctx"
	"github.com/gulfcoastprop/platform/internal/logger"
	"github.com/gulfcoastprop/platform/internal/models"
)

// Auth service consumed by the handler
type authService interface {
	Signup(ctx context.Context, email string, password string) (models.User, models.TokenPair, error)
	Login(ctx context.Context, email string, password string) (models.User, models.TokenPair, error)
	Refresh(ctx context.Context, refresh string) (models.IssuedToken, error)
	Logout(ctx context.Context, refresh string) error
	RequestPasswordReset(ctx context.Context, email string) error
	ConfirmPasswordReset(ctx context.Context, token string, newPassword string) error
}

type AuthHandler struct {
	auth   authService
	logger logger.Logger
}

func NewAuth(auth authService, l logger.Logger) *AuthHandler {
	if l == nil {
		l = logger.NewNop()
	}
	return &AuthHandler{auth: auth, logger: l}
}

// Handler dispatches on the 'action' query parameter: the auth surface is
// a single endpoint parameterized out of band
func (h *AuthHandler) Handler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Query().Get("action") {
		case "signup":
			h.signup(w, r)
		case "login":
			h.login(w, r)
		case "refresh":
			h.refresh(w, r)
		case "logout":
			h.logout(w, r)
		case "request_reset":
			h.requestReset(w, r)
		case "confirm_reset":
			h.confirmReset(w, r)
		default:
			render.ServiceError(w, "Invalid action", http.StatusBadRequest)
		}
	})
}

type userResponse struct {
	ID    uuid.UUID `json:"id"`
	Email string    `json:"email"`
}

type tokensResponse struct {
	AccessToken  string       `json:"accessToken"`
	RefreshToken string       `json:"refreshToken"`
	User         userResponse `json:"user"`
}

func (h *AuthHandler) signup(w http.ResponseWriter, r *http.Request) {
	type signupRequest struct {
		Email    string `json:"email" validate:"required,email"`
		Password string `json:"password" validate:"required,min=8"`
	}

	data, err := render.BindAndValidate[signupRequest](w, r)
	if err != nil {
		return
	}

	user, pair, err := h.auth.Signup(r.Context(), data.Email, data.Password)
	if err != nil {
		switch {
		case errors.Is(err, apperrors.ErrUserAlreadyExists):
			render.ServiceError(w, "User already exists", http.StatusConflict)
		default:
			h.logger.Error("signup failed", "error", err.Error())
			render.ServiceError(w, "Internal server error", http.StatusInternalServerError)
		}
		return
	}

	render.JSONWithStatus(w, tokensResponse{
		AccessToken:  pair.Access.Value,
		RefreshToken: pair.Refresh.Value,
		User:         userResponse{ID: user.ID, Email: user.Email},
	}, http.StatusCreated)
}

func (h *AuthHandler) login(w http.ResponseWriter, r *http.Request) {
	type loginRequest struct {
		Email    string `json:"email" validate:"required"`
		Password string `json:"password" validate:"required"`
	}

	data, err := render.BindAndValidate[loginRequest](w, r)
	if err != nil {
		return
	}

	user, pair, err := h.auth.Login(r.Context(), data.Email, data.Password)
	if err != nil {
		switch {
		case errors.Is(err, apperrors.ErrInvalidCredentials):
			render.ServiceError(w, "Invalid credentials", http.StatusUnauthorized)
		default:
			h.logger.Error("login failed", "error", err.Error())
			render.ServiceError(w, "Internal server error", http.StatusInternalServerError)
		}
		return
	}

	render.JSON(w, tokensResponse{
		AccessToken:  pair.Access.Value,
		RefreshToken: pair.Refresh.Value,
		User:         userResponse{ID: user.ID, Email: user.Email},
	})
}

func (h *AuthHandler) refresh(w http.ResponseWriter, r *http.Request) {
	type refreshRequest struct {
		RefreshToken string `json:"refreshToken" validate:"required"`
	}
	type refreshResponse struct {
		AccessToken string `json:"accessToken"`
	}

	data, err := render.BindAndValidate[refreshRequest](w, r)
	if err != nil {
		return
	}

	access, err := h.auth.Refresh(r.Context(), data.RefreshToken)
	if err != nil {
		switch {
		case errors.Is(err, apperrors.ErrRefreshTokenNotFound):
			render.ServiceError(w, "Invalid refresh token", http.StatusUnauthorized)
		default:
			h.logger.Error("refresh failed", "error", err.Error())
			render.ServiceError(w, "Internal server error", http.StatusInternalServerError)
		}
		return
	}

	render.JSON(w, refreshResponse{AccessToken: access.Value})
}

func (h *AuthHandler) logout(w http.ResponseWriter, r *http.Request) {
	type logoutRequest struct {
		RefreshToken string `json:"refreshToken"`
	}
	type logoutResponse struct {
		Message string `json:"message"`
	}

	// Logout never fails: a missing or malformed body is treated the
	// same as an unknown token
	var data logoutRequest
	_ = json.NewDecoder(r.Body).Decode(&data)

	if data.RefreshToken != "" {
		if err := h.auth.Logout(r.Context(), data.RefreshToken); err != nil {
			h.logger.Warn("logout failed", "error", err.Error())
		}
	}

	render.JSON(w, logoutResponse{Message: "Logged out"})
}

func (h *AuthHandler) requestReset(w http.ResponseWriter, r *http.Request) {
	type resetRequest struct {
		Email string `json:"email" validate:"required,email"`
	}
	type resetResponse struct {
		Message string `json:"message"`
	}

	data, err := render.BindAndValidate[resetRequest](w, r)
	if err != nil {
		return
	}

	// The response never reveals whether the email is registered
	if err := h.auth.RequestPasswordReset(r.Context(), data.Email); err != nil {
		h.logger.Error("password reset request failed", "error", err.Error())
	}

	render.JSON(w, resetResponse{Message: "If the account exists, a reset link has been sent"})
}

func (h *AuthHandler) confirmReset(w http.ResponseWriter, r *http.Request) {
	type confirmRequest struct {
		Token       string `json:"token" validate:"required"`
		NewPassword string `json:"newPassword" validate:"required,min=8"`
	}
	type confirmResponse struct {
		Message string `json:"message"`
	}

	data, err := render.BindAndValidate[confirmRequest](w, r)
	if err != nil {
		return
	}

	if err := h.auth.ConfirmPasswordReset(r.Context(), data.Token, data.NewPassword); err != nil {
		switch {
		case errors.Is(err, apperrors.ErrResetTokenInvalid):
			render.ServiceError(w, "Reset token invalid or expired", http.StatusBadRequest)
		default:
			h.logger.Error("password reset confirm failed", "error", err.Error())
			render.ServiceError(w, "Internal server error", http.StatusInternalServerError)
		}
		return
	}

	render.JSON(w, confirmResponse{Message: "Password updated successfully"})
}

// Me returns the authenticated user. Exercised behind the auth middleware
func handleMe() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		user, _ := userctx.FromContext(r.Context())
		render.JSON(w, userResponse{ID: user.ID, Email: user.Email})
	})
}
