package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/gulfcoastprop/platform/internal/handlers/render"
	"github.com/gulfcoastprop/platform/internal/handlers/userctx"
	"github.com/gulfcoastprop/platform/internal/models"
)

type authService interface {
	UserFromAccess(ctx context.Context, access string) (models.User, error)
}

// AuthMiddleware reads the bearer access token, validates it and puts the
// user into the request context
func AuthMiddleware(as authService) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			access, ok := bearerToken(r)
			if !ok {
				render.ServiceError(w, "Unauthorized", http.StatusUnauthorized)
				return
			}

			user, err := as.UserFromAccess(r.Context(), access)
			if err != nil {
				render.ServiceError(w, "Unauthorized", http.StatusUnauthorized)
				return
			}

			ctx := userctx.New(r.Context(), user)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func bearerToken(r *http.Request) (string, bool) {
	header := r.Header.Get("Authorization")
	scheme, token, found := strings.Cut(header, " ")
	if !found || !strings.EqualFold(scheme, "Bearer") || token == "" {
		return "", false
	}
	return token, true
}
