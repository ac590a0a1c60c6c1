// Package userctx carries the authenticated user through the request
// context, from the auth middleware to the protected handlers.
package userctx

import (
	"context"

	"github.com/gulfcoastprop/platform/internal/models"
)

type ctxKey struct{}

// New returns a context carrying the authenticated user
func New(ctx context.Context, u models.User) context.Context {
	return context.WithValue(ctx, ctxKey{}, u)
}

// FromContext extracts the user set by the auth middleware.
// ok is false on requests that did not pass through it.
func FromContext(ctx context.Context) (models.User, bool) {
	u, ok := ctx.Value(ctxKey{}).(models.User)
	return u, ok
}
