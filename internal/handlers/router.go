package handlers

import (
	"context"
	"net/http"

	"github.com/gulfcoastprop/platform/internal/handlers/middleware"
	"github.com/gulfcoastprop/platform/internal/logger"
	"github.com/gulfcoastprop/platform/internal/models"
)

// chain applies middlewares in the given order: m1(m2(...(h)))
func chain(h http.Handler, mds ...func(next http.Handler) http.Handler) http.Handler {
	for i := len(mds) - 1; i >= 0; i-- {
		h = mds[i](h)
	}
	return h
}

// Auth service as the router needs it: the action endpoint plus access
// token verification for protected routes
type routerAuthService interface {
	authService
	UserFromAccess(ctx context.Context, access string) (models.User, error)
}

func NewRouter(
	authSvc routerAuthService,
	payments paymentService,
	webhooks webhookService,
	agents agentService,
	l logger.Logger,
) http.Handler {
	if l == nil {
		l = logger.NewNop()
	}

	withAuth := middleware.AuthMiddleware(authSvc)

	api := http.NewServeMux()

	api.Handle("POST /auth", NewAuth(authSvc, l).Handler())
	api.Handle("GET /auth/me", withAuth(handleMe()))

	api.Handle("POST /payments", handleCheckout(payments, l))
	api.Handle("POST /webhooks/stripe", handleStripeWebhook(webhooks, l))
	api.Handle("POST /agent-workflow", handleAgentWorkflow(agents, l))

	root := http.NewServeMux()
	root.Handle("/api/", http.StripPrefix("/api", api))

	return chain(root,
		middleware.LoggerMiddleware(l),
	)
}
