package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/gulfcoastprop/platform/internal/db"
	"github.com/gulfcoastprop/platform/internal/handlers"
	"github.com/gulfcoastprop/platform/internal/logger"
	"github.com/gulfcoastprop/platform/internal/mail"
	"github.com/gulfcoastprop/platform/internal/repository"
	"github.com/gulfcoastprop/platform/internal/repository/memory"
	"github.com/gulfcoastprop/platform/internal/repository/postgres"
	"github.com/gulfcoastprop/platform/internal/service/agentflow"
	"github.com/gulfcoastprop/platform/internal/service/auth"
	"github.com/gulfcoastprop/platform/internal/service/auth/tokenmanager"
	"github.com/gulfcoastprop/platform/internal/service/payment"
)

type ServerApp struct {
	ListenAddr string
	Handler    http.Handler
}

func NewServerApp(ctx context.Context, c *Config) (*ServerApp, error) {
	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	// Initialize logger
	l, err := logger.New(c.Environment, c.LogLevel)
	if err != nil {
		return nil, fmt.Errorf("error while initializing logger: %w", err)
	}

	// Pick the storage backend once at startup: postgres when a DSN is
	// configured, the process local store otherwise
	var storage repository.Storage
	switch c.DatabaseDSN {
	case "":
		l.Warn("no database configured, using in-memory store; data is lost on restart")
		storage = memory.NewStorage()
	default:
		pool, err := db.ConnectAndMigrate(ctx, c.DatabaseDSN)
		if err != nil {
			return nil, fmt.Errorf("error while connecting to db. Err: %w", err)
		}
		storage = postgres.NewStorage(pool)
	}

	// Mail is best effort: without credentials reset mail is dropped
	var mailer mail.Sender = mail.NopSender{}
	if c.ResendAPIKey != "" {
		mailer = mail.NewResendSender(c.ResendAPIKey, c.EmailFrom, c.FrontendURL)
	} else {
		l.Warn("no mail provider configured, password reset mail will not be sent")
	}

	// Initialize services
	tokenManager, err := tokenmanager.New(tokenmanager.Config{SecretKey: c.SecretKey}, storage.Refresh())
	if err != nil {
		return nil, fmt.Errorf("error while creating token manager. Err: %w", err)
	}
	authService, err := auth.NewService(auth.Config{}, tokenManager, storage, mailer, l)
	if err != nil {
		return nil, fmt.Errorf("error while creating auth service. Err: %w", err)
	}
	paymentService := payment.NewService(payment.Config{
		SecretKey:     c.StripeSecretKey,
		WebhookSecret: c.StripeWebhookSecret,
		FrontendURL:   c.FrontendURL,
	}, l)
	agentClient := agentflow.NewClient(agentflow.Config{
		QualifyURL: c.QualifyURL,
		RehabURL:   c.RehabURL,
	}, l)

	mux := handlers.NewRouter(authService, paymentService, paymentService, agentClient, l)

	return &ServerApp{
		ListenAddr: c.ListenAddr,
		Handler:    mux,
	}, nil
}

// Run starts http server and closes gracefully on context cancellation
func (s *ServerApp) Run(ctx context.Context) error {
	httpServer := &http.Server{
		Addr:    s.ListenAddr,
		Handler: s.Handler,
	}

	idleConnsClosed := make(chan struct{})
	srvCtx, srvCtxCancel := context.WithCancel(ctx)
	defer srvCtxCancel()

	go func() {
		<-srvCtx.Done()

		timeoutCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		if err := httpServer.Shutdown(timeoutCtx); err == context.DeadlineExceeded {
			slog.Error("HTTP server shutdown timeout exceeded, forcing shutdown...")
		}
		slog.Info("HTTP server stopped")
		close(idleConnsClosed)
	}()

	// Listen and serve until context is cancelled; then close gracefully connections
	slog.Info("Starting server", "addr", s.ListenAddr)
	err := httpServer.ListenAndServe()
	srvCtxCancel()
	<-idleConnsClosed

	return err
}
