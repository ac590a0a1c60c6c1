// Package payment wraps the Stripe checkout and webhook surface.
// Everything interesting (card handling, signature schemes, retries)
// belongs to Stripe; this service shapes requests and maps errors.
package payment

import (
	"context"
	"fmt"

	"github.com/stripe/stripe-go/v82"
	"github.com/stripe/stripe-go/v82/client"
	"github.com/stripe/stripe-go/v82/webhook"

	"github.com/gulfcoastprop/platform/internal/apperrors"
	"github.com/gulfcoastprop/platform/internal/logger"
)

type Config struct {
	// Stripe secret API key. Empty means payments are not configured:
	// checkout requests fail with apperrors.ErrPaymentsNotConfigured
	SecretKey string

	// Signing secret of the webhook endpoint
	WebhookSecret string

	// Base URL the default success and cancel pages live under
	FrontendURL string
}

type Service struct {
	api           *client.API
	webhookSecret string
	frontendURL   string
	logger        logger.Logger
}

func NewService(cfg Config, l logger.Logger) *Service {
	if l == nil {
		l = logger.NewNop()
	}

	s := &Service{
		webhookSecret: cfg.WebhookSecret,
		frontendURL:   cfg.FrontendURL,
		logger:        l,
	}

	if cfg.SecretKey != "" {
		s.api = &client.API{}
		s.api.Init(cfg.SecretKey, nil)
	}

	return s
}

type CheckoutItem struct {
	// Stripe price id
	Price    string `json:"price" validate:"required"`
	Quantity int64  `json:"quantity" validate:"omitempty,min=1"`
}

type CheckoutParams struct {
	Items             []CheckoutItem
	SuccessURL        string
	CancelURL         string
	ClientReferenceID string
}

type CheckoutSession struct {
	SessionID string
	URL       string
}

// CreateCheckout opens a Stripe subscription checkout session and returns
// its id and hosted URL
func (s *Service) CreateCheckout(ctx context.Context, p CheckoutParams) (CheckoutSession, error) {
	if s.api == nil {
		return CheckoutSession{}, apperrors.ErrPaymentsNotConfigured
	}

	successURL := p.SuccessURL
	if successURL == "" {
		successURL = s.frontendURL + "/success"
	}
	cancelURL := p.CancelURL
	if cancelURL == "" {
		cancelURL = s.frontendURL + "/cancel"
	}

	lineItems := make([]*stripe.CheckoutSessionLineItemParams, 0, len(p.Items))
	for _, item := range p.Items {
		quantity := item.Quantity
		if quantity == 0 {
			quantity = 1
		}
		lineItems = append(lineItems, &stripe.CheckoutSessionLineItemParams{
			Price:    stripe.String(item.Price),
			Quantity: stripe.Int64(quantity),
		})
	}

	params := &stripe.CheckoutSessionParams{
		Mode:               stripe.String(string(stripe.CheckoutSessionModeSubscription)),
		PaymentMethodTypes: stripe.StringSlice([]string{"card"}),
		LineItems:          lineItems,
		SuccessURL:         stripe.String(successURL),
		CancelURL:          stripe.String(cancelURL),
	}
	if p.ClientReferenceID != "" {
		params.ClientReferenceID = stripe.String(p.ClientReferenceID)
	}
	params.Context = ctx

	session, err := s.api.CheckoutSessions.New(params)
	if err != nil {
		return CheckoutSession{}, fmt.Errorf("stripe checkout error: %w", err)
	}

	return CheckoutSession{SessionID: session.ID, URL: session.URL}, nil
}

// HandleWebhook verifies the signature over the raw payload and dispatches
// the event. Unknown event types are acknowledged and dropped.
func (s *Service) HandleWebhook(payload []byte, signatureHeader string) error {
	event, err := webhook.ConstructEvent(payload, signatureHeader, s.webhookSecret)
	if err != nil {
		return fmt.Errorf("%w: %w", apperrors.ErrWebhookSignature, err)
	}

	switch event.Type {
	case stripe.EventTypeCheckoutSessionCompleted:
		s.logger.Info("checkout session completed", "event_id", event.ID)
	case stripe.EventTypeInvoicePaymentSucceeded:
		s.logger.Info("invoice paid", "event_id", event.ID)
	default:
		s.logger.Debug("ignoring webhook event", "type", string(event.Type), "event_id", event.ID)
	}

	return nil
}
