package handlers

import (
	"errors"
	"io"
	"net/http"

	"github.com/gulfcoastprop/platform/internal/apperrors"
	"github.com/gulfcoastprop/platform/internal/handlers/render"
	"github.com/gulfcoastprop/platform/internal/logger"
)

type webhookService interface {
	HandleWebhook(payload []byte, signatureHeader string) error
}

// Stripe signs the raw body, so it is read verbatim before any decoding
func handleStripeWebhook(svc webhookService, l logger.Logger) http.Handler {
	type webhookResponse struct {
		Received bool `json:"received"`
	}

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		payload, err := io.ReadAll(r.Body)
		if err != nil {
			render.ServiceError(w, "Failed to read request body", http.StatusBadRequest)
			return
		}

		err = svc.HandleWebhook(payload, r.Header.Get("Stripe-Signature"))
		if err != nil {
			switch {
			case errors.Is(err, apperrors.ErrWebhookSignature):
				render.ServiceError(w, "Webhook signature verification failed", http.StatusBadRequest)
			default:
				l.Error("webhook handling failed", "error", err.Error())
				render.ServiceError(w, "Internal server error", http.StatusInternalServerError)
			}
			return
		}

		render.JSON(w, webhookResponse{Received: true})
	})
}
