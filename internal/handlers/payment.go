package handlers

import (
	"context"
	"errors"
	"net/http"

	"github.com/gulfcoastprop/platform/internal/apperrors"
	"github.com/gulfcoastprop/platform/internal/handlers/render"
	"github.com/gulfcoastprop/platform/internal/logger"
	"github.com/gulfcoastprop/platform/internal/service/payment"
)

type paymentService interface {
	CreateCheckout(ctx context.Context, p payment.CheckoutParams) (payment.CheckoutSession, error)
}

func handleCheckout(svc paymentService, l logger.Logger) http.Handler {
	type checkoutRequest struct {
		Items             []payment.CheckoutItem `json:"items" validate:"omitempty,dive"`
		SuccessURL        string                 `json:"success_url" validate:"omitempty,url"`
		CancelURL         string                 `json:"cancel_url" validate:"omitempty,url"`
		ClientReferenceID string                 `json:"client_reference_id"`
	}
	type checkoutResponse struct {
		SessionID string `json:"sessionId"`
		URL       string `json:"url"`
	}

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		data, err := render.BindAndValidate[checkoutRequest](w, r)
		if err != nil {
			return
		}

		session, err := svc.CreateCheckout(r.Context(), payment.CheckoutParams{
			Items:             data.Items,
			SuccessURL:        data.SuccessURL,
			CancelURL:         data.CancelURL,
			ClientReferenceID: data.ClientReferenceID,
		})
		if err != nil {
			switch {
			case errors.Is(err, apperrors.ErrPaymentsNotConfigured):
				render.ServiceError(w, "Payment provider not configured", http.StatusInternalServerError)
			default:
				l.Error("checkout session failed", "error", err.Error())
				render.ServiceError(w, "Failed to create checkout session", http.StatusInternalServerError)
			}
			return
		}

		render.JSON(w, checkoutResponse{SessionID: session.SessionID, URL: session.URL})
	})
}
