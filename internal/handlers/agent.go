package handlers

import (
	"context"
	"net/http"

	"github.com/gulfcoastprop/platform/internal/handlers/render"
	"github.com/gulfcoastprop/platform/internal/logger"
	"github.com/gulfcoastprop/platform/internal/service/agentflow"
)

type agentService interface {
	Run(ctx context.Context, propertyAddress string) (agentflow.Result, error)
}

func handleAgentWorkflow(svc agentService, l logger.Logger) http.Handler {
	type workflowRequest struct {
		PropertyAddress string `json:"propertyAddress" validate:"required"`
	}

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		data, err := render.BindAndValidate[workflowRequest](w, r)
		if err != nil {
			return
		}

		result, err := svc.Run(r.Context(), data.PropertyAddress)
		if err != nil {
			l.Error("agent workflow failed", "error", err.Error())
			render.ServiceError(w, "Agent workflow failed", http.StatusBadGateway)
			return
		}

		render.JSON(w, result)
	})
}
