package handlers

import (
	"net/http"

	"github.com/prevenia/vigia/internal/analysis/costs"
	"github.com/prevenia/vigia/internal/api"
	"github.com/prevenia/vigia/internal/expressmode"
	"github.com/prevenia/vigia/internal/logging"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

// CostsHandler handles /v1/incidents/{id}/costs requests
type CostsHandler struct {
	orchestrator *expressmode.Orchestrator
	logger       *logging.Logger
	tracer       trace.Tracer
}

// NewCostsHandler creates a new handler
func NewCostsHandler(orchestrator *expressmode.Orchestrator, logger *logging.Logger, tracer trace.Tracer) *CostsHandler {
	return &CostsHandler{
		orchestrator: orchestrator,
		logger:       logger,
		tracer:       tracer,
	}
}

// CostsResponse carries the derived cost lines and their sum.
type CostsResponse struct {
	Costos        []costs.CalculatedCost `json:"costos"`
	TotalEstimado float64                `json:"total_estimado"`
}

// Handle derives the estimated cost lines for one incident
func (h *CostsHandler) Handle(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var span trace.Span
	if h.tracer != nil {
		ctx, span = h.tracer.Start(ctx, "costs.Handle")
		defer span.End()
	}

	incidentID := r.PathValue("id")
	if incidentID == "" {
		api.WriteError(w, http.StatusBadRequest, string(api.ErrorCodeInvalidRequest), "incident id is required")
		return
	}
	if span != nil {
		span.SetAttributes(attribute.String("incident_id", incidentID))
	}

	lines, total, err := h.orchestrator.Costs(ctx, incidentID)
	if err != nil {
		if span != nil {
			span.RecordError(err)
		}
		h.logger.Error("Cost estimation failed for incident %s: %v", incidentID, err)
		apiErr := upstreamError(err)
		api.WriteError(w, apiErr.StatusCode, string(apiErr.Code), apiErr.Message)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_ = api.WriteJSON(w, CostsResponse{Costos: lines, TotalEstimado: total})
}
