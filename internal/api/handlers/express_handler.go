package handlers

import (
	"net/http"

	"github.com/prevenia/vigia/internal/api"
	"github.com/prevenia/vigia/internal/expressmode"
	"github.com/prevenia/vigia/internal/logging"
	"github.com/prevenia/vigia/internal/models"
	"github.com/prevenia/vigia/internal/reportapi"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

// ExpressHandler handles /v1/incidents/{id}/express requests
type ExpressHandler struct {
	orchestrator *expressmode.Orchestrator
	logger       *logging.Logger
	tracer       trace.Tracer
}

// NewExpressHandler creates a new handler
func NewExpressHandler(orchestrator *expressmode.Orchestrator, logger *logging.Logger, tracer trace.Tracer) *ExpressHandler {
	return &ExpressHandler{
		orchestrator: orchestrator,
		logger:       logger,
		tracer:       tracer,
	}
}

// ExpressResponse is the express-draft envelope returned to the form layer.
type ExpressResponse struct {
	Data              *expressmode.ExpressModeData `json:"data"`
	DataCompleteness  int                          `json:"data_completeness"`
	CanUseExpressMode bool                         `json:"can_use_express_mode"`
}

// Handle builds and returns the express draft for one incident
func (h *ExpressHandler) Handle(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var span trace.Span
	if h.tracer != nil {
		ctx, span = h.tracer.Start(ctx, "express.Handle")
		defer span.End()
	}

	// 1. Parse path parameters
	incidentID := r.PathValue("id")
	if incidentID == "" {
		api.WriteError(w, http.StatusBadRequest, string(api.ErrorCodeInvalidRequest), "incident id is required")
		return
	}
	if span != nil {
		span.SetAttributes(attribute.String("incident_id", incidentID))
	}

	// 2. Build the draft
	data, err := h.orchestrator.Build(ctx, incidentID)
	if err != nil {
		if span != nil {
			span.RecordError(err)
		}
		h.logger.Error("Express draft build failed for incident %s: %v", incidentID, err)
		apiErr := upstreamError(err)
		api.WriteError(w, apiErr.StatusCode, string(apiErr.Code), apiErr.Message)
		return
	}

	// 3. Return JSON response with the derived gates
	response := ExpressResponse{
		Data:              data,
		DataCompleteness:  expressmode.Completeness(data),
		CanUseExpressMode: data.HasEnoughData,
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_ = api.WriteJSON(w, response)
}

// upstreamError maps a backend fetch failure to an API error. Records the
// backend delivers but that fail validation count as an upstream fault.
func upstreamError(err error) *api.APIError {
	if reportapi.IsNotFound(err) {
		return api.NewNotFoundError("%v", err)
	}
	if reportapi.IsFetchError(err) || models.IsValidationError(err) {
		return api.NewAPIError(api.ErrorCodeUpstreamError, http.StatusBadGateway, err.Error())
	}
	return api.NewInternalServerError("%v", err)
}
