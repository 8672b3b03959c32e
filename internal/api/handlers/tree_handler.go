package handlers

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/prevenia/vigia/internal/api"
	"github.com/prevenia/vigia/internal/causaltree"
	"github.com/prevenia/vigia/internal/logging"
	"github.com/prevenia/vigia/internal/reportapi"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

// TreeHandler handles causal-tree mutation requests under
// /v1/analyses/causal-tree/{id}. Mutations are forwarded to the incident
// backend; a rejected mutation has no side effect.
type TreeHandler struct {
	client reportapi.Client
	logger *logging.Logger
	tracer trace.Tracer
}

// NewTreeHandler creates a new handler
func NewTreeHandler(client reportapi.Client, logger *logging.Logger, tracer trace.Tracer) *TreeHandler {
	return &TreeHandler{
		client: client,
		logger: logger,
		tracer: tracer,
	}
}

// completeRequest is the payload of a complete-analysis request.
type completeRequest struct {
	RootCauseIDs []string `json:"root_cause_ids"`
}

// HandleGet returns one causal-tree analysis
func (h *TreeHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	ctx, span, analysisID, ok := h.begin(w, r, "tree.Get")
	if !ok {
		return
	}
	if span != nil {
		defer span.End()
	}

	analysis, err := h.client.GetCausalTreeAnalysis(ctx, analysisID)
	if err != nil {
		h.respondError(w, span, analysisID, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_ = api.WriteJSON(w, analysis)
}

// HandleCreateNode adds a node under a parent
func (h *TreeHandler) HandleCreateNode(w http.ResponseWriter, r *http.Request) {
	ctx, span, analysisID, ok := h.begin(w, r, "tree.CreateNode")
	if !ok {
		return
	}
	if span != nil {
		defer span.End()
	}

	var req reportapi.NodeCreateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		api.WriteError(w, http.StatusBadRequest, string(api.ErrorCodeInvalidRequest), "invalid request body: "+err.Error())
		return
	}
	if req.ParentID == "" || req.Fact == "" {
		api.WriteError(w, http.StatusBadRequest, string(api.ErrorCodeInvalidRequest), "parent_id and fact are required")
		return
	}

	node, err := h.client.CreateNode(ctx, analysisID, req)
	if err != nil {
		h.respondError(w, span, analysisID, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	_ = api.WriteJSON(w, node)
}

// HandleNode dispatches PATCH (edit) and DELETE on one node
func (h *TreeHandler) HandleNode(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodPatch:
		h.handleUpdateNode(w, r)
	case http.MethodDelete:
		h.handleDeleteNode(w, r)
	default:
		api.WriteError(w, http.StatusMethodNotAllowed, "METHOD_NOT_ALLOWED",
			"Method "+r.Method+" not allowed for "+r.URL.Path)
	}
}

func (h *TreeHandler) handleUpdateNode(w http.ResponseWriter, r *http.Request) {
	ctx, span, analysisID, ok := h.begin(w, r, "tree.UpdateNode")
	if !ok {
		return
	}
	if span != nil {
		defer span.End()
	}
	nodeID := r.PathValue("nodeID")

	var patch causaltree.NodePatch
	if err := json.NewDecoder(r.Body).Decode(&patch); err != nil {
		api.WriteError(w, http.StatusBadRequest, string(api.ErrorCodeInvalidRequest), "invalid request body: "+err.Error())
		return
	}

	if err := h.client.UpdateNode(ctx, analysisID, nodeID, patch); err != nil {
		h.respondError(w, span, analysisID, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *TreeHandler) handleDeleteNode(w http.ResponseWriter, r *http.Request) {
	ctx, span, analysisID, ok := h.begin(w, r, "tree.DeleteNode")
	if !ok {
		return
	}
	if span != nil {
		defer span.End()
	}
	nodeID := r.PathValue("nodeID")

	if err := h.client.DeleteNode(ctx, analysisID, nodeID); err != nil {
		h.respondError(w, span, analysisID, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// HandleMarkRootCause flags one node as root cause
func (h *TreeHandler) HandleMarkRootCause(w http.ResponseWriter, r *http.Request) {
	ctx, span, analysisID, ok := h.begin(w, r, "tree.MarkRootCause")
	if !ok {
		return
	}
	if span != nil {
		defer span.End()
	}
	nodeID := r.PathValue("nodeID")

	if err := h.client.MarkRootCause(ctx, analysisID, nodeID); err != nil {
		h.respondError(w, span, analysisID, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// HandleComplete completes an analysis with its frozen root-cause set
func (h *TreeHandler) HandleComplete(w http.ResponseWriter, r *http.Request) {
	ctx, span, analysisID, ok := h.begin(w, r, "tree.Complete")
	if !ok {
		return
	}
	if span != nil {
		defer span.End()
	}

	var req completeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		api.WriteError(w, http.StatusBadRequest, string(api.ErrorCodeInvalidRequest), "invalid request body: "+err.Error())
		return
	}

	if err := h.client.CompleteAnalysis(ctx, analysisID, req.RootCauseIDs); err != nil {
		h.respondError(w, span, analysisID, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// begin starts the span and extracts the analysis ID shared by every
// tree route.
func (h *TreeHandler) begin(w http.ResponseWriter, r *http.Request, spanName string) (context.Context, trace.Span, string, bool) {
	ctx := r.Context()

	var span trace.Span
	if h.tracer != nil {
		ctx, span = h.tracer.Start(ctx, spanName)
	}

	analysisID := r.PathValue("id")
	if analysisID == "" {
		if span != nil {
			span.End()
		}
		api.WriteError(w, http.StatusBadRequest, string(api.ErrorCodeInvalidRequest), "analysis id is required")
		return ctx, nil, "", false
	}
	if span != nil {
		span.SetAttributes(attribute.String("analysis_id", analysisID))
	}
	return ctx, span, analysisID, true
}

// respondError maps a mutation failure to the API error taxonomy.
func (h *TreeHandler) respondError(w http.ResponseWriter, span trace.Span, analysisID string, err error) {
	if span != nil {
		span.RecordError(err)
	}

	var apiErr *api.APIError
	switch {
	case causaltree.IsInvalidParent(err) || causaltree.IsIncompleteAnalysis(err):
		apiErr = api.NewInvalidRequestError("%v", err)
	case causaltree.IsNodeNotFound(err):
		apiErr = api.NewNotFoundError("%v", err)
	case causaltree.IsHasChildren(err) || causaltree.IsProtectedNode(err):
		apiErr = api.NewConflictError("%v", err)
	default:
		h.logger.Error("Causal-tree mutation failed for analysis %s: %v", analysisID, err)
		apiErr = upstreamError(err)
	}
	api.WriteError(w, apiErr.StatusCode, string(apiErr.Code), apiErr.Message)
}
