package handlers

import (
	"net/http"

	"github.com/prevenia/vigia/internal/expressmode"
	"github.com/prevenia/vigia/internal/logging"
	"github.com/prevenia/vigia/internal/reportapi"
	"go.opentelemetry.io/otel/trace"
)

// RegisterHandlers registers all HTTP handlers on the given router
func RegisterHandlers(
	router *http.ServeMux,
	orchestrator *expressmode.Orchestrator,
	client reportapi.Client,
	logger *logging.Logger,
	tracer trace.Tracer,
	withMethod func(string, http.HandlerFunc) http.HandlerFunc,
) {
	expressHandler := NewExpressHandler(orchestrator, logger, tracer)
	costsHandler := NewCostsHandler(orchestrator, logger, tracer)
	treeHandler := NewTreeHandler(client, logger, tracer)

	router.HandleFunc("/v1/incidents/{id}/express", withMethod(http.MethodGet, expressHandler.Handle))
	router.HandleFunc("/v1/incidents/{id}/costs", withMethod(http.MethodGet, costsHandler.Handle))

	router.HandleFunc("/v1/analyses/causal-tree/{id}", withMethod(http.MethodGet, treeHandler.HandleGet))
	router.HandleFunc("/v1/analyses/causal-tree/{id}/nodes", withMethod(http.MethodPost, treeHandler.HandleCreateNode))
	// PATCH and DELETE share the node route; the handler dispatches
	router.HandleFunc("/v1/analyses/causal-tree/{id}/nodes/{nodeID}", treeHandler.HandleNode)
	router.HandleFunc("/v1/analyses/causal-tree/{id}/nodes/{nodeID}/root-cause", withMethod(http.MethodPost, treeHandler.HandleMarkRootCause))
	router.HandleFunc("/v1/analyses/causal-tree/{id}/complete", withMethod(http.MethodPost, treeHandler.HandleComplete))
}
