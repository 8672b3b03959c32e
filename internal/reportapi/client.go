// Package reportapi is the data-fetching boundary to the incident backend.
// It exposes the backend's read and mutation REST contracts as typed calls;
// all business rules (persistence, numbering, authorization) live server
// side and are consumed as given.
package reportapi

import (
	"context"

	"github.com/prevenia/vigia/internal/causaltree"
	"github.com/prevenia/vigia/internal/models"
)

// NodeCreateRequest carries the payload of an add-node mutation.
type NodeCreateRequest struct {
	ParentID string              `json:"parent_id"`
	Fact     string              `json:"fact"`
	FactType causaltree.FactType `json:"fact_type,omitempty"`
	Evidence []string            `json:"evidence,omitempty"`
}

// Client is the read/mutation surface of the incident backend consumed by
// Vigia. Implementations must be safe for concurrent use.
type Client interface {
	// Read operations
	GetIncidentPrefillData(ctx context.Context, incidentID, targetReportType string) (*models.PrefillData, error)
	GetFiveWhysAnalysis(ctx context.Context, id string) (*models.FiveWhysAnalysis, error)
	GetFishboneAnalysis(ctx context.Context, id string) (*models.FishboneAnalysis, error)
	GetCausalTreeAnalysis(ctx context.Context, id string) (*causaltree.Analysis, error)
	GetZeroToleranceReport(ctx context.Context, id string) (*models.ZeroToleranceReport, error)
	GetActionPlanReportByIncident(ctx context.Context, incidentID string) (*models.ActionPlanReport, error)
	GetIncidentPhotos(ctx context.Context, incidentID string) ([]models.Attachment, error)
	GetCausalTreeImages(ctx context.Context, incidentID string) ([]models.Attachment, error)

	// Causal-tree mutations, keyed by (analysisID, nodeID)
	CreateNode(ctx context.Context, analysisID string, req NodeCreateRequest) (*causaltree.Node, error)
	UpdateNode(ctx context.Context, analysisID, nodeID string, patch causaltree.NodePatch) error
	DeleteNode(ctx context.Context, analysisID, nodeID string) error
	MarkRootCause(ctx context.Context, analysisID, nodeID string) error
	CompleteAnalysis(ctx context.Context, analysisID string, rootCauseIDs []string) error
}
