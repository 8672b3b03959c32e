package reportapi

import (
	"context"
	"net/http"
	"sync"

	"github.com/prevenia/vigia/internal/causaltree"
	"github.com/prevenia/vigia/internal/models"
)

// FakeClient is an in-memory Client used in tests and in mock-server mode.
// Absent records yield a 404 FetchError; Fail forces an error for a given
// record key.
type FakeClient struct {
	mu sync.Mutex

	Prefill       map[string]*models.PrefillData
	FiveWhys      map[string]*models.FiveWhysAnalysis
	Fishbone      map[string]*models.FishboneAnalysis
	CausalTrees   map[string]*causaltree.Analysis
	ZeroTolerance map[string]*models.ZeroToleranceReport
	ActionPlans   map[string]*models.ActionPlanReport
	Photos        map[string][]models.Attachment
	TreeImages    map[string][]models.Attachment

	// Fail maps a record ID to an error returned instead of the record.
	Fail map[string]error

	// Calls counts read operations by record ID.
	Calls map[string]int
}

// NewFakeClient creates an empty fake backend.
func NewFakeClient() *FakeClient {
	return &FakeClient{
		Prefill:       make(map[string]*models.PrefillData),
		FiveWhys:      make(map[string]*models.FiveWhysAnalysis),
		Fishbone:      make(map[string]*models.FishboneAnalysis),
		CausalTrees:   make(map[string]*causaltree.Analysis),
		ZeroTolerance: make(map[string]*models.ZeroToleranceReport),
		ActionPlans:   make(map[string]*models.ActionPlanReport),
		Photos:        make(map[string][]models.Attachment),
		TreeImages:    make(map[string][]models.Attachment),
		Fail:          make(map[string]error),
		Calls:         make(map[string]int),
	}
}

// record tracks a read and returns the injected failure, if any.
func (f *FakeClient) record(id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.Calls[id]++
	return f.Fail[id]
}

func notFound(id string) error {
	return &FetchError{StatusCode: http.StatusNotFound, URL: id, Message: "record not found"}
}

// GetIncidentPrefillData implements Client.
func (f *FakeClient) GetIncidentPrefillData(_ context.Context, incidentID, _ string) (*models.PrefillData, error) {
	if err := f.record(incidentID); err != nil {
		return nil, err
	}
	if prefill, ok := f.Prefill[incidentID]; ok {
		return prefill, nil
	}
	return nil, notFound(incidentID)
}

// GetFiveWhysAnalysis implements Client.
func (f *FakeClient) GetFiveWhysAnalysis(_ context.Context, id string) (*models.FiveWhysAnalysis, error) {
	if err := f.record(id); err != nil {
		return nil, err
	}
	if analysis, ok := f.FiveWhys[id]; ok {
		return analysis, nil
	}
	return nil, notFound(id)
}

// GetFishboneAnalysis implements Client.
func (f *FakeClient) GetFishboneAnalysis(_ context.Context, id string) (*models.FishboneAnalysis, error) {
	if err := f.record(id); err != nil {
		return nil, err
	}
	if analysis, ok := f.Fishbone[id]; ok {
		return analysis, nil
	}
	return nil, notFound(id)
}

// GetCausalTreeAnalysis implements Client.
func (f *FakeClient) GetCausalTreeAnalysis(_ context.Context, id string) (*causaltree.Analysis, error) {
	if err := f.record(id); err != nil {
		return nil, err
	}
	if analysis, ok := f.CausalTrees[id]; ok {
		return analysis, nil
	}
	return nil, notFound(id)
}

// GetZeroToleranceReport implements Client.
func (f *FakeClient) GetZeroToleranceReport(_ context.Context, id string) (*models.ZeroToleranceReport, error) {
	if err := f.record(id); err != nil {
		return nil, err
	}
	if report, ok := f.ZeroTolerance[id]; ok {
		return report, nil
	}
	return nil, notFound(id)
}

// GetActionPlanReportByIncident implements Client.
func (f *FakeClient) GetActionPlanReportByIncident(_ context.Context, incidentID string) (*models.ActionPlanReport, error) {
	if err := f.record("plan:" + incidentID); err != nil {
		return nil, err
	}
	if report, ok := f.ActionPlans[incidentID]; ok {
		return report, nil
	}
	return nil, notFound(incidentID)
}

// GetIncidentPhotos implements Client.
func (f *FakeClient) GetIncidentPhotos(_ context.Context, incidentID string) ([]models.Attachment, error) {
	if err := f.record("photos:" + incidentID); err != nil {
		return nil, err
	}
	return f.Photos[incidentID], nil
}

// GetCausalTreeImages implements Client.
func (f *FakeClient) GetCausalTreeImages(_ context.Context, incidentID string) ([]models.Attachment, error) {
	if err := f.record("images:" + incidentID); err != nil {
		return nil, err
	}
	return f.TreeImages[incidentID], nil
}

// CreateNode implements Client against the in-memory analysis.
func (f *FakeClient) CreateNode(_ context.Context, analysisID string, req NodeCreateRequest) (*causaltree.Node, error) {
	analysis, ok := f.CausalTrees[analysisID]
	if !ok {
		return nil, notFound(analysisID)
	}
	return analysis.AddNode(req.ParentID, req.Fact, req.FactType, req.Evidence)
}

// UpdateNode implements Client against the in-memory analysis.
func (f *FakeClient) UpdateNode(_ context.Context, analysisID, nodeID string, patch causaltree.NodePatch) error {
	analysis, ok := f.CausalTrees[analysisID]
	if !ok {
		return notFound(analysisID)
	}
	return analysis.UpdateNode(nodeID, patch)
}

// DeleteNode implements Client against the in-memory analysis.
func (f *FakeClient) DeleteNode(_ context.Context, analysisID, nodeID string) error {
	analysis, ok := f.CausalTrees[analysisID]
	if !ok {
		return notFound(analysisID)
	}
	return analysis.DeleteNode(nodeID)
}

// MarkRootCause implements Client against the in-memory analysis.
func (f *FakeClient) MarkRootCause(_ context.Context, analysisID, nodeID string) error {
	analysis, ok := f.CausalTrees[analysisID]
	if !ok {
		return notFound(analysisID)
	}
	return analysis.MarkAsRootCause(nodeID)
}

// CompleteAnalysis implements Client against the in-memory analysis.
func (f *FakeClient) CompleteAnalysis(_ context.Context, analysisID string, rootCauseIDs []string) error {
	analysis, ok := f.CausalTrees[analysisID]
	if !ok {
		return notFound(analysisID)
	}
	return analysis.Complete(rootCauseIDs)
}
