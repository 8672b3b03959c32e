package reportapi

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/prevenia/vigia/internal/causaltree"
	"github.com/prevenia/vigia/internal/logging"
	"github.com/prevenia/vigia/internal/models"
)

// HTTPClient is the HTTP implementation of Client against the incident
// backend's REST API.
type HTTPClient struct {
	baseURL    string
	token      string
	httpClient *http.Client
	logger     *logging.Logger
	metrics    *Metrics
}

// NewHTTPClient creates a backend client with tuned connection pooling.
// baseURL: backend base URL (e.g., "https://backend.example.com")
// token: bearer token for backend authentication (empty disables the header)
// requestTimeout: overall per-request timeout (e.g., 15s)
// metrics: optional request metrics, may be nil
func NewHTTPClient(baseURL, token string, requestTimeout time.Duration, metrics *Metrics) *HTTPClient {
	transport := &http.Transport{
		MaxIdleConns:        100,
		MaxConnsPerHost:     20,
		MaxIdleConnsPerHost: 10, // default 2 causes connection churn
		IdleConnTimeout:     90 * time.Second,
		TLSHandshakeTimeout: 10 * time.Second,
		DialContext: (&net.Dialer{
			Timeout:   5 * time.Second,
			KeepAlive: 30 * time.Second,
		}).DialContext,
	}

	return &HTTPClient{
		baseURL: strings.TrimSuffix(baseURL, "/"),
		token:   token,
		httpClient: &http.Client{
			Transport: transport,
			Timeout:   requestTimeout,
		},
		logger:  logging.GetLogger("reportapi.client"),
		metrics: metrics,
	}
}

// GetIncidentPrefillData fetches the backend-computed prefill bundle,
// including the source_reports pointer bundle.
func (c *HTTPClient) GetIncidentPrefillData(ctx context.Context, incidentID, targetReportType string) (*models.PrefillData, error) {
	path := fmt.Sprintf("/api/incidents/%s/prefill?target=%s",
		url.PathEscape(incidentID), url.QueryEscape(targetReportType))
	var prefill models.PrefillData
	err := c.getJSON(ctx, "prefill", path, &prefill)
	if err != nil {
		return nil, err
	}
	if err := prefill.Validate(); err != nil {
		return nil, err
	}
	return &prefill, nil
}

// GetFiveWhysAnalysis fetches one five-whys analysis by ID.
func (c *HTTPClient) GetFiveWhysAnalysis(ctx context.Context, id string) (*models.FiveWhysAnalysis, error) {
	var analysis models.FiveWhysAnalysis
	err := c.getJSON(ctx, "five_whys", "/api/analyses/five-whys/"+url.PathEscape(id), &analysis)
	if err != nil {
		return nil, err
	}
	if err := analysis.Validate(); err != nil {
		return nil, err
	}
	return &analysis, nil
}

// GetFishboneAnalysis fetches one fishbone analysis by ID.
func (c *HTTPClient) GetFishboneAnalysis(ctx context.Context, id string) (*models.FishboneAnalysis, error) {
	var analysis models.FishboneAnalysis
	err := c.getJSON(ctx, "fishbone", "/api/analyses/fishbone/"+url.PathEscape(id), &analysis)
	if err != nil {
		return nil, err
	}
	if err := analysis.Validate(); err != nil {
		return nil, err
	}
	return &analysis, nil
}

// GetCausalTreeAnalysis fetches one causal-tree analysis by ID and validates
// its structural invariants before handing it to callers.
func (c *HTTPClient) GetCausalTreeAnalysis(ctx context.Context, id string) (*causaltree.Analysis, error) {
	var analysis causaltree.Analysis
	err := c.getJSON(ctx, "causal_tree", "/api/analyses/causal-tree/"+url.PathEscape(id), &analysis)
	if err != nil {
		return nil, err
	}
	if err := analysis.Validate(); err != nil {
		return nil, &FetchError{URL: c.baseURL + "/api/analyses/causal-tree/" + id,
			Message: fmt.Sprintf("invalid causal tree: %v", err)}
	}
	return &analysis, nil
}

// GetZeroToleranceReport fetches one zero-tolerance report by ID.
func (c *HTTPClient) GetZeroToleranceReport(ctx context.Context, id string) (*models.ZeroToleranceReport, error) {
	var report models.ZeroToleranceReport
	err := c.getJSON(ctx, "zero_tolerance", "/api/zero-tolerance/"+url.PathEscape(id), &report)
	if err != nil {
		return nil, err
	}
	return &report, nil
}

// GetActionPlanReportByIncident fetches the action plan linked to an
// incident.
func (c *HTTPClient) GetActionPlanReportByIncident(ctx context.Context, incidentID string) (*models.ActionPlanReport, error) {
	var report models.ActionPlanReport
	err := c.getJSON(ctx, "action_plan", "/api/incidents/"+url.PathEscape(incidentID)+"/action-plan", &report)
	if err != nil {
		return nil, err
	}
	return &report, nil
}

// GetIncidentPhotos fetches the incident's attachment list.
func (c *HTTPClient) GetIncidentPhotos(ctx context.Context, incidentID string) ([]models.Attachment, error) {
	var attachments []models.Attachment
	err := c.getJSON(ctx, "photos", "/api/incidents/"+url.PathEscape(incidentID)+"/photos", &attachments)
	if err != nil {
		return nil, err
	}
	return attachments, nil
}

// GetCausalTreeImages fetches the causal-tree diagram captures of an
// incident.
func (c *HTTPClient) GetCausalTreeImages(ctx context.Context, incidentID string) ([]models.Attachment, error) {
	var attachments []models.Attachment
	err := c.getJSON(ctx, "causal_tree_images", "/api/incidents/"+url.PathEscape(incidentID)+"/causal-tree-images", &attachments)
	if err != nil {
		return nil, err
	}
	return attachments, nil
}

// CreateNode sends an add-node mutation.
func (c *HTTPClient) CreateNode(ctx context.Context, analysisID string, req NodeCreateRequest) (*causaltree.Node, error) {
	var node causaltree.Node
	path := "/api/analyses/causal-tree/" + url.PathEscape(analysisID) + "/nodes"
	err := c.doJSON(ctx, "create_node", http.MethodPost, path, req, &node)
	if err != nil {
		return nil, err
	}
	return &node, nil
}

// UpdateNode sends a partial node edit.
func (c *HTTPClient) UpdateNode(ctx context.Context, analysisID, nodeID string, patch causaltree.NodePatch) error {
	path := "/api/analyses/causal-tree/" + url.PathEscape(analysisID) + "/nodes/" + url.PathEscape(nodeID)
	return c.doJSON(ctx, "update_node", http.MethodPatch, path, patch, nil)
}

// DeleteNode sends a node deletion.
func (c *HTTPClient) DeleteNode(ctx context.Context, analysisID, nodeID string) error {
	path := "/api/analyses/causal-tree/" + url.PathEscape(analysisID) + "/nodes/" + url.PathEscape(nodeID)
	return c.doJSON(ctx, "delete_node", http.MethodDelete, path, nil, nil)
}

// MarkRootCause flags a node as root cause.
func (c *HTTPClient) MarkRootCause(ctx context.Context, analysisID, nodeID string) error {
	path := "/api/analyses/causal-tree/" + url.PathEscape(analysisID) + "/nodes/" + url.PathEscape(nodeID) + "/root-cause"
	return c.doJSON(ctx, "mark_root_cause", http.MethodPost, path, nil, nil)
}

// CompleteAnalysis completes an analysis with its frozen root-cause set.
func (c *HTTPClient) CompleteAnalysis(ctx context.Context, analysisID string, rootCauseIDs []string) error {
	path := "/api/analyses/causal-tree/" + url.PathEscape(analysisID) + "/complete"
	body := map[string][]string{"root_cause_ids": rootCauseIDs}
	return c.doJSON(ctx, "complete_analysis", http.MethodPost, path, body, nil)
}

// getJSON executes a GET request and decodes the JSON response into out.
func (c *HTTPClient) getJSON(ctx context.Context, operation, path string, out interface{}) error {
	return c.doJSON(ctx, operation, http.MethodGet, path, nil, out)
}

// doJSON executes a request with an optional JSON body and decodes the JSON
// response into out (if non-nil).
func (c *HTTPClient) doJSON(ctx context.Context, operation, method, path string, body, out interface{}) (err error) {
	defer func() { c.metrics.observe(operation, err) }()

	reqURL := c.baseURL + path

	var reqBody io.Reader
	if body != nil {
		encoded, marshalErr := json.Marshal(body)
		if marshalErr != nil {
			return fmt.Errorf("encode %s request: %w", operation, marshalErr)
		}
		reqBody = bytes.NewReader(encoded)
	}

	req, err := http.NewRequestWithContext(ctx, method, reqURL, reqBody)
	if err != nil {
		return fmt.Errorf("create %s request: %w", operation, err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return &FetchError{URL: reqURL, Message: err.Error()}
	}
	defer resp.Body.Close()

	// Always read the response body to completion for connection reuse
	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return &FetchError{URL: reqURL, Message: fmt.Sprintf("read response body: %v", err)}
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		c.logger.WarnWithFields("backend request failed",
			logging.Field("operation", operation),
			logging.Field("status", resp.StatusCode),
			logging.Field("url", reqURL),
		)
		return &FetchError{
			StatusCode: resp.StatusCode,
			URL:        reqURL,
			Message:    strings.TrimSpace(string(respBody)),
		}
	}

	if out == nil {
		return nil
	}
	if err := json.Unmarshal(respBody, out); err != nil {
		return &FetchError{URL: reqURL, Message: fmt.Sprintf("decode response: %v", err)}
	}

	return nil
}
