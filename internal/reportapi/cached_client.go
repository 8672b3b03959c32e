package reportapi

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/prevenia/vigia/internal/causaltree"
	"github.com/prevenia/vigia/internal/logging"
	"github.com/prevenia/vigia/internal/models"
)

// CacheConfig holds read-cache configuration.
type CacheConfig struct {
	MaxEntries int           // Max cached records (default: 512)
	TTL        time.Duration // Entry TTL (default: 30 seconds)
}

// DefaultCacheConfig returns default cache configuration. The short TTL
// keeps express drafts close to the backend state while absorbing the
// burst of repeat reads a recomputation triggers.
func DefaultCacheConfig() CacheConfig {
	return CacheConfig{
		MaxEntries: 512,
		TTL:        30 * time.Second,
	}
}

// CacheStats represents cache statistics.
type CacheStats struct {
	Items  int     `json:"items"`
	Hits   uint64  `json:"hits"`
	Misses uint64  `json:"misses"`
	HitRate float64 `json:"hitRate"`
}

type cacheEntry struct {
	value     interface{}
	expiresAt time.Time
}

// CachedClient wraps a Client with a TTL'd LRU cache for read operations.
// Causal-tree mutations invalidate the cached analysis they touch so the
// optimistic re-fetch after a mutation observes the new state.
type CachedClient struct {
	underlying Client
	cache      *lru.Cache[string, cacheEntry]
	ttl        time.Duration
	logger     *logging.Logger

	hits   atomic.Uint64
	misses atomic.Uint64
}

// NewCachedClient creates a new cached client wrapper.
func NewCachedClient(client Client, config CacheConfig) (*CachedClient, error) {
	if config.MaxEntries <= 0 {
		return nil, fmt.Errorf("MaxEntries must be positive, got %d", config.MaxEntries)
	}
	if config.TTL <= 0 {
		return nil, fmt.Errorf("TTL must be positive, got %v", config.TTL)
	}

	cache, err := lru.New[string, cacheEntry](config.MaxEntries)
	if err != nil {
		return nil, err
	}

	return &CachedClient{
		underlying: client,
		cache:      cache,
		ttl:        config.TTL,
		logger:     logging.GetLogger("reportapi.cache"),
	}, nil
}

// lookup returns a live cached value for key, or nil.
func (c *CachedClient) lookup(key string) interface{} {
	entry, ok := c.cache.Get(key)
	if !ok {
		c.misses.Add(1)
		return nil
	}
	if time.Now().After(entry.expiresAt) {
		c.cache.Remove(key)
		c.misses.Add(1)
		return nil
	}
	c.hits.Add(1)
	return entry.value
}

// store caches a value under key with the configured TTL.
func (c *CachedClient) store(key string, value interface{}) {
	c.cache.Add(key, cacheEntry{value: value, expiresAt: time.Now().Add(c.ttl)})
}

// GetIncidentPrefillData fetches prefill data with caching.
func (c *CachedClient) GetIncidentPrefillData(ctx context.Context, incidentID, targetReportType string) (*models.PrefillData, error) {
	key := "prefill:" + incidentID + ":" + targetReportType
	if cached := c.lookup(key); cached != nil {
		return cached.(*models.PrefillData), nil
	}
	prefill, err := c.underlying.GetIncidentPrefillData(ctx, incidentID, targetReportType)
	if err != nil {
		return nil, err
	}
	c.store(key, prefill)
	return prefill, nil
}

// GetFiveWhysAnalysis fetches a five-whys analysis with caching.
func (c *CachedClient) GetFiveWhysAnalysis(ctx context.Context, id string) (*models.FiveWhysAnalysis, error) {
	key := "five_whys:" + id
	if cached := c.lookup(key); cached != nil {
		return cached.(*models.FiveWhysAnalysis), nil
	}
	analysis, err := c.underlying.GetFiveWhysAnalysis(ctx, id)
	if err != nil {
		return nil, err
	}
	c.store(key, analysis)
	return analysis, nil
}

// GetFishboneAnalysis fetches a fishbone analysis with caching.
func (c *CachedClient) GetFishboneAnalysis(ctx context.Context, id string) (*models.FishboneAnalysis, error) {
	key := "fishbone:" + id
	if cached := c.lookup(key); cached != nil {
		return cached.(*models.FishboneAnalysis), nil
	}
	analysis, err := c.underlying.GetFishboneAnalysis(ctx, id)
	if err != nil {
		return nil, err
	}
	c.store(key, analysis)
	return analysis, nil
}

// GetCausalTreeAnalysis fetches a causal-tree analysis with caching.
func (c *CachedClient) GetCausalTreeAnalysis(ctx context.Context, id string) (*causaltree.Analysis, error) {
	key := causalTreeKey(id)
	if cached := c.lookup(key); cached != nil {
		return cached.(*causaltree.Analysis), nil
	}
	analysis, err := c.underlying.GetCausalTreeAnalysis(ctx, id)
	if err != nil {
		return nil, err
	}
	c.store(key, analysis)
	return analysis, nil
}

// GetZeroToleranceReport fetches a zero-tolerance report with caching.
func (c *CachedClient) GetZeroToleranceReport(ctx context.Context, id string) (*models.ZeroToleranceReport, error) {
	key := "zero_tolerance:" + id
	if cached := c.lookup(key); cached != nil {
		return cached.(*models.ZeroToleranceReport), nil
	}
	report, err := c.underlying.GetZeroToleranceReport(ctx, id)
	if err != nil {
		return nil, err
	}
	c.store(key, report)
	return report, nil
}

// GetActionPlanReportByIncident fetches an action plan with caching.
func (c *CachedClient) GetActionPlanReportByIncident(ctx context.Context, incidentID string) (*models.ActionPlanReport, error) {
	key := "action_plan:" + incidentID
	if cached := c.lookup(key); cached != nil {
		return cached.(*models.ActionPlanReport), nil
	}
	report, err := c.underlying.GetActionPlanReportByIncident(ctx, incidentID)
	if err != nil {
		return nil, err
	}
	c.store(key, report)
	return report, nil
}

// GetIncidentPhotos fetches incident attachments with caching.
func (c *CachedClient) GetIncidentPhotos(ctx context.Context, incidentID string) ([]models.Attachment, error) {
	key := "photos:" + incidentID
	if cached := c.lookup(key); cached != nil {
		return cached.([]models.Attachment), nil
	}
	attachments, err := c.underlying.GetIncidentPhotos(ctx, incidentID)
	if err != nil {
		return nil, err
	}
	c.store(key, attachments)
	return attachments, nil
}

// GetCausalTreeImages fetches diagram captures with caching.
func (c *CachedClient) GetCausalTreeImages(ctx context.Context, incidentID string) ([]models.Attachment, error) {
	key := "causal_tree_images:" + incidentID
	if cached := c.lookup(key); cached != nil {
		return cached.([]models.Attachment), nil
	}
	attachments, err := c.underlying.GetCausalTreeImages(ctx, incidentID)
	if err != nil {
		return nil, err
	}
	c.store(key, attachments)
	return attachments, nil
}

// CreateNode delegates and invalidates the touched analysis.
func (c *CachedClient) CreateNode(ctx context.Context, analysisID string, req NodeCreateRequest) (*causaltree.Node, error) {
	node, err := c.underlying.CreateNode(ctx, analysisID, req)
	if err != nil {
		return nil, err
	}
	c.cache.Remove(causalTreeKey(analysisID))
	return node, nil
}

// UpdateNode delegates and invalidates the touched analysis.
func (c *CachedClient) UpdateNode(ctx context.Context, analysisID, nodeID string, patch causaltree.NodePatch) error {
	if err := c.underlying.UpdateNode(ctx, analysisID, nodeID, patch); err != nil {
		return err
	}
	c.cache.Remove(causalTreeKey(analysisID))
	return nil
}

// DeleteNode delegates and invalidates the touched analysis.
func (c *CachedClient) DeleteNode(ctx context.Context, analysisID, nodeID string) error {
	if err := c.underlying.DeleteNode(ctx, analysisID, nodeID); err != nil {
		return err
	}
	c.cache.Remove(causalTreeKey(analysisID))
	return nil
}

// MarkRootCause delegates and invalidates the touched analysis.
func (c *CachedClient) MarkRootCause(ctx context.Context, analysisID, nodeID string) error {
	if err := c.underlying.MarkRootCause(ctx, analysisID, nodeID); err != nil {
		return err
	}
	c.cache.Remove(causalTreeKey(analysisID))
	return nil
}

// CompleteAnalysis delegates and invalidates the touched analysis.
func (c *CachedClient) CompleteAnalysis(ctx context.Context, analysisID string, rootCauseIDs []string) error {
	if err := c.underlying.CompleteAnalysis(ctx, analysisID, rootCauseIDs); err != nil {
		return err
	}
	c.cache.Remove(causalTreeKey(analysisID))
	return nil
}

// Stats returns cache statistics.
func (c *CachedClient) Stats() CacheStats {
	hits := c.hits.Load()
	misses := c.misses.Load()
	total := hits + misses

	stats := CacheStats{
		Items:  c.cache.Len(),
		Hits:   hits,
		Misses: misses,
	}
	if total > 0 {
		stats.HitRate = float64(hits) / float64(total)
	}
	return stats
}

// Clear drops every cached entry.
func (c *CachedClient) Clear() {
	c.cache.Purge()
}

func causalTreeKey(analysisID string) string {
	return "causal_tree:" + analysisID
}
