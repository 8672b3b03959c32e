// Package loader batches analysis fetches for an incident. Express Mode
// consolidates several analyses of the same methodology; the loader fans
// the per-ID fetches out, keeps results in input-ID order, and excludes
// failed IDs from the aggregate instead of failing the whole batch.
package loader

import (
	"context"

	"golang.org/x/sync/errgroup"

	"github.com/prevenia/vigia/internal/causaltree"
	"github.com/prevenia/vigia/internal/logging"
	"github.com/prevenia/vigia/internal/models"
	"github.com/prevenia/vigia/internal/reportapi"
)

// DefaultConcurrency bounds the parallel fetches of one batch.
const DefaultConcurrency = 4

// MultiAnalysisLoader loads the analyses referenced by an incident's
// source-report bundle. Safe for concurrent use as long as the underlying
// client is.
type MultiAnalysisLoader struct {
	client      reportapi.Client
	concurrency int
	logger      *logging.Logger
}

// NewMultiAnalysisLoader creates a loader over the given backend client.
// A concurrency of 0 or less falls back to DefaultConcurrency.
func NewMultiAnalysisLoader(client reportapi.Client, concurrency int) *MultiAnalysisLoader {
	if concurrency <= 0 {
		concurrency = DefaultConcurrency
	}
	return &MultiAnalysisLoader{
		client:      client,
		concurrency: concurrency,
		logger:      logging.GetLogger("loader"),
	}
}

// fetchBatch fans one fetch per ID out under the loader's concurrency
// bound. Results come back in input-ID order; IDs whose fetch failed are
// dropped from the aggregate and returned separately. Only context
// cancellation aborts the batch.
func fetchBatch[T any](
	ctx context.Context,
	l *MultiAnalysisLoader,
	kind string,
	ids []string,
	fetch func(context.Context, string) (T, error),
) ([]T, []string, error) {
	if len(ids) == 0 {
		return nil, nil, nil
	}

	slots := make([]T, len(ids))
	ok := make([]bool, len(ids))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(l.concurrency)

	for i, id := range ids {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			record, err := fetch(gctx, id)
			if err != nil {
				if gctx.Err() != nil {
					return gctx.Err()
				}
				l.logger.WarnWithFields("excluding failed analysis from batch",
					logging.LogField{Key: "kind", Value: kind},
					logging.LogField{Key: "id", Value: id},
					logging.LogField{Key: "error", Value: err.Error()},
				)
				return nil
			}
			slots[i] = record
			ok[i] = true
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, nil, err
	}

	results := make([]T, 0, len(ids))
	var failed []string
	for i, id := range ids {
		if ok[i] {
			results = append(results, slots[i])
		} else {
			failed = append(failed, id)
		}
	}
	l.logger.DebugWithFields("analysis batch loaded",
		logging.LogField{Key: "kind", Value: kind},
		logging.LogField{Key: "requested", Value: len(ids)},
		logging.LogField{Key: "loaded", Value: len(results)},
		logging.LogField{Key: "failed", Value: len(failed)},
	)
	return results, failed, nil
}

// LoadFiveWhys loads the given five-whys analyses in input-ID order.
func (l *MultiAnalysisLoader) LoadFiveWhys(ctx context.Context, ids []string) ([]*models.FiveWhysAnalysis, []string, error) {
	return fetchBatch(ctx, l, "five_whys", ids, l.client.GetFiveWhysAnalysis)
}

// LoadFishbone loads the given fishbone analyses in input-ID order.
func (l *MultiAnalysisLoader) LoadFishbone(ctx context.Context, ids []string) ([]*models.FishboneAnalysis, []string, error) {
	return fetchBatch(ctx, l, "fishbone", ids, l.client.GetFishboneAnalysis)
}

// LoadCausalTrees loads the given causal-tree analyses in input-ID order.
func (l *MultiAnalysisLoader) LoadCausalTrees(ctx context.Context, ids []string) ([]*causaltree.Analysis, []string, error) {
	return fetchBatch(ctx, l, "causal_tree", ids, l.client.GetCausalTreeAnalysis)
}

// Analyses is the full analysis bundle of one incident.
type Analyses struct {
	FiveWhys    []*models.FiveWhysAnalysis
	Fishbone    []*models.FishboneAnalysis
	CausalTrees []*causaltree.Analysis

	// FailedIDs lists every analysis ID whose fetch failed, across all
	// methodologies, in input order per methodology.
	FailedIDs []string
}

// LoadAll loads the three methodology batches concurrently from one
// source-report bundle.
func (l *MultiAnalysisLoader) LoadAll(ctx context.Context, sources models.SourceReports) (*Analyses, error) {
	var bundle Analyses
	var failedFW, failedFB, failedCT []string

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		var err error
		bundle.FiveWhys, failedFW, err = l.LoadFiveWhys(gctx, sources.FiveWhysIDs)
		return err
	})
	g.Go(func() error {
		var err error
		bundle.Fishbone, failedFB, err = l.LoadFishbone(gctx, sources.FishboneIDs)
		return err
	})
	g.Go(func() error {
		var err error
		bundle.CausalTrees, failedCT, err = l.LoadCausalTrees(gctx, sources.CausalTreeIDs)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	bundle.FailedIDs = append(bundle.FailedIDs, failedFW...)
	bundle.FailedIDs = append(bundle.FailedIDs, failedFB...)
	bundle.FailedIDs = append(bundle.FailedIDs, failedCT...)
	return &bundle, nil
}
