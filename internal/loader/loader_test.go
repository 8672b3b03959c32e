package loader

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/prevenia/vigia/internal/causaltree"
	"github.com/prevenia/vigia/internal/models"
	"github.com/prevenia/vigia/internal/reportapi"
)

func newFakeWithFiveWhys(ids ...string) *reportapi.FakeClient {
	fake := reportapi.NewFakeClient()
	for _, id := range ids {
		fake.FiveWhys[id] = &models.FiveWhysAnalysis{
			ID:       id,
			Problema: "problema " + id,
			Porques:  []string{"porque de " + id},
		}
	}
	return fake
}

func TestLoadFiveWhys_InputOrder(t *testing.T) {
	fake := newFakeWithFiveWhys("fw-3", "fw-1", "fw-2")
	l := NewMultiAnalysisLoader(fake, 2)

	results, failed, err := l.LoadFiveWhys(context.Background(), []string{"fw-3", "fw-1", "fw-2"})
	require.NoError(t, err)
	assert.Empty(t, failed)
	require.Len(t, results, 3)
	assert.Equal(t, "fw-3", results[0].ID)
	assert.Equal(t, "fw-1", results[1].ID)
	assert.Equal(t, "fw-2", results[2].ID)
}

func TestLoadFiveWhys_FailedIDExcluded(t *testing.T) {
	fake := newFakeWithFiveWhys("fw-1", "fw-3")
	fake.Fail["fw-2"] = errors.New("backend unavailable")
	l := NewMultiAnalysisLoader(fake, 2)

	results, failed, err := l.LoadFiveWhys(context.Background(), []string{"fw-1", "fw-2", "fw-3"})
	require.NoError(t, err)
	assert.Equal(t, []string{"fw-2"}, failed)
	require.Len(t, results, 2)
	assert.Equal(t, "fw-1", results[0].ID)
	assert.Equal(t, "fw-3", results[1].ID)
}

func TestLoadFiveWhys_MissingIDExcluded(t *testing.T) {
	fake := newFakeWithFiveWhys("fw-1")
	l := NewMultiAnalysisLoader(fake, 0)

	results, failed, err := l.LoadFiveWhys(context.Background(), []string{"fw-1", "no-such"})
	require.NoError(t, err)
	assert.Equal(t, []string{"no-such"}, failed)
	require.Len(t, results, 1)
}

func TestLoadFiveWhys_EmptyBatch(t *testing.T) {
	l := NewMultiAnalysisLoader(reportapi.NewFakeClient(), 2)

	results, failed, err := l.LoadFiveWhys(context.Background(), nil)
	require.NoError(t, err)
	assert.Empty(t, results)
	assert.Empty(t, failed)
}

func TestLoadFiveWhys_ContextCancelled(t *testing.T) {
	fake := newFakeWithFiveWhys("fw-1", "fw-2")
	l := NewMultiAnalysisLoader(fake, 2)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	// A cancelled batch must abort rather than hand back a partial
	// aggregate for a stale incident.
	_, _, err := l.LoadFiveWhys(ctx, []string{"fw-1", "fw-2"})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestLoadCausalTrees(t *testing.T) {
	fake := reportapi.NewFakeClient()
	fake.CausalTrees["rca-1"] = causaltree.NewAnalysis("rca-1", "inc-1", "Caida de altura en andamio")
	l := NewMultiAnalysisLoader(fake, 2)

	results, failed, err := l.LoadCausalTrees(context.Background(), []string{"rca-1"})
	require.NoError(t, err)
	assert.Empty(t, failed)
	require.Len(t, results, 1)
	assert.Equal(t, "inc-1", results[0].IncidentID)
}

func TestLoadAll(t *testing.T) {
	fake := newFakeWithFiveWhys("fw-1", "fw-2")
	fake.Fishbone["fb-1"] = &models.FishboneAnalysis{ID: "fb-1", Problema: "Derrame de aceite"}
	fake.CausalTrees["rca-1"] = causaltree.NewAnalysis("rca-1", "inc-1", "Derrame de aceite")
	fake.Fail["fb-2"] = errors.New("backend unavailable")
	l := NewMultiAnalysisLoader(fake, 4)

	bundle, err := l.LoadAll(context.Background(), models.SourceReports{
		FiveWhysIDs:   []string{"fw-1", "fw-2"},
		FishboneIDs:   []string{"fb-1", "fb-2"},
		CausalTreeIDs: []string{"rca-1"},
	})
	require.NoError(t, err)
	assert.Len(t, bundle.FiveWhys, 2)
	assert.Len(t, bundle.Fishbone, 1)
	assert.Len(t, bundle.CausalTrees, 1)
	assert.Equal(t, []string{"fb-2"}, bundle.FailedIDs)
}
