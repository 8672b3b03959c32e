package reportapi

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prevenia/vigia/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHTTPClient_GetFiveWhysAnalysis(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/analyses/five-whys/fw-1", r.URL.Path)
		assert.Equal(t, "Bearer token-1", r.Header.Get("Authorization"))
		_ = json.NewEncoder(w).Encode(models.FiveWhysAnalysis{
			ID:       "fw-1",
			Problema: "Detencion de correa",
			Porques:  []string{"sobrecalentamiento", "rodamiento desgastado"},
		})
	}))
	defer server.Close()

	metrics := NewMetrics(prometheus.NewRegistry())
	client := NewHTTPClient(server.URL, "token-1", 5*time.Second, metrics)

	analysis, err := client.GetFiveWhysAnalysis(context.Background(), "fw-1")
	require.NoError(t, err)
	assert.Equal(t, "Detencion de correa", analysis.Problema)
	assert.Len(t, analysis.Porques, 2)
}

func TestHTTPClient_NotFound(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "no such analysis", http.StatusNotFound)
	}))
	defer server.Close()

	client := NewHTTPClient(server.URL, "", 5*time.Second, nil)

	_, err := client.GetFiveWhysAnalysis(context.Background(), "missing")
	require.Error(t, err)
	assert.True(t, IsFetchError(err))
	assert.True(t, IsNotFound(err))
}

func TestHTTPClient_MarkRootCause(t *testing.T) {
	var gotMethod, gotPath string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotMethod = r.Method
		gotPath = r.URL.Path
		w.WriteHeader(http.StatusNoContent)
	}))
	defer server.Close()

	client := NewHTTPClient(server.URL, "", 5*time.Second, nil)

	err := client.MarkRootCause(context.Background(), "rca-1", "node-7")
	require.NoError(t, err)
	assert.Equal(t, http.MethodPost, gotMethod)
	assert.Equal(t, "/api/analyses/causal-tree/rca-1/nodes/node-7/root-cause", gotPath)
}

func TestHTTPClient_InvalidCausalTreeRejected(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// Two final events: structurally invalid
		_, _ = w.Write([]byte(`{"id":"rca-1","incident_id":"inc-1","final_event":"x",
			"nodes":[
				{"id":"n1","numero":1,"fact":"x","node_type":"final_event","level":0},
				{"id":"n2","numero":2,"fact":"y","node_type":"final_event","level":0}
			],"status":"draft"}`))
	}))
	defer server.Close()

	client := NewHTTPClient(server.URL, "", 5*time.Second, nil)

	_, err := client.GetCausalTreeAnalysis(context.Background(), "rca-1")
	require.Error(t, err)
	assert.True(t, IsFetchError(err))
}

func TestHTTPClient_FishboneUnknownCategoriaRejected(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(models.FishboneAnalysis{
			ID: "fb-1",
			Categorias: []models.FishboneCategoria{
				{Categoria: "clima", Causas: []models.FishboneCausa{{Texto: "lluvia"}}},
			},
		})
	}))
	defer server.Close()

	client := NewHTTPClient(server.URL, "", 5*time.Second, nil)

	_, err := client.GetFishboneAnalysis(context.Background(), "fb-1")
	require.Error(t, err)
	assert.True(t, models.IsValidationError(err))
	assert.Contains(t, err.Error(), "clima")
}

func TestHTTPClient_PrefillMissingIncidentIDRejected(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(models.PrefillData{Empresa: "Constructora Andina"})
	}))
	defer server.Close()

	client := NewHTTPClient(server.URL, "", 5*time.Second, nil)

	_, err := client.GetIncidentPrefillData(context.Background(), "inc-1", "final_report")
	require.Error(t, err)
	assert.True(t, models.IsValidationError(err))
}

func TestHTTPClient_ContextCancellation(t *testing.T) {
	started := make(chan struct{})
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		close(started)
		<-r.Context().Done()
	}))
	defer server.Close()

	client := NewHTTPClient(server.URL, "", 5*time.Second, nil)

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		<-started
		cancel()
	}()

	_, err := client.GetFiveWhysAnalysis(ctx, "fw-1")
	assert.Error(t, err)
}
