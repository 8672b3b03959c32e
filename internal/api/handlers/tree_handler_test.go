package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/prevenia/vigia/internal/causaltree"
	"github.com/prevenia/vigia/internal/expressmode"
	"github.com/prevenia/vigia/internal/logging"
	"github.com/prevenia/vigia/internal/reportapi"
)

// newTestServer wires the full route table over a fake backend.
func newTestServer(fake *reportapi.FakeClient) *httptest.Server {
	mux := http.NewServeMux()
	logger := logging.GetLogger("test")
	withMethod := func(method string, handler http.HandlerFunc) http.HandlerFunc {
		return func(w http.ResponseWriter, r *http.Request) {
			if r.Method != method {
				w.WriteHeader(http.StatusMethodNotAllowed)
				return
			}
			handler(w, r)
		}
	}
	RegisterHandlers(mux, expressmode.NewOrchestrator(fake, 0, 0), fake, logger, nil, withMethod)
	return httptest.NewServer(mux)
}

func newTreeFake(t *testing.T) (*reportapi.FakeClient, *causaltree.Analysis) {
	t.Helper()
	fake := reportapi.NewFakeClient()
	analysis := causaltree.NewAnalysis("rca-1", "inc-1", "Volcamiento de grua")
	fake.CausalTrees["rca-1"] = analysis
	return fake, analysis
}

func doJSON(t *testing.T, method, url, body string) *http.Response {
	t.Helper()
	req, err := http.NewRequest(method, url, strings.NewReader(body))
	require.NoError(t, err)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	return resp
}

func TestTreeHandler_CreateNode(t *testing.T) {
	fake, analysis := newTreeFake(t)
	server := newTestServer(fake)
	defer server.Close()

	rootID := analysis.Nodes[0].ID
	resp := doJSON(t, http.MethodPost, server.URL+"/v1/analyses/causal-tree/rca-1/nodes",
		`{"parent_id":"`+rootID+`","fact":"Terreno inestable bajo el apoyo"}`)
	defer resp.Body.Close()

	require.Equal(t, http.StatusCreated, resp.StatusCode)
	var node causaltree.Node
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&node))
	assert.Equal(t, 2, node.Numero)
	assert.Equal(t, 1, node.Level)
}

func TestTreeHandler_CreateNode_InvalidParent(t *testing.T) {
	fake, _ := newTreeFake(t)
	server := newTestServer(fake)
	defer server.Close()

	resp := doJSON(t, http.MethodPost, server.URL+"/v1/analyses/causal-tree/rca-1/nodes",
		`{"parent_id":"no-such","fact":"x"}`)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestTreeHandler_DeleteNodeWithChildren_Conflict(t *testing.T) {
	fake, analysis := newTreeFake(t)
	rootID := analysis.Nodes[0].ID
	parent, err := analysis.AddNode(rootID, "Falla del freno", "", nil)
	require.NoError(t, err)
	_, err = analysis.AddNode(parent.ID, "Mantenimiento vencido", "", nil)
	require.NoError(t, err)

	server := newTestServer(fake)
	defer server.Close()

	resp := doJSON(t, http.MethodDelete, server.URL+"/v1/analyses/causal-tree/rca-1/nodes/"+parent.ID, "")
	defer resp.Body.Close()

	assert.Equal(t, http.StatusConflict, resp.StatusCode)
	// both nodes still present
	assert.Len(t, analysis.Nodes, 3)
}

func TestTreeHandler_MarkRootCauseAndComplete(t *testing.T) {
	fake, analysis := newTreeFake(t)
	rootID := analysis.Nodes[0].ID
	leaf, err := analysis.AddNode(rootID, "Procedimiento de izaje no difundido", "", nil)
	require.NoError(t, err)

	server := newTestServer(fake)
	defer server.Close()

	resp := doJSON(t, http.MethodPost,
		server.URL+"/v1/analyses/causal-tree/rca-1/nodes/"+leaf.ID+"/root-cause", "")
	resp.Body.Close()
	require.Equal(t, http.StatusNoContent, resp.StatusCode)

	resp = doJSON(t, http.MethodPost, server.URL+"/v1/analyses/causal-tree/rca-1/complete",
		`{"root_cause_ids":["`+leaf.ID+`"]}`)
	resp.Body.Close()
	require.Equal(t, http.StatusNoContent, resp.StatusCode)
	assert.Equal(t, causaltree.StatusCompleted, analysis.Status)
}

func TestTreeHandler_CompleteWithoutRootCauses(t *testing.T) {
	fake, _ := newTreeFake(t)
	server := newTestServer(fake)
	defer server.Close()

	resp := doJSON(t, http.MethodPost, server.URL+"/v1/analyses/causal-tree/rca-1/complete",
		`{"root_cause_ids":[]}`)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestTreeHandler_UpdateNode(t *testing.T) {
	fake, analysis := newTreeFake(t)
	rootID := analysis.Nodes[0].ID
	node, err := analysis.AddNode(rootID, "Falla del freno", "", nil)
	require.NoError(t, err)

	server := newTestServer(fake)
	defer server.Close()

	resp := doJSON(t, http.MethodPatch, server.URL+"/v1/analyses/causal-tree/rca-1/nodes/"+node.ID,
		`{"fact":"Falla del freno principal"}`)
	defer resp.Body.Close()

	require.Equal(t, http.StatusNoContent, resp.StatusCode)
	updated, err := analysis.Node(node.ID)
	require.NoError(t, err)
	assert.Equal(t, "Falla del freno principal", updated.Fact)
}

func TestTreeHandler_NodeMethodNotAllowed(t *testing.T) {
	fake, analysis := newTreeFake(t)
	server := newTestServer(fake)
	defer server.Close()

	resp := doJSON(t, http.MethodPut,
		server.URL+"/v1/analyses/causal-tree/rca-1/nodes/"+analysis.Nodes[0].ID, "{}")
	defer resp.Body.Close()

	assert.Equal(t, http.StatusMethodNotAllowed, resp.StatusCode)
}

func TestTreeHandler_UnknownAnalysis(t *testing.T) {
	fake := reportapi.NewFakeClient()
	server := newTestServer(fake)
	defer server.Close()

	resp := doJSON(t, http.MethodGet, server.URL+"/v1/analyses/causal-tree/no-such", "")
	defer resp.Body.Close()

	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}
