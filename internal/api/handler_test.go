package api_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gyaneshwarpardhi/knowgraph/internal/api"
	"github.com/gyaneshwarpardhi/knowgraph/internal/canvas"
	"github.com/gyaneshwarpardhi/knowgraph/internal/canvas/headless"
	"github.com/gyaneshwarpardhi/knowgraph/internal/config"
	"github.com/gyaneshwarpardhi/knowgraph/internal/graph"
	"github.com/gyaneshwarpardhi/knowgraph/internal/workspace"
)

type graphBody struct {
	Elements               []graph.Element `json:"elements"`
	UpdateSignal           int             `json:"updateSignal"`
	UpdateMode             string          `json:"updateMode"`
	AreGeneratedEdgesShown bool            `json:"areGeneratedEdgesShown"`
	HighlightedNodeIDs     []string        `json:"highlightedNodeIds"`
}

func server(t *testing.T) (http.Handler, *workspace.Workspace) {
	t.Helper()
	seed := []graph.Element{
		graph.NodeElement(graph.Node{ID: "A", Label: "A"}, &graph.Position{X: 10, Y: 10}),
		graph.NodeElement(graph.Node{ID: "B", Label: "B"}, &graph.Position{X: 60, Y: 10}),
		graph.NodeElement(graph.Node{ID: "C", Label: "C"}, &graph.Position{X: 30, Y: 50}),
		graph.EdgeElement(graph.Edge{ID: "ab", Source: "A", Target: "B", Type: graph.EdgeManual}),
		graph.EdgeElement(graph.Edge{ID: "ba", Source: "B", Target: "A", Type: graph.EdgeGenerated}),
	}
	ws := workspace.New(seed, true, nil)
	require.NoError(t, ws.Attach(headless.NewFactory(), canvas.OptionsFromConfig(config.Default())))
	return api.New(ws, nil), ws
}

func do(t *testing.T, h http.Handler, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v), rec.Body.String())
	return v
}

func TestGraphAndView(t *testing.T) {
	h, _ := server(t)

	rec := do(t, h, http.MethodGet, "/v1/graph", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.NotEmpty(t, rec.Header().Get("X-Request-Id"))
	raw := decode[graphBody](t, rec)
	assert.Len(t, graph.Edges(raw.Elements), 2)
	assert.Equal(t, 1, raw.UpdateSignal)

	view := decode[graphBody](t, do(t, h, http.MethodGet, "/v1/graph/view", ""))
	edges := graph.Edges(view.Elements)
	require.Len(t, edges, 1)
	require.NotNil(t, edges[0].ReverseEdge)
	assert.Equal(t, "ba", edges[0].ReverseEdge.ID)
}

func TestNeighbors(t *testing.T) {
	h, _ := server(t)

	rec := do(t, h, http.MethodGet, "/v1/nodes/A/neighbors?direction=out", "")
	require.Equal(t, http.StatusOK, rec.Code)
	body := decode[struct {
		Direction string           `json:"direction"`
		Neighbors []graph.Neighbor `json:"neighbors"`
	}](t, rec)
	assert.Equal(t, "outbound", body.Direction)
	require.Len(t, body.Neighbors, 1)
	assert.Equal(t, "B", body.Neighbors[0].Node.ID)

	assert.Equal(t, http.StatusBadRequest, do(t, h, http.MethodGet, "/v1/nodes/A/neighbors?direction=up", "").Code)
	assert.Equal(t, http.StatusNotFound, do(t, h, http.MethodGet, "/v1/nodes/Z/neighbors", "").Code)
}

func TestCheckConnection(t *testing.T) {
	h, _ := server(t)

	rec := do(t, h, http.MethodPost, "/v1/connections/check", `{"source":"B","target":"A"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	d := decode[struct {
		Allowed bool   `json:"allowed"`
		Reason  string `json:"reason"`
	}](t, rec)
	assert.False(t, d.Allowed)

	d = decode[struct {
		Allowed bool   `json:"allowed"`
		Reason  string `json:"reason"`
	}](t, do(t, h, http.MethodPost, "/v1/connections/check", `{"source":"A","target":"C","originalId":"ab"}`))
	assert.True(t, d.Allowed)
	assert.Equal(t, "bidirectional", d.Reason)

	assert.Equal(t, http.StatusBadRequest, do(t, h, http.MethodPost, "/v1/connections/check", `{"source":"A"}`).Code)
	assert.Equal(t, http.StatusBadRequest, do(t, h, http.MethodPost, "/v1/connections/check", `{"bogus":1}`).Code)
	assert.Equal(t, http.StatusNotFound, do(t, h, http.MethodPost, "/v1/connections/check", `{"source":"A","target":"C","originalId":"zz"}`).Code)
}

func TestConnect(t *testing.T) {
	h, ws := server(t)

	rec := do(t, h, http.MethodPost, "/v1/connections", `{"source":"B","target":"C"}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	body := decode[graphBody](t, rec)
	assert.Equal(t, 2, body.UpdateSignal)

	var found bool
	for _, e := range graph.Edges(ws.Elements()) {
		if e.Source == "B" && e.Target == "C" {
			found = true
			assert.Equal(t, graph.EdgeManual, e.Type)
		}
	}
	assert.True(t, found)

	// The same connection again is refused.
	assert.Equal(t, http.StatusConflict, do(t, h, http.MethodPost, "/v1/connections", `{"source":"B","target":"C"}`).Code)
}

func TestDeleteEdge(t *testing.T) {
	h, ws := server(t)

	require.Equal(t, http.StatusOK, do(t, h, http.MethodDelete, "/v1/edges/ab", "").Code)
	assert.Empty(t, graph.Edges(ws.Elements()))
	assert.Equal(t, http.StatusNotFound, do(t, h, http.MethodDelete, "/v1/edges/ab", "").Code)
}

func TestDeleteNodeCascades(t *testing.T) {
	h, ws := server(t)

	require.Equal(t, http.StatusOK, do(t, h, http.MethodDelete, "/v1/nodes/A", "").Code)
	assert.Empty(t, graph.Edges(ws.Elements()))
	assert.Len(t, graph.Nodes(ws.Elements()), 2)
	assert.Equal(t, http.StatusNotFound, do(t, h, http.MethodDelete, "/v1/nodes/A", "").Code)
}

func TestCreateNode(t *testing.T) {
	h, ws := server(t)

	rec := do(t, h, http.MethodPost, "/v1/nodes", `{"label":"Idea","position":{"x":5,"y":7}}`)
	require.Equal(t, http.StatusCreated, rec.Code)
	id := decode[map[string]string](t, rec)["id"]
	require.NotEmpty(t, id)

	el, ok := graph.NewIndex(ws.Elements()).Node(id)
	require.True(t, ok)
	assert.Equal(t, graph.StatusDraft, el.Node.Status)
	assert.Equal(t, graph.Position{X: 5, Y: 7}, *el.Position)

	assert.Equal(t, http.StatusBadRequest, do(t, h, http.MethodPost, "/v1/nodes", `{}`).Code)
}

func TestViewToggles(t *testing.T) {
	h, _ := server(t)

	body := decode[graphBody](t, do(t, h, http.MethodPut, "/v1/graph/generated-edges", `{"shown":false}`))
	assert.False(t, body.AreGeneratedEdgesShown)
	view := decode[graphBody](t, do(t, h, http.MethodGet, "/v1/graph/view", ""))
	edges := graph.Edges(view.Elements)
	require.Len(t, edges, 1)
	assert.Nil(t, edges[0].ReverseEdge)
	assert.Equal(t, http.StatusBadRequest, do(t, h, http.MethodPut, "/v1/graph/generated-edges", `{}`).Code)

	body = decode[graphBody](t, do(t, h, http.MethodPut, "/v1/graph/highlight", `{"nodeIds":["A","B"]}`))
	assert.Equal(t, []string{"A", "B"}, body.HighlightedNodeIDs)

	body = decode[graphBody](t, do(t, h, http.MethodPost, "/v1/graph/relayout", ""))
	assert.Equal(t, "relayout", body.UpdateMode)
	assert.Equal(t, 2, body.UpdateSignal)
}

func TestHealthAndMetrics(t *testing.T) {
	h, ws := server(t)
	assert.Equal(t, http.StatusOK, do(t, h, http.MethodGet, "/healthz", "").Code)

	rec := do(t, h, http.MethodGet, "/metrics", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "knowgraph_workspace_elements")

	ws.Detach()
	assert.Equal(t, http.StatusServiceUnavailable, do(t, h, http.MethodGet, "/healthz", "").Code)
	assert.Equal(t, http.StatusNotFound, do(t, h, http.MethodGet, "/nope", "").Code)
}
