package api

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/gyaneshwarpardhi/knowgraph/internal/canvas"
	"github.com/gyaneshwarpardhi/knowgraph/internal/canvas/headless"
	"github.com/gyaneshwarpardhi/knowgraph/internal/config"
	"github.com/gyaneshwarpardhi/knowgraph/internal/graph"
	"github.com/gyaneshwarpardhi/knowgraph/internal/rules"
	"github.com/gyaneshwarpardhi/knowgraph/internal/workspace"
)

// Handler holds all HTTP handler dependencies.
type Handler struct {
	ws     *workspace.Workspace
	loader *config.Loader
	mux    *http.ServeMux
}

// New creates an HTTP handler and registers all routes. loader may be nil, in
// which case default canvas options are used.
func New(ws *workspace.Workspace, loader *config.Loader) http.Handler {
	h := &Handler{ws: ws, loader: loader, mux: http.NewServeMux()}

	h.route("GET /v1/graph", h.getGraph)
	h.route("GET /v1/graph/view", h.getView)
	h.route("GET /v1/nodes/{id}/neighbors", h.neighbors)
	h.route("POST /v1/nodes", h.createNode)
	h.route("DELETE /v1/nodes/{id}", h.deleteNode)
	h.route("DELETE /v1/edges/{id}", h.deleteEdge)
	h.route("POST /v1/connections/check", h.checkConnection)
	h.route("POST /v1/connections", h.connect)
	h.route("POST /v1/graph/relayout", h.relayout)
	h.route("PUT /v1/graph/generated-edges", h.generatedEdges)
	h.route("PUT /v1/graph/highlight", h.highlight)
	h.route("GET /healthz", h.healthz)
	h.mux.Handle("GET /metrics", promhttp.Handler())

	return loggingMiddleware(h.mux)
}

func (h *Handler) route(pattern string, fn http.HandlerFunc) {
	h.mux.Handle(pattern, timed(pattern, fn))
}

func (h *Handler) mergeOptions() graph.MergeOptions {
	cfg := config.Default()
	if h.loader != nil {
		cfg = h.loader.Config()
	}
	return graph.MergeOptions{KeepAllParallelEdgesSamePair: cfg.Canvas.KeepAllParallelEdgesSamePair}
}

// graphResponse is the body of the graph endpoints.
type graphResponse struct {
	Elements               []graph.Element   `json:"elements"`
	RootNodeID             string            `json:"rootNodeId,omitempty"`
	FocusNodeID            string            `json:"focusNodeId,omitempty"`
	HighlightedNodeIDs     []string          `json:"highlightedNodeIds,omitempty"`
	UpdateSignal           int               `json:"updateSignal"`
	UpdateMode             canvas.UpdateMode `json:"updateMode"`
	AreGeneratedEdgesShown bool              `json:"areGeneratedEdgesShown"`
}

func (h *Handler) snapshot(elements []graph.Element) graphResponse {
	p := h.ws.Props()
	if elements == nil {
		elements = p.Elements
	}
	return graphResponse{
		Elements:               elements,
		RootNodeID:             p.RootNodeID,
		FocusNodeID:            p.FocusNodeID,
		HighlightedNodeIDs:     p.HighlightedNodeIDs,
		UpdateSignal:           p.UpdateSignal,
		UpdateMode:             p.UpdateMode,
		AreGeneratedEdgesShown: p.AreGeneratedEdgesShown,
	}
}

// sync pushes workspace changes to the canvas and writes the new state.
func (h *Handler) sync(w http.ResponseWriter, status int) {
	if err := h.ws.Sync(); err != nil {
		writeError(w, http.StatusServiceUnavailable, err.Error())
		return
	}
	writeJSON(w, status, h.snapshot(nil))
}

// GET /v1/graph: stored elements and sync state.
func (h *Handler) getGraph(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.snapshot(nil))
}

// GET /v1/graph/view: elements as rendered, bidirectional pairs merged.
func (h *Handler) getView(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.snapshot(h.ws.View(h.mergeOptions())))
}

// GET /v1/nodes/{id}/neighbors?direction=in|out|both
func (h *Handler) neighbors(w http.ResponseWriter, r *http.Request) {
	dir, ok := graph.ParseDirection(r.URL.Query().Get("direction"))
	if !ok {
		writeError(w, http.StatusBadRequest, fmt.Sprintf("invalid direction %q", r.URL.Query().Get("direction")))
		return
	}
	id := r.PathValue("id")
	els := h.ws.Elements()
	if _, ok := graph.NewIndex(els).Node(id); !ok {
		writeError(w, http.StatusNotFound, fmt.Sprintf("node %q not found", id))
		return
	}
	ns := graph.FindClosestNeighbors(els, id, dir)
	if ns == nil {
		ns = []graph.Neighbor{}
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"node":      id,
		"direction": dir,
		"neighbors": ns,
	})
}

type createNodeRequest struct {
	Label    string         `json:"label"`
	Position graph.Position `json:"position"`
}

// POST /v1/nodes: add a draft node through the canvas.
func (h *Handler) createNode(w http.ResponseWriter, r *http.Request) {
	var req createNodeRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if req.Label == "" {
		writeError(w, http.StatusBadRequest, "label is required")
		return
	}
	var id string
	err := h.ws.WithSession(func(s *canvas.Session) error {
		id = s.CreateNode(req.Label, req.Position)
		return nil
	})
	if err != nil {
		writeError(w, http.StatusServiceUnavailable, err.Error())
		return
	}
	if err := h.ws.Sync(); err != nil {
		writeError(w, http.StatusServiceUnavailable, err.Error())
		return
	}
	writeJSON(w, http.StatusCreated, map[string]string{"id": id})
}

// DELETE /v1/nodes/{id}
func (h *Handler) deleteNode(w http.ResponseWriter, r *http.Request) {
	h.deleteVia(w, r.PathValue("id"), "node", (*canvas.Session).DeleteNode)
}

// DELETE /v1/edges/{id}: a merged edge removes both directions.
func (h *Handler) deleteEdge(w http.ResponseWriter, r *http.Request) {
	h.deleteVia(w, r.PathValue("id"), "edge", (*canvas.Session).DeleteEdge)
}

func (h *Handler) deleteVia(w http.ResponseWriter, id, kind string, del func(*canvas.Session, string) bool) {
	found := false
	err := h.ws.WithSession(func(s *canvas.Session) error {
		found = del(s, id)
		return nil
	})
	if err != nil {
		writeError(w, http.StatusServiceUnavailable, err.Error())
		return
	}
	if !found {
		writeError(w, http.StatusNotFound, fmt.Sprintf("%s %q is not on the canvas", kind, id))
		return
	}
	h.sync(w, http.StatusOK)
}

type connectionRequest struct {
	Source string `json:"source"`
	Target string `json:"target"`
	// OriginalID names a rendered edge whose endpoint is being moved.
	OriginalID string `json:"originalId,omitempty"`
}

func (req connectionRequest) validate() error {
	if req.Source == "" || req.Target == "" {
		return errors.New("source and target are required")
	}
	return nil
}

// POST /v1/connections/check: evaluate the connection rules only.
func (h *Handler) checkConnection(w http.ResponseWriter, r *http.Request) {
	var req connectionRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if err := req.validate(); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	edges := graph.Edges(h.ws.View(h.mergeOptions()))
	var original *graph.Edge
	if req.OriginalID != "" {
		for _, e := range edges {
			if e.ID == req.OriginalID {
				original = &e
				break
			}
		}
		if original == nil {
			writeError(w, http.StatusNotFound, fmt.Sprintf("edge %q is not on the canvas", req.OriginalID))
			return
		}
	}
	writeJSON(w, http.StatusOK, rules.Evaluate(rules.Request{
		Source:   req.Source,
		Target:   req.Target,
		Original: original,
		Edges:    edges,
	}))
}

// POST /v1/connections: perform an edge-handle drag on the canvas.
func (h *Handler) connect(w http.ResponseWriter, r *http.Request) {
	var req connectionRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if err := req.validate(); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	connected := false
	err := h.ws.WithSession(func(s *canvas.Session) error {
		c, ok := s.Canvas().(*headless.Canvas)
		if !ok {
			return fmt.Errorf("canvas %T does not support simulated gestures", s.Canvas())
		}
		connected = c.Drag(req.Source, req.Target, req.OriginalID) != nil
		return nil
	})
	if err != nil {
		writeError(w, http.StatusServiceUnavailable, err.Error())
		return
	}
	if !connected {
		writeError(w, http.StatusConflict, fmt.Sprintf("connection %s -> %s refused", req.Source, req.Target))
		return
	}
	h.sync(w, http.StatusOK)
}

// POST /v1/graph/relayout
func (h *Handler) relayout(w http.ResponseWriter, r *http.Request) {
	h.ws.Relayout()
	h.sync(w, http.StatusOK)
}

// PUT /v1/graph/generated-edges {"shown": bool}
func (h *Handler) generatedEdges(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Shown *bool `json:"shown"`
	}
	if !decodeJSON(w, r, &req) {
		return
	}
	if req.Shown == nil {
		writeError(w, http.StatusBadRequest, "shown is required")
		return
	}
	h.ws.ShowGeneratedEdges(*req.Shown)
	h.sync(w, http.StatusOK)
}

// PUT /v1/graph/highlight {"nodeIds": [...]}
func (h *Handler) highlight(w http.ResponseWriter, r *http.Request) {
	var req struct {
		NodeIDs []string `json:"nodeIds"`
	}
	if !decodeJSON(w, r, &req) {
		return
	}
	h.ws.Highlight(req.NodeIDs)
	h.sync(w, http.StatusOK)
}

// GET /healthz: 200 while a canvas is mounted.
func (h *Handler) healthz(w http.ResponseWriter, r *http.Request) {
	err := h.ws.WithSession(func(*canvas.Session) error { return nil })
	if err != nil {
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "unmounted"})
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
