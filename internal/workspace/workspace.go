// Package workspace is the application side of the canvas: it owns the
// authoritative element list and turns canvas callbacks into state changes.
package workspace

import (
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"sync"

	"github.com/google/uuid"

	"github.com/gyaneshwarpardhi/knowgraph/internal/canvas"
	"github.com/gyaneshwarpardhi/knowgraph/internal/graph"
	"github.com/gyaneshwarpardhi/knowgraph/internal/metrics"
	"github.com/gyaneshwarpardhi/knowgraph/internal/reconcile"
)

// ErrNotMounted is returned when an operation needs a live canvas.
var ErrNotMounted = errors.New("workspace: canvas not mounted")

// Workspace holds the graph state pushed into a canvas session. Callbacks only
// touch state under mu; the session itself is serialized by sessMu, so a
// callback fired from inside a session call never deadlocks.
type Workspace struct {
	mu            sync.Mutex
	elements      []graph.Element
	rootID        string
	focusNodeID   string
	focusEdgeID   string
	highlighted   []string
	signal        int
	mode          canvas.UpdateMode
	showGenerated bool

	sessMu  sync.Mutex
	session *canvas.Session

	log *slog.Logger
}

var _ canvas.Callbacks = (*Workspace)(nil)

// New creates a workspace seeded with elements.
func New(seed []graph.Element, showGenerated bool, logger *slog.Logger) *Workspace {
	if logger == nil {
		logger = slog.Default()
	}
	w := &Workspace{
		elements:      cloneAll(seed),
		signal:        1,
		mode:          canvas.Refresh,
		showGenerated: showGenerated,
		log:           logger.With("component", "workspace"),
	}
	w.recordSize()
	return w
}

// Attach creates the canvas session on f and mounts the current state.
func (w *Workspace) Attach(f canvas.Factory, opts canvas.Options) error {
	w.sessMu.Lock()
	defer w.sessMu.Unlock()
	if w.session != nil {
		w.session.Unmount()
	}
	w.session = canvas.NewSession(f, w, opts)
	if err := w.session.Mount(w.Props()); err != nil {
		w.session = nil
		return fmt.Errorf("mount canvas: %w", err)
	}
	return nil
}

// Detach unmounts the session.
func (w *Workspace) Detach() {
	w.sessMu.Lock()
	defer w.sessMu.Unlock()
	if w.session != nil {
		w.session.Unmount()
		w.session = nil
	}
}

// SetOptions forwards new tunables to the live session.
func (w *Workspace) SetOptions(opts canvas.Options) {
	w.sessMu.Lock()
	defer w.sessMu.Unlock()
	if w.session != nil {
		w.session.SetOptions(opts)
	}
}

// WithSession runs fn with exclusive access to the session. Callbacks fired by
// fn are applied to the workspace; call Sync afterwards to push them back.
func (w *Workspace) WithSession(fn func(*canvas.Session) error) error {
	w.sessMu.Lock()
	defer w.sessMu.Unlock()
	if w.session == nil || !w.session.Mounted() {
		return ErrNotMounted
	}
	return fn(w.session)
}

// Sync pushes the current props into the session.
func (w *Workspace) Sync() error {
	return w.WithSession(func(s *canvas.Session) error {
		return s.Update(w.Props())
	})
}

// Props snapshots the state as canvas props.
func (w *Workspace) Props() canvas.Props {
	w.mu.Lock()
	defer w.mu.Unlock()
	return canvas.Props{
		Elements:               cloneAll(w.elements),
		RootNodeID:             w.rootID,
		FocusNodeID:            w.focusNodeID,
		FocusEdgeID:            w.focusEdgeID,
		HighlightedNodeIDs:     slices.Clone(w.highlighted),
		UpdateSignal:           w.signal,
		UpdateMode:             w.mode,
		AreGeneratedEdgesShown: w.showGenerated,
	}
}

// Elements returns a copy of the stored elements.
func (w *Workspace) Elements() []graph.Element {
	w.mu.Lock()
	defer w.mu.Unlock()
	return cloneAll(w.elements)
}

// View returns the elements as the canvas renders them.
func (w *Workspace) View(opts graph.MergeOptions) []graph.Element {
	p := w.Props()
	els := p.Elements
	if !p.AreGeneratedEdgesShown {
		els = graph.FilterGeneratedEdges(els)
	}
	return graph.MergeBidirectionalEdges(els, opts)
}

// Relayout asks the canvas to recompute every position.
func (w *Workspace) Relayout() {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.signal++
	w.mode = canvas.Relayout
}

// ShowGeneratedEdges toggles generated-edge visibility.
func (w *Workspace) ShowGeneratedEdges(shown bool) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.showGenerated = shown
}

// Highlight replaces the highlighted node set.
func (w *Workspace) Highlight(ids []string) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.highlighted = slices.Clone(ids)
}

// Focus sets the focused node and edge; empty strings clear them.
func (w *Workspace) Focus(nodeID, edgeID string) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.focusNodeID, w.focusEdgeID = nodeID, edgeID
}

func (w *Workspace) OnFocusNodeChange(node graph.Node) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.focusNodeID = node.ID
	w.focusEdgeID = ""
}

func (w *Workspace) OnEdgeDelete(edge graph.Edge) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.deleteIDs(map[string]struct{}{edge.ID: {}})
	w.bump()
}

func (w *Workspace) OnEdgeCreate(edge graph.Edge) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if edge.ID == "" {
		edge.ID = uuid.New().String()
	}
	w.upsertEdge(edge)
	w.bump()
}

func (w *Workspace) OnEdgeUpdate(edge graph.Edge) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if !w.upsertEdge(edge) {
		w.log.Warn("updated edge was not stored, added it", "edge", edge.ID)
	}
	w.bump()
}

// OnNodesPositionsUpdate stores positions without bumping the signal; the
// canvas already shows them.
func (w *Workspace) OnNodesPositionsUpdate(nodes []graph.Element, historySkip bool) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.setPositions(nodes)
	w.log.Debug("positions stored", "nodes", len(nodes), "history_skip", historySkip)
}

func (w *Workspace) OnGeneratedElementsLayout(nodes []graph.Element, edges []graph.Edge) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.setPositions(nodes)
	for _, e := range edges {
		w.upsertEdge(e.Sanitized())
	}
}

func (w *Workspace) OnNodeCreate(node graph.Element) {
	if !node.IsNode() {
		return
	}
	w.mu.Lock()
	defer w.mu.Unlock()
	node = node.Clone()
	if node.Node.ID == "" {
		node.Node.ID = uuid.New().String()
	}
	if node.Node.Status == "" {
		node.Node.Status = graph.StatusDraft
	}
	w.elements = append(w.elements, node)
	w.bump()
}

// OnNodeDelete removes the node, the listed edges and any other edge still
// touching the node.
func (w *Workspace) OnNodeDelete(node graph.Node, connectedEdgeIDs []string) {
	w.mu.Lock()
	defer w.mu.Unlock()
	drop := map[string]struct{}{node.ID: {}}
	for _, id := range connectedEdgeIDs {
		drop[id] = struct{}{}
	}
	for _, el := range w.elements {
		if el.IsEdge() && (el.Edge.Source == node.ID || el.Edge.Target == node.ID) {
			drop[el.Edge.ID] = struct{}{}
		}
	}
	w.deleteIDs(drop)
	if w.focusNodeID == node.ID {
		w.focusNodeID = ""
	}
	if w.rootID == node.ID {
		w.rootID = ""
	}
	w.highlighted = slices.DeleteFunc(w.highlighted, func(id string) bool { return id == node.ID })
	w.bump()
}

func (w *Workspace) OnSetNodeAsRoot(nodeID string) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.rootID = nodeID
}

// OnPatchEdges applies writes first, then deletions.
func (w *Workspace) OnPatchEdges(patch reconcile.Patch) {
	if patch.IsEmpty() {
		return
	}
	w.mu.Lock()
	defer w.mu.Unlock()
	for _, e := range patch.Edges {
		w.upsertEdge(e.Sanitized())
	}
	drop := make(map[string]struct{}, len(patch.EdgesIDsToDelete))
	for _, id := range patch.EdgesIDsToDelete {
		drop[id] = struct{}{}
	}
	w.deleteIDs(drop)
	w.bump()
}

// bump signals a content change the canvas must refresh for. Callers hold mu.
func (w *Workspace) bump() {
	w.signal++
	w.mode = canvas.Refresh
	w.recordSize()
}

// upsertEdge replaces the stored edge with e.ID or appends e. It reports
// whether an edge was replaced.
func (w *Workspace) upsertEdge(e graph.Edge) bool {
	for i, el := range w.elements {
		if el.IsEdge() && el.Edge.ID == e.ID {
			w.elements[i] = graph.EdgeElement(e)
			return true
		}
	}
	w.elements = append(w.elements, graph.EdgeElement(e))
	return false
}

func (w *Workspace) deleteIDs(ids map[string]struct{}) {
	w.elements = slices.DeleteFunc(w.elements, func(el graph.Element) bool {
		_, ok := ids[el.ID()]
		return ok
	})
}

func (w *Workspace) setPositions(nodes []graph.Element) {
	pos := make(map[string]graph.Position, len(nodes))
	for _, n := range nodes {
		if n.IsNode() && n.Position != nil {
			pos[n.Node.ID] = *n.Position
		}
	}
	for i, el := range w.elements {
		if !el.IsNode() {
			continue
		}
		if p, ok := pos[el.Node.ID]; ok {
			w.elements[i].Position = &p
		}
	}
}

func (w *Workspace) recordSize() {
	var nodes, edges int
	for _, el := range w.elements {
		if el.IsNode() {
			nodes++
		} else {
			edges++
		}
	}
	metrics.WorkspaceElements.WithLabelValues("node").Set(float64(nodes))
	metrics.WorkspaceElements.WithLabelValues("edge").Set(float64(edges))
}

func cloneAll(elements []graph.Element) []graph.Element {
	out := make([]graph.Element, len(elements))
	for i, el := range elements {
		out[i] = el.Clone()
	}
	return out
}
