package canvas

import (
	"fmt"
	"log/slog"
	"slices"
	"strconv"
	"time"

	"github.com/google/uuid"

	"github.com/gyaneshwarpardhi/knowgraph/internal/config"
	"github.com/gyaneshwarpardhi/knowgraph/internal/graph"
	"github.com/gyaneshwarpardhi/knowgraph/internal/metrics"
	"github.com/gyaneshwarpardhi/knowgraph/internal/reconcile"
	"github.com/gyaneshwarpardhi/knowgraph/internal/rules"
)

// UpdateMode tells the session how to react to a new update signal.
type UpdateMode string

const (
	// Refresh replaces canvas contents and places at most one new node.
	Refresh UpdateMode = "refresh"
	// Relayout recomputes positions for the whole visible graph.
	Relayout UpdateMode = "relayout"
)

// Props is the application state pushed into the canvas.
type Props struct {
	Elements               []graph.Element
	RootNodeID             string
	FocusNodeID            string
	FocusEdgeID            string
	HighlightedNodeIDs     []string
	UpdateSignal           int
	UpdateMode             UpdateMode
	AreGeneratedEdgesShown bool
}

// Options holds the tunables a session reads on every transition.
type Options struct {
	Layout    config.LayoutConf
	Merge     graph.MergeOptions
	Animation time.Duration
	Logger    *slog.Logger
}

// OptionsFromConfig derives session options from a loaded config.
func OptionsFromConfig(cfg *config.Config) Options {
	return Options{
		Layout:    cfg.Layout,
		Merge:     graph.MergeOptions{KeepAllParallelEdgesSamePair: cfg.Canvas.KeepAllParallelEdgesSamePair},
		Animation: time.Duration(cfg.Canvas.AnimationMs) * time.Millisecond,
	}
}

// syncState carries the guard flags across updates of one mount.
type syncState struct {
	// positionsSaved is set once a layout pass has reported positions.
	positionsSaved bool
	// forcedSave arms the next layout stop to report positions again.
	forcedSave bool
	// generatedNodeID is a node at the origin awaiting its first placement.
	generatedNodeID string
	deferredSignal  int
}

// dragState is the bookkeeping of one connection gesture.
type dragState struct {
	original *graph.Edge
	allowed  bool
}

// Session owns one rendering-engine instance for the lifetime of a mount and
// reconciles it with the props pushed by the application. A Session is not
// safe for concurrent use; callers serialize access.
type Session struct {
	factory Factory
	cb      Callbacks
	opts    Options
	log     *slog.Logger

	canvas Canvas
	props  Props
	state  syncState
	drag   dragState
}

// NewSession creates an unmounted session.
func NewSession(f Factory, cb Callbacks, opts Options) *Session {
	s := &Session{factory: f, cb: cb}
	s.SetOptions(opts)
	return s
}

// SetOptions swaps layout and merge options; they apply from the next transition.
func (s *Session) SetOptions(opts Options) {
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	s.opts = opts
	s.log = opts.Logger.With("component", "canvas")
}

// Mounted reports whether a canvas is live.
func (s *Session) Mounted() bool { return s.canvas != nil }

// Canvas returns the live canvas, nil when unmounted.
func (s *Session) Canvas() Canvas { return s.canvas }

// Mount builds a fresh canvas from p, disposing any previous one.
func (s *Session) Mount(p Props) error {
	s.dispose()

	els := s.visible(p)
	c, err := s.factory.Create(els, CreateOptions{CanConnect: s.CanConnect})
	if err != nil {
		return fmt.Errorf("create canvas: %w", err)
	}
	s.canvas = c
	s.props = p
	s.state = syncState{deferredSignal: p.UpdateSignal}
	s.drag = dragState{}

	c.On(EventLayoutStop, s.onLayoutStop)
	c.On(EventTap, s.onTap)
	c.On(EventDragFree, s.onDragFree)
	c.On(EventConnectStart, s.onConnectStart)
	c.On(EventConnectComplete, s.onConnectComplete)
	c.On(EventConnectStop, s.onConnectStop)

	s.applyFocus()
	s.applyHighlight()

	metrics.CanvasSyncs.WithLabelValues("mount").Inc()
	if graph.HasPositions(els) {
		s.state.positionsSaved = true
		s.log.Debug("canvas mounted", "layout", LayoutPreset, "elements", len(els))
		c.Run(PresetLayout())
		return nil
	}
	s.log.Debug("canvas mounted", "layout", LayoutForce, "elements", len(els))
	c.Run(ForceLayout(els, s.opts.Layout, s.opts.Animation))
	return nil
}

// Update reacts to new props: a full rebuild when the root changes, otherwise
// a refresh, relayout or restyle depending on the update signal and mode.
func (s *Session) Update(p Props) error {
	if s.canvas == nil || p.RootNodeID != s.props.RootNodeID {
		return s.Mount(p)
	}
	prev := s.props
	s.props = p

	switch {
	case p.UpdateMode == Relayout && p.UpdateSignal > s.state.deferredSignal:
		s.relayout()
	case p.UpdateMode == Refresh && p.UpdateSignal > 1 && p.UpdateSignal != s.state.deferredSignal:
		s.refresh()
	case p.AreGeneratedEdgesShown != prev.AreGeneratedEdgesShown:
		s.refresh()
	case p.FocusNodeID != prev.FocusNodeID || p.FocusEdgeID != prev.FocusEdgeID:
		s.applyFocus()
	}
	s.state.deferredSignal = p.UpdateSignal

	if !slices.Equal(prev.HighlightedNodeIDs, p.HighlightedNodeIDs) {
		metrics.CanvasSyncs.WithLabelValues("highlight").Inc()
		s.applyHighlight()
	}
	return nil
}

// Unmount destroys the canvas and forgets all per-mount state.
func (s *Session) Unmount() {
	s.dispose()
}

func (s *Session) dispose() {
	if s.canvas != nil {
		s.canvas.Destroy()
		s.canvas = nil
	}
	s.state = syncState{}
	s.drag = dragState{}
}

// visible returns the merged element set to render for p.
func (s *Session) visible(p Props) []graph.Element {
	els := p.Elements
	if !p.AreGeneratedEdgesShown {
		els = graph.FilterGeneratedEdges(els)
	}
	merged, stats := graph.MergeWithStats(els, s.opts.Merge)
	metrics.MergeRuns.Inc()
	metrics.MergedPairs.Add(float64(stats.MergedPairs))
	return merged
}

func (s *Session) refresh() {
	els := s.visible(s.props)
	s.canvas.Replace(els)
	s.applyFocus()
	s.applyHighlight()

	if id, ok := generatedNode(els); ok {
		metrics.CanvasSyncs.WithLabelValues("refresh_place").Inc()
		s.state.generatedNodeID = id
		s.state.forcedSave = true

		layout := ForceLayout(els, s.opts.Layout, s.opts.Animation)
		layout.Randomize = false
		layout.Fit = false
		for _, n := range graph.Nodes(els) {
			if n.Node.ID != id {
				layout.Locked = append(layout.Locked, n.Node.ID)
			}
		}
		s.log.Debug("placing generated node", "node", id)
		s.canvas.Run(layout)
		return
	}

	metrics.CanvasSyncs.WithLabelValues("refresh").Inc()
	positions := make(map[string]graph.Position)
	for _, n := range graph.Nodes(els) {
		if n.Position != nil {
			positions[n.Node.ID] = *n.Position
		}
	}
	s.canvas.Animate(positions, s.opts.Animation)
}

// generatedNode finds the single node sitting at the origin, provided it has
// at least one edge. Nodes without a position count as being at the origin.
func generatedNode(els []graph.Element) (string, bool) {
	var found []string
	for _, n := range graph.Nodes(els) {
		if n.Position == nil || n.Position.IsOrigin() {
			found = append(found, n.Node.ID)
		}
	}
	if len(found) != 1 {
		return "", false
	}
	if len(graph.NewIndex(els).ConnectedEdges(found[0])) == 0 {
		return "", false
	}
	return found[0], true
}

func (s *Session) relayout() {
	metrics.CanvasSyncs.WithLabelValues("relayout").Inc()
	els := s.visible(s.props)
	s.canvas.Replace(els)
	s.applyFocus()
	s.applyHighlight()

	s.state.generatedNodeID = ""
	s.state.forcedSave = true
	s.canvas.Run(ForceLayout(els, s.opts.Layout, s.opts.Animation))
}

func (s *Session) onLayoutStop(Event) {
	if s.state.positionsSaved && !s.state.forcedSave {
		return
	}
	s.state.positionsSaved = true
	s.state.forcedSave = false

	els := s.canvas.Elements()
	if id := s.state.generatedNodeID; id != "" {
		s.state.generatedNodeID = ""
		ix := graph.NewIndex(els)
		el, ok := ix.Node(id)
		if !ok {
			s.log.Warn("generated node vanished before placement", "node", id)
			return
		}
		metrics.PositionCaptures.WithLabelValues("generated").Inc()
		s.cb.OnGeneratedElementsLayout([]graph.Element{el.Clone()}, logicalEdges(ix.ConnectedEdges(id)))
		return
	}

	nodes := positionedNodes(els)
	if len(nodes) == 0 {
		return
	}
	metrics.PositionCaptures.WithLabelValues("bulk").Inc()
	s.cb.OnNodesPositionsUpdate(nodes, true)
}

// logicalEdges expands merged edges back into the sanitized edges the
// application stores.
func logicalEdges(edges []graph.Edge) []graph.Edge {
	out := make([]graph.Edge, 0, len(edges))
	for _, e := range edges {
		out = append(out, e.Sanitized())
		if e.ReverseEdge != nil {
			out = append(out, e.ReverseEdge.Edge())
		}
	}
	return out
}

func positionedNodes(els []graph.Element) []graph.Element {
	var out []graph.Element
	for _, el := range els {
		if el.IsNode() && el.Position != nil {
			out = append(out, el.Clone())
		}
	}
	return out
}

func (s *Session) applyFocus() {
	c := s.canvas
	c.RemoveClass(ClassRoot)
	c.RemoveClass(ClassFocused)
	if s.props.RootNodeID != "" {
		c.AddClass(ClassRoot, s.props.RootNodeID)
	}
	var focused []string
	for _, id := range []string{s.props.FocusNodeID, s.props.FocusEdgeID} {
		if id != "" {
			focused = append(focused, id)
		}
	}
	if len(focused) > 0 {
		c.AddClass(ClassFocused, focused...)
	}
}

// applyHighlight shades everything outside the highlighted node set and
// brings the set into view.
func (s *Session) applyHighlight() {
	c := s.canvas
	ids := s.props.HighlightedNodeIDs
	c.RemoveClass(ClassShaded)
	if len(ids) == 0 {
		return
	}
	lit := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		lit[id] = struct{}{}
	}
	var shaded []string
	for _, el := range c.Elements() {
		switch {
		case el.IsNode():
			if _, ok := lit[el.Node.ID]; !ok {
				shaded = append(shaded, el.Node.ID)
			}
		case el.IsEdge():
			_, src := lit[el.Edge.Source]
			_, dst := lit[el.Edge.Target]
			if !src || !dst {
				shaded = append(shaded, el.Edge.ID)
			}
		}
	}
	if len(shaded) > 0 {
		c.AddClass(ClassShaded, shaded...)
	}
	if len(ids) == 1 {
		c.Center(ids[0])
		return
	}
	c.Fit(ids)
}

func (s *Session) onTap(ev Event) {
	el, ok := graph.NewIndex(s.canvas.Elements()).Node(ev.TargetID)
	if !ok {
		return
	}
	s.cb.OnFocusNodeChange(*el.Node)
}

func (s *Session) onDragFree(ev Event) {
	el, ok := graph.NewIndex(s.canvas.Elements()).Node(ev.TargetID)
	if !ok || el.Position == nil {
		return
	}
	s.cb.OnNodesPositionsUpdate([]graph.Element{el.Clone()}, false)
}

// CanConnect is the rendering engine's hook while a connection is dragged
// over target. The last decision is kept for the completion that follows.
func (s *Session) CanConnect(source, target string) bool {
	if s.canvas == nil {
		return false
	}
	d := rules.Evaluate(rules.Request{
		Source:   source,
		Target:   target,
		Original: s.drag.original,
		Edges:    graph.Edges(s.canvas.Elements()),
	})
	s.drag.allowed = d.Allowed
	metrics.ConnectionDecisions.WithLabelValues(string(d.Reason), strconv.FormatBool(d.Allowed)).Inc()
	s.log.Debug("connection rule", "source", source, "target", target, "allowed", d.Allowed, "reason", d.Reason)
	return d.Allowed
}

func (s *Session) onConnectStart(ev Event) {
	s.endDrag()
	if ev.Original == nil {
		return
	}
	orig := ev.Original.Clone()
	s.drag.original = &orig
	s.canvas.AddClass(ClassGhost, orig.ID)
}

func (s *Session) onConnectComplete(ev Event) {
	defer s.endDrag()
	if ev.Added == nil {
		return
	}
	added := *ev.Added
	if !s.drag.allowed {
		s.canvas.Remove(added.ID)
		return
	}

	res := reconcile.Reconcile(reconcile.Completion{
		Added:    added,
		Original: s.drag.original,
		Edges:    graph.Edges(s.canvas.Elements()),
	})
	s.canvas.Remove(added.ID)
	metrics.EdgeReconciliations.WithLabelValues(string(res.Kind)).Inc()

	switch res.Kind {
	case reconcile.KindCreate:
		s.cb.OnEdgeCreate(res.Edge)
	case reconcile.KindUpdate:
		s.cb.OnEdgeUpdate(res.Edge)
	case reconcile.KindPatch:
		s.cb.OnPatchEdges(res.Patch)
	}
}

func (s *Session) onConnectStop(Event) {
	s.endDrag()
}

// endDrag clears ghost styling and gesture bookkeeping, whether or not the
// gesture completed.
func (s *Session) endDrag() {
	if s.drag.original != nil && s.canvas != nil {
		s.canvas.RemoveClass(ClassGhost, s.drag.original.ID)
	}
	s.drag = dragState{}
}

// CreateNode asks the application to add a draft node at pos and returns its id.
func (s *Session) CreateNode(label string, pos graph.Position) string {
	id := uuid.New().String()
	s.cb.OnNodeCreate(graph.NodeElement(graph.Node{ID: id, Label: label, Status: graph.StatusDraft}, &pos))
	return id
}

// SetRoot asks the application to make nodeID the root.
func (s *Session) SetRoot(nodeID string) {
	s.cb.OnSetNodeAsRoot(nodeID)
}
