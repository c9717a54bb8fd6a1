package canvas

import (
	"github.com/gyaneshwarpardhi/knowgraph/internal/graph"
	"github.com/gyaneshwarpardhi/knowgraph/internal/reconcile"
)

// Callbacks receives every edit made through the canvas. An edit is durable
// only once the application has applied it and pushed new props back.
type Callbacks interface {
	OnFocusNodeChange(node graph.Node)
	OnEdgeDelete(edge graph.Edge)
	OnEdgeCreate(edge graph.Edge)
	OnEdgeUpdate(edge graph.Edge)
	OnNodesPositionsUpdate(nodes []graph.Element, historySkip bool)
	// OnGeneratedElementsLayout replaces OnNodesPositionsUpdate when a freshly
	// generated node received its first placement.
	OnGeneratedElementsLayout(nodes []graph.Element, edges []graph.Edge)
	OnNodeCreate(node graph.Element)
	OnNodeDelete(node graph.Node, connectedEdgeIDs []string)
	OnSetNodeAsRoot(nodeID string)
	OnPatchEdges(patch reconcile.Patch)
}

// Funcs adapts plain functions to Callbacks. Nil fields are skipped.
type Funcs struct {
	FocusNodeChange         func(graph.Node)
	EdgeDelete              func(graph.Edge)
	EdgeCreate              func(graph.Edge)
	EdgeUpdate              func(graph.Edge)
	NodesPositionsUpdate    func([]graph.Element, bool)
	GeneratedElementsLayout func([]graph.Element, []graph.Edge)
	NodeCreate              func(graph.Element)
	NodeDelete              func(graph.Node, []string)
	SetNodeAsRoot           func(string)
	PatchEdges              func(reconcile.Patch)
}

var _ Callbacks = Funcs{}

func (f Funcs) OnFocusNodeChange(n graph.Node) {
	if f.FocusNodeChange != nil {
		f.FocusNodeChange(n)
	}
}

func (f Funcs) OnEdgeDelete(e graph.Edge) {
	if f.EdgeDelete != nil {
		f.EdgeDelete(e)
	}
}

func (f Funcs) OnEdgeCreate(e graph.Edge) {
	if f.EdgeCreate != nil {
		f.EdgeCreate(e)
	}
}

func (f Funcs) OnEdgeUpdate(e graph.Edge) {
	if f.EdgeUpdate != nil {
		f.EdgeUpdate(e)
	}
}

func (f Funcs) OnNodesPositionsUpdate(nodes []graph.Element, historySkip bool) {
	if f.NodesPositionsUpdate != nil {
		f.NodesPositionsUpdate(nodes, historySkip)
	}
}

func (f Funcs) OnGeneratedElementsLayout(nodes []graph.Element, edges []graph.Edge) {
	if f.GeneratedElementsLayout != nil {
		f.GeneratedElementsLayout(nodes, edges)
	}
}

func (f Funcs) OnNodeCreate(n graph.Element) {
	if f.NodeCreate != nil {
		f.NodeCreate(n)
	}
}

func (f Funcs) OnNodeDelete(n graph.Node, ids []string) {
	if f.NodeDelete != nil {
		f.NodeDelete(n, ids)
	}
}

func (f Funcs) OnSetNodeAsRoot(id string) {
	if f.SetNodeAsRoot != nil {
		f.SetNodeAsRoot(id)
	}
}

func (f Funcs) OnPatchEdges(p reconcile.Patch) {
	if f.PatchEdges != nil {
		f.PatchEdges(p)
	}
}
