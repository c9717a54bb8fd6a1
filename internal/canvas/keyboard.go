package canvas

import (
	"github.com/gyaneshwarpardhi/knowgraph/internal/graph"
	"github.com/gyaneshwarpardhi/knowgraph/internal/reconcile"
)

// HandleKey deletes the selected elements on Delete or Backspace. It reports
// whether the key was consumed.
func (s *Session) HandleKey(key string) bool {
	if key != "Delete" && key != "Backspace" {
		return false
	}
	if s.canvas == nil {
		return false
	}
	ix := graph.NewIndex(s.canvas.Elements())
	selected := s.canvas.Selected()

	// Nodes go first; their deletion already carries every touching edge.
	nodes := make(map[string]struct{})
	for _, id := range selected {
		if _, ok := ix.Node(id); ok {
			nodes[id] = struct{}{}
		}
	}
	handled := false
	for _, id := range selected {
		if _, ok := nodes[id]; ok && s.DeleteNode(id) {
			handled = true
		}
	}
	for _, id := range selected {
		e, ok := ix.Edge(id)
		if !ok {
			continue
		}
		_, src := nodes[e.Source]
		_, dst := nodes[e.Target]
		if src || dst {
			continue
		}
		if s.DeleteEdge(id) {
			handled = true
		}
	}
	return handled
}

// DeleteEdge requests removal of a rendered edge. A merged edge removes both
// of its halves in one patch.
func (s *Session) DeleteEdge(id string) bool {
	if s.canvas == nil {
		return false
	}
	e, ok := graph.NewIndex(s.canvas.Elements()).Edge(id)
	if !ok {
		return false
	}
	if e.ReverseEdge != nil {
		s.cb.OnPatchEdges(reconcile.Patch{EdgesIDsToDelete: []string{e.ID, e.ReverseEdge.ID}})
		return true
	}
	s.cb.OnEdgeDelete(e.Sanitized())
	return true
}

// DeleteNode requests removal of a node along with every edge touching it,
// reverse halves included.
func (s *Session) DeleteNode(id string) bool {
	if s.canvas == nil {
		return false
	}
	ix := graph.NewIndex(s.canvas.Elements())
	el, ok := ix.Node(id)
	if !ok {
		return false
	}
	s.cb.OnNodeDelete(*el.Node, ix.ConnectedEdgeIDs(id))
	return true
}
