// Package reconcile turns a finished connection gesture into edge mutations
// for the application.
package reconcile

import "github.com/gyaneshwarpardhi/knowgraph/internal/graph"

// Kind discriminates the three outcomes of a completed gesture.
type Kind string

const (
	KindCreate Kind = "create"
	KindUpdate Kind = "update"
	KindPatch  Kind = "patch"
)

// Patch is a compound edge mutation: edges to write and edge ids to delete.
type Patch struct {
	Edges            []graph.Edge `json:"edges,omitempty"`
	EdgesIDsToDelete []string     `json:"edgesIdsToDelete,omitempty"`
}

// IsEmpty reports whether p carries nothing to apply.
func (p Patch) IsEmpty() bool { return len(p.Edges) == 0 && len(p.EdgesIDsToDelete) == 0 }

// Completion is what the rendering engine reports once a drag ends on a node.
type Completion struct {
	// Added is the raw edge the engine created between the two nodes.
	Added graph.Edge
	// Original is the edge whose endpoint was dragged, nil for a new connection.
	Original *graph.Edge
	// Edges is the live edge set at completion time.
	Edges []graph.Edge
}

// Result is the mutation to emit. Edge is set for create and update, Patch for
// patch. The transient Added edge must always be removed from the canvas; the
// application re-adds the canonical edge on the next sync.
type Result struct {
	Kind  Kind       `json:"kind"`
	Edge  graph.Edge `json:"edge"`
	Patch Patch      `json:"patch"`
}

// Reconcile maps a completion onto create, update or patch.
func Reconcile(c Completion) Result {
	switch {
	case c.Original == nil:
		return Result{Kind: KindCreate, Edge: newEdge(c.Added)}
	case !c.Original.IsBidirectional():
		return Result{Kind: KindUpdate, Edge: movedEdge(*c.Original, c.Added)}
	default:
		return Result{Kind: KindPatch, Patch: movedBidirectional(*c.Original, c.Added, c.Edges)}
	}
}

func newEdge(added graph.Edge) graph.Edge {
	out := added.Sanitized()
	if out.Type != graph.EdgeManual {
		out.Type = graph.EdgeManual
	}
	return out
}

func movedEdge(original, added graph.Edge) graph.Edge {
	out := original.Sanitized()
	out.Source = added.Source
	out.Target = added.Target
	out.Type = graph.EdgeManual
	return out
}

// movedBidirectional re-targets both halves of a merged edge and collects the
// non-Manual edges it supersedes, on the new pair as well as on the pair it
// left.
func movedBidirectional(original, added graph.Edge, live []graph.Edge) Patch {
	rev := *original.ReverseEdge

	primary := original.Sanitized()
	primary.Source = added.Source
	primary.Target = added.Target

	reverse := rev.Edge().Sanitized()
	reverse.Source = added.Target
	reverse.Target = added.Source
	reverse.Type = graph.EdgeManual

	involved := map[string]struct{}{
		original.ID: {},
		rev.ID:      {},
		added.ID:    {},
	}
	var toDelete []string
	mark := func(id string) {
		if _, skip := involved[id]; skip {
			return
		}
		involved[id] = struct{}{}
		toDelete = append(toDelete, id)
	}

	for _, e := range live {
		if !e.Connects(added.Source, added.Target) && !e.Connects(original.Source, original.Target) {
			continue
		}
		if _, skip := involved[e.ID]; skip {
			continue
		}
		if e.Type != graph.EdgeManual {
			mark(e.ID)
		}
		if r := e.ReverseEdge; r != nil && r.Type != graph.EdgeManual {
			mark(r.ID)
		}
	}

	return Patch{
		Edges:            []graph.Edge{primary, reverse},
		EdgesIDsToDelete: toDelete,
	}
}
