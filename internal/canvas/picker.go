package canvas

import (
	"log/slog"

	"github.com/google/uuid"

	"github.com/gyaneshwarpardhi/knowgraph/internal/graph"
	"github.com/gyaneshwarpardhi/knowgraph/internal/rules"
)

// Picker backs the connection picker of a focused node: it lists the node's
// neighbors and turns a changed selection into edge callbacks.
type Picker struct {
	cb    Callbacks
	merge graph.MergeOptions
	log   *slog.Logger
}

// NewPicker creates a Picker emitting to cb.
func NewPicker(cb Callbacks, merge graph.MergeOptions, logger *slog.Logger) *Picker {
	if logger == nil {
		logger = slog.Default()
	}
	return &Picker{cb: cb, merge: merge, log: logger.With("component", "picker")}
}

// Neighbors lists the current neighbors of focusID on side dir.
func (p *Picker) Neighbors(elements []graph.Element, focusID string, dir graph.Direction) []graph.Neighbor {
	return graph.FindClosestNeighbors(elements, focusID, dir)
}

// Select applies a new neighbor selection for focusID. Neighbors dropped from
// the selection lose their connecting edge; a newly selected neighbor gets a
// Manual edge, inbound or outbound according to dir. It returns the id of the
// created edge, if any.
func (p *Picker) Select(elements []graph.Element, focusID string, dir graph.Direction, selected []string) string {
	current := p.Neighbors(elements, focusID, dir)
	keep := make(map[string]struct{}, len(selected))
	for _, id := range selected {
		keep[id] = struct{}{}
	}
	known := make(map[string]struct{}, len(current))
	for _, n := range current {
		known[n.Node.ID] = struct{}{}
		if _, ok := keep[n.Node.ID]; !ok {
			p.cb.OnEdgeDelete(n.Edge.Sanitized())
		}
	}

	var added []string
	for _, id := range selected {
		if _, ok := known[id]; !ok && id != focusID {
			added = append(added, id)
		}
	}
	if len(added) == 0 {
		return ""
	}
	if len(added) > 1 {
		p.log.Warn("selection added more than one neighbor, using the first", "focus", focusID, "added", added)
	}

	source, target := focusID, added[0]
	if dir == graph.Inbound {
		source, target = target, source
	}
	rendered := graph.Edges(graph.MergeBidirectionalEdges(elements, p.merge))
	if d := rules.Evaluate(rules.Request{Source: source, Target: target, Edges: rendered}); !d.Allowed {
		p.log.Debug("picker connection refused", "source", source, "target", target, "reason", d.Reason)
		return ""
	}
	e := graph.Edge{ID: uuid.New().String(), Source: source, Target: target, Type: graph.EdgeManual}
	p.cb.OnEdgeCreate(e)
	return e.ID
}
