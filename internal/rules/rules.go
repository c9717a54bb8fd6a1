// Package rules decides whether a dragged connection may land between two
// nodes given the edges already on the canvas.
package rules

import "github.com/gyaneshwarpardhi/knowgraph/internal/graph"

// Reason names the rule that produced a decision.
type Reason string

const (
	ReasonSelfLoop            Reason = "self_loop"
	ReasonOnlyOriginalForward Reason = "only_original_forward"
	ReasonDashedBidirectional Reason = "dashed_bidirectional"
	ReasonDashed              Reason = "dashed"
	ReasonBidirectional       Reason = "bidirectional"
	ReasonPlain               Reason = "plain"
)

// Request describes a proposed connection.
type Request struct {
	Source string
	Target string
	// Original is the edge whose endpoint is being moved; nil while a brand-new
	// connection is drawn.
	Original *graph.Edge
	// Edges is the live edge set as rendered (merged edges included).
	Edges []graph.Edge
}

// Decision is the outcome of Evaluate.
type Decision struct {
	Allowed bool   `json:"allowed"`
	Reason  Reason `json:"reason"`
}

// pairEdges splits the edges between a node pair by direction, with and
// without Generated edges.
type pairEdges struct {
	forwardAll      []graph.Edge
	backwardAll     []graph.Edge
	forwardLimited  []graph.Edge
	backwardLimited []graph.Edge
}

func collect(source, target string, edges []graph.Edge) pairEdges {
	var p pairEdges
	for _, e := range edges {
		switch {
		case e.Source == source && e.Target == target:
			p.forwardAll = append(p.forwardAll, e)
			if !e.Type.IsDashed() {
				p.forwardLimited = append(p.forwardLimited, e)
			}
		case e.Source == target && e.Target == source:
			p.backwardAll = append(p.backwardAll, e)
			if !e.Type.IsDashed() {
				p.backwardLimited = append(p.backwardLimited, e)
			}
		}
	}
	return p
}

func anyBidirectional(edges []graph.Edge) bool {
	for _, e := range edges {
		if e.IsBidirectional() {
			return true
		}
	}
	return false
}

// Evaluate applies the connection rules in order and reports the first one
// that decides.
func Evaluate(req Request) Decision {
	if req.Source == req.Target {
		return Decision{Allowed: false, Reason: ReasonSelfLoop}
	}

	p := collect(req.Source, req.Target, req.Edges)
	orig := req.Original

	if orig != nil && len(p.forwardAll) == 1 && p.forwardAll[0].ID == orig.ID {
		return Decision{Allowed: true, Reason: ReasonOnlyOriginalForward}
	}

	if orig != nil && orig.Type.IsDashed() {
		if orig.IsBidirectional() {
			ok := len(p.forwardAll) == 0 && len(p.backwardAll) == 0
			return Decision{Allowed: ok, Reason: ReasonDashedBidirectional}
		}
		ok := len(p.forwardAll) == 0 && !anyBidirectional(p.backwardAll)
		return Decision{Allowed: ok, Reason: ReasonDashed}
	}

	if orig != nil && orig.IsBidirectional() {
		ok := len(p.forwardLimited) == 0 && len(p.backwardLimited) == 0
		return Decision{Allowed: ok, Reason: ReasonBidirectional}
	}

	// A Manual/Init backward edge blocks the pair, bidirectional or not; a
	// Generated backward edge never does.
	ok := len(p.forwardAll) == 0 && len(p.backwardLimited) == 0
	return Decision{Allowed: ok, Reason: ReasonPlain}
}

// CanConnect reports whether a connection from source to target may complete.
func CanConnect(source, target string, original *graph.Edge, edges []graph.Edge) bool {
	return Evaluate(Request{Source: source, Target: target, Original: original, Edges: edges}).Allowed
}
