package graph

// NodeStatus is the review state of a knowledge unit.
type NodeStatus string

const (
	StatusDraft          NodeStatus = "draft"
	StatusReviewRequired NodeStatus = "review_required"
	StatusReviewed       NodeStatus = "reviewed"
)

// Node is a single knowledge unit on the canvas.
type Node struct {
	ID        string     `json:"id" yaml:"id"`
	Label     string     `json:"label" yaml:"label"`
	Details   string     `json:"details,omitempty" yaml:"details,omitempty"`
	Questions []string   `json:"questions,omitempty" yaml:"questions,omitempty"`
	Status    NodeStatus `json:"status,omitempty" yaml:"status,omitempty"`
	Icon      string     `json:"icon,omitempty" yaml:"icon,omitempty"`
	Neon      bool       `json:"neon,omitempty" yaml:"neon,omitempty"`
}

// Position is a 2D canvas coordinate.
type Position struct {
	X float64 `json:"x" yaml:"x"`
	Y float64 `json:"y" yaml:"y"`
}

// IsOrigin reports whether p sits exactly at (0,0).
func (p Position) IsOrigin() bool { return p.X == 0 && p.Y == 0 }

// Element is a positioned graph element: exactly one of Node or Edge is set.
// Position is only meaningful for nodes and is nil until the graph was laid out.
type Element struct {
	Node     *Node     `json:"node,omitempty" yaml:"node,omitempty"`
	Edge     *Edge     `json:"edge,omitempty" yaml:"edge,omitempty"`
	Position *Position `json:"position,omitempty" yaml:"position,omitempty"`
}

// NodeElement wraps n with an optional position.
func NodeElement(n Node, pos *Position) Element {
	return Element{Node: &n, Position: pos}
}

// EdgeElement wraps e.
func EdgeElement(e Edge) Element {
	return Element{Edge: &e}
}

func (el Element) IsNode() bool { return el.Node != nil }
func (el Element) IsEdge() bool { return el.Edge != nil }

// ID returns the id of the wrapped node or edge.
func (el Element) ID() string {
	switch {
	case el.Node != nil:
		return el.Node.ID
	case el.Edge != nil:
		return el.Edge.ID
	}
	return ""
}

// Clone returns a deep copy so callers can mutate the result freely.
func (el Element) Clone() Element {
	out := Element{}
	if el.Node != nil {
		n := *el.Node
		n.Questions = append([]string(nil), el.Node.Questions...)
		out.Node = &n
	}
	if el.Edge != nil {
		e := el.Edge.Clone()
		out.Edge = &e
	}
	if el.Position != nil {
		p := *el.Position
		out.Position = &p
	}
	return out
}

// Nodes returns the node elements of elements, in order.
func Nodes(elements []Element) []Element {
	out := make([]Element, 0, len(elements))
	for _, el := range elements {
		if el.IsNode() {
			out = append(out, el)
		}
	}
	return out
}

// Edges returns the edges of elements, in order.
func Edges(elements []Element) []Edge {
	out := make([]Edge, 0, len(elements))
	for _, el := range elements {
		if el.IsEdge() {
			out = append(out, *el.Edge)
		}
	}
	return out
}

// HasPositions reports whether any node carries a position. A graph with no
// positioned node has never been laid out.
func HasPositions(elements []Element) bool {
	for _, el := range elements {
		if el.IsNode() && el.Position != nil {
			return true
		}
	}
	return false
}

// FilterGeneratedEdges drops every Generated-type edge.
func FilterGeneratedEdges(elements []Element) []Element {
	out := make([]Element, 0, len(elements))
	for _, el := range elements {
		if el.IsEdge() && el.Edge.Type == EdgeGenerated {
			continue
		}
		out = append(out, el)
	}
	return out
}
