package graph

import "fmt"

// Direction selects which side of a node to look at.
type Direction uint8

const (
	Inbound  Direction = 1 << iota // edges entering the focus node
	Outbound                       // edges leaving the focus node
	Both     = Inbound | Outbound
)

// ParseDirection maps "in", "out" and "both" (or "") to a Direction.
func ParseDirection(s string) (Direction, bool) {
	switch s {
	case "in", "inbound":
		return Inbound, true
	case "out", "outbound":
		return Outbound, true
	case "", "both":
		return Both, true
	}
	return 0, false
}

func (d Direction) String() string {
	switch d {
	case Inbound:
		return "inbound"
	case Outbound:
		return "outbound"
	case Both:
		return "both"
	}
	return "none"
}

// MarshalText renders the direction by name.
func (d Direction) MarshalText() ([]byte, error) { return []byte(d.String()), nil }

func (d *Direction) UnmarshalText(b []byte) error {
	v, ok := ParseDirection(string(b))
	if !ok {
		return fmt.Errorf("unknown direction %q", b)
	}
	*d = v
	return nil
}

// Neighbor is a node adjacent to a focus node together with the edge that
// connects them.
type Neighbor struct {
	Node      Node      `json:"node"`
	Edge      Edge      `json:"edge"`
	Direction Direction `json:"direction"`
}

// FindClosestNeighbors returns the nodes directly connected to nodeID on the
// requested side(s). Each neighbor appears once; the first edge encountered in
// element order wins. Self-loops and edges to unknown nodes are skipped.
func FindClosestNeighbors(elements []Element, nodeID string, dir Direction) []Neighbor {
	ix := NewIndex(elements)
	seen := make(map[string]struct{})
	var out []Neighbor

	for _, e := range ix.edges {
		var otherID string
		var side Direction
		switch {
		case dir&Outbound != 0 && e.Source == nodeID:
			otherID, side = e.Target, Outbound
		case dir&Inbound != 0 && e.Target == nodeID:
			otherID, side = e.Source, Inbound
		default:
			continue
		}
		if otherID == nodeID {
			continue
		}
		if _, dup := seen[otherID]; dup {
			continue
		}
		el, ok := ix.Node(otherID)
		if !ok {
			continue
		}
		seen[otherID] = struct{}{}
		out = append(out, Neighbor{Node: *el.Node, Edge: e, Direction: side})
	}
	return out
}
