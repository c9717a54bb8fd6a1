package graph

import (
	"fmt"
	"strings"
)

// Index holds nodes and their outbound/inbound adjacency lists.
// It is built once from an element list and never mutated; rebuild it when the
// list changes.
type Index struct {
	nodes    map[string]Element // id → node element
	order    []string           // node ids in input order
	edges    []Edge
	outbound map[string][]Edge // source id → edges leaving it
	inbound  map[string][]Edge // target id → edges entering it
}

// NewIndex indexes elements.
func NewIndex(elements []Element) *Index {
	ix := &Index{
		nodes:    make(map[string]Element),
		outbound: make(map[string][]Edge),
		inbound:  make(map[string][]Edge),
	}
	for _, el := range elements {
		switch {
		case el.IsNode():
			if _, dup := ix.nodes[el.Node.ID]; !dup {
				ix.order = append(ix.order, el.Node.ID)
			}
			ix.nodes[el.Node.ID] = el
		case el.IsEdge():
			e := *el.Edge
			ix.edges = append(ix.edges, e)
			ix.outbound[e.Source] = append(ix.outbound[e.Source], e)
			ix.inbound[e.Target] = append(ix.inbound[e.Target], e)
		}
	}
	return ix
}

// Node returns a node element by id.
func (ix *Index) Node(id string) (Element, bool) {
	el, ok := ix.nodes[id]
	return el, ok
}

// Edge returns an edge by id.
func (ix *Index) Edge(id string) (Edge, bool) {
	for _, e := range ix.edges {
		if e.ID == id {
			return e, true
		}
	}
	return Edge{}, false
}

// Outbound returns edges leaving id.
func (ix *Index) Outbound(id string) []Edge { return ix.outbound[id] }

// Inbound returns edges entering id.
func (ix *Index) Inbound(id string) []Edge { return ix.inbound[id] }

// Between returns the edges running from source to target, in input order.
func (ix *Index) Between(source, target string) []Edge {
	var out []Edge
	for _, e := range ix.outbound[source] {
		if e.Target == target {
			out = append(out, e)
		}
	}
	return out
}

// ConnectedEdges returns every edge touching id, each once.
func (ix *Index) ConnectedEdges(id string) []Edge {
	var out []Edge
	for _, e := range ix.edges {
		if e.Source == id || e.Target == id {
			out = append(out, e)
		}
	}
	return out
}

// ConnectedEdgeIDs returns the ids of every edge touching id, including the ids
// of reverse halves carried by merged edges.
func (ix *Index) ConnectedEdgeIDs(id string) []string {
	seen := make(map[string]struct{})
	var out []string
	add := func(eid string) {
		if _, ok := seen[eid]; ok {
			return
		}
		seen[eid] = struct{}{}
		out = append(out, eid)
	}
	for _, e := range ix.ConnectedEdges(id) {
		add(e.ID)
		if e.ReverseEdge != nil {
			add(e.ReverseEdge.ID)
		}
	}
	return out
}

// NodeIDs returns node ids in input order.
func (ix *Index) NodeIDs() []string { return ix.order }

// NodeCount returns the number of distinct nodes.
func (ix *Index) NodeCount() int { return len(ix.nodes) }

// EdgeCount returns the number of edges.
func (ix *Index) EdgeCount() int { return len(ix.edges) }

// Validate checks an element list for:
//   - elements with neither or both of node/edge set
//   - duplicate ids
//   - edges whose endpoints are not present as nodes
//   - unknown edge types
func Validate(elements []Element) error {
	ids := make(map[string]int)
	nodes := make(map[string]struct{})
	var errs []string

	for i, el := range elements {
		switch {
		case el.Node != nil && el.Edge != nil:
			errs = append(errs, fmt.Sprintf("elements[%d]: only one of node/edge may be set", i))
			continue
		case el.Node == nil && el.Edge == nil:
			errs = append(errs, fmt.Sprintf("elements[%d]: one of node/edge must be set", i))
			continue
		}
		id := el.ID()
		if id == "" {
			errs = append(errs, fmt.Sprintf("elements[%d]: id is required", i))
			continue
		}
		if prev, ok := ids[id]; ok {
			errs = append(errs, fmt.Sprintf("duplicate id %q (elements[%d] and elements[%d])", id, prev, i))
		} else {
			ids[id] = i
		}
		if el.IsNode() {
			nodes[id] = struct{}{}
		}
	}

	for _, el := range elements {
		if el.Edge == nil || el.Node != nil {
			continue
		}
		e := el.Edge
		if e.Type != "" && !e.Type.IsValid() {
			errs = append(errs, fmt.Sprintf("edge %s: unknown type %q", e.ID, e.Type))
		}
		if _, ok := nodes[e.Source]; !ok {
			errs = append(errs, fmt.Sprintf("edge %s: source %q is not a node", e.ID, e.Source))
		}
		if _, ok := nodes[e.Target]; !ok {
			errs = append(errs, fmt.Sprintf("edge %s: target %q is not a node", e.ID, e.Target))
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("element validation errors:\n  - %s", strings.Join(errs, "\n  - "))
	}
	return nil
}
