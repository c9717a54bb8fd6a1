package graph

// EdgeType discriminates who authored an edge.
type EdgeType string

const (
	EdgeManual    EdgeType = "manual"
	EdgeInit      EdgeType = "init"
	EdgeGenerated EdgeType = "generated"
)

// typeRank orders edge types for merging. Unknown types rank 0.
var typeRank = map[EdgeType]int{
	EdgeManual:    3,
	EdgeInit:      2,
	EdgeGenerated: 1,
}

// Rank returns the merge rank of t.
func (t EdgeType) Rank() int { return typeRank[t] }

// IsDashed reports whether t is drawn as a system suggestion.
func (t EdgeType) IsDashed() bool { return t == EdgeGenerated }

// IsValid reports whether t is one of the known edge types.
func (t EdgeType) IsValid() bool {
	_, ok := typeRank[t]
	return ok
}

// ReverseEdge is the opposite-direction half of a merged edge.
// It never carries its own reverse edge or a weight.
type ReverseEdge struct {
	ID       string   `json:"id" yaml:"id"`
	Source   string   `json:"source" yaml:"source"`
	Target   string   `json:"target" yaml:"target"`
	Type     EdgeType `json:"type,omitempty" yaml:"type,omitempty"`
	Priority *float64 `json:"priority,omitempty" yaml:"priority,omitempty"`
}

// Edge is a directed connection between two nodes.
type Edge struct {
	ID          string       `json:"id" yaml:"id"`
	Source      string       `json:"source" yaml:"source"`
	Target      string       `json:"target" yaml:"target"`
	Type        EdgeType     `json:"type,omitempty" yaml:"type,omitempty"`
	ReverseEdge *ReverseEdge `json:"reverseEdge,omitempty" yaml:"reverse_edge,omitempty"`
	Weight      *float64     `json:"weight,omitempty" yaml:"weight,omitempty"`
	Priority    *float64     `json:"priority,omitempty" yaml:"priority,omitempty"`
}

// IsBidirectional reports whether e carries a reverse half.
func (e Edge) IsBidirectional() bool { return e.ReverseEdge != nil }

// IsSelfLoop reports whether e starts and ends on the same node.
func (e Edge) IsSelfLoop() bool { return e.Source == e.Target }

// Connects reports whether e joins a and b in either direction.
func (e Edge) Connects(a, b string) bool {
	return (e.Source == a && e.Target == b) || (e.Source == b && e.Target == a)
}

// Score is the merge priority: type rank first, then priority, then weight.
func (e Edge) Score() float64 {
	score := float64(e.Type.Rank()) * 1000
	switch {
	case e.Priority != nil:
		score += *e.Priority
	case e.Weight != nil:
		score += *e.Weight
	}
	return score
}

// Clone returns a deep copy of e.
func (e Edge) Clone() Edge {
	out := e
	if e.ReverseEdge != nil {
		r := *e.ReverseEdge
		r.Priority = clonePtr(e.ReverseEdge.Priority)
		out.ReverseEdge = &r
	}
	out.Weight = clonePtr(e.Weight)
	out.Priority = clonePtr(e.Priority)
	return out
}

// Sanitized returns a copy without reverse edge and weight, the shape sent to
// the application.
func (e Edge) Sanitized() Edge {
	out := e.Clone()
	out.ReverseEdge = nil
	out.Weight = nil
	return out
}

// AsReverse converts e into a reverse-edge payload.
func (e Edge) AsReverse() *ReverseEdge {
	return &ReverseEdge{
		ID:       e.ID,
		Source:   e.Source,
		Target:   e.Target,
		Type:     e.Type,
		Priority: clonePtr(e.Priority),
	}
}

// Edge turns the reverse half back into a standalone edge.
func (r ReverseEdge) Edge() Edge {
	return Edge{
		ID:       r.ID,
		Source:   r.Source,
		Target:   r.Target,
		Type:     r.Type,
		Priority: clonePtr(r.Priority),
	}
}

func clonePtr(v *float64) *float64 {
	if v == nil {
		return nil
	}
	c := *v
	return &c
}
