package headless

import (
	"math"
	"math/rand"

	"github.com/gyaneshwarpardhi/knowgraph/internal/canvas"
	"github.com/gyaneshwarpardhi/knowgraph/internal/graph"
)

type body struct {
	idx    int // position in the element slice
	x, y   float64
	dx, dy float64
	locked bool
}

// forceDirected runs a Fruchterman-Reingold simulation in place on the node
// positions of elements. Locked nodes repel and attract but never move.
func forceDirected(elements []graph.Element, l canvas.Layout) {
	locked := make(map[string]struct{}, len(l.Locked))
	for _, id := range l.Locked {
		locked[id] = struct{}{}
	}

	var bodies []*body
	byID := make(map[string]*body)
	rng := rand.New(rand.NewSource(l.Seed))
	k := l.IdealEdgeLength
	if k <= 0 {
		k = 100
	}
	area := k * math.Sqrt(float64(len(elements))+1) * 2

	for i, el := range elements {
		if !el.IsNode() {
			continue
		}
		b := &body{idx: i}
		if el.Position != nil {
			b.x, b.y = el.Position.X, el.Position.Y
		}
		_, b.locked = locked[el.Node.ID]
		if l.Randomize && !b.locked {
			b.x = (rng.Float64() - 0.5) * area
			b.y = (rng.Float64() - 0.5) * area
		}
		bodies = append(bodies, b)
		byID[el.Node.ID] = b
	}
	if len(bodies) == 0 {
		return
	}

	type spring struct{ a, b *body }
	var springs []spring
	for _, el := range elements {
		if !el.IsEdge() || el.Edge.IsSelfLoop() {
			continue
		}
		a, okA := byID[el.Edge.Source]
		b, okB := byID[el.Edge.Target]
		if okA && okB {
			springs = append(springs, spring{a, b})
		}
	}

	repulsion := l.NodeRepulsion / 4500
	if repulsion <= 0 {
		repulsion = 1
	}
	iterations := l.Iterations
	if iterations <= 0 {
		iterations = 250
	}
	temp := area / 10

	for it := 0; it < iterations; it++ {
		for _, b := range bodies {
			b.dx, b.dy = 0, 0
		}
		for i, a := range bodies {
			for _, b := range bodies[i+1:] {
				dx, dy := a.x-b.x, a.y-b.y
				d := math.Hypot(dx, dy)
				if d < 0.01 {
					// Coincident bodies: push apart along a fixed diagonal.
					dx, dy, d = 0.01*float64(i+1), 0.01, 0.01*math.Sqrt2
				}
				f := repulsion * k * k / d
				a.dx += dx / d * f
				a.dy += dy / d * f
				b.dx -= dx / d * f
				b.dy -= dy / d * f
			}
		}
		for _, s := range springs {
			dx, dy := s.a.x-s.b.x, s.a.y-s.b.y
			d := math.Max(math.Hypot(dx, dy), 0.01)
			f := d * d / k
			s.a.dx -= dx / d * f
			s.a.dy -= dy / d * f
			s.b.dx += dx / d * f
			s.b.dy += dy / d * f
		}
		for _, b := range bodies {
			if b.locked {
				continue
			}
			b.dx -= b.x * l.Gravity
			b.dy -= b.y * l.Gravity
			d := math.Hypot(b.dx, b.dy)
			if d == 0 {
				continue
			}
			step := math.Min(d, temp)
			b.x += b.dx / d * step
			b.y += b.dy / d * step
		}
		temp *= 0.95
		if temp < 0.5 {
			temp = 0.5
		}
	}

	for _, b := range bodies {
		elements[b.idx].Position = &graph.Position{X: round(b.x), Y: round(b.y)}
	}
}

func round(v float64) float64 { return math.Round(v*100) / 100 }
