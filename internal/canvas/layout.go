package canvas

import (
	"time"

	"github.com/gyaneshwarpardhi/knowgraph/internal/config"
	"github.com/gyaneshwarpardhi/knowgraph/internal/graph"
)

// LayoutKind selects the placement algorithm.
type LayoutKind string

const (
	// LayoutPreset keeps stored positions.
	LayoutPreset LayoutKind = "preset"
	// LayoutForce runs a force-directed simulation.
	LayoutForce LayoutKind = "force"
)

// Layout parameterizes one layout run.
type Layout struct {
	Kind            LayoutKind
	Randomize       bool
	Fit             bool
	Animate         bool
	Duration        time.Duration
	NodeRepulsion   float64
	IdealEdgeLength float64
	Gravity         float64
	Iterations      int
	Seed            int64
	// Locked nodes keep their position.
	Locked []string
}

// PresetLayout places nodes at their stored positions.
func PresetLayout() Layout {
	return Layout{Kind: LayoutPreset, Fit: true}
}

// ForceLayout builds a force-directed layout for elements. Denser graphs get
// more repulsion and longer ideal edges.
func ForceLayout(elements []graph.Element, conf config.LayoutConf, animation time.Duration) Layout {
	ratio := Density(elements)
	return Layout{
		Kind:            LayoutForce,
		Randomize:       true,
		Fit:             true,
		Animate:         animation > 0,
		Duration:        animation,
		NodeRepulsion:   conf.NodeRepulsion * (1 + ratio),
		IdealEdgeLength: conf.IdealEdgeLength * (1 + ratio/2),
		Gravity:         conf.Gravity,
		Iterations:      conf.Iterations,
		Seed:            conf.RandomSeed,
	}
}

// Density is the average number of edges per node.
func Density(elements []graph.Element) float64 {
	var nodes, edges int
	for _, el := range elements {
		switch {
		case el.IsNode():
			nodes++
		case el.IsEdge():
			edges++
		}
	}
	if nodes == 0 {
		return 0
	}
	return float64(edges) / float64(nodes)
}
