package config

import "github.com/gyaneshwarpardhi/knowgraph/internal/graph"

// Config is the top-level YAML structure.
type Config struct {
	Version string          `yaml:"version"`
	Server  ServerConf      `yaml:"server"`
	Canvas  CanvasConf      `yaml:"canvas"`
	Layout  LayoutConf      `yaml:"layout"`
	Seed    []graph.Element `yaml:"seed"` // initial workspace contents
}

// ServerConf holds HTTP listener settings.
type ServerConf struct {
	Addr           string `yaml:"addr"`
	ReadTimeoutMs  int    `yaml:"read_timeout_ms"`
	WriteTimeoutMs int    `yaml:"write_timeout_ms"`
}

// CanvasConf controls how elements are projected onto the canvas.
type CanvasConf struct {
	HideGeneratedEdges           bool `yaml:"hide_generated_edges"`
	KeepAllParallelEdgesSamePair bool `yaml:"keep_all_parallel_edges_same_pair"`
	AnimationMs                  int  `yaml:"animation_ms"`
}

// LayoutConf holds the base parameters of the force-directed layout. They are
// scaled up with graph density at run time.
type LayoutConf struct {
	NodeRepulsion   float64 `yaml:"node_repulsion"`
	IdealEdgeLength float64 `yaml:"ideal_edge_length"`
	Iterations      int     `yaml:"iterations"`
	Gravity         float64 `yaml:"gravity"`
	RandomSeed      int64   `yaml:"random_seed"`
}
