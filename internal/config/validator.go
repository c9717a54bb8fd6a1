package config

import (
	"fmt"
	"strings"

	"github.com/gyaneshwarpardhi/knowgraph/internal/graph"
)

// Validate checks the config for:
//   - Required fields
//   - Layout parameters that would make the force simulation diverge
//   - Seed elements that reference missing nodes or reuse ids
func Validate(cfg *Config) error {
	if cfg.Version == "" {
		return fmt.Errorf("config: version is required")
	}
	var errs []string

	if cfg.Server.Addr == "" {
		errs = append(errs, "server.addr is required")
	}
	if cfg.Canvas.AnimationMs < 0 {
		errs = append(errs, fmt.Sprintf("canvas.animation_ms must not be negative, got %d", cfg.Canvas.AnimationMs))
	}
	l := cfg.Layout
	if l.NodeRepulsion <= 0 {
		errs = append(errs, fmt.Sprintf("layout.node_repulsion must be positive, got %g", l.NodeRepulsion))
	}
	if l.IdealEdgeLength <= 0 {
		errs = append(errs, fmt.Sprintf("layout.ideal_edge_length must be positive, got %g", l.IdealEdgeLength))
	}
	if l.Iterations <= 0 {
		errs = append(errs, fmt.Sprintf("layout.iterations must be positive, got %d", l.Iterations))
	}
	if l.Gravity < 0 || l.Gravity > 1 {
		errs = append(errs, fmt.Sprintf("layout.gravity must be within [0,1], got %g", l.Gravity))
	}
	if err := graph.Validate(cfg.Seed); err != nil {
		errs = append(errs, fmt.Sprintf("seed: %s", err))
	}

	if len(errs) > 0 {
		return fmt.Errorf("config validation errors:\n  - %s", strings.Join(errs, "\n  - "))
	}
	return nil
}
