package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	MergeRuns = promauto.NewCounter(prometheus.CounterOpts{
		Name: "knowgraph_merge_runs_total",
		Help: "Total number of bidirectional edge merge passes.",
	})

	MergedPairs = promauto.NewCounter(prometheus.CounterOpts{
		Name: "knowgraph_merged_pairs_total",
		Help: "Total number of opposite-direction edge pairs collapsed into one edge.",
	})

	ConnectionDecisions = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "knowgraph_connection_decisions_total",
		Help: "Connection rule decisions, labelled by deciding rule and outcome.",
	}, []string{"reason", "allowed"})

	EdgeReconciliations = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "knowgraph_edge_reconciliations_total",
		Help: "Completed connection gestures, labelled by resulting mutation kind.",
	}, []string{"kind"})

	CanvasSyncs = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "knowgraph_canvas_syncs_total",
		Help: "Canvas synchronization transitions, labelled by mode.",
	}, []string{"mode"})

	PositionCaptures = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "knowgraph_position_captures_total",
		Help: "Node positions reported upward after a layout pass, labelled by kind.",
	}, []string{"kind"})

	WorkspaceElements = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Name: "knowgraph_workspace_elements",
		Help: "Current number of elements in the workspace, labelled by element kind.",
	}, []string{"kind"})

	RequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "knowgraph_http_request_duration_ms",
		Help:    "HTTP request latency in milliseconds.",
		Buckets: []float64{1, 5, 10, 25, 50, 100, 250, 500, 1000, 2500},
	}, []string{"route"})
)
