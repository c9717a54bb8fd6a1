package rules_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/gyaneshwarpardhi/knowgraph/internal/graph"
	"github.com/gyaneshwarpardhi/knowgraph/internal/rules"
)

func e(id, src, dst string, typ graph.EdgeType) graph.Edge {
	return graph.Edge{ID: id, Source: src, Target: dst, Type: typ}
}

func bidi(id, src, dst string, typ graph.EdgeType, revID string, revType graph.EdgeType) graph.Edge {
	out := e(id, src, dst, typ)
	out.ReverseEdge = &graph.ReverseEdge{ID: revID, Source: dst, Target: src, Type: revType}
	return out
}

type ruleCase struct {
	name     string
	source   string
	target   string
	original *graph.Edge
	edges    []graph.Edge
	want     bool
	reason   rules.Reason
}

func ptr(edge graph.Edge) *graph.Edge { return &edge }

func TestEvaluate(t *testing.T) {
	manualAB := e("m", "A", "B", graph.EdgeManual)
	genAB := e("g", "A", "B", graph.EdgeGenerated)
	genBA := e("gba", "B", "A", graph.EdgeGenerated)
	manualAC := e("mac", "A", "C", graph.EdgeManual)
	bidiGenAC := bidi("bg", "A", "C", graph.EdgeGenerated, "bgr", graph.EdgeGenerated)
	bidiManAC := bidi("bm", "A", "C", graph.EdgeManual, "bmr", graph.EdgeManual)
	bidiBA := bidi("bba", "B", "A", graph.EdgeGenerated, "bbar", graph.EdgeGenerated)

	cases := []ruleCase{
		{name: "self connection", source: "A", target: "A", want: false, reason: rules.ReasonSelfLoop},
		{name: "self connection while moving", source: "B", target: "B", original: ptr(manualAB), edges: []graph.Edge{manualAB}, want: false, reason: rules.ReasonSelfLoop},

		{name: "new on empty pair", source: "A", target: "B", want: true, reason: rules.ReasonPlain},
		{name: "new blocked by forward manual", source: "A", target: "B", edges: []graph.Edge{manualAB}, want: false, reason: rules.ReasonPlain},
		{name: "new blocked by backward manual", source: "B", target: "A", edges: []graph.Edge{manualAB}, want: false, reason: rules.ReasonPlain},
		{name: "new blocked by forward generated", source: "A", target: "B", edges: []graph.Edge{genAB}, want: false, reason: rules.ReasonPlain},
		{name: "new against backward generated", source: "B", target: "A", edges: []graph.Edge{genAB}, want: true, reason: rules.ReasonPlain},
		{name: "new against generated bidirectional backward", source: "A", target: "B", edges: []graph.Edge{bidiBA}, want: true, reason: rules.ReasonPlain},
		{name: "new blocked by manual bidirectional backward", source: "A", target: "B", edges: []graph.Edge{bidi("mba", "B", "A", graph.EdgeManual, "mbar", graph.EdgeGenerated)}, want: false, reason: rules.ReasonPlain},
		{name: "plain move against generated bidirectional backward", source: "A", target: "B", original: ptr(manualAC), edges: []graph.Edge{manualAC, bidiBA}, want: true, reason: rules.ReasonPlain},
		{name: "new ignores other pairs", source: "A", target: "B", edges: []graph.Edge{manualAC}, want: true, reason: rules.ReasonPlain},

		{name: "dashed upgrade onto itself", source: "A", target: "B", original: ptr(genAB), edges: []graph.Edge{genAB}, want: true, reason: rules.ReasonOnlyOriginalForward},
		{name: "original among several forward edges", source: "A", target: "B", original: ptr(genAB), edges: []graph.Edge{genAB, manualAB}, want: false, reason: rules.ReasonDashed},

		{name: "dashed moved to empty pair", source: "A", target: "B", original: ptr(bidiGenAC), edges: []graph.Edge{bidiGenAC}, want: true, reason: rules.ReasonDashedBidirectional},
		{name: "dashed bidirectional blocked by backward generated", source: "A", target: "B", original: ptr(bidiGenAC), edges: []graph.Edge{bidiGenAC, genBA}, want: false, reason: rules.ReasonDashedBidirectional},
		{name: "dashed plain tolerates backward generated", source: "C", target: "B", original: ptr(e("gcx", "C", "X", graph.EdgeGenerated)), edges: []graph.Edge{e("gbc", "B", "C", graph.EdgeGenerated)}, want: true, reason: rules.ReasonDashed},
		{name: "dashed plain tolerates backward manual", source: "B", target: "A", original: ptr(e("gbx", "B", "X", graph.EdgeGenerated)), edges: []graph.Edge{manualAB}, want: true, reason: rules.ReasonDashed},
		{name: "dashed plain blocked by bidirectional backward", source: "A", target: "B", original: ptr(e("gax", "A", "X", graph.EdgeGenerated)), edges: []graph.Edge{bidiBA}, want: false, reason: rules.ReasonDashed},

		{name: "bidirectional moved over generated only", source: "A", target: "B", original: ptr(bidiManAC), edges: []graph.Edge{bidiManAC, genAB, genBA}, want: true, reason: rules.ReasonBidirectional},
		{name: "bidirectional blocked by manual", source: "B", target: "A", original: ptr(bidiManAC), edges: []graph.Edge{bidiManAC, manualAB}, want: false, reason: rules.ReasonBidirectional},

		{name: "plain move to free pair", source: "A", target: "C", original: ptr(manualAB), edges: []graph.Edge{manualAB}, want: true, reason: rules.ReasonPlain},
		{name: "plain move onto occupied pair", source: "A", target: "C", original: ptr(manualAB), edges: []graph.Edge{manualAB, manualAC}, want: false, reason: rules.ReasonPlain},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := rules.Evaluate(rules.Request{
				Source:   tc.source,
				Target:   tc.target,
				Original: tc.original,
				Edges:    tc.edges,
			})
			assert.Equal(t, tc.want, got.Allowed)
			assert.Equal(t, tc.reason, got.Reason)
			assert.Equal(t, tc.want, rules.CanConnect(tc.source, tc.target, tc.original, tc.edges))
		})
	}
}
