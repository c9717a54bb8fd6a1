package graph_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gyaneshwarpardhi/knowgraph/internal/graph"
)

func node(id string) graph.Element {
	return graph.NodeElement(graph.Node{ID: id, Label: id}, nil)
}

func edge(id, src, dst string, typ graph.EdgeType) graph.Element {
	return graph.EdgeElement(graph.Edge{ID: id, Source: src, Target: dst, Type: typ})
}

func weight(v float64) *float64 { return &v }

func edgeIDs(elements []graph.Element) []string {
	var ids []string
	for _, e := range graph.Edges(elements) {
		ids = append(ids, e.ID)
	}
	return ids
}

func TestMerge_PriorityPicksManualAsPrimary(t *testing.T) {
	in := []graph.Element{
		node("A"), node("B"),
		edge("g", "A", "B", graph.EdgeGenerated),
		edge("m", "B", "A", graph.EdgeManual),
	}
	out := graph.MergeBidirectionalEdges(in, graph.MergeOptions{})

	edges := graph.Edges(out)
	require.Len(t, edges, 1)
	assert.Equal(t, "m", edges[0].ID)
	require.NotNil(t, edges[0].ReverseEdge)
	assert.Equal(t, "g", edges[0].ReverseEdge.ID)
	assert.Equal(t, "A", edges[0].ReverseEdge.Source)
	assert.Equal(t, "B", edges[0].ReverseEdge.Target)
}

func TestMerge_NodesFirstThenEdgesByFirstAppearance(t *testing.T) {
	in := []graph.Element{
		edge("e1", "A", "B", graph.EdgeManual),
		node("A"),
		edge("e2", "B", "C", graph.EdgeManual),
		node("B"),
		edge("e3", "B", "A", graph.EdgeInit),
		node("C"),
	}
	out := graph.MergeBidirectionalEdges(in, graph.MergeOptions{})

	require.Len(t, out, 5)
	for i := 0; i < 3; i++ {
		assert.True(t, out[i].IsNode(), "element %d should be a node", i)
	}
	assert.Equal(t, []string{"e1", "e2"}, edgeIDs(out))
	assert.Equal(t, "e3", graph.Edges(out)[0].ReverseEdge.ID)
}

func TestMerge_SingleDirectionParallelEdgesPreserved(t *testing.T) {
	in := []graph.Element{
		node("A"), node("B"),
		edge("p1", "A", "B", graph.EdgeGenerated),
		edge("p2", "A", "B", graph.EdgeManual),
	}
	out := graph.MergeBidirectionalEdges(in, graph.MergeOptions{})
	assert.Equal(t, []string{"p1", "p2"}, edgeIDs(out))
	for _, e := range graph.Edges(out) {
		assert.Nil(t, e.ReverseEdge)
	}
}

func TestMerge_ParallelEdgesDroppedUnlessKept(t *testing.T) {
	in := []graph.Element{
		node("A"), node("B"),
		edge("ab1", "A", "B", graph.EdgeGenerated),
		edge("ab2", "A", "B", graph.EdgeManual),
		edge("ba1", "B", "A", graph.EdgeGenerated),
	}

	out, stats := graph.MergeWithStats(in, graph.MergeOptions{})
	assert.Equal(t, []string{"ab2"}, edgeIDs(out))
	assert.Equal(t, "ba1", graph.Edges(out)[0].ReverseEdge.ID)
	assert.Equal(t, 1, stats.MergedPairs)
	assert.Equal(t, 1, stats.DroppedEdges)

	kept := graph.MergeBidirectionalEdges(in, graph.MergeOptions{KeepAllParallelEdgesSamePair: true})
	assert.Equal(t, []string{"ab2", "ab1"}, edgeIDs(kept))
}

func TestMerge_TieKeepsEarliest(t *testing.T) {
	in := []graph.Element{
		node("A"), node("B"),
		edge("first", "B", "A", graph.EdgeManual),
		edge("second", "A", "B", graph.EdgeManual),
	}
	out := graph.MergeBidirectionalEdges(in, graph.MergeOptions{})
	edges := graph.Edges(out)
	require.Len(t, edges, 1)
	assert.Equal(t, "first", edges[0].ID)
	assert.Equal(t, "second", edges[0].ReverseEdge.ID)
}

func TestMerge_WeightBreaksTypeTie(t *testing.T) {
	light := graph.Edge{ID: "light", Source: "A", Target: "B", Type: graph.EdgeInit, Weight: weight(1)}
	heavy := graph.Edge{ID: "heavy", Source: "B", Target: "A", Type: graph.EdgeInit, Weight: weight(5)}
	in := []graph.Element{node("A"), node("B"), graph.EdgeElement(light), graph.EdgeElement(heavy)}

	edges := graph.Edges(graph.MergeBidirectionalEdges(in, graph.MergeOptions{}))
	require.Len(t, edges, 1)
	assert.Equal(t, "heavy", edges[0].ID)
}

func TestMerge_ReverseIsNotNested(t *testing.T) {
	inner := graph.Edge{
		ID: "m2", Source: "B", Target: "A", Type: graph.EdgeGenerated,
		ReverseEdge: &graph.ReverseEdge{ID: "old", Source: "A", Target: "B"},
		Weight:      weight(3),
	}
	in := []graph.Element{
		node("A"), node("B"),
		edge("m1", "A", "B", graph.EdgeManual),
		graph.EdgeElement(inner),
	}
	edges := graph.Edges(graph.MergeBidirectionalEdges(in, graph.MergeOptions{}))
	require.Len(t, edges, 1)
	assert.Equal(t, "m2", edges[0].ReverseEdge.ID)
	assert.Equal(t, graph.EdgeGenerated, edges[0].ReverseEdge.Type)
}

func TestMerge_SelfLoopPassesThrough(t *testing.T) {
	in := []graph.Element{
		node("A"),
		edge("loop1", "A", "A", graph.EdgeManual),
		edge("loop2", "A", "A", graph.EdgeGenerated),
	}
	out := graph.MergeBidirectionalEdges(in, graph.MergeOptions{})
	assert.Equal(t, []string{"loop1", "loop2"}, edgeIDs(out))
}

func TestMerge_Idempotent(t *testing.T) {
	in := []graph.Element{
		node("A"), node("B"), node("C"),
		edge("e1", "A", "B", graph.EdgeGenerated),
		edge("e2", "B", "A", graph.EdgeManual),
		edge("e3", "B", "C", graph.EdgeInit),
		edge("e4", "C", "B", graph.EdgeInit),
		edge("e5", "C", "A", graph.EdgeManual),
		edge("e6", "B", "A", graph.EdgeGenerated),
	}
	once := graph.MergeBidirectionalEdges(in, graph.MergeOptions{})
	twice := graph.MergeBidirectionalEdges(once, graph.MergeOptions{})
	assert.Equal(t, once, twice)
}

func TestMerge_OneEdgePerBidirectionalPair(t *testing.T) {
	in := []graph.Element{
		node("A"), node("B"), node("C"),
		edge("ab", "A", "B", graph.EdgeManual),
		edge("ba1", "B", "A", graph.EdgeGenerated),
		edge("ba2", "B", "A", graph.EdgeInit),
		edge("bc", "B", "C", graph.EdgeManual),
		edge("cb", "C", "B", graph.EdgeManual),
	}
	out := graph.MergeBidirectionalEdges(in, graph.MergeOptions{})

	pairs := make(map[string]int)
	for _, e := range graph.Edges(out) {
		a, b := e.Source, e.Target
		if b < a {
			a, b = b, a
		}
		pairs[a+b]++
	}
	assert.Equal(t, map[string]int{"AB": 1, "BC": 1}, pairs)
	assert.Equal(t, "ba2", graph.Edges(out)[0].ReverseEdge.ID)
}

func TestMerge_DoesNotMutateInput(t *testing.T) {
	in := []graph.Element{
		node("A"), node("B"),
		edge("x", "A", "B", graph.EdgeManual),
		edge("y", "B", "A", graph.EdgeManual),
	}
	_ = graph.MergeBidirectionalEdges(in, graph.MergeOptions{})
	assert.Nil(t, in[2].Edge.ReverseEdge)
	assert.Nil(t, in[3].Edge.ReverseEdge)
}

func TestFilterGeneratedEdges_NoGeneratedLeavesViewUnchanged(t *testing.T) {
	in := []graph.Element{
		node("A"), node("B"),
		edge("e1", "A", "B", graph.EdgeManual),
	}
	shown := graph.MergeBidirectionalEdges(in, graph.MergeOptions{})
	hidden := graph.MergeBidirectionalEdges(graph.FilterGeneratedEdges(in), graph.MergeOptions{})
	assert.Equal(t, shown, hidden)
	assert.Len(t, graph.Nodes(hidden), 2)
	assert.Len(t, graph.Edges(hidden), 1)
}
