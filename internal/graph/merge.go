package graph

import "sort"

// MergeOptions tunes MergeBidirectionalEdges.
type MergeOptions struct {
	// KeepAllParallelEdgesSamePair also emits the edges of a merged pair that
	// lost the priority contest. By default they are dropped from the view.
	KeepAllParallelEdgesSamePair bool
}

type indexedEdge struct {
	idx  int
	edge Edge
}

// pairGroup collects the edges of one unordered node pair, split by direction
// relative to the canonical (lexically smaller first) ordering of the pair.
type pairGroup struct {
	first int
	ab    []indexedEdge
	ba    []indexedEdge
}

// MergeStats summarizes one merge pass.
type MergeStats struct {
	MergedPairs   int
	DroppedEdges  int
	PassedThrough int
}

// MergeBidirectionalEdges collapses every pair of opposite-direction edges
// into one edge carrying the other as ReverseEdge. Nodes come first, then edges
// in order of first appearance. Self-loops never merge.
func MergeBidirectionalEdges(elements []Element, opts MergeOptions) []Element {
	out, _ := MergeWithStats(elements, opts)
	return out
}

// MergeWithStats is MergeBidirectionalEdges that also reports what it did.
func MergeWithStats(elements []Element, opts MergeOptions) ([]Element, MergeStats) {
	var (
		nodes  []Element
		groups = make(map[string]*pairGroup)
		keys   []string
		loops  []indexedEdge
		stats  MergeStats
	)

	edgeIdx := 0
	for _, el := range elements {
		if el.IsNode() {
			nodes = append(nodes, el)
			continue
		}
		if !el.IsEdge() {
			continue
		}
		ie := indexedEdge{idx: edgeIdx, edge: *el.Edge}
		edgeIdx++
		if ie.edge.IsSelfLoop() {
			loops = append(loops, ie)
			continue
		}
		a, b := ie.edge.Source, ie.edge.Target
		if b < a {
			a, b = b, a
		}
		key := a + "\x00" + b
		g, ok := groups[key]
		if !ok {
			g = &pairGroup{first: ie.idx}
			groups[key] = g
			keys = append(keys, key)
		}
		if ie.edge.Source == a {
			g.ab = append(g.ab, ie)
		} else {
			g.ba = append(g.ba, ie)
		}
	}

	merged := make([]indexedEdge, 0, edgeIdx)
	merged = append(merged, loops...)
	stats.PassedThrough += len(loops)

	for _, key := range keys {
		g := groups[key]
		if len(g.ab) == 0 || len(g.ba) == 0 {
			merged = append(merged, g.ab...)
			merged = append(merged, g.ba...)
			stats.PassedThrough += len(g.ab) + len(g.ba)
			continue
		}

		bestAB := best(g.ab)
		bestBA := best(g.ba)
		primary, secondary := bestAB, bestBA
		if outranks(bestBA, bestAB) {
			primary, secondary = bestBA, bestAB
		}

		edge := primary.edge.Clone()
		rev := secondary.edge
		rev.ReverseEdge = nil
		edge.ReverseEdge = rev.AsReverse()
		merged = append(merged, indexedEdge{idx: g.first, edge: edge})
		stats.MergedPairs++

		rest := len(g.ab) + len(g.ba) - 2
		if !opts.KeepAllParallelEdgesSamePair {
			stats.DroppedEdges += rest
			continue
		}
		for _, side := range [][]indexedEdge{g.ab, g.ba} {
			for _, ie := range side {
				if ie.idx == primary.idx || ie.idx == secondary.idx {
					continue
				}
				merged = append(merged, ie)
			}
		}
		stats.PassedThrough += rest
	}

	sort.SliceStable(merged, func(i, j int) bool { return merged[i].idx < merged[j].idx })

	out := make([]Element, 0, len(nodes)+len(merged))
	out = append(out, nodes...)
	for _, ie := range merged {
		out = append(out, EdgeElement(ie.edge))
	}
	return out, stats
}

// best returns the highest-scoring edge of one direction; ties keep the
// earliest.
func best(side []indexedEdge) indexedEdge {
	top := side[0]
	for _, ie := range side[1:] {
		if outranks(ie, top) {
			top = ie
		}
	}
	return top
}

func outranks(a, b indexedEdge) bool {
	sa, sb := a.edge.Score(), b.edge.Score()
	if sa != sb {
		return sa > sb
	}
	return a.idx < b.idx
}
