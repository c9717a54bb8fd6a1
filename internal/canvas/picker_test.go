package canvas_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gyaneshwarpardhi/knowgraph/internal/canvas"
	"github.com/gyaneshwarpardhi/knowgraph/internal/graph"
)

func pickerGraph() []graph.Element {
	return []graph.Element{
		at("F", 0, 1), at("X", 1, 1), at("Y", 2, 2), at("Z", 3, 3),
		link("fx", "F", "X", graph.EdgeManual),
		link("yf", "Y", "F", graph.EdgeInit),
	}
}

func TestPicker_DeselectDeletesEdge(t *testing.T) {
	rec := &recorder{}
	p := canvas.NewPicker(rec.funcs(), graph.MergeOptions{}, nil)

	assert.Empty(t, p.Select(pickerGraph(), "F", graph.Outbound, nil))
	require.Len(t, rec.deleted, 1)
	assert.Equal(t, "fx", rec.deleted[0].ID)
	assert.Empty(t, rec.created)
}

func TestPicker_AddsOutboundManualEdge(t *testing.T) {
	rec := &recorder{}
	p := canvas.NewPicker(rec.funcs(), graph.MergeOptions{}, nil)

	id := p.Select(pickerGraph(), "F", graph.Outbound, []string{"X", "Z", "Y"})
	require.NotEmpty(t, id)
	require.Len(t, rec.created, 1)
	assert.Equal(t, graph.Edge{ID: id, Source: "F", Target: "Z", Type: graph.EdgeManual}, rec.created[0])
	assert.Empty(t, rec.deleted)
}

func TestPicker_InboundReversesDirection(t *testing.T) {
	rec := &recorder{}
	p := canvas.NewPicker(rec.funcs(), graph.MergeOptions{}, nil)

	id := p.Select(pickerGraph(), "F", graph.Inbound, []string{"Y", "Z"})
	require.NotEmpty(t, id)
	assert.Equal(t, "Z", rec.created[0].Source)
	assert.Equal(t, "F", rec.created[0].Target)
}

func TestPicker_RefusedByRules(t *testing.T) {
	rec := &recorder{}
	p := canvas.NewPicker(rec.funcs(), graph.MergeOptions{}, nil)

	// Y already points at F with an authored edge.
	assert.Empty(t, p.Select(pickerGraph(), "F", graph.Outbound, []string{"X", "Y"}))
	assert.Empty(t, rec.created)
}
