// Package headless is an in-memory rendering engine. It keeps elements,
// classes, selection and viewport, runs a deterministic force-directed layout
// and emits engine events synchronously.
package headless

import (
	"time"

	"github.com/google/uuid"

	"github.com/gyaneshwarpardhi/knowgraph/internal/canvas"
	"github.com/gyaneshwarpardhi/knowgraph/internal/graph"
)

// Factory creates headless canvases.
type Factory struct {
	// Created records every canvas in creation order.
	Created []*Canvas
}

// NewFactory returns a Factory.
func NewFactory() *Factory { return &Factory{} }

// Create implements canvas.Factory.
func (f *Factory) Create(elements []graph.Element, opts canvas.CreateOptions) (canvas.Canvas, error) {
	c := &Canvas{
		classes:    make(map[string]map[string]struct{}),
		listeners:  make(map[canvas.EventName][]func(canvas.Event)),
		canConnect: opts.CanConnect,
	}
	c.Replace(elements)
	f.Created = append(f.Created, c)
	return c, nil
}

// Last returns the most recently created canvas.
func (f *Factory) Last() *Canvas {
	if len(f.Created) == 0 {
		return nil
	}
	return f.Created[len(f.Created)-1]
}

// Viewport records the last Center or Fit request.
type Viewport struct {
	Center string
	Fit    []string
}

// Canvas is a headless canvas.Canvas.
type Canvas struct {
	elements   []graph.Element
	classes    map[string]map[string]struct{} // class → element ids
	selected   []string
	listeners  map[canvas.EventName][]func(canvas.Event)
	canConnect func(source, target string) bool
	viewport   Viewport
	layouts    []canvas.Layout
	destroyed  bool
}

var _ canvas.Canvas = (*Canvas)(nil)

// On registers fn for name. Listeners are dropped once destroyed.
func (c *Canvas) On(name canvas.EventName, fn func(canvas.Event)) {
	if c.destroyed {
		return
	}
	c.listeners[name] = append(c.listeners[name], fn)
}

func (c *Canvas) emit(ev canvas.Event) {
	for _, fn := range c.listeners[ev.Name] {
		fn(ev)
	}
}

// Elements returns a copy of the rendered elements.
func (c *Canvas) Elements() []graph.Element {
	out := make([]graph.Element, len(c.elements))
	for i, el := range c.elements {
		out[i] = el.Clone()
	}
	return out
}

// Replace swaps all elements. Classes survive only on ids that still exist;
// nodes without a position sit at the origin as in a real engine.
func (c *Canvas) Replace(elements []graph.Element) {
	if c.destroyed {
		return
	}
	c.elements = make([]graph.Element, len(elements))
	for i, el := range elements {
		el = el.Clone()
		if el.IsNode() && el.Position == nil {
			el.Position = &graph.Position{}
		}
		c.elements[i] = el
	}
	c.pruneIDs()
}

func (c *Canvas) pruneIDs() {
	alive := make(map[string]struct{}, len(c.elements))
	for _, el := range c.elements {
		alive[el.ID()] = struct{}{}
	}
	for _, ids := range c.classes {
		for id := range ids {
			if _, ok := alive[id]; !ok {
				delete(ids, id)
			}
		}
	}
	sel := c.selected[:0]
	for _, id := range c.selected {
		if _, ok := alive[id]; ok {
			sel = append(sel, id)
		}
	}
	c.selected = sel
}

// Remove deletes the element id and any edge attached to it.
func (c *Canvas) Remove(id string) {
	if c.destroyed {
		return
	}
	out := c.elements[:0]
	for _, el := range c.elements {
		if el.ID() == id {
			continue
		}
		if el.IsEdge() && (el.Edge.Source == id || el.Edge.Target == id) {
			continue
		}
		out = append(out, el)
	}
	c.elements = out
	c.pruneIDs()
}

// Run applies layout and emits EventLayoutStop.
func (c *Canvas) Run(layout canvas.Layout) {
	if c.destroyed {
		return
	}
	c.layouts = append(c.layouts, layout)
	if layout.Kind == canvas.LayoutForce {
		forceDirected(c.elements, layout)
	}
	if layout.Fit {
		c.viewport = Viewport{Fit: c.nodeIDs()}
	}
	c.emit(canvas.Event{Name: canvas.EventLayoutStop})
}

// Animate moves nodes to positions at once; duration is cosmetic here.
func (c *Canvas) Animate(positions map[string]graph.Position, _ time.Duration) {
	for i, el := range c.elements {
		if !el.IsNode() {
			continue
		}
		if p, ok := positions[el.Node.ID]; ok {
			c.elements[i].Position = &p
		}
	}
}

// AddClass tags ids with class.
func (c *Canvas) AddClass(class string, ids ...string) {
	set, ok := c.classes[class]
	if !ok {
		set = make(map[string]struct{})
		c.classes[class] = set
	}
	for _, id := range ids {
		set[id] = struct{}{}
	}
}

// RemoveClass untags ids, or every element when ids is empty.
func (c *Canvas) RemoveClass(class string, ids ...string) {
	if len(ids) == 0 {
		delete(c.classes, class)
		return
	}
	for _, id := range ids {
		delete(c.classes[class], id)
	}
}

// HasClass reports whether id carries class.
func (c *Canvas) HasClass(id, class string) bool {
	_, ok := c.classes[class][id]
	return ok
}

// WithClass returns how many elements carry class.
func (c *Canvas) WithClass(class string) int { return len(c.classes[class]) }

// Center records a center request on id.
func (c *Canvas) Center(id string) { c.viewport = Viewport{Center: id} }

// Fit records a fit request over ids.
func (c *Canvas) Fit(ids []string) { c.viewport = Viewport{Fit: append([]string(nil), ids...)} }

// Viewport returns the last Center or Fit request.
func (c *Canvas) Viewport() Viewport { return c.viewport }

// Selected returns the selected ids.
func (c *Canvas) Selected() []string { return append([]string(nil), c.selected...) }

// Select replaces the selection.
func (c *Canvas) Select(ids ...string) { c.selected = append([]string(nil), ids...) }

// Destroy releases listeners, elements and classes.
func (c *Canvas) Destroy() {
	c.destroyed = true
	c.listeners = make(map[canvas.EventName][]func(canvas.Event))
	c.elements = nil
	c.classes = make(map[string]map[string]struct{})
	c.selected = nil
}

// Destroyed reports whether Destroy was called.
func (c *Canvas) Destroyed() bool { return c.destroyed }

// Layouts returns every layout run so far.
func (c *Canvas) Layouts() []canvas.Layout { return c.layouts }

// Tap emits a tap on id.
func (c *Canvas) Tap(id string) {
	c.emit(canvas.Event{Name: canvas.EventTap, TargetID: id})
}

// DragNode moves a node and emits the drag release.
func (c *Canvas) DragNode(id string, to graph.Position) {
	c.Animate(map[string]graph.Position{id: to}, 0)
	c.emit(canvas.Event{Name: canvas.EventDragFree, TargetID: id})
}

// Drag simulates an edge-handle gesture from source to target. When
// originalID names a rendered edge, the gesture moves that edge's endpoint.
// The engine only adds an edge when the CanConnect hook allows it. The
// returned edge is the raw one added, nil when the gesture was refused.
func (c *Canvas) Drag(source, target, originalID string) *graph.Edge {
	if c.destroyed {
		return nil
	}
	start := canvas.Event{Name: canvas.EventConnectStart}
	if originalID != "" {
		if e, ok := graph.NewIndex(c.elements).Edge(originalID); ok {
			start.Original = &e
		}
	}
	c.emit(start)

	var added *graph.Edge
	if c.canConnect == nil || c.canConnect(source, target) {
		e := graph.Edge{ID: uuid.New().String(), Source: source, Target: target}
		c.elements = append(c.elements, graph.EdgeElement(e))
		added = &e
		c.emit(canvas.Event{Name: canvas.EventConnectComplete, Added: &e})
	}
	c.emit(canvas.Event{Name: canvas.EventConnectStop})
	return added
}

func (c *Canvas) nodeIDs() []string {
	var ids []string
	for _, el := range c.elements {
		if el.IsNode() {
			ids = append(ids, el.Node.ID)
		}
	}
	return ids
}
