// Package canvas keeps an external, mutable rendering engine in step with the
// application's immutable element list and turns user gestures on it into
// application callbacks.
package canvas

import (
	"time"

	"github.com/gyaneshwarpardhi/knowgraph/internal/graph"
)

// EventName identifies a rendering-engine event.
type EventName string

const (
	EventLayoutStop      EventName = "layoutstop"
	EventTap             EventName = "tap"
	EventDragFree        EventName = "dragfree"
	EventConnectStart    EventName = "ehstart"
	EventConnectComplete EventName = "ehcomplete"
	EventConnectStop     EventName = "ehstop"
)

// Style classes the session applies to canvas elements.
const (
	ClassRoot    = "root"
	ClassFocused = "focused"
	ClassShaded  = "shaded"
	ClassGhost   = "ghost"
)

// Event is delivered to listeners registered with Canvas.On.
type Event struct {
	Name EventName
	// TargetID is the element a tap or drag refers to.
	TargetID string
	// Original is the edge whose endpoint a connection gesture started from.
	Original *graph.Edge
	// Added is the raw edge the engine created when a gesture completed.
	Added *graph.Edge
}

// Canvas is one live rendering-engine instance. Implementations deliver events
// synchronously on the caller's goroutine and are not safe for concurrent use.
type Canvas interface {
	On(name EventName, fn func(Event))
	// Elements returns the current contents with node positions.
	Elements() []graph.Element
	Replace(elements []graph.Element)
	Remove(id string)
	// Run starts a layout and emits EventLayoutStop when it settles.
	Run(layout Layout)
	Animate(positions map[string]graph.Position, d time.Duration)
	// AddClass and RemoveClass apply to the given ids; RemoveClass without ids
	// clears the class everywhere.
	AddClass(class string, ids ...string)
	RemoveClass(class string, ids ...string)
	Center(id string)
	Fit(ids []string)
	Selected() []string
	Destroy()
}

// CreateOptions configures a new canvas.
type CreateOptions struct {
	// CanConnect is consulted while a connection is dragged over a node.
	CanConnect func(source, target string) bool
}

// Factory builds canvases. The returned canvas has run no layout yet.
type Factory interface {
	Create(elements []graph.Element, opts CreateOptions) (Canvas, error)
}
