// Package scene provides a retained scene graph for the annotation editor.
// The editor mutates the graph through the Graph interface; rendering hosts
// (SVG tree, retained-mode canvas, a test harness) mirror it however they
// like. Primitives carry tagged shape variants instead of string-typed
// element attributes.
package scene

import "github.com/MarcoPoloResearchLab/marginalia/internal/geom"

// Layer orders primitives into the editor's compositing stack.
type Layer int

const (
	// LayerPages holds the rendered page images.
	LayerPages Layer = iota
	// LayerHeatmap holds the density heatmap bitmap.
	LayerHeatmap
	// LayerText holds text overlay groups.
	LayerText
	// LayerHints holds arrows, anchors and placement previews.
	LayerHints
)

// Shape is the tagged variant carried by a node. Exactly one concrete shape
// type backs each node; consumers dispatch with a type switch.
type Shape interface {
	isShape()
}

// Circle renders anchor dots, handles and the placement preview marker.
type Circle struct {
	Center geom.Point
	Radius float64
	Fill   string
}

// Line renders an arrow hint. From and RawTo are the true endpoints; To is
// the trimmed endpoint the stroke stops at so the arrowhead tip, not the
// stroke, touches RawTo.
type Line struct {
	From       geom.Point
	To         geom.Point
	RawTo      geom.Point
	MarkerSize float64
}

// Box renders a text item's border rectangle.
type Box struct {
	Rect         geom.Rect
	CornerRadius float64
}

// Label renders a block of editable text.
type Label struct {
	Origin     geom.Point
	Text       string
	FontFamily string
	FontSize   float64
	Bold       bool
	Italic     bool
	Color      string
}

// Image renders a page bitmap by reference.
type Image struct {
	Rect geom.Rect
	URL  string
}

func (Circle) isShape() {}
func (Line) isShape()   {}
func (Box) isShape()    {}
func (Label) isShape()  {}
func (Image) isShape()  {}

// Node is one primitive in the graph. OwnerID ties overlay primitives to the
// annotation that owns them; page and chrome nodes leave it empty.
type Node struct {
	ID      string
	OwnerID string
	Layer   Layer
	Visible bool
	Opacity float64
	Shape   Shape
}

// Graph is the mutation surface the editor session drives.
type Graph interface {
	// Upsert inserts the node or replaces the node with the same ID.
	Upsert(node Node)
	// Remove deletes the node if present.
	Remove(id string)
	// Get returns the node with the given ID.
	Get(id string) (Node, bool)
	// ByOwner returns all nodes owned by the given annotation, in insertion order.
	ByOwner(ownerID string) []Node
	// SetVisible toggles a node without replacing its shape.
	SetVisible(id string, visible bool)
	// SetOpacity adjusts a node's opacity without replacing its shape.
	SetOpacity(id string, opacity float64)
	// RemoveOwned deletes every node owned by the given annotation.
	RemoveOwned(ownerID string)
	// Clear empties the graph.
	Clear()
	// Nodes returns every node in insertion order.
	Nodes() []Node
}
