// Package view owns the pan/zoom state that maps document space into the
// fixed logical viewport, and the minimap model that mirrors it.
package view

import (
	"math"

	"github.com/MarcoPoloResearchLab/marginalia/internal/geom"
)

const (
	// LogicalWidth is the width of the logical viewport box.
	LogicalWidth = 900.0
	// LogicalHeight is the height of the logical viewport box.
	LogicalHeight = 520.0
	// MinZoom is the positive floor the zoom scale is clamped to.
	MinZoom = 0.2
	// WheelZoomRate converts wheel delta into an exponential zoom factor.
	WheelZoomRate = 0.0008

	fitWidthFraction = 0.8
	fitTopMargin     = 24.0
)

// Camera holds the current pan offset and zoom scale for one document.
type Camera struct {
	Pan  geom.Point
	Zoom float64

	contentWidth   float64
	contentHeight  float64
	firstPageWidth float64
	userZoomed     bool
}

// NewCamera returns a camera at the identity view.
func NewCamera() *Camera {
	return &Camera{Zoom: 1, contentWidth: LogicalWidth, contentHeight: LogicalHeight, firstPageWidth: LogicalWidth}
}

// SetContent records the document's page-stack extents. The first page width
// drives fit-to-view; the full extent drives pan clamping and the minimap.
func (c *Camera) SetContent(width, height, firstPageWidth float64) {
	if width <= 0 {
		width = 1
	}
	if height <= 0 {
		height = 1
	}
	if firstPageWidth <= 0 {
		firstPageWidth = width
	}
	c.contentWidth = width
	c.contentHeight = height
	c.firstPageWidth = firstPageWidth
}

// ContentSize returns the recorded page-stack extents.
func (c *Camera) ContentSize() (width, height float64) {
	return c.contentWidth, c.contentHeight
}

// HasUserZoomed reports whether the user has zoomed manually since the last
// reset; fit-to-view refuses to override a manual zoom unless forced.
func (c *Camera) HasUserZoomed() bool {
	return c.userZoomed
}

// ResetZoomFlag clears the manual-zoom flag, re-enabling auto fit.
func (c *Camera) ResetZoomFlag() {
	c.userZoomed = false
}

// FitToView scales the first page to fill 80% of the logical viewport width,
// centers it horizontally and leaves a fixed top margin. It is a no-op after
// a manual zoom unless force is set.
func (c *Camera) FitToView(force bool) {
	if c.userZoomed && !force {
		return
	}
	c.Zoom = (LogicalWidth * fitWidthFraction) / math.Max(1, c.firstPageWidth)
	c.Pan.X = (LogicalWidth - c.firstPageWidth*c.Zoom) / 2
	c.Pan.Y = fitTopMargin
}

// PanBy translates the view, clamping horizontally so content cannot leave
// the viewport. Vertical pan is unclamped.
func (c *Camera) PanBy(dx, dy float64) {
	c.Pan.X += dx
	c.Pan.Y += dy
	c.clampPanX()
}

// SetPan replaces the pan offset and re-applies horizontal clamping.
func (c *Camera) SetPan(pan geom.Point) {
	c.Pan = pan
	c.clampPanX()
}

// clampPanX centers content narrower than the viewport and otherwise keeps
// pan within [LogicalWidth - contentWidth, 0].
func (c *Camera) clampPanX() {
	contentWidth := c.contentWidth * c.Zoom
	if contentWidth <= LogicalWidth {
		c.Pan.X = (LogicalWidth - contentWidth) / 2
		return
	}
	minX := LogicalWidth - contentWidth
	c.Pan.X = math.Min(0, math.Max(minX, c.Pan.X))
}

// ZoomAt rescales the view by exp(-wheelDelta*WheelZoomRate) around the given
// viewport-local point, keeping the document point under the cursor fixed on
// screen. It records the manual-zoom flag.
func (c *Camera) ZoomAt(local geom.Point, wheelDelta float64) {
	factor := math.Exp(-wheelDelta * WheelZoomRate)
	c.ZoomAtFactor(local, factor)
}

// ZoomAtFactor applies a multiplicative zoom factor around the given
// viewport-local point.
func (c *Camera) ZoomAtFactor(local geom.Point, factor float64) {
	nextZoom := math.Max(MinZoom, c.Zoom*factor)

	world := geom.DocumentFromLocal(local, c.Pan, c.Zoom)
	c.Zoom = nextZoom
	c.Pan.X = local.X - world.X*c.Zoom
	c.Pan.Y = local.Y - world.Y*c.Zoom
	c.clampPanX()
	c.userZoomed = true
}

// CenterOn recenters the viewport on a document-space point.
func (c *Camera) CenterOn(doc geom.Point) {
	c.Pan.X = LogicalWidth/2 - doc.X*c.Zoom
	c.Pan.Y = LogicalHeight/2 - doc.Y*c.Zoom
}

// DocumentPoint converts a viewport-local point into document space under the
// current pan/zoom.
func (c *Camera) DocumentPoint(local geom.Point) geom.Point {
	return geom.DocumentFromLocal(local, c.Pan, c.Zoom)
}

// LocalPoint converts a document-space point into viewport-local space.
func (c *Camera) LocalPoint(doc geom.Point) geom.Point {
	return geom.LocalFromDocument(doc, c.Pan, c.Zoom)
}

// VisibleRect returns the document-space rectangle currently mapped into the
// logical viewport, clamped to the content extents for minimap display.
func (c *Camera) VisibleRect() geom.Rect {
	width := math.Min(c.contentWidth, LogicalWidth/c.Zoom)
	height := LogicalHeight / c.Zoom
	x := math.Max(0, math.Min(c.contentWidth-width, -c.Pan.X/c.Zoom))
	y := math.Max(0, math.Min(c.contentHeight-height, -c.Pan.Y/c.Zoom))
	return geom.Rect{X: x, Y: y, Width: width, Height: height}
}
