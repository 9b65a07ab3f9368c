package geom

// Frame is a drawing surface with its own local coordinate space. The screen
// transform maps frame-local coordinates to screen coordinates; it reflects
// the surface's current layout and is queried fresh on every conversion.
type Frame interface {
	ScreenTransform() Matrix
}

// StaticFrame is a Frame with a fixed screen transform. Rendering hosts wrap
// their live layout instead; tests and headless sessions use this directly.
type StaticFrame struct {
	Transform Matrix
}

// ScreenTransform returns the configured transform.
func (f StaticFrame) ScreenTransform() Matrix {
	return f.Transform
}

// FromScreen converts a screen point (for example a pointer event position)
// into the frame's local coordinate space by inverting the frame's screen
// transform. A missing or degenerate transform converts to the origin.
func FromScreen(frame Frame, screen Point) Point {
	if frame == nil {
		return Point{}
	}
	inverse, ok := frame.ScreenTransform().Invert()
	if !ok {
		return Point{}
	}
	return inverse.Apply(screen)
}

// DocumentFromLocal removes an active pan/zoom from a frame-local point,
// yielding the point in document space: doc = (local - pan) / zoom.
// A non-positive zoom converts to the origin rather than dividing by it.
func DocumentFromLocal(local Point, pan Point, zoom float64) Point {
	if zoom <= 0 {
		return Point{}
	}
	return Point{
		X: (local.X - pan.X) / zoom,
		Y: (local.Y - pan.Y) / zoom,
	}
}

// LocalFromDocument applies a pan/zoom to a document-space point, yielding
// the point in frame-local space: local = doc*zoom + pan.
func LocalFromDocument(doc Point, pan Point, zoom float64) Point {
	return Point{
		X: doc.X*zoom + pan.X,
		Y: doc.Y*zoom + pan.Y,
	}
}
