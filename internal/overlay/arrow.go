package overlay

import (
	"math"

	"github.com/MarcoPoloResearchLab/marginalia/internal/geom"
)

const (
	// ArrowMarkerMin is the smallest arrowhead length.
	ArrowMarkerMin = 8.0
	// ArrowMarkerMax is the largest arrowhead length.
	ArrowMarkerMax = 13.0

	arrowMarkerRatio = 0.2
)

// ArrowHint is a directed line annotation. Start and End are the raw
// document-space endpoints; the rendered geometry is always derived from
// them, never stored.
type ArrowHint struct {
	ID           string
	AnnotationID string
	Start        geom.Point
	End          geom.Point
}

// ArrowGeometry is the derived render geometry of an arrow: the stroke stops
// at TrimmedEnd so the arrowhead tip, not the stroke, touches the raw end.
type ArrowGeometry struct {
	Start      geom.Point
	TrimmedEnd geom.Point
	MarkerSize float64
}

// Geometry recomputes the arrowhead geometry from the current endpoints.
// The marker scales with line length, clamped to [ArrowMarkerMin,
// ArrowMarkerMax], and the stroke is trimmed by the marker length. A
// zero-length arrow keeps its endpoint untrimmed.
func (a *ArrowHint) Geometry() ArrowGeometry {
	dx := a.End.X - a.Start.X
	dy := a.End.Y - a.Start.Y
	length := math.Hypot(dx, dy)
	size := math.Min(ArrowMarkerMax, math.Max(ArrowMarkerMin, length*arrowMarkerRatio))
	divisor := length
	if divisor == 0 {
		divisor = 1
	}
	unitX := dx / divisor
	unitY := dy / divisor
	return ArrowGeometry{
		Start: a.Start,
		TrimmedEnd: geom.Point{
			X: a.End.X - unitX*size,
			Y: a.End.Y - unitY*size,
		},
		MarkerSize: size,
	}
}

// MoveEndpoint repositions one endpoint; index 0 is the start, 1 the end.
func (a *ArrowHint) MoveEndpoint(index int, to geom.Point) {
	if index == 0 {
		a.Start = to
		return
	}
	a.End = to
}
