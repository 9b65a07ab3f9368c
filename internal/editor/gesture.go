package editor

import (
	"math"

	"github.com/MarcoPoloResearchLab/marginalia/internal/geom"
	"github.com/MarcoPoloResearchLab/marginalia/internal/overlay"
)

const minResizeScale = 0.2

type gestureKind int

const (
	gestureNone gestureKind = iota
	gestureTextDrag
	gestureTextResize
	gesturePan
	gestureEndpointDrag
	gestureMinimapDrag
)

// gesture is the single modal gesture slot: at most one drag-style gesture
// runs at a time, terminated on pointer-up wherever it lands.
type gesture struct {
	kind gestureKind

	itemID   string
	arrowID  string
	endpoint int

	startDoc      geom.Point
	itemStart     geom.Point
	startWidth    float64
	startFontSize float64
	lastLocal     geom.Point
}

// GestureActive reports whether a drag-style gesture is in flight.
func (s *Session) GestureActive() bool {
	return s.gesture.kind != gestureNone
}

// CanvasClick routes a primary click at a viewport-local point through the
// state machine: placement creates an annotation, the text tab creates a
// text item, the hint tab advances the two-click arrow gesture. The click
// immediately following an activation or deactivation is swallowed.
func (s *Session) CanvasClick(local geom.Point) {
	doc := s.camera.DocumentPoint(local)
	if s.mode == ModePlacement {
		s.placementClick(doc)
		return
	}
	if s.suppressNextTextCreate {
		s.suppressNextTextCreate = false
		return
	}
	if s.mode != ModeEditing {
		return
	}
	switch s.tab {
	case TabText:
		s.createTextItem(doc)
	case TabHint:
		s.arrowClick(doc)
	}
}

// PointerMove feeds pointer motion at a viewport-local point into whatever
// is tracking it: the placement preview, the arrow rubber band, or the
// active gesture.
func (s *Session) PointerMove(local geom.Point) {
	doc := s.camera.DocumentPoint(local)
	if s.mode == ModePlacement {
		s.placementMove(doc)
		return
	}
	if s.arrowDraw != nil && s.gesture.kind == gestureNone {
		s.updateArrowPreview(doc)
		return
	}

	switch s.gesture.kind {
	case gestureTextDrag:
		s.moveDraggedText(doc)
	case gestureTextResize:
		s.resizeDraggedText(doc)
	case gesturePan:
		s.camera.PanBy(local.X-s.gesture.lastLocal.X, local.Y-s.gesture.lastLocal.Y)
		s.gesture.lastLocal = local
		s.minimap.ScrollToView()
	case gestureEndpointDrag:
		s.moveDraggedEndpoint(doc)
	}
}

// PointerUp ends the active gesture regardless of where the pointer is
// released; hosts listen at the window level, not the element.
func (s *Session) PointerUp() {
	s.gesture = gesture{}
}

// BeginTextDrag starts repositioning a text item from a viewport-local grab
// point. The delta is applied in document space so zoom does not distort it.
func (s *Session) BeginTextDrag(itemID string, local geom.Point) {
	annotation, ok := s.canEdit()
	if !ok || s.gesture.kind != gestureNone {
		return
	}
	item := annotation.TextItem(itemID)
	if item == nil {
		return
	}
	s.gesture = gesture{
		kind:      gestureTextDrag,
		itemID:    itemID,
		startDoc:  s.camera.DocumentPoint(local),
		itemStart: item.Pos,
	}
}

func (s *Session) moveDraggedText(doc geom.Point) {
	annotation, ok := s.canEdit()
	if !ok {
		return
	}
	item := annotation.TextItem(s.gesture.itemID)
	if item == nil {
		return
	}
	delta := doc.Sub(s.gesture.startDoc)
	item.Pos = s.gesture.itemStart.Add(delta)
	s.syncTextItem(annotation, item)
}

// BeginTextResize starts the resize-handle gesture: horizontal drag distance
// relative to the starting box width scales the font size.
func (s *Session) BeginTextResize(itemID string, local geom.Point) {
	annotation, ok := s.canEdit()
	if !ok || s.gesture.kind != gestureNone {
		return
	}
	item := annotation.TextItem(itemID)
	if item == nil {
		return
	}
	box, _ := s.TextBox(itemID)
	s.gesture = gesture{
		kind:          gestureTextResize,
		itemID:        itemID,
		startDoc:      s.camera.DocumentPoint(local),
		startWidth:    box.Width,
		startFontSize: item.Style.FontSize,
	}
}

func (s *Session) resizeDraggedText(doc geom.Point) {
	annotation, ok := s.canEdit()
	if !ok {
		return
	}
	item := annotation.TextItem(s.gesture.itemID)
	if item == nil || s.gesture.startWidth <= 0 {
		return
	}
	dx := doc.X - s.gesture.startDoc.X
	scale := math.Max(minResizeScale, (s.gesture.startWidth+dx)/s.gesture.startWidth)
	item.Style.FontSize = overlay.ClampFontSize(s.gesture.startFontSize * scale)
	s.syncTextItem(annotation, item)
}

// BeginPan starts a viewport pan from a viewport-local point. Hosts route
// only ctrl+primary or middle-button presses here; plain clicks stay with
// the editors.
func (s *Session) BeginPan(local geom.Point) {
	if s.gesture.kind != gestureNone {
		return
	}
	s.gesture = gesture{kind: gesturePan, lastLocal: local}
}

// BeginEndpointDrag starts moving one arrow endpoint; index 0 is the start,
// 1 the end.
func (s *Session) BeginEndpointDrag(arrowID string, endpoint int, local geom.Point) {
	annotation, ok := s.canEdit()
	if !ok || s.gesture.kind != gestureNone {
		return
	}
	if annotation.Arrow(arrowID) == nil {
		return
	}
	s.gesture = gesture{
		kind:     gestureEndpointDrag,
		arrowID:  arrowID,
		endpoint: endpoint,
	}
}

func (s *Session) moveDraggedEndpoint(doc geom.Point) {
	annotation, ok := s.canEdit()
	if !ok {
		return
	}
	arrow := annotation.Arrow(s.gesture.arrowID)
	if arrow == nil {
		return
	}
	arrow.MoveEndpoint(s.gesture.endpoint, doc)
	s.syncArrow(annotation, arrow)
}

// BeginMinimapDrag starts recentering the main view from the minimap; the
// point is already in document space.
func (s *Session) BeginMinimapDrag(doc geom.Point) {
	if s.gesture.kind != gestureNone {
		return
	}
	s.gesture = gesture{kind: gestureMinimapDrag}
	s.minimap.CenterOn(doc)
}

// MinimapPointerMove continues a minimap drag with a new document-space
// point.
func (s *Session) MinimapPointerMove(doc geom.Point) {
	if s.gesture.kind != gestureMinimapDrag {
		return
	}
	s.minimap.CenterOn(doc)
}

// Zoom applies a wheel zoom centered on a viewport-local point and keeps the
// minimap scrolled to the visible region.
func (s *Session) Zoom(local geom.Point, wheelDelta float64) {
	s.camera.ZoomAt(local, wheelDelta)
	s.minimap.ScrollToView()
}
