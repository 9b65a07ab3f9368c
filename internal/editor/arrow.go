package editor

import (
	"github.com/MarcoPoloResearchLab/marginalia/internal/geom"
	"github.com/MarcoPoloResearchLab/marginalia/internal/overlay"
	"github.com/MarcoPoloResearchLab/marginalia/internal/scene"
)

// arrowDraw is the in-flight two-click arrow gesture: the first click
// anchored the start, the preview follows the pointer until the second click.
type arrowDraw struct {
	start geom.Point
}

// ArrowDrawActive reports whether a first click has anchored an arrow start.
func (s *Session) ArrowDrawActive() bool {
	return s.arrowDraw != nil
}

// CancelArrowDraw abandons a half-drawn arrow and removes its preview.
func (s *Session) CancelArrowDraw() {
	if s.arrowDraw == nil {
		return
	}
	s.arrowDraw = nil
	s.graph.Remove(arrowPreviewNodeID)
}

// arrowClick advances the two-click gesture: the first click records the
// start and raises the rubber-band preview, the second finalizes the arrow.
func (s *Session) arrowClick(doc geom.Point) {
	annotation, ok := s.canEdit()
	if !ok {
		return
	}
	if s.arrowDraw == nil {
		s.arrowDraw = &arrowDraw{start: doc}
		s.updateArrowPreview(doc)
		return
	}
	arrow := &overlay.ArrowHint{
		ID:    s.ids.NewID(),
		Start: s.arrowDraw.start,
		End:   doc,
	}
	annotation.AddArrow(arrow)
	s.arrowDraw = nil
	s.graph.Remove(arrowPreviewNodeID)
	s.syncArrow(annotation, arrow)
	s.graph.SetVisible(arrowNodeID(arrow.ID), true)
}

// updateArrowPreview re-derives the rubber-band line toward the pointer.
func (s *Session) updateArrowPreview(doc geom.Point) {
	if s.arrowDraw == nil {
		return
	}
	preview := overlay.ArrowHint{Start: s.arrowDraw.start, End: doc}
	geometry := preview.Geometry()
	s.graph.Upsert(scene.Node{
		ID:      arrowPreviewNodeID,
		Layer:   scene.LayerHints,
		Visible: true,
		Opacity: 1,
		Shape: scene.Line{
			From:       geometry.Start,
			To:         geometry.TrimmedEnd,
			RawTo:      doc,
			MarkerSize: geometry.MarkerSize,
		},
	})
}

// DeleteArrow removes an arrow from the open annotation.
func (s *Session) DeleteArrow(arrowID string) {
	annotation, ok := s.canEdit()
	if !ok || annotation.Arrow(arrowID) == nil {
		return
	}
	annotation.RemoveArrow(arrowID)
	s.graph.Remove(arrowNodeID(arrowID))
}

func (s *Session) syncArrow(annotation *overlay.Annotation, arrow *overlay.ArrowHint) {
	geometry := arrow.Geometry()
	nodeID := arrowNodeID(arrow.ID)
	node, existed := s.graph.Get(nodeID)
	visible := existed && node.Visible
	s.graph.Upsert(scene.Node{
		ID:      nodeID,
		OwnerID: annotation.ID,
		Layer:   scene.LayerHints,
		Visible: visible,
		Opacity: 1,
		Shape: scene.Line{
			From:       geometry.Start,
			To:         geometry.TrimmedEnd,
			RawTo:      arrow.End,
			MarkerSize: geometry.MarkerSize,
		},
	})
}
