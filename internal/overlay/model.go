// Package overlay models the user-created annotation entities layered over a
// document: annotations, their text items and their arrow hints. Entities
// live in document space; pan/zoom never touches them.
package overlay

import (
	"strings"
	"time"

	"github.com/MarcoPoloResearchLab/marginalia/internal/geom"
)

// Vote is the current user's vote direction on an annotation or comment.
type Vote int

const (
	// VoteNone means no vote has been cast.
	VoteNone Vote = 0
	// VoteUp is an upvote.
	VoteUp Vote = 1
	// VoteDown is a downvote.
	VoteDown Vote = -1
)

const (
	// DefaultFontSize is the font size new text items start with.
	DefaultFontSize = 24.0
	// MinFontSize is the resize floor for text items.
	MinFontSize = 12.0
	// MaxFontSize is the resize ceiling for text items.
	MaxFontSize = 72.0
	// DefaultColor is the stroke/text color new text items start with.
	DefaultColor = "#39ff14"
	// PlaceholderText is the text a freshly created item carries until the
	// user types; items still holding it are discarded on deactivation.
	PlaceholderText = "Text"
)

// TextStyle captures the full styling of a text item.
type TextStyle struct {
	FontFamily string
	FontSize   float64
	Bold       bool
	Italic     bool
	Kerning    bool
	Color      string
	Opacity    float64
}

// DefaultTextStyle returns the style applied to new text items before the
// user adjusts the controls.
func DefaultTextStyle() TextStyle {
	return TextStyle{
		FontFamily: "Calibri, 'Segoe UI', sans-serif",
		FontSize:   DefaultFontSize,
		Color:      DefaultColor,
		Opacity:    1,
	}
}

// ClampOpacity keeps opacity within the renderable [0.3, 1] band.
func ClampOpacity(opacity float64) float64 {
	if opacity < 0.3 {
		return 0.3
	}
	if opacity > 1 {
		return 1
	}
	return opacity
}

// ClampFontSize keeps a font size within the resize bounds.
func ClampFontSize(size float64) float64 {
	if size < MinFontSize {
		return MinFontSize
	}
	if size > MaxFontSize {
		return MaxFontSize
	}
	return size
}

// TextItem is a positioned, styled, editable text block owned by exactly one
// annotation. Pos is the document-space top-left of the box.
type TextItem struct {
	ID           string
	AnnotationID string
	Pos          geom.Point
	Text         string
	Style        TextStyle
}

// IsBlank reports whether the item should be discarded instead of kept: the
// text is empty or still the unedited placeholder.
func (t *TextItem) IsBlank() bool {
	trimmed := strings.TrimSpace(t.Text)
	return trimmed == "" || trimmed == PlaceholderText
}

// Annotation is the top-level user-created entity. ID is the stable
// client-generated key (a UUID); ServerID is assigned by the backend once
// persisted and is zero for provisional annotations.
type Annotation struct {
	ID        string
	ServerID  int64
	Anchor    geom.Point
	Note      string
	Author    string
	Owned     bool
	CreatedAt time.Time
	Upvotes   int
	Downvotes int
	UserVote  Vote

	// Committed is false while the annotation is provisional; the anchor dot
	// is rendered only once committed.
	Committed bool

	TextItems []*TextItem
	Arrows    []*ArrowHint
}

// IsEmpty reports whether committing the annotation should discard it: no
// text items, no arrows, and a blank note.
func (a *Annotation) IsEmpty() bool {
	return len(a.TextItems) == 0 && len(a.Arrows) == 0 && strings.TrimSpace(a.Note) == ""
}

// Score returns upvotes minus downvotes.
func (a *Annotation) Score() int {
	return a.Upvotes - a.Downvotes
}

// AddTextItem attaches a text item to the annotation.
func (a *Annotation) AddTextItem(item *TextItem) {
	item.AnnotationID = a.ID
	a.TextItems = append(a.TextItems, item)
}

// RemoveTextItem detaches the text item with the given ID.
func (a *Annotation) RemoveTextItem(id string) {
	for i, item := range a.TextItems {
		if item.ID == id {
			a.TextItems = append(a.TextItems[:i], a.TextItems[i+1:]...)
			return
		}
	}
}

// TextItem returns the child text item with the given ID.
func (a *Annotation) TextItem(id string) *TextItem {
	for _, item := range a.TextItems {
		if item.ID == id {
			return item
		}
	}
	return nil
}

// AddArrow attaches an arrow hint to the annotation.
func (a *Annotation) AddArrow(arrow *ArrowHint) {
	arrow.AnnotationID = a.ID
	a.Arrows = append(a.Arrows, arrow)
}

// RemoveArrow detaches the arrow with the given ID.
func (a *Annotation) RemoveArrow(id string) {
	for i, arrow := range a.Arrows {
		if arrow.ID == id {
			a.Arrows = append(a.Arrows[:i], a.Arrows[i+1:]...)
			return
		}
	}
}

// Arrow returns the child arrow with the given ID.
func (a *Annotation) Arrow(id string) *ArrowHint {
	for _, arrow := range a.Arrows {
		if arrow.ID == id {
			return arrow
		}
	}
	return nil
}

// Set is the annotation collection for one document, keyed by annotation ID
// and preserving insertion order.
type Set struct {
	order []string
	byID  map[string]*Annotation
}

// NewSet returns an empty annotation set.
func NewSet() *Set {
	return &Set{byID: make(map[string]*Annotation)}
}

// Add inserts the annotation, replacing any previous entry under its ID.
func (s *Set) Add(annotation *Annotation) {
	if annotation == nil || annotation.ID == "" {
		return
	}
	if _, exists := s.byID[annotation.ID]; !exists {
		s.order = append(s.order, annotation.ID)
	}
	s.byID[annotation.ID] = annotation
}

// Get returns the annotation with the given ID.
func (s *Set) Get(id string) (*Annotation, bool) {
	annotation, ok := s.byID[id]
	return annotation, ok
}

// Remove deletes the annotation and, by ownership, all of its children.
func (s *Set) Remove(id string) {
	if _, exists := s.byID[id]; !exists {
		return
	}
	delete(s.byID, id)
	for i, existing := range s.order {
		if existing == id {
			s.order = append(s.order[:i], s.order[i+1:]...)
			break
		}
	}
}

// All returns every annotation in insertion order.
func (s *Set) All() []*Annotation {
	all := make([]*Annotation, 0, len(s.order))
	for _, id := range s.order {
		all = append(all, s.byID[id])
	}
	return all
}

// Len returns the number of annotations.
func (s *Set) Len() int {
	return len(s.order)
}

// Clear empties the set.
func (s *Set) Clear() {
	s.order = nil
	s.byID = make(map[string]*Annotation)
}

// AnchorPoints returns the anchor of every annotation, in insertion order.
// The heatmap renderer consumes this.
func (s *Set) AnchorPoints() []geom.Point {
	points := make([]geom.Point, 0, len(s.order))
	for _, id := range s.order {
		points = append(points, s.byID[id].Anchor)
	}
	return points
}
