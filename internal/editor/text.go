package editor

import (
	"math"
	"strings"
	"unicode/utf8"

	"github.com/MarcoPoloResearchLab/marginalia/internal/geom"
	"github.com/MarcoPoloResearchLab/marginalia/internal/overlay"
	"github.com/MarcoPoloResearchLab/marginalia/internal/scene"
	"github.com/MarcoPoloResearchLab/marginalia/internal/view"
)

const (
	// TextPaddingX is the horizontal padding between text and its box edge.
	TextPaddingX = 10.0
	// TextPaddingY is the vertical padding between text and its box edge.
	TextPaddingY = 8.0
	// MinTextBoxWidth is the smallest box width regardless of content.
	MinTextBoxWidth = 20.0
	// MinTextBoxHeight is the smallest box height regardless of content.
	MinTextBoxHeight = 18.0

	// autoPanMargin is the fraction of the viewport treated as the edge zone
	// that nudges the view while typing.
	autoPanMargin = 0.05

	textBoxCornerRadius = 4.0
)

// TextMeasurer reports the rendered extent of a text block. Hosts with real
// font metrics implement this; the session only needs width and height.
type TextMeasurer interface {
	Measure(text string, style overlay.TextStyle) (width, height float64)
}

// CharCellMeasurer approximates text extents from the font size alone, for
// headless use where no glyph metrics exist: a character advances 0.6em and
// a line occupies 1.2em.
type CharCellMeasurer struct{}

// NewCharCellMeasurer returns the approximation measurer.
func NewCharCellMeasurer() *CharCellMeasurer {
	return &CharCellMeasurer{}
}

// Measure implements TextMeasurer.
func (m *CharCellMeasurer) Measure(text string, style overlay.TextStyle) (float64, float64) {
	lines := strings.Split(text, "\n")
	longest := 0
	for _, line := range lines {
		if count := utf8.RuneCountInString(line); count > longest {
			longest = count
		}
	}
	width := float64(longest) * style.FontSize * 0.6
	height := float64(len(lines)) * style.FontSize * 1.2
	return width, height
}

// SelectionGranularity is how much of a text item's content a focus gesture
// selects.
type SelectionGranularity int

const (
	// GranularityCaret positions the caret without selecting anything.
	GranularityCaret SelectionGranularity = iota
	// GranularityWord selects the word under the pointer, as a double click
	// does.
	GranularityWord
	// GranularityAll selects the whole content so typing replaces it.
	GranularityAll
)

// textSelection tracks which text item holds the caret and how much of its
// content is selected.
type textSelection struct {
	itemID      string
	granularity SelectionGranularity
}

// Selection returns the focused text item id and the selection granularity.
func (s *Session) Selection() (string, SelectionGranularity) {
	return s.selection.itemID, s.selection.granularity
}

// SelectTextItem focuses a text item: a plain click positions the caret, a
// double click selects the word, a triple click selects everything.
func (s *Session) SelectTextItem(itemID string, granularity SelectionGranularity) {
	annotation, ok := s.canEdit()
	if !ok || annotation.TextItem(itemID) == nil {
		return
	}
	s.selection = textSelection{itemID: itemID, granularity: granularity}
}

// DefaultStyle returns the style applied to newly created text items.
func (s *Session) DefaultStyle() overlay.TextStyle {
	return s.defaultStyle
}

// SetDefaultStyle updates the style for future text items. An invalid font
// size keeps the prior value; opacity is clamped.
func (s *Session) SetDefaultStyle(style overlay.TextStyle) {
	s.defaultStyle = s.sanitizeStyle(style, s.defaultStyle)
}

func (s *Session) sanitizeStyle(style, prior overlay.TextStyle) overlay.TextStyle {
	if style.FontSize <= 0 || math.IsNaN(style.FontSize) {
		style.FontSize = prior.FontSize
	}
	style.FontSize = overlay.ClampFontSize(style.FontSize)
	style.Opacity = overlay.ClampOpacity(style.Opacity)
	if style.FontFamily == "" {
		style.FontFamily = prior.FontFamily
	}
	if style.Color == "" {
		style.Color = prior.Color
	}
	return style
}

// createTextItem spawns a placeholder text item centered on the clicked
// document point, focused with its content selected so typing replaces it.
func (s *Session) createTextItem(doc geom.Point) *overlay.TextItem {
	annotation, ok := s.canEdit()
	if !ok {
		return nil
	}
	item := &overlay.TextItem{
		ID:    s.ids.NewID(),
		Text:  overlay.PlaceholderText,
		Style: s.defaultStyle,
	}
	width, height := s.boxSize(item)
	item.Pos = geom.Point{X: doc.X - width/2, Y: doc.Y - height/2}
	annotation.AddTextItem(item)
	s.selection = textSelection{itemID: item.ID, granularity: GranularityAll}
	s.syncTextItem(annotation, item)
	s.graph.SetVisible(textBoxNodeID(item.ID), true)
	s.graph.SetVisible(textLabelNodeID(item.ID), true)
	return item
}

// EditText replaces a text item's content, re-measuring its box. Called on
// every input event while typing.
func (s *Session) EditText(itemID, text string) {
	annotation, ok := s.canEdit()
	if !ok {
		return
	}
	item := annotation.TextItem(itemID)
	if item == nil {
		return
	}
	item.Text = text
	s.selection = textSelection{itemID: itemID}
	s.syncTextItem(annotation, item)
}

// TextBox returns a text item's box rectangle: measured content size plus
// padding, floored at the minimum box size.
func (s *Session) TextBox(itemID string) (geom.Rect, bool) {
	annotation, ok := s.set.Get(s.activeID)
	if !ok {
		return geom.Rect{}, false
	}
	item := annotation.TextItem(itemID)
	if item == nil {
		return geom.Rect{}, false
	}
	width, height := s.boxSize(item)
	return geom.Rect{X: item.Pos.X, Y: item.Pos.Y, Width: width, Height: height}, true
}

func (s *Session) boxSize(item *overlay.TextItem) (float64, float64) {
	width, height := s.measurer.Measure(item.Text, item.Style)
	width = math.Max(MinTextBoxWidth, width) + 2*TextPaddingX
	height = math.Max(MinTextBoxHeight, height) + 2*TextPaddingY
	return width, height
}

// UpdateItemStyle restyles a text item. Invalid numeric input keeps the
// prior value rather than erroring.
func (s *Session) UpdateItemStyle(itemID string, style overlay.TextStyle) {
	annotation, ok := s.canEdit()
	if !ok {
		return
	}
	item := annotation.TextItem(itemID)
	if item == nil {
		return
	}
	item.Style = s.sanitizeStyle(style, item.Style)
	s.syncTextItem(annotation, item)
}

// DeleteTextItem removes a text item from the open annotation.
func (s *Session) DeleteTextItem(itemID string) {
	annotation, ok := s.canEdit()
	if !ok || annotation.TextItem(itemID) == nil {
		return
	}
	annotation.RemoveTextItem(itemID)
	s.graph.Remove(textBoxNodeID(itemID))
	s.graph.Remove(textLabelNodeID(itemID))
	if s.selection.itemID == itemID {
		s.selection = textSelection{}
	}
}

// pruneBlankTextItems drops items still holding the unedited placeholder or
// nothing at all; they are never persisted.
func (s *Session) pruneBlankTextItems(annotation *overlay.Annotation) {
	for _, item := range append([]*overlay.TextItem(nil), annotation.TextItems...) {
		if item.IsBlank() {
			annotation.RemoveTextItem(item.ID)
			s.graph.Remove(textBoxNodeID(item.ID))
			s.graph.Remove(textLabelNodeID(item.ID))
		}
	}
}

// EnsureCaretVisible nudges the pan so a caret at the given viewport-local
// point stays inside the edge margins while typing. Horizontally only the
// left edge pushes in; vertically both edges do.
func (s *Session) EnsureCaretVisible(caretLocal geom.Point) {
	marginX := view.LogicalWidth * autoPanMargin
	marginY := view.LogicalHeight * autoPanMargin

	dx, dy := 0.0, 0.0
	if caretLocal.X < marginX {
		dx = marginX - caretLocal.X
	}
	if caretLocal.Y < marginY {
		dy = marginY - caretLocal.Y
	} else if caretLocal.Y > view.LogicalHeight-marginY {
		dy = (view.LogicalHeight - marginY) - caretLocal.Y
	}
	if dx != 0 || dy != 0 {
		s.camera.PanBy(dx, dy)
	}
}

func (s *Session) syncTextItem(annotation *overlay.Annotation, item *overlay.TextItem) {
	width, height := s.boxSize(item)
	boxID := textBoxNodeID(item.ID)
	labelID := textLabelNodeID(item.ID)
	boxNode, existed := s.graph.Get(boxID)
	visible := existed && boxNode.Visible

	s.graph.Upsert(scene.Node{
		ID:      boxID,
		OwnerID: annotation.ID,
		Layer:   scene.LayerText,
		Visible: visible,
		Opacity: item.Style.Opacity,
		Shape: scene.Box{
			Rect:         geom.Rect{X: item.Pos.X, Y: item.Pos.Y, Width: width, Height: height},
			CornerRadius: textBoxCornerRadius,
		},
	})
	s.graph.Upsert(scene.Node{
		ID:      labelID,
		OwnerID: annotation.ID,
		Layer:   scene.LayerText,
		Visible: visible,
		Opacity: item.Style.Opacity,
		Shape: scene.Label{
			Origin:     geom.Point{X: item.Pos.X + TextPaddingX, Y: item.Pos.Y + TextPaddingY},
			Text:       item.Text,
			FontFamily: item.Style.FontFamily,
			FontSize:   item.Style.FontSize,
			Bold:       item.Style.Bold,
			Italic:     item.Style.Italic,
			Color:      item.Style.Color,
		},
	})
}
