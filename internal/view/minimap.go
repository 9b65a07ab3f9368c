package view

import (
	"math"
	"strconv"

	"github.com/MarcoPoloResearchLab/marginalia/internal/geom"
)

const (
	pageLabelFontSize    = 96.0
	pageLabelBadgeHeight = 112.0
	pageLabelMinWidth    = 96.0
	pageLabelCharWidth   = 48.0
	pageLabelPadding     = 24.0
	pageLabelInset       = 24.0
	pageLabelBaseline    = 56.0
)

// Minimap models the low-res overview strip: a scaled copy of the page stack
// with numbered page badges, a highlight box mirroring the camera's visible
// rectangle, an independent scroll offset, and jump controls.
type Minimap struct {
	camera *Camera

	// ClientWidth is the on-screen pixel width of the minimap strip.
	ClientWidth float64
	// ClientHeight is the on-screen pixel height of the scroll window.
	ClientHeight float64
	// ScrollTop is the current scroll offset in minimap pixels.
	ScrollTop float64

	pages []PageMetrics
}

// PageMetrics is one page's vertical placement in the document stack.
type PageMetrics struct {
	OffsetY float64
	Height  float64
}

// PageLabel is the page-number badge drawn in a page's bottom-left corner of
// the minimap strip, in document space (the strip shares the document's
// coordinate system and scales as a whole).
type PageLabel struct {
	Number     int
	Text       string
	Badge      geom.Rect
	TextOrigin geom.Point
	FontSize   float64
}

// NewMinimap returns a minimap mirroring the given camera.
func NewMinimap(camera *Camera) *Minimap {
	return &Minimap{camera: camera, ClientWidth: 180, ClientHeight: LogicalHeight}
}

// SetPages records each page's document-space placement, feeding jump-to-page
// scrolling and the page-number badges.
func (m *Minimap) SetPages(pages []PageMetrics) {
	m.pages = append(m.pages[:0], pages...)
}

// PageLabels returns one numbered badge per page.
func (m *Minimap) PageLabels() []PageLabel {
	labels := make([]PageLabel, 0, len(m.pages))
	for i, page := range m.pages {
		text := strconv.Itoa(i + 1)
		badgeWidth := math.Max(pageLabelMinWidth, float64(len(text))*pageLabelCharWidth) + pageLabelPadding
		bottom := page.OffsetY + page.Height
		labels = append(labels, PageLabel{
			Number:     i + 1,
			Text:       text,
			Badge:      geom.Rect{X: 0, Y: bottom - pageLabelBadgeHeight, Width: badgeWidth, Height: pageLabelBadgeHeight},
			TextOrigin: geom.Point{X: pageLabelInset, Y: bottom - pageLabelBaseline},
			FontSize:   pageLabelFontSize,
		})
	}
	return labels
}

// Scale returns the document-to-minimap pixel scale.
func (m *Minimap) Scale() float64 {
	contentWidth, _ := m.camera.ContentSize()
	if contentWidth <= 0 {
		return 1
	}
	return m.ClientWidth / contentWidth
}

// StripHeight returns the full minimap strip height in pixels, preserving the
// content aspect ratio.
func (m *Minimap) StripHeight() float64 {
	_, contentHeight := m.camera.ContentSize()
	return contentHeight * m.Scale()
}

// ViewportBox returns the highlight rectangle in document space.
func (m *Minimap) ViewportBox() geom.Rect {
	return m.camera.VisibleRect()
}

// CenterOn recenters the main view on a minimap-local (document-space) point;
// clicking or dragging the minimap routes here.
func (m *Minimap) CenterOn(doc geom.Point) {
	m.camera.CenterOn(doc)
}

// ScrollToView scrolls the strip so the highlight box is vertically centered
// in the scroll window.
func (m *Minimap) ScrollToView() {
	box := m.ViewportBox()
	scale := m.Scale()
	boxTop := box.Y * scale
	boxHeight := box.Height * scale
	maxScroll := math.Max(0, m.StripHeight()-m.ClientHeight)
	m.ScrollTop = math.Min(maxScroll, math.Max(0, boxTop+boxHeight/2-m.ClientHeight/2))
}

// ScrollToPage scrolls the strip so the given 1-based page is at the top of
// the scroll window. Out-of-range pages clamp to the first or last page.
func (m *Minimap) ScrollToPage(pageNumber int) {
	if len(m.pages) == 0 {
		return
	}
	index := pageNumber - 1
	if index < 0 {
		index = 0
	}
	if index > len(m.pages)-1 {
		index = len(m.pages) - 1
	}
	target := m.pages[index].OffsetY * m.Scale()
	maxScroll := math.Max(0, m.StripHeight()-m.ClientHeight)
	m.ScrollTop = math.Min(maxScroll, math.Max(0, target))
}
