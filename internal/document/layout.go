// Package document manages the loaded document: its page stack layout, the
// per-document annotation snapshot cache, and switching between documents.
package document

import (
	"strings"

	"github.com/MarcoPoloResearchLab/marginalia/internal/client"
)

// PageGap is the vertical spacing between stacked pages in document space.
const PageGap = 24.0

// PageInfo is one laid-out page: its image and its slot in the stack.
type PageInfo struct {
	URL     string
	Width   float64
	Height  float64
	OffsetY float64
}

// Layout is the vertical page stack of one document.
type Layout struct {
	Pages          []PageInfo
	MaxWidth       float64
	TotalHeight    float64
	FirstPageWidth float64
}

// NewLayout stacks pages top to bottom with PageGap between them.
func NewLayout(pages []client.Page) Layout {
	layout := Layout{Pages: make([]PageInfo, 0, len(pages))}
	offsetY := 0.0
	for i, page := range pages {
		if i > 0 {
			offsetY += PageGap
		}
		layout.Pages = append(layout.Pages, PageInfo{
			URL:     page.URL,
			Width:   page.Width,
			Height:  page.Height,
			OffsetY: offsetY,
		})
		offsetY += page.Height
		if page.Width > layout.MaxWidth {
			layout.MaxWidth = page.Width
		}
	}
	layout.TotalHeight = offsetY
	if len(layout.Pages) > 0 {
		layout.FirstPageWidth = layout.Pages[0].Width
	}
	return layout
}

// Slug derives the history-friendly identifier of a document by stripping a
// trailing .pdf extension, case-insensitively.
func Slug(pdf string) string {
	if strings.HasSuffix(strings.ToLower(pdf), ".pdf") {
		return pdf[:len(pdf)-len(".pdf")]
	}
	return pdf
}
