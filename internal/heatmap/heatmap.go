// Package heatmap renders the annotation density overlay. The base bitmap is
// built in document space and rebuilt only when the annotation set changes;
// every frame it is composited under the current pan/zoom without being
// regenerated.
package heatmap

import (
	"image"
	"math"

	"golang.org/x/image/draw"
	"golang.org/x/image/math/f64"

	"github.com/MarcoPoloResearchLab/marginalia/internal/geom"
	"github.com/MarcoPoloResearchLab/marginalia/internal/view"
)

const (
	// SpotRadius is the radius of the radial gradient painted per annotation.
	SpotRadius = 70.0
	// BlurSigma smooths the accumulated gradients before color mapping.
	BlurSigma = 18.0

	centerAlpha  = 0.6
	alphaCutoff  = 0.02
	overlayAlpha = 0.5
)

type rampStop struct {
	t       float64
	r, g, b uint8
}

// Density ramp: blue through cyan and yellow to red.
var colorRamp = []rampStop{
	{t: 0.0, r: 30, g: 76, b: 255},
	{t: 0.45, r: 59, g: 214, b: 255},
	{t: 0.75, r: 255, g: 232, b: 74},
	{t: 1.0, r: 255, g: 59, b: 47},
}

func rampColor(t float64) (uint8, uint8, uint8) {
	i := 0
	for i < len(colorRamp)-1 && t > colorRamp[i+1].t {
		i++
	}
	left := colorRamp[i]
	right := colorRamp[i+1]
	local := (t - left.t) / math.Max(1e-6, right.t-left.t)
	lerp := func(a, b uint8) uint8 {
		return uint8(math.Round(float64(a) + (float64(b)-float64(a))*local))
	}
	return lerp(left.r, right.r), lerp(left.g, right.g), lerp(left.b, right.b)
}

// Renderer caches the document-space base bitmap.
type Renderer struct {
	base      *image.NRGBA
	docWidth  float64
	docHeight float64
}

// NewRenderer returns a renderer with no base; Rebuild populates it.
func NewRenderer() *Renderer {
	return &Renderer{}
}

// Base returns the cached base bitmap, or nil when there are no annotations.
// Rebuild allocates a fresh bitmap, so callers can detect recomputation by
// pointer identity.
func (r *Renderer) Base() *image.NRGBA {
	return r.base
}

// Rebuild recomputes the base bitmap from annotation anchor points in
// document space. It must be called on annotation-set mutation only; pan and
// zoom changes go through Composite instead.
func (r *Renderer) Rebuild(anchors []geom.Point, docWidth, docHeight float64) {
	r.docWidth = docWidth
	r.docHeight = docHeight
	r.base = nil
	if len(anchors) == 0 {
		return
	}
	width := int(math.Max(1, math.Round(docWidth)))
	height := int(math.Max(1, math.Round(docHeight)))

	density := make([]float64, width*height)
	for _, anchor := range anchors {
		paintSpot(density, width, height, anchor)
	}
	gaussianBlur(density, width, height, BlurSigma)

	base := image.NewNRGBA(image.Rect(0, 0, width, height))
	for i, alpha := range density {
		if alpha <= alphaCutoff {
			continue
		}
		t := math.Min(1, alpha)
		red, green, blue := rampColor(t)
		offset := i * 4
		base.Pix[offset] = red
		base.Pix[offset+1] = green
		base.Pix[offset+2] = blue
		base.Pix[offset+3] = uint8(math.Round(255 * overlayAlpha * t))
	}
	r.base = base
}

// paintSpot composites one radial gradient (opaque center fading to
// transparent at SpotRadius) over the density buffer.
func paintSpot(density []float64, width, height int, center geom.Point) {
	minX := int(math.Max(0, math.Floor(center.X-SpotRadius)))
	maxX := int(math.Min(float64(width-1), math.Ceil(center.X+SpotRadius)))
	minY := int(math.Max(0, math.Floor(center.Y-SpotRadius)))
	maxY := int(math.Min(float64(height-1), math.Ceil(center.Y+SpotRadius)))
	for y := minY; y <= maxY; y++ {
		for x := minX; x <= maxX; x++ {
			distance := math.Hypot(float64(x)-center.X, float64(y)-center.Y)
			if distance >= SpotRadius {
				continue
			}
			src := centerAlpha * (1 - distance/SpotRadius)
			idx := y*width + x
			density[idx] = src + density[idx]*(1-src)
		}
	}
}

// Composite draws the cached base into dst so the heatmap tracks the same
// pan/zoom as the page content: the view transform is composed with the
// fit-to-canvas baseline scale that letterboxes the logical viewport in dst.
func (r *Renderer) Composite(dst *image.RGBA, pan geom.Point, zoom float64) {
	draw.Draw(dst, dst.Bounds(), image.Transparent, image.Point{}, draw.Src)
	if r.base == nil {
		return
	}
	dstWidth := float64(dst.Bounds().Dx())
	dstHeight := float64(dst.Bounds().Dy())
	baseScale := math.Min(dstWidth/view.LogicalWidth, dstHeight/view.LogicalHeight)
	baseOffsetX := (dstWidth - view.LogicalWidth*baseScale) / 2
	baseOffsetY := (dstHeight - view.LogicalHeight*baseScale) / 2

	transform := f64.Aff3{
		baseScale * zoom, 0, baseOffsetX + baseScale*pan.X,
		0, baseScale * zoom, baseOffsetY + baseScale*pan.Y,
	}
	draw.ApproxBiLinear.Transform(dst, transform, r.base, r.base.Bounds(), draw.Over, nil)
}
