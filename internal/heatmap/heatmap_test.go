package heatmap

import (
	"image"
	"image/color"
	"testing"

	"github.com/MarcoPoloResearchLab/marginalia/internal/geom"
)

func TestRebuildNilWithoutAnnotations(t *testing.T) {
	renderer := NewRenderer()
	renderer.Rebuild(nil, 900, 520)
	if renderer.Base() != nil {
		t.Fatalf("no annotations should leave the base nil")
	}
}

func TestRebuildPaintsDensestAtAnchor(t *testing.T) {
	renderer := NewRenderer()
	anchor := geom.Point{X: 200, Y: 150}
	renderer.Rebuild([]geom.Point{anchor}, 400, 300)

	base := renderer.Base()
	if base == nil {
		t.Fatalf("expected a base bitmap")
	}
	centerAlpha := base.NRGBAAt(200, 150).A
	edgeAlpha := base.NRGBAAt(200, 150+60).A
	farAlpha := base.NRGBAAt(10, 10).A
	if centerAlpha == 0 {
		t.Fatalf("anchor center should be painted")
	}
	if centerAlpha <= edgeAlpha {
		t.Fatalf("density should fall off from the anchor: center %d edge %d", centerAlpha, edgeAlpha)
	}
	if farAlpha != 0 {
		t.Fatalf("pixels far outside the spot should stay transparent, got alpha %d", farAlpha)
	}
}

func TestRebuildAllocatesFreshBase(t *testing.T) {
	renderer := NewRenderer()
	anchors := []geom.Point{{X: 50, Y: 50}}
	renderer.Rebuild(anchors, 200, 200)
	first := renderer.Base()
	renderer.Rebuild(anchors, 200, 200)
	second := renderer.Base()
	if first == second {
		t.Fatalf("rebuild should allocate a fresh base so callers can detect recomputation")
	}
}

func TestOverlappingSpotsAccumulate(t *testing.T) {
	single := NewRenderer()
	single.Rebuild([]geom.Point{{X: 100, Y: 100}}, 200, 200)
	double := NewRenderer()
	double.Rebuild([]geom.Point{{X: 100, Y: 100}, {X: 105, Y: 100}}, 200, 200)

	singleAlpha := single.Base().NRGBAAt(102, 100).A
	doubleAlpha := double.Base().NRGBAAt(102, 100).A
	if doubleAlpha <= singleAlpha {
		t.Fatalf("overlapping annotations should read denser: single %d double %d", singleAlpha, doubleAlpha)
	}
}

func TestCompositeTracksPan(t *testing.T) {
	renderer := NewRenderer()
	renderer.Rebuild([]geom.Point{{X: 100, Y: 100}}, 900, 520)

	dst := image.NewRGBA(image.Rect(0, 0, 900, 520))
	renderer.Composite(dst, geom.Point{}, 1)
	centered := dst.RGBAAt(100, 100).A

	renderer.Composite(dst, geom.Point{X: 200, Y: 0}, 1)
	shifted := dst.RGBAAt(300, 100).A
	cleared := dst.RGBAAt(100, 100).A

	if centered == 0 || shifted == 0 {
		t.Fatalf("spot should render at panned position: centered %d shifted %d", centered, shifted)
	}
	if cleared >= centered {
		t.Fatalf("previous frame should be cleared before compositing")
	}
}

func TestCompositeWithNilBaseClears(t *testing.T) {
	renderer := NewRenderer()
	dst := image.NewRGBA(image.Rect(0, 0, 90, 52))
	dst.SetRGBA(10, 10, color.RGBA{R: 255, A: 255})
	renderer.Composite(dst, geom.Point{}, 1)
	for i := 3; i < len(dst.Pix); i += 4 {
		if dst.Pix[i] != 0 {
			t.Fatalf("composite with nil base should clear dst")
		}
	}
}

func TestRampOrdersColors(t *testing.T) {
	r0, _, b0 := rampColor(0)
	if r0 != 30 || b0 != 255 {
		t.Fatalf("ramp start should be blue, got r=%d b=%d", r0, b0)
	}
	r1, _, b1 := rampColor(1)
	if r1 != 255 || b1 != 47 {
		t.Fatalf("ramp end should be red, got r=%d b=%d", r1, b1)
	}
}
