package geom

import (
	"math"
	"testing"
)

func TestInvertRoundTrip(t *testing.T) {
	tests := []struct {
		name   string
		matrix Matrix
	}{
		{name: "identity", matrix: Identity()},
		{name: "translation", matrix: Translation(120, -40)},
		{name: "scaling", matrix: Scaling(2.5, 0.5)},
		{name: "composed", matrix: Scaling(1.5, 1.5).Multiply(Translation(30, 44))},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			inverse, ok := tt.matrix.Invert()
			if !ok {
				t.Fatalf("expected %s to be invertible", tt.name)
			}
			original := Point{X: 17.5, Y: -3.25}
			back := inverse.Apply(tt.matrix.Apply(original))
			if math.Abs(back.X-original.X) > 1e-9 || math.Abs(back.Y-original.Y) > 1e-9 {
				t.Fatalf("round trip drifted: got %+v want %+v", back, original)
			}
		})
	}
}

func TestInvertDegenerateFallsBackToIdentity(t *testing.T) {
	degenerate := Scaling(0, 1)
	inverse, ok := degenerate.Invert()
	if ok {
		t.Fatalf("expected zero-scale matrix to be reported degenerate")
	}
	if inverse != Identity() {
		t.Fatalf("degenerate inversion should yield identity, got %+v", inverse)
	}
}

func TestFromScreenUsesInvertedFrameTransform(t *testing.T) {
	frame := StaticFrame{Transform: Translation(100, 50).Multiply(Scaling(2, 2))}
	local := FromScreen(frame, Point{X: 300, Y: 200})
	if math.Abs(local.X-50) > 1e-9 || math.Abs(local.Y-50) > 1e-9 {
		t.Fatalf("unexpected local point %+v", local)
	}
}

func TestFromScreenDegenerateFrameReturnsOrigin(t *testing.T) {
	frame := StaticFrame{Transform: Scaling(0, 0)}
	local := FromScreen(frame, Point{X: 300, Y: 200})
	if local != (Point{}) {
		t.Fatalf("degenerate frame should convert to origin, got %+v", local)
	}
	if got := FromScreen(nil, Point{X: 1, Y: 1}); got != (Point{}) {
		t.Fatalf("nil frame should convert to origin, got %+v", got)
	}
}

func TestDocumentFromLocalRemovesPanZoom(t *testing.T) {
	pan := Point{X: 40, Y: -10}
	doc := DocumentFromLocal(Point{X: 140, Y: 90}, pan, 2)
	if doc != (Point{X: 50, Y: 50}) {
		t.Fatalf("unexpected document point %+v", doc)
	}
	back := LocalFromDocument(doc, pan, 2)
	if back != (Point{X: 140, Y: 90}) {
		t.Fatalf("unexpected local point %+v", back)
	}
}

func TestDocumentFromLocalZeroZoomReturnsOrigin(t *testing.T) {
	if got := DocumentFromLocal(Point{X: 5, Y: 5}, Point{}, 0); got != (Point{}) {
		t.Fatalf("zero zoom should convert to origin, got %+v", got)
	}
}

func TestRectContainsAndCenter(t *testing.T) {
	r := Rect{X: 10, Y: 10, Width: 80, Height: 40}
	if !r.Contains(Point{X: 10, Y: 10}) || !r.Contains(Point{X: 90, Y: 50}) {
		t.Fatalf("rect should contain its corners")
	}
	if r.Contains(Point{X: 91, Y: 20}) {
		t.Fatalf("rect should not contain points past its edge")
	}
	if r.Center() != (Point{X: 50, Y: 30}) {
		t.Fatalf("unexpected center %+v", r.Center())
	}
}
