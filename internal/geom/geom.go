package geom

import "math"

// Point is a location in a two dimensional coordinate space. Which space it
// lives in (screen, frame-local, or document) is determined by context.
type Point struct {
	X float64
	Y float64
}

// Add returns the component-wise sum of p and other.
func (p Point) Add(other Point) Point {
	return Point{X: p.X + other.X, Y: p.Y + other.Y}
}

// Sub returns the component-wise difference of p and other.
func (p Point) Sub(other Point) Point {
	return Point{X: p.X - other.X, Y: p.Y - other.Y}
}

// Scale returns p multiplied by factor.
func (p Point) Scale(factor float64) Point {
	return Point{X: p.X * factor, Y: p.Y * factor}
}

// DistanceTo returns the euclidean distance between p and other.
func (p Point) DistanceTo(other Point) float64 {
	return math.Hypot(other.X-p.X, other.Y-p.Y)
}

// Rect is an axis-aligned rectangle.
type Rect struct {
	X      float64
	Y      float64
	Width  float64
	Height float64
}

// Contains reports whether the point lies inside the rectangle.
func (r Rect) Contains(p Point) bool {
	return p.X >= r.X && p.X <= r.X+r.Width && p.Y >= r.Y && p.Y <= r.Y+r.Height
}

// IsEmpty reports whether the rectangle has zero or negative area.
func (r Rect) IsEmpty() bool {
	return r.Width <= 0 || r.Height <= 0
}

// Center returns the midpoint of the rectangle.
func (r Rect) Center() Point {
	return Point{X: r.X + r.Width/2, Y: r.Y + r.Height/2}
}

// Matrix is a 2D affine transform:
//
//	| XX XY X0 |
//	| YX YY Y0 |
//
// mapping (x, y) to (XX*x + XY*y + X0, YX*x + YY*y + Y0).
type Matrix struct {
	XX, YX float64
	XY, YY float64
	X0, Y0 float64
}

// Identity returns the identity transform.
func Identity() Matrix {
	return Matrix{XX: 1, YY: 1}
}

// Translation returns a transform that offsets points by (tx, ty).
func Translation(tx, ty float64) Matrix {
	return Matrix{XX: 1, YY: 1, X0: tx, Y0: ty}
}

// Scaling returns a transform that scales points by (sx, sy).
func Scaling(sx, sy float64) Matrix {
	return Matrix{XX: sx, YY: sy}
}

// Multiply returns the composition m then other, so that
// Apply(other, Apply(m, p)) == Apply(m.Multiply(other), p).
func (m Matrix) Multiply(other Matrix) Matrix {
	return Matrix{
		XX: m.XX*other.XX + m.YX*other.XY,
		YX: m.XX*other.YX + m.YX*other.YY,
		XY: m.XY*other.XX + m.YY*other.XY,
		YY: m.XY*other.YX + m.YY*other.YY,
		X0: m.X0*other.XX + m.Y0*other.XY + other.X0,
		Y0: m.X0*other.YX + m.Y0*other.YY + other.Y0,
	}
}

// Apply transforms the point through m.
func (m Matrix) Apply(p Point) Point {
	return Point{
		X: m.XX*p.X + m.XY*p.Y + m.X0,
		Y: m.YX*p.X + m.YY*p.Y + m.Y0,
	}
}

const degenerateEpsilon = 1e-12

// Determinant returns the determinant of the linear part of m.
func (m Matrix) Determinant() float64 {
	return m.XX*m.YY - m.XY*m.YX
}

// IsDegenerate reports whether the transform cannot be inverted.
func (m Matrix) IsDegenerate() bool {
	return math.Abs(m.Determinant()) < degenerateEpsilon
}

// Invert returns the inverse transform and true, or the identity and false
// when m is degenerate.
func (m Matrix) Invert() (Matrix, bool) {
	det := m.Determinant()
	if math.Abs(det) < degenerateEpsilon {
		return Identity(), false
	}
	inv := Matrix{
		XX: m.YY / det,
		YX: -m.YX / det,
		XY: -m.XY / det,
		YY: m.XX / det,
	}
	inv.X0 = -(m.X0*inv.XX + m.Y0*inv.XY)
	inv.Y0 = -(m.X0*inv.YX + m.Y0*inv.YY)
	return inv, true
}
