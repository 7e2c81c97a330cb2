// Package geometry holds the plain coordinate and class types shared by
// every stage of the clustering pipeline.
package geometry

import "math"

// Class tags a two-class input point. The single-class DBSCAN engine
// never reads this field.
type Class uint8

const (
	// ClassBackground marks a control point (Bernoulli) or a background
	// point (Poisson).
	ClassBackground Class = 0
	// ClassEvent marks a case point (Bernoulli) or an event point (Poisson).
	ClassEvent Class = 1
)

// Point is a single 2D coordinate, optionally tagged with a class.
type Point struct {
	X, Y  float64
	Class Class
}

// BoundingBox is the axis-aligned rectangle enclosing a point set.
type BoundingBox struct {
	XMin, YMin, XMax, YMax float64
}

// Empty reports whether the box has never been extended by a point.
func (b BoundingBox) Empty() bool {
	return b.XMin > b.XMax || b.YMin > b.YMax
}

// NewBoundingBox computes the minimum enclosing rectangle of pts.
// It returns an inverted box (min > max) satisfying Empty() if pts is
// empty.
func NewBoundingBox(pts []Point) BoundingBox {
	if len(pts) == 0 {
		return BoundingBox{XMin: 1, XMax: 0, YMin: 1, YMax: 0}
	}
	b := BoundingBox{XMin: pts[0].X, XMax: pts[0].X, YMin: pts[0].Y, YMax: pts[0].Y}
	for _, p := range pts[1:] {
		b.XMin = math.Min(b.XMin, p.X)
		b.XMax = math.Max(b.XMax, p.X)
		b.YMin = math.Min(b.YMin, p.Y)
		b.YMax = math.Max(b.YMax, p.Y)
	}
	return b
}

// Merge returns the smallest box enclosing both a and b. An empty operand
// is ignored.
func Merge(a, b BoundingBox) BoundingBox {
	if a.Empty() {
		return b
	}
	if b.Empty() {
		return a
	}
	return BoundingBox{
		XMin: math.Min(a.XMin, b.XMin),
		YMin: math.Min(a.YMin, b.YMin),
		XMax: math.Max(a.XMax, b.XMax),
		YMax: math.Max(a.YMax, b.YMax),
	}
}

// SquaredDistance returns the squared Euclidean distance between a and b.
func SquaredDistance(a, b Point) float64 {
	dx := a.X - b.X
	dy := a.Y - b.Y
	return dx*dx + dy*dy
}
