// Package geometry holds stateless helpers over axis-aligned boxes
// expressed as (x, y, w, h) in pixel coordinates.
package geometry

import (
	"math"

	"github.com/anime-shed/photo-scorer-go/pkg/models"
)

// DefaultThirdsTolerance is the fraction of a dimension within which a point
// counts as sitting on a thirds line.
const DefaultThirdsTolerance = 0.1

// Center returns the midpoint of the box
func Center(b models.BoundingBox) (cx, cy float64) {
	return b.X + b.W/2, b.Y + b.H/2
}

// Area returns w*h
func Area(b models.BoundingBox) float64 {
	return b.W * b.H
}

// Clip intersects the box with the width x height image rectangle. A box
// wholly outside the image comes back with zero width or height.
func Clip(b models.BoundingBox, width, height float64) models.BoundingBox {
	x0, y0 := math.Max(b.X, 0), math.Max(b.Y, 0)
	x1, y1 := math.Min(b.X+b.W, width), math.Min(b.Y+b.H, height)
	return models.BoundingBox{
		X: x0,
		Y: y0,
		W: math.Max(x1-x0, 0),
		H: math.Max(y1-y0, 0),
	}
}

// Degenerate reports boxes with non-positive width or height
func Degenerate(b models.BoundingBox) bool {
	return !(b.W > 0) || !(b.H > 0)
}

// Overlaps is the standard open-interval rectangle intersection test.
// Boxes that only share an edge do not overlap.
func Overlaps(a, b models.BoundingBox) bool {
	return a.X < b.X+b.W && a.X+a.W > b.X &&
		a.Y < b.Y+b.H && a.Y+a.H > b.Y
}

// NearThirdsLine reports whether (cx, cy) lies strictly within
// tolerance*dimension of either vertical or either horizontal thirds line.
func NearThirdsLine(cx, cy, width, height, tolerance float64) bool {
	nearVertical := math.Min(math.Abs(cx-width/3), math.Abs(cx-2*width/3)) < width*tolerance
	nearHorizontal := math.Min(math.Abs(cy-height/3), math.Abs(cy-2*height/3)) < height*tolerance
	return nearVertical || nearHorizontal
}

// MirrorX reflects an x coordinate across the vertical centerline
func MirrorX(cx, width float64) float64 {
	return width - cx
}
