// Package core provides fundamental types and utilities for the simulator.
// It contains no external dependencies to keep game logic pure and testable.
package core

// Rect represents an axis-aligned bounding box used for collision detection.
// Coordinates grow right and down, matching screen space.
type Rect struct {
	X, Y float64 // Top-left corner position
	W, H float64 // Width and height
}

// NewRect creates a new rectangle with the given position and dimensions.
func NewRect(x, y, w, h float64) Rect {
	return Rect{X: x, Y: y, W: w, H: h}
}

// Right returns the x-coordinate of the right edge.
func (r Rect) Right() float64 {
	return r.X + r.W
}

// Bottom returns the y-coordinate of the bottom edge.
func (r Rect) Bottom() float64 {
	return r.Y + r.H
}

// Intersects returns true if this rectangle overlaps with another.
// Rectangles that only share an edge do not intersect.
func (r Rect) Intersects(other Rect) bool {
	// No overlap if one rect is completely to the left, right, above, or below
	if r.X >= other.Right() || other.X >= r.Right() {
		return false
	}
	if r.Y >= other.Bottom() || other.Y >= r.Bottom() {
		return false
	}
	return true
}

// Translate returns a copy of the rectangle moved by (dx, dy).
func (r Rect) Translate(dx, dy float64) Rect {
	r.X += dx
	r.Y += dy
	return r
}

// Remap linearly maps value from the range [srcMin, srcMax] onto
// [dstMin, dstMax]. Values outside the source range extrapolate.
// The caller must ensure srcMax != srcMin.
func Remap(value, srcMin, srcMax, dstMin, dstMax float64) float64 {
	scaled := (value - srcMin) / (srcMax - srcMin)
	return dstMin + scaled*(dstMax-dstMin)
}
