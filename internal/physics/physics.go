// Package physics provides collision geometry and vector utilities.
package physics

import "math"

// AABB is an axis-aligned bounding box. Min is the top-left corner, Max the bottom-right.
type AABB struct {
	MinX, MinY float64
	MaxX, MaxY float64
}

// Box builds an AABB from a top-left corner and a size.
func Box(x, y, w, h float64) AABB {
	return AABB{MinX: x, MinY: y, MaxX: x + w, MaxY: y + h}
}

// CenteredBox builds a square AABB around a centre point (used for the ball).
func CenteredBox(cx, cy, half float64) AABB {
	return AABB{MinX: cx - half, MinY: cy - half, MaxX: cx + half, MaxY: cy + half}
}

// Intersects reports whether two boxes overlap with positive area.
// Boxes that only touch along an edge do not intersect.
func (a AABB) Intersects(b AABB) bool {
	return a.MinX < b.MaxX && a.MaxX > b.MinX && a.MinY < b.MaxY && a.MaxY > b.MinY
}

// Overlap returns the penetration depth on each axis (zero when apart).
func (a AABB) Overlap(b AABB) (x, y float64) {
	x = math.Min(a.MaxX, b.MaxX) - math.Max(a.MinX, b.MinX)
	y = math.Min(a.MaxY, b.MaxY) - math.Max(a.MinY, b.MinY)
	if x < 0 {
		x = 0
	}
	if y < 0 {
		y = 0
	}
	return x, y
}

// CenterX returns the horizontal midpoint.
func (a AABB) CenterX() float64 { return (a.MinX + a.MaxX) / 2 }

// CenterY returns the vertical midpoint.
func (a AABB) CenterY() float64 { return (a.MinY + a.MaxY) / 2 }

// Magnitude returns the length of the vector (x, y).
func Magnitude(x, y float64) float64 {
	return math.Hypot(x, y)
}

// ClampMagnitude scales (x, y) down so its length does not exceed max.
// Vectors already within max are returned unchanged.
func ClampMagnitude(x, y, max float64) (float64, float64) {
	speed := math.Hypot(x, y)
	if speed > max && speed > 0 {
		scale := max / speed
		return x * scale, y * scale
	}
	return x, y
}

// Clamp limits v to [lo, hi]. If hi < lo, lo wins.
func Clamp(v, lo, hi float64) float64 {
	if v > hi {
		v = hi
	}
	if v < lo {
		v = lo
	}
	return v
}

// Finite reports whether every value is neither NaN nor infinite.
func Finite(values ...float64) bool {
	for _, v := range values {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	return true
}
