// Package geom provides the planar primitives shared by the simulation core.
package geom

// Vec2 is a point or displacement in world units.
type Vec2 struct {
	X float64
	Y float64
}

// Add returns v + o.
func (v Vec2) Add(o Vec2) Vec2 {
	return Vec2{X: v.X + o.X, Y: v.Y + o.Y}
}

// Sub returns v - o.
func (v Vec2) Sub(o Vec2) Vec2 {
	return Vec2{X: v.X - o.X, Y: v.Y - o.Y}
}

// Scale returns v scaled by s.
func (v Vec2) Scale(s float64) Vec2 {
	return Vec2{X: v.X * s, Y: v.Y * s}
}

// AABB is an axis-aligned rectangle identified by its minimum corner and size.
//
// Invariant: W >= 0 and H >= 0 for every AABB produced by this package.
type AABB struct {
	X float64 // minimum (left) edge
	Y float64 // minimum (top) edge
	W float64
	H float64
}

// MaxX returns the exclusive right edge.
func (a AABB) MaxX() float64 { return a.X + a.W }

// MaxY returns the exclusive bottom edge.
func (a AABB) MaxY() float64 { return a.Y + a.H }

// Center returns the midpoint of the rectangle.
func (a AABB) Center() Vec2 {
	return Vec2{X: a.X + a.W/2, Y: a.Y + a.H/2}
}

// Translate returns a moved by d.
func (a AABB) Translate(d Vec2) AABB {
	return AABB{X: a.X + d.X, Y: a.Y + d.Y, W: a.W, H: a.H}
}

// Intersects reports whether a and b overlap with positive area. Rectangles
// that merely share an edge do not intersect.
//
// Postcondition: Intersects is symmetric: a.Intersects(b) == b.Intersects(a).
func (a AABB) Intersects(b AABB) bool {
	return a.X < b.MaxX() && b.X < a.MaxX() &&
		a.Y < b.MaxY() && b.Y < a.MaxY()
}

// OverlapExtents returns the penetration depth of b into a along each axis.
// Both values are positive exactly when the rectangles intersect.
//
// Postcondition: ox > 0 && oy > 0 iff a.Intersects(b).
func (a AABB) OverlapExtents(b AABB) (ox, oy float64) {
	ox = min(a.MaxX(), b.MaxX()) - max(a.X, b.X)
	oy = min(a.MaxY(), b.MaxY()) - max(a.Y, b.Y)
	return ox, oy
}

// Facing is a horizontal orientation.
type Facing int

const (
	FacingLeft  Facing = -1
	FacingRight Facing = 1
)

// Sign returns the facing as a unit X direction.
func (f Facing) Sign() float64 { return float64(f) }

// Opposite returns the reversed facing.
func (f Facing) Opposite() Facing { return -f }
