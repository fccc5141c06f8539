// Package systems provides the stateless simulation systems: geometry,
// bounce physics, world-bounds enforcement, and spatial indexing.
package systems

import "math"

// Vec2 is a 2D vector in world units.
type Vec2 struct {
	X, Y float32
}

// Finite reports whether f is neither NaN nor infinite.
func Finite(f float32) bool {
	f64 := float64(f)
	return !math.IsNaN(f64) && !math.IsInf(f64, 0)
}

// FiniteVec reports whether both vector components are finite.
func FiniteVec(v Vec2) bool {
	return Finite(v.X) && Finite(v.Y)
}

// Add returns v + o.
func (v Vec2) Add(o Vec2) Vec2 {
	return Vec2{v.X + o.X, v.Y + o.Y}
}

// Sub returns v - o.
func (v Vec2) Sub(o Vec2) Vec2 {
	return Vec2{v.X - o.X, v.Y - o.Y}
}

// Scale returns v scaled by s.
func (v Vec2) Scale(s float32) Vec2 {
	return Vec2{v.X * s, v.Y * s}
}

// Dot returns the dot product of v and o.
func (v Vec2) Dot(o Vec2) float32 {
	return v.X*o.X + v.Y*o.Y
}

// LengthSq returns the squared magnitude of v.
func (v Vec2) LengthSq() float32 {
	return v.X*v.X + v.Y*v.Y
}

// Length returns the magnitude of v, or 0 for non-finite input.
func (v Vec2) Length() float32 {
	if !FiniteVec(v) {
		return 0
	}
	return float32(math.Sqrt(float64(v.LengthSq())))
}

// Normalize returns the unit vector of v. Zero or non-finite input
// yields the zero vector rather than NaN.
func (v Vec2) Normalize() Vec2 {
	l := v.Length()
	if l == 0 {
		return Vec2{}
	}
	return Vec2{v.X / l, v.Y / l}
}

// ClampMagnitude limits the magnitude of v to at most maxLen.
func (v Vec2) ClampMagnitude(maxLen float32) Vec2 {
	if maxLen <= 0 || !Finite(maxLen) {
		return Vec2{}
	}
	lsq := v.LengthSq()
	if !Finite(lsq) {
		return Vec2{}
	}
	if lsq <= maxLen*maxLen {
		return v
	}
	l := float32(math.Sqrt(float64(lsq)))
	return Vec2{v.X / l * maxLen, v.Y / l * maxLen}
}

// SquaredDistance returns the squared distance between two points.
// Non-finite coordinates are treated as infinitely far apart so a
// malformed entity can never register a collision.
func SquaredDistance(ax, ay, bx, by float32) float32 {
	if !Finite(ax) || !Finite(ay) || !Finite(bx) || !Finite(by) {
		return float32(math.Inf(1))
	}
	dx := ax - bx
	dy := ay - by
	return dx*dx + dy*dy
}

// Overlaps reports whether two circles intersect. Non-finite input or
// non-positive combined radius yields false.
func Overlaps(ax, ay, ra, bx, by, rb float32) bool {
	if !Finite(ra) || !Finite(rb) {
		return false
	}
	sum := ra + rb
	if sum <= 0 {
		return false
	}
	return SquaredDistance(ax, ay, bx, by) < sum*sum
}

// RadiusFromMass derives the body radius from mass using the circle
// area relation. Non-finite or non-positive mass yields 0.
func RadiusFromMass(mass float32) float32 {
	if !Finite(mass) || mass <= 0 {
		return 0
	}
	return float32(math.Sqrt(float64(mass) / math.Pi))
}

// MassFromRadius is the inverse of RadiusFromMass.
func MassFromRadius(radius float32) float32 {
	if !Finite(radius) || radius <= 0 {
		return 0
	}
	return float32(math.Pi * float64(radius) * float64(radius))
}

// Lerp linearly interpolates between a and b by t.
func Lerp(a, b, t float32) float32 {
	return a + (b-a)*t
}

// Clamp limits x to [lo, hi].
func Clamp(x, lo, hi float32) float32 {
	if x < lo {
		return lo
	}
	if x > hi {
		return hi
	}
	return x
}
