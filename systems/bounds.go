package systems

import "github.com/halcyon-games/mitos/components"

// ClampToWorld keeps a circular body fully inside [0,w]x[0,h] by
// clamping its position. Used for free entities, which do not bounce.
func ClampToWorld(pos *components.Position, radius, w, h float32) {
	pos.X = clampAxis(pos.X, radius, w)
	pos.Y = clampAxis(pos.Y, radius, h)
}

// BounceOffWalls keeps an agent cell inside the arena and softly
// bounces it off the walls: the velocity component that pushed the
// cell out is inverted and scaled by damping.
func BounceOffWalls(pos *components.Position, vel *components.Velocity, radius, w, h, damping float32) {
	if x := clampAxis(pos.X, radius, w); x != pos.X {
		pos.X = x
		vel.X = -vel.X * damping
	}
	if y := clampAxis(pos.Y, radius, h); y != pos.Y {
		pos.Y = y
		vel.Y = -vel.Y * damping
	}
}

// clampAxis clamps a coordinate so the body stays inside [radius, limit-radius].
// A body wider than the arena is centered, and a malformed coordinate is
// reset to the center rather than left to corrupt later passes.
func clampAxis(v, radius, limit float32) float32 {
	if !Finite(v) {
		return limit / 2
	}
	if radius*2 >= limit {
		return limit / 2
	}
	if v < radius {
		return radius
	}
	if v > limit-radius {
		return limit - radius
	}
	return v
}
