package systems

import (
	"math"

	"github.com/halcyon-games/mitos/components"
)

// Bounce applies an elastic impulse between two overlapping circular
// bodies and separates them along the contact normal by half the
// overlap each, preventing persistent sticking. The impulse scalar is
// 2*(relVel . normal)/(massA+massB) multiplied by the responsiveness
// boost. Bodies with coincident centers are left untouched; there is
// no normal to resolve along.
func Bounce(
	posA *components.Position, velA *components.Velocity, massA, radiusA float32,
	posB *components.Position, velB *components.Velocity, massB, radiusB float32,
	boost float32,
) {
	dx := posB.X - posA.X
	dy := posB.Y - posA.Y
	distSq := dx*dx + dy*dy
	if !Finite(distSq) || distSq == 0 {
		return
	}
	dist := float32(math.Sqrt(float64(distSq)))

	nx := dx / dist
	ny := dy / dist

	totalMass := massA + massB
	if !Finite(totalMass) || totalMass <= 0 {
		return
	}

	// Relative velocity of A with respect to B along the normal.
	rvx := velA.X - velB.X
	rvy := velA.Y - velB.Y
	velAlong := rvx*nx + rvy*ny

	// Only apply the impulse when the bodies are approaching.
	if Finite(velAlong) && velAlong > 0 {
		j := 2 * velAlong / totalMass * boost
		velA.X -= j * massB * nx
		velA.Y -= j * massB * ny
		velB.X += j * massA * nx
		velB.Y += j * massA * ny
	}

	// Positional separation: half the overlap each.
	overlap := (radiusA + radiusB) - dist
	if Finite(overlap) && overlap > 0 {
		half := overlap / 2
		posA.X -= nx * half
		posA.Y -= ny * half
		posB.X += nx * half
		posB.Y += ny * half
	}
}
