package systems

import (
	"testing"

	"github.com/halcyon-games/mitos/components"
)

// TestBounceImpulse checks the impulse magnitude and momentum exchange
// for the equal-mass head-on case: j = 2*20/2 * 1.2 = 24, so each
// velocity flips from +-10 to -+14.
func TestBounceImpulse(t *testing.T) {
	posA := &components.Position{X: 0, Y: 0}
	velA := &components.Velocity{X: 10, Y: 0}
	posB := &components.Position{X: 9, Y: 0}
	velB := &components.Velocity{X: -10, Y: 0}

	Bounce(posA, velA, 1, 5, posB, velB, 1, 5, 1.2)

	if !almostEq(velA.X, -14, 1e-4) || !almostEq(velB.X, 14, 1e-4) {
		t.Errorf("velocities after bounce: A=%v B=%v, want -14/+14", velA.X, velB.X)
	}
	// Overlap of 1 unit splits half-and-half.
	if !almostEq(posA.X, -0.5, 1e-4) || !almostEq(posB.X, 9.5, 1e-4) {
		t.Errorf("positions after separation: A=%v B=%v, want -0.5/9.5", posA.X, posB.X)
	}
}

// TestBounceReceding verifies no impulse is applied to bodies already
// moving apart; only positional separation happens.
func TestBounceReceding(t *testing.T) {
	posA := &components.Position{X: 0}
	velA := &components.Velocity{X: -5}
	posB := &components.Position{X: 8}
	velB := &components.Velocity{X: 5}

	Bounce(posA, velA, 1, 5, posB, velB, 1, 5, 1.2)

	if velA.X != -5 || velB.X != 5 {
		t.Errorf("receding velocities changed: A=%v B=%v", velA.X, velB.X)
	}
	if !almostEq(posB.X-posA.X, 10, 1e-4) {
		t.Errorf("bodies not separated to contact: gap %v", posB.X-posA.X)
	}
}

// TestBounceCoincidentCenters verifies the zero-distance case is a
// strict no-op rather than a division by zero.
func TestBounceCoincidentCenters(t *testing.T) {
	posA := &components.Position{X: 3, Y: 3}
	velA := &components.Velocity{X: 1}
	posB := &components.Position{X: 3, Y: 3}
	velB := &components.Velocity{X: -1}

	Bounce(posA, velA, 2, 4, posB, velB, 2, 4, 1.2)

	if posA.X != 3 || posB.X != 3 || velA.X != 1 || velB.X != -1 {
		t.Error("coincident-center bounce must not modify either body")
	}
}

// TestBounceNaNInput verifies malformed state never produces NaN output.
func TestBounceNaNInput(t *testing.T) {
	posA := &components.Position{X: nan32}
	velA := &components.Velocity{X: 1}
	posB := &components.Position{X: 5}
	velB := &components.Velocity{}

	Bounce(posA, velA, 1, 5, posB, velB, 1, 5, 1.2)

	if !Finite(posB.X) || !Finite(velB.X) {
		t.Errorf("NaN leaked into healthy body: pos=%v vel=%v", posB.X, velB.X)
	}
}

// TestBounceMomentumConserved checks that the impulse transfers
// momentum symmetrically for unequal masses.
func TestBounceMomentumConserved(t *testing.T) {
	posA := &components.Position{X: 0}
	velA := &components.Velocity{X: 6}
	posB := &components.Position{X: 7}
	velB := &components.Velocity{X: 0}
	massA, massB := float32(3), float32(1)

	before := massA*velA.X + massB*velB.X
	Bounce(posA, velA, massA, 4, posB, velB, massB, 4, 1)
	after := massA*velA.X + massB*velB.X

	if !almostEq(before, after, 1e-3) {
		t.Errorf("momentum changed: before=%v after=%v", before, after)
	}
}
