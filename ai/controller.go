// Package ai defines the controller contract for AI-driven agents and
// a default greedy controller used for spawned arena opponents.
//
// Controllers are pure decision functions: given a flattened view of
// nearby entities they return an intended movement direction plus
// optional split/eject intents. They never mutate simulation state.
package ai

import "math/rand"

// ViewKind tags one entry of the flattened entity view.
type ViewKind uint8

const (
	ViewCell ViewKind = iota
	ViewFood
	ViewVirus
	ViewPowerUp
)

// EntityView is one visible entity. The simulation only includes
// entities with finite positions in the view.
type EntityView struct {
	Kind    ViewKind
	AgentID uint32 // Owning agent for ViewCell entries, 0 otherwise
	X, Y    float32
	Radius  float32
	Mass    float32
}

// SelfView describes the controller's own agent.
type SelfView struct {
	ID        uint32
	X, Y      float32 // Centroid of the agent's cells
	Mass      float32 // Total mass across cells
	CellCount int
}

// Intent is the controller's decision for one tick. DirX/DirY need not
// be normalized; the simulation normalizes before use.
type Intent struct {
	DirX, DirY float32
	Split      bool
	Eject      bool
}

// Controller produces an intent for its agent each tick.
type Controller interface {
	Decide(self SelfView, view []EntityView) Intent
}

// Greedy is a simple heuristic controller: flee from dominant cells,
// otherwise chase the nearest edible target, with a mild wander when
// nothing is visible.
type Greedy struct {
	rng *rand.Rand

	wanderX, wanderY float32
	wanderTicks      int
}

// NewGreedy creates a greedy controller with its own RNG stream.
func NewGreedy(seed int64) *Greedy {
	return &Greedy{rng: rand.New(rand.NewSource(seed))}
}

// Edible margin mirrors the combat dominance threshold so the
// controller never chases a fight it cannot win.
const greedyDominance = 1.1

// Decide implements Controller.
func (g *Greedy) Decide(self SelfView, view []EntityView) Intent {
	var (
		threatX, threatY float32
		threatDistSq     float32 = -1

		targetX, targetY float32
		targetDistSq     float32 = -1
		targetIsCell     bool
	)

	for _, e := range view {
		dx := e.X - self.X
		dy := e.Y - self.Y
		distSq := dx*dx + dy*dy

		switch e.Kind {
		case ViewCell:
			if e.AgentID == self.ID {
				continue
			}
			if e.Mass > self.Mass*greedyDominance {
				if threatDistSq < 0 || distSq < threatDistSq {
					threatX, threatY, threatDistSq = dx, dy, distSq
				}
			} else if self.Mass > e.Mass*greedyDominance {
				if targetDistSq < 0 || distSq < targetDistSq {
					targetX, targetY, targetDistSq = dx, dy, distSq
					targetIsCell = true
				}
			}
		case ViewFood, ViewPowerUp:
			// Prefer prey cells over pellets; only take a pellet when
			// it is closer or no cell target exists.
			if targetDistSq < 0 || (!targetIsCell && distSq < targetDistSq) {
				targetX, targetY, targetDistSq = dx, dy, distSq
			}
		case ViewVirus:
			// Large agents steer clear of viruses.
			if self.Mass > 400 && distSq < e.Radius*e.Radius*36 {
				if threatDistSq < 0 || distSq < threatDistSq {
					threatX, threatY, threatDistSq = dx, dy, distSq
				}
			}
		}
	}

	// Fleeing wins over feeding.
	if threatDistSq >= 0 {
		return Intent{DirX: -threatX, DirY: -threatY}
	}

	if targetDistSq >= 0 {
		// Close-range prey with a big mass lead: split toward it.
		split := targetIsCell && self.CellCount < 4 && self.Mass > 250 && targetDistSq < 200*200
		return Intent{DirX: targetX, DirY: targetY, Split: split}
	}

	// Nothing visible: wander, re-rolling the direction occasionally.
	if g.wanderTicks <= 0 {
		g.wanderX = g.rng.Float32()*2 - 1
		g.wanderY = g.rng.Float32()*2 - 1
		g.wanderTicks = 60 + g.rng.Intn(120)
	}
	g.wanderTicks--
	return Intent{DirX: g.wanderX, DirY: g.wanderY}
}
