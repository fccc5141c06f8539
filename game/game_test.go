package game

import (
	"math"
	"testing"

	"github.com/mlange-42/ark/ecs"

	"github.com/halcyon-games/mitos/components"
	"github.com/halcyon-games/mitos/config"
)

// newTestGame builds a game with default config but no initial
// free-entity or AI population, so tests control exactly what exists.
// The controlled agent is parked in a corner out of the way.
func newTestGame(t *testing.T) *Game {
	t.Helper()
	config.MustInit("")
	cfg := config.Cfg()
	cfg.Population.InitialFood = 0
	cfg.Population.InitialViruses = 0
	cfg.Population.InitialAI = 0
	cfg.Population.InitialPowerUps = 0

	g := NewGame(Options{Seed: 1})
	moveCell(t, g, g.ControlledAgent().Cells[0], 100, 100)
	return g
}

// addTestAgent registers an agent with one motionless cell at an exact
// position and mass.
func addTestAgent(g *Game, name string, isAI bool, x, y, mass float32) *Agent {
	a := &Agent{
		ID:      g.nextAgentID,
		Name:    name,
		IsAI:    isAI,
		Color:   components.Color{R: 128, G: 128, B: 128},
		effects: make(map[components.PowerUpKind]float64),
	}
	g.nextAgentID++
	g.spawnCell(a, x, y, 0, 0, mass, 0)
	g.agents = append(g.agents, a)
	g.agentIndex[a.ID] = a
	return a
}

func moveCell(t *testing.T, g *Game, e ecs.Entity, x, y float32) {
	t.Helper()
	pos := g.posMap.Get(e)
	if pos == nil {
		t.Fatal("cell has no position")
	}
	pos.X, pos.Y = x, y
}

func cellMass(g *Game, e ecs.Entity) float32 {
	if cell := g.cellMap.Get(e); cell != nil {
		return cell.Mass
	}
	return 0
}

func approx(a, b, eps float64) bool {
	return math.Abs(a-b) <= eps
}

func nan32() float32 {
	return float32(math.NaN())
}

// TestStepAdvancesTime verifies the frame driver advances elapsed time
// and the tick counter without panicking on an empty arena.
func TestStepAdvancesTime(t *testing.T) {
	g := newTestGame(t)

	for i := 0; i < 5; i++ {
		g.Step(1.0 / 60)
	}

	if g.Tick() != 5 {
		t.Errorf("tick = %d, want 5", g.Tick())
	}
	if !approx(g.Elapsed(), 5.0/60, 1e-9) {
		t.Errorf("elapsed = %v, want %v", g.Elapsed(), 5.0/60)
	}
}

// TestStepClampsDT verifies a frame stall cannot teleport the
// simulation: dt is clamped to the configured maximum.
func TestStepClampsDT(t *testing.T) {
	g := newTestGame(t)

	g.Step(5.0)

	if !approx(g.Elapsed(), config.Cfg().Physics.MaxDT, 1e-9) {
		t.Errorf("elapsed = %v, want clamp to %v", g.Elapsed(), config.Cfg().Physics.MaxDT)
	}
}

// TestStepRejectsNonPositiveDT verifies zero and negative dt do nothing.
func TestStepRejectsNonPositiveDT(t *testing.T) {
	g := newTestGame(t)

	g.Step(0)
	g.Step(-1)

	if g.Tick() != 0 || g.Elapsed() != 0 {
		t.Errorf("non-positive dt advanced the simulation: tick=%d elapsed=%v", g.Tick(), g.Elapsed())
	}
}

// TestStepReportsControlledDeath verifies the death of the controlled
// agent surfaces through Step's return value exactly once.
func TestStepReportsControlledDeath(t *testing.T) {
	g := newTestGame(t)

	g.eliminateAgent(g.ControlledAgent(), nil)
	if !g.controlledDied {
		t.Fatal("controlled death not flagged")
	}

	// The flag resets at the start of the next tick.
	if died := g.Step(1.0 / 60); died {
		t.Error("death reported again on the following tick")
	}
	if g.ControlledAgent() != nil {
		t.Error("eliminated controlled agent still resolvable")
	}
}

// TestReset verifies Reset rebuilds the arena from scratch.
func TestReset(t *testing.T) {
	g := newTestGame(t)
	addTestAgent(g, "extra", true, 500, 500, 100)
	g.Step(1.0 / 60)

	g.Reset()

	if g.Tick() != 0 || g.Elapsed() != 0 {
		t.Errorf("clock survived reset: tick=%d elapsed=%v", g.Tick(), g.Elapsed())
	}
	if g.Difficulty() != 1 {
		t.Errorf("difficulty after reset = %d, want 1", g.Difficulty())
	}
	if len(g.agents) != 1 {
		t.Errorf("agent count after reset = %d, want 1 (controlled only)", len(g.agents))
	}
	if g.ControlledAgent() == nil {
		t.Error("controlled agent missing after reset")
	}
}

// TestEnforceBounds verifies every mobile entity ends up fully inside
// the arena: cells bounce softly, free entities clamp.
func TestEnforceBounds(t *testing.T) {
	g := newTestGame(t)
	player := g.ControlledAgent()
	moveCell(t, g, player.Cells[0], -50, 2000)
	g.velMap.Get(player.Cells[0]).X = -100

	g.spawnPellet(5000, 2000, 0, 0, 2, components.Color{})
	g.spawnVirusAt(2000, -100)

	g.enforceBounds()

	pos := g.posMap.Get(player.Cells[0])
	body := g.bodyMap.Get(player.Cells[0])
	if pos.X < body.Radius {
		t.Errorf("cell left of wall: x=%v radius=%v", pos.X, body.Radius)
	}
	if vel := g.velMap.Get(player.Cells[0]); vel.X != 50 {
		t.Errorf("wall bounce velocity = %v, want 50 (inverted, damped)", vel.X)
	}

	pq := g.pelletFilter.Query()
	for pq.Next() {
		p, _, b, _ := pq.Get()
		if p.X > 4000-b.Radius {
			t.Errorf("pellet outside arena: x=%v", p.X)
		}
	}
	vq := g.virusFilter.Query()
	for vq.Next() {
		p, _, b, _ := vq.Get()
		if p.Y < b.Radius {
			t.Errorf("virus outside arena: y=%v", p.Y)
		}
	}
}

// TestRunPhaseIsolatesPanic verifies a panicking phase is contained.
func TestRunPhaseIsolatesPanic(t *testing.T) {
	g := newTestGame(t)

	ran := false
	g.runPhase("bad", func() { panic("boom") })
	g.runPhase("good", func() { ran = true })

	if !ran {
		t.Error("phase after a panicking phase did not run")
	}
}
