package game

import (
	"testing"

	"github.com/halcyon-games/mitos/config"
)

// TestDifficultyProgression verifies the escalation curve: one level
// per period of elapsed time, with virus injections per level gained
// and an extra AI on even levels.
func TestDifficultyProgression(t *testing.T) {
	g := newTestGame(t)

	// 250s of elapsed time spans two level boundaries (120s period).
	g.elapsed = 250
	g.updateDifficulty()

	if g.Difficulty() != 3 {
		t.Fatalf("difficulty = %d, want 3", g.Difficulty())
	}
	// Level 2 injects 1 virus, level 3 injects 2.
	if _, viruses, _, _ := g.Counts(); viruses != 3 {
		t.Errorf("viruses injected = %d, want 3", viruses)
	}
	// Only level 2 is even: one extra AI beside the controlled agent.
	if _, _, _, agents := g.Counts(); agents != 2 {
		t.Errorf("agents = %d, want 2", agents)
	}
}

// TestDifficultyNeverRegresses verifies elapsed time moving backwards
// (or a clamped tick) cannot lower the level.
func TestDifficultyNeverRegresses(t *testing.T) {
	g := newTestGame(t)
	g.elapsed = 250
	g.updateDifficulty()

	g.elapsed = 10
	g.updateDifficulty()

	if g.Difficulty() != 3 {
		t.Errorf("difficulty regressed to %d", g.Difficulty())
	}
}

// TestDifficultyIdempotentWithinLevel verifies repeated calls inside
// one level inject nothing new.
func TestDifficultyIdempotentWithinLevel(t *testing.T) {
	g := newTestGame(t)
	g.elapsed = 130
	g.updateDifficulty()
	_, virusesBefore, _, _ := g.Counts()

	g.elapsed = 150
	g.updateDifficulty()

	if _, viruses, _, _ := g.Counts(); viruses != virusesBefore {
		t.Errorf("repeat call injected viruses: %d -> %d", virusesBefore, viruses)
	}
}

// TestFoodTopUpCap verifies refill is spread over ticks: at most
// base + level new pellets per call.
func TestFoodTopUpCap(t *testing.T) {
	g := newTestGame(t)

	g.updateSpawning(1.0 / 60)

	// Level 1: cap is 5 + 1 even though the floor is 1100 short.
	if food, _, _, _ := g.Counts(); food != 6 {
		t.Errorf("food spawned in one tick = %d, want 6", food)
	}

	g.updateSpawning(1.0 / 60)
	if food, _, _, _ := g.Counts(); food != 12 {
		t.Errorf("food after second tick = %d, want 12", food)
	}
}

// TestFoodTopUpStopsAtTarget verifies the spawner respects the
// difficulty-scaled floor.
func TestFoodTopUpStopsAtTarget(t *testing.T) {
	g := newTestGame(t)
	cfg := config.Cfg()
	cfg.Population.FoodBase = 4
	cfg.Population.FoodPerLevel = 0

	g.updateSpawning(1.0 / 60)
	g.updateSpawning(1.0 / 60)

	if food, _, _, _ := g.Counts(); food != 4 {
		t.Errorf("food = %d, want exactly the floor 4", food)
	}
}

// TestPopulationCaps pins the difficulty-scaled ceilings.
func TestPopulationCaps(t *testing.T) {
	g := newTestGame(t)

	if got := g.virusCap(); got != 22 {
		t.Errorf("virus cap at level 1 = %d, want 22", got)
	}
	if got := g.agentCap(); got != 16 {
		t.Errorf("agent cap at level 1 = %d, want 16", got)
	}

	g.difficulty = 5
	if got := g.virusCap(); got != 30 {
		t.Errorf("virus cap at level 5 = %d, want 30", got)
	}
	if got := g.agentCap(); got != 20 {
		t.Errorf("agent cap at level 5 = %d, want 20", got)
	}
}

// TestCadencesShortenWithDifficulty verifies spawn cadences tighten as
// the level rises but never drop below their floors.
func TestCadencesShortenWithDifficulty(t *testing.T) {
	g := newTestGame(t)
	cfg := config.Cfg()

	base := g.powerUpCadence()
	g.difficulty = 4
	faster := g.powerUpCadence()
	if faster >= base {
		t.Errorf("cadence did not shorten: %v -> %v", base, faster)
	}

	g.difficulty = 100
	if got := g.powerUpCadence(); got != cfg.PowerUps.CadenceMin {
		t.Errorf("cadence floor = %v, want %v", got, cfg.PowerUps.CadenceMin)
	}
	if got := g.aiCadence(); got != cfg.AI.CadenceMin {
		t.Errorf("AI cadence floor = %v, want %v", got, cfg.AI.CadenceMin)
	}
}

// TestAIStartMassScales verifies late-spawning AI agents arrive heavier.
func TestAIStartMassScales(t *testing.T) {
	g := newTestGame(t)

	first := g.spawnAIAgent()
	g.difficulty = 4
	later := g.spawnAIAgent()

	// 80 at level 1; +30 per level above it.
	if got := cellMass(g, first.Cells[0]); got != 80 {
		t.Errorf("level-1 AI mass = %v, want 80", got)
	}
	if got := cellMass(g, later.Cells[0]); got != 170 {
		t.Errorf("level-4 AI mass = %v, want 170", got)
	}
	if !later.IsAI || later.Name == "" {
		t.Error("AI agent missing identity")
	}
}

// TestReplacementRespectsCap verifies deferred respawns re-check the
// cap when they fire, not when they were scheduled.
func TestReplacementRespectsCap(t *testing.T) {
	g := newTestGame(t)
	for len(g.agents) < g.agentCap() {
		g.spawnAIAgent()
	}
	before := len(g.agents)

	g.spawnReplacementAI()

	if len(g.agents) != before {
		t.Errorf("replacement spawned past the cap: %d -> %d", before, len(g.agents))
	}
}

// TestVirusSpawnsAwayFromPlayer verifies the keep-away constraint on
// virus placement relative to the controlled agent.
func TestVirusSpawnsAwayFromPlayer(t *testing.T) {
	g := newTestGame(t)
	player := g.ControlledAgent()
	moveCell(t, g, player.Cells[0], 2000, 2000)
	minDist := float32(config.Cfg().Virus.MinSpawnDistance)

	for i := 0; i < 20; i++ {
		g.spawnVirusAway()
	}

	vq := g.virusFilter.Query()
	for vq.Next() {
		pos, _, _, _ := vq.Get()
		dx := pos.X - 2000
		dy := pos.Y - 2000
		if dx*dx+dy*dy < minDist*minDist {
			t.Errorf("virus at (%v,%v) inside keep-away radius", pos.X, pos.Y)
		}
	}
}
