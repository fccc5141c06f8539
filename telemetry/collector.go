// Package telemetry accumulates simulation events into time windows
// and writes them out as CSV for balance analysis.
package telemetry

import "github.com/halcyon-games/mitos/components"

// Collector accumulates events within time windows and produces
// WindowStats. It is fed synchronously from the tick loop; there is
// no locking to do.
type Collector struct {
	windowSec   float64
	windowStart float64

	foodEaten   int
	combatEats  int
	aiKills     int
	humanDeaths int
	virusSplits int
	powerUps    [components.NumPowerUpKinds]int
	aiSpawns    int
	ejects      int
	levelUps    int
}

// NewCollector creates a collector with the given window length in
// simulation seconds.
func NewCollector(windowSec float64) *Collector {
	if windowSec <= 0 {
		windowSec = 10
	}
	return &Collector{windowSec: windowSec}
}

// RecordFoodEaten records one consumed pellet.
func (c *Collector) RecordFoodEaten() { c.foodEaten++ }

// RecordCombatEat records one cell eaten in combat.
func (c *Collector) RecordCombatEat() { c.combatEats++ }

// RecordElimination records an agent leaving the population.
func (c *Collector) RecordElimination(wasAI bool) {
	if wasAI {
		c.aiKills++
	} else {
		c.humanDeaths++
	}
}

// RecordVirusSplit records a virus fragmenting a cell.
func (c *Collector) RecordVirusSplit() { c.virusSplits++ }

// RecordPowerUp records one pickup by effect kind.
func (c *Collector) RecordPowerUp(kind components.PowerUpKind) {
	if int(kind) < len(c.powerUps) {
		c.powerUps[kind]++
	}
}

// RecordAISpawn records one AI agent entering the arena.
func (c *Collector) RecordAISpawn() { c.aiSpawns++ }

// RecordEject records one ejected-mass pellet.
func (c *Collector) RecordEject() { c.ejects++ }

// RecordLevelUp records a difficulty increase.
func (c *Collector) RecordLevelUp(level int) { c.levelUps++ }

// WindowClosed reports whether the current window has elapsed.
func (c *Collector) WindowClosed(elapsed float64) bool {
	return elapsed-c.windowStart >= c.windowSec
}

// Flush produces stats for the finished window and starts a new one.
// masses is the current per-agent total mass sample.
func (c *Collector) Flush(elapsed float64, tick int64, difficulty, food, viruses, powerUps, agents int, masses []float64) WindowStats {
	stats := WindowStats{
		WindowEnd:   elapsed,
		Tick:        tick,
		Difficulty:  difficulty,
		FoodCount:   food,
		VirusCount:  viruses,
		PowerCount:  powerUps,
		AgentCount:  agents,
		FoodEaten:   c.foodEaten,
		CombatEats:  c.combatEats,
		AIKills:     c.aiKills,
		HumanDeaths: c.humanDeaths,
		VirusSplits: c.virusSplits,
		PowerUpsHit: c.powerUps[0] + c.powerUps[1] + c.powerUps[2] + c.powerUps[3],
		AISpawns:    c.aiSpawns,
		Ejects:      c.ejects,
		LevelUps:    c.levelUps,
	}
	stats.fillMassStats(masses)

	*c = Collector{windowSec: c.windowSec, windowStart: elapsed}
	return stats
}
