package telemetry

import (
	"math"
	"testing"

	"github.com/halcyon-games/mitos/components"
)

func approx(a, b, eps float64) bool {
	return math.Abs(a-b) <= eps
}

// TestWindowClosed verifies window boundary detection.
func TestWindowClosed(t *testing.T) {
	c := NewCollector(10)

	if c.WindowClosed(9.9) {
		t.Error("window closed early")
	}
	if !c.WindowClosed(10) {
		t.Error("window not closed at its boundary")
	}
}

// TestFlushCountsAndResets verifies event counters land in the stats
// row and the collector starts the next window empty.
func TestFlushCountsAndResets(t *testing.T) {
	c := NewCollector(10)

	c.RecordFoodEaten()
	c.RecordFoodEaten()
	c.RecordCombatEat()
	c.RecordElimination(true)
	c.RecordElimination(false)
	c.RecordVirusSplit()
	c.RecordPowerUp(components.PowerSpeed)
	c.RecordPowerUp(components.PowerShield)
	c.RecordAISpawn()
	c.RecordEject()
	c.RecordLevelUp(2)

	stats := c.Flush(10, 600, 2, 900, 20, 5, 12, nil)

	if stats.FoodEaten != 2 || stats.CombatEats != 1 {
		t.Errorf("eat counters: food=%d combat=%d", stats.FoodEaten, stats.CombatEats)
	}
	if stats.AIKills != 1 || stats.HumanDeaths != 1 {
		t.Errorf("eliminations: ai=%d human=%d", stats.AIKills, stats.HumanDeaths)
	}
	if stats.VirusSplits != 1 || stats.PowerUpsHit != 2 || stats.AISpawns != 1 ||
		stats.Ejects != 1 || stats.LevelUps != 1 {
		t.Errorf("event counters wrong: %+v", stats)
	}
	if stats.WindowEnd != 10 || stats.Tick != 600 || stats.Difficulty != 2 {
		t.Errorf("window header wrong: %+v", stats)
	}
	if stats.FoodCount != 900 || stats.VirusCount != 20 || stats.PowerCount != 5 || stats.AgentCount != 12 {
		t.Errorf("population columns wrong: %+v", stats)
	}

	// The next window starts clean at the flush time.
	next := c.Flush(20, 1200, 2, 0, 0, 0, 0, nil)
	if next.FoodEaten != 0 || next.CombatEats != 0 || next.PowerUpsHit != 0 {
		t.Errorf("counters survived flush: %+v", next)
	}
	if c.WindowClosed(25) {
		t.Error("window start not advanced by flush")
	}
}

// TestMassDistribution pins the percentile columns on a known sample.
func TestMassDistribution(t *testing.T) {
	masses := []float64{10, 1, 5, 3, 8, 2, 9, 4, 7, 6}

	c := NewCollector(10)
	stats := c.Flush(10, 0, 1, 0, 0, 0, len(masses), masses)

	if !approx(stats.MassMean, 5.5, 1e-9) {
		t.Errorf("mean = %v, want 5.5", stats.MassMean)
	}
	if stats.MassP10 != 1 || stats.MassP50 != 5 || stats.MassP90 != 9 {
		t.Errorf("percentiles = %v/%v/%v, want 1/5/9", stats.MassP10, stats.MassP50, stats.MassP90)
	}
	if stats.MassStd <= 0 {
		t.Errorf("std = %v, want > 0", stats.MassStd)
	}
}

// TestMassDistributionEmpty verifies an empty sample leaves the mass
// columns at zero rather than NaN.
func TestMassDistributionEmpty(t *testing.T) {
	c := NewCollector(10)
	stats := c.Flush(10, 0, 1, 0, 0, 0, 0, []float64{})

	if stats.MassMean != 0 || stats.MassStd != 0 || stats.MassP50 != 0 {
		t.Errorf("empty sample produced nonzero mass stats: %+v", stats)
	}
}

// TestMassDistributionSingle verifies a single agent yields sane stats.
func TestMassDistributionSingle(t *testing.T) {
	c := NewCollector(10)
	stats := c.Flush(10, 0, 1, 0, 0, 0, 1, []float64{42})

	if stats.MassMean != 42 || stats.MassP10 != 42 || stats.MassP90 != 42 {
		t.Errorf("single sample stats wrong: %+v", stats)
	}
	if stats.MassStd != 0 {
		t.Errorf("std of one sample = %v, want 0", stats.MassStd)
	}
}

// TestCollectorDefaultWindow verifies a non-positive window falls back
// to a sane default.
func TestCollectorDefaultWindow(t *testing.T) {
	c := NewCollector(0)
	if c.WindowClosed(9) {
		t.Error("default window shorter than expected")
	}
	if !c.WindowClosed(10) {
		t.Error("default window never closes")
	}
}
