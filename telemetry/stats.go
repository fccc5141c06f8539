package telemetry

import (
	"log/slog"
	"sort"

	"gonum.org/v1/gonum/stat"
)

// WindowStats holds aggregated statistics for one time window.
type WindowStats struct {
	WindowEnd  float64 `csv:"window_end"`
	Tick       int64   `csv:"tick"`
	Difficulty int     `csv:"difficulty"`

	// Population counts at window end
	FoodCount  int `csv:"food"`
	VirusCount int `csv:"viruses"`
	PowerCount int `csv:"powerups"`
	AgentCount int `csv:"agents"`

	// Events during the window
	FoodEaten   int `csv:"food_eaten"`
	CombatEats  int `csv:"combat_eats"`
	AIKills     int `csv:"ai_kills"`
	HumanDeaths int `csv:"human_deaths"`
	VirusSplits int `csv:"virus_splits"`
	PowerUpsHit int `csv:"powerups_hit"`
	AISpawns    int `csv:"ai_spawns"`
	Ejects      int `csv:"ejects"`
	LevelUps    int `csv:"level_ups"`

	// Agent mass distribution (sampled at window end)
	MassMean float64 `csv:"mass_mean"`
	MassStd  float64 `csv:"mass_std"`
	MassP10  float64 `csv:"mass_p10"`
	MassP50  float64 `csv:"mass_p50"`
	MassP90  float64 `csv:"mass_p90"`
}

// fillMassStats computes the mass distribution columns from a sample
// of per-agent total masses.
func (s *WindowStats) fillMassStats(masses []float64) {
	if len(masses) == 0 {
		return
	}
	sorted := make([]float64, len(masses))
	copy(sorted, masses)
	sort.Float64s(sorted)

	s.MassMean = stat.Mean(sorted, nil)
	if len(sorted) > 1 {
		s.MassStd = stat.StdDev(sorted, nil)
	}
	s.MassP10 = stat.Quantile(0.10, stat.Empirical, sorted, nil)
	s.MassP50 = stat.Quantile(0.50, stat.Empirical, sorted, nil)
	s.MassP90 = stat.Quantile(0.90, stat.Empirical, sorted, nil)
}

// Log emits the window stats through slog.
func (s WindowStats) Log() {
	slog.Info("window stats",
		"window_end", s.WindowEnd,
		"difficulty", s.Difficulty,
		"agents", s.AgentCount,
		"food", s.FoodCount,
		"food_eaten", s.FoodEaten,
		"combat_eats", s.CombatEats,
		"ai_kills", s.AIKills,
		"virus_splits", s.VirusSplits,
		"mass_mean", s.MassMean,
		"mass_p90", s.MassP90,
	)
}
