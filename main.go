// Command mitos runs the arena simulation headless: a controlled agent
// driven by the default AI plays against the escalating field while
// telemetry windows stream to slog and CSV. The interactive client
// embeds the game package directly and feeds real input instead.
package main

import (
	"flag"
	"log/slog"
	"os"
	"time"

	"github.com/halcyon-games/mitos/config"
	"github.com/halcyon-games/mitos/game"
	"github.com/halcyon-games/mitos/telemetry"
)

func main() {
	configPath := flag.String("config", "", "Path to config.yaml (empty = use defaults)")
	seed := flag.Int64("seed", 0, "RNG seed (0 = time-based)")
	maxTicks := flag.Int("max-ticks", 0, "Stop after N ticks (0 = unlimited)")
	outputDir := flag.String("output-dir", "", "Output directory for CSV logs and config snapshot")
	logStats := flag.Bool("log-stats", false, "Output window stats via slog")
	statsWindow := flag.Float64("stats-window", 0, "Stats window size in seconds (0 = use config)")
	name := flag.String("name", "Player", "Controlled agent name")

	flag.Parse()

	if err := config.Init(*configPath); err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}
	cfg := config.Cfg()

	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	rngSeed := *seed
	if rngSeed == 0 {
		rngSeed = time.Now().UnixNano()
	}

	windowSec := cfg.Telemetry.StatsWindow
	if *statsWindow > 0 {
		windowSec = *statsWindow
	}
	collector := telemetry.NewCollector(windowSec)

	output, err := telemetry.NewOutputManager(*outputDir)
	if err != nil {
		slog.Error("failed to create output manager", "error", err)
		os.Exit(1)
	}
	defer output.Close()
	if err := output.WriteConfig(cfg); err != nil {
		slog.Error("failed to write config snapshot", "error", err)
	}

	g := game.NewGame(game.Options{
		Seed:           rngSeed,
		ControlledName: *name,
		ControlledAI:   true,
		Collector:      collector,
	})

	slog.Info("simulation started", "seed", rngSeed, "world_w", cfg.World.Width, "world_h", cfg.World.Height)

	const dt = 1.0 / 60.0
	deaths := 0

	for tick := 0; *maxTicks == 0 || tick < *maxTicks; tick++ {
		died := g.Step(dt)

		// Effects are fire-and-forget; headless we simply discard them.
		g.Effects().Drain()

		if died {
			deaths++
			slog.Info("controlled agent eliminated", "tick", g.Tick(), "deaths", deaths)
		}

		if collector.WindowClosed(g.Elapsed()) {
			food, viruses, powerUps, agents := g.Counts()
			stats := collector.Flush(g.Elapsed(), g.Tick(), g.Difficulty(),
				food, viruses, powerUps, agents, g.AgentMasses())
			if *logStats {
				stats.Log()
			}
			if err := output.WriteTelemetry(stats); err != nil {
				slog.Error("failed to write telemetry", "error", err)
			}
		}
	}

	slog.Info("simulation finished", "ticks", g.Tick(), "elapsed", g.Elapsed(), "difficulty", g.Difficulty())
}
