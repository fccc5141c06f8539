package game

import (
	"fmt"
	"log/slog"

	"github.com/halcyon-games/mitos/ai"
	"github.com/halcyon-games/mitos/components"
	"github.com/halcyon-games/mitos/config"
	"github.com/halcyon-games/mitos/systems"
)

// AI name pools escalate with difficulty alongside starting mass.
var (
	namesTier1 = []string{"Blob", "Squish", "Dot", "Puddle", "Mote", "Speck", "Bubble", "Crumb"}
	namesTier2 = []string{"Hunter", "Striker", "Vortex", "Razor", "Shadow", "Prowler", "Viper", "Talon"}
	namesTier3 = []string{"Apex", "Leviathan", "Colossus", "Tempest", "Behemoth", "Overlord", "Titan", "Nemesis"}
)

var foodPalette = []components.Color{
	{R: 255, G: 99, B: 132},
	{R: 255, G: 205, B: 86},
	{R: 75, G: 192, B: 192},
	{R: 153, G: 102, B: 255},
	{R: 255, G: 159, B: 64},
	{R: 54, G: 162, B: 235},
}

var agentPalette = []components.Color{
	{R: 231, G: 76, B: 60},
	{R: 46, G: 204, B: 113},
	{R: 52, G: 152, B: 219},
	{R: 155, G: 89, B: 182},
	{R: 241, G: 196, B: 15},
	{R: 230, G: 126, B: 34},
	{R: 26, G: 188, B: 156},
}

// spawnInitialPopulation seeds the arena: the controlled agent, the
// starting AI field, and the free-entity populations.
func (g *Game) spawnInitialPopulation() {
	cfg := config.Cfg()

	name := g.opts.ControlledName
	if name == "" {
		name = "Player"
	}
	var controller ai.Controller
	if g.opts.ControlledAI {
		controller = ai.NewGreedy(g.rng.Int63())
	}
	controlled := g.spawnAgent(name, false, float32(cfg.Cells.StartMass), controller)
	g.controlledID = controlled.ID

	for i := 0; i < cfg.Population.InitialAI; i++ {
		g.spawnAIAgent()
	}
	for i := 0; i < cfg.Population.InitialFood; i++ {
		g.spawnClusteredPellet()
	}
	for i := 0; i < cfg.Population.InitialViruses; i++ {
		g.spawnVirusAway()
	}
	for i := 0; i < cfg.Population.InitialPowerUps; i++ {
		g.spawnPowerUp()
	}

	g.powerSpawnTimer = g.powerUpCadence()
	g.aiSpawnTimer = g.aiCadence()
}

// updateDifficulty advances the escalation curve: one level per
// configured period of elapsed time, never regressing. Each increase
// injects extra viruses, plus an extra AI agent on even levels.
func (g *Game) updateDifficulty() {
	cfg := config.Cfg()
	newLevel := int(g.elapsed/cfg.Difficulty.Period) + 1
	if newLevel <= g.difficulty {
		return
	}

	for level := g.difficulty + 1; level <= newLevel; level++ {
		g.difficulty = level

		for i := 0; i < level-1; i++ {
			if g.virusCount < g.virusCap() {
				g.spawnVirusAway()
			}
		}
		if level%2 == 0 && len(g.agents) < g.agentCap() {
			g.spawnAIAgent()
		}

		slog.Info("difficulty increased", "level", level, "elapsed", g.elapsed)
		if g.collector != nil {
			g.collector.RecordLevelUp(level)
		}
	}
}

// updateSpawning tops up the free-entity populations toward their
// difficulty-scaled targets and runs the power-up and AI cadences.
func (g *Game) updateSpawning(dt float64) {
	cfg := config.Cfg()

	// Food floor scales with difficulty; the per-tick top-up is capped
	// so a depleted arena refills over many frames instead of stalling
	// one.
	foodTarget := cfg.Population.FoodBase + cfg.Population.FoodPerLevel*g.difficulty
	topUp := cfg.Population.FoodTopUpBase + g.difficulty
	for i := 0; i < topUp && g.foodCount < foodTarget; i++ {
		g.spawnClusteredPellet()
	}

	// Keep the virus population at its initial floor; destroyed
	// viruses come back through scheduled replacements.
	if g.virusCount < cfg.Population.InitialViruses && g.virusCount < g.virusCap() {
		g.spawnVirusAway()
	}

	g.powerSpawnTimer -= dt
	if g.powerSpawnTimer <= 0 {
		if g.powerCount < cfg.Population.InitialPowerUps*2 {
			g.spawnPowerUp()
		}
		g.powerSpawnTimer = g.powerUpCadence()
	}

	g.aiSpawnTimer -= dt
	if g.aiSpawnTimer <= 0 {
		if len(g.agents) < g.agentCap() {
			g.spawnAIAgent()
		}
		g.aiSpawnTimer = g.aiCadence()
	}
}

// virusCap returns the difficulty-scaled virus population ceiling.
func (g *Game) virusCap() int {
	cfg := config.Cfg()
	return cfg.Population.VirusCapBase + cfg.Population.VirusCapPerLevel*g.difficulty
}

// agentCap returns the difficulty-scaled total agent ceiling.
func (g *Game) agentCap() int {
	return config.Cfg().Population.AgentCapBase + g.difficulty
}

// powerUpCadence shortens with difficulty down to its floor.
func (g *Game) powerUpCadence() float64 {
	cfg := config.Cfg()
	cadence := cfg.PowerUps.CadenceBase - cfg.PowerUps.CadenceStep*float64(g.difficulty-1)
	if cadence < cfg.PowerUps.CadenceMin {
		cadence = cfg.PowerUps.CadenceMin
	}
	return cadence
}

// aiCadence shortens with difficulty down to its floor.
func (g *Game) aiCadence() float64 {
	cfg := config.Cfg()
	cadence := cfg.AI.CadenceBase - cfg.AI.CadenceStep*float64(g.difficulty-1)
	if cadence < cfg.AI.CadenceMin {
		cadence = cfg.AI.CadenceMin
	}
	return cadence
}

// spawnAgent registers a new agent with one starting cell at a random
// position.
func (g *Game) spawnAgent(name string, isAI bool, mass float32, controller ai.Controller) *Agent {
	a := &Agent{
		ID:         g.nextAgentID,
		Name:       name,
		IsAI:       isAI,
		Color:      agentPalette[g.rng.Intn(len(agentPalette))],
		controller: controller,
		effects:    make(map[components.PowerUpKind]float64),
	}
	g.nextAgentID++

	radius := systems.RadiusFromMass(mass)
	x := radius + g.rng.Float32()*(g.worldW-2*radius)
	y := radius + g.rng.Float32()*(g.worldH-2*radius)
	g.spawnCell(a, x, y, 0, 0, mass, 0)

	g.agents = append(g.agents, a)
	g.agentIndex[a.ID] = a
	return a
}

// spawnAIAgent creates one AI opponent. Starting mass and the name
// pool escalate with difficulty.
func (g *Game) spawnAIAgent() *Agent {
	cfg := config.Cfg()

	var pool []string
	switch {
	case g.difficulty >= 5:
		pool = namesTier3
	case g.difficulty >= 3:
		pool = namesTier2
	default:
		pool = namesTier1
	}
	name := fmt.Sprintf("%s-%d", pool[g.rng.Intn(len(pool))], g.nextAgentID)

	mass := float32(cfg.AI.StartMass + cfg.AI.MassPerLevel*float64(g.difficulty-1))
	a := g.spawnAgent(name, true, mass, ai.NewGreedy(g.rng.Int63()))

	if g.collector != nil {
		g.collector.RecordAISpawn()
	}
	return a
}

// spawnReplacementAI is the deferred respawn for a destroyed AI agent.
// The delay keeps eliminations from clustering instant respawns; the
// cap still binds at fire time.
func (g *Game) spawnReplacementAI() {
	if len(g.agents) >= g.agentCap() {
		return
	}
	g.spawnAIAgent()
}

// spawnClusteredPellet places one food pellet, biased into organic
// noise clusters with a uniform fallback.
func (g *Game) spawnClusteredPellet() {
	cfg := config.Cfg()
	scale := cfg.Food.ClusterScale

	var x, y float32
	for try := 0; try < 6; try++ {
		x = g.rng.Float32() * g.worldW
		y = g.rng.Float32() * g.worldH
		density := (g.noise.Noise2D(float64(x)*scale, float64(y)*scale) + 1) / 2
		if g.rng.Float64() < density {
			break
		}
	}

	value := float32(cfg.Food.ValueMin + g.rng.Float64()*(cfg.Food.ValueMax-cfg.Food.ValueMin))
	color := foodPalette[g.rng.Intn(len(foodPalette))]
	g.spawnPellet(x, y, 0, 0, value, color)
}

// spawnPellet creates one food entity. Nonzero velocity marks it as
// ejected mass.
func (g *Game) spawnPellet(x, y, vx, vy, value float32, color components.Color) {
	pos := components.Position{X: x, Y: y}
	vel := components.Velocity{X: vx, Y: vy}
	radius := systems.RadiusFromMass(value)
	if radius < 2 {
		radius = 2
	}
	body := components.Body{Radius: radius}
	pellet := components.Pellet{Value: value, Color: color}
	g.pelletMapper.NewEntity(&pos, &vel, &body, &pellet)
	g.foodCount++
}

// spawnVirusAway places a virus at least the configured distance from
// the controlled agent's centroid, best-effort over a bounded number
// of retries with an unconstrained fallback.
func (g *Game) spawnVirusAway() {
	cfg := config.Cfg()
	minDist := float32(cfg.Virus.MinSpawnDistance)

	var cx, cy float32
	constrained := false
	if c := g.agentIndex[g.controlledID]; c != nil && !c.eliminated {
		cx, cy = g.agentCentroid(c)
		constrained = true
	}

	var x, y float32
	for try := 0; try < cfg.Virus.SpawnRetries; try++ {
		x = g.rng.Float32() * g.worldW
		y = g.rng.Float32() * g.worldH
		if !constrained || systems.SquaredDistance(x, y, cx, cy) >= minDist*minDist {
			break
		}
	}
	g.spawnVirusAt(x, y)
}

// spawnVirusAt creates one virus entity at the given position.
func (g *Game) spawnVirusAt(x, y float32) {
	cfg := config.Cfg()
	mass := float32(cfg.Virus.StartMass)
	pos := components.Position{X: x, Y: y}
	vel := components.Velocity{}
	body := components.Body{Radius: systems.RadiusFromMass(mass)}
	virus := components.Virus{Mass: mass}
	g.virusMapper.NewEntity(&pos, &vel, &body, &virus)
	g.virusCount++
}

// spawnReplacementVirus is the deferred replacement for a consumed
// virus; the cap still binds at fire time.
func (g *Game) spawnReplacementVirus() {
	if g.virusCount >= g.virusCap() {
		return
	}
	g.spawnVirusAway()
}

// spawnPowerUp creates one power-up of a uniformly random kind.
func (g *Game) spawnPowerUp() {
	cfg := config.Cfg()
	kind := components.PowerUpKind(g.rng.Intn(components.NumPowerUpKinds))

	pos := components.Position{
		X: g.rng.Float32() * g.worldW,
		Y: g.rng.Float32() * g.worldH,
	}
	vel := components.Velocity{}
	body := components.Body{Radius: float32(cfg.PowerUps.Radius)}
	power := components.PowerUp{Kind: kind}
	g.powerMapper.NewEntity(&pos, &vel, &body, &power)
	g.powerCount++
}

// spawnReplacementPowerUp is the deferred replacement for a consumed
// power-up.
func (g *Game) spawnReplacementPowerUp() {
	if g.powerCount >= config.Cfg().Population.InitialPowerUps*2 {
		return
	}
	g.spawnPowerUp()
}
