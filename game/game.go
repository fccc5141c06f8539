// Package game implements the per-frame arena simulation: entity
// bookkeeping, spawning under an escalating difficulty curve, pairwise
// collision resolution, world-bounds enforcement, and leaderboard
// derivation.
package game

import (
	"log/slog"
	"math/rand"

	"github.com/mlange-42/ark/ecs"

	"github.com/halcyon-games/mitos/ai"
	"github.com/halcyon-games/mitos/components"
	"github.com/halcyon-games/mitos/config"
	"github.com/halcyon-games/mitos/systems"
	"github.com/halcyon-games/mitos/telemetry"
)

// EffectApplier applies a picked-up power-up to an agent. The default
// applier implements the four built-in effects; callers may override
// it to reroute effect application.
type EffectApplier func(g *Game, a *Agent, kind components.PowerUpKind)

// Options configures a new game.
type Options struct {
	Seed           int64
	ControlledName string
	// ControlledAI attaches the default greedy controller to the
	// controlled agent. Used by the headless runner; interactive
	// callers feed intents through SetControlledIntent instead.
	ControlledAI bool
	Collector    *telemetry.Collector
	ApplyEffect  EffectApplier // nil = built-in applier
}

// Game holds the complete authoritative simulation state. All mutation
// happens on the single caller thread, one Step per rendered frame;
// external readers only receive projections (Snapshot, Leaderboard)
// between ticks.
type Game struct {
	world *ecs.World
	rng   *rand.Rand
	opts  Options

	// Entity mappers, one per entity kind
	cellMapper   *ecs.Map4[components.Position, components.Velocity, components.Body, components.CellBody]
	pelletMapper *ecs.Map4[components.Position, components.Velocity, components.Body, components.Pellet]
	virusMapper  *ecs.Map4[components.Position, components.Velocity, components.Body, components.Virus]
	powerMapper  *ecs.Map4[components.Position, components.Velocity, components.Body, components.PowerUp]

	pelletFilter *ecs.Filter4[components.Position, components.Velocity, components.Body, components.Pellet]
	virusFilter  *ecs.Filter4[components.Position, components.Velocity, components.Body, components.Virus]
	powerFilter  *ecs.Filter4[components.Position, components.Velocity, components.Body, components.PowerUp]

	// Individual component mappers for lookups
	posMap    *ecs.Map1[components.Position]
	velMap    *ecs.Map1[components.Velocity]
	bodyMap   *ecs.Map1[components.Body]
	cellMap   *ecs.Map1[components.CellBody]
	pelletMap *ecs.Map1[components.Pellet]
	virusMap  *ecs.Map1[components.Virus]
	powerMap  *ecs.Map1[components.PowerUp]

	// Agent registry; the ordered slice fixes iteration order for the
	// combat scan, the index serves lookups by ID.
	agents       []*Agent
	agentIndex   map[uint32]*Agent
	nextAgentID  uint32
	controlledID uint32

	// Spatial indices, rebuilt each tick
	foodGrid  *systems.SpatialGrid
	virusGrid *systems.SpatialGrid
	powerGrid *systems.SpatialGrid

	effects   *EffectQueue
	scheduler *Scheduler
	collector *telemetry.Collector
	noise     *systems.PerlinNoise

	applyEffect EffectApplier

	// Per-tick removal marks; entities disappear from scans the moment
	// they are marked and are deleted from the ECS in the cleanup pass.
	deadPellets  map[ecs.Entity]struct{}
	deadViruses  map[ecs.Entity]struct{}
	deadPowerUps map[ecs.Entity]struct{}
	deadCells    map[ecs.Entity]struct{}

	neighborBuf []systems.Neighbor
	viewBuf     []ai.EntityView

	foodCount  int
	virusCount int
	powerCount int

	powerSpawnTimer float64
	aiSpawnTimer    float64

	elapsed    float64
	tick       int64
	difficulty int

	leaderboard    []LeaderboardEntry
	controlledDied bool

	worldW, worldH float32
}

// NewGame creates a game with the full initial population.
func NewGame(opts Options) *Game {
	g := &Game{opts: opts}
	g.reset()
	return g
}

// Reset discards all entity collections and timers atomically and
// rebuilds the initial population. There is no partial-reset state.
func (g *Game) Reset() {
	g.reset()
}

func (g *Game) reset() {
	cfg := config.Cfg()

	world := ecs.NewWorld()
	g.world = world
	g.rng = rand.New(rand.NewSource(g.opts.Seed))
	g.worldW = cfg.Derived.WorldW32
	g.worldH = cfg.Derived.WorldH32

	g.cellMapper = ecs.NewMap4[components.Position, components.Velocity, components.Body, components.CellBody](world)
	g.pelletMapper = ecs.NewMap4[components.Position, components.Velocity, components.Body, components.Pellet](world)
	g.virusMapper = ecs.NewMap4[components.Position, components.Velocity, components.Body, components.Virus](world)
	g.powerMapper = ecs.NewMap4[components.Position, components.Velocity, components.Body, components.PowerUp](world)

	g.pelletFilter = ecs.NewFilter4[components.Position, components.Velocity, components.Body, components.Pellet](world)
	g.virusFilter = ecs.NewFilter4[components.Position, components.Velocity, components.Body, components.Virus](world)
	g.powerFilter = ecs.NewFilter4[components.Position, components.Velocity, components.Body, components.PowerUp](world)

	g.posMap = ecs.NewMap1[components.Position](world)
	g.velMap = ecs.NewMap1[components.Velocity](world)
	g.bodyMap = ecs.NewMap1[components.Body](world)
	g.cellMap = ecs.NewMap1[components.CellBody](world)
	g.pelletMap = ecs.NewMap1[components.Pellet](world)
	g.virusMap = ecs.NewMap1[components.Virus](world)
	g.powerMap = ecs.NewMap1[components.PowerUp](world)

	g.agents = g.agents[:0]
	g.agentIndex = make(map[uint32]*Agent)
	g.nextAgentID = 1
	g.controlledID = 0

	gridSize := float32(cfg.Physics.GridCellSize)
	g.foodGrid = systems.NewSpatialGrid(g.worldW, g.worldH, gridSize)
	g.virusGrid = systems.NewSpatialGrid(g.worldW, g.worldH, gridSize)
	g.powerGrid = systems.NewSpatialGrid(g.worldW, g.worldH, gridSize)

	g.effects = NewEffectQueue()
	g.scheduler = NewScheduler()
	g.collector = g.opts.Collector
	g.noise = systems.NewPerlinNoise(g.opts.Seed)

	g.applyEffect = g.opts.ApplyEffect
	if g.applyEffect == nil {
		g.applyEffect = defaultApplyEffect
	}

	g.deadPellets = make(map[ecs.Entity]struct{})
	g.deadViruses = make(map[ecs.Entity]struct{})
	g.deadPowerUps = make(map[ecs.Entity]struct{})
	g.deadCells = make(map[ecs.Entity]struct{})

	g.foodCount = 0
	g.virusCount = 0
	g.powerCount = 0
	g.powerSpawnTimer = 0
	g.aiSpawnTimer = 0
	g.elapsed = 0
	g.tick = 0
	g.difficulty = 1
	g.leaderboard = g.leaderboard[:0]
	g.controlledDied = false

	g.spawnInitialPopulation()
}

// Step advances the simulation by dt seconds and reports whether the
// controlled agent's cell collection became empty this tick. The caller
// decides what a death means; the simulation keeps ticking either way.
func (g *Game) Step(dt float64) bool {
	cfg := config.Cfg()
	if dt > cfg.Physics.MaxDT {
		dt = cfg.Physics.MaxDT
	}
	if dt <= 0 {
		return false
	}

	g.controlledDied = false
	g.elapsed += dt

	// Deferred work first so replacements spawned this tick take part
	// in the same tick's collision pass.
	g.runPhase("schedule", func() { g.scheduler.Fire(g.elapsed) })
	g.runPhase("difficulty", g.updateDifficulty)
	g.runPhase("spawner", func() { g.updateSpawning(dt) })
	g.runPhase("agents", func() { g.updateAgents(dt) })
	g.runPhase("free-entities", func() { g.updateFreeEntities(dt) })

	g.rebuildGrids()

	g.runPhase("agent-food", g.collideAgentFood)
	g.runPhase("combat", g.collideCombat)
	g.runPhase("agent-virus", g.collideViruses)
	g.runPhase("agent-powerup", g.collidePowerUps)
	g.runPhase("ejected-virus", g.collideEjectedMass)

	g.runPhase("bounds", g.enforceBounds)
	g.runPhase("cleanup", g.removeDeadEntities)
	g.runPhase("leaderboard", g.updateLeaderboard)

	g.tick++
	return g.controlledDied
}

// runPhase isolates a sub-phase: a panic inside one phase skips the
// rest of that phase for this tick only and the loop continues. The
// game must keep running in a degraded state rather than freeze.
func (g *Game) runPhase(name string, fn func()) {
	defer func() {
		if r := recover(); r != nil {
			slog.Error("simulation phase failed; skipping for this tick",
				"phase", name, "tick", g.tick, "panic", r)
		}
	}()
	fn()
}

// rebuildGrids refreshes the free-entity spatial indices from the
// authoritative collections.
func (g *Game) rebuildGrids() {
	g.foodGrid.Clear()
	query := g.pelletFilter.Query()
	for query.Next() {
		pos, _, _, _ := query.Get()
		g.foodGrid.Insert(query.Entity(), pos.X, pos.Y)
	}

	g.virusGrid.Clear()
	vq := g.virusFilter.Query()
	for vq.Next() {
		pos, _, _, _ := vq.Get()
		g.virusGrid.Insert(vq.Entity(), pos.X, pos.Y)
	}

	g.powerGrid.Clear()
	pq := g.powerFilter.Query()
	for pq.Next() {
		pos, _, _, _ := pq.Get()
		g.powerGrid.Insert(pq.Entity(), pos.X, pos.Y)
	}
}

// updateFreeEntities integrates pellet motion (ejected mass slows to a
// stop and becomes ordinary food) and applies magnet attraction.
func (g *Game) updateFreeEntities(dt float64) {
	cfg := config.Cfg()
	dt32 := float32(dt)
	drag := float32(cfg.Physics.PelletDrag)

	var magnetX, magnetY, magnetRange, magnetPull float32
	magnetOn := false
	if c := g.agentIndex[g.controlledID]; c != nil && c.HasEffect(components.PowerMagnet) {
		magnetX, magnetY = g.agentCentroid(c)
		magnetRange = float32(cfg.PowerUps.MagnetRange)
		magnetPull = float32(cfg.PowerUps.MagnetPull)
		magnetOn = true
	}

	query := g.pelletFilter.Query()
	for query.Next() {
		pos, vel, _, _ := query.Get()

		if !systems.Finite(pos.X) || !systems.Finite(pos.Y) {
			// Malformed pellet: cull it, never let it touch the rest.
			g.deadPellets[query.Entity()] = struct{}{}
			continue
		}

		if magnetOn {
			dx := magnetX - pos.X
			dy := magnetY - pos.Y
			if dx*dx+dy*dy < magnetRange*magnetRange {
				dir := systems.Vec2{X: dx, Y: dy}.Normalize()
				vel.X += dir.X * magnetPull * dt32
				vel.Y += dir.Y * magnetPull * dt32
			}
		}

		if vel.X != 0 || vel.Y != 0 {
			pos.X += vel.X * dt32
			pos.Y += vel.Y * dt32

			decay := 1 - drag*dt32
			if decay < 0 {
				decay = 0
			}
			vel.X *= decay
			vel.Y *= decay
			if vel.X*vel.X+vel.Y*vel.Y < 1 {
				vel.X, vel.Y = 0, 0
			}
		}
	}
}

// enforceBounds clamps every mobile entity into the arena rectangle.
// Agent cells get a soft wall bounce; free entities clamp only.
func (g *Game) enforceBounds() {
	cfg := config.Cfg()
	damping := cfg.Derived.WallDamping

	for _, a := range g.agents {
		for _, e := range a.Cells {
			if _, dead := g.deadCells[e]; dead {
				continue
			}
			pos := g.posMap.Get(e)
			vel := g.velMap.Get(e)
			body := g.bodyMap.Get(e)
			if pos == nil || vel == nil || body == nil {
				continue
			}
			systems.BounceOffWalls(pos, vel, body.Radius, g.worldW, g.worldH, damping)
		}
	}

	query := g.pelletFilter.Query()
	for query.Next() {
		pos, _, body, _ := query.Get()
		systems.ClampToWorld(pos, body.Radius, g.worldW, g.worldH)
	}
	vq := g.virusFilter.Query()
	for vq.Next() {
		pos, _, body, _ := vq.Get()
		systems.ClampToWorld(pos, body.Radius, g.worldW, g.worldH)
	}
	pq := g.powerFilter.Query()
	for pq.Next() {
		pos, _, body, _ := pq.Get()
		systems.ClampToWorld(pos, body.Radius, g.worldW, g.worldH)
	}
}

// removeDeadEntities deletes every entity marked dead during the tick
// and compacts the agent list. Marks are cleared for the next tick.
func (g *Game) removeDeadEntities() {
	// RemoveEntity, not the mapper's Remove: the latter only strips
	// components and would leak a permanently-alive empty entity per
	// consumed pellet.
	for e := range g.deadPellets {
		g.world.RemoveEntity(e)
		g.foodCount--
		delete(g.deadPellets, e)
	}
	for e := range g.deadViruses {
		g.world.RemoveEntity(e)
		g.virusCount--
		delete(g.deadViruses, e)
	}
	for e := range g.deadPowerUps {
		g.world.RemoveEntity(e)
		g.powerCount--
		delete(g.deadPowerUps, e)
	}
	for e := range g.deadCells {
		g.world.RemoveEntity(e)
		delete(g.deadCells, e)
	}

	// Compact eliminated agents, preserving order.
	alive := g.agents[:0]
	for _, a := range g.agents {
		if a.eliminated {
			delete(g.agentIndex, a.ID)
			continue
		}
		alive = append(alive, a)
	}
	g.agents = alive
}

// Elapsed returns total simulated seconds.
func (g *Game) Elapsed() float64 { return g.elapsed }

// Tick returns the current simulation tick.
func (g *Game) Tick() int64 { return g.tick }

// Difficulty returns the current difficulty level (>= 1).
func (g *Game) Difficulty() int { return g.difficulty }

// Effects returns the outbound effect queue for the caller to drain
// between ticks.
func (g *Game) Effects() *EffectQueue { return g.effects }

// ControlledAgent returns the human-controlled agent, or nil after it
// has been eliminated.
func (g *Game) ControlledAgent() *Agent { return g.agentIndex[g.controlledID] }

// SetControlledIntent feeds the human player's input for the next tick.
func (g *Game) SetControlledIntent(intent ai.Intent) {
	if a := g.agentIndex[g.controlledID]; a != nil {
		a.intent = intent
	}
}

// AgentMasses samples every live agent's total mass, for telemetry.
func (g *Game) AgentMasses() []float64 {
	masses := make([]float64, 0, len(g.agents))
	for _, a := range g.agents {
		if !a.eliminated {
			masses = append(masses, float64(g.agentMass(a)))
		}
	}
	return masses
}

// Counts returns the current food, virus, power-up, and agent counts.
func (g *Game) Counts() (food, viruses, powerUps, agents int) {
	return g.foodCount, g.virusCount, g.powerCount, len(g.agents)
}
