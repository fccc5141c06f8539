package game

import (
	"math"

	"github.com/mlange-42/ark/ecs"

	"github.com/halcyon-games/mitos/ai"
	"github.com/halcyon-games/mitos/components"
	"github.com/halcyon-games/mitos/config"
	"github.com/halcyon-games/mitos/systems"
)

// Agent is one player, human or AI. Agents exclusively own their cell
// entities; the World owns the agents.
type Agent struct {
	ID    uint32
	Name  string
	Score int
	IsAI  bool
	Color components.Color

	// Cells in insertion order. At least one entry while alive; the
	// agent is eliminated exactly once when this empties.
	Cells []ecs.Entity

	controller ai.Controller
	intent     ai.Intent

	// Active status effects with remaining seconds.
	effects map[components.PowerUpKind]float64

	eliminated bool
}

// HasEffect reports whether the agent currently holds the effect.
func (a *Agent) HasEffect(kind components.PowerUpKind) bool {
	return a.effects[kind] > 0
}

// AddEffect grants or refreshes a timed effect.
func (a *Agent) AddEffect(kind components.PowerUpKind, duration float64) {
	if a.effects == nil {
		a.effects = make(map[components.PowerUpKind]float64)
	}
	if a.effects[kind] < duration {
		a.effects[kind] = duration
	}
}

func (a *Agent) tickEffects(dt float64) {
	for kind, remaining := range a.effects {
		remaining -= dt
		if remaining <= 0 {
			delete(a.effects, kind)
		} else {
			a.effects[kind] = remaining
		}
	}
}

// defaultApplyEffect implements the four built-in power-up effects.
func defaultApplyEffect(g *Game, a *Agent, kind components.PowerUpKind) {
	cfg := config.Cfg()
	switch kind {
	case components.PowerMassBoost:
		// Instant: scale every cell's mass once.
		factor := float32(cfg.PowerUps.MassFactor)
		for _, e := range a.Cells {
			cell := g.cellMap.Get(e)
			body := g.bodyMap.Get(e)
			if cell == nil || body == nil {
				continue
			}
			cell.Mass *= factor
			body.Radius = systems.RadiusFromMass(cell.Mass)
		}
	default:
		a.AddEffect(kind, cfg.PowerUps.Duration)
	}
}

// updateAgents applies controller intents and integrates cell motion.
// Runs before the collision pass so every scan sees current positions.
func (g *Game) updateAgents(dt float64) {
	cfg := config.Cfg()
	dt32 := float32(dt)

	view := g.buildEntityView()

	for _, a := range g.agents {
		if a.eliminated {
			continue
		}

		a.tickEffects(dt)

		if a.controller != nil {
			cx, cy := g.agentCentroid(a)
			a.intent = a.controller.Decide(ai.SelfView{
				ID:        a.ID,
				X:         cx,
				Y:         cy,
				Mass:      g.agentMass(a),
				CellCount: len(a.Cells),
			}, view)
		}

		dir := systems.Vec2{X: a.intent.DirX, Y: a.intent.DirY}.Normalize()

		speedScale := float32(1)
		if a.HasEffect(components.PowerSpeed) {
			speedScale = float32(cfg.PowerUps.SpeedFactor)
		}

		g.moveCells(a, dir, speedScale, dt32)

		if a.intent.Split {
			g.splitAgent(a, dir)
			a.intent.Split = false
		}
		if a.intent.Eject {
			g.ejectMass(a, dir)
			a.intent.Eject = false
		}

		g.resolveSiblings(a)

		if len(a.Cells) == 0 {
			g.eliminateAgent(a, nil)
		}
	}
}

// moveCells steers each cell toward the intent direction at a
// mass-dependent speed and integrates motion. Cells with malformed
// state are dropped rather than allowed to corrupt the tick.
func (g *Game) moveCells(a *Agent, dir systems.Vec2, speedScale, dt32 float32) {
	cfg := config.Cfg()
	baseSpeed := float32(cfg.Cells.BaseSpeed)
	startMass := float32(cfg.Cells.StartMass)

	kept := a.Cells[:0]
	for _, e := range a.Cells {
		pos := g.posMap.Get(e)
		vel := g.velMap.Get(e)
		body := g.bodyMap.Get(e)
		cell := g.cellMap.Get(e)
		if pos == nil || vel == nil || body == nil || cell == nil ||
			!systems.Finite(pos.X) || !systems.Finite(pos.Y) || !systems.Finite(cell.Mass) {
			g.deadCells[e] = struct{}{}
			continue
		}
		kept = append(kept, e)

		// Bigger cells move slower: speed falls with the square root
		// of mass relative to the starting mass.
		speed := baseSpeed * speedScale
		if cell.Mass > startMass {
			speed *= float32(math.Sqrt(float64(startMass) / float64(cell.Mass)))
		}

		desiredX := dir.X * speed
		desiredY := dir.Y * speed

		// Smooth approach so split/bounce launch velocities blend out
		// instead of snapping.
		blend := systems.Clamp(6*dt32, 0, 1)
		vel.X += (desiredX - vel.X) * blend
		vel.Y += (desiredY - vel.Y) * blend

		pos.X += vel.X * dt32
		pos.Y += vel.Y * dt32

		if cell.MergeCooldown > 0 {
			cell.MergeCooldown -= dt32
			if cell.MergeCooldown <= 0 {
				cell.MergeCooldown = 0
				cell.CanMerge = true
			}
		}
	}
	a.Cells = kept
}

// splitAgent halves every splittable cell, launching the new half
// along the intent direction. Both halves start merge-ineligible.
func (g *Game) splitAgent(a *Agent, dir systems.Vec2) {
	cfg := config.Cfg()
	minMass := float32(cfg.Cells.MinMass)
	cooldown := float32(cfg.Cells.MergeCooldown)
	launch := float32(cfg.Cells.SplitLaunch)

	if dir.X == 0 && dir.Y == 0 {
		dir = systems.Vec2{X: 1, Y: 0}
	}

	// Snapshot: new cells must not be re-split in the same pass.
	existing := make([]ecs.Entity, len(a.Cells))
	copy(existing, a.Cells)

	for _, e := range existing {
		if len(a.Cells) >= cfg.Cells.MaxCells {
			break
		}
		cell := g.cellMap.Get(e)
		pos := g.posMap.Get(e)
		body := g.bodyMap.Get(e)
		if cell == nil || pos == nil || body == nil || cell.Mass < 2*minMass {
			continue
		}

		cell.Mass /= 2
		body.Radius = systems.RadiusFromMass(cell.Mass)
		cell.CanMerge = false
		cell.MergeCooldown = cooldown

		g.spawnCell(a, pos.X+dir.X*body.Radius, pos.Y+dir.Y*body.Radius,
			dir.X*launch, dir.Y*launch, cell.Mass, cooldown)
	}
}

// ejectMass expels a fixed chunk of mass from each sufficiently large
// cell as a fast-moving pellet. Moving pellets are what feed viruses.
func (g *Game) ejectMass(a *Agent, dir systems.Vec2) {
	cfg := config.Cfg()
	ejectMass := float32(cfg.Cells.EjectMass)
	minMass := float32(cfg.Cells.MinMass)
	speed := float32(cfg.Cells.EjectSpeed)

	if dir.X == 0 && dir.Y == 0 {
		return
	}

	for _, e := range a.Cells {
		cell := g.cellMap.Get(e)
		pos := g.posMap.Get(e)
		body := g.bodyMap.Get(e)
		if cell == nil || pos == nil || body == nil || cell.Mass < ejectMass+minMass {
			continue
		}

		cell.Mass -= ejectMass
		body.Radius = systems.RadiusFromMass(cell.Mass)

		px := pos.X + dir.X*(body.Radius+2)
		py := pos.Y + dir.Y*(body.Radius+2)
		g.spawnPellet(px, py, dir.X*speed, dir.Y*speed, ejectMass, cell.Color)
		g.effects.Trail(px, py, cell.Color, systems.RadiusFromMass(ejectMass))
		if g.collector != nil {
			g.collector.RecordEject()
		}
	}
}

// resolveSiblings handles same-agent cell contact: merge-eligible
// pairs recombine, the rest push apart. Cross-agent combat rules are
// never applied here.
func (g *Game) resolveSiblings(a *Agent) {
	cfg := config.Cfg()
	boost := cfg.Derived.BounceBoost

	for i := 0; i < len(a.Cells); i++ {
		for j := i + 1; j < len(a.Cells); j++ {
			ea, eb := a.Cells[i], a.Cells[j]
			posA, posB := g.posMap.Get(ea), g.posMap.Get(eb)
			velA, velB := g.velMap.Get(ea), g.velMap.Get(eb)
			bodyA, bodyB := g.bodyMap.Get(ea), g.bodyMap.Get(eb)
			cellA, cellB := g.cellMap.Get(ea), g.cellMap.Get(eb)
			if posA == nil || posB == nil || velA == nil || velB == nil ||
				bodyA == nil || bodyB == nil || cellA == nil || cellB == nil {
				continue
			}
			if !systems.Overlaps(posA.X, posA.Y, bodyA.Radius, posB.X, posB.Y, bodyB.Radius) {
				continue
			}

			if cellA.CanMerge && cellB.CanMerge {
				// Recombine: the earlier cell absorbs the later whole.
				cellA.Mass += cellB.Mass
				bodyA.Radius = systems.RadiusFromMass(cellA.Mass)
				g.deadCells[eb] = struct{}{}
				a.removeCell(eb)
				j--
				continue
			}

			systems.Bounce(posA, velA, cellA.Mass, bodyA.Radius,
				posB, velB, cellB.Mass, bodyB.Radius, boost)
		}
	}
}

// removeCell drops one entity from the agent's cell list.
func (a *Agent) removeCell(e ecs.Entity) {
	for i, c := range a.Cells {
		if c == e {
			a.Cells = append(a.Cells[:i], a.Cells[i+1:]...)
			return
		}
	}
}

// spawnCell creates one cell entity owned by the agent.
func (g *Game) spawnCell(a *Agent, x, y, vx, vy, mass, mergeCooldown float32) ecs.Entity {
	pos := components.Position{X: x, Y: y}
	vel := components.Velocity{X: vx, Y: vy}
	body := components.Body{Radius: systems.RadiusFromMass(mass)}
	cell := components.CellBody{
		Owner:         a.ID,
		Mass:          mass,
		CanMerge:      mergeCooldown <= 0,
		MergeCooldown: mergeCooldown,
		Color:         a.Color,
	}
	e := g.cellMapper.NewEntity(&pos, &vel, &body, &cell)
	a.Cells = append(a.Cells, e)
	return e
}

// agentCentroid returns the mean position of the agent's cells.
func (g *Game) agentCentroid(a *Agent) (float32, float32) {
	var sx, sy float32
	n := 0
	for _, e := range a.Cells {
		pos := g.posMap.Get(e)
		if pos == nil || !systems.Finite(pos.X) || !systems.Finite(pos.Y) {
			continue
		}
		sx += pos.X
		sy += pos.Y
		n++
	}
	if n == 0 {
		return g.worldW / 2, g.worldH / 2
	}
	return sx / float32(n), sy / float32(n)
}

// agentMass returns the agent's total mass.
func (g *Game) agentMass(a *Agent) float32 {
	var sum float32
	for _, e := range a.Cells {
		if cell := g.cellMap.Get(e); cell != nil && systems.Finite(cell.Mass) {
			sum += cell.Mass
		}
	}
	return sum
}

// maxCellRadius returns the agent's largest cell radius.
func (g *Game) maxCellRadius(a *Agent) float32 {
	var r float32
	for _, e := range a.Cells {
		if body := g.bodyMap.Get(e); body != nil && body.Radius > r {
			r = body.Radius
		}
	}
	return r
}

// buildEntityView flattens all live entities with finite positions
// into the shared controller view for this tick.
func (g *Game) buildEntityView() []ai.EntityView {
	view := g.viewBuf[:0]

	for _, a := range g.agents {
		if a.eliminated {
			continue
		}
		for _, e := range a.Cells {
			pos := g.posMap.Get(e)
			body := g.bodyMap.Get(e)
			cell := g.cellMap.Get(e)
			if pos == nil || body == nil || cell == nil ||
				!systems.Finite(pos.X) || !systems.Finite(pos.Y) {
				continue
			}
			view = append(view, ai.EntityView{
				Kind: ai.ViewCell, AgentID: a.ID,
				X: pos.X, Y: pos.Y, Radius: body.Radius, Mass: cell.Mass,
			})
		}
	}

	fq := g.pelletFilter.Query()
	for fq.Next() {
		pos, _, body, pellet := fq.Get()
		if !systems.Finite(pos.X) || !systems.Finite(pos.Y) {
			continue
		}
		view = append(view, ai.EntityView{
			Kind: ai.ViewFood, X: pos.X, Y: pos.Y, Radius: body.Radius, Mass: pellet.Value,
		})
	}

	vq := g.virusFilter.Query()
	for vq.Next() {
		pos, _, body, virus := vq.Get()
		if !systems.Finite(pos.X) || !systems.Finite(pos.Y) {
			continue
		}
		view = append(view, ai.EntityView{
			Kind: ai.ViewVirus, X: pos.X, Y: pos.Y, Radius: body.Radius, Mass: virus.Mass,
		})
	}

	pq := g.powerFilter.Query()
	for pq.Next() {
		pos, _, body, _ := pq.Get()
		if !systems.Finite(pos.X) || !systems.Finite(pos.Y) {
			continue
		}
		view = append(view, ai.EntityView{
			Kind: ai.ViewPowerUp, X: pos.X, Y: pos.Y, Radius: body.Radius,
		})
	}

	g.viewBuf = view
	return view
}
