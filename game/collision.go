package game

import (
	"math"
	"strconv"

	"github.com/mlange-42/ark/ecs"

	"github.com/halcyon-games/mitos/components"
	"github.com/halcyon-games/mitos/config"
	"github.com/halcyon-games/mitos/systems"
)

// The collision pass runs in a fixed sub-phase order each tick:
// agent-food, agent-agent combat, agent-virus, agent-powerup,
// ejected-mass-virus. Entities removed in one sub-phase are marked
// dead immediately and skipped by every later scan of the same tick;
// the ECS deletion happens once in the cleanup pass.

// collideAgentFood lets every live cell consume overlapping pellets.
// A pellet is consumed by at most one cell per tick: the first scan
// that reaches it marks it dead and later scans see it gone.
func (g *Game) collideAgentFood() {
	cfg := config.Cfg()
	maxPelletR := systems.RadiusFromMass(float32(math.Max(cfg.Food.ValueMax, cfg.Cells.EjectMass)))
	if maxPelletR < 2 {
		// Pellet radii are floored at 2 on spawn; the query pad must
		// cover that floor or edge-of-reach pellets are skipped.
		maxPelletR = 2
	}

	for _, a := range g.agents {
		if a.eliminated {
			continue
		}
		for _, e := range a.Cells {
			if _, dead := g.deadCells[e]; dead {
				continue
			}
			pos := g.posMap.Get(e)
			body := g.bodyMap.Get(e)
			cell := g.cellMap.Get(e)
			if pos == nil || body == nil || cell == nil {
				continue
			}

			g.neighborBuf = g.foodGrid.QueryRadiusInto(g.neighborBuf[:0],
				pos.X, pos.Y, body.Radius+maxPelletR, g.posMap)

			for _, n := range g.neighborBuf {
				if _, gone := g.deadPellets[n.E]; gone {
					continue
				}
				pBody := g.bodyMap.Get(n.E)
				pellet := g.pelletMap.Get(n.E)
				if pBody == nil || pellet == nil {
					continue
				}
				reach := body.Radius + pBody.Radius
				if n.DistSq >= reach*reach {
					continue
				}

				cell.Mass += pellet.Value
				body.Radius = systems.RadiusFromMass(cell.Mass)
				if !a.IsAI {
					a.Score += int(pellet.Value)
				}

				dir := systems.Vec2{X: -n.DX, Y: -n.DY}.Normalize()
				g.effects.Splash(pos.X+n.DX, pos.Y+n.DY, pellet.Color, dir.X, dir.Y, 6)

				g.deadPellets[n.E] = struct{}{}
				if g.collector != nil {
					g.collector.RecordFoodEaten()
				}
			}
		}
	}
}

// eatEfficiency returns the mass-transfer efficiency for a combat eat.
// The curve is a game-balance contract: base 0.7, +0.05 per unit of
// mass ratio above the dominance gate, capped at 0.9.
func eatEfficiency(ratio float32) float32 {
	cfg := config.Cfg()
	base := float32(cfg.Combat.EatEfficiencyBase)
	slope := float32(cfg.Combat.EatEfficiencySlope)
	cap := float32(cfg.Combat.EatEfficiencyCap)
	gate := 1 + float32(cfg.Combat.DominanceThreshold)

	eff := base + slope*(ratio-gate)
	return systems.Clamp(eff, base, cap)
}

// collideCombat resolves every cell pair between every pair of
// distinct agents. Both sides shielded: skipped entirely. One side
// shielded: bounce only, a shield blocks being eaten, not being
// nudged. Otherwise the side whose mass exceeds the other's by more
// than the dominance threshold eats; near-equal cells bounce.
func (g *Game) collideCombat() {
	cfg := config.Cfg()
	gate := 1 + float32(cfg.Combat.DominanceThreshold)
	boost := cfg.Derived.BounceBoost

	for i := 0; i < len(g.agents); i++ {
		A := g.agents[i]
		if A.eliminated {
			continue
		}
		for j := i + 1; j < len(g.agents); j++ {
			B := g.agents[j]
			if B.eliminated {
				continue
			}

			shieldA := A.HasEffect(components.PowerShield)
			shieldB := B.HasEffect(components.PowerShield)
			if shieldA && shieldB {
				continue // mutual immunity
			}

			for ci := 0; ci < len(A.Cells); ci++ {
				ea := A.Cells[ci]
				posA := g.posMap.Get(ea)
				velA := g.velMap.Get(ea)
				bodyA := g.bodyMap.Get(ea)
				cellA := g.cellMap.Get(ea)
				if posA == nil || velA == nil || bodyA == nil || cellA == nil {
					continue
				}

				removedA := false
				for cj := 0; cj < len(B.Cells); cj++ {
					eb := B.Cells[cj]
					posB := g.posMap.Get(eb)
					velB := g.velMap.Get(eb)
					bodyB := g.bodyMap.Get(eb)
					cellB := g.cellMap.Get(eb)
					if posB == nil || velB == nil || bodyB == nil || cellB == nil {
						continue
					}
					if !systems.Overlaps(posA.X, posA.Y, bodyA.Radius, posB.X, posB.Y, bodyB.Radius) {
						continue
					}

					if shieldA || shieldB {
						systems.Bounce(posA, velA, cellA.Mass, bodyA.Radius,
							posB, velB, cellB.Mass, bodyB.Radius, boost)
						continue
					}

					switch {
					case cellA.Mass > cellB.Mass*gate:
						g.eatCell(A, cellA, bodyA, B, eb, cellB, posB)
						cj--
						if len(B.Cells) == 0 {
							g.eliminateAgent(B, A)
						}
					case cellB.Mass > cellA.Mass*gate:
						g.eatCell(B, cellB, bodyB, A, ea, cellA, posA)
						ci--
						removedA = true
						if len(A.Cells) == 0 {
							g.eliminateAgent(A, B)
						}
					default:
						systems.Bounce(posA, velA, cellA.Mass, bodyA.Radius,
							posB, velB, cellB.Mass, bodyB.Radius, boost)
					}

					if removedA {
						// The A cell is gone; stop processing it against
						// the rest of B's cells this tick.
						break
					}
				}

				if A.eliminated {
					break
				}
			}

			if A.eliminated {
				break
			}
		}
	}
}

// eatCell transfers the eaten cell's mass to the eater at the
// efficiency the ratio earns and removes the eaten cell.
func (g *Game) eatCell(eater *Agent, eaterCell *components.CellBody, eaterBody *components.Body,
	victim *Agent, eatenEnt ecs.Entity, eatenCell *components.CellBody, eatenPos *components.Position) {

	ratio := eaterCell.Mass / eatenCell.Mass
	transfer := eatenCell.Mass * eatEfficiency(ratio)

	eaterCell.Mass += transfer
	eaterBody.Radius = systems.RadiusFromMass(eaterCell.Mass)
	eater.Score += int(transfer)

	g.effects.Splash(eatenPos.X, eatenPos.Y, eatenCell.Color, 0, 0, 10)

	g.deadCells[eatenEnt] = struct{}{}
	victim.removeCell(eatenEnt)

	if g.collector != nil {
		g.collector.RecordCombatEat()
	}
}

// eliminateAgent removes an agent from the population exactly once.
// eliminator is nil when the agent fell to attrition rather than to
// another agent.
func (g *Game) eliminateAgent(victim, eliminator *Agent) {
	if victim.eliminated {
		return
	}
	victim.eliminated = true

	cfg := config.Cfg()
	cx, cy := g.lastCentroid(victim)
	g.effects.Explosion(cx, cy, victim.Color, 40, 4)

	for _, e := range victim.Cells {
		g.deadCells[e] = struct{}{}
	}
	victim.Cells = nil

	if eliminator != nil && !eliminator.IsAI {
		bonus := cfg.Combat.EliminationBonus + int(float64(victim.Score)*cfg.Combat.EliminationScoreCut)
		eliminator.Score += bonus
		g.effects.ScorePopup(cx, cy, "+"+strconv.Itoa(bonus), eliminator.Color)
	}

	if victim.IsAI {
		g.scheduler.After(g.elapsed, cfg.AI.RespawnDelay, g.spawnReplacementAI)
	}
	if victim.ID == g.controlledID {
		g.controlledDied = true
	}

	if g.collector != nil {
		g.collector.RecordElimination(victim.IsAI)
	}
}

// lastCentroid is the centroid of whatever cells the agent still has;
// used for the elimination explosion before the cells are cleared.
func (g *Game) lastCentroid(a *Agent) (float32, float32) {
	if len(a.Cells) == 0 {
		return g.worldW / 2, g.worldH / 2
	}
	return g.agentCentroid(a)
}

// collideViruses fragments oversized cells that touch a virus.
// Shielded agents are immune. The consumed virus is replaced after a
// delay by a fresh spawn elsewhere.
func (g *Game) collideViruses() {
	cfg := config.Cfg()
	splitThreshold := float32(cfg.Virus.SplitThreshold)
	queryPad := systems.RadiusFromMass(float32(cfg.Virus.StartMass)*2) + 4

	for _, a := range g.agents {
		if a.eliminated || a.HasEffect(components.PowerShield) {
			continue
		}
		for ci := 0; ci < len(a.Cells); ci++ {
			e := a.Cells[ci]
			if _, dead := g.deadCells[e]; dead {
				continue
			}
			pos := g.posMap.Get(e)
			body := g.bodyMap.Get(e)
			cell := g.cellMap.Get(e)
			if pos == nil || body == nil || cell == nil {
				continue
			}

			g.neighborBuf = g.virusGrid.QueryRadiusInto(g.neighborBuf[:0],
				pos.X, pos.Y, body.Radius+queryPad, g.posMap)

			for _, n := range g.neighborBuf {
				if _, gone := g.deadViruses[n.E]; gone {
					continue
				}
				vBody := g.bodyMap.Get(n.E)
				virus := g.virusMap.Get(n.E)
				if vBody == nil || virus == nil {
					continue
				}
				reach := body.Radius + vBody.Radius
				if n.DistSq >= reach*reach {
					continue
				}
				if cell.Mass < splitThreshold || cell.Mass <= virus.Mass {
					continue
				}

				if !g.burstCell(a, e, pos, body, cell) {
					continue
				}
				g.deadViruses[n.E] = struct{}{}
				g.scheduler.After(g.elapsed, cfg.Virus.RespawnDelay, g.spawnReplacementVirus)
				if g.collector != nil {
					g.collector.RecordVirusSplit()
				}
				ci--
				break // the original cell is gone
			}
		}
	}
}

// burstCell replaces one cell with up to the split cap of children
// placed evenly around a ring of the original radius, each launched
// outward along its angular slot and merge-locked. Returns false when
// the cell is too small to yield at least two children.
func (g *Game) burstCell(a *Agent, e ecs.Entity,
	pos *components.Position, body *components.Body, cell *components.CellBody) bool {

	cfg := config.Cfg()
	count := int(cell.Mass / float32(cfg.Virus.MassPerChild))
	if count > cfg.Virus.SplitCap {
		count = cfg.Virus.SplitCap
	}
	if count < 2 {
		return false
	}

	childMass := cell.Mass / float32(count)
	ring := body.Radius
	launch := float32(cfg.Virus.SplitLaunch)
	cooldown := float32(cfg.Cells.MergeCooldown)

	g.deadCells[e] = struct{}{}
	a.removeCell(e)

	for k := 0; k < count; k++ {
		angle := 2 * math.Pi * float64(k) / float64(count)
		dx := float32(math.Cos(angle))
		dy := float32(math.Sin(angle))
		g.spawnCell(a, pos.X+dx*ring, pos.Y+dy*ring, dx*launch, dy*launch, childMass, cooldown)
	}

	g.effects.Explosion(pos.X, pos.Y, cell.Color, count*2, 3)
	return true
}

// collidePowerUps applies picked-up power-ups and schedules their
// replacements.
func (g *Game) collidePowerUps() {
	cfg := config.Cfg()
	pad := float32(cfg.PowerUps.Radius) + 2

	for _, a := range g.agents {
		if a.eliminated {
			continue
		}
		for _, e := range a.Cells {
			if _, dead := g.deadCells[e]; dead {
				continue
			}
			pos := g.posMap.Get(e)
			body := g.bodyMap.Get(e)
			if pos == nil || body == nil {
				continue
			}

			g.neighborBuf = g.powerGrid.QueryRadiusInto(g.neighborBuf[:0],
				pos.X, pos.Y, body.Radius+pad, g.posMap)

			for _, n := range g.neighborBuf {
				if _, gone := g.deadPowerUps[n.E]; gone {
					continue
				}
				pBody := g.bodyMap.Get(n.E)
				power := g.powerMap.Get(n.E)
				if pBody == nil || power == nil {
					continue
				}
				reach := body.Radius + pBody.Radius
				if n.DistSq >= reach*reach {
					continue
				}

				g.applyEffect(g, a, power.Kind)
				g.effects.PowerUpVisual(pos.X+n.DX, pos.Y+n.DY, powerUpColor(power.Kind))

				g.deadPowerUps[n.E] = struct{}{}
				g.scheduler.After(g.elapsed, cfg.PowerUps.RespawnDelay, g.spawnReplacementPowerUp)
				if g.collector != nil {
					g.collector.RecordPowerUp(power.Kind)
				}
			}
		}
	}
}

// collideEjectedMass feeds moving pellets to viruses. Only pellets
// carrying velocity participate; resting food never grows a virus.
// A virus that has been fed enough buds a fresh virus nearby instead
// of growing without bound.
func (g *Game) collideEjectedMass() {
	cfg := config.Cfg()
	maxVirusR := systems.RadiusFromMass(float32(cfg.Virus.StartMass) * 3)

	// Bud spawns are collected and created after the query ends; the
	// world cannot grow while an iteration is open.
	type budInfo struct{ x, y float32 }
	var buds []budInfo

	query := g.pelletFilter.Query()
	for query.Next() {
		e := query.Entity()
		if _, gone := g.deadPellets[e]; gone {
			continue
		}
		pos, vel, body, pellet := query.Get()
		if vel.X == 0 && vel.Y == 0 {
			continue
		}

		g.neighborBuf = g.virusGrid.QueryRadiusInto(g.neighborBuf[:0],
			pos.X, pos.Y, body.Radius+maxVirusR, g.posMap)

		for _, n := range g.neighborBuf {
			if _, gone := g.deadViruses[n.E]; gone {
				continue
			}
			vBody := g.bodyMap.Get(n.E)
			virus := g.virusMap.Get(n.E)
			vPos := g.posMap.Get(n.E)
			if vBody == nil || virus == nil || vPos == nil {
				continue
			}
			reach := body.Radius + vBody.Radius
			if n.DistSq >= reach*reach {
				continue
			}

			virus.Mass += pellet.Value
			virus.Fed++
			vBody.Radius = systems.RadiusFromMass(virus.Mass)

			if int(virus.Fed) >= cfg.Virus.FeedSplitCount {
				// Bud: the overfed virus resets and a new one appears
				// in the direction the feeding mass was traveling.
				dir := systems.Vec2{X: vel.X, Y: vel.Y}.Normalize()
				virus.Mass = float32(cfg.Virus.StartMass)
				virus.Fed = 0
				vBody.Radius = systems.RadiusFromMass(virus.Mass)
				buds = append(buds, budInfo{
					x: vPos.X + dir.X*(vBody.Radius*4+8),
					y: vPos.Y + dir.Y*(vBody.Radius*4+8),
				})
			}

			g.deadPellets[e] = struct{}{}
			break
		}
	}

	for _, b := range buds {
		g.spawnVirusAt(b.x, b.y)
	}
}

// powerUpColor maps an effect kind to its signature tint.
func powerUpColor(kind components.PowerUpKind) components.Color {
	switch kind {
	case components.PowerSpeed:
		return components.Color{R: 255, G: 210, B: 60}
	case components.PowerShield:
		return components.Color{R: 80, G: 180, B: 255}
	case components.PowerMassBoost:
		return components.Color{R: 200, G: 90, B: 255}
	case components.PowerMagnet:
		return components.Color{R: 90, G: 255, B: 140}
	}
	return components.Color{R: 255, G: 255, B: 255}
}
