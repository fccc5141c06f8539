package game

import "github.com/halcyon-games/mitos/components"

// Snapshot is the read-only world projection handed to the rendering
// collaborator between ticks. The renderer never mutates simulation
// state; everything here is copied out.
type Snapshot struct {
	Tick       int64
	Elapsed    float64
	Difficulty int

	Cells    []CellSnapshot
	Pellets  []BodySnapshot
	Viruses  []BodySnapshot
	PowerUps []PowerUpSnapshot

	// Camera-follow target: controlled agent's centroid and largest
	// cell radius. Valid only while ControlledAlive.
	CameraX, CameraY float32
	CameraRadius     float32
	ControlledAlive  bool

	Leaderboard []LeaderboardEntry
}

// CellSnapshot is one rendered agent cell.
type CellSnapshot struct {
	AgentID uint32
	Name    string
	IsAI    bool
	X, Y    float32
	Radius  float32
	Color   components.Color
}

// BodySnapshot is one rendered free body.
type BodySnapshot struct {
	X, Y   float32
	Radius float32
	Color  components.Color
	Moving bool // Pellets: carries ejected-mass velocity
}

// PowerUpSnapshot is one rendered pickup.
type PowerUpSnapshot struct {
	X, Y   float32
	Radius float32
	Kind   components.PowerUpKind
}

// Snapshot builds the current render projection.
func (g *Game) Snapshot() Snapshot {
	snap := Snapshot{
		Tick:        g.tick,
		Elapsed:     g.elapsed,
		Difficulty:  g.difficulty,
		Leaderboard: g.Leaderboard(),
	}

	for _, a := range g.agents {
		if a.eliminated {
			continue
		}
		for _, e := range a.Cells {
			pos := g.posMap.Get(e)
			body := g.bodyMap.Get(e)
			cell := g.cellMap.Get(e)
			if pos == nil || body == nil || cell == nil {
				continue
			}
			snap.Cells = append(snap.Cells, CellSnapshot{
				AgentID: a.ID,
				Name:    a.Name,
				IsAI:    a.IsAI,
				X:       pos.X,
				Y:       pos.Y,
				Radius:  body.Radius,
				Color:   cell.Color,
			})
		}
	}

	fq := g.pelletFilter.Query()
	for fq.Next() {
		pos, vel, body, pellet := fq.Get()
		snap.Pellets = append(snap.Pellets, BodySnapshot{
			X: pos.X, Y: pos.Y, Radius: body.Radius, Color: pellet.Color,
			Moving: vel.X != 0 || vel.Y != 0,
		})
	}

	vq := g.virusFilter.Query()
	for vq.Next() {
		pos, _, body, _ := vq.Get()
		snap.Viruses = append(snap.Viruses, BodySnapshot{
			X: pos.X, Y: pos.Y, Radius: body.Radius,
			Color: components.Color{R: 80, G: 220, B: 80},
		})
	}

	pq := g.powerFilter.Query()
	for pq.Next() {
		pos, _, body, power := pq.Get()
		snap.PowerUps = append(snap.PowerUps, PowerUpSnapshot{
			X: pos.X, Y: pos.Y, Radius: body.Radius, Kind: power.Kind,
		})
	}

	if c := g.agentIndex[g.controlledID]; c != nil && !c.eliminated && len(c.Cells) > 0 {
		snap.CameraX, snap.CameraY = g.agentCentroid(c)
		snap.CameraRadius = g.maxCellRadius(c)
		snap.ControlledAlive = true
	}

	return snap
}
