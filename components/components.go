// Package components defines ECS components for the arena simulation.
package components

// Position represents an entity's world position.
type Position struct {
	X, Y float32
}

// Velocity represents an entity's velocity.
type Velocity struct {
	X, Y float32
}

// Body holds physical properties shared by every circular entity.
// For mass-bearing bodies Radius is always derived from mass via
// radius = sqrt(mass/pi) and must never be set independently.
type Body struct {
	Radius float32
}

// Color is an RGB triple used for entity tinting and effect requests.
type Color struct {
	R, G, B uint8
}

// CellBody holds the mass-bearing state of one agent cell.
// Owner is the agent ID; the owning agent keeps the entity reference,
// the component keeps the mass so collision code never dereferences
// agent state for physics.
type CellBody struct {
	Owner         uint32
	Mass          float32
	CanMerge      bool
	MergeCooldown float32 // Counts down to 0; cell becomes merge-eligible at 0
	Color         Color
}

// Pellet is a food item. Nonzero velocity marks mass ejected by an
// agent, which is what distinguishes it for virus-feeding rules.
type Pellet struct {
	Value float32 // Mass granted on consumption
	Color Color
}

// Virus is a hazard that fragments oversized cells on contact.
// Fed counts ejected-mass hits; at the configured threshold the virus
// buds a new virus instead of growing further.
type Virus struct {
	Mass float32
	Fed  int32
}

// PowerUpKind enumerates the discrete power-up effects.
type PowerUpKind uint8

const (
	PowerSpeed PowerUpKind = iota
	PowerShield
	PowerMassBoost
	PowerMagnet

	NumPowerUpKinds = 4
)

// String returns a human-readable effect name.
func (k PowerUpKind) String() string {
	switch k {
	case PowerSpeed:
		return "speed"
	case PowerShield:
		return "shield"
	case PowerMassBoost:
		return "mass"
	case PowerMagnet:
		return "magnet"
	}
	return "unknown"
}

// PowerUp is a pickup granting a timed or instant effect.
type PowerUp struct {
	Kind PowerUpKind
}
