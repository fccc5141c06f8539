// Package config provides configuration loading and access for the simulation.
package config

import (
	_ "embed"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

//go:embed defaults.yaml
var defaultsYAML []byte

// Config holds all simulation configuration parameters.
type Config struct {
	World      WorldConfig      `yaml:"world"`
	Physics    PhysicsConfig    `yaml:"physics"`
	Population PopulationConfig `yaml:"population"`
	Difficulty DifficultyConfig `yaml:"difficulty"`
	Cells      CellConfig       `yaml:"cells"`
	Combat     CombatConfig     `yaml:"combat"`
	Food       FoodConfig       `yaml:"food"`
	Virus      VirusConfig      `yaml:"virus"`
	PowerUps   PowerUpConfig    `yaml:"powerups"`
	AI         AIConfig         `yaml:"ai"`
	Telemetry  TelemetryConfig  `yaml:"telemetry"`

	// Derived values computed after loading
	Derived DerivedConfig `yaml:"-"`
}

// WorldConfig holds arena dimensions in world units.
type WorldConfig struct {
	Width  int `yaml:"width"`
	Height int `yaml:"height"`
}

// PhysicsConfig holds simulation physics parameters.
type PhysicsConfig struct {
	MaxDT        float64 `yaml:"max_dt"`         // Delta-time clamp per tick
	GridCellSize float64 `yaml:"grid_cell_size"` // Spatial grid cell size
	BounceBoost  float64 `yaml:"bounce_boost"`   // Elastic impulse responsiveness multiplier
	WallDamping  float64 `yaml:"wall_damping"`   // Velocity fraction kept after a wall bounce
	PelletDrag   float64 `yaml:"pellet_drag"`    // Per-second velocity decay of ejected mass
}

// PopulationConfig holds initial population counts and difficulty-scaled caps.
type PopulationConfig struct {
	InitialFood     int `yaml:"initial_food"`
	InitialViruses  int `yaml:"initial_viruses"`
	InitialAI       int `yaml:"initial_ai"`
	InitialPowerUps int `yaml:"initial_powerups"`

	FoodBase          int `yaml:"food_base"`            // Food floor = base + per_level*level
	FoodPerLevel      int `yaml:"food_per_level"`
	FoodTopUpBase     int `yaml:"food_topup_base"`      // Max new food per tick = base + level
	VirusCapBase      int `yaml:"virus_cap_base"`       // Virus cap = base + per_level*level
	VirusCapPerLevel  int `yaml:"virus_cap_per_level"`
	AgentCapBase      int `yaml:"agent_cap_base"`       // Total agent cap = base + level
}

// DifficultyConfig holds the escalation curve.
type DifficultyConfig struct {
	Period float64 `yaml:"period"` // Seconds of elapsed time per difficulty level
}

// CellConfig holds per-cell movement and split parameters.
type CellConfig struct {
	StartMass       float64 `yaml:"start_mass"`        // Human starting cell mass
	MinMass         float64 `yaml:"min_mass"`          // Smallest mass a cell may be split down to
	BaseSpeed       float64 `yaml:"base_speed"`        // Speed of a cell at start mass
	MergeCooldown   float64 `yaml:"merge_cooldown"`    // Seconds before a split cell may recombine
	SplitLaunch     float64 `yaml:"split_launch"`      // Launch speed of player-split halves
	MaxCells        int     `yaml:"max_cells"`         // Player split cap per agent
	EjectMass       float64 `yaml:"eject_mass"`        // Mass expelled per eject
	EjectSpeed      float64 `yaml:"eject_speed"`       // Launch speed of ejected mass
}

// CombatConfig holds the cell-vs-cell game-balance contract.
type CombatConfig struct {
	DominanceThreshold  float64 `yaml:"dominance_threshold"`   // Mass-ratio margin required to eat
	EatEfficiencyBase   float64 `yaml:"eat_efficiency_base"`
	EatEfficiencySlope  float64 `yaml:"eat_efficiency_slope"`  // Gain per unit of ratio above threshold
	EatEfficiencyCap    float64 `yaml:"eat_efficiency_cap"`
	EliminationBonus    int     `yaml:"elimination_bonus"`     // Flat bonus for a human eliminator
	EliminationScoreCut float64 `yaml:"elimination_score_cut"` // Fraction of victim score added on top
}

// FoodConfig holds food pellet parameters.
type FoodConfig struct {
	ValueMin     float64 `yaml:"value_min"`
	ValueMax     float64 `yaml:"value_max"`
	ClusterScale float64 `yaml:"cluster_scale"` // Noise frequency for clustered placement
}

// VirusConfig holds virus hazard parameters.
type VirusConfig struct {
	StartMass        float64 `yaml:"start_mass"`
	SplitThreshold   float64 `yaml:"split_threshold"`     // Minimum cell mass to trigger a split
	MassPerChild     float64 `yaml:"mass_per_child"`      // Child count = floor(mass / this)
	SplitCap         int     `yaml:"split_cap"`           // Maximum children per virus split
	SplitLaunch      float64 `yaml:"split_launch"`        // Outward launch speed of children
	MinSpawnDistance float64 `yaml:"min_spawn_distance"`  // Keep-away radius from controlled agent
	SpawnRetries     int     `yaml:"spawn_retries"`
	RespawnDelay     float64 `yaml:"respawn_delay"`       // Seconds before a consumed virus is replaced
	FeedSplitCount   int     `yaml:"feed_split_count"`    // Ejected-mass hits before the virus buds
}

// PowerUpConfig holds power-up spawn and effect parameters.
type PowerUpConfig struct {
	Radius       float64 `yaml:"radius"`
	RespawnDelay float64 `yaml:"respawn_delay"`
	CadenceBase  float64 `yaml:"cadence_base"`  // Seconds between spawns at level 1
	CadenceStep  float64 `yaml:"cadence_step"`  // Cadence reduction per difficulty level
	CadenceMin   float64 `yaml:"cadence_min"`
	Duration     float64 `yaml:"duration"`      // Timed effect duration
	SpeedFactor  float64 `yaml:"speed_factor"`  // Speed boost multiplier
	MassFactor   float64 `yaml:"mass_factor"`   // Instant mass boost multiplier
	MagnetRange  float64 `yaml:"magnet_range"`  // Pellet attraction radius
	MagnetPull   float64 `yaml:"magnet_pull"`   // Pellet attraction acceleration
}

// AIConfig holds AI agent spawning parameters.
type AIConfig struct {
	CadenceBase  float64 `yaml:"cadence_base"` // Seconds between AI spawns at level 1
	CadenceStep  float64 `yaml:"cadence_step"`
	CadenceMin   float64 `yaml:"cadence_min"`
	RespawnDelay float64 `yaml:"respawn_delay"` // Delay before a destroyed AI is replaced
	StartMass    float64 `yaml:"start_mass"`    // Level-1 AI starting mass
	MassPerLevel float64 `yaml:"mass_per_level"`
}

// TelemetryConfig holds stats collection settings.
type TelemetryConfig struct {
	StatsWindow float64 `yaml:"stats_window"` // Window size in simulation seconds
}

// DerivedConfig holds computed values derived from the loaded config.
type DerivedConfig struct {
	WorldW32    float32
	WorldH32    float32
	MaxDT32     float32
	BounceBoost float32
	WallDamping float32
}

// global holds the loaded configuration.
var global *Config

// Init loads configuration from the given path, or uses embedded defaults if path is empty.
// Must be called before Cfg().
func Init(path string) error {
	cfg, err := Load(path)
	if err != nil {
		return err
	}
	global = cfg
	return nil
}

// MustInit is like Init but panics on error.
func MustInit(path string) {
	if err := Init(path); err != nil {
		panic(fmt.Sprintf("config: failed to initialize: %v", err))
	}
}

// Cfg returns the global configuration. Panics if Init was not called.
func Cfg() *Config {
	if global == nil {
		panic("config: Cfg() called before Init()")
	}
	return global
}

// Load loads configuration from a YAML file, merging with embedded defaults.
// If path is empty, only embedded defaults are used.
func Load(path string) (*Config, error) {
	cfg := &Config{}
	if err := yaml.Unmarshal(defaultsYAML, cfg); err != nil {
		return nil, fmt.Errorf("parsing embedded defaults: %w", err)
	}

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
		// Unmarshal into same struct - only overwrites fields present in file
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parsing config file: %w", err)
		}
	}

	cfg.computeDerived()

	return cfg, nil
}

// computeDerived calculates values derived from loaded config.
func (c *Config) computeDerived() {
	c.Derived.WorldW32 = float32(c.World.Width)
	c.Derived.WorldH32 = float32(c.World.Height)
	c.Derived.MaxDT32 = float32(c.Physics.MaxDT)
	c.Derived.BounceBoost = float32(c.Physics.BounceBoost)
	c.Derived.WallDamping = float32(c.Physics.WallDamping)
}

// WriteYAML saves the configuration to a YAML file.
func (c *Config) WriteYAML(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("writing config file: %w", err)
	}
	return nil
}
