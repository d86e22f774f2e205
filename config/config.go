// Package config provides configuration loading and access for the environment.
package config

import (
	_ "embed"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

//go:embed defaults.yaml
var defaultsYAML []byte

// Config holds all environment configuration parameters.
type Config struct {
	Sim       SimConfig        `yaml:"sim"`
	Arena     ArenaConfig      `yaml:"arena"`
	Episode   EpisodeConfig    `yaml:"episode"`
	Agents    AgentsConfig     `yaml:"agents"`
	Grab      GrabConfig       `yaml:"grab"`
	Rewards   RewardsConfig    `yaml:"rewards"`
	Spawns    SpawnsConfig     `yaml:"spawns"`
	Obstacles []ObstacleConfig `yaml:"obstacles"`
	Telemetry TelemetryConfig  `yaml:"telemetry"`
	Server    ServerConfig     `yaml:"server"`
	Viewer    ViewerConfig     `yaml:"viewer"`

	// Derived values computed after loading
	Derived DerivedConfig `yaml:"-"`
}

// SimConfig holds fixed-timestep simulation parameters.
type SimConfig struct {
	DT      float64 `yaml:"dt"`      // seconds per tick
	Gravity float64 `yaml:"gravity"` // downward acceleration, world units/s^2
	KillY   float64 `yaml:"kill_y"`  // entities below this height are out of the world
}

// ArenaConfig describes the floor rectangle and static walls.
// Anything moving past an unwalled floor edge falls.
type ArenaConfig struct {
	Width float64      `yaml:"width"` // floor extent along X
	Depth float64      `yaml:"depth"` // floor extent along Z
	Walls []WallConfig `yaml:"walls"`
}

// WallConfig is a static axis-aligned wall box (center + half extents).
type WallConfig struct {
	X     float64 `yaml:"x"`
	Z     float64 `yaml:"z"`
	HalfW float64 `yaml:"half_w"`
	HalfD float64 `yaml:"half_d"`
}

// EpisodeConfig holds phase timing.
type EpisodeConfig struct {
	PrepDuration float64 `yaml:"prep_duration"` // seconds of Prep phase
	SeekDuration float64 `yaml:"seek_duration"` // seconds of Seek phase
}

// AgentsConfig holds per-team movement and contact parameters.
type AgentsConfig struct {
	HiderSpeed      float64 `yaml:"hider_speed"`       // target speed at full intent
	SeekerSpeedMult float64 `yaml:"seeker_speed_mult"` // seeker speed = hider_speed * this
	Radius          float64 `yaml:"radius"`            // body radius
	TurnDeadzone    float64 `yaml:"turn_deadzone"`     // intent magnitude below this leaves yaw unchanged
	CatchRadius     float64 `yaml:"catch_radius"`      // seeker-hider contact distance
}

// GrabConfig holds obstacle grab/carry parameters.
type GrabConfig struct {
	Range          float64 `yaml:"range"`           // max distance to grab an obstacle
	CarryDistance  float64 `yaml:"carry_distance"`  // standoff of a carried obstacle in front of the agent
	MinClearance   float64 `yaml:"min_clearance"`   // carried obstacle never comes closer than this
	ReleaseDamping float64 `yaml:"release_damping"` // residual velocity scale on release
	FreeMass       float64 `yaml:"free_mass"`
	FreeDrag       float64 `yaml:"free_drag"` // per-tick velocity retention for free obstacles
	GrabbedMass    float64 `yaml:"grabbed_mass"`
	GrabbedDrag    float64 `yaml:"grabbed_drag"`
}

// RewardsConfig holds the reward structure.
type RewardsConfig struct {
	CatchPenalty      float64 `yaml:"catch_penalty"`       // hider reward on being caught (negative)
	WinReward         float64 `yaml:"win_reward"`          // terminal reward magnitude on a hider win
	FallPenalty       float64 `yaml:"fall_penalty"`        // reward on falling out of the world (negative)
	LockSurvivalBonus float64 `yaml:"lock_survival_bonus"` // extra hider-win reward for hiders that locked an obstacle
}

// PoseConfig is a spawn pose on the floor plane.
type PoseConfig struct {
	X   float64 `yaml:"x"`
	Z   float64 `yaml:"z"`
	Yaw float64 `yaml:"yaw"` // radians
}

// SpawnsConfig assigns spawn poses by roster index.
// Agents beyond the end of a spawn list keep their pose on reset.
type SpawnsConfig struct {
	Hiders  []PoseConfig `yaml:"hiders"`
	Seekers []PoseConfig `yaml:"seekers"`
}

// ObstacleConfig describes one movable obstacle and its initial pose.
type ObstacleConfig struct {
	X              float64 `yaml:"x"`
	Z              float64 `yaml:"z"`
	Yaw            float64 `yaml:"yaw"`
	HalfW          float64 `yaml:"half_w"`
	HalfD          float64 `yaml:"half_d"`
	SeekerOnlyLock bool    `yaml:"seeker_only_lock"` // hiders may not lock this obstacle
}

// TelemetryConfig holds episode logging parameters.
type TelemetryConfig struct {
	SummaryWindow int `yaml:"summary_window"` // episodes per logged summary (0 disables)
}

// ServerConfig holds trainer transport parameters.
type ServerConfig struct {
	Addr string `yaml:"addr"` // listen address for the websocket trainer channel
}

// ViewerConfig holds debug viewer parameters.
type ViewerConfig struct {
	Width     int     `yaml:"width"`
	Height    int     `yaml:"height"`
	TargetFPS int     `yaml:"target_fps"`
	Scale     float64 `yaml:"scale"` // pixels per world unit
}

// DerivedConfig holds values computed from the loaded config.
type DerivedConfig struct {
	DT32         float32
	ArenaW32     float32
	ArenaD32     float32
	KillY32      float32
	HiderSpeed   float32
	SeekerSpeed  float32
	CatchRadius2 float32 // squared, for contact checks
	GrabRange2   float32 // squared, for nearest-obstacle search
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
	// Start with embedded defaults
	cfg := &Config{}
	if err := yaml.Unmarshal(defaultsYAML, cfg); err != nil {
		return nil, fmt.Errorf("parsing embedded defaults: %w", err)
	}

	// Load user config if provided
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

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	cfg.computeDerived()

	return cfg, nil
}

// validate rejects configs the simulation cannot run with.
func (c *Config) validate() error {
	if c.Sim.DT <= 0 {
		return fmt.Errorf("config: sim.dt must be positive, got %v", c.Sim.DT)
	}
	if c.Episode.PrepDuration < 0 || c.Episode.SeekDuration <= 0 {
		return fmt.Errorf("config: episode durations invalid: prep=%v seek=%v",
			c.Episode.PrepDuration, c.Episode.SeekDuration)
	}
	if c.Agents.SeekerSpeedMult < 1 {
		return fmt.Errorf("config: agents.seeker_speed_mult must be >= 1, got %v",
			c.Agents.SeekerSpeedMult)
	}
	if c.Arena.Width <= 0 || c.Arena.Depth <= 0 {
		return fmt.Errorf("config: arena dimensions must be positive, got %vx%v",
			c.Arena.Width, c.Arena.Depth)
	}
	return nil
}

// computeDerived calculates values derived from loaded config.
func (c *Config) computeDerived() {
	c.Derived.DT32 = float32(c.Sim.DT)
	c.Derived.ArenaW32 = float32(c.Arena.Width)
	c.Derived.ArenaD32 = float32(c.Arena.Depth)
	c.Derived.KillY32 = float32(c.Sim.KillY)
	c.Derived.HiderSpeed = float32(c.Agents.HiderSpeed)
	c.Derived.SeekerSpeed = float32(c.Agents.HiderSpeed * c.Agents.SeekerSpeedMult)
	c.Derived.CatchRadius2 = float32(c.Agents.CatchRadius * c.Agents.CatchRadius)
	c.Derived.GrabRange2 = float32(c.Grab.Range * c.Grab.Range)
}

// WriteYAML writes the config to a YAML file.
func (c *Config) WriteYAML(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("writing config: %w", err)
	}
	return nil
}
