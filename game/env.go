// Package game implements the hide-and-seek environment: the episode state
// machine, agent action/observation handling, and obstacle grab/lock
// mechanics, advanced by a fixed-timestep simulation loop.
package game

import (
	"math"

	"github.com/mlange-42/ark/ecs"
	"github.com/rs/zerolog"

	"github.com/pthm-cable/hideseek/components"
	"github.com/pthm-cable/hideseek/config"
	"github.com/pthm-cable/hideseek/systems"
	"github.com/pthm-cable/hideseek/telemetry"
)

// Env holds the complete environment state. It is created once at world
// start and lives until process shutdown; ResetEpisode reinitializes it at
// every episode boundary.
//
// All state transitions happen synchronously inside Step; the trainer
// boundary is the only suspension point.
type Env struct {
	world *ecs.World
	cfg   *config.Config
	log   zerolog.Logger

	agentMapper *ecs.Map4[
		components.Position,
		components.Velocity,
		components.Rotation,
		components.Agent,
	]
	obstacleMapper *ecs.Map4[
		components.Position,
		components.Velocity,
		components.Rotation,
		components.Obstacle,
	]

	// Individual component mappers for lookups
	posMap      *ecs.Map1[components.Position]
	velMap      *ecs.Map1[components.Velocity]
	rotMap      *ecs.Map1[components.Rotation]
	agentMap    *ecs.Map1[components.Agent]
	obstacleMap *ecs.Map1[components.Obstacle]

	// Rosters, in stable order: observation/action indices follow these.
	hiders    []ecs.Entity
	seekers   []ecs.Entity
	roster    []ecs.Entity // hiders then seekers
	obstacles []ecs.Entity

	walls []systems.AABB

	movement  *systems.MovementSystem
	collision *systems.CollisionSystem

	// Episode controller state
	phase           Phase
	phaseTime       float32 // remaining seconds in the current phase
	remainingHiders int
	episode         int
	episodeTicks    int64

	tick    int64
	simTime float64

	collector *telemetry.Collector

	scratchBlockers []systems.AABB
}

// Options configures environment construction.
type Options struct {
	Hiders  int // roster size; 0 = number of configured hider spawns
	Seekers int // roster size; 0 = number of configured seeker spawns

	Logger    zerolog.Logger
	Collector *telemetry.Collector
}

// NewEnv builds the world from config and runs the first episode reset.
func NewEnv(cfg *config.Config, opts Options) *Env {
	world := ecs.NewWorld()

	e := &Env{
		world: world,
		cfg:   cfg,
		log:   opts.Logger,
		agentMapper: ecs.NewMap4[
			components.Position,
			components.Velocity,
			components.Rotation,
			components.Agent,
		](world),
		obstacleMapper: ecs.NewMap4[
			components.Position,
			components.Velocity,
			components.Rotation,
			components.Obstacle,
		](world),
		posMap:      ecs.NewMap1[components.Position](world),
		velMap:      ecs.NewMap1[components.Velocity](world),
		rotMap:      ecs.NewMap1[components.Rotation](world),
		agentMap:    ecs.NewMap1[components.Agent](world),
		obstacleMap: ecs.NewMap1[components.Obstacle](world),
		collector:   opts.Collector,
	}

	for _, wc := range cfg.Arena.Walls {
		e.walls = append(e.walls, systems.AABB{
			X:     float32(wc.X),
			Z:     float32(wc.Z),
			HalfW: float32(wc.HalfW),
			HalfD: float32(wc.HalfD),
		})
	}

	e.spawnObstacles()

	nHiders := opts.Hiders
	if nHiders <= 0 {
		nHiders = len(cfg.Spawns.Hiders)
	}
	nSeekers := opts.Seekers
	if nSeekers <= 0 {
		nSeekers = len(cfg.Spawns.Seekers)
	}
	e.spawnAgents(nHiders, nSeekers)

	e.movement = systems.NewMovementSystem(world,
		cfg.Derived.ArenaW32, cfg.Derived.ArenaD32,
		float32(cfg.Sim.Gravity), cfg.Derived.DT32)
	e.collision = systems.NewCollisionSystem(world, e.walls)

	e.ResetEpisode()

	return e
}

// spawnObstacles creates obstacle entities and captures their home poses.
func (e *Env) spawnObstacles() {
	cfg := e.cfg
	for _, oc := range cfg.Obstacles {
		pos := components.Position{X: float32(oc.X), Z: float32(oc.Z)}
		vel := components.Velocity{}
		rot := components.Rotation{Yaw: float32(oc.Yaw)}
		ob := components.Obstacle{
			Mass:           float32(cfg.Grab.FreeMass),
			Drag:           float32(cfg.Grab.FreeDrag),
			HalfW:          float32(oc.HalfW),
			HalfD:          float32(oc.HalfD),
			HomePos:        pos,
			HomeYaw:        rot.Yaw,
			SeekerOnlyLock: oc.SeekerOnlyLock,
		}
		entity := e.obstacleMapper.NewEntity(&pos, &vel, &rot, &ob)
		e.obstacles = append(e.obstacles, entity)
	}
}

// spawnAgents creates both rosters. Spawn poses are assigned by roster
// index; when a roster is larger than its spawn list, the extra agents cycle
// through the list at creation time (episode reset then leaves them in
// place, see ResetEpisode).
func (e *Env) spawnAgents(nHiders, nSeekers int) {
	cfg := e.cfg

	spawnTeam := func(n int, team components.Team, speed float32, spawns []config.PoseConfig) []ecs.Entity {
		entities := make([]ecs.Entity, 0, n)
		for i := 0; i < n; i++ {
			var pose config.PoseConfig
			if len(spawns) > 0 {
				pose = spawns[i%len(spawns)]
			} else {
				pose = config.PoseConfig{X: cfg.Arena.Width / 2, Z: cfg.Arena.Depth / 2}
			}
			pos := components.Position{X: float32(pose.X), Z: float32(pose.Z)}
			vel := components.Velocity{}
			rot := components.Rotation{Yaw: float32(pose.Yaw)}
			ag := components.Agent{
				Team:   team,
				Index:  i,
				Speed:  speed,
				Radius: float32(cfg.Agents.Radius),
				Active: true,
			}
			entities = append(entities, e.agentMapper.NewEntity(&pos, &vel, &rot, &ag))
		}
		return entities
	}

	e.hiders = spawnTeam(nHiders, components.TeamHider, cfg.Derived.HiderSpeed, cfg.Spawns.Hiders)
	e.seekers = spawnTeam(nSeekers, components.TeamSeeker, cfg.Derived.SeekerSpeed, cfg.Spawns.Seekers)

	e.roster = make([]ecs.Entity, 0, len(e.hiders)+len(e.seekers))
	e.roster = append(e.roster, e.hiders...)
	e.roster = append(e.roster, e.seekers...)
}

// Phase returns the current episode phase.
func (e *Env) Phase() Phase { return e.phase }

// PhaseTimeRemaining returns the seconds left in the current phase.
func (e *Env) PhaseTimeRemaining() float32 { return e.phaseTime }

// RemainingHiders returns the number of hiders not yet caught.
func (e *Env) RemainingHiders() int { return e.remainingHiders }

// Episode returns the zero-based index of the running episode.
func (e *Env) Episode() int { return e.episode }

// Tick returns the total ticks simulated since start.
func (e *Env) Tick() int64 { return e.tick }

// AgentCount returns the roster size (hiders + seekers).
func (e *Env) AgentCount() int { return len(e.roster) }

// Walls returns the static wall boxes.
func (e *Env) Walls() []systems.AABB { return e.walls }

// AgentView is a read-only agent snapshot for status surfaces.
type AgentView struct {
	X, Y, Z float32
	Yaw     float32
	Team    components.Team
	Active  bool
	Holding bool
}

// ObstacleView is a read-only obstacle snapshot for status surfaces.
type ObstacleView struct {
	X, Z         float32
	Yaw          float32
	HalfW, HalfD float32
	Lock         components.LockState
	Held         bool
}

// Agents appends a snapshot of every roster agent to dst.
func (e *Env) Agents(dst []AgentView) []AgentView {
	for _, entity := range e.roster {
		pos := e.posMap.Get(entity)
		rot := e.rotMap.Get(entity)
		ag := e.agentMap.Get(entity)
		dst = append(dst, AgentView{
			X: pos.X, Y: pos.Y, Z: pos.Z,
			Yaw:     rot.Yaw,
			Team:    ag.Team,
			Active:  ag.Active,
			Holding: ag.HasHold,
		})
	}
	return dst
}

// Obstacles appends a snapshot of every obstacle to dst.
func (e *Env) Obstacles(dst []ObstacleView) []ObstacleView {
	for _, entity := range e.obstacles {
		pos := e.posMap.Get(entity)
		rot := e.rotMap.Get(entity)
		ob := e.obstacleMap.Get(entity)
		dst = append(dst, ObstacleView{
			X: pos.X, Z: pos.Z,
			Yaw:   rot.Yaw,
			HalfW: ob.HalfW, HalfD: ob.HalfD,
			Lock: ob.Lock,
			Held: ob.Held,
		})
	}
	return dst
}

// NearestOpponent returns the closest active member of the opposing roster,
// or false if every opponent is inactive. Supports N-vs-M rosters.
func (e *Env) NearestOpponent(entity ecs.Entity) (ecs.Entity, bool) {
	ag := e.agentMap.Get(entity)
	pos := e.posMap.Get(entity)

	opponents := e.hiders
	if ag.Team == components.TeamHider {
		opponents = e.seekers
	}

	best := float32(math.MaxFloat32)
	var bestEntity ecs.Entity
	found := false
	for _, opp := range opponents {
		oppAg := e.agentMap.Get(opp)
		if !oppAg.Active {
			continue
		}
		op := e.posMap.Get(opp)
		dx := op.X - pos.X
		dz := op.Z - pos.Z
		d2 := dx*dx + dz*dz
		if d2 < best {
			best = d2
			bestEntity = opp
			found = true
		}
	}
	return bestEntity, found
}
