package systems

import (
	"github.com/mlange-42/ark/ecs"

	"github.com/pthm-cable/hideseek/components"
)

// MovementSystem integrates velocities into positions for agents and free
// obstacles, and applies gravity to anything past an open floor edge.
type MovementSystem struct {
	agents    ecs.Filter3[components.Position, components.Velocity, components.Agent]
	obstacles ecs.Filter3[components.Position, components.Velocity, components.Obstacle]

	floorW  float32
	floorD  float32
	gravity float32
	dt      float32
}

// NewMovementSystem creates a movement system for the given floor and timestep.
func NewMovementSystem(w *ecs.World, floorW, floorD, gravity, dt float32) *MovementSystem {
	return &MovementSystem{
		agents:    *ecs.NewFilter3[components.Position, components.Velocity, components.Agent](w),
		obstacles: *ecs.NewFilter3[components.Position, components.Velocity, components.Obstacle](w),
		floorW:    floorW,
		floorD:    floorD,
		gravity:   gravity,
		dt:        dt,
	}
}

// onFloor reports whether a position is above the floor rectangle.
func (s *MovementSystem) onFloor(x, z float32) bool {
	return x >= 0 && x <= s.floorW && z >= 0 && z <= s.floorD
}

// Update runs one integration step.
func (s *MovementSystem) Update(w *ecs.World) {
	query := s.agents.Query()
	for query.Next() {
		pos, vel, ag := query.Get()

		if !ag.Active {
			continue
		}

		pos.X += vel.X * s.dt
		pos.Y += vel.Y * s.dt
		pos.Z += vel.Z * s.dt

		if pos.Y >= 0 && s.onFloor(pos.X, pos.Z) {
			pos.Y = 0
			vel.Y = 0
		} else {
			vel.Y -= s.gravity * s.dt
		}
	}

	obstacles := s.obstacles.Query()
	for obstacles.Next() {
		pos, vel, ob := obstacles.Get()

		// Locked obstacles never move; held ones are posed by carry follow.
		if ob.Lock != components.Unlocked || ob.Held {
			continue
		}

		pos.X += vel.X * s.dt
		pos.Y += vel.Y * s.dt
		pos.Z += vel.Z * s.dt

		vel.X *= ob.Drag
		vel.Z *= ob.Drag

		if pos.Y >= 0 && s.onFloor(pos.X, pos.Z) {
			pos.Y = 0
			vel.Y = 0
		} else {
			vel.Y -= s.gravity * s.dt
		}
	}
}
