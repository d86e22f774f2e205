package systems

import (
	"github.com/mlange-42/ark/ecs"

	"github.com/pthm-cable/hideseek/components"
)

// obstacleBox is a per-tick snapshot of one obstacle's collision state.
type obstacleBox struct {
	box    AABB
	held   bool
	holder ecs.Entity
}

// CollisionSystem resolves agent-vs-wall, agent-vs-obstacle and
// obstacle-vs-wall overlaps by axis push-out. Collision between an agent and
// the obstacle it is carrying is suppressed.
type CollisionSystem struct {
	agents    ecs.Filter2[components.Position, components.Agent]
	obstacles ecs.Filter3[components.Position, components.Rotation, components.Obstacle]

	walls []AABB
	boxes []obstacleBox // scratch, reused across ticks
}

// NewCollisionSystem creates a collision system for the given static walls.
func NewCollisionSystem(w *ecs.World, walls []AABB) *CollisionSystem {
	return &CollisionSystem{
		agents:    *ecs.NewFilter2[components.Position, components.Agent](w),
		obstacles: *ecs.NewFilter3[components.Position, components.Rotation, components.Obstacle](w),
		walls:     walls,
	}
}

// Update resolves overlaps for one tick.
func (s *CollisionSystem) Update(w *ecs.World) {
	// Push free obstacles out of walls and snapshot all collision boxes.
	s.boxes = s.boxes[:0]
	obstacles := s.obstacles.Query()
	for obstacles.Next() {
		pos, rot, ob := obstacles.Get()

		if !ob.Held && ob.Lock == components.Unlocked && pos.Y >= 0 {
			for _, wall := range s.walls {
				// Treat the obstacle's bounding circle as its pushable body.
				r := ob.HalfW
				if ob.HalfD > r {
					r = ob.HalfD
				}
				pos.X, pos.Z, _ = ResolveCircleAABB(pos.X, pos.Z, r, wall)
			}
		}

		s.boxes = append(s.boxes, obstacleBox{
			box:    OrientedAABB(pos.X, pos.Z, rot.Yaw, ob.HalfW, ob.HalfD),
			held:   ob.Held,
			holder: ob.HeldBy,
		})
	}

	agents := s.agents.Query()
	for agents.Next() {
		pos, ag := agents.Get()
		entity := agents.Entity()

		// Falling agents are past the edge; nothing left to collide with.
		if !ag.Active || pos.Y < 0 {
			continue
		}

		for _, wall := range s.walls {
			pos.X, pos.Z, _ = ResolveCircleAABB(pos.X, pos.Z, ag.Radius, wall)
		}
		for _, ob := range s.boxes {
			if ob.held && ob.holder == entity {
				continue
			}
			pos.X, pos.Z, _ = ResolveCircleAABB(pos.X, pos.Z, ag.Radius, ob.box)
		}
	}
}
