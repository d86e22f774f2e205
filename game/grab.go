package game

import (
	"github.com/mlange-42/ark/ecs"

	"github.com/pthm-cable/hideseek/components"
	"github.com/pthm-cable/hideseek/systems"
)

// toggleGrab implements the grab/release discrete action: release the held
// obstacle, or grab the nearest one in range. Failures are silent no-ops;
// the policy learns from reward, not from errors.
func (e *Env) toggleGrab(entity ecs.Entity, ag *components.Agent) {
	if ag.HasHold {
		e.Release(ag.Holding)
		return
	}
	if target, ok := e.nearestObstacle(entity); ok {
		e.TryGrab(target, entity)
	}
}

// nearestObstacle returns the closest obstacle within grab range.
func (e *Env) nearestObstacle(entity ecs.Entity) (ecs.Entity, bool) {
	pos := e.posMap.Get(entity)

	best := e.cfg.Derived.GrabRange2
	var bestEntity ecs.Entity
	found := false
	for _, obstacle := range e.obstacles {
		op := e.posMap.Get(obstacle)
		dx := op.X - pos.X
		dz := op.Z - pos.Z
		d2 := dx*dx + dz*dz
		if d2 <= best {
			best = d2
			bestEntity = obstacle
			found = true
		}
	}
	return bestEntity, found
}

// TryGrab couples the obstacle to the agent. Fails if the obstacle is
// already held or locked by the opposing team; a lock held by the agent's
// own team is cleared first (unlock-on-regrab). On success the obstacle
// switches to its light grabbed profile, stops colliding with its holder,
// and snaps to the carry pose in front of the agent.
func (e *Env) TryGrab(obstacle, agent ecs.Entity) bool {
	ob := e.obstacleMap.Get(obstacle)
	ag := e.agentMap.Get(agent)

	if ob.Held {
		return false
	}
	if owner, locked := ob.Lock.Owner(); locked {
		if owner != ag.Team {
			return false
		}
		e.TryUnlock(obstacle, agent)
	}

	ob.Held = true
	ob.HeldBy = agent
	ob.Mass = float32(e.cfg.Grab.GrabbedMass)
	ob.Drag = float32(e.cfg.Grab.GrabbedDrag)

	ag.HasHold = true
	ag.Holding = obstacle

	e.snapCarry(obstacle, agent)
	return true
}

// Release decouples a held obstacle: collision with the holder resumes, the
// heavy free profile is restored, and residual velocity is damped so the
// release doesn't launch the obstacle.
func (e *Env) Release(obstacle ecs.Entity) {
	ob := e.obstacleMap.Get(obstacle)
	if !ob.Held {
		return
	}

	holder := ob.HeldBy
	ob.Held = false
	ob.HeldBy = ecs.Entity{}
	ob.Mass = float32(e.cfg.Grab.FreeMass)
	ob.Drag = float32(e.cfg.Grab.FreeDrag)

	damping := float32(e.cfg.Grab.ReleaseDamping)
	vel := e.velMap.Get(obstacle)
	vel.X *= damping
	vel.Y *= damping
	vel.Z *= damping

	// Re-validate before touching the back-reference; the holder may have
	// been reset or deactivated in the same tick.
	if e.world.Alive(holder) {
		ag := e.agentMap.Get(holder)
		if ag.HasHold && ag.Holding == obstacle {
			ag.HasHold = false
			ag.Holding = ecs.Entity{}
		}
	}
}

// TryLock fixes the obstacle in place for the agent's team. Fails if
// already locked, or if a hider attempts it on a seeker-only obstacle. Any
// current grab is force-released first; locking through a held obstacle
// therefore clears the hold.
func (e *Env) TryLock(obstacle, agent ecs.Entity) bool {
	ob := e.obstacleMap.Get(obstacle)
	ag := e.agentMap.Get(agent)

	if _, locked := ob.Lock.Owner(); locked {
		return false
	}
	if ag.Team == components.TeamHider && ob.SeekerOnlyLock {
		return false
	}

	e.Release(obstacle)
	ob.Lock = components.LockStateFor(ag.Team)
	*e.velMap.Get(obstacle) = components.Velocity{}

	ag.LastLockAt = float32(e.simTime)
	ag.LockBonusArmed = true
	e.collector.RecordLock()
	return true
}

// TryUnlock clears the lock if the agent's team owns it.
func (e *Env) TryUnlock(obstacle, agent ecs.Entity) bool {
	ob := e.obstacleMap.Get(obstacle)
	ag := e.agentMap.Get(agent)

	owner, locked := ob.Lock.Owner()
	if !locked || owner != ag.Team {
		return false
	}
	ob.Lock = components.Unlocked
	return true
}

// carryBlockers collects line-of-sight blockers for a carried obstacle:
// every wall plus every obstacle except the carried one.
func (e *Env) carryBlockers(except ecs.Entity) []systems.AABB {
	e.scratchBlockers = e.scratchBlockers[:0]
	e.scratchBlockers = append(e.scratchBlockers, e.walls...)
	for _, obstacle := range e.obstacles {
		if obstacle == except {
			continue
		}
		ob := e.obstacleMap.Get(obstacle)
		pos := e.posMap.Get(obstacle)
		rot := e.rotMap.Get(obstacle)
		e.scratchBlockers = append(e.scratchBlockers,
			systems.OrientedAABB(pos.X, pos.Z, rot.Yaw, ob.HalfW, ob.HalfD))
	}
	return e.scratchBlockers
}

// snapCarry poses a held obstacle at its carry position in front of the
// holder and gives it the holder's velocity (the damped residual on
// release).
func (e *Env) snapCarry(obstacle, holder ecs.Entity) {
	ob := e.obstacleMap.Get(obstacle)
	holderPos := e.posMap.Get(holder)
	holderRot := e.rotMap.Get(holder)

	pos := e.posMap.Get(obstacle)
	rot := e.rotMap.Get(obstacle)

	x, z, yaw := systems.CarryPose(*holderPos, holderRot.Yaw, rot.Yaw,
		ob.HalfW, ob.HalfD,
		float32(e.cfg.Grab.CarryDistance), float32(e.cfg.Grab.MinClearance),
		e.carryBlockers(obstacle))

	pos.X = x
	pos.Y = holderPos.Y
	pos.Z = z
	rot.Yaw = yaw
	*e.velMap.Get(obstacle) = *e.velMap.Get(holder)
}

// carryFollow re-poses every held obstacle after movement, dragging it
// along with its holder.
func (e *Env) carryFollow() {
	for _, obstacle := range e.obstacles {
		ob := e.obstacleMap.Get(obstacle)
		if !ob.Held {
			continue
		}
		e.snapCarry(obstacle, ob.HeldBy)
	}
}

// respawnObstacle returns an out-of-bounds obstacle to its home pose with
// grab and lock state cleared, independent of episode boundaries.
func (e *Env) respawnObstacle(obstacle ecs.Entity) {
	e.Release(obstacle)

	ob := e.obstacleMap.Get(obstacle)
	ob.Lock = components.Unlocked
	ob.Mass = float32(e.cfg.Grab.FreeMass)
	ob.Drag = float32(e.cfg.Grab.FreeDrag)
	*e.posMap.Get(obstacle) = ob.HomePos
	e.rotMap.Get(obstacle).Yaw = ob.HomeYaw
	*e.velMap.Get(obstacle) = components.Velocity{}
}
