package game

import (
	"math"

	"github.com/mlange-42/ark/ecs"

	"github.com/pthm-cable/hideseek/components"
)

// ObsSize is the fixed length of every observation vector: normalized
// position (3), forward direction (3), normalized velocity (3), prep-phase
// flag (1), holding flag (1).
//
// The shape is load-bearing: the external trainer allocates fixed-size
// tensors from it, so both the normal and blinded emission paths below must
// stay in lockstep with any field change.
const ObsSize = 11

const (
	obsPosX = iota
	obsPosY
	obsPosZ
	obsFwdX
	obsFwdY
	obsFwdZ
	obsVelX
	obsVelY
	obsVelZ
	obsPrepFlag
	obsHoldFlag
)

// observe builds one agent's observation vector for the current tick.
//
// Blindness rule: a seeker during Prep gets position, direction and
// velocity zeroed with only the phase flag set, so it cannot memorize hider
// positions before the seek phase begins.
func (e *Env) observe(entity ecs.Entity) [ObsSize]float32 {
	var obs [ObsSize]float32

	ag := e.agentMap.Get(entity)
	prep := e.phase == PhasePrep
	if prep {
		obs[obsPrepFlag] = 1
	}
	if prep && ag.Team == components.TeamSeeker {
		return obs
	}

	pos := e.posMap.Get(entity)
	rot := e.rotMap.Get(entity)
	vel := e.velMap.Get(entity)

	w := e.cfg.Derived.ArenaW32
	d := e.cfg.Derived.ArenaD32
	obs[obsPosX] = pos.X / w
	obs[obsPosY] = pos.Y / w
	obs[obsPosZ] = pos.Z / d

	obs[obsFwdX] = float32(math.Cos(float64(rot.Yaw)))
	obs[obsFwdZ] = float32(math.Sin(float64(rot.Yaw)))

	obs[obsVelX] = vel.X / ag.Speed
	obs[obsVelY] = vel.Y / ag.Speed
	obs[obsVelZ] = vel.Z / ag.Speed

	if ag.HasHold {
		obs[obsHoldFlag] = 1
	}

	return obs
}
