package game

import (
	"math"

	"github.com/mlange-42/ark/ecs"

	"github.com/pthm-cable/hideseek/components"
)

// InteractOp is the discrete action selector.
type InteractOp uint8

const (
	OpNothing InteractOp = iota
	OpGrab               // toggle: release if holding, else grab nearest in range
	OpLock               // lock the held obstacle
)

// Action is one agent's per-tick action vector, as delivered by the trainer:
// three continuous scalars (only the first two are used, as world-space
// horizontal movement intent) and one discrete selector.
type Action struct {
	Continuous [3]float32
	Interact   InteractOp
}

// applyAction consumes one agent's action for this tick. Actions on
// inactive agents are ignored; a seeker's action is ignored entirely while
// Prep is active (frozen, not merely un-rewarded).
func (e *Env) applyAction(entity ecs.Entity, act Action) {
	ag := e.agentMap.Get(entity)
	if !ag.Active {
		return
	}

	vel := e.velMap.Get(entity)

	if ag.Team == components.TeamSeeker && e.phase == PhasePrep {
		vel.X = 0
		vel.Z = 0
		return
	}

	ix := clamp1(act.Continuous[0])
	iz := clamp1(act.Continuous[1])

	// Horizontal velocity is set directly from intent; only the vertical
	// (gravity) component is preserved.
	vel.X = ix * ag.Speed
	vel.Z = iz * ag.Speed

	// Yaw snaps to the movement direction, but only above a deadzone so
	// near-zero inputs don't jitter the orientation.
	deadzone := float32(e.cfg.Agents.TurnDeadzone)
	if ix*ix+iz*iz > deadzone*deadzone {
		e.rotMap.Get(entity).Yaw = float32(math.Atan2(float64(iz), float64(ix)))
	}

	switch act.Interact {
	case OpGrab:
		e.toggleGrab(entity, ag)
	case OpLock:
		if ag.HasHold {
			e.TryLock(ag.Holding, entity)
		}
	}
}

// clamp1 bounds a continuous action scalar to [-1, 1].
func clamp1(v float32) float32 {
	if v > 1 {
		return 1
	}
	if v < -1 {
		return -1
	}
	return v
}
