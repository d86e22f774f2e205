package components

import "github.com/mlange-42/ark/ecs"

// LockState is the lock status of an obstacle. A locked obstacle is
// immovable until unlocked by the team that locked it.
type LockState uint8

const (
	Unlocked LockState = iota
	LockedByHider
	LockedBySeeker
)

// LockStateFor returns the lock state owned by the given team.
func LockStateFor(t Team) LockState {
	if t == TeamSeeker {
		return LockedBySeeker
	}
	return LockedByHider
}

// Owner returns the team holding the lock, and whether the state is locked.
func (l LockState) Owner() (Team, bool) {
	switch l {
	case LockedByHider:
		return TeamHider, true
	case LockedBySeeker:
		return TeamSeeker, true
	}
	return TeamHider, false
}

// Obstacle holds the grab/lock state machine and physical profile of a
// movable obstacle.
//
// HeldBy mirrors Agent.Holding from the other side and is likewise a
// relation-only reference guarded by Held.
type Obstacle struct {
	Lock LockState

	HeldBy ecs.Entity
	Held   bool

	// Physical profile. Mass and drag switch between the free and grabbed
	// values; a locked obstacle ignores both and never moves.
	Mass float32
	Drag float32 // per-tick velocity retention

	HalfW, HalfD float32 // horizontal half extents of the collision box

	// Initial pose captured at world build, used for out-of-bounds respawn
	// and episode reset.
	HomePos Position
	HomeYaw float32

	SeekerOnlyLock bool // hiders may not lock this obstacle
}
