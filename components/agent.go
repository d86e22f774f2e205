package components

import "github.com/mlange-42/ark/ecs"

// Team identifies which side an agent plays on.
type Team uint8

const (
	TeamHider Team = iota
	TeamSeeker
)

// String returns the team name.
func (t Team) String() string {
	if t == TeamSeeker {
		return "seeker"
	}
	return "hider"
}

// Agent holds per-agent state beyond kinematics.
//
// Holding is a relation-only reference: the obstacle's lifetime is owned by
// the world, so HasHold must be checked before dereferencing.
type Agent struct {
	Team   Team
	Index  int     // roster index within the team
	Speed  float32 // target speed at full movement intent
	Radius float32

	Active bool // false once caught or fallen, until episode reset

	Holding ecs.Entity
	HasHold bool

	// Per-episode transients for the lock-based reward window.
	LockBonusArmed bool
	LastLockAt     float32 // sim-time of the most recent successful lock

	// Reward accumulation. Reward is drained by the trainer boundary each
	// step; EpisodeReward runs for the whole episode and feeds telemetry.
	Reward        float32
	EpisodeReward float32
	Done          bool // episode-terminated flag, cleared once emitted
}
