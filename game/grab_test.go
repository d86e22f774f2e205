package game

import (
	"testing"

	"github.com/mlange-42/ark/ecs"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pthm-cable/hideseek/components"
)

// approach puts the agent one unit west of the obstacle, facing it.
func approach(e *Env, agent, obstacle ecs.Entity) {
	pos := e.posMap.Get(obstacle)
	moveTo(e, agent, pos.X-1.0, pos.Z)
	e.rotMap.Get(agent).Yaw = 0
}

func TestGrabCouplesObstacle(t *testing.T) {
	e := newTestEnv(t, "")
	hider := e.hiders[0]
	obstacle := e.obstacles[0]
	approach(e, hider, obstacle)

	require.True(t, e.TryGrab(obstacle, hider))

	ob := e.obstacleMap.Get(obstacle)
	ag := e.agentMap.Get(hider)
	assert.True(t, ob.Held)
	assert.Equal(t, hider, ob.HeldBy)
	assert.Equal(t, float32(e.cfg.Grab.GrabbedMass), ob.Mass)
	assert.True(t, ag.HasHold)
	assert.Equal(t, obstacle, ag.Holding)

	// Snapped to the carry standoff directly in front of the holder.
	hp := e.posMap.Get(hider)
	op := e.posMap.Get(obstacle)
	assert.InDelta(t, float64(hp.X)+e.cfg.Grab.CarryDistance, op.X, 1e-3)
	assert.InDelta(t, hp.Z, op.Z, 1e-3)
}

func TestGrabFailsWhenAlreadyHeld(t *testing.T) {
	e := newTestEnv(t, "")
	obstacle := e.obstacles[0]
	approach(e, e.hiders[0], obstacle)
	require.True(t, e.TryGrab(obstacle, e.hiders[0]))

	assert.False(t, e.TryGrab(obstacle, e.hiders[1]))
	assert.Equal(t, e.hiders[0], e.obstacleMap.Get(obstacle).HeldBy)
}

func TestGrabFailsAgainstOpposingLock(t *testing.T) {
	e := newTestEnv(t, "")
	obstacle := e.obstacles[0]
	require.True(t, e.TryLock(obstacle, e.seekers[0]))

	assert.False(t, e.TryGrab(obstacle, e.hiders[0]))
	assert.Equal(t, components.LockedBySeeker, e.obstacleMap.Get(obstacle).Lock)
}

func TestRegrabClearsOwnTeamLock(t *testing.T) {
	e := newTestEnv(t, "")
	obstacle := e.obstacles[0]
	require.True(t, e.TryLock(obstacle, e.hiders[0]))

	require.True(t, e.TryGrab(obstacle, e.hiders[1]))
	ob := e.obstacleMap.Get(obstacle)
	assert.Equal(t, components.Unlocked, ob.Lock)
	assert.True(t, ob.Held)
}

func TestReleaseRestoresFreeProfile(t *testing.T) {
	e := newTestEnv(t, "")
	hider := e.hiders[0]
	obstacle := e.obstacles[0]
	approach(e, hider, obstacle)
	require.True(t, e.TryGrab(obstacle, hider))

	e.velMap.Get(obstacle).X = 5
	e.Release(obstacle)

	ob := e.obstacleMap.Get(obstacle)
	ag := e.agentMap.Get(hider)
	assert.False(t, ob.Held)
	assert.False(t, ag.HasHold)
	assert.Equal(t, float32(e.cfg.Grab.FreeMass), ob.Mass)
	assert.InDelta(t, 5*e.cfg.Grab.ReleaseDamping, e.velMap.Get(obstacle).X, 1e-4)

	// Releasing an unheld obstacle is a no-op.
	e.Release(obstacle)
	assert.False(t, ob.Held)
}

func TestLockFixesObstacle(t *testing.T) {
	e := newTestEnv(t, "")
	hider := e.hiders[0]
	obstacle := e.obstacles[0]
	approach(e, hider, obstacle)
	require.True(t, e.TryGrab(obstacle, hider))

	require.True(t, e.TryLock(obstacle, hider))

	ob := e.obstacleMap.Get(obstacle)
	assert.Equal(t, components.LockedByHider, ob.Lock)
	assert.False(t, ob.Held, "locking releases the hold")
	assert.False(t, e.agentMap.Get(hider).HasHold)
	assert.Equal(t, components.Velocity{}, *e.velMap.Get(obstacle))
	assert.True(t, e.agentMap.Get(hider).LockBonusArmed)

	// Already locked: both teams fail.
	assert.False(t, e.TryLock(obstacle, e.hiders[1]))
	assert.False(t, e.TryLock(obstacle, e.seekers[0]))
}

func TestSeekerOnlyLock(t *testing.T) {
	e := newTestEnv(t, "")
	ramp := e.obstacles[2]
	require.True(t, e.obstacleMap.Get(ramp).SeekerOnlyLock)

	assert.False(t, e.TryLock(ramp, e.hiders[0]))
	assert.Equal(t, components.Unlocked, e.obstacleMap.Get(ramp).Lock)

	assert.True(t, e.TryLock(ramp, e.seekers[0]))
	assert.Equal(t, components.LockedBySeeker, e.obstacleMap.Get(ramp).Lock)
}

func TestUnlockRequiresOwningTeam(t *testing.T) {
	e := newTestEnv(t, "")
	obstacle := e.obstacles[0]
	require.True(t, e.TryLock(obstacle, e.hiders[0]))

	assert.False(t, e.TryUnlock(obstacle, e.seekers[0]))
	assert.Equal(t, components.LockedByHider, e.obstacleMap.Get(obstacle).Lock)

	assert.True(t, e.TryUnlock(obstacle, e.hiders[1]))
	assert.Equal(t, components.Unlocked, e.obstacleMap.Get(obstacle).Lock)

	// Unlocking an unlocked obstacle fails.
	assert.False(t, e.TryUnlock(obstacle, e.hiders[1]))
}

func TestToggleGrabRespectsRange(t *testing.T) {
	e := newTestEnv(t, "")
	hider := e.hiders[0]

	// Far from every obstacle: toggling does nothing.
	moveTo(e, hider, 1, 1)
	e.toggleGrab(hider, e.agentMap.Get(hider))
	assert.False(t, e.agentMap.Get(hider).HasHold)

	// In range: grabs the nearest.
	approach(e, hider, e.obstacles[1])
	e.toggleGrab(hider, e.agentMap.Get(hider))
	ag := e.agentMap.Get(hider)
	require.True(t, ag.HasHold)
	assert.Equal(t, e.obstacles[1], ag.Holding)

	// Toggling again releases.
	e.toggleGrab(hider, ag)
	assert.False(t, ag.HasHold)
}

func TestCarryFollowTracksHolder(t *testing.T) {
	e := newTestEnv(t, "")
	hider := e.hiders[0]
	obstacle := e.obstacles[0]
	approach(e, hider, obstacle)
	require.True(t, e.TryGrab(obstacle, hider))

	moveTo(e, hider, 4, 5)
	e.rotMap.Get(hider).Yaw = 0
	e.carryFollow()

	op := e.posMap.Get(obstacle)
	assert.InDelta(t, 4+e.cfg.Grab.CarryDistance, op.X, 1e-3)
	assert.InDelta(t, 5, op.Z, 1e-3)
}
