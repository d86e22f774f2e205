package game

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStepAdvancesClock(t *testing.T) {
	e := newTestEnv(t, "")
	results := e.Step(noActions(e))

	assert.Equal(t, int64(1), e.Tick())
	require.Len(t, results, e.AgentCount())
	assert.InDelta(t, e.cfg.Episode.PrepDuration-e.cfg.Sim.DT, e.PhaseTimeRemaining(), 1e-4)
}

func TestShortActionSliceLeavesRestUnactioned(t *testing.T) {
	e := newTestEnv(t, "")
	results := e.Step([]Action{{Continuous: [3]float32{1, 0, 0}}})
	require.Len(t, results, 3)
}

func TestHiderMovesDuringPrep(t *testing.T) {
	e := newTestEnv(t, "")
	hider := e.hiders[0]
	moveTo(e, hider, 10, 10)

	actions := noActions(e)
	actions[0] = Action{Continuous: [3]float32{1, 0, 0}}
	e.Step(actions)

	pos := e.posMap.Get(hider)
	want := 10 + e.cfg.Derived.HiderSpeed*e.cfg.Derived.DT32
	assert.InDelta(t, want, pos.X, 1e-4)
	assert.Equal(t, float32(0), e.rotMap.Get(hider).Yaw)
}

func TestSeekerFrozenDuringPrep(t *testing.T) {
	e := newTestEnv(t, "")
	seeker := e.seekers[0]
	start := *e.posMap.Get(seeker)

	actions := noActions(e)
	actions[2] = Action{Continuous: [3]float32{1, 1, 0}, Interact: OpGrab}
	e.Step(actions)

	pos := e.posMap.Get(seeker)
	assert.Equal(t, start.X, pos.X)
	assert.Equal(t, start.Z, pos.Z)
	assert.False(t, e.agentMap.Get(seeker).HasHold, "frozen seekers cannot interact")

	// Same action after the prep timer expires does move the seeker.
	startSeek(e)
	e.Step(actions)
	assert.Greater(t, pos.X, start.X)
}

func TestContinuousActionClamped(t *testing.T) {
	e := newTestEnv(t, "")
	hider := e.hiders[0]

	actions := noActions(e)
	actions[0] = Action{Continuous: [3]float32{50, 0, 0}}
	e.Step(actions)

	assert.InDelta(t, e.cfg.Derived.HiderSpeed, e.velMap.Get(hider).X, 1e-4)
}

func TestYawDeadzone(t *testing.T) {
	e := newTestEnv(t, "")
	hider := e.hiders[0]
	e.rotMap.Get(hider).Yaw = 1.0

	actions := noActions(e)
	actions[0] = Action{Continuous: [3]float32{0.05, 0.05, 0}}
	e.Step(actions)
	assert.Equal(t, float32(1.0), e.rotMap.Get(hider).Yaw, "sub-deadzone intent keeps yaw")

	actions[0] = Action{Continuous: [3]float32{0, 1, 0}}
	e.Step(actions)
	assert.InDelta(t, 1.5708, e.rotMap.Get(hider).Yaw, 1e-3)
}

func TestSeekerBlindedDuringPrep(t *testing.T) {
	e := newTestEnv(t, "")
	results := e.Step(noActions(e))

	seekerObs := results[2].Obs
	for i, v := range seekerObs {
		if i == obsPrepFlag {
			assert.Equal(t, float32(1), v)
			continue
		}
		assert.Equal(t, float32(0), v, "index %d leaks state to a blinded seeker", i)
	}

	// Hiders observe normally during prep.
	hiderObs := results[0].Obs
	assert.NotEqual(t, float32(0), hiderObs[obsPosX])
	assert.Equal(t, float32(1), hiderObs[obsPrepFlag])
}

func TestSeekerObservesDuringSeek(t *testing.T) {
	e := newTestEnv(t, "")
	startSeek(e)
	results := e.Step(noActions(e))

	seekerObs := results[2].Obs
	assert.NotEqual(t, float32(0), seekerObs[obsPosX])
	assert.Equal(t, float32(0), seekerObs[obsPrepFlag])
}

func TestObservationContents(t *testing.T) {
	e := newTestEnv(t, "")
	hider := e.hiders[0]
	moveTo(e, hider, 10, 5)
	e.rotMap.Get(hider).Yaw = 0

	actions := noActions(e)
	actions[0] = Action{Continuous: [3]float32{1, 0, 0}}
	results := e.Step(actions)
	obs := results[0].Obs

	speed := e.cfg.Derived.HiderSpeed
	dt := e.cfg.Derived.DT32
	assert.InDelta(t, (10+speed*dt)/20, obs[obsPosX], 1e-4)
	assert.InDelta(t, 5.0/20, obs[obsPosZ], 1e-4)
	assert.InDelta(t, 1, obs[obsFwdX], 1e-4)
	assert.Equal(t, float32(0), obs[obsFwdY], "forward direction stays horizontal")
	assert.InDelta(t, 0, obs[obsFwdZ], 1e-4)
	assert.InDelta(t, 1, obs[obsVelX], 1e-4)
	assert.Equal(t, float32(0), obs[obsHoldFlag])
}

func TestHoldFlagSetWhileCarrying(t *testing.T) {
	e := newTestEnv(t, "")
	hider := e.hiders[0]
	approach(e, hider, e.obstacles[0])
	require.True(t, e.TryGrab(e.obstacles[0], hider))

	results := e.Step(noActions(e))
	assert.Equal(t, float32(1), results[0].Obs[obsHoldFlag])
}

func TestRewardDrainsOnEmission(t *testing.T) {
	e := newTestEnv(t, "")
	startSeek(e)
	require.True(t, e.ReportCatch(e.hiders[0], e.seekers[0]))

	results := e.Step(noActions(e))
	assert.Greater(t, results[2].Reward, float32(0))
	assert.True(t, results[0].Done)

	results = e.Step(noActions(e))
	assert.Equal(t, float32(0), results[2].Reward)
	assert.False(t, results[0].Done)
}

func TestObservationsDoNotAdvance(t *testing.T) {
	e := newTestEnv(t, "")
	results := e.Observations()

	require.Len(t, results, e.AgentCount())
	assert.Equal(t, int64(0), e.Tick())
	assert.InDelta(t, e.cfg.Episode.PrepDuration, e.PhaseTimeRemaining(), 1e-5)
}

func TestAgentFallsOutOfWorld(t *testing.T) {
	e := newTestEnv(t, "")
	startSeek(e)
	hider := e.hiders[0]
	pos := e.posMap.Get(hider)
	pos.Y = e.cfg.Derived.KillY32 - 1

	results := e.Step(noActions(e))

	assert.InDelta(t, e.cfg.Rewards.FallPenalty, results[0].Reward, 1e-4)
	assert.True(t, results[0].Done)
	assert.False(t, e.agentMap.Get(hider).Active)
	assert.Equal(t, 1, e.RemainingHiders())
}

func TestLastHiderFallingEndsEpisode(t *testing.T) {
	e := newTestEnv(t, "")
	startSeek(e)
	e.posMap.Get(e.hiders[0]).Y = e.cfg.Derived.KillY32 - 1
	e.posMap.Get(e.hiders[1]).Y = e.cfg.Derived.KillY32 - 1

	e.Step(noActions(e))

	assert.Equal(t, 1, e.Episode())
	assert.Equal(t, PhasePrep, e.Phase())
}

func TestFallenObstacleRespawns(t *testing.T) {
	e := newTestEnv(t, "")
	hider := e.hiders[0]
	obstacle := e.obstacles[0]
	approach(e, hider, obstacle)
	require.True(t, e.TryGrab(obstacle, hider))

	// A carried obstacle tracks its holder, so it only leaves the world
	// when the holder does.
	e.posMap.Get(hider).Y = e.cfg.Derived.KillY32 - 1
	e.Step(noActions(e))

	ob := e.obstacleMap.Get(obstacle)
	pos := e.posMap.Get(obstacle)
	assert.False(t, ob.Held)
	assert.False(t, e.agentMap.Get(hider).HasHold, "holder's grip clears with the respawn")
	assert.Equal(t, ob.HomePos.X, pos.X)
	assert.Equal(t, float32(0), pos.Y)
}

func TestCatchDetectionOnContact(t *testing.T) {
	e := newTestEnv(t, "")
	startSeek(e)
	moveTo(e, e.hiders[0], 10, 10)
	moveTo(e, e.hiders[1], 2, 2)
	moveTo(e, e.seekers[0], 10.5, 10)

	e.Step(noActions(e))

	assert.False(t, e.agentMap.Get(e.hiders[0]).Active)
	assert.True(t, e.agentMap.Get(e.hiders[1]).Active)
	assert.Equal(t, 1, e.RemainingHiders())
}

func TestNoCatchDetectionDuringPrep(t *testing.T) {
	e := newTestEnv(t, "")
	moveTo(e, e.hiders[0], 10, 10)
	moveTo(e, e.seekers[0], 10.2, 10)

	e.Step(noActions(e))

	assert.True(t, e.agentMap.Get(e.hiders[0]).Active)
	assert.Equal(t, 2, e.RemainingHiders())
}
