package game

import (
	"github.com/mlange-42/ark/ecs"

	"github.com/pthm-cable/hideseek/components"
	"github.com/pthm-cable/hideseek/config"
)

// Phase is the episode phase. During Prep, seekers are frozen and blinded
// and hiders cannot be caught; Seek runs until the timer expires or every
// hider is caught.
type Phase uint8

const (
	PhasePrep Phase = iota
	PhaseSeek
)

// String returns the phase name.
func (p Phase) String() string {
	if p == PhaseSeek {
		return "seek"
	}
	return "prep"
}

// Outcome is how an episode ended.
type Outcome uint8

const (
	HidersWin  Outcome = iota // seek timer expired with a hider still active
	SeekersWin                // every hider caught (or fallen)
)

// String returns the outcome name.
func (o Outcome) String() string {
	if o == SeekersWin {
		return "seekers_win"
	}
	return "hiders_win"
}

// tickPhase advances the phase timer by dt seconds.
func (e *Env) tickPhase(dt float32) {
	e.phaseTime -= dt
	if e.phaseTime > 0 {
		return
	}

	switch e.phase {
	case PhasePrep:
		e.phase = PhaseSeek
		e.phaseTime = float32(e.cfg.Episode.SeekDuration)
		e.log.Debug().Int("episode", e.episode).Msg("seek phase started")
	case PhaseSeek:
		// Time ran out: the hiders survived.
		e.EndEpisode(HidersWin)
	}
}

// ReportCatch resolves a seeker-hider contact. During Prep it is silently
// ignored: seekers cannot score before the seek phase begins. Returns
// whether the catch counted.
func (e *Env) ReportCatch(hider, seeker ecs.Entity) bool {
	if e.phase != PhaseSeek {
		return false
	}

	h := e.agentMap.Get(hider)
	s := e.agentMap.Get(seeker)
	if h.Team != components.TeamHider || s.Team != components.TeamSeeker {
		return false
	}
	if !h.Active || !s.Active {
		return false
	}

	// Front-loaded catch bonus: 2.0 at the instant the seek phase starts,
	// decaying linearly to 1.0 as the timer runs out.
	seekDuration := float32(e.cfg.Episode.SeekDuration)
	e.addReward(s, 1+e.phaseTime/seekDuration)
	e.addReward(h, float32(e.cfg.Rewards.CatchPenalty))

	e.deactivateAgent(hider, h)
	e.remainingHiders--
	e.collector.RecordCatch()
	e.log.Debug().
		Int("episode", e.episode).
		Int("hider", h.Index).
		Int("seeker", s.Index).
		Int("remaining", e.remainingHiders).
		Msg("hider caught")

	if e.remainingHiders <= 0 {
		e.EndEpisode(SeekersWin)
	}
	return true
}

// EndEpisode finalizes rewards for the given outcome, signals termination to
// every agent, records telemetry, and resets for the next episode.
func (e *Env) EndEpisode(outcome Outcome) {
	cfg := e.cfg

	if outcome == HidersWin {
		win := float32(cfg.Rewards.WinReward)
		for _, entity := range e.hiders {
			ag := e.agentMap.Get(entity)
			if !ag.Active {
				continue
			}
			reward := win
			if ag.LockBonusArmed {
				reward += float32(cfg.Rewards.LockSurvivalBonus)
			}
			e.addReward(ag, reward)
		}
		for _, entity := range e.seekers {
			e.addReward(e.agentMap.Get(entity), -win)
		}
	}
	// Seeker win carries no terminal reward beyond what catches granted.

	for _, entity := range e.roster {
		e.agentMap.Get(entity).Done = true
	}

	hiderReward, seekerReward := e.meanEpisodeRewards()
	e.collector.EndEpisode(outcome.String(),
		float64(e.episodeTicks)*e.cfg.Sim.DT, e.episodeTicks,
		hiderReward, seekerReward)

	e.log.Info().
		Int("episode", e.episode).
		Str("outcome", outcome.String()).
		Int64("ticks", e.episodeTicks).
		Float64("hider_reward", hiderReward).
		Float64("seeker_reward", seekerReward).
		Msg("episode finished")

	e.episode++
	e.ResetEpisode()
}

// ResetEpisode returns the world to its initial state: Prep phase, full
// timer, every obstacle at its home pose in default physical state, every
// agent at its spawn pose and reactivated. Idempotent with respect to
// whatever state preceded it.
func (e *Env) ResetEpisode() {
	cfg := e.cfg

	e.phase = PhasePrep
	e.phaseTime = float32(cfg.Episode.PrepDuration)
	e.remainingHiders = len(e.hiders)
	e.episodeTicks = 0

	for _, entity := range e.obstacles {
		ob := e.obstacleMap.Get(entity)
		ob.Lock = components.Unlocked
		ob.Held = false
		ob.HeldBy = ecs.Entity{}
		ob.Mass = float32(cfg.Grab.FreeMass)
		ob.Drag = float32(cfg.Grab.FreeDrag)
		*e.posMap.Get(entity) = ob.HomePos
		e.rotMap.Get(entity).Yaw = ob.HomeYaw
		*e.velMap.Get(entity) = components.Velocity{}
	}

	e.resetTeam(e.hiders, cfg.Spawns.Hiders)
	e.resetTeam(e.seekers, cfg.Spawns.Seekers)
}

// resetTeam moves a roster back to its spawn poses. Fewer spawn points than
// agents truncates the pose loop: extra agents keep their pose but are still
// reactivated.
func (e *Env) resetTeam(team []ecs.Entity, spawns []config.PoseConfig) {
	for i, entity := range team {
		ag := e.agentMap.Get(entity)
		ag.Active = true
		ag.HasHold = false
		ag.Holding = ecs.Entity{}
		ag.LockBonusArmed = false
		ag.LastLockAt = 0
		ag.EpisodeReward = 0
		*e.velMap.Get(entity) = components.Velocity{}

		if i >= len(spawns) {
			continue
		}
		pose := spawns[i]
		*e.posMap.Get(entity) = components.Position{X: float32(pose.X), Z: float32(pose.Z)}
		e.rotMap.Get(entity).Yaw = float32(pose.Yaw)
	}
}

// addReward credits both the pending (trainer-facing) and episode-total
// accumulators.
func (e *Env) addReward(ag *components.Agent, reward float32) {
	ag.Reward += reward
	ag.EpisodeReward += reward
}

// deactivateAgent removes an agent from play until the next reset. Any held
// obstacle is released so it does not stay coupled to a dead hand.
func (e *Env) deactivateAgent(entity ecs.Entity, ag *components.Agent) {
	ag.Active = false
	if ag.HasHold {
		e.Release(ag.Holding)
	}
	*e.velMap.Get(entity) = components.Velocity{}
}

// meanEpisodeRewards returns per-team mean episode rewards for telemetry.
func (e *Env) meanEpisodeRewards() (hiders, seekers float64) {
	for _, entity := range e.hiders {
		hiders += float64(e.agentMap.Get(entity).EpisodeReward)
	}
	if len(e.hiders) > 0 {
		hiders /= float64(len(e.hiders))
	}
	for _, entity := range e.seekers {
		seekers += float64(e.agentMap.Get(entity).EpisodeReward)
	}
	if len(e.seekers) > 0 {
		seekers /= float64(len(e.seekers))
	}
	return hiders, seekers
}
