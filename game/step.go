package game

import "github.com/pthm-cable/hideseek/components"

// StepResult is one agent's output for a tick: observation, reward
// accumulated since the previous step, and whether its episode terminated.
type StepResult struct {
	Obs    [ObsSize]float32
	Reward float32
	Done   bool
}

// Step advances the simulation by one fixed timestep. Actions are indexed
// by roster order (hiders then seekers); a short action slice leaves the
// remaining agents un-actioned rather than failing.
//
// Order within a tick: actions, movement integration, carry follow,
// collision resolution, out-of-bounds handling, catch detection, phase
// timer. An episode ending anywhere in that chain finalizes rewards and
// resets before observations are built, so no agent ever observes a
// transient inter-episode state.
func (e *Env) Step(actions []Action) []StepResult {
	e.tick++
	e.episodeTicks++
	e.simTime += e.cfg.Sim.DT

	for i, entity := range e.roster {
		if i >= len(actions) {
			break
		}
		e.applyAction(entity, actions[i])
	}

	e.movement.Update(e.world)
	e.carryFollow()
	e.collision.Update(e.world)
	e.checkBounds()
	e.detectCatches()
	e.tickPhase(e.cfg.Derived.DT32)

	results := make([]StepResult, len(e.roster))
	for i, entity := range e.roster {
		ag := e.agentMap.Get(entity)
		results[i] = StepResult{
			Obs:    e.observe(entity),
			Reward: ag.Reward,
			Done:   ag.Done,
		}
		ag.Reward = 0
		ag.Done = false
	}
	return results
}

// Observations builds the current observation set without advancing the
// simulation, draining pending rewards and done flags. Used to bootstrap a
// trainer session with the initial state.
func (e *Env) Observations() []StepResult {
	results := make([]StepResult, len(e.roster))
	for i, entity := range e.roster {
		ag := e.agentMap.Get(entity)
		results[i] = StepResult{
			Obs:    e.observe(entity),
			Reward: ag.Reward,
			Done:   ag.Done,
		}
		ag.Reward = 0
		ag.Done = false
	}
	return results
}

// checkBounds handles everything that fell below the world's lower bound:
// obstacles respawn at their home pose, agents take the fall penalty and
// have their episode ended on the spot.
func (e *Env) checkBounds() {
	killY := e.cfg.Derived.KillY32

	for _, obstacle := range e.obstacles {
		if e.posMap.Get(obstacle).Y < killY {
			e.respawnObstacle(obstacle)
		}
	}

	for _, entity := range e.roster {
		ag := e.agentMap.Get(entity)
		if !ag.Active || e.posMap.Get(entity).Y >= killY {
			continue
		}

		e.addReward(ag, float32(e.cfg.Rewards.FallPenalty))
		ag.Done = true
		e.deactivateAgent(entity, ag)
		e.collector.RecordFall()
		e.log.Debug().
			Int("episode", e.episode).
			Str("team", ag.Team.String()).
			Int("index", ag.Index).
			Msg("agent fell out of the world")

		// A fallen hider is gone for the episode, same as a caught one.
		if ag.Team == components.TeamHider {
			e.remainingHiders--
			if e.remainingHiders <= 0 {
				e.EndEpisode(SeekersWin)
			}
		}
	}
}

// detectCatches reports every seeker-hider contact this tick. ReportCatch
// may end the episode; the reset puts the world back in Prep, which stops
// further scanning.
func (e *Env) detectCatches() {
	if e.phase != PhaseSeek {
		return
	}

	radius2 := e.cfg.Derived.CatchRadius2
	for _, seeker := range e.seekers {
		if !e.agentMap.Get(seeker).Active {
			continue
		}
		sp := e.posMap.Get(seeker)
		for _, hider := range e.hiders {
			if !e.agentMap.Get(hider).Active {
				continue
			}
			hp := e.posMap.Get(hider)
			dx := hp.X - sp.X
			dz := hp.Z - sp.Z
			if dx*dx+dz*dz <= radius2 {
				e.ReportCatch(hider, seeker)
			}
			if e.phase != PhaseSeek {
				return
			}
		}
	}
}
