// Package telemetry records per-episode results and aggregates them into
// windowed summaries.
package telemetry

import (
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// EpisodeRecord is one finished episode.
type EpisodeRecord struct {
	Episode      int     `csv:"episode"`
	EpisodeID    string  `csv:"episode_id"`
	Outcome      string  `csv:"outcome"`
	SimTime      float64 `csv:"sim_time"`
	Ticks        int64   `csv:"ticks"`
	Catches      int     `csv:"catches"`
	Locks        int     `csv:"locks"`
	Falls        int     `csv:"falls"`
	HiderReward  float64 `csv:"hider_reward"`
	SeekerReward float64 `csv:"seeker_reward"`
}

// Collector accumulates in-episode events and produces EpisodeRecords at
// episode boundaries. A nil Collector is valid and records nothing.
type Collector struct {
	log zerolog.Logger
	out *OutputManager

	window int // episodes per logged summary, 0 disables summaries

	episode int
	catches int
	locks   int
	falls   int

	recent []EpisodeRecord
}

// NewCollector creates a collector. out may be nil (no CSV output).
func NewCollector(window int, out *OutputManager, log zerolog.Logger) *Collector {
	return &Collector{
		log:    log,
		out:    out,
		window: window,
	}
}

// RecordCatch counts a caught hider in the running episode.
func (c *Collector) RecordCatch() {
	if c == nil {
		return
	}
	c.catches++
}

// RecordLock counts a successful obstacle lock.
func (c *Collector) RecordLock() {
	if c == nil {
		return
	}
	c.locks++
}

// RecordFall counts an agent falling out of the world.
func (c *Collector) RecordFall() {
	if c == nil {
		return
	}
	c.falls++
}

// EndEpisode finalizes the running episode's record, writes it to the CSV
// output, and logs a summary once per window.
func (c *Collector) EndEpisode(outcome string, simTime float64, ticks int64, hiderReward, seekerReward float64) {
	if c == nil {
		return
	}

	record := EpisodeRecord{
		Episode:      c.episode,
		EpisodeID:    uuid.NewString(),
		Outcome:      outcome,
		SimTime:      simTime,
		Ticks:        ticks,
		Catches:      c.catches,
		Locks:        c.locks,
		Falls:        c.falls,
		HiderReward:  hiderReward,
		SeekerReward: seekerReward,
	}
	c.episode++
	c.catches = 0
	c.locks = 0
	c.falls = 0

	if err := c.out.WriteEpisode(record); err != nil {
		c.log.Error().Err(err).Msg("writing episode record")
	}

	if c.window <= 0 {
		return
	}
	c.recent = append(c.recent, record)
	if len(c.recent) < c.window {
		return
	}

	summary := Summarize(c.recent)
	c.log.Info().
		Int("episodes", summary.Episodes).
		Float64("hider_win_rate", summary.HiderWinRate).
		Float64("mean_catches", summary.MeanCatches).
		Float64("mean_seeker_reward", summary.MeanSeekerReward).
		Float64("median_seeker_reward", summary.MedianSeekerReward).
		Float64("p90_seeker_reward", summary.P90SeekerReward).
		Float64("mean_duration", summary.MeanDuration).
		Msg("episode window summary")
	c.recent = c.recent[:0]
}
