package telemetry

import (
	"sort"

	"gonum.org/v1/gonum/stat"
)

// Summary aggregates a window of episode records.
type Summary struct {
	Episodes           int
	HiderWinRate       float64
	MeanCatches        float64
	MeanSeekerReward   float64
	MedianSeekerReward float64
	P90SeekerReward    float64
	MeanDuration       float64 // mean episode sim-time in seconds
}

// Summarize computes window statistics over the given records.
func Summarize(records []EpisodeRecord) Summary {
	s := Summary{Episodes: len(records)}
	if len(records) == 0 {
		return s
	}

	seekerRewards := make([]float64, 0, len(records))
	catches := make([]float64, 0, len(records))
	durations := make([]float64, 0, len(records))
	hiderWins := 0
	for _, r := range records {
		seekerRewards = append(seekerRewards, r.SeekerReward)
		catches = append(catches, float64(r.Catches))
		durations = append(durations, r.SimTime)
		if r.Outcome == "hiders_win" {
			hiderWins++
		}
	}

	sort.Float64s(seekerRewards)

	s.HiderWinRate = float64(hiderWins) / float64(len(records))
	s.MeanCatches = stat.Mean(catches, nil)
	s.MeanSeekerReward = stat.Mean(seekerRewards, nil)
	s.MedianSeekerReward = stat.Quantile(0.5, stat.Empirical, seekerRewards, nil)
	s.P90SeekerReward = stat.Quantile(0.9, stat.Empirical, seekerRewards, nil)
	s.MeanDuration = stat.Mean(durations, nil)
	return s
}
