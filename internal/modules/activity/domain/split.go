package domain

import (
	"math"
	"time"
)

// Split is the time taken to cover one mile, or the trailing fraction of a
// mile when the activity did not end on a mile boundary.
type Split struct {
	Index              int     `json:"index"`
	DistanceMiles      float64 `json:"distance_miles"`
	DurationSeconds    float64 `json:"duration_seconds"`
	PaceSecondsPerMile float64 `json:"pace_seconds_per_mile"`
}

func (s Split) Partial() bool {
	return s.DistanceMiles < 1
}

// CalculateSplits derives per-mile splits from time-ordered, filtered samples.
//
// Each sample's duration is measured from the end of the previous sample (or
// from start for the first one) so pauses between samples are charged to the
// split in progress. Velocity is assumed constant within a sample, so the time
// spent before each mile boundary is interpolated linearly over distance. A
// sample may cross several boundaries. Each crossing measures its overflow
// against the whole sample distance and applies it to the time not yet
// assigned, so later crossings in one sample get more than a linear share.
// Downstream record detection depends on these values. Leftover time after
// the last boundary becomes a trailing partial split whose pace is extrapolated to a full mile.
// Indexes start at 1. No pace sanity checks are applied.
func CalculateSplits(start time.Time, samples []RawSample) []Split {
	splits := []Split{}

	var (
		cumulativeDistance   float64
		currentSplitDuration float64
		previousSampleEnd    = start
		nextMileBoundary     = MileInMeters
	)

	for _, sample := range samples {
		remainingDuration := sample.End.Sub(previousSampleEnd).Seconds()
		previousSampleEnd = sample.End
		cumulativeDistance += sample.DistanceMeters
		sampleDistance := sample.DistanceMeters

		for sampleDistance > 0 && cumulativeDistance >= nextMileBoundary {
			overflowRatio := (cumulativeDistance - nextMileBoundary) / sampleDistance
			durationForThisMile := remainingDuration * (1 - overflowRatio)
			total := currentSplitDuration + durationForThisMile
			splits = append(splits, Split{
				Index:              len(splits) + 1,
				DistanceMiles:      1.0,
				DurationSeconds:    total,
				PaceSecondsPerMile: total,
			})
			currentSplitDuration = 0
			remainingDuration -= durationForThisMile
			nextMileBoundary += MileInMeters
		}
		currentSplitDuration += remainingDuration
	}

	if currentSplitDuration > 0 {
		remainder := math.Mod(cumulativeDistance, MileInMeters)
		if remainder > 0 {
			splits = append(splits, Split{
				Index:              len(splits) + 1,
				DistanceMiles:      remainder / MileInMeters,
				DurationSeconds:    currentSplitDuration,
				PaceSecondsPerMile: (MileInMeters / remainder) * currentSplitDuration,
			})
		}
	}
	return splits
}
