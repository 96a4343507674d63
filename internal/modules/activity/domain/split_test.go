package domain_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"dailymile/internal/modules/activity/domain"
)

var t0 = time.Date(2026, 3, 14, 7, 0, 0, 0, time.UTC)

func sample(startSec, endSec, meters float64) domain.RawSample {
	return domain.RawSample{
		Start:          t0.Add(time.Duration(startSec * float64(time.Second))),
		End:            t0.Add(time.Duration(endSec * float64(time.Second))),
		DistanceMeters: meters,
	}
}

func totalDuration(splits []domain.Split) float64 {
	sum := 0.0
	for _, s := range splits {
		sum += s.DurationSeconds
	}
	return sum
}

func TestCalculateSplitsEmptyInput(t *testing.T) {
	t.Parallel()
	splits := domain.CalculateSplits(t0, nil)
	require.NotNil(t, splits)
	assert.Empty(t, splits)
}

func TestCalculateSplitsSteadyPaceWithPartial(t *testing.T) {
	t.Parallel()
	// 10 samples of 400 m at 2 min each: 4000 m in 1200 s, 3.333 m/s.
	samples := make([]domain.RawSample, 0, 10)
	for i := 0; i < 10; i++ {
		samples = append(samples, sample(float64(i*120), float64((i+1)*120), 400))
	}
	splits := domain.CalculateSplits(t0, samples)
	require.Len(t, splits, 3)

	perMile := domain.MileInMeters / (400.0 / 120.0)
	for i, split := range splits[:2] {
		assert.Equal(t, i+1, split.Index)
		assert.InDelta(t, 1.0, split.DistanceMiles, 1e-12)
		assert.InDelta(t, perMile, split.DurationSeconds, 1e-6)
		assert.InDelta(t, split.DurationSeconds, split.PaceSecondsPerMile, 1e-12)
	}

	partial := splits[2]
	assert.Equal(t, 3, partial.Index)
	assert.True(t, partial.Partial())
	remainder := 4000 - 2*domain.MileInMeters
	assert.InDelta(t, remainder/domain.MileInMeters, partial.DistanceMiles, 1e-9)
	assert.InDelta(t, perMile, partial.PaceSecondsPerMile, 1e-6)
	assert.InDelta(t, 1200, totalDuration(splits), 1e-6)
}

func TestCalculateSplitsSingleSampleCrossesSeveralBoundaries(t *testing.T) {
	t.Parallel()
	meters := 2.5 * domain.MileInMeters
	splits := domain.CalculateSplits(t0, []domain.RawSample{sample(0, 1000, meters)})
	require.Len(t, splits, 3)
	// first crossing: overflow 1.5/2.5 of 1000 s leaves 400 s
	assert.InDelta(t, 400, splits[0].DurationSeconds, 1e-6)
	// second crossing: overflow 0.5/2.5 applied to the remaining 600 s
	assert.InDelta(t, 480, splits[1].DurationSeconds, 1e-6)
	assert.InDelta(t, 480, splits[1].PaceSecondsPerMile, 1e-6)
	assert.InDelta(t, 120, splits[2].DurationSeconds, 1e-6)
	assert.InDelta(t, 0.5, splits[2].DistanceMiles, 1e-9)
	assert.InDelta(t, 240, splits[2].PaceSecondsPerMile, 1e-6)
	assert.InDelta(t, 1000, totalDuration(splits), 1e-6)
}

func TestCalculateSplitsChargesGapsToCurrentSplit(t *testing.T) {
	t.Parallel()
	half := domain.MileInMeters / 2
	samples := []domain.RawSample{
		sample(0, 200, half),
		// paused for 100 s before the next sample starts
		sample(300, 500, half),
	}
	splits := domain.CalculateSplits(t0, samples)
	require.Len(t, splits, 1)
	assert.InDelta(t, 500, splits[0].DurationSeconds, 1e-6)
}

func TestCalculateSplitsAnchorsFirstSampleToActivityStart(t *testing.T) {
	t.Parallel()
	splits := domain.CalculateSplits(t0, []domain.RawSample{sample(60, 360, domain.MileInMeters/4)})
	require.Len(t, splits, 1)
	assert.InDelta(t, 360, splits[0].DurationSeconds, 1e-6)
	assert.InDelta(t, 0.25, splits[0].DistanceMiles, 1e-9)
	assert.InDelta(t, 1440, splits[0].PaceSecondsPerMile, 1e-6)
}

func TestCalculateSplitsDurationsSumToWallClock(t *testing.T) {
	t.Parallel()
	meters := []float64{700, 1300, 2200, 90, 1800, 3000, 40}
	samples := make([]domain.RawSample, 0, len(meters))
	cursor := 5.0
	for i, m := range meters {
		duration := m/3.1 + float64(i)
		samples = append(samples, sample(cursor, cursor+duration, m))
		cursor += duration + float64(i%3)*15
	}
	splits := domain.CalculateSplits(t0, samples)

	total := 0.0
	for _, m := range meters {
		total += m
	}
	fullMiles := int(total / domain.MileInMeters)
	full := 0
	for i, s := range splits {
		assert.Equal(t, i+1, s.Index)
		if !s.Partial() {
			full++
			assert.Less(t, i, fullMiles, "full splits must precede the partial one")
		}
	}
	assert.Equal(t, fullMiles, full)
	assert.LessOrEqual(t, len(splits), fullMiles+1)
	wallClock := samples[len(samples)-1].End.Sub(t0).Seconds()
	assert.InDelta(t, wallClock, totalDuration(splits), 1e-6)
}
