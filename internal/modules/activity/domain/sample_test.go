package domain_test

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"

	"dailymile/internal/modules/activity/domain"
)

func TestFilterSamplesDropsImplausibleReadings(t *testing.T) {
	t.Parallel()
	samples := []domain.RawSample{
		sample(0, 10, 30),   // ok, 3 m/s
		sample(10, 20, 0),   // no distance
		sample(20, 20, 5),   // no duration
		sample(30, 25, 5),   // negative duration
		sample(40, 50, 200), // 20 m/s teleport
		sample(50, 60, -4),  // negative distance
		sample(60, 70, 134), // exactly the limit
		sample(70, 80, math.NaN()),
		sample(80, 90, 45),
	}
	valid, rejected := domain.FilterSamples(samples)
	assert.Equal(t, 6, rejected)
	if assert.Len(t, valid, 3) {
		assert.InDelta(t, 30, valid[0].DistanceMeters, 1e-9)
		assert.InDelta(t, 134, valid[1].DistanceMeters, 1e-9)
		assert.InDelta(t, 45, valid[2].DistanceMeters, 1e-9)
	}
}

func TestFilteredSamplesNeverReachSplits(t *testing.T) {
	t.Parallel()
	raw := []domain.RawSample{
		sample(0, 100, 300),
		sample(100, 101, 5000),
	}
	valid, rejected := domain.FilterSamples(raw)
	assert.Equal(t, 1, rejected)
	splits := domain.CalculateSplits(t0, valid)
	if assert.Len(t, splits, 1) {
		assert.True(t, splits[0].Partial())
		assert.InDelta(t, 300/domain.MileInMeters, splits[0].DistanceMiles, 1e-9)
	}
}

func TestFormatForPath(t *testing.T) {
	t.Parallel()
	f, err := domain.FormatForPath("/tmp/Morning.FIT")
	assert.NoError(t, err)
	assert.Equal(t, domain.FormatFIT, f)
	_, err = domain.FormatForPath("run.gpx")
	assert.Error(t, err)
	_, err = domain.ParseFormat("csv")
	assert.Error(t, err)
}

func TestFingerprintIgnoresSportCaseAndTracksSamples(t *testing.T) {
	t.Parallel()
	base := domain.Recording{Sport: "Walking", Start: t0, Samples: []domain.RawSample{sample(0, 60, 300), sample(60, 120, 310)}}
	same := domain.Recording{Sport: "walking", Start: t0, Samples: []domain.RawSample{sample(0, 60, 300), sample(60, 120, 310)}}
	moved := domain.Recording{Sport: "walking", Start: t0, Samples: []domain.RawSample{sample(0, 60, 300), sample(60, 120, 311)}}

	assert.Len(t, base.Fingerprint(), 64)
	assert.Equal(t, base.Fingerprint(), same.Fingerprint())
	assert.NotEqual(t, base.Fingerprint(), moved.Fingerprint())
}
