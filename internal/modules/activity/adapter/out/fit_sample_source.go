package out

import (
	"context"
	"fmt"
	"math"
	"os"
	"sort"
	"strings"
	"time"

	"github.com/tormoder/fit"

	"dailymile/internal/modules/activity/domain"
	activityout "dailymile/internal/modules/activity/port/out"
)

// FITSampleSource turns the record stream of a FIT activity file into raw
// samples. Records carry cumulative distance, so each sample is the delta
// between two consecutive records that both have a valid timestamp and
// distance.
type FITSampleSource struct{}

func NewFITSampleSource() activityout.SampleSource {
	return FITSampleSource{}
}

func (FITSampleSource) Read(ctx context.Context, path string) (domain.Recording, error) {
	f, err := os.Open(path)
	if err != nil {
		return domain.Recording{}, fmt.Errorf("open FIT file: %w", err)
	}
	defer f.Close()

	decoded, err := fit.Decode(f)
	if err != nil {
		return domain.Recording{}, fmt.Errorf("decode FIT file: %w", err)
	}
	activity, err := decoded.Activity()
	if err != nil {
		return domain.Recording{}, fmt.Errorf("activity FIT expected: %w", err)
	}
	if err := ctx.Err(); err != nil {
		return domain.Recording{}, err
	}

	recording := domain.Recording{Sport: "unknown"}
	if len(activity.Sessions) > 0 && activity.Sessions[0] != nil {
		session := activity.Sessions[0]
		recording.Sport = strings.ToLower(fmt.Sprint(session.Sport))
		recording.Start = validTimeOrZero(session.StartTime)
	}
	recording.Samples = recordSamples(activity.Records)
	if recording.Start.IsZero() && len(recording.Samples) > 0 {
		recording.Start = recording.Samples[0].Start
	}
	return recording, nil
}

type distancePoint struct {
	ts     time.Time
	meters float64
}

func recordSamples(records []*fit.RecordMsg) []domain.RawSample {
	points := make([]distancePoint, 0, len(records))
	for _, rec := range records {
		if rec == nil {
			continue
		}
		ts := validTimeOrZero(rec.Timestamp)
		meters := rec.GetDistanceScaled()
		if ts.IsZero() || math.IsNaN(meters) || math.IsInf(meters, 0) || meters < 0 {
			continue
		}
		points = append(points, distancePoint{ts: ts, meters: meters})
	}
	sort.SliceStable(points, func(i, j int) bool {
		return points[i].ts.Before(points[j].ts)
	})

	samples := make([]domain.RawSample, 0, len(points))
	for i := 1; i < len(points); i++ {
		prev, cur := points[i-1], points[i]
		delta := cur.meters - prev.meters
		if delta == 0 {
			// Standing still. The gap is charged to the next moving sample.
			continue
		}
		samples = append(samples, domain.RawSample{Start: prev.ts, End: cur.ts, DistanceMeters: delta})
	}
	return samples
}

func validTimeOrZero(t time.Time) time.Time {
	if t.IsZero() || fit.IsBaseTime(t) {
		return time.Time{}
	}
	return t
}
