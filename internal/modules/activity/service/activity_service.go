package service

import (
	"time"

	"dailymile/internal/modules/activity/domain"
	activityout "dailymile/internal/modules/activity/port/out"
	"dailymile/internal/platform/id"
)

type ActivityService struct {
	idGen    id.Generator
	recorder activityout.SampleRecorder
}

func NewActivityService(idGen id.Generator, recorder activityout.SampleRecorder) *ActivityService {
	return &ActivityService{idGen: idGen, recorder: recorder}
}

// Analyze filters the recording and derives its splits. A non-zero start
// overrides the recording's own start, which falls back to the first sample.
func (s *ActivityService) Analyze(recording domain.Recording, start time.Time, source string) domain.Activity {
	valid, rejected := domain.FilterSamples(recording.Samples)
	if s.recorder != nil {
		s.recorder.RecordSamples(len(valid), rejected)
	}

	t0 := start
	if t0.IsZero() {
		t0 = recording.Start
	}
	if t0.IsZero() && len(recording.Samples) > 0 {
		t0 = recording.Samples[0].Start
	}

	activity := domain.Activity{
		Sport:     recording.Sport,
		Source:    source,
		SourceKey: recording.Fingerprint(),
		StartedAt: t0,
		EndedAt:   t0,
		Accepted:  len(valid),
		Rejected:  rejected,
		Splits:    domain.CalculateSplits(t0, valid),
	}
	for _, sample := range valid {
		activity.DistanceMeters += sample.DistanceMeters
	}
	if len(valid) > 0 {
		activity.EndedAt = valid[len(valid)-1].End
		activity.ElapsedSeconds = activity.EndedAt.Sub(t0).Seconds()
	}
	return activity
}

func (s *ActivityService) Identify(activity domain.Activity) domain.Activity {
	activity.ID = s.idGen.New()
	return activity
}
