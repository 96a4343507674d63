package out

import (
	activityout "dailymile/internal/modules/activity/port/out"
	"dailymile/internal/platform/metrics"
)

type MetricsSampleRecorder struct {
	registry *metrics.Registry
}

func NewMetricsSampleRecorder(registry *metrics.Registry) activityout.SampleRecorder {
	return MetricsSampleRecorder{registry: registry}
}

func (r MetricsSampleRecorder) RecordSamples(accepted, rejected int) {
	if r.registry == nil {
		return
	}
	r.registry.SamplesAccepted.Add(float64(accepted))
	r.registry.SamplesRejected.Add(float64(rejected))
}
