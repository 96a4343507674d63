package out

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"sort"
	"time"

	"dailymile/internal/modules/activity/domain"
	activityout "dailymile/internal/modules/activity/port/out"
)

// sampleFile is the interchange format written by companion apps:
//
//	{"sport": "running", "start": "2026-03-14T07:00:00Z",
//	 "samples": [{"start": "...", "end": "...", "distance_meters": 12.5}]}
type sampleFile struct {
	Sport   string             `json:"sport"`
	Start   time.Time          `json:"start"`
	Samples []domain.RawSample `json:"samples"`
}

type JSONSampleSource struct{}

func NewJSONSampleSource() activityout.SampleSource {
	return JSONSampleSource{}
}

func (JSONSampleSource) Read(_ context.Context, path string) (domain.Recording, error) {
	payload, err := os.ReadFile(path)
	if err != nil {
		return domain.Recording{}, fmt.Errorf("read sample file: %w", err)
	}
	file := sampleFile{}
	if err := json.Unmarshal(payload, &file); err != nil {
		return domain.Recording{}, fmt.Errorf("decode sample file: %w", err)
	}
	samples := append([]domain.RawSample(nil), file.Samples...)
	sort.SliceStable(samples, func(i, j int) bool {
		return samples[i].End.Before(samples[j].End)
	})
	sport := file.Sport
	if sport == "" {
		sport = "unknown"
	}
	return domain.Recording{Sport: sport, Start: file.Start, Samples: samples}, nil
}
