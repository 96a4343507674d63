package domain

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strconv"
	"strings"
	"time"
)

const (
	MileInMeters = 1609.34
	// MaxHumanSpeedMPS is roughly a 2:00/mile pace. Faster readings are sensor
	// glitches or teleports.
	MaxHumanSpeedMPS = 13.4
)

// RawSample is one distance delta reported by a sensor between two instants.
type RawSample struct {
	Start          time.Time `json:"start"`
	End            time.Time `json:"end"`
	DistanceMeters float64   `json:"distance_meters"`
}

func (s RawSample) DurationSeconds() float64 {
	return s.End.Sub(s.Start).Seconds()
}

func (s RawSample) SpeedMPS() float64 {
	d := s.DurationSeconds()
	if d <= 0 {
		return 0
	}
	return s.DistanceMeters / d
}

// Plausible reports whether the sample has positive distance and duration and
// an implied speed a human can reach.
func (s RawSample) Plausible() bool {
	if !(s.DistanceMeters > 0) {
		return false
	}
	duration := s.DurationSeconds()
	if duration <= 0 {
		return false
	}
	return s.DistanceMeters/duration <= MaxHumanSpeedMPS
}

// FilterSamples keeps the plausible samples in their original order and
// returns how many were dropped. Dropped samples are never retried.
func FilterSamples(samples []RawSample) ([]RawSample, int) {
	valid := make([]RawSample, 0, len(samples))
	rejected := 0
	for _, sample := range samples {
		if !sample.Plausible() {
			rejected++
			continue
		}
		valid = append(valid, sample)
	}
	return valid, rejected
}

// Recording is the materialised output of a sample source for one activity.
type Recording struct {
	Sport   string
	Start   time.Time
	Samples []RawSample
}

// Fingerprint identifies the recorded activity independently of the file it
// came from, so importing the same recording twice yields the same key.
func (r Recording) Fingerprint() string {
	h := sha256.New()
	fmt.Fprintf(h, "%s|%d\n", strings.ToLower(r.Sport), r.Start.UnixNano())
	for _, sample := range r.Samples {
		fmt.Fprintf(h, "%d|%d|%s\n", sample.Start.UnixNano(), sample.End.UnixNano(),
			strconv.FormatFloat(sample.DistanceMeters, 'g', -1, 64))
	}
	return hex.EncodeToString(h.Sum(nil))
}
