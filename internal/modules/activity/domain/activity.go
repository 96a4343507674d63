package domain

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

const SchemaVersion = 1

var ErrNoSamples = errors.New("activity has no usable samples")

type Format string

const (
	FormatFIT  Format = "fit"
	FormatJSON Format = "json"
)

func ParseFormat(raw string) (Format, error) {
	switch Format(strings.ToLower(strings.TrimSpace(raw))) {
	case FormatFIT:
		return FormatFIT, nil
	case FormatJSON:
		return FormatJSON, nil
	default:
		return "", fmt.Errorf("unknown sample format %q (expected fit|json)", raw)
	}
}

// FormatForPath guesses the sample format from a file extension.
func FormatForPath(path string) (Format, error) {
	lower := strings.ToLower(path)
	switch {
	case strings.HasSuffix(lower, ".fit"):
		return FormatFIT, nil
	case strings.HasSuffix(lower, ".json"):
		return FormatJSON, nil
	default:
		return "", fmt.Errorf("cannot infer sample format from %q", path)
	}
}

type Activity struct {
	ID             string
	Sport          string
	Source         string
	SourceKey      string
	StartedAt      time.Time
	EndedAt        time.Time
	DistanceMeters float64
	ElapsedSeconds float64
	Accepted       int
	Rejected       int
	Splits         []Split
}

func (a Activity) DistanceMiles() float64 {
	return a.DistanceMeters / MileInMeters
}

func (a Activity) FullSplits() int {
	n := 0
	for _, split := range a.Splits {
		if !split.Partial() {
			n++
		}
	}
	return n
}

const (
	ManagedSplitsStart = "<!-- dailymile:splits:start -->"
	ManagedSplitsEnd   = "<!-- dailymile:splits:end -->"
)
