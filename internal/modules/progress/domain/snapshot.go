package domain

import (
	"math"
	"time"
)

const (
	SchemaVersion    = 1
	DefaultGoalMiles = 1.0
	// DefaultStalenessWindow is how long a synced snapshot stays fresh.
	DefaultStalenessWindow = 5 * time.Minute
)

// Snapshot is the single persisted progress record. Every field is written
// together; readers never see a distance paired with another write's goal.
type Snapshot struct {
	TrackingDay         string  `json:"tracking_day"`
	BaseMiles           float64 `json:"base_miles"`
	GoalMiles           float64 `json:"goal"`
	TotalDistance       float64 `json:"total_distance"`
	Progress            float64 `json:"progress"`
	IsCompleted         bool    `json:"is_completed"`
	Version             int64   `json:"version"`
	LastUpdateTimestamp int64   `json:"last_update_timestamp"`
}

// Envelope is the on-disk form shared with widget processes.
type Envelope struct {
	SchemaVersion int      `json:"schema_version"`
	Snapshot      Snapshot `json:"snapshot"`
}

func (s Snapshot) LastUpdate() time.Time {
	if s.LastUpdateTimestamp == 0 {
		return time.Time{}
	}
	return time.Unix(s.LastUpdateTimestamp, 0)
}

type State string

const (
	StateStale     State = "stale"
	StateActive    State = "active"
	StateCompleted State = "completed"
)

// StateOf places a snapshot in the per-day state machine for today.
func StateOf(s Snapshot, today string) State {
	switch {
	case s.TrackingDay != today || s.Version == 0:
		return StateStale
	case s.IsCompleted:
		return StateCompleted
	default:
		return StateActive
	}
}

type RefreshScope string

const (
	// RefreshAll reloads every dependent consumer.
	RefreshAll RefreshScope = "all"
	// RefreshTargeted reloads only the views that track routine updates.
	RefreshTargeted RefreshScope = "targeted"
)

func ScopeFor(s Snapshot, force bool) RefreshScope {
	if force || s.IsCompleted {
		return RefreshAll
	}
	return RefreshTargeted
}

// Compute derives the clamped progress ratio and completion flag.
func Compute(distance, goal float64) (float64, bool) {
	if !(goal > 0) {
		return 0, false
	}
	return math.Min(distance/goal, 1), distance >= goal
}

// Zeroed is the read-time view of a snapshot from another day: no distance,
// the goal preserved, and the version kept so observers never see it go back.
func Zeroed(previous Snapshot, today string, defaultGoal float64) Snapshot {
	goal := previous.GoalMiles
	if !(goal > 0) {
		goal = defaultGoal
	}
	return Snapshot{
		TrackingDay:         today,
		GoalMiles:           goal,
		Version:             previous.Version,
		LastUpdateTimestamp: previous.LastUpdateTimestamp,
	}
}

// Next builds the snapshot that a save of distance against goal produces on
// today. A different tracking day starts fresh: the first value of a day is
// its base rather than being added to yesterday's residual.
func Next(current Snapshot, today string, distance, goal float64, version int64, now time.Time) Snapshot {
	base := current.BaseMiles
	if current.TrackingDay != today || current.Version == 0 {
		base = distance
	}
	progress, completed := Compute(distance, goal)
	return Snapshot{
		TrackingDay:         today,
		BaseMiles:           base,
		GoalMiles:           goal,
		TotalDistance:       distance,
		Progress:            progress,
		IsCompleted:         completed,
		Version:             version,
		LastUpdateTimestamp: now.Unix(),
	}
}
