package dto

import "time"

type SaveInput struct {
	DistanceMiles float64
	// GoalMiles falls back to the configured goal when zero.
	GoalMiles float64
	Force     bool
}

type SnapshotOutput struct {
	TrackingDay   string
	BaseMiles     float64
	GoalMiles     float64
	TotalDistance float64
	Progress      float64
	IsCompleted   bool
	Version       int64
	LastUpdate    time.Time
	IsToday       bool
	State         string
}

type SaveOutput struct {
	Snapshot           SnapshotOutput
	PreviousDistance   float64
	Scope              string
	Persisted          bool
	CompletionNotified bool
}

type RepairOutput struct {
	Repaired bool
	Snapshot SnapshotOutput
}

type StatusOutput struct {
	State        string
	IsToday      bool
	NeedsRefresh bool
	Version      int64
	TrackingDay  string
	LastUpdate   time.Time
}
