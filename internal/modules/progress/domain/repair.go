package domain

import "math"

type Repair string

const (
	RepairRollover Repair = "rollover"
	RepairGoal     Repair = "goal"
	RepairDistance Repair = "distance"
)

// Repaired fixes an unapplied day rollover, a non-positive goal and negative
// distances. It reports which repairs were applied; a clean snapshot comes
// back unchanged with none. A snapshot that was never written needs no repair.
func Repaired(s Snapshot, today string, defaultGoal float64) (Snapshot, []Repair) {
	if s.Version == 0 && s.TrackingDay == "" {
		return s, nil
	}
	var repairs []Repair
	if s.TrackingDay != today {
		s = Zeroed(s, today, defaultGoal)
		repairs = append(repairs, RepairRollover)
	}
	if !(s.GoalMiles > 0) || math.IsInf(s.GoalMiles, 0) {
		s.GoalMiles = DefaultGoalMiles
		repairs = append(repairs, RepairGoal)
	}
	if !(s.TotalDistance >= 0) || !(s.BaseMiles >= 0) {
		if !(s.TotalDistance >= 0) {
			s.TotalDistance = 0
		}
		if !(s.BaseMiles >= 0) {
			s.BaseMiles = 0
		}
		repairs = append(repairs, RepairDistance)
	}
	if len(repairs) > 0 {
		s.Progress, s.IsCompleted = Compute(s.TotalDistance, s.GoalMiles)
	}
	return s, repairs
}
