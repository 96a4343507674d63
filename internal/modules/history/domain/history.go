package domain

import "fmt"

const (
	// DefaultThreshold tolerates sensor undercount against a one mile goal.
	DefaultThreshold = 0.95
	DefaultPageSize  = 100
)

type DailyTotal struct {
	DateKey            string
	TotalDistanceMiles float64
}

func (d DailyTotal) Qualifies(threshold float64) bool {
	return d.TotalDistanceMiles >= threshold
}

type Streak struct {
	Count     int
	StartDate string
}

// PageQuery selects at most Limit totals dated on or before Through, most
// recent first.
type PageQuery struct {
	Through string
	Limit   int
}

type Policy struct {
	Threshold float64
	PageSize  int
}

func (p Policy) Validate() error {
	if p.Threshold <= 0 {
		return fmt.Errorf("streak threshold must be positive")
	}
	if p.PageSize <= 0 {
		return fmt.Errorf("streak page size must be positive")
	}
	return nil
}

// ScanState carries a streak scan across pages. Expected is the day the next
// row must carry for the streak to continue.
type ScanState struct {
	Today    string
	Expected string
	Streak   Streak
	Done     bool
}

// PreviousDayFunc maps a day key to the key of the day before it.
type PreviousDayFunc func(dayKey string) (string, error)

// Advance consumes one page of totals ordered most recent first. A missing
// row for today is tolerated because the day is still in progress; any other
// gap, or a row under the threshold, ends the scan.
func (s ScanState) Advance(page []DailyTotal, threshold float64, previous PreviousDayFunc) (ScanState, error) {
	if len(page) == 0 {
		s.Done = true
		return s, nil
	}
	for _, total := range page {
		if total.DateKey > s.Today {
			continue
		}
		if total.DateKey != s.Expected {
			if s.Expected != s.Today || s.Streak.Count > 0 {
				s.Done = true
				return s, nil
			}
			yesterday, err := previous(s.Today)
			if err != nil {
				return s, err
			}
			if total.DateKey != yesterday {
				s.Done = true
				return s, nil
			}
			s.Expected = yesterday
		}
		if !total.Qualifies(threshold) {
			s.Done = true
			return s, nil
		}
		s.Streak.Count++
		s.Streak.StartDate = total.DateKey
		next, err := previous(total.DateKey)
		if err != nil {
			return s, err
		}
		s.Expected = next
	}
	return s, nil
}
