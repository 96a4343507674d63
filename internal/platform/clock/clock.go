package clock

import "time"

// DayKeyLayout is the persisted tracking-day format (yyyy-MM-dd).
const DayKeyLayout = "2006-01-02"

// Clock abstracts time to keep usecases deterministic in tests.
type Clock interface {
	Now() time.Time
}

type SystemClock struct{}

func (SystemClock) Now() time.Time {
	return time.Now().UTC()
}

// Calendar resolves instants to local calendar days. The same Calendar must be
// used at write time and at read time, otherwise a same-day read is misclassified
// as stale.
type Calendar struct {
	Clock    Clock
	Location *time.Location
}

func NewCalendar(clk Clock, loc *time.Location) Calendar {
	if clk == nil {
		clk = SystemClock{}
	}
	if loc == nil {
		loc = time.Local
	}
	return Calendar{Clock: clk, Location: loc}
}

func (c Calendar) Now() time.Time {
	return c.Clock.Now()
}

func (c Calendar) DayKey(t time.Time) string {
	return t.In(c.location()).Format(DayKeyLayout)
}

func (c Calendar) Today() string {
	return c.DayKey(c.Clock.Now())
}

// PreviousDay returns the key of the calendar day before dayKey.
func (c Calendar) PreviousDay(dayKey string) (string, error) {
	day, err := time.ParseInLocation(DayKeyLayout, dayKey, c.location())
	if err != nil {
		return "", err
	}
	return day.AddDate(0, 0, -1).Format(DayKeyLayout), nil
}

func (c Calendar) location() *time.Location {
	if c.Location == nil {
		return time.Local
	}
	return c.Location
}
