package service_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"dailymile/internal/modules/history/domain"
	"dailymile/internal/modules/history/service"
	"dailymile/internal/platform/clock"
)

type fixedClock struct{ now time.Time }

func (f fixedClock) Now() time.Time { return f.now }

// slicePager serves totals (most recent first) and records each query.
type slicePager struct {
	totals  []domain.DailyTotal
	queries []domain.PageQuery
	err     error
}

func (p *slicePager) Page(_ context.Context, query domain.PageQuery) ([]domain.DailyTotal, error) {
	p.queries = append(p.queries, query)
	if p.err != nil {
		return nil, p.err
	}
	out := []domain.DailyTotal{}
	for _, total := range p.totals {
		if total.DateKey <= query.Through && len(out) < query.Limit {
			out = append(out, total)
		}
	}
	return out, nil
}

func dailyRun(from time.Time, days int, miles float64) []domain.DailyTotal {
	out := make([]domain.DailyTotal, 0, days)
	for i := 0; i < days; i++ {
		out = append(out, domain.DailyTotal{DateKey: from.AddDate(0, 0, -i).Format(clock.DayKeyLayout), TotalDistanceMiles: miles})
	}
	return out
}

func newCalculator(t *testing.T, pager *slicePager, now time.Time, pageSize int) *service.StreakCalculator {
	t.Helper()
	calc, err := service.NewStreakCalculator(pager, clock.NewCalendar(fixedClock{now: now}, time.UTC), domain.Policy{Threshold: 0.95, PageSize: pageSize})
	if err != nil {
		t.Fatalf("new calculator: %v", err)
	}
	return calc
}

func TestScanReadsOnlyPagesCoveringTheStreak(t *testing.T) {
	t.Parallel()
	now := time.Date(2026, 3, 14, 18, 0, 0, 0, time.UTC)
	totals := dailyRun(now, 5, 1.1)
	totals = append(totals, domain.DailyTotal{DateKey: "2026-03-09", TotalDistanceMiles: 0.2})
	totals = append(totals, dailyRun(now.AddDate(0, 0, -6), 300, 2)...)
	pager := &slicePager{totals: totals}

	streak, today, err := newCalculator(t, pager, now, 2).Current(context.Background())
	if err != nil {
		t.Fatalf("scan: %v", err)
	}
	if today != "2026-03-14" || streak.Count != 5 || streak.StartDate != "2026-03-10" {
		t.Fatalf("unexpected streak %+v today=%s", streak, today)
	}
	if len(pager.queries) != 3 {
		t.Fatalf("expected 3 page reads for a 5 day streak, got %d", len(pager.queries))
	}
	if pager.queries[1].Through != "2026-03-12" {
		t.Fatalf("expected keyset cursor to move to the day before the last row, got %+v", pager.queries[1])
	}
}

func TestScanStopsWhenHistoryIsExhausted(t *testing.T) {
	t.Parallel()
	now := time.Date(2026, 3, 14, 6, 0, 0, 0, time.UTC)
	pager := &slicePager{totals: dailyRun(now, 4, 1)}
	streak, _, err := newCalculator(t, pager, now, 2).Current(context.Background())
	if err != nil {
		t.Fatalf("scan: %v", err)
	}
	if streak.Count != 4 {
		t.Fatalf("expected streak 4, got %+v", streak)
	}
	if len(pager.queries) != 3 {
		t.Fatalf("expected a final empty page read, got %d reads", len(pager.queries))
	}
}

func TestScanWrapsPagerErrors(t *testing.T) {
	t.Parallel()
	boom := errors.New("disk gone")
	pager := &slicePager{err: boom}
	_, _, err := newCalculator(t, pager, time.Now(), 10).Current(context.Background())
	if !errors.Is(err, boom) {
		t.Fatalf("expected wrapped pager error, got %v", err)
	}
}

func TestNewStreakCalculatorValidatesPolicy(t *testing.T) {
	t.Parallel()
	if _, err := service.NewStreakCalculator(&slicePager{}, clock.NewCalendar(nil, time.UTC), domain.Policy{}); err == nil {
		t.Fatalf("expected empty policy to fail")
	}
}
