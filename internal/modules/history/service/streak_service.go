package service

import (
	"context"
	"fmt"

	"dailymile/internal/modules/history/domain"
	historyout "dailymile/internal/modules/history/port/out"
	"dailymile/internal/platform/clock"
)

// StreakCalculator pages backwards through daily totals until the streak
// breaks, so read cost follows streak length rather than history size.
type StreakCalculator struct {
	pager    historyout.Pager
	calendar clock.Calendar
	policy   domain.Policy
}

func NewStreakCalculator(pager historyout.Pager, calendar clock.Calendar, policy domain.Policy) (*StreakCalculator, error) {
	if err := policy.Validate(); err != nil {
		return nil, err
	}
	return &StreakCalculator{pager: pager, calendar: calendar, policy: policy}, nil
}

func (c *StreakCalculator) Policy() domain.Policy {
	return c.policy
}

func (c *StreakCalculator) Current(ctx context.Context) (domain.Streak, string, error) {
	today := c.calendar.Today()
	streak, err := c.Scan(ctx, today)
	return streak, today, err
}

func (c *StreakCalculator) Scan(ctx context.Context, today string) (domain.Streak, error) {
	state := domain.ScanState{Today: today, Expected: today}
	through := today
	for !state.Done {
		page, err := c.pager.Page(ctx, domain.PageQuery{Through: through, Limit: c.policy.PageSize})
		if err != nil {
			return domain.Streak{}, fmt.Errorf("read history page: %w", err)
		}
		state, err = state.Advance(page, c.policy.Threshold, c.calendar.PreviousDay)
		if err != nil {
			return domain.Streak{}, fmt.Errorf("advance streak: %w", err)
		}
		if len(page) < c.policy.PageSize {
			break
		}
		through, err = c.calendar.PreviousDay(page[len(page)-1].DateKey)
		if err != nil {
			return domain.Streak{}, fmt.Errorf("advance history cursor: %w", err)
		}
	}
	return state.Streak, nil
}
