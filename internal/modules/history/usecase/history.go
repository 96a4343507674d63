package usecase

import (
	"context"
	"fmt"
	"math"
	"time"

	"dailymile/internal/modules/history/domain"
	historydto "dailymile/internal/modules/history/dto"
	historyin "dailymile/internal/modules/history/port/in"
	historyout "dailymile/internal/modules/history/port/out"
	"dailymile/internal/modules/history/service"
	"dailymile/internal/platform/clock"
	apperrors "dailymile/internal/platform/errors"
)

type Interactor struct {
	store    historyout.TotalStore
	streaks  *service.StreakCalculator
	calendar clock.Calendar
}

func NewInteractor(store historyout.TotalStore, streaks *service.StreakCalculator, calendar clock.Calendar) historyin.Usecase {
	return &Interactor{store: store, streaks: streaks, calendar: calendar}
}

func (i *Interactor) AddDistance(ctx context.Context, input historydto.AddInput) (historydto.DailyTotalOutput, error) {
	if math.IsNaN(input.Miles) || math.IsInf(input.Miles, 0) || input.Miles < 0 {
		return historydto.DailyTotalOutput{}, fmt.Errorf("%w: miles must be a non-negative number", apperrors.ErrInvalidInput)
	}
	day, err := i.day(input.Day)
	if err != nil {
		return historydto.DailyTotalOutput{}, err
	}
	if input.ActivityKey == "" {
		total, err := i.store.Add(ctx, day, input.Miles)
		if err != nil {
			return historydto.DailyTotalOutput{}, err
		}
		return toOutput(total), nil
	}
	total, added, err := i.store.AddActivity(ctx, day, input.ActivityKey, input.Miles)
	if err != nil {
		return historydto.DailyTotalOutput{}, err
	}
	out := toOutput(total)
	out.Duplicate = !added
	return out, nil
}

func (i *Interactor) Total(ctx context.Context, day string) (historydto.DailyTotalOutput, error) {
	resolved, err := i.day(day)
	if err != nil {
		return historydto.DailyTotalOutput{}, err
	}
	total, err := i.store.Total(ctx, resolved)
	if err != nil {
		return historydto.DailyTotalOutput{}, err
	}
	return toOutput(total), nil
}

func (i *Interactor) List(ctx context.Context, limit int) ([]historydto.DailyTotalOutput, error) {
	if limit <= 0 {
		limit = 14
	}
	totals, err := i.store.Page(ctx, domain.PageQuery{Through: i.calendar.Today(), Limit: limit})
	if err != nil {
		return nil, err
	}
	out := make([]historydto.DailyTotalOutput, 0, len(totals))
	for _, total := range totals {
		out = append(out, toOutput(total))
	}
	return out, nil
}

func (i *Interactor) Streak(ctx context.Context) (historydto.StreakOutput, error) {
	streak, today, err := i.streaks.Current(ctx)
	if err != nil {
		return historydto.StreakOutput{}, err
	}
	return historydto.StreakOutput{
		Count:     streak.Count,
		StartDate: streak.StartDate,
		Today:     today,
		Threshold: i.streaks.Policy().Threshold,
	}, nil
}

func (i *Interactor) day(raw string) (string, error) {
	if raw == "" {
		return i.calendar.Today(), nil
	}
	if _, err := time.Parse(clock.DayKeyLayout, raw); err != nil {
		return "", fmt.Errorf("%w: day must be yyyy-mm-dd: %q", apperrors.ErrInvalidInput, raw)
	}
	return raw, nil
}

func toOutput(total domain.DailyTotal) historydto.DailyTotalOutput {
	return historydto.DailyTotalOutput{Day: total.DateKey, Miles: total.TotalDistanceMiles}
}
