package usecase_test

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	historyout "dailymile/internal/modules/history/adapter/out"
	"dailymile/internal/modules/history/domain"
	historydto "dailymile/internal/modules/history/dto"
	"dailymile/internal/modules/history/service"
	"dailymile/internal/modules/history/usecase"
	"dailymile/internal/platform/clock"
	apperrors "dailymile/internal/platform/errors"
)

type fixedClock struct{ now time.Time }

func (f fixedClock) Now() time.Time { return f.now }

func TestHistoryAccumulatesAndComputesStreakFromSQLite(t *testing.T) {
	t.Parallel()
	now := time.Date(2026, 3, 14, 20, 30, 0, 0, time.UTC)
	calendar := clock.NewCalendar(fixedClock{now: now}, time.UTC)
	store, err := historyout.NewSQLiteTotalStore(filepath.Join(t.TempDir(), "dailymile.db"), calendar.Clock)
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	streaks, err := service.NewStreakCalculator(store, calendar, domain.Policy{Threshold: domain.DefaultThreshold, PageSize: domain.DefaultPageSize})
	if err != nil {
		t.Fatalf("new calculator: %v", err)
	}
	uc := usecase.NewInteractor(store, streaks, calendar)
	ctx := context.Background()

	for _, add := range []historydto.AddInput{
		{Day: "2026-03-11", Miles: 5.0},
		{Day: "2026-03-12", Miles: 0.3},
		{Day: "2026-03-13", Miles: 0.6},
		{Day: "2026-03-13", Miles: 0.4},
		{Miles: 1.2},
	} {
		if _, err := uc.AddDistance(ctx, add); err != nil {
			t.Fatalf("add %+v: %v", add, err)
		}
	}

	total, err := uc.Total(ctx, "2026-03-13")
	if err != nil {
		t.Fatalf("total: %v", err)
	}
	if total.Miles < 0.999 || total.Miles > 1.001 {
		t.Fatalf("expected accumulated 1.0 miles, got %v", total.Miles)
	}
	empty, err := uc.Total(ctx, "2026-01-01")
	if err != nil || empty.Miles != 0 {
		t.Fatalf("expected zero total for untouched day, got %+v err=%v", empty, err)
	}

	streak, err := uc.Streak(ctx)
	if err != nil {
		t.Fatalf("streak: %v", err)
	}
	if streak.Count != 2 || streak.StartDate != "2026-03-13" || streak.Today != "2026-03-14" {
		t.Fatalf("unexpected streak %+v", streak)
	}

	list, err := uc.List(ctx, 2)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(list) != 2 || list[0].Day != "2026-03-14" || list[1].Day != "2026-03-13" {
		t.Fatalf("unexpected list %+v", list)
	}
}

func TestAddDistanceRejectsBadInput(t *testing.T) {
	t.Parallel()
	calendar := clock.NewCalendar(fixedClock{now: time.Date(2026, 3, 14, 0, 0, 0, 0, time.UTC)}, time.UTC)
	store, err := historyout.NewSQLiteTotalStore(filepath.Join(t.TempDir(), "dailymile.db"), nil)
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	streaks, _ := service.NewStreakCalculator(store, calendar, domain.Policy{Threshold: 1, PageSize: 10})
	uc := usecase.NewInteractor(store, streaks, calendar)
	if _, err := uc.AddDistance(context.Background(), historydto.AddInput{Miles: -1}); !errors.Is(err, apperrors.ErrInvalidInput) {
		t.Fatalf("expected invalid input for negative miles, got %v", err)
	}
	if _, err := uc.AddDistance(context.Background(), historydto.AddInput{Day: "14/03/2026", Miles: 1}); !errors.Is(err, apperrors.ErrInvalidInput) {
		t.Fatalf("expected invalid input for malformed day, got %v", err)
	}
}

func TestKeyedAdditionsCountOncePerActivity(t *testing.T) {
	t.Parallel()
	calendar := clock.NewCalendar(fixedClock{now: time.Date(2026, 3, 14, 9, 0, 0, 0, time.UTC)}, time.UTC)
	store, err := historyout.NewSQLiteTotalStore(filepath.Join(t.TempDir(), "dailymile.db"), calendar.Clock)
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	streaks, err := service.NewStreakCalculator(store, calendar, domain.Policy{Threshold: domain.DefaultThreshold, PageSize: domain.DefaultPageSize})
	if err != nil {
		t.Fatalf("new calculator: %v", err)
	}
	uc := usecase.NewInteractor(store, streaks, calendar)
	ctx := context.Background()

	first, err := uc.AddDistance(ctx, historydto.AddInput{Day: "2026-03-14", Miles: 0.7, ActivityKey: "walk-a"})
	if err != nil || first.Duplicate {
		t.Fatalf("first add: %+v err=%v", first, err)
	}
	again, err := uc.AddDistance(ctx, historydto.AddInput{Day: "2026-03-14", Miles: 0.7, ActivityKey: "walk-a"})
	if err != nil {
		t.Fatalf("repeat add: %v", err)
	}
	if !again.Duplicate || again.Miles != first.Miles {
		t.Fatalf("repeat must leave the total at %v, got %+v", first.Miles, again)
	}
	moved, err := uc.AddDistance(ctx, historydto.AddInput{Day: "2026-03-13", Miles: 0.7, ActivityKey: "walk-a"})
	if err != nil || !moved.Duplicate || moved.Day != "2026-03-14" {
		t.Fatalf("repeat on another day should report the counted day: %+v err=%v", moved, err)
	}
	if yesterday, err := uc.Total(ctx, "2026-03-13"); err != nil || yesterday.Miles != 0 {
		t.Fatalf("repeat must not touch another day: %+v err=%v", yesterday, err)
	}
	other, err := uc.AddDistance(ctx, historydto.AddInput{Day: "2026-03-14", Miles: 0.2, ActivityKey: "walk-b"})
	if err != nil || other.Duplicate {
		t.Fatalf("second activity: %+v err=%v", other, err)
	}
	if other.Miles < 0.899 || other.Miles > 0.901 {
		t.Fatalf("expected 0.9 miles, got %v", other.Miles)
	}
	unkeyed, err := uc.AddDistance(ctx, historydto.AddInput{Day: "2026-03-14", Miles: 0.1})
	if err != nil || unkeyed.Duplicate {
		t.Fatalf("unkeyed add: %+v err=%v", unkeyed, err)
	}
	if unkeyed.Miles < 0.999 || unkeyed.Miles > 1.001 {
		t.Fatalf("expected 1.0 miles, got %v", unkeyed.Miles)
	}
}
