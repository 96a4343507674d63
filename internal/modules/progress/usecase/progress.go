package usecase

import (
	"context"
	"fmt"
	"math"

	historyin "dailymile/internal/modules/history/port/in"
	notifydto "dailymile/internal/modules/notify/dto"
	notifyin "dailymile/internal/modules/notify/port/in"
	"dailymile/internal/modules/progress/domain"
	progressdto "dailymile/internal/modules/progress/dto"
	progressin "dailymile/internal/modules/progress/port/in"
	"dailymile/internal/modules/progress/service"
	"dailymile/internal/platform/clock"
	apperrors "dailymile/internal/platform/errors"
)

type Interactor struct {
	store    *service.Store
	notify   notifyin.Usecase
	history  historyin.Usecase
	calendar clock.Calendar
}

func NewInteractor(store *service.Store, notify notifyin.Usecase, history historyin.Usecase, calendar clock.Calendar) progressin.Usecase {
	return &Interactor{store: store, notify: notify, history: history, calendar: calendar}
}

func (i *Interactor) Save(ctx context.Context, input progressdto.SaveInput) (progressdto.SaveOutput, error) {
	if !finite(input.DistanceMiles) || !finite(input.GoalMiles) {
		return progressdto.SaveOutput{}, fmt.Errorf("%w: distance and goal must be finite", apperrors.ErrInvalidInput)
	}
	result := i.store.Save(ctx, input.DistanceMiles, input.GoalMiles, input.Force)
	out := progressdto.SaveOutput{
		Snapshot:         toOutput(result.Snapshot, true, i.calendar.Today()),
		PreviousDistance: result.Previous.TotalDistance,
		Scope:            string(result.Scope),
		Persisted:        result.Persisted,
	}
	if !result.Persisted || i.notify == nil {
		return out, nil
	}
	decision, err := i.notify.ShouldSendCompletion(ctx, notifydto.CompletionInput{
		Current:  result.Snapshot.TotalDistance,
		Goal:     result.Snapshot.GoalMiles,
		Previous: result.Previous.TotalDistance,
	})
	if err != nil {
		return progressdto.SaveOutput{}, err
	}
	out.CompletionNotified = decision.Send
	return out, nil
}

func (i *Interactor) Show(ctx context.Context) (progressdto.SnapshotOutput, error) {
	snapshot, isToday := i.store.Load(ctx)
	return toOutput(snapshot, isToday, i.calendar.Today()), nil
}

func (i *Interactor) Repair(ctx context.Context) (progressdto.RepairOutput, error) {
	repaired := i.store.ValidateAndRepair(ctx)
	snapshot, isToday := i.store.Load(ctx)
	return progressdto.RepairOutput{Repaired: repaired, Snapshot: toOutput(snapshot, isToday, i.calendar.Today())}, nil
}

func (i *Interactor) Status(ctx context.Context) (progressdto.StatusOutput, error) {
	needsRefresh := i.store.NeedsRefresh()
	snapshot, isToday := i.store.Load(ctx)
	today := i.calendar.Today()
	state := domain.StateOf(snapshot, today)
	if !isToday {
		state = domain.StateStale
	}
	return progressdto.StatusOutput{
		State:        string(state),
		IsToday:      isToday,
		NeedsRefresh: needsRefresh,
		Version:      snapshot.Version,
		TrackingDay:  snapshot.TrackingDay,
		LastUpdate:   snapshot.LastUpdate(),
	}, nil
}

// Refresh never leaves a partial write behind: each store call is atomic and
// an expired ctx stops the pass between steps.
func (i *Interactor) Refresh(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	stale := i.store.NeedsRefresh()
	i.store.ValidateAndRepair(ctx)

	if stale && i.history != nil {
		total, err := i.history.Total(ctx, "")
		if err != nil {
			return fmt.Errorf("read today's history total: %w", err)
		}
		if err := ctx.Err(); err != nil {
			return err
		}
		snapshot, _ := i.store.Load(ctx)
		if total.Miles > snapshot.TotalDistance {
			if _, err := i.Save(ctx, progressdto.SaveInput{DistanceMiles: total.Miles, GoalMiles: snapshot.GoalMiles}); err != nil {
				return err
			}
		}
	}

	if i.notify == nil {
		return nil
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	if _, err := i.notify.ResetDailyTracking(ctx); err != nil {
		return fmt.Errorf("reset notification tracking: %w", err)
	}
	return nil
}

func toOutput(snapshot domain.Snapshot, isToday bool, today string) progressdto.SnapshotOutput {
	state := domain.StateOf(snapshot, today)
	if !isToday {
		state = domain.StateStale
	}
	return progressdto.SnapshotOutput{
		TrackingDay:   snapshot.TrackingDay,
		BaseMiles:     snapshot.BaseMiles,
		GoalMiles:     snapshot.GoalMiles,
		TotalDistance: snapshot.TotalDistance,
		Progress:      snapshot.Progress,
		IsCompleted:   snapshot.IsCompleted,
		Version:       snapshot.Version,
		LastUpdate:    snapshot.LastUpdate(),
		IsToday:       isToday,
		State:         string(state),
	}
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
