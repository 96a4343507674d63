package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"math"

	"dailymile/internal/modules/notify/domain"
	notifydto "dailymile/internal/modules/notify/dto"
	notifyin "dailymile/internal/modules/notify/port/in"
	notifyout "dailymile/internal/modules/notify/port/out"
	"dailymile/internal/modules/notify/service"
	"dailymile/internal/platform/clock"
	apperrors "dailymile/internal/platform/errors"
	"dailymile/internal/platform/logging"
)

type Interactor struct {
	engine     *service.Engine
	progress   notifyout.ProgressReader
	dispatcher notifyout.Dispatcher
	calendar   clock.Calendar
	logger     *slog.Logger
}

func NewInteractor(engine *service.Engine, progress notifyout.ProgressReader, dispatcher notifyout.Dispatcher, calendar clock.Calendar, logger *slog.Logger) notifyin.Usecase {
	return &Interactor{engine: engine, progress: progress, dispatcher: dispatcher, calendar: calendar, logger: logging.OrDiscard(logger)}
}

func (i *Interactor) ShouldSendCompletion(ctx context.Context, input notifydto.CompletionInput) (notifydto.CompletionOutput, error) {
	for _, v := range []float64{input.Current, input.Goal, input.Previous} {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return notifydto.CompletionOutput{}, fmt.Errorf("%w: completion values must be finite", apperrors.ErrInvalidInput)
		}
	}
	send, day := i.engine.ShouldSendCompletion(ctx, input.Current, input.Goal, input.Previous)
	if send {
		i.dispatch(ctx, domain.CompletionNotification(day, i.calendar.Now()))
	}
	return notifydto.CompletionOutput{Send: send, Day: day}, nil
}

func (i *Interactor) ReminderContent(isCompleted bool) notifydto.ReminderOutput {
	return toReminderOutput(i.engine.ReminderContent(isCompleted))
}

func (i *Interactor) ScheduleReminder(ctx context.Context) (notifydto.ReminderOutput, error) {
	completed, err := i.completed(ctx)
	if err != nil {
		return notifydto.ReminderOutput{}, err
	}
	return i.ReminderContent(completed), nil
}

// PresentReminder drops the scheduled reminder entirely when the goal is
// already complete at presentation time.
func (i *Interactor) PresentReminder(ctx context.Context, scheduled notifydto.ReminderOutput) (notifydto.PresentOutput, error) {
	completed, err := i.completed(ctx)
	if err != nil {
		return notifydto.PresentOutput{}, err
	}
	if completed {
		return notifydto.PresentOutput{Reminder: scheduled, Suppressed: true}, nil
	}
	i.dispatch(ctx, domain.Notification{
		Kind:  domain.KindReminder,
		Day:   i.calendar.Today(),
		Title: scheduled.Title,
		Body:  scheduled.Body,
		At:    i.calendar.Now(),
	})
	return notifydto.PresentOutput{Reminder: scheduled}, nil
}

func (i *Interactor) ResetDailyTracking(ctx context.Context) (bool, error) {
	return i.engine.ResetDailyTracking(ctx), nil
}

func (i *Interactor) State(ctx context.Context) (notifydto.StateOutput, error) {
	state, today, err := i.engine.State(ctx)
	if err != nil {
		return notifydto.StateOutput{}, err
	}
	return notifydto.StateOutput{
		LastCompletionNotificationDate: state.LastCompletionNotificationDate,
		Today:                          today,
		NotifiedToday:                  state.NotifiedOn(today),
	}, nil
}

func (i *Interactor) completed(ctx context.Context) (bool, error) {
	if i.progress == nil {
		return false, nil
	}
	return i.progress.IsCompleted(ctx)
}

func (i *Interactor) dispatch(ctx context.Context, notification domain.Notification) {
	if i.dispatcher == nil {
		return
	}
	if err := i.dispatcher.Dispatch(ctx, notification); err != nil {
		i.logger.Warn("notification dispatch failed", "kind", notification.Kind, "error", err)
	}
}

func toReminderOutput(reminder domain.Reminder) notifydto.ReminderOutput {
	return notifydto.ReminderOutput{Kind: string(reminder.Kind), Title: reminder.Title, Body: reminder.Body}
}
