package service

import (
	"context"
	"log/slog"
	"sync"

	"dailymile/internal/modules/notify/domain"
	notifyout "dailymile/internal/modules/notify/port/out"
	"dailymile/internal/platform/clock"
	"dailymile/internal/platform/logging"
	"dailymile/internal/platform/metrics"
)

// Engine decides completion notices and reminder content. The recorded
// notification date is checked and written under one lock, so identical
// concurrent calls approve at most one notice per local day.
type Engine struct {
	mu       sync.Mutex
	store    notifyout.StateStore
	calendar clock.Calendar
	logger   *slog.Logger
	metrics  *metrics.Registry
}

func NewEngine(store notifyout.StateStore, calendar clock.Calendar, logger *slog.Logger, reg *metrics.Registry) *Engine {
	return &Engine{store: store, calendar: calendar, logger: logging.OrDiscard(logger), metrics: reg}
}

// ShouldSendCompletion approves a notice only on a fresh crossing of the goal
// with nothing recorded today. Approval is recorded before returning; when the
// state cannot be read or written the answer is false.
func (e *Engine) ShouldSendCompletion(ctx context.Context, current, goal, previous float64) (bool, string) {
	if !domain.CompletionCrossed(current, goal, previous) {
		return false, ""
	}
	e.mu.Lock()
	defer e.mu.Unlock()

	today := e.calendar.Today()
	state, err := e.store.Load(ctx)
	if err != nil {
		e.logger.Warn("notification state unavailable, skipping completion notice", "error", err)
		return false, today
	}
	if state.NotifiedOn(today) {
		return false, today
	}
	state.LastCompletionNotificationDate = today
	if err := e.store.Save(ctx, state); err != nil {
		e.logger.Warn("notification state not recorded, skipping completion notice", "error", err)
		return false, today
	}
	if e.metrics != nil {
		e.metrics.CompletionNotices.Inc()
	}
	return true, today
}

func (e *Engine) ReminderContent(isCompleted bool) domain.Reminder {
	return domain.ReminderFor(isCompleted)
}

// ResetDailyTracking clears a recorded date that is not today. It reports
// whether anything was cleared.
func (e *Engine) ResetDailyTracking(ctx context.Context) bool {
	e.mu.Lock()
	defer e.mu.Unlock()

	state, err := e.store.Load(ctx)
	if err != nil {
		e.logger.Warn("notification state unavailable, reset skipped", "error", err)
		return false
	}
	if state.LastCompletionNotificationDate == "" || state.NotifiedOn(e.calendar.Today()) {
		return false
	}
	if err := e.store.Save(ctx, domain.State{}); err != nil {
		e.logger.Warn("notification state reset not recorded", "error", err)
		return false
	}
	return true
}

func (e *Engine) State(ctx context.Context) (domain.State, string, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	state, err := e.store.Load(ctx)
	return state, e.calendar.Today(), err
}
