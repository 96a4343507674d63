package in

import (
	"context"

	notifydto "dailymile/internal/modules/notify/dto"
	notifyin "dailymile/internal/modules/notify/port/in"
)

type CLIHandler struct {
	usecase notifyin.Usecase
}

func NewCLIHandler(usecase notifyin.Usecase) CLIHandler {
	return CLIHandler{usecase: usecase}
}

func (h CLIHandler) Check(ctx context.Context, current, goal, previous float64) (notifydto.CompletionOutput, error) {
	return h.usecase.ShouldSendCompletion(ctx, notifydto.CompletionInput{Current: current, Goal: goal, Previous: previous})
}

// Reminder schedules today's reminder and presents it right away.
func (h CLIHandler) Reminder(ctx context.Context) (notifydto.PresentOutput, error) {
	scheduled, err := h.usecase.ScheduleReminder(ctx)
	if err != nil {
		return notifydto.PresentOutput{}, err
	}
	return h.usecase.PresentReminder(ctx, scheduled)
}

func (h CLIHandler) Reset(ctx context.Context) (bool, error) {
	return h.usecase.ResetDailyTracking(ctx)
}

func (h CLIHandler) State(ctx context.Context) (notifydto.StateOutput, error) {
	return h.usecase.State(ctx)
}
