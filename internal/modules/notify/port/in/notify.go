package in

import (
	"context"

	"dailymile/internal/modules/notify/dto"
)

type Usecase interface {
	ShouldSendCompletion(ctx context.Context, input dto.CompletionInput) (dto.CompletionOutput, error)
	ReminderContent(isCompleted bool) dto.ReminderOutput
	ScheduleReminder(ctx context.Context) (dto.ReminderOutput, error)
	PresentReminder(ctx context.Context, scheduled dto.ReminderOutput) (dto.PresentOutput, error)
	ResetDailyTracking(ctx context.Context) (bool, error)
	State(ctx context.Context) (dto.StateOutput, error)
}
