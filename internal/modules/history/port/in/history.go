package in

import (
	"context"

	"dailymile/internal/modules/history/dto"
)

type Usecase interface {
	AddDistance(ctx context.Context, input dto.AddInput) (dto.DailyTotalOutput, error)
	Total(ctx context.Context, day string) (dto.DailyTotalOutput, error)
	List(ctx context.Context, limit int) ([]dto.DailyTotalOutput, error)
	Streak(ctx context.Context) (dto.StreakOutput, error)
}
