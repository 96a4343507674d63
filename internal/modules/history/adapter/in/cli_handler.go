package in

import (
	"context"

	historydto "dailymile/internal/modules/history/dto"
	historyin "dailymile/internal/modules/history/port/in"
)

type CLIHandler struct {
	usecase historyin.Usecase
}

func NewCLIHandler(usecase historyin.Usecase) CLIHandler {
	return CLIHandler{usecase: usecase}
}

func (h CLIHandler) Add(ctx context.Context, day string, miles float64) (historydto.DailyTotalOutput, error) {
	return h.usecase.AddDistance(ctx, historydto.AddInput{Day: day, Miles: miles})
}

func (h CLIHandler) List(ctx context.Context, limit int) ([]historydto.DailyTotalOutput, error) {
	return h.usecase.List(ctx, limit)
}

func (h CLIHandler) Streak(ctx context.Context) (historydto.StreakOutput, error) {
	return h.usecase.Streak(ctx)
}
