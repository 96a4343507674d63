package in

import (
	"context"

	progressdto "dailymile/internal/modules/progress/dto"
	progressin "dailymile/internal/modules/progress/port/in"
)

type CLIHandler struct {
	usecase progressin.Usecase
}

func NewCLIHandler(usecase progressin.Usecase) CLIHandler {
	return CLIHandler{usecase: usecase}
}

func (h CLIHandler) Save(ctx context.Context, distance, goal float64, force bool) (progressdto.SaveOutput, error) {
	return h.usecase.Save(ctx, progressdto.SaveInput{DistanceMiles: distance, GoalMiles: goal, Force: force})
}

func (h CLIHandler) Show(ctx context.Context) (progressdto.SnapshotOutput, error) {
	return h.usecase.Show(ctx)
}

func (h CLIHandler) Repair(ctx context.Context) (progressdto.RepairOutput, error) {
	return h.usecase.Repair(ctx)
}

func (h CLIHandler) Status(ctx context.Context) (progressdto.StatusOutput, error) {
	return h.usecase.Status(ctx)
}

func (h CLIHandler) Refresh(ctx context.Context) error {
	return h.usecase.Refresh(ctx)
}
