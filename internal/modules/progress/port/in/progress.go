package in

import (
	"context"

	"dailymile/internal/modules/progress/dto"
)

type Usecase interface {
	Save(ctx context.Context, input dto.SaveInput) (dto.SaveOutput, error)
	Show(ctx context.Context) (dto.SnapshotOutput, error)
	Repair(ctx context.Context) (dto.RepairOutput, error)
	Status(ctx context.Context) (dto.StatusOutput, error)
	// Refresh is the periodic background pass: repair, reconcile today's
	// total with history when stale, and reset daily notification tracking.
	Refresh(ctx context.Context) error
}
