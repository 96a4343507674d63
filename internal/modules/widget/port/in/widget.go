package in

import (
	"context"

	"dailymile/internal/modules/widget/dto"
)

type Usecase interface {
	List(ctx context.Context) ([]dto.WidgetInfo, error)
	Doctor(ctx context.Context) ([]dto.DoctorResult, error)
	Reload(ctx context.Context, input dto.ReloadInput) (dto.ReloadOutput, error)
}
