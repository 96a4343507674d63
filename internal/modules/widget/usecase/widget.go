package usecase

import (
	"context"

	"dailymile/internal/modules/widget/dto"
	widgetin "dailymile/internal/modules/widget/port/in"
	"dailymile/internal/modules/widget/service"
)

type Interactor struct {
	svc *service.WidgetService
}

func NewInteractor(svc *service.WidgetService) widgetin.Usecase {
	return &Interactor{svc: svc}
}

func (i *Interactor) List(ctx context.Context) ([]dto.WidgetInfo, error) {
	return i.svc.List(ctx)
}

func (i *Interactor) Doctor(ctx context.Context) ([]dto.DoctorResult, error) {
	return i.svc.Doctor(ctx)
}

func (i *Interactor) Reload(ctx context.Context, input dto.ReloadInput) (dto.ReloadOutput, error) {
	return i.svc.Reload(ctx, input)
}
