package in

import (
	"context"

	"dailymile/internal/modules/widget/dto"
	widgetin "dailymile/internal/modules/widget/port/in"
)

type CLIHandler struct {
	usecase widgetin.Usecase
}

func NewCLIHandler(usecase widgetin.Usecase) CLIHandler {
	return CLIHandler{usecase: usecase}
}

func (h CLIHandler) List(ctx context.Context) ([]dto.WidgetInfo, error) {
	return h.usecase.List(ctx)
}

func (h CLIHandler) Doctor(ctx context.Context) ([]dto.DoctorResult, error) {
	return h.usecase.Doctor(ctx)
}

func (h CLIHandler) Reload(ctx context.Context, all bool, version int64) (dto.ReloadOutput, error) {
	scope := dto.ScopeTargeted
	if all {
		scope = dto.ScopeAll
	}
	return h.usecase.Reload(ctx, dto.ReloadInput{Scope: scope, Version: version})
}
