package in

import (
	"context"

	"dailymile/internal/modules/activity/dto"
)

type Usecase interface {
	Analyze(ctx context.Context, input dto.ImportInput) (dto.AnalyzeOutput, error)
	Import(ctx context.Context, input dto.ImportInput) (dto.ImportOutput, error)
}
