package in

import (
	"context"
	"time"

	activitydto "dailymile/internal/modules/activity/dto"
	activityin "dailymile/internal/modules/activity/port/in"
)

type CLIHandler struct {
	usecase activityin.Usecase
}

func NewCLIHandler(usecase activityin.Usecase) CLIHandler {
	return CLIHandler{usecase: usecase}
}

func (h CLIHandler) Import(ctx context.Context, path, format string, start time.Time, parquetPath string) (activitydto.ImportOutput, error) {
	return h.usecase.Import(ctx, activitydto.ImportInput{Path: path, Format: format, Start: start, ParquetPath: parquetPath})
}

func (h CLIHandler) Splits(ctx context.Context, path, format string, start time.Time) (activitydto.AnalyzeOutput, error) {
	return h.usecase.Analyze(ctx, activitydto.ImportInput{Path: path, Format: format, Start: start})
}
