package usecase

import (
	"context"
	"fmt"

	"dailymile/internal/modules/activity/domain"
	activitydto "dailymile/internal/modules/activity/dto"
	activityin "dailymile/internal/modules/activity/port/in"
	activityout "dailymile/internal/modules/activity/port/out"
	"dailymile/internal/modules/activity/service"
	historydto "dailymile/internal/modules/history/dto"
	historyin "dailymile/internal/modules/history/port/in"
	progressdto "dailymile/internal/modules/progress/dto"
	progressin "dailymile/internal/modules/progress/port/in"
	"dailymile/internal/platform/clock"
	apperrors "dailymile/internal/platform/errors"
)

type Interactor struct {
	svc      *service.ActivityService
	sources  map[domain.Format]activityout.SampleSource
	store    activityout.ActivityStore
	exporter activityout.SplitExporter
	history  historyin.Usecase
	progress progressin.Usecase
	calendar clock.Calendar
}

type Deps struct {
	Sources  map[domain.Format]activityout.SampleSource
	Store    activityout.ActivityStore
	Exporter activityout.SplitExporter
	History  historyin.Usecase
	Progress progressin.Usecase
	Calendar clock.Calendar
}

func NewInteractor(svc *service.ActivityService, deps Deps) activityin.Usecase {
	return &Interactor{
		svc:      svc,
		sources:  deps.Sources,
		store:    deps.Store,
		exporter: deps.Exporter,
		history:  deps.History,
		progress: deps.Progress,
		calendar: deps.Calendar,
	}
}

func (i *Interactor) Analyze(ctx context.Context, input activitydto.ImportInput) (activitydto.AnalyzeOutput, error) {
	activity, err := i.analyze(ctx, input)
	if err != nil {
		return activitydto.AnalyzeOutput{}, err
	}
	return toAnalyzeOutput(activity), nil
}

func (i *Interactor) Import(ctx context.Context, input activitydto.ImportInput) (activitydto.ImportOutput, error) {
	activity, err := i.analyze(ctx, input)
	if err != nil {
		return activitydto.ImportOutput{}, err
	}
	if activity.Accepted == 0 {
		return activitydto.ImportOutput{}, fmt.Errorf("import %s: %w", input.Path, domain.ErrNoSamples)
	}
	activity = i.svc.Identify(activity)

	out := activitydto.ImportOutput{AnalyzeOutput: toAnalyzeOutput(activity), ActivityID: activity.ID}
	out.Day = i.calendar.DayKey(activity.StartedAt)

	// The contribution is recorded first so a repeated file stops here.
	var total historydto.DailyTotalOutput
	if i.history != nil {
		total, err = i.history.AddDistance(ctx, historydto.AddInput{
			Day:         out.Day,
			Miles:       activity.DistanceMiles(),
			ActivityKey: activity.SourceKey,
		})
		if err != nil {
			return activitydto.ImportOutput{}, err
		}
		out.DayTotalMiles = total.Miles
		if total.Duplicate {
			out.Duplicate = true
			out.Day = total.Day
			return out, nil
		}
	}

	if i.store != nil {
		path, err := i.store.Save(ctx, activity)
		if err != nil {
			return activitydto.ImportOutput{}, err
		}
		out.NotePath = path
	}
	if input.ParquetPath != "" {
		if i.exporter == nil {
			return activitydto.ImportOutput{}, fmt.Errorf("split exporter is not configured")
		}
		if err := i.exporter.Export(ctx, input.ParquetPath, activity); err != nil {
			return activitydto.ImportOutput{}, err
		}
		out.ParquetPath = input.ParquetPath
	}

	if i.history == nil || i.progress == nil || out.Day != i.calendar.Today() {
		return out, nil
	}
	saved, err := i.progress.Save(ctx, progressdto.SaveInput{DistanceMiles: total.Miles})
	if err != nil {
		return activitydto.ImportOutput{}, err
	}
	out.ProgressUpdated = true
	out.Progress = saved.Snapshot.Progress
	out.IsCompleted = saved.Snapshot.IsCompleted
	out.CompletionNotified = saved.CompletionNotified
	return out, nil
}

func (i *Interactor) analyze(ctx context.Context, input activitydto.ImportInput) (domain.Activity, error) {
	if input.Path == "" {
		return domain.Activity{}, fmt.Errorf("%w: activity file path is required", apperrors.ErrInvalidInput)
	}
	format, err := resolveFormat(input)
	if err != nil {
		return domain.Activity{}, err
	}
	source, ok := i.sources[format]
	if !ok {
		return domain.Activity{}, fmt.Errorf("%w: %s", apperrors.ErrUnsupportedFormat, format)
	}
	recording, err := source.Read(ctx, input.Path)
	if err != nil {
		return domain.Activity{}, err
	}
	return i.svc.Analyze(recording, input.Start, string(format)), nil
}

func resolveFormat(input activitydto.ImportInput) (domain.Format, error) {
	if input.Format != "" {
		return domain.ParseFormat(input.Format)
	}
	return domain.FormatForPath(input.Path)
}

func toAnalyzeOutput(activity domain.Activity) activitydto.AnalyzeOutput {
	splits := make([]activitydto.SplitOutput, 0, len(activity.Splits))
	for _, split := range activity.Splits {
		splits = append(splits, activitydto.SplitOutput{
			Index:              split.Index,
			DistanceMiles:      split.DistanceMiles,
			DurationSeconds:    split.DurationSeconds,
			PaceSecondsPerMile: split.PaceSecondsPerMile,
		})
	}
	return activitydto.AnalyzeOutput{
		Sport:          activity.Sport,
		StartedAt:      activity.StartedAt,
		DistanceMiles:  activity.DistanceMiles(),
		ElapsedSeconds: activity.ElapsedSeconds,
		Accepted:       activity.Accepted,
		Rejected:       activity.Rejected,
		Splits:         splits,
	}
}
