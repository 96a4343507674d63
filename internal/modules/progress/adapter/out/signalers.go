package out

import (
	"context"
	"errors"
	"log/slog"

	"dailymile/internal/modules/progress/domain"
	progressout "dailymile/internal/modules/progress/port/out"
	widgetdto "dailymile/internal/modules/widget/dto"
	widgetin "dailymile/internal/modules/widget/port/in"
	"dailymile/internal/platform/logging"
)

// WidgetSignaler forwards refresh signals to out-of-process widget renderers.
type WidgetSignaler struct {
	widgets widgetin.Usecase
}

func NewWidgetSignaler(widgets widgetin.Usecase) progressout.RefreshSignaler {
	return WidgetSignaler{widgets: widgets}
}

func (s WidgetSignaler) Signal(ctx context.Context, scope domain.RefreshScope, snapshot domain.Snapshot) error {
	_, err := s.widgets.Reload(ctx, widgetdto.ReloadInput{Scope: string(scope), Version: snapshot.Version})
	return err
}

type LogSignaler struct {
	logger *slog.Logger
}

func NewLogSignaler(logger *slog.Logger) progressout.RefreshSignaler {
	return LogSignaler{logger: logging.OrDiscard(logger)}
}

func (s LogSignaler) Signal(_ context.Context, scope domain.RefreshScope, snapshot domain.Snapshot) error {
	s.logger.Info("progress refresh",
		"scope", scope,
		"tracking_day", snapshot.TrackingDay,
		"distance", snapshot.TotalDistance,
		"goal", snapshot.GoalMiles,
		"completed", snapshot.IsCompleted,
		"version", snapshot.Version,
	)
	return nil
}

// FanoutSignaler delivers each signal to every signaler and joins the errors.
type FanoutSignaler []progressout.RefreshSignaler

func (f FanoutSignaler) Signal(ctx context.Context, scope domain.RefreshScope, snapshot domain.Snapshot) error {
	var errs []error
	for _, signaler := range f {
		if signaler == nil {
			continue
		}
		if err := signaler.Signal(ctx, scope, snapshot); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
