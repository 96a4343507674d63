package bootstrap

import (
	"fmt"
	"io"
	"log/slog"

	tea "github.com/charmbracelet/bubbletea"

	activityinadapter "dailymile/internal/modules/activity/adapter/in"
	activityoutadapter "dailymile/internal/modules/activity/adapter/out"
	activitydomain "dailymile/internal/modules/activity/domain"
	activityout "dailymile/internal/modules/activity/port/out"
	activityservice "dailymile/internal/modules/activity/service"
	activityusecase "dailymile/internal/modules/activity/usecase"
	historyinadapter "dailymile/internal/modules/history/adapter/in"
	historyoutadapter "dailymile/internal/modules/history/adapter/out"
	historydomain "dailymile/internal/modules/history/domain"
	historyin "dailymile/internal/modules/history/port/in"
	historyservice "dailymile/internal/modules/history/service"
	historyusecase "dailymile/internal/modules/history/usecase"
	notifyinadapter "dailymile/internal/modules/notify/adapter/in"
	notifyoutadapter "dailymile/internal/modules/notify/adapter/out"
	notifyin "dailymile/internal/modules/notify/port/in"
	notifyservice "dailymile/internal/modules/notify/service"
	notifyusecase "dailymile/internal/modules/notify/usecase"
	progressinadapter "dailymile/internal/modules/progress/adapter/in"
	progressoutadapter "dailymile/internal/modules/progress/adapter/out"
	progressin "dailymile/internal/modules/progress/port/in"
	progressout "dailymile/internal/modules/progress/port/out"
	progressservice "dailymile/internal/modules/progress/service"
	progressusecase "dailymile/internal/modules/progress/usecase"
	widgetinadapter "dailymile/internal/modules/widget/adapter/in"
	widgetoutadapter "dailymile/internal/modules/widget/adapter/out"
	widgetin "dailymile/internal/modules/widget/port/in"
	widgetservice "dailymile/internal/modules/widget/service"
	widgetusecase "dailymile/internal/modules/widget/usecase"
	"dailymile/internal/platform/clock"
	"dailymile/internal/platform/config"
	"dailymile/internal/platform/id"
	"dailymile/internal/platform/logging"
	"dailymile/internal/platform/metrics"
	"dailymile/internal/platform/scheduler"
	uiapp "dailymile/internal/ui/app"
)

type App struct {
	Config  config.Config
	Logger  *slog.Logger
	Metrics *metrics.Registry

	ActivityCLI activityinadapter.CLIHandler
	ProgressCLI progressinadapter.CLIHandler
	HistoryCLI  historyinadapter.CLIHandler
	NotifyCLI   notifyinadapter.CLIHandler
	WidgetCLI   widgetinadapter.CLIHandler

	progress progressin.Usecase
	history  historyin.Usecase
	notify   notifyin.Usecase
	widgets  widgetin.Usecase
}

// New wires every module for cfg. Log output goes to logOut; pass nil to
// discard it.
func New(cfg config.Config, logOut io.Writer) (*App, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}
	loc, err := cfg.Location()
	if err != nil {
		return nil, err
	}

	logger := logging.Discard()
	if logOut != nil {
		logger = logging.New(logOut, cfg.Log.Level, cfg.Log.JSON)
	}
	reg := metrics.NewRegistry()
	clk := clock.SystemClock{}
	calendar := clock.NewCalendar(clk, loc)

	totals, err := historyoutadapter.NewSQLiteTotalStore(cfg.DBPath, clk)
	if err != nil {
		return nil, fmt.Errorf("new history store: %w", err)
	}
	streaks, err := historyservice.NewStreakCalculator(totals, calendar, historydomain.Policy{
		Threshold: cfg.Streak.Threshold,
		PageSize:  cfg.Streak.PageSize,
	})
	if err != nil {
		return nil, fmt.Errorf("new streak calculator: %w", err)
	}
	historyUC := historyusecase.NewInteractor(totals, streaks, calendar)

	widgetUC := widgetusecase.NewInteractor(widgetservice.NewWidgetService(
		widgetoutadapter.NewFileManifestStore(cfg.DataDir),
		widgetoutadapter.NewGRPCHost(),
		cfg.SnapshotPath,
		logger.With("module", "widget"),
	))

	progressReader := notifyoutadapter.NewProgressReader()
	notifyUC := notifyusecase.NewInteractor(
		notifyservice.NewEngine(notifyoutadapter.NewFileStateStore(cfg.DataDir), calendar, logger.With("module", "notify"), reg),
		progressReader,
		notifyoutadapter.FanoutDispatcher{
			notifyoutadapter.NewOutboxDispatcher(cfg.DataDir),
			notifyoutadapter.NewLogDispatcher(logger.With("module", "notify")),
		},
		calendar,
		logger.With("module", "notify"),
	)

	backend, err := newSnapshotBackend(cfg)
	if err != nil {
		return nil, fmt.Errorf("new snapshot backend: %w", err)
	}
	store := progressservice.NewStore(backend, progressoutadapter.FanoutSignaler{
		progressoutadapter.NewWidgetSignaler(widgetUC),
		progressoutadapter.NewLogSignaler(logger.With("module", "progress")),
	}, calendar, progressservice.StoreOptions{
		DefaultGoal:     cfg.Goal.Miles,
		StalenessWindow: cfg.Store.StalenessWindow,
		Logger:          logger.With("module", "progress"),
		Metrics:         reg,
	})
	progressUC := progressusecase.NewInteractor(store, notifyUC, historyUC, calendar)
	progressReader.Attach(progressUC)

	activityUC := activityusecase.NewInteractor(
		activityservice.NewActivityService(id.TimeOrdered{}, activityoutadapter.NewMetricsSampleRecorder(reg)),
		activityusecase.Deps{
			Sources: map[activitydomain.Format]activityout.SampleSource{
				activitydomain.FormatFIT:  activityoutadapter.NewFITSampleSource(),
				activitydomain.FormatJSON: activityoutadapter.NewJSONSampleSource(),
			},
			Store:    activityoutadapter.NewVaultActivityStore(cfg.DataDir, loc),
			Exporter: activityoutadapter.NewParquetSplitExporter(),
			History:  historyUC,
			Progress: progressUC,
			Calendar: calendar,
		},
	)

	return &App{
		Config:      cfg,
		Logger:      logger,
		Metrics:     reg,
		ActivityCLI: activityinadapter.NewCLIHandler(activityUC),
		ProgressCLI: progressinadapter.NewCLIHandler(progressUC),
		HistoryCLI:  historyinadapter.NewCLIHandler(historyUC),
		NotifyCLI:   notifyinadapter.NewCLIHandler(notifyUC),
		WidgetCLI:   widgetinadapter.NewCLIHandler(widgetUC),
		progress:    progressUC,
		history:     historyUC,
		notify:      notifyUC,
		widgets:     widgetUC,
	}, nil
}

func newSnapshotBackend(cfg config.Config) (progressout.SnapshotBackend, error) {
	switch cfg.Store.Backend {
	case config.BackendMemory:
		return progressoutadapter.NewMemoryBackend(), nil
	case config.BackendSQLite:
		return progressoutadapter.NewSQLiteBackend(cfg.DBPath)
	default:
		return progressoutadapter.NewFileBackend(cfg.SnapshotPath), nil
	}
}

// Scheduler builds the background refresh loop run by the daemon.
func (a *App) Scheduler() (*scheduler.Scheduler, error) {
	return scheduler.New(
		a.Config.Refresh.Interval,
		a.Config.Refresh.TaskTimeout,
		a.Logger.With("component", "scheduler"),
		a.Metrics,
		scheduler.Task{Name: "progress-refresh", Run: a.progress.Refresh},
	)
}

func RunTUI(app *App) error {
	model := uiapp.NewModel(uiapp.Ports{
		Progress: app.progress,
		History:  app.history,
		Widgets:  app.widgets,
		Notify:   app.notify,
	}, uiapp.Options{
		PollInterval: app.Config.Dashboard.PollInterval,
	})
	program := tea.NewProgram(model, tea.WithAltScreen())
	_, err := program.Run()
	return err
}
