package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"dailymile/internal/bootstrap"
	"dailymile/internal/platform/config"
	"dailymile/internal/platform/metrics"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		_, _ = fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

type globalFlags struct {
	dataDir    string
	configPath string
	verbose    bool
}

func newRootCmd() *cobra.Command {
	flags := &globalFlags{}

	root := &cobra.Command{
		Use:           "dailymile",
		Short:         "Daily distance goal tracker",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&flags.dataDir, "data", ".", "data directory")
	root.PersistentFlags().StringVar(&flags.configPath, "config", "", "config file (default <data>/.dailymile.yaml)")
	root.PersistentFlags().BoolVarP(&flags.verbose, "verbose", "v", false, "log to stderr")

	root.AddCommand(newTUICmd(flags))
	root.AddCommand(newActivityCmd(flags))
	root.AddCommand(newProgressCmd(flags))
	root.AddCommand(newHistoryCmd(flags))
	root.AddCommand(newStreakCmd(flags))
	root.AddCommand(newNotifyCmd(flags))
	root.AddCommand(newWidgetCmd(flags))
	root.AddCommand(newDaemonCmd(flags))
	return root
}

func loadApp(flags *globalFlags, logOut io.Writer) (*bootstrap.App, error) {
	cfg, err := config.Load(flags.dataDir, flags.configPath)
	if err != nil {
		return nil, err
	}
	if flags.verbose && logOut == nil {
		logOut = os.Stderr
	}
	return bootstrap.New(cfg, logOut)
}

func newTUICmd(flags *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "tui",
		Short: "Run the dailymile dashboard",
		RunE: func(_ *cobra.Command, _ []string) error {
			app, err := loadApp(flags, nil)
			if err != nil {
				return err
			}
			return bootstrap.RunTUI(app)
		},
	}
}

func newActivityCmd(flags *globalFlags) *cobra.Command {
	activity := &cobra.Command{Use: "activity", Short: "Import recorded activities"}

	var format, startRaw, parquetPath string
	importCmd := &cobra.Command{
		Use:   "import <path>",
		Short: "Import a FIT or JSON activity into history and today's progress",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			start, err := parseStart(startRaw)
			if err != nil {
				return err
			}
			app, err := loadApp(flags, nil)
			if err != nil {
				return err
			}
			out, err := app.ActivityCLI.Import(cmd.Context(), args[0], format, start, parquetPath)
			if err != nil {
				return err
			}
			w := cmd.OutOrStdout()
			if out.Duplicate {
				_, _ = fmt.Fprintf(w, "already imported, day=%s total=%.2f mi unchanged\n", out.Day, out.DayTotalMiles)
				return nil
			}
			_, _ = fmt.Fprintf(w, "imported %s (%s) %.2f mi over %s note=%s\n",
				out.ActivityID, out.Sport, out.DistanceMiles, formatSeconds(out.ElapsedSeconds), out.NotePath)
			_, _ = fmt.Fprintf(w, "day=%s total=%.2f mi accepted=%d rejected=%d\n", out.Day, out.DayTotalMiles, out.Accepted, out.Rejected)
			if out.ProgressUpdated {
				_, _ = fmt.Fprintf(w, "progress=%.0f%% completed=%t\n", out.Progress*100, out.IsCompleted)
			}
			if out.CompletionNotified {
				_, _ = fmt.Fprintln(w, "goal reached, notification sent")
			}
			if out.ParquetPath != "" {
				_, _ = fmt.Fprintf(w, "splits exported to %s\n", out.ParquetPath)
			}
			return nil
		},
	}
	importCmd.Flags().StringVar(&format, "format", "", "sample format: fit|json (default from extension)")
	importCmd.Flags().StringVar(&startRaw, "start", "", "activity start as RFC3339 (default from file)")
	importCmd.Flags().StringVar(&parquetPath, "parquet", "", "also export splits to this parquet file")

	splitsCmd := &cobra.Command{
		Use:   "splits <path>",
		Short: "Print per-mile splits without recording anything",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			start, err := parseStart(startRaw)
			if err != nil {
				return err
			}
			app, err := loadApp(flags, nil)
			if err != nil {
				return err
			}
			out, err := app.ActivityCLI.Splits(cmd.Context(), args[0], format, start)
			if err != nil {
				return err
			}
			w := cmd.OutOrStdout()
			_, _ = fmt.Fprintf(w, "%s %.2f mi over %s (accepted=%d rejected=%d)\n",
				out.Sport, out.DistanceMiles, formatSeconds(out.ElapsedSeconds), out.Accepted, out.Rejected)
			for _, s := range out.Splits {
				_, _ = fmt.Fprintf(w, "%3d  %.2f mi  %s  pace=%s/mi\n",
					s.Index, s.DistanceMiles, formatSeconds(s.DurationSeconds), formatSeconds(s.PaceSecondsPerMile))
			}
			return nil
		},
	}
	splitsCmd.Flags().StringVar(&format, "format", "", "sample format: fit|json (default from extension)")
	splitsCmd.Flags().StringVar(&startRaw, "start", "", "activity start as RFC3339 (default from file)")

	activity.AddCommand(importCmd, splitsCmd)
	return activity
}

func newProgressCmd(flags *globalFlags) *cobra.Command {
	progress := &cobra.Command{Use: "progress", Short: "Read and write today's progress snapshot"}

	var goal float64
	var force bool
	saveCmd := &cobra.Command{
		Use:   "save <miles>",
		Short: "Record today's distance",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			miles, err := strconv.ParseFloat(args[0], 64)
			if err != nil {
				return fmt.Errorf("miles must be a number: %w", err)
			}
			app, err := loadApp(flags, nil)
			if err != nil {
				return err
			}
			out, err := app.ProgressCLI.Save(cmd.Context(), miles, goal, force)
			if err != nil {
				return err
			}
			s := out.Snapshot
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "saved %.2f/%.2f mi (%.0f%%) version=%d scope=%s persisted=%t\n",
				s.TotalDistance, s.GoalMiles, s.Progress*100, s.Version, out.Scope, out.Persisted)
			if out.CompletionNotified {
				_, _ = fmt.Fprintln(cmd.OutOrStdout(), "goal reached, notification sent")
			}
			return nil
		},
	}
	saveCmd.Flags().Float64Var(&goal, "goal", 0, "goal in miles (default from config)")
	saveCmd.Flags().BoolVar(&force, "force", false, "reload every widget")

	progress.AddCommand(saveCmd)
	progress.AddCommand(&cobra.Command{
		Use:   "show",
		Short: "Show today's snapshot",
		RunE: func(cmd *cobra.Command, _ []string) error {
			app, err := loadApp(flags, nil)
			if err != nil {
				return err
			}
			s, err := app.ProgressCLI.Show(cmd.Context())
			if err != nil {
				return err
			}
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "day=%s distance=%.2f goal=%.2f progress=%.0f%% completed=%t state=%s version=%d\n",
				s.TrackingDay, s.TotalDistance, s.GoalMiles, s.Progress*100, s.IsCompleted, s.State, s.Version)
			return nil
		},
	})
	progress.AddCommand(&cobra.Command{
		Use:   "repair",
		Short: "Validate the stored snapshot and fix it in place",
		RunE: func(cmd *cobra.Command, _ []string) error {
			app, err := loadApp(flags, nil)
			if err != nil {
				return err
			}
			out, err := app.ProgressCLI.Repair(cmd.Context())
			if err != nil {
				return err
			}
			if !out.Repaired {
				_, _ = fmt.Fprintln(cmd.OutOrStdout(), "snapshot valid")
				return nil
			}
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "snapshot repaired version=%d\n", out.Snapshot.Version)
			return nil
		},
	})
	progress.AddCommand(&cobra.Command{
		Use:   "status",
		Short: "Show snapshot state and refresh need",
		RunE: func(cmd *cobra.Command, _ []string) error {
			app, err := loadApp(flags, nil)
			if err != nil {
				return err
			}
			st, err := app.ProgressCLI.Status(cmd.Context())
			if err != nil {
				return err
			}
			updated := "never"
			if !st.LastUpdate.IsZero() {
				updated = st.LastUpdate.Format(time.RFC3339)
			}
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "state=%s today=%t needs_refresh=%t day=%s version=%d updated=%s\n",
				st.State, st.IsToday, st.NeedsRefresh, st.TrackingDay, st.Version, updated)
			return nil
		},
	})
	progress.AddCommand(&cobra.Command{
		Use:   "refresh",
		Short: "Run one background refresh pass",
		RunE: func(cmd *cobra.Command, _ []string) error {
			app, err := loadApp(flags, nil)
			if err != nil {
				return err
			}
			if err := app.ProgressCLI.Refresh(cmd.Context()); err != nil {
				return err
			}
			_, _ = fmt.Fprintln(cmd.OutOrStdout(), "refreshed")
			return nil
		},
	})
	return progress
}

func newHistoryCmd(flags *globalFlags) *cobra.Command {
	history := &cobra.Command{Use: "history", Short: "Daily distance totals"}

	var day string
	addCmd := &cobra.Command{
		Use:   "add <miles>",
		Short: "Add miles to a day's total",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			miles, err := strconv.ParseFloat(args[0], 64)
			if err != nil {
				return fmt.Errorf("miles must be a number: %w", err)
			}
			app, err := loadApp(flags, nil)
			if err != nil {
				return err
			}
			out, err := app.HistoryCLI.Add(cmd.Context(), day, miles)
			if err != nil {
				return err
			}
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "%s total=%.2f mi\n", out.Day, out.Miles)
			return nil
		},
	}
	addCmd.Flags().StringVar(&day, "day", "", "day as YYYY-MM-DD (default today)")

	var limit int
	listCmd := &cobra.Command{
		Use:   "list",
		Short: "List the most recent daily totals",
		RunE: func(cmd *cobra.Command, _ []string) error {
			app, err := loadApp(flags, nil)
			if err != nil {
				return err
			}
			totals, err := app.HistoryCLI.List(cmd.Context(), limit)
			if err != nil {
				return err
			}
			if len(totals) == 0 {
				_, _ = fmt.Fprintln(cmd.OutOrStdout(), "no history")
				return nil
			}
			for _, t := range totals {
				_, _ = fmt.Fprintf(cmd.OutOrStdout(), "%s %.2f\n", t.Day, t.Miles)
			}
			return nil
		},
	}
	listCmd.Flags().IntVar(&limit, "limit", 14, "number of days")

	history.AddCommand(addCmd, listCmd)
	return history
}

func newStreakCmd(flags *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "streak",
		Short: "Show the current run of qualifying days",
		RunE: func(cmd *cobra.Command, _ []string) error {
			app, err := loadApp(flags, nil)
			if err != nil {
				return err
			}
			out, err := app.HistoryCLI.Streak(cmd.Context())
			if err != nil {
				return err
			}
			if out.Count == 0 {
				_, _ = fmt.Fprintf(cmd.OutOrStdout(), "streak=0 threshold=%.2f\n", out.Threshold)
				return nil
			}
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "streak=%d since=%s threshold=%.2f\n", out.Count, out.StartDate, out.Threshold)
			return nil
		},
	}
}

func newNotifyCmd(flags *globalFlags) *cobra.Command {
	notify := &cobra.Command{Use: "notify", Short: "Goal notifications"}

	checkCmd := &cobra.Command{
		Use:   "check <current> <goal> <previous>",
		Short: "Decide whether a completion notification is due and send it",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			values := make([]float64, len(args))
			for i, raw := range args {
				v, err := strconv.ParseFloat(raw, 64)
				if err != nil {
					return fmt.Errorf("argument %d must be a number: %w", i+1, err)
				}
				values[i] = v
			}
			app, err := loadApp(flags, nil)
			if err != nil {
				return err
			}
			out, err := app.NotifyCLI.Check(cmd.Context(), values[0], values[1], values[2])
			if err != nil {
				return err
			}
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "send=%t day=%s\n", out.Send, out.Day)
			return nil
		},
	}
	notify.AddCommand(checkCmd)
	notify.AddCommand(&cobra.Command{
		Use:   "reminder",
		Short: "Present the daily reminder unless the goal is reached",
		RunE: func(cmd *cobra.Command, _ []string) error {
			app, err := loadApp(flags, nil)
			if err != nil {
				return err
			}
			out, err := app.NotifyCLI.Reminder(cmd.Context())
			if err != nil {
				return err
			}
			if out.Suppressed {
				_, _ = fmt.Fprintln(cmd.OutOrStdout(), "reminder suppressed, goal already reached")
				return nil
			}
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "%s: %s\n", out.Reminder.Title, out.Reminder.Body)
			return nil
		},
	})
	notify.AddCommand(&cobra.Command{
		Use:   "reset",
		Short: "Clear completion tracking left over from a previous day",
		RunE: func(cmd *cobra.Command, _ []string) error {
			app, err := loadApp(flags, nil)
			if err != nil {
				return err
			}
			reset, err := app.NotifyCLI.Reset(cmd.Context())
			if err != nil {
				return err
			}
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "reset=%t\n", reset)
			return nil
		},
	})
	notify.AddCommand(&cobra.Command{
		Use:   "state",
		Short: "Show notification tracking state",
		RunE: func(cmd *cobra.Command, _ []string) error {
			app, err := loadApp(flags, nil)
			if err != nil {
				return err
			}
			st, err := app.NotifyCLI.State(cmd.Context())
			if err != nil {
				return err
			}
			last := st.LastCompletionNotificationDate
			if last == "" {
				last = "never"
			}
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "today=%s notified_today=%t last=%s\n", st.Today, st.NotifiedToday, last)
			return nil
		},
	})
	return notify
}

func newWidgetCmd(flags *globalFlags) *cobra.Command {
	widget := &cobra.Command{Use: "widget", Short: "Manage progress widgets"}
	widget.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "List installed widgets",
		RunE: func(cmd *cobra.Command, _ []string) error {
			app, err := loadApp(flags, nil)
			if err != nil {
				return err
			}
			items, err := app.WidgetCLI.List(cmd.Context())
			if err != nil {
				return err
			}
			if len(items) == 0 {
				_, _ = fmt.Fprintln(cmd.OutOrStdout(), "no widgets")
				return nil
			}
			for _, item := range items {
				_, _ = fmt.Fprintf(cmd.OutOrStdout(), "%s %s enabled=%t kinds=%s\n",
					item.Name, item.Version, item.Enabled, strings.Join(item.Kinds, ","))
			}
			return nil
		},
	})
	widget.AddCommand(&cobra.Command{
		Use:   "doctor",
		Short: "Verify widget checksums and lifecycle",
		RunE: func(cmd *cobra.Command, _ []string) error {
			app, err := loadApp(flags, nil)
			if err != nil {
				return err
			}
			results, err := app.WidgetCLI.Doctor(cmd.Context())
			if err != nil {
				return err
			}
			if len(results) == 0 {
				_, _ = fmt.Fprintln(cmd.OutOrStdout(), "no widgets")
				return nil
			}
			for _, r := range results {
				_, _ = fmt.Fprintf(cmd.OutOrStdout(), "%s checksum=%t binary=%t lifecycle=%t", r.Name, r.ChecksumValid, r.BinaryReachable, r.LifecycleOK)
				if r.Error != "" {
					_, _ = fmt.Fprintf(cmd.OutOrStdout(), " error=%q", r.Error)
				}
				_, _ = fmt.Fprintln(cmd.OutOrStdout())
			}
			return nil
		},
	})

	var all bool
	var version int64
	reloadCmd := &cobra.Command{
		Use:   "reload",
		Short: "Reload widgets from the current snapshot",
		RunE: func(cmd *cobra.Command, _ []string) error {
			app, err := loadApp(flags, nil)
			if err != nil {
				return err
			}
			out, reloadErr := app.WidgetCLI.Reload(cmd.Context(), all, version)
			for _, r := range out.Reloaded {
				if r.Error != "" {
					_, _ = fmt.Fprintf(cmd.OutOrStdout(), "%s error=%q\n", r.Name, r.Error)
					continue
				}
				_, _ = fmt.Fprintf(cmd.OutOrStdout(), "%s\n%s\n", r.Name, r.Rendered)
			}
			if len(out.Skipped) > 0 {
				_, _ = fmt.Fprintf(cmd.OutOrStdout(), "skipped: %s\n", strings.Join(out.Skipped, ", "))
			}
			return reloadErr
		},
	}
	reloadCmd.Flags().BoolVar(&all, "all", false, "reload every widget kind")
	reloadCmd.Flags().Int64Var(&version, "version", 0, "snapshot version to report")
	widget.AddCommand(reloadCmd)
	return widget
}

func newDaemonCmd(flags *globalFlags) *cobra.Command {
	daemon := &cobra.Command{Use: "daemon", Short: "Background refresh loop"}

	var once bool
	runCmd := &cobra.Command{
		Use:   "run",
		Short: "Run the refresh scheduler and metrics endpoint in the foreground",
		RunE: func(cmd *cobra.Command, _ []string) error {
			app, err := loadApp(flags, os.Stderr)
			if err != nil {
				return err
			}
			sched, err := app.Scheduler()
			if err != nil {
				return err
			}
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			if once {
				for name, outcome := range sched.RunOnce(ctx) {
					_, _ = fmt.Fprintf(cmd.OutOrStdout(), "%s %s\n", name, outcome)
				}
				return nil
			}

			if addr := app.Config.Metrics.Addr; addr != "" {
				srv, err := metrics.Serve(addr, app.Metrics, app.Logger)
				if err != nil {
					return err
				}
				app.Logger.Info("metrics listening", "addr", srv.Addr())
				defer func() {
					shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
					defer cancel()
					_ = srv.Close(shutdownCtx)
				}()
			}
			app.Logger.Info("daemon started", "interval", app.Config.Refresh.Interval)
			return sched.Run(ctx)
		},
	}
	runCmd.Flags().BoolVar(&once, "once", false, "run every task once and exit")
	daemon.AddCommand(runCmd)
	return daemon
}

func parseStart(raw string) (time.Time, error) {
	if strings.TrimSpace(raw) == "" {
		return time.Time{}, nil
	}
	start, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		return time.Time{}, fmt.Errorf("--start must be RFC3339: %w", err)
	}
	return start, nil
}

func formatSeconds(seconds float64) string {
	d := time.Duration(seconds * float64(time.Second)).Round(time.Second)
	h := int(d / time.Hour)
	m := int(d%time.Hour) / int(time.Minute)
	s := int(d%time.Minute) / int(time.Second)
	if h > 0 {
		return fmt.Sprintf("%d:%02d:%02d", h, m, s)
	}
	return fmt.Sprintf("%d:%02d", m, s)
}
