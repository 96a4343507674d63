// Package scheduler runs periodic background tasks with cancellation and a
// per-run deadline. A run that exceeds its deadline is reported as expired and
// retried on the next tick.
package scheduler

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"dailymile/internal/platform/logging"
	"dailymile/internal/platform/metrics"
)

const (
	OutcomeOK      = "ok"
	OutcomeFailed  = "failed"
	OutcomeExpired = "expired"
)

// Task is one unit of background work. Run must observe ctx and must not leave
// partial state behind when ctx expires.
type Task struct {
	Name string
	Run  func(ctx context.Context) error
}

type Scheduler struct {
	interval time.Duration
	timeout  time.Duration
	tasks    []Task
	logger   *slog.Logger
	metrics  *metrics.Registry
}

func New(interval, timeout time.Duration, logger *slog.Logger, reg *metrics.Registry, tasks ...Task) (*Scheduler, error) {
	if interval <= 0 {
		return nil, fmt.Errorf("scheduler interval must be positive")
	}
	if timeout <= 0 {
		return nil, fmt.Errorf("scheduler task timeout must be positive")
	}
	return &Scheduler{
		interval: interval,
		timeout:  timeout,
		tasks:    tasks,
		logger:   logging.OrDiscard(logger),
		metrics:  reg,
	}, nil
}

// Run executes every task once immediately and then on each tick until ctx is done.
func (s *Scheduler) Run(ctx context.Context) error {
	s.RunOnce(ctx)

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			s.RunOnce(ctx)
		}
	}
}

// RunOnce executes each task sequentially under its own deadline and returns
// the outcome per task name.
func (s *Scheduler) RunOnce(ctx context.Context) map[string]string {
	outcomes := make(map[string]string, len(s.tasks))
	for _, task := range s.tasks {
		if ctx.Err() != nil {
			return outcomes
		}
		outcome := s.runTask(ctx, task)
		outcomes[task.Name] = outcome
		if s.metrics != nil {
			s.metrics.TaskRuns.WithLabelValues(task.Name, outcome).Inc()
		}
	}
	return outcomes
}

func (s *Scheduler) runTask(ctx context.Context, task Task) string {
	runCtx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	started := time.Now()
	err := task.Run(runCtx)
	switch {
	case err == nil:
		s.logger.Debug("background task finished", "task", task.Name, "elapsed", time.Since(started))
		return OutcomeOK
	case errors.Is(err, context.DeadlineExceeded):
		s.logger.Warn("background task expired, retrying next tick", "task", task.Name, "timeout", s.timeout)
		return OutcomeExpired
	default:
		s.logger.Warn("background task failed", "task", task.Name, "error", err)
		return OutcomeFailed
	}
}
