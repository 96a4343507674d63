// Package metrics owns the Prometheus registry and the diagnostic counters
// shared by every module.
package metrics

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "dailymile"

// Registry holds the process counters. Each Registry uses its own
// prometheus.Registry so tests can create as many as they like.
type Registry struct {
	reg *prometheus.Registry

	SamplesRejected   prometheus.Counter
	SamplesAccepted   prometheus.Counter
	SnapshotWrites    *prometheus.CounterVec
	SnapshotRepairs   prometheus.Counter
	RefreshSignals    *prometheus.CounterVec
	CompletionNotices prometheus.Counter
	TaskRuns          *prometheus.CounterVec
}

func NewRegistry() *Registry {
	reg := prometheus.NewRegistry()
	r := &Registry{
		reg: reg,
		SamplesRejected: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "samples_rejected_total",
			Help:      "Raw samples dropped by the sample filter.",
		}),
		SamplesAccepted: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "samples_accepted_total",
			Help:      "Raw samples that passed the sample filter.",
		}),
		SnapshotWrites: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "snapshot_writes_total",
			Help:      "Progress snapshot writes by outcome.",
		}, []string{"outcome"}),
		SnapshotRepairs: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "snapshot_repairs_total",
			Help:      "Self-healing repairs applied to the progress snapshot.",
		}),
		RefreshSignals: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "refresh_signals_total",
			Help:      "Refresh signals emitted to dependent consumers by scope.",
		}, []string{"scope"}),
		CompletionNotices: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "completion_notifications_total",
			Help:      "Goal completion notifications approved for delivery.",
		}),
		TaskRuns: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "background_task_runs_total",
			Help:      "Background task runs by task and outcome.",
		}, []string{"task", "outcome"}),
	}
	reg.MustRegister(
		r.SamplesRejected,
		r.SamplesAccepted,
		r.SnapshotWrites,
		r.SnapshotRepairs,
		r.RefreshSignals,
		r.CompletionNotices,
		r.TaskRuns,
	)
	return r
}

// Gatherer exposes the underlying registry for scraping and tests.
func (r *Registry) Gatherer() prometheus.Gatherer {
	return r.reg
}

func (r *Registry) Handler() http.Handler {
	return promhttp.HandlerFor(r.reg, promhttp.HandlerOpts{})
}

// Server serves /metrics until Close is called.
type Server struct {
	server   *http.Server
	listener net.Listener
}

func Serve(addr string, r *Registry, logger *slog.Logger) (*Server, error) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", r.Handler())

	var lc net.ListenConfig
	listener, err := lc.Listen(context.Background(), "tcp", addr)
	if err != nil {
		return nil, fmt.Errorf("listen on %s: %w", addr, err)
	}
	srv := &http.Server{Handler: mux}
	go func() {
		if serveErr := srv.Serve(listener); serveErr != nil && !errors.Is(serveErr, http.ErrServerClosed) {
			logger.Warn("metrics server stopped", "error", serveErr)
		}
	}()
	return &Server{server: srv, listener: listener}, nil
}

func (s *Server) Addr() string {
	return s.listener.Addr().String()
}

func (s *Server) Close(ctx context.Context) error {
	if err := s.server.Shutdown(ctx); err != nil {
		return fmt.Errorf("shutdown metrics server: %w", err)
	}
	return nil
}
