package service

import (
	"context"
	"errors"
	"log/slog"
	"math"
	"sync"
	"time"

	"dailymile/internal/modules/progress/domain"
	progressout "dailymile/internal/modules/progress/port/out"
	"dailymile/internal/platform/clock"
	apperrors "dailymile/internal/platform/errors"
	"dailymile/internal/platform/logging"
	"dailymile/internal/platform/metrics"
)

// SaveResult describes one Save call. Previous is today's snapshot before the
// write, zeroed when the write started a new tracking day.
type SaveResult struct {
	Snapshot  domain.Snapshot
	Previous  domain.Snapshot
	Scope     domain.RefreshScope
	Persisted bool
}

type StoreOptions struct {
	DefaultGoal     float64
	StalenessWindow time.Duration
	Logger          *slog.Logger
	Metrics         *metrics.Registry
}

// Store is the only writer of the progress snapshot. Every operation runs
// under one mutex so versions are strictly increasing within the process and
// no write interleaves with another. Backend failures are logged and absorbed.
type Store struct {
	mu sync.Mutex

	backend   progressout.SnapshotBackend
	signaler  progressout.RefreshSignaler
	calendar  clock.Calendar
	logger    *slog.Logger
	metrics   *metrics.Registry
	goal      float64
	staleness time.Duration

	lastSync    time.Time
	lastVersion int64
}

func NewStore(backend progressout.SnapshotBackend, signaler progressout.RefreshSignaler, calendar clock.Calendar, opts StoreOptions) *Store {
	goal := opts.DefaultGoal
	if !(goal > 0) {
		goal = domain.DefaultGoalMiles
	}
	staleness := opts.StalenessWindow
	if staleness <= 0 {
		staleness = domain.DefaultStalenessWindow
	}
	return &Store{
		backend:   backend,
		signaler:  signaler,
		calendar:  calendar,
		logger:    logging.OrDiscard(opts.Logger),
		metrics:   opts.Metrics,
		goal:      goal,
		staleness: staleness,
	}
}

func (s *Store) DefaultGoal() float64 {
	return s.goal
}

// Save records distanceMiles against goalMiles for today and signals
// consumers: everything when forced or completed, the routine subset
// otherwise. A non-positive goal falls back to the configured goal.
func (s *Store) Save(ctx context.Context, distanceMiles, goalMiles float64, forceRefresh bool) SaveResult {
	s.mu.Lock()
	result := s.saveLocked(ctx, distanceMiles, goalMiles, forceRefresh)
	s.mu.Unlock()

	if result.Persisted {
		s.signal(ctx, result.Scope, result.Snapshot)
	}
	return result
}

func (s *Store) saveLocked(ctx context.Context, distance, goal float64, force bool) SaveResult {
	if !(goal > 0) || math.IsInf(goal, 0) {
		goal = s.goal
	}
	now := s.calendar.Now()
	today := s.calendar.DayKey(now)

	current, ok := s.readLocked(ctx)
	if !ok {
		current = domain.Snapshot{Version: s.lastVersion}
	}
	previous := current
	if current.TrackingDay != today {
		previous = domain.Zeroed(current, today, s.goal)
	}

	version := max(current.Version, s.lastVersion) + 1
	next := domain.Next(current, today, distance, goal, version, now)
	result := SaveResult{Snapshot: next, Previous: previous, Scope: domain.ScopeFor(next, force)}

	// Writing over a record we could not read may regress its version.
	if !ok {
		s.logger.Warn("progress snapshot unreadable, skipping write", "version", version)
		s.countWrite("failed")
		return result
	}
	if err := s.backend.Write(ctx, next); err != nil {
		s.logger.Warn("progress snapshot write failed, keeping previous state", "error", err, "version", version)
		s.countWrite("failed")
		return result
	}
	s.lastVersion = version
	s.lastSync = now
	s.countWrite("ok")
	result.Persisted = true
	return result
}

// Load returns today's snapshot and true, or a zeroed snapshot that keeps the
// goal and false when the record belongs to another day, was never written,
// or cannot be read.
func (s *Store) Load(ctx context.Context) (domain.Snapshot, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.calendar.Now()
	today := s.calendar.DayKey(now)
	current, ok := s.readLocked(ctx)
	if !ok {
		return domain.Zeroed(domain.Snapshot{Version: s.lastVersion}, today, s.goal), false
	}
	s.lastSync = now
	if current.TrackingDay != today || current.Version == 0 {
		return domain.Zeroed(current, today, s.goal), false
	}
	return current, true
}

// ValidateAndRepair heals an unapplied rollover, a non-positive goal and
// negative distances. It reports whether a repair was written; a second call
// right after a repair reports false.
func (s *Store) ValidateAndRepair(ctx context.Context) bool {
	s.mu.Lock()
	repaired, ok := s.repairLocked(ctx)
	s.mu.Unlock()

	if ok {
		s.signal(ctx, domain.RefreshAll, repaired)
	}
	return ok
}

func (s *Store) repairLocked(ctx context.Context) (domain.Snapshot, bool) {
	now := s.calendar.Now()
	today := s.calendar.DayKey(now)
	current, ok := s.readLocked(ctx)
	if !ok {
		return domain.Snapshot{}, false
	}
	repaired, repairs := domain.Repaired(current, today, s.goal)
	if len(repairs) == 0 {
		s.lastSync = now
		return current, false
	}

	repaired.Version = max(current.Version, s.lastVersion) + 1
	repaired.LastUpdateTimestamp = now.Unix()
	if err := s.backend.Write(ctx, repaired); err != nil {
		s.logger.Warn("progress snapshot repair write failed", "error", err, "repairs", repairs)
		s.countWrite("failed")
		return domain.Snapshot{}, false
	}
	s.lastVersion = repaired.Version
	s.lastSync = now
	s.countWrite("ok")
	if s.metrics != nil {
		s.metrics.SnapshotRepairs.Add(float64(len(repairs)))
	}
	s.logger.Info("progress snapshot repaired", "repairs", repairs, "version", repaired.Version)
	return repaired, true
}

// NeedsRefresh is true when the store never synced with its backend, the last
// sync is older than the staleness window, or the local day changed since.
func (s *Store) NeedsRefresh() bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.lastSync.IsZero() {
		return true
	}
	now := s.calendar.Now()
	if now.Sub(s.lastSync) > s.staleness {
		return true
	}
	return s.calendar.DayKey(s.lastSync) != s.calendar.DayKey(now)
}

func (s *Store) readLocked(ctx context.Context) (domain.Snapshot, bool) {
	snapshot, err := s.backend.Read(ctx)
	if errors.Is(err, apperrors.ErrNotFound) {
		return domain.Snapshot{Version: s.lastVersion}, true
	}
	if err != nil {
		s.logger.Warn("progress snapshot unavailable, using safe defaults", "error", err)
		return domain.Snapshot{}, false
	}
	if snapshot.Version > s.lastVersion {
		s.lastVersion = snapshot.Version
	}
	return snapshot, true
}

func (s *Store) signal(ctx context.Context, scope domain.RefreshScope, snapshot domain.Snapshot) {
	if s.metrics != nil {
		s.metrics.RefreshSignals.WithLabelValues(string(scope)).Inc()
	}
	if s.signaler == nil {
		return
	}
	if err := s.signaler.Signal(ctx, scope, snapshot); err != nil {
		s.logger.Warn("refresh signal failed", "scope", scope, "version", snapshot.Version, "error", err)
	}
}

func (s *Store) countWrite(outcome string) {
	if s.metrics != nil {
		s.metrics.SnapshotWrites.WithLabelValues(outcome).Inc()
	}
}
