package main

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	progressout "dailymile/internal/modules/progress/adapter/out"
	"dailymile/internal/modules/progress/domain"
	widgetrpc "dailymile/internal/modules/widget/adapter/out/rpc"
	"dailymile/internal/platform/clock"
	apperrors "dailymile/internal/platform/errors"

	"github.com/hashicorp/go-plugin"
)

const ringWidth = 10

type server struct {
	calendar clock.Calendar
}

func (s *server) GetMetadata(_ context.Context, _ *widgetrpc.Empty) (*widgetrpc.Metadata, error) {
	return &widgetrpc.Metadata{
		Name:    "ring",
		Version: "1.0.0",
		Kinds:   []string{"timeline_full", "timeline_routine"},
	}, nil
}

// Reload re-reads the shared snapshot file. A record from another day renders
// as zero progress toward the stored goal.
func (s *server) Reload(_ context.Context, in *widgetrpc.ReloadRequest) (*widgetrpc.ReloadResponse, error) {
	if strings.TrimSpace(in.SnapshotPath) == "" {
		return &widgetrpc.ReloadResponse{Rendered: "progress unavailable"}, nil
	}
	snapshot, err := progressout.ReadEnvelopeFile(in.SnapshotPath)
	if errors.Is(err, apperrors.ErrNotFound) {
		return &widgetrpc.ReloadResponse{Rendered: render(domain.Snapshot{GoalMiles: domain.DefaultGoalMiles}, in.Scope)}, nil
	}
	if err != nil {
		return nil, err
	}
	today := s.calendar.Today()
	if snapshot.TrackingDay != today {
		snapshot = domain.Zeroed(snapshot, today, domain.DefaultGoalMiles)
	}
	return &widgetrpc.ReloadResponse{Rendered: render(snapshot, in.Scope)}, nil
}

func render(snapshot domain.Snapshot, scope string) string {
	filled := int(snapshot.Progress * ringWidth)
	filled = max(0, min(ringWidth, filled))
	bar := strings.Repeat("#", filled) + strings.Repeat(".", ringWidth-filled)
	line := fmt.Sprintf("[%s] %.2f/%.2f mi", bar, snapshot.TotalDistance, snapshot.GoalMiles)
	if snapshot.IsCompleted {
		line += " done"
	}
	if scope != "all" {
		return line
	}
	updated := "never"
	if snapshot.LastUpdateTimestamp > 0 {
		updated = time.Unix(snapshot.LastUpdateTimestamp, 0).Format(time.Kitchen)
	}
	return fmt.Sprintf("%s\n%s v%d updated %s", line, snapshot.TrackingDay, snapshot.Version, updated)
}

func main() {
	plugin.Serve(&plugin.ServeConfig{
		HandshakeConfig: widgetrpc.HandshakeConfig,
		Plugins:         widgetrpc.PluginMap(&server{calendar: clock.NewCalendar(clock.SystemClock{}, time.Local)}),
		GRPCServer:      plugin.DefaultGRPCServer,
	})
}
