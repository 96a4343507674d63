package out

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"dailymile/internal/modules/activity/domain"
	activityout "dailymile/internal/modules/activity/port/out"
	"dailymile/internal/platform/id"
	"dailymile/internal/platform/markdown"
	"dailymile/internal/platform/slug"
)

var splitsBlock = markdown.ManagedBlock{Start: domain.ManagedSplitsStart, End: domain.ManagedSplitsEnd}

// VaultActivityStore writes one markdown note per activity. Re-importing the
// same activity rewrites the frontmatter and the managed split table but
// keeps whatever the user wrote around it.
type VaultActivityStore struct {
	dataDir  string
	location *time.Location
}

func NewVaultActivityStore(dataDir string, location *time.Location) activityout.ActivityStore {
	if location == nil {
		location = time.Local
	}
	return &VaultActivityStore{dataDir: dataDir, location: location}
}

func (s *VaultActivityStore) Save(_ context.Context, activity domain.Activity) (string, error) {
	started := activity.StartedAt.In(s.location)
	dir := filepath.Join(s.dataDir, "activities", started.Format("2006"), started.Format("01"), started.Format("02"))
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("create activity dir: %w", err)
	}
	path := filepath.Join(dir, fmt.Sprintf("%s-%s.md", started.Format("150405"), slug.Make(activity.Sport)))

	body := ""
	if existing, err := os.ReadFile(path); err == nil {
		if note, parseErr := markdown.ParseNote(string(existing)); parseErr == nil {
			body = note.Body
		}
	}
	if strings.TrimSpace(body) == "" {
		body = fmt.Sprintf("# Activity %s\n\n- Sport: %s\n- Started: %s\n\n## Notes\n", id.Short(activity.ID), activity.Sport, started.Format("2006-01-02 15:04"))
	}
	body = splitsBlock.Replace(body, renderSplitTable(activity.Splits))

	meta := map[string]any{
		"schema_version":  domain.SchemaVersion,
		"id":              activity.ID,
		"sport":           activity.Sport,
		"source":          activity.Source,
		"started_at":      started.Format(time.RFC3339),
		"ended_at":        activity.EndedAt.In(s.location).Format(time.RFC3339),
		"elapsed_seconds": round2(activity.ElapsedSeconds),
		"distance_miles":  round2(activity.DistanceMiles()),
		"full_splits":     activity.FullSplits(),
		"samples":         activity.Accepted,
		"rejected":        activity.Rejected,
	}
	rendered, err := markdown.Note{Meta: meta, Body: body}.Render()
	if err != nil {
		return "", err
	}
	if err := os.WriteFile(path, []byte(rendered), 0o644); err != nil {
		return "", fmt.Errorf("write activity note: %w", err)
	}
	return path, nil
}

func renderSplitTable(splits []domain.Split) string {
	if len(splits) == 0 {
		return "_no splits_"
	}
	rows := make([][]string, 0, len(splits))
	for _, split := range splits {
		rows = append(rows, []string{
			strconv.Itoa(split.Index),
			fmt.Sprintf("%.2f mi", split.DistanceMiles),
			FormatClock(split.DurationSeconds),
			FormatClock(split.PaceSecondsPerMile) + "/mi",
		})
	}
	return markdown.Table([]string{"Mile", "Distance", "Time", "Pace"}, rows)
}

// FormatClock renders seconds as m:ss, or h:mm:ss past one hour.
func FormatClock(seconds float64) string {
	total := int(seconds + 0.5)
	if total < 0 {
		total = 0
	}
	h, m, sec := total/3600, (total%3600)/60, total%60
	if h > 0 {
		return fmt.Sprintf("%d:%02d:%02d", h, m, sec)
	}
	return fmt.Sprintf("%d:%02d", m, sec)
}

func round2(v float64) float64 {
	return float64(int64(v*100+0.5)) / 100
}
