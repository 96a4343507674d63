package usecase_test

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	activityout "dailymile/internal/modules/activity/adapter/out"
	"dailymile/internal/modules/activity/domain"
	activitydto "dailymile/internal/modules/activity/dto"
	activityin "dailymile/internal/modules/activity/port/in"
	activityport "dailymile/internal/modules/activity/port/out"
	activityservice "dailymile/internal/modules/activity/service"
	"dailymile/internal/modules/activity/usecase"
	historyout "dailymile/internal/modules/history/adapter/out"
	historydomain "dailymile/internal/modules/history/domain"
	historyservice "dailymile/internal/modules/history/service"
	historyusecase "dailymile/internal/modules/history/usecase"
	notifyout "dailymile/internal/modules/notify/adapter/out"
	notifyservice "dailymile/internal/modules/notify/service"
	notifyusecase "dailymile/internal/modules/notify/usecase"
	progressout "dailymile/internal/modules/progress/adapter/out"
	progressservice "dailymile/internal/modules/progress/service"
	progressusecase "dailymile/internal/modules/progress/usecase"
	"dailymile/internal/platform/clock"
	"dailymile/internal/platform/id"
)

type fixedClock struct{ now time.Time }

func (f fixedClock) Now() time.Time { return f.now }

type harness struct {
	uc      activityin.Usecase
	outbox  *notifyout.OutboxDispatcher
	dataDir string
}

func newHarness(t *testing.T) harness {
	t.Helper()
	dataDir := t.TempDir()
	calendar := clock.NewCalendar(fixedClock{now: time.Date(2026, 3, 14, 20, 0, 0, 0, time.UTC)}, time.UTC)

	totals, err := historyout.NewSQLiteTotalStore(filepath.Join(dataDir, "dailymile.db"), calendar.Clock)
	if err != nil {
		t.Fatalf("open history: %v", err)
	}
	streaks, err := historyservice.NewStreakCalculator(totals, calendar, historydomain.Policy{Threshold: historydomain.DefaultThreshold, PageSize: historydomain.DefaultPageSize})
	if err != nil {
		t.Fatalf("streaks: %v", err)
	}
	history := historyusecase.NewInteractor(totals, streaks, calendar)

	outbox := notifyout.NewOutboxDispatcher(dataDir)
	engine := notifyservice.NewEngine(notifyout.NewMemoryStateStore(), calendar, nil, nil)
	notify := notifyusecase.NewInteractor(engine, nil, outbox, calendar, nil)

	store := progressservice.NewStore(progressout.NewMemoryBackend(), nil, calendar, progressservice.StoreOptions{})
	progress := progressusecase.NewInteractor(store, notify, history, calendar)

	uc := usecase.NewInteractor(activityservice.NewActivityService(id.TimeOrdered{}, nil), usecase.Deps{
		Sources:  map[domain.Format]activityport.SampleSource{domain.FormatJSON: activityout.NewJSONSampleSource()},
		Store:    activityout.NewVaultActivityStore(dataDir, time.UTC),
		Exporter: activityout.NewParquetSplitExporter(),
		History:  history,
		Progress: progress,
		Calendar: calendar,
	})
	return harness{uc: uc, outbox: outbox, dataDir: dataDir}
}

// writeRecording writes evenly paced samples of meters each, one per minute.
func writeRecording(t *testing.T, dir, name string, start time.Time, meters ...float64) string {
	t.Helper()
	type sample struct {
		Start          time.Time `json:"start"`
		End            time.Time `json:"end"`
		DistanceMeters float64   `json:"distance_meters"`
	}
	samples := make([]sample, 0, len(meters))
	for i, m := range meters {
		samples = append(samples, sample{
			Start:          start.Add(time.Duration(i) * time.Minute),
			End:            start.Add(time.Duration(i+1) * time.Minute),
			DistanceMeters: m,
		})
	}
	raw, err := json.Marshal(map[string]any{"sport": "walking", "start": start, "samples": samples})
	if err != nil {
		t.Fatalf("encode recording: %v", err)
	}
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, raw, 0o644); err != nil {
		t.Fatalf("write recording: %v", err)
	}
	return path
}

func TestImportUpdatesHistoryProgressAndNotifiesOnce(t *testing.T) {
	t.Parallel()
	h := newHarness(t)
	ctx := context.Background()
	morning := time.Date(2026, 3, 14, 7, 0, 0, 0, time.UTC)

	first := writeRecording(t, h.dataDir, "morning.json", morning, 150, 150, 150, 150, 9000)
	out, err := h.uc.Import(ctx, activitydto.ImportInput{Path: first, ParquetPath: filepath.Join(h.dataDir, "splits.parquet")})
	if err != nil {
		t.Fatalf("import: %v", err)
	}
	if out.Rejected != 1 || out.Accepted != 4 {
		t.Fatalf("expected the teleport sample rejected, got %+v", out.AnalyzeOutput)
	}
	if out.Day != "2026-03-14" || !out.ProgressUpdated || out.IsCompleted {
		t.Fatalf("unexpected import result: %+v", out)
	}
	if _, err := os.Stat(out.NotePath); err != nil {
		t.Fatalf("activity note missing: %v", err)
	}
	if _, err := os.Stat(out.ParquetPath); err != nil {
		t.Fatalf("parquet export missing: %v", err)
	}

	second := writeRecording(t, h.dataDir, "evening.json", morning.Add(10*time.Hour), 200, 200, 200, 200, 200, 200)
	out, err = h.uc.Import(ctx, activitydto.ImportInput{Path: second})
	if err != nil {
		t.Fatalf("import: %v", err)
	}
	wantMiles := 1800 / domain.MileInMeters
	if diff := out.DayTotalMiles - wantMiles; diff > 1e-9 || diff < -1e-9 {
		t.Fatalf("expected day total %v, got %v", wantMiles, out.DayTotalMiles)
	}
	if !out.IsCompleted || !out.CompletionNotified {
		t.Fatalf("expected goal crossing to notify: %+v", out)
	}

	third := writeRecording(t, h.dataDir, "night.json", morning.Add(12*time.Hour), 300)
	out, err = h.uc.Import(ctx, activitydto.ImportInput{Path: third, Format: "json"})
	if err != nil {
		t.Fatalf("import: %v", err)
	}
	if out.CompletionNotified {
		t.Fatalf("already complete, must not notify again")
	}
	sent, err := h.outbox.List(ctx)
	if err != nil {
		t.Fatalf("outbox: %v", err)
	}
	if len(sent) != 1 {
		t.Fatalf("expected one completion notice, got %d", len(sent))
	}
}

func TestReimportingTheSameRecordingCountsItOnce(t *testing.T) {
	t.Parallel()
	h := newHarness(t)
	ctx := context.Background()
	path := writeRecording(t, h.dataDir, "walk.json", time.Date(2026, 3, 14, 7, 0, 0, 0, time.UTC), 300, 300, 300, 300, 300, 300)

	first, err := h.uc.Import(ctx, activitydto.ImportInput{Path: path})
	if err != nil {
		t.Fatalf("import: %v", err)
	}
	if first.Duplicate || !first.CompletionNotified {
		t.Fatalf("unexpected first import: %+v", first)
	}

	copied := filepath.Join(h.dataDir, "walk-copy.json")
	raw, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read recording: %v", err)
	}
	if err := os.WriteFile(copied, raw, 0o644); err != nil {
		t.Fatalf("copy recording: %v", err)
	}
	for _, again := range []string{path, copied} {
		out, err := h.uc.Import(ctx, activitydto.ImportInput{Path: again})
		if err != nil {
			t.Fatalf("reimport %s: %v", again, err)
		}
		if !out.Duplicate {
			t.Fatalf("expected %s to be reported as already imported", again)
		}
		if out.DayTotalMiles != first.DayTotalMiles {
			t.Fatalf("day total moved from %v to %v", first.DayTotalMiles, out.DayTotalMiles)
		}
		if out.NotePath != "" || out.ProgressUpdated || out.CompletionNotified {
			t.Fatalf("duplicate import must not write anything: %+v", out)
		}
	}

	sent, err := h.outbox.List(ctx)
	if err != nil {
		t.Fatalf("outbox: %v", err)
	}
	if len(sent) != 1 {
		t.Fatalf("expected one completion notice, got %d", len(sent))
	}
}

func TestImportOfAnEarlierDayLeavesProgressAlone(t *testing.T) {
	t.Parallel()
	h := newHarness(t)
	path := writeRecording(t, h.dataDir, "yesterday.json", time.Date(2026, 3, 13, 18, 0, 0, 0, time.UTC), 600, 600)

	out, err := h.uc.Import(context.Background(), activitydto.ImportInput{Path: path})
	if err != nil {
		t.Fatalf("import: %v", err)
	}
	if out.Day != "2026-03-13" || out.ProgressUpdated {
		t.Fatalf("unexpected import result: %+v", out)
	}
}

func TestImportWithoutUsableSamplesFails(t *testing.T) {
	t.Parallel()
	h := newHarness(t)
	path := writeRecording(t, h.dataDir, "bad.json", time.Date(2026, 3, 14, 7, 0, 0, 0, time.UTC), 0, 5000)

	_, err := h.uc.Import(context.Background(), activitydto.ImportInput{Path: path})
	if !errors.Is(err, domain.ErrNoSamples) {
		t.Fatalf("expected no samples error, got %v", err)
	}
}

func TestAnalyzeDoesNotPersist(t *testing.T) {
	t.Parallel()
	h := newHarness(t)
	path := writeRecording(t, h.dataDir, "walk.json", time.Date(2026, 3, 14, 7, 0, 0, 0, time.UTC), 600, 600, 600, 600)

	out, err := h.uc.Analyze(context.Background(), activitydto.ImportInput{Path: path})
	if err != nil {
		t.Fatalf("analyze: %v", err)
	}
	if len(out.Splits) != 2 || out.Splits[0].Index != 1 {
		t.Fatalf("unexpected splits: %+v", out.Splits)
	}
	if _, err := os.Stat(filepath.Join(h.dataDir, "activities")); !os.IsNotExist(err) {
		t.Fatalf("analyze must not write notes")
	}
}
