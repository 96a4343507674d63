package service_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"

	notifyout "dailymile/internal/modules/notify/adapter/out"
	"dailymile/internal/modules/notify/domain"
	"dailymile/internal/modules/notify/service"
	"dailymile/internal/platform/clock"
	"dailymile/internal/platform/metrics"
)

type stepClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *stepClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *stepClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

type failingStore struct{}

func (failingStore) Load(context.Context) (domain.State, error) {
	return domain.State{}, errors.New("disk full")
}

func (failingStore) Save(context.Context, domain.State) error {
	return errors.New("disk full")
}

func newEngine(t *testing.T) (*service.Engine, *stepClock, *metrics.Registry) {
	t.Helper()
	clk := &stepClock{now: time.Date(2026, 3, 14, 18, 0, 0, 0, time.UTC)}
	reg := metrics.NewRegistry()
	engine := service.NewEngine(notifyout.NewMemoryStateStore(), clock.NewCalendar(clk, time.UTC), nil, reg)
	return engine, clk, reg
}

func TestShouldSendCompletionRequiresStrictCrossing(t *testing.T) {
	t.Parallel()
	engine, _, _ := newEngine(t)
	ctx := context.Background()

	if send, _ := engine.ShouldSendCompletion(ctx, 1.0, 1.0, 1.0); send {
		t.Fatalf("already at goal must not fire")
	}
	if send, _ := engine.ShouldSendCompletion(ctx, 0.9, 1.0, 0.5); send {
		t.Fatalf("below goal must not fire")
	}
	send, day := engine.ShouldSendCompletion(ctx, 1.0, 1.0, 0.8)
	if !send || day != "2026-03-14" {
		t.Fatalf("expected first crossing to fire on 2026-03-14, got %v %q", send, day)
	}
	if send, _ := engine.ShouldSendCompletion(ctx, 1.0, 1.0, 0.8); send {
		t.Fatalf("second crossing on the same day must not fire")
	}
}

func TestShouldSendCompletionFiresAgainNextDay(t *testing.T) {
	t.Parallel()
	engine, clk, reg := newEngine(t)
	ctx := context.Background()

	if send, _ := engine.ShouldSendCompletion(ctx, 1.2, 1.0, 0.2); !send {
		t.Fatalf("expected notice on day one")
	}
	clk.Advance(24 * time.Hour)
	if send, day := engine.ShouldSendCompletion(ctx, 1.2, 1.0, 0.2); !send || day != "2026-03-15" {
		t.Fatalf("expected notice on day two, got %v %q", send, day)
	}
	if got := testutil.ToFloat64(reg.CompletionNotices); got != 2 {
		t.Fatalf("expected 2 completion notices counted, got %v", got)
	}
}

func TestShouldSendCompletionIsAtomicUnderConcurrency(t *testing.T) {
	t.Parallel()
	engine, _, _ := newEngine(t)
	ctx := context.Background()

	var (
		wg   sync.WaitGroup
		mu   sync.Mutex
		sent int
	)
	for i := 0; i < 32; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if send, _ := engine.ShouldSendCompletion(ctx, 1.0, 1.0, 0.8); send {
				mu.Lock()
				sent++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()
	if sent != 1 {
		t.Fatalf("expected exactly one approval, got %d", sent)
	}
}

func TestShouldSendCompletionFailsClosedOnStoreError(t *testing.T) {
	t.Parallel()
	clk := &stepClock{now: time.Date(2026, 3, 14, 18, 0, 0, 0, time.UTC)}
	engine := service.NewEngine(failingStore{}, clock.NewCalendar(clk, time.UTC), nil, nil)
	if send, _ := engine.ShouldSendCompletion(context.Background(), 1.0, 1.0, 0.0); send {
		t.Fatalf("unreadable state must not approve a notice")
	}
	if engine.ResetDailyTracking(context.Background()) {
		t.Fatalf("unreadable state must not report a reset")
	}
}

func TestResetDailyTrackingIsIdempotent(t *testing.T) {
	t.Parallel()
	engine, clk, _ := newEngine(t)
	ctx := context.Background()

	engine.ShouldSendCompletion(ctx, 1.0, 1.0, 0.0)
	if engine.ResetDailyTracking(ctx) {
		t.Fatalf("today's record must survive a reset")
	}
	clk.Advance(24 * time.Hour)
	if !engine.ResetDailyTracking(ctx) {
		t.Fatalf("expected yesterday's record to be cleared")
	}
	if engine.ResetDailyTracking(ctx) {
		t.Fatalf("second reset must be a no-op")
	}
	state, _, err := engine.State(ctx)
	if err != nil {
		t.Fatalf("state: %v", err)
	}
	if state.LastCompletionNotificationDate != "" {
		t.Fatalf("expected cleared date, got %q", state.LastCompletionNotificationDate)
	}
}

func TestReminderContentFollowsCompletion(t *testing.T) {
	t.Parallel()
	engine, _, _ := newEngine(t)
	if got := engine.ReminderContent(true).Kind; got != domain.ReminderCongratulatory {
		t.Fatalf("expected congratulatory, got %s", got)
	}
	if got := engine.ReminderContent(false).Kind; got != domain.ReminderMotivational {
		t.Fatalf("expected motivational, got %s", got)
	}
}
