package out

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"

	"dailymile/internal/modules/notify/domain"
	notifyout "dailymile/internal/modules/notify/port/out"
	"dailymile/internal/platform/logging"
)

// OutboxDispatcher appends each notification as one JSON line. The platform
// notification scheduler tails the file and delivers the entries.
type OutboxDispatcher struct {
	path string
	mu   sync.Mutex
}

var _ notifyout.Dispatcher = (*OutboxDispatcher)(nil)

func NewOutboxDispatcher(dataDir string) *OutboxDispatcher {
	return &OutboxDispatcher{path: filepath.Join(dataDir, ".dailymile", "outbox.jsonl")}
}

func (d *OutboxDispatcher) Dispatch(_ context.Context, notification domain.Notification) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if err := os.MkdirAll(filepath.Dir(d.path), 0o755); err != nil {
		return fmt.Errorf("create outbox dir: %w", err)
	}
	file, err := os.OpenFile(d.path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("open outbox: %w", err)
	}
	defer file.Close()
	payload, err := json.Marshal(notification)
	if err != nil {
		return fmt.Errorf("encode notification: %w", err)
	}
	if _, err := file.Write(append(payload, '\n')); err != nil {
		return fmt.Errorf("write outbox: %w", err)
	}
	return nil
}

func (d *OutboxDispatcher) List(_ context.Context) ([]domain.Notification, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	file, err := os.Open(d.path)
	if err != nil {
		if os.IsNotExist(err) {
			return []domain.Notification{}, nil
		}
		return nil, fmt.Errorf("open outbox: %w", err)
	}
	defer file.Close()

	out := []domain.Notification{}
	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}
		notification := domain.Notification{}
		if err := json.Unmarshal(line, &notification); err != nil {
			return nil, fmt.Errorf("decode outbox line: %w", err)
		}
		out = append(out, notification)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("scan outbox: %w", err)
	}
	return out, nil
}

type LogDispatcher struct {
	logger *slog.Logger
}

func NewLogDispatcher(logger *slog.Logger) notifyout.Dispatcher {
	return LogDispatcher{logger: logging.OrDiscard(logger)}
}

func (d LogDispatcher) Dispatch(_ context.Context, notification domain.Notification) error {
	d.logger.Info("notification", "kind", notification.Kind, "day", notification.Day, "title", notification.Title)
	return nil
}

// FanoutDispatcher hands a notification to every dispatcher and stops at the
// first failure.
type FanoutDispatcher []notifyout.Dispatcher

func (f FanoutDispatcher) Dispatch(ctx context.Context, notification domain.Notification) error {
	for _, dispatcher := range f {
		if dispatcher == nil {
			continue
		}
		if err := dispatcher.Dispatch(ctx, notification); err != nil {
			return err
		}
	}
	return nil
}
