package out

import (
	"context"
	"sync"

	notifyout "dailymile/internal/modules/notify/port/out"
	progressin "dailymile/internal/modules/progress/port/in"
)

// ProgressReader answers completion from the progress store. The progress
// usecase depends on notify, so the reader is attached after both exist.
type ProgressReader struct {
	mu       sync.RWMutex
	progress progressin.Usecase
}

var _ notifyout.ProgressReader = (*ProgressReader)(nil)

func NewProgressReader() *ProgressReader {
	return &ProgressReader{}
}

func (r *ProgressReader) Attach(progress progressin.Usecase) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.progress = progress
}

// IsCompleted is false when no progress usecase is attached or the stored
// record belongs to another day.
func (r *ProgressReader) IsCompleted(ctx context.Context) (bool, error) {
	r.mu.RLock()
	progress := r.progress
	r.mu.RUnlock()
	if progress == nil {
		return false, nil
	}
	snapshot, err := progress.Show(ctx)
	if err != nil {
		return false, err
	}
	return snapshot.IsToday && snapshot.IsCompleted, nil
}
