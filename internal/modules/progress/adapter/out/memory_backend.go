package out

import (
	"context"
	"sync"

	"dailymile/internal/modules/progress/domain"
	progressout "dailymile/internal/modules/progress/port/out"
	apperrors "dailymile/internal/platform/errors"
)

// MemoryBackend keeps the snapshot in process. It is the reference backend
// for tests and for runs without a data directory.
type MemoryBackend struct {
	mu       sync.Mutex
	snapshot domain.Snapshot
	written  bool
}

func NewMemoryBackend() *MemoryBackend {
	return &MemoryBackend{}
}

var _ progressout.SnapshotBackend = (*MemoryBackend)(nil)

func (b *MemoryBackend) Read(_ context.Context) (domain.Snapshot, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if !b.written {
		return domain.Snapshot{}, apperrors.ErrNotFound
	}
	return b.snapshot, nil
}

func (b *MemoryBackend) Write(_ context.Context, snapshot domain.Snapshot) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.snapshot = snapshot
	b.written = true
	return nil
}
