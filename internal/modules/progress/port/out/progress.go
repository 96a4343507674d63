package out

import (
	"context"

	"dailymile/internal/modules/progress/domain"
)

// SnapshotBackend stores the snapshot as one atomic record. Read returns
// apperrors.ErrNotFound when nothing was ever written.
type SnapshotBackend interface {
	Read(ctx context.Context) (domain.Snapshot, error)
	Write(ctx context.Context, snapshot domain.Snapshot) error
}

// RefreshSignaler tells dependent consumers to re-read the snapshot.
type RefreshSignaler interface {
	Signal(ctx context.Context, scope domain.RefreshScope, snapshot domain.Snapshot) error
}
