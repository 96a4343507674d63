package out

import (
	"context"

	"dailymile/internal/modules/notify/domain"
)

type StateStore interface {
	Load(ctx context.Context) (domain.State, error)
	Save(ctx context.Context, state domain.State) error
}

type Dispatcher interface {
	Dispatch(ctx context.Context, notification domain.Notification) error
}

// ProgressReader reports whether today's goal is already complete.
type ProgressReader interface {
	IsCompleted(ctx context.Context) (bool, error)
}
