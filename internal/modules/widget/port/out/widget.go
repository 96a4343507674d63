package out

import (
	"context"

	"dailymile/internal/modules/widget/domain"
)

type ManifestStore interface {
	Load(ctx context.Context) ([]domain.Manifest, error)
}

type Host interface {
	CheckLifecycle(ctx context.Context, manifest domain.Manifest) error
	GetMetadata(ctx context.Context, manifest domain.Manifest) (domain.Metadata, error)
	Reload(ctx context.Context, manifest domain.Manifest, request domain.ReloadRequest) (domain.ReloadResult, error)
}
