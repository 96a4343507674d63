package out

import (
	"context"

	"dailymile/internal/modules/activity/domain"
)

// SampleSource materialises every raw sample of one recorded activity.
type SampleSource interface {
	Read(ctx context.Context, path string) (domain.Recording, error)
}

type ActivityStore interface {
	Save(ctx context.Context, activity domain.Activity) (string, error)
}

type SplitExporter interface {
	Export(ctx context.Context, path string, activity domain.Activity) error
}

// SampleRecorder receives filter diagnostics. Rejections are never surfaced
// to the user.
type SampleRecorder interface {
	RecordSamples(accepted, rejected int)
}
