package out

import (
	"context"

	"dailymile/internal/modules/history/domain"
)

// Pager reads daily totals most recent first.
type Pager interface {
	Page(ctx context.Context, query domain.PageQuery) ([]domain.DailyTotal, error)
}

type TotalStore interface {
	Pager
	Add(ctx context.Context, day string, miles float64) (domain.DailyTotal, error)
	AddActivity(ctx context.Context, day, key string, miles float64) (domain.DailyTotal, bool, error)
	Total(ctx context.Context, day string) (domain.DailyTotal, error)
}
