package holiday

import (
	"context"
	"time"
)

type HolidayRepository interface {
	// GetByDateRange returns holidays with start <= date <= end, ordered by date.
	GetByDateRange(ctx context.Context, start, end time.Time) ([]Holiday, error)
}
