package holiday

import (
	"context"
	"time"
)

type HolidayService interface {
	ListInRange(ctx context.Context, start, end time.Time) ([]HolidayResponse, error)
}
