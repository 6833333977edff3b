package leave

import (
	"context"
	"fmt"
	"time"

	"github.com/cmlabs-hris/eleave-backend-go/internal/domain/holiday"
)

const dayLayout = "2006-01-02"

// CountWorkingDays counts the days in [start, end] that are Monday to Friday
// and not listed in holidays. Returns 0 when end is before start.
func CountWorkingDays(start, end time.Time, holidays []time.Time) int {
	start = truncateDay(start)
	end = truncateDay(end)
	if end.Before(start) {
		return 0
	}

	holidayMap := make(map[string]bool, len(holidays))
	for _, h := range holidays {
		holidayMap[h.Format(dayLayout)] = true
	}

	var workingDays int
	for current := start; !current.After(end); current = current.AddDate(0, 0, 1) {
		if current.Weekday() == time.Saturday || current.Weekday() == time.Sunday {
			continue
		}
		if holidayMap[current.Format(dayLayout)] {
			continue
		}
		workingDays++
	}

	return workingDays
}

func truncateDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// WorkingDaysCalculator counts working days against the holiday calendar.
type WorkingDaysCalculator struct {
	holidayRepo holiday.HolidayRepository
}

func NewWorkingDaysCalculator(holidayRepo holiday.HolidayRepository) *WorkingDaysCalculator {
	return &WorkingDaysCalculator{holidayRepo: holidayRepo}
}

// Calculate calculates working days excluding weekends and holidays
func (c *WorkingDaysCalculator) Calculate(ctx context.Context, start, end time.Time) (int, error) {
	if end.Before(start) {
		return 0, nil
	}

	holidays, err := c.holidayRepo.GetByDateRange(ctx, start, end)
	if err != nil {
		return 0, fmt.Errorf("failed to get holidays: %w", err)
	}

	dates := make([]time.Time, 0, len(holidays))
	for _, h := range holidays {
		dates = append(dates, h.Date)
	}

	return CountWorkingDays(start, end, dates), nil
}

var _ holiday.HolidayService = (*WorkingDaysCalculator)(nil)

// ListInRange implements holiday.HolidayService.
func (c *WorkingDaysCalculator) ListInRange(ctx context.Context, start, end time.Time) ([]holiday.HolidayResponse, error) {
	holidays, err := c.holidayRepo.GetByDateRange(ctx, start, end)
	if err != nil {
		return nil, fmt.Errorf("failed to get holidays: %w", err)
	}

	resp := make([]holiday.HolidayResponse, 0, len(holidays))
	for _, h := range holidays {
		resp = append(resp, holiday.HolidayResponse{
			Date: h.Date.Format(dayLayout),
			Name: h.Name,
		})
	}
	return resp, nil
}
