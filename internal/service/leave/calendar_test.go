package leave

import (
	"context"
	"testing"
	"time"

	"github.com/cmlabs-hris/eleave-backend-go/internal/domain/holiday"
	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func day(s string) time.Time {
	t, err := time.Parse(dayLayout, s)
	if err != nil {
		panic(err)
	}
	return t
}

func holidayOn(date string) holiday.Holiday {
	return holiday.Holiday{ID: "h-" + date, Date: day(date), Name: "Libur " + date}
}

func TestCountWorkingDays(t *testing.T) {
	tests := []struct {
		name     string
		start    string
		end      string
		holidays []string
		want     int
	}{
		{"single weekday", "2024-03-04", "2024-03-04", nil, 1},
		{"full week", "2024-03-04", "2024-03-10", nil, 5},
		{"two weeks", "2024-03-04", "2024-03-15", nil, 10},
		{"weekend only", "2024-03-09", "2024-03-10", nil, 0},
		{"holiday on weekday", "2024-03-04", "2024-03-08", []string{"2024-03-06"}, 4},
		{"holiday on weekend ignored", "2024-03-04", "2024-03-10", []string{"2024-03-09"}, 5},
		{"holiday outside range ignored", "2024-03-04", "2024-03-05", []string{"2024-03-20"}, 2},
		{"end before start", "2024-03-08", "2024-03-04", nil, 0},
		{"across year end", "2024-12-30", "2025-01-03", []string{"2025-01-01"}, 4},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var holidays []time.Time
			for _, h := range tt.holidays {
				holidays = append(holidays, day(h))
			}
			assert.Equal(t, tt.want, CountWorkingDays(day(tt.start), day(tt.end), holidays))
		})
	}
}

func TestCountWorkingDays_IgnoresTimeOfDay(t *testing.T) {
	jakarta := time.FixedZone("WIB", 7*3600)
	start := time.Date(2024, 3, 4, 23, 30, 0, 0, jakarta)
	end := time.Date(2024, 3, 8, 1, 0, 0, 0, jakarta)
	assert.Equal(t, 5, CountWorkingDays(start, end, nil))
}

func TestWorkingDaysCalculator_UsesHolidayCalendar(t *testing.T) {
	store := newMemStore()
	store.holidays = []holiday.Holiday{holidayOn("2024-03-05"), holidayOn("2024-03-11")}

	days, err := NewWorkingDaysCalculator(memHolidayRepo{store}).Calculate(context.Background(), day("2024-03-04"), day("2024-03-08"))
	require.NoError(t, err)
	assert.Equal(t, 4, days)
}

func TestCountWorkingDaysProperties(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 200
	properties := gopter.NewProperties(parameters)

	base := day("2024-01-01")

	properties.Property("calendar days minus weekends minus weekday holidays", prop.ForAll(
		func(offset, length int, holidayOffsets []int) bool {
			start := base.AddDate(0, 0, offset)
			end := start.AddDate(0, 0, length)

			var weekends int
			for d := start; !d.After(end); d = d.AddDate(0, 0, 1) {
				if d.Weekday() == time.Saturday || d.Weekday() == time.Sunday {
					weekends++
				}
			}

			seen := map[time.Time]bool{}
			var holidays []time.Time
			var weekdayHolidays int
			for _, h := range holidayOffsets {
				d := start.AddDate(0, 0, h%(length+1))
				if seen[d] {
					continue
				}
				seen[d] = true
				holidays = append(holidays, d)
				if d.Weekday() != time.Saturday && d.Weekday() != time.Sunday {
					weekdayHolidays++
				}
			}

			return CountWorkingDays(start, end, holidays) == length+1-weekends-weekdayHolidays
		},
		gen.IntRange(0, 730),
		gen.IntRange(0, 60),
		gen.SliceOf(gen.IntRange(0, 1000)),
	))

	properties.Property("never exceeds calendar days", prop.ForAll(
		func(offset, length int) bool {
			start := base.AddDate(0, 0, offset)
			n := CountWorkingDays(start, start.AddDate(0, 0, length), nil)
			return n >= 0 && n <= max(length+1, 0)
		},
		gen.IntRange(0, 730),
		gen.IntRange(-5, 400),
	))

	properties.TestingRun(t)
}

func TestListInRange(t *testing.T) {
	store := newMemStore()
	store.holidays = []holiday.Holiday{holidayOn("2024-03-11"), holidayOn("2024-05-01")}

	got, err := NewWorkingDaysCalculator(memHolidayRepo{store}).ListInRange(context.Background(), day("2024-03-01"), day("2024-03-31"))
	require.NoError(t, err)
	assert.Equal(t, []holiday.HolidayResponse{{Date: "2024-03-11", Name: "Libur 2024-03-11"}}, got)
}
