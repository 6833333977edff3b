package holiday

import "time"

// Holiday is a named non-working calendar date.
type Holiday struct {
	ID   string
	Date time.Time
	Name string
}

type HolidayResponse struct {
	Date string `json:"date"`
	Name string `json:"name"`
}
