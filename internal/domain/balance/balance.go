package balance

import (
	"encoding/json"
	"math"
	"sort"
	"strconv"
	"strings"
)

const (
	// AnnualAllotment is the number of annual-leave days granted for a fresh calendar year.
	AnnualAllotment = 12
	// CarryOverCap limits how many days of an older bucket can be spent or carried forward.
	CarryOverCap = 6
)

// Map is the persisted leave_balance document: calendar year (as a string) to remaining days.
type Map map[string]int

func yearKey(year int) string {
	return strconv.Itoa(year)
}

// Get returns the stored value for year, or 0 when the year is absent.
func (m Map) Get(year int) int {
	return m[yearKey(year)]
}

// Has reports whether the year has an entry.
func (m Map) Has(year int) bool {
	_, ok := m[yearKey(year)]
	return ok
}

// Clone returns a full copy. Ledger operations always return a new map.
func (m Map) Clone() Map {
	out := make(Map, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

// Years returns the numeric year keys in ascending order.
func (m Map) Years() []int {
	years := make([]int, 0, len(m))
	for k := range m {
		if y, err := strconv.Atoi(k); err == nil {
			years = append(years, y)
		}
	}
	sort.Ints(years)
	return years
}

// Equal reports whether both maps hold the same entries.
func (m Map) Equal(other Map) bool {
	if len(m) != len(other) {
		return false
	}
	for k, v := range m {
		ov, ok := other[k]
		if !ok || ov != v {
			return false
		}
	}
	return true
}

func (m Map) set(year, days int) {
	if days < 0 {
		days = 0
	}
	m[yearKey(year)] = days
}

// UnmarshalJSON accepts the loosely typed documents found in storage.
// Whole numbers and numeric strings are kept; negative, fractional,
// oversized or non-numeric values are dropped so the year reads as absent.
func (m *Map) UnmarshalJSON(data []byte) error {
	var raw map[string]any
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	out := make(Map, len(raw))
	for k, v := range raw {
		if _, err := strconv.Atoi(k); err != nil {
			continue
		}
		switch val := v.(type) {
		case float64:
			if val >= 0 && val <= math.MaxInt32 && val == math.Trunc(val) {
				out[k] = int(val)
			}
		case string:
			n, err := strconv.Atoi(strings.TrimSpace(val))
			if err == nil && n >= 0 && n <= math.MaxInt32 {
				out[k] = n
			}
		}
	}
	*m = out
	return nil
}

// Buckets is the balance resolved against a calendar year.
type Buckets struct {
	Year        int `json:"year"`
	TwoYearsAgo int `json:"two_years_ago"`
	CarryOver   int `json:"carry_over"`
	Current     int `json:"current"`
}

// Resolve reads the three buckets for year from the raw map.
func Resolve(m Map, year int) Buckets {
	return Buckets{
		Year:        year,
		TwoYearsAgo: m.Get(year - 2),
		CarryOver:   m.Get(year - 1),
		Current:     m.Get(year),
	}
}

// Available caps the older buckets at CarryOverCap. The stored values are left as they are.
func (b Buckets) Available() Buckets {
	return Buckets{
		Year:        b.Year,
		TwoYearsAgo: min(b.TwoYearsAgo, CarryOverCap),
		CarryOver:   min(b.CarryOver, CarryOverCap),
		Current:     b.Current,
	}
}

func (b Buckets) Total() int {
	return b.TwoYearsAgo + b.CarryOver + b.Current
}
