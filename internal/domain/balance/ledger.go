package balance

import "strconv"

// Usage is the number of days a single request draws from each bucket.
type Usage struct {
	TwoYearsAgo int `json:"used_n2_year"`
	CarryOver   int `json:"used_carry_over_days"`
	Current     int `json:"used_current_year_days"`
}

func (u Usage) Total() int {
	return u.TwoYearsAgo + u.CarryOver + u.Current
}

func (u Usage) IsZero() bool {
	return u == Usage{}
}

// ComputeUsage splits workingDays across the available buckets, oldest first.
// avail must already be capped (see Buckets.Available).
func ComputeUsage(avail Buckets, workingDays int) (Usage, error) {
	if workingDays < 0 {
		return Usage{}, ErrNegativeWorkingDays
	}

	if total := avail.Total(); total < workingDays {
		return Usage{}, &InsufficientBalanceError{Requested: workingDays, Available: total}
	}

	var u Usage
	u.TwoYearsAgo = min(max(avail.TwoYearsAgo, 0), workingDays)
	u.CarryOver = min(max(avail.CarryOver, 0), workingDays-u.TwoYearsAgo)
	u.Current = max(workingDays-u.TwoYearsAgo-u.CarryOver, 0)

	if err := VerifyUsage(u, workingDays); err != nil {
		return Usage{}, err
	}
	return u, nil
}

// VerifyUsage checks that every part is non-negative and the parts sum to workingDays.
func VerifyUsage(u Usage, workingDays int) error {
	if u.TwoYearsAgo < 0 || u.CarryOver < 0 || u.Current < 0 || u.Total() != workingDays {
		return &InconsistentUsageError{Usage: u, WorkingDays: workingDays}
	}
	return nil
}

// Consume deducts u from the buckets of year, clamping each at zero.
// Buckets with nothing to deduct are left untouched.
func Consume(m Map, year int, u Usage) Map {
	out := m.Clone()
	adjust(out, m, year-2, -u.TwoYearsAgo)
	adjust(out, m, year-1, -u.CarryOver)
	adjust(out, m, year, -u.Current)
	return out
}

// Restore adds u back to the buckets of year it was charged against.
func Restore(m Map, year int, u Usage) Map {
	out := m.Clone()
	adjust(out, m, year-2, u.TwoYearsAgo)
	adjust(out, m, year-1, u.CarryOver)
	adjust(out, m, year, u.Current)
	return out
}

func adjust(out, before Map, year, delta int) {
	if delta == 0 {
		return
	}
	out.set(year, before.Get(year)+delta)
}

// CorrectionResult reports what Correct changed.
type CorrectionResult struct {
	Changed bool
	Capped  bool
}

// Correct ensures the current and previous year entries exist and caps the previous year.
// Missing entries default to AnnualAllotment. The current year is never lowered.
func Correct(m Map, year int) (Map, CorrectionResult) {
	out := m.Clone()
	var res CorrectionResult

	if !m.Has(year) {
		out.set(year, AnnualAllotment)
	}

	switch {
	case !m.Has(year - 1):
		out.set(year-1, AnnualAllotment)
	case m.Get(year-1) > CarryOverCap:
		out.set(year-1, CarryOverCap)
		res.Capped = true
	}

	res.Changed = !out.Equal(m)
	return out, res
}

// Rollover opens newYear: the previous year becomes a capped carry-over net of
// usedInPreviousYear, the current year is reset to AnnualAllotment and every
// older entry is removed.
func Rollover(m Map, newYear int, usedInPreviousYear int) Map {
	carry := min(CarryOverCap, max(0, m.Get(newYear-1)-usedInPreviousYear))

	out := make(Map, 2)
	out.set(newYear, AnnualAllotment)
	out.set(newYear-1, carry)
	for k, v := range m {
		y, err := strconv.Atoi(k)
		if err == nil && y > newYear {
			out[k] = v
		}
	}
	return out
}

// Validate checks a map supplied for a direct overwrite.
func Validate(m Map) error {
	for k, v := range m {
		y, err := strconv.Atoi(k)
		if err != nil || len(k) != 4 || y < 1900 {
			return ErrInvalidYearKey
		}
		if v < 0 {
			return ErrNegativeBalance
		}
	}
	return nil
}
