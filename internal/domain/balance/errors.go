package balance

import (
	"errors"
	"fmt"
)

var (
	ErrNegativeWorkingDays = errors.New("working days must not be negative")
	ErrInvalidYearKey      = errors.New("balance year must be a four digit year")
	ErrNegativeBalance     = errors.New("balance values must not be negative")
)

// InsufficientBalanceError is returned when the usable buckets cannot cover a request.
type InsufficientBalanceError struct {
	Requested int
	Available int
}

func (e *InsufficientBalanceError) Error() string {
	return fmt.Sprintf("insufficient leave balance: requested %d working days, %d available", e.Requested, e.Available)
}

// Shortfall is the number of days missing to cover the request.
func (e *InsufficientBalanceError) Shortfall() int {
	return e.Requested - e.Available
}

// InconsistentUsageError means a bucket split does not add up to the working days it is charged for.
type InconsistentUsageError struct {
	Usage       Usage
	WorkingDays int
}

func (e *InconsistentUsageError) Error() string {
	return fmt.Sprintf("inconsistent leave usage: n2=%d carry=%d current=%d does not sum to %d working days",
		e.Usage.TwoYearsAgo, e.Usage.CarryOver, e.Usage.Current, e.WorkingDays)
}
