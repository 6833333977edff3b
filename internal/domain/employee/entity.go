package employee

import (
	"time"

	"github.com/cmlabs-hris/eleave-backend-go/internal/domain/balance"
	"github.com/cmlabs-hris/eleave-backend-go/internal/domain/user"
)

type Employee struct {
	ID       string
	NIP      string
	FullName string
	Position *string
	// Role of the linked user account; empty when no account exists.
	Role user.Role

	LeaveBalance   balance.Map
	BalanceVersion int64
	// Calendar year of the last completed year-start rollover.
	LastRolloverYear *int

	CreatedAt time.Time
	UpdatedAt time.Time
}
