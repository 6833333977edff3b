package employee

import (
	"context"

	"github.com/cmlabs-hris/eleave-backend-go/internal/domain/balance"
	"github.com/cmlabs-hris/eleave-backend-go/internal/domain/user"
)

type EmployeeRepository interface {
	GetByID(ctx context.Context, id string) (Employee, error)
	// GetByIDForUpdate locks the employee row until the surrounding transaction ends.
	GetByIDForUpdate(ctx context.Context, id string) (Employee, error)
	// ListIDs returns every employee id, or only those whose account has role when it is set.
	ListIDs(ctx context.Context, role *user.Role) ([]string, error)
	// UpdateLeaveBalance replaces the whole map when the stored version still equals
	// expectedVersion and returns the new version. Otherwise ErrBalanceVersionStale.
	UpdateLeaveBalance(ctx context.Context, id string, m balance.Map, expectedVersion int64) (int64, error)
	// CompleteRollover is UpdateLeaveBalance that also records year as the last rollover.
	CompleteRollover(ctx context.Context, id string, m balance.Map, expectedVersion int64, year int) (int64, error)
}
