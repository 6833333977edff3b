package leave

import (
	"context"

	"github.com/cmlabs-hris/eleave-backend-go/internal/domain/balance"
	"github.com/cmlabs-hris/eleave-backend-go/internal/domain/employee"
	"github.com/cmlabs-hris/eleave-backend-go/internal/domain/leave"
)

type BalanceService struct {
	employeeRepo employee.EmployeeRepository
	clock        clock
}

func NewBalanceService(employeeRepo employee.EmployeeRepository, opts Options) *BalanceService {
	return &BalanceService{
		employeeRepo: employeeRepo,
		clock:        newClock(opts),
	}
}

var _ leave.BalanceService = (*BalanceService)(nil)

// GetRemainingBalance returns the usable days for year, older buckets capped.
// A zero year means the current one.
func (s *BalanceService) GetRemainingBalance(ctx context.Context, employeeID string, year int) (leave.RemainingBalanceResponse, error) {
	if year == 0 {
		year = s.clock.Year()
	}

	emp, err := s.employeeRepo.GetByID(ctx, employeeID)
	if err != nil {
		return leave.RemainingBalanceResponse{}, err
	}

	return leave.RemainingBalanceResponse{
		EmployeeID: emp.ID,
		Year:       year,
		Remaining:  balance.Resolve(emp.LeaveBalance, year).Available().Total(),
	}, nil
}

// GetBalanceSummary implements leave.BalanceService.
func (s *BalanceService) GetBalanceSummary(ctx context.Context, employeeID string) (leave.BalanceSummaryResponse, error) {
	emp, err := s.employeeRepo.GetByID(ctx, employeeID)
	if err != nil {
		return leave.BalanceSummaryResponse{}, err
	}
	return newBalanceSummary(emp, s.clock.Year()), nil
}

func newBalanceSummary(emp employee.Employee, year int) leave.BalanceSummaryResponse {
	stored := balance.Resolve(emp.LeaveBalance, year)
	usable := stored.Available()

	raw := emp.LeaveBalance
	if raw == nil {
		raw = balance.Map{}
	}

	return leave.BalanceSummaryResponse{
		EmployeeID:  emp.ID,
		Year:        year,
		Stored:      stored,
		Usable:      usable,
		TotalUsable: usable.Total(),
		Raw:         raw,
	}
}
