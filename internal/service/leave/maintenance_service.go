package leave

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/cmlabs-hris/eleave-backend-go/internal/domain/balance"
	"github.com/cmlabs-hris/eleave-backend-go/internal/domain/employee"
	"github.com/cmlabs-hris/eleave-backend-go/internal/domain/leave"
	"github.com/cmlabs-hris/eleave-backend-go/internal/domain/user"
	"github.com/cmlabs-hris/eleave-backend-go/internal/pkg/database"
	"github.com/cmlabs-hris/eleave-backend-go/internal/pkg/validator"
	"golang.org/x/sync/errgroup"
)

// batchWorkers is how many employees a maintenance job processes at once.
const batchWorkers = 8

type MaintenanceService struct {
	tx           database.Transactor
	employeeRepo employee.EmployeeRepository
	requestRepo  leave.LeaveRequestRepository
	clock        clock
}

func NewMaintenanceService(tx database.Transactor, employeeRepo employee.EmployeeRepository, requestRepo leave.LeaveRequestRepository, opts Options) *MaintenanceService {
	return &MaintenanceService{
		tx:           tx,
		employeeRepo: employeeRepo,
		requestRepo:  requestRepo,
		clock:        newClock(opts),
	}
}

var _ leave.MaintenanceService = (*MaintenanceService)(nil)

// forEachEmployee runs fn for every id with bounded parallelism. Each employee
// is independent, so failures are left to fn to record.
func forEachEmployee(ids []string, fn func(id string)) {
	var g errgroup.Group
	g.SetLimit(batchWorkers)
	for _, id := range ids {
		g.Go(func() error {
			fn(id)
			return nil
		})
	}
	_ = g.Wait()
}

// RunCorrectiveBalanceUpdate implements leave.MaintenanceService.
func (s *MaintenanceService) RunCorrectiveBalanceUpdate(ctx context.Context) (leave.CorrectiveSummary, error) {
	year := s.clock.Year()

	ids, err := s.employeeRepo.ListIDs(ctx, nil)
	if err != nil {
		return leave.CorrectiveSummary{}, fmt.Errorf("failed to list employees: %w", err)
	}

	summary := leave.CorrectiveSummary{Year: year, Total: len(ids)}
	var mu sync.Mutex

	forEachEmployee(ids, func(id string) {
		res, err := s.correctOne(ctx, id, year)

		mu.Lock()
		defer mu.Unlock()
		if err != nil {
			summary.Errors++
			slog.Error("corrective balance update failed", "employee_id", id, "error", err)
			return
		}
		if res.Changed {
			summary.Updated++
		}
		if res.Capped {
			summary.Capped++
		}
	})

	slog.Info("corrective balance update finished",
		"year", summary.Year,
		"total", summary.Total,
		"updated", summary.Updated,
		"capped", summary.Capped,
		"errors", summary.Errors,
	)
	return summary, nil
}

func (s *MaintenanceService) correctOne(ctx context.Context, id string, year int) (balance.CorrectionResult, error) {
	var res balance.CorrectionResult
	err := withBalanceRetry(ctx, s.tx, func(ctx context.Context) error {
		emp, err := s.employeeRepo.GetByIDForUpdate(ctx, id)
		if err != nil {
			return err
		}

		var corrected balance.Map
		corrected, res = balance.Correct(emp.LeaveBalance, year)
		if !res.Changed {
			return nil
		}

		_, err = s.employeeRepo.UpdateLeaveBalance(ctx, id, corrected, emp.BalanceVersion)
		return err
	})
	return res, err
}

// RunYearStartRollover implements leave.MaintenanceService. A zero year means the current one.
func (s *MaintenanceService) RunYearStartRollover(ctx context.Context, year int) (leave.RolloverSummary, error) {
	current := s.clock.Year()
	if year == 0 {
		year = current
	}
	if year != current && year != current+1 {
		return leave.RolloverSummary{}, validator.ValidationErrors{{
			Field:   "year",
			Message: fmt.Sprintf("year must be %d or %d", current, current+1),
		}}
	}

	role := user.RoleUser
	ids, err := s.employeeRepo.ListIDs(ctx, &role)
	if err != nil {
		return leave.RolloverSummary{}, fmt.Errorf("failed to list employees: %w", err)
	}

	summary := leave.RolloverSummary{Year: year, Total: len(ids)}
	var mu sync.Mutex

	forEachEmployee(ids, func(id string) {
		rolled, err := s.rolloverOne(ctx, id, year)

		mu.Lock()
		defer mu.Unlock()
		switch {
		case err != nil:
			summary.Errors++
			slog.Error("year-start rollover failed", "employee_id", id, "year", year, "error", err)
		case rolled:
			summary.Updated++
		default:
			summary.Skipped++
		}
	})

	slog.Info("year-start rollover finished",
		"year", summary.Year,
		"total", summary.Total,
		"updated", summary.Updated,
		"skipped", summary.Skipped,
		"errors", summary.Errors,
	)
	return summary, nil
}

// rolloverOne returns false when the employee was already rolled into year.
func (s *MaintenanceService) rolloverOne(ctx context.Context, id string, year int) (bool, error) {
	var rolled bool
	err := withBalanceRetry(ctx, s.tx, func(ctx context.Context) error {
		rolled = false

		emp, err := s.employeeRepo.GetByIDForUpdate(ctx, id)
		if err != nil {
			return err
		}
		if emp.LastRolloverYear != nil && *emp.LastRolloverYear >= year {
			return nil
		}

		used, err := s.requestRepo.SumApprovedAnnualDays(ctx, id, year-1)
		if err != nil {
			return fmt.Errorf("failed to sum approved leave: %w", err)
		}

		next := balance.Rollover(emp.LeaveBalance, year, used)
		if _, err := s.employeeRepo.CompleteRollover(ctx, id, next, emp.BalanceVersion, year); err != nil {
			return err
		}
		rolled = true
		return nil
	})
	return rolled, err
}

// OverwriteBalance implements leave.MaintenanceService.
func (s *MaintenanceService) OverwriteBalance(ctx context.Context, req leave.OverwriteBalanceRequest) (leave.BalanceSummaryResponse, error) {
	if err := req.Validate(); err != nil {
		return leave.BalanceSummaryResponse{}, err
	}

	next := balance.Map(req.LeaveBalance).Clone()

	var updated employee.Employee
	err := withBalanceRetry(ctx, s.tx, func(ctx context.Context) error {
		emp, err := s.employeeRepo.GetByIDForUpdate(ctx, req.EmployeeID)
		if err != nil {
			return err
		}

		version, err := s.employeeRepo.UpdateLeaveBalance(ctx, emp.ID, next, emp.BalanceVersion)
		if err != nil {
			return err
		}

		emp.LeaveBalance = next
		emp.BalanceVersion = version
		updated = emp
		return nil
	})
	if err != nil {
		return leave.BalanceSummaryResponse{}, err
	}

	slog.Info("leave balance overwritten", "employee_id", updated.ID, "leave_balance", next)
	return newBalanceSummary(updated, s.clock.Year()), nil
}
