package leave

import (
	"context"
	"io"
)

type LeaveService interface {
	CreateLeaveRequest(ctx context.Context, req CreateLeaveRequestRequest) (LeaveRequestResponse, error)
	DecideAsSupervisor(ctx context.Context, req DecisionRequest) (LeaveRequestResponse, error)
	DecideAsAuthorizedOfficer(ctx context.Context, req DecisionRequest) (LeaveRequestResponse, error)

	GetLeaveRequest(ctx context.Context, id string, actor Actor) (LeaveRequestResponse, error)
	ListMyRequests(ctx context.Context, employeeID string, filter ListLeaveRequestFilter) (ListLeaveRequestResponse, error)
	ListApprovalQueue(ctx context.Context, approverID string) ([]LeaveRequestResponse, error)
	ListRequests(ctx context.Context, filter ListLeaveRequestFilter) (ListLeaveRequestResponse, error)
	PreviewWorkingDays(ctx context.Context, q WorkingDaysQuery) (WorkingDaysResponse, error)
	RenderLetter(ctx context.Context, id string, actor Actor, w io.Writer) error
}

type BalanceService interface {
	GetRemainingBalance(ctx context.Context, employeeID string, year int) (RemainingBalanceResponse, error)
	GetBalanceSummary(ctx context.Context, employeeID string) (BalanceSummaryResponse, error)
}

type MaintenanceService interface {
	RunCorrectiveBalanceUpdate(ctx context.Context) (CorrectiveSummary, error)
	RunYearStartRollover(ctx context.Context, year int) (RolloverSummary, error)
	OverwriteBalance(ctx context.Context, req OverwriteBalanceRequest) (BalanceSummaryResponse, error)
}
