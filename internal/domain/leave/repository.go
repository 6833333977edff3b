package leave

import (
	"context"
)

// LeaveRequestRepository - interface for leave_requests table
type LeaveRequestRepository interface {
	Create(ctx context.Context, request LeaveRequest) (LeaveRequest, error)
	GetByID(ctx context.Context, id string) (LeaveRequest, error)
	// GetByIDForUpdate locks the row until the surrounding transaction ends.
	GetByIDForUpdate(ctx context.Context, id string) (LeaveRequest, error)
	UpdateDecision(ctx context.Context, request LeaveRequest) error
	SetDocumentURL(ctx context.Context, id string, url string) error
	List(ctx context.Context, filter ListLeaveRequestFilter) ([]LeaveRequest, int64, error)
	// ListAwaitingApprover returns requests whose next decision belongs to approverID.
	ListAwaitingApprover(ctx context.Context, approverID string) ([]LeaveRequest, error)
	// SumApprovedAnnualDays totals working days of approved annual leave charged to leaveYear.
	SumApprovedAnnualDays(ctx context.Context, employeeID string, leaveYear int) (int, error)
}
