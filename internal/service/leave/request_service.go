package leave

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/cmlabs-hris/eleave-backend-go/internal/domain/balance"
	"github.com/cmlabs-hris/eleave-backend-go/internal/domain/document"
	"github.com/cmlabs-hris/eleave-backend-go/internal/domain/employee"
	"github.com/cmlabs-hris/eleave-backend-go/internal/domain/leave"
	"github.com/cmlabs-hris/eleave-backend-go/internal/pkg/validator"
	"github.com/google/uuid"
)

// CreateLeaveRequest implements leave.LeaveService.
func (s *RequestService) CreateLeaveRequest(ctx context.Context, req leave.CreateLeaveRequestRequest) (leave.LeaveRequestResponse, error) {
	if err := req.Validate(); err != nil {
		return leave.LeaveRequestResponse{}, err
	}

	startDate, endDate := req.Period()
	workingDays, err := s.calculator.Calculate(ctx, startDate, endDate)
	if err != nil {
		return leave.LeaveRequestResponse{}, fmt.Errorf("failed to calculate working days: %w", err)
	}
	if workingDays == 0 {
		return leave.LeaveRequestResponse{}, fmt.Errorf("%w: %s to %s", leave.ErrNoWorkingDays, req.StartDate, req.EndDate)
	}
	if req.WorkingDays != nil && *req.WorkingDays != workingDays {
		return leave.LeaveRequestResponse{}, validator.ValidationErrors{{
			Field:   "workingdays",
			Message: fmt.Sprintf("workingdays must be %d for the requested period", workingDays),
		}}
	}

	emp, err := s.employeeRepo.GetByID(ctx, req.EmployeeID)
	if err != nil {
		return leave.LeaveRequestResponse{}, fmt.Errorf("failed to get employee: %w", err)
	}
	for _, approverID := range []string{req.SupervisorID, req.AuthorizedOfficerID} {
		if _, err := s.employeeRepo.GetByID(ctx, approverID); err != nil {
			if errors.Is(err, employee.ErrEmployeeNotFound) {
				return leave.LeaveRequestResponse{}, fmt.Errorf("%w: %s", leave.ErrApproverNotFound, approverID)
			}
			return leave.LeaveRequestResponse{}, fmt.Errorf("failed to get approver: %w", err)
		}
	}

	var attachmentPath *string
	if req.File != nil && req.FileHeader != nil {
		path, err := s.fileService.UploadLeaveAttachment(ctx, emp.ID, req.File, req.FileHeader.Filename)
		if err != nil {
			return leave.LeaveRequestResponse{}, err
		}
		attachmentPath = &path
	}

	year := s.clock.Year()
	draft := leave.LeaveRequest{
		ID:                  uuid.Must(uuid.NewV7()).String(),
		EmployeeID:          emp.ID,
		EmployeeName:        emp.FullName,
		LeaveType:           req.LeaveType,
		StartDate:           startDate,
		EndDate:             endDate,
		WorkingDays:         workingDays,
		Reason:              req.Reason,
		Address:             req.Address,
		AttachmentURL:       attachmentPath,
		SupervisorID:        req.SupervisorID,
		AuthorizedOfficerID: req.AuthorizedOfficerID,
		LeaveYear:           year,
	}
	draft.SetStage(leave.StagePendingBoth)

	var created leave.LeaveRequest
	err = withBalanceRetry(ctx, s.tx, func(ctx context.Context) error {
		request := draft

		if request.LeaveType.IsAnnual() {
			locked, err := s.employeeRepo.GetByIDForUpdate(ctx, emp.ID)
			if err != nil {
				return err
			}

			avail := balance.Resolve(locked.LeaveBalance, year).Available()
			usage, err := balance.ComputeUsage(avail, workingDays)
			if err != nil {
				return err
			}
			request.SetSnapshot(avail)
			request.SetUsage(usage)

			if _, err := s.employeeRepo.UpdateLeaveBalance(ctx, locked.ID, balance.Consume(locked.LeaveBalance, year, usage), locked.BalanceVersion); err != nil {
				return err
			}
		}

		stored, err := s.requestRepo.Create(ctx, request)
		if err != nil {
			return err
		}
		stored.EmployeeName = emp.FullName
		created = stored
		return nil
	})
	if err != nil {
		if attachmentPath != nil {
			if delErr := s.fileService.DeleteFile(ctx, *attachmentPath); delErr != nil {
				slog.Error("failed to remove orphaned leave attachment", "path", *attachmentPath, "error", delErr)
			}
		}
		return leave.LeaveRequestResponse{}, err
	}

	slog.Info("leave request created",
		"request_id", created.ID,
		"employee_id", created.EmployeeID,
		"type", created.LeaveType,
		"workingdays", created.WorkingDays,
	)

	return s.toResponse(ctx, created), nil
}

type approverTier int

const (
	tierSupervisor approverTier = iota
	tierOfficer
)

func (t approverTier) String() string {
	if t == tierOfficer {
		return "authorized officer"
	}
	return "supervisor"
}

// DecideAsSupervisor implements leave.LeaveService.
func (s *RequestService) DecideAsSupervisor(ctx context.Context, req leave.DecisionRequest) (leave.LeaveRequestResponse, error) {
	return s.decide(ctx, req, tierSupervisor)
}

// DecideAsAuthorizedOfficer implements leave.LeaveService.
func (s *RequestService) DecideAsAuthorizedOfficer(ctx context.Context, req leave.DecisionRequest) (leave.LeaveRequestResponse, error) {
	return s.decide(ctx, req, tierOfficer)
}

func (s *RequestService) decide(ctx context.Context, req leave.DecisionRequest, tier approverTier) (leave.LeaveRequestResponse, error) {
	if err := req.Validate(); err != nil {
		return leave.LeaveRequestResponse{}, err
	}

	var (
		updated leave.LeaveRequest
		final   bool
	)
	err := withBalanceRetry(ctx, s.tx, func(ctx context.Context) error {
		request, err := s.requestRepo.GetByIDForUpdate(ctx, req.RequestID)
		if err != nil {
			return err
		}

		assigned := request.SupervisorID
		if tier == tierOfficer {
			assigned = request.AuthorizedOfficerID
		}
		if !req.Actor.IsAdmin && req.Actor.EmployeeID != assigned {
			return leave.ErrNotAssignedApprover
		}

		stage, err := request.Stage()
		if err != nil {
			return err
		}

		var next leave.Stage
		if tier == tierOfficer {
			next, err = stage.ApplyOfficer(req.Decision)
		} else {
			next, err = stage.ApplySupervisor(req.Decision)
		}
		if err != nil {
			return err
		}

		now := s.clock.Now()
		request.SetStage(next)
		switch {
		case tier == tierSupervisor:
			request.SupervisorViewed = true
			if req.Decision == leave.DecisionApproved {
				request.SupervisorSigned = true
				request.SupervisorSignedAt = &now
			}
		case req.Decision == leave.DecisionApproved:
			request.AuthorizedOfficerSignedAt = &now
		}

		if next.IsRejected() {
			request.RejectionReason = req.Reason
			if err := s.restoreBalance(ctx, request); err != nil {
				return err
			}
		}

		if err := s.requestRepo.UpdateDecision(ctx, request); err != nil {
			return err
		}

		if next == leave.StageApproved {
			if err := s.enqueueDocument(ctx, request, now); err != nil {
				return err
			}
		}

		updated = request
		final = next == leave.StageApproved
		return nil
	})
	if err != nil {
		return leave.LeaveRequestResponse{}, err
	}

	slog.Info("leave request decided",
		"request_id", updated.ID,
		"tier", tier.String(),
		"decision", req.Decision,
		"status", updated.Status,
		"actor", req.Actor.EmployeeID,
	)

	if final && s.trigger != nil {
		s.trigger.Kick()
	}

	return s.toResponse(ctx, updated), nil
}

// restoreBalance gives an annual request's consumption back to the employee's
// current map, in the buckets of the year it was charged against.
func (s *RequestService) restoreBalance(ctx context.Context, request leave.LeaveRequest) error {
	if !request.LeaveType.IsAnnual() {
		return nil
	}
	usage := request.Usage()
	if usage.IsZero() {
		return nil
	}
	if err := balance.VerifyUsage(usage, request.WorkingDays); err != nil {
		return err
	}

	emp, err := s.employeeRepo.GetByIDForUpdate(ctx, request.EmployeeID)
	if err != nil {
		return err
	}
	if _, err := s.employeeRepo.UpdateLeaveBalance(ctx, emp.ID, balance.Restore(emp.LeaveBalance, request.LeaveYear, usage), emp.BalanceVersion); err != nil {
		return err
	}
	return nil
}

func (s *RequestService) enqueueDocument(ctx context.Context, request leave.LeaveRequest, approvedAt time.Time) error {
	emp, err := s.employeeRepo.GetByID(ctx, request.EmployeeID)
	if err != nil {
		return fmt.Errorf("failed to get employee: %w", err)
	}

	payload := document.WebhookPayload{
		RequestID:             request.ID,
		EmployeeID:            emp.ID,
		EmployeeName:          emp.FullName,
		NIP:                   emp.NIP,
		LeaveType:             string(request.LeaveType),
		StartDate:             request.StartDate.Format(dayLayout),
		EndDate:               request.EndDate.Format(dayLayout),
		WorkingDays:           request.WorkingDays,
		Reason:                request.Reason,
		LeaveYear:             request.LeaveYear,
		UsedN2Year:            request.UsedN2Year,
		UsedCarryOverDays:     request.UsedCarryOverDays,
		UsedCurrentYearDays:   request.UsedCurrentYearDays,
		SupervisorID:          request.SupervisorID,
		SupervisorName:        s.employeeName(ctx, request.SupervisorID),
		AuthorizedOfficerID:   request.AuthorizedOfficerID,
		AuthorizedOfficerName: s.employeeName(ctx, request.AuthorizedOfficerID),
		ApprovedAt:            approvedAt.Format(time.RFC3339),
	}
	if request.Address != nil {
		payload.Address = *request.Address
	}

	return s.outboxRepo.Enqueue(ctx, document.OutboxEvent{
		ID:             uuid.Must(uuid.NewV7()).String(),
		LeaveRequestID: request.ID,
		Payload:        payload,
		Status:         document.OutboxPending,
	})
}
