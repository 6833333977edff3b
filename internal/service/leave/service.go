package leave

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/cmlabs-hris/eleave-backend-go/internal/domain/document"
	"github.com/cmlabs-hris/eleave-backend-go/internal/domain/employee"
	"github.com/cmlabs-hris/eleave-backend-go/internal/domain/leave"
	"github.com/cmlabs-hris/eleave-backend-go/internal/pkg/database"
	"github.com/cmlabs-hris/eleave-backend-go/internal/pkg/letter"
	"github.com/cmlabs-hris/eleave-backend-go/internal/service/file"
)

// maxBalanceAttempts bounds how often a transaction is replayed after a stale balance write.
const maxBalanceAttempts = 3

type Options struct {
	// Location decides which calendar year "now" falls in. Defaults to UTC.
	Location *time.Location
	// Now is the clock. Defaults to time.Now.
	Now func() time.Time
}

type clock struct {
	loc *time.Location
	now func() time.Time
}

func newClock(opts Options) clock {
	c := clock{loc: opts.Location, now: opts.Now}
	if c.loc == nil {
		c.loc = time.UTC
	}
	if c.now == nil {
		c.now = time.Now
	}
	return c
}

func (c clock) Now() time.Time {
	return c.now().In(c.loc)
}

func (c clock) Year() int {
	return c.Now().Year()
}

// withBalanceRetry runs fn in a transaction and replays it when a balance
// compare-and-swap lost against a concurrent writer.
func withBalanceRetry(ctx context.Context, tx database.Transactor, fn func(ctx context.Context) error) error {
	for attempt := 1; ; attempt++ {
		err := tx.WithinTransaction(ctx, fn)
		if !errors.Is(err, employee.ErrBalanceVersionStale) {
			return err
		}
		if attempt >= maxBalanceAttempts {
			return fmt.Errorf("%w: %d attempts", leave.ErrBalanceConflict, attempt)
		}
		slog.Debug("leave balance write lost a race, retrying", "attempt", attempt)
	}
}

type RequestService struct {
	tx           database.Transactor
	requestRepo  leave.LeaveRequestRepository
	employeeRepo employee.EmployeeRepository
	outboxRepo   document.OutboxRepository
	calculator   *WorkingDaysCalculator
	fileService  file.FileService
	trigger      document.Trigger
	clock        clock
}

func NewRequestService(
	tx database.Transactor,
	requestRepo leave.LeaveRequestRepository,
	employeeRepo employee.EmployeeRepository,
	outboxRepo document.OutboxRepository,
	calculator *WorkingDaysCalculator,
	fileService file.FileService,
	trigger document.Trigger,
	opts Options,
) *RequestService {
	return &RequestService{
		tx:           tx,
		requestRepo:  requestRepo,
		employeeRepo: employeeRepo,
		outboxRepo:   outboxRepo,
		calculator:   calculator,
		fileService:  fileService,
		trigger:      trigger,
		clock:        newClock(opts),
	}
}

var _ leave.LeaveService = (*RequestService)(nil)

func (s *RequestService) toResponse(ctx context.Context, r leave.LeaveRequest) leave.LeaveRequestResponse {
	resp := leave.NewLeaveRequestResponse(r)
	if r.AttachmentURL != nil && *r.AttachmentURL != "" && s.fileService != nil {
		if url, err := s.fileService.GetFileURL(ctx, *r.AttachmentURL, 0); err == nil {
			resp.AttachmentURL = &url
		}
	}
	return resp
}

func (s *RequestService) toResponses(ctx context.Context, requests []leave.LeaveRequest) []leave.LeaveRequestResponse {
	out := make([]leave.LeaveRequestResponse, 0, len(requests))
	for _, r := range requests {
		out = append(out, s.toResponse(ctx, r))
	}
	return out
}

// GetLeaveRequest implements leave.LeaveService.
func (s *RequestService) GetLeaveRequest(ctx context.Context, id string, actor leave.Actor) (leave.LeaveRequestResponse, error) {
	request, err := s.requestRepo.GetByID(ctx, id)
	if err != nil {
		return leave.LeaveRequestResponse{}, err
	}
	if !request.CanView(actor) {
		return leave.LeaveRequestResponse{}, leave.ErrForbiddenRequest
	}
	return s.toResponse(ctx, request), nil
}

// ListMyRequests implements leave.LeaveService.
func (s *RequestService) ListMyRequests(ctx context.Context, employeeID string, filter leave.ListLeaveRequestFilter) (leave.ListLeaveRequestResponse, error) {
	filter.EmployeeID = &employeeID
	return s.ListRequests(ctx, filter)
}

// ListRequests implements leave.LeaveService.
func (s *RequestService) ListRequests(ctx context.Context, filter leave.ListLeaveRequestFilter) (leave.ListLeaveRequestResponse, error) {
	if err := filter.Validate(); err != nil {
		return leave.ListLeaveRequestResponse{}, err
	}

	requests, total, err := s.requestRepo.List(ctx, filter)
	if err != nil {
		return leave.ListLeaveRequestResponse{}, fmt.Errorf("failed to list leave requests: %w", err)
	}

	return leave.ListLeaveRequestResponse{
		Requests:   s.toResponses(ctx, requests),
		TotalCount: total,
		Page:       filter.Page,
		Limit:      filter.Limit,
	}, nil
}

// ListApprovalQueue implements leave.LeaveService.
func (s *RequestService) ListApprovalQueue(ctx context.Context, approverID string) ([]leave.LeaveRequestResponse, error) {
	requests, err := s.requestRepo.ListAwaitingApprover(ctx, approverID)
	if err != nil {
		return nil, fmt.Errorf("failed to list approval queue: %w", err)
	}
	return s.toResponses(ctx, requests), nil
}

// PreviewWorkingDays implements leave.LeaveService.
func (s *RequestService) PreviewWorkingDays(ctx context.Context, q leave.WorkingDaysQuery) (leave.WorkingDaysResponse, error) {
	if err := q.Validate(); err != nil {
		return leave.WorkingDaysResponse{}, err
	}

	start, end := q.Period()
	days, err := s.calculator.Calculate(ctx, start, end)
	if err != nil {
		return leave.WorkingDaysResponse{}, err
	}

	return leave.WorkingDaysResponse{
		StartDate:   q.StartDate,
		EndDate:     q.EndDate,
		WorkingDays: days,
	}, nil
}

// RenderLetter implements leave.LeaveService.
func (s *RequestService) RenderLetter(ctx context.Context, id string, actor leave.Actor, w io.Writer) error {
	request, err := s.requestRepo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if !request.CanView(actor) {
		return leave.ErrForbiddenRequest
	}
	if request.Status != leave.StatusApproved {
		return leave.ErrLetterNotAvailable
	}

	emp, err := s.employeeRepo.GetByID(ctx, request.EmployeeID)
	if err != nil {
		return fmt.Errorf("failed to get employee: %w", err)
	}

	data := letter.Data{
		RequestID:             request.ID,
		EmployeeName:          emp.FullName,
		NIP:                   emp.NIP,
		LeaveType:             string(request.LeaveType),
		StartDate:             request.StartDate,
		EndDate:               request.EndDate,
		WorkingDays:           request.WorkingDays,
		Reason:                request.Reason,
		LeaveYear:             request.LeaveYear,
		UsedN2Year:            request.UsedN2Year,
		UsedCarryOverDays:     request.UsedCarryOverDays,
		UsedCurrentYearDays:   request.UsedCurrentYearDays,
		SupervisorName:        s.employeeName(ctx, request.SupervisorID),
		SupervisorSignedAt:    request.SupervisorSignedAt,
		AuthorizedOfficerName: s.employeeName(ctx, request.AuthorizedOfficerID),
		ApprovedAt:            request.AuthorizedOfficerSignedAt,
	}
	if emp.Position != nil {
		data.Position = *emp.Position
	}
	if request.Address != nil {
		data.Address = *request.Address
	}

	return letter.Render(w, data)
}

// employeeName looks up a display name, falling back to the id.
func (s *RequestService) employeeName(ctx context.Context, id string) string {
	emp, err := s.employeeRepo.GetByID(ctx, id)
	if err != nil {
		slog.Warn("failed to resolve employee name", "employee_id", id, "error", err)
		return id
	}
	return emp.FullName
}
