package postgresql

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/cmlabs-hris/eleave-backend-go/internal/domain/leave"
	"github.com/cmlabs-hris/eleave-backend-go/internal/pkg/database"
	"github.com/jackc/pgx/v5"
)

type leaveRequestRepositoryImpl struct {
	db *database.DB
}

func NewLeaveRequestRepository(db *database.DB) leave.LeaveRequestRepository {
	return &leaveRequestRepositoryImpl{db: db}
}

const leaveRequestColumns = `
	lr.id, lr.employee_id, e.full_name, lr.type, lr.start_date, lr.end_date, lr.workingdays,
	lr.reason, lr.address, lr.attachment_url, lr.supervisor_id, lr.authorized_officer_id,
	lr.status, lr.supervisor_status, lr.authorized_officer_status,
	lr.supervisor_viewed, lr.supervisor_signed, lr.supervisor_signed_at, lr.authorized_officer_signed_at,
	lr.rejection_reason, lr.leave_year, lr.saldo_n2_year, lr.saldo_carry, lr.saldo_current_year,
	lr.used_n2_year, lr.used_carry_over_days, lr.used_current_year_days,
	lr.document_url, lr.created_at, lr.updated_at`

func scanLeaveRequest(row pgx.Row) (leave.LeaveRequest, error) {
	var lr leave.LeaveRequest
	err := row.Scan(
		&lr.ID,
		&lr.EmployeeID,
		&lr.EmployeeName,
		&lr.LeaveType,
		&lr.StartDate,
		&lr.EndDate,
		&lr.WorkingDays,
		&lr.Reason,
		&lr.Address,
		&lr.AttachmentURL,
		&lr.SupervisorID,
		&lr.AuthorizedOfficerID,
		&lr.Status,
		&lr.SupervisorStatus,
		&lr.AuthorizedOfficerStatus,
		&lr.SupervisorViewed,
		&lr.SupervisorSigned,
		&lr.SupervisorSignedAt,
		&lr.AuthorizedOfficerSignedAt,
		&lr.RejectionReason,
		&lr.LeaveYear,
		&lr.SaldoN2Year,
		&lr.SaldoCarry,
		&lr.SaldoCurrentYear,
		&lr.UsedN2Year,
		&lr.UsedCarryOverDays,
		&lr.UsedCurrentYearDays,
		&lr.DocumentURL,
		&lr.CreatedAt,
		&lr.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return leave.LeaveRequest{}, leave.ErrLeaveRequestNotFound
		}
		return leave.LeaveRequest{}, err
	}
	return lr, nil
}

func collectLeaveRequests(rows pgx.Rows) ([]leave.LeaveRequest, error) {
	defer rows.Close()

	requests := make([]leave.LeaveRequest, 0)
	for rows.Next() {
		lr, err := scanLeaveRequest(rows)
		if err != nil {
			return nil, err
		}
		requests = append(requests, lr)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return requests, nil
}

// Create implements leave.LeaveRequestRepository.
func (r *leaveRequestRepositoryImpl) Create(ctx context.Context, request leave.LeaveRequest) (leave.LeaveRequest, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		INSERT INTO leave_requests (
			id, employee_id, type, start_date, end_date, workingdays, reason, address, attachment_url,
			supervisor_id, authorized_officer_id, status, supervisor_status, authorized_officer_status,
			leave_year, saldo_n2_year, saldo_carry, saldo_current_year,
			used_n2_year, used_carry_over_days, used_current_year_days
		) VALUES (
			$1, $2, $3, $4, $5, $6, $7, $8, $9,
			$10, $11, $12, $13, $14,
			$15, $16, $17, $18,
			$19, $20, $21
		)
		RETURNING created_at, updated_at`

	err := q.QueryRow(ctx, query,
		request.ID,
		request.EmployeeID,
		request.LeaveType,
		request.StartDate,
		request.EndDate,
		request.WorkingDays,
		request.Reason,
		request.Address,
		request.AttachmentURL,
		request.SupervisorID,
		request.AuthorizedOfficerID,
		request.Status,
		request.SupervisorStatus,
		request.AuthorizedOfficerStatus,
		request.LeaveYear,
		request.SaldoN2Year,
		request.SaldoCarry,
		request.SaldoCurrentYear,
		request.UsedN2Year,
		request.UsedCarryOverDays,
		request.UsedCurrentYearDays,
	).Scan(&request.CreatedAt, &request.UpdatedAt)
	if err != nil {
		return leave.LeaveRequest{}, fmt.Errorf("insert leave request: %w", err)
	}

	return request, nil
}

// GetByID implements leave.LeaveRequestRepository.
func (r *leaveRequestRepositoryImpl) GetByID(ctx context.Context, id string) (leave.LeaveRequest, error) {
	q := GetQuerier(ctx, r.db)

	query := `SELECT` + leaveRequestColumns + `
		FROM leave_requests lr
		INNER JOIN employees e ON e.id = lr.employee_id
		WHERE lr.id = $1`

	return scanLeaveRequest(q.QueryRow(ctx, query, id))
}

// GetByIDForUpdate implements leave.LeaveRequestRepository.
func (r *leaveRequestRepositoryImpl) GetByIDForUpdate(ctx context.Context, id string) (leave.LeaveRequest, error) {
	q := GetQuerier(ctx, r.db)

	query := `SELECT` + leaveRequestColumns + `
		FROM leave_requests lr
		INNER JOIN employees e ON e.id = lr.employee_id
		WHERE lr.id = $1
		FOR UPDATE OF lr`

	return scanLeaveRequest(q.QueryRow(ctx, query, id))
}

// UpdateDecision implements leave.LeaveRequestRepository.
func (r *leaveRequestRepositoryImpl) UpdateDecision(ctx context.Context, request leave.LeaveRequest) error {
	q := GetQuerier(ctx, r.db)

	query := `
		UPDATE leave_requests
		SET status = $2,
			supervisor_status = $3,
			authorized_officer_status = $4,
			supervisor_viewed = $5,
			supervisor_signed = $6,
			supervisor_signed_at = $7,
			authorized_officer_signed_at = $8,
			rejection_reason = $9,
			updated_at = NOW()
		WHERE id = $1`

	tag, err := q.Exec(ctx, query,
		request.ID,
		request.Status,
		request.SupervisorStatus,
		request.AuthorizedOfficerStatus,
		request.SupervisorViewed,
		request.SupervisorSigned,
		request.SupervisorSignedAt,
		request.AuthorizedOfficerSignedAt,
		request.RejectionReason,
	)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return leave.ErrLeaveRequestNotFound
	}

	return nil
}

// SetDocumentURL implements leave.LeaveRequestRepository.
func (r *leaveRequestRepositoryImpl) SetDocumentURL(ctx context.Context, id string, url string) error {
	q := GetQuerier(ctx, r.db)

	tag, err := q.Exec(ctx, `UPDATE leave_requests SET document_url = $2, updated_at = NOW() WHERE id = $1`, id, url)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return leave.ErrLeaveRequestNotFound
	}
	return nil
}

// List implements leave.LeaveRequestRepository.
func (r *leaveRequestRepositoryImpl) List(ctx context.Context, filter leave.ListLeaveRequestFilter) ([]leave.LeaveRequest, int64, error) {
	q := GetQuerier(ctx, r.db)

	var (
		conditions []string
		args       []any
	)
	addCondition := func(clause string, arg any) {
		args = append(args, arg)
		conditions = append(conditions, fmt.Sprintf(clause, len(args)))
	}

	if filter.EmployeeID != nil {
		addCondition("lr.employee_id = $%d", *filter.EmployeeID)
	}
	if filter.Status != nil {
		addCondition("lr.status = $%d", string(*filter.Status))
	}
	if filter.LeaveType != nil {
		addCondition("lr.type = $%d", string(*filter.LeaveType))
	}
	if filter.LeaveYear != nil {
		addCondition("lr.leave_year = $%d", *filter.LeaveYear)
	}

	where := ""
	if len(conditions) > 0 {
		where = "WHERE " + strings.Join(conditions, " AND ")
	}

	var total int64
	countQuery := `SELECT COUNT(*) FROM leave_requests lr ` + where
	if err := q.QueryRow(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	limit := filter.Limit
	if limit <= 0 {
		limit = 20
	}
	offset := filter.Offset()
	if offset < 0 {
		offset = 0
	}
	args = append(args, limit, offset)
	query := fmt.Sprintf(`SELECT`+leaveRequestColumns+`
		FROM leave_requests lr
		INNER JOIN employees e ON e.id = lr.employee_id
		%s
		ORDER BY lr.created_at DESC
		LIMIT $%d OFFSET $%d`, where, len(args)-1, len(args))

	rows, err := q.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	requests, err := collectLeaveRequests(rows)
	if err != nil {
		return nil, 0, err
	}

	return requests, total, nil
}

// ListAwaitingApprover implements leave.LeaveRequestRepository.
func (r *leaveRequestRepositoryImpl) ListAwaitingApprover(ctx context.Context, approverID string) ([]leave.LeaveRequest, error) {
	q := GetQuerier(ctx, r.db)

	query := `SELECT` + leaveRequestColumns + `
		FROM leave_requests lr
		INNER JOIN employees e ON e.id = lr.employee_id
		WHERE lr.status = 'Pending'
		  AND (
			(lr.supervisor_id = $1 AND lr.supervisor_status = 'Pending')
			OR (lr.authorized_officer_id = $1 AND lr.supervisor_status = 'Approved' AND lr.authorized_officer_status = 'Pending')
		  )
		ORDER BY lr.created_at ASC`

	rows, err := q.Query(ctx, query, approverID)
	if err != nil {
		return nil, err
	}
	return collectLeaveRequests(rows)
}

// SumApprovedAnnualDays implements leave.LeaveRequestRepository.
func (r *leaveRequestRepositoryImpl) SumApprovedAnnualDays(ctx context.Context, employeeID string, leaveYear int) (int, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT COALESCE(SUM(workingdays), 0)
		FROM leave_requests
		WHERE employee_id = $1 AND leave_year = $2 AND type = $3 AND status = $4`

	var total int
	if err := q.QueryRow(ctx, query, employeeID, leaveYear, leave.TypeAnnual, leave.StatusApproved).Scan(&total); err != nil {
		return 0, err
	}
	return total, nil
}
