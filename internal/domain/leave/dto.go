package leave

import (
	"mime/multipart"
	"strings"
	"time"

	"github.com/cmlabs-hris/eleave-backend-go/internal/domain/balance"
	"github.com/cmlabs-hris/eleave-backend-go/internal/pkg/validator"
)

const (
	dateLayout = "2006-01-02"

	// maxPeriod bounds a requested or previewed date range.
	maxPeriod = 366 * 24 * time.Hour
)

type CreateLeaveRequestRequest struct {
	EmployeeID          string    `json:"-"`
	LeaveType           LeaveType `json:"type"`
	StartDate           string    `json:"start_date"`
	EndDate             string    `json:"end_date"`
	Reason              string    `json:"reason"`
	Address             *string   `json:"address,omitempty"`
	SupervisorID        string    `json:"supervisor_id"`
	AuthorizedOfficerID string    `json:"authorized_officer_id"`
	WorkingDays         *int      `json:"workingdays,omitempty"`

	// Computed by the server. Present only so a client sending them gets a clear error.
	UsedN2Year          *int `json:"used_n2_year,omitempty"`
	UsedCarryOverDays   *int `json:"used_carry_over_days,omitempty"`
	UsedCurrentYearDays *int `json:"used_current_year_days,omitempty"`

	File       multipart.File        `json:"-"`
	FileHeader *multipart.FileHeader `json:"-"`
}

func (r *CreateLeaveRequestRequest) Validate() error {
	var errs validator.ValidationErrors

	if validator.IsEmpty(r.EmployeeID) {
		errs = append(errs, validator.ValidationError{
			Field:   "employee_id",
			Message: "employee_id is required",
		})
	}

	if validator.IsEmpty(string(r.LeaveType)) {
		errs = append(errs, validator.ValidationError{
			Field:   "type",
			Message: "type is required",
		})
	} else if !r.LeaveType.IsValid() {
		errs = append(errs, validator.ValidationError{
			Field:   "type",
			Message: "type must be one of the supported leave types",
		})
	}

	start, startOK := validator.IsValidDate(r.StartDate)
	if !startOK {
		errs = append(errs, validator.ValidationError{
			Field:   "start_date",
			Message: "start_date must be in YYYY-MM-DD format",
		})
	}
	end, endOK := validator.IsValidDate(r.EndDate)
	if !endOK {
		errs = append(errs, validator.ValidationError{
			Field:   "end_date",
			Message: "end_date must be in YYYY-MM-DD format",
		})
	}
	if startOK && endOK {
		if end.Before(start) {
			errs = append(errs, validator.ValidationError{
				Field:   "end_date",
				Message: "end_date must not be before start_date",
			})
		} else if end.Sub(start) > maxPeriod {
			errs = append(errs, validator.ValidationError{
				Field:   "end_date",
				Message: "date range must not exceed one year",
			})
		}
	}

	if validator.IsEmpty(r.Reason) {
		errs = append(errs, validator.ValidationError{
			Field:   "reason",
			Message: "reason is required",
		})
	} else if len(r.Reason) > 1000 {
		errs = append(errs, validator.ValidationError{
			Field:   "reason",
			Message: "reason must not exceed 1000 characters",
		})
	}

	if validator.IsEmpty(r.SupervisorID) {
		errs = append(errs, validator.ValidationError{
			Field:   "supervisor_id",
			Message: "supervisor_id is required",
		})
	} else if !validator.IsValidUUID(r.SupervisorID) {
		errs = append(errs, validator.ValidationError{
			Field:   "supervisor_id",
			Message: "supervisor_id must be a valid UUID",
		})
	} else if r.SupervisorID == r.EmployeeID {
		errs = append(errs, validator.ValidationError{
			Field:   "supervisor_id",
			Message: "supervisor_id must not be the requesting employee",
		})
	}

	if validator.IsEmpty(r.AuthorizedOfficerID) {
		errs = append(errs, validator.ValidationError{
			Field:   "authorized_officer_id",
			Message: "authorized_officer_id is required",
		})
	} else if !validator.IsValidUUID(r.AuthorizedOfficerID) {
		errs = append(errs, validator.ValidationError{
			Field:   "authorized_officer_id",
			Message: "authorized_officer_id must be a valid UUID",
		})
	} else if r.AuthorizedOfficerID == r.EmployeeID {
		errs = append(errs, validator.ValidationError{
			Field:   "authorized_officer_id",
			Message: "authorized_officer_id must not be the requesting employee",
		})
	}

	if r.WorkingDays != nil && *r.WorkingDays <= 0 {
		errs = append(errs, validator.ValidationError{
			Field:   "workingdays",
			Message: "workingdays must be a positive integer",
		})
	}

	for field, v := range map[string]*int{
		"used_n2_year":           r.UsedN2Year,
		"used_carry_over_days":   r.UsedCarryOverDays,
		"used_current_year_days": r.UsedCurrentYearDays,
	} {
		if v != nil {
			errs = append(errs, validator.ValidationError{
				Field:   field,
				Message: field + " is computed by the server and must not be supplied",
			})
		}
	}

	if r.Address != nil && len(*r.Address) > 500 {
		errs = append(errs, validator.ValidationError{
			Field:   "address",
			Message: "address must not exceed 500 characters",
		})
	}

	if r.FileHeader != nil {
		if r.FileHeader.Size > 5<<20 {
			errs = append(errs, validator.ValidationError{
				Field:   "attachment",
				Message: "attachment must not exceed 5MB",
			})
		}
		if !validator.IsInSlice(strings.ToLower(fileExt(r.FileHeader.Filename)), []string{".pdf", ".jpg", ".jpeg", ".png"}) {
			errs = append(errs, validator.ValidationError{
				Field:   "attachment",
				Message: "attachment must be a pdf, jpg, jpeg or png file",
			})
		}
	}

	if len(errs) > 0 {
		return errs
	}

	return nil
}

// Period returns the parsed date range. Call after Validate.
func (r *CreateLeaveRequestRequest) Period() (time.Time, time.Time) {
	start, _ := time.Parse(dateLayout, r.StartDate)
	end, _ := time.Parse(dateLayout, r.EndDate)
	return start, end
}

func fileExt(name string) string {
	if i := strings.LastIndex(name, "."); i >= 0 {
		return name[i:]
	}
	return ""
}

type DecisionRequest struct {
	RequestID string   `json:"-"`
	Actor     Actor    `json:"-"`
	Decision  Decision `json:"decision"`
	Reason    *string  `json:"reason,omitempty"`
}

func (r *DecisionRequest) Validate() error {
	var errs validator.ValidationErrors

	if validator.IsEmpty(r.RequestID) {
		errs = append(errs, validator.ValidationError{
			Field:   "id",
			Message: "leave request id is required",
		})
	}

	if !r.Decision.IsValid() {
		errs = append(errs, validator.ValidationError{
			Field:   "decision",
			Message: "decision must be Approved or Rejected",
		})
	}

	if r.Decision == DecisionRejected && (r.Reason == nil || validator.IsEmpty(*r.Reason)) {
		errs = append(errs, validator.ValidationError{
			Field:   "reason",
			Message: "reason is required when rejecting",
		})
	}
	if r.Reason != nil && len(*r.Reason) > 1000 {
		errs = append(errs, validator.ValidationError{
			Field:   "reason",
			Message: "reason must not exceed 1000 characters",
		})
	}

	if len(errs) > 0 {
		return errs
	}

	return nil
}

type ListLeaveRequestFilter struct {
	EmployeeID *string
	Status     *Status
	LeaveType  *LeaveType
	LeaveYear  *int
	Page       int
	Limit      int
}

func (f *ListLeaveRequestFilter) Validate() error {
	var errs validator.ValidationErrors

	if f.Page == 0 {
		f.Page = 1
	}
	if f.Limit == 0 {
		f.Limit = 20
	}
	if f.Page < 0 {
		errs = append(errs, validator.ValidationError{
			Field:   "page",
			Message: "page must be a positive integer",
		})
	}
	if f.Limit < 0 || f.Limit > 100 {
		errs = append(errs, validator.ValidationError{
			Field:   "limit",
			Message: "limit must be between 1 and 100",
		})
	}
	if f.Status != nil {
		switch *f.Status {
		case StatusPending, StatusApproved, StatusRejected:
		default:
			errs = append(errs, validator.ValidationError{
				Field:   "status",
				Message: "status must be Pending, Approved or Rejected",
			})
		}
	}
	if f.LeaveType != nil && !f.LeaveType.IsValid() {
		errs = append(errs, validator.ValidationError{
			Field:   "type",
			Message: "type must be one of the supported leave types",
		})
	}

	if len(errs) > 0 {
		return errs
	}

	return nil
}

func (f ListLeaveRequestFilter) Offset() int {
	return (f.Page - 1) * f.Limit
}

type WorkingDaysQuery struct {
	StartDate string
	EndDate   string
}

func (q *WorkingDaysQuery) Validate() error {
	var errs validator.ValidationErrors

	start, startOK := validator.IsValidDate(q.StartDate)
	if !startOK {
		errs = append(errs, validator.ValidationError{
			Field:   "start_date",
			Message: "start_date must be in YYYY-MM-DD format",
		})
	}
	end, endOK := validator.IsValidDate(q.EndDate)
	if !endOK {
		errs = append(errs, validator.ValidationError{
			Field:   "end_date",
			Message: "end_date must be in YYYY-MM-DD format",
		})
	}
	if startOK && endOK {
		if end.Before(start) {
			errs = append(errs, validator.ValidationError{
				Field:   "end_date",
				Message: "end_date must not be before start_date",
			})
		} else if end.Sub(start) > maxPeriod {
			errs = append(errs, validator.ValidationError{
				Field:   "end_date",
				Message: "date range must not exceed one year",
			})
		}
	}

	if len(errs) > 0 {
		return errs
	}

	return nil
}

func (q *WorkingDaysQuery) Period() (time.Time, time.Time) {
	start, _ := time.Parse(dateLayout, q.StartDate)
	end, _ := time.Parse(dateLayout, q.EndDate)
	return start, end
}

type WorkingDaysResponse struct {
	StartDate   string `json:"start_date"`
	EndDate     string `json:"end_date"`
	WorkingDays int    `json:"workingdays"`
}

type LeaveRequestResponse struct {
	ID                        string     `json:"id"`
	EmployeeID                string     `json:"employee_id"`
	EmployeeName              string     `json:"employee_name,omitempty"`
	Type                      LeaveType  `json:"type"`
	StartDate                 string     `json:"start_date"`
	EndDate                   string     `json:"end_date"`
	WorkingDays               int        `json:"workingdays"`
	Reason                    string     `json:"reason"`
	Address                   *string    `json:"address,omitempty"`
	AttachmentURL             *string    `json:"attachment_url,omitempty"`
	SupervisorID              string     `json:"supervisor_id"`
	AuthorizedOfficerID       string     `json:"authorized_officer_id"`
	Status                    Status     `json:"status"`
	SupervisorStatus          Status     `json:"supervisor_status"`
	AuthorizedOfficerStatus   Status     `json:"authorized_officer_status"`
	SupervisorViewed          bool       `json:"supervisor_viewed"`
	SupervisorSigned          bool       `json:"supervisor_signed"`
	SupervisorSignedAt        *time.Time `json:"supervisor_signed_at,omitempty"`
	AuthorizedOfficerSignedAt *time.Time `json:"authorized_officer_signed_at,omitempty"`
	RejectionReason           *string    `json:"rejection_reason,omitempty"`
	LeaveYear                 int        `json:"leave_year"`
	SaldoN2Year               int        `json:"saldo_n2_year"`
	SaldoCarry                int        `json:"saldo_carry"`
	SaldoCurrentYear          int        `json:"saldo_current_year"`
	UsedN2Year                int        `json:"used_n2_year"`
	UsedCarryOverDays         int        `json:"used_carry_over_days"`
	UsedCurrentYearDays       int        `json:"used_current_year_days"`
	DocumentURL               *string    `json:"document_url,omitempty"`
	CreatedAt                 time.Time  `json:"created_at"`
	UpdatedAt                 time.Time  `json:"updated_at"`
}

func NewLeaveRequestResponse(r LeaveRequest) LeaveRequestResponse {
	return LeaveRequestResponse{
		ID:                        r.ID,
		EmployeeID:                r.EmployeeID,
		EmployeeName:              r.EmployeeName,
		Type:                      r.LeaveType,
		StartDate:                 r.StartDate.Format(dateLayout),
		EndDate:                   r.EndDate.Format(dateLayout),
		WorkingDays:               r.WorkingDays,
		Reason:                    r.Reason,
		Address:                   r.Address,
		AttachmentURL:             r.AttachmentURL,
		SupervisorID:              r.SupervisorID,
		AuthorizedOfficerID:       r.AuthorizedOfficerID,
		Status:                    r.Status,
		SupervisorStatus:          r.SupervisorStatus,
		AuthorizedOfficerStatus:   r.AuthorizedOfficerStatus,
		SupervisorViewed:          r.SupervisorViewed,
		SupervisorSigned:          r.SupervisorSigned,
		SupervisorSignedAt:        r.SupervisorSignedAt,
		AuthorizedOfficerSignedAt: r.AuthorizedOfficerSignedAt,
		RejectionReason:           r.RejectionReason,
		LeaveYear:                 r.LeaveYear,
		SaldoN2Year:               r.SaldoN2Year,
		SaldoCarry:                r.SaldoCarry,
		SaldoCurrentYear:          r.SaldoCurrentYear,
		UsedN2Year:                r.UsedN2Year,
		UsedCarryOverDays:         r.UsedCarryOverDays,
		UsedCurrentYearDays:       r.UsedCurrentYearDays,
		DocumentURL:               r.DocumentURL,
		CreatedAt:                 r.CreatedAt,
		UpdatedAt:                 r.UpdatedAt,
	}
}

type ListLeaveRequestResponse struct {
	Requests   []LeaveRequestResponse `json:"requests"`
	TotalCount int64                  `json:"total_count"`
	Page       int                    `json:"page"`
	Limit      int                    `json:"limit"`
}

type BalanceSummaryResponse struct {
	EmployeeID  string          `json:"employee_id"`
	Year        int             `json:"year"`
	Stored      balance.Buckets `json:"stored"`
	Usable      balance.Buckets `json:"usable"`
	TotalUsable int             `json:"total_usable"`
	Raw         balance.Map     `json:"leave_balance"`
}

type RemainingBalanceResponse struct {
	EmployeeID string `json:"employee_id"`
	Year       int    `json:"year"`
	Remaining  int    `json:"remaining"`
}

type OverwriteBalanceRequest struct {
	EmployeeID   string         `json:"-"`
	LeaveBalance map[string]int `json:"leave_balance"`
}

func (r *OverwriteBalanceRequest) Validate() error {
	var errs validator.ValidationErrors

	if validator.IsEmpty(r.EmployeeID) {
		errs = append(errs, validator.ValidationError{
			Field:   "employee_id",
			Message: "employee_id is required",
		})
	}
	if len(r.LeaveBalance) == 0 {
		errs = append(errs, validator.ValidationError{
			Field:   "leave_balance",
			Message: "leave_balance is required",
		})
	} else if err := balance.Validate(balance.Map(r.LeaveBalance)); err != nil {
		errs = append(errs, validator.ValidationError{
			Field:   "leave_balance",
			Message: err.Error(),
		})
	}

	if len(errs) > 0 {
		return errs
	}

	return nil
}

type RolloverRequest struct {
	Year int `json:"year,omitempty"`
}

func (r *RolloverRequest) Validate() error {
	if r.Year != 0 && (r.Year < 2000 || r.Year > 9999) {
		return validator.ValidationErrors{{
			Field:   "year",
			Message: "year must be a four digit year",
		}}
	}
	return nil
}

type CorrectiveSummary struct {
	Year    int `json:"year"`
	Total   int `json:"total"`
	Updated int `json:"updated"`
	Capped  int `json:"capped"`
	Errors  int `json:"errors"`
}

type RolloverSummary struct {
	Year    int `json:"year"`
	Total   int `json:"total"`
	Updated int `json:"updated"`
	Skipped int `json:"skipped"`
	Errors  int `json:"errors"`
}
