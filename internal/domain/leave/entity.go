package leave

import (
	"time"

	"github.com/cmlabs-hris/eleave-backend-go/internal/domain/balance"
)

// LeaveType is the category tag of a request. Only annual leave draws on the balance.
type LeaveType string

const (
	TypeAnnual          LeaveType = "Cuti Tahunan"
	TypeSick            LeaveType = "Cuti Sakit"
	TypeLong            LeaveType = "Cuti Besar"
	TypeMaternity       LeaveType = "Cuti Melahirkan"
	TypeImportantReason LeaveType = "Cuti Karena Alasan Penting"
	TypeUnpaid          LeaveType = "Cuti di Luar Tanggungan Negara"
)

var leaveTypes = []LeaveType{
	TypeAnnual,
	TypeSick,
	TypeLong,
	TypeMaternity,
	TypeImportantReason,
	TypeUnpaid,
}

func LeaveTypes() []LeaveType {
	return append([]LeaveType(nil), leaveTypes...)
}

func (t LeaveType) IsValid() bool {
	for _, lt := range leaveTypes {
		if lt == t {
			return true
		}
	}
	return false
}

func (t LeaveType) IsAnnual() bool {
	return t == TypeAnnual
}

type LeaveRequest struct {
	ID                  string
	EmployeeID          string
	EmployeeName        string
	LeaveType           LeaveType
	StartDate           time.Time
	EndDate             time.Time
	WorkingDays         int
	Reason              string
	Address             *string
	AttachmentURL       *string
	SupervisorID        string
	AuthorizedOfficerID string

	Status                  Status
	SupervisorStatus        Status
	AuthorizedOfficerStatus Status

	SupervisorViewed          bool
	SupervisorSigned          bool
	SupervisorSignedAt        *time.Time
	AuthorizedOfficerSignedAt *time.Time
	RejectionReason           *string

	// Ledger year the request was charged against, with the usable balance
	// at submission and what this request consumed from each bucket.
	LeaveYear           int
	SaldoN2Year         int
	SaldoCarry          int
	SaldoCurrentYear    int
	UsedN2Year          int
	UsedCarryOverDays   int
	UsedCurrentYearDays int

	DocumentURL *string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

func (r LeaveRequest) Stage() (Stage, error) {
	return StageOf(r.Status, r.SupervisorStatus, r.AuthorizedOfficerStatus)
}

func (r *LeaveRequest) SetStage(s Stage) {
	r.Status, r.SupervisorStatus, r.AuthorizedOfficerStatus = s.Statuses()
}

func (r LeaveRequest) Usage() balance.Usage {
	return balance.Usage{
		TwoYearsAgo: r.UsedN2Year,
		CarryOver:   r.UsedCarryOverDays,
		Current:     r.UsedCurrentYearDays,
	}
}

func (r *LeaveRequest) SetUsage(u balance.Usage) {
	r.UsedN2Year = u.TwoYearsAgo
	r.UsedCarryOverDays = u.CarryOver
	r.UsedCurrentYearDays = u.Current
}

// SetSnapshot records the usable buckets at submission time.
func (r *LeaveRequest) SetSnapshot(avail balance.Buckets) {
	r.LeaveYear = avail.Year
	r.SaldoN2Year = avail.TwoYearsAgo
	r.SaldoCarry = avail.CarryOver
	r.SaldoCurrentYear = avail.Current
}

// Actor is whoever performs an operation, taken from the access token.
type Actor struct {
	EmployeeID string
	IsAdmin    bool
}

// CanView reports whether the actor is the requester, an assigned approver or an admin.
func (r LeaveRequest) CanView(a Actor) bool {
	if a.IsAdmin {
		return true
	}
	if a.EmployeeID == "" {
		return false
	}
	return a.EmployeeID == r.EmployeeID || a.EmployeeID == r.SupervisorID || a.EmployeeID == r.AuthorizedOfficerID
}
