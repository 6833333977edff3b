package leave_test

import (
	"testing"

	"github.com/cmlabs-hris/eleave-backend-go/internal/domain/leave"
	"github.com/cmlabs-hris/eleave-backend-go/internal/pkg/validator"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	employeeID   = "01890a5d-ac96-774b-bcce-b302099a8057"
	supervisorID = "01890a5d-ac96-774b-bcce-b302099a8058"
	officerID    = "01890a5d-ac96-774b-bcce-b302099a8059"
)

func validCreateRequest() leave.CreateLeaveRequestRequest {
	return leave.CreateLeaveRequestRequest{
		EmployeeID:          employeeID,
		LeaveType:           leave.TypeAnnual,
		StartDate:           "2024-03-04",
		EndDate:             "2024-03-08",
		Reason:              "family trip",
		SupervisorID:        supervisorID,
		AuthorizedOfficerID: officerID,
	}
}

func validationFields(t *testing.T, err error) map[string]string {
	t.Helper()
	var errs validator.ValidationErrors
	require.ErrorAs(t, err, &errs)
	return errs.ToMap()
}

func TestCreateLeaveRequestRequest_Validate(t *testing.T) {
	req := validCreateRequest()
	assert.NoError(t, req.Validate())

	start, end := req.Period()
	assert.Equal(t, "2024-03-04", start.Format("2006-01-02"))
	assert.Equal(t, "2024-03-08", end.Format("2006-01-02"))
}

func TestCreateLeaveRequestRequest_ValidateFailures(t *testing.T) {
	days := 3
	tests := []struct {
		name   string
		mutate func(r *leave.CreateLeaveRequestRequest)
		field  string
	}{
		{"missing type", func(r *leave.CreateLeaveRequestRequest) { r.LeaveType = "" }, "type"},
		{"unknown type", func(r *leave.CreateLeaveRequestRequest) { r.LeaveType = "Cuti Liburan" }, "type"},
		{"bad start", func(r *leave.CreateLeaveRequestRequest) { r.StartDate = "04-03-2024" }, "start_date"},
		{"end before start", func(r *leave.CreateLeaveRequestRequest) { r.EndDate = "2024-03-01" }, "end_date"},
		{"range over a year", func(r *leave.CreateLeaveRequestRequest) { r.StartDate, r.EndDate = "0001-01-01", "9999-12-31" }, "end_date"},
		{"missing reason", func(r *leave.CreateLeaveRequestRequest) { r.Reason = "  " }, "reason"},
		{"missing supervisor", func(r *leave.CreateLeaveRequestRequest) { r.SupervisorID = "" }, "supervisor_id"},
		{"self supervisor", func(r *leave.CreateLeaveRequestRequest) { r.SupervisorID = employeeID }, "supervisor_id"},
		{"missing officer", func(r *leave.CreateLeaveRequestRequest) { r.AuthorizedOfficerID = "" }, "authorized_officer_id"},
		{"malformed officer", func(r *leave.CreateLeaveRequestRequest) { r.AuthorizedOfficerID = "abc" }, "authorized_officer_id"},
		{"client split", func(r *leave.CreateLeaveRequestRequest) { r.UsedCarryOverDays = &days }, "used_carry_over_days"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := validCreateRequest()
			tt.mutate(&req)
			fields := validationFields(t, req.Validate())
			assert.Contains(t, fields, tt.field)
		})
	}
}

func TestCreateLeaveRequestRequest_YearLongRangeAllowed(t *testing.T) {
	req := validCreateRequest()
	req.StartDate, req.EndDate = "2024-01-01", "2024-12-31"
	assert.NoError(t, req.Validate())

	req.EndDate = "2025-01-02"
	assert.Contains(t, validationFields(t, req.Validate()), "end_date")
}

func TestWorkingDaysQuery_Validate(t *testing.T) {
	q := leave.WorkingDaysQuery{StartDate: "2024-03-04", EndDate: "2024-03-08"}
	assert.NoError(t, q.Validate())

	q = leave.WorkingDaysQuery{StartDate: "0001-01-01", EndDate: "9999-12-31"}
	assert.Contains(t, validationFields(t, q.Validate()), "end_date")
}

func TestDecisionRequest_Validate(t *testing.T) {
	reason := "project deadline"

	ok := leave.DecisionRequest{RequestID: "r1", Decision: leave.DecisionApproved}
	assert.NoError(t, ok.Validate())

	rejected := leave.DecisionRequest{RequestID: "r1", Decision: leave.DecisionRejected, Reason: &reason}
	assert.NoError(t, rejected.Validate())

	noReason := leave.DecisionRequest{RequestID: "r1", Decision: leave.DecisionRejected}
	assert.Contains(t, validationFields(t, noReason.Validate()), "reason")

	badDecision := leave.DecisionRequest{RequestID: "r1", Decision: "Maybe"}
	assert.Contains(t, validationFields(t, badDecision.Validate()), "decision")
}

func TestListLeaveRequestFilter_Defaults(t *testing.T) {
	f := leave.ListLeaveRequestFilter{}
	require.NoError(t, f.Validate())
	assert.Equal(t, 1, f.Page)
	assert.Equal(t, 20, f.Limit)
	assert.Equal(t, 0, f.Offset())

	f = leave.ListLeaveRequestFilter{Page: 3, Limit: 10}
	require.NoError(t, f.Validate())
	assert.Equal(t, 20, f.Offset())

	f = leave.ListLeaveRequestFilter{Limit: 500}
	assert.Contains(t, validationFields(t, f.Validate()), "limit")
}

func TestOverwriteBalanceRequest_Validate(t *testing.T) {
	ok := leave.OverwriteBalanceRequest{EmployeeID: employeeID, LeaveBalance: map[string]int{"2025": 12, "2024": 6}}
	assert.NoError(t, ok.Validate())

	negative := leave.OverwriteBalanceRequest{EmployeeID: employeeID, LeaveBalance: map[string]int{"2025": -1}}
	assert.Contains(t, validationFields(t, negative.Validate()), "leave_balance")

	empty := leave.OverwriteBalanceRequest{EmployeeID: employeeID}
	assert.Contains(t, validationFields(t, empty.Validate()), "leave_balance")
}
