package response

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/cmlabs-hris/eleave-backend-go/internal/domain/auth"
	"github.com/cmlabs-hris/eleave-backend-go/internal/domain/balance"
	"github.com/cmlabs-hris/eleave-backend-go/internal/domain/employee"
	"github.com/cmlabs-hris/eleave-backend-go/internal/domain/leave"
	"github.com/cmlabs-hris/eleave-backend-go/internal/domain/user"
	"github.com/cmlabs-hris/eleave-backend-go/internal/pkg/validator"
	"github.com/cmlabs-hris/eleave-backend-go/internal/service/file"
)

// HandleError maps domain errors to HTTP responses
func HandleError(w http.ResponseWriter, err error) {
	// Check if it's a validation error
	var validationErrs validator.ValidationErrors
	if errors.As(err, &validationErrs) {
		ValidationError(w, validationErrs.ToMap())
		return
	}

	var insufficient *balance.InsufficientBalanceError
	if errors.As(err, &insufficient) {
		BadRequest(w, "Insufficient leave balance", map[string]string{
			"requested": strconv.Itoa(insufficient.Requested),
			"available": strconv.Itoa(insufficient.Available),
			"shortfall": strconv.Itoa(insufficient.Shortfall()),
		})
		return
	}

	var inconsistent *balance.InconsistentUsageError
	if errors.As(err, &inconsistent) {
		slog.Error("inconsistent leave usage", "error", err)
		InternalServerError(w, "Leave usage is inconsistent with working days")
		return
	}

	var stateErr *leave.InvalidStateError
	if errors.As(err, &stateErr) {
		Conflict(w, stateErr.Error())
		return
	}

	switch {
	// Auth domain errors
	case errors.Is(err, auth.ErrInvalidCredentials):
		Unauthorized(w, err.Error())
	case errors.Is(err, auth.ErrInvalidToken):
		Unauthorized(w, "Invalid or expired token")
	case errors.Is(err, user.ErrAdminPrivilegeRequired):
		Forbidden(w, "Admin privilege required")
	case errors.Is(err, user.ErrEmployeeIDRequired):
		Forbidden(w, "Account is not linked to an employee")
	case errors.Is(err, user.ErrUserNotFound):
		NotFound(w, "User not found")

	// Employee domain errors
	case errors.Is(err, employee.ErrEmployeeNotFound):
		NotFound(w, "Employee not found")
	case errors.Is(err, employee.ErrUnauthorized):
		Forbidden(w, "Not allowed to access this employee")

	// Leave domain errors
	case errors.Is(err, leave.ErrLeaveRequestNotFound):
		NotFound(w, "Leave request not found")
	case errors.Is(err, leave.ErrApproverNotFound):
		UnprocessableEntity(w, "Assigned approver does not exist")
	case errors.Is(err, leave.ErrNoWorkingDays):
		UnprocessableEntity(w, "Requested period contains no working days")
	case errors.Is(err, leave.ErrNotAssignedApprover):
		Forbidden(w, "You are not the assigned approver for this leave request")
	case errors.Is(err, leave.ErrForbiddenRequest):
		Forbidden(w, "Not allowed to view this leave request")
	case errors.Is(err, leave.ErrInvalidState):
		Conflict(w, "Leave request is not awaiting this action")
	case errors.Is(err, leave.ErrLetterNotAvailable):
		Conflict(w, "Leave letter is only available for approved requests")
	case errors.Is(err, leave.ErrBalanceConflict):
		Conflict(w, "Leave balance was modified concurrently, please retry")
	case errors.Is(err, leave.ErrCorruptStatus):
		slog.Error("corrupt leave request status", "error", err)
		InternalServerError(w, "Leave request is in an inconsistent state")

	// Balance domain errors
	case errors.Is(err, balance.ErrInvalidYearKey), errors.Is(err, balance.ErrNegativeBalance):
		BadRequest(w, err.Error(), nil)

	case errors.Is(err, file.ErrUnsupportedFileType):
		BadRequest(w, err.Error(), nil)

	// Default
	default:
		slog.Error("unhandled error", "error", err)
		InternalServerError(w, "An unexpected error occurred")
	}
}
