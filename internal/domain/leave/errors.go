package leave

import (
	"errors"
	"fmt"
)

var (
	ErrLeaveRequestNotFound = errors.New("leave request not found")
	ErrInvalidState         = errors.New("leave request is not awaiting this action")
	ErrNotAssignedApprover  = errors.New("actor is not the assigned approver for this leave request")
	ErrForbiddenRequest     = errors.New("not allowed to view this leave request")
	ErrCorruptStatus        = errors.New("leave request has an impossible status combination")
	ErrInvalidLeaveType     = errors.New("unknown leave type")
	ErrNoWorkingDays        = errors.New("requested period contains no working days")
	ErrLetterNotAvailable   = errors.New("leave letter is only available for approved requests")
	ErrApproverNotFound     = errors.New("assigned approver does not exist")
	ErrBalanceConflict      = errors.New("leave balance was modified concurrently, please retry")
)

// InvalidStateError is returned when a transition is attempted from the wrong stage.
type InvalidStateError struct {
	Stage  Stage
	Action string
}

func (e *InvalidStateError) Error() string {
	return fmt.Sprintf("cannot %s: request is %s", e.Action, e.Stage)
}

func (e *InvalidStateError) Is(target error) bool {
	return target == ErrInvalidState
}
