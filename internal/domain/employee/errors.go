package employee

import "errors"

var (
	ErrEmployeeNotFound    = errors.New("employee not found")
	ErrUnauthorized        = errors.New("unauthorized to access this employee")
	ErrBalanceVersionStale = errors.New("leave balance version is stale")
)
