// errors/audit_errors.go
package errors

import "errors"

var (
	ErrAuditLogNotFound  = errors.New("audit log not found")
	ErrRuleNotFound      = errors.New("alert rule not found")
	ErrRuleConflict      = errors.New("alert rule conflict")
	ErrDatabaseOperation = errors.New("database operation failed")
	ErrInternalServer    = errors.New("internal server error")
	ErrUnauthorized      = errors.New("missing or invalid Tracebit key")
	ErrRateLimited       = errors.New("rate limit exceeded")
)
