package domain

import "fmt"

// Error types for consistent error handling across the finance engine.

// ErrNotFound indicates a resource was not found.
type ErrNotFound struct {
	Resource string
	ID       string
}

func (e *ErrNotFound) Error() string {
	return fmt.Sprintf("%s not found: %s", e.Resource, e.ID)
}

// ErrExternalService indicates a failure in an external service call.
type ErrExternalService struct {
	Service string
	Err     error
}

func (e *ErrExternalService) Error() string {
	return fmt.Sprintf("external service error [%s]: %v", e.Service, e.Err)
}

func (e *ErrExternalService) Unwrap() error {
	return e.Err
}

// ErrTimeout indicates an operation exceeded its deadline.
type ErrTimeout struct {
	Operation string
}

func (e *ErrTimeout) Error() string {
	return fmt.Sprintf("operation timed out: %s", e.Operation)
}

// ErrCircuitOpen indicates the circuit breaker is open.
type ErrCircuitOpen struct {
	Service string
}

func (e *ErrCircuitOpen) Error() string {
	return fmt.Sprintf("circuit breaker open for service: %s", e.Service)
}

// ErrValidation indicates a validation error (bad input).
type ErrValidation struct {
	Field   string
	Message string
}

func (e *ErrValidation) Error() string {
	return fmt.Sprintf("validation error on '%s': %s", e.Field, e.Message)
}

// ErrConflict indicates a concurrent modification was detected: the row
// changed between the read and the conditional write, and retries were
// exhausted.
type ErrConflict struct {
	Resource string
	ID       string
}

func (e *ErrConflict) Error() string {
	return fmt.Sprintf("concurrent modification on %s: %s", e.Resource, e.ID)
}

// ErrPartialFailure indicates a multi-step flow failed after one or more
// steps had already been committed. CompletedStep names the last step that
// succeeded so callers (and operators) know what state the data was left in.
type ErrPartialFailure struct {
	Operation     string
	CompletedStep string
	Err           error
}

func (e *ErrPartialFailure) Error() string {
	return fmt.Sprintf("partial failure in %s (completed: %s): %v", e.Operation, e.CompletedStep, e.Err)
}

func (e *ErrPartialFailure) Unwrap() error {
	return e.Err
}

// ErrUnauthorized indicates invalid credentials or token.
type ErrUnauthorized struct {
	Message string
}

func (e *ErrUnauthorized) Error() string {
	if e.Message != "" {
		return e.Message
	}
	return "unauthorized"
}

// ErrForbidden indicates the caller lacks permission for the operation.
type ErrForbidden struct {
	Action string
}

func (e *ErrForbidden) Error() string {
	return fmt.Sprintf("forbidden: %s", e.Action)
}
