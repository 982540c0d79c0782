package model

import "fmt"

// ErrorCode represents a structured API error code.
type ErrorCode string

const (
	ErrValidation ErrorCode = "VALIDATION_ERROR"
	ErrNotFound   ErrorCode = "NOT_FOUND"
	ErrInternal   ErrorCode = "INTERNAL_ERROR"
)

// APIError is a structured error returned by the HTTP API.
type APIError struct {
	Code    ErrorCode `json:"code"`
	Message string    `json:"message"`
}

func (e *APIError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// NewNotFoundError creates a NOT_FOUND APIError.
func NewNotFoundError(resource, id string) *APIError {
	return &APIError{
		Code:    ErrNotFound,
		Message: fmt.Sprintf("%s '%s' not found", resource, id),
	}
}

// ContractError reports a scheduler contract violation: a generator emitted
// an operation the current context cannot legally dispatch. These indicate
// a defect that would corrupt the history's meaning, so they are fatal.
type ContractError struct {
	Op     Op
	Reason string
}

func (e *ContractError) Error() string {
	return fmt.Sprintf("scheduler contract violation: %s (op %v)", e.Reason, e.Op)
}
