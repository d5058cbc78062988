package domain

import (
	"errors"
	"fmt"
)

var (
	ErrInvalidInput      = errors.New("invalid input")
	ErrNumericOverflow   = errors.New("calculation overflowed")
	ErrNoViableTerm      = errors.New("no term satisfies the maximum monthly payment")
	ErrInvalidPreference = errors.New("invalid preference")
)

// Machine-readable error codes.
const (
	CodeValidation = "VALIDATION_ERROR"
	CodeOverflow   = "NUMERIC_OVERFLOW"
	CodeNoViable   = "NO_VIABLE_TERM"
	CodeInternal   = "INTERNAL_ERROR"
)

// DomainError wraps an error with a code the HTTP layer can map to a status.
type DomainError struct {
	Code    string
	Message string
	Err     error
}

func (e *DomainError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

func (e *DomainError) Unwrap() error {
	return e.Err
}

func NewDomainError(code, message string, err error) *DomainError {
	return &DomainError{Code: code, Message: message, Err: err}
}
