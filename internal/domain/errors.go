// Package domain contains the core business entities for the caixa ledger.
package domain

import (
	"errors"
	"fmt"
)

// Domain errors - these represent business rule violations.
// They are distinct from infrastructure errors (database, network, etc.).

var (
	// ===========================================
	// User Errors
	// ===========================================

	// ErrUserNotFound indicates the requested user does not exist.
	ErrUserNotFound = errors.New("user not found")

	// ErrUserAlreadyExists indicates a user with the same username exists.
	ErrUserAlreadyExists = errors.New("username already exists")

	// ErrInvalidUsername indicates the username shape is invalid.
	ErrInvalidUsername = errors.New("invalid username")

	// ===========================================
	// Transaction Errors
	// ===========================================

	// ErrTransactionNotFound indicates no transaction with that ID exists
	// for the requesting owner.
	ErrTransactionNotFound = errors.New("transaction not found")

	// ErrInvalidAmount indicates a negative or out-of-range amount.
	ErrInvalidAmount = errors.New("invalid amount")

	// ErrInvalidTransactionType indicates a type other than Income/Expense.
	ErrInvalidTransactionType = errors.New("invalid transaction type")

	// ErrInvalidOwner indicates a transaction without an owner.
	ErrInvalidOwner = errors.New("invalid owner")

	// ErrFieldTooLong indicates a free-text field exceeds its limit.
	ErrFieldTooLong = errors.New("field too long")

	// ErrInvalidDate indicates a malformed date filter.
	ErrInvalidDate = errors.New("invalid date")

	// ===========================================
	// Authorization Errors
	// ===========================================

	// ErrForbidden indicates the caller is authenticated but does not own
	// the resource.
	ErrForbidden = errors.New("forbidden")
)

// DomainError wraps a domain error with additional context.
type DomainError struct {
	// Err is the underlying domain error.
	Err error

	// Message provides additional context.
	Message string

	// Resource identifies the affected resource (e.g., username, field name).
	Resource string
}

// Error implements the error interface.
func (e *DomainError) Error() string {
	if e.Resource != "" {
		return fmt.Sprintf("%s: %s (%s)", e.Err.Error(), e.Message, e.Resource)
	}
	if e.Message != "" {
		return fmt.Sprintf("%s: %s", e.Err.Error(), e.Message)
	}
	return e.Err.Error()
}

// Unwrap returns the underlying error for errors.Is/errors.As.
func (e *DomainError) Unwrap() error {
	return e.Err
}

// NewDomainError creates a new DomainError with context.
func NewDomainError(err error, message, resource string) *DomainError {
	return &DomainError{
		Err:      err,
		Message:  message,
		Resource: resource,
	}
}

// IsValidationError reports whether err is a bad-input error that callers
// should surface as a 400.
func IsValidationError(err error) bool {
	return errors.Is(err, ErrInvalidAmount) ||
		errors.Is(err, ErrInvalidTransactionType) ||
		errors.Is(err, ErrInvalidOwner) ||
		errors.Is(err, ErrFieldTooLong) ||
		errors.Is(err, ErrInvalidDate) ||
		errors.Is(err, ErrInvalidUsername)
}
