// Package service provides business logic services for the caixa ledger.
package service

import (
	"errors"

	"github.com/sinuca-magalhaes/caixa/internal/auth"
)

// Common service errors.
var (
	// User errors
	ErrInvalidCredentials = errors.New("incorrect username or password")
	ErrInvalidPassword    = errors.New("invalid password")
	ErrTooManyAttempts    = errors.New("too many failed login attempts, try again later")

	// ErrUnauthorized is returned by Authenticate for every token problem.
	ErrUnauthorized = auth.ErrUnauthorized

	// Report errors
	ErrReportTooLarge   = errors.New("report exceeds the maximum number of transactions")
	ErrReportInProgress = errors.New("a report for this user is already being generated")

	// General errors
	ErrInternalError = errors.New("internal server error")
)
