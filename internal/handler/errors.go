// Package handler provides the HTTP API for the caixa ledger.
package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/rs/zerolog"

	"github.com/sinuca-magalhaes/caixa/internal/auth"
	"github.com/sinuca-magalhaes/caixa/internal/domain"
	"github.com/sinuca-magalhaes/caixa/internal/service"
)

// APIError is the JSON error body returned by every endpoint.
type APIError struct {
	Code           string `json:"code"`
	Message        string `json:"message"`
	HTTPStatusCode int    `json:"-"`
}

// Error implements the error interface.
func (e APIError) Error() string {
	return e.Code + ": " + e.Message
}

// Error kinds.
const (
	CodeValidation        = "ValidationError"
	CodeDuplicateUsername = "DuplicateUsername"
	CodeReportTooLarge    = "ReportTooLarge"
	CodeUnauthorized      = "Unauthorized"
	CodeForbidden         = "Forbidden"
	CodeNotFound          = "NotFound"
	CodeTooManyRequests   = "TooManyRequests"
	CodeInternal          = "InternalError"
)

// Common errors.
var (
	ErrInternal = APIError{
		Code:           CodeInternal,
		Message:        "internal server error",
		HTTPStatusCode: http.StatusInternalServerError,
	}

	ErrRateLimited = APIError{
		Code:           CodeTooManyRequests,
		Message:        "rate limit exceeded",
		HTTPStatusCode: http.StatusTooManyRequests,
	}

	ErrNotFoundRoute = APIError{
		Code:           CodeNotFound,
		Message:        "the requested resource does not exist",
		HTTPStatusCode: http.StatusNotFound,
	}

	ErrMethodNotAllowed = APIError{
		Code:           "MethodNotAllowed",
		Message:        "the specified method is not allowed against this resource",
		HTTPStatusCode: http.StatusMethodNotAllowed,
	}
)

func validationError(message string) APIError {
	return APIError{Code: CodeValidation, Message: message, HTTPStatusCode: http.StatusBadRequest}
}

// mapError converts a service or domain error into an APIError.
// Unknown errors become ErrInternal; their text never reaches the client.
func mapError(err error) APIError {
	var apiErr APIError
	switch {
	case errors.As(err, &apiErr):
		return apiErr
	case errors.Is(err, domain.ErrUserAlreadyExists):
		return APIError{Code: CodeDuplicateUsername, Message: "username already registered", HTTPStatusCode: http.StatusBadRequest}
	case errors.Is(err, service.ErrInvalidPassword), domain.IsValidationError(err):
		return validationError(err.Error())
	case errors.Is(err, service.ErrReportTooLarge):
		return APIError{Code: CodeReportTooLarge, Message: err.Error(), HTTPStatusCode: http.StatusBadRequest}
	case errors.Is(err, service.ErrInvalidCredentials):
		return APIError{Code: CodeUnauthorized, Message: service.ErrInvalidCredentials.Error(), HTTPStatusCode: http.StatusUnauthorized}
	case errors.Is(err, auth.ErrUnauthorized):
		return APIError{Code: CodeUnauthorized, Message: auth.ErrUnauthorized.Error(), HTTPStatusCode: http.StatusUnauthorized}
	case errors.Is(err, domain.ErrForbidden):
		return APIError{Code: CodeForbidden, Message: "not allowed to access this transaction", HTTPStatusCode: http.StatusForbidden}
	case errors.Is(err, domain.ErrTransactionNotFound), errors.Is(err, domain.ErrUserNotFound):
		return APIError{Code: CodeNotFound, Message: err.Error(), HTTPStatusCode: http.StatusNotFound}
	case errors.Is(err, service.ErrTooManyAttempts), errors.Is(err, service.ErrReportInProgress):
		return APIError{Code: CodeTooManyRequests, Message: err.Error(), HTTPStatusCode: http.StatusTooManyRequests}
	default:
		return ErrInternal
	}
}

// writeJSON writes v with the given status.
func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// writeError writes an APIError response.
func writeError(w http.ResponseWriter, apiErr APIError) {
	if apiErr.HTTPStatusCode == http.StatusUnauthorized {
		w.Header().Set("WWW-Authenticate", "Bearer")
	}
	writeJSON(w, apiErr.HTTPStatusCode, apiErr)
}

// handleError logs err when it is a server fault and writes the mapped response.
func handleError(w http.ResponseWriter, logger zerolog.Logger, err error, msg string) {
	apiErr := mapError(err)
	if apiErr.HTTPStatusCode >= http.StatusInternalServerError {
		logger.Error().Err(err).Msg(msg)
	} else {
		logger.Debug().Err(err).Str("code", apiErr.Code).Msg(msg)
	}
	writeError(w, apiErr)
}
