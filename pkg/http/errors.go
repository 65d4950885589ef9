package http

import (
	"fmt"
	"net/http"
)

// Error codes returned in the envelope.
const (
	CodeBadRequest   = "ERR_BAD_REQUEST"
	CodeUnauthorized = "ERR_UNAUTHORIZED"
	CodeRateLimited  = "ERR_RATE_LIMITED"
	CodeNoFallback   = "ERR_NO_FALLBACK"
	CodeInternal     = "ERR_INTERNAL"
)

// AppError is an error the API reports to its caller with a fixed status.
type AppError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Status  int    `json:"-"`
	Err     error  `json:"-"`
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

func (e *AppError) Unwrap() error { return e.Err }

// WithError attaches the cause. It is logged, never rendered.
func (e *AppError) WithError(err error) *AppError {
	e.Err = err
	return e
}

func newAppError(code string, status int, message string) *AppError {
	return &AppError{Code: code, Message: message, Status: status}
}

func BadRequestError(message string) *AppError {
	return newAppError(CodeBadRequest, http.StatusBadRequest, message)
}

func BadRequestErrorf(format string, a ...any) *AppError {
	return BadRequestError(fmt.Sprintf(format, a...))
}

func UnauthorizedError(message string) *AppError {
	return newAppError(CodeUnauthorized, http.StatusUnauthorized, message)
}

func TooManyRequestsError(message string) *AppError {
	return newAppError(CodeRateLimited, http.StatusTooManyRequests, message)
}

// UnavailableError reports a report that has neither fresh nor cached data.
func UnavailableError(message string) *AppError {
	return newAppError(CodeNoFallback, http.StatusServiceUnavailable, message)
}

func InternalError(message string) *AppError {
	return newAppError(CodeInternal, http.StatusInternalServerError, message)
}
