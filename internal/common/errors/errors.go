package errors

import (
	stderrors "errors"
	"fmt"
	"net/http"
)

type AppError struct {
	Code    string `json:"code"`
	Message string `json:"error"`
	Details string `json:"details,omitempty"`
	Status  int    `json:"-"`
}

func (e *AppError) Error() string {
	if e.Details == "" {
		return fmt.Sprintf("[%s] %s", e.Code, e.Message)
	}
	return fmt.Sprintf("[%s] %s: %s", e.Code, e.Message, e.Details)
}

// Common error codes
const (
	CodeValidation       = "VALIDATION_ERROR"
	CodeNotFound         = "NOT_FOUND"
	CodeUnauthorized     = "UNAUTHORIZED"
	CodeNotAuthenticated = "NOT_AUTHENTICATED"
	CodeForbidden        = "FORBIDDEN"
	CodeConflict         = "CONFLICT"
	CodeInternalError    = "INTERNAL_ERROR"
	CodeBadRequest       = "BAD_REQUEST"
	CodeUnprocessable    = "UNPROCESSABLE_ENTITY"
	CodeQueryFailed      = "QUERY_FAILED"
	CodeUpstream         = "UPSTREAM_ERROR"
	CodeRateLimited      = "RATE_LIMITED"
)

// MsgNotAuthenticated is returned whenever an operation runs without an identity.
const MsgNotAuthenticated = "User not authenticated"

func Validation(message string, details string) *AppError {
	return &AppError{Code: CodeValidation, Message: message, Details: details, Status: http.StatusBadRequest}
}

func NotFound(resource string) *AppError {
	return &AppError{Code: CodeNotFound, Message: fmt.Sprintf("%s not found", resource), Status: http.StatusNotFound}
}

func Unauthorized(message string) *AppError {
	return &AppError{Code: CodeUnauthorized, Message: message, Status: http.StatusUnauthorized}
}

func NotAuthenticated() *AppError {
	return &AppError{Code: CodeNotAuthenticated, Message: MsgNotAuthenticated, Status: http.StatusUnauthorized}
}

func Forbidden(message string) *AppError {
	return &AppError{Code: CodeForbidden, Message: message, Status: http.StatusForbidden}
}

func Conflict(message string) *AppError {
	return &AppError{Code: CodeConflict, Message: message, Status: http.StatusConflict}
}

func Internal(message string, details string) *AppError {
	return &AppError{Code: CodeInternalError, Message: message, Details: details, Status: http.StatusInternalServerError}
}

func BadRequest(message string) *AppError {
	return &AppError{Code: CodeBadRequest, Message: message, Status: http.StatusBadRequest}
}

func Unprocessable(message string, details string) *AppError {
	return &AppError{Code: CodeUnprocessable, Message: message, Details: details, Status: http.StatusUnprocessableEntity}
}

func RateLimited(details string) *AppError {
	return &AppError{Code: CodeRateLimited, Message: "Rate limit exceeded", Details: details, Status: http.StatusTooManyRequests}
}

// QueryFailed wraps a Record Store failure. The message is what callers see.
func QueryFailed(message string, err error) *AppError {
	details := ""
	if err != nil {
		details = err.Error()
	}
	return &AppError{Code: CodeQueryFailed, Message: message, Details: details, Status: http.StatusInternalServerError}
}

func Upstream(message string, details string) *AppError {
	return &AppError{Code: CodeUpstream, Message: message, Details: details, Status: http.StatusBadGateway}
}

// From returns err as an *AppError, wrapping anything else as internal.
func From(err error) *AppError {
	if err == nil {
		return nil
	}
	var appErr *AppError
	if stderrors.As(err, &appErr) {
		return appErr
	}
	return Internal("internal server error", err.Error())
}

// Is reports whether err carries the given code.
func Is(err error, code string) bool {
	var appErr *AppError
	return stderrors.As(err, &appErr) && appErr.Code == code
}
