package errors

import (
	"errors"
	"fmt"
	"net/http"
)

// Code is the stable machine-readable error code returned to clients.
type Code string

const (
	CodeNotFound           Code = "NOT_FOUND"
	CodeBadRequest         Code = "BAD_REQUEST"
	CodeInvalidCredentials Code = "INVALID_CREDENTIALS"
	CodeUnsupportedRole    Code = "UNSUPPORTED_ROLE"
	CodeForbidden          Code = "FORBIDDEN"
	CodeConflict           Code = "CONFLICT"
	CodeStorageUnavailable Code = "STORAGE_UNAVAILABLE"
	CodeNotificationFailed Code = "NOTIFICATION_FAILED"
)

// AppError carries a taxonomy code alongside the human message. The wrapped
// error is for logs only and never serialized.
type AppError struct {
	Code    Code   `json:"code"`
	Message string `json:"message"`
	Err     error  `json:"-"`
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// StatusCode maps the taxonomy onto HTTP statuses. Domain errors are 4xx,
// transient storage failures 503, notification failures 502.
func (e *AppError) StatusCode() int {
	switch e.Code {
	case CodeNotFound:
		return http.StatusNotFound
	case CodeInvalidCredentials:
		return http.StatusUnauthorized
	case CodeForbidden:
		return http.StatusForbidden
	case CodeConflict:
		return http.StatusConflict
	case CodeStorageUnavailable:
		return http.StatusServiceUnavailable
	case CodeNotificationFailed:
		return http.StatusBadGateway
	default:
		return http.StatusBadRequest
	}
}

func NotFound(resource string) *AppError {
	return &AppError{Code: CodeNotFound, Message: fmt.Sprintf("%s not found", resource)}
}

func BadRequest(message string, err error) *AppError {
	return &AppError{Code: CodeBadRequest, Message: message, Err: err}
}

// InvalidCredentials is deliberately a single fixed message for both unknown
// email and wrong password, so callers cannot probe for account existence.
func InvalidCredentials() *AppError {
	return &AppError{Code: CodeInvalidCredentials, Message: "wrong email or password"}
}

// InvalidCurrentPassword shares the INVALID_CREDENTIALS code but names the
// failing field: the caller is already authenticated here, so there is no
// enumeration surface to protect.
func InvalidCurrentPassword() *AppError {
	return &AppError{Code: CodeInvalidCredentials, Message: "current password is incorrect"}
}

func UnsupportedRole(role string) *AppError {
	return &AppError{Code: CodeUnsupportedRole, Message: fmt.Sprintf("unsupported login type %q", role)}
}

func Forbidden(message string) *AppError {
	return &AppError{Code: CodeForbidden, Message: message}
}

func Conflict(message string) *AppError {
	return &AppError{Code: CodeConflict, Message: message}
}

func Storage(err error) *AppError {
	return &AppError{Code: CodeStorageUnavailable, Message: "storage unavailable", Err: err}
}

func NotificationFailed(message string, err error) *AppError {
	return &AppError{Code: CodeNotificationFailed, Message: message, Err: err}
}

// AsAppError unwraps err to the first AppError in its chain.
func AsAppError(err error) (*AppError, bool) {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr, true
	}
	return nil, false
}
