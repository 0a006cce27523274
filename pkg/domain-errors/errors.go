// Package dErrors defines coded domain errors. A Code classifies an error
// for callers and for the HTTP layer; the message stays human-readable.
package dErrors

import (
	"errors"
	"fmt"
	"net/http"
)

// Code classifies a domain error.
type Code string

const (
	CodeInvalidInput Code = "INVALID_INPUT"
	CodeNotFound     Code = "NOT_FOUND"
	CodeConflict     Code = "CONFLICT"
	CodeUnauthorized Code = "UNAUTHORIZED"
	CodePermission   Code = "PERMISSION_DENIED"
	CodeTimeout      Code = "TIMEOUT"
	CodeInternal     Code = "INTERNAL"

	// Privilege-protection failures.
	CodeInvalidSession    Code = "INVALID_SESSION"
	CodeTokenMismatch     Code = "TOKEN_MISMATCH"
	CodeExpiredSession    Code = "EXPIRED_SESSION"
	CodeIdentityMismatch  Code = "IDENTITY_MISMATCH"
	CodeConflictDetected  Code = "CONFLICT_DETECTED"
	CodeEncryptionFailure Code = "ENCRYPTION_FAILURE"
	CodeAuditWriteFailure Code = "AUDIT_WRITE_FAILURE"
)

// Error is a domain error with a classification code. Wrapped causes are
// preserved for errors.Is / errors.As.
type Error struct {
	Code    Code
	Message string
	cause   error
}

func (e *Error) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.cause)
	}
	return e.Message
}

func (e *Error) Unwrap() error { return e.cause }

// New builds a domain error with the given code and message.
func New(code Code, message string) error {
	return &Error{Code: code, Message: message}
}

// Newf builds a domain error with a formatted message.
func Newf(code Code, format string, args ...any) error {
	return &Error{Code: code, Message: fmt.Sprintf(format, args...)}
}

// Wrap attaches a code and message to an underlying error. If the cause
// already carries the same code, it is returned unchanged so the original
// message survives.
func Wrap(err error, code Code, message string) error {
	if err == nil {
		return nil
	}
	if HasCode(err, code) {
		return err
	}
	return &Error{Code: code, Message: message, cause: err}
}

// HasCode reports whether any error in the chain carries the given code.
func HasCode(err error, code Code) bool {
	return CodeOf(err) == code
}

// CodeOf returns the code of the outermost domain error in the chain, or
// CodeInternal when the chain carries none.
func CodeOf(err error) Code {
	var domainErr *Error
	if errors.As(err, &domainErr) {
		return domainErr.Code
	}
	return CodeInternal
}

// Is reports whether target appears in err's chain.
func Is(err, target error) bool { return errors.Is(err, target) }

// ToHTTPStatus maps a domain error to the status the HTTP layer returns.
// Privilege denials map to 403 rather than 401: the caller is known, the
// action is refused.
func ToHTTPStatus(err error) int {
	switch CodeOf(err) {
	case CodeInvalidInput:
		return http.StatusBadRequest
	case CodeNotFound:
		return http.StatusNotFound
	case CodeConflict, CodeConflictDetected:
		return http.StatusConflict
	case CodeUnauthorized, CodeInvalidSession, CodeTokenMismatch, CodeExpiredSession:
		return http.StatusUnauthorized
	case CodePermission, CodeIdentityMismatch:
		return http.StatusForbidden
	case CodeTimeout:
		return http.StatusGatewayTimeout
	default:
		return http.StatusInternalServerError
	}
}
