// Package domainerrors carries the error taxonomy shared by every layer of
// the gateway. Services attach a Code to each failure so transports can map
// it to a response without inspecting message strings.
package domainerrors

import (
	"errors"
	"fmt"
	"net/http"
)

// Code classifies an error for callers. Codes are stable API; messages are not.
type Code string

const (
	CodeBadRequest   Code = "bad_request"
	CodeInvalidInput Code = "invalid_input"
	CodeValidation   Code = "validation_failed"
	CodeNotFound     Code = "not_found"
	CodeConflict     Code = "conflict"
	CodeUnauthorized Code = "unauthorized"
	CodeForbidden    Code = "forbidden"
	CodeTimeout      Code = "timeout"
	CodeInternal     Code = "internal_error"

	// Mission lifecycle codes. Kept distinct from the generic set so the
	// driver client can tell "re-enter the code" from "refresh the mission".
	CodeIllegalTransition      Code = "illegal_transition"
	CodeCompletionCodeRequired Code = "completion_code_required"
	CodeCompletionCodeMismatch Code = "completion_code_mismatch"
	CodeConcurrentModification Code = "concurrent_modification"
	CodeStorageUnavailable     Code = "storage_unavailable"
	CodeInvariantViolation     Code = "invariant_violation"
)

// GatewayError is the concrete error type produced by this package.
type GatewayError struct {
	Code    Code
	Message string
	cause   error
}

func (e GatewayError) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e GatewayError) Unwrap() error { return e.cause }

// New builds a coded error with no underlying cause.
func New(code Code, message string) error {
	return GatewayError{Code: code, Message: message}
}

// Wrap attaches a code and message to an underlying error, preserving the
// cause for errors.Is/errors.As chains.
func Wrap(err error, code Code, message string) error {
	return GatewayError{Code: code, Message: message, cause: err}
}

// HasCode reports whether err (or anything it wraps) carries the given code.
func HasCode(err error, code Code) bool {
	var gw GatewayError
	for {
		if errors.As(err, &gw) {
			if gw.Code == code {
				return true
			}
			err = gw.cause
			continue
		}
		return false
	}
}

// Is is an alias for HasCode kept for call-site readability.
func Is(err error, code Code) bool {
	return HasCode(err, code)
}

// CodeOf extracts the outermost code, defaulting to CodeInternal.
func CodeOf(err error) Code {
	var gw GatewayError
	if errors.As(err, &gw) {
		return gw.Code
	}
	return CodeInternal
}

// ToHTTPStatus maps a code to the HTTP status the transport layer returns.
func ToHTTPStatus(code Code) int {
	switch code {
	case CodeBadRequest, CodeInvalidInput, CodeValidation:
		return http.StatusBadRequest
	case CodeNotFound:
		return http.StatusNotFound
	case CodeConflict, CodeIllegalTransition, CodeConcurrentModification:
		return http.StatusConflict
	case CodeUnauthorized:
		return http.StatusUnauthorized
	case CodeForbidden:
		return http.StatusForbidden
	case CodeCompletionCodeRequired, CodeCompletionCodeMismatch:
		return http.StatusUnprocessableEntity
	case CodeTimeout:
		return http.StatusGatewayTimeout
	case CodeStorageUnavailable:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}
