// Package gwerr defines the gateway's error taxonomy. Every error that
// crosses a component boundary carries a Code so callers (in particular the
// HTTP layer) can decide status and retryability without string matching.
package gwerr

import (
	"errors"
	"fmt"
	"net/http"
)

// Code classifies a gateway error.
type Code string

const (
	// CodeMalformedInput indicates an unparseable transaction or envelope shape.
	CodeMalformedInput Code = "MALFORMED_INPUT"

	// CodeInvalidEnvelope indicates a missing signer field, an algorithm
	// mismatch, or a signature verification failure.
	CodeInvalidEnvelope Code = "INVALID_ENVELOPE"

	// CodeUnsupportedFormat indicates a transaction encoding the codec does
	// not recognize.
	CodeUnsupportedFormat Code = "UNSUPPORTED_FORMAT"

	// CodeUpstreamUnavailable indicates the consensus node RPC timed out or
	// refused the connection.
	CodeUpstreamUnavailable Code = "UPSTREAM_UNAVAILABLE"

	// CodePersistence indicates a chain store write failure.
	CodePersistence Code = "PERSISTENCE"

	// CodeConfig indicates invalid gateway configuration.
	CodeConfig Code = "CONFIG"
)

// GatewayError is the error type returned by gateway components.
type GatewayError struct {
	Code    Code
	Message string
	Cause   error
}

// New creates a GatewayError without a cause.
func New(code Code, message string) *GatewayError {
	return &GatewayError{Code: code, Message: message}
}

// Newf creates a GatewayError with a formatted message.
func Newf(code Code, format string, args ...any) *GatewayError {
	return &GatewayError{Code: code, Message: fmt.Sprintf(format, args...)}
}

// Wrap creates a GatewayError wrapping an underlying cause.
func Wrap(code Code, message string, cause error) *GatewayError {
	return &GatewayError{Code: code, Message: message, Cause: cause}
}

// Error implements the error interface.
func (e *GatewayError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap returns the underlying cause.
func (e *GatewayError) Unwrap() error {
	return e.Cause
}

// HTTPStatus maps the error code to the REST surface's status code.
func (e *GatewayError) HTTPStatus() int {
	switch e.Code {
	case CodeMalformedInput, CodeInvalidEnvelope, CodeUnsupportedFormat:
		return http.StatusBadRequest
	case CodeUpstreamUnavailable, CodePersistence:
		return http.StatusInternalServerError
	default:
		return http.StatusInternalServerError
	}
}

// IsRetryable reports whether the caller may retry the same request
// unchanged. Envelope failures need a new signature, format failures a new
// encoding; only upstream availability is transient.
func (e *GatewayError) IsRetryable() bool {
	return e.Code == CodeUpstreamUnavailable
}

// CodeOf extracts the Code from an error chain, or "" if no GatewayError is
// present.
func CodeOf(err error) Code {
	var ge *GatewayError
	if errors.As(err, &ge) {
		return ge.Code
	}
	return ""
}

// HTTPStatus resolves the status code for an arbitrary error. Errors outside
// the taxonomy are treated as internal.
func HTTPStatus(err error) int {
	var ge *GatewayError
	if errors.As(err, &ge) {
		return ge.HTTPStatus()
	}
	return http.StatusInternalServerError
}
