// Package sdkerr holds the error types shared by every package of the client:
// SDKError for local failures and APIError for failed requests.
package sdkerr

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrValidation indicates invalid caller input (bad params, unsupported method, unencodable body).
	ErrValidation = errors.New("validation error")
	// ErrConfiguration indicates an invalid client configuration.
	ErrConfiguration = errors.New("configuration error")
	// ErrRequestFailed indicates the request never produced a response.
	ErrRequestFailed = errors.New("request failed")
	// ErrAPIError indicates the server answered with a non-2xx status.
	ErrAPIError = errors.New("api error")
	// ErrDecodeError indicates a response body could not be decoded into the requested type.
	ErrDecodeError = errors.New("decode error")
	// ErrTimeout indicates no response arrived within the configured timeout.
	ErrTimeout = errors.New("request timed out")
	// ErrDisposed indicates an operation on a binding that was already closed.
	ErrDisposed = errors.New("binding disposed")
)

// SDKError describes a failure raised by the client itself rather than by the server.
type SDKError struct {
	kind    error
	message string
	cause   error
	op      string
	subsys  string
}

// New is shorthand for NewSDKError().WithSubsys(subsys).WithOp(op).WithKind(kind).
func New(subsys, op string, kind error) *SDKError {
	return &SDKError{subsys: subsys, op: op, kind: kind}
}

// NewSDKError creates an empty SDKError to be filled by the With* setters.
func NewSDKError() *SDKError {
	return &SDKError{}
}

// Error returns the error message.
func (e *SDKError) Error() string {
	var parts []string

	if e.subsys != "" {
		parts = append(parts, fmt.Sprintf("subsys: %s", e.subsys))
	}
	if e.op != "" {
		parts = append(parts, fmt.Sprintf("op: %s", e.op))
	}
	if e.kind != nil {
		parts = append(parts, fmt.Sprintf("kind: %s", e.kind))
	}
	if e.message != "" {
		parts = append(parts, fmt.Sprintf("msg: %s", e.message))
	}
	if e.cause != nil {
		parts = append(parts, fmt.Sprintf("cause: %s", e.cause))
	}

	return strings.Join(parts, " | ")
}

// Is matches target against the kind first, then the cause chain.
func (e *SDKError) Is(target error) bool {
	if e.kind != nil && errors.Is(e.kind, target) {
		return true
	}
	return e.cause != nil && errors.Is(e.cause, target)
}

// As looks for target in the kind, then the cause chain.
func (e *SDKError) As(target any) bool {
	if e.kind != nil && errors.As(e.kind, target) {
		return true
	}
	return e.cause != nil && errors.As(e.cause, target)
}

func (e *SDKError) Unwrap() error { return e.cause }

func (e *SDKError) Kind() error     { return e.kind }
func (e *SDKError) Message() string { return e.message }
func (e *SDKError) Cause() error    { return e.cause }
func (e *SDKError) Op() string      { return e.op }
func (e *SDKError) Subsys() string  { return e.subsys }

// WithKind sets the kind of the error.
func (e *SDKError) WithKind(kind error) *SDKError {
	e.kind = kind
	return e
}

// WithMessage sets the message of the error.
func (e *SDKError) WithMessage(msg string) *SDKError {
	e.message = msg
	return e
}

// WithMessagef sets a formatted message.
func (e *SDKError) WithMessagef(format string, args ...any) *SDKError {
	e.message = fmt.Sprintf(format, args...)
	return e
}

// WithCause sets the cause of the error.
func (e *SDKError) WithCause(err error) *SDKError {
	e.cause = err
	return e
}

// WithOp sets the operation of the error.
func (e *SDKError) WithOp(op string) *SDKError {
	e.op = op
	return e
}

// WithSubsys sets the subsystem of the error.
func (e *SDKError) WithSubsys(subsys string) *SDKError {
	e.subsys = subsys
	return e
}
