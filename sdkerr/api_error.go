package sdkerr

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
)

const (
	// TimeoutMessage is the message of every APIError produced by the request timer.
	TimeoutMessage = "Request timed out"
	// FallbackMessage is used when neither the body nor the status carries a message.
	FallbackMessage = "Request failed"
)

// APIError is the normalized record of a failed request.
//
// Status is the HTTP status code, or 0 when no response was received
// (timeout or transport failure).
type APIError struct {
	Status  int
	Message string
	// Details holds the parsed response body: a JSON value (map, slice, scalar),
	// the raw text for non-JSON responses, or nil.
	Details any
	URL     string
	Method  string

	kind  error
	cause error
}

func (e *APIError) Error() string {
	msg := fmt.Sprintf("%s %s: ", e.Method, e.URL)
	if e.Status > 0 {
		msg += fmt.Sprintf("%d ", e.Status)
	}
	msg += e.Message
	if e.cause != nil {
		msg += fmt.Sprintf(" (%v)", e.cause)
	}
	return msg
}

// Is lets errors.Is match the failure class: ErrTimeout, ErrAPIError or ErrRequestFailed.
func (e *APIError) Is(target error) bool {
	return e.kind != nil && errors.Is(e.kind, target)
}

func (e *APIError) Unwrap() error { return e.cause }

// IsTimeout reports whether the request was aborted by the client timeout.
func (e *APIError) IsTimeout() bool {
	return errors.Is(e.kind, ErrTimeout)
}

// NewTimeoutError reports a request aborted by the client timeout.
func NewTimeoutError(method, url string) *APIError {
	return &APIError{
		Status:  0,
		Message: TimeoutMessage,
		URL:     url,
		Method:  method,
		kind:    ErrTimeout,
	}
}

// NewTransportError reports a request that failed before any response arrived.
func NewTransportError(method, url string, cause error) *APIError {
	return &APIError{
		Status:  0,
		Message: FallbackMessage,
		URL:     url,
		Method:  method,
		kind:    ErrRequestFailed,
		cause:   cause,
	}
}

// NewHTTPError builds the error for a non-2xx response. statusText is the
// response's status line as reported by the transport, e.g. "404 Not Found".
// The message is taken from a string "message" field of a JSON object body,
// else from the reason phrase of statusText, else from the registered text
// for status, else FallbackMessage.
func NewHTTPError(method, url string, status int, statusText string, details any) *APIError {
	return &APIError{
		Status:  status,
		Message: messageFor(status, statusText, details),
		Details: details,
		URL:     url,
		Method:  method,
		kind:    ErrAPIError,
	}
}

func messageFor(status int, statusText string, details any) string {
	if obj, ok := details.(map[string]any); ok {
		if msg, ok := obj["message"].(string); ok && msg != "" {
			return msg
		}
	}
	if phrase := reasonPhrase(status, statusText); phrase != "" {
		return phrase
	}
	if text := http.StatusText(status); text != "" {
		return text
	}
	return FallbackMessage
}

// reasonPhrase strips the leading status code from a status line.
func reasonPhrase(status int, statusText string) string {
	phrase := strings.TrimSpace(statusText)
	if rest, ok := strings.CutPrefix(phrase, strconv.Itoa(status)); ok {
		phrase = strings.TrimSpace(rest)
	}
	return phrase
}

// AsAPIError unwraps err into an *APIError.
func AsAPIError(err error) (*APIError, bool) {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr, true
	}
	return nil, false
}
