package omsbridge

import (
	"errors"
	"fmt"
)

// ErrorKind is the only classification surfaced by adapters. Callers that
// need more detail inspect Cause.
type ErrorKind string

const KindError ErrorKind = "error"

var (
	// ErrOperationFailed matches every *Error via errors.Is.
	ErrOperationFailed = errors.New("oms operation failed")

	ErrBackendNotRegistered = errors.New("backend not registered")
)

// Error is the envelope every adapter failure is reshaped into.
type Error struct {
	Kind    ErrorKind
	Message string
	Cause   error
}

// NewError builds an adapter failure. message should be short and static.
func NewError(message string, cause error) *Error {
	return &Error{Kind: KindError, Message: message, Cause: cause}
}

func (e *Error) Error() string {
	if e.Cause == nil {
		return e.Message
	}
	return fmt.Sprintf("%s: %v", e.Message, e.Cause)
}

func (e *Error) Unwrap() error { return e.Cause }

func (e *Error) Is(target error) bool { return target == ErrOperationFailed }

// HTTPError is returned by the transport for any non-2xx response.
type HTTPError struct {
	Response *Response
}

func (e *HTTPError) Error() string {
	return fmt.Sprintf("request failed with status %d", e.Response.StatusCode)
}

// StatusCode returns the HTTP status of the failed call.
func (e *HTTPError) StatusCode() int { return e.Response.StatusCode }

// ServerError carries a 2xx response whose body the backend marked as failed.
type ServerError struct {
	Data []byte
}

func (e *ServerError) Error() string {
	const max = 256
	if len(e.Data) > max {
		return fmt.Sprintf("server reported an error: %s...", e.Data[:max])
	}
	return fmt.Sprintf("server reported an error: %s", e.Data)
}
