package apiclient

import (
	"errors"
	"fmt"
)

// Transport-level codes attached to APIError when the server did not supply one.
const (
	CodeBadRequest  = "ERR_BAD_REQUEST"  // 4xx response
	CodeBadResponse = "ERR_BAD_RESPONSE" // 5xx response
	CodeNetwork     = "ERR_NETWORK"
	CodeTimeout     = "ETIMEDOUT"
	CodeCanceled    = "ERR_CANCELED"
)

// NetworkErrorMessage is the message of every APIError raised when a request
// was sent but no response came back.
const NetworkErrorMessage = "Network error: Unable to reach server"

// ErrNotInitialized is returned by Instance before Initialize has been called.
var ErrNotInitialized = errors.New("apiclient: client not initialized, call apiclient.Initialize first")

// APIError represents a failed HTTP exchange: either a non-2xx response
// (Status > 0) or a request that never got a response (Status == 0).
type APIError struct {
	Message string
	Status  int
	Code    string
	Body    []byte
	Err     error
}

func (e *APIError) Error() string {
	if e == nil {
		return "<nil>"
	}
	if e.Status > 0 {
		return fmt.Sprintf("api error (status %d): %s", e.Status, e.Message)
	}
	if e.Err != nil {
		return fmt.Sprintf("api error: %s (%v)", e.Message, e.Err)
	}
	return "api error: " + e.Message
}

// Unwrap returns the transport error for network failures.
func (e *APIError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// HasResponse reports whether the server answered.
func (e *APIError) HasResponse() bool { return e != nil && e.Status > 0 }

// ValidationError means the server answered successfully but the payload did
// not match the expected schema.
type ValidationError struct {
	Message string
	Detail  error
}

func (e *ValidationError) Error() string {
	if e == nil {
		return "<nil>"
	}
	if e.Detail != nil {
		return e.Message + ": " + e.Detail.Error()
	}
	return e.Message
}

// Unwrap exposes the schema engine's failure.
func (e *ValidationError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Detail
}

// AsAPIError is a shorthand for errors.As with *APIError.
func AsAPIError(err error) (*APIError, bool) {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr, true
	}
	return nil, false
}

// StatusOf returns the HTTP status carried by err, or 0.
func StatusOf(err error) int {
	if apiErr, ok := AsAPIError(err); ok {
		return apiErr.Status
	}
	return 0
}
