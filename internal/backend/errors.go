package backend

import (
	"fmt"
	"time"
)

// StatusError is a non-2xx answer from the backend. Message is already
// suitable for showing to the user.
type StatusError struct {
	StatusCode int
	Message    string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("backend returned %d: %s", e.StatusCode, e.Message)
}

// TimeoutError means the backend did not answer within the configured timeout.
type TimeoutError struct {
	Timeout time.Duration
	Cause   error
}

func (e *TimeoutError) Error() string {
	return fmt.Sprintf("backend timed out after %s", e.Timeout)
}

func (e *TimeoutError) Unwrap() error {
	return e.Cause
}

// UnavailableError means the backend could not be reached at all.
type UnavailableError struct {
	URL   string
	Cause error
}

func (e *UnavailableError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("cannot connect to backend at %s: %v", e.URL, e.Cause)
	}
	return fmt.Sprintf("cannot connect to backend at %s", e.URL)
}

func (e *UnavailableError) Unwrap() error {
	return e.Cause
}

// InvalidResponseError means the backend answered 2xx with a body that is not
// a valid analysis result.
type InvalidResponseError struct {
	Message string
	Cause   error
}

func (e *InvalidResponseError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("invalid backend response: %s: %v", e.Message, e.Cause)
	}
	return fmt.Sprintf("invalid backend response: %s", e.Message)
}

func (e *InvalidResponseError) Unwrap() error {
	return e.Cause
}
