package upload

import "fmt"

// RequestError is an inbound request that could not be read as a CV upload.
// StatusCode is the HTTP status to answer with.
type RequestError struct {
	StatusCode int
	Message    string
	Cause      error
}

func (e *RequestError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("upload error: %s: %v", e.Message, e.Cause)
	}
	return fmt.Sprintf("upload error: %s", e.Message)
}

func (e *RequestError) Unwrap() error {
	return e.Cause
}

// InspectError is returned when a CV cannot be opened as a PDF.
type InspectError struct {
	Message string
	Cause   error
}

func (e *InspectError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("pdf inspection failed: %s: %v", e.Message, e.Cause)
	}
	return fmt.Sprintf("pdf inspection failed: %s", e.Message)
}

func (e *InspectError) Unwrap() error {
	return e.Cause
}
