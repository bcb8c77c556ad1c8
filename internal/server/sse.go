package server

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/jonathan/resume-analyzer/internal/types"
)

// Events sent on /api/analyze/stream.
const (
	EventStarted = "started"
	EventWaiting = "waiting"
	EventResult  = "result"
	EventError   = "error"
)

// SSEWriter helps write Server-Sent Events
type SSEWriter struct {
	w       http.ResponseWriter
	flusher http.Flusher
}

// NewSSEWriter creates a new SSE writer
func NewSSEWriter(w http.ResponseWriter) (*SSEWriter, error) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		return nil, fmt.Errorf("streaming not supported")
	}

	// Set SSE headers
	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("X-Accel-Buffering", "no")

	return &SSEWriter{w: w, flusher: flusher}, nil
}

// WriteEvent sends an SSE event
func (s *SSEWriter) WriteEvent(event string, data any) error {
	jsonData, err := json.Marshal(data)
	if err != nil {
		return err
	}

	if _, err := fmt.Fprintf(s.w, "event: %s\n", event); err != nil {
		return err
	}
	if _, err := fmt.Fprintf(s.w, "data: %s\n\n", jsonData); err != nil {
		return err
	}
	s.flusher.Flush()
	return nil
}

// StreamError is the payload of an error event. Status is the code the
// plain JSON endpoint would have answered with.
type StreamError struct {
	Status int `json:"status"`
	types.ErrorResponse
}

// WriteError sends an error event
func (s *SSEWriter) WriteError(status int, body types.ErrorResponse) {
	s.WriteEvent(EventError, StreamError{Status: status, ErrorResponse: body}) //nolint:errcheck
}

// WriteResult sends the final analysis
func (s *SSEWriter) WriteResult(result *types.AnalysisResponse) {
	s.WriteEvent(EventResult, result) //nolint:errcheck
}
