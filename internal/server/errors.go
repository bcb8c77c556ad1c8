// Package server provides the HTTP front end that validates CV uploads and
// proxies them to the analysis backend.
package server

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/jonathan/resume-analyzer/internal/backend"
	"github.com/jonathan/resume-analyzer/internal/observability"
	"github.com/jonathan/resume-analyzer/internal/types"
	"github.com/jonathan/resume-analyzer/internal/upload"
)

// Messages returned for backend transport failures.
const (
	MsgTimeout         = "Request timeout - the backend took too long to respond"
	MsgInvalidResponse = "Invalid response from backend"
	msgUnavailableFmt  = "Cannot connect to backend at %s. Please ensure the backend is running."
)

// UnavailableMessage is the error text for a backend that cannot be reached.
func UnavailableMessage(backendURL string) string {
	return fmt.Sprintf(msgUnavailableFmt, backendURL)
}

// HTTPStatus returns the appropriate HTTP status code for an error
func HTTPStatus(err error) int {
	var (
		validationErr  *types.ValidationError
		requestErr     *upload.RequestError
		statusErr      *backend.StatusError
		timeoutErr     *backend.TimeoutError
		unavailableErr *backend.UnavailableError
		invalidErr     *backend.InvalidResponseError
	)

	switch {
	case errors.As(err, &validationErr):
		return http.StatusBadRequest
	case errors.As(err, &requestErr):
		return requestErr.StatusCode
	case errors.As(err, &statusErr):
		return statusErr.StatusCode
	case errors.As(err, &timeoutErr):
		return http.StatusGatewayTimeout
	case errors.As(err, &unavailableErr):
		return http.StatusServiceUnavailable
	case errors.As(err, &invalidErr):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

// ErrorBody builds the JSON error body for err. backendURL is named in the
// message when the backend could not be reached.
func ErrorBody(err error, backendURL string) types.ErrorResponse {
	var (
		validationErr  *types.ValidationError
		requestErr     *upload.RequestError
		statusErr      *backend.StatusError
		timeoutErr     *backend.TimeoutError
		unavailableErr *backend.UnavailableError
		invalidErr     *backend.InvalidResponseError
	)

	switch {
	case errors.As(err, &validationErr):
		return types.ErrorResponse{Error: validationErr.Message}
	case errors.As(err, &requestErr):
		return types.ErrorResponse{Error: requestErr.Message}
	case errors.As(err, &statusErr):
		return types.ErrorResponse{Error: statusErr.Message}
	case errors.As(err, &timeoutErr):
		return types.ErrorResponse{Error: MsgTimeout}
	case errors.As(err, &unavailableErr):
		resp := types.ErrorResponse{Error: UnavailableMessage(backendURL)}
		if unavailableErr.Cause != nil {
			resp.Details = unavailableErr.Cause.Error()
		}
		return resp
	case errors.As(err, &invalidErr):
		return types.ErrorResponse{Error: MsgInvalidResponse, Details: invalidErr.Error()}
	default:
		return types.ErrorResponse{Error: err.Error()}
	}
}

// backendOutcome labels err for the backend latency histogram.
func backendOutcome(err error) string {
	var (
		statusErr      *backend.StatusError
		timeoutErr     *backend.TimeoutError
		unavailableErr *backend.UnavailableError
	)

	switch {
	case err == nil:
		return observability.OutcomeSuccess
	case errors.As(err, &statusErr):
		return observability.OutcomeStatusError
	case errors.As(err, &timeoutErr):
		return observability.OutcomeTimeout
	case errors.As(err, &unavailableErr):
		return observability.OutcomeUnavailable
	default:
		return observability.OutcomeError
	}
}
