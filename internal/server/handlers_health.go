package server

import (
	"net/http"
)

// handleHealth returns server health status
func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	s.jsonResponse(w, http.StatusOK, map[string]string{"status": "ok"})
}

// handleBackendHealth reports whether the analysis backend answers
func (s *Server) handleBackendHealth(w http.ResponseWriter, r *http.Request) {
	info, err := s.backend.Health(r.Context())
	if err != nil {
		body := ErrorBody(err, s.backendURL)
		resp := map[string]any{
			"status":      "unavailable",
			"backend_url": s.backendURL,
			"error":       body.Error,
		}
		if body.Details != "" {
			resp["details"] = body.Details
		}
		status := HTTPStatus(err)
		if status < http.StatusInternalServerError {
			status = http.StatusBadGateway
		}
		s.jsonResponse(w, status, resp)
		return
	}

	s.jsonResponse(w, http.StatusOK, map[string]any{
		"status":      "ok",
		"backend_url": s.backendURL,
		"backend":     info,
	})
}
