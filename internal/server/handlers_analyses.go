package server

import (
	"net/http"
	"strconv"

	"github.com/google/uuid"
	"github.com/jonathan/resume-analyzer/internal/db"
	"github.com/rs/zerolog"
)

// MsgHistoryDisabled is returned by the history routes when no database is configured.
const MsgHistoryDisabled = "Analysis history is not enabled"

// ListAnalysesResponse is the body of GET /api/analyses
type ListAnalysesResponse struct {
	Analyses []db.AnalysisSummary `json:"analyses"`
	Limit    int                  `json:"limit"`
	Offset   int                  `json:"offset"`
}

// handleListAnalyses lists stored analyses, newest first
func (s *Server) handleListAnalyses(w http.ResponseWriter, r *http.Request) {
	if s.store == nil {
		s.errorResponse(w, http.StatusServiceUnavailable, MsgHistoryDisabled)
		return
	}

	limit, err := queryInt(r, "limit")
	if err != nil {
		s.errorResponse(w, http.StatusBadRequest, "Invalid limit")
		return
	}
	offset, err := queryInt(r, "offset")
	if err != nil {
		s.errorResponse(w, http.StatusBadRequest, "Invalid offset")
		return
	}
	limit, offset = db.NormalizePage(limit, offset)

	analyses, err := s.store.ListAnalyses(r.Context(), limit, offset)
	if err != nil {
		zerolog.Ctx(r.Context()).Error().Err(err).Msg("Failed to list analyses")
		s.errorResponse(w, http.StatusInternalServerError, "Failed to list analyses")
		return
	}
	if analyses == nil {
		analyses = []db.AnalysisSummary{}
	}

	s.jsonResponse(w, http.StatusOK, ListAnalysesResponse{
		Analyses: analyses,
		Limit:    limit,
		Offset:   offset,
	})
}

// handleGetAnalysis returns one stored analysis
func (s *Server) handleGetAnalysis(w http.ResponseWriter, r *http.Request) {
	if s.store == nil {
		s.errorResponse(w, http.StatusServiceUnavailable, MsgHistoryDisabled)
		return
	}

	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		s.errorResponse(w, http.StatusBadRequest, "Invalid analysis ID")
		return
	}

	analysis, err := s.store.GetAnalysis(r.Context(), id)
	if err != nil {
		zerolog.Ctx(r.Context()).Error().Err(err).Str("analysis_id", id.String()).Msg("Failed to get analysis")
		s.errorResponse(w, http.StatusInternalServerError, "Failed to get analysis")
		return
	}
	if analysis == nil {
		s.errorResponse(w, http.StatusNotFound, "Analysis not found")
		return
	}

	s.jsonResponse(w, http.StatusOK, analysis)
}

// queryInt parses an optional integer query parameter; absent means 0.
func queryInt(r *http.Request, name string) (int, error) {
	v := r.URL.Query().Get(name)
	if v == "" {
		return 0, nil
	}
	return strconv.Atoi(v)
}
