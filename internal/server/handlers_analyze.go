package server

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/jonathan/resume-analyzer/internal/types"
	"github.com/jonathan/resume-analyzer/internal/upload"
	"github.com/jonathan/resume-analyzer/internal/web"
	"github.com/rs/zerolog"
)

// AnalysisIDHeader names the stored history record on a successful analysis.
const AnalysisIDHeader = "X-Analysis-ID"

const saveTimeout = 5 * time.Second

// analysisOutcome is one finished backend call.
type analysisOutcome struct {
	result *types.AnalysisResponse
	id     uuid.UUID
	err    error
}

// analyze forwards sub to the backend and records the result in history.
// History failures are logged and never fail the analysis.
func (s *Server) analyze(ctx context.Context, sub *types.Submission) analysisOutcome {
	logger := zerolog.Ctx(ctx)

	pdfEvent := logger.Info().Str("file", sub.FileName).Int("bytes", len(sub.Content))
	if info, err := upload.Inspect(sub.Content); err != nil {
		pdfEvent = pdfEvent.AnErr("inspect_error", err)
	} else {
		pdfEvent = pdfEvent.Int("pages", info.Pages).Int("text_chars", info.TextChars)
	}
	pdfEvent.Str("backend_url", s.backendURL).Msg("Forwarding analysis to backend")

	done := s.metrics.BackendStarted()
	start := time.Now()
	result, err := s.backend.Analyze(ctx, sub)
	elapsed := time.Since(start)
	done()
	s.metrics.ObserveBackend(backendOutcome(err), elapsed)

	if err != nil {
		return analysisOutcome{err: err}
	}
	logger.Info().Int("match_score", result.MatchScore).Dur("elapsed", elapsed).Msg("Analysis completed")

	out := analysisOutcome{result: result}
	if s.store != nil {
		saveCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), saveTimeout)
		defer cancel()

		id, err := s.store.SaveAnalysis(saveCtx, sub.FileName, sub.JobDescription, result)
		if err != nil {
			logger.Error().Err(err).Msg("Failed to save analysis history")
		} else {
			out.id = id
		}
	}
	return out
}

// handleAnalyze is the JSON proxy endpoint
func (s *Server) handleAnalyze(w http.ResponseWriter, r *http.Request) {
	sub, err := upload.ParseSubmission(w, r, s.maxUploadBytes)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	out := s.analyze(r.Context(), sub)
	if out.err != nil {
		s.writeError(w, r, out.err)
		return
	}

	if out.id != uuid.Nil {
		w.Header().Set(AnalysisIDHeader, out.id.String())
	}
	s.jsonResponse(w, http.StatusOK, out.result)
}

// handleAnalyzeStream reports the same analysis as Server-Sent Events so
// clients can show progress during long backend calls. Upload problems are
// answered as plain JSON before the stream starts.
func (s *Server) handleAnalyzeStream(w http.ResponseWriter, r *http.Request) {
	sub, err := upload.ParseSubmission(w, r, s.maxUploadBytes)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	sse, err := NewSSEWriter(w)
	if err != nil {
		s.errorResponse(w, http.StatusInternalServerError, err.Error())
		return
	}

	ctx := r.Context()
	start := time.Now()
	sse.WriteEvent(EventStarted, map[string]any{ //nolint:errcheck
		"file_name":   sub.FileName,
		"backend_url": s.backendURL,
	})

	results := make(chan analysisOutcome, 1)
	go func() {
		results <- s.analyze(ctx, sub)
	}()

	ticker := time.NewTicker(s.heartbeat)
	defer ticker.Stop()

	for {
		select {
		case out := <-results:
			if out.err != nil {
				if errors.Is(out.err, context.Canceled) && ctx.Err() != nil {
					return
				}
				zerolog.Ctx(ctx).Warn().Err(out.err).Msg("Streamed analysis failed")
				sse.WriteError(HTTPStatus(out.err), ErrorBody(out.err, s.backendURL))
				return
			}
			sse.WriteResult(out.result)
			return
		case <-ticker.C:
			sse.WriteEvent(EventWaiting, map[string]any{ //nolint:errcheck
				"elapsed_seconds": int(time.Since(start).Seconds()),
			})
		case <-ctx.Done():
			zerolog.Ctx(ctx).Info().Msg("Client disconnected during streamed analysis")
			return
		}
	}
}

// handleIndex serves the analysis form
func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	s.renderPage(w, r, http.StatusOK, web.Page{})
}

// handleAnalyzeForm handles the plain HTML form post used without JavaScript.
func (s *Server) handleAnalyzeForm(w http.ResponseWriter, r *http.Request) {
	sub, err := upload.ParseSubmission(w, r, s.maxUploadBytes)
	if err != nil {
		s.renderFormError(w, r, err)
		return
	}

	out := s.analyze(r.Context(), sub)
	if out.err != nil {
		s.renderFormError(w, r, out.err)
		return
	}

	s.renderPage(w, r, http.StatusOK, web.Page{
		Result:         out.result,
		FileName:       sub.FileName,
		JobDescription: sub.JobDescription,
	})
}

func (s *Server) renderFormError(w http.ResponseWriter, r *http.Request, err error) {
	status := HTTPStatus(err)
	zerolog.Ctx(r.Context()).Warn().Err(err).Int("status", status).Msg("Form analysis failed")

	s.renderPage(w, r, status, web.Page{
		Error:          web.FriendlyError(ErrorBody(err, s.backendURL).Error),
		JobDescription: r.PostFormValue(upload.FieldJobDescription),
	})
}

func (s *Server) renderPage(w http.ResponseWriter, r *http.Request, status int, page web.Page) {
	page.MaxUploadBytes = s.maxUploadBytes
	if err := s.renderer.RenderPage(w, status, page); err != nil {
		zerolog.Ctx(r.Context()).Error().Err(err).Msg("Failed to render page")
		http.Error(w, "Internal server error", http.StatusInternalServerError)
	}
}
