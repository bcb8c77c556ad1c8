package server

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
	"github.com/jonathan/resume-analyzer/internal/backend"
	"github.com/jonathan/resume-analyzer/internal/db"
	"github.com/jonathan/resume-analyzer/internal/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHistoryRoutes_Disabled(t *testing.T) {
	s := newTestServer(t, &fakeBackend{})

	for _, path := range []string{"/api/analyses", "/api/analyses/" + uuid.NewString()} {
		w := serve(s, httptest.NewRequest(http.MethodGet, path, nil))
		assert.Equal(t, http.StatusServiceUnavailable, w.Code, path)

		var resp types.ErrorResponse
		decodeJSON(t, w, &resp)
		assert.Equal(t, MsgHistoryDisabled, resp.Error)
	}
}

func TestHandleListAnalyses(t *testing.T) {
	store := newMemoryStore()
	ctx := t.Context()
	for _, score := range []int{30, 60, 90} {
		_, err := store.SaveAnalysis(ctx, "cv.pdf", "jd", &types.AnalysisResponse{MatchScore: score, Reason: "r"})
		require.NoError(t, err)
	}
	s := newTestServer(t, &fakeBackend{}, withStore(store))

	w := serve(s, httptest.NewRequest(http.MethodGet, "/api/analyses?limit=2", nil))
	require.Equal(t, http.StatusOK, w.Code)

	var resp ListAnalysesResponse
	decodeJSON(t, w, &resp)
	assert.Equal(t, 2, resp.Limit)
	assert.Equal(t, 0, resp.Offset)
	require.Len(t, resp.Analyses, 2)
	assert.Equal(t, 90, resp.Analyses[0].MatchScore, "newest first")
	assert.Equal(t, 60, resp.Analyses[1].MatchScore)

	w = serve(s, httptest.NewRequest(http.MethodGet, "/api/analyses?limit=2&offset=2", nil))
	decodeJSON(t, w, &resp)
	require.Len(t, resp.Analyses, 1)
	assert.Equal(t, 30, resp.Analyses[0].MatchScore)
}

func TestHandleListAnalyses_EmptyAndDefaults(t *testing.T) {
	s := newTestServer(t, &fakeBackend{}, withStore(newMemoryStore()))

	w := serve(s, httptest.NewRequest(http.MethodGet, "/api/analyses?limit=1000", nil))
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"analyses":[],"limit":100,"offset":0}`, w.Body.String())
}

func TestHandleListAnalyses_BadQuery(t *testing.T) {
	s := newTestServer(t, &fakeBackend{}, withStore(newMemoryStore()))

	for _, q := range []string{"limit=ten", "offset=x"} {
		w := serve(s, httptest.NewRequest(http.MethodGet, "/api/analyses?"+q, nil))
		assert.Equal(t, http.StatusBadRequest, w.Code, q)
	}
}

func TestHandleGetAnalysis(t *testing.T) {
	store := newMemoryStore()
	id, err := store.SaveAnalysis(t.Context(), "jane.pdf", "Go engineer", sampleResult)
	require.NoError(t, err)
	s := newTestServer(t, &fakeBackend{}, withStore(store))

	w := serve(s, httptest.NewRequest(http.MethodGet, "/api/analyses/"+id.String(), nil))
	require.Equal(t, http.StatusOK, w.Code)

	var got db.Analysis
	decodeJSON(t, w, &got)
	assert.Equal(t, id, got.ID)
	assert.Equal(t, "jane.pdf", got.FileName)
	assert.Equal(t, *sampleResult, got.Result)
}

func TestHandleGetAnalysis_Errors(t *testing.T) {
	s := newTestServer(t, &fakeBackend{}, withStore(newMemoryStore()))

	w := serve(s, httptest.NewRequest(http.MethodGet, "/api/analyses/not-a-uuid", nil))
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = serve(s, httptest.NewRequest(http.MethodGet, "/api/analyses/"+uuid.NewString(), nil))
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestHandleBackendHealth(t *testing.T) {
	s := newTestServer(t, &fakeBackend{health: map[string]any{"message": "CV analyzer is running"}})

	w := serve(s, httptest.NewRequest(http.MethodGet, "/health/backend", nil))
	require.Equal(t, http.StatusOK, w.Code)

	var resp map[string]any
	decodeJSON(t, w, &resp)
	assert.Equal(t, "ok", resp["status"])
	assert.Equal(t, fakeBackendURL, resp["backend_url"])
	assert.Equal(t, map[string]any{"message": "CV analyzer is running"}, resp["backend"])
}

func TestHandleBackendHealth_Unavailable(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
	}{
		{"unreachable", &backend.UnavailableError{URL: fakeBackendURL, Cause: errors.New("connection refused")}, http.StatusServiceUnavailable},
		{"backend 404", &backend.StatusError{StatusCode: http.StatusNotFound, Message: "Not Found"}, http.StatusBadGateway},
		{"backend 500", &backend.StatusError{StatusCode: http.StatusInternalServerError, Message: "boom"}, http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := newTestServer(t, &fakeBackend{healthErr: tt.err})

			w := serve(s, httptest.NewRequest(http.MethodGet, "/health/backend", nil))
			assert.Equal(t, tt.wantStatus, w.Code)

			var resp map[string]any
			decodeJSON(t, w, &resp)
			assert.Equal(t, "unavailable", resp["status"])
			assert.NotEmpty(t, resp["error"])
		})
	}
}
