package main

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/jonathan/resume-analyzer/internal/types"
	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const analysisJSON = `{
	"match_score": 72,
	"reason": "Solid Go background, little Kubernetes exposure.",
	"learning_plan": [
		{"title": "Kubernetes Basics", "video": "https://example.com/k8s", "thumbnail": ""}
	]
}`

// isolateEnv clears variables that config.Resolve reads and resets the
// package-level flag values.
func isolateEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{"BACKEND_URL", "FASTAPI_BACKEND_URL", "BACKEND_TIMEOUT", "PORT", "MAX_UPLOAD_BYTES", "DATABASE_URL", "LOG_LEVEL", "LOG_FORMAT"} {
		t.Setenv(key, "")
	}
	configPath = ""
	analyzeBackendURL = ""
	analyzeTimeout = 0
	analyzeJSON = false
	checkBackendURL = ""
}

// writeFile writes content under a temp dir and returns its path.
func writeFile(t *testing.T, name string, content []byte) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, content, 0o600))
	return path
}

func newCommand(stdin string) (*cobra.Command, *bytes.Buffer) {
	out := &bytes.Buffer{}
	cmd := &cobra.Command{}
	cmd.SetOut(out)
	cmd.SetIn(strings.NewReader(stdin))
	return cmd, out
}

// analysisBackend answers /api/analyze with body and records the job description.
func analysisBackend(t *testing.T, status int, body string, gotJD *string) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/analyze" {
			http.NotFound(w, r)
			return
		}
		if gotJD != nil {
			*gotJD = r.FormValue("job_description")
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestRunAnalyze_PrintsResult(t *testing.T) {
	isolateEnv(t)
	var gotJD string
	srv := analysisBackend(t, http.StatusOK, analysisJSON, &gotJD)
	analyzeBackendURL = srv.URL

	cvPath := writeFile(t, "jane.pdf", []byte("%PDF-1.4 fake"))
	jdPath := writeFile(t, "job.txt", []byte("Senior Go engineer"))

	cmd, out := newCommand("")
	require.NoError(t, runAnalyze(cmd, []string{cvPath, jdPath}))

	assert.Equal(t, "Senior Go engineer", gotJD)
	output := out.String()
	assert.Contains(t, output, "SUBMISSION")
	assert.Contains(t, output, "jane.pdf")
	assert.Contains(t, output, "72% (partial match)")
	assert.Contains(t, output, "Solid Go background")
	assert.Contains(t, output, "1. Kubernetes Basics")
	assert.Contains(t, output, "https://example.com/k8s")
}

func TestRunAnalyze_JSONFromStdin(t *testing.T) {
	isolateEnv(t)
	var gotJD string
	srv := analysisBackend(t, http.StatusOK, analysisJSON, &gotJD)
	analyzeBackendURL = srv.URL
	analyzeJSON = true

	cvPath := writeFile(t, "cv.pdf", []byte("%PDF-1.4 fake"))

	cmd, out := newCommand("Platform engineer\n")
	require.NoError(t, runAnalyze(cmd, []string{cvPath, "-"}))

	assert.Equal(t, "Platform engineer\n", gotJD)
	assert.NotContains(t, out.String(), "SUBMISSION")

	var result types.AnalysisResponse
	require.NoError(t, json.Unmarshal(out.Bytes(), &result))
	assert.Equal(t, 72, result.MatchScore)
	require.Len(t, result.LearningPlan, 1)
	assert.Equal(t, "Kubernetes Basics", result.LearningPlan[0].Title)
}

func TestRunAnalyze_ValidationError(t *testing.T) {
	isolateEnv(t)
	analyzeBackendURL = "http://127.0.0.1:1"

	cvPath := writeFile(t, "cv.docx", []byte("not a pdf"))
	jdPath := writeFile(t, "job.txt", []byte("Go engineer"))

	cmd, _ := newCommand("")
	err := runAnalyze(cmd, []string{cvPath, jdPath})
	require.Error(t, err)
	assert.Equal(t, types.MsgOnlyPDF, err.Error())
}

func TestRunAnalyze_BlankJobDescription(t *testing.T) {
	isolateEnv(t)
	analyzeBackendURL = "http://127.0.0.1:1"

	cvPath := writeFile(t, "cv.pdf", []byte("%PDF-1.4 fake"))

	cmd, _ := newCommand("   \n")
	err := runAnalyze(cmd, []string{cvPath, "-"})
	require.Error(t, err)
	assert.Equal(t, types.MsgJobDescriptionRequired, err.Error())
}

func TestRunAnalyze_MissingJobDescriptionFile(t *testing.T) {
	isolateEnv(t)
	cvPath := writeFile(t, "cv.pdf", []byte("%PDF-1.4 fake"))

	cmd, _ := newCommand("")
	err := runAnalyze(cmd, []string{cvPath, filepath.Join(t.TempDir(), "missing.txt")})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to read job description")
}

func TestRunAnalyze_BackendErrors(t *testing.T) {
	tests := []struct {
		name    string
		status  int
		body    string
		wantErr string
	}{
		{
			name:    "detail passthrough",
			status:  http.StatusBadRequest,
			body:    `{"detail": "Could not extract text from PDF"}`,
			wantErr: "Could not extract text from PDF",
		},
		{
			name:    "invalid response",
			status:  http.StatusOK,
			body:    `{"reason": "no score"}`,
			wantErr: "Invalid response from backend",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			isolateEnv(t)
			srv := analysisBackend(t, tt.status, tt.body, nil)
			analyzeBackendURL = srv.URL

			cvPath := writeFile(t, "cv.pdf", []byte("%PDF-1.4 fake"))
			cmd, _ := newCommand("Go engineer")
			err := runAnalyze(cmd, []string{cvPath, "-"})
			require.Error(t, err)
			assert.Equal(t, tt.wantErr, err.Error())
		})
	}
}

func TestRunAnalyze_Unreachable(t *testing.T) {
	isolateEnv(t)
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()
	analyzeBackendURL = url

	cvPath := writeFile(t, "cv.pdf", []byte("%PDF-1.4 fake"))
	cmd, _ := newCommand("Go engineer")
	err := runAnalyze(cmd, []string{cvPath, "-"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Cannot connect to backend at "+url)
	assert.Contains(t, err.Error(), "\n\n", "troubleshooting hint appended")
}

func TestRunAnalyze_Timeout(t *testing.T) {
	isolateEnv(t)
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}))
	t.Cleanup(func() {
		close(release)
		srv.Close()
	})
	analyzeBackendURL = srv.URL
	analyzeTimeout = 50 * time.Millisecond

	cvPath := writeFile(t, "cv.pdf", []byte("%PDF-1.4 fake"))
	cmd, _ := newCommand("Go engineer")
	err := runAnalyze(cmd, []string{cvPath, "-"})
	require.Error(t, err)
	assert.True(t, strings.HasPrefix(err.Error(), "Request timeout"), err.Error())
}

func TestResolveBackend(t *testing.T) {
	isolateEnv(t)

	url, timeout, err := resolveBackend("", 0)
	require.NoError(t, err)
	assert.Equal(t, "http://localhost:8000", url)
	assert.Equal(t, 5*time.Minute, timeout)

	t.Setenv("BACKEND_URL", "http://env.test:9000/")
	url, _, err = resolveBackend("", 0)
	require.NoError(t, err)
	assert.Equal(t, "http://env.test:9000", url)

	url, timeout, err = resolveBackend("http://flag.test/", time.Second)
	require.NoError(t, err)
	assert.Equal(t, "http://flag.test", url)
	assert.Equal(t, time.Second, timeout)

	_, _, err = resolveBackend("ftp://flag.test", 0)
	assert.Error(t, err)
}
