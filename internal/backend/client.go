// Package backend is the HTTP client for the external analysis service that
// parses CVs, scores them against job descriptions, and builds learning plans.
package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"
	"mime/multipart"
	"net"
	"net/http"
	"net/textproto"
	"strings"
	"time"

	"github.com/jonathan/resume-analyzer/internal/schemas"
	"github.com/jonathan/resume-analyzer/internal/types"
	"github.com/jonathan/resume-analyzer/internal/upload"
)

// DefaultTimeout bounds a single analysis. Analyses run an LLM agent with
// tool calls and routinely take minutes.
const DefaultTimeout = 5 * time.Minute

// DefaultHealthTimeout bounds health checks and probes.
const DefaultHealthTimeout = 10 * time.Second

// DefaultUserAgent is the user agent string for backend requests.
const DefaultUserAgent = "ResumeAnalyzer/1.0"

// AnalyzePath and HealthPath are the backend routes used by the client.
const (
	AnalyzePath = "/api/analyze"
	HealthPath  = "/"
)

// maxResponseBytes caps how much of a backend response is read.
const maxResponseBytes = 4 << 20

// probePDF is a syntactically minimal PDF with no text, used to check that
// the analyze route exists. The backend is expected to reject it with 400.
var probePDF = []byte("%PDF-1.4\n1 0 obj\n<< /Type /Catalog >>\nendobj\nxref\n0 1\ntrailer\n<< /Root 1 0 R >>\n%%EOF")

// Options configures the client.
type Options struct {
	Timeout       time.Duration
	HealthTimeout time.Duration
	UserAgent     string
	HTTPClient    *http.Client
}

// DefaultOptions returns sensible defaults for talking to the backend.
func DefaultOptions() *Options {
	return &Options{
		Timeout:       DefaultTimeout,
		HealthTimeout: DefaultHealthTimeout,
		UserAgent:     DefaultUserAgent,
	}
}

// Client forwards submissions to the analysis backend. It never retries.
type Client struct {
	baseURL       string
	timeout       time.Duration
	healthTimeout time.Duration
	userAgent     string
	httpClient    *http.Client
}

// New creates a client for the backend at baseURL.
func New(baseURL string, opts *Options) *Client {
	defaults := DefaultOptions()
	if opts == nil {
		opts = defaults
	}

	c := &Client{
		baseURL:       strings.TrimRight(baseURL, "/"),
		timeout:       opts.Timeout,
		healthTimeout: opts.HealthTimeout,
		userAgent:     opts.UserAgent,
		httpClient:    opts.HTTPClient,
	}
	if c.timeout <= 0 {
		c.timeout = defaults.Timeout
	}
	if c.healthTimeout <= 0 {
		c.healthTimeout = defaults.HealthTimeout
	}
	if c.userAgent == "" {
		c.userAgent = defaults.UserAgent
	}
	if c.httpClient == nil {
		// No client-level timeout: each call carries its own deadline.
		c.httpClient = &http.Client{}
	}
	return c
}

// BaseURL returns the backend base URL without a trailing slash.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// Timeout returns the per-analysis timeout.
func (c *Client) Timeout() time.Duration {
	return c.timeout
}

// Analyze forwards one submission and returns the backend's result.
//
// Errors are *StatusError, *TimeoutError, *UnavailableError, or
// *InvalidResponseError; a cancelled ctx is returned as ctx.Err().
func (c *Client) Analyze(ctx context.Context, sub *types.Submission) (*types.AnalysisResponse, error) {
	body, contentType, err := encodeSubmission(sub.FileName, sub.Content, sub.JobDescription)
	if err != nil {
		return nil, fmt.Errorf("failed to encode submission: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	status, data, err := c.do(ctx, http.MethodPost, AnalyzePath, body, contentType, c.timeout)
	if err != nil {
		return nil, err
	}
	if status < 200 || status >= 300 {
		return nil, &StatusError{StatusCode: status, Message: errorMessage(status, data)}
	}

	if err := schemas.ValidateAnalysisResponse(data); err != nil {
		var verr *schemas.ValidationError
		if errors.As(err, &verr) {
			return nil, &InvalidResponseError{Message: verr.Summary(), Cause: err}
		}
		return nil, &InvalidResponseError{Message: "response is not JSON", Cause: err}
	}

	result, err := decodeAnalysis(data)
	if err != nil {
		return nil, &InvalidResponseError{Message: "failed to decode response", Cause: err}
	}
	return result, nil
}

// analysisWire mirrors types.AnalysisResponse but keeps the score as a JSON
// number, since the schema accepts integral values written as 85.0.
type analysisWire struct {
	MatchScore   json.Number              `json:"match_score"`
	Reason       string                   `json:"reason"`
	LearningPlan []types.LearningResource `json:"learning_plan"`
}

// decodeAnalysis decodes a schema-valid body.
func decodeAnalysis(data []byte) (*types.AnalysisResponse, error) {
	var wire analysisWire
	if err := json.Unmarshal(data, &wire); err != nil {
		return nil, err
	}

	score, err := wire.MatchScore.Float64()
	if err != nil {
		return nil, fmt.Errorf("match_score: %w", err)
	}
	if score != math.Trunc(score) {
		return nil, fmt.Errorf("match_score %v is not a whole number", score)
	}

	result := &types.AnalysisResponse{
		MatchScore:   int(score),
		Reason:       wire.Reason,
		LearningPlan: wire.LearningPlan,
	}
	if result.LearningPlan == nil {
		result.LearningPlan = []types.LearningResource{}
	}
	return result, nil
}

// Health calls the backend root route and returns its JSON body.
func (c *Client) Health(ctx context.Context) (map[string]any, error) {
	ctx, cancel := context.WithTimeout(ctx, c.healthTimeout)
	defer cancel()

	status, data, err := c.do(ctx, http.MethodGet, HealthPath, nil, "", c.healthTimeout)
	if err != nil {
		return nil, err
	}
	if status < 200 || status >= 300 {
		return nil, &StatusError{StatusCode: status, Message: errorMessage(status, data)}
	}

	var payload map[string]any
	if err := json.Unmarshal(data, &payload); err != nil {
		return nil, &InvalidResponseError{Message: "health response is not a JSON object", Cause: err}
	}
	return payload, nil
}

// Probe posts a synthetic PDF to the analyze route and returns the status
// code. Any HTTP answer, including 400, means the route is reachable.
func (c *Client) Probe(ctx context.Context) (int, error) {
	body, contentType, err := encodeSubmission("test.pdf", probePDF, "Test job description")
	if err != nil {
		return 0, fmt.Errorf("failed to encode probe: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, c.healthTimeout)
	defer cancel()

	status, _, err := c.do(ctx, http.MethodPost, AnalyzePath, body, contentType, c.healthTimeout)
	return status, err
}

// do sends one request and reads the whole (capped) body.
func (c *Client) do(ctx context.Context, method, path string, body io.Reader, contentType string, timeout time.Duration) (int, []byte, error) {
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return 0, nil, &UnavailableError{URL: c.baseURL, Cause: err}
	}
	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("Accept", "application/json")
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return 0, nil, c.classify(ctx, err, timeout)
	}
	defer func() { _ = resp.Body.Close() }()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return 0, nil, c.classify(ctx, err, timeout)
	}
	return resp.StatusCode, data, nil
}

// classify maps a transport error to the package error types.
func (c *Client) classify(ctx context.Context, err error, timeout time.Duration) error {
	if errors.Is(ctx.Err(), context.DeadlineExceeded) || errors.Is(err, context.DeadlineExceeded) {
		return &TimeoutError{Timeout: timeout, Cause: err}
	}
	if errors.Is(err, context.Canceled) {
		return context.Canceled
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return &TimeoutError{Timeout: timeout, Cause: err}
	}
	return &UnavailableError{URL: c.baseURL, Cause: err}
}

var quoteEscaper = strings.NewReplacer("\\", "\\\\", `"`, "\\\"")

// encodeSubmission builds the multipart body the backend expects: the CV as
// an application/pdf file part and the job description as a text field.
func encodeSubmission(fileName string, content []byte, jobDescription string) (io.Reader, string, error) {
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)

	header := make(textproto.MIMEHeader)
	header.Set("Content-Disposition", fmt.Sprintf(`form-data; name="%s"; filename="%s"`,
		upload.FieldCVFile, quoteEscaper.Replace(fileName)))
	header.Set("Content-Type", "application/pdf")

	part, err := mw.CreatePart(header)
	if err != nil {
		return nil, "", err
	}
	if _, err := part.Write(content); err != nil {
		return nil, "", err
	}
	if err := mw.WriteField(upload.FieldJobDescription, jobDescription); err != nil {
		return nil, "", err
	}
	if err := mw.Close(); err != nil {
		return nil, "", err
	}
	return &buf, mw.FormDataContentType(), nil
}

// errorMessage extracts a user-facing message from a non-2xx body. JSON
// objects use "detail" then "error"; any other JSON falls back to the status.
// Non-JSON bodies are used verbatim.
func errorMessage(status int, data []byte) string {
	if json.Valid(data) {
		var payload map[string]any
		if err := json.Unmarshal(data, &payload); err == nil {
			if msg := detailMessage(payload["detail"]); msg != "" {
				return msg
			}
			if msg, ok := payload["error"].(string); ok && msg != "" {
				return msg
			}
		}
		if text := http.StatusText(status); text != "" {
			return "Backend error: " + text
		}
		return fmt.Sprintf("Backend error: %d", status)
	}

	if text := strings.TrimSpace(string(data)); text != "" {
		return text
	}
	if text := http.StatusText(status); text != "" {
		return fmt.Sprintf("Backend error: %d %s", status, text)
	}
	return fmt.Sprintf("Backend error: %d", status)
}

// detailMessage handles both string details and the list form used for
// request validation failures ([{"loc": [...], "msg": "..."}]).
func detailMessage(detail any) string {
	switch d := detail.(type) {
	case string:
		return d
	case []any:
		msgs := make([]string, 0, len(d))
		for _, item := range d {
			entry, ok := item.(map[string]any)
			if !ok {
				continue
			}
			msg, _ := entry["msg"].(string)
			if msg == "" {
				continue
			}
			if loc := locationString(entry["loc"]); loc != "" {
				msg = loc + ": " + msg
			}
			msgs = append(msgs, msg)
		}
		return strings.Join(msgs, "; ")
	default:
		return ""
	}
}

func locationString(loc any) string {
	parts, ok := loc.([]any)
	if !ok {
		return ""
	}
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		out = append(out, fmt.Sprint(p))
	}
	return strings.Join(out, ".")
}
