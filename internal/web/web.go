// Package web renders the analysis form and results as HTML.
package web

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"io/fs"
	"net/http"
	"strings"

	"github.com/jonathan/resume-analyzer/internal/types"
)

//go:embed templates/*.html
var templateFS embed.FS

//go:embed static
var staticFS embed.FS

// Hints appended to error messages by FriendlyError.
const (
	HintUnavailable = "Please ensure the analysis backend is running."
	HintTimeout     = "The analysis is taking longer than expected. Please try again."
)

// Page is the data rendered into the index template.
type Page struct {
	// Result is shown below the form when set.
	Result *types.AnalysisResponse
	// Error is shown inside the form when set.
	Error string
	// FileName and JobDescription are echoed back after a failed submission.
	FileName       string
	JobDescription string
	MaxUploadBytes int64
}

// Renderer executes the embedded templates.
type Renderer struct {
	tmpl *template.Template
}

// NewRenderer parses the embedded templates.
func NewRenderer() (*Renderer, error) {
	tmpl, err := template.New("web").ParseFS(templateFS, "templates/*.html")
	if err != nil {
		return nil, fmt.Errorf("failed to parse templates: %w", err)
	}
	return &Renderer{tmpl: tmpl}, nil
}

// RenderPage writes the full page with the given status code. The template
// is executed into a buffer first so a failure never produces half a page.
func (r *Renderer) RenderPage(w http.ResponseWriter, status int, page Page) error {
	var buf bytes.Buffer
	if err := r.tmpl.ExecuteTemplate(&buf, "index", page); err != nil {
		return fmt.Errorf("failed to render page: %w", err)
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, err := buf.WriteTo(w)
	return err
}

// StaticHandler serves the embedded CSS and JavaScript under /static/.
func StaticHandler() http.Handler {
	sub, err := fs.Sub(staticFS, "static")
	if err != nil {
		// The embed directive guarantees the directory exists.
		panic(err)
	}
	return http.StripPrefix("/static/", http.FileServer(http.FS(sub)))
}

// FriendlyError appends a troubleshooting hint to connection and timeout
// errors, separated by a blank line.
func FriendlyError(msg string) string {
	lower := strings.ToLower(msg)
	switch {
	case strings.Contains(lower, "cannot connect to backend"), strings.Contains(lower, "connection refused"):
		return msg + "\n\n" + HintUnavailable
	case strings.Contains(lower, "timeout"), strings.Contains(lower, "timed out"):
		return msg + "\n\n" + HintTimeout
	default:
		return msg
	}
}
