package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/jonathan/resume-analyzer/internal/backend"
	"github.com/jonathan/resume-analyzer/internal/db"
	"github.com/jonathan/resume-analyzer/internal/observability"
	"github.com/jonathan/resume-analyzer/internal/server/ratelimit"
	"github.com/jonathan/resume-analyzer/internal/types"
	"github.com/jonathan/resume-analyzer/internal/web"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"
)

const (
	// DefaultHeartbeat is how often /api/analyze/stream reports that it is still waiting.
	DefaultHeartbeat = 15 * time.Second
	// DefaultMaxUploadBytes caps the inbound multipart body.
	DefaultMaxUploadBytes = 10 << 20

	shutdownTimeout = 30 * time.Second
	dbTimeout       = 10 * time.Second
	// writeTimeoutSlack is added to the backend timeout so the proxy can still
	// answer after the backend call gives up.
	writeTimeoutSlack = 30 * time.Second
)

// Analyzer is the analysis backend as seen by the server.
type Analyzer interface {
	Analyze(ctx context.Context, sub *types.Submission) (*types.AnalysisResponse, error)
	Health(ctx context.Context) (map[string]any, error)
	BaseURL() string
}

// HistoryStore persists completed analyses.
type HistoryStore interface {
	SaveAnalysis(ctx context.Context, fileName, jobDescription string, result *types.AnalysisResponse) (uuid.UUID, error)
	GetAnalysis(ctx context.Context, id uuid.UUID) (*db.Analysis, error)
	ListAnalyses(ctx context.Context, limit, offset int) ([]db.AnalysisSummary, error)
}

// Server represents the HTTP server
type Server struct {
	httpServer     *http.Server
	backend        Analyzer
	backendURL     string
	store          HistoryStore
	closeStore     func()
	renderer       *web.Renderer
	rateLimiter    *ratelimit.Limiter
	metrics        *observability.Metrics
	logger         zerolog.Logger
	maxUploadBytes int64
	heartbeat      time.Duration
}

// Config holds server configuration
type Config struct {
	Port           int
	BackendURL     string
	BackendTimeout time.Duration
	MaxUploadBytes int64
	// DatabaseURL enables analysis history when set.
	DatabaseURL string
	// RateLimit defaults to ratelimit.LoadConfig() when nil.
	RateLimit *ratelimit.Config
	Heartbeat time.Duration
	Logger    zerolog.Logger

	// Backend and Store replace the HTTP backend client and the PostgreSQL
	// store when set.
	Backend Analyzer
	Store   HistoryStore
}

// New creates a new server instance
func New(cfg Config) (*Server, error) {
	renderer, err := web.NewRenderer()
	if err != nil {
		return nil, err
	}

	s := &Server{
		backend:        cfg.Backend,
		store:          cfg.Store,
		renderer:       renderer,
		metrics:        observability.NewMetrics(),
		logger:         cfg.Logger,
		maxUploadBytes: cfg.MaxUploadBytes,
		heartbeat:      cfg.Heartbeat,
	}
	if s.maxUploadBytes <= 0 {
		s.maxUploadBytes = DefaultMaxUploadBytes
	}
	if s.heartbeat <= 0 {
		s.heartbeat = DefaultHeartbeat
	}

	timeout := cfg.BackendTimeout
	if timeout <= 0 {
		timeout = backend.DefaultTimeout
	}

	if s.backend == nil {
		if cfg.BackendURL == "" {
			return nil, errors.New("backend URL is required")
		}
		s.backend = backend.New(cfg.BackendURL, &backend.Options{Timeout: timeout})
	}
	s.backendURL = s.backend.BaseURL()

	if s.store == nil && cfg.DatabaseURL != "" {
		ctx, cancel := context.WithTimeout(context.Background(), dbTimeout)
		defer cancel()

		database, err := db.Connect(ctx, cfg.DatabaseURL)
		if err != nil {
			return nil, fmt.Errorf("failed to connect to database: %w", err)
		}
		if err := database.Migrate(ctx); err != nil {
			database.Close()
			return nil, err
		}
		s.store = database
		s.closeStore = database.Close
	}

	rateConfig := cfg.RateLimit
	if rateConfig == nil {
		rateConfig = ratelimit.LoadConfig()
	}
	s.rateLimiter = ratelimit.NewLimiter(rateConfig)

	mux := http.NewServeMux()
	mux.HandleFunc("GET /{$}", s.handleIndex)
	mux.HandleFunc("POST /analyze", s.handleAnalyzeForm)
	mux.HandleFunc("POST /api/analyze", s.handleAnalyze)
	mux.HandleFunc("POST /api/analyze/stream", s.handleAnalyzeStream)
	mux.HandleFunc("GET /api/analyses", s.handleListAnalyses)
	mux.HandleFunc("GET /api/analyses/{id}", s.handleGetAnalysis)
	mux.HandleFunc("GET /health", s.handleHealth)
	mux.HandleFunc("GET /health/backend", s.handleBackendHealth)
	mux.Handle("GET /metrics", s.metrics.Handler())
	mux.Handle("GET /static/", web.StaticHandler())

	handler := s.withLogging(s.withMetrics(s.withCORS(mux)))
	if s.rateLimiter.Enabled() {
		handler = s.withRateLimit(handler)
	}

	s.httpServer = &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           s.withRequestID(handler),
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       60 * time.Second,
		WriteTimeout:      timeout + writeTimeoutSlack,
		IdleTimeout:       60 * time.Second,
	}

	return s, nil
}

// Handler returns the fully wrapped HTTP handler.
func (s *Server) Handler() http.Handler {
	return s.httpServer.Handler
}

// Metrics returns the server's collectors.
func (s *Server) Metrics() *observability.Metrics {
	return s.metrics
}

// Start listens on the configured port until SIGINT or SIGTERM.
func (s *Server) Start() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	ln, err := net.Listen("tcp", s.httpServer.Addr)
	if err != nil {
		s.Close()
		return fmt.Errorf("failed to listen on %s: %w", s.httpServer.Addr, err)
	}
	return s.Serve(ctx, ln)
}

// Serve accepts connections on ln until ctx is done, then shuts down
// gracefully and releases the server's resources.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		s.logger.Info().
			Str("addr", ln.Addr().String()).
			Str("backend_url", s.backendURL).
			Bool("history", s.store != nil).
			Bool("rate_limit", s.rateLimiter.Enabled()).
			Msg("Server starting")
		if err := s.httpServer.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		s.logger.Info().Msg("Shutting down server...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("server shutdown failed: %w", err)
		}
		return nil
	})

	err := g.Wait()
	s.Close()
	s.logger.Info().Msg("Server stopped")
	return err
}

// Close stops background work and closes the database pool, if any.
func (s *Server) Close() {
	if s.rateLimiter != nil {
		s.rateLimiter.Stop()
	}
	if s.closeStore != nil {
		s.closeStore()
		s.closeStore = nil
	}
}

// jsonResponse writes a JSON response
func (s *Server) jsonResponse(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		s.logger.Error().Err(err).Msg("Error encoding JSON response")
	}
}

// errorResponse writes an error JSON response
func (s *Server) errorResponse(w http.ResponseWriter, status int, message string) {
	s.jsonResponse(w, status, types.ErrorResponse{Error: message})
}

// writeError translates err into a status code and JSON error body.
func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := HTTPStatus(err)
	logEvent := zerolog.Ctx(r.Context()).Warn()
	if status >= http.StatusInternalServerError {
		logEvent = zerolog.Ctx(r.Context()).Error()
	}
	logEvent.Err(err).Int("status", status).Msg("Analysis request failed")

	s.jsonResponse(w, status, ErrorBody(err, s.backendURL))
}
