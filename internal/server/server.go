package server

import (
	"context"
	"io"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/claude/athletconnect/internal/capture"
	"github.com/claude/athletconnect/internal/catalog"
	"github.com/claude/athletconnect/internal/scoring"
)

// Backend is the scoring service as seen by the HTTP API: session calls for
// hosted capture sessions plus raw forwarding for the proxy routes.
type Backend interface {
	capture.Backend
	Forward(ctx context.Context, method, path string, body io.Reader) (int, []byte, error)
}

var _ Backend = (*scoring.Client)(nil)

// Server holds dependencies for HTTP handlers.
type Server struct {
	catalog    catalog.Provider
	backend    Backend
	captures   *captureRegistry
	log        *slog.Logger
	router     chi.Router
	corsOrigin string
}

// Option configures a Server.
type Option func(*Server)

// WithCORSOrigin restricts browser access to origin. The default is "*".
func WithCORSOrigin(origin string) Option {
	return func(s *Server) { s.corsOrigin = origin }
}

// New creates a new Server with all routes configured.
func New(provider catalog.Provider, backend Backend, log *slog.Logger, opts ...Option) *Server {
	s := &Server{
		catalog: provider,
		backend: backend,
		log:     log,
		router:  chi.NewRouter(),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.captures = newCaptureRegistry(backend, provider, log)
	s.routes()
	return s
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

func (s *Server) routes() {
	s.router.Use(RequestLogging(s.log))
	s.router.Use(CORS(s.corsOrigin))

	// Scoring backend proxy
	s.router.Get("/api/health", s.handleProxyHealth)
	s.router.Post("/api/start-session", s.handleProxyStartSession)
	s.router.Post("/api/scorecard", s.handleProxyScorecard)

	s.router.Route("/api/v1", func(r chi.Router) {
		r.Get("/athletes", s.handleAthletes)
		r.Get("/athletes/{id}", s.handleAthlete)
		r.Get("/leaderboard", s.handleLeaderboard)
		r.Get("/opportunities", s.handleOpportunities)
		r.Post("/opportunities/{id}/apply", s.handleApplyOpportunity)
		r.Get("/tests", s.handleTests)
		r.Get("/tests/{id}", s.handleTest)
		r.Get("/conversations", s.handleConversations)
		r.Post("/login", s.handleLogin)

		r.Post("/capture", s.handleCreateCapture)
		r.Get("/capture/{id}", s.handleGetCapture)
		r.Post("/capture/{id}/start", s.handleCaptureStart)
		r.Post("/capture/{id}/stop", s.handleCaptureStop)
		r.Post("/capture/{id}/retake", s.handleCaptureRetake)
		r.Delete("/capture/{id}", s.handleDeleteCapture)
	})
}

// SetMCP mounts an MCP handler at /mcp.
func (s *Server) SetMCP(h http.Handler) {
	s.router.Handle("/mcp", h)
}

// Close ends every hosted capture session.
func (s *Server) Close() {
	s.captures.closeAll()
}
