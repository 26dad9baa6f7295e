// Package api exposes the orchestration pipeline over HTTP. This layer
// is thin plumbing: JSON in, one orchestration run, JSON out.
package api

import (
	"context"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/rs/zerolog"

	"github.com/TejasNaik24/GUARDIAN/internal/agents"
)

// AgentService runs one orchestration for a request.
type AgentService interface {
	Handle(ctx context.Context, req *agents.Request) *agents.Result
}

// Server wires the HTTP routes to the agent service.
type Server struct {
	service AgentService
	router  *mux.Router
	http    *http.Server
	log     zerolog.Logger
}

// Config holds HTTP server settings.
type Config struct {
	Address string
	Timeout time.Duration
}

// NewServer creates the HTTP server.
func NewServer(cfg Config, service AgentService, log zerolog.Logger) *Server {
	s := &Server{
		service: service,
		router:  mux.NewRouter(),
		log:     log,
	}
	s.setupRoutes()

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 60 * time.Second
	}
	s.http = &http.Server{
		Addr:         cfg.Address,
		Handler:      s.loggingMiddleware(s.router),
		ReadTimeout:  30 * time.Second,
		WriteTimeout: timeout,
	}
	return s
}

func (s *Server) setupRoutes() {
	s.router.HandleFunc("/api/agents/chat", s.handleChat).Methods(http.MethodPost)
	s.router.HandleFunc("/health", s.handleHealth).Methods(http.MethodGet)
}

func (s *Server) loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		next.ServeHTTP(w, r)
		s.log.Info().
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Dur("duration", time.Since(start)).
			Msg("request handled")
	})
}

// ListenAndServe blocks serving requests until Shutdown is called.
func (s *Server) ListenAndServe() error {
	s.log.Info().Str("address", s.http.Addr).Msg("starting agent server")
	return s.http.ListenAndServe()
}

// Shutdown drains in-flight requests.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.http.Shutdown(ctx)
}

// Handler exposes the routing tree for tests.
func (s *Server) Handler() http.Handler {
	return s.router
}
