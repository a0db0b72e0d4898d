package server

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/me/rtsched/internal/config"
	"github.com/me/rtsched/internal/store"
	"github.com/me/rtsched/internal/taskset"
)

// Version is reported by the health endpoint.
const Version = "0.1.0"

const defaultMaxBodyBytes = 1 << 20

// Server is the rtsched REST API server. It keeps a registry of task sets
// and analyzes them on request.
type Server struct {
	router       chi.Router
	base         *slog.Logger
	logger       *slog.Logger
	config       config.ServerConfig
	startTime    time.Time
	parser       *taskset.Parser
	store        store.Store
	maxBodyBytes int64
}

// Option configures optional Server settings.
type Option func(*Server)

// WithMaxBodyBytes caps the size of request bodies.
func WithMaxBodyBytes(n int64) Option {
	return func(s *Server) {
		s.maxBodyBytes = n
	}
}

// New creates a new Server with all routes registered.
func New(cfg config.ServerConfig, st store.Store, logger *slog.Logger, opts ...Option) *Server {
	s := &Server{
		router:       chi.NewRouter(),
		base:         logger,
		logger:       logger.With("component", "server"),
		config:       cfg,
		startTime:    time.Now(),
		parser:       taskset.New(logger),
		store:        st,
		maxBodyBytes: defaultMaxBodyBytes,
	}
	for _, opt := range opts {
		opt(s)
	}
	s.routes()
	return s
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// Handler returns the http.Handler for this server.
func (s *Server) Handler() http.Handler {
	return s.router
}

func (s *Server) routes() {
	r := s.router

	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(requestIDMiddleware)
	r.Use(loggingMiddleware(s.logger))

	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/", s.handleDiscovery)
		r.Get("/health", s.handleHealth)

		r.Route("/tasksets", func(r chi.Router) {
			r.Get("/", s.handleListTaskSets)
			r.Post("/", s.handleCreateTaskSet)
			r.Route("/{id}", func(r chi.Router) {
				r.Get("/", s.handleGetTaskSet)
				r.Delete("/", s.handleDeleteTaskSet)
				r.Post("/analyze", s.handleAnalyzeTaskSet)
			})
		})

		r.Post("/analyze", s.handleAnalyze)
	})
}
