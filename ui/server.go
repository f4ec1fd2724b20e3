package ui

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"labscope/app"
	"labscope/domain/catalog"
	"labscope/internal"
	"labscope/internal/vocab"
)

// Server is the thin read-only presentation adapter. It issues user intents
// into explorer sessions and serves each recomputed derived view as JSON;
// it holds no view state of its own.
type Server struct {
	router   *chi.Mux
	sessions map[catalog.Resource]*app.ExplorerService
	vocab    *vocab.Loader
	logger   *internal.Logger
}

// NewServer creates a server over the given per-resource sessions
func NewServer(sessions map[catalog.Resource]*app.ExplorerService, loader *vocab.Loader, logger *internal.Logger) *Server {
	if logger == nil {
		logger = internal.NewDefaultLogger()
	}
	s := &Server{
		router:   chi.NewRouter(),
		sessions: sessions,
		vocab:    loader,
		logger:   logger,
	}
	s.setupMiddleware()
	s.setupRoutes()
	return s
}

// setupMiddleware configures HTTP middleware
func (s *Server) setupMiddleware() {
	s.router.Use(middleware.RequestID)
	s.router.Use(middleware.Logger)
	s.router.Use(middleware.Recoverer)
}

// setupRoutes wires the intent and view endpoints
func (s *Server) setupRoutes() {
	s.router.Route("/api", func(r chi.Router) {
		r.Get("/vocab/{dimension}", s.handleVocabulary)

		r.Route("/{resource}", func(r chi.Router) {
			r.Get("/view", s.handleView)
			r.Put("/query", s.handleSetQuery)
			r.Post("/filter/{dimension}/{value}", s.handleToggleValue)
			r.Delete("/filter", s.handleClearFilters)
			r.Post("/page/{page}", s.handleSetPage)
			r.Post("/compare/{code}", s.handleToggleCompare)
			r.Delete("/compare", s.handleClearCompare)
			r.Get("/typeahead", s.handleTypeahead)
			r.Get("/report", s.handleReport)
			r.Get("/export.xlsx", s.handleExport)
		})
	})
}

// Handler exposes the router for embedding and tests
func (s *Server) Handler() http.Handler {
	return s.router
}

// Start runs the HTTP server on the given port
func (s *Server) Start(port string) error {
	s.logger.Info("explorer server listening on :%s", port)
	return http.ListenAndServe(":"+port, s.router)
}

// session resolves the explorer session for the resource in the URL
func (s *Server) session(r *http.Request) (*app.ExplorerService, bool) {
	resource := catalog.Resource(chi.URLParam(r, "resource"))
	sess, ok := s.sessions[resource]
	return sess, ok
}
