package api

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/dgallion1/harvestparse/internal/config"
	"github.com/dgallion1/harvestparse/internal/pipeline"
	"github.com/dgallion1/harvestparse/internal/store"
)

// Server is the HTTP API server for harvestparse.
type Server struct {
	router       chi.Router
	orchestrator *pipeline.Orchestrator
	store        *store.Store
	log          *slog.Logger
	cfg          config.Config
}

// NewServer creates and configures the HTTP server. db may be nil, in which
// case the record endpoints answer 503.
func NewServer(orch *pipeline.Orchestrator, db *store.Store, log *slog.Logger, cfg config.Config) *Server {
	s := &Server{
		orchestrator: orch,
		store:        db,
		log:          log,
		cfg:          cfg,
	}
	s.setupRoutes()
	return s
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

func (s *Server) setupRoutes() {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(middleware.RequestID)
	r.Use(RequestLogger(s.log))

	// Public endpoints.
	r.Get("/health", s.handleHealth)

	// Authenticated endpoints.
	r.Group(func(r chi.Router) {
		r.Use(AuthMiddleware(s.cfg.APIKey, s.log))

		r.Post("/api/parse", s.handleParse)
		r.Post("/api/parse/batch", s.handleBatchParse)
		r.Get("/api/parse/{jobID}/status", s.handleParseStatus)
		r.Get("/api/parse/{jobID}/result", s.handleParseResult)
		r.Get("/api/parse/{jobID}/report", s.handleParseReport)
		r.Get("/api/stats", s.handleStats)

		r.Get("/api/records/years", s.handleListYears)
		r.Get("/api/records/{year}/harvest", s.handleYearHarvest)
	})

	s.router = r
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.Write([]byte(`{"status":"ok"}`))
}
