// Package server exposes the mantrad HTTP API.
package server

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/EcstasyEngineer/mantrad/internal/catalog"
	"github.com/EcstasyEngineer/mantrad/internal/engine"
	"github.com/EcstasyEngineer/mantrad/internal/store"
)

// Server is the mantrad HTTP API server.
type Server struct {
	db      *store.DB
	engine  *engine.Engine
	catalog *catalog.Catalog
	router  chi.Router
	version string
	started time.Time
}

// New creates a Server wired to the store, engine, and catalog.
func New(db *store.DB, eng *engine.Engine, cat *catalog.Catalog, version string) *Server {
	s := &Server{
		db:      db,
		engine:  eng,
		catalog: cat,
		version: version,
		started: time.Now(),
	}
	s.routes()
	return s
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

func (s *Server) routes() {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(middleware.RealIP)

	r.Route("/api", func(r chi.Router) {
		r.Get("/health", s.handleHealth)
		r.Get("/themes", s.handleThemes)

		r.Route("/users/{userID}", func(r chi.Router) {
			r.Get("/", s.handleStatus)
			r.Post("/enroll", s.handleEnroll)
			r.Post("/unenroll", s.handleUnenroll)
			r.Post("/response", s.handleResponse)
			r.Put("/schedule", s.handleSchedule)
			r.Get("/encounters", s.handleEncounters)
		})
	})

	s.router = r
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	dbOK := true
	if err := s.db.Ping(); err != nil {
		dbOK = false
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"status":  "ok",
		"version": s.version,
		"uptime":  time.Since(s.started).Seconds(),
		"db":      dbOK,
		"db_path": s.db.Path,
		"themes":  s.catalog.Len(),
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
