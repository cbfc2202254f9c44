// Package server exposes the memory engine over a small JSON HTTP API. The
// engine itself stays protocol-free; this is glue.
package server

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/kh1ye/memory/internal/memory"
)

// Server is the recall HTTP API server.
type Server struct {
	sys     *memory.System
	router  chi.Router
	version string
	started time.Time
}

// New creates a Server over the given memory system.
func New(sys *memory.System, version string) *Server {
	s := &Server{
		sys:     sys,
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

		r.Post("/memories", s.handleStore)
		r.Get("/memories/search", s.handleRetrieve)
		r.Get("/memories/{id}", s.handleGet)
		r.Patch("/memories/{id}", s.handleUpdate)
		r.Delete("/memories/{id}", s.handleForgetID)
		r.Post("/forget", s.handleForget)

		r.Get("/stats", s.handleStats)
		r.Get("/export", s.handleExport)
		r.Get("/patterns", s.handlePatterns)
	})

	s.router = r
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status":  "ok",
		"version": s.version,
		"uptime":  time.Since(s.started).Seconds(),
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
