// Package server exposes the essay repository over HTTP: a REST API for
// the document store plus a websocket change feed. Authentication is
// upstream; the server trusts the forwarded identity headers.
package server

import (
	"log/slog"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/verdantpress/verdant/pkg/core"
)

// Server wires the HTTP surface over a core.Service.
type Server struct {
	router  *mux.Router
	service *core.Service
	logger  *slog.Logger
}

// New creates the server and registers all routes.
func New(service *core.Service, logger *slog.Logger) *Server {
	s := &Server{
		service: service,
		logger:  logger,
	}

	r := mux.NewRouter()
	r.HandleFunc("/api/sections/{section}/essays", s.handleList).Methods(http.MethodGet)
	r.HandleFunc("/api/sections/{section}/essays", s.handleCreate).Methods(http.MethodPost)
	r.HandleFunc("/api/essays/{id}", s.handleGet).Methods(http.MethodGet)
	r.HandleFunc("/api/essays/{id}", s.handleUpdate).Methods(http.MethodPatch)
	r.HandleFunc("/api/essays/{id}/status", s.handleSetStatus).Methods(http.MethodPut)
	r.HandleFunc("/ws/events", s.handleEvents)
	s.router = r

	return s
}

// Router exposes the handler for embedding and tests.
func (s *Server) Router() http.Handler {
	return corsMiddleware(s.router)
}

// Start blocks serving HTTP on addr.
func (s *Server) Start(addr string) error {
	if s.logger != nil {
		s.logger.Info("starting essay server", "addr", addr)
	}
	return http.ListenAndServe(addr, s.Router())
}

// corsMiddleware answers preflight requests at the outer layer so they
// don't get rejected by method-restricted routes.
func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		origin := r.Header.Get("Origin")
		if origin != "" {
			w.Header().Set("Access-Control-Allow-Origin", origin)
		} else {
			w.Header().Set("Access-Control-Allow-Origin", "*")
		}
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PATCH, PUT, OPTIONS")
		if reqHeaders := r.Header.Get("Access-Control-Request-Headers"); reqHeaders != "" {
			w.Header().Set("Access-Control-Allow-Headers", reqHeaders)
		} else {
			w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization, X-Actor, X-Actor-Role")
		}
		w.Header().Add("Vary", "Origin")

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}
