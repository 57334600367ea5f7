// Package api wires the session engine to the outside world: a websocket
// endpoint for the trading protocol and a couple of REST health checks.
// There is no synchronous request/response order path — every trading
// command flows over the websocket.
package api

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/rs/cors"
	"go.uber.org/zap"

	"github.com/foundrysim/tradefloor/internal/session"
)

// Server hosts the HTTP router: websocket upgrade plus health endpoints.
type Server struct {
	router    *mux.Router
	registry  *session.Registry
	log       *zap.Logger
	corsOrigin string
	startedAt int64
	now       func() int64
}

func NewServer(registry *session.Registry, corsOrigin string, now func() int64, log *zap.Logger) *Server {
	s := &Server{
		router:     mux.NewRouter(),
		registry:   registry,
		log:        log,
		corsOrigin: corsOrigin,
		startedAt:  now(),
		now:        now,
	}
	s.setupRoutes()
	return s
}

func (s *Server) setupRoutes() {
	s.router.HandleFunc("/ws", s.handleWebSocket)
	s.router.HandleFunc("/health", s.handleHealth).Methods(http.MethodGet)
	s.router.HandleFunc("/api/health", s.handleAPIHealth).Methods(http.MethodGet)
}

// Start blocks serving addr until the listener fails.
func (s *Server) Start(addr string) error {
	c := cors.New(cors.Options{
		AllowedOrigins:   []string{s.corsOrigin},
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders:   []string{"Content-Type", "Authorization"},
		AllowCredentials: true,
	})

	s.log.Info("api server starting", zap.String("addr", addr))
	return http.ListenAndServe(addr, c.Handler(s.router))
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, map[string]bool{"ok": true})
}

func (s *Server) handleAPIHealth(w http.ResponseWriter, r *http.Request) {
	now := s.now()
	respondJSON(w, map[string]interface{}{
		"ok":     true,
		"ts":     now,
		"uptime": time.Duration(now-s.startedAt) * time.Millisecond / time.Second,
	})
}

func respondJSON(w http.ResponseWriter, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(data)
}
