package feed

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	json "github.com/goccy/go-json"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

// Server exposes a Hub over HTTP
type Server struct {
	hub      *Hub
	upgrader websocket.Upgrader
	srv      *http.Server
	log      *zap.Logger
}

// NewServer builds the feed router. origins limits which pages may
// connect; "*" allows any.
func NewServer(addr string, hub *Hub, origins []string) *Server {
	s := &Server{hub: hub, log: hub.log}

	allowAll := len(origins) == 0
	allowed := make(map[string]bool, len(origins))
	for _, o := range origins {
		if o == "*" {
			allowAll = true
		}
		allowed[o] = true
	}
	s.upgrader = websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin: func(r *http.Request) bool {
			origin := r.Header.Get("Origin")
			return allowAll || origin == "" || allowed[origin]
		},
	}

	s.srv = &http.Server{
		Addr:              addr,
		Handler:           s.Routes(origins),
		ReadHeaderTimeout: 5 * time.Second,
	}
	return s
}

// Routes returns the HTTP handler
func (s *Server) Routes(origins []string) http.Handler {
	r := chi.NewRouter()

	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(chimiddleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: origins,
		AllowedMethods: []string{"GET", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type"},
		MaxAge:         300,
	}))

	r.Get("/health", s.handleHealth)
	r.Get("/feed", s.handleFeed)

	return r
}

// ListenAndServe blocks until the server stops
func (s *Server) ListenAndServe() error {
	s.log.Info("overlay feed listening", zap.String("addr", s.srv.Addr))
	if err := s.srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Shutdown stops accepting connections and closes every client
func (s *Server) Shutdown(ctx context.Context) error {
	s.hub.Close()
	return s.srv.Shutdown(ctx)
}

func (s *Server) handleFeed(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.log.Warn("websocket upgrade failed", zap.Error(err))
		return
	}

	c := newClient(uuid.NewString(), conn, s.hub)
	if !s.hub.register(c) {
		conn.Close()
		return
	}

	go c.writePump()
	go c.readPump()
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	health := s.hub.Metrics()
	health["status"] = "healthy"

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(health)
}
