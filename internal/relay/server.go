package relay

import (
	"encoding/json"
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/Pronana/actor-communicator/internal/world"
)

// Flag values above this size are rejected; a contact store of
// reasonable size is a few kilobytes.
const maxFlagBytes = 1 << 20

// Server exposes the world database and the broadcast hub.
type Server struct {
	db       *world.DB
	hub      *Hub
	logger   *zap.Logger
	upgrader websocket.Upgrader
}

// NewServer creates a relay HTTP server over the world database.
func NewServer(db *world.DB, hub *Hub, logger *zap.Logger) *Server {
	return &Server{
		db:     db,
		hub:    hub,
		logger: logger,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
		},
	}
}

// Handler returns the chi router for the relay.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)

	r.Route("/api", func(api chi.Router) {
		api.Get("/actors", s.handleListActors)
		api.Get("/actors/{id}", s.handleGetActor)
		api.Get("/users/{name}", s.handleGetUser)

		api.Route("/entities/{entity}/flags/{namespace}/{key}", func(f chi.Router) {
			f.Get("/", s.handleGetFlag)
			f.Put("/", s.handleSetFlag)
			f.Delete("/", s.handleDeleteFlag)
		})
	})
	r.Get("/ws", s.handleSocket)

	return r
}

func (s *Server) handleListActors(w http.ResponseWriter, r *http.Request) {
	actors, err := s.db.ListActors(r.Context())
	if err != nil {
		s.internalError(w, "list actors", err)
		return
	}
	writeJSON(w, http.StatusOK, actors)
}

func (s *Server) handleGetActor(w http.ResponseWriter, r *http.Request) {
	actor, err := s.db.GetActor(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.internalError(w, "get actor", err)
		return
	}
	if actor == nil {
		writeError(w, http.StatusNotFound, "actor not found")
		return
	}
	writeJSON(w, http.StatusOK, actor)
}

func (s *Server) handleGetUser(w http.ResponseWriter, r *http.Request) {
	user, err := s.db.GetUser(r.Context(), chi.URLParam(r, "name"))
	if err != nil {
		s.internalError(w, "get user", err)
		return
	}
	if user == nil {
		writeError(w, http.StatusNotFound, "user not found")
		return
	}
	writeJSON(w, http.StatusOK, user)
}

func (s *Server) handleGetFlag(w http.ResponseWriter, r *http.Request) {
	value, err := s.db.GetFlag(r.Context(),
		chi.URLParam(r, "entity"), chi.URLParam(r, "namespace"), chi.URLParam(r, "key"))
	if err != nil {
		s.internalError(w, "get flag", err)
		return
	}
	if value == nil {
		writeError(w, http.StatusNotFound, "flag not set")
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(value)
}

func (s *Server) handleSetFlag(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(io.LimitReader(r.Body, maxFlagBytes+1))
	if err != nil {
		writeError(w, http.StatusBadRequest, "unreadable body")
		return
	}
	if len(body) > maxFlagBytes {
		writeError(w, http.StatusRequestEntityTooLarge, "flag value too large")
		return
	}
	if !json.Valid(body) {
		writeError(w, http.StatusBadRequest, "flag value must be JSON")
		return
	}
	err = s.db.SetFlag(r.Context(),
		chi.URLParam(r, "entity"), chi.URLParam(r, "namespace"), chi.URLParam(r, "key"), body)
	if err != nil {
		s.internalError(w, "set flag", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleDeleteFlag(w http.ResponseWriter, r *http.Request) {
	err := s.db.DeleteFlag(r.Context(),
		chi.URLParam(r, "entity"), chi.URLParam(r, "namespace"), chi.URLParam(r, "key"))
	if err != nil {
		s.internalError(w, "delete flag", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// handleSocket upgrades a session onto the broadcast channel. Any
// text frame a session writes is fanned out verbatim to every
// connected session.
func (s *Server) handleSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Warn("websocket upgrade failed", zap.Error(err))
		return
	}
	s.hub.Add(conn)
	defer s.hub.Remove(conn)

	for {
		kind, payload, err := conn.ReadMessage()
		if err != nil {
			return
		}
		if kind != websocket.TextMessage {
			continue
		}
		s.hub.Broadcast(payload)
	}
}

func (s *Server) internalError(w http.ResponseWriter, op string, err error) {
	s.logger.Error(op, zap.Error(err))
	writeError(w, http.StatusInternalServerError, "internal error")
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
