// Package server exposes the HTTP API and the WebSocket event stream.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/sprucegoose-dev/antinomy-be/internal/auth"
	"github.com/sprucegoose-dev/antinomy-be/internal/config"
	"github.com/sprucegoose-dev/antinomy-be/internal/database"
	"github.com/sprucegoose-dev/antinomy-be/internal/game"
)

// Server wires the route handlers, the game store and the WebSocket hub.
type Server struct {
	cfg   *config.Config
	store *game.Store
	log   *logrus.Logger
	hub   *hub
	httpd *http.Server
}

// New builds the server and its route table.
func New(cfg *config.Config, store *game.Store, log *logrus.Logger) *Server {
	s := &Server{
		cfg:   cfg,
		store: store,
		log:   log,
		hub:   newHub(log),
	}

	mux := http.NewServeMux()

	mux.HandleFunc("POST /user", s.handleCreateUser)
	mux.HandleFunc("POST /user/login", s.handleLogin)
	mux.Handle("GET /user/{id}", s.authed(s.handleGetUser))
	mux.Handle("PATCH /user/{id}", s.authed(s.handleUpdateUser))
	mux.Handle("DELETE /user/{id}", s.authed(s.handleDeleteUser))

	mux.Handle("POST /game", s.authed(s.handleCreateGame))
	mux.Handle("POST /game/{id}/start", s.authed(s.handleStartGame))
	mux.Handle("POST /game/{id}/join", s.authed(s.handleJoinGame))
	mux.Handle("POST /game/{id}/action", s.authed(s.handleAction))
	mux.Handle("POST /game/{id}/leave", s.authed(s.handleLeaveGame))
	mux.Handle("GET /game/all", s.authed(s.handleActiveGames))
	mux.Handle("GET /game/{id}", s.authed(s.handleGetGame))
	mux.Handle("GET /game/{id}/actions", s.authed(s.handleGameActions))
	mux.Handle("GET /game/{id}/history", s.authed(s.handleGameHistory))
	mux.Handle("GET /game/{id}/subscribe", s.authed(s.handleSubscribe))

	s.httpd = &http.Server{
		Addr:              cfg.Addr(),
		Handler:           s.logged(mux),
		ReadHeaderTimeout: 10 * time.Second,
	}
	return s
}

// ListenAndServe blocks serving HTTP until Shutdown.
func (s *Server) ListenAndServe() error {
	s.log.WithField("addr", s.httpd.Addr).Info("http server listening")
	return s.httpd.ListenAndServe()
}

// Shutdown drains in-flight requests.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpd.Shutdown(ctx)
}

// authed wraps a handler with bearer token authentication.
func (s *Server) authed(h http.HandlerFunc) http.Handler {
	return auth.Middleware(s.cfg.Auth.JWTSecret, h)
}

// logged wraps the mux with request logging.
func (s *Server) logged(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)
		s.log.WithFields(logrus.Fields{
			"method":   r.Method,
			"path":     r.URL.Path,
			"status":   rec.status,
			"duration": time.Since(start).String(),
		}).Info("request")
	})
}

// statusRecorder captures the response status for the request log.
type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

// Unwrap lets http.ResponseController reach the underlying writer, which
// the WebSocket upgrade needs for hijacking.
func (r *statusRecorder) Unwrap() http.ResponseWriter {
	return r.ResponseWriter
}

// writeJSON serializes a response body with the given status.
func writeJSON(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if body != nil {
		_ = json.NewEncoder(w).Encode(body)
	}
}

// writeError maps request error kinds onto HTTP status codes.
func (s *Server) writeError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, game.ErrNotFound), errors.Is(err, database.ErrNoRows):
		status = http.StatusNotFound
	case errors.Is(err, game.ErrBadRequest):
		status = http.StatusBadRequest
	case errors.Is(err, game.ErrForbidden):
		status = http.StatusForbidden
	case errors.Is(err, game.ErrUnauthorized):
		status = http.StatusUnauthorized
	}
	if status == http.StatusInternalServerError {
		s.log.WithError(err).Error("internal error")
		writeJSON(w, status, map[string]string{"error": "internal server error"})
		return
	}
	writeJSON(w, status, map[string]string{"error": err.Error()})
}

// decodeBody parses a JSON request body into dst.
func decodeBody(r *http.Request, dst interface{}) error {
	defer r.Body.Close()
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		return game.ErrBadRequest
	}
	return nil
}
