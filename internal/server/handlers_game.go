package server

import (
	"net/http"

	"github.com/sprucegoose-dev/antinomy-be/internal/auth"
	"github.com/sprucegoose-dev/antinomy-be/internal/cache"
	"github.com/sprucegoose-dev/antinomy-be/internal/database"
	"github.com/sprucegoose-dev/antinomy-be/internal/game"
	"github.com/sprucegoose-dev/antinomy-be/internal/models"
)

// requestUser loads the authenticated user's row.
func (s *Server) requestUser(r *http.Request) (*models.User, error) {
	return database.GetUserByID(r.Context(), auth.UserIDFromContext(r.Context()))
}

func (s *Server) handleCreateGame(w http.ResponseWriter, r *http.Request) {
	user, err := s.requestUser(r)
	if err != nil {
		s.writeError(w, err)
		return
	}
	g := s.store.CreateGame(user)
	s.hub.attach(g)
	writeJSON(w, http.StatusCreated, g.SnapshotFor(user.ID))
}

func (s *Server) handleJoinGame(w http.ResponseWriter, r *http.Request) {
	id, err := pathUUID(r, "id")
	if err != nil {
		s.writeError(w, err)
		return
	}
	g, err := s.store.GetGame(id)
	if err != nil {
		s.writeError(w, err)
		return
	}
	user, err := s.requestUser(r)
	if err != nil {
		s.writeError(w, err)
		return
	}
	if _, err := g.Join(user); err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, g.SnapshotFor(user.ID))
}

func (s *Server) handleStartGame(w http.ResponseWriter, r *http.Request) {
	id, err := pathUUID(r, "id")
	if err != nil {
		s.writeError(w, err)
		return
	}
	g, err := s.store.GetGame(id)
	if err != nil {
		s.writeError(w, err)
		return
	}
	userID := auth.UserIDFromContext(r.Context())
	if err := g.Start(userID); err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, g.SnapshotFor(userID))
}

func (s *Server) handleAction(w http.ResponseWriter, r *http.Request) {
	id, err := pathUUID(r, "id")
	if err != nil {
		s.writeError(w, err)
		return
	}
	g, err := s.store.GetGame(id)
	if err != nil {
		s.writeError(w, err)
		return
	}
	var payload game.ActionPayload
	if err := decodeBody(r, &payload); err != nil {
		s.writeError(w, err)
		return
	}
	userID := auth.UserIDFromContext(r.Context())
	if err := g.PerformAction(userID, payload); err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, g.SnapshotFor(userID))
}

func (s *Server) handleLeaveGame(w http.ResponseWriter, r *http.Request) {
	id, err := pathUUID(r, "id")
	if err != nil {
		s.writeError(w, err)
		return
	}
	g, err := s.store.GetGame(id)
	if err != nil {
		s.writeError(w, err)
		return
	}
	if err := g.Leave(auth.UserIDFromContext(r.Context())); err != nil {
		s.writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleGetGame(w http.ResponseWriter, r *http.Request) {
	id, err := pathUUID(r, "id")
	if err != nil {
		s.writeError(w, err)
		return
	}
	g, err := s.store.GetGame(id)
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, g.SnapshotFor(auth.UserIDFromContext(r.Context())))
}

func (s *Server) handleActiveGames(w http.ResponseWriter, r *http.Request) {
	games := s.store.ActiveGames()
	summaries := make([]game.GameSummary, 0, len(games))
	for _, g := range games {
		summaries = append(summaries, g.Summary())
	}
	writeJSON(w, http.StatusOK, summaries)
}

// handleGameActions returns the actions the requesting player may submit
// on their current turn.
func (s *Server) handleGameActions(w http.ResponseWriter, r *http.Request) {
	id, err := pathUUID(r, "id")
	if err != nil {
		s.writeError(w, err)
		return
	}
	g, err := s.store.GetGame(id)
	if err != nil {
		s.writeError(w, err)
		return
	}
	payloads, err := g.LegalActionsFor(auth.UserIDFromContext(r.Context()))
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, payloads)
}

// handleGameHistory returns the recorded action history of a game.
func (s *Server) handleGameHistory(w http.ResponseWriter, r *http.Request) {
	id, err := pathUUID(r, "id")
	if err != nil {
		s.writeError(w, err)
		return
	}
	if _, err := s.store.GetGame(id); err != nil {
		s.writeError(w, err)
		return
	}
	records, err := cache.GameActions(r.Context(), id)
	if err != nil {
		s.writeError(w, err)
		return
	}
	if records == nil {
		records = []cache.GameActionRecord{}
	}
	writeJSON(w, http.StatusOK, records)
}
