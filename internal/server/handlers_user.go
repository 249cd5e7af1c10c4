package server

import (
	"fmt"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/sprucegoose-dev/antinomy-be/internal/auth"
	"github.com/sprucegoose-dev/antinomy-be/internal/database"
	"github.com/sprucegoose-dev/antinomy-be/internal/game"
	"github.com/sprucegoose-dev/antinomy-be/internal/models"
)

type userPayload struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginPayload struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginResponse struct {
	UserID     uuid.UUID `json:"userId"`
	Username   string    `json:"username"`
	Token      string    `json:"token"`
	SessionExp time.Time `json:"sessionExp"`
}

func (s *Server) handleCreateUser(w http.ResponseWriter, r *http.Request) {
	var payload userPayload
	if err := decodeBody(r, &payload); err != nil {
		s.writeError(w, err)
		return
	}
	if payload.Username == "" || payload.Email == "" || payload.Password == "" {
		s.writeError(w, fmt.Errorf("%w: username, email and password are required", game.ErrBadRequest))
		return
	}

	digest, err := auth.HashPassword(payload.Password)
	if err != nil {
		s.writeError(w, err)
		return
	}
	id, _ := uuid.NewRandom()
	sessionID, _ := uuid.NewRandom()
	user := &models.User{
		ID:           id,
		Username:     payload.Username,
		Email:        payload.Email,
		PasswordHash: digest,
		SessionID:    sessionID,
		SessionExp:   time.Now().Add(s.cfg.Auth.TokenTTL),
	}
	if err := database.CreateUser(r.Context(), user); err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, user)
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var payload loginPayload
	if err := decodeBody(r, &payload); err != nil {
		s.writeError(w, err)
		return
	}

	user, err := database.GetUserByEmail(r.Context(), payload.Email)
	if err != nil {
		s.writeError(w, err)
		return
	}
	if !auth.CheckPassword(user.PasswordHash, payload.Password) {
		s.writeError(w, fmt.Errorf("%w: incorrect email and password combination", game.ErrUnauthorized))
		return
	}

	// Rotate the session on every login.
	sessionID, _ := uuid.NewRandom()
	exp := time.Now().Add(s.cfg.Auth.TokenTTL)
	if err := database.UpdateUserSession(r.Context(), user.ID, sessionID, exp); err != nil {
		s.writeError(w, err)
		return
	}
	token, err := auth.CreateToken(user.ID, sessionID, s.cfg.Auth.JWTSecret, s.cfg.Auth.TokenTTL)
	if err != nil {
		s.writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, loginResponse{
		UserID:     user.ID,
		Username:   user.Username,
		Token:      token,
		SessionExp: exp,
	})
}

func (s *Server) handleGetUser(w http.ResponseWriter, r *http.Request) {
	id, err := pathUUID(r, "id")
	if err != nil {
		s.writeError(w, err)
		return
	}
	user, err := database.GetUserByID(r.Context(), id)
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, user)
}

func (s *Server) handleUpdateUser(w http.ResponseWriter, r *http.Request) {
	id, err := pathUUID(r, "id")
	if err != nil {
		s.writeError(w, err)
		return
	}
	if auth.UserIDFromContext(r.Context()) != id {
		s.writeError(w, fmt.Errorf("%w: cannot update another user", game.ErrForbidden))
		return
	}
	var payload userPayload
	if err := decodeBody(r, &payload); err != nil {
		s.writeError(w, err)
		return
	}

	user, err := database.GetUserByID(r.Context(), id)
	if err != nil {
		s.writeError(w, err)
		return
	}
	if payload.Username != "" {
		user.Username = payload.Username
	}
	if payload.Email != "" {
		user.Email = payload.Email
	}
	if payload.Password != "" {
		digest, err := auth.HashPassword(payload.Password)
		if err != nil {
			s.writeError(w, err)
			return
		}
		user.PasswordHash = digest
	}
	if err := database.UpdateUser(r.Context(), user); err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, user)
}

func (s *Server) handleDeleteUser(w http.ResponseWriter, r *http.Request) {
	id, err := pathUUID(r, "id")
	if err != nil {
		s.writeError(w, err)
		return
	}
	if auth.UserIDFromContext(r.Context()) != id {
		s.writeError(w, fmt.Errorf("%w: cannot delete another user", game.ErrForbidden))
		return
	}
	if err := database.DeleteUser(r.Context(), id); err != nil {
		s.writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// pathUUID parses a UUID path parameter.
func pathUUID(r *http.Request, name string) (uuid.UUID, error) {
	id, err := uuid.Parse(r.PathValue(name))
	if err != nil {
		return uuid.Nil, fmt.Errorf("%w: invalid %s", game.ErrBadRequest, name)
	}
	return id, nil
}
