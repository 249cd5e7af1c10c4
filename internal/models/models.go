// Package models holds the row and session structs shared by the database,
// cache and game packages.
package models

import (
	"time"

	"github.com/coder/websocket"
	"github.com/google/uuid"
)

// User is an account row. PasswordHash is the bcrypt digest and is never
// serialized to clients.
type User struct {
	ID           uuid.UUID `json:"id"`
	Username     string    `json:"username"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	SessionID    uuid.UUID `json:"sessionId,omitempty"`
	SessionExp   time.Time `json:"sessionExp,omitempty"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

// Game is a game row. WinnerID and ActivePlayerID are uuid.Nil until set.
type Game struct {
	ID             uuid.UUID `json:"id"`
	CreatorID      uuid.UUID `json:"creatorId"`
	ActivePlayerID uuid.UUID `json:"activePlayerId,omitempty"`
	WinnerID       uuid.UUID `json:"winnerId,omitempty"`
	State          string    `json:"state"`
	Phase          string    `json:"phase"`
	CodexColor     string    `json:"codexColor"`
	CreatedAt      time.Time `json:"createdAt"`
	UpdatedAt      time.Time `json:"updatedAt"`
}

// Card zones as stored in the cards table.
const (
	ZoneContinuum = "continuum"
	ZoneHand      = "hand"
	ZoneCodex     = "codex"
)

// Card is a card row. PlayerID is nil for continuum and codex cards.
// Index is the continuum position or hand slot, depending on the zone.
type Card struct {
	ID       uuid.UUID  `json:"id"`
	GameID   uuid.UUID  `json:"gameId"`
	PlayerID *uuid.UUID `json:"playerId,omitempty"`
	Suit     string     `json:"suit"`
	Color    string     `json:"color"`
	Value    int        `json:"value"`
	Zone     string     `json:"zone"`
	Index    int        `json:"index"`
}

// Player is a seat in a live game: the persisted row fields plus the
// runtime connection state used for WebSocket fanout.
type Player struct {
	ID          uuid.UUID `json:"id"`
	UserID      uuid.UUID `json:"userId"`
	GameID      uuid.UUID `json:"gameId"`
	Orientation string    `json:"orientation"`
	Position    int       `json:"position"`
	Points      int       `json:"points"`

	User      *User           `json:"-"`
	Conn      *websocket.Conn `json:"-"`
	Connected bool            `json:"-"`
}
