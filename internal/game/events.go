package game

import "github.com/google/uuid"

// GameEventType names the events streamed to WebSocket subscribers.
type GameEventType string

const (
	EventUpdateGameState   GameEventType = "onUpdateGameState"
	EventUpdateActiveGames GameEventType = "onUpdateActiveGames"
	EventJoinGame          GameEventType = "onJoinGame"
	EventLeaveGame         GameEventType = "onLeaveGame"
)

// GameEvent is the envelope broadcast to clients. State is present only
// on onUpdateGameState events and is tailored per recipient.
type GameEvent struct {
	Type    GameEventType          `json:"type"`
	GameID  uuid.UUID              `json:"gameId"`
	UserID  uuid.UUID              `json:"userId,omitempty"`
	State   *GameSnapshot          `json:"state,omitempty"`
	Payload map[string]interface{} `json:"payload,omitempty"`
}
