// Package game orchestrates live Continuum games: seating, turn actions
// against the rules engine, persistence and client fanout.
package game

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/coder/websocket"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/sprucegoose-dev/antinomy-be/engine"
	"github.com/sprucegoose-dev/antinomy-be/internal/cache"
	"github.com/sprucegoose-dev/antinomy-be/internal/database"
	"github.com/sprucegoose-dev/antinomy-be/internal/models"
)

// ActionPayload is the wire form of a turn action.
type ActionPayload struct {
	Type        string    `json:"type"`
	CardID      uuid.UUID `json:"cardId,omitempty"`
	TargetIndex int       `json:"targetIndex"`
}

// ContinuumGame holds one live game: the authoritative engine state plus
// the seat, tracking and callback plumbing around it.
type ContinuumGame struct {
	ID        uuid.UUID
	CreatorID uuid.UUID

	Players []*models.Player

	Engine         engine.State
	CardTracker    CardUUIDTracker
	PlayerToEngine map[uuid.UUID]uint8
	EngineToPlayer [engine.NumPlayers]uuid.UUID

	Mu sync.Mutex

	// BroadcastFn sends an event to every subscriber of this game.
	// BroadcastToPlayerFn sends an event to one user's connections.
	BroadcastFn         func(ev GameEvent)
	BroadcastToPlayerFn func(userID uuid.UUID, ev GameEvent)

	actionIndex int
	log         *logrus.Entry
}

// NewContinuumGame creates a game with the creator already seated.
func NewContinuumGame(creator *models.User, seed uint64) *ContinuumGame {
	id, _ := uuid.NewRandom()
	g := &ContinuumGame{
		ID:             id,
		CreatorID:      creator.ID,
		Engine:         engine.NewGame(seed),
		PlayerToEngine: make(map[uuid.UUID]uint8),
		log:            logrus.WithField("game_id", id),
	}
	g.seatPlayer(creator)
	return g
}

// Join seats a user in the game. Fails once the game has been dealt or
// both seats are taken.
func (g *ContinuumGame) Join(user *models.User) (*models.Player, error) {
	g.Mu.Lock()
	defer g.Mu.Unlock()

	if g.Engine.Status != engine.StatusCreated {
		return nil, fmt.Errorf("%w: game already started", ErrBadRequest)
	}
	if g.playerByUser(user.ID) != nil {
		return nil, fmt.Errorf("%w: already joined", ErrBadRequest)
	}
	if len(g.Players) >= engine.NumPlayers {
		return nil, fmt.Errorf("%w: game is full", ErrBadRequest)
	}

	p := g.seatPlayer(user)
	g.logAction(user.ID, string(EventJoinGame), nil)
	g.fireEvent(GameEvent{Type: EventJoinGame, GameID: g.ID, UserID: user.ID})
	g.broadcastGameState()
	return p, nil
}

// Leave removes a user from the game. Before the deal the seat is simply
// vacated; in a running game leaving forfeits and the opponent wins.
func (g *ContinuumGame) Leave(userID uuid.UUID) error {
	g.Mu.Lock()
	defer g.Mu.Unlock()

	p := g.playerByUser(userID)
	if p == nil {
		return fmt.Errorf("%w: not a player in this game", ErrForbidden)
	}

	switch g.Engine.Status {
	case engine.StatusCreated:
		for i, seat := range g.Players {
			if seat.UserID == userID {
				g.Players = append(g.Players[:i], g.Players[i+1:]...)
				break
			}
		}
		if database.DB != nil {
			go func(id uuid.UUID) {
				ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
				defer cancel()
				if err := database.DeletePlayer(ctx, id); err != nil {
					logrus.WithError(err).Warn("delete player row")
				}
			}(p.ID)
		}
	case engine.StatusEnded:
		return fmt.Errorf("%w: game already ended", ErrBadRequest)
	default:
		// Forfeit: the opponent takes the win.
		idx, ok := g.PlayerToEngine[userID]
		if !ok {
			return fmt.Errorf("%w: not seated in a running game", ErrBadRequest)
		}
		g.Engine.Status = engine.StatusEnded
		g.Engine.Winner = int8(g.Engine.Opponent(idx))
		g.syncPlayersFromEngine()
		g.onGameEnded()
	}

	g.logAction(userID, string(EventLeaveGame), nil)
	g.fireEvent(GameEvent{Type: EventLeaveGame, GameID: g.ID, UserID: userID})
	g.broadcastGameState()
	g.persistGameState()
	return nil
}

// Start deals the game. Only the creator may start, and both seats must
// be filled.
func (g *ContinuumGame) Start(userID uuid.UUID) error {
	g.Mu.Lock()
	defer g.Mu.Unlock()

	if userID != g.CreatorID {
		return fmt.Errorf("%w: only the creator can start the game", ErrForbidden)
	}
	if len(g.Players) != engine.NumPlayers {
		return fmt.Errorf("%w: need %d players to start", ErrBadRequest, engine.NumPlayers)
	}
	if err := g.Engine.Deal(); err != nil {
		return mapEngineError(err)
	}

	for i, p := range g.Players {
		g.PlayerToEngine[p.UserID] = uint8(i)
		g.EngineToPlayer[i] = p.UserID
	}
	g.CardTracker.initCardTracker()
	g.syncPlayersFromEngine()

	g.log.WithField("codex_color", engine.ColorName(g.Engine.CodexColor)).Info("game dealt")
	g.logAction(userID, "game_start", map[string]interface{}{
		"codexColor": engine.ColorName(g.Engine.CodexColor),
	})
	g.broadcastGameState()
	g.persistGameState()
	return nil
}

// PerformAction validates and applies one turn action for a user, then
// persists and broadcasts the resulting state.
func (g *ContinuumGame) PerformAction(userID uuid.UUID, payload ActionPayload) error {
	g.Mu.Lock()
	defer g.Mu.Unlock()

	idx, ok := g.PlayerToEngine[userID]
	if !ok {
		return fmt.Errorf("%w: not a player in this game", ErrForbidden)
	}

	action, err := g.toEngineAction(payload)
	if err != nil {
		return err
	}
	if err := g.Engine.Apply(idx, action); err != nil {
		return mapEngineError(err)
	}
	g.syncPlayersFromEngine()

	g.logAction(userID, "action_"+payload.Type, map[string]interface{}{
		"cardId":      payload.CardID,
		"targetIndex": payload.TargetIndex,
	})
	if g.Engine.IsEnded() {
		g.onGameEnded()
	}
	g.broadcastGameState()
	g.persistGameState()
	return nil
}

// LegalActionsFor returns the wire-form actions the user may submit right
// now. Seated players who are not on turn (or seated before the deal) get
// an empty list; users with no seat in the game are forbidden.
func (g *ContinuumGame) LegalActionsFor(userID uuid.UUID) ([]ActionPayload, error) {
	g.Mu.Lock()
	defer g.Mu.Unlock()

	if g.playerByUser(userID) == nil {
		return nil, fmt.Errorf("%w: not a player in this game", ErrForbidden)
	}
	payloads := []ActionPayload{}
	idx, ok := g.PlayerToEngine[userID]
	if !ok {
		return payloads, nil
	}
	for _, a := range g.Engine.LegalActions(idx) {
		payload := ActionPayload{Type: a.Type.String(), TargetIndex: int(a.TargetIndex)}
		if a.Type == engine.ActionMove {
			payload.CardID = g.CardTracker.UUIDFor(a.SourceCard)
		}
		payloads = append(payloads, payload)
	}
	return payloads, nil
}

// SnapshotFor returns the state tailored for one observer.
func (g *ContinuumGame) SnapshotFor(userID uuid.UUID) GameSnapshot {
	g.Mu.Lock()
	defer g.Mu.Unlock()
	return g.Snapshot(userID)
}

// IsEnded reports whether the game has finished.
func (g *ContinuumGame) IsEnded() bool {
	g.Mu.Lock()
	defer g.Mu.Unlock()
	return g.Engine.IsEnded()
}

// MarkConnected records a live WebSocket connection for a seated user.
func (g *ContinuumGame) MarkConnected(userID uuid.UUID, conn *websocket.Conn) {
	g.Mu.Lock()
	defer g.Mu.Unlock()
	if p := g.playerByUser(userID); p != nil {
		p.Conn = conn
		p.Connected = true
	}
}

// MarkDisconnected clears a user's connection state.
func (g *ContinuumGame) MarkDisconnected(userID uuid.UUID) {
	g.Mu.Lock()
	defer g.Mu.Unlock()
	if p := g.playerByUser(userID); p != nil {
		p.Conn = nil
		p.Connected = false
	}
}

// toEngineAction converts a wire payload into an engine action.
// Assumes lock is held by caller.
func (g *ContinuumGame) toEngineAction(payload ActionPayload) (engine.Action, error) {
	if payload.TargetIndex < 0 || payload.TargetIndex >= engine.ContinuumSize {
		return engine.Action{}, fmt.Errorf("%w: target index %d out of range", ErrBadRequest, payload.TargetIndex)
	}
	action := engine.Action{SourceCard: engine.EmptyCard, TargetIndex: int8(payload.TargetIndex)}
	switch payload.Type {
	case "deploy":
		action.Type = engine.ActionDeploy
	case "move":
		action.Type = engine.ActionMove
		card, ok := g.CardTracker.CardFor(payload.CardID)
		if !ok {
			return engine.Action{}, fmt.Errorf("%w: unknown card %s", ErrBadRequest, payload.CardID)
		}
		action.SourceCard = card
	case "replace":
		action.Type = engine.ActionReplace
	default:
		return engine.Action{}, fmt.Errorf("%w: unknown action type %q", ErrBadRequest, payload.Type)
	}
	return action, nil
}

// seatPlayer appends a seat for the user. Assumes lock is held by caller
// (or the game is not yet shared).
func (g *ContinuumGame) seatPlayer(user *models.User) *models.Player {
	id, _ := uuid.NewRandom()
	p := &models.Player{
		ID:       id,
		UserID:   user.ID,
		GameID:   g.ID,
		Position: -1,
		User:     user,
	}
	g.Players = append(g.Players, p)
	return p
}

// playerByUser finds a seat by user ID. Assumes lock is held by caller.
func (g *ContinuumGame) playerByUser(userID uuid.UUID) *models.Player {
	for _, p := range g.Players {
		if p.UserID == userID {
			return p
		}
	}
	return nil
}

// syncPlayersFromEngine copies orientation, position and points from the
// engine into the seat rows. Assumes lock is held by caller.
func (g *ContinuumGame) syncPlayersFromEngine() {
	for _, p := range g.Players {
		idx, ok := g.PlayerToEngine[p.UserID]
		if !ok {
			continue
		}
		ps := g.Engine.Players[idx]
		p.Orientation = engine.OrientationName(ps.Orientation)
		p.Position = int(ps.Position)
		p.Points = int(ps.Points)
	}
}

// onGameEnded handles end-of-game bookkeeping. Assumes lock is held by
// caller.
func (g *ContinuumGame) onGameEnded() {
	winner := uuid.Nil
	if g.Engine.Winner >= 0 {
		winner = g.EngineToPlayer[g.Engine.Winner]
	}
	g.log.WithField("winner_user_id", winner).Info("game ended")
	g.logAction(winner, "game_end", map[string]interface{}{
		"winnerUserId": winner,
	})
	go func(id uuid.UUID) {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		if err := cache.RemoveActiveGame(ctx, id); err != nil {
			logrus.WithError(err).Warn("remove active game")
		}
	}(g.ID)
	g.fireEvent(GameEvent{Type: EventUpdateActiveGames, GameID: g.ID})
}

// broadcastGameState sends each seated player their private snapshot.
// Assumes lock is held by caller.
func (g *ContinuumGame) broadcastGameState() {
	if g.BroadcastToPlayerFn == nil {
		return
	}
	for _, p := range g.Players {
		snap := g.Snapshot(p.UserID)
		g.BroadcastToPlayerFn(p.UserID, GameEvent{
			Type:   EventUpdateGameState,
			GameID: g.ID,
			UserID: p.UserID,
			State:  &snap,
		})
	}
}

// fireEvent broadcasts an event to every subscriber. Assumes lock is held
// by caller.
func (g *ContinuumGame) fireEvent(ev GameEvent) {
	if g.BroadcastFn != nil {
		g.BroadcastFn(ev)
	}
}

// logAction queues an action history record. Assumes lock is held by
// caller.
func (g *ContinuumGame) logAction(actorID uuid.UUID, actionType string, payload map[string]interface{}) {
	g.actionIndex++
	if payload == nil {
		payload = make(map[string]interface{})
	}
	record := cache.GameActionRecord{
		GameID:        g.ID,
		ActionIndex:   g.actionIndex,
		ActorUserID:   actorID,
		ActionType:    actionType,
		ActionPayload: payload,
		Timestamp:     time.Now().UnixMilli(),
	}
	go func(rec cache.GameActionRecord) {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		if err := cache.PublishGameAction(ctx, rec); err != nil {
			g.log.WithError(err).WithField("action_index", rec.ActionIndex).Error("publish action record")
		}
	}(record)
}

// persistGameState writes the game row, seats and card layout in one
// transaction, asynchronously. Rows are built under the lock so the
// write captures a consistent state. Assumes lock is held by caller.
func (g *ContinuumGame) persistGameState() {
	row := g.gameRow()
	players := make([]*models.Player, len(g.Players))
	for i, p := range g.Players {
		seat := *p
		seat.User = nil
		seat.Conn = nil
		players[i] = &seat
	}
	cards := g.buildCardRows()

	snap := g.Snapshot(uuid.Nil)
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if database.DB != nil {
			if err := database.SaveGameState(ctx, row, players, cards); err != nil {
				g.log.WithError(err).Error("save game state")
			}
		}
		if err := cache.PublishGameUpdate(ctx, row.ID, snap); err != nil {
			g.log.WithError(err).Warn("publish game update")
		}
	}()
}

// gameRow builds the games table row. Assumes lock is held by caller.
func (g *ContinuumGame) gameRow() *models.Game {
	row := &models.Game{
		ID:         g.ID,
		CreatorID:  g.CreatorID,
		State:      g.Engine.Status.String(),
		Phase:      g.Engine.Phase.String(),
		CodexColor: engine.ColorName(g.Engine.CodexColor),
	}
	if g.Engine.Status == engine.StatusCreated {
		row.CodexColor = ""
		return row
	}
	if !g.Engine.IsEnded() {
		if p := g.playerByUser(g.EngineToPlayer[g.Engine.ActivePlayer]); p != nil {
			row.ActivePlayerID = p.ID
		}
	} else if g.Engine.Winner >= 0 {
		row.WinnerID = g.EngineToPlayer[g.Engine.Winner]
	}
	return row
}

// buildCardRows flattens the engine card layout into cards table rows.
// Assumes lock is held by caller.
func (g *ContinuumGame) buildCardRows() []models.Card {
	if g.Engine.Status == engine.StatusCreated {
		return nil
	}
	cards := make([]models.Card, 0, engine.DeckSize)
	for i, c := range g.Engine.Continuum {
		cards = append(cards, g.CardTracker.cardRow(c, g.ID, nil, models.ZoneContinuum, i))
	}
	for _, p := range g.Players {
		idx, ok := g.PlayerToEngine[p.UserID]
		if !ok {
			continue
		}
		playerID := p.ID
		for j, c := range g.Engine.Hand(idx) {
			cards = append(cards, g.CardTracker.cardRow(c, g.ID, &playerID, models.ZoneHand, j))
		}
	}
	cards = append(cards, g.CardTracker.cardRow(g.Engine.Codex, g.ID, nil, models.ZoneCodex, 0))
	return cards
}
