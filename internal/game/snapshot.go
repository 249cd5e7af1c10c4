package game

import (
	"github.com/google/uuid"

	"github.com/sprucegoose-dev/antinomy-be/engine"
)

// SnapshotCard is a card as exposed to clients.
type SnapshotCard struct {
	ID    uuid.UUID `json:"id"`
	Suit  string    `json:"suit"`
	Color string    `json:"color"`
	Value int       `json:"value"`
}

// SnapshotPlayer is one seat's state as exposed to clients. Hand is
// populated only in snapshots generated for that player.
type SnapshotPlayer struct {
	ID           uuid.UUID      `json:"id"`
	UserID       uuid.UUID      `json:"userId"`
	Username     string         `json:"username,omitempty"`
	Orientation  string         `json:"orientation"`
	Position     int            `json:"position"`
	Points       int            `json:"points"`
	HandSize     int            `json:"handSize"`
	Hand         []SnapshotCard `json:"hand,omitempty"`
	IsActiveTurn bool           `json:"isActiveTurn"`
}

// GameSnapshot is the full game state tailored for one observer: the
// continuum and codex are public, hands are revealed only to their owner.
type GameSnapshot struct {
	GameID       uuid.UUID        `json:"gameId"`
	State        string           `json:"state"`
	Phase        string           `json:"phase"`
	CodexColor   string           `json:"codexColor"`
	Continuum    []SnapshotCard   `json:"continuum"`
	Codex        *SnapshotCard    `json:"codex,omitempty"`
	Players      []SnapshotPlayer `json:"players"`
	ActiveUserID uuid.UUID        `json:"activeUserId,omitempty"`
	WinnerUserID uuid.UUID        `json:"winnerUserId,omitempty"`
}

// GameSummary is the listing form of a game: lifecycle, seats and scores
// without any card detail.
type GameSummary struct {
	GameID       uuid.UUID        `json:"gameId"`
	State        string           `json:"state"`
	Phase        string           `json:"phase"`
	CodexColor   string           `json:"codexColor,omitempty"`
	Players      []SnapshotPlayer `json:"players"`
	ActiveUserID uuid.UUID        `json:"activeUserId,omitempty"`
	WinnerUserID uuid.UUID        `json:"winnerUserId,omitempty"`
}

// Summary returns the card-free listing view of the game.
func (g *ContinuumGame) Summary() GameSummary {
	g.Mu.Lock()
	defer g.Mu.Unlock()

	sum := GameSummary{
		GameID:  g.ID,
		State:   g.Engine.Status.String(),
		Phase:   g.Engine.Phase.String(),
		Players: g.snapshotPlayers(uuid.Nil),
	}
	if g.Engine.Status == engine.StatusCreated {
		return sum
	}
	sum.CodexColor = engine.ColorName(g.Engine.CodexColor)
	if !g.Engine.IsEnded() {
		sum.ActiveUserID = g.EngineToPlayer[g.Engine.ActivePlayer]
	} else if g.Engine.Winner >= 0 {
		sum.WinnerUserID = g.EngineToPlayer[g.Engine.Winner]
	}
	return sum
}

// Snapshot generates the game state from the perspective of forUser.
// Assumes lock is held by caller.
func (g *ContinuumGame) Snapshot(forUser uuid.UUID) GameSnapshot {
	snap := GameSnapshot{
		GameID: g.ID,
		State:  g.Engine.Status.String(),
		Phase:  g.Engine.Phase.String(),
	}

	if g.Engine.Status == engine.StatusCreated {
		// Nothing dealt yet; expose only the seats.
		snap.Players = g.snapshotPlayers(forUser)
		return snap
	}

	snap.CodexColor = engine.ColorName(g.Engine.CodexColor)
	snap.Continuum = make([]SnapshotCard, engine.ContinuumSize)
	for i, c := range g.Engine.Continuum {
		snap.Continuum[i] = g.snapshotCard(c)
	}
	codex := g.snapshotCard(g.Engine.Codex)
	snap.Codex = &codex
	snap.Players = g.snapshotPlayers(forUser)

	if !g.Engine.IsEnded() {
		snap.ActiveUserID = g.EngineToPlayer[g.Engine.ActivePlayer]
	} else if g.Engine.Winner >= 0 {
		snap.WinnerUserID = g.EngineToPlayer[g.Engine.Winner]
	}
	return snap
}

// snapshotPlayers builds the per-seat views. Assumes lock is held by caller.
func (g *ContinuumGame) snapshotPlayers(forUser uuid.UUID) []SnapshotPlayer {
	players := make([]SnapshotPlayer, len(g.Players))
	for i, p := range g.Players {
		sp := SnapshotPlayer{
			ID:          p.ID,
			UserID:      p.UserID,
			Orientation: p.Orientation,
			Position:    p.Position,
			Points:      p.Points,
		}
		if p.User != nil {
			sp.Username = p.User.Username
		}
		if idx, ok := g.PlayerToEngine[p.UserID]; ok && g.Engine.Status != engine.StatusCreated {
			hand := g.Engine.Hand(idx)
			sp.HandSize = len(hand)
			if p.UserID == forUser {
				sp.Hand = make([]SnapshotCard, len(hand))
				for j, c := range hand {
					sp.Hand[j] = g.snapshotCard(c)
				}
			}
			sp.IsActiveTurn = !g.Engine.IsEnded() && g.Engine.ActivePlayer == idx
		}
		players[i] = sp
	}
	return players
}

func (g *ContinuumGame) snapshotCard(c engine.Card) SnapshotCard {
	return SnapshotCard{
		ID:    g.CardTracker.UUIDFor(c),
		Suit:  c.SuitName(),
		Color: c.ColorName(),
		Value: int(c.Value()),
	}
}
