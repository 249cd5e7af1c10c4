package game

import (
	"github.com/google/uuid"

	"github.com/sprucegoose-dev/antinomy-be/engine"
	"github.com/sprucegoose-dev/antinomy-be/internal/models"
)

// CardUUIDTracker maps the engine's packed card bytes to stable UUIDs for
// API and storage use. Every card type occurs exactly once per game, so
// the packed byte is a sufficient key for the lifetime of a game.
type CardUUIDTracker struct {
	ByCard   map[engine.Card]uuid.UUID
	Registry map[uuid.UUID]engine.Card
}

// initCardTracker assigns a UUID to each of the 16 cards after Deal.
func (t *CardUUIDTracker) initCardTracker() {
	t.ByCard = make(map[engine.Card]uuid.UUID, engine.DeckSize)
	t.Registry = make(map[uuid.UUID]engine.Card, engine.DeckSize)
	for _, c := range engine.Catalog() {
		id, _ := uuid.NewRandom()
		t.ByCard[c] = id
		t.Registry[id] = c
	}
}

// UUIDFor returns the UUID assigned to an engine card.
func (t *CardUUIDTracker) UUIDFor(c engine.Card) uuid.UUID {
	return t.ByCard[c]
}

// CardFor resolves a card UUID back to its engine card. The second return
// is false for unknown IDs.
func (t *CardUUIDTracker) CardFor(id uuid.UUID) (engine.Card, bool) {
	c, ok := t.Registry[id]
	return c, ok
}

// cardRow converts an engine card into its persistence row.
func (t *CardUUIDTracker) cardRow(c engine.Card, gameID uuid.UUID, playerID *uuid.UUID, zone string, idx int) models.Card {
	return models.Card{
		ID:       t.UUIDFor(c),
		GameID:   gameID,
		PlayerID: playerID,
		Suit:     c.SuitName(),
		Color:    c.ColorName(),
		Value:    int(c.Value()),
		Zone:     zone,
		Index:    idx,
	}
}
