package game

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/sprucegoose-dev/antinomy-be/internal/cache"
	"github.com/sprucegoose-dev/antinomy-be/internal/database"
	"github.com/sprucegoose-dev/antinomy-be/internal/models"
)

// Store holds every live game in memory, keyed by game ID.
type Store struct {
	mu    sync.Mutex
	games map[uuid.UUID]*ContinuumGame

	// Seeder produces the RNG seed for new games. Overridable in tests
	// for deterministic deals.
	Seeder func() uint64
}

// NewStore creates an empty game store.
func NewStore() *Store {
	return &Store{
		games:  make(map[uuid.UUID]*ContinuumGame),
		Seeder: func() uint64 { return uint64(time.Now().UnixNano()) },
	}
}

// CreateGame registers a new game with the creator seated and persists
// the game row.
func (s *Store) CreateGame(creator *models.User) *ContinuumGame {
	g := NewContinuumGame(creator, s.Seeder())
	row := g.gameRow()

	s.mu.Lock()
	s.games[g.ID] = g
	s.mu.Unlock()

	if database.DB != nil {
		go func() {
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := database.InsertGame(ctx, row); err != nil {
				logrus.WithError(err).WithField("game_id", row.ID).Error("insert game row")
			}
		}()
	}
	go func(id uuid.UUID) {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		if err := cache.AddActiveGame(ctx, id); err != nil {
			logrus.WithError(err).Warn("add active game")
		}
	}(g.ID)

	return g
}

// GetGame returns a live game, or ErrNotFound.
func (s *Store) GetGame(id uuid.UUID) (*ContinuumGame, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	g, ok := s.games[id]
	if !ok {
		return nil, ErrNotFound
	}
	return g, nil
}

// ActiveGames returns every game that has not ended.
func (s *Store) ActiveGames() []*ContinuumGame {
	s.mu.Lock()
	defer s.mu.Unlock()
	games := make([]*ContinuumGame, 0, len(s.games))
	for _, g := range s.games {
		if !g.IsEnded() {
			games = append(games, g)
		}
	}
	return games
}

// Remove drops a finished game from memory. The persisted row remains.
func (s *Store) Remove(id uuid.UUID) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.games, id)
}
