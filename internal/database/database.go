// Package database owns the Postgres connection pool and the persistence
// queries for users, games, players and cards.
package database

import (
	"context"
	_ "embed"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/sprucegoose-dev/antinomy-be/internal/models"
)

//go:embed schema.sql
var schema string

// DB is the shared connection pool. Nil until Connect succeeds; callers
// that persist opportunistically check for nil before writing.
var DB *pgxpool.Pool

// ErrNoRows signals a lookup that matched nothing.
var ErrNoRows = errors.New("no rows")

// Connect opens the pool and verifies the connection.
func Connect(ctx context.Context, url string) error {
	pool, err := pgxpool.New(ctx, url)
	if err != nil {
		return fmt.Errorf("create pool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return fmt.Errorf("ping: %w", err)
	}
	DB = pool
	return nil
}

// Migrate applies the embedded schema. Statements are idempotent.
func Migrate(ctx context.Context) error {
	if _, err := DB.Exec(ctx, schema); err != nil {
		return fmt.Errorf("apply schema: %w", err)
	}
	return nil
}

// CreateUser inserts a new user row.
func CreateUser(ctx context.Context, u *models.User) error {
	now := time.Now()
	u.CreatedAt = now
	u.UpdatedAt = now
	_, err := DB.Exec(ctx, `
		INSERT INTO users (id, username, email, password, session_id, session_exp, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		u.ID, u.Username, u.Email, u.PasswordHash, u.SessionID, u.SessionExp, u.CreatedAt, u.UpdatedAt)
	return err
}

// GetUserByID fetches a user row, returning ErrNoRows when absent.
func GetUserByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	return scanUser(DB.QueryRow(ctx, `
		SELECT id, username, email, password, session_id, session_exp, created_at, updated_at
		FROM users WHERE id = $1`, id))
}

// GetUserByEmail fetches a user row by email, returning ErrNoRows when absent.
func GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	return scanUser(DB.QueryRow(ctx, `
		SELECT id, username, email, password, session_id, session_exp, created_at, updated_at
		FROM users WHERE email = $1`, email))
}

func scanUser(row pgx.Row) (*models.User, error) {
	var u models.User
	var sessionID *uuid.UUID
	var sessionExp *time.Time
	err := row.Scan(&u.ID, &u.Username, &u.Email, &u.PasswordHash, &sessionID, &sessionExp, &u.CreatedAt, &u.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNoRows
	}
	if err != nil {
		return nil, err
	}
	if sessionID != nil {
		u.SessionID = *sessionID
	}
	if sessionExp != nil {
		u.SessionExp = *sessionExp
	}
	return &u, nil
}

// UpdateUser rewrites the mutable profile fields of a user row.
func UpdateUser(ctx context.Context, u *models.User) error {
	u.UpdatedAt = time.Now()
	tag, err := DB.Exec(ctx, `
		UPDATE users SET username = $2, email = $3, password = $4, updated_at = $5
		WHERE id = $1`,
		u.ID, u.Username, u.Email, u.PasswordHash, u.UpdatedAt)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNoRows
	}
	return nil
}

// UpdateUserSession rotates the stored session on login.
func UpdateUserSession(ctx context.Context, id, sessionID uuid.UUID, exp time.Time) error {
	_, err := DB.Exec(ctx, `
		UPDATE users SET session_id = $2, session_exp = $3, updated_at = now()
		WHERE id = $1`, id, sessionID, exp)
	return err
}

// DeleteUser removes a user row.
func DeleteUser(ctx context.Context, id uuid.UUID) error {
	tag, err := DB.Exec(ctx, `DELETE FROM users WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNoRows
	}
	return nil
}

// InsertGame inserts a freshly created game row.
func InsertGame(ctx context.Context, g *models.Game) error {
	now := time.Now()
	g.CreatedAt = now
	g.UpdatedAt = now
	_, err := DB.Exec(ctx, `
		INSERT INTO games (id, creator_id, active_player_id, winner_id, state, phase, codex_color, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		g.ID, g.CreatorID, nullUUID(g.ActivePlayerID), nullUUID(g.WinnerID),
		g.State, g.Phase, g.CodexColor, g.CreatedAt, g.UpdatedAt)
	return err
}

// GetGame fetches a game row, returning ErrNoRows when absent.
func GetGame(ctx context.Context, id uuid.UUID) (*models.Game, error) {
	var g models.Game
	var active, winner *uuid.UUID
	err := DB.QueryRow(ctx, `
		SELECT id, creator_id, active_player_id, winner_id, state, phase, codex_color, created_at, updated_at
		FROM games WHERE id = $1`, id).
		Scan(&g.ID, &g.CreatorID, &active, &winner, &g.State, &g.Phase, &g.CodexColor, &g.CreatedAt, &g.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNoRows
	}
	if err != nil {
		return nil, err
	}
	if active != nil {
		g.ActivePlayerID = *active
	}
	if winner != nil {
		g.WinnerID = *winner
	}
	return &g, nil
}

// ListActiveGames returns all games that have not ended, newest first.
func ListActiveGames(ctx context.Context) ([]models.Game, error) {
	rows, err := DB.Query(ctx, `
		SELECT id, creator_id, active_player_id, winner_id, state, phase, codex_color, created_at, updated_at
		FROM games WHERE state <> 'ended' ORDER BY created_at DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var games []models.Game
	for rows.Next() {
		var g models.Game
		var active, winner *uuid.UUID
		if err := rows.Scan(&g.ID, &g.CreatorID, &active, &winner, &g.State, &g.Phase, &g.CodexColor, &g.CreatedAt, &g.UpdatedAt); err != nil {
			return nil, err
		}
		if active != nil {
			g.ActivePlayerID = *active
		}
		if winner != nil {
			g.WinnerID = *winner
		}
		games = append(games, g)
	}
	return games, rows.Err()
}

// SaveGameState persists the game row, its players and the full card
// layout in one transaction, so readers never observe a half-applied
// action.
func SaveGameState(ctx context.Context, g *models.Game, players []*models.Player, cards []models.Card) error {
	tx, err := DB.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback(ctx)

	g.UpdatedAt = time.Now()
	if _, err := tx.Exec(ctx, `
		UPDATE games SET active_player_id = $2, winner_id = $3, state = $4, phase = $5, codex_color = $6, updated_at = $7
		WHERE id = $1`,
		g.ID, nullUUID(g.ActivePlayerID), nullUUID(g.WinnerID), g.State, g.Phase, g.CodexColor, g.UpdatedAt); err != nil {
		return fmt.Errorf("update game: %w", err)
	}

	for _, p := range players {
		if _, err := tx.Exec(ctx, `
			INSERT INTO players (id, user_id, game_id, orientation, position, points)
			VALUES ($1, $2, $3, $4, $5, $6)
			ON CONFLICT (id) DO UPDATE SET orientation = $4, position = $5, points = $6`,
			p.ID, p.UserID, p.GameID, p.Orientation, p.Position, p.Points); err != nil {
			return fmt.Errorf("upsert player: %w", err)
		}
	}

	if _, err := tx.Exec(ctx, `DELETE FROM cards WHERE game_id = $1`, g.ID); err != nil {
		return fmt.Errorf("clear cards: %w", err)
	}
	for _, c := range cards {
		if _, err := tx.Exec(ctx, `
			INSERT INTO cards (id, game_id, player_id, suit, color, value, zone, idx)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
			c.ID, c.GameID, c.PlayerID, c.Suit, c.Color, c.Value, c.Zone, c.Index); err != nil {
			return fmt.Errorf("insert card: %w", err)
		}
	}

	return tx.Commit(ctx)
}

// DeletePlayer removes a player row, used when a seat is vacated before
// the game starts.
func DeletePlayer(ctx context.Context, id uuid.UUID) error {
	_, err := DB.Exec(ctx, `DELETE FROM players WHERE id = $1`, id)
	return err
}

// nullUUID maps uuid.Nil to SQL NULL for nullable UUID columns.
func nullUUID(id uuid.UUID) interface{} {
	if id == uuid.Nil {
		return nil
	}
	return id
}
