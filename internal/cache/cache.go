// Package cache wraps the Redis client used for the game action history
// queue and for publishing state updates to interested subscribers.
package cache

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// Rdb is the shared Redis client. Nil until Init succeeds, and callers
// are expected to tolerate a nil client by skipping cache writes.
var Rdb *redis.Client

// Channel names for pub/sub fanout.
const (
	ChannelGameUpdates   = "game_updates"
	ChannelActiveGames   = "active_games_updates"
	activeGamesKey       = "games:active"
	actionListKeyPattern = "game:%s:actions"
)

// Init connects the shared client and verifies the connection.
func Init(ctx context.Context, addr, password string, db int) error {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("redis ping: %w", err)
	}
	Rdb = client
	return nil
}

// GameActionRecord is one entry in a game's action history list.
type GameActionRecord struct {
	GameID        uuid.UUID              `json:"gameId"`
	ActionIndex   int                    `json:"actionIndex"`
	ActorUserID   uuid.UUID              `json:"actorUserId"`
	ActionType    string                 `json:"actionType"`
	ActionPayload map[string]interface{} `json:"actionPayload"`
	Timestamp     int64                  `json:"timestamp"`
}

// PublishGameAction appends the record to the game's history list.
func PublishGameAction(ctx context.Context, rec GameActionRecord) error {
	if Rdb == nil {
		return nil
	}
	data, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("marshal action record: %w", err)
	}
	key := fmt.Sprintf(actionListKeyPattern, rec.GameID)
	return Rdb.RPush(ctx, key, data).Err()
}

// GameActions returns the full action history for a game, oldest first.
func GameActions(ctx context.Context, gameID uuid.UUID) ([]GameActionRecord, error) {
	if Rdb == nil {
		return nil, nil
	}
	key := fmt.Sprintf(actionListKeyPattern, gameID)
	raw, err := Rdb.LRange(ctx, key, 0, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("lrange %s: %w", key, err)
	}
	records := make([]GameActionRecord, 0, len(raw))
	for _, item := range raw {
		var rec GameActionRecord
		if err := json.Unmarshal([]byte(item), &rec); err != nil {
			continue
		}
		records = append(records, rec)
	}
	return records, nil
}

// AddActiveGame registers a game in the active set and notifies listeners.
func AddActiveGame(ctx context.Context, gameID uuid.UUID) error {
	if Rdb == nil {
		return nil
	}
	if err := Rdb.SAdd(ctx, activeGamesKey, gameID.String()).Err(); err != nil {
		return err
	}
	return Rdb.Publish(ctx, ChannelActiveGames, gameID.String()).Err()
}

// RemoveActiveGame drops a game from the active set and notifies listeners.
func RemoveActiveGame(ctx context.Context, gameID uuid.UUID) error {
	if Rdb == nil {
		return nil
	}
	if err := Rdb.SRem(ctx, activeGamesKey, gameID.String()).Err(); err != nil {
		return err
	}
	return Rdb.Publish(ctx, ChannelActiveGames, gameID.String()).Err()
}

// PublishGameUpdate broadcasts a serialized snapshot on the updates channel
// so processes other than the owning server can stream state changes.
func PublishGameUpdate(ctx context.Context, gameID uuid.UUID, snapshot interface{}) error {
	if Rdb == nil {
		return nil
	}
	data, err := json.Marshal(snapshot)
	if err != nil {
		return fmt.Errorf("marshal snapshot: %w", err)
	}
	return Rdb.Publish(ctx, ChannelGameUpdates+":"+gameID.String(), data).Err()
}
