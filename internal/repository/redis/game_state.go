package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
)

// Key patterns for Redis game state.
func stateKey(gameID string) string  { return "game:" + gameID + ":state" }
func onlineKey(gameID string) string { return "game:" + gameID + ":online" }
func timerKey(gameID string) string  { return "game:" + gameID + ":timer" }

// SetGameState stores the live game state JSON.
func (c *Client) SetGameState(ctx context.Context, gameID string, state json.RawMessage) error {
	return c.rdb.Set(ctx, stateKey(gameID), []byte(state), 0).Err()
}

// GetGameState retrieves the live game state JSON.
func (c *Client) GetGameState(ctx context.Context, gameID string) (json.RawMessage, error) {
	data, err := c.rdb.Get(ctx, stateKey(gameID)).Bytes()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get game state: %w", err)
	}
	return json.RawMessage(data), nil
}

// deadlineGracePeriod is the extra time after the displayed deadline that
// a timer key lives on before Redis expires it.
const deadlineGracePeriod = 5 * time.Second

// SetTimer creates a timer key holding the deadline, with a TTL of the
// time left plus deadlineGracePeriod (at least one second). Nothing
// listens for the key's expiry.
func (c *Client) SetTimer(ctx context.Context, gameID string, deadline time.Time) error {
	ttl := time.Until(deadline) + deadlineGracePeriod
	if ttl <= 0 {
		ttl = time.Second
	}
	return c.rdb.Set(ctx, timerKey(gameID), deadline.Unix(), ttl).Err()
}

// ClearTimer removes the timer for a game.
func (c *Client) ClearTimer(ctx context.Context, gameID string) error {
	return c.rdb.Del(ctx, timerKey(gameID)).Err()
}

// ExpiredTimers scans active timer keys and returns the game IDs whose
// deadline has already passed but whose key has not yet expired.
func (c *Client) ExpiredTimers(ctx context.Context) ([]string, error) {
	var expired []string
	iter := c.rdb.Scan(ctx, 0, "game:*:timer", 100).Iterator()
	now := time.Now().Unix()
	for iter.Next(ctx) {
		key := iter.Val()
		val, err := c.rdb.Get(ctx, key).Int64()
		if err != nil {
			continue
		}
		if val <= now {
			gameID := key[len("game:") : len(key)-len(":timer")]
			expired = append(expired, gameID)
		}
	}
	return expired, iter.Err()
}

// MarkOnline records that a seat currently has a live connection.
func (c *Client) MarkOnline(ctx context.Context, gameID string, seat int) error {
	return c.rdb.SAdd(ctx, onlineKey(gameID), strconv.Itoa(seat)).Err()
}

// MarkOffline records that a seat's connection has dropped.
func (c *Client) MarkOffline(ctx context.Context, gameID string, seat int) error {
	return c.rdb.SRem(ctx, onlineKey(gameID), strconv.Itoa(seat)).Err()
}

// OnlineSeats returns the seats with a live connection.
func (c *Client) OnlineSeats(ctx context.Context, gameID string) ([]int, error) {
	members, err := c.rdb.SMembers(ctx, onlineKey(gameID)).Result()
	if err != nil {
		return nil, fmt.Errorf("online seats: %w", err)
	}
	seats := make([]int, 0, len(members))
	for _, m := range members {
		n, err := strconv.Atoi(m)
		if err != nil {
			continue
		}
		seats = append(seats, n)
	}
	return seats, nil
}

// DeleteGameData removes all Redis data for a game (on game end).
func (c *Client) DeleteGameData(ctx context.Context, gameID string) error {
	return c.rdb.Del(ctx, stateKey(gameID), onlineKey(gameID), timerKey(gameID)).Err()
}
