//go:build integration

package redis

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"github.com/efreeman/hitler-xl/api/internal/testutil"
)

var testRDB *goredis.Client

func setup(t *testing.T) *Client {
	t.Helper()
	if testRDB == nil {
		testRDB = testutil.SetupRedis(t)
	}
	testutil.CleanupRedis(t, testRDB)
	return &Client{rdb: testRDB}
}

func TestGameStateRoundTrip(t *testing.T) {
	c := setup(t)
	ctx := context.Background()
	gameID := "test-game-1"

	state := json.RawMessage(`{"electionTracker":1,"phase":"election"}`)

	if err := c.SetGameState(ctx, gameID, state); err != nil {
		t.Fatalf("set game state: %v", err)
	}

	got, err := c.GetGameState(ctx, gameID)
	if err != nil {
		t.Fatalf("get game state: %v", err)
	}
	if got == nil {
		t.Fatal("expected non-nil state")
	}

	var fetched map[string]any
	json.Unmarshal(got, &fetched)
	if fetched["electionTracker"].(float64) != 1 {
		t.Fatalf("state round-trip failed: %s", string(got))
	}
}

func TestGameStateNotFound(t *testing.T) {
	c := setup(t)
	ctx := context.Background()

	got, err := c.GetGameState(ctx, "nonexistent")
	if err != nil {
		t.Fatalf("get missing state: %v", err)
	}
	if got != nil {
		t.Fatal("expected nil for missing game state")
	}
}

func TestOnlineSeatOperations(t *testing.T) {
	c := setup(t)
	ctx := context.Background()
	gameID := "test-game-4"

	seats, _ := c.OnlineSeats(ctx, gameID)
	if len(seats) != 0 {
		t.Fatalf("expected no online seats, got %v", seats)
	}

	c.MarkOnline(ctx, gameID, 0)
	c.MarkOnline(ctx, gameID, 3)

	seats, _ = c.OnlineSeats(ctx, gameID)
	if len(seats) != 2 {
		t.Fatalf("expected 2 online seats, got %d", len(seats))
	}

	c.MarkOnline(ctx, gameID, 0) // idempotent
	seats, _ = c.OnlineSeats(ctx, gameID)
	if len(seats) != 2 {
		t.Fatalf("expected 2 online seats after duplicate mark, got %d", len(seats))
	}

	c.MarkOffline(ctx, gameID, 0)
	seats, _ = c.OnlineSeats(ctx, gameID)
	if len(seats) != 1 || seats[0] != 3 {
		t.Fatalf("expected only seat 3 online, got %v", seats)
	}
}

func TestTimerWithTTL(t *testing.T) {
	c := setup(t)
	ctx := context.Background()
	gameID := "test-game-5"

	deadline := time.Now().Add(10 * time.Second)
	if err := c.SetTimer(ctx, gameID, deadline); err != nil {
		t.Fatalf("set timer: %v", err)
	}

	ttl := testRDB.TTL(ctx, timerKey(gameID)).Val()
	if ttl <= 0 || ttl > 16*time.Second {
		t.Fatalf("expected TTL ~15s, got %v", ttl)
	}

	c.ClearTimer(ctx, gameID)
	exists := testRDB.Exists(ctx, timerKey(gameID)).Val()
	if exists != 0 {
		t.Fatal("expected timer key to be deleted")
	}
}

func TestTimerPastDeadline(t *testing.T) {
	c := setup(t)
	ctx := context.Background()
	gameID := "test-game-5b"

	deadline := time.Now().Add(-5 * time.Second)
	if err := c.SetTimer(ctx, gameID, deadline); err != nil {
		t.Fatalf("set timer past deadline: %v", err)
	}

	ttl := testRDB.TTL(ctx, timerKey(gameID)).Val()
	if ttl <= 0 || ttl > 2*time.Second {
		t.Fatalf("expected TTL ~1s for past deadline, got %v", ttl)
	}
}

func TestExpiredTimers(t *testing.T) {
	c := setup(t)
	ctx := context.Background()

	c.SetTimer(ctx, "expired-game", time.Now().Add(-1*time.Second))
	// Bypass the grace period by writing directly past-now with no floor.
	testRDB.Set(ctx, timerKey("expired-game"), time.Now().Add(-1*time.Second).Unix(), time.Minute)
	c.SetTimer(ctx, "fresh-game", time.Now().Add(time.Hour))

	expired, err := c.ExpiredTimers(ctx)
	if err != nil {
		t.Fatalf("expired timers: %v", err)
	}
	found := false
	for _, id := range expired {
		if id == "expired-game" {
			found = true
		}
		if id == "fresh-game" {
			t.Fatal("fresh-game should not be reported expired")
		}
	}
	if !found {
		t.Fatal("expected expired-game to be reported expired")
	}
}

func TestDeleteGameData(t *testing.T) {
	c := setup(t)
	ctx := context.Background()
	gameID := "test-game-7"

	c.SetGameState(ctx, gameID, json.RawMessage(`{"electionTracker":0}`))
	c.MarkOnline(ctx, gameID, 0)
	c.SetTimer(ctx, gameID, time.Now().Add(10*time.Second))

	if err := c.DeleteGameData(ctx, gameID); err != nil {
		t.Fatalf("delete game data: %v", err)
	}

	state, _ := c.GetGameState(ctx, gameID)
	if state != nil {
		t.Fatal("expected game state deleted")
	}
	seats, _ := c.OnlineSeats(ctx, gameID)
	if len(seats) != 0 {
		t.Fatal("expected online seats deleted")
	}
	exists := testRDB.Exists(ctx, timerKey(gameID)).Val()
	if exists != 0 {
		t.Fatal("expected timer deleted")
	}
}
