package model

import (
	"encoding/json"
	"time"
)

// User represents a registered user.
type User struct {
	ID          string    `json:"id"`
	Provider    string    `json:"provider"`
	ProviderID  string    `json:"provider_id"`
	DisplayName string    `json:"display_name"`
	AvatarURL   string    `json:"avatar_url,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// Game represents a Secret Hitler table.
type Game struct {
	ID         string       `json:"id"`
	Name       string       `json:"name"`
	CreatorID  string       `json:"creator_id"`
	Status     string       `json:"status"` // waiting, active, finished
	Winner     string       `json:"winner,omitempty"`
	Communists bool         `json:"communists"`
	Monarchist bool         `json:"monarchist"`
	Anarchist  bool         `json:"anarchist"`
	Capitalist bool         `json:"capitalist"`
	Centrists  bool         `json:"centrists"`
	FastConsensus bool      `json:"fast_consensus"`
	Seed       int64        `json:"seed"`
	CreatedAt  time.Time    `json:"created_at"`
	StartedAt  *time.Time   `json:"started_at,omitempty"`
	FinishedAt *time.Time   `json:"finished_at,omitempty"`
	Players    []GamePlayer `json:"players,omitempty"`
}

// GamePlayer represents a player's seat at a table.
type GamePlayer struct {
	GameID        string    `json:"game_id"`
	UserID        string    `json:"user_id"`
	SeatIndex     int       `json:"seat_index"`
	IsBot         bool      `json:"is_bot"`
	BotDifficulty string    `json:"bot_difficulty"`
	JoinedAt      time.Time `json:"joined_at"`
}

// ActionLog records one call into the engine's operation surface, in the
// order it was applied. Replaying a game's ActionLog entries against a
// freshly constructed hitler.Game (same options, players, seed) reproduces
// the snapshot stored alongside the final entry; ActionService.rebuild
// replays them to restore a game, and the action-log endpoint serves
// them for audit and for reconnecting clients to catch up.
type ActionLog struct {
	ID         string          `json:"id"`
	GameID     string          `json:"game_id"`
	Sequence   int             `json:"sequence"`
	Actor      int             `json:"actor"` // seat index, or -1 for system/deadline actions
	Operation  string          `json:"operation"`
	Payload    json.RawMessage `json:"payload,omitempty"`
	StateAfter json.RawMessage `json:"state_after"`
	CreatedAt  time.Time       `json:"created_at"`
}

// Message represents an in-game chat message.
type Message struct {
	ID          string    `json:"id"`
	GameID      string    `json:"game_id"`
	SenderID    string    `json:"sender_id"`
	RecipientID string    `json:"recipient_id,omitempty"` // empty = public broadcast
	Content     string    `json:"content"`
	CreatedAt   time.Time `json:"created_at"`
}
