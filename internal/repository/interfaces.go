package repository

import (
	"context"
	"encoding/json"
	"time"

	"github.com/efreeman/hitler-xl/api/internal/model"
	"github.com/efreeman/hitler-xl/api/pkg/hitler"
)

// UserRepository defines user data operations.
type UserRepository interface {
	FindByID(ctx context.Context, id string) (*model.User, error)
	FindByProviderID(ctx context.Context, provider, providerID string) (*model.User, error)
	Upsert(ctx context.Context, provider, providerID, displayName, avatarURL string) (*model.User, error)
	UpdateDisplayName(ctx context.Context, id, displayName string) error
}

// GameRepository defines table and seat data operations.
type GameRepository interface {
	Create(ctx context.Context, name, creatorID string, options hitler.Options, seed int64) (*model.Game, error)
	FindByID(ctx context.Context, id string) (*model.Game, error)
	ListOpen(ctx context.Context) ([]model.Game, error)
	ListByUser(ctx context.Context, userID string) ([]model.Game, error)
	ListFinished(ctx context.Context) ([]model.Game, error)
	JoinGame(ctx context.Context, gameID, userID string) error
	JoinGameAsBot(ctx context.Context, gameID, userID, difficulty string) error
	ReplaceBot(ctx context.Context, gameID, newUserID string) error
	PlayerCount(ctx context.Context, gameID string) (int, error)
	AssignSeats(ctx context.Context, gameID string, seats map[string]int) error
	ListActive(ctx context.Context) ([]model.Game, error)
	SetFinished(ctx context.Context, gameID, winner string) error
	Delete(ctx context.Context, gameID string) error
	UpdateBotDifficulty(ctx context.Context, gameID, botUserID, difficulty string) error
	UpdatePlayerSeat(ctx context.Context, gameID, userID string, seat int) error
}

// ActionLogRepository persists the append-only sequence of engine calls
// for a game, each tagged with the serialized snapshot taken immediately
// after it was applied. The current snapshot is just the StateAfter of
// the highest-Sequence entry; ListActions replays the whole history for
// audit and reconnect.
type ActionLogRepository interface {
	AppendAction(ctx context.Context, gameID string, actor int, operation string, payload, stateAfter json.RawMessage) (*model.ActionLog, error)
	LatestSnapshot(ctx context.Context, gameID string) (json.RawMessage, error)
	ListActions(ctx context.Context, gameID string) ([]model.ActionLog, error)
	ListExpired(ctx context.Context, olderThan time.Duration) ([]string, error)
}

// MessageRepository defines message data operations.
type MessageRepository interface {
	Create(ctx context.Context, gameID, senderID, recipientID, content string) (*model.Message, error)
	ListByGame(ctx context.Context, gameID, userID string) ([]model.Message, error)
}

// GameCache defines live game state operations (Redis). The engine keeps
// its own Confirmations/Votes inside the serialized hitler.Game blob, so
// unlike the turn-based per-power staging this cache replaces, there is
// no separate ready/order-staging structure to mirror here: the cache
// only needs the latest snapshot, deadline bookkeeping, and presence.
type GameCache interface {
	SetGameState(ctx context.Context, gameID string, state json.RawMessage) error
	GetGameState(ctx context.Context, gameID string) (json.RawMessage, error)
	SetTimer(ctx context.Context, gameID string, deadline time.Time) error
	ClearTimer(ctx context.Context, gameID string) error
	ExpiredTimers(ctx context.Context) ([]string, error)
	MarkOnline(ctx context.Context, gameID string, seat int) error
	MarkOffline(ctx context.Context, gameID string, seat int) error
	OnlineSeats(ctx context.Context, gameID string) ([]int, error)
	DeleteGameData(ctx context.Context, gameID string) error
}
