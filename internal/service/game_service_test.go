package service

import (
	"context"
	"encoding/json"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/efreeman/hitler-xl/api/internal/model"
	"github.com/efreeman/hitler-xl/api/pkg/hitler"
)

// --- in-package mocks shared by this file and action_service_test.go ---

type memGameRepo struct {
	games   map[string]*model.Game
	players map[string][]model.GamePlayer
	seq     int
}

func newMemGameRepo() *memGameRepo {
	return &memGameRepo{games: make(map[string]*model.Game), players: make(map[string][]model.GamePlayer)}
}

func (m *memGameRepo) Create(_ context.Context, name, creatorID string, options hitler.Options, seed int64) (*model.Game, error) {
	m.seq++
	g := &model.Game{
		ID: fmt.Sprintf("game-%d", m.seq), Name: name, CreatorID: creatorID, Status: "waiting",
		Communists: options.Communists, Monarchist: options.Monarchist, Anarchist: options.Anarchist,
		Capitalist: options.Capitalist, Centrists: options.Centrists, FastConsensus: options.FastConsensus,
		Seed: seed, CreatedAt: time.Now(),
	}
	m.games[g.ID] = g
	return g, nil
}

func (m *memGameRepo) FindByID(_ context.Context, id string) (*model.Game, error) {
	g, ok := m.games[id]
	if !ok {
		return nil, nil
	}
	cp := *g
	cp.Players = m.players[id]
	return &cp, nil
}

func (m *memGameRepo) ListOpen(_ context.Context) ([]model.Game, error) {
	var out []model.Game
	for _, g := range m.games {
		if g.Status == "waiting" {
			out = append(out, *g)
		}
	}
	return out, nil
}

func (m *memGameRepo) ListByUser(_ context.Context, userID string) ([]model.Game, error) {
	var out []model.Game
	for id, ps := range m.players {
		for _, p := range ps {
			if p.UserID == userID {
				out = append(out, *m.games[id])
			}
		}
	}
	return out, nil
}

func (m *memGameRepo) ListFinished(_ context.Context) ([]model.Game, error) {
	var out []model.Game
	for _, g := range m.games {
		if g.Status == "finished" {
			out = append(out, *g)
		}
	}
	return out, nil
}

func (m *memGameRepo) JoinGame(_ context.Context, gameID, userID string) error {
	m.players[gameID] = append(m.players[gameID], model.GamePlayer{GameID: gameID, UserID: userID, SeatIndex: len(m.players[gameID]), JoinedAt: time.Now()})
	return nil
}

func (m *memGameRepo) JoinGameAsBot(_ context.Context, gameID, userID, difficulty string) error {
	m.players[gameID] = append(m.players[gameID], model.GamePlayer{GameID: gameID, UserID: userID, SeatIndex: len(m.players[gameID]), IsBot: true, BotDifficulty: difficulty, JoinedAt: time.Now()})
	return nil
}

func (m *memGameRepo) ReplaceBot(_ context.Context, gameID, newUserID string) error {
	ps := m.players[gameID]
	for i, p := range ps {
		if p.IsBot {
			ps[i] = model.GamePlayer{GameID: gameID, UserID: newUserID, JoinedAt: time.Now()}
			return nil
		}
	}
	return fmt.Errorf("no bot to replace")
}

func (m *memGameRepo) PlayerCount(_ context.Context, gameID string) (int, error) {
	return len(m.players[gameID]), nil
}

func (m *memGameRepo) AssignSeats(_ context.Context, gameID string, seats map[string]int) error {
	ps := m.players[gameID]
	for i := range ps {
		if seat, ok := seats[ps[i].UserID]; ok {
			ps[i].SeatIndex = seat
		}
	}
	m.players[gameID] = ps
	if g, ok := m.games[gameID]; ok {
		g.Status = "active"
	}
	return nil
}

func (m *memGameRepo) ListActive(_ context.Context) ([]model.Game, error) {
	var out []model.Game
	for _, g := range m.games {
		if g.Status == "active" {
			cp := *g
			cp.Players = m.players[g.ID]
			out = append(out, cp)
		}
	}
	return out, nil
}

func (m *memGameRepo) SetFinished(_ context.Context, gameID, winner string) error {
	if g, ok := m.games[gameID]; ok {
		g.Status = "finished"
		g.Winner = winner
	}
	return nil
}

func (m *memGameRepo) Delete(_ context.Context, gameID string) error {
	delete(m.games, gameID)
	delete(m.players, gameID)
	return nil
}

func (m *memGameRepo) UpdateBotDifficulty(_ context.Context, gameID, botUserID, difficulty string) error {
	ps := m.players[gameID]
	for i, p := range ps {
		if p.UserID == botUserID && p.IsBot {
			ps[i].BotDifficulty = difficulty
			return nil
		}
	}
	return fmt.Errorf("bot not found")
}

func (m *memGameRepo) UpdatePlayerSeat(_ context.Context, gameID, userID string, seat int) error {
	ps := m.players[gameID]
	for i, p := range ps {
		if p.UserID == userID {
			ps[i].SeatIndex = seat
			return nil
		}
	}
	return fmt.Errorf("player not found")
}

type memActionLogRepo struct {
	entries map[string][]model.ActionLog
}

func newMemActionLogRepo() *memActionLogRepo {
	return &memActionLogRepo{entries: make(map[string][]model.ActionLog)}
}

func (m *memActionLogRepo) AppendAction(_ context.Context, gameID string, actor int, operation string, payload, stateAfter json.RawMessage) (*model.ActionLog, error) {
	e := model.ActionLog{GameID: gameID, Sequence: len(m.entries[gameID]), Actor: actor, Operation: operation, Payload: payload, StateAfter: stateAfter, CreatedAt: time.Now()}
	m.entries[gameID] = append(m.entries[gameID], e)
	return &e, nil
}

func (m *memActionLogRepo) LatestSnapshot(_ context.Context, gameID string) (json.RawMessage, error) {
	es := m.entries[gameID]
	if len(es) == 0 {
		return nil, nil
	}
	return es[len(es)-1].StateAfter, nil
}

func (m *memActionLogRepo) ListActions(_ context.Context, gameID string) ([]model.ActionLog, error) {
	return m.entries[gameID], nil
}

func (m *memActionLogRepo) ListExpired(_ context.Context, olderThan time.Duration) ([]string, error) {
	return nil, nil
}

type memGameCache struct {
	state map[string]json.RawMessage
}

func newMemGameCache() *memGameCache { return &memGameCache{state: make(map[string]json.RawMessage)} }

func (m *memGameCache) SetGameState(_ context.Context, gameID string, state json.RawMessage) error {
	m.state[gameID] = state
	return nil
}
func (m *memGameCache) GetGameState(_ context.Context, gameID string) (json.RawMessage, error) {
	return m.state[gameID], nil
}
func (m *memGameCache) SetTimer(_ context.Context, gameID string, deadline time.Time) error {
	return nil
}
func (m *memGameCache) ClearTimer(_ context.Context, gameID string) error { return nil }
func (m *memGameCache) ExpiredTimers(_ context.Context) ([]string, error) { return nil, nil }
func (m *memGameCache) MarkOnline(_ context.Context, gameID string, seat int) error  { return nil }
func (m *memGameCache) MarkOffline(_ context.Context, gameID string, seat int) error { return nil }
func (m *memGameCache) OnlineSeats(_ context.Context, gameID string) ([]int, error) {
	return nil, nil
}
func (m *memGameCache) DeleteGameData(_ context.Context, gameID string) error {
	delete(m.state, gameID)
	return nil
}

type memUserRepo struct {
	users map[string]*model.User
	seq   int
}

func newMemUserRepo() *memUserRepo { return &memUserRepo{users: make(map[string]*model.User)} }

func (m *memUserRepo) FindByID(_ context.Context, id string) (*model.User, error) {
	return m.users[id], nil
}
func (m *memUserRepo) FindByProviderID(_ context.Context, provider, providerID string) (*model.User, error) {
	for _, u := range m.users {
		if u.Provider == provider && u.ProviderID == providerID {
			return u, nil
		}
	}
	return nil, nil
}
func (m *memUserRepo) Upsert(_ context.Context, provider, providerID, displayName, avatarURL string) (*model.User, error) {
	m.seq++
	u := &model.User{ID: fmt.Sprintf("user-%d", m.seq), Provider: provider, ProviderID: providerID, DisplayName: displayName, AvatarURL: avatarURL}
	m.users[u.ID] = u
	return u, nil
}
func (m *memUserRepo) UpdateDisplayName(_ context.Context, id, displayName string) error {
	if u, ok := m.users[id]; ok {
		u.DisplayName = displayName
		return nil
	}
	return fmt.Errorf("not found")
}

func newTestActionService() (*ActionService, *memGameRepo) {
	gameRepo := newMemGameRepo()
	return NewActionService(gameRepo, newMemActionLogRepo(), newMemGameCache()), gameRepo
}

func fiveNames() []string { return []string{"p0", "p1", "p2", "p3", "p4"} }

// --- GameService tests ---

func TestCreateGameAutoJoinsCreator(t *testing.T) {
	actions, gameRepo := newTestActionService()
	svc := NewGameService(gameRepo, actions, newMemUserRepo())

	game, err := svc.CreateGame(context.Background(), "Table 1", "user-1", hitler.Options{}, "", false)
	require.NoError(t, err)
	require.Len(t, game.Players, 1)
	assert.Equal(t, "user-1", game.Players[0].UserID)
}

func TestCreateGameBotOnlySkipsAutoJoin(t *testing.T) {
	actions, gameRepo := newTestActionService()
	svc := NewGameService(gameRepo, actions, newMemUserRepo())

	game, err := svc.CreateGame(context.Background(), "Table 1", "user-1", hitler.Options{}, "", true)
	require.NoError(t, err)
	assert.Empty(t, game.Players)
}

func TestStartGameRequiresMinimumPlayers(t *testing.T) {
	actions, gameRepo := newTestActionService()
	svc := NewGameService(gameRepo, actions, newMemUserRepo())

	game, err := svc.CreateGame(context.Background(), "Table 1", "user-1", hitler.Options{}, "", false)
	require.NoError(t, err)

	_, err = svc.StartGame(context.Background(), game.ID, "user-1")
	assert.ErrorIs(t, err, ErrNotEnough)
}

func TestStartGameOnlyCreator(t *testing.T) {
	actions, gameRepo := newTestActionService()
	svc := NewGameService(gameRepo, actions, newMemUserRepo())

	game, err := svc.CreateGame(context.Background(), "Table 1", "user-1", hitler.Options{}, "", false)
	require.NoError(t, err)
	for _, name := range fiveNames()[1:] {
		require.NoError(t, svc.JoinGame(context.Background(), game.ID, name))
	}

	_, err = svc.StartGame(context.Background(), game.ID, "user-2")
	assert.ErrorIs(t, err, ErrNotCreator)
}

func TestStartGameAssignsSeatsAndStartsEngine(t *testing.T) {
	actions, gameRepo := newTestActionService()
	svc := NewGameService(gameRepo, actions, newMemUserRepo())

	game, err := svc.CreateGame(context.Background(), "Table 1", "user-1", hitler.Options{FastConsensus: true}, "", false)
	require.NoError(t, err)
	for _, name := range fiveNames()[1:] {
		require.NoError(t, svc.JoinGame(context.Background(), game.ID, name))
	}

	started, err := svc.StartGame(context.Background(), game.ID, "user-1")
	require.NoError(t, err)
	assert.Equal(t, "active", started.Status)

	board, err := actions.BoardView(context.Background(), game.ID)
	require.NoError(t, err)
	assert.Equal(t, 5, board.NumPlayers)
}

func TestJoinGameReplacesBotWhenFull(t *testing.T) {
	actions, gameRepo := newTestActionService()
	svc := NewGameService(gameRepo, actions, newMemUserRepo())

	game, err := svc.CreateGame(context.Background(), "Table 1", "user-1", hitler.Options{}, "", false)
	require.NoError(t, err)
	for i := 1; i < hitler.MaxPlayers; i++ {
		require.NoError(t, svc.AddBot(context.Background(), game.ID, "user-1", "easy"))
	}

	assert.NoError(t, svc.JoinGame(context.Background(), game.ID, "user-2"))
}

func TestUpdatePlayerSeatRejectsTakenSeat(t *testing.T) {
	actions, gameRepo := newTestActionService()
	svc := NewGameService(gameRepo, actions, newMemUserRepo())

	game, err := svc.CreateGame(context.Background(), "Table 1", "user-1", hitler.Options{}, "", false)
	require.NoError(t, err)
	require.NoError(t, svc.JoinGame(context.Background(), game.ID, "user-2"))

	require.NoError(t, svc.UpdatePlayerSeat(context.Background(), game.ID, "user-1", "user-1", 0))
	err = svc.UpdatePlayerSeat(context.Background(), game.ID, "user-2", "user-2", 0)
	assert.ErrorIs(t, err, ErrSeatTaken)
}

func TestStopGameEvictsLiveEngine(t *testing.T) {
	actions, gameRepo := newTestActionService()
	svc := NewGameService(gameRepo, actions, newMemUserRepo())

	game, err := svc.CreateGame(context.Background(), "Table 1", "user-1", hitler.Options{}, "", false)
	require.NoError(t, err)
	for _, name := range fiveNames()[1:] {
		require.NoError(t, svc.JoinGame(context.Background(), game.ID, name))
	}
	_, err = svc.StartGame(context.Background(), game.ID, "user-1")
	require.NoError(t, err)

	stopped, err := svc.StopGame(context.Background(), game.ID, "user-1")
	require.NoError(t, err)
	assert.Equal(t, "finished", stopped.Status)
}
