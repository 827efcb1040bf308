//go:build integration

package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"testing"

	"github.com/efreeman/hitler-xl/api/internal/model"
	"github.com/efreeman/hitler-xl/api/internal/testutil"
	"github.com/efreeman/hitler-xl/api/pkg/hitler"
)

var testDB *sql.DB

func TestMain(m *testing.M) {
	m.Run()
}

func setup(t *testing.T) {
	t.Helper()
	if testDB == nil {
		testDB = testutil.SetupDB(t)
	}
	testutil.CleanupDB(t, testDB)
}

// createTestUser is a helper that inserts a user and returns it.
func createTestUser(t *testing.T, repo *UserRepo, suffix string) *model.User {
	t.Helper()
	u, err := repo.Upsert(context.Background(), "google", "provider-"+suffix, "User "+suffix, "https://avatar/"+suffix)
	if err != nil {
		t.Fatalf("create test user: %v", err)
	}
	return u
}

// --- UserRepo Tests ---

func TestUserUpsertCreates(t *testing.T) {
	setup(t)
	repo := NewUserRepo(testDB)

	u, err := repo.Upsert(context.Background(), "google", "goog-123", "Alice", "https://avatar/alice")
	if err != nil {
		t.Fatalf("upsert: %v", err)
	}
	if u.ID == "" {
		t.Fatal("expected non-empty ID")
	}
	if u.Provider != "google" || u.ProviderID != "goog-123" {
		t.Fatalf("unexpected provider data: %s / %s", u.Provider, u.ProviderID)
	}
	if u.DisplayName != "Alice" {
		t.Fatalf("expected display name Alice, got %s", u.DisplayName)
	}
	if u.AvatarURL != "https://avatar/alice" {
		t.Fatalf("expected avatar URL, got %s", u.AvatarURL)
	}
}

func TestUserUpsertUpdates(t *testing.T) {
	setup(t)
	repo := NewUserRepo(testDB)

	u1, err := repo.Upsert(context.Background(), "google", "goog-456", "Bob", "https://old")
	if err != nil {
		t.Fatalf("first upsert: %v", err)
	}

	u2, err := repo.Upsert(context.Background(), "google", "goog-456", "Bobby", "https://new")
	if err != nil {
		t.Fatalf("second upsert: %v", err)
	}

	if u1.ID != u2.ID {
		t.Fatalf("upsert should return same ID: %s vs %s", u1.ID, u2.ID)
	}
	if u2.DisplayName != "Bobby" {
		t.Fatalf("expected updated name Bobby, got %s", u2.DisplayName)
	}
	if u2.AvatarURL != "https://new" {
		t.Fatalf("expected updated avatar, got %s", u2.AvatarURL)
	}
}

func TestUserFindByID(t *testing.T) {
	setup(t)
	repo := NewUserRepo(testDB)

	created, _ := repo.Upsert(context.Background(), "google", "goog-find", "FindMe", "")
	found, err := repo.FindByID(context.Background(), created.ID)
	if err != nil {
		t.Fatalf("find by id: %v", err)
	}
	if found == nil || found.ID != created.ID {
		t.Fatal("expected to find user by ID")
	}

	notFound, err := repo.FindByID(context.Background(), "00000000-0000-0000-0000-000000000000")
	if err != nil {
		t.Fatalf("find missing: %v", err)
	}
	if notFound != nil {
		t.Fatal("expected nil for missing user")
	}
}

func TestUserFindByProviderID(t *testing.T) {
	setup(t)
	repo := NewUserRepo(testDB)

	repo.Upsert(context.Background(), "apple", "apple-123", "Charlie", "")

	found, err := repo.FindByProviderID(context.Background(), "apple", "apple-123")
	if err != nil {
		t.Fatalf("find by provider: %v", err)
	}
	if found == nil || found.DisplayName != "Charlie" {
		t.Fatal("expected to find user by provider")
	}

	notFound, err := repo.FindByProviderID(context.Background(), "apple", "no-such-id")
	if err != nil {
		t.Fatalf("find missing provider: %v", err)
	}
	if notFound != nil {
		t.Fatal("expected nil for missing provider ID")
	}
}

func TestUserUpdateDisplayName(t *testing.T) {
	setup(t)
	repo := NewUserRepo(testDB)

	u, _ := repo.Upsert(context.Background(), "google", "goog-upd", "OldName", "")
	if err := repo.UpdateDisplayName(context.Background(), u.ID, "NewName"); err != nil {
		t.Fatalf("update display name: %v", err)
	}

	found, _ := repo.FindByID(context.Background(), u.ID)
	if found.DisplayName != "NewName" {
		t.Fatalf("expected NewName, got %s", found.DisplayName)
	}
}

// --- GameRepo Tests ---

func TestGameCreate(t *testing.T) {
	setup(t)
	userRepo := NewUserRepo(testDB)
	gameRepo := NewGameRepo(testDB)

	creator := createTestUser(t, userRepo, "creator")

	g, err := gameRepo.Create(context.Background(), "Test Game", creator.ID, hitler.Options{}, 42)
	if err != nil {
		t.Fatalf("create game: %v", err)
	}
	if g.ID == "" {
		t.Fatal("expected non-empty game ID")
	}
	if g.Name != "Test Game" {
		t.Fatalf("expected game name 'Test Game', got '%s'", g.Name)
	}
	if g.Status != "waiting" {
		t.Fatalf("expected waiting status, got %s", g.Status)
	}
	if g.Seed != 42 {
		t.Fatalf("expected seed 42, got %d", g.Seed)
	}
}

func TestGameFindByIDWithPlayers(t *testing.T) {
	setup(t)
	userRepo := NewUserRepo(testDB)
	gameRepo := NewGameRepo(testDB)

	creator := createTestUser(t, userRepo, "owner")
	g, _ := gameRepo.Create(context.Background(), "With Players", creator.ID, hitler.Options{}, 1)
	gameRepo.JoinGame(context.Background(), g.ID, creator.ID)

	player2 := createTestUser(t, userRepo, "p2")
	gameRepo.JoinGame(context.Background(), g.ID, player2.ID)

	found, err := gameRepo.FindByID(context.Background(), g.ID)
	if err != nil {
		t.Fatalf("find by id: %v", err)
	}
	if found == nil {
		t.Fatal("expected to find game")
	}
	if len(found.Players) != 2 {
		t.Fatalf("expected 2 players, got %d", len(found.Players))
	}
	if found.Players[0].SeatIndex != 0 || found.Players[1].SeatIndex != 1 {
		t.Fatalf("expected sequential seat assignment, got %d, %d", found.Players[0].SeatIndex, found.Players[1].SeatIndex)
	}
}

func TestGameListOpen(t *testing.T) {
	setup(t)
	userRepo := NewUserRepo(testDB)
	gameRepo := NewGameRepo(testDB)

	creator := createTestUser(t, userRepo, "lister")
	gameRepo.Create(context.Background(), "Open1", creator.ID, hitler.Options{}, 1)
	gameRepo.Create(context.Background(), "Open2", creator.ID, hitler.Options{}, 2)

	games, err := gameRepo.ListOpen(context.Background())
	if err != nil {
		t.Fatalf("list open: %v", err)
	}
	if len(games) != 2 {
		t.Fatalf("expected 2 open games, got %d", len(games))
	}
}

func TestGameListByUser(t *testing.T) {
	setup(t)
	userRepo := NewUserRepo(testDB)
	gameRepo := NewGameRepo(testDB)

	u1 := createTestUser(t, userRepo, "u1")
	u2 := createTestUser(t, userRepo, "u2")

	g1, _ := gameRepo.Create(context.Background(), "G1", u1.ID, hitler.Options{}, 1)
	gameRepo.JoinGame(context.Background(), g1.ID, u1.ID)

	g2, _ := gameRepo.Create(context.Background(), "G2", u2.ID, hitler.Options{}, 2)
	gameRepo.JoinGame(context.Background(), g2.ID, u2.ID)
	gameRepo.JoinGame(context.Background(), g2.ID, u1.ID)

	games, err := gameRepo.ListByUser(context.Background(), u1.ID)
	if err != nil {
		t.Fatalf("list by user: %v", err)
	}
	if len(games) != 2 {
		t.Fatalf("expected 2 games for u1, got %d", len(games))
	}

	u2Games, _ := gameRepo.ListByUser(context.Background(), u2.ID)
	if len(u2Games) != 1 {
		t.Fatalf("expected 1 game for u2, got %d", len(u2Games))
	}
}

func TestGameJoinIdempotent(t *testing.T) {
	setup(t)
	userRepo := NewUserRepo(testDB)
	gameRepo := NewGameRepo(testDB)

	creator := createTestUser(t, userRepo, "joiner")
	g, _ := gameRepo.Create(context.Background(), "Join Test", creator.ID, hitler.Options{}, 1)

	if err := gameRepo.JoinGame(context.Background(), g.ID, creator.ID); err != nil {
		t.Fatalf("first join: %v", err)
	}
	if err := gameRepo.JoinGame(context.Background(), g.ID, creator.ID); err != nil {
		t.Fatalf("second join should not error: %v", err)
	}

	count, _ := gameRepo.PlayerCount(context.Background(), g.ID)
	if count != 1 {
		t.Fatalf("expected 1 player after duplicate join, got %d", count)
	}
}

func TestGamePlayerCount(t *testing.T) {
	setup(t)
	userRepo := NewUserRepo(testDB)
	gameRepo := NewGameRepo(testDB)

	creator := createTestUser(t, userRepo, "counter")
	g, _ := gameRepo.Create(context.Background(), "Count Test", creator.ID, hitler.Options{}, 1)
	gameRepo.JoinGame(context.Background(), g.ID, creator.ID)

	for i := 0; i < 3; i++ {
		p := createTestUser(t, userRepo, "cp"+string(rune('a'+i)))
		gameRepo.JoinGame(context.Background(), g.ID, p.ID)
	}

	count, err := gameRepo.PlayerCount(context.Background(), g.ID)
	if err != nil {
		t.Fatalf("player count: %v", err)
	}
	if count != 4 {
		t.Fatalf("expected 4 players, got %d", count)
	}
}

func TestGameAssignSeats(t *testing.T) {
	setup(t)
	userRepo := NewUserRepo(testDB)
	gameRepo := NewGameRepo(testDB)

	creator := createTestUser(t, userRepo, "assign-c")
	g, _ := gameRepo.Create(context.Background(), "Seat Test", creator.ID, hitler.Options{}, 1)

	var users []*model.User
	for i := 0; i < 7; i++ {
		u := createTestUser(t, userRepo, "assign-"+string(rune('a'+i)))
		gameRepo.JoinGame(context.Background(), g.ID, u.ID)
		users = append(users, u)
	}

	seats := make(map[string]int)
	for i, u := range users {
		seats[u.ID] = 6 - i
	}

	if err := gameRepo.AssignSeats(context.Background(), g.ID, seats); err != nil {
		t.Fatalf("assign seats: %v", err)
	}

	found, _ := gameRepo.FindByID(context.Background(), g.ID)
	if found.Status != "active" {
		t.Fatalf("expected active status, got %s", found.Status)
	}
	if found.StartedAt == nil {
		t.Fatal("expected started_at to be set")
	}

	playerSeats := make(map[string]int)
	for _, p := range found.Players {
		playerSeats[p.UserID] = p.SeatIndex
	}
	for _, u := range users {
		if playerSeats[u.ID] != seats[u.ID] {
			t.Fatalf("player %s: expected seat %d, got %d", u.ID, seats[u.ID], playerSeats[u.ID])
		}
	}
}

func TestGameSetFinished(t *testing.T) {
	setup(t)
	userRepo := NewUserRepo(testDB)
	gameRepo := NewGameRepo(testDB)

	creator := createTestUser(t, userRepo, "finisher")
	g, _ := gameRepo.Create(context.Background(), "Finish Test", creator.ID, hitler.Options{}, 1)

	if err := gameRepo.SetFinished(context.Background(), g.ID, "liberal"); err != nil {
		t.Fatalf("set finished: %v", err)
	}

	found, _ := gameRepo.FindByID(context.Background(), g.ID)
	if found.Status != "finished" {
		t.Fatalf("expected finished, got %s", found.Status)
	}
	if found.Winner != "liberal" {
		t.Fatalf("expected winner liberal, got %s", found.Winner)
	}
	if found.FinishedAt == nil {
		t.Fatal("expected finished_at to be set")
	}
}

// --- ActionLogRepo Tests ---

func TestActionLogAppendAndLatest(t *testing.T) {
	setup(t)
	userRepo := NewUserRepo(testDB)
	gameRepo := NewGameRepo(testDB)
	logRepo := NewActionLogRepo(testDB)

	creator := createTestUser(t, userRepo, "log-c")
	g, _ := gameRepo.Create(context.Background(), "Log Test", creator.ID, hitler.Options{}, 1)

	s1 := json.RawMessage(`{"phase":"night"}`)
	a1, err := logRepo.AppendAction(context.Background(), g.ID, -1, "New", nil, s1)
	if err != nil {
		t.Fatalf("append action: %v", err)
	}
	if a1.Sequence != 0 {
		t.Fatalf("expected first sequence 0, got %d", a1.Sequence)
	}

	s2 := json.RawMessage(`{"phase":"election"}`)
	a2, err := logRepo.AppendAction(context.Background(), g.ID, 0, "ConfirmNight", nil, s2)
	if err != nil {
		t.Fatalf("append action 2: %v", err)
	}
	if a2.Sequence != 1 {
		t.Fatalf("expected second sequence 1, got %d", a2.Sequence)
	}

	snap, err := logRepo.LatestSnapshot(context.Background(), g.ID)
	if err != nil {
		t.Fatalf("latest snapshot: %v", err)
	}
	var data map[string]any
	json.Unmarshal(snap, &data)
	if data["phase"] != "election" {
		t.Fatalf("expected latest snapshot to be the election phase, got %v", data)
	}
}

func TestActionLogListActions(t *testing.T) {
	setup(t)
	userRepo := NewUserRepo(testDB)
	gameRepo := NewGameRepo(testDB)
	logRepo := NewActionLogRepo(testDB)

	creator := createTestUser(t, userRepo, "list-log-c")
	g, _ := gameRepo.Create(context.Background(), "List Log Test", creator.ID, hitler.Options{}, 1)

	logRepo.AppendAction(context.Background(), g.ID, -1, "New", nil, json.RawMessage(`{}`))
	logRepo.AppendAction(context.Background(), g.ID, 2, "Nominate", json.RawMessage(`{"chancellor":3}`), json.RawMessage(`{}`))
	logRepo.AppendAction(context.Background(), g.ID, 0, "CastVote", json.RawMessage(`{"ja":true}`), json.RawMessage(`{}`))

	actions, err := logRepo.ListActions(context.Background(), g.ID)
	if err != nil {
		t.Fatalf("list actions: %v", err)
	}
	if len(actions) != 3 {
		t.Fatalf("expected 3 actions, got %d", len(actions))
	}
	for i, a := range actions {
		if a.Sequence != i {
			t.Fatalf("expected sequence %d at index %d, got %d", i, i, a.Sequence)
		}
	}
	if actions[1].Operation != "Nominate" || actions[1].Actor != 2 {
		t.Fatalf("unexpected second action: %+v", actions[1])
	}
}

// --- MessageRepo Tests ---

func TestMessageCreatePublic(t *testing.T) {
	setup(t)
	userRepo := NewUserRepo(testDB)
	gameRepo := NewGameRepo(testDB)
	msgRepo := NewMessageRepo(testDB)

	sender := createTestUser(t, userRepo, "msg-sender")
	g, _ := gameRepo.Create(context.Background(), "Msg Test", sender.ID, hitler.Options{}, 1)
	gameRepo.JoinGame(context.Background(), g.ID, sender.ID)

	msg, err := msgRepo.Create(context.Background(), g.ID, sender.ID, "", "Hello everyone!")
	if err != nil {
		t.Fatalf("create public message: %v", err)
	}
	if msg.ID == "" {
		t.Fatal("expected non-empty message ID")
	}
	if msg.RecipientID != "" {
		t.Fatalf("expected empty recipient for public, got %s", msg.RecipientID)
	}
	if msg.Content != "Hello everyone!" {
		t.Fatalf("expected content 'Hello everyone!', got '%s'", msg.Content)
	}
}

func TestMessageCreatePrivate(t *testing.T) {
	setup(t)
	userRepo := NewUserRepo(testDB)
	gameRepo := NewGameRepo(testDB)
	msgRepo := NewMessageRepo(testDB)

	sender := createTestUser(t, userRepo, "priv-sender")
	recipient := createTestUser(t, userRepo, "priv-recip")
	g, _ := gameRepo.Create(context.Background(), "Priv Msg", sender.ID, hitler.Options{}, 1)
	gameRepo.JoinGame(context.Background(), g.ID, sender.ID)
	gameRepo.JoinGame(context.Background(), g.ID, recipient.ID)

	msg, err := msgRepo.Create(context.Background(), g.ID, sender.ID, recipient.ID, "Secret deal")
	if err != nil {
		t.Fatalf("create private message: %v", err)
	}
	if msg.RecipientID != recipient.ID {
		t.Fatalf("expected recipient %s, got %s", recipient.ID, msg.RecipientID)
	}
}

func TestMessageListByGameVisibility(t *testing.T) {
	setup(t)
	userRepo := NewUserRepo(testDB)
	gameRepo := NewGameRepo(testDB)
	msgRepo := NewMessageRepo(testDB)

	alice := createTestUser(t, userRepo, "vis-alice")
	bob := createTestUser(t, userRepo, "vis-bob")
	charlie := createTestUser(t, userRepo, "vis-charlie")
	g, _ := gameRepo.Create(context.Background(), "Vis Test", alice.ID, hitler.Options{}, 1)
	gameRepo.JoinGame(context.Background(), g.ID, alice.ID)
	gameRepo.JoinGame(context.Background(), g.ID, bob.ID)
	gameRepo.JoinGame(context.Background(), g.ID, charlie.ID)

	msgRepo.Create(context.Background(), g.ID, alice.ID, "", "Public hello")
	msgRepo.Create(context.Background(), g.ID, alice.ID, bob.ID, "Secret to Bob")
	msgRepo.Create(context.Background(), g.ID, bob.ID, charlie.ID, "Secret to Charlie")

	aliceMsgs, err := msgRepo.ListByGame(context.Background(), g.ID, alice.ID)
	if err != nil {
		t.Fatalf("list alice: %v", err)
	}
	if len(aliceMsgs) != 2 {
		t.Fatalf("alice expected 2 messages, got %d", len(aliceMsgs))
	}

	bobMsgs, _ := msgRepo.ListByGame(context.Background(), g.ID, bob.ID)
	if len(bobMsgs) != 3 {
		t.Fatalf("bob expected 3 messages, got %d", len(bobMsgs))
	}

	charlieMsgs, _ := msgRepo.ListByGame(context.Background(), g.ID, charlie.ID)
	if len(charlieMsgs) != 2 {
		t.Fatalf("charlie expected 2 messages, got %d", len(charlieMsgs))
	}
}
