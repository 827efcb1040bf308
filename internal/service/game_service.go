package service

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"strconv"

	"github.com/efreeman/hitler-xl/api/internal/metrics"
	"github.com/efreeman/hitler-xl/api/internal/model"
	"github.com/efreeman/hitler-xl/api/internal/repository"
	"github.com/efreeman/hitler-xl/api/pkg/hitler"
)

var (
	ErrGameNotFound  = errors.New("game not found")
	ErrGameNotWaiting = errors.New("game is not in waiting status")
	ErrGameFull       = errors.New("game already has the maximum number of players")
	ErrNotEnough      = errors.New("need at least 5 players to start")
	ErrNotCreator     = errors.New("only the creator can start the game")
	ErrGameNotActive  = errors.New("game is not active")
	ErrAlreadyJoined  = errors.New("already joined this game")
	ErrNotInGame      = errors.New("you are not in this game")
	ErrSeatTaken      = errors.New("seat already assigned to another player")
	ErrInvalidSeat    = errors.New("invalid seat index")
)

const minPlayers = 5

// GameService handles game lifecycle operations: lobby creation, joining,
// seat assignment, and handing a full lobby off to the ActionService to
// drive.
type GameService struct {
	gameRepo repository.GameRepository
	actions  *ActionService
	userRepo repository.UserRepository
}

// NewGameService creates a GameService.
func NewGameService(gameRepo repository.GameRepository, actions *ActionService, userRepo repository.UserRepository) *GameService {
	return &GameService{gameRepo: gameRepo, actions: actions, userRepo: userRepo}
}

// CreateGame creates a new game in "waiting" status with the requested
// optional-power set, seeding its engine with a fresh random seed so the
// deal is reproducible from the action log.
func (s *GameService) CreateGame(ctx context.Context, name, creatorID string, options hitler.Options, botDifficulty string, botOnly bool) (*model.Game, error) {
	if botDifficulty == "" {
		botDifficulty = "easy"
	}

	seed := rand.Int63()
	game, err := s.gameRepo.Create(ctx, name, creatorID, options, seed)
	if err != nil {
		return nil, err
	}

	if !botOnly {
		if err := s.gameRepo.JoinGame(ctx, game.ID, creatorID); err != nil {
			return nil, err
		}
	}

	metrics.GamesCreated.WithLabelValues(strconv.FormatBool(botOnly)).Inc()
	return s.gameRepo.FindByID(ctx, game.ID)
}

// JoinGame adds a player to a waiting game, replacing a bot seat if the
// lobby is already at capacity.
func (s *GameService) JoinGame(ctx context.Context, gameID, userID string) error {
	game, err := s.gameRepo.FindByID(ctx, gameID)
	if err != nil {
		return err
	}
	if game == nil {
		return ErrGameNotFound
	}
	if game.Status != "waiting" {
		return ErrGameNotWaiting
	}

	for _, p := range game.Players {
		if p.UserID == userID {
			return ErrAlreadyJoined
		}
	}

	count, err := s.gameRepo.PlayerCount(ctx, gameID)
	if err != nil {
		return err
	}

	if count >= hitler.MaxPlayers {
		hasBots := false
		for _, p := range game.Players {
			if p.IsBot {
				hasBots = true
				break
			}
		}
		if !hasBots {
			return ErrGameFull
		}
		return s.gameRepo.ReplaceBot(ctx, gameID, userID)
	}

	return s.gameRepo.JoinGame(ctx, gameID, userID)
}

// AddBot fills an open seat with a bot of the given difficulty.
func (s *GameService) AddBot(ctx context.Context, gameID, requestingUserID, difficulty string) error {
	game, err := s.gameRepo.FindByID(ctx, gameID)
	if err != nil {
		return err
	}
	if game == nil {
		return ErrGameNotFound
	}
	if game.Status != "waiting" {
		return ErrGameNotWaiting
	}
	if game.CreatorID != requestingUserID {
		return ErrNotCreator
	}
	switch difficulty {
	case "easy", "medium", "hard":
	default:
		difficulty = "easy"
	}

	count, err := s.gameRepo.PlayerCount(ctx, gameID)
	if err != nil {
		return err
	}
	if count >= hitler.MaxPlayers {
		return ErrGameFull
	}

	botUser, err := s.userRepo.Upsert(ctx, "bot", fmt.Sprintf("bot-%s-%d", gameID, count), fmt.Sprintf("Bot %d", count+1), "")
	if err != nil {
		return fmt.Errorf("create bot user: %w", err)
	}
	return s.gameRepo.JoinGameAsBot(ctx, gameID, botUser.ID, difficulty)
}

// StartGame validates seat count against the engine's distribution rules
// and hands the lobby off to the ActionService to construct the game.
func (s *GameService) StartGame(ctx context.Context, gameID, userID string) (*model.Game, error) {
	game, err := s.gameRepo.FindByID(ctx, gameID)
	if err != nil {
		return nil, err
	}
	if game == nil {
		return nil, ErrGameNotFound
	}
	if game.Status != "waiting" {
		return nil, ErrGameNotWaiting
	}
	if game.CreatorID != userID {
		return nil, ErrNotCreator
	}
	if len(game.Players) < minPlayers {
		return nil, ErrNotEnough
	}

	options := gameOptions(game)
	if _, err := hitler.NewDistribution(options, len(game.Players)); err != nil {
		return nil, fmt.Errorf("validate distribution: %w", err)
	}

	seats := make(map[string]int, len(game.Players))
	for i, p := range game.Players {
		seats[p.UserID] = i
	}
	if err := s.gameRepo.AssignSeats(ctx, gameID, seats); err != nil {
		return nil, err
	}

	names := make([]string, len(game.Players))
	for _, p := range game.Players {
		names[seats[p.UserID]] = p.UserID
	}

	if err := s.actions.StartEngine(ctx, gameID, options, names, game.Seed); err != nil {
		return nil, err
	}

	return s.gameRepo.FindByID(ctx, gameID)
}

func gameOptions(game *model.Game) hitler.Options {
	return hitler.Options{
		Communists:    game.Communists,
		Monarchist:    game.Monarchist,
		Anarchist:     game.Anarchist,
		Capitalist:    game.Capitalist,
		Centrists:     game.Centrists,
		FastConsensus: game.FastConsensus,
	}
}

// GetGame returns a game by ID.
func (s *GameService) GetGame(ctx context.Context, gameID string) (*model.Game, error) {
	game, err := s.gameRepo.FindByID(ctx, gameID)
	if err != nil {
		return nil, err
	}
	if game == nil {
		return nil, ErrGameNotFound
	}
	return game, nil
}

// UpdateBotDifficulty validates and updates a bot's difficulty level.
func (s *GameService) UpdateBotDifficulty(ctx context.Context, gameID, userID, botUserID, difficulty string) error {
	game, err := s.gameRepo.FindByID(ctx, gameID)
	if err != nil {
		return err
	}
	if game == nil {
		return ErrGameNotFound
	}
	if game.Status != "waiting" {
		return ErrGameNotWaiting
	}
	if game.CreatorID != userID {
		return ErrNotCreator
	}
	switch difficulty {
	case "easy", "medium", "hard":
	default:
		return fmt.Errorf("invalid difficulty: must be easy, medium, or hard")
	}
	return s.gameRepo.UpdateBotDifficulty(ctx, gameID, botUserID, difficulty)
}

// UpdatePlayerSeat sets a player's seat in a waiting lobby.
func (s *GameService) UpdatePlayerSeat(ctx context.Context, gameID, targetUserID, requestingUserID string, seat int) error {
	game, err := s.gameRepo.FindByID(ctx, gameID)
	if err != nil {
		return err
	}
	if game == nil {
		return ErrGameNotFound
	}
	if game.Status != "waiting" {
		return ErrGameNotWaiting
	}
	if seat < 0 || seat >= hitler.MaxPlayers {
		return ErrInvalidSeat
	}

	var targetPlayer *model.GamePlayer
	for i := range game.Players {
		if game.Players[i].UserID == targetUserID {
			targetPlayer = &game.Players[i]
			break
		}
	}
	if targetPlayer == nil {
		return ErrNotInGame
	}

	if targetPlayer.IsBot {
		if game.CreatorID != requestingUserID {
			return ErrNotCreator
		}
	} else if targetUserID != requestingUserID {
		return ErrNotCreator
	}

	for _, p := range game.Players {
		if p.UserID != targetUserID && p.SeatIndex == seat {
			return ErrSeatTaken
		}
	}

	return s.gameRepo.UpdatePlayerSeat(ctx, gameID, targetUserID, seat)
}

// DeleteGame removes a waiting game. Only the game creator can delete a game.
func (s *GameService) DeleteGame(ctx context.Context, gameID, userID string) error {
	game, err := s.gameRepo.FindByID(ctx, gameID)
	if err != nil {
		return err
	}
	if game == nil {
		return ErrGameNotFound
	}
	if game.Status != "waiting" {
		return ErrGameNotWaiting
	}
	if game.CreatorID != userID {
		return ErrNotCreator
	}
	s.actions.Forget(gameID)
	return s.gameRepo.Delete(ctx, gameID)
}

// StopGame ends an active game as a draw. Only the game creator can stop a game.
func (s *GameService) StopGame(ctx context.Context, gameID, userID string) (*model.Game, error) {
	game, err := s.gameRepo.FindByID(ctx, gameID)
	if err != nil {
		return nil, err
	}
	if game == nil {
		return nil, ErrGameNotFound
	}
	if game.Status != "active" {
		return nil, ErrGameNotActive
	}
	if game.CreatorID != userID {
		return nil, ErrNotCreator
	}
	if err := s.gameRepo.SetFinished(ctx, gameID, ""); err != nil {
		return nil, err
	}
	s.actions.Forget(gameID)
	return s.gameRepo.FindByID(ctx, gameID)
}

// ListGames returns open games or games the user is in.
func (s *GameService) ListGames(ctx context.Context, userID string, filter string) ([]model.Game, error) {
	switch filter {
	case "my":
		return s.gameRepo.ListByUser(ctx, userID)
	case "finished":
		return s.gameRepo.ListFinished(ctx)
	default:
		return s.gameRepo.ListOpen(ctx)
	}
}
