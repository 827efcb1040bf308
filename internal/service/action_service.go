package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	"github.com/rs/zerolog/log"

	"github.com/efreeman/hitler-xl/api/internal/bot"
	"github.com/efreeman/hitler-xl/api/internal/metrics"
	"github.com/efreeman/hitler-xl/api/internal/model"
	"github.com/efreeman/hitler-xl/api/internal/repository"
	"github.com/efreeman/hitler-xl/api/pkg/hitler"
)

// maxAutoplaySteps bounds how many consecutive bot responses Dispatch
// will chain before giving back control, guarding against a strategy
// bug turning into an infinite loop.
const maxAutoplaySteps = 64

var (
	ErrUnknownOperation = errors.New("unknown operation")
	ErrGameNotStarted   = errors.New("game has not started")
)

// ActionPayload decodes the handful of argument shapes the engine's
// operations take. Only the fields relevant to the dispatched operation
// are read; the rest are ignored.
type ActionPayload struct {
	Chancellor int  `json:"chancellor"`
	Ja         bool `json:"ja"`
	Card       int  `json:"card"`
	Target     int  `json:"target"`
}

// ActionService dispatches client requests onto a game's hitler.Game,
// the way the teacher's OrderService dispatched client orders onto a
// diplomacy.GameState, except every dispatched call fully resolves
// itself: there is no separate adjudication step to wait for.
type ActionService struct {
	gameRepo repository.GameRepository
	logRepo  repository.ActionLogRepository
	cache    repository.GameCache

	// live holds the in-process hitler.Game for every game this server
	// is currently driving. gameLocks mirrors the teacher's PhaseService
	// sync.Map of per-game locks, guarding against concurrent dispatch
	// for the same table racing each other.
	live      sync.Map
	gameLocks sync.Map
}

// NewActionService creates an ActionService.
func NewActionService(gameRepo repository.GameRepository, logRepo repository.ActionLogRepository, cache repository.GameCache) *ActionService {
	return &ActionService{gameRepo: gameRepo, logRepo: logRepo, cache: cache}
}

// GameRepo returns the game repository for use by handlers.
func (s *ActionService) GameRepo() repository.GameRepository {
	return s.gameRepo
}

func (s *ActionService) lockFor(gameID string) *sync.Mutex {
	l, _ := s.gameLocks.LoadOrStore(gameID, &sync.Mutex{})
	return l.(*sync.Mutex)
}

// StartEngine constructs the hitler.Game for a table that just left the
// lobby, seeds the action log with its creation, and caches the initial
// board view.
func (s *ActionService) StartEngine(ctx context.Context, gameID string, options hitler.Options, playerNames []string, seed int64) error {
	lock := s.lockFor(gameID)
	lock.Lock()
	defer lock.Unlock()

	g, err := hitler.New(options, playerNames, seed)
	if err != nil {
		return fmt.Errorf("start engine: %w", err)
	}
	s.live.Store(gameID, g)
	metrics.ActiveGames.Inc()
	metrics.GamesStarted.Inc()

	snapshot, err := json.Marshal(g.GetBoardUpdate())
	if err != nil {
		return fmt.Errorf("marshal initial board: %w", err)
	}
	if _, err := s.logRepo.AppendAction(ctx, gameID, -1, "New", nil, snapshot); err != nil {
		return fmt.Errorf("log New: %w", err)
	}
	if err := s.cache.SetGameState(ctx, gameID, snapshot); err != nil {
		return err
	}
	return s.autoplayBots(ctx, gameID, g)
}

// loadGame returns the in-process engine for a game, rebuilding it from
// its action log if this process hasn't driven it since starting up
// (e.g. right after a restart, before RecoverActiveGames runs, or for a
// game that migrated to this instance).
func (s *ActionService) loadGame(ctx context.Context, gameID string) (*hitler.Game, error) {
	if v, ok := s.live.Load(gameID); ok {
		return v.(*hitler.Game), nil
	}
	return s.rebuild(ctx, gameID)
}

func (s *ActionService) rebuild(ctx context.Context, gameID string) (*hitler.Game, error) {
	game, err := s.gameRepo.FindByID(ctx, gameID)
	if err != nil {
		return nil, err
	}
	if game == nil {
		return nil, ErrGameNotFound
	}
	if game.Status != "active" {
		return nil, ErrGameNotStarted
	}

	names := make([]string, len(game.Players))
	for _, p := range game.Players {
		names[p.SeatIndex] = p.UserID
	}

	options := hitler.Options{
		Communists:    game.Communists,
		Monarchist:    game.Monarchist,
		Anarchist:     game.Anarchist,
		Capitalist:    game.Capitalist,
		Centrists:     game.Centrists,
		FastConsensus: game.FastConsensus,
	}

	g, err := hitler.New(options, names, game.Seed)
	if err != nil {
		return nil, fmt.Errorf("rebuild engine: %w", err)
	}

	actions, err := s.logRepo.ListActions(ctx, gameID)
	if err != nil {
		return nil, fmt.Errorf("list actions for replay: %w", err)
	}
	for _, a := range actions[1:] { // entry 0 is the New snapshot itself
		if err := applyOperation(g, a.Actor, a.Operation, a.Payload); err != nil {
			return nil, fmt.Errorf("replay action %d (%s): %w", a.Sequence, a.Operation, err)
		}
	}

	s.live.Store(gameID, g)
	metrics.ActiveGames.Inc()
	return g, nil
}

// Dispatch applies one client-initiated operation to a game's engine,
// logs it, refreshes the cached board snapshot, then lets any bot seats
// answer whatever prompt comes next before returning the settled board
// view for broadcast.
func (s *ActionService) Dispatch(ctx context.Context, gameID string, actor int, operation string, payload json.RawMessage) (hitler.BoardUpdate, error) {
	lock := s.lockFor(gameID)
	lock.Lock()
	defer lock.Unlock()

	g, err := s.loadGame(ctx, gameID)
	if err != nil {
		return hitler.BoardUpdate{}, err
	}

	if err := s.applyAndLog(ctx, gameID, g, actor, operation, payload, "human"); err != nil {
		return hitler.BoardUpdate{}, err
	}
	if err := s.autoplayBots(ctx, gameID, g); err != nil {
		return hitler.BoardUpdate{}, err
	}

	return g.GetBoardUpdate(), nil
}

// applyAndLog runs one operation against the live engine and persists
// its result. Callers must already hold gameID's lock. source labels the
// operation's origin ("human" or "bot") for the dispatched-actions counter.
func (s *ActionService) applyAndLog(ctx context.Context, gameID string, g *hitler.Game, actor int, operation string, payload json.RawMessage, source string) error {
	if err := applyOperation(g, actor, operation, payload); err != nil {
		return err
	}
	metrics.ActionsDispatched.WithLabelValues(operation, source).Inc()

	snapshot, err := json.Marshal(g.GetBoardUpdate())
	if err != nil {
		return fmt.Errorf("marshal board update: %w", err)
	}
	if _, err := s.logRepo.AppendAction(ctx, gameID, actor, operation, payload, snapshot); err != nil {
		return fmt.Errorf("log action: %w", err)
	}
	if err := s.cache.SetGameState(ctx, gameID, snapshot); err != nil {
		return err
	}

	if board := g.GetBoardUpdate(); board.Prompt.Kind == hitler.PromptGameOver {
		winners := board.Prompt.Win.Winners()
		winner := ""
		if len(winners) > 0 {
			winner = winners[0].String()
		}
		if err := s.gameRepo.SetFinished(ctx, gameID, winner); err != nil {
			return fmt.Errorf("mark game finished: %w", err)
		}
		s.live.Delete(gameID)
		metrics.ActiveGames.Dec()
	}
	return nil
}

// autoplayBots drives every bot-controlled seat through whatever it is
// currently being prompted to do, repeating until no bot has anything
// left to answer. Callers must already hold gameID's lock.
func (s *ActionService) autoplayBots(ctx context.Context, gameID string, g *hitler.Game) error {
	game, err := s.gameRepo.FindByID(ctx, gameID)
	if err != nil {
		return err
	}
	difficulties := make(map[int]string, len(game.Players))
	for _, p := range game.Players {
		if p.IsBot {
			difficulties[p.SeatIndex] = p.BotDifficulty
		}
	}
	if len(difficulties) == 0 {
		return nil
	}

	for step := 0; step < maxAutoplaySteps; step++ {
		acted := false
		board := g.GetBoardUpdate()
		for seat, difficulty := range difficulties {
			if seat >= len(g.Players) || !g.Players[seat].Alive {
				continue
			}
			view := g.GetPlayerUpdate(seat)
			if view.Prompt.Kind == hitler.PlayerPromptNone {
				continue
			}
			operation, payload := bot.ForDifficulty(difficulty).Decide(seat, view, board)
			if operation == "" {
				continue
			}
			if err := s.applyAndLog(ctx, gameID, g, seat, operation, payload, "bot"); err != nil {
				return fmt.Errorf("bot seat %d: %w", seat, err)
			}
			acted = true
			board = g.GetBoardUpdate()
		}
		if !acted {
			return nil
		}
	}
	metrics.AutoplayStepsExhausted.Inc()
	log.Warn().Str("gameId", gameID).Msg("Autoplay step limit reached; a human prompt may be stuck")
	return nil
}

// RecoverActiveGames rebuilds the in-process engine for every game the
// database still considers active, mirroring the teacher's
// PhaseService.RecoverActiveGames startup sweep. Here "recovery" means
// replaying each game's action log rather than rehydrating a single
// stored blob, since hitler.Game keeps unexported fields that cannot
// round-trip through encoding/json on their own.
func (s *ActionService) RecoverActiveGames(ctx context.Context) error {
	games, err := s.gameRepo.ListActive(ctx)
	if err != nil {
		return fmt.Errorf("list active games: %w", err)
	}
	for _, g := range games {
		lock := s.lockFor(g.ID)
		lock.Lock()
		_, err := s.rebuild(ctx, g.ID)
		lock.Unlock()
		if err != nil {
			log.Error().Err(err).Str("gameId", g.ID).Msg("Failed to recover active game")
			continue
		}
		log.Info().Str("gameId", g.ID).Msg("Recovered active game")
	}
	return nil
}

// Forget evicts a game's in-process engine, e.g. once it has finished or
// been deleted. Safe to call even if the game was never loaded.
func (s *ActionService) Forget(gameID string) {
	if _, loaded := s.live.LoadAndDelete(gameID); loaded {
		metrics.ActiveGames.Dec()
	}
	s.gameLocks.Delete(gameID)
}

// BoardView returns the current board view for a game without mutating it.
func (s *ActionService) BoardView(ctx context.Context, gameID string) (hitler.BoardUpdate, error) {
	g, err := s.loadGame(ctx, gameID)
	if err != nil {
		return hitler.BoardUpdate{}, err
	}
	return g.GetBoardUpdate(), nil
}

// PlayerView returns the seat-specific view for a game without mutating it.
func (s *ActionService) PlayerView(ctx context.Context, gameID string, seat int) (hitler.PlayerUpdate, error) {
	g, err := s.loadGame(ctx, gameID)
	if err != nil {
		return hitler.PlayerUpdate{}, err
	}
	return g.GetPlayerUpdate(seat), nil
}

// SeatFor returns the seat index for a user in an active game.
func SeatFor(game *model.Game, userID string) (int, bool) {
	for _, p := range game.Players {
		if p.UserID == userID {
			return p.SeatIndex, true
		}
	}
	return 0, false
}

// applyOperation dispatches one named engine call. This is the repo's
// driver surface: everything an HTTP handler, a bot, or log replay
// needs to advance a hitler.Game lives behind this one switch.
func applyOperation(g *hitler.Game, actor int, operation string, payload json.RawMessage) error {
	var p ActionPayload
	if len(payload) > 0 {
		if err := json.Unmarshal(payload, &p); err != nil {
			return fmt.Errorf("decode payload: %w", err)
		}
	}

	switch operation {
	case "New":
		return nil // already constructed; replay starts from entry 1
	case "ConfirmNight":
		return g.ConfirmNight(actor)
	case "Nominate":
		return g.Nominate(p.Chancellor)
	case "CastVote":
		return g.CastVote(actor, p.Ja)
	case "EndVoting":
		return g.EndVoting()
	case "DiscardPolicy":
		return g.DiscardPolicy(p.Card)
	case "EnactPolicy":
		return g.EnactPolicy(p.Card)
	case "VetoAgenda":
		return g.VetoAgenda()
	case "ApproveVeto":
		return g.ApproveVeto()
	case "RejectVeto":
		return g.RejectVeto()
	case "EndCardReveal":
		return g.EndCardReveal(actor)
	case "DeclineMonarchist":
		return g.DeclineMonarchist()
	case "CallMonarchistElection":
		return g.CallMonarchistElection(p.Chancellor)
	case "ChoosePlayer":
		return g.ChoosePlayer(p.Target)
	case "EndExecutiveAction":
		return g.EndExecutiveAction(actor)
	case "StartSpecialElection":
		return g.StartSpecialElection(actor)
	case "EndCommunistStart":
		return g.EndCommunistStart(actor)
	case "EndCongress":
		return g.EndCongress(actor)
	case "EndCommunistEnd":
		return g.EndCommunistEnd(actor)
	case "StartAssassination":
		return g.StartAssassination()
	case "HijackSpecialElection":
		return g.HijackSpecialElection(p.Target)
	default:
		return fmt.Errorf("%w: %s", ErrUnknownOperation, operation)
	}
}
