package service

import (
	"context"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/efreeman/hitler-xl/api/internal/repository"
)

// Sweeper periodically purges tables that went quiet: nobody dispatched
// an action for SweepTimeout, so there is no deadline left to wait out.
// Modeled on the teacher's TimerListener polling loop, but the engine
// resolves synchronously on every Dispatch, so there is nothing left to
// adjudicate on a timer firing, only abandoned state to reclaim.
type Sweeper struct {
	gameRepo repository.GameRepository
	logRepo  repository.ActionLogRepository
	cache    repository.GameCache
	interval time.Duration
	timeout  time.Duration
}

// NewSweeper creates a Sweeper.
func NewSweeper(gameRepo repository.GameRepository, logRepo repository.ActionLogRepository, cache repository.GameCache, interval, timeout time.Duration) *Sweeper {
	return &Sweeper{gameRepo: gameRepo, logRepo: logRepo, cache: cache, interval: interval, timeout: timeout}
}

// Start runs the sweep loop until ctx is cancelled.
func (s *Sweeper) Start(ctx context.Context) {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	log.Info().Dur("interval", s.interval).Dur("timeout", s.timeout).Msg("Lobby sweeper started")
	for {
		select {
		case <-ctx.Done():
			log.Info().Msg("Lobby sweeper stopped")
			return
		case <-ticker.C:
			s.sweep(ctx)
		}
	}
}

// sweep finds active games whose action log has gone stale and closes
// them out as abandoned, freeing their Redis footprint.
func (s *Sweeper) sweep(ctx context.Context) {
	stale, err := s.logRepo.ListExpired(ctx, s.timeout)
	if err != nil {
		log.Error().Err(err).Msg("Failed to list stale games")
		return
	}
	for _, gameID := range stale {
		log.Info().Str("gameId", gameID).Msg("Sweeper closing abandoned game")
		if err := s.gameRepo.SetFinished(ctx, gameID, ""); err != nil {
			log.Error().Err(err).Str("gameId", gameID).Msg("Failed to mark abandoned game finished")
			continue
		}
		if err := s.cache.DeleteGameData(ctx, gameID); err != nil {
			log.Error().Err(err).Str("gameId", gameID).Msg("Failed to purge abandoned game cache")
		}
	}
}
