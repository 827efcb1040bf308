// Package metrics exposes the server's Prometheus counters and gauges.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// GamesCreated counts games created, labeled by whether they were bot-only.
	GamesCreated = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "hitlerxl_games_created_total",
		Help: "Number of games created.",
	}, []string{"bot_only"})

	// GamesStarted counts games that left the lobby and began play.
	GamesStarted = promauto.NewCounter(prometheus.CounterOpts{
		Name: "hitlerxl_games_started_total",
		Help: "Number of games that started.",
	})

	// ActionsDispatched counts operations applied to a game's engine,
	// labeled by operation name and whether the actor was a bot.
	ActionsDispatched = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "hitlerxl_actions_dispatched_total",
		Help: "Number of engine operations applied, by operation name.",
	}, []string{"operation", "source"})

	// ActiveGames tracks the number of games this instance is currently driving.
	ActiveGames = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "hitlerxl_active_games",
		Help: "Number of games with a live in-process engine on this instance.",
	})

	// AutoplayStepsExhausted counts how often autoplayBots hit its step
	// ceiling without settling on a human prompt.
	AutoplayStepsExhausted = promauto.NewCounter(prometheus.CounterOpts{
		Name: "hitlerxl_autoplay_steps_exhausted_total",
		Help: "Number of times bot autoplay hit its step limit before a human prompt was reached.",
	})
)
