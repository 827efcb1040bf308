package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog/log"

	"github.com/efreeman/hitler-xl/api/internal/auth"
	"github.com/efreeman/hitler-xl/api/internal/config"
	"github.com/efreeman/hitler-xl/api/internal/handler"
	"github.com/efreeman/hitler-xl/api/internal/logger"
	"github.com/efreeman/hitler-xl/api/internal/middleware"
	"github.com/efreeman/hitler-xl/api/internal/repository/postgres"
	redisrepo "github.com/efreeman/hitler-xl/api/internal/repository/redis"
	"github.com/efreeman/hitler-xl/api/internal/service"
)

func main() {
	logger.Init()
	cfg := config.Load()
	log.Info().Str("databaseURL", cfg.DatabaseURL).Msg("Config loaded")

	sweepInterval, err := time.ParseDuration(cfg.SweepInterval)
	if err != nil {
		log.Fatal().Err(err).Str("value", cfg.SweepInterval).Msg("Invalid SWEEP_INTERVAL")
	}
	sweepTimeout, err := time.ParseDuration(cfg.SweepTimeout)
	if err != nil {
		log.Fatal().Err(err).Str("value", cfg.SweepTimeout).Msg("Invalid SWEEP_TIMEOUT")
	}

	// Database
	db, err := postgres.Connect(cfg.DatabaseURL)
	if err != nil {
		log.Fatal().Err(err).Msg("Database connection failed")
	}
	defer db.Close()

	// Redis
	redisClient, err := redisrepo.NewClient(cfg.RedisURL)
	if err != nil {
		log.Fatal().Err(err).Msg("Redis connection failed")
	}
	defer redisClient.Close()

	// Repos
	userRepo := postgres.NewUserRepo(db)
	gameRepo := postgres.NewGameRepo(db)
	logRepo := postgres.NewActionLogRepo(db)
	messageRepo := postgres.NewMessageRepo(db)

	// Auth
	jwtMgr := auth.NewJWTManager(cfg.JWTSecret)
	googleOAuth := auth.NewGoogleOAuth(
		os.Getenv("GOOGLE_CLIENT_ID"),
		os.Getenv("GOOGLE_CLIENT_SECRET"),
		os.Getenv("GOOGLE_REDIRECT_URL"),
	)

	// WebSocket hub
	wsHub := handler.NewHub()

	// Services
	actionSvc := service.NewActionService(gameRepo, logRepo, redisClient)
	gameSvc := service.NewGameService(gameRepo, actionSvc, userRepo)
	sweeper := service.NewSweeper(gameRepo, logRepo, redisClient, sweepInterval, sweepTimeout)

	// Handlers
	authHandler := handler.NewAuthHandler(googleOAuth, jwtMgr, userRepo)
	userHandler := handler.NewUserHandler(userRepo)
	gameHandler := handler.NewGameHandler(gameSvc, wsHub, cfg.FastConsensus)
	actionHandler := handler.NewActionHandler(actionSvc, wsHub)
	actionLogHandler := handler.NewActionLogHandler(logRepo, actionSvc)
	messageHandler := handler.NewMessageHandler(messageRepo, wsHub)
	wsHandler := handler.NewWSHandler(wsHub, jwtMgr)

	// Router
	mux := http.NewServeMux()
	authMw := auth.Middleware(jwtMgr)

	// Health
	mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"status":"ok"}`))
	})
	mux.Handle("GET /metrics", promhttp.Handler())

	// Auth (public)
	mux.HandleFunc("GET /auth/google/login", authHandler.GoogleLogin)
	mux.HandleFunc("GET /auth/google/callback", authHandler.GoogleCallback)
	mux.HandleFunc("POST /auth/refresh", authHandler.RefreshToken)
	mux.HandleFunc("GET /auth/dev", authHandler.DevLogin)

	// Protected API routes
	api := http.NewServeMux()
	api.HandleFunc("GET /users/me", userHandler.GetMe)
	api.HandleFunc("PATCH /users/me", userHandler.UpdateMe)
	api.HandleFunc("GET /users/{id}", userHandler.GetUser)
	api.HandleFunc("POST /games", gameHandler.CreateGame)
	api.HandleFunc("GET /games", gameHandler.ListGames)
	api.HandleFunc("GET /games/{id}", gameHandler.GetGame)
	api.HandleFunc("POST /games/{id}/join", gameHandler.JoinGame)
	api.HandleFunc("POST /games/{id}/start", gameHandler.StartGame)
	api.HandleFunc("DELETE /games/{id}", gameHandler.DeleteGame)
	api.HandleFunc("POST /games/{id}/stop", gameHandler.StopGame)
	api.HandleFunc("POST /games/{id}/bots", gameHandler.AddBot)
	api.HandleFunc("PATCH /games/{id}/players/{userId}/bot-difficulty", gameHandler.UpdateBotDifficulty)
	api.HandleFunc("PATCH /games/{id}/players/{userId}/seat", gameHandler.UpdatePlayerSeat)
	api.HandleFunc("POST /games/{id}/actions", actionHandler.Dispatch)
	api.HandleFunc("GET /games/{id}/actions", actionLogHandler.ListActions)
	api.HandleFunc("GET /games/{id}/board", actionLogHandler.BoardView)
	api.HandleFunc("GET /games/{id}/me/view", actionLogHandler.PlayerView)
	api.HandleFunc("GET /games/{id}/messages", messageHandler.ListMessages)
	api.HandleFunc("POST /games/{id}/messages", messageHandler.SendMessage)

	mux.Handle("/api/v1/", http.StripPrefix("/api/v1", authMw(api)))

	// WebSocket (auth via query param, not middleware)
	mux.HandleFunc("GET /api/v1/ws", wsHandler.ServeWS)

	// Apply global middleware
	root := middleware.Chain(mux, middleware.Logger, middleware.CORS("*"), middleware.JSON)

	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      root,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Rebuild every active game's engine from its action log after a restart.
	if err := actionSvc.RecoverActiveGames(context.Background()); err != nil {
		log.Error().Err(err).Msg("Failed to recover active games (non-fatal)")
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go sweeper.Start(ctx)

	go func() {
		log.Info().Str("port", cfg.Port).Msg("Server listening")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("Server error")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info().Msg("Shutting down server")

	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Fatal().Err(err).Msg("Server shutdown error")
	}
	log.Info().Msg("Server stopped")
}
