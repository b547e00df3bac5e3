package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"forum/cache"
	"forum/config"
	"forum/database"
	"forum/handlers"
	"forum/ratelimit"
	"forum/repo"
	"forum/routes"
	"forum/storage"
)

func main() {
	// .env is optional; real deployments set the environment directly.
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("invalid configuration")
	}

	setupLogger(cfg)
	log.Info().Msg("starting forum backend")

	// Mongo is the source of truth; refuse to start without it.
	var dbErr error
	for i := 1; i <= 3; i++ {
		if dbErr = database.ConnectMongo(cfg); dbErr == nil {
			break
		}
		log.Warn().Err(dbErr).Int("attempt", i).Msg("MongoDB connection failed, retrying")
		time.Sleep(2 * time.Second)
	}
	if dbErr != nil {
		log.Fatal().Err(dbErr).Msg("failed to connect to MongoDB")
	}
	defer database.DisconnectMongo()

	// Redis is best-effort: cache and rate limiting degrade gracefully.
	database.ConnectRedis(cfg)
	defer database.DisconnectRedis()

	kv := cache.NewRedis(database.Redis, cfg.CacheTTL)
	postRepo := repo.NewPostRepository(storage.NewMongo(database.Posts), kv)
	commentRepo := repo.NewCommentRepository(storage.NewMongo(database.Comments), kv)

	limiter := ratelimit.NewLimiter(
		ratelimit.NewRedisCounterStore(database.Redis),
		ratelimit.DefaultConfig(),
	)
	gate := ratelimit.NewGate(limiter)

	handlers.Init(cfg, postRepo, commentRepo,
		storage.NewMongo(database.Users),
		storage.NewMongo(database.PushSubs))

	gin.SetMode(cfg.GinMode)
	router := routes.SetupRouter(cfg, gate)

	server := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      router,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
		IdleTimeout:  cfg.IdleTimeout,
	}

	go func() {
		log.Info().Str("port", cfg.Port).Msg("server listening")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("server error")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("forced shutdown")
	}

	log.Info().Msg("server stopped")
}

func setupLogger(cfg config.Config) {
	level, err := zerolog.ParseLevel(cfg.LogLevel)
	if err != nil {
		level = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(level)

	if cfg.LogPretty {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})
	}
}
