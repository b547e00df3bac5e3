package database

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"

	"forum/config"
)

var Redis *redis.Client

// ConnectRedis creates the shared Redis client. Redis unavailability is
// not fatal: the cache degrades to store-only reads and the rate limiter
// fails open, so a failed ping is only logged.
func ConnectRedis(cfg config.Config) {
	Redis = redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := Redis.Ping(ctx).Err(); err != nil {
		log.Warn().Err(err).Str("addr", cfg.RedisAddr).
			Msg("Redis unreachable, continuing without cache and with fail-open rate limiting")
		return
	}

	log.Info().Str("addr", cfg.RedisAddr).Msg("connected to Redis")
}

func DisconnectRedis() error {
	if Redis == nil {
		return nil
	}
	return Redis.Close()
}
