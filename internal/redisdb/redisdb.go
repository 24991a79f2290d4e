// Package redisdb provides the shared Redis client. The rate limiter,
// ingest lock, and progress store all coordinate through it so their
// state is visible across worker processes.
package redisdb

import (
	"context"
	"fmt"

	"github.com/Ethan-new/LoL-Wrapped/internal/config"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"go.uber.org/fx"
)

func New(cfg *config.Config, logger zerolog.Logger) (*redis.Client, error) {
	opts, err := redis.ParseURL(cfg.RedisURL)
	if err != nil {
		return nil, fmt.Errorf("invalid REDIS_URL: %w", err)
	}

	client := redis.NewClient(opts)
	if err := client.Ping(context.Background()).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}

	logger.Info().Str("addr", opts.Addr).Msg("redis connection established")
	return client, nil
}

var Module = fx.Provide(New)
