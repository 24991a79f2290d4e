package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"go.uber.org/fx"

	loglevel "github.com/Ethan-new/LoL-Wrapped/internal/logger"
)

type Config struct {
	RiotAPIKey string
	DBPath     string
	RedisURL   string
	NatsURL    string
	LogLevel   string

	// Delay between match-detail fetches inside one ingestion run.
	// Riot allows 100 req/120s sustained; 1.2s keeps a run under that.
	MatchFetchDelay time.Duration

	// Upstream retry ceiling per request.
	RetryAttempts int

	// Rate limiter quotas, shared across all workers.
	BurstLimit     int
	SustainedLimit int

	// Max jobs a single worker processes concurrently.
	WorkerConcurrency int
}

func Load(logger zerolog.Logger) (*Config, error) {
	if err := godotenv.Load(); err != nil {
		logger.Debug().Msg(".env file not found, using environment variables or defaults")
	}

	cfg := &Config{
		RiotAPIKey:        getEnv("RIOT_API_KEY", ""),
		DBPath:            getEnv("DB_PATH", "wrapped.db"),
		RedisURL:          getEnv("REDIS_URL", "redis://localhost:6379/0"),
		NatsURL:           getEnv("NATS_URL", "nats://localhost:4222"),
		LogLevel:          getEnv("LOG_LEVEL", "info"),
		MatchFetchDelay:   getEnvDuration("RIOT_MATCH_DELAY", 1200*time.Millisecond),
		RetryAttempts:     getEnvInt("RIOT_RETRY_ATTEMPTS", 5),
		BurstLimit:        getEnvInt("RIOT_BURST_LIMIT", 20),
		SustainedLimit:    getEnvInt("RIOT_SUSTAINED_LIMIT", 100),
		WorkerConcurrency: getEnvInt("WORKER_CONCURRENCY", 4),
	}

	if cfg.RiotAPIKey == "" {
		return nil, fmt.Errorf("RIOT_API_KEY is required")
	}

	loglevel.SetLevel(cfg.LogLevel)

	logger.Info().
		Str("db_path", cfg.DBPath).
		Str("redis_url", cfg.RedisURL).
		Str("nats_url", cfg.NatsURL).
		Str("log_level", cfg.LogLevel).
		Dur("match_fetch_delay", cfg.MatchFetchDelay).
		Int("retry_attempts", cfg.RetryAttempts).
		Int("burst_limit", cfg.BurstLimit).
		Int("sustained_limit", cfg.SustainedLimit).
		Int("worker_concurrency", cfg.WorkerConcurrency).
		Msg("configuration loaded")

	return cfg, nil
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
		// Bare numbers are seconds, matching the old RIOT_MATCH_DELAY=1.2 form.
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return time.Duration(f * float64(time.Second))
		}
	}
	return fallback
}

var Module = fx.Provide(Load)
