package fx

import (
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"go.uber.org/fx"

	"github.com/Ethan-new/LoL-Wrapped/internal/config"
	"github.com/Ethan-new/LoL-Wrapped/internal/database"
	"github.com/Ethan-new/LoL-Wrapped/internal/ingest"
	"github.com/Ethan-new/LoL-Wrapped/internal/ingestlock"
	"github.com/Ethan-new/LoL-Wrapped/internal/logger"
	"github.com/Ethan-new/LoL-Wrapped/internal/progress"
	"github.com/Ethan-new/LoL-Wrapped/internal/queue"
	"github.com/Ethan-new/LoL-Wrapped/internal/ratelimit"
	"github.com/Ethan-new/LoL-Wrapped/internal/recap"
	"github.com/Ethan-new/LoL-Wrapped/internal/redisdb"
	"github.com/Ethan-new/LoL-Wrapped/internal/repository"
	"github.com/Ethan-new/LoL-Wrapped/internal/riot"
	"github.com/Ethan-new/LoL-Wrapped/internal/service"
	"github.com/Ethan-new/LoL-Wrapped/internal/status"
)

func ProvideLimiter(client *redis.Client, cfg *config.Config, logger zerolog.Logger) *ratelimit.Limiter {
	return ratelimit.New(client, cfg.BurstLimit, cfg.SustainedLimit, logger)
}

func ProvideRiotClient(cfg *config.Config, limiter *ratelimit.Limiter, logger zerolog.Logger) *riot.Client {
	return riot.New(cfg.RiotAPIKey, cfg.RetryAttempts, limiter, logger)
}

func ProvidePipeline(
	client *riot.Client,
	lock *ingestlock.Lock,
	progressStore *progress.Store,
	players *repository.PlayerRepository,
	matches *repository.MatchRepository,
	natsClient *queue.Client,
	cfg *config.Config,
	logger zerolog.Logger,
) *ingest.Pipeline {
	return ingest.New(client, lock, progressStore, players, matches, natsClient,
		cfg.MatchFetchDelay, logger)
}

func ProvideEngine(
	players *repository.PlayerRepository,
	matches *repository.MatchRepository,
	stats *repository.RecapRepository,
	progressStore *progress.Store,
	resolver *service.PlayerResolver,
	logger zerolog.Logger,
) *recap.Engine {
	return recap.NewEngine(players, matches, stats, progressStore, resolver, logger)
}

func ProvideStatusService(players *repository.PlayerRepository, progressStore *progress.Store, logger zerolog.Logger) *status.Service {
	return status.NewService(players, progressStore, nil, logger)
}

var Module = fx.Options(
	fx.Provide(logger.New),
	fx.Provide(config.Load),
	fx.Provide(database.New),
	fx.Provide(redisdb.New),
	fx.Provide(queue.New),
	// repos
	fx.Provide(repository.NewPlayerRepository),
	fx.Provide(repository.NewMatchRepository),
	fx.Provide(repository.NewRecapRepository),
	// redis-backed coordination
	fx.Provide(ProvideLimiter),
	fx.Provide(ingestlock.New),
	fx.Provide(progress.New),
	// api client
	fx.Provide(ProvideRiotClient),
	// svc
	fx.Provide(service.NewPlayerResolver),
	fx.Provide(service.NewPlayerService),
	fx.Provide(ProvidePipeline),
	fx.Provide(ProvideEngine),
	fx.Provide(ProvideStatusService),
)
