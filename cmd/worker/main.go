package main

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/rs/zerolog"
	"github.com/sourcegraph/conc/pool"
	"go.uber.org/fx"

	"github.com/Ethan-new/LoL-Wrapped/internal/config"
	"github.com/Ethan-new/LoL-Wrapped/internal/constants"
	fxmodules "github.com/Ethan-new/LoL-Wrapped/internal/fx"
	"github.com/Ethan-new/LoL-Wrapped/internal/ingest"
	"github.com/Ethan-new/LoL-Wrapped/internal/queue"
	"github.com/Ethan-new/LoL-Wrapped/internal/recap"
)

func main() {
	fx.New(
		fxmodules.Module,
		fx.Invoke(runWorker),
	).Run()
}

func runWorker(
	lc fx.Lifecycle,
	cfg *config.Config,
	natsClient *queue.Client,
	pipeline *ingest.Pipeline,
	engine *recap.Engine,
	db *sql.DB,
	logger zerolog.Logger,
) {
	jobCtx, cancelJobs := context.WithCancel(context.Background())
	workers := pool.New().WithMaxGoroutines(cfg.WorkerConcurrency)

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			err := natsClient.SubscribeIngest(func(job queue.Job) {
				workers.Go(func() {
					log := logger.With().Str("jobId", job.JobID).Str("puuid", job.PUUID).Int("year", job.Year).Logger()
					log.Info().Msg("ingest job received")
					if err := pipeline.Run(jobCtx, job.PUUID, job.Year, job.JobID); err != nil {
						if errors.Is(err, ingest.ErrLockBusy) {
							log.Info().Msg("ingest job skipped, player already locked")
							return
						}
						log.Error().Err(err).Msg("ingest job failed")
					}
				})
			})
			if err != nil {
				return err
			}

			err = natsClient.SubscribeCompute(func(job queue.Job) {
				workers.Go(func() {
					log := logger.With().Str("jobId", job.JobID).Str("puuid", job.PUUID).Int("year", job.Year).Logger()
					log.Info().Msg("compute job received")
					if err := engine.Run(jobCtx, job.PUUID, job.Year); err != nil {
						log.Error().Err(err).Msg("compute job failed")
					}
				})
			})
			if err != nil {
				return err
			}

			logger.Info().Int("concurrency", cfg.WorkerConcurrency).Msg("worker started")
			return nil
		},
		OnStop: func(ctx context.Context) error {
			logger.Info().Msg("shutting down worker")

			if err := natsClient.Drain(); err != nil {
				logger.Warn().Err(err).Msg("error draining nats subscriptions")
			}

			done := make(chan struct{})
			go func() {
				workers.Wait()
				close(done)
			}()
			select {
			case <-done:
				logger.Info().Msg("in-flight jobs finished")
			case <-time.After(constants.ShutdownTimeout):
				logger.Warn().Msg("shutdown timeout reached, cancelling in-flight jobs")
				cancelJobs()
				<-done
			}
			cancelJobs()

			natsClient.Close()
			if err := db.Close(); err != nil {
				logger.Warn().Err(err).Msg("error closing database connection")
			}
			logger.Info().Msg("worker stopped gracefully")
			return nil
		},
	})
}
