package ingest

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/Ethan-new/LoL-Wrapped/internal/constants"
	"github.com/Ethan-new/LoL-Wrapped/internal/domain"
	"github.com/Ethan-new/LoL-Wrapped/internal/riot"
)

// ErrLockBusy means another worker is already ingesting this player.
var ErrLockBusy = errors.New("ingestion already in progress for player")

// MatchSource is the slice of the upstream client the pipeline needs.
type MatchSource interface {
	MatchIDs(ctx context.Context, puuid, region string, start, count int) ([]string, error)
	Match(ctx context.Context, matchUID, region string) (*riot.MatchPayload, error)
}

type Lock interface {
	IsLocked(ctx context.Context, puuid string) (bool, error)
	Acquire(ctx context.Context, puuid string) error
	Release(ctx context.Context, puuid string) error
}

type ProgressStore interface {
	Set(ctx context.Context, puuid string, year int, update domain.ProgressSnapshot) error
	Clear(ctx context.Context, puuid string, year int) error
}

type PlayerStore interface {
	Get(ctx context.Context, puuid string) (*domain.Player, error)
	SetYearMatchIDs(ctx context.Context, puuid string, year int, matchUIDs []string) error
	SetRecapStatus(ctx context.Context, puuid string, year int, status, reason string) error
}

type MatchStore interface {
	GameStartAt(ctx context.Context, matchUID string) (*time.Time, error)
	Insert(ctx context.Context, match *domain.Match) error
}

// ComputeEnqueuer hands the finished year off to the aggregation stage.
type ComputeEnqueuer interface {
	EnqueueCompute(ctx context.Context, puuid string, year int, jobID string) error
}

// Pipeline walks a player's match history newest-first, stores every
// match that falls inside the year window, and hands the collected ids
// to the aggregation stage. One pipeline run holds the player's ingest
// lock for its whole duration.
type Pipeline struct {
	source     MatchSource
	lock       Lock
	progress   ProgressStore
	players    PlayerStore
	matches    MatchStore
	queue      ComputeEnqueuer
	fetchDelay time.Duration
	logger     zerolog.Logger
}

func New(source MatchSource, lock Lock, progress ProgressStore, players PlayerStore, matches MatchStore, queue ComputeEnqueuer, fetchDelay time.Duration, logger zerolog.Logger) *Pipeline {
	return &Pipeline{
		source:     source,
		lock:       lock,
		progress:   progress,
		players:    players,
		matches:    matches,
		queue:      queue,
		fetchDelay: fetchDelay,
		logger:     logger.With().Str("component", "ingest_pipeline").Logger(),
	}
}

// Run ingests one (player, year). Returns ErrLockBusy when another run
// owns the player's lock.
func (p *Pipeline) Run(ctx context.Context, puuid string, year int, jobID string) error {
	player, err := p.players.Get(ctx, puuid)
	if err != nil {
		return fmt.Errorf("failed to load player: %w", err)
	}

	locked, err := p.lock.IsLocked(ctx, puuid)
	if err != nil {
		return fmt.Errorf("failed to check ingest lock: %w", err)
	}
	if locked {
		p.logger.Info().Str("puuid", puuid).Int("year", year).Msg("another run holds the ingest lock")
		return ErrLockBusy
	}
	if err := p.lock.Acquire(ctx, puuid); err != nil {
		return fmt.Errorf("failed to acquire ingest lock: %w", err)
	}
	defer func() {
		if err := p.lock.Release(context.WithoutCancel(ctx), puuid); err != nil {
			p.logger.Warn().Err(err).Str("puuid", puuid).Msg("failed to release ingest lock")
		}
	}()

	if err := p.players.SetRecapStatus(ctx, puuid, year, domain.RecapStatusGenerating, ""); err != nil {
		return fmt.Errorf("failed to mark recap generating: %w", err)
	}
	if err := p.progress.Set(ctx, puuid, year, domain.ProgressSnapshot{Phase: domain.PhaseDownloading, JobID: jobID}); err != nil {
		p.logger.Warn().Err(err).Str("puuid", puuid).Int("year", year).Msg("failed to write initial progress")
	}

	matchUIDs, err := p.collectYear(ctx, player, year)
	if err != nil {
		p.logger.Error().Err(err).Str("puuid", puuid).Int("year", year).Msg("ingestion failed")
		p.failRun(ctx, puuid, year, err)
		return err
	}

	if err := p.players.SetYearMatchIDs(ctx, puuid, year, matchUIDs); err != nil {
		p.failRun(ctx, puuid, year, err)
		return fmt.Errorf("failed to store year match ids: %w", err)
	}

	if err := p.progress.Set(ctx, puuid, year, domain.ProgressSnapshot{Phase: domain.PhaseComputing}); err != nil {
		p.logger.Warn().Err(err).Str("puuid", puuid).Int("year", year).Msg("failed to update progress phase")
	}
	if err := p.queue.EnqueueCompute(ctx, puuid, year, jobID); err != nil {
		p.failRun(ctx, puuid, year, err)
		return fmt.Errorf("failed to enqueue aggregation: %w", err)
	}

	p.logger.Info().Str("puuid", puuid).Int("year", year).Int("matches", len(matchUIDs)).
		Msg("ingestion complete, aggregation enqueued")
	return nil
}

// collectYear pages through the match-id index newest-first and returns
// the ids whose start time falls inside [Jan 1 year, Jan 1 year+1).
func (p *Pipeline) collectYear(ctx context.Context, player *domain.Player, year int) ([]string, error) {
	startTime := time.Date(year, time.January, 1, 0, 0, 0, 0, time.UTC)
	endTime := time.Date(year+1, time.January, 1, 0, 0, 0, 0, time.UTC)

	var matchUIDs []string
	startIdx := 0
	processed := 0
	stop := false

	for !stop {
		ids, err := p.source.MatchIDs(ctx, player.PUUID, player.Region, startIdx, constants.MatchIDPageSize)
		if err != nil {
			return nil, fmt.Errorf("failed to fetch match ids: %w", err)
		}
		if len(ids) == 0 {
			break
		}

		for _, matchUID := range ids {
			gameStart, err := p.gameStartFor(ctx, matchUID, player.Region, year)
			if err != nil {
				return nil, err
			}
			processed++
			if gameStart == nil {
				continue
			}

			if !gameStart.Before(endTime) {
				// newer than the window, keep walking back
				p.reportProgress(ctx, player.PUUID, year, len(matchUIDs), processed)
				continue
			}
			if gameStart.Before(startTime) {
				stop = true
				break
			}

			matchUIDs = append(matchUIDs, matchUID)
			p.reportProgress(ctx, player.PUUID, year, len(matchUIDs), processed)
		}

		startIdx += len(ids)
		if len(ids) < constants.MatchIDPageSize {
			break
		}
	}

	return matchUIDs, nil
}

// gameStartFor answers from the matches table when the record already
// exists; otherwise it fetches and stores the full match. A payload
// with no usable start timestamp is skipped (nil, nil).
func (p *Pipeline) gameStartFor(ctx context.Context, matchUID, region string, year int) (*time.Time, error) {
	stored, err := p.matches.GameStartAt(ctx, matchUID)
	if err != nil {
		return nil, fmt.Errorf("failed to look up match %s: %w", matchUID, err)
	}
	if stored != nil {
		return stored, nil
	}

	payload, err := p.source.Match(ctx, matchUID, region)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch match %s: %w", matchUID, err)
	}
	if err := p.pause(ctx); err != nil {
		return nil, err
	}
	if payload.GameStartAt.IsZero() {
		p.logger.Warn().Str("matchUid", matchUID).Msg("match payload has no start timestamp")
		return nil, nil
	}

	match := &domain.Match{
		MatchUID:    matchUID,
		Region:      region,
		GameStartAt: payload.GameStartAt,
		Year:        year,
		RawJSON:     payload.Raw,
	}
	if err := p.matches.Insert(ctx, match); err != nil {
		return nil, fmt.Errorf("failed to store match %s: %w", matchUID, err)
	}

	gameStart := payload.GameStartAt
	return &gameStart, nil
}

// reportProgress writes every record for the first few, then every
// fifth, so the frontend sees movement without hammering the store.
func (p *Pipeline) reportProgress(ctx context.Context, puuid string, year, downloaded, processed int) {
	if processed > constants.ProgressEveryRecordUpTo && processed%constants.ProgressInterval != 0 {
		return
	}
	snapshot := domain.ProgressSnapshot{
		Phase:      domain.PhaseDownloading,
		Downloaded: &downloaded,
		Processed:  &processed,
	}
	if err := p.progress.Set(ctx, puuid, year, snapshot); err != nil {
		p.logger.Warn().Err(err).Str("puuid", puuid).Int("year", year).Msg("failed to write progress")
	}
}

func (p *Pipeline) failRun(ctx context.Context, puuid string, year int, cause error) {
	ctx = context.WithoutCancel(ctx)
	if err := p.players.SetRecapStatus(ctx, puuid, year, domain.RecapStatusFailed, cause.Error()); err != nil {
		p.logger.Error().Err(err).Str("puuid", puuid).Int("year", year).Msg("failed to mark recap failed")
	}
	if err := p.progress.Clear(ctx, puuid, year); err != nil {
		p.logger.Warn().Err(err).Str("puuid", puuid).Int("year", year).Msg("failed to clear progress")
	}
}

func (p *Pipeline) pause(ctx context.Context) error {
	if p.fetchDelay <= 0 {
		return nil
	}
	timer := time.NewTimer(p.fetchDelay)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
