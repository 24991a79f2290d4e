package recap

import (
	"context"
	"fmt"
	"strconv"

	"github.com/rs/zerolog"

	"github.com/Ethan-new/LoL-Wrapped/internal/domain"
)

// PlayerStore is the slice of the player repository the engine needs.
type PlayerStore interface {
	Get(ctx context.Context, puuid string) (*domain.Player, error)
	SetRecapStatus(ctx context.Context, puuid string, year int, status, reason string) error
}

type MatchStore interface {
	GetByUIDs(ctx context.Context, matchUIDs []string) (map[string]*domain.Match, error)
}

type StatStore interface {
	Upsert(ctx context.Context, stat *domain.RecapYearStat) error
}

type ProgressClearer interface {
	Clear(ctx context.Context, puuid string, year int) error
}

// NameResolver maps a puuid to a riot id, returning "" when the name
// cannot be determined.
type NameResolver interface {
	Resolve(ctx context.Context, puuid, region string) string
}

// Engine computes the yearly recap for one player from the raw match
// records the ingestion stage stored.
type Engine struct {
	players  PlayerStore
	matches  MatchStore
	stats    StatStore
	progress ProgressClearer
	resolver NameResolver
	logger   zerolog.Logger
}

func NewEngine(players PlayerStore, matches MatchStore, stats StatStore, progress ProgressClearer, resolver NameResolver, logger zerolog.Logger) *Engine {
	return &Engine{
		players:  players,
		matches:  matches,
		stats:    stats,
		progress: progress,
		resolver: resolver,
		logger:   logger.With().Str("component", "recap_engine").Logger(),
	}
}

// Run computes and stores the recap, marks the year's status, and
// clears the transient progress key no matter how the run ends.
func (e *Engine) Run(ctx context.Context, puuid string, year int) error {
	defer func() {
		if err := e.progress.Clear(context.WithoutCancel(ctx), puuid, year); err != nil {
			e.logger.Warn().Err(err).Str("puuid", puuid).Int("year", year).Msg("failed to clear ingest progress")
		}
	}()

	if err := e.compute(ctx, puuid, year); err != nil {
		e.logger.Error().Err(err).Str("puuid", puuid).Int("year", year).Msg("recap computation failed")
		if markErr := e.players.SetRecapStatus(context.WithoutCancel(ctx), puuid, year, domain.RecapStatusFailed, err.Error()); markErr != nil {
			e.logger.Error().Err(markErr).Str("puuid", puuid).Int("year", year).Msg("failed to mark recap failed")
		}
		return err
	}

	if err := e.players.SetRecapStatus(ctx, puuid, year, domain.RecapStatusReady, ""); err != nil {
		return fmt.Errorf("failed to mark recap ready: %w", err)
	}
	return nil
}

func (e *Engine) compute(ctx context.Context, puuid string, year int) error {
	player, err := e.players.Get(ctx, puuid)
	if err != nil {
		return fmt.Errorf("failed to load player: %w", err)
	}

	matchUIDs := player.YearMatchIDs[strconv.Itoa(year)]
	matches, err := e.matches.GetByUIDs(ctx, matchUIDs)
	if err != nil {
		return fmt.Errorf("failed to load matches: %w", err)
	}

	acc := newAccumulator()
	folded, missing := 0, 0
	for _, uid := range matchUIDs {
		match := matches[uid]
		if match == nil {
			missing++
			continue
		}
		counted, err := acc.addMatch(puuid, match)
		if err != nil {
			return err
		}
		if counted {
			folded++
		}
	}
	if missing > 0 {
		e.logger.Warn().Str("puuid", puuid).Int("year", year).Int("missing", missing).
			Msg("some indexed matches have no stored record")
	}

	region := player.Region
	if region == "" {
		region = "americas"
	}
	stat := acc.finalize(puuid, year, func(teammatePUUID string) string {
		return e.resolver.Resolve(ctx, teammatePUUID, region)
	})

	if err := e.stats.Upsert(ctx, stat); err != nil {
		return fmt.Errorf("failed to store recap: %w", err)
	}

	e.logger.Info().
		Str("puuid", puuid).
		Int("year", year).
		Int("matches", folded).
		Int("teammates", len(stat.MostPlayedWith)).
		Int("enemies", len(stat.MostBeatUs)).
		Msg("recap stored")
	return nil
}
