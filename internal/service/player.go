package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/Ethan-new/LoL-Wrapped/internal/constants"
	"github.com/Ethan-new/LoL-Wrapped/internal/domain"
	"github.com/Ethan-new/LoL-Wrapped/internal/repository"
	"github.com/Ethan-new/LoL-Wrapped/internal/riot"
)

// PlayerService registers players by riot id and keeps their summoner
// profile fresh.
type PlayerService struct {
	client *riot.Client
	repo   *repository.PlayerRepository
	logger zerolog.Logger
}

func NewPlayerService(client *riot.Client, repo *repository.PlayerRepository, logger zerolog.Logger) *PlayerService {
	return &PlayerService{client: client, repo: repo, logger: logger}
}

// Register resolves a "GameName#TagLine" identity, stores the player,
// and pulls the summoner profile. Returns the stored player.
func (s *PlayerService) Register(ctx context.Context, gameName, tagLine, region string) (*domain.Player, error) {
	s.logger.Info().Str("gameName", gameName).Str("tagLine", tagLine).Str("region", region).Msg("registering player")

	apiCtx, cancel := context.WithTimeout(ctx, constants.ExternalAPITimeout)
	defer cancel()

	account, err := s.client.AccountByRiotID(apiCtx, gameName, tagLine, region)
	if err != nil {
		s.logger.Error().Err(err).Str("gameName", gameName).Str("tagLine", tagLine).Msg("failed to fetch account")
		return nil, fmt.Errorf("failed to fetch account: %w", err)
	}

	player, err := s.repo.Get(ctx, account.PUUID)
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return nil, err
	}
	if player == nil {
		player = &domain.Player{PUUID: account.PUUID}
	}
	player.RiotID = account.RiotID()
	player.Region = region

	if err := s.repo.Upsert(ctx, player); err != nil {
		s.logger.Error().Err(err).Str("puuid", player.PUUID).Msg("failed to upsert player")
		return nil, fmt.Errorf("failed to upsert player: %w", err)
	}

	return s.RefreshProfile(ctx, player.PUUID, region)
}

// RefreshProfile pulls the summoner profile and ranked entries for a
// stored player. Profile data is cosmetic; a missing summoner record
// leaves the player as-is rather than failing.
func (s *PlayerService) RefreshProfile(ctx context.Context, puuid, region string) (*domain.Player, error) {
	player, err := s.repo.Get(ctx, puuid)
	if err != nil {
		return nil, fmt.Errorf("failed to load player: %w", err)
	}

	apiCtx, cancel := context.WithTimeout(ctx, constants.ExternalAPITimeout)
	defer cancel()

	result, err := s.client.SummonerByPUUID(apiCtx, puuid, region)
	if err != nil {
		if errors.Is(err, riot.ErrNotFound) {
			s.logger.Warn().Str("puuid", puuid).Str("region", region).Msg("summoner not found on any platform")
			return player, nil
		}
		s.logger.Error().Err(err).Str("puuid", puuid).Msg("failed to fetch summoner")
		return nil, fmt.Errorf("failed to fetch summoner: %w", err)
	}

	player.SummonerID = result.Summoner.ID
	player.SummonerLevel = result.Summoner.SummonerLevel
	player.ProfileIconID = result.Summoner.ProfileIconID
	player.RevisionDate = result.Summoner.RevisionDate

	entries, err := s.client.LeagueEntriesByPUUID(apiCtx, puuid, result.Platform)
	if err != nil {
		s.logger.Warn().Err(err).Str("puuid", puuid).Str("platform", result.Platform).Msg("failed to fetch league entries")
	} else {
		player.RankEntries = entries
	}

	if err := s.repo.Upsert(ctx, player); err != nil {
		s.logger.Error().Err(err).Str("puuid", puuid).Msg("failed to upsert player")
		return nil, fmt.Errorf("failed to upsert player: %w", err)
	}

	g := new(errgroup.Group)
	g.Go(func() error {
		if err := s.repo.SetLastSyncedAt(context.WithoutCancel(ctx), puuid, time.Now().UTC()); err != nil {
			s.logger.Warn().Err(err).Str("puuid", puuid).Msg("failed to set last synced at")
			return err
		}
		return nil
	})
	go func() {
		if err := g.Wait(); err != nil {
			s.logger.Error().Err(err).Msg("background task failed")
		}
	}()

	s.logger.Info().Str("puuid", puuid).Str("platform", result.Platform).Msg("player profile refreshed")
	return player, nil
}
