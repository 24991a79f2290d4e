package service

import (
	"context"
	"database/sql"
	"errors"

	"github.com/rs/zerolog"

	"github.com/Ethan-new/LoL-Wrapped/internal/constants"
	"github.com/Ethan-new/LoL-Wrapped/internal/domain"
	"github.com/Ethan-new/LoL-Wrapped/internal/repository"
	"github.com/Ethan-new/LoL-Wrapped/internal/riot"
)

// PlayerResolver turns a puuid into a riot id. It answers from the
// players table when possible and falls back to the account API,
// persisting what it learns so repeat lookups stay local.
type PlayerResolver struct {
	client *riot.Client
	repo   *repository.PlayerRepository
	logger zerolog.Logger
}

func NewPlayerResolver(client *riot.Client, repo *repository.PlayerRepository, logger zerolog.Logger) *PlayerResolver {
	return &PlayerResolver{client: client, repo: repo, logger: logger}
}

// Resolve returns "" when the identity cannot be determined; name
// resolution is cosmetic and never fails the caller.
func (r *PlayerResolver) Resolve(ctx context.Context, puuid, region string) string {
	if puuid == "" {
		return ""
	}

	player, err := r.repo.Get(ctx, puuid)
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		r.logger.Warn().Err(err).Str("puuid", puuid).Msg("player lookup failed during resolve")
		return ""
	}
	if player != nil && player.RiotID != "" {
		return player.RiotID
	}

	apiCtx, cancel := context.WithTimeout(ctx, constants.ExternalAPITimeout)
	defer cancel()

	account, err := r.client.AccountByPUUID(apiCtx, puuid, region)
	if err != nil {
		r.logger.Debug().Err(err).Str("puuid", puuid).Str("region", region).Msg("account lookup failed during resolve")
		return ""
	}
	riotID := account.RiotID()

	stored := &domain.Player{PUUID: puuid, RiotID: riotID, Region: region}
	if player != nil {
		stored = player
		stored.RiotID = riotID
		stored.Region = region
	}
	if err := r.repo.Upsert(ctx, stored); err != nil {
		r.logger.Warn().Err(err).Str("puuid", puuid).Msg("failed to persist resolved riot id")
	}

	return riotID
}
