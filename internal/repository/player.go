package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/Ethan-new/LoL-Wrapped/internal/constants"
	"github.com/Ethan-new/LoL-Wrapped/internal/domain"

	"github.com/bytedance/sonic"
	"github.com/rs/zerolog"
)

type PlayerRepository struct {
	db     *sql.DB
	logger zerolog.Logger
}

func NewPlayerRepository(sqlDB *sql.DB, logger zerolog.Logger) *PlayerRepository {
	return &PlayerRepository{db: sqlDB, logger: logger}
}

const playerColumns = `puuid, riot_id, region, summoner_id, summoner_level, profile_icon_id,
	revision_date, rank_entries, year_match_ids, recap_statuses, recap_failure_reasons,
	last_synced_at, created_at, updated_at`

func (r *PlayerRepository) Get(ctx context.Context, puuid string) (*domain.Player, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+playerColumns+` FROM players WHERE puuid = ?`, puuid)
	return scanPlayer(row)
}

func (r *PlayerRepository) GetByRiotID(ctx context.Context, riotID, region string) (*domain.Player, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+playerColumns+` FROM players WHERE riot_id = ? AND region = ?`, riotID, region)
	return scanPlayer(row)
}

func (r *PlayerRepository) Upsert(ctx context.Context, player *domain.Player) error {
	rankEntries, err := sonic.Marshal(orEmptySlice(player.RankEntries))
	if err != nil {
		return fmt.Errorf("failed to marshal rank entries: %w", err)
	}

	now := time.Now().UTC()
	var lastSynced any
	if player.LastSyncedAt != nil {
		lastSynced = *player.LastSyncedAt
	}

	_, err = r.db.ExecContext(ctx, `
		INSERT INTO players (puuid, riot_id, region, summoner_id, summoner_level, profile_icon_id,
			revision_date, rank_entries, last_synced_at, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (puuid) DO UPDATE SET
			riot_id = excluded.riot_id,
			region = excluded.region,
			summoner_id = excluded.summoner_id,
			summoner_level = excluded.summoner_level,
			profile_icon_id = excluded.profile_icon_id,
			revision_date = excluded.revision_date,
			rank_entries = excluded.rank_entries,
			last_synced_at = excluded.last_synced_at,
			updated_at = excluded.updated_at`,
		player.PUUID, player.RiotID, player.Region, player.SummonerID, player.SummonerLevel,
		player.ProfileIconID, player.RevisionDate, string(rankEntries), lastSynced, now, now)
	if err != nil {
		return fmt.Errorf("failed to upsert player %s: %w", player.PUUID, err)
	}
	return nil
}

// SetYearMatchIDs replaces the stored match-id list for one year
// wholesale. Other years' lists are untouched.
func (r *PlayerRepository) SetYearMatchIDs(ctx context.Context, puuid string, year int, matchUIDs []string) error {
	return r.mergeJSONColumn(ctx, puuid, "year_match_ids", func(raw map[string]sonicRaw) error {
		ids, err := sonic.Marshal(orEmptySlice(matchUIDs))
		if err != nil {
			return err
		}
		raw[strconv.Itoa(year)] = ids
		return nil
	})
}

// SetRecapStatus records the per-year status, and when failing, a
// truncated failure reason for the polling frontend.
func (r *PlayerRepository) SetRecapStatus(ctx context.Context, puuid string, year int, status, reason string) error {
	yearKey := strconv.Itoa(year)

	if err := r.mergeJSONColumn(ctx, puuid, "recap_statuses", func(raw map[string]sonicRaw) error {
		v, err := sonic.Marshal(status)
		if err != nil {
			return err
		}
		raw[yearKey] = v
		return nil
	}); err != nil {
		return err
	}

	if status != domain.RecapStatusFailed {
		return nil
	}
	return r.mergeJSONColumn(ctx, puuid, "recap_failure_reasons", func(raw map[string]sonicRaw) error {
		v, err := sonic.Marshal(truncate(reason, constants.FailureReasonMaxLen))
		if err != nil {
			return err
		}
		raw[yearKey] = v
		return nil
	})
}

func (r *PlayerRepository) RecapStatus(ctx context.Context, puuid string, year int) (status, reason string, err error) {
	player, err := r.Get(ctx, puuid)
	if err != nil {
		return "", "", err
	}
	yearKey := strconv.Itoa(year)
	return player.RecapStatuses[yearKey], player.RecapFailureReasons[yearKey], nil
}

func (r *PlayerRepository) SetLastSyncedAt(ctx context.Context, puuid string, syncedAt time.Time) error {
	_, err := r.db.ExecContext(ctx,
		`UPDATE players SET last_synced_at = ?, updated_at = ? WHERE puuid = ?`,
		syncedAt, time.Now().UTC(), puuid)
	if err != nil {
		return fmt.Errorf("failed to set last synced at for %s: %w", puuid, err)
	}
	return nil
}

type sonicRaw = json.RawMessage

// mergeJSONColumn applies a partial-field merge to one of the player's
// JSON map columns inside a transaction, so concurrent year runs cannot
// clobber each other's keys.
func (r *PlayerRepository) mergeJSONColumn(ctx context.Context, puuid, column string, mutate func(map[string]sonicRaw) error) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	var raw string
	// column names come from call sites, never user input
	if err := tx.QueryRowContext(ctx,
		fmt.Sprintf(`SELECT %s FROM players WHERE puuid = ?`, column), puuid).Scan(&raw); err != nil {
		return fmt.Errorf("failed to read players.%s for %s: %w", column, puuid, err)
	}

	entries := map[string]sonicRaw{}
	if raw != "" {
		if err := sonic.UnmarshalString(raw, &entries); err != nil {
			r.logger.Warn().Err(err).Str("column", column).Str("puuid", puuid).Msg("resetting unparsable JSON column")
			entries = map[string]sonicRaw{}
		}
	}
	if err := mutate(entries); err != nil {
		return fmt.Errorf("failed to update players.%s: %w", column, err)
	}

	merged, err := sonic.Marshal(entries)
	if err != nil {
		return fmt.Errorf("failed to marshal players.%s: %w", column, err)
	}
	if _, err := tx.ExecContext(ctx,
		fmt.Sprintf(`UPDATE players SET %s = ?, updated_at = ? WHERE puuid = ?`, column),
		string(merged), time.Now().UTC(), puuid); err != nil {
		return fmt.Errorf("failed to write players.%s for %s: %w", column, puuid, err)
	}

	return tx.Commit()
}

func scanPlayer(row *sql.Row) (*domain.Player, error) {
	var (
		p           domain.Player
		rankEntries string
		yearMatches string
		statuses    string
		reasons     string
		lastSynced  sql.NullTime
	)
	err := row.Scan(&p.PUUID, &p.RiotID, &p.Region, &p.SummonerID, &p.SummonerLevel,
		&p.ProfileIconID, &p.RevisionDate, &rankEntries, &yearMatches, &statuses, &reasons,
		&lastSynced, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return nil, err
	}

	if lastSynced.Valid {
		t := lastSynced.Time
		p.LastSyncedAt = &t
	}
	if err := sonic.UnmarshalString(rankEntries, &p.RankEntries); err != nil {
		p.RankEntries = nil
	}
	if err := sonic.UnmarshalString(yearMatches, &p.YearMatchIDs); err != nil || p.YearMatchIDs == nil {
		p.YearMatchIDs = map[string][]string{}
	}
	if err := sonic.UnmarshalString(statuses, &p.RecapStatuses); err != nil || p.RecapStatuses == nil {
		p.RecapStatuses = map[string]string{}
	}
	if err := sonic.UnmarshalString(reasons, &p.RecapFailureReasons); err != nil || p.RecapFailureReasons == nil {
		p.RecapFailureReasons = map[string]string{}
	}
	return &p, nil
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max]
}

func orEmptySlice[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}
