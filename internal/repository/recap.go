package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/Ethan-new/LoL-Wrapped/internal/domain"

	"github.com/bytedance/sonic"
	"github.com/rs/zerolog"
)

type RecapRepository struct {
	db     *sql.DB
	logger zerolog.Logger
}

func NewRecapRepository(sqlDB *sql.DB, logger zerolog.Logger) *RecapRepository {
	return &RecapRepository{db: sqlDB, logger: logger}
}

// Upsert replaces the full analytics bundle for (player, year). All
// fields are overwritten; re-running aggregation over the same matches
// converges to the same row.
func (r *RecapRepository) Upsert(ctx context.Context, stat *domain.RecapYearStat) error {
	cols, err := marshalRecapColumns(stat)
	if err != nil {
		return err
	}

	now := time.Now().UTC()
	_, err = r.db.ExecContext(ctx, `
		INSERT INTO recap_year_stats (player_puuid, year, total_pings, ping_breakdown,
			total_game_seconds, total_gold_spent, total_kills, total_deaths, total_assists,
			fav_items, our_team_bans, enemy_team_bans, most_played_with, most_beat_us,
			extra_stats, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (player_puuid, year) DO UPDATE SET
			total_pings = excluded.total_pings,
			ping_breakdown = excluded.ping_breakdown,
			total_game_seconds = excluded.total_game_seconds,
			total_gold_spent = excluded.total_gold_spent,
			total_kills = excluded.total_kills,
			total_deaths = excluded.total_deaths,
			total_assists = excluded.total_assists,
			fav_items = excluded.fav_items,
			our_team_bans = excluded.our_team_bans,
			enemy_team_bans = excluded.enemy_team_bans,
			most_played_with = excluded.most_played_with,
			most_beat_us = excluded.most_beat_us,
			extra_stats = excluded.extra_stats,
			updated_at = excluded.updated_at`,
		stat.PlayerPUUID, stat.Year, stat.TotalPings, cols.pingBreakdown,
		stat.TotalGameSeconds, stat.TotalGoldSpent, stat.TotalKills, stat.TotalDeaths,
		stat.TotalAssists, cols.favItems, cols.ourBans, cols.enemyBans,
		cols.mostPlayedWith, cols.mostBeatUs, cols.extraStats, now, now)
	if err != nil {
		return fmt.Errorf("failed to upsert recap for %s/%d: %w", stat.PlayerPUUID, stat.Year, err)
	}

	r.logger.Info().
		Str("puuid", stat.PlayerPUUID).
		Int("year", stat.Year).
		Int("teammates", len(stat.MostPlayedWith)).
		Int("enemies", len(stat.MostBeatUs)).
		Msg("recap year stat upserted")
	return nil
}

func (r *RecapRepository) Get(ctx context.Context, puuid string, year int) (*domain.RecapYearStat, error) {
	var (
		stat          domain.RecapYearStat
		pingBreakdown string
		favItems      string
		ourBans       string
		enemyBans     string
		playedWith    string
		beatUs        string
		extraStats    string
	)
	err := r.db.QueryRowContext(ctx, `
		SELECT player_puuid, year, total_pings, ping_breakdown, total_game_seconds,
			total_gold_spent, total_kills, total_deaths, total_assists, fav_items,
			our_team_bans, enemy_team_bans, most_played_with, most_beat_us, extra_stats,
			created_at, updated_at
		FROM recap_year_stats WHERE player_puuid = ? AND year = ?`, puuid, year).
		Scan(&stat.PlayerPUUID, &stat.Year, &stat.TotalPings, &pingBreakdown,
			&stat.TotalGameSeconds, &stat.TotalGoldSpent, &stat.TotalKills, &stat.TotalDeaths,
			&stat.TotalAssists, &favItems, &ourBans, &enemyBans, &playedWith, &beatUs,
			&extraStats, &stat.CreatedAt, &stat.UpdatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load recap for %s/%d: %w", puuid, year, err)
	}

	for _, col := range []struct {
		raw    string
		target any
	}{
		{pingBreakdown, &stat.PingBreakdown},
		{favItems, &stat.FavItems},
		{ourBans, &stat.OurTeamBans},
		{enemyBans, &stat.EnemyTeamBans},
		{playedWith, &stat.MostPlayedWith},
		{beatUs, &stat.MostBeatUs},
		{extraStats, &stat.ExtraStats},
	} {
		if err := sonic.UnmarshalString(col.raw, col.target); err != nil {
			return nil, fmt.Errorf("failed to decode recap column for %s/%d: %w", puuid, year, err)
		}
	}
	return &stat, nil
}

// Exists reports whether a finished recap is stored for (player, year).
func (r *RecapRepository) Exists(ctx context.Context, puuid string, year int) (bool, error) {
	var n int
	err := r.db.QueryRowContext(ctx,
		`SELECT COUNT(1) FROM recap_year_stats WHERE player_puuid = ? AND year = ?`, puuid, year).Scan(&n)
	if err != nil {
		return false, fmt.Errorf("failed to count recaps for %s/%d: %w", puuid, year, err)
	}
	return n > 0, nil
}

type recapColumns struct {
	pingBreakdown  string
	favItems       string
	ourBans        string
	enemyBans      string
	mostPlayedWith string
	mostBeatUs     string
	extraStats     string
}

func marshalRecapColumns(stat *domain.RecapYearStat) (*recapColumns, error) {
	cols := &recapColumns{}
	for _, field := range []struct {
		name   string
		value  any
		target *string
	}{
		{"ping_breakdown", orEmptyMap(stat.PingBreakdown), &cols.pingBreakdown},
		{"fav_items", orEmptySlice(stat.FavItems), &cols.favItems},
		{"our_team_bans", orEmptySlice(stat.OurTeamBans), &cols.ourBans},
		{"enemy_team_bans", orEmptySlice(stat.EnemyTeamBans), &cols.enemyBans},
		{"most_played_with", orEmptySlice(stat.MostPlayedWith), &cols.mostPlayedWith},
		{"most_beat_us", orEmptySlice(stat.MostBeatUs), &cols.mostBeatUs},
		{"extra_stats", stat.ExtraStats, &cols.extraStats},
	} {
		raw, err := sonic.Marshal(field.value)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal recap %s: %w", field.name, err)
		}
		*field.target = string(raw)
	}
	return cols, nil
}

func orEmptyMap[K comparable, V any](m map[K]V) map[K]V {
	if m == nil {
		return map[K]V{}
	}
	return m
}
