package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/Ethan-new/LoL-Wrapped/internal/domain"

	"github.com/rs/zerolog"
)

// sqlite caps bound variables per statement; keep IN lists well under it.
const matchLookupChunk = 500

type MatchRepository struct {
	db     *sql.DB
	logger zerolog.Logger
}

func NewMatchRepository(sqlDB *sql.DB, logger zerolog.Logger) *MatchRepository {
	return &MatchRepository{db: sqlDB, logger: logger}
}

// GameStartAt returns the stored start timestamp for a match, or nil
// when the match has never been fetched. This is the fetch-once check:
// a non-nil result means the pipeline can skip the upstream call.
func (r *MatchRepository) GameStartAt(ctx context.Context, matchUID string) (*time.Time, error) {
	var startedAt time.Time
	err := r.db.QueryRowContext(ctx,
		`SELECT game_start_at FROM matches WHERE match_uid = ?`, matchUID).Scan(&startedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to look up match %s: %w", matchUID, err)
	}
	return &startedAt, nil
}

// Insert persists a fetched match. A duplicate insert is a no-op, so a
// racing second ingestion run cannot fail here.
func (r *MatchRepository) Insert(ctx context.Context, match *domain.Match) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT OR IGNORE INTO matches (match_uid, region, game_start_at, year, raw_json, created_at)
		VALUES (?, ?, ?, ?, ?, ?)`,
		match.MatchUID, match.Region, match.GameStartAt, match.Year, string(match.RawJSON), time.Now().UTC())
	if err != nil {
		return fmt.Errorf("failed to insert match %s: %w", match.MatchUID, err)
	}
	return nil
}

// GetByUIDs loads the given matches keyed by uid. Missing uids are
// simply absent from the result.
func (r *MatchRepository) GetByUIDs(ctx context.Context, matchUIDs []string) (map[string]*domain.Match, error) {
	result := make(map[string]*domain.Match, len(matchUIDs))

	for start := 0; start < len(matchUIDs); start += matchLookupChunk {
		end := start + matchLookupChunk
		if end > len(matchUIDs) {
			end = len(matchUIDs)
		}
		chunk := matchUIDs[start:end]

		placeholders := strings.TrimSuffix(strings.Repeat("?,", len(chunk)), ",")
		args := make([]any, len(chunk))
		for i, uid := range chunk {
			args[i] = uid
		}

		rows, err := r.db.QueryContext(ctx, fmt.Sprintf(
			`SELECT match_uid, region, game_start_at, year, raw_json, created_at
			 FROM matches WHERE match_uid IN (%s)`, placeholders), args...)
		if err != nil {
			return nil, fmt.Errorf("failed to load matches: %w", err)
		}

		for rows.Next() {
			var (
				m       domain.Match
				rawJSON string
			)
			if err := rows.Scan(&m.MatchUID, &m.Region, &m.GameStartAt, &m.Year, &rawJSON, &m.CreatedAt); err != nil {
				rows.Close()
				return nil, fmt.Errorf("failed to scan match row: %w", err)
			}
			m.RawJSON = []byte(rawJSON)
			result[m.MatchUID] = &m
		}
		if err := rows.Err(); err != nil {
			rows.Close()
			return nil, fmt.Errorf("failed to iterate match rows: %w", err)
		}
		rows.Close()
	}

	return result, nil
}
