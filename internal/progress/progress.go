// Package progress stores ephemeral per-(player, year) ingestion state
// in Redis for the status-polling frontend: current phase, download and
// processed counts, and the job id for queue position lookup.
package progress

import (
	"context"
	"fmt"

	"github.com/Ethan-new/LoL-Wrapped/internal/constants"
	"github.com/Ethan-new/LoL-Wrapped/internal/domain"

	"github.com/bytedance/sonic"
	"github.com/redis/go-redis/v9"
)

type Store struct {
	client *redis.Client
}

func New(client *redis.Client) *Store {
	return &Store{client: client}
}

func key(puuid string, year int) string {
	return fmt.Sprintf("ingest_progress:%s:%d", puuid, year)
}

// Set merges the non-zero fields of update into the stored snapshot and
// refreshes the TTL. The TTL is the safety net against orphaned state:
// a crashed worker's snapshot disappears on its own.
func (s *Store) Set(ctx context.Context, puuid string, year int, update domain.ProgressSnapshot) error {
	current, err := s.Get(ctx, puuid, year)
	if err != nil {
		return err
	}
	if current == nil {
		current = &domain.ProgressSnapshot{}
	}

	if update.Phase != "" {
		current.Phase = update.Phase
	}
	if update.Downloaded != nil {
		current.Downloaded = update.Downloaded
	}
	if update.Processed != nil {
		current.Processed = update.Processed
	}
	if update.JobID != "" {
		current.JobID = update.JobID
	}

	raw, err := sonic.Marshal(current)
	if err != nil {
		return fmt.Errorf("marshal progress snapshot: %w", err)
	}
	if err := s.client.Set(ctx, key(puuid, year), raw, constants.IngestProgressTTL).Err(); err != nil {
		return fmt.Errorf("set progress snapshot: %w", err)
	}
	return nil
}

// Get returns the snapshot, or nil when absent or unparsable.
func (s *Store) Get(ctx context.Context, puuid string, year int) (*domain.ProgressSnapshot, error) {
	raw, err := s.client.Get(ctx, key(puuid, year)).Result()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get progress snapshot: %w", err)
	}

	var snap domain.ProgressSnapshot
	if err := sonic.Unmarshal([]byte(raw), &snap); err != nil {
		return nil, nil
	}
	return &snap, nil
}

// Clear deletes the snapshot. Clearing an absent snapshot is a no-op.
func (s *Store) Clear(ctx context.Context, puuid string, year int) error {
	if err := s.client.Del(ctx, key(puuid, year)).Err(); err != nil {
		return fmt.Errorf("clear progress snapshot: %w", err)
	}
	return nil
}
