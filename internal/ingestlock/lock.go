// Package ingestlock provides a per-player Redis lock so at most one
// ingestion run is active for a player at a time, across workers.
//
//	Key:   player:<puuid>:ingesting
//	Value: unix timestamp of acquisition
//	TTL:   safety net if a worker crashes mid-run
package ingestlock

import (
	"context"
	"fmt"
	"time"

	"github.com/Ethan-new/LoL-Wrapped/internal/constants"

	"github.com/redis/go-redis/v9"
)

type Lock struct {
	client *redis.Client
}

func New(client *redis.Client) *Lock {
	return &Lock{client: client}
}

func key(puuid string) string {
	return "player:" + puuid + ":ingesting"
}

// IsLocked reports whether an ingestion run holds the lock for puuid.
func (l *Lock) IsLocked(ctx context.Context, puuid string) (bool, error) {
	n, err := l.client.Exists(ctx, key(puuid)).Result()
	if err != nil {
		return false, fmt.Errorf("ingest lock exists: %w", err)
	}
	return n > 0, nil
}

// Acquire sets the lock marker unconditionally. Callers must check
// IsLocked first; a loser of the check-then-acquire race wastes work but
// cannot corrupt state because ingestion is idempotent.
func (l *Lock) Acquire(ctx context.Context, puuid string) error {
	if err := l.client.Set(ctx, key(puuid), time.Now().Unix(), constants.IngestLockTTL).Err(); err != nil {
		return fmt.Errorf("ingest lock acquire: %w", err)
	}
	return nil
}

// Release removes the lock marker. Releasing an absent lock is a no-op.
func (l *Lock) Release(ctx context.Context, puuid string) error {
	if err := l.client.Del(ctx, key(puuid)).Err(); err != nil {
		return fmt.Errorf("ingest lock release: %w", err)
	}
	return nil
}
