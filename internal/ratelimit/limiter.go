// Package ratelimit enforces the upstream Riot API quotas globally via
// Redis. Acquire MUST be called before every Riot HTTP request.
//
// Two quotas apply at once:
//   - burst: BurstLimit requests per 1-second wall-clock bucket
//     (INCR on a per-second key)
//   - sustained: SustainedLimit requests per rolling 120-second window
//     (sorted set of request timestamps)
//
// The limiter is shared across all worker processes; the upstream quota
// is server-wide, not per subject.
package ratelimit

import (
	"context"
	"fmt"
	"time"

	"github.com/Ethan-new/LoL-Wrapped/internal/constants"

	gonanoid "github.com/matoous/go-nanoid/v2"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

const (
	burstKeyPrefix = "riot:rl:1s:"
	sustainedKey   = "riot:rl:120s"
)

type Limiter struct {
	client         *redis.Client
	burstLimit     int
	sustainedLimit int
	logger         zerolog.Logger
}

func New(client *redis.Client, burstLimit, sustainedLimit int, logger zerolog.Logger) *Limiter {
	return &Limiter{
		client:         client,
		burstLimit:     burstLimit,
		sustainedLimit: sustainedLimit,
		logger:         logger,
	}
}

// Acquire blocks until both quotas have a free slot, then reserves one
// slot in each. A burst rejection waits for the next second boundary and
// re-evaluates both quotas from scratch. There is no fairness ordering
// between waiters.
//
// Cancellation: the context is honored while waiting; reserved slots
// self-heal via key expiry, so an abandoned call needs no cleanup.
func (l *Limiter) Acquire(ctx context.Context) error {
	for {
		ok, err := l.tryBurst(ctx)
		if err != nil {
			return err
		}
		if !ok {
			// Sleep until the start of the next second, then retry both.
			wait := time.Until(time.Now().Truncate(time.Second).Add(time.Second))
			if wait < constants.RateLimitWaitFloor {
				wait = constants.RateLimitWaitFloor
			}
			if err := sleep(ctx, wait); err != nil {
				return err
			}
			continue
		}

		ok, wait, err := l.trySustained(ctx)
		if err != nil {
			return err
		}
		if ok {
			return nil
		}
		if err := sleep(ctx, wait); err != nil {
			return err
		}
	}
}

// tryBurst increments the current second's counter and reports whether
// the caller is within the burst quota.
func (l *Limiter) tryBurst(ctx context.Context) (bool, error) {
	key := fmt.Sprintf("%s%d", burstKeyPrefix, time.Now().Unix())

	count, err := l.client.Incr(ctx, key).Result()
	if err != nil {
		return false, fmt.Errorf("rate limiter burst incr: %w", err)
	}
	if err := l.client.Expire(ctx, key, constants.BurstKeyExpiry).Err(); err != nil {
		l.logger.Warn().Err(err).Str("key", key).Msg("failed to set burst key expiry")
	}

	return count <= int64(l.burstLimit), nil
}

// trySustained prunes entries older than the window, and either reserves
// a slot or reports how long to wait until the oldest entry ages out.
// The wait is clamped to [floor, ceiling] so a stale oldest entry cannot
// park every waiter for minutes.
func (l *Limiter) trySustained(ctx context.Context) (bool, time.Duration, error) {
	nowMs := time.Now().UnixMilli()
	windowStart := nowMs - constants.SustainedWindow.Milliseconds()

	if err := l.client.ZRemRangeByScore(ctx, sustainedKey, "0", fmt.Sprintf("%d", windowStart)).Err(); err != nil {
		return false, 0, fmt.Errorf("rate limiter sustained prune: %w", err)
	}
	if err := l.client.Expire(ctx, sustainedKey, constants.SustainedKeyExpiry).Err(); err != nil {
		l.logger.Warn().Err(err).Msg("failed to set sustained key expiry")
	}

	count, err := l.client.ZCard(ctx, sustainedKey).Result()
	if err != nil {
		return false, 0, fmt.Errorf("rate limiter sustained card: %w", err)
	}

	if count < int64(l.sustainedLimit) {
		member := fmt.Sprintf("%d-%s", nowMs, gonanoid.Must(12))
		if err := l.client.ZAdd(ctx, sustainedKey, redis.Z{Score: float64(nowMs), Member: member}).Err(); err != nil {
			return false, 0, fmt.Errorf("rate limiter sustained add: %w", err)
		}
		return true, 0, nil
	}

	oldest, err := l.client.ZRangeWithScores(ctx, sustainedKey, 0, 0).Result()
	if err != nil {
		return false, 0, fmt.Errorf("rate limiter sustained oldest: %w", err)
	}
	wait := constants.RateLimitWaitFloor
	if len(oldest) > 0 {
		oldestMs := int64(oldest[0].Score)
		wait = time.Duration(oldestMs+constants.SustainedWindow.Milliseconds()-nowMs) * time.Millisecond
	}
	if wait < constants.RateLimitWaitFloor {
		wait = constants.RateLimitWaitFloor
	}
	if wait > constants.RateLimitWaitCeil {
		wait = constants.RateLimitWaitCeil
	}

	l.logger.Debug().Int64("in_window", count).Dur("wait", wait).Msg("sustained quota full, waiting")
	return false, wait, nil
}

func sleep(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
