package ratelimit

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testLimiter(t *testing.T, burst, sustained int) (*Limiter, *redis.Client) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })
	return New(client, burst, sustained, zerolog.Nop()), client
}

func TestAcquireWithinQuotas(t *testing.T) {
	limiter, client := testLimiter(t, 10, 100)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		require.NoError(t, limiter.Acquire(ctx))
	}

	count, err := client.ZCard(ctx, sustainedKey).Result()
	require.NoError(t, err)
	assert.Equal(t, int64(3), count)
}

func TestAcquireWaitsOutBurstRejection(t *testing.T) {
	limiter, _ := testLimiter(t, 1, 100)
	ctx := context.Background()

	require.NoError(t, limiter.Acquire(ctx))

	// Second slot in the same second is over quota; the limiter should
	// wait for the next second boundary and then succeed.
	start := time.Now()
	require.NoError(t, limiter.Acquire(ctx))
	assert.Less(t, time.Since(start), 2*time.Second)
}

func TestAcquireWaitsForOldestSustainedEntry(t *testing.T) {
	limiter, client := testLimiter(t, 100, 2)
	ctx := context.Background()

	// Fill the window with entries that age out ~150ms from now.
	nowMs := time.Now().UnixMilli()
	almostExpired := nowMs - (120*1000 - 150)
	for i := 0; i < 2; i++ {
		member := fmt.Sprintf("%d-seed%d", almostExpired, i)
		require.NoError(t, client.ZAdd(ctx, sustainedKey, redis.Z{Score: float64(almostExpired), Member: member}).Err())
	}

	start := time.Now()
	require.NoError(t, limiter.Acquire(ctx))
	elapsed := time.Since(start)
	assert.GreaterOrEqual(t, elapsed, 100*time.Millisecond, "should have waited for the oldest entry to age out")
}

func TestAcquireHonorsContextWhileWaiting(t *testing.T) {
	limiter, client := testLimiter(t, 100, 1)
	ctx := context.Background()

	// A fresh entry occupies the only sustained slot for the full window.
	nowMs := time.Now().UnixMilli()
	require.NoError(t, client.ZAdd(ctx, sustainedKey, redis.Z{Score: float64(nowMs), Member: "occupied"}).Err())

	waitCtx, cancel := context.WithTimeout(ctx, 150*time.Millisecond)
	defer cancel()
	err := limiter.Acquire(waitCtx)
	require.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestAcquirePrunesAgedEntries(t *testing.T) {
	limiter, client := testLimiter(t, 100, 2)
	ctx := context.Background()

	staleMs := time.Now().UnixMilli() - 200*1000
	for i := 0; i < 5; i++ {
		member := fmt.Sprintf("%d-stale%d", staleMs, i)
		require.NoError(t, client.ZAdd(ctx, sustainedKey, redis.Z{Score: float64(staleMs), Member: member}).Err())
	}

	require.NoError(t, limiter.Acquire(ctx))

	count, err := client.ZCard(ctx, sustainedKey).Result()
	require.NoError(t, err)
	assert.Equal(t, int64(1), count, "stale entries should be pruned, leaving only the new reservation")
}
