package ingestlock

import (
	"context"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Ethan-new/LoL-Wrapped/internal/constants"
)

func testLock(t *testing.T) (*Lock, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })
	return New(client), mr
}

func TestAcquireAndRelease(t *testing.T) {
	lock, _ := testLock(t)
	ctx := context.Background()

	locked, err := lock.IsLocked(ctx, "puuid-1")
	require.NoError(t, err)
	assert.False(t, locked)

	require.NoError(t, lock.Acquire(ctx, "puuid-1"))

	locked, err = lock.IsLocked(ctx, "puuid-1")
	require.NoError(t, err)
	assert.True(t, locked)

	require.NoError(t, lock.Release(ctx, "puuid-1"))

	locked, err = lock.IsLocked(ctx, "puuid-1")
	require.NoError(t, err)
	assert.False(t, locked)
}

func TestAcquireSetsSafetyTTL(t *testing.T) {
	lock, mr := testLock(t)
	ctx := context.Background()

	require.NoError(t, lock.Acquire(ctx, "puuid-1"))
	assert.Equal(t, constants.IngestLockTTL, mr.TTL(key("puuid-1")))
}

func TestLockExpiresOnItsOwn(t *testing.T) {
	lock, mr := testLock(t)
	ctx := context.Background()

	require.NoError(t, lock.Acquire(ctx, "puuid-1"))
	mr.FastForward(constants.IngestLockTTL)

	locked, err := lock.IsLocked(ctx, "puuid-1")
	require.NoError(t, err)
	assert.False(t, locked, "crashed-worker lock should expire")
}

func TestReleaseAbsentLockIsNoOp(t *testing.T) {
	lock, _ := testLock(t)
	require.NoError(t, lock.Release(context.Background(), "never-locked"))
}

func TestLocksAreScopedPerPlayer(t *testing.T) {
	lock, _ := testLock(t)
	ctx := context.Background()

	require.NoError(t, lock.Acquire(ctx, "puuid-1"))

	locked, err := lock.IsLocked(ctx, "puuid-2")
	require.NoError(t, err)
	assert.False(t, locked)
}
