package cache

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLocalLockerRejectsHeldKey(t *testing.T) {
	ctx := context.Background()
	locker := NewLocalLocker()
	key := SaleLockKey(1, "INV-7")

	lock, err := locker.Obtain(ctx, key, time.Minute)
	require.NoError(t, err)

	_, err = locker.Obtain(ctx, key, time.Minute)
	require.ErrorIs(t, err, ErrLockNotObtained)

	other, err := locker.Obtain(ctx, SaleLockKey(2, "INV-7"), time.Minute)
	require.NoError(t, err)
	require.NoError(t, other.Release(ctx))

	require.NoError(t, lock.Release(ctx))
	again, err := locker.Obtain(ctx, key, time.Minute)
	require.NoError(t, err)
	require.NoError(t, again.Release(ctx))
}

func TestLocalLockerExpiresAbandonedLocks(t *testing.T) {
	ctx := context.Background()
	locker := NewLocalLocker()

	_, err := locker.Obtain(ctx, "k", time.Millisecond)
	require.NoError(t, err)
	time.Sleep(5 * time.Millisecond)

	_, err = locker.Obtain(ctx, "k", time.Minute)
	assert.NoError(t, err)
}

func TestLocalLockerExpiredHolderCannotReleaseNewOwner(t *testing.T) {
	ctx := context.Background()
	locker := NewLocalLocker()
	key := SaleLockKey(1, "INV-9")

	stale, err := locker.Obtain(ctx, key, 10*time.Millisecond)
	require.NoError(t, err)
	time.Sleep(20 * time.Millisecond)

	current, err := locker.Obtain(ctx, key, time.Minute)
	require.NoError(t, err)

	require.ErrorIs(t, stale.Release(ctx), ErrLockNotHeld)
	_, err = locker.Obtain(ctx, key, time.Minute)
	require.ErrorIs(t, err, ErrLockNotObtained)

	require.NoError(t, current.Release(ctx))
	require.ErrorIs(t, current.Release(ctx), ErrLockNotHeld)
	again, err := locker.Obtain(ctx, key, time.Minute)
	require.NoError(t, err)
	require.NoError(t, again.Release(ctx))
}

func TestNoopReceiptCacheMisses(t *testing.T) {
	receipt, ok, err := NoopReceiptCache{}.Get(context.Background(), 1)
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Nil(t, receipt)
	assert.Equal(t, "receipt:1", ReceiptKey(1))
}
