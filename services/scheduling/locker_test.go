package scheduling

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLocalLocker(t *testing.T) {
	l := NewLocalLocker()
	ctx := context.Background()

	release, err := l.Acquire(ctx, "date:2024-06-11", time.Minute)
	require.NoError(t, err)

	_, err = l.Acquire(ctx, "date:2024-06-11", time.Minute)
	assert.ErrorIs(t, err, ErrLockHeld)

	other, err := l.Acquire(ctx, "date:2024-06-12", time.Minute)
	require.NoError(t, err)
	other()

	release()
	again, err := l.Acquire(ctx, "date:2024-06-11", time.Minute)
	require.NoError(t, err)
	again()
}

func TestLocalLockerExpires(t *testing.T) {
	l := NewLocalLocker()
	ctx := context.Background()

	_, err := l.Acquire(ctx, "k", time.Millisecond)
	require.NoError(t, err)
	time.Sleep(5 * time.Millisecond)

	release, err := l.Acquire(ctx, "k", time.Minute)
	require.NoError(t, err)
	release()
}

func TestLocalLockerStaleReleaseKeepsNewLease(t *testing.T) {
	l := NewLocalLocker()
	ctx := context.Background()

	stale, err := l.Acquire(ctx, "k", time.Millisecond)
	require.NoError(t, err)
	time.Sleep(5 * time.Millisecond)

	current, err := l.Acquire(ctx, "k", time.Minute)
	require.NoError(t, err)

	stale()
	_, err = l.Acquire(ctx, "k", time.Minute)
	assert.ErrorIs(t, err, ErrLockHeld)

	current()
	stale()
	next, err := l.Acquire(ctx, "k", time.Minute)
	require.NoError(t, err)
	stale()
	_, err = l.Acquire(ctx, "k", time.Minute)
	assert.ErrorIs(t, err, ErrLockHeld)
	next()
}

func TestErrorKinds(t *testing.T) {
	err := newError(KindNotFound, "service not found", errStoreDown)
	assert.Equal(t, KindNotFound, KindOf(err))
	assert.Equal(t, errStoreDown.Error(), err.(*Error).Details())
	assert.ErrorIs(t, err, errStoreDown)
	assert.Equal(t, Kind(""), KindOf(errStoreDown))
	assert.False(t, IsKind(nil, KindNotFound))
}
