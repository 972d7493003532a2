package ratelimit

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newLimiter(t *testing.T, maxAttempts int, window time.Duration) (*LoginLimiter, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })
	return NewLoginLimiter(rdb, maxAttempts, window), mr
}

func TestLoginLimiter_BlocksAfterMaxAttempts(t *testing.T) {
	l, _ := newLimiter(t, 3, time.Minute)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		ok, err := l.Allow(ctx, "10.0.0.1", "a@b.io")
		require.NoError(t, err)
		assert.True(t, ok, "attempt %d", i+1)
		require.NoError(t, l.RecordFailure(ctx, "10.0.0.1", "a@b.io"))
	}

	ok, err := l.Allow(ctx, "10.0.0.1", "a@b.io")
	require.NoError(t, err)
	assert.False(t, ok)

	// other clients are unaffected
	ok, err = l.Allow(ctx, "10.0.0.2", "a@b.io")
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestLoginLimiter_WindowExpires(t *testing.T) {
	l, mr := newLimiter(t, 1, time.Minute)
	ctx := context.Background()

	require.NoError(t, l.RecordFailure(ctx, "ip", "a@b.io"))
	ok, err := l.Allow(ctx, "ip", "a@b.io")
	require.NoError(t, err)
	assert.False(t, ok)

	mr.FastForward(time.Minute + time.Second)

	ok, err = l.Allow(ctx, "ip", "a@b.io")
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestLoginLimiter_Reset(t *testing.T) {
	l, _ := newLimiter(t, 1, time.Minute)
	ctx := context.Background()

	require.NoError(t, l.RecordFailure(ctx, "ip", "a@b.io"))
	require.NoError(t, l.Reset(ctx, "ip", "a@b.io"))

	ok, err := l.Allow(ctx, "ip", "a@b.io")
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestLoginLimiter_NilAllowsEverything(t *testing.T) {
	var l *LoginLimiter
	ctx := context.Background()

	ok, err := l.Allow(ctx, "ip", "a@b.io")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.NoError(t, l.RecordFailure(ctx, "ip", "a@b.io"))
	assert.NoError(t, l.Reset(ctx, "ip", "a@b.io"))
	assert.Nil(t, NewLoginLimiter(nil, 5, time.Minute))
}

func TestNewRedisClient(t *testing.T) {
	mr := miniredis.RunT(t)
	addr := mr.Addr()
	rdb, err := NewRedisClient(context.Background(), addr, "", 0)
	require.NoError(t, err)
	defer rdb.Close()

	mr.Close()
	_, err = NewRedisClient(context.Background(), addr, "", 0)
	assert.Error(t, err)
}
