package memory

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sinuca-magalhaes/caixa/internal/repository"
)

type fakeClock struct{ t time.Time }

func (f *fakeClock) now() time.Time { return f.t }

func newTestCache() (*Cache, *fakeClock) {
	clock := &fakeClock{t: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)}
	return NewCache(WithClock(clock.now)), clock
}

func TestCache_SetGetExpire(t *testing.T) {
	ctx := context.Background()
	c, clock := newTestCache()

	require.NoError(t, c.Set(ctx, "k", []byte("v"), time.Minute))

	got, err := c.Get(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, []byte("v"), got)

	clock.t = clock.t.Add(time.Minute)
	_, err = c.Get(ctx, "k")
	assert.ErrorIs(t, err, repository.ErrCacheMiss)

	require.NoError(t, c.Set(ctx, "forever", []byte("v"), 0))
	clock.t = clock.t.Add(24 * time.Hour)
	_, err = c.Get(ctx, "forever")
	assert.NoError(t, err)

	require.NoError(t, c.Delete(ctx, "forever"))
	_, err = c.Get(ctx, "forever")
	assert.ErrorIs(t, err, repository.ErrCacheMiss)
}

func TestCache_IncrementKeepsExpiry(t *testing.T) {
	ctx := context.Background()
	c, clock := newTestCache()

	n, err := c.Increment(ctx, "attempts", 1)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)
	require.NoError(t, c.Expire(ctx, "attempts", 15*time.Minute))

	clock.t = clock.t.Add(10 * time.Minute)
	n, err = c.Increment(ctx, "attempts", 1)
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)

	got, err := c.Get(ctx, "attempts")
	require.NoError(t, err)
	assert.Equal(t, "2", string(got))

	// The window started with the first failure, not the last one.
	clock.t = clock.t.Add(5 * time.Minute)
	_, err = c.Get(ctx, "attempts")
	assert.ErrorIs(t, err, repository.ErrCacheMiss)

	n, err = c.Increment(ctx, "attempts", 1)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)
}

func TestCache_CleanupAndLen(t *testing.T) {
	ctx := context.Background()
	c, clock := newTestCache()

	require.NoError(t, c.Set(ctx, "a", []byte("1"), time.Second))
	require.NoError(t, c.Set(ctx, "b", []byte("2"), time.Hour))
	assert.Equal(t, 2, c.Len())

	clock.t = clock.t.Add(time.Minute)
	assert.Equal(t, 1, c.Len())

	c.cleanup()
	c.mu.RLock()
	assert.Len(t, c.items, 1)
	c.mu.RUnlock()

	c.Stop()
	c.Stop()
}
