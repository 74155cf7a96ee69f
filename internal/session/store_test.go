package session

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mmeshcher/bookstore-system/internal/model"
)

func newRedisStore(t *testing.T, ttl time.Duration) (*RedisStore, *miniredis.Miniredis) {
	t.Helper()

	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	return NewRedisStore(client, ttl), mr
}

func testSession() model.Session {
	return model.Session{
		UserID:    3,
		UserName:  "kim",
		Name:      "Kim",
		CreatedAt: time.Date(2026, 10, 16, 12, 0, 0, 0, time.UTC),
	}
}

func TestRedisStore_CreateGetDelete(t *testing.T) {
	store, mr := newRedisStore(t, time.Minute)
	ctx := context.Background()

	id, err := store.Create(ctx, testSession())
	require.NoError(t, err)
	require.NotEmpty(t, id)
	assert.True(t, mr.Exists(keyPrefix+id))

	got, err := store.Get(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, int64(3), got.UserID)
	assert.Equal(t, "kim", got.UserName)
	assert.True(t, got.CreatedAt.Equal(testSession().CreatedAt))

	require.NoError(t, store.Delete(ctx, id))
	_, err = store.Get(ctx, id)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestRedisStore_Expires(t *testing.T) {
	store, mr := newRedisStore(t, time.Minute)
	ctx := context.Background()

	id, err := store.Create(ctx, testSession())
	require.NoError(t, err)

	mr.FastForward(2 * time.Minute)

	_, err = store.Get(ctx, id)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestRedisStore_GetSlidesTTL(t *testing.T) {
	store, mr := newRedisStore(t, time.Minute)
	ctx := context.Background()

	id, err := store.Create(ctx, testSession())
	require.NoError(t, err)

	mr.FastForward(40 * time.Second)
	_, err = store.Get(ctx, id)
	require.NoError(t, err)

	mr.FastForward(40 * time.Second)
	_, err = store.Get(ctx, id)
	assert.NoError(t, err, "access must extend the session lifetime")
}

func TestRedisStore_DeleteUnknown(t *testing.T) {
	store, _ := newRedisStore(t, time.Minute)
	assert.NoError(t, store.Delete(context.Background(), "missing"))
}

func TestMemoryStore_CreateGetDelete(t *testing.T) {
	store := NewMemoryStore(time.Minute)
	ctx := context.Background()

	id, err := store.Create(ctx, testSession())
	require.NoError(t, err)

	got, err := store.Get(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, "Kim", got.Name)

	require.NoError(t, store.Delete(ctx, id))
	_, err = store.Get(ctx, id)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestMemoryStore_ExpiryAndSlidingTTL(t *testing.T) {
	store := NewMemoryStore(time.Minute)
	now := time.Date(2026, 10, 16, 12, 0, 0, 0, time.UTC)
	store.now = func() time.Time { return now }
	ctx := context.Background()

	id, err := store.Create(ctx, testSession())
	require.NoError(t, err)

	now = now.Add(40 * time.Second)
	_, err = store.Get(ctx, id)
	require.NoError(t, err)

	now = now.Add(40 * time.Second)
	_, err = store.Get(ctx, id)
	require.NoError(t, err)

	now = now.Add(2 * time.Minute)
	_, err = store.Get(ctx, id)
	assert.ErrorIs(t, err, ErrNotFound)
	assert.Equal(t, 0, store.Len())
}

func TestMemoryStore_Sweep(t *testing.T) {
	store := NewMemoryStore(time.Minute)
	now := time.Date(2026, 10, 16, 12, 0, 0, 0, time.UTC)
	store.now = func() time.Time { return now }
	ctx := context.Background()

	_, err := store.Create(ctx, testSession())
	require.NoError(t, err)
	now = now.Add(30 * time.Second)
	fresh, err := store.Create(ctx, testSession())
	require.NoError(t, err)

	now = now.Add(45 * time.Second)
	store.sweep()

	assert.Equal(t, 1, store.Len())
	_, err = store.Get(ctx, fresh)
	assert.NoError(t, err)
}

func TestMemoryStore_StartSweeperStopsOnCancel(t *testing.T) {
	store := NewMemoryStore(time.Minute)
	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan struct{})
	go func() {
		store.StartSweeper(ctx, time.Millisecond)
		close(done)
	}()

	cancel()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("sweeper did not stop after context cancel")
	}
}
