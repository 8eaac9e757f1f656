package session

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/hotel-reservation/internal/model"
)

func newRedisStore(t *testing.T) (*RedisStore, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })
	return NewRedisStore(rdb, "sess", time.Hour), mr
}

func exerciseStore(t *testing.T, s Store) {
	ctx := context.Background()
	manager := model.MustOwnerRef(model.KindManager, 7)
	client := model.MustOwnerRef(model.KindClient, 3)

	sid, err := s.Create(ctx, manager)
	require.NoError(t, err)
	require.NotEmpty(t, sid)

	got, err := s.Get(ctx, sid)
	require.NoError(t, err)
	assert.Equal(t, manager, got)

	require.NoError(t, s.Replace(ctx, sid, client))
	got, err = s.Get(ctx, sid)
	require.NoError(t, err)
	assert.Equal(t, client, got, "a slot holds exactly one principal")

	require.NoError(t, s.Destroy(ctx, sid))
	_, err = s.Get(ctx, sid)
	assert.ErrorIs(t, err, ErrNoSession)

	assert.ErrorIs(t, s.Replace(ctx, sid, manager), ErrNoSession)
	assert.NoError(t, s.Destroy(ctx, sid), "destroy is idempotent")
}

func TestRedisStore(t *testing.T) {
	s, _ := newRedisStore(t)
	exerciseStore(t, s)
}

func TestMemoryStore(t *testing.T) {
	exerciseStore(t, NewMemoryStore(time.Hour))
}

func TestRedisStoreLayout(t *testing.T) {
	s, mr := newRedisStore(t)
	sid, err := s.Create(context.Background(), model.MustOwnerRef(model.KindReceptionist, 4))
	require.NoError(t, err)

	v, err := mr.Get("sess:" + sid)
	require.NoError(t, err)
	assert.Equal(t, "receptionist:4", v)
}

func TestRedisStoreExpiry(t *testing.T) {
	s, mr := newRedisStore(t)
	sid, err := s.Create(context.Background(), model.MustOwnerRef(model.KindClient, 1))
	require.NoError(t, err)

	mr.FastForward(2 * time.Hour)
	_, err = s.Get(context.Background(), sid)
	assert.ErrorIs(t, err, ErrNoSession)
}

func TestRedisStoreDropsCorruptSlot(t *testing.T) {
	s, mr := newRedisStore(t)
	require.NoError(t, mr.Set("sess:bad", "guest:1"))

	_, err := s.Get(context.Background(), "bad")
	assert.ErrorIs(t, err, ErrNoSession)
	assert.False(t, mr.Exists("sess:bad"))
}

func TestMemoryStoreExpiry(t *testing.T) {
	s := NewMemoryStore(time.Minute)
	now := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	s.now = func() time.Time { return now }

	sid, err := s.Create(context.Background(), model.MustOwnerRef(model.KindClient, 1))
	require.NoError(t, err)

	now = now.Add(2 * time.Minute)
	_, err = s.Get(context.Background(), sid)
	assert.ErrorIs(t, err, ErrNoSession)
}
