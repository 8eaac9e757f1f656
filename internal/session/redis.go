package session

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/iliyamo/hotel-reservation/internal/model"
)

// RedisStore keeps "<prefix>:<sid>" -> "<kind>:<id>" with a sliding TTL.
type RedisStore struct {
	rdb    *redis.Client
	prefix string
	ttl    time.Duration
}

// NewRedisStore builds a store on an established client.
func NewRedisStore(rdb *redis.Client, prefix string, ttl time.Duration) *RedisStore {
	if prefix == "" {
		prefix = "sess"
	}
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &RedisStore{rdb: rdb, prefix: prefix, ttl: ttl}
}

func (s *RedisStore) key(sid string) string { return s.prefix + ":" + sid }

// Create opens a slot for ref under a fresh uuid.
func (s *RedisStore) Create(ctx context.Context, ref model.OwnerRef) (string, error) {
	sid := newID()
	if err := s.rdb.Set(ctx, s.key(sid), ref.String(), s.ttl).Err(); err != nil {
		return "", err
	}
	return sid, nil
}

// Get returns the occupant and extends the TTL.
func (s *RedisStore) Get(ctx context.Context, sid string) (model.OwnerRef, error) {
	if sid == "" {
		return model.OwnerRef{}, ErrNoSession
	}
	v, err := s.rdb.GetEx(ctx, s.key(sid), s.ttl).Result()
	if errors.Is(err, redis.Nil) {
		return model.OwnerRef{}, ErrNoSession
	}
	if err != nil {
		return model.OwnerRef{}, err
	}
	ref, err := model.ParseOwnerRef(v)
	if err != nil {
		// A corrupt slot is as good as none.
		_ = s.rdb.Del(ctx, s.key(sid)).Err()
		return model.OwnerRef{}, ErrNoSession
	}
	return ref, nil
}

// Replace hands an existing slot to ref.
func (s *RedisStore) Replace(ctx context.Context, sid string, ref model.OwnerRef) error {
	ok, err := s.rdb.SetXX(ctx, s.key(sid), ref.String(), s.ttl).Result()
	if err != nil {
		return err
	}
	if !ok {
		return ErrNoSession
	}
	return nil
}

// Destroy removes the slot.
func (s *RedisStore) Destroy(ctx context.Context, sid string) error {
	if sid == "" {
		return nil
	}
	return s.rdb.Del(ctx, s.key(sid)).Err()
}
