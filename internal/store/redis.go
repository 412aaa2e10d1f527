package store

import (
	"context"
	"errors"

	"github.com/redis/go-redis/v9"
)

// snapshotKey is the single key the whole session snapshot lives under,
// the server-side analog of the original client's local-storage slot.
const snapshotKey = "museum:snapshot"

// RedisStore implements Store with one Redis key. Snapshots are small
// (one user, a handful of artworks), so a single GET/SET per operation is
// fine; no TTL is applied — the snapshot lives until cleared.
type RedisStore struct {
	rdb *redis.Client
}

// NewRedisStore creates a Redis-backed store.
func NewRedisStore(rdb *redis.Client) *RedisStore {
	return &RedisStore{rdb: rdb}
}

func (s *RedisStore) Load(ctx context.Context) ([]byte, error) {
	data, err := s.rdb.Get(ctx, snapshotKey).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return data, nil
}

func (s *RedisStore) Save(ctx context.Context, snapshot []byte) error {
	return s.rdb.Set(ctx, snapshotKey, snapshot, 0).Err()
}

func (s *RedisStore) Clear(ctx context.Context) error {
	return s.rdb.Del(ctx, snapshotKey).Err()
}
