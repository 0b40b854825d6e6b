package session

import (
	"context"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"
)

// RedisStore keeps the connected flag under a single Redis key, for
// deployments where the dashboard runs without a writable disk.
type RedisStore struct {
	rdb *redis.Client
	key string
}

// NewRedisStore uses namespace as key prefix; empty means no prefix.
func NewRedisStore(rdb *redis.Client, namespace string) *RedisStore {
	key := connectedKey
	if namespace != "" {
		key = fmt.Sprintf("%s:%s", namespace, connectedKey)
	}
	return &RedisStore{rdb: rdb, key: key}
}

func (r *RedisStore) Connected(ctx context.Context) (bool, error) {
	val, err := r.rdb.Get(ctx, r.key).Result()
	switch {
	case errors.Is(err, redis.Nil):
		return false, nil
	case err != nil:
		return false, fmt.Errorf("redis get error: %w", err)
	default:
		return val == connectedValue, nil
	}
}

func (r *RedisStore) MarkConnected(ctx context.Context) error {
	if err := r.rdb.Set(ctx, r.key, connectedValue, 0).Err(); err != nil {
		return fmt.Errorf("redis set error: %w", err)
	}
	return nil
}

func (r *RedisStore) Clear(ctx context.Context) error {
	if err := r.rdb.Del(ctx, r.key).Err(); err != nil {
		return fmt.Errorf("redis del error: %w", err)
	}
	return nil
}
