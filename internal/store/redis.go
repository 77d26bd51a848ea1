package store

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// RedisBackend keeps chart values as plain Redis strings.
type RedisBackend struct {
	rdb *redis.Client
}

// NewRedisBackend wraps a connected client.
func NewRedisBackend(rdb *redis.Client) *RedisBackend { return &RedisBackend{rdb: rdb} }

// NewRedis is a KVStore backed by Redis.
func NewRedis(rdb *redis.Client, keys Keys, log *zap.Logger) *KVStore {
	return NewKVStore(NewRedisBackend(rdb), keys, log)
}

func (b *RedisBackend) Get(ctx context.Context, keys []string) (map[string]string, error) {
	vals, err := b.rdb.MGet(ctx, keys...).Result()
	if err != nil {
		return nil, fmt.Errorf("redis mget: %w", err)
	}
	out := make(map[string]string, len(keys))
	for i, v := range vals {
		if s, ok := v.(string); ok {
			out[keys[i]] = s
		}
	}
	return out, nil
}

func (b *RedisBackend) Set(ctx context.Context, key, value string) error {
	if err := b.rdb.Set(ctx, key, value, 0).Err(); err != nil {
		return fmt.Errorf("redis set: %w", err)
	}
	return nil
}
