/**
 * @description
 * Redis-backed implementation of the flow.KVStore contract plus the age
 * index used by the maintenance sweeper. Each snapshot key is mirrored into
 * a sorted set scored by save time so expired entries can be purged in bulk
 * even though Redis TTLs already cover the common case.
 */
package store

import (
	"context"
	"crypto/tls"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/eventra/onboarding-service/internal/flow"
)

const progressIndexKey = "onboarding_progress_index"

// RedisConfig carries the connection settings for the progress store.
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
	UseTLS   bool
}

// RedisProgressStore is the durable slot behind onboarding progress
// persistence.
type RedisProgressStore struct {
	client *redis.Client
}

// NewRedisProgressStore connects a progress store to Redis.
func NewRedisProgressStore(cfg RedisConfig) *RedisProgressStore {
	opts := &redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	}
	if cfg.UseTLS {
		opts.TLSConfig = &tls.Config{
			MinVersion: tls.VersionTLS12,
		}
	}
	return &RedisProgressStore{client: redis.NewClient(opts)}
}

// Get returns the stored snapshot for the key, or flow.ErrSlotEmpty when the
// slot holds nothing.
func (s *RedisProgressStore) Get(ctx context.Context, key string) (string, error) {
	val, err := s.client.Get(ctx, key).Result()
	if err == redis.Nil {
		return "", flow.ErrSlotEmpty
	} else if err != nil {
		return "", err
	}
	return val, nil
}

// Set stores the snapshot with the given TTL and records the key in the age
// index for the sweeper.
func (s *RedisProgressStore) Set(ctx context.Context, key, value string, ttl time.Duration) error {
	if err := s.client.Set(ctx, key, value, ttl).Err(); err != nil {
		return err
	}
	return s.client.ZAdd(ctx, progressIndexKey, redis.Z{
		Score:  float64(time.Now().Unix()),
		Member: key,
	}).Err()
}

// Remove deletes the slot and drops it from the age index.
func (s *RedisProgressStore) Remove(ctx context.Context, key string) error {
	if err := s.client.Del(ctx, key).Err(); err != nil {
		return err
	}
	return s.client.ZRem(ctx, progressIndexKey, key).Err()
}

// DeleteOlderThan purges every snapshot whose last save is older than the
// given age. Redis TTLs make this mostly a no-op for the keys themselves,
// but it keeps the age index from growing without bound.
func (s *RedisProgressStore) DeleteOlderThan(ctx context.Context, olderThan time.Duration) (int, error) {
	cutoff := time.Now().Add(-olderThan).Unix()

	keys, err := s.client.ZRangeByScore(ctx, progressIndexKey, &redis.ZRangeBy{
		Min: "-inf",
		Max: fmt.Sprintf("%d", cutoff),
	}).Result()
	if err != nil {
		return 0, err
	}
	if len(keys) == 0 {
		return 0, nil
	}

	if err := s.client.Del(ctx, keys...).Err(); err != nil {
		return 0, err
	}
	if err := s.client.ZRem(ctx, progressIndexKey, keys).Err(); err != nil {
		return 0, err
	}
	return len(keys), nil
}

// Close releases the underlying Redis connection.
func (s *RedisProgressStore) Close() error {
	return s.client.Close()
}
