package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// DefaultRedisKey is the hash holding player -> encoded record.
const DefaultRedisKey = "courtside:players"

// RedisStore keeps every player record as a field of a single Redis hash
type RedisStore struct {
	client *redis.Client
	key    string
}

// NewRedisStore creates a new Redis-backed store from a redis:// URL
func NewRedisStore(redisURL, key string) (*RedisStore, error) {
	opt, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("parsing redis url: %w", err)
	}

	client := redis.NewClient(opt)

	// Test connection
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("pinging redis: %w", err)
	}

	return NewRedisStoreFromClient(client, key), nil
}

// NewRedisStoreFromClient wraps an existing client
func NewRedisStoreFromClient(client *redis.Client, key string) *RedisStore {
	if key == "" {
		key = DefaultRedisKey
	}
	return &RedisStore{
		client: client,
		key:    key,
	}
}

// Client returns the underlying Redis client
func (rs *RedisStore) Client() *redis.Client {
	return rs.client
}

// PutPlayer sets the player's field in the hash
func (rs *RedisStore) PutPlayer(ctx context.Context, rec *PlayerStatRecord) error {
	value, err := EncodeRecord(rec)
	if err != nil {
		return err
	}
	if err := rs.client.HSet(ctx, rs.key, rec.Player, value).Err(); err != nil {
		return fmt.Errorf("redis hset %s: %w", rec.Player, err)
	}
	return nil
}

// PlayerNames returns all fields of the hash
func (rs *RedisStore) PlayerNames(ctx context.Context) ([]string, error) {
	names, err := rs.client.HKeys(ctx, rs.key).Result()
	if err != nil {
		return nil, fmt.Errorf("redis hkeys: %w", err)
	}
	return names, nil
}

// GetPlayer reads and decodes one field
func (rs *RedisStore) GetPlayer(ctx context.Context, name string) (*PlayerStatRecord, error) {
	value, err := rs.client.HGet(ctx, rs.key, name).Result()
	if errors.Is(err, redis.Nil) {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, name)
	}
	if err != nil {
		return nil, fmt.Errorf("redis hget %s: %w", name, err)
	}
	return DecodeRecord(name, value)
}

// HealthCheck pings Redis to verify connection
func (rs *RedisStore) HealthCheck(ctx context.Context) error {
	return rs.client.Ping(ctx).Err()
}

// Close closes the Redis connection
func (rs *RedisStore) Close() error {
	return rs.client.Close()
}
