package settings

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/orbit-drive/orbit/internal/constants"
)

// RedisStore keeps settings in Redis under a key prefix.
type RedisStore struct {
	client *redis.Client
	prefix string
}

// NewRedisStore connects to addr and verifies the connection with a ping.
func NewRedisStore(addr string, db int) (*RedisStore, error) {
	if addr == "" {
		addr = "127.0.0.1:6379"
	}

	client := redis.NewClient(&redis.Options{
		Addr: addr,
		DB:   db,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to connect to redis at %s: %w", addr, err)
	}

	return NewRedisStoreFromClient(client, constants.RedisKeyPrefix), nil
}

// NewRedisStoreFromClient wraps an existing client. Keys are stored as prefix+key.
func NewRedisStoreFromClient(client *redis.Client, prefix string) *RedisStore {
	return &RedisStore{client: client, prefix: prefix}
}

func (r *RedisStore) Get(ctx context.Context, key string) (string, bool, error) {
	if r == nil || r.client == nil {
		return "", false, ErrStoreClosed
	}
	v, err := r.client.Get(ctx, r.prefix+key).Result()
	if errors.Is(err, redis.Nil) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("redis get %s: %w", key, err)
	}
	return v, true, nil
}

// Set stores the value without expiry.
func (r *RedisStore) Set(ctx context.Context, key, value string) error {
	if r == nil || r.client == nil {
		return ErrStoreClosed
	}
	if err := r.client.Set(ctx, r.prefix+key, value, 0).Err(); err != nil {
		return fmt.Errorf("redis set %s: %w", key, err)
	}
	return nil
}

func (r *RedisStore) Close() error {
	if r == nil || r.client == nil {
		return nil
	}
	return r.client.Close()
}
