package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/noah-isme/smart-attendance-cli/pkg/config"
)

// RedisStore keeps the access token under a single key with no expiry. Useful
// when several kiosk terminals share one signed-in identity.
type RedisStore struct {
	client *redis.Client
	key    string
}

// NewRedisStore connects to redis and verifies the connection with a ping.
func NewRedisStore(cfg config.RedisConfig, key string) (*RedisStore, error) {
	if key == "" {
		key = "access_token"
	}

	client := redis.NewClient(&redis.Options{
		Addr:     fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("connect redis credential store: %w", err)
	}

	return &RedisStore{client: client, key: key}, nil
}

// Get returns the stored token or ErrNotFound.
func (s *RedisStore) Get(ctx context.Context) (string, error) {
	val, err := s.client.Get(ctx, s.key).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return "", ErrNotFound
		}
		return "", fmt.Errorf("read credential key: %w", err)
	}
	return val, nil
}

// Set writes the token, replacing any previous value.
func (s *RedisStore) Set(ctx context.Context, token string) error {
	if err := s.client.Set(ctx, s.key, token, 0).Err(); err != nil {
		return fmt.Errorf("write credential key: %w", err)
	}
	return nil
}

// Remove deletes the token. Deleting an absent key is a no-op.
func (s *RedisStore) Remove(ctx context.Context) error {
	if err := s.client.Del(ctx, s.key).Err(); err != nil {
		return fmt.Errorf("delete credential key: %w", err)
	}
	return nil
}

// Close releases the underlying connection.
func (s *RedisStore) Close() error {
	return s.client.Close()
}
