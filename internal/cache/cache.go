// Package cache holds the short-lived shared state of the API: revoked session tokens and
// idempotency keys of sale requests.
package cache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/homeloto/retail-api/internal/config"
)

const (
	revokedPrefix     = "revoked:"
	idempotencyPrefix = "idem:"
)

var ErrEmptyKey = errors.New("cache: empty key")

// Open connects to redis and checks the connection.
func Open(ctx context.Context, conf *config.RedisConfig) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     conf.Addr,
		Password: conf.Password,
		DB:       conf.DB,
	})

	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("client.Ping -> %w", err)
	}

	return client, nil
}

type RedisStore struct {
	rdb redis.UniversalClient
}

func NewRedisStore(rdb redis.UniversalClient) *RedisStore {
	return &RedisStore{
		rdb: rdb,
	}
}

// Revoke marks a token id as revoked until ttl elapses, which should be the token's remaining
// lifetime.
func (s *RedisStore) Revoke(ctx context.Context, tokenID string, ttl time.Duration) error {
	if tokenID == "" {
		return ErrEmptyKey
	}
	if ttl <= 0 {
		return nil
	}

	if err := s.rdb.Set(ctx, revokedPrefix+tokenID, 1, ttl).Err(); err != nil {
		return fmt.Errorf("s.rdb.Set -> %w", err)
	}

	return nil
}

func (s *RedisStore) IsRevoked(ctx context.Context, tokenID string) (bool, error) {
	n, err := s.rdb.Exists(ctx, revokedPrefix+tokenID).Result()
	if err != nil {
		return false, fmt.Errorf("s.rdb.Exists -> %w", err)
	}

	return n > 0, nil
}

// Reserve claims key for value. When the key is already held it returns the stored value and
// reserved is false.
func (s *RedisStore) Reserve(ctx context.Context, key, value string, ttl time.Duration) (string, bool, error) {
	if key == "" {
		return "", false, ErrEmptyKey
	}

	ok, err := s.rdb.SetNX(ctx, idempotencyPrefix+key, value, ttl).Result()
	if err != nil {
		return "", false, fmt.Errorf("s.rdb.SetNX -> %w", err)
	}
	if ok {
		return value, true, nil
	}

	existing, err := s.rdb.Get(ctx, idempotencyPrefix+key).Result()
	if errors.Is(err, redis.Nil) {
		// Expired between the two calls; try once more.
		return s.Reserve(ctx, key, value, ttl)
	}
	if err != nil {
		return "", false, fmt.Errorf("s.rdb.Get -> %w", err)
	}

	return existing, false, nil
}

// Complete overwrites a held reservation with its final value.
func (s *RedisStore) Complete(ctx context.Context, key, value string, ttl time.Duration) error {
	if err := s.rdb.Set(ctx, idempotencyPrefix+key, value, ttl).Err(); err != nil {
		return fmt.Errorf("s.rdb.Set -> %w", err)
	}

	return nil
}

// Release frees a reservation so a failed request can be retried with the same key.
func (s *RedisStore) Release(ctx context.Context, key string) error {
	if err := s.rdb.Del(ctx, idempotencyPrefix+key).Err(); err != nil {
		return fmt.Errorf("s.rdb.Del -> %w", err)
	}

	return nil
}
