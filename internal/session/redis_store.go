package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/sony/gobreaker"
)

const keyPrefix = "session:"

// RedisClient is the subset of *redis.Client the store needs.
type RedisClient interface {
	Get(ctx context.Context, key string) *redis.StringCmd
	Set(ctx context.Context, key string, value interface{}, expiration time.Duration) *redis.StatusCmd
	Del(ctx context.Context, keys ...string) *redis.IntCmd
}

// RedisStore keeps sessions as JSON values with a TTL. Every call goes
// through a circuit breaker so a dead Redis fails fast.
type RedisStore struct {
	client  RedisClient
	breaker *gobreaker.CircuitBreaker
}

func NewRedisStore(client RedisClient, breaker *gobreaker.CircuitBreaker) *RedisStore {
	return &RedisStore{client: client, breaker: breaker}
}

var _ Store = (*RedisStore)(nil)

func (s *RedisStore) Get(ctx context.Context, id string) (*Data, error) {
	raw, err := s.breaker.Execute(func() (interface{}, error) {
		val, err := s.client.Get(ctx, keyPrefix+id).Result()
		if errors.Is(err, redis.Nil) {
			// A missing key is not a Redis failure.
			return nil, nil
		}
		return val, err
	})
	if err != nil {
		return nil, fmt.Errorf("session get: %w", err)
	}
	if raw == nil {
		return nil, ErrNotFound
	}

	var data Data
	if err := json.Unmarshal([]byte(raw.(string)), &data); err != nil {
		return nil, fmt.Errorf("session decode: %w", err)
	}
	return &data, nil
}

func (s *RedisStore) Save(ctx context.Context, id string, data *Data, ttl time.Duration) error {
	payload, err := json.Marshal(data)
	if err != nil {
		return fmt.Errorf("session encode: %w", err)
	}
	_, err = s.breaker.Execute(func() (interface{}, error) {
		return nil, s.client.Set(ctx, keyPrefix+id, string(payload), ttl).Err()
	})
	if err != nil {
		return fmt.Errorf("session save: %w", err)
	}
	return nil
}

func (s *RedisStore) Delete(ctx context.Context, id string) error {
	_, err := s.breaker.Execute(func() (interface{}, error) {
		return nil, s.client.Del(ctx, keyPrefix+id).Err()
	})
	if err != nil {
		return fmt.Errorf("session delete: %w", err)
	}
	return nil
}
