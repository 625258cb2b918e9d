package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"
)

// RedisStore keeps the session in Redis so several terminals on a shared host see the
// same login. Both keys are written in one transaction and deleted together.
type RedisStore struct {
	client *redis.Client
	prefix string
}

// NewRedisStore creates a store from a redis:// URL
func NewRedisStore(url, prefix string) (*RedisStore, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("parsing redis url: %w", err)
	}
	return NewRedisStoreWithClient(redis.NewClient(opts), prefix), nil
}

// NewRedisStoreWithClient wraps an existing client
func NewRedisStoreWithClient(client *redis.Client, prefix string) *RedisStore {
	return &RedisStore{client: client, prefix: prefix}
}

// Close closes the Redis connection
func (s *RedisStore) Close() error {
	return s.client.Close()
}

func (s *RedisStore) tokenKey() string { return s.prefix + TokenKey }
func (s *RedisStore) userKey() string  { return s.prefix + UserKey }

// Load implements Store
func (s *RedisStore) Load(ctx context.Context) (string, map[string]any, error) {
	vals, err := s.client.MGet(ctx, s.tokenKey(), s.userKey()).Result()
	if err != nil {
		return "", nil, fmt.Errorf("loading session: %w", err)
	}

	token, _ := vals[0].(string)
	rawUser, _ := vals[1].(string)
	if token == "" || rawUser == "" {
		return "", nil, nil
	}

	var user map[string]any
	if err := json.Unmarshal([]byte(rawUser), &user); err != nil {
		return "", nil, fmt.Errorf("decoding stored user: %w", err)
	}
	return token, user, nil
}

// Save implements Store
func (s *RedisStore) Save(ctx context.Context, token string, user map[string]any) error {
	encoded, err := json.Marshal(user)
	if err != nil {
		return fmt.Errorf("encoding user: %w", err)
	}
	_, err = s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Set(ctx, s.tokenKey(), token, 0)
		pipe.Set(ctx, s.userKey(), encoded, 0)
		return nil
	})
	if err != nil {
		return fmt.Errorf("saving session: %w", err)
	}
	return nil
}

// Clear implements Store
func (s *RedisStore) Clear(ctx context.Context) error {
	if err := s.client.Del(ctx, s.tokenKey(), s.userKey()).Err(); err != nil && !errors.Is(err, redis.Nil) {
		return fmt.Errorf("clearing session: %w", err)
	}
	return nil
}
