package cacheinfra

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

// redisStore is the networked backend. Values are plain strings stored with
// native redis expiry.
type redisStore struct {
	client *redis.Client
	prefix string
	ttl    time.Duration

	closeOnce sync.Once
	closeErr  error
}

// NewRedisStore creates the networked cache backend from cfg.
// The connection is established lazily by the client.
func NewRedisStore(cfg Config) (*redisStore, error) {
	cfg.Backend = BackendRedis
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	client := redis.NewClient(&redis.Options{
		Addr:        cfg.Redis.Addr,
		Password:    cfg.Redis.Password,
		DB:          cfg.Redis.DB,
		DialTimeout: cfg.Redis.DialTimeout,
	})

	return &redisStore{client: client, prefix: cfg.Redis.Prefix, ttl: cfg.TTL}, nil
}

func (s *redisStore) key(key string) string {
	if s.prefix == "" {
		return key
	}
	return s.prefix + ":" + key
}

// Get returns the value stored under key. A missing key is not an error.
func (s *redisStore) Get(ctx context.Context, key string) (string, bool, error) {
	value, err := s.client.Get(ctx, s.key(key)).Result()
	if errors.Is(err, redis.Nil) {
		return "", false, nil
	}
	if err != nil {
		return "", false, s.wrap("get", err)
	}
	return value, true, nil
}

// Set stores value under key with ttl, or the configured default when ttl
// is not positive.
func (s *redisStore) Set(ctx context.Context, key, value string, ttl time.Duration) error {
	if ttl <= 0 {
		ttl = s.ttl
	}
	if err := s.client.Set(ctx, s.key(key), value, ttl).Err(); err != nil {
		return s.wrap("set", err)
	}
	return nil
}

// Delete removes key. DEL on an absent key succeeds.
func (s *redisStore) Delete(ctx context.Context, key string) error {
	if err := s.client.Del(ctx, s.key(key)).Err(); err != nil {
		return s.wrap("delete", err)
	}
	return nil
}

// Close releases the underlying connection pool once.
func (s *redisStore) Close() error {
	s.closeOnce.Do(func() {
		s.closeErr = s.client.Close()
	})
	return s.closeErr
}

func (s *redisStore) wrap(op string, err error) error {
	if errors.Is(err, redis.ErrClosed) {
		return ErrClosed
	}
	return fmt.Errorf("%w: redis %s: %v", ErrUnavailable, op, err)
}
