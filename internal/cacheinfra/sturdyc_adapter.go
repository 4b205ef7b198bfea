package cacheinfra

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/viccon/sturdyc"
)

// entry carries its own expiry so that per-key ttls are honoured on top of
// the client-wide ttl sturdyc applies.
type entry struct {
	value     string
	expiresAt time.Time
}

// sturdycStore is the in-memory backend.
type sturdycStore struct {
	client *sturdyc.Client[entry]
	ttl    time.Duration
	now    func() time.Time
	closed atomic.Bool
}

// NewSturdycStore creates the in-memory cache backend.
// It validates the configuration and initializes a sturdyc client with the provided settings:
// Capacity, NumShards, MaxTTL and EvictionPercentage are passed to sturdyc.New().
func NewSturdycStore(cfg Config) (*sturdycStore, error) {
	cfg.Backend = BackendMemory
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	var options []sturdyc.Option
	if cfg.EvictionInterval > 0 {
		options = append(options, sturdyc.WithEvictionInterval(cfg.EvictionInterval))
	}

	client := sturdyc.New[entry](
		cfg.Capacity,
		cfg.NumShards,
		cfg.MaxTTL,
		cfg.EvictionPercentage,
		options...,
	)

	return &sturdycStore{client: client, ttl: cfg.TTL, now: time.Now}, nil
}

// Get returns the value stored under key. Expired entries read as a miss
// and are dropped.
func (s *sturdycStore) Get(ctx context.Context, key string) (string, bool, error) {
	if s.closed.Load() {
		return "", false, ErrClosed
	}

	e, ok := s.client.Get(key)
	if !ok {
		return "", false, nil
	}

	if !s.now().Before(e.expiresAt) {
		s.client.Delete(key)
		return "", false, nil
	}

	return e.value, true, nil
}

// Set stores value under key for ttl, or for the configured default when
// ttl is not positive. Existing entries are overwritten.
func (s *sturdycStore) Set(ctx context.Context, key, value string, ttl time.Duration) error {
	if s.closed.Load() {
		return ErrClosed
	}

	if ttl <= 0 {
		ttl = s.ttl
	}

	s.client.Set(key, entry{value: value, expiresAt: s.now().Add(ttl)})
	return nil
}

// Delete removes key. Removing an absent key is a no-op.
func (s *sturdycStore) Delete(ctx context.Context, key string) error {
	if s.closed.Load() {
		return ErrClosed
	}

	s.client.Delete(key)
	return nil
}

// Close marks the store closed. Calling it more than once is safe.
func (s *sturdycStore) Close() error {
	s.closed.Store(true)
	return nil
}
