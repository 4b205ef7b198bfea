package cacheinfra

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/sony/gobreaker"
)

// Backend is the capability set every cache variant provides.
type Backend interface {
	Get(ctx context.Context, key string) (string, bool, error)
	Set(ctx context.Context, key, value string, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
	Close() error
}

type getResult struct {
	value string
	ok    bool
}

// breakerStore fails fast with ErrUnavailable while the backend is known to
// be down, so callers degrade to cache misses without waiting on timeouts.
type breakerStore struct {
	next Backend
	cb   *gobreaker.CircuitBreaker
}

// WithBreaker wraps next with a circuit breaker configured by cfg.
func WithBreaker(name string, next Backend, cfg BreakerConfig) Backend {
	threshold := cfg.ConsecutiveFailures
	settings := gobreaker.Settings{
		Name:        name,
		MaxRequests: cfg.MaxRequests,
		Interval:    cfg.Interval,
		Timeout:     cfg.Timeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= threshold
		},
		// ErrClosed is a lifecycle error, not a backend failure.
		IsSuccessful: func(err error) bool {
			return err == nil || errors.Is(err, ErrClosed)
		},
	}

	return &breakerStore{next: next, cb: gobreaker.NewCircuitBreaker(settings)}
}

func (b *breakerStore) Get(ctx context.Context, key string) (string, bool, error) {
	res, err := b.cb.Execute(func() (interface{}, error) {
		value, ok, err := b.next.Get(ctx, key)
		if err != nil {
			return nil, err
		}
		return getResult{value: value, ok: ok}, nil
	})
	if err != nil {
		return "", false, b.wrap(err)
	}
	r := res.(getResult)
	return r.value, r.ok, nil
}

func (b *breakerStore) Set(ctx context.Context, key, value string, ttl time.Duration) error {
	_, err := b.cb.Execute(func() (interface{}, error) {
		return nil, b.next.Set(ctx, key, value, ttl)
	})
	return b.wrap(err)
}

func (b *breakerStore) Delete(ctx context.Context, key string) error {
	_, err := b.cb.Execute(func() (interface{}, error) {
		return nil, b.next.Delete(ctx, key)
	})
	return b.wrap(err)
}

// Close bypasses the breaker so that shutdown always reaches the backend.
func (b *breakerStore) Close() error {
	return b.next.Close()
}

// State reports the current breaker state, mostly for diagnostics.
func (b *breakerStore) State() gobreaker.State {
	return b.cb.State()
}

func (b *breakerStore) wrap(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	return err
}
