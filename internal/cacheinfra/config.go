package cacheinfra

import (
	"errors"
	"time"
)

// Supported cache backends.
const (
	BackendMemory = "memory"
	BackendRedis  = "redis"
)

var (
	// ErrClosed is returned by every operation issued after Close.
	ErrClosed = errors.New("cache: store closed")
	// ErrUnavailable is returned when the backend cannot be reached or the
	// circuit breaker in front of it is open.
	ErrUnavailable = errors.New("cache: backend unavailable")
)

// Config holds the configuration for the cache backends.
type Config struct {
	// Backend selects the store implementation: "memory" or "redis".
	Backend string

	// TTL is the default time-to-live applied when Set is called with a
	// non-positive ttl. Must be greater than 0.
	TTL time.Duration

	// MaxTTL bounds the lifetime of any entry held by the memory backend.
	// Entries never outlive it, whatever ttl they were stored with.
	MaxTTL time.Duration

	// Capacity defines the maximum number of entries that the memory
	// backend can store. Must be greater than 0.
	Capacity int

	// NumShards determines the number of memory cache shards.
	// Must be greater than 0.
	NumShards int

	// EvictionPercentage specifies what percentage of entries to evict
	// when the memory cache reaches its capacity. Must be between 1-100.
	EvictionPercentage int

	// EvictionInterval sets how often the memory cache checks for expired
	// entries. Zero value uses the sturdyc default.
	EvictionInterval time.Duration

	Redis RedisConfig

	// Breaker wraps networked backends with a circuit breaker.
	// If nil, no breaker is installed.
	Breaker *BreakerConfig
}

// RedisConfig configures the networked backend.
type RedisConfig struct {
	Addr        string
	Password    string
	DB          int
	Prefix      string
	DialTimeout time.Duration
}

// BreakerConfig configures the circuit breaker placed in front of a
// networked backend.
type BreakerConfig struct {
	// MaxRequests is the number of probes allowed while half-open.
	MaxRequests uint32
	// Interval is the cyclic period in which the closed state clears its
	// counts. Zero never clears them.
	Interval time.Duration
	// Timeout is how long the breaker stays open before probing again.
	Timeout time.Duration
	// ConsecutiveFailures trips the breaker once reached.
	ConsecutiveFailures uint32
}

// DefaultConfig returns a Config with sensible defaults for most use cases.
func DefaultConfig() Config {
	return Config{
		Backend:            BackendMemory,
		TTL:                600 * time.Second,
		MaxTTL:             24 * time.Hour,
		Capacity:           10000,
		NumShards:          64,
		EvictionPercentage: 10,
		Redis: RedisConfig{
			Addr:        "localhost:6379",
			DialTimeout: 2 * time.Second,
		},
		Breaker: &BreakerConfig{
			MaxRequests:         1,
			Timeout:             30 * time.Second,
			ConsecutiveFailures: 5,
		},
	}
}

// Validate checks if the configuration values are valid.
// Returns an error if any configuration parameter is invalid.
func (c Config) Validate() error {
	switch c.Backend {
	case BackendMemory, BackendRedis:
	default:
		return &ConfigError{Field: "Backend", Message: "must be one of memory, redis"}
	}

	if c.TTL <= 0 {
		return &ConfigError{Field: "TTL", Message: "must be greater than 0"}
	}

	if c.Backend == BackendMemory {
		if c.MaxTTL < c.TTL {
			return &ConfigError{Field: "MaxTTL", Message: "must not be lower than TTL"}
		}
		if c.Capacity <= 0 {
			return &ConfigError{Field: "Capacity", Message: "must be greater than 0"}
		}
		if c.NumShards <= 0 {
			return &ConfigError{Field: "NumShards", Message: "must be greater than 0"}
		}
		if c.EvictionPercentage < 1 || c.EvictionPercentage > 100 {
			return &ConfigError{Field: "EvictionPercentage", Message: "must be between 1 and 100"}
		}
	}

	if c.Backend == BackendRedis && c.Redis.Addr == "" {
		return &ConfigError{Field: "Redis.Addr", Message: "cannot be empty"}
	}

	if c.Breaker != nil {
		if c.Breaker.Timeout < 0 {
			return &ConfigError{Field: "Breaker.Timeout", Message: "must be non-negative"}
		}
		if c.Breaker.ConsecutiveFailures == 0 {
			return &ConfigError{Field: "Breaker.ConsecutiveFailures", Message: "must be greater than 0"}
		}
	}

	return nil
}

// ConfigError represents a configuration validation error.
type ConfigError struct {
	Field   string
	Message string
}

// Error implements the error interface.
func (e *ConfigError) Error() string {
	return "config error in field " + e.Field + ": " + e.Message
}
