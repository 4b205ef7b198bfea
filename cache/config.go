package cache

import (
	"time"

	"github.com/goliatone/go-menu-cache/internal/cacheinfra"
)

// Supported backends.
const (
	BackendMemory = cacheinfra.BackendMemory
	BackendRedis  = cacheinfra.BackendRedis
)

// DefaultTTL is the expiry applied to cache entries unless configured otherwise.
const DefaultTTL = 600 * time.Second

// Config exposes cache configuration options for consumers of the cache package.
type Config struct {
	Backend            string
	TTL                time.Duration
	MaxTTL             time.Duration
	Capacity           int
	NumShards          int
	EvictionPercentage int
	EvictionInterval   time.Duration
	Redis              RedisConfig
	Breaker            *BreakerConfig
}

// RedisConfig mirrors the networked backend options.
type RedisConfig struct {
	Addr        string
	Password    string
	DB          int
	Prefix      string
	DialTimeout time.Duration
}

// BreakerConfig mirrors the circuit breaker options used for networked backends.
type BreakerConfig struct {
	MaxRequests         uint32
	Interval            time.Duration
	Timeout             time.Duration
	ConsecutiveFailures uint32
}

// ConfigError reports an invalid configuration field.
type ConfigError = cacheinfra.ConfigError

// DefaultConfig returns a Config populated with sensible defaults.
func DefaultConfig() Config {
	return convertFromInternal(cacheinfra.DefaultConfig())
}

// Validate checks whether the configuration values are valid.
func (c Config) Validate() error {
	return c.toInternal().Validate()
}

// NewStore constructs the cache backend selected by cfg.Backend.
func NewStore(cfg Config) (Store, error) {
	backend, err := cacheinfra.NewStore(cfg.toInternal())
	if err != nil {
		return nil, err
	}
	return backend, nil
}

func (c Config) toInternal() cacheinfra.Config {
	var breaker *cacheinfra.BreakerConfig
	if c.Breaker != nil {
		breaker = &cacheinfra.BreakerConfig{
			MaxRequests:         c.Breaker.MaxRequests,
			Interval:            c.Breaker.Interval,
			Timeout:             c.Breaker.Timeout,
			ConsecutiveFailures: c.Breaker.ConsecutiveFailures,
		}
	}

	return cacheinfra.Config{
		Backend:            c.Backend,
		TTL:                c.TTL,
		MaxTTL:             c.MaxTTL,
		Capacity:           c.Capacity,
		NumShards:          c.NumShards,
		EvictionPercentage: c.EvictionPercentage,
		EvictionInterval:   c.EvictionInterval,
		Redis: cacheinfra.RedisConfig{
			Addr:        c.Redis.Addr,
			Password:    c.Redis.Password,
			DB:          c.Redis.DB,
			Prefix:      c.Redis.Prefix,
			DialTimeout: c.Redis.DialTimeout,
		},
		Breaker: breaker,
	}
}

func convertFromInternal(cfg cacheinfra.Config) Config {
	var breaker *BreakerConfig
	if cfg.Breaker != nil {
		breaker = &BreakerConfig{
			MaxRequests:         cfg.Breaker.MaxRequests,
			Interval:            cfg.Breaker.Interval,
			Timeout:             cfg.Breaker.Timeout,
			ConsecutiveFailures: cfg.Breaker.ConsecutiveFailures,
		}
	}

	return Config{
		Backend:            cfg.Backend,
		TTL:                cfg.TTL,
		MaxTTL:             cfg.MaxTTL,
		Capacity:           cfg.Capacity,
		NumShards:          cfg.NumShards,
		EvictionPercentage: cfg.EvictionPercentage,
		EvictionInterval:   cfg.EvictionInterval,
		Redis: RedisConfig{
			Addr:        cfg.Redis.Addr,
			Password:    cfg.Redis.Password,
			DB:          cfg.Redis.DB,
			Prefix:      cfg.Redis.Prefix,
			DialTimeout: cfg.Redis.DialTimeout,
		},
		Breaker: breaker,
	}
}
