// Package config loads the process configuration from a YAML file and
// MENU_ prefixed environment variables.
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/goliatone/go-menu-cache/cache"
	"github.com/goliatone/go-menu-cache/internal/export"
	"github.com/goliatone/go-menu-cache/store"
)

// EnvPrefix prefixes every environment override, e.g. MENU_SERVER_PORT.
const EnvPrefix = "MENU"

type Config struct {
	Server   ServerConfig   `mapstructure:"server"`
	Database DatabaseConfig `mapstructure:"database"`
	Cache    CacheConfig    `mapstructure:"cache"`
	Export   ExportConfig   `mapstructure:"export"`
	Log      LogConfig      `mapstructure:"log"`
	Service  ServiceConfig  `mapstructure:"service"`
}

type ServerConfig struct {
	Port            int           `mapstructure:"port"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
	AllowedOrigins  []string      `mapstructure:"allowed_origins"`
}

type DatabaseConfig struct {
	Driver       string `mapstructure:"driver"`
	DSN          string `mapstructure:"dsn"`
	MaxOpenConns int    `mapstructure:"max_open_conns"`
}

type CacheConfig struct {
	Backend            string        `mapstructure:"backend"`
	TTL                time.Duration `mapstructure:"ttl"`
	Capacity           int           `mapstructure:"capacity"`
	NumShards          int           `mapstructure:"num_shards"`
	EvictionPercentage int           `mapstructure:"eviction_percentage"`
	Redis              RedisConfig   `mapstructure:"redis"`
}

type RedisConfig struct {
	Addr     string `mapstructure:"addr"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
	Prefix   string `mapstructure:"prefix"`
}

type ExportConfig struct {
	DataDir   string `mapstructure:"data_dir"`
	Workers   int    `mapstructure:"workers"`
	QueueSize int    `mapstructure:"queue_size"`
	// Retention is how long finished export jobs stay pollable.
	Retention time.Duration `mapstructure:"retention"`
}

type LogConfig struct {
	Level       string `mapstructure:"level"`
	Development bool   `mapstructure:"development"`
}

type ServiceConfig struct {
	Name    string `mapstructure:"name"`
	Version string `mapstructure:"version"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", 8000)
	v.SetDefault("server.shutdown_timeout", 15*time.Second)
	v.SetDefault("server.allowed_origins", []string{"*"})

	v.SetDefault("database.driver", store.DriverSQLite)
	v.SetDefault("database.dsn", "file:menu.db?cache=shared&_foreign_keys=on")
	v.SetDefault("database.max_open_conns", 10)

	v.SetDefault("cache.backend", cache.BackendMemory)
	v.SetDefault("cache.ttl", cache.DefaultTTL)
	v.SetDefault("cache.capacity", 10000)
	v.SetDefault("cache.num_shards", 64)
	v.SetDefault("cache.eviction_percentage", 10)
	v.SetDefault("cache.redis.addr", "localhost:6379")
	v.SetDefault("cache.redis.password", "")
	v.SetDefault("cache.redis.db", 0)
	v.SetDefault("cache.redis.prefix", "")

	v.SetDefault("export.data_dir", "data")
	v.SetDefault("export.workers", 2)
	v.SetDefault("export.queue_size", 64)
	v.SetDefault("export.retention", time.Hour)

	v.SetDefault("log.level", "info")
	v.SetDefault("log.development", false)

	v.SetDefault("service.name", "menu-api")
	v.SetDefault("service.version", "1.0.0")
}

// Load reads the configuration. An explicit path must exist; without one,
// config.yaml is looked up in the working directory and /etc/menu-api and
// may be absent.
func Load(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config %s: %w", path, err)
		}
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("/etc/menu-api/")

		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) {
				return nil, fmt.Errorf("failed to read config: %w", err)
			}
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate rejects values the process cannot start with.
func (c *Config) Validate() error {
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("config: server.port %d out of range", c.Server.Port)
	}

	switch c.Database.Driver {
	case store.DriverSQLite, store.DriverPostgres:
	default:
		return fmt.Errorf("config: unsupported database.driver %q", c.Database.Driver)
	}
	if c.Database.DSN == "" {
		return errors.New("config: database.dsn cannot be empty")
	}

	if err := c.CacheStoreConfig().Validate(); err != nil {
		return fmt.Errorf("config: cache: %w", err)
	}

	if c.Export.DataDir == "" {
		return errors.New("config: export.data_dir cannot be empty")
	}
	if c.Export.Workers <= 0 {
		return errors.New("config: export.workers must be greater than 0")
	}
	if c.Export.QueueSize <= 0 {
		return errors.New("config: export.queue_size must be greater than 0")
	}
	if c.Export.Retention <= 0 {
		return errors.New("config: export.retention must be greater than 0")
	}
	return nil
}

// StoreConfig returns the database settings in the form store.Open takes.
func (c *Config) StoreConfig() store.Config {
	return store.Config{
		Driver:       c.Database.Driver,
		DSN:          c.Database.DSN,
		MaxOpenConns: c.Database.MaxOpenConns,
	}
}

// CacheStoreConfig overlays the configured values on the cache defaults.
func (c *Config) CacheStoreConfig() cache.Config {
	cfg := cache.DefaultConfig()
	cfg.Backend = c.Cache.Backend
	cfg.TTL = c.Cache.TTL
	if cfg.MaxTTL < cfg.TTL {
		cfg.MaxTTL = cfg.TTL
	}
	cfg.Capacity = c.Cache.Capacity
	cfg.NumShards = c.Cache.NumShards
	cfg.EvictionPercentage = c.Cache.EvictionPercentage
	cfg.Redis.Addr = c.Cache.Redis.Addr
	cfg.Redis.Password = c.Cache.Redis.Password
	cfg.Redis.DB = c.Cache.Redis.DB
	cfg.Redis.Prefix = c.Cache.Redis.Prefix
	return cfg
}

func (c *Config) ExportQueueConfig() export.Config {
	return export.Config{
		DataDir:   c.Export.DataDir,
		Workers:   c.Export.Workers,
		QueueSize: c.Export.QueueSize,
		Retention: c.Export.Retention,
	}
}

// Addr is the listen address of the HTTP server.
func (c *Config) Addr() string {
	return fmt.Sprintf(":%d", c.Server.Port)
}
