package di

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/uptrace/bun"
	"go.uber.org/zap"

	"github.com/goliatone/go-menu-cache/api"
	"github.com/goliatone/go-menu-cache/cache"
	"github.com/goliatone/go-menu-cache/internal/config"
	"github.com/goliatone/go-menu-cache/internal/export"
	"github.com/goliatone/go-menu-cache/menucache"
	"github.com/goliatone/go-menu-cache/store"
)

// Container owns the process-wide components and wires them together.
// Components are created by NewContainer, background work begins with
// Start and everything is released by Close.
type Container struct {
	config *config.Config
	logger *zap.Logger

	db       *bun.DB
	store    *store.Store
	cache    cache.Store
	queue    *export.Queue
	registry *prometheus.Registry
	service  *menucache.Service

	closeOnce sync.Once
	closeErr  error
}

// NewContainer opens the database and the cache backend described by cfg
// and builds the service on top of them.
func NewContainer(cfg *config.Config, logger *zap.Logger) (*Container, error) {
	if cfg == nil {
		return nil, errors.New("di: nil config")
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	db, err := store.Open(cfg.StoreConfig())
	if err != nil {
		return nil, err
	}

	kv, err := cache.NewStore(cfg.CacheStoreConfig())
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("di: cache: %w", err)
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	metrics := menucache.NewMetrics(registry)

	queue := export.NewQueue(cfg.ExportQueueConfig(), export.WithLogger(logger.Named("export")))

	entities := store.New(db)
	service := menucache.New(entities, kv,
		menucache.WithLogger(logger.Named("menucache")),
		menucache.WithTTL(cfg.Cache.TTL),
		menucache.WithMetrics(metrics),
		menucache.WithExporter(queue),
	)

	return &Container{
		config:   cfg,
		logger:   logger,
		db:       db,
		store:    entities,
		cache:    kv,
		queue:    queue,
		registry: registry,
		service:  service,
	}, nil
}

// Start creates the schema and launches the export workers.
func (c *Container) Start(ctx context.Context) error {
	if err := c.store.CreateSchema(ctx); err != nil {
		return fmt.Errorf("di: create schema: %w", err)
	}
	// workers outlive the start context and stop on Close
	if err := c.queue.Start(context.WithoutCancel(ctx)); err != nil {
		return err
	}

	c.logger.Info("container started",
		zap.String("driver", c.config.Database.Driver),
		zap.String("cache_backend", c.config.Cache.Backend),
		zap.Int("export_workers", c.config.Export.Workers),
	)
	return nil
}

// Close drains the export queue and releases the cache and the database.
// It is safe to call more than once.
func (c *Container) Close() error {
	c.closeOnce.Do(func() {
		c.closeErr = errors.Join(
			c.queue.Close(),
			c.cache.Close(),
			c.db.Close(),
		)
	})
	return c.closeErr
}

// Handler returns the HTTP API including /metrics.
func (c *Container) Handler() http.Handler {
	router := api.NewRouter(c.service, c.logger.Named("http"), api.Options{
		ServiceName:    c.config.Service.Name,
		Version:        c.config.Service.Version,
		AllowedOrigins: c.config.Server.AllowedOrigins,
		Metrics:        promhttp.HandlerFor(c.registry, promhttp.HandlerOpts{}),
		Files:          c.queue,
	})
	return router.Setup()
}

func (c *Container) Config() *config.Config {
	return c.config
}

func (c *Container) Service() *menucache.Service {
	return c.service
}

func (c *Container) Store() *store.Store {
	return c.store
}

// Cache returns the cache handle shared by the service.
func (c *Container) Cache() cache.Store {
	return c.cache
}

func (c *Container) Exporter() *export.Queue {
	return c.queue
}

// Registry returns the registry the service metrics are registered on.
func (c *Container) Registry() *prometheus.Registry {
	return c.registry
}
