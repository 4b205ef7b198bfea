package di

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/goliatone/go-menu-cache/cache"
	"github.com/goliatone/go-menu-cache/internal/config"
	"github.com/goliatone/go-menu-cache/store"
)

// testConfig returns defaults pointed at a private in-memory database and a
// temporary export directory.
func testConfig(t *testing.T) *config.Config {
	t.Helper()

	cfg, err := config.Load("")
	if err != nil {
		t.Fatalf("config.Load() failed: %v", err)
	}

	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	cfg.Database.Driver = store.DriverSQLite
	cfg.Database.DSN = fmt.Sprintf("file:%s?mode=memory&cache=shared&_foreign_keys=on", name)
	cfg.Database.MaxOpenConns = 1
	cfg.Export.DataDir = filepath.Join(t.TempDir(), "exports")
	cfg.Export.Workers = 1
	return cfg
}

func newStartedContainer(t *testing.T, cfg *config.Config) *Container {
	t.Helper()

	container, err := NewContainer(cfg, nil)
	if err != nil {
		t.Fatalf("NewContainer() failed: %v", err)
	}
	t.Cleanup(func() { container.Close() })

	if err := container.Start(context.Background()); err != nil {
		t.Fatalf("Start() failed: %v", err)
	}
	return container
}

func TestNewContainer(t *testing.T) {
	cfg := testConfig(t)
	cfg.Cache.TTL = 5 * time.Minute

	container := newStartedContainer(t, cfg)

	if container.Service() == nil {
		t.Error("Container should have a non-nil service")
	}
	if container.Store() == nil {
		t.Error("Container should have a non-nil store")
	}
	if container.Cache() == nil {
		t.Error("Container should have a non-nil cache")
	}
	if container.Exporter() == nil {
		t.Error("Container should have a non-nil exporter")
	}
	if container.Registry() == nil {
		t.Error("Container should have a non-nil registry")
	}

	if got := container.Config().Cache.TTL; got != 5*time.Minute {
		t.Errorf("Expected TTL %v, got %v", 5*time.Minute, got)
	}
}

func TestNewContainer_InvalidConfig(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*config.Config)
	}{
		{"unknown driver", func(c *config.Config) { c.Database.Driver = "oracle" }},
		{"unknown cache backend", func(c *config.Config) { c.Cache.Backend = "disk" }},
		{"zero ttl", func(c *config.Config) { c.Cache.TTL = 0 }},
		{"no workers", func(c *config.Config) { c.Export.Workers = 0 }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := testConfig(t)
			tt.mutate(cfg)

			container, err := NewContainer(cfg, nil)
			if err == nil {
				container.Close()
				t.Fatal("NewContainer() should fail")
			}
		})
	}

	if _, err := NewContainer(nil, nil); err == nil {
		t.Error("NewContainer(nil) should fail")
	}
}

func TestContainer_StartCreatesSchema(t *testing.T) {
	container := newStartedContainer(t, testConfig(t))
	ctx := context.Background()

	menus, err := container.Store().Menus(ctx)
	if err != nil {
		t.Fatalf("Menus() failed: %v", err)
	}
	if len(menus) != 0 {
		t.Errorf("Expected empty store, got %d menus", len(menus))
	}

	// Start is repeatable
	if err := container.Start(ctx); err != nil {
		t.Fatalf("second Start() failed: %v", err)
	}
}

func TestContainer_ServiceUsesSharedCache(t *testing.T) {
	container := newStartedContainer(t, testConfig(t))
	ctx := context.Background()

	m, err := container.Service().CreateMenu(ctx, store.MenuInput{Title: "Lunch"})
	if err != nil {
		t.Fatalf("CreateMenu() failed: %v", err)
	}

	if _, ok, err := container.Cache().Get(ctx, cache.MenuKey(m.ID)); err != nil || !ok {
		t.Errorf("Expected %s in the shared cache, ok=%v err=%v", cache.MenuKey(m.ID), ok, err)
	}
}

func TestContainer_Handler(t *testing.T) {
	container := newStartedContainer(t, testConfig(t))
	handler := container.Handler()

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
	if rec.Code != http.StatusOK {
		t.Errorf("Expected /health 200, got %d", rec.Code)
	}

	// one miss so the counter family is exported
	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/menus", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("Expected menus 200, got %d", rec.Code)
	}

	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("Expected /metrics 200, got %d", rec.Code)
	}
	for _, name := range []string{"menu_cache_misses_total", "go_goroutines"} {
		if !strings.Contains(rec.Body.String(), name) {
			t.Errorf("Expected %s in metrics output", name)
		}
	}
}

func TestContainer_CloseIdempotent(t *testing.T) {
	container, err := NewContainer(testConfig(t), nil)
	if err != nil {
		t.Fatalf("NewContainer() failed: %v", err)
	}
	if err := container.Start(context.Background()); err != nil {
		t.Fatalf("Start() failed: %v", err)
	}

	if err := container.Close(); err != nil {
		t.Fatalf("Close() failed: %v", err)
	}
	if err := container.Close(); err != nil {
		t.Errorf("second Close() failed: %v", err)
	}

	if _, _, err := container.Cache().Get(context.Background(), "menus"); err == nil {
		t.Error("Expected cache to be closed")
	}
}
