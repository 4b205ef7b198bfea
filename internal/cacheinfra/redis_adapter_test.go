package cacheinfra

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
)

func newTestRedisStore(t *testing.T, prefix string) (*redisStore, *miniredis.Miniredis) {
	t.Helper()

	mr := miniredis.RunT(t)

	cfg := DefaultConfig()
	cfg.Backend = BackendRedis
	cfg.Redis.Addr = mr.Addr()
	cfg.Redis.Prefix = prefix

	store, err := NewRedisStore(cfg)
	if err != nil {
		t.Fatalf("NewRedisStore() failed: %v", err)
	}
	t.Cleanup(func() { store.Close() })

	return store, mr
}

func TestRedisStore_GetSetDelete(t *testing.T) {
	ctx := context.Background()
	store, mr := newTestRedisStore(t, "")

	if _, ok, err := store.Get(ctx, "menus"); err != nil || ok {
		t.Fatalf("expected miss without error, got ok=%v err=%v", ok, err)
	}

	if err := store.Set(ctx, "menus", `[]`, 30*time.Second); err != nil {
		t.Fatalf("Set() failed: %v", err)
	}

	value, ok, err := store.Get(ctx, "menus")
	if err != nil || !ok || value != `[]` {
		t.Fatalf("expected hit with [], got value=%q ok=%v err=%v", value, ok, err)
	}

	if ttl := mr.TTL("menus"); ttl != 30*time.Second {
		t.Errorf("expected ttl of 30s, got %v", ttl)
	}

	if err := store.Delete(ctx, "menus"); err != nil {
		t.Fatalf("Delete() failed: %v", err)
	}
	if mr.Exists("menus") {
		t.Error("expected key to be removed from redis")
	}
	if err := store.Delete(ctx, "menus"); err != nil {
		t.Errorf("deleting an absent key should be a no-op, got %v", err)
	}
}

func TestRedisStore_DefaultTTLAndExpiry(t *testing.T) {
	ctx := context.Background()
	store, mr := newTestRedisStore(t, "")

	if err := store.Set(ctx, "menu:1", "v", 0); err != nil {
		t.Fatalf("Set() failed: %v", err)
	}
	if ttl := mr.TTL("menu:1"); ttl != 600*time.Second {
		t.Errorf("expected default ttl of 600s, got %v", ttl)
	}

	mr.FastForward(601 * time.Second)

	if _, ok, err := store.Get(ctx, "menu:1"); err != nil || ok {
		t.Errorf("expected expired key to read as a miss, got ok=%v err=%v", ok, err)
	}
}

func TestRedisStore_Prefix(t *testing.T) {
	ctx := context.Background()
	store, mr := newTestRedisStore(t, "menu-api")

	if err := store.Set(ctx, "dish:1", "v", time.Minute); err != nil {
		t.Fatalf("Set() failed: %v", err)
	}

	got, err := mr.Get("menu-api:dish:1")
	if err != nil || got != "v" {
		t.Errorf("expected prefixed key in redis, got %q err=%v", got, err)
	}
}

func TestRedisStore_Unavailable(t *testing.T) {
	ctx := context.Background()
	store, mr := newTestRedisStore(t, "")
	mr.Close()

	if _, _, err := store.Get(ctx, "menus"); !errors.Is(err, ErrUnavailable) {
		t.Errorf("expected ErrUnavailable, got %v", err)
	}
}

func TestRedisStore_CloseIsIdempotent(t *testing.T) {
	ctx := context.Background()
	store, _ := newTestRedisStore(t, "")

	if err := store.Close(); err != nil {
		t.Fatalf("Close() failed: %v", err)
	}
	if err := store.Close(); err != nil {
		t.Errorf("second Close() should return the first result, got %v", err)
	}
	if _, _, err := store.Get(ctx, "menus"); !errors.Is(err, ErrClosed) {
		t.Errorf("expected ErrClosed after Close, got %v", err)
	}
}
