package menucache

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/goliatone/go-menu-cache/cache"
	"github.com/goliatone/go-menu-cache/pkg/testsupport"
	"github.com/goliatone/go-menu-cache/store"
)

// recordingCache is an in-memory cache.Store that records every call.
type recordingCache struct {
	mu      sync.Mutex
	data    map[string]string
	calls   []string
	failGet error
	failSet error
	failDel error
}

func newRecordingCache() *recordingCache {
	return &recordingCache{data: make(map[string]string)}
}

func (c *recordingCache) record(op, key string) {
	c.calls = append(c.calls, op+" "+key)
}

func (c *recordingCache) Get(ctx context.Context, key string) (string, bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.record("get", key)
	if err := ctx.Err(); err != nil {
		return "", false, err
	}
	if c.failGet != nil {
		return "", false, c.failGet
	}
	v, ok := c.data[key]
	return v, ok, nil
}

func (c *recordingCache) Set(ctx context.Context, key, value string, ttl time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.record("set", key)
	if err := ctx.Err(); err != nil {
		return err
	}
	if c.failSet != nil {
		return c.failSet
	}
	c.data[key] = value
	return nil
}

func (c *recordingCache) Delete(ctx context.Context, key string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.record("delete", key)
	if err := ctx.Err(); err != nil {
		return err
	}
	if c.failDel != nil {
		return c.failDel
	}
	delete(c.data, key)
	return nil
}

func (c *recordingCache) Close() error { return nil }

func (c *recordingCache) getCalls() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]string(nil), c.calls...)
}

func (c *recordingCache) clearCalls() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.calls = nil
}

// mutations returns the set and delete calls only.
func (c *recordingCache) mutations() []string {
	var out []string
	for _, call := range c.getCalls() {
		if call[:3] != "get" {
			out = append(out, call)
		}
	}
	return out
}

func (c *recordingCache) has(key string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	_, ok := c.data[key]
	return ok
}

// countingStore wraps a real store and counts read calls so tests can tell a
// cache hit from a store fetch.
type countingStore struct {
	*store.Store

	mu       sync.Mutex
	reads    int
	writeErr error
}

func (s *countingStore) read() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.reads++
}

func (s *countingStore) readCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.reads
}

func (s *countingStore) Menus(ctx context.Context) ([]*store.Menu, error) {
	s.read()
	return s.Store.Menus(ctx)
}

func (s *countingStore) Menu(ctx context.Context, id uuid.UUID) (*store.Menu, error) {
	s.read()
	return s.Store.Menu(ctx, id)
}

func (s *countingStore) SubMenus(ctx context.Context, menuID uuid.UUID) ([]*store.SubMenu, error) {
	s.read()
	return s.Store.SubMenus(ctx, menuID)
}

func (s *countingStore) SubMenu(ctx context.Context, id uuid.UUID) (*store.SubMenu, error) {
	s.read()
	return s.Store.SubMenu(ctx, id)
}

func (s *countingStore) Dishes(ctx context.Context, submenuID uuid.UUID) ([]*store.Dish, error) {
	s.read()
	return s.Store.Dishes(ctx, submenuID)
}

func (s *countingStore) Dish(ctx context.Context, id uuid.UUID) (*store.Dish, error) {
	s.read()
	return s.Store.Dish(ctx, id)
}

func (s *countingStore) UpdateDish(ctx context.Context, id uuid.UUID, in store.DishInput) (*store.Dish, error) {
	if s.writeErr != nil {
		return nil, s.writeErr
	}
	return s.Store.UpdateDish(ctx, id, in)
}

func (s *countingStore) DeleteMenu(ctx context.Context, id uuid.UUID) (*store.Menu, error) {
	if s.writeErr != nil {
		return nil, s.writeErr
	}
	return s.Store.DeleteMenu(ctx, id)
}

var errStoreDown = errors.New("connection refused")

type fixture struct {
	store *countingStore
	cache *recordingCache
	svc   *Service
}

func newFixture(t *testing.T, opts ...Option) *fixture {
	t.Helper()

	st := &countingStore{Store: testsupport.NewStore(t)}
	kv := newRecordingCache()
	return &fixture{store: st, cache: kv, svc: New(st, kv, opts...)}
}

// tree creates one menu with one submenu holding one dish.
func (f *fixture) tree(t *testing.T) (MenuAnswer, SubMenuAnswer, DishAnswer) {
	t.Helper()
	ctx := context.Background()

	m, err := f.svc.CreateMenu(ctx, store.MenuInput{Title: "Lunch", Description: "Lunch menu"})
	if err != nil {
		t.Fatalf("CreateMenu() failed: %v", err)
	}
	sm, err := f.svc.CreateSubMenu(ctx, m.ID, store.SubMenuInput{Title: "Soups", Description: "Hot"})
	if err != nil {
		t.Fatalf("CreateSubMenu() failed: %v", err)
	}
	d, err := f.svc.CreateDish(ctx, sm.ID, store.DishInput{Title: "Soup", Description: "Hot soup", Price: mustPrice("5.50")})
	if err != nil {
		t.Fatalf("CreateDish() failed: %v", err)
	}

	f.cache.clearCalls()
	return m, sm, d
}

var _ cache.Store = (*recordingCache)(nil)
var _ EntityStore = (*countingStore)(nil)
