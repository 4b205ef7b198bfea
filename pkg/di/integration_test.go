package di

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"

	"github.com/goliatone/go-menu-cache/cache"
	"github.com/goliatone/go-menu-cache/menucache"
)

func doJSON(t *testing.T, handler http.Handler, method, path string, body any, out any) int {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encode body: %v", err)
		}
	}

	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if out != nil {
		if err := json.Unmarshal(rec.Body.Bytes(), out); err != nil {
			t.Fatalf("decode %s %s response %q: %v", method, path, rec.Body.String(), err)
		}
	}
	return rec.Code
}

func TestIntegration_RedisBackedAPI(t *testing.T) {
	mr := miniredis.RunT(t)

	cfg := testConfig(t)
	cfg.Cache.Backend = cache.BackendRedis
	cfg.Cache.Redis.Addr = mr.Addr()
	cfg.Cache.TTL = time.Minute

	container := newStartedContainer(t, cfg)
	handler := container.Handler()

	var menu menucache.MenuAnswer
	if code := doJSON(t, handler, http.MethodPost, "/api/v1/menus", map[string]string{"title": "Lunch"}, &menu); code != http.StatusCreated {
		t.Fatalf("create menu: got %d", code)
	}

	var sub menucache.SubMenuAnswer
	path := "/api/v1/menus/" + menu.ID.String() + "/submenus"
	if code := doJSON(t, handler, http.MethodPost, path, map[string]string{"title": "Soups"}, &sub); code != http.StatusCreated {
		t.Fatalf("create submenu: got %d", code)
	}

	var dish menucache.DishAnswer
	path += "/" + sub.ID.String() + "/dishes"
	if code := doJSON(t, handler, http.MethodPost, path, map[string]string{"title": "Borscht", "price": "6.5"}, &dish); code != http.StatusCreated {
		t.Fatalf("create dish: got %d", code)
	}
	if dish.Price != "6.50" {
		t.Errorf("Expected price 6.50, got %s", dish.Price)
	}

	var got menucache.MenuAnswer
	if code := doJSON(t, handler, http.MethodGet, "/api/v1/menus/"+menu.ID.String(), nil, &got); code != http.StatusOK {
		t.Fatalf("get menu: got %d", code)
	}
	if got.SubMenusCount != 1 || got.DishesCount != 1 {
		t.Errorf("Expected counts 1/1, got %d/%d", got.SubMenusCount, got.DishesCount)
	}

	// the read landed in redis with the configured ttl
	key := cache.MenuKey(menu.ID)
	if !mr.Exists(key) {
		t.Fatalf("Expected %s in redis, keys: %v", key, mr.Keys())
	}
	if ttl := mr.TTL(key); ttl <= 0 || ttl > time.Minute {
		t.Errorf("Expected ttl within a minute, got %v", ttl)
	}

	// deleting the menu clears every level it owned
	if code := doJSON(t, handler, http.MethodDelete, "/api/v1/menus/"+menu.ID.String(), nil, nil); code != http.StatusOK {
		t.Fatalf("delete menu: got %d", code)
	}
	for _, k := range []string{key, cache.SubMenuKey(sub.ID), cache.DishKey(dish.ID), cache.SubMenuListKey(menu.ID), cache.DishListKey(sub.ID)} {
		if mr.Exists(k) {
			t.Errorf("Expected %s to be invalidated", k)
		}
	}
}

func TestIntegration_RedisOutageDegradesToStore(t *testing.T) {
	mr := miniredis.RunT(t)

	cfg := testConfig(t)
	cfg.Cache.Backend = cache.BackendRedis
	cfg.Cache.Redis.Addr = mr.Addr()

	container := newStartedContainer(t, cfg)
	handler := container.Handler()
	ctx := context.Background()

	if err := container.Service().GenerateMenus(ctx); err != nil {
		t.Fatalf("GenerateMenus() failed: %v", err)
	}

	mr.Close()

	// enough calls to trip the breaker, every one still answered by the store
	for i := 0; i < 10; i++ {
		var menus []menucache.MenuAnswer
		if code := doJSON(t, handler, http.MethodGet, "/api/v1/menus", nil, &menus); code != http.StatusOK {
			t.Fatalf("list menus with redis down: got %d", code)
		}
		if len(menus) != 2 {
			t.Fatalf("Expected 2 menus, got %d", len(menus))
		}
	}

	var menu menucache.MenuAnswer
	if code := doJSON(t, handler, http.MethodPost, "/api/v1/menus", map[string]string{"title": "Late menu"}, &menu); code != http.StatusCreated {
		t.Fatalf("create menu with redis down: got %d", code)
	}
}

func TestIntegration_ExportThroughContainer(t *testing.T) {
	container := newStartedContainer(t, testConfig(t))
	ctx := context.Background()
	svc := container.Service()

	if err := svc.GenerateMenus(ctx); err != nil {
		t.Fatalf("GenerateMenus() failed: %v", err)
	}

	id, err := svc.ExportToSpreadsheet(ctx)
	if err != nil {
		t.Fatalf("ExportToSpreadsheet() failed: %v", err)
	}

	deadline := time.Now().Add(5 * time.Second)
	for {
		st, err := svc.ExportStatus(ctx, id)
		if err != nil {
			t.Fatalf("ExportStatus() failed: %v", err)
		}
		if st.Ready {
			if _, err := container.Exporter().FilePath(st.File); err != nil {
				t.Errorf("FilePath(%q) failed: %v", st.File, err)
			}
			return
		}
		if st.State == "FAILURE" {
			t.Fatalf("export failed")
		}
		if time.Now().After(deadline) {
			t.Fatalf("export not ready, last state %s", st.State)
		}
		time.Sleep(20 * time.Millisecond)
	}
}
