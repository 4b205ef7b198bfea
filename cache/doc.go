// Package cache provides the key-value cache abstraction and the key naming
// scheme used by the menu service.
//
// # Overview
//
// This package exports:
//
//   - Store: the capability set {Get, Set, Delete, Close} every backend implements
//   - KeySerializer: builds stable cache keys from an entity kind and its ids
//   - GetJSON / SetJSON: typed helpers storing values as JSON text
//
// Two backends are available and selected at process start through Config.Backend:
//
//   - "memory": an in-process sturdyc client with per-key expiry
//   - "redis": a go-redis client, optionally behind a circuit breaker
//
// # Basic Usage
//
//	store, err := cache.NewStore(cache.DefaultConfig())
//	if err != nil {
//		return err
//	}
//	defer store.Close()
//
//	_ = cache.SetJSON(ctx, store, cache.MenuKey(id), answer, 0)
//	answer, ok, err := cache.GetJSON[MenuAnswer](ctx, store, cache.MenuKey(id))
//
// # Key Layout
//
// Keys are reproduced exactly so that they can be inspected in redis:
//
//	menu:{id}            single menu
//	submenu:{id}         single submenu
//	dish:{id}            single dish
//	menus                menu list
//	submenus:{menu_id}   submenus of one menu
//	dishes:{submenu_id}  dishes of one submenu
//
// List keys are scoped by parent id so that lists of two different parents
// never share an entry.
//
// # Error Handling
//
// A missing key is never an error. Backends report ErrUnavailable when they
// cannot be reached and ErrClosed once closed; callers are expected to treat
// both as a miss and carry on with the source of truth.
package cache
