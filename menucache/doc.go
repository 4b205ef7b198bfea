// Package menucache serves the menu catalog through a read-through cache and
// keeps that cache consistent across the Menu, SubMenu and Dish hierarchy.
//
// # Overview
//
// Service sits between the HTTP handlers and the relational store. Reads are
// answered from the cache when possible; writes go to the store first and are
// followed by an invalidation plan that refreshes the written item and drops
// every key holding a count or list the write may have changed.
//
// # Basic Usage
//
//	entities := store.New(db)
//	kv, err := cache.NewStore(cache.DefaultConfig())
//	if err != nil {
//		return err
//	}
//	defer kv.Close()
//
//	svc := menucache.New(entities, kv, menucache.WithLogger(logger))
//	menu, err := svc.CreateMenu(ctx, store.MenuInput{Title: "Lunch"})
//	answers, err := svc.ListMenus(ctx)
//
// # Read Path
//
//  1. Look up the item or list key in the cache
//  2. On a hit, decode and return the cached answer
//  3. On a miss, load the hydrated entity from the store and build the answer
//  4. Cache the answer with the configured TTL and return it
//
// A missing entity is reported as a *NotFoundError and nothing is cached for
// it. Cache failures are logged and read as a miss.
//
// # Invalidation
//
// Counts are derived, so a write at a lower level invalidates every ancestor
// and every list that may contain a stale count:
//
//	create/update menu      set menu:{id}; drop menus
//	delete menu             drop menu:{id}, menus, submenus:{id} and every descendant key
//	create/update submenu   set submenu:{id}; drop menu:{m}, submenus:{m}, menus
//	delete submenu          drop submenu:{id}, menu:{m}, submenus:{m}, menus, dishes:{id}, dish keys
//	create/update dish      set dish:{id}; drop menu:{m}, submenu:{s}, dishes:{s}, submenus:{m}, menus
//	delete dish             drop dish:{id} and the keys above
//
// The plan runs only after the store reported success, on a context that
// ignores the caller's cancellation. Each step is attempted even when an
// earlier one failed.
//
// # Export
//
// ExportToSpreadsheet snapshots the store and hands the JSON to an Exporter
// (see internal/export). ExportStatus polls the job.
package menucache
