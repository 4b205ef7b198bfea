package menucache

import (
	"context"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/goliatone/go-menu-cache/cache"
	"github.com/goliatone/go-menu-cache/store"
)

// plan is the set of cache changes that follow one committed write. Items
// are refreshed with a fresh answer, drops are removed outright.
type plan struct {
	items []planItem
	drops []string
}

type planItem struct {
	key   string
	value any
}

func (p *plan) set(key string, value any) {
	p.items = append(p.items, planItem{key: key, value: value})
}

func (p *plan) drop(keys ...string) {
	p.drops = append(p.drops, keys...)
}

// Keys lists every key the plan touches, items first.
func (p plan) Keys() []string {
	keys := make([]string, 0, len(p.items)+len(p.drops))
	for _, it := range p.items {
		keys = append(keys, it.key)
	}
	return append(keys, p.drops...)
}

func menuWritePlan(a MenuAnswer) plan {
	var p plan
	p.set(cache.MenuKey(a.ID), a)
	p.drop(cache.MenuListKey())
	return p
}

func menuDeletePlan(m *store.Menu) plan {
	var p plan
	p.drop(cache.MenuKey(m.ID), cache.MenuListKey(), cache.SubMenuListKey(m.ID))
	for _, sm := range m.SubMenus {
		p.drop(cache.SubMenuKey(sm.ID), cache.DishListKey(sm.ID))
		for _, d := range sm.Dishes {
			p.drop(cache.DishKey(d.ID))
		}
	}
	return p
}

func subMenuWritePlan(a SubMenuAnswer, menuID uuid.UUID) plan {
	var p plan
	p.set(cache.SubMenuKey(a.ID), a)
	p.drop(cache.MenuKey(menuID), cache.SubMenuListKey(menuID), cache.MenuListKey())
	return p
}

func subMenuDeletePlan(sm *store.SubMenu) plan {
	var p plan
	p.drop(
		cache.SubMenuKey(sm.ID),
		cache.MenuKey(sm.MenuID),
		cache.SubMenuListKey(sm.MenuID),
		cache.MenuListKey(),
		cache.DishListKey(sm.ID),
	)
	for _, d := range sm.Dishes {
		p.drop(cache.DishKey(d.ID))
	}
	return p
}

func dishWritePlan(a DishAnswer, submenuID, menuID uuid.UUID) plan {
	var p plan
	p.set(cache.DishKey(a.ID), a)
	p.drop(ancestorKeys(submenuID, menuID)...)
	return p
}

func dishDeletePlan(d *store.Dish) plan {
	var p plan
	p.drop(cache.DishKey(d.ID))
	p.drop(ancestorKeys(d.SubMenuID, d.MenuID())...)
	return p
}

func ancestorKeys(submenuID, menuID uuid.UUID) []string {
	return []string{
		cache.MenuKey(menuID),
		cache.SubMenuKey(submenuID),
		cache.DishListKey(submenuID),
		cache.SubMenuListKey(menuID),
		cache.MenuListKey(),
	}
}

// seedPlan treats a bulk load as one create per entity.
func seedPlan(menus []*store.Menu) plan {
	var p plan
	p.drop(cache.MenuListKey())
	for _, m := range menus {
		p.drop(cache.MenuKey(m.ID), cache.SubMenuListKey(m.ID))
		for _, sm := range m.SubMenus {
			p.drop(cache.SubMenuKey(sm.ID), cache.DishListKey(sm.ID))
			for _, d := range sm.Dishes {
				p.drop(cache.DishKey(d.ID))
			}
		}
	}
	return p
}

// apply runs every step of p even when earlier steps fail. It is detached from
// the caller's cancellation since the store change is already committed.
func (s *Service) apply(ctx context.Context, p plan) {
	ctx = context.WithoutCancel(ctx)

	for _, it := range p.items {
		if err := cache.SetJSON(ctx, s.cache, it.key, it.value, s.ttl); err != nil {
			s.cacheFailed("set", it.key, err)
		}
	}

	for _, key := range p.drops {
		if err := s.cache.Delete(ctx, key); err != nil {
			s.cacheFailed("delete", key, err)
			continue
		}
		s.metrics.invalidated()
	}
}

func (s *Service) cacheFailed(op, key string, err error) {
	s.metrics.failed(op)
	s.logger.Warn("cache operation failed",
		zap.String("op", op),
		zap.String("key", key),
		zap.Error(err),
	)
}
