package menucache

import (
	"reflect"
	"sort"
	"testing"

	"github.com/google/uuid"

	"github.com/goliatone/go-menu-cache/cache"
	"github.com/goliatone/go-menu-cache/store"
)

func sortedKeys(p plan) []string {
	keys := p.Keys()
	sort.Strings(keys)
	return keys
}

func sorted(keys ...string) []string {
	sort.Strings(keys)
	return keys
}

func TestInvalidationPlans(t *testing.T) {
	menuID := uuid.MustParse("00000000-0000-4000-8000-000000000001")
	subID := uuid.MustParse("00000000-0000-4000-8000-000000000002")
	dishID := uuid.MustParse("00000000-0000-4000-8000-000000000003")
	otherDish := uuid.MustParse("00000000-0000-4000-8000-000000000004")

	sub := &store.SubMenu{
		ID:     subID,
		MenuID: menuID,
		Dishes: []*store.Dish{{ID: dishID}, {ID: otherDish}},
	}
	menu := &store.Menu{ID: menuID, SubMenus: []*store.SubMenu{sub}}
	dish := &store.Dish{ID: dishID, SubMenuID: subID, SubMenu: &store.SubMenu{ID: subID, MenuID: menuID}}

	tests := []struct {
		name      string
		plan      plan
		wantItems []string
		wantKeys  []string
	}{
		{
			name:      "menu write",
			plan:      menuWritePlan(MenuAnswer{ID: menuID}),
			wantItems: []string{cache.MenuKey(menuID)},
			wantKeys:  sorted(cache.MenuKey(menuID), cache.MenuListKey()),
		},
		{
			name: "menu delete drops descendants",
			plan: menuDeletePlan(menu),
			wantKeys: sorted(
				cache.MenuKey(menuID), cache.MenuListKey(), cache.SubMenuListKey(menuID),
				cache.SubMenuKey(subID), cache.DishListKey(subID),
				cache.DishKey(dishID), cache.DishKey(otherDish),
			),
		},
		{
			name:      "submenu write",
			plan:      subMenuWritePlan(SubMenuAnswer{ID: subID}, menuID),
			wantItems: []string{cache.SubMenuKey(subID)},
			wantKeys: sorted(
				cache.SubMenuKey(subID), cache.MenuKey(menuID),
				cache.SubMenuListKey(menuID), cache.MenuListKey(),
			),
		},
		{
			name: "submenu delete drops its dishes",
			plan: subMenuDeletePlan(sub),
			wantKeys: sorted(
				cache.SubMenuKey(subID), cache.MenuKey(menuID), cache.SubMenuListKey(menuID),
				cache.MenuListKey(), cache.DishListKey(subID),
				cache.DishKey(dishID), cache.DishKey(otherDish),
			),
		},
		{
			name:      "dish write",
			plan:      dishWritePlan(DishAnswer{ID: dishID}, subID, menuID),
			wantItems: []string{cache.DishKey(dishID)},
			wantKeys: sorted(
				cache.DishKey(dishID), cache.MenuKey(menuID), cache.SubMenuKey(subID),
				cache.DishListKey(subID), cache.SubMenuListKey(menuID), cache.MenuListKey(),
			),
		},
		{
			name: "dish delete",
			plan: dishDeletePlan(dish),
			wantKeys: sorted(
				cache.DishKey(dishID), cache.MenuKey(menuID), cache.SubMenuKey(subID),
				cache.DishListKey(subID), cache.SubMenuListKey(menuID), cache.MenuListKey(),
			),
		},
		{
			name: "seed",
			plan: seedPlan([]*store.Menu{menu}),
			wantKeys: sorted(
				cache.MenuListKey(), cache.MenuKey(menuID), cache.SubMenuListKey(menuID),
				cache.SubMenuKey(subID), cache.DishListKey(subID),
				cache.DishKey(dishID), cache.DishKey(otherDish),
			),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var items []string
			for _, it := range tt.plan.items {
				items = append(items, it.key)
			}
			if !reflect.DeepEqual(items, tt.wantItems) {
				t.Errorf("items = %v, want %v", items, tt.wantItems)
			}
			if got := sortedKeys(tt.plan); !reflect.DeepEqual(got, tt.wantKeys) {
				t.Errorf("keys = %v, want %v", got, tt.wantKeys)
			}
		})
	}
}

func TestInvalidationPlans_ListsAreScoped(t *testing.T) {
	menuA, menuB := uuid.New(), uuid.New()
	subA := uuid.New()

	p := dishWritePlan(DishAnswer{ID: uuid.New()}, subA, menuA)
	for _, key := range p.Keys() {
		if key == cache.SubMenuListKey(menuB) {
			t.Errorf("writing a dish of menu A must not touch lists of menu B")
		}
	}
}
