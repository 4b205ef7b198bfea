package menucache

import (
	_ "embed"
	"encoding/json"
	"fmt"

	"github.com/goliatone/go-menu-cache/store"
)

//go:embed seed/menus.json
var defaultSeed []byte

// SeedData is a nested catalog: menus carry submenus carry dishes.
type SeedData struct {
	Menus []*store.Menu
}

// ParseSeed decodes a nested JSON catalog.
func ParseSeed(data []byte) (SeedData, error) {
	var menus []*store.Menu
	if err := json.Unmarshal(data, &menus); err != nil {
		return SeedData{}, fmt.Errorf("menucache: parse seed: %w", err)
	}
	return SeedData{Menus: menus}, nil
}

// DefaultSeed returns the embedded dataset.
func DefaultSeed() (SeedData, error) {
	return ParseSeed(defaultSeed)
}

// Flatten splits the tree into parent-before-child slices, filling in the
// parent ids of every child.
func (d SeedData) Flatten() ([]*store.Menu, []*store.SubMenu, []*store.Dish) {
	var (
		menus    []*store.Menu
		submenus []*store.SubMenu
		dishes   []*store.Dish
	)

	for _, m := range d.Menus {
		menus = append(menus, &store.Menu{ID: m.ID, Title: m.Title, Description: m.Description})
		for _, sm := range m.SubMenus {
			submenus = append(submenus, &store.SubMenu{
				ID:          sm.ID,
				Title:       sm.Title,
				Description: sm.Description,
				MenuID:      m.ID,
			})
			for _, dish := range sm.Dishes {
				dishes = append(dishes, &store.Dish{
					ID:          dish.ID,
					Title:       dish.Title,
					Description: dish.Description,
					Price:       dish.Price,
					SubMenuID:   sm.ID,
				})
			}
		}
	}

	return menus, submenus, dishes
}
