package menucache

import (
	"github.com/google/uuid"

	"github.com/goliatone/go-menu-cache/store"
)

// MenuAnswer is the wire form of a menu with its aggregate counts.
type MenuAnswer struct {
	ID            uuid.UUID `json:"id"`
	Title         string    `json:"title"`
	Description   string    `json:"description"`
	SubMenusCount int       `json:"submenus_count"`
	DishesCount   int       `json:"dishes_count"`
}

// SubMenuAnswer is the wire form of a submenu with its dish count.
type SubMenuAnswer struct {
	ID          uuid.UUID `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	DishesCount int       `json:"dishes_count"`
}

// DishAnswer is the wire form of a dish. Price always has two decimals.
type DishAnswer struct {
	ID          uuid.UUID `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Price       string    `json:"price"`
}

// BuildMenuAnswer counts the submenus of m and the dishes across them.
func BuildMenuAnswer(m *store.Menu) MenuAnswer {
	dishes := 0
	for _, sm := range m.SubMenus {
		dishes += len(sm.Dishes)
	}
	return MenuAnswer{
		ID:            m.ID,
		Title:         m.Title,
		Description:   m.Description,
		SubMenusCount: len(m.SubMenus),
		DishesCount:   dishes,
	}
}

func BuildSubMenuAnswer(sm *store.SubMenu) SubMenuAnswer {
	return SubMenuAnswer{
		ID:          sm.ID,
		Title:       sm.Title,
		Description: sm.Description,
		DishesCount: len(sm.Dishes),
	}
}

func BuildDishAnswer(d *store.Dish) DishAnswer {
	return DishAnswer{
		ID:          d.ID,
		Title:       d.Title,
		Description: d.Description,
		Price:       d.Price.StringFixed(2),
	}
}

// BuildMenuAnswers never returns nil so that empty lists encode as [].
func BuildMenuAnswers(menus []*store.Menu) []MenuAnswer {
	out := make([]MenuAnswer, 0, len(menus))
	for _, m := range menus {
		out = append(out, BuildMenuAnswer(m))
	}
	return out
}

func BuildSubMenuAnswers(submenus []*store.SubMenu) []SubMenuAnswer {
	out := make([]SubMenuAnswer, 0, len(submenus))
	for _, sm := range submenus {
		out = append(out, BuildSubMenuAnswer(sm))
	}
	return out
}

func BuildDishAnswers(dishes []*store.Dish) []DishAnswer {
	out := make([]DishAnswer, 0, len(dishes))
	for _, d := range dishes {
		out = append(out, BuildDishAnswer(d))
	}
	return out
}
