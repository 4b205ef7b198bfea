// Package store persists the menu catalog with bun and exposes hydrated reads
// and transactional writes.
package store

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/uptrace/bun"
)

// Menu is the root of the catalog hierarchy. Titles are unique.
type Menu struct {
	bun.BaseModel `bun:"table:menus,alias:menu"`

	ID          uuid.UUID  `bun:"id,pk,type:varchar(36)" json:"id"`
	Title       string     `bun:"title,type:varchar(60),notnull,unique" json:"title"`
	Description string     `bun:"description,type:varchar(200)" json:"description"`
	SubMenus    []*SubMenu `bun:"rel:has-many,join:id=menu_id" json:"submenus,omitempty"`
}

// SubMenu belongs to a Menu and owns Dishes.
type SubMenu struct {
	bun.BaseModel `bun:"table:submenus,alias:submenu"`

	ID          uuid.UUID `bun:"id,pk,type:varchar(36)" json:"id"`
	Title       string    `bun:"title,type:varchar(60),notnull" json:"title"`
	Description string    `bun:"description,type:varchar(200)" json:"description"`
	MenuID      uuid.UUID `bun:"menu_id,type:varchar(36),notnull" json:"menu_id"`
	Menu        *Menu     `bun:"rel:belongs-to,join:menu_id=id" json:"-"`
	Dishes      []*Dish   `bun:"rel:has-many,join:id=submenu_id" json:"dishes,omitempty"`
}

// Dish belongs to a SubMenu.
type Dish struct {
	bun.BaseModel `bun:"table:dishes,alias:dish"`

	ID          uuid.UUID       `bun:"id,pk,type:varchar(36)" json:"id"`
	Title       string          `bun:"title,type:varchar(60),notnull" json:"title"`
	Description string          `bun:"description,type:varchar(200)" json:"description"`
	Price       decimal.Decimal `bun:"price,type:decimal(10,2),notnull" json:"price"`
	SubMenuID   uuid.UUID       `bun:"submenu_id,type:varchar(36),notnull" json:"submenu_id"`
	SubMenu     *SubMenu        `bun:"rel:belongs-to,join:submenu_id=id" json:"-"`
}

// MenuID returns the id of the menu owning the dish. It is only known when
// the dish was loaded with its submenu.
func (d *Dish) MenuID() uuid.UUID {
	if d == nil || d.SubMenu == nil {
		return uuid.Nil
	}
	return d.SubMenu.MenuID
}

// MenuInput carries the writable fields of a Menu.
type MenuInput struct {
	Title       string
	Description string
}

// SubMenuInput carries the writable fields of a SubMenu.
type SubMenuInput struct {
	Title       string
	Description string
}

// DishInput carries the writable fields of a Dish.
type DishInput struct {
	Title       string
	Description string
	Price       decimal.Decimal
}
