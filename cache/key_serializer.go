package cache

import (
	"fmt"
	"strings"
)

// KeySeparator defines the delimiter used between cache key segments.
const KeySeparator = ":"

// Entity kinds used as the first key segment.
const (
	KindMenu    = "menu"
	KindSubMenu = "submenu"
	KindDish    = "dish"
)

// List key literals. Submenu and dish lists are scoped by their parent id.
const (
	ListMenus    = "menus"
	ListSubMenus = "submenus"
	ListDishes   = "dishes"
)

// defaultKeySerializer joins the kind and its arguments with KeySeparator.
// Arguments are rendered with their String method when they have one, which
// keeps uuid.UUID values in their canonical textual form.
type defaultKeySerializer struct{}

// NewDefaultKeySerializer creates a new instance of the default key serializer.
func NewDefaultKeySerializer() KeySerializer {
	return &defaultKeySerializer{}
}

var keys = NewDefaultKeySerializer()

// SerializeKey builds "kind" or "kind:arg1:arg2".
func (s *defaultKeySerializer) SerializeKey(kind string, args ...any) string {
	if len(args) == 0 {
		return kind
	}

	parts := make([]string, 0, len(args)+1)
	parts = append(parts, kind)

	for _, arg := range args {
		parts = append(parts, s.serializeValue(arg))
	}

	return strings.Join(parts, KeySeparator)
}

func (s *defaultKeySerializer) serializeValue(v any) string {
	switch val := v.(type) {
	case nil:
		return "nil"
	case string:
		return val
	case fmt.Stringer:
		return val.String()
	default:
		return fmt.Sprintf("%v", val)
	}
}

// ItemKey returns the single-item key "{kind}:{id}".
func ItemKey(kind string, id any) string {
	return keys.SerializeKey(kind, id)
}

// MenuKey returns "menu:{id}".
func MenuKey(id any) string { return ItemKey(KindMenu, id) }

// SubMenuKey returns "submenu:{id}".
func SubMenuKey(id any) string { return ItemKey(KindSubMenu, id) }

// DishKey returns "dish:{id}".
func DishKey(id any) string { return ItemKey(KindDish, id) }

// MenuListKey returns the key of the menu list, "menus".
func MenuListKey() string {
	return keys.SerializeKey(ListMenus)
}

// SubMenuListKey returns "submenus:{menu_id}".
func SubMenuListKey(menuID any) string {
	return keys.SerializeKey(ListSubMenus, menuID)
}

// DishListKey returns "dishes:{submenu_id}".
func DishListKey(submenuID any) string {
	return keys.SerializeKey(ListDishes, submenuID)
}
