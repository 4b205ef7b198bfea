package store

import (
	"context"

	repository "github.com/goliatone/go-repository-bun"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// Store is the relational source of truth for menus, submenus and dishes.
// Writes run in a single transaction each; reads return hydrated entities.
type Store struct {
	db       *bun.DB
	menus    repository.Repository[*Menu]
	submenus repository.Repository[*SubMenu]
	dishes   repository.Repository[*Dish]
}

// New creates a Store on top of an open bun database.
func New(db *bun.DB) *Store {
	return &Store{
		db: db,
		menus: repository.NewRepository[*Menu](db, repository.ModelHandlers[*Menu]{
			NewRecord:     func() *Menu { return &Menu{} },
			GetID:         func(m *Menu) uuid.UUID { return m.ID },
			SetID:         func(m *Menu, id uuid.UUID) { m.ID = id },
			GetIdentifier: func() string { return "title" },
		}),
		submenus: repository.NewRepository[*SubMenu](db, repository.ModelHandlers[*SubMenu]{
			NewRecord:     func() *SubMenu { return &SubMenu{} },
			GetID:         func(s *SubMenu) uuid.UUID { return s.ID },
			SetID:         func(s *SubMenu, id uuid.UUID) { s.ID = id },
			GetIdentifier: func() string { return "id" },
		}),
		dishes: repository.NewRepository[*Dish](db, repository.ModelHandlers[*Dish]{
			NewRecord:     func() *Dish { return &Dish{} },
			GetID:         func(d *Dish) uuid.UUID { return d.ID },
			SetID:         func(d *Dish, id uuid.UUID) { d.ID = id },
			GetIdentifier: func() string { return "id" },
		}),
	}
}

// DB exposes the underlying database handle.
func (s *Store) DB() *bun.DB {
	return s.db
}

// CreateSchema creates the catalog tables when they do not exist yet.
func (s *Store) CreateSchema(ctx context.Context) error {
	models := []struct {
		model any
		fk    string
	}{
		{model: (*Menu)(nil)},
		{model: (*SubMenu)(nil), fk: `("menu_id") REFERENCES "menus" ("id") ON DELETE CASCADE`},
		{model: (*Dish)(nil), fk: `("submenu_id") REFERENCES "submenus" ("id") ON DELETE CASCADE`},
	}

	return s.db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		for _, m := range models {
			q := tx.NewCreateTable().Model(m.model).IfNotExists()
			if m.fk != "" {
				q = q.ForeignKey(m.fk)
			}
			if _, err := q.Exec(ctx); err != nil {
				return mapWriteError("create schema", err)
			}
		}
		return nil
	})
}

// Menus returns every menu with its submenus and their dishes.
func (s *Store) Menus(ctx context.Context) ([]*Menu, error) {
	menus := make([]*Menu, 0)
	err := s.db.NewSelect().
		Model(&menus).
		Relation("SubMenus").
		Relation("SubMenus.Dishes").
		Order("menu.title ASC").
		Scan(ctx)
	if err != nil {
		return nil, mapReadError("list menus", err)
	}
	return menus, nil
}

// Menu returns one hydrated menu.
func (s *Store) Menu(ctx context.Context, id uuid.UUID) (*Menu, error) {
	return loadMenu(ctx, s.db, id)
}

// SubMenus returns the submenus of a menu with their dishes. An unknown menu
// yields an empty list.
func (s *Store) SubMenus(ctx context.Context, menuID uuid.UUID) ([]*SubMenu, error) {
	submenus := make([]*SubMenu, 0)
	err := s.db.NewSelect().
		Model(&submenus).
		Relation("Dishes").
		Where("submenu.menu_id = ?", menuID).
		Order("submenu.title ASC").
		Scan(ctx)
	if err != nil {
		return nil, mapReadError("list submenus", err)
	}
	return submenus, nil
}

// SubMenu returns one submenu with its dishes.
func (s *Store) SubMenu(ctx context.Context, id uuid.UUID) (*SubMenu, error) {
	return loadSubMenu(ctx, s.db, id)
}

// Dishes returns the dishes of a submenu. An unknown submenu yields an empty
// list.
func (s *Store) Dishes(ctx context.Context, submenuID uuid.UUID) ([]*Dish, error) {
	dishes := make([]*Dish, 0)
	err := s.db.NewSelect().
		Model(&dishes).
		Relation("SubMenu").
		Where("dish.submenu_id = ?", submenuID).
		Order("dish.title ASC").
		Scan(ctx)
	if err != nil {
		return nil, mapReadError("list dishes", err)
	}
	return dishes, nil
}

// Dish returns one dish together with its owning submenu.
func (s *Store) Dish(ctx context.Context, id uuid.UUID) (*Dish, error) {
	return loadDish(ctx, s.db, id)
}

// Snapshot returns the whole catalog ordered by title at every level.
func (s *Store) Snapshot(ctx context.Context) ([]*Menu, error) {
	menus := make([]*Menu, 0)
	err := s.db.NewSelect().
		Model(&menus).
		Relation("SubMenus", func(q *bun.SelectQuery) *bun.SelectQuery {
			return q.Order("submenu.title ASC")
		}).
		Relation("SubMenus.Dishes", func(q *bun.SelectQuery) *bun.SelectQuery {
			return q.Order("dish.title ASC")
		}).
		Order("menu.title ASC").
		Scan(ctx)
	if err != nil {
		return nil, mapReadError("snapshot", err)
	}
	return menus, nil
}

func loadMenu(ctx context.Context, db bun.IDB, id uuid.UUID) (*Menu, error) {
	m := new(Menu)
	err := db.NewSelect().
		Model(m).
		Relation("SubMenus").
		Relation("SubMenus.Dishes").
		Where("?TableAlias.id = ?", id).
		Scan(ctx)
	if err != nil {
		return nil, mapReadError("get menu", err)
	}
	return m, nil
}

func loadSubMenu(ctx context.Context, db bun.IDB, id uuid.UUID) (*SubMenu, error) {
	sm := new(SubMenu)
	err := db.NewSelect().
		Model(sm).
		Relation("Dishes").
		Where("?TableAlias.id = ?", id).
		Scan(ctx)
	if err != nil {
		return nil, mapReadError("get submenu", err)
	}
	return sm, nil
}

func loadDish(ctx context.Context, db bun.IDB, id uuid.UUID) (*Dish, error) {
	d := new(Dish)
	err := db.NewSelect().
		Model(d).
		Relation("SubMenu").
		Where("?TableAlias.id = ?", id).
		Scan(ctx)
	if err != nil {
		return nil, mapReadError("get dish", err)
	}
	return d, nil
}

func exists(ctx context.Context, db bun.IDB, model any, id uuid.UUID) (bool, error) {
	return db.NewSelect().Model(model).Where("id = ?", id).Exists(ctx)
}
