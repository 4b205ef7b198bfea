package store

import (
	"context"

	repository "github.com/goliatone/go-repository-bun"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// CreateMenu inserts a new menu.
func (s *Store) CreateMenu(ctx context.Context, in MenuInput) (*Menu, error) {
	rec := &Menu{ID: uuid.New(), Title: in.Title, Description: in.Description}

	err := s.db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		_, err := s.menus.CreateTx(ctx, tx, rec)
		return err
	})
	if err != nil {
		return nil, mapWriteError("create menu", err)
	}

	rec.SubMenus = []*SubMenu{}
	return rec, nil
}

// UpdateMenu replaces the title and description of a menu and returns it
// hydrated.
func (s *Store) UpdateMenu(ctx context.Context, id uuid.UUID, in MenuInput) (*Menu, error) {
	var out *Menu
	err := s.db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		rec := &Menu{ID: id, Title: in.Title, Description: in.Description}
		if err := updateColumns(ctx, tx, rec, "title", "description"); err != nil {
			return err
		}

		var err error
		out, err = loadMenu(ctx, tx, id)
		return err
	})
	if err != nil {
		return nil, mapWriteError("update menu", err)
	}
	return out, nil
}

// DeleteMenu removes a menu with its submenus and their dishes. The returned
// menu is the state right before deletion.
func (s *Store) DeleteMenu(ctx context.Context, id uuid.UUID) (*Menu, error) {
	var out *Menu
	err := s.db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		m, err := loadMenu(ctx, tx, id)
		if err != nil {
			return err
		}

		if ids := subMenuIDs(m.SubMenus); len(ids) > 0 {
			err = s.dishes.DeleteWhereTx(ctx, tx, func(q *bun.DeleteQuery) *bun.DeleteQuery {
				return q.Where("submenu_id IN (?)", bun.In(ids))
			})
			if err != nil {
				return err
			}
		}

		err = s.submenus.DeleteWhereTx(ctx, tx, func(q *bun.DeleteQuery) *bun.DeleteQuery {
			return q.Where("menu_id = ?", id)
		})
		if err != nil {
			return err
		}

		if err := s.menus.DeleteTx(ctx, tx, &Menu{ID: id}); err != nil {
			return err
		}
		out = m
		return nil
	})
	if err != nil {
		return nil, mapWriteError("delete menu", err)
	}
	return out, nil
}

// CreateSubMenu inserts a submenu under an existing menu.
func (s *Store) CreateSubMenu(ctx context.Context, menuID uuid.UUID, in SubMenuInput) (*SubMenu, error) {
	rec := &SubMenu{ID: uuid.New(), Title: in.Title, Description: in.Description, MenuID: menuID}

	err := s.db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		ok, err := exists(ctx, tx, (*Menu)(nil), menuID)
		if err != nil {
			return err
		}
		if !ok {
			return ErrNotFound
		}
		_, err = s.submenus.CreateTx(ctx, tx, rec)
		return err
	})
	if err != nil {
		return nil, mapWriteError("create submenu", err)
	}

	rec.Dishes = []*Dish{}
	return rec, nil
}

// UpdateSubMenu replaces the title and description of a submenu.
func (s *Store) UpdateSubMenu(ctx context.Context, id uuid.UUID, in SubMenuInput) (*SubMenu, error) {
	var out *SubMenu
	err := s.db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		rec := &SubMenu{ID: id, Title: in.Title, Description: in.Description}
		if err := updateColumns(ctx, tx, rec, "title", "description"); err != nil {
			return err
		}

		var err error
		out, err = loadSubMenu(ctx, tx, id)
		return err
	})
	if err != nil {
		return nil, mapWriteError("update submenu", err)
	}
	return out, nil
}

// DeleteSubMenu removes a submenu and its dishes. The returned submenu is the
// state right before deletion.
func (s *Store) DeleteSubMenu(ctx context.Context, id uuid.UUID) (*SubMenu, error) {
	var out *SubMenu
	err := s.db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		sm, err := loadSubMenu(ctx, tx, id)
		if err != nil {
			return err
		}

		err = s.dishes.DeleteWhereTx(ctx, tx, func(q *bun.DeleteQuery) *bun.DeleteQuery {
			return q.Where("submenu_id = ?", id)
		})
		if err != nil {
			return err
		}

		if err := s.submenus.DeleteTx(ctx, tx, &SubMenu{ID: id}); err != nil {
			return err
		}
		out = sm
		return nil
	})
	if err != nil {
		return nil, mapWriteError("delete submenu", err)
	}
	return out, nil
}

// CreateDish inserts a dish under an existing submenu. The returned dish
// carries its submenu so the owning menu is known.
func (s *Store) CreateDish(ctx context.Context, submenuID uuid.UUID, in DishInput) (*Dish, error) {
	rec := &Dish{
		ID:          uuid.New(),
		Title:       in.Title,
		Description: in.Description,
		Price:       in.Price,
		SubMenuID:   submenuID,
	}

	err := s.db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		parent := new(SubMenu)
		err := tx.NewSelect().Model(parent).Where("?TableAlias.id = ?", submenuID).Scan(ctx)
		if err != nil {
			return mapReadError("get submenu", err)
		}

		if _, err := s.dishes.CreateTx(ctx, tx, rec); err != nil {
			return err
		}
		rec.SubMenu = parent
		return nil
	})
	if err != nil {
		return nil, mapWriteError("create dish", err)
	}
	return rec, nil
}

// UpdateDish replaces the title, description and price of a dish.
func (s *Store) UpdateDish(ctx context.Context, id uuid.UUID, in DishInput) (*Dish, error) {
	var out *Dish
	err := s.db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		rec := &Dish{ID: id, Title: in.Title, Description: in.Description, Price: in.Price}
		if err := updateColumns(ctx, tx, rec, "title", "description", "price"); err != nil {
			return err
		}

		var err error
		out, err = loadDish(ctx, tx, id)
		return err
	})
	if err != nil {
		return nil, mapWriteError("update dish", err)
	}
	return out, nil
}

// DeleteDish removes a dish. The returned dish is the state right before
// deletion, including its submenu.
func (s *Store) DeleteDish(ctx context.Context, id uuid.UUID) (*Dish, error) {
	var out *Dish
	err := s.db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		d, err := loadDish(ctx, tx, id)
		if err != nil {
			return err
		}
		if err := s.dishes.DeleteTx(ctx, tx, &Dish{ID: id}); err != nil {
			return err
		}
		out = d
		return nil
	})
	if err != nil {
		return nil, mapWriteError("delete dish", err)
	}
	return out, nil
}

// Seed bulk inserts a dataset in parent-before-child order within a single
// transaction.
func (s *Store) Seed(ctx context.Context, menus []*Menu, submenus []*SubMenu, dishes []*Dish) error {
	err := s.db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		if err := createMany(ctx, tx, s.menus, menus); err != nil {
			return err
		}
		if err := createMany(ctx, tx, s.submenus, submenus); err != nil {
			return err
		}
		return createMany(ctx, tx, s.dishes, dishes)
	})
	if err != nil {
		return mapWriteError("seed", err)
	}
	return nil
}

func createMany[T any](ctx context.Context, tx bun.IDB, repo repository.Repository[T], records []T) error {
	if len(records) == 0 {
		return nil
	}
	_, err := repo.CreateManyTx(ctx, tx, records)
	return err
}

func updateColumns(ctx context.Context, tx bun.IDB, model any, columns ...string) error {
	res, err := tx.NewUpdate().Model(model).Column(columns...).WherePK().Exec(ctx)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

func subMenuIDs(submenus []*SubMenu) []uuid.UUID {
	ids := make([]uuid.UUID, 0, len(submenus))
	for _, sm := range submenus {
		ids = append(ids, sm.ID)
	}
	return ids
}
