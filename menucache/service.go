package menucache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/goliatone/go-menu-cache/cache"
	"github.com/goliatone/go-menu-cache/internal/export"
	"github.com/goliatone/go-menu-cache/store"
)

// Entity kinds used in errors and metric labels.
const (
	KindMenu    = "menu"
	KindSubMenu = "submenu"
	KindDish    = "dish"
	KindTask    = "task"
)

// EntityStore is the source of truth the service reads from and writes to.
type EntityStore interface {
	Menus(ctx context.Context) ([]*store.Menu, error)
	Menu(ctx context.Context, id uuid.UUID) (*store.Menu, error)
	SubMenus(ctx context.Context, menuID uuid.UUID) ([]*store.SubMenu, error)
	SubMenu(ctx context.Context, id uuid.UUID) (*store.SubMenu, error)
	Dishes(ctx context.Context, submenuID uuid.UUID) ([]*store.Dish, error)
	Dish(ctx context.Context, id uuid.UUID) (*store.Dish, error)
	Snapshot(ctx context.Context) ([]*store.Menu, error)

	CreateMenu(ctx context.Context, in store.MenuInput) (*store.Menu, error)
	UpdateMenu(ctx context.Context, id uuid.UUID, in store.MenuInput) (*store.Menu, error)
	DeleteMenu(ctx context.Context, id uuid.UUID) (*store.Menu, error)
	CreateSubMenu(ctx context.Context, menuID uuid.UUID, in store.SubMenuInput) (*store.SubMenu, error)
	UpdateSubMenu(ctx context.Context, id uuid.UUID, in store.SubMenuInput) (*store.SubMenu, error)
	DeleteSubMenu(ctx context.Context, id uuid.UUID) (*store.SubMenu, error)
	CreateDish(ctx context.Context, submenuID uuid.UUID, in store.DishInput) (*store.Dish, error)
	UpdateDish(ctx context.Context, id uuid.UUID, in store.DishInput) (*store.Dish, error)
	DeleteDish(ctx context.Context, id uuid.UUID) (*store.Dish, error)

	Seed(ctx context.Context, menus []*store.Menu, submenus []*store.SubMenu, dishes []*store.Dish) error
}

// Exporter runs catalog exports in the background.
type Exporter interface {
	Submit(ctx context.Context, payload []byte) (string, error)
	Poll(ctx context.Context, id string) (export.Status, error)
}

// ExportStatus is the service view of an export job.
type ExportStatus struct {
	Ready bool
	State string
	File  string
}

// Option configures a Service.
type Option func(*Service)

func WithLogger(logger *zap.Logger) Option {
	return func(s *Service) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithTTL sets the expiry of cached answers. Non-positive values keep the
// cache default.
func WithTTL(ttl time.Duration) Option {
	return func(s *Service) {
		s.ttl = ttl
	}
}

func WithExporter(exporter Exporter) Option {
	return func(s *Service) {
		s.exporter = exporter
	}
}

func WithMetrics(metrics *Metrics) Option {
	return func(s *Service) {
		s.metrics = metrics
	}
}

// WithSeed replaces the dataset loaded by GenerateMenus.
func WithSeed(seed SeedData) Option {
	return func(s *Service) {
		s.seed = &seed
	}
}

// Service answers catalog reads from the cache when it can and keeps the
// cache consistent after every successful write.
type Service struct {
	store    EntityStore
	cache    cache.Store
	logger   *zap.Logger
	ttl      time.Duration
	exporter Exporter
	metrics  *Metrics
	seed     *SeedData
}

// New creates a Service. The cache handle is owned by the caller.
func New(entities EntityStore, cacheStore cache.Store, opts ...Option) *Service {
	s := &Service{
		store:  entities,
		cache:  cacheStore,
		logger: zap.NewNop(),
		ttl:    cache.DefaultTTL,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// readThrough returns the cached value under key or loads it from the store
// and caches it. Cache failures degrade to a miss.
func readThrough[T any](ctx context.Context, s *Service, kind, key string, load func(context.Context) (T, error)) (T, error) {
	cached, ok, err := cache.GetJSON[T](ctx, s.cache, key)
	switch {
	case err != nil:
		s.cacheFailed("get", key, err)
	case ok:
		s.metrics.hit(kind)
		return cached, nil
	}
	s.metrics.miss(kind)

	value, err := load(ctx)
	if err != nil {
		var zero T
		return zero, err
	}

	if err := cache.SetJSON(ctx, s.cache, key, value, s.ttl); err != nil {
		s.cacheFailed("set", key, err)
	}
	return value, nil
}

// Reads

func (s *Service) GetMenu(ctx context.Context, id uuid.UUID) (MenuAnswer, error) {
	return readThrough(ctx, s, KindMenu, cache.MenuKey(id), func(ctx context.Context) (MenuAnswer, error) {
		m, err := s.store.Menu(ctx, id)
		if err != nil {
			return MenuAnswer{}, mapStoreError(KindMenu, err)
		}
		return BuildMenuAnswer(m), nil
	})
}

func (s *Service) ListMenus(ctx context.Context) ([]MenuAnswer, error) {
	return readThrough(ctx, s, KindMenu, cache.MenuListKey(), func(ctx context.Context) ([]MenuAnswer, error) {
		menus, err := s.store.Menus(ctx)
		if err != nil {
			return nil, mapStoreError(KindMenu, err)
		}
		return BuildMenuAnswers(menus), nil
	})
}

func (s *Service) GetSubMenu(ctx context.Context, id uuid.UUID) (SubMenuAnswer, error) {
	return readThrough(ctx, s, KindSubMenu, cache.SubMenuKey(id), func(ctx context.Context) (SubMenuAnswer, error) {
		sm, err := s.store.SubMenu(ctx, id)
		if err != nil {
			return SubMenuAnswer{}, mapStoreError(KindSubMenu, err)
		}
		return BuildSubMenuAnswer(sm), nil
	})
}

func (s *Service) ListSubMenus(ctx context.Context, menuID uuid.UUID) ([]SubMenuAnswer, error) {
	return readThrough(ctx, s, KindSubMenu, cache.SubMenuListKey(menuID), func(ctx context.Context) ([]SubMenuAnswer, error) {
		submenus, err := s.store.SubMenus(ctx, menuID)
		if err != nil {
			return nil, mapStoreError(KindSubMenu, err)
		}
		return BuildSubMenuAnswers(submenus), nil
	})
}

func (s *Service) GetDish(ctx context.Context, id uuid.UUID) (DishAnswer, error) {
	return readThrough(ctx, s, KindDish, cache.DishKey(id), func(ctx context.Context) (DishAnswer, error) {
		d, err := s.store.Dish(ctx, id)
		if err != nil {
			return DishAnswer{}, mapStoreError(KindDish, err)
		}
		return BuildDishAnswer(d), nil
	})
}

func (s *Service) ListDishes(ctx context.Context, submenuID uuid.UUID) ([]DishAnswer, error) {
	return readThrough(ctx, s, KindDish, cache.DishListKey(submenuID), func(ctx context.Context) ([]DishAnswer, error) {
		dishes, err := s.store.Dishes(ctx, submenuID)
		if err != nil {
			return nil, mapStoreError(KindDish, err)
		}
		return BuildDishAnswers(dishes), nil
	})
}

// Writes. Each one commits to the store first and only then touches the
// cache. A failed store call leaves the cache alone.

func (s *Service) CreateMenu(ctx context.Context, in store.MenuInput) (MenuAnswer, error) {
	m, err := s.store.CreateMenu(ctx, in)
	if err != nil {
		return MenuAnswer{}, mapStoreError(KindMenu, err)
	}
	a := BuildMenuAnswer(m)
	s.apply(ctx, menuWritePlan(a))
	return a, nil
}

func (s *Service) UpdateMenu(ctx context.Context, id uuid.UUID, in store.MenuInput) (MenuAnswer, error) {
	m, err := s.store.UpdateMenu(ctx, id, in)
	if err != nil {
		return MenuAnswer{}, mapStoreError(KindMenu, err)
	}
	a := BuildMenuAnswer(m)
	s.apply(ctx, menuWritePlan(a))
	return a, nil
}

func (s *Service) DeleteMenu(ctx context.Context, id uuid.UUID) error {
	m, err := s.store.DeleteMenu(ctx, id)
	if err != nil {
		return mapStoreError(KindMenu, err)
	}
	s.apply(ctx, menuDeletePlan(m))
	return nil
}

// CreateSubMenu reports a "menu not found" error when the parent is missing.
func (s *Service) CreateSubMenu(ctx context.Context, menuID uuid.UUID, in store.SubMenuInput) (SubMenuAnswer, error) {
	sm, err := s.store.CreateSubMenu(ctx, menuID, in)
	if err != nil {
		return SubMenuAnswer{}, mapStoreError(KindMenu, err)
	}
	a := BuildSubMenuAnswer(sm)
	s.apply(ctx, subMenuWritePlan(a, sm.MenuID))
	return a, nil
}

func (s *Service) UpdateSubMenu(ctx context.Context, id uuid.UUID, in store.SubMenuInput) (SubMenuAnswer, error) {
	sm, err := s.store.UpdateSubMenu(ctx, id, in)
	if err != nil {
		return SubMenuAnswer{}, mapStoreError(KindSubMenu, err)
	}
	a := BuildSubMenuAnswer(sm)
	s.apply(ctx, subMenuWritePlan(a, sm.MenuID))
	return a, nil
}

func (s *Service) DeleteSubMenu(ctx context.Context, id uuid.UUID) error {
	sm, err := s.store.DeleteSubMenu(ctx, id)
	if err != nil {
		return mapStoreError(KindSubMenu, err)
	}
	s.apply(ctx, subMenuDeletePlan(sm))
	return nil
}

// CreateDish reports a "submenu not found" error when the parent is missing.
func (s *Service) CreateDish(ctx context.Context, submenuID uuid.UUID, in store.DishInput) (DishAnswer, error) {
	d, err := s.store.CreateDish(ctx, submenuID, in)
	if err != nil {
		return DishAnswer{}, mapStoreError(KindSubMenu, err)
	}
	a := BuildDishAnswer(d)
	s.apply(ctx, dishWritePlan(a, d.SubMenuID, d.MenuID()))
	return a, nil
}

func (s *Service) UpdateDish(ctx context.Context, id uuid.UUID, in store.DishInput) (DishAnswer, error) {
	d, err := s.store.UpdateDish(ctx, id, in)
	if err != nil {
		return DishAnswer{}, mapStoreError(KindDish, err)
	}
	a := BuildDishAnswer(d)
	s.apply(ctx, dishWritePlan(a, d.SubMenuID, d.MenuID()))
	return a, nil
}

func (s *Service) DeleteDish(ctx context.Context, id uuid.UUID) error {
	d, err := s.store.DeleteDish(ctx, id)
	if err != nil {
		return mapStoreError(KindDish, err)
	}
	s.apply(ctx, dishDeletePlan(d))
	return nil
}

// GenerateMenus loads the seed dataset into the store. Loading it twice
// fails with ErrConflict.
func (s *Service) GenerateMenus(ctx context.Context) error {
	seed := s.seed
	if seed == nil {
		def, err := DefaultSeed()
		if err != nil {
			return err
		}
		seed = &def
	}

	menus, submenus, dishes := seed.Flatten()
	if err := s.store.Seed(ctx, menus, submenus, dishes); err != nil {
		return mapStoreError(KindMenu, err)
	}

	s.logger.Info("seed data loaded",
		zap.Int("menus", len(menus)),
		zap.Int("submenus", len(submenus)),
		zap.Int("dishes", len(dishes)),
	)
	s.apply(ctx, seedPlan(seed.Menus))
	return nil
}

// ExportToSpreadsheet hands a snapshot of the store to the exporter and
// returns the job id. The cache is never consulted.
func (s *Service) ExportToSpreadsheet(ctx context.Context) (string, error) {
	if s.exporter == nil {
		return "", ErrExportUnavailable
	}

	menus, err := s.store.Snapshot(ctx)
	if err != nil {
		return "", mapStoreError(KindMenu, err)
	}

	payload, err := json.Marshal(menus)
	if err != nil {
		return "", fmt.Errorf("menucache: encode snapshot: %w", err)
	}

	id, err := s.exporter.Submit(ctx, payload)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrExportUnavailable, err)
	}
	return id, nil
}

// ExportStatus reports the progress of an export job.
func (s *Service) ExportStatus(ctx context.Context, jobID string) (ExportStatus, error) {
	if s.exporter == nil {
		return ExportStatus{}, ErrExportUnavailable
	}

	st, err := s.exporter.Poll(ctx, jobID)
	if errors.Is(err, export.ErrNotFound) {
		return ExportStatus{}, notFound(KindTask)
	}
	if err != nil {
		return ExportStatus{}, err
	}

	return ExportStatus{Ready: st.Ready(), State: string(st.State), File: st.File}, nil
}
