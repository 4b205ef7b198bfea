// Package api exposes the menu service over HTTP.
package api

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/goliatone/go-menu-cache/menucache"
	"github.com/goliatone/go-menu-cache/store"
)

// BasePath is the mount point of the versioned API.
const BasePath = "/api/v1"

// MenuService is the part of menucache.Service the handlers use.
type MenuService interface {
	ListMenus(ctx context.Context) ([]menucache.MenuAnswer, error)
	GetMenu(ctx context.Context, id uuid.UUID) (menucache.MenuAnswer, error)
	CreateMenu(ctx context.Context, in store.MenuInput) (menucache.MenuAnswer, error)
	UpdateMenu(ctx context.Context, id uuid.UUID, in store.MenuInput) (menucache.MenuAnswer, error)
	DeleteMenu(ctx context.Context, id uuid.UUID) error

	ListSubMenus(ctx context.Context, menuID uuid.UUID) ([]menucache.SubMenuAnswer, error)
	GetSubMenu(ctx context.Context, id uuid.UUID) (menucache.SubMenuAnswer, error)
	CreateSubMenu(ctx context.Context, menuID uuid.UUID, in store.SubMenuInput) (menucache.SubMenuAnswer, error)
	UpdateSubMenu(ctx context.Context, id uuid.UUID, in store.SubMenuInput) (menucache.SubMenuAnswer, error)
	DeleteSubMenu(ctx context.Context, id uuid.UUID) error

	ListDishes(ctx context.Context, submenuID uuid.UUID) ([]menucache.DishAnswer, error)
	GetDish(ctx context.Context, id uuid.UUID) (menucache.DishAnswer, error)
	CreateDish(ctx context.Context, submenuID uuid.UUID, in store.DishInput) (menucache.DishAnswer, error)
	UpdateDish(ctx context.Context, id uuid.UUID, in store.DishInput) (menucache.DishAnswer, error)
	DeleteDish(ctx context.Context, id uuid.UUID) error

	GenerateMenus(ctx context.Context) error
	ExportToSpreadsheet(ctx context.Context) (string, error)
	ExportStatus(ctx context.Context, jobID string) (menucache.ExportStatus, error)
}

// FileResolver maps a download name to a path on disk.
type FileResolver interface {
	FilePath(name string) (string, error)
}

// Options configures the router.
type Options struct {
	ServiceName    string
	Version        string
	AllowedOrigins []string
	// Metrics, when set, is served on /metrics.
	Metrics http.Handler
	// Files resolves exported workbooks for download.
	Files FileResolver
}

// Router builds the HTTP handler tree.
type Router struct {
	svc    MenuService
	opts   Options
	logger *zap.Logger
}

func NewRouter(svc MenuService, logger *zap.Logger, opts Options) *Router {
	if logger == nil {
		logger = zap.NewNop()
	}
	if len(opts.AllowedOrigins) == 0 {
		opts.AllowedOrigins = []string{"*"}
	}
	return &Router{svc: svc, opts: opts, logger: logger}
}

// Setup configures all routes and middleware.
func (rt *Router) Setup() http.Handler {
	router := chi.NewRouter()

	router.Use(chimiddleware.RequestID)
	router.Use(chimiddleware.RealIP)
	router.Use(chimiddleware.Recoverer)
	router.Use(chimiddleware.StripSlashes)
	router.Use(Logger(rt.logger))
	router.Use(cors.Handler(cors.Options{
		AllowedOrigins: rt.opts.AllowedOrigins,
		AllowedMethods: []string{"GET", "POST", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type", "X-Request-ID"},
		ExposedHeaders: []string{"X-Request-ID"},
		MaxAge:         300,
	}))

	router.Get("/", rt.root)
	router.Get("/health", rt.healthCheck)
	if rt.opts.Metrics != nil {
		router.Method(http.MethodGet, "/metrics", rt.opts.Metrics)
	}

	h := &handler{svc: rt.svc, files: rt.opts.Files, logger: rt.logger}

	router.Route(BasePath+"/menus", func(r chi.Router) {
		r.Get("/", h.listMenus)
		r.Post("/", h.createMenu)

		r.Post("/generate", h.generateMenus)
		r.Post("/make-xl-file", h.makeSpreadsheet)
		r.Get("/get-xl-file/{task_id}", h.spreadsheetStatus)
		r.Get("/download/{filename}", h.download)

		r.Route("/{menu_id}", func(r chi.Router) {
			r.Get("/", h.getMenu)
			r.Patch("/", h.updateMenu)
			r.Delete("/", h.deleteMenu)

			r.Route("/submenus", func(r chi.Router) {
				r.Get("/", h.listSubMenus)
				r.Post("/", h.createSubMenu)

				r.Route("/{submenu_id}", func(r chi.Router) {
					r.Get("/", h.getSubMenu)
					r.Patch("/", h.updateSubMenu)
					r.Delete("/", h.deleteSubMenu)

					r.Route("/dishes", func(r chi.Router) {
						r.Get("/", h.listDishes)
						r.Post("/", h.createDish)
						r.Get("/{dish_id}", h.getDish)
						r.Patch("/{dish_id}", h.updateDish)
						r.Delete("/{dish_id}", h.deleteDish)
					})
				})
			})
		})
	})

	return router
}

func (rt *Router) root(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, rt.logger, http.StatusOK, map[string]string{
		"service": rt.opts.ServiceName,
		"version": rt.opts.Version,
	})
}

func (rt *Router) healthCheck(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, rt.logger, http.StatusOK, map[string]string{"status": "healthy"})
}
