package api

import (
	"encoding/json"
	"errors"
	"net/http"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/goliatone/go-menu-cache/menucache"
)

const maxBodyBytes = 1 << 20

type handler struct {
	svc    MenuService
	files  FileResolver
	logger *zap.Logger
}

// pathID parses a uuid path parameter. Malformed ids cannot exist, so they
// are reported like unknown ones.
func (h *handler) pathID(w http.ResponseWriter, r *http.Request, param, kind string) (uuid.UUID, bool) {
	id, err := uuid.Parse(chi.URLParam(r, param))
	if err != nil {
		respondDetail(w, h.logger, http.StatusNotFound, (&menucache.NotFoundError{Kind: kind}).Error())
		return uuid.Nil, false
	}
	return id, true
}

// decode reads and validates a JSON body.
func (h *handler) decode(w http.ResponseWriter, r *http.Request, dst validation.Validatable) bool {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err := dec.Decode(dst); err != nil {
		respondDetail(w, h.logger, http.StatusBadRequest, "invalid request body")
		return false
	}

	if err := dst.Validate(); err != nil {
		var errs validation.Errors
		if errors.As(err, &errs) {
			respondDetail(w, h.logger, http.StatusUnprocessableEntity, errs)
			return false
		}
		respondDetail(w, h.logger, http.StatusUnprocessableEntity, err.Error())
		return false
	}
	return true
}

func (h *handler) fail(w http.ResponseWriter, r *http.Request, err error, conflict string) {
	respondServiceError(w, r, h.logger, err, conflict)
}

func (h *handler) deleted(w http.ResponseWriter, kind string) {
	respondJSON(w, h.logger, http.StatusOK, statusResponse{
		Status:  true,
		Message: "The " + kind + " has been deleted",
	})
}

// Menus

func (h *handler) listMenus(w http.ResponseWriter, r *http.Request) {
	menus, err := h.svc.ListMenus(r.Context())
	if err != nil {
		h.fail(w, r, err, "")
		return
	}
	respondJSON(w, h.logger, http.StatusOK, menus)
}

func (h *handler) getMenu(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathID(w, r, "menu_id", menucache.KindMenu)
	if !ok {
		return
	}
	menu, err := h.svc.GetMenu(r.Context(), id)
	if err != nil {
		h.fail(w, r, err, "")
		return
	}
	respondJSON(w, h.logger, http.StatusOK, menu)
}

func (h *handler) createMenu(w http.ResponseWriter, r *http.Request) {
	var req menuRequest
	if !h.decode(w, r, &req) {
		return
	}
	menu, err := h.svc.CreateMenu(r.Context(), req.menuInput())
	if err != nil {
		h.fail(w, r, err, "menu with this title already exists")
		return
	}
	respondJSON(w, h.logger, http.StatusCreated, menu)
}

func (h *handler) updateMenu(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathID(w, r, "menu_id", menucache.KindMenu)
	if !ok {
		return
	}
	var req menuRequest
	if !h.decode(w, r, &req) {
		return
	}
	menu, err := h.svc.UpdateMenu(r.Context(), id, req.menuInput())
	if err != nil {
		h.fail(w, r, err, "menu with this title already exists")
		return
	}
	respondJSON(w, h.logger, http.StatusOK, menu)
}

func (h *handler) deleteMenu(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathID(w, r, "menu_id", menucache.KindMenu)
	if !ok {
		return
	}
	if err := h.svc.DeleteMenu(r.Context(), id); err != nil {
		h.fail(w, r, err, "")
		return
	}
	h.deleted(w, menucache.KindMenu)
}

// SubMenus. The menu id in the path scopes lists and creation only; single
// submenus are addressed by their own id.

func (h *handler) listSubMenus(w http.ResponseWriter, r *http.Request) {
	menuID, ok := h.pathID(w, r, "menu_id", menucache.KindMenu)
	if !ok {
		return
	}
	submenus, err := h.svc.ListSubMenus(r.Context(), menuID)
	if err != nil {
		h.fail(w, r, err, "")
		return
	}
	respondJSON(w, h.logger, http.StatusOK, submenus)
}

func (h *handler) getSubMenu(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathID(w, r, "submenu_id", menucache.KindSubMenu)
	if !ok {
		return
	}
	submenu, err := h.svc.GetSubMenu(r.Context(), id)
	if err != nil {
		h.fail(w, r, err, "")
		return
	}
	respondJSON(w, h.logger, http.StatusOK, submenu)
}

func (h *handler) createSubMenu(w http.ResponseWriter, r *http.Request) {
	menuID, ok := h.pathID(w, r, "menu_id", menucache.KindMenu)
	if !ok {
		return
	}
	var req menuRequest
	if !h.decode(w, r, &req) {
		return
	}
	submenu, err := h.svc.CreateSubMenu(r.Context(), menuID, req.subMenuInput())
	if err != nil {
		h.fail(w, r, err, "submenu already exists")
		return
	}
	respondJSON(w, h.logger, http.StatusCreated, submenu)
}

func (h *handler) updateSubMenu(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathID(w, r, "submenu_id", menucache.KindSubMenu)
	if !ok {
		return
	}
	var req menuRequest
	if !h.decode(w, r, &req) {
		return
	}
	submenu, err := h.svc.UpdateSubMenu(r.Context(), id, req.subMenuInput())
	if err != nil {
		h.fail(w, r, err, "submenu already exists")
		return
	}
	respondJSON(w, h.logger, http.StatusOK, submenu)
}

func (h *handler) deleteSubMenu(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathID(w, r, "submenu_id", menucache.KindSubMenu)
	if !ok {
		return
	}
	if err := h.svc.DeleteSubMenu(r.Context(), id); err != nil {
		h.fail(w, r, err, "")
		return
	}
	h.deleted(w, menucache.KindSubMenu)
}

// Dishes

func (h *handler) listDishes(w http.ResponseWriter, r *http.Request) {
	submenuID, ok := h.pathID(w, r, "submenu_id", menucache.KindSubMenu)
	if !ok {
		return
	}
	dishes, err := h.svc.ListDishes(r.Context(), submenuID)
	if err != nil {
		h.fail(w, r, err, "")
		return
	}
	respondJSON(w, h.logger, http.StatusOK, dishes)
}

func (h *handler) getDish(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathID(w, r, "dish_id", menucache.KindDish)
	if !ok {
		return
	}
	dish, err := h.svc.GetDish(r.Context(), id)
	if err != nil {
		h.fail(w, r, err, "")
		return
	}
	respondJSON(w, h.logger, http.StatusOK, dish)
}

func (h *handler) createDish(w http.ResponseWriter, r *http.Request) {
	submenuID, ok := h.pathID(w, r, "submenu_id", menucache.KindSubMenu)
	if !ok {
		return
	}
	var req dishRequest
	if !h.decode(w, r, &req) {
		return
	}
	in, err := req.dishInput()
	if err != nil {
		respondDetail(w, h.logger, http.StatusUnprocessableEntity, map[string]string{"price": err.Error()})
		return
	}
	dish, err := h.svc.CreateDish(r.Context(), submenuID, in)
	if err != nil {
		h.fail(w, r, err, "dish already exists")
		return
	}
	respondJSON(w, h.logger, http.StatusCreated, dish)
}

func (h *handler) updateDish(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathID(w, r, "dish_id", menucache.KindDish)
	if !ok {
		return
	}
	var req dishRequest
	if !h.decode(w, r, &req) {
		return
	}
	in, err := req.dishInput()
	if err != nil {
		respondDetail(w, h.logger, http.StatusUnprocessableEntity, map[string]string{"price": err.Error()})
		return
	}
	dish, err := h.svc.UpdateDish(r.Context(), id, in)
	if err != nil {
		h.fail(w, r, err, "dish already exists")
		return
	}
	respondJSON(w, h.logger, http.StatusOK, dish)
}

func (h *handler) deleteDish(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathID(w, r, "dish_id", menucache.KindDish)
	if !ok {
		return
	}
	if err := h.svc.DeleteDish(r.Context(), id); err != nil {
		h.fail(w, r, err, "")
		return
	}
	h.deleted(w, menucache.KindDish)
}
