package api

import (
	"errors"
	"fmt"
	"net/http"
	"os"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

func (h *handler) generateMenus(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.GenerateMenus(r.Context()); err != nil {
		h.fail(w, r, err, "menus have already been generated")
		return
	}
	respondJSON(w, h.logger, http.StatusCreated, statusResponse{
		Status:  true,
		Message: "Menus have been generated",
	})
}

func (h *handler) makeSpreadsheet(w http.ResponseWriter, r *http.Request) {
	id, err := h.svc.ExportToSpreadsheet(r.Context())
	if err != nil {
		h.fail(w, r, err, "")
		return
	}
	respondJSON(w, h.logger, http.StatusAccepted, statusResponse{
		Status:  true,
		Message: "Task added. Task_id = " + id,
	})
}

func (h *handler) spreadsheetStatus(w http.ResponseWriter, r *http.Request) {
	st, err := h.svc.ExportStatus(r.Context(), chi.URLParam(r, "task_id"))
	if err != nil {
		h.fail(w, r, err, "")
		return
	}

	if !st.Ready {
		respondJSON(w, h.logger, http.StatusOK, statusResponse{
			Status:  false,
			Message: "Task status: " + st.State,
		})
		return
	}

	respondJSON(w, h.logger, http.StatusOK, statusResponse{
		Status:  true,
		Message: "File is ready",
		File:    BasePath + "/menus/download/" + st.File,
	})
}

func (h *handler) download(w http.ResponseWriter, r *http.Request) {
	if h.files == nil {
		respondDetail(w, h.logger, http.StatusServiceUnavailable, "export unavailable")
		return
	}

	name := chi.URLParam(r, "filename")
	path, err := h.files.FilePath(name)
	if err != nil {
		respondDetail(w, h.logger, http.StatusNotFound, "file not found")
		return
	}

	info, err := os.Stat(path)
	if err != nil || info.IsDir() {
		if err != nil && !errors.Is(err, os.ErrNotExist) {
			h.logger.Error("failed to stat export file", zap.String("file", path), zap.Error(err))
		}
		respondDetail(w, h.logger, http.StatusNotFound, "file not found")
		return
	}

	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", name))
	http.ServeFile(w, r, path)
}
