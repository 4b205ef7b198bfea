package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"go.uber.org/zap"

	"github.com/goliatone/go-menu-cache/menucache"
)

type detailResponse struct {
	Detail any `json:"detail"`
}

type statusResponse struct {
	Status  bool   `json:"status"`
	Message string `json:"message"`
	File    string `json:"file,omitempty"`
}

func respondJSON(w http.ResponseWriter, logger *zap.Logger, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		logger.Error("failed to encode response", zap.Error(err))
	}
}

func respondDetail(w http.ResponseWriter, logger *zap.Logger, status int, detail any) {
	respondJSON(w, logger, status, detailResponse{Detail: detail})
}

// respondServiceError maps a service error to its HTTP status. conflict is
// the detail reported for ErrConflict.
func respondServiceError(w http.ResponseWriter, r *http.Request, logger *zap.Logger, err error, conflict string) {
	var nf *menucache.NotFoundError
	switch {
	case errors.As(err, &nf):
		respondDetail(w, logger, http.StatusNotFound, nf.Error())
	case errors.Is(err, menucache.ErrConflict):
		respondDetail(w, logger, http.StatusConflict, conflict)
	case errors.Is(err, menucache.ErrExportUnavailable):
		logger.Warn("export unavailable", zap.Error(err))
		respondDetail(w, logger, http.StatusServiceUnavailable, "export unavailable")
	default:
		logger.Error("request failed",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Error(err),
		)
		respondDetail(w, logger, http.StatusInternalServerError, "internal server error")
	}
}
