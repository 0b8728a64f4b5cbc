package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"dcportal/internal/models"
	"dcportal/internal/uploads"
)

type uploadRequest struct {
	Type string              `json:"type"`
	Name string              `json:"name"`
	Data []map[string]string `json:"data"`
}

// Upload: POST /api/upload. Stores a parsed CSV as an upload record and
// returns its generated identifier.
func (h *Handlers) Upload(w http.ResponseWriter, r *http.Request) {
	var req uploadRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if len(req.Data) == 0 {
		writeError(w, http.StatusBadRequest, "Invalid data")
		return
	}

	rec := &models.UploadRecord{
		Type: req.Type,
		Name: req.Name,
		Data: req.Data,
	}
	if err := h.uploads.Save(r.Context(), rec); err != nil {
		h.log.Error("upload save failed", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "failed to store upload")
		return
	}

	writeJSONResp(w, http.StatusOK, map[string]any{"id": rec.ID})
}

// GetUpload: GET /api/uploads/{id} (protected). Serves the stored record for
// the dashboard review step.
func (h *Handlers) GetUpload(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	rec, err := h.uploads.Get(r.Context(), id)
	if errors.Is(err, uploads.ErrNotFound) {
		writeError(w, http.StatusNotFound, "upload not found")
		return
	}
	if err != nil {
		h.log.Error("upload read failed", zap.String("id", id), zap.Error(err))
		writeError(w, http.StatusInternalServerError, "failed to read upload")
		return
	}
	writeJSONResp(w, http.StatusOK, rec)
}
