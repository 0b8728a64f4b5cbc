package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"go.uber.org/zap"

	"dcportal/internal/store"
)

type verifyRequest struct {
	ID string `json:"id"`
}

// Verify: POST /api/verify. Looks up a certificate by its public code,
// preferring the trainee record over the certificate record. An unknown code
// is a 200 with found:false, not an error.
func (h *Handlers) Verify(w http.ResponseWriter, r *http.Request) {
	var req verifyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if req.ID == "" {
		writeError(w, http.StatusBadRequest, "id required")
		return
	}

	code := store.NormalizeCode(req.ID)

	if t, err := h.store.FindTraineeByID(r.Context(), code); err == nil {
		writeJSONResp(w, http.StatusOK, map[string]any{
			"found":      true,
			"name":       t.Name,
			"courseName": t.CourseName,
			"date":       displayDate(t.Date),
		})
		return
	} else if !errors.Is(err, store.ErrNotFound) {
		h.log.Warn("trainee lookup failed", zap.String("code", code), zap.Error(err))
	}

	cert, err := h.store.FindCertificateByCode(r.Context(), code)
	if errors.Is(err, store.ErrNotFound) {
		writeJSONResp(w, http.StatusOK, map[string]any{"found": false})
		return
	}
	if err != nil {
		h.log.Error("certificate lookup failed", zap.String("code", code), zap.Error(err))
		writeError(w, http.StatusInternalServerError, "database error")
		return
	}

	writeJSONResp(w, http.StatusOK, map[string]any{
		"found":      true,
		"name":       cert.Name,
		"courseName": cert.CourseName,
		"date":       cert.IssuedAt.Format("02/01/2006"),
	})
}

// displayDate renders a stored ISO date as dd/mm/yyyy, passing through
// values it cannot parse.
func displayDate(iso string) string {
	if iso == "" {
		return ""
	}
	for _, layout := range []string{time.RFC3339, "2006-01-02"} {
		if t, err := time.Parse(layout, iso); err == nil {
			return t.Format("02/01/2006")
		}
	}
	return iso
}
