package handlers

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/skip2/go-qrcode"
	"go.uber.org/zap"

	"dcportal/internal/pdf"
	"dcportal/internal/store"
)

// CertificateQRCode: GET /api/certificates/{code}/qrcode. Returns a PNG QR
// pointing at the public verification page for an issued certificate.
func (h *Handlers) CertificateQRCode(w http.ResponseWriter, r *http.Request) {
	code := store.NormalizeCode(chi.URLParam(r, "code"))
	if code == "" {
		writeError(w, http.StatusBadRequest, "code required")
		return
	}

	if _, err := h.store.FindCertificateByCode(r.Context(), code); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, http.StatusNotFound, "certificate not found")
			return
		}
		h.log.Error("certificate lookup failed", zap.String("code", code), zap.Error(err))
		writeError(w, http.StatusInternalServerError, "database error")
		return
	}

	png, err := qrcode.Encode(pdf.VerifyURL(h.cfg.VerifyBaseURL, code), qrcode.Medium, 256)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to generate QR code")
		return
	}

	w.Header().Set("Content-Type", "image/png")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(png)
}
