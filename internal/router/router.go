package router

import (
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"dcportal/internal/handlers"
	"dcportal/internal/middleware"
)

func RegisterRouter(h *handlers.Handlers, log *zap.Logger, jwtSecret []byte) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.CORSMiddleware)
	r.Use(middleware.LoggingMiddleware(log))

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprintln(w, "ok")
	})

	// Public API
	r.Post("/api/upload", h.Upload)
	r.Post("/api/verify", h.Verify)
	r.Post("/api/login", h.Login)
	r.Post("/api/issue/email", h.IssueEmail)
	r.Post("/api/issue/zip", h.IssueZip)
	r.Get("/api/certificates/{code}/qrcode", h.CertificateQRCode)

	// Dashboard routes require the session token minted at login
	r.Group(func(r chi.Router) {
		r.Use(middleware.AuthMiddleware(jwtSecret))
		r.Get("/api/uploads/{id}", h.GetUpload)
	})

	return r
}
