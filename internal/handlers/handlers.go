// Package handlers implements the portal's HTTP surface. Handlers receive
// their collaborators at construction; no package-level state.
package handlers

import (
	"encoding/json"
	"net/http"

	"go.uber.org/zap"

	"dcportal/internal/config"
	"dcportal/internal/mailer"
	"dcportal/internal/pdf"
	"dcportal/internal/store"
	"dcportal/internal/uploads"
)

type Handlers struct {
	cfg     *config.Config
	log     *zap.Logger
	store   store.Store
	uploads *uploads.Service
	mailer  mailer.Mailer
	stamper pdf.Stamper
}

func New(cfg *config.Config, log *zap.Logger, st store.Store, up *uploads.Service, m mailer.Mailer, stamper pdf.Stamper) *Handlers {
	if log == nil {
		log = zap.NewNop()
	}
	return &Handlers{
		cfg:     cfg,
		log:     log,
		store:   st,
		uploads: up,
		mailer:  m,
		stamper: stamper,
	}
}

func writeJSONResp(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSONResp(w, status, map[string]any{"error": msg})
}
