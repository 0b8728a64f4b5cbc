package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"go.uber.org/zap"

	"dcportal/internal/auth"
	"dcportal/internal/store"
)

// genericAuthError never reveals whether the email or the password was
// wrong.
const genericAuthError = "username or password is incorrect"

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Login: POST /api/login. Only pre-existing accounts may log in; there is no
// auto-registration.
func (h *Handlers) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	email := strings.ToLower(strings.TrimSpace(req.Email))
	if email == "" || req.Password == "" {
		writeError(w, http.StatusBadRequest, "Email and password required")
		return
	}

	user, err := h.store.FindUserByEmail(r.Context(), email)
	if errors.Is(err, store.ErrNotFound) {
		writeError(w, http.StatusUnauthorized, genericAuthError)
		return
	}
	if err != nil {
		h.log.Error("user lookup failed", zap.String("email", email), zap.Error(err))
		writeError(w, http.StatusInternalServerError, "database error")
		return
	}

	if !auth.VerifyPassword(req.Password, user.Salt, user.Hash) {
		writeError(w, http.StatusUnauthorized, genericAuthError)
		return
	}

	token, err := auth.MintSession([]byte(h.cfg.JWTSecret), user.Email, user.Name, h.cfg.SessionTTL)
	if err != nil {
		h.log.Error("session token mint failed", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "failed to create session")
		return
	}

	writeJSONResp(w, http.StatusOK, map[string]any{
		"message": "Logged in",
		"name":    user.Name,
		"token":   token,
	})
}
