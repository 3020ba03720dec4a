package api

import (
	"context"
	"net/http"

	"github.com/okian/reelrank/internal/domain/model"
)

// AuthDependencies defines the session operations.
type AuthDependencies interface {
	Authenticator
	Login(ctx context.Context, userID, displayName string) (model.LoginResponse, error)
	Logout(ctx context.Context, token string)
}

// AuthHandler handles login and logout.
type AuthHandler struct {
	deps AuthDependencies
}

// NewAuthHandler creates a new auth handler.
func NewAuthHandler(deps AuthDependencies) *AuthHandler {
	return &AuthHandler{deps: deps}
}

// HandleLogin handles POST /auth/login.
func (h *AuthHandler) HandleLogin(w http.ResponseWriter, r *http.Request) {
	var req model.LoginRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", err)
		return
	}
	resp, err := h.deps.Login(r.Context(), req.UserID, req.DisplayName)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

// HandleLogout handles POST /auth/logout.
func (h *AuthHandler) HandleLogout(w http.ResponseWriter, r *http.Request) {
	h.deps.Logout(r.Context(), tokenFromContext(r.Context()))
	w.WriteHeader(http.StatusNoContent)
}
