package api

import (
	"database/sql"
	"net/http"

	"go.uber.org/zap"

	"github.com/erazemk/izgubljeno/internal/apperr"
	"github.com/erazemk/izgubljeno/internal/auth"
	"github.com/erazemk/izgubljeno/internal/store"
)

// AuthHandler handles authentication endpoints.
type AuthHandler struct {
	DB     *sql.DB
	Auth   *auth.Service
	Logger *zap.Logger
}

// Register handles POST /api/auth/register.
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req auth.RegisterInput
	if err := decodeJSON(w, r, &req); err != nil {
		jsonError(w, r, h.Logger, err)
		return
	}

	session, err := h.Auth.Register(r.Context(), req)
	if err != nil {
		jsonError(w, r, h.Logger, err)
		return
	}

	jsonSuccess(w, http.StatusCreated, envelope{
		"token": session.Token,
		"user":  session.User.Public(),
	})
}

// Login handles POST /api/auth/login.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req auth.LoginInput
	if err := decodeJSON(w, r, &req); err != nil {
		jsonError(w, r, h.Logger, err)
		return
	}

	session, err := h.Auth.Login(r.Context(), req)
	if err != nil {
		jsonError(w, r, h.Logger, err)
		return
	}

	jsonSuccess(w, http.StatusOK, envelope{
		"token": session.Token,
		"user":  session.User.Public(),
	})
}

// Me handles GET /api/auth/me.
func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	current := GetUser(r.Context())
	if current == nil {
		jsonError(w, r, h.Logger, apperr.Auth(msgNoToken))
		return
	}

	// Re-read so the response reflects the stored row.
	user, err := store.GetUser(r.Context(), h.DB, current.ID)
	if err != nil {
		jsonError(w, r, h.Logger, apperr.Internal(err))
		return
	}
	if user == nil {
		jsonError(w, r, h.Logger, apperr.NotFound("User not found"))
		return
	}

	public := user.Public()
	public.CreatedAt = &user.CreatedAt
	jsonSuccess(w, http.StatusOK, envelope{"user": public})
}

// Logout handles POST /api/auth/logout.
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	if err := h.Auth.Logout(r.Context(), GetClaims(r.Context())); err != nil {
		jsonError(w, r, h.Logger, err)
		return
	}
	jsonSuccess(w, http.StatusOK, envelope{"message": "Logged out"})
}
