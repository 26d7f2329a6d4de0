package handler

import (
	"log/slog"
	"net/http"

	"github.com/telecomplus/contracts-backend/internal/security/audit"
	"github.com/telecomplus/contracts-backend/internal/security/middleware"
	"github.com/telecomplus/contracts-backend/internal/service"
)

// AuthHandler exposes registration, login and profile endpoints
type AuthHandler struct {
	auth   *service.AuthService
	audit  *audit.Logger
	logger *slog.Logger
}

// NewAuthHandler creates a new auth handler
func NewAuthHandler(auth *service.AuthService, auditLog *audit.Logger, logger *slog.Logger) *AuthHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &AuthHandler{auth: auth, audit: auditLog, logger: logger}
}

type registerRequest struct {
	Nombre   string `json:"nombre" validate:"required,min=2,max=100"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=6"`
}

type loginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type updateProfileRequest struct {
	Nombre *string `json:"nombre" validate:"omitempty,min=2,max=100"`
	Email  *string `json:"email" validate:"omitempty,email"`
}

type changePasswordRequest struct {
	CurrentPassword string `json:"currentPassword" validate:"required"`
	NewPassword     string `json:"newPassword" validate:"required,min=6"`
}

type authResponse struct {
	User  userResponse `json:"user"`
	Token string       `json:"token"`
}

// Register handles POST /api/auth/register
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	result, err := h.auth.Register(req.Nombre, req.Email, req.Password)
	if err != nil {
		respondError(w, h.logger, err)
		return
	}

	h.audit.LogRegister(r.Context(), result.User.ID)
	respondData(w, http.StatusCreated, "user registered", authResponse{
		User:  toUserResponse(result.User),
		Token: result.Token,
	})
}

// Login handles POST /api/auth/login
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	result, err := h.auth.Login(req.Email, req.Password)
	if err != nil {
		h.audit.LogLogin(r.Context(), req.Email, "failure")
		respondError(w, h.logger, err)
		return
	}

	h.audit.LogLogin(r.Context(), result.User.ID, "success")
	respondData(w, http.StatusOK, "login successful", authResponse{
		User:  toUserResponse(result.User),
		Token: result.Token,
	})
}

// Profile handles GET /api/auth/profile
func (h *AuthHandler) Profile(w http.ResponseWriter, r *http.Request) {
	identity, ok := middleware.IdentityFromContext(r.Context())
	if !ok {
		respondError(w, h.logger, errUnauthenticated)
		return
	}

	user, err := h.auth.GetProfile(identity.ID)
	if err != nil {
		respondError(w, h.logger, err)
		return
	}
	respondData(w, http.StatusOK, "profile", toUserResponse(user))
}

// UpdateProfile handles PUT /api/auth/profile
func (h *AuthHandler) UpdateProfile(w http.ResponseWriter, r *http.Request) {
	identity, ok := middleware.IdentityFromContext(r.Context())
	if !ok {
		respondError(w, h.logger, errUnauthenticated)
		return
	}

	var req updateProfileRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	user, err := h.auth.UpdateProfile(identity.ID, req.Nombre, req.Email)
	if err != nil {
		respondError(w, h.logger, err)
		return
	}

	h.audit.LogAction(r.Context(), identity.ID, "update_profile", "user", identity.ID, "updated", "")
	respondData(w, http.StatusOK, "profile updated", toUserResponse(user))
}

// ChangePassword handles PUT /api/auth/change-password
func (h *AuthHandler) ChangePassword(w http.ResponseWriter, r *http.Request) {
	identity, ok := middleware.IdentityFromContext(r.Context())
	if !ok {
		respondError(w, h.logger, errUnauthenticated)
		return
	}

	var req changePasswordRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	if err := h.auth.ChangePassword(identity.ID, req.CurrentPassword, req.NewPassword); err != nil {
		respondError(w, h.logger, err)
		return
	}

	h.audit.LogAction(r.Context(), identity.ID, "change_password", "user", identity.ID, "updated", "")
	respondMessage(w, http.StatusOK, "password changed")
}

// Logout handles POST /api/auth/logout. Tokens are stateless, so this only
// acknowledges; the client discards its copy.
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	if identity, ok := middleware.IdentityFromContext(r.Context()); ok {
		h.audit.LogAction(r.Context(), identity.ID, "logout", "session", "", "ok", "")
	}
	respondMessage(w, http.StatusOK, "logged out")
}
