package handler

import (
	"net/http"

	"github.com/msomdec/taskchat/internal/domain"
	"github.com/msomdec/taskchat/internal/service"
)

// AuthHandler handles authentication-related HTTP requests.
type AuthHandler struct {
	auth *service.AuthService
}

// NewAuthHandler creates a new AuthHandler.
func NewAuthHandler(auth *service.AuthService) *AuthHandler {
	return &AuthHandler{auth: auth}
}

// HandleRegister processes a JSON registration request.
// POST /auth/register
// Request:  {"email":"...","password":"..."}
// Response: 201 {"subject_id":"...","token":"..."}
func (h *AuthHandler) HandleRegister(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := readJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", "Invalid request body.")
		return
	}

	user, token, err := h.auth.Register(r.Context(), req.Email, req.Password)
	if err != nil {
		writeDomainError(w, "register user", err)
		return
	}

	writeJSON(w, http.StatusCreated, map[string]any{
		"subject_id": user.ID,
		"token":      token,
	})
}

// HandleLogin processes a JSON login request.
// POST /auth/login
// Request:  {"email":"...","password":"..."}
// Response: {"token":"...","expires_in":86400}
func (h *AuthHandler) HandleLogin(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := readJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", "Invalid request body.")
		return
	}

	token, err := h.auth.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		writeDomainError(w, "login user", err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"token":      token,
		"expires_in": int(h.auth.TokenTTL().Seconds()),
	})
}

// HandleMe returns the account behind the presented token.
// GET /auth/me
// Response: {"subject_id":"...","email":"..."}
func (h *AuthHandler) HandleMe(w http.ResponseWriter, r *http.Request) {
	subject, ok := service.SubjectFromContext(r.Context())
	if !ok {
		writeAuthError(w, domain.ErrTokenMissing)
		return
	}

	user, err := h.auth.GetUserByID(r.Context(), subject)
	if err != nil {
		writeDomainError(w, "get account", err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"subject_id": user.ID,
		"email":      user.Email,
	})
}
