package handlers

import (
	"net/http"

	"github.com/Cachefy/Cachefy-Server-sub000/internal/auth"
)

// LoginRequest represents the login request body.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// LoginResponse represents the login response.
type LoginResponse struct {
	Token string `json:"token"`
	Email string `json:"email"`
}

// Login authenticates a dashboard user and issues a bearer token. The
// same 401 covers unknown emails and wrong passwords.
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if err := decodeJSON(r, &req); err != nil {
		h.Error(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	fields := make(map[string][]string)
	if req.Email == "" {
		fields["email"] = append(fields["email"], "email is required")
	}
	if req.Password == "" {
		fields["password"] = append(fields["password"], "password is required")
	}
	if len(fields) > 0 {
		h.ValidationError(w, fields)
		return
	}

	user, err := h.store.GetUserByEmail(r.Context(), req.Email)
	if err != nil {
		h.Error(w, http.StatusInternalServerError, "user lookup failed: "+err.Error())
		return
	}
	if user == nil || !auth.CheckPassword(user.PasswordHash, req.Password) {
		h.Error(w, http.StatusUnauthorized, "invalid email or password")
		return
	}

	token, err := h.tokens.Issue(user)
	if err != nil {
		h.Error(w, http.StatusInternalServerError, "token issue failed: "+err.Error())
		return
	}

	h.JSON(w, http.StatusOK, LoginResponse{Token: token, Email: user.Email})
}
