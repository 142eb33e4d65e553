package handlers

import (
	"net/http"
	"regexp"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/Cachefy/Cachefy-Server-sub000/internal/api/middleware"
	"github.com/Cachefy/Cachefy-Server-sub000/internal/auth"
	"github.com/Cachefy/Cachefy-Server-sub000/internal/crypto"
	"github.com/Cachefy/Cachefy-Server-sub000/internal/errs"
	"github.com/Cachefy/Cachefy-Server-sub000/internal/models"
)

// emailRegex validates email addresses per RFC 5322 (simplified).
var emailRegex = regexp.MustCompile(`^[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}$`)

func isValidEmail(email string) bool {
	return len(email) <= 254 && emailRegex.MatchString(email)
}

// UserRequest is the admin create/update body for users.
type UserRequest struct {
	Email              string   `json:"email"`
	Password           string   `json:"password"`
	Role               string   `json:"role"`
	LinkedServiceNames []string `json:"linkedServiceNames"`
}

func validateUserRequest(req *UserRequest, requirePassword bool) map[string][]string {
	fields := make(map[string][]string)
	if req.Email == "" {
		fields["email"] = append(fields["email"], "email is required")
	} else if !isValidEmail(req.Email) {
		fields["email"] = append(fields["email"], "invalid email format")
	}
	if requirePassword && req.Password == "" {
		fields["password"] = append(fields["password"], "password is required")
	}
	if req.Password != "" && len(req.Password) < 8 {
		fields["password"] = append(fields["password"], "password must be at least 8 characters")
	}
	if req.Role != models.RoleAdmin && req.Role != models.RoleUser {
		fields["role"] = append(fields["role"], "role must be Admin or User")
	}
	if len(fields) == 0 {
		return nil
	}
	return fields
}

// ListUsers returns all dashboard users. Admin only.
func (h *Handler) ListUsers(w http.ResponseWriter, r *http.Request) {
	users, err := h.store.ListUsers(r.Context())
	if err != nil {
		h.Error(w, http.StatusInternalServerError, "user list failed: "+err.Error())
		return
	}
	if users == nil {
		users = []models.User{}
	}
	h.JSON(w, http.StatusOK, users)
}

// GetUser returns a single user by id. Admin only.
func (h *Handler) GetUser(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	user, err := h.store.GetUser(r.Context(), id)
	if err != nil {
		h.Error(w, http.StatusInternalServerError, "user lookup failed: "+err.Error())
		return
	}
	if user == nil {
		h.Error(w, http.StatusNotFound, "user "+id+" not found")
		return
	}
	h.JSON(w, http.StatusOK, user)
}

// CreateUser creates a dashboard user. Admin only.
func (h *Handler) CreateUser(w http.ResponseWriter, r *http.Request) {
	var req UserRequest
	if err := decodeJSON(r, &req); err != nil {
		h.Error(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if fields := validateUserRequest(&req, true); fields != nil {
		h.ValidationError(w, fields)
		return
	}

	existing, err := h.store.GetUserByEmail(r.Context(), req.Email)
	if err != nil {
		h.Error(w, http.StatusInternalServerError, "user lookup failed: "+err.Error())
		return
	}
	if existing != nil {
		h.Error(w, http.StatusBadRequest, "email already registered")
		return
	}

	hash, err := auth.HashPassword(req.Password)
	if err != nil {
		h.Error(w, http.StatusInternalServerError, "password hashing failed: "+err.Error())
		return
	}

	now := time.Now().UTC()
	user := &models.User{
		ID:                 crypto.NewID(),
		Email:              req.Email,
		PasswordHash:       hash,
		Role:               req.Role,
		LinkedServiceNames: req.LinkedServiceNames,
		CreatedAt:          now,
		UpdatedAt:          now,
	}
	if err := h.store.CreateUser(r.Context(), user); err != nil {
		h.Error(w, http.StatusInternalServerError, "user create failed: "+err.Error())
		return
	}
	h.JSON(w, http.StatusCreated, user)
}

// UpdateUser updates a user's role, linked services, and optionally
// password. Admin only.
func (h *Handler) UpdateUser(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	user, err := h.store.GetUser(r.Context(), id)
	if err != nil {
		h.Error(w, http.StatusInternalServerError, "user lookup failed: "+err.Error())
		return
	}
	if user == nil {
		h.Error(w, http.StatusNotFound, "user "+id+" not found")
		return
	}

	var req UserRequest
	if err := decodeJSON(r, &req); err != nil {
		h.Error(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if fields := validateUserRequest(&req, false); fields != nil {
		h.ValidationError(w, fields)
		return
	}

	if req.Email != user.Email {
		existing, err := h.store.GetUserByEmail(r.Context(), req.Email)
		if err != nil {
			h.Error(w, http.StatusInternalServerError, "user lookup failed: "+err.Error())
			return
		}
		if existing != nil {
			h.Error(w, http.StatusBadRequest, "email already registered")
			return
		}
	}

	user.Email = req.Email
	user.Role = req.Role
	user.LinkedServiceNames = req.LinkedServiceNames
	if req.Password != "" {
		hash, err := auth.HashPassword(req.Password)
		if err != nil {
			h.Error(w, http.StatusInternalServerError, "password hashing failed: "+err.Error())
			return
		}
		user.PasswordHash = hash
	}
	user.UpdatedAt = time.Now().UTC()

	if err := h.store.UpdateUser(r.Context(), user); err != nil {
		h.Error(w, http.StatusInternalServerError, "user update failed: "+err.Error())
		return
	}
	h.JSON(w, http.StatusOK, user)
}

// DeleteUser removes a dashboard user. Admin only.
func (h *Handler) DeleteUser(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	user, err := h.store.GetUser(r.Context(), id)
	if err != nil {
		h.Error(w, http.StatusInternalServerError, "user lookup failed: "+err.Error())
		return
	}
	if user == nil {
		h.Error(w, http.StatusNotFound, "user "+id+" not found")
		return
	}
	if err := h.store.DeleteUser(r.Context(), id); err != nil {
		h.Error(w, http.StatusInternalServerError, "user delete failed: "+err.Error())
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// currentUser loads the full record for the authenticated identity.
func (h *Handler) currentUser(r *http.Request) (*models.User, error) {
	identity := middleware.UserFrom(r.Context())
	if identity == nil {
		return nil, errs.New(errs.Unauthenticated, "no authenticated user")
	}
	user, err := h.store.GetUser(r.Context(), identity.UserID)
	if err != nil {
		return nil, errs.Wrap(errs.Internal, err, "user lookup failed")
	}
	if user == nil {
		return nil, errs.New(errs.Unauthenticated, "account no longer exists")
	}
	return user, nil
}

// Me returns the authenticated user's own profile.
func (h *Handler) Me(w http.ResponseWriter, r *http.Request) {
	user, err := h.currentUser(r)
	if err != nil {
		h.Fail(w, err)
		return
	}
	h.JSON(w, http.StatusOK, user)
}

// UpdateMeRequest is the self-service profile update body.
type UpdateMeRequest struct {
	Password string `json:"password"`
}

// UpdateMe lets the authenticated user change their own password. Role
// and email changes stay admin-only.
func (h *Handler) UpdateMe(w http.ResponseWriter, r *http.Request) {
	user, err := h.currentUser(r)
	if err != nil {
		h.Fail(w, err)
		return
	}

	var req UpdateMeRequest
	if err := decodeJSON(r, &req); err != nil {
		h.Error(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if len(req.Password) < 8 {
		h.ValidationError(w, map[string][]string{"password": {"password must be at least 8 characters"}})
		return
	}

	hash, err := auth.HashPassword(req.Password)
	if err != nil {
		h.Error(w, http.StatusInternalServerError, "password hashing failed: "+err.Error())
		return
	}
	user.PasswordHash = hash
	user.UpdatedAt = time.Now().UTC()

	if err := h.store.UpdateUser(r.Context(), user); err != nil {
		h.Error(w, http.StatusInternalServerError, "user update failed: "+err.Error())
		return
	}
	h.JSON(w, http.StatusOK, user)
}

// MeServices resolves the authenticated user's linked service names.
// Links are soft references: a name with no matching service is skipped,
// not an error.
func (h *Handler) MeServices(w http.ResponseWriter, r *http.Request) {
	user, err := h.currentUser(r)
	if err != nil {
		h.Fail(w, err)
		return
	}

	services := []models.Service{}
	for _, name := range user.LinkedServiceNames {
		service, err := h.store.GetServiceByName(r.Context(), name)
		if err != nil {
			h.Error(w, http.StatusInternalServerError, "service lookup failed: "+err.Error())
			return
		}
		if service != nil {
			services = append(services, *service)
		}
	}
	h.JSON(w, http.StatusOK, services)
}

// UpdateMeServicesRequest is the self-service linked-services body.
type UpdateMeServicesRequest struct {
	LinkedServiceNames []string `json:"linkedServiceNames"`
}

// UpdateMeServices replaces the authenticated user's linked service names.
// Names are stored as given; they need not match an existing service.
func (h *Handler) UpdateMeServices(w http.ResponseWriter, r *http.Request) {
	user, err := h.currentUser(r)
	if err != nil {
		h.Fail(w, err)
		return
	}

	var req UpdateMeServicesRequest
	if err := decodeJSON(r, &req); err != nil {
		h.Error(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	user.LinkedServiceNames = req.LinkedServiceNames
	user.UpdatedAt = time.Now().UTC()

	if err := h.store.UpdateUser(r.Context(), user); err != nil {
		h.Error(w, http.StatusInternalServerError, "user update failed: "+err.Error())
		return
	}
	h.JSON(w, http.StatusOK, user)
}
