package handlers_test

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Cachefy/Cachefy-Server-sub000/internal/models"
)

func TestUsers_AdminOnly(t *testing.T) {
	ts := newTestServer(t)
	_, userToken := ts.seedUser(t, "op@example.com", "password123", models.RoleUser)
	_, adminToken := ts.seedUser(t, "root@example.com", "password123", models.RoleAdmin)

	w := ts.do(t, http.MethodGet, "/users", userToken, "", nil)
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = ts.do(t, http.MethodPost, "/users", userToken, "", map[string]interface{}{
		"email":    "new@example.com",
		"password": "password123",
		"role":     models.RoleUser,
	})
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = ts.do(t, http.MethodGet, "/users", adminToken, "", nil)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestCreateUser_Validation(t *testing.T) {
	ts := newTestServer(t)
	_, adminToken := ts.seedUser(t, "root@example.com", "password123", models.RoleAdmin)

	w := ts.do(t, http.MethodPost, "/users", adminToken, "", map[string]interface{}{
		"email":    "not-an-email",
		"password": "short",
		"role":     "Owner",
	})
	require.Equal(t, http.StatusBadRequest, w.Code)

	var resp struct {
		Errors map[string][]string `json:"errors"`
	}
	decode(t, w, &resp)
	assert.Contains(t, resp.Errors, "email")
	assert.Contains(t, resp.Errors, "password")
	assert.Contains(t, resp.Errors, "role")
}

func TestCreateUser_DuplicateEmail(t *testing.T) {
	ts := newTestServer(t)
	_, adminToken := ts.seedUser(t, "root@example.com", "password123", models.RoleAdmin)
	ts.seedUser(t, "taken@example.com", "password123", models.RoleUser)

	w := ts.do(t, http.MethodPost, "/users", adminToken, "", map[string]interface{}{
		"email":    "taken@example.com",
		"password": "password123",
		"role":     models.RoleUser,
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "email already registered")
}

func TestUpdateUser_RejectsTakenEmail(t *testing.T) {
	ts := newTestServer(t)
	_, adminToken := ts.seedUser(t, "root@example.com", "password123", models.RoleAdmin)
	target, _ := ts.seedUser(t, "op@example.com", "password123", models.RoleUser)
	ts.seedUser(t, "taken@example.com", "password123", models.RoleUser)

	w := ts.do(t, http.MethodPut, "/users/"+target.ID, adminToken, "", map[string]interface{}{
		"email": "taken@example.com",
		"role":  models.RoleUser,
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "email already registered")

	// Keeping one's own email is not a conflict
	w = ts.do(t, http.MethodPut, "/users/"+target.ID, adminToken, "", map[string]interface{}{
		"email": "op@example.com",
		"role":  models.RoleUser,
	})
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestUserLifecycle(t *testing.T) {
	ts := newTestServer(t)
	_, adminToken := ts.seedUser(t, "root@example.com", "password123", models.RoleAdmin)

	w := ts.do(t, http.MethodPost, "/users", adminToken, "", map[string]interface{}{
		"email":    "new@example.com",
		"password": "password123",
		"role":     models.RoleUser,
	})
	require.Equal(t, http.StatusCreated, w.Code)

	var created models.User
	decode(t, w, &created)
	require.NotEmpty(t, created.ID)

	w = ts.do(t, http.MethodPut, "/users/"+created.ID, adminToken, "", map[string]interface{}{
		"email":              "new@example.com",
		"role":               models.RoleAdmin,
		"linkedServiceNames": []string{"billing"},
	})
	require.Equal(t, http.StatusOK, w.Code)

	var updated models.User
	decode(t, w, &updated)
	assert.Equal(t, models.RoleAdmin, updated.Role)
	assert.Equal(t, []string{"billing"}, updated.LinkedServiceNames)

	w = ts.do(t, http.MethodDelete, "/users/"+created.ID, adminToken, "", nil)
	require.Equal(t, http.StatusNoContent, w.Code)

	w = ts.do(t, http.MethodGet, "/users/"+created.ID, adminToken, "", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestMe_ReturnsOwnProfile(t *testing.T) {
	ts := newTestServer(t)
	seeded, token := ts.seedUser(t, "op@example.com", "password123", models.RoleUser)

	w := ts.do(t, http.MethodGet, "/users/me", token, "", nil)
	require.Equal(t, http.StatusOK, w.Code)

	var me models.User
	decode(t, w, &me)
	assert.Equal(t, seeded.ID, me.ID)
	assert.Equal(t, "op@example.com", me.Email)
	assert.NotContains(t, w.Body.String(), "passwordHash")
}

func TestUpdateMe_ChangesPassword(t *testing.T) {
	ts := newTestServer(t)
	ts.seedUser(t, "op@example.com", "oldpassword", models.RoleUser)

	w := ts.do(t, http.MethodPost, "/auth/login", "", "", map[string]string{
		"email": "op@example.com", "password": "oldpassword",
	})
	require.Equal(t, http.StatusOK, w.Code)
	var loginResp struct {
		Token string `json:"token"`
	}
	decode(t, w, &loginResp)

	w = ts.do(t, http.MethodPut, "/users/me", loginResp.Token, "", map[string]string{
		"password": "newpassword",
	})
	require.Equal(t, http.StatusOK, w.Code)

	w = ts.do(t, http.MethodPost, "/auth/login", "", "", map[string]string{
		"email": "op@example.com", "password": "oldpassword",
	})
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = ts.do(t, http.MethodPost, "/auth/login", "", "", map[string]string{
		"email": "op@example.com", "password": "newpassword",
	})
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestMeServices_SkipsDanglingLinks(t *testing.T) {
	ts := newTestServer(t)
	agent := ts.seedAgent(t, "edge-1", "http://agent.local", "cfy_key", true)
	ts.seedService(t, "billing", agent.ID)

	_, token := ts.seedUser(t, "op@example.com", "password123", models.RoleUser)

	w := ts.do(t, http.MethodPut, "/users/me/services", token, "", map[string]interface{}{
		"linkedServiceNames": []string{"billing", "retired-service"},
	})
	require.Equal(t, http.StatusOK, w.Code)

	w = ts.do(t, http.MethodGet, "/users/me/services", token, "", nil)
	require.Equal(t, http.StatusOK, w.Code)

	var services []models.Service
	decode(t, w, &services)
	require.Len(t, services, 1)
	assert.Equal(t, "billing", services[0].Name)
}
