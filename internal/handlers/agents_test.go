package handlers_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Cachefy/Cachefy-Server-sub000/internal/models"
)

func TestCreateAgent_GeneratesKey(t *testing.T) {
	ts := newTestServer(t)
	_, token := ts.seedUser(t, "op@example.com", "password123", models.RoleUser)

	w := ts.do(t, http.MethodPost, "/agents", token, "", map[string]string{
		"name": "edge-1",
		"url":  "http://agent.local:9000",
	})
	require.Equal(t, http.StatusCreated, w.Code)

	var agent models.Agent
	decode(t, w, &agent)
	assert.NotEmpty(t, agent.ID)
	assert.True(t, agent.IsAPIKeyActive)
	assert.Regexp(t, `^cfy_[0-9a-f]{64}$`, agent.APIKey)

	// Generated key is immediately valid on the callback surface
	w = ts.do(t, http.MethodGet, "/callback/health", "", agent.APIKey, nil)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestCreateAgent_RejectsBadURL(t *testing.T) {
	ts := newTestServer(t)
	_, token := ts.seedUser(t, "op@example.com", "password123", models.RoleUser)

	w := ts.do(t, http.MethodPost, "/agents", token, "", map[string]string{
		"name": "edge-1",
		"url":  "agent.local:9000",
	})
	require.Equal(t, http.StatusBadRequest, w.Code)

	var resp struct {
		Errors map[string][]string `json:"errors"`
	}
	decode(t, w, &resp)
	assert.Contains(t, resp.Errors, "url")
}

func TestUpdateAgent_DeactivatesKey(t *testing.T) {
	ts := newTestServer(t)
	_, token := ts.seedUser(t, "op@example.com", "password123", models.RoleUser)
	agent := ts.seedAgent(t, "edge-1", "http://agent.local", "cfy_live", true)

	w := ts.do(t, http.MethodPut, "/agents/"+agent.ID, token, "", map[string]interface{}{
		"name":           "edge-1",
		"url":            "http://agent.local",
		"isApiKeyActive": false,
	})
	require.Equal(t, http.StatusOK, w.Code)

	var updated models.Agent
	decode(t, w, &updated)
	assert.False(t, updated.IsAPIKeyActive)

	// Deactivated key no longer passes the agent gate
	w = ts.do(t, http.MethodGet, "/callback/health", "", "cfy_live", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestRegenerateAPIKey_RotatesAndReactivates(t *testing.T) {
	ts := newTestServer(t)
	_, token := ts.seedUser(t, "op@example.com", "password123", models.RoleUser)
	agent := ts.seedAgent(t, "edge-1", "http://agent.local", "cfy_old", false)

	w := ts.do(t, http.MethodPost, "/agents/"+agent.ID+"/regenerate-api-key", token, "", nil)
	require.Equal(t, http.StatusOK, w.Code)

	var rotated models.Agent
	decode(t, w, &rotated)
	assert.NotEqual(t, "cfy_old", rotated.APIKey)
	assert.True(t, rotated.IsAPIKeyActive)

	w = ts.do(t, http.MethodGet, "/callback/health", "", "cfy_old", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = ts.do(t, http.MethodGet, "/callback/health", "", rotated.APIKey, nil)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestDeleteAgent_NotFound(t *testing.T) {
	ts := newTestServer(t)
	_, token := ts.seedUser(t, "op@example.com", "password123", models.RoleUser)

	w := ts.do(t, http.MethodDelete, "/agents/missing", token, "", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestPingAgent_ThroughRouter(t *testing.T) {
	ts := newTestServer(t)
	_, token := ts.seedUser(t, "op@example.com", "password123", models.RoleUser)

	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/health", r.URL.Path)
		w.WriteHeader(http.StatusOK)
	}))
	defer upstream.Close()

	agent := ts.seedAgent(t, "edge-1", upstream.URL, "cfy_key", true)

	w := ts.do(t, http.MethodGet, "/agents/"+agent.ID+"/ping", token, "", nil)
	require.Equal(t, http.StatusOK, w.Code)

	var result models.PingResult
	decode(t, w, &result)
	assert.Equal(t, http.StatusOK, result.StatusCode)
	assert.Equal(t, "OK", result.Message)
}
