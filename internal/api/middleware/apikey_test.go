package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Cachefy/Cachefy-Server-sub000/internal/models"
	"github.com/Cachefy/Cachefy-Server-sub000/internal/store"
)

func newAPIKeyFixture(t *testing.T) (*APIKeyAuth, *store.MemoryStore) {
	t.Helper()
	memStore := store.NewMemoryStore()
	return NewAPIKeyAuth(memStore), memStore
}

func seedGateAgent(t *testing.T, s *store.MemoryStore, key string, active bool) *models.Agent {
	t.Helper()
	agent := &models.Agent{
		ID:             "agent-1",
		Name:           "edge-agent",
		URL:            "http://agent.local",
		APIKey:         key,
		IsAPIKeyActive: active,
	}
	require.NoError(t, s.CreateAgent(context.Background(), agent))
	return agent
}

func TestRequireAgent_MissingKey(t *testing.T) {
	gate, _ := newAPIKeyFixture(t)

	var reached bool
	handler := gate.RequireAgent(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		reached = true
	}))

	req := httptest.NewRequest(http.MethodGet, "/callback/health", nil)
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Contains(t, w.Body.String(), "missing API key")
	assert.False(t, reached)
}

func TestRequireAgent_UnknownKey(t *testing.T) {
	gate, memStore := newAPIKeyFixture(t)
	seedGateAgent(t, memStore, "cfy_real", true)

	handler := gate.RequireAgent(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("handler must not run")
	}))

	req := httptest.NewRequest(http.MethodGet, "/callback/health", nil)
	req.Header.Set(APIKeyHeader, "cfy_wrong")
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Contains(t, w.Body.String(), "invalid API key")
}

func TestRequireAgent_InactiveKeyBehavesLikeUnknown(t *testing.T) {
	gate, memStore := newAPIKeyFixture(t)
	seedGateAgent(t, memStore, "cfy_rotated", false)

	handler := gate.RequireAgent(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("handler must not run")
	}))

	req := httptest.NewRequest(http.MethodGet, "/callback/health", nil)
	req.Header.Set(APIKeyHeader, "cfy_rotated")
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestRequireAgent_ValidKeyAttachesAgent(t *testing.T) {
	gate, memStore := newAPIKeyFixture(t)
	seeded := seedGateAgent(t, memStore, "cfy_valid", true)

	handler := gate.RequireAgent(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		agent := AgentFrom(r.Context())
		require.NotNil(t, agent)
		assert.Equal(t, seeded.ID, agent.ID)
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest(http.MethodGet, "/callback/health", nil)
	req.Header.Set(APIKeyHeader, "cfy_valid")
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
}
