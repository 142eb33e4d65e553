package handlers_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/Cachefy/Cachefy-Server-sub000/internal/api"
	"github.com/Cachefy/Cachefy-Server-sub000/internal/api/middleware"
	"github.com/Cachefy/Cachefy-Server-sub000/internal/auth"
	"github.com/Cachefy/Cachefy-Server-sub000/internal/config"
	"github.com/Cachefy/Cachefy-Server-sub000/internal/crypto"
	"github.com/Cachefy/Cachefy-Server-sub000/internal/handlers"
	"github.com/Cachefy/Cachefy-Server-sub000/internal/models"
	"github.com/Cachefy/Cachefy-Server-sub000/internal/proxy"
	"github.com/Cachefy/Cachefy-Server-sub000/internal/registry"
	"github.com/Cachefy/Cachefy-Server-sub000/internal/store"
)

// testServer wires the full router against an in-memory store.
type testServer struct {
	router http.Handler
	store  *store.MemoryStore
	tokens *auth.TokenService
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()

	memStore := store.NewMemoryStore()
	tokens := auth.NewTokenService("test-secret", time.Hour)

	reg := registry.New(memStore)
	client := proxy.NewClient(2 * time.Second)
	cacheProxy := proxy.NewCacheProxy(memStore, client)
	prober := proxy.NewProber(memStore, "health", time.Second)

	h := handlers.NewHandler(memStore, reg, cacheProxy, prober, tokens, nil)
	cfg := &config.Config{CORSAllowedOrigins: []string{"*"}}

	router := api.NewRouter(zerolog.Nop(), cfg, h,
		middleware.NewAPIKeyAuth(memStore),
		middleware.NewJWTAuth(tokens),
		nil)

	return &testServer{router: router, store: memStore, tokens: tokens}
}

// seedUser creates a user and returns a bearer token for it.
func (ts *testServer) seedUser(t *testing.T, email, password, role string) (*models.User, string) {
	t.Helper()

	hash, err := auth.HashPassword(password)
	require.NoError(t, err)

	now := time.Now().UTC()
	user := &models.User{
		ID:           crypto.NewID(),
		Email:        email,
		PasswordHash: hash,
		Role:         role,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	require.NoError(t, ts.store.CreateUser(context.Background(), user))

	token, err := ts.tokens.Issue(user)
	require.NoError(t, err)
	return user, token
}

// seedAgent creates an agent record directly in the store.
func (ts *testServer) seedAgent(t *testing.T, name, url, apiKey string, active bool) *models.Agent {
	t.Helper()

	now := time.Now().UTC()
	agent := &models.Agent{
		ID:             crypto.NewID(),
		Name:           name,
		URL:            url,
		APIKey:         apiKey,
		IsAPIKeyActive: active,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	require.NoError(t, ts.store.CreateAgent(context.Background(), agent))
	return agent
}

// do executes a request against the router with optional auth headers.
func (ts *testServer) do(t *testing.T, method, target, bearer, apiKey string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()

	var reader *bytes.Reader
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(data)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, target, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if bearer != "" {
		req.Header.Set("Authorization", "Bearer "+bearer)
	}
	if apiKey != "" {
		req.Header.Set(middleware.APIKeyHeader, apiKey)
	}

	w := httptest.NewRecorder()
	ts.router.ServeHTTP(w, req)
	return w
}

// decode unmarshals a recorded JSON body.
func decode(t *testing.T, w *httptest.ResponseRecorder, dst interface{}) {
	t.Helper()
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), dst))
}
