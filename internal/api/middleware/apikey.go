package middleware

import (
	"context"
	"net/http"

	"github.com/Cachefy/Cachefy-Server-sub000/internal/metrics"
	"github.com/Cachefy/Cachefy-Server-sub000/internal/store"
)

// APIKeyHeader is the header agents present on the callback surface.
const APIKeyHeader = "X-Api-Key"

// APIKeyAuth authenticates agents on the callback surface. It resolves the
// presented key against the store and attaches the owning agent to the
// request context so downstream handlers never see the raw key again.
type APIKeyAuth struct {
	store store.DataStore
}

// NewAPIKeyAuth creates the API-key gate backed by the given store.
func NewAPIKeyAuth(s store.DataStore) *APIKeyAuth {
	return &APIKeyAuth{store: s}
}

// RequireAgent rejects requests without a valid, active API key. Only
// active keys match: a rotated-out key behaves exactly like an unknown one.
func (m *APIKeyAuth) RequireAgent(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		key := r.Header.Get(APIKeyHeader)
		if key == "" {
			metrics.AuthFailures.WithLabelValues("apikey").Inc()
			jsonError(w, http.StatusUnauthorized, "missing API key")
			return
		}

		agent, err := m.store.GetAgentByAPIKey(r.Context(), key)
		if err != nil {
			// Surface the store failure, never the key itself.
			jsonError(w, http.StatusInternalServerError, "agent lookup failed: "+err.Error())
			return
		}
		if agent == nil {
			metrics.AuthFailures.WithLabelValues("apikey").Inc()
			jsonError(w, http.StatusUnauthorized, "invalid API key")
			return
		}

		ctx := context.WithValue(r.Context(), AgentContextKey, agent)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
