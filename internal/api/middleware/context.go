package middleware

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/Cachefy/Cachefy-Server-sub000/internal/auth"
	"github.com/Cachefy/Cachefy-Server-sub000/internal/models"
)

type contextKey string

const (
	// AgentContextKey carries the *models.Agent resolved by the API-key gate.
	AgentContextKey contextKey = "agent"
	// UserContextKey carries the *auth.Identity resolved by the bearer gate.
	UserContextKey contextKey = "user"
)

// AgentFrom returns the agent the API-key gate attached, or nil outside
// the callback surface.
func AgentFrom(ctx context.Context) *models.Agent {
	agent, _ := ctx.Value(AgentContextKey).(*models.Agent)
	return agent
}

// UserFrom returns the identity the bearer gate attached, or nil on
// unauthenticated routes.
func UserFrom(ctx context.Context) *auth.Identity {
	identity, _ := ctx.Value(UserContextKey).(*auth.Identity)
	return identity
}

// jsonError writes the standard error body used by the gates.
func jsonError(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]string{"message": message})
}
