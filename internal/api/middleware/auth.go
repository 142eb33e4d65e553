package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/Cachefy/Cachefy-Server-sub000/internal/auth"
	"github.com/Cachefy/Cachefy-Server-sub000/internal/metrics"
)

// JWTAuth validates bearer tokens on the dashboard routes and attaches the
// resolved user identity to the request context.
type JWTAuth struct {
	tokens *auth.TokenService
}

// NewJWTAuth creates the bearer-token gate.
func NewJWTAuth(tokens *auth.TokenService) *JWTAuth {
	return &JWTAuth{tokens: tokens}
}

// RequireUser rejects requests without a valid bearer token. Failure
// responses carry no detail about why the token was rejected.
func (m *JWTAuth) RequireUser(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		header := r.Header.Get("Authorization")
		tokenString, ok := strings.CutPrefix(header, "Bearer ")
		if !ok || tokenString == "" {
			metrics.AuthFailures.WithLabelValues("bearer").Inc()
			jsonError(w, http.StatusUnauthorized, "missing bearer token")
			return
		}

		identity, err := m.tokens.Verify(tokenString)
		if err != nil {
			metrics.AuthFailures.WithLabelValues("bearer").Inc()
			jsonError(w, http.StatusUnauthorized, "invalid or expired token")
			return
		}

		ctx := context.WithValue(r.Context(), UserContextKey, identity)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// RequireRole gates a route tree on the attached identity's role. It must
// run below RequireUser.
func (m *JWTAuth) RequireRole(role string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			identity := UserFrom(r.Context())
			if identity == nil || identity.Role != role {
				jsonError(w, http.StatusForbidden, "insufficient role")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
