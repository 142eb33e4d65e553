package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/redis/go-redis/v9"

	"github.com/Cachefy/Cachefy-Server-sub000/internal/auth"
	"github.com/Cachefy/Cachefy-Server-sub000/internal/errs"
	"github.com/Cachefy/Cachefy-Server-sub000/internal/proxy"
	"github.com/Cachefy/Cachefy-Server-sub000/internal/registry"
	"github.com/Cachefy/Cachefy-Server-sub000/internal/store"
)

// Handler contains shared dependencies for all HTTP handlers.
type Handler struct {
	store    store.DataStore
	registry *registry.Registry
	proxy    *proxy.CacheProxy
	prober   *proxy.Prober
	tokens   *auth.TokenService
	redis    *redis.Client // optional, health check only
}

// NewHandler creates a new Handler with the given collaborators.
func NewHandler(s store.DataStore, reg *registry.Registry, cacheProxy *proxy.CacheProxy, prober *proxy.Prober, tokens *auth.TokenService, redisClient *redis.Client) *Handler {
	return &Handler{
		store:    s,
		registry: reg,
		proxy:    cacheProxy,
		prober:   prober,
		tokens:   tokens,
		redis:    redisClient,
	}
}

// JSON sends a JSON response with the given status code.
func (h *Handler) JSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

// Error sends a JSON error response with the given status code.
func (h *Handler) Error(w http.ResponseWriter, status int, message string) {
	h.JSON(w, status, map[string]string{"message": message})
}

// Fail maps a typed failure to its status code and error body.
func (h *Handler) Fail(w http.ResponseWriter, err error) {
	h.Error(w, errs.HTTPStatus(err), errs.PublicMessage(err))
}

// ValidationError sends a 400 with a field-to-messages map alongside the
// summary message.
func (h *Handler) ValidationError(w http.ResponseWriter, fields map[string][]string) {
	h.JSON(w, http.StatusBadRequest, map[string]interface{}{
		"message": "validation failed",
		"errors":  fields,
	})
}

// decodeJSON decodes a request body, rejecting malformed or trailing input.
func decodeJSON(r *http.Request, dst interface{}) error {
	dec := json.NewDecoder(r.Body)
	if err := dec.Decode(dst); err != nil {
		return err
	}
	if dec.More() {
		return errors.New("unexpected trailing data")
	}
	return nil
}
