package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

// CacheKeys handles GET /caches/keys?serviceId= — lists the cache keys an
// agent reports for a service.
func (h *Handler) CacheKeys(w http.ResponseWriter, r *http.Request) {
	serviceID := r.URL.Query().Get("serviceId")
	if serviceID == "" {
		h.ValidationError(w, map[string][]string{"serviceId": {"serviceId is required"}})
		return
	}

	envelope, err := h.proxy.ListKeys(r.Context(), serviceID)
	if err != nil {
		h.Fail(w, err)
		return
	}
	h.JSON(w, http.StatusOK, envelope)
}

// CacheGet handles GET /caches?serviceId=&key=&id= — fetches one cached
// entry. The optional id parameter is passed through to the agent
// untouched.
func (h *Handler) CacheGet(w http.ResponseWriter, r *http.Request) {
	serviceID := r.URL.Query().Get("serviceId")
	key := r.URL.Query().Get("key")
	fields := make(map[string][]string)
	if serviceID == "" {
		fields["serviceId"] = []string{"serviceId is required"}
	}
	if key == "" {
		fields["key"] = []string{"key is required"}
	}
	if len(fields) > 0 {
		h.ValidationError(w, fields)
		return
	}

	envelope, err := h.proxy.GetKey(r.Context(), serviceID, key, r.URL.Query().Get("id"))
	if err != nil {
		h.Fail(w, err)
		return
	}
	h.JSON(w, http.StatusOK, envelope)
}

// CacheFlushAll handles DELETE /caches/flushall?serviceId= — clears every
// cached entry for a service.
func (h *Handler) CacheFlushAll(w http.ResponseWriter, r *http.Request) {
	serviceID := r.URL.Query().Get("serviceId")
	if serviceID == "" {
		h.ValidationError(w, map[string][]string{"serviceId": {"serviceId is required"}})
		return
	}
	h.flushAll(w, r, serviceID)
}

// CacheFlushAllByPath handles POST /caches/flushall/{serviceId}, the form
// an earlier dashboard revision used. Kept for deployed dashboards.
func (h *Handler) CacheFlushAllByPath(w http.ResponseWriter, r *http.Request) {
	h.flushAll(w, r, chi.URLParam(r, "serviceId"))
}

func (h *Handler) flushAll(w http.ResponseWriter, r *http.Request, serviceID string) {
	envelope, err := h.proxy.FlushAll(r.Context(), serviceID)
	if err != nil {
		h.Fail(w, err)
		return
	}
	h.JSON(w, http.StatusOK, envelope)
}

// CacheClear handles DELETE /caches/clear?serviceId=&key= — removes one
// cached entry.
func (h *Handler) CacheClear(w http.ResponseWriter, r *http.Request) {
	serviceID := r.URL.Query().Get("serviceId")
	key := r.URL.Query().Get("key")
	fields := make(map[string][]string)
	if serviceID == "" {
		fields["serviceId"] = []string{"serviceId is required"}
	}
	if key == "" {
		fields["key"] = []string{"key is required"}
	}
	if len(fields) > 0 {
		h.ValidationError(w, fields)
		return
	}

	envelope, err := h.proxy.ClearKey(r.Context(), serviceID, key)
	if err != nil {
		h.Fail(w, err)
		return
	}
	h.JSON(w, http.StatusOK, envelope)
}
