package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/Cachefy/Cachefy-Server-sub000/internal/models"
)

// ListServices returns all registered services. The dashboard path is
// read-mostly: services come into existence through the callback surface.
func (h *Handler) ListServices(w http.ResponseWriter, r *http.Request) {
	services, err := h.registry.List(r.Context())
	if err != nil {
		h.Fail(w, err)
		return
	}
	if services == nil {
		services = []models.Service{}
	}
	h.JSON(w, http.StatusOK, services)
}

// GetService returns a single service by id.
func (h *Handler) GetService(w http.ResponseWriter, r *http.Request) {
	service, err := h.registry.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.Fail(w, err)
		return
	}
	h.JSON(w, http.StatusOK, service)
}

// DeleteService removes a service record.
func (h *Handler) DeleteService(w http.ResponseWriter, r *http.Request) {
	if err := h.registry.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		h.Fail(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
