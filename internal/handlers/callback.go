package handlers

import (
	"net/http"

	"github.com/Cachefy/Cachefy-Server-sub000/internal/api/middleware"
)

// CallbackHealthResponse is the body agents poll to verify connectivity
// and that their key still works.
type CallbackHealthResponse struct {
	Status  string `json:"status"`
	Message string `json:"message"`
}

// CallbackHealth confirms the callback surface is up and the caller's key
// resolved. The API-key gate has already authenticated the agent.
func (h *Handler) CallbackHealth(w http.ResponseWriter, r *http.Request) {
	agent := middleware.AgentFrom(r.Context())
	h.JSON(w, http.StatusOK, CallbackHealthResponse{
		Status:  "healthy",
		Message: "authenticated as agent " + agent.Name,
	})
}

// RegisterServiceRequest is the registration body. Any agentId the caller
// includes is ignored: the binding comes from the authenticated key.
type RegisterServiceRequest struct {
	Name    string `json:"name"`
	Status  string `json:"status"`
	Version string `json:"version"`
}

// RegisterService upserts a service by name under the authenticated
// agent's identity. First creation returns 201; repeated registrations of
// the same name return 200 with the same record id.
func (h *Handler) RegisterService(w http.ResponseWriter, r *http.Request) {
	agent := middleware.AgentFrom(r.Context())

	var req RegisterServiceRequest
	if err := decodeJSON(r, &req); err != nil {
		h.Error(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if req.Name == "" {
		h.ValidationError(w, map[string][]string{"name": {"name is required"}})
		return
	}

	service, created, err := h.registry.RegisterOrUpdate(r.Context(), req.Name, req.Status, req.Version, agent.ID)
	if err != nil {
		h.Fail(w, err)
		return
	}

	status := http.StatusOK
	if created {
		status = http.StatusCreated
	}
	h.JSON(w, status, service)
}
