package handlers

import (
	"net/http"
	"net/url"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/Cachefy/Cachefy-Server-sub000/internal/crypto"
	"github.com/Cachefy/Cachefy-Server-sub000/internal/models"
)

// AgentRequest is the create/update body for agents. The API key is never
// accepted from clients; it is generated server-side.
type AgentRequest struct {
	Name string `json:"name"`
	URL  string `json:"url"`
}

func validateAgentRequest(req *AgentRequest) map[string][]string {
	fields := make(map[string][]string)
	if req.Name == "" {
		fields["name"] = append(fields["name"], "name is required")
	}
	if req.URL == "" {
		fields["url"] = append(fields["url"], "url is required")
	} else if u, err := url.Parse(req.URL); err != nil || u.Scheme == "" || u.Host == "" {
		fields["url"] = append(fields["url"], "url must be an absolute http(s) URL")
	}
	if len(fields) == 0 {
		return nil
	}
	return fields
}

// ListAgents returns all registered agents.
func (h *Handler) ListAgents(w http.ResponseWriter, r *http.Request) {
	agents, err := h.store.ListAgents(r.Context())
	if err != nil {
		h.Error(w, http.StatusInternalServerError, "agent list failed: "+err.Error())
		return
	}
	if agents == nil {
		agents = []models.Agent{}
	}
	h.JSON(w, http.StatusOK, agents)
}

// GetAgent returns a single agent by id.
func (h *Handler) GetAgent(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	agent, err := h.store.GetAgent(r.Context(), id)
	if err != nil {
		h.Error(w, http.StatusInternalServerError, "agent lookup failed: "+err.Error())
		return
	}
	if agent == nil {
		h.Error(w, http.StatusNotFound, "agent "+id+" not found")
		return
	}
	h.JSON(w, http.StatusOK, agent)
}

// CreateAgent registers a new agent and generates its API key. The key is
// returned once here; the dashboard shows it to the operator who installs
// it on the agent side.
func (h *Handler) CreateAgent(w http.ResponseWriter, r *http.Request) {
	var req AgentRequest
	if err := decodeJSON(r, &req); err != nil {
		h.Error(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if fields := validateAgentRequest(&req); fields != nil {
		h.ValidationError(w, fields)
		return
	}

	apiKey, err := crypto.NewAPIKey()
	if err != nil {
		h.Error(w, http.StatusInternalServerError, "key generation failed: "+err.Error())
		return
	}

	now := time.Now().UTC()
	agent := &models.Agent{
		ID:             crypto.NewID(),
		Name:           req.Name,
		URL:            req.URL,
		APIKey:         apiKey,
		IsAPIKeyActive: true,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	if err := h.store.CreateAgent(r.Context(), agent); err != nil {
		h.Error(w, http.StatusInternalServerError, "agent create failed: "+err.Error())
		return
	}

	h.JSON(w, http.StatusCreated, agent)
}

// UpdateAgentRequest is the update body for agents; IsAPIKeyActive allows
// disabling a key without rotating it.
type UpdateAgentRequest struct {
	Name           string `json:"name"`
	URL            string `json:"url"`
	IsAPIKeyActive *bool  `json:"isApiKeyActive"`
}

// UpdateAgent updates an agent's name, URL, and key-active flag.
func (h *Handler) UpdateAgent(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	agent, err := h.store.GetAgent(r.Context(), id)
	if err != nil {
		h.Error(w, http.StatusInternalServerError, "agent lookup failed: "+err.Error())
		return
	}
	if agent == nil {
		h.Error(w, http.StatusNotFound, "agent "+id+" not found")
		return
	}

	var req UpdateAgentRequest
	if err := decodeJSON(r, &req); err != nil {
		h.Error(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if fields := validateAgentRequest(&AgentRequest{Name: req.Name, URL: req.URL}); fields != nil {
		h.ValidationError(w, fields)
		return
	}

	agent.Name = req.Name
	agent.URL = req.URL
	if req.IsAPIKeyActive != nil {
		agent.IsAPIKeyActive = *req.IsAPIKeyActive
	}
	agent.UpdatedAt = time.Now().UTC()

	if err := h.store.UpdateAgent(r.Context(), agent); err != nil {
		h.Error(w, http.StatusInternalServerError, "agent update failed: "+err.Error())
		return
	}
	h.JSON(w, http.StatusOK, agent)
}

// DeleteAgent removes an agent. Services referencing it keep their agentId
// until re-registered; the cache proxy treats the dangling reference as a
// missing agent.
func (h *Handler) DeleteAgent(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	agent, err := h.store.GetAgent(r.Context(), id)
	if err != nil {
		h.Error(w, http.StatusInternalServerError, "agent lookup failed: "+err.Error())
		return
	}
	if agent == nil {
		h.Error(w, http.StatusNotFound, "agent "+id+" not found")
		return
	}
	if err := h.store.DeleteAgent(r.Context(), id); err != nil {
		h.Error(w, http.StatusInternalServerError, "agent delete failed: "+err.Error())
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// RegenerateAPIKey rotates an agent's API key and reactivates it. The old
// key stops matching immediately.
func (h *Handler) RegenerateAPIKey(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	agent, err := h.store.GetAgent(r.Context(), id)
	if err != nil {
		h.Error(w, http.StatusInternalServerError, "agent lookup failed: "+err.Error())
		return
	}
	if agent == nil {
		h.Error(w, http.StatusNotFound, "agent "+id+" not found")
		return
	}

	apiKey, err := crypto.NewAPIKey()
	if err != nil {
		h.Error(w, http.StatusInternalServerError, "key generation failed: "+err.Error())
		return
	}

	agent.APIKey = apiKey
	agent.IsAPIKeyActive = true
	agent.UpdatedAt = time.Now().UTC()

	if err := h.store.UpdateAgent(r.Context(), agent); err != nil {
		h.Error(w, http.StatusInternalServerError, "agent update failed: "+err.Error())
		return
	}
	h.JSON(w, http.StatusOK, agent)
}

// PingAgent probes the agent's health endpoint and returns the classified
// result. The probe outcome is the response body; the HTTP status is 200
// whenever the probe itself could be attempted.
func (h *Handler) PingAgent(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	result, err := h.prober.Ping(r.Context(), id)
	if err != nil {
		h.Fail(w, err)
		return
	}
	h.JSON(w, http.StatusOK, result)
}
