package proxy

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/Cachefy/Cachefy-Server-sub000/internal/errs"
	"github.com/Cachefy/Cachefy-Server-sub000/internal/metrics"
	"github.com/Cachefy/Cachefy-Server-sub000/internal/models"
	"github.com/Cachefy/Cachefy-Server-sub000/internal/store"
)

// CacheProxy resolves a service's owning agent and forwards cache
// operations to the agent's HTTP API. The agent's own statusCode/message
// pass through verbatim; this server's status codes describe only its own
// failures.
type CacheProxy struct {
	store  store.DataStore
	client *Client
}

// NewCacheProxy creates a CacheProxy.
func NewCacheProxy(s store.DataStore, client *Client) *CacheProxy {
	return &CacheProxy{store: s, client: client}
}

// resolve runs the shared preamble: service must exist, must reference an
// agent, the agent must exist, and the agent's key must be active. Checks
// run in that order so the caller learns the first failing precondition,
// and no outbound call is attempted on any failure.
func (p *CacheProxy) resolve(ctx context.Context, serviceID string) (*models.Service, *models.Agent, error) {
	service, err := p.store.GetService(ctx, serviceID)
	if err != nil {
		return nil, nil, errs.Wrap(errs.Internal, err, "service lookup failed")
	}
	if service == nil {
		return nil, nil, errs.New(errs.NotFound, "service %s not found", serviceID)
	}
	if service.AgentID == "" {
		return nil, nil, errs.New(errs.InvalidOperation, "service %q has no associated agent", service.Name)
	}

	agent, err := p.store.GetAgent(ctx, service.AgentID)
	if err != nil {
		return nil, nil, errs.Wrap(errs.Internal, err, "agent lookup failed")
	}
	if agent == nil {
		return nil, nil, errs.New(errs.NotFound, "agent %s not found", service.AgentID)
	}
	if !agent.IsAPIKeyActive {
		return nil, nil, errs.New(errs.InvalidOperation, "agent %q API key is not active", agent.Name)
	}

	return service, agent, nil
}

// ListKeys forwards GET {agentUrl}/api/cache/{serviceName}.
func (p *CacheProxy) ListKeys(ctx context.Context, serviceID string) (*models.AgentResponse, error) {
	return p.forward(ctx, "list_keys", serviceID, func(agent *models.Agent, service *models.Service) (string, string) {
		return http.MethodGet, cacheURL(agent.URL, service.Name)
	})
}

// GetKey forwards GET {agentUrl}/api/cache/{serviceName}/{key}. responseID
// is an optional pass-through identifier appended as a query parameter;
// the proxy never interprets it.
func (p *CacheProxy) GetKey(ctx context.Context, serviceID, key, responseID string) (*models.AgentResponse, error) {
	return p.forward(ctx, "get_key", serviceID, func(agent *models.Agent, service *models.Service) (string, string) {
		callURL := cacheURL(agent.URL, service.Name) + "/" + url.PathEscape(key)
		if responseID != "" {
			callURL += "?id=" + url.QueryEscape(responseID)
		}
		return http.MethodGet, callURL
	})
}

// FlushAll forwards POST {agentUrl}/api/cache/{serviceName}/flushall.
func (p *CacheProxy) FlushAll(ctx context.Context, serviceID string) (*models.AgentResponse, error) {
	return p.forward(ctx, "flush_all", serviceID, func(agent *models.Agent, service *models.Service) (string, string) {
		return http.MethodPost, cacheURL(agent.URL, service.Name) + "/flushall"
	})
}

// ClearKey forwards DELETE {agentUrl}/api/cache/{serviceName}/clear/{key}.
func (p *CacheProxy) ClearKey(ctx context.Context, serviceID, key string) (*models.AgentResponse, error) {
	return p.forward(ctx, "clear_key", serviceID, func(agent *models.Agent, service *models.Service) (string, string) {
		return http.MethodDelete, cacheURL(agent.URL, service.Name) + "/clear/" + url.PathEscape(key)
	})
}

func (p *CacheProxy) forward(ctx context.Context, operation, serviceID string, build func(*models.Agent, *models.Service) (string, string)) (*models.AgentResponse, error) {
	service, agent, err := p.resolve(ctx, serviceID)
	if err != nil {
		metrics.ProxyCalls.WithLabelValues(operation, "rejected").Inc()
		return nil, err
	}

	method, callURL := build(agent, service)
	envelope, err := p.client.Do(ctx, agent.URL, method, callURL, agent.APIKey)
	if err != nil {
		metrics.ProxyCalls.WithLabelValues(operation, "failed").Inc()
		return nil, err
	}

	metrics.ProxyCalls.WithLabelValues(operation, "forwarded").Inc()
	return envelope, nil
}

// cacheURL builds the base cache endpoint for a service on an agent.
func cacheURL(agentURL, serviceName string) string {
	return fmt.Sprintf("%s/api/cache/%s", strings.TrimRight(agentURL, "/"), url.PathEscape(serviceName))
}
