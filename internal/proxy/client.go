// Package proxy forwards cache-inspection calls to externally hosted
// agent HTTP APIs and probes agent health. It holds no state between
// calls: every invocation resolves the owning agent fresh from the store.
package proxy

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"sync"
	"time"

	"github.com/sony/gobreaker/v2"

	"github.com/Cachefy/Cachefy-Server-sub000/internal/errs"
	"github.com/Cachefy/Cachefy-Server-sub000/internal/models"
)

// maxAgentResponseBytes bounds how much of an agent response is read. An
// agent returning an unbounded body must not exhaust server memory.
const maxAgentResponseBytes = 4 << 20

// Client issues HTTP calls to agent cache APIs. Calls to each agent run
// through a per-agent circuit breaker: a misbehaving agent trips its own
// breaker without affecting calls to the others.
type Client struct {
	httpClient *http.Client

	mu       sync.Mutex
	breakers map[string]*gobreaker.CircuitBreaker[*models.AgentResponse]
}

// NewClient creates a Client whose outbound calls are bounded by timeout.
func NewClient(timeout time.Duration) *Client {
	return &Client{
		httpClient: &http.Client{Timeout: timeout},
		breakers:   make(map[string]*gobreaker.CircuitBreaker[*models.AgentResponse]),
	}
}

// breaker returns the circuit breaker for an agent, creating it on first
// use. Breakers are keyed by agent base URL.
func (c *Client) breaker(agentURL string) *gobreaker.CircuitBreaker[*models.AgentResponse] {
	c.mu.Lock()
	defer c.mu.Unlock()

	if cb, ok := c.breakers[agentURL]; ok {
		return cb
	}

	settings := gobreaker.Settings{
		Name:        agentURL,
		MaxRequests: 1,
		Interval:    60 * time.Second,
		Timeout:     30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 5
		},
	}
	cb := gobreaker.NewCircuitBreaker[*models.AgentResponse](settings)
	c.breakers[agentURL] = cb
	return cb
}

// Do issues a cache API call against an agent and parses the response
// envelope. A non-2xx agent status is not an error here: the envelope is
// returned as parsed and the proxy forwards whatever status the agent
// reported. Only transport failures and unusable bodies fail the call.
func (c *Client) Do(ctx context.Context, agentURL, method, callURL, apiKey string) (*models.AgentResponse, error) {
	result, err := c.breaker(agentURL).Execute(func() (*models.AgentResponse, error) {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return c.call(ctx, method, callURL, apiKey)
	})
	if err != nil {
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			return nil, errs.New(errs.Internal, "agent at %s is unavailable: circuit open", agentURL)
		}
		return nil, err
	}
	return result, nil
}

func (c *Client) call(ctx context.Context, method, callURL, apiKey string) (*models.AgentResponse, error) {
	req, err := http.NewRequestWithContext(ctx, method, callURL, nil)
	if err != nil {
		return nil, errs.Wrap(errs.Internal, err, "build agent request")
	}
	req.Header.Set("X-Api-Key", apiKey)
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, errs.Wrap(errs.Internal, err, "agent call failed")
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxAgentResponseBytes))
	if err != nil {
		return nil, errs.Wrap(errs.Internal, err, "read agent response")
	}

	var envelope *models.AgentResponse
	if err := json.Unmarshal(body, &envelope); err != nil {
		return nil, errs.Wrap(errs.Internal, err, "failed to deserialize agent response")
	}
	if envelope == nil {
		// A literal JSON null parses without error but carries nothing.
		return nil, errs.New(errs.Internal, "failed to deserialize agent response")
	}
	return envelope, nil
}
