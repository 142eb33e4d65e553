package proxy

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/Cachefy/Cachefy-Server-sub000/internal/errs"
	"github.com/Cachefy/Cachefy-Server-sub000/internal/metrics"
	"github.com/Cachefy/Cachefy-Server-sub000/internal/models"
	"github.com/Cachefy/Cachefy-Server-sub000/internal/store"
)

// Prober checks whether an agent's HTTP API is reachable. A probe is a
// pure read: safe to invoke repeatedly and concurrently per agent. Probes
// deliberately bypass the cache client's circuit breaker, since probing is
// how an operator investigates an agent the breaker has given up on.
type Prober struct {
	store      store.DataStore
	httpClient *http.Client
	healthPath string
	timeout    time.Duration
}

// NewProber creates a Prober. healthPath is the path probed on the
// agent's base URL; timeout bounds each probe.
func NewProber(s store.DataStore, healthPath string, timeout time.Duration) *Prober {
	return &Prober{
		store:      s,
		httpClient: &http.Client{Timeout: timeout},
		healthPath: strings.TrimLeft(healthPath, "/"),
		timeout:    timeout,
	}
}

// Ping probes the agent's health endpoint and classifies the outcome.
// Classification lands in the result; the returned error covers only
// failures of this server (unknown agent, store failure).
func (p *Prober) Ping(ctx context.Context, agentID string) (*models.PingResult, error) {
	agent, err := p.store.GetAgent(ctx, agentID)
	if err != nil {
		return nil, errs.Wrap(errs.Internal, err, "agent lookup failed")
	}
	if agent == nil {
		return nil, errs.New(errs.NotFound, "agent %s not found", agentID)
	}

	probeCtx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	probeURL := fmt.Sprintf("%s/%s", strings.TrimRight(agent.URL, "/"), p.healthPath)
	req, err := http.NewRequestWithContext(probeCtx, http.MethodGet, probeURL, nil)
	if err != nil {
		return nil, errs.Wrap(errs.Internal, err, "build probe request")
	}
	req.Header.Set("X-Api-Key", agent.APIKey)

	resp, err := p.httpClient.Do(req)
	if err != nil {
		if isTimeout(err) {
			metrics.AgentPings.WithLabelValues("timeout").Inc()
			return &models.PingResult{
				StatusCode: http.StatusRequestTimeout,
				Message:    "Agent did not respond within timeout period",
			}, nil
		}
		metrics.AgentPings.WithLabelValues("unreachable").Inc()
		return &models.PingResult{
			StatusCode: http.StatusServiceUnavailable,
			Message:    fmt.Sprintf("Failed to reach agent: %v", err),
		}, nil
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		metrics.AgentPings.WithLabelValues("ok").Inc()
		return &models.PingResult{StatusCode: http.StatusOK, Message: "OK"}, nil
	}

	metrics.AgentPings.WithLabelValues("agent_error").Inc()
	result := &models.PingResult{StatusCode: resp.StatusCode}

	// Agents report failures as {"error": "..."}; anything else is left
	// as a bare status.
	body, err := io.ReadAll(io.LimitReader(resp.Body, maxAgentResponseBytes))
	if err == nil {
		var payload struct {
			Error string `json:"error"`
		}
		if json.Unmarshal(body, &payload) == nil && payload.Error != "" {
			result.Message = payload.Error
		}
	}
	return result, nil
}

// isTimeout reports whether err is a deadline or network timeout rather
// than a reachability failure.
func isTimeout(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var netErr net.Error
	return errors.As(err, &netErr) && netErr.Timeout()
}
